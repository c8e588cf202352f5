package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cathshield/internal/risk"
)

// Notifier pushes a text message to an on-call chat.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

type Service interface {
	// Raise persists each candidate as its own record. A failed write does
	// not prevent the remaining candidates from being stored.
	Raise(ctx context.Context, patientID *string, candidates []risk.Candidate) ([]Alert, error)
	List(ctx context.Context, f Filter) ([]Alert, error)
	Acknowledge(ctx context.Context, id uuid.UUID) (*Alert, error)
}

type service struct {
	repo     Repository
	notifier Notifier
	chatID   int64
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires alert persistence. notifier may be nil to disable
// critical-alert messages.
func NewService(repo Repository, notifier Notifier, chatID int64, logger *zap.Logger) Service {
	return &service{
		repo:     repo,
		notifier: notifier,
		chatID:   chatID,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *service) Raise(ctx context.Context, patientID *string, candidates []risk.Candidate) ([]Alert, error) {
	saved := make([]Alert, 0, len(candidates))
	var errs []error

	for _, c := range candidates {
		a := Alert{
			ID:                uuid.New(),
			PatientID:         patientID,
			Type:              c.Type,
			Reason:            c.Reason,
			Severity:          c.Severity,
			RecommendedAction: c.RecommendedAction,
			CreatedAt:         s.now().UTC(),
		}
		if err := s.repo.Create(ctx, &a); err != nil {
			s.logger.Error("Failed to create alert",
				zap.String("alert_type", string(c.Type)),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}

		s.logger.Info("Alert created",
			zap.String("alert_id", a.ID.String()),
			zap.String("alert_type", string(a.Type)),
			zap.String("severity", string(a.Severity)),
		)
		saved = append(saved, a)

		if a.Severity == risk.SeverityCritical {
			s.notify(ctx, a)
		}
	}

	return saved, errors.Join(errs...)
}

func (s *service) notify(ctx context.Context, a Alert) {
	if s.notifier == nil || s.chatID == 0 {
		return
	}
	if err := s.notifier.SendMessage(ctx, s.chatID, formatMessage(a)); err != nil {
		s.logger.Warn("Failed to send alert notification",
			zap.String("alert_id", a.ID.String()),
			zap.Error(err),
		)
	}
}

func formatMessage(a Alert) string {
	subject := "Ward"
	if a.PatientID != nil {
		subject = "Patient " + *a.PatientID
	}
	return fmt.Sprintf("[%s] %s: %s\nAction: %s", a.Severity, subject, a.Reason, a.RecommendedAction)
}

func (s *service) List(ctx context.Context, f Filter) ([]Alert, error) {
	return s.repo.List(ctx, f)
}

func (s *service) Acknowledge(ctx context.Context, id uuid.UUID) (*Alert, error) {
	a, err := s.repo.Acknowledge(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Alert acknowledged", zap.String("alert_id", id.String()))
	return a, nil
}
