package resource

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cathshield/internal/alert"
	"cathshield/internal/risk"
)

// AlertRaiser persists alert candidates.
type AlertRaiser interface {
	Raise(ctx context.Context, patientID *string, candidates []risk.Candidate) ([]alert.Alert, error)
}

type Service interface {
	Check(ctx context.Context, in SupplyCheck) (*CheckResult, error)
	History(ctx context.Context, wardID string, limit int) ([]Snapshot, error)
}

type service struct {
	repo          Repository
	alerts        AlertRaiser
	defaultWardID string
	logger        *zap.Logger
	now           func() time.Time
}

func NewService(repo Repository, alerts AlertRaiser, defaultWardID string, logger *zap.Logger) Service {
	return &service{
		repo:          repo,
		alerts:        alerts,
		defaultWardID: defaultWardID,
		logger:        logger,
		now:           time.Now,
	}
}

// Check computes the deprivation snapshot, stores it and raises a shortage
// alert when the combined rate calls for one. Invalid counts are rejected
// before anything is written.
func (s *service) Check(ctx context.Context, in SupplyCheck) (*CheckResult, error) {
	d, err := risk.ComputeDeprivation(in.Patients, in.Dressings, in.Catheters)
	if err != nil {
		return nil, err
	}

	wardID := in.WardID
	if wardID == "" {
		wardID = s.defaultWardID
	}

	snap := Snapshot{
		ID:                   uuid.New(),
		WardID:               wardID,
		PatientsNeeding:      in.Patients,
		AvailableDressings:   max(in.Dressings, 0),
		AvailableCatheters:   max(in.Catheters, 0),
		DressingsDeficitRate: d.DressingsDeficitRate,
		CathetersDeficitRate: d.CathetersDeficitRate,
		CombinedRate:         d.CombinedRate,
		Band:                 d.Band,
		CreatedAt:            s.now().UTC(),
	}
	if err := s.repo.Create(ctx, &snap); err != nil {
		return nil, err
	}

	result := &CheckResult{Snapshot: snap}

	// Evaluated on the stored two-decimal rate, so 30.005 rounds to 30.00 and
	// stays below the alert line.
	c, raise := risk.EvaluateResourceAlert(d.CombinedRate)
	if !raise {
		return result, nil
	}
	raised, err := s.alerts.Raise(ctx, nil, []risk.Candidate{c})
	if err != nil {
		// The snapshot is already stored.
		s.logger.Error("Failed to raise resource alert",
			zap.String("ward_id", wardID),
			zap.Error(err),
		)
	}
	result.AlertRaised = len(raised) > 0
	if !result.AlertRaised {
		return result, nil
	}

	s.logger.Info("Resource shortage alert raised",
		zap.String("ward_id", wardID),
		zap.Float64("combined_rate", d.CombinedRate),
		zap.String("severity", string(c.Severity)),
	)
	return result, nil
}

func (s *service) History(ctx context.Context, wardID string, limit int) ([]Snapshot, error) {
	if wardID == "" {
		wardID = s.defaultWardID
	}
	return s.repo.ListByWard(ctx, wardID, limit)
}
