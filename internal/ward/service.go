package ward

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cathshield/internal/alert"
	"cathshield/internal/report"
	"cathshield/internal/resource"
	"cathshield/internal/risk"
	"cathshield/internal/trend"
)

type AlertLister interface {
	List(ctx context.Context, f alert.Filter) ([]alert.Alert, error)
}

type SupplyHistory interface {
	History(ctx context.Context, wardID string, limit int) ([]resource.Snapshot, error)
}

type ReportRenderer interface {
	Render(r report.WardReport) ([]byte, error)
	Send(ctx context.Context, r report.WardReport) error
}

type Service interface {
	Overview(ctx context.Context, wardID string) (*Overview, error)
	Record(ctx context.Context, req RecordRequest) (*Metric, error)
	// Report renders the ward safety PDF and returns it with its file name.
	Report(ctx context.Context, wardID string) ([]byte, string, error)
	SendReport(ctx context.Context, wardID string) error
}

type service struct {
	repo          Repository
	alerts        AlertLister
	supply        SupplyHistory
	reports       ReportRenderer
	defaultWardID string
	logger        *zap.Logger
	now           func() time.Time
}

func NewService(
	repo Repository,
	alerts AlertLister,
	supply SupplyHistory,
	reports ReportRenderer,
	defaultWardID string,
	logger *zap.Logger,
) Service {
	return &service{
		repo:          repo,
		alerts:        alerts,
		supply:        supply,
		reports:       reports,
		defaultWardID: defaultWardID,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *service) Overview(ctx context.Context, wardID string) (*Overview, error) {
	metrics, err := s.repo.ListRecent(ctx, wardID)
	if err != nil {
		return nil, err
	}
	return &Overview{
		Metrics: metrics,
		Delta:   trend.ComputeDelta(snapshots(metrics)),
	}, nil
}

// Record stores a ward rate derived as cases per 1000 line days.
func (s *service) Record(ctx context.Context, req RecordRequest) (*Metric, error) {
	if req.LineDays <= 0 {
		return nil, fmt.Errorf("%w: line days must be positive", risk.ErrInvalidInput)
	}
	if req.ClabsiCases < 0 {
		return nil, fmt.Errorf("%w: case count must not be negative", risk.ErrInvalidInput)
	}

	wardID := req.WardID
	if wardID == "" {
		wardID = s.defaultWardID
	}
	date := req.Date
	if date.IsZero() {
		date = s.now().UTC().Truncate(24 * time.Hour)
	}

	rate := float64(req.ClabsiCases) / float64(req.LineDays) * 1000
	m := &Metric{
		ID:          uuid.New(),
		WardID:      wardID,
		Date:        date,
		DerivedRate: math.Round(rate*100) / 100,
		LineDays:    req.LineDays,
		ClabsiCases: req.ClabsiCases,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info("Ward metric recorded",
		zap.String("ward_id", wardID),
		zap.Float64("derived_rate", m.DerivedRate),
	)
	return m, nil
}

func (s *service) Report(ctx context.Context, wardID string) ([]byte, string, error) {
	r, err := s.assemble(ctx, wardID)
	if err != nil {
		return nil, "", err
	}
	data, err := s.reports.Render(r)
	if err != nil {
		return nil, "", fmt.Errorf("render ward report: %w", err)
	}
	return data, report.FileName(r), nil
}

func (s *service) SendReport(ctx context.Context, wardID string) error {
	r, err := s.assemble(ctx, wardID)
	if err != nil {
		return err
	}
	if err := s.reports.Send(ctx, r); err != nil {
		return err
	}
	s.logger.Info("Ward report sent", zap.String("ward_id", r.WardID))
	return nil
}

func (s *service) assemble(ctx context.Context, wardID string) (report.WardReport, error) {
	if wardID == "" {
		wardID = s.defaultWardID
	}

	overview, err := s.Overview(ctx, wardID)
	if err != nil {
		return report.WardReport{}, err
	}
	open, err := s.alerts.List(ctx, alert.Filter{Unacknowledged: true})
	if err != nil {
		return report.WardReport{}, fmt.Errorf("list open alerts: %w", err)
	}
	supply, err := s.supply.History(ctx, wardID, 1)
	if err != nil {
		return report.WardReport{}, fmt.Errorf("load supply history: %w", err)
	}

	r := report.WardReport{
		WardID:      wardID,
		GeneratedAt: s.now(),
		Delta:       overview.Delta,
	}
	for _, m := range overview.Metrics {
		r.Metrics = append(r.Metrics, report.MetricRow{
			Date:        m.Date,
			DerivedRate: m.DerivedRate,
			LineDays:    m.LineDays,
			ClabsiCases: m.ClabsiCases,
		})
	}
	if len(supply) > 0 {
		r.Supply = &report.SupplyRow{
			CombinedRate: supply[0].CombinedRate,
			Band:         string(supply[0].Band),
			CheckedAt:    supply[0].CreatedAt,
		}
	}
	for _, a := range open {
		r.OpenAlerts = append(r.OpenAlerts, report.AlertRow{
			Severity: string(a.Severity),
			Type:     string(a.Type),
			Reason:   a.Reason,
			Action:   a.RecommendedAction,
		})
	}
	return r, nil
}
