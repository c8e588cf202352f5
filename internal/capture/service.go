package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cathshield/internal/alert"
	"cathshield/internal/patient"
	"cathshield/internal/risk"
	"cathshield/internal/trend"
	"cathshield/internal/vision"
)

type PatientReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

type AlertRaiser interface {
	Raise(ctx context.Context, patientID *string, candidates []risk.Candidate) ([]alert.Alert, error)
}

// Image is an uploaded site photo.
type Image struct {
	Data     []byte
	Filename string
}

type Service interface {
	Capture(ctx context.Context, req Request, img *Image) (*Result, error)
	Trend(ctx context.Context, patientID uuid.UUID) (*TrendView, error)
}

type service struct {
	repo       Repository
	patients   PatientReader
	classifier vision.Classifier
	alerts     AlertRaiser
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(
	repo Repository,
	patients PatientReader,
	classifier vision.Classifier,
	alerts AlertRaiser,
	logger *zap.Logger,
) Service {
	return &service{
		repo:       repo,
		patients:   patients,
		classifier: classifier,
		alerts:     alerts,
		logger:     logger,
		now:        time.Now,
	}
}

// Capture scores one site observation, stores it as a risk point and raises
// whatever alerts the rule engine returns for it.
func (s *service) Capture(ctx context.Context, req Request, img *Image) (*Result, error) {
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("%w: patient id is required", risk.ErrInvalidInput)
	}
	signals, err := normalizeSignals(req.RiskSignals)
	if err != nil {
		return nil, err
	}
	point := RiskPoint{
		ID:             uuid.New(),
		PatientID:      patientID,
		CapturedAt:     req.CapturedAt,
		TractionRed:    signals.TractionPullsRed,
		TractionYellow: signals.TractionPullsYellow,
	}
	if point.CapturedAt.IsZero() {
		point.CapturedAt = s.now().UTC()
	}
	if err := applyEvent(&point, req.EventMarker); err != nil {
		return nil, err
	}

	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	dwell := trend.ComputeDwell(p.InsertionDate, point.CapturedAt)
	point.LineDayIndex = dwell.LineDayIndex

	findings, err := s.findings(ctx, req.Findings, img)
	if err != nil {
		return nil, err
	}
	point.Score = float64(risk.SiteScore(findings))
	point.DressingFailure = findings.DressingFailure() || signals.DressingFailure
	signals.DressingFailure = point.DressingFailure

	cls := risk.ClassifyLabel(findings)
	profile, err := s.profile(ctx, p, findings, cls.Label, dwell, signals)
	if err != nil {
		return nil, err
	}
	point.SiteLabel = cls.Label
	point.RiskWindow = profile.Window
	point.RiskMeter = profile.Meter
	point.RiskTier = profile.Tier

	// An omitted CLABSI band falls back to the integrated profile.
	if req.ClabsiBand == "" {
		signals.ClabsiBand = profile.Band
	}
	point.Band = signals.ClabsiBand

	if err := s.repo.Create(ctx, &point); err != nil {
		return nil, err
	}

	pid := patientID.String()
	raised, err := s.alerts.Raise(ctx, &pid, risk.EvaluateRiskAlerts(signals))
	if err != nil {
		// The point is stored; report whatever alerts made it.
		s.logger.Error("Failed to raise capture alerts",
			zap.String("patient_id", pid),
			zap.Int("stored", len(raised)),
			zap.Error(err),
		)
	}

	s.logger.Info("Capture recorded",
		zap.String("patient_id", pid),
		zap.Float64("score", point.Score),
		zap.String("band", string(point.Band)),
		zap.String("label", string(cls.Label)),
		zap.Float64("risk_meter", point.RiskMeter),
		zap.Int("alerts", len(raised)),
	)
	return &Result{
		RiskPoint:      point,
		Findings:       findings,
		Classification: cls,
		Profile:        profile,
		Alerts:         raised,
	}, nil
}

func (s *service) profile(
	ctx context.Context,
	p *patient.Patient,
	findings risk.Findings,
	label risk.Label,
	dwell trend.Dwell,
	signals risk.RiskSignals,
) (risk.Profile, error) {
	factors, err := risk.ParsePatientFactors(p.PatientFactors)
	if err != nil {
		s.logger.Warn("Ignoring unreadable patient factors",
			zap.String("patient_id", p.ID.String()),
			zap.Error(err),
		)
	}

	prev, err := s.repo.Latest(ctx, p.ID)
	if err != nil {
		return risk.Profile{}, err
	}
	var prevScore *float64
	if prev != nil {
		prevScore = &prev.Score
	}

	return risk.BuildProfile(risk.ProfileInput{
		Findings:       findings,
		Label:          label,
		DwellDays:      dwell.Hours / 24,
		TractionRed:    signals.TractionPullsRed,
		TractionYellow: signals.TractionPullsYellow,
		PatientFactors: factors,
		PreviousScore:  prevScore,
	}), nil
}

func (s *service) findings(ctx context.Context, given *risk.Findings, img *Image) (risk.Findings, error) {
	if given != nil {
		return *given, nil
	}
	if img == nil || len(img.Data) == 0 {
		return risk.Findings{}, fmt.Errorf("%w: findings or an image are required", risk.ErrInvalidInput)
	}
	f, err := s.classifier.Classify(ctx, img.Data, img.Filename)
	if err != nil {
		if errors.Is(err, vision.ErrUnsupportedImage) {
			return risk.Findings{}, fmt.Errorf("%w: %v", risk.ErrInvalidInput, err)
		}
		return risk.Findings{}, fmt.Errorf("classify image: %w", err)
	}
	return *f, nil
}

// normalizeSignals resolves empty bands to green and treats negative traction
// counts as zero. Unknown band tokens are rejected.
func normalizeSignals(in risk.RiskSignals) (risk.RiskSignals, error) {
	clabsi, err := risk.ParseBand(string(in.ClabsiBand))
	if err != nil {
		return in, err
	}
	venous, err := risk.ParseBand(string(in.VenousResistanceBand))
	if err != nil {
		return in, err
	}
	in.TractionPullsRed = max(in.TractionPullsRed, 0)
	in.TractionPullsYellow = max(in.TractionPullsYellow, 0)
	in.ClabsiBand = clabsi
	in.VenousResistanceBand = venous
	return in, nil
}

func applyEvent(p *RiskPoint, marker string) error {
	switch marker {
	case "":
	case EventDressingChange:
		p.DressingChange = true
	case EventCatheterChange:
		p.CatheterChange = true
	case EventFlushing:
		p.Flushing = true
	default:
		return fmt.Errorf("%w: unknown event marker %q", risk.ErrInvalidInput, marker)
	}
	return nil
}

func (s *service) Trend(ctx context.Context, patientID uuid.UUID) (*TrendView, error) {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	stored, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	points := make([]trend.RiskPoint, len(stored))
	for i, p := range stored {
		points[i] = p.trendPoint()
	}
	return &TrendView{
		View:      trend.ProjectRiskSeries(points).View(),
		Analytics: trend.Analyze(points),
	}, nil
}
