package patient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cathshield/internal/speech"
	"cathshield/internal/trend"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Patient, error)
	Get(ctx context.Context, id uuid.UUID) (*Detail, error)
	List(ctx context.Context) ([]Patient, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Patient, error)
	RecordConsent(ctx context.Context, req ConsentRequest) (*Consent, error)
	ConsentAudio(ctx context.Context, language string) ([]byte, error)
}

type service struct {
	repo   Repository
	speech speech.Synthesizer
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, synth speech.Synthesizer, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		speech: synth,
		logger: logger,
		now:    time.Now,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Patient, error) {
	if strings.TrimSpace(req.BedNumber) == "" || strings.TrimSpace(req.Initials) == "" {
		return nil, fmt.Errorf("%w: bed number and initials are required", ErrInvalidInput)
	}
	if req.InsertionDate.IsZero() {
		return nil, fmt.Errorf("%w: insertion date is required", ErrInvalidInput)
	}

	p := &Patient{
		ID:              uuid.New(),
		BedNumber:       req.BedNumber,
		Initials:        req.Initials,
		InsertionDate:   req.InsertionDate,
		PatientFactors:  req.PatientFactors,
		SafetyChecklist: req.SafetyChecklist,
		CreatedAt:       s.now().UTC(),
	}
	if req.WardID != "" {
		p.WardID = &req.WardID
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Patient created", zap.String("patient_id", p.ID.String()))
	return p, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{
		Patient: *p,
		Dwell:   trend.ComputeDwell(p.InsertionDate, s.now()),
	}, nil
}

func (s *service) List(ctx context.Context) ([]Patient, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Patient, error) {
	return s.repo.Update(ctx, id, req)
}

func (s *service) RecordConsent(ctx context.Context, req ConsentRequest) (*Consent, error) {
	if req.PatientID == "" {
		return nil, fmt.Errorf("%w: patient id is required", ErrInvalidInput)
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed patient id", ErrInvalidInput)
	}
	if _, err := s.repo.GetByID(ctx, patientID); err != nil {
		return nil, err
	}

	lang := req.AudioLanguageUsed
	if lang == "" {
		lang = DefaultConsentLanguage
	}
	c := &Consent{
		ID:                 uuid.New(),
		PatientID:          patientID,
		AudioLanguageUsed:  lang,
		AudioPlayed:        true,
		PlaybackFinishedAt: s.now().UTC(),
	}
	if err := s.repo.CreateConsent(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("Consent recorded",
		zap.String("patient_id", patientID.String()),
		zap.String("language", lang),
	)
	return c, nil
}

// ConsentAudio renders the consent script for language. An empty language
// selects English.
func (s *service) ConsentAudio(ctx context.Context, language string) ([]byte, error) {
	if language == "" {
		language = DefaultConsentLanguage
	}
	script, ok := ConsentScripts[language]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported consent language %q", ErrInvalidInput, language)
	}
	audio, err := s.speech.Synthesize(ctx, script, language)
	if err != nil {
		return nil, fmt.Errorf("synthesize consent audio: %w", err)
	}
	return audio, nil
}
