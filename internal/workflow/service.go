package workflow

import (
	"context"

	"go.uber.org/zap"
)

// Service drives sessions through the gate and persists every mutation.
type Service interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
	Advance(ctx context.Context, sessionID, stage string) (*Session, error)
	SetPatient(ctx context.Context, sessionID, patientID string) (*Session, error)
	CanAccess(ctx context.Context, sessionID, stage string) (bool, error)
	Reset(ctx context.Context, sessionID string) (*Session, error)
}

type service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) Service {
	return &service{store: store, logger: logger}
}

func (s *service) Get(ctx context.Context, sessionID string) (*Session, error) {
	return s.store.Load(ctx, sessionID)
}

func (s *service) Advance(ctx context.Context, sessionID, stage string) (*Session, error) {
	target, err := ParseStage(stage)
	if err != nil {
		return nil, err
	}
	sess, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	from := sess.Stage
	if err := sess.AdvanceTo(target); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sessionID, sess); err != nil {
		return nil, err
	}

	if sess.Stage != from {
		s.logger.Debug("Workflow advanced",
			zap.String("session_id", sessionID),
			zap.String("from", string(from)),
			zap.String("to", string(sess.Stage)),
		)
	}
	return sess, nil
}

func (s *service) SetPatient(ctx context.Context, sessionID, patientID string) (*Session, error) {
	sess, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.SetPatientID(patientID)
	if err := s.store.Save(ctx, sessionID, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *service) CanAccess(ctx context.Context, sessionID, stage string) (bool, error) {
	required, err := ParseStage(stage)
	if err != nil {
		return false, err
	}
	sess, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return sess.CanAccess(required)
}

// Reset returns the session to the first stage and drops the stored state.
func (s *service) Reset(ctx context.Context, sessionID string) (*Session, error) {
	sess := NewSession()
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return nil, err
	}
	return sess, nil
}
