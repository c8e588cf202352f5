package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Store loads and persists session state. Load returns a fresh session when
// nothing usable is stored.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Session, error)
	Save(ctx context.Context, sessionID string, s *Session) error
	Delete(ctx context.Context, sessionID string) error
}

type redisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) Store {
	return &redisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *redisStore) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *redisStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	val, err := r.client.Get(ctx, r.key(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return NewSession(), nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	s, ok := decodeSession([]byte(val))
	if !ok {
		r.logger.Warn("Discarding unreadable workflow state",
			zap.String("session_id", sessionID),
		)
		if err := r.Delete(ctx, sessionID); err != nil {
			return nil, err
		}
		return NewSession(), nil
	}
	return s, nil
}

func (r *redisStore) Save(ctx context.Context, sessionID string, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *redisStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// decodeSession rejects payloads that do not parse or carry an unknown stage.
func decodeSession(data []byte) (*Session, bool) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, false
	}
	if _, err := s.Stage.Index(); err != nil {
		return nil, false
	}
	return &s, true
}

// MemoryStore keeps sessions in process. Used when no redis address is
// configured.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.sessions[sessionID]
	if !ok {
		return NewSession(), nil
	}
	s, ok := decodeSession(data)
	if !ok {
		delete(m.sessions, sessionID)
		return NewSession(), nil
	}
	return s, nil
}

func (m *MemoryStore) Save(_ context.Context, sessionID string, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	m.mu.Lock()
	m.sessions[sessionID] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	return nil
}
