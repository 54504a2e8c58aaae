package token

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

const refreshKeyPrefix = "refresh_token:"

// SessionStore remembers which refresh tokens are still usable. A refresh
// token is single use: it is deleted when it is rotated.
type SessionStore interface {
	Save(ctx context.Context, refreshToken, userID string, ttl time.Duration) error
	Lookup(ctx context.Context, refreshToken string) (string, error)
	Delete(ctx context.Context, refreshToken string) error
}

type redisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

func (s *redisSessionStore) Save(ctx context.Context, refreshToken, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, refreshKeyPrefix+refreshToken, userID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Lookup(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.client.Get(ctx, refreshKeyPrefix+refreshToken).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read refresh token: %w", err)
	}
	return userID, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, refreshToken string) error {
	return s.client.Del(ctx, refreshKeyPrefix+refreshToken).Err()
}

type memorySession struct {
	userID  string
	expires time.Time
}

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
}

// NewMemorySessionStore keeps sessions in process; used by tests and single
// node development runs.
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{sessions: make(map[string]memorySession)}
}

func (s *memorySessionStore) Save(_ context.Context, refreshToken, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[refreshToken] = memorySession{userID: userID, expires: time.Now().Add(ttl)}
	return nil
}

func (s *memorySessionStore) Lookup(_ context.Context, refreshToken string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[refreshToken]
	if !ok || time.Now().After(session.expires) {
		delete(s.sessions, refreshToken)
		return "", ErrSessionNotFound
	}
	return session.userID, nil
}

func (s *memorySessionStore) Delete(_ context.Context, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, refreshToken)
	return nil
}
