package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/security"
)

type sessionEntry struct {
	userID    string
	expiresAt time.Time
}

// SessionStore is the fallback auth.SessionStore used when Redis is
// unavailable. Sessions do not survive a restart.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]sessionEntry),
		now:      time.Now,
	}
}

func (s *SessionStore) Create(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", domain.ErrMissingField("user_id")
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	tok, err := security.NewOpaqueToken(security.SessionTokenBytes)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[tok] = sessionEntry{
		userID:    userID,
		expiresAt: s.now().Add(ttl),
	}
	s.sweepLocked()
	return tok, nil
}

func (s *SessionStore) GetUserID(ctx context.Context, token string) (string, error) {
	s.mu.RLock()
	entry, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return "", domain.ErrSessionInvalid()
	}
	if s.now().After(entry.expiresAt) {
		_ = s.Delete(ctx, token)
		return "", domain.ErrSessionInvalid()
	}
	return entry.userID, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token) // idempotent
	return nil
}

// sweepLocked drops expired sessions so abandoned logins do not accumulate.
func (s *SessionStore) sweepLocked() {
	now := s.now()
	for tok, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, tok)
		}
	}
}
