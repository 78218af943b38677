package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/security"
)

// SessionStore implements auth.SessionStore using Redis:
// - Session token is opaque (random, 256-bit).
// - Redis stores: sess:<token> -> <uid> with TTL
type SessionStore struct {
	rdb *goredis.Client

	prefix     string
	tokenBytes int
}

func NewSessionStore(c *Client) *SessionStore {
	var rdb *goredis.Client
	if c != nil {
		rdb = c.rdb
	}
	return &SessionStore{
		rdb:        rdb,
		prefix:     "sess:",
		tokenBytes: security.SessionTokenBytes,
	}
}

var errNotConfigured = errors.New("redis session store not configured")

func (s *SessionStore) Create(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", domain.ErrMissingField("user_id")
	}
	if s.rdb == nil {
		return "", domain.ErrRedisUnavailable(errNotConfigured)
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	token, err := security.NewOpaqueToken(s.tokenBytes)
	if err != nil {
		return "", err
	}

	// NX: a colliding token must never hijack another session
	ok, err := s.rdb.SetNX(ctx, s.prefix+token, userID, ttl).Result()
	if err != nil {
		return "", domain.ErrRedisUnavailable(err)
	}
	if !ok {
		return "", domain.ErrRandomFailed(errors.New("session token collision"))
	}
	return token, nil
}

func (s *SessionStore) GetUserID(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrSessionInvalid()
	}
	if s.rdb == nil {
		return "", domain.ErrRedisUnavailable(errNotConfigured)
	}

	uid, err := s.rdb.Get(ctx, s.prefix+token).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", domain.ErrSessionInvalid()
		}
		return "", domain.ErrRedisUnavailable(err)
	}
	if strings.TrimSpace(uid) == "" {
		return "", domain.ErrSessionInvalid()
	}
	return uid, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		// idempotent
		return nil
	}
	if s.rdb == nil {
		return domain.ErrRedisUnavailable(errNotConfigured)
	}
	if err := s.rdb.Del(ctx, s.prefix+token).Err(); err != nil {
		return domain.ErrRedisUnavailable(err)
	}
	return nil
}
