package redis

import (
	"context"
	"testing"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

func TestSessionStore_RedisNil(t *testing.T) {
	s := NewSessionStore(nil)

	if _, err := s.Create(context.Background(), "u1", time.Hour); !domain.Is(err, "redis_unavailable") {
		t.Fatalf("expected redis_unavailable, got %v", err)
	}
	if _, err := s.GetUserID(context.Background(), "tok"); !domain.Is(err, "redis_unavailable") {
		t.Fatalf("expected redis_unavailable, got %v", err)
	}
	if err := s.Delete(context.Background(), "tok"); !domain.Is(err, "redis_unavailable") {
		t.Fatalf("expected redis_unavailable, got %v", err)
	}
}

func TestSessionStore_Create_MissingUser(t *testing.T) {
	s := NewSessionStore(nil)

	_, err := s.Create(context.Background(), "  ", time.Hour)
	if !isMissingField(err, "user_id") {
		t.Fatalf("expected missing_field(user_id), got %v", err)
	}
}

func TestSessionStore_CreateGetDelete(t *testing.T) {
	c, mr := newTestClient(t)
	s := NewSessionStore(c)
	ctx := context.Background()

	tok, err := s.Create(ctx, "u1", time.Hour)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(tok) < 40 {
		t.Fatalf("expected 256-bit token, got %q", tok)
	}

	key := "sess:" + tok
	if !mr.Exists(key) {
		t.Fatalf("expected key %s", key)
	}
	if ttl := mr.TTL(key); ttl != time.Hour {
		t.Fatalf("expected ttl 1h, got %v", ttl)
	}

	uid, err := s.GetUserID(ctx, tok)
	if err != nil || uid != "u1" {
		t.Fatalf("expected u1, got %q %v", uid, err)
	}

	if err := s.Delete(ctx, tok); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetUserID(ctx, tok); !domain.Is(err, "session_invalid") {
		t.Fatalf("expected session_invalid after delete, got %v", err)
	}

	// idempotent
	if err := s.Delete(ctx, tok); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if err := s.Delete(ctx, ""); err != nil {
		t.Fatalf("empty delete: %v", err)
	}
}

func TestSessionStore_Expiry(t *testing.T) {
	c, mr := newTestClient(t)
	s := NewSessionStore(c)
	ctx := context.Background()

	tok, err := s.Create(ctx, "u1", time.Minute)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := s.GetUserID(ctx, tok); !domain.Is(err, "session_invalid") {
		t.Fatalf("expected session_invalid after expiry, got %v", err)
	}
}

func TestSessionStore_DefaultTTL(t *testing.T) {
	c, mr := newTestClient(t)
	s := NewSessionStore(c)

	tok, err := s.Create(context.Background(), "u1", 0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ttl := mr.TTL("sess:" + tok); ttl != 7*24*time.Hour {
		t.Fatalf("expected 7d default ttl, got %v", ttl)
	}
}

func TestSessionStore_GetUserID_EmptyToken(t *testing.T) {
	c, _ := newTestClient(t)
	s := NewSessionStore(c)

	if _, err := s.GetUserID(context.Background(), "  "); !domain.Is(err, "session_invalid") {
		t.Fatalf("expected session_invalid, got %v", err)
	}
}

func TestSessionStore_ServerDown(t *testing.T) {
	c, mr := newTestClient(t)
	s := NewSessionStore(c)
	mr.Close()

	if _, err := s.GetUserID(context.Background(), "tok"); !domain.Is(err, "redis_unavailable") {
		t.Fatalf("expected redis_unavailable, got %v", err)
	}
}
