package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

type fakeSeederHasher struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (h *fakeSeederHasher) Hash(pw string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	if h.err != nil {
		return "", h.err
	}
	return "HASH(" + pw + ")", nil
}

type fakeSeederRepo struct {
	mu      sync.Mutex
	created []domain.User
	err     error
}

func (r *fakeSeederRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.User{}, r.err
	}
	r.created = append(r.created, u)
	return u, nil
}

func TestSeedAdmin_CreatesConfirmedAdmin(t *testing.T) {
	t.Parallel()

	repo := &fakeSeederRepo{}
	hasher := &fakeSeederHasher{}

	if !SeedAdmin(context.Background(), repo, hasher, " Admin@Example.com ", "AdminPassword123!") {
		t.Fatalf("expected admin created")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 user created, got %d", len(repo.created))
	}

	u := repo.created[0]
	if u.ID == "" {
		t.Fatalf("expected non-empty id")
	}
	if u.Email != "admin@example.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}
	if u.PasswordHash != "HASH(AdminPassword123!)" {
		t.Fatalf("unexpected hash %q", u.PasswordHash)
	}
	if !u.IsAdmin {
		t.Fatalf("expected IsAdmin=true")
	}
	if !u.EmailConfirmed || u.EmailConfirmedAt == nil {
		t.Fatalf("expected confirmed admin")
	}
}

func TestSeedAdmin_NoCredentials_Skips(t *testing.T) {
	t.Parallel()

	repo := &fakeSeederRepo{}
	hasher := &fakeSeederHasher{}

	if SeedAdmin(context.Background(), repo, hasher, "", "pw") {
		t.Fatalf("expected skip without email")
	}
	if SeedAdmin(context.Background(), repo, hasher, "a@b.com", "") {
		t.Fatalf("expected skip without password")
	}
	if hasher.calls != 0 {
		t.Fatalf("hasher should not be called")
	}
}

func TestSeedAdmin_DuplicateIgnored(t *testing.T) {
	t.Parallel()

	repo := &fakeSeederRepo{err: domain.ErrEmailAlreadyExists()}

	if SeedAdmin(context.Background(), repo, &fakeSeederHasher{}, "a@b.com", "pw") {
		t.Fatalf("expected false on duplicate")
	}
}

func TestSeedAdmin_HashFail_Skips(t *testing.T) {
	t.Parallel()

	repo := &fakeSeederRepo{}
	hasher := &fakeSeederHasher{err: errors.New("hash fail")}

	if SeedAdmin(context.Background(), repo, hasher, "a@b.com", "pw") {
		t.Fatalf("expected false on hash failure")
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected 0 created, got %d", len(repo.created))
	}
}
