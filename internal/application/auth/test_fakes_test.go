package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/mail"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byID    map[string]domain.User
	byEmail map[string]domain.User

	// injected errors (if set, method returns error)
	getByIDErr    error
	getByEmailErr error
	createErr     error
	confirmErr    error

	confirmed []string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    map[string]domain.User{},
		byEmail: map[string]domain.User{},
	}
}

func (f *fakeUserRepo) put(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
	f.byEmail[strings.ToLower(u.Email)] = u
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByEmailErr != nil {
		return domain.User{}, f.getByEmailErr
	}
	u, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByIDErr != nil {
		return domain.User{}, f.getByIDErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUserRepo) MarkEmailConfirmed(ctx context.Context, userID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.confirmErr != nil {
		return f.confirmErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.Confirm(at)
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	f.confirmed = append(f.confirmed, userID)
	return nil
}

type fakeHasher struct {
	hashFn    func(pw string) (string, error)
	compareFn func(hash, pw string) error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(password)
	}
	return "hash:" + password, nil
}

func (h *fakeHasher) Compare(hash string, password string) error {
	if h.compareFn != nil {
		return h.compareFn(hash, password)
	}
	if hash == "hash:"+password {
		return nil
	}
	return errors.New("mismatch")
}

// fakeTokens encodes "tok:<email>"; "expired:<email>" verifies as expired.
type fakeTokens struct {
	genErr error
}

func (f *fakeTokens) Generate(email string) (string, error) {
	if f.genErr != nil {
		return "", f.genErr
	}
	return "tok:" + email, nil
}

func (f *fakeTokens) Verify(token string) (string, error) {
	switch {
	case strings.HasPrefix(token, "tok:"):
		return strings.TrimPrefix(token, "tok:"), nil
	case strings.HasPrefix(token, "expired:"):
		return "", domain.ErrConfirmTokenExpired()
	default:
		return "", domain.ErrConfirmTokenInvalid()
	}
}

type fakeSessions struct {
	mu sync.Mutex

	byToken map[string]string // session token -> userID
	ttls    []time.Duration

	createErr error
	getErr    error
	deleteErr error

	deleted []string
	seq     int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byToken: map[string]string{}}
}

func (s *fakeSessions) Create(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return "", s.createErr
	}
	s.seq++
	tok := "sess:" + userID + ":" + string(rune('a'+s.seq))
	s.byToken[tok] = userID
	s.ttls = append(s.ttls, ttl)
	return tok, nil
}

func (s *fakeSessions) GetUserID(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.getErr != nil {
		return "", s.getErr
	}
	uid, ok := s.byToken[token]
	if !ok {
		return "", domain.ErrSessionInvalid()
	}
	return uid, nil
}

func (s *fakeSessions) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.byToken, token)
	s.deleted = append(s.deleted, token)
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *fakeMailer) SendAsync(ctx context.Context, msg mail.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

/*
Test fixture
*/

type testEnv struct {
	svc      *Service
	users    *fakeUserRepo
	hasher   *fakeHasher
	tokens   *fakeTokens
	sessions *fakeSessions
	mailer   *fakeMailer
	audits   *[]auditEntry
	now      time.Time
}

func newSvcForTest(t *testing.T, cfg Config) testEnv {
	t.Helper()

	env := testEnv{
		users:    newFakeUserRepo(),
		hasher:   &fakeHasher{},
		tokens:   &fakeTokens{},
		sessions: newFakeSessions(),
		mailer:   &fakeMailer{},
		audits:   &[]auditEntry{},
		now:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	var mu sync.Mutex
	env.svc = NewService(env.users, env.hasher, env.tokens, env.sessions, env.mailer, cfg).
		WithClock(func() time.Time { return env.now }).
		WithAudit(func(ctx context.Context, action string, fields map[string]string) {
			mu.Lock()
			defer mu.Unlock()
			*env.audits = append(*env.audits, auditEntry{action: action, fields: fields})
		})
	return env
}

func (e testEnv) hasAudit(action string) bool {
	for _, a := range *e.audits {
		if a.action == action {
			return true
		}
	}
	return false
}
