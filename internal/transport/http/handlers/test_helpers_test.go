package http_handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/auth"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/mail"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/memory"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/security"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/flash"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/response"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/views"
)

const testHost = "http://example.com"

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *fakeMailer) SendAsync(_ context.Context, msg mail.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
}

type fakeAuditor struct {
	events []string
}

func (a *fakeAuditor) LoginSuccess(_ context.Context, userID, _, _ string) {
	a.events = append(a.events, "login_success:"+userID)
}
func (a *fakeAuditor) LoginFailed(_ context.Context, _, _, reason string) {
	a.events = append(a.events, "login_failed:"+reason)
}
func (a *fakeAuditor) Logout(_ context.Context, userID string) {
	a.events = append(a.events, "logout:"+userID)
}

type testEnv struct {
	h        *AuthHandler
	pages    *PageHandler
	svc      *auth.Service
	users    *memory.UserRepo
	sessions *memory.SessionStore
	tokens   *security.ConfirmTokenSigner
	mailer   *fakeMailer
	audit    *fakeAuditor
	flashes  *flash.Store
}

func newEnv(t *testing.T, confirmDisabled bool) *testEnv {
	t.Helper()

	v, err := views.New("Test", "/auth")
	if err != nil {
		t.Fatalf("views: %v", err)
	}

	env := &testEnv{
		users:    memory.NewUserRepo(),
		sessions: memory.NewSessionStore(),
		tokens:   security.NewConfirmTokenSigner("0123456789abcdef0123456789abcdef", "test", time.Hour),
		mailer:   &fakeMailer{},
		audit:    &fakeAuditor{},
		flashes:  flash.NewStore([]byte("0123456789abcdef0123456789abcdef"), false),
	}
	env.svc = auth.NewService(env.users, security.NewBcryptHasher(bcrypt.MinCost), env.tokens, env.sessions, env.mailer, auth.Config{
		SessionTTL:                time.Hour,
		EmailConfirmationDisabled: confirmDisabled,
		ConfirmURLBase:            testHost + "/auth/confirm/",
	})

	writeErr := response.HTMLError(v)
	env.h = NewAuthHandler(env.svc, v, env.flashes, env.audit, writeErr, Config{
		Prefix:     "/auth",
		SessionTTL: time.Hour,
	})
	env.pages = NewPageHandler(v, env.flashes, writeErr)
	return env
}

// seedUser creates a user directly in the repo.
func (e *testEnv) seedUser(t *testing.T, email, password string, admin, confirmed bool) domain.User {
	t.Helper()
	hash, err := security.NewBcryptHasher(bcrypt.MinCost).Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u, err := e.users.Create(context.Background(), domain.User{
		ID:             "id-" + email,
		Email:          email,
		PasswordHash:   hash,
		IsAdmin:        admin,
		EmailConfirmed: confirmed,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return u
}

func postForm(path string, vals url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, testHost+path, strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func get(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, testHost+path, nil)
}

func asUser(req *http.Request, u domain.User, tok string) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), u, tok))
}

// withURLParam injects chi URL param (e.g. /confirm/{token}) into request context.
func withURLParam(req *http.Request, key, val string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, val)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// readCookie finds cookie by name from response headers.
func readCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	var last *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			last = c
		}
	}
	return last
}

// flashesOf replays the flash cookie set by rr and returns queued messages.
func (e *testEnv) flashesOf(t *testing.T, rr *httptest.ResponseRecorder) []flash.Message {
	t.Helper()
	c := readCookie(rr, flash.CookieName)
	if c == nil {
		return nil
	}
	req := get("/")
	req.AddCookie(c)
	return e.flashes.Pop(httptest.NewRecorder(), req)
}

func expectRedirect(t *testing.T, rr *httptest.ResponseRecorder, want string) {
	t.Helper()
	if rr.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d body=%s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Location"); got != want {
		t.Fatalf("expected redirect to %q, got %q", want, got)
	}
}

func expectFlash(t *testing.T, got []flash.Message, category, text string) {
	t.Helper()
	for _, m := range got {
		if m.Category == category && m.Text == text {
			return
		}
	}
	t.Fatalf("expected flash %s %q, got %+v", category, text, got)
}
