package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

const (
	ConfirmEmailSubject  = "Please confirm your email"
	ConfirmEmailTemplate = "auth/emails/activate_user"
)

type Service struct {
	users    UserRepo
	hasher   PasswordHasher
	tokens   ConfirmTokens
	sessions SessionStore
	mailer   Mailer

	sessionTTL           time.Duration
	confirmationDisabled bool
	confirmURLBase       string // e.g. https://app.example.com/auth/confirm/
	now                  func() time.Time
	audit                func(ctx context.Context, action string, fields map[string]string)

	dummyOnce sync.Once
	dummyHash string
}

type Config struct {
	SessionTTL time.Duration
	// EmailConfirmationDisabled confirms new accounts immediately and skips mail.
	EmailConfirmationDisabled bool
	// ConfirmURLBase is prefixed to the token to build the link in the email.
	ConfirmURLBase string
}

func NewService(
	users UserRepo,
	hasher PasswordHasher,
	tokens ConfirmTokens,
	sessions SessionStore,
	mailer Mailer,
	cfg Config,
) *Service {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Service{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		sessions: sessions,
		mailer:   mailer,

		sessionTTL:           ttl,
		confirmationDisabled: cfg.EmailConfirmationDisabled,
		confirmURLBase:       cfg.ConfirmURLBase,
		now:                  time.Now,
		audit:                func(context.Context, string, map[string]string) {},
	}
}

func (s *Service) WithAudit(fn func(ctx context.Context, action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

// WithClock overrides the time source (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

type RegisterResult struct {
	User         domain.User
	SessionToken string
	// ConfirmationSent is true when a confirmation email was dispatched.
	ConfirmationSent bool
}

type LoginResult struct {
	User         domain.User
	SessionToken string
}

// ConfirmOutcome is the result of following a confirmation link.
type ConfirmOutcome int

const (
	ConfirmInvalid ConfirmOutcome = iota
	ConfirmAlready
	ConfirmOK
)

func (s *Service) confirmURL(token string) string {
	if s.confirmURLBase == "" {
		return token
	}
	if strings.HasSuffix(s.confirmURLBase, "/") {
		return s.confirmURLBase + token
	}
	return s.confirmURLBase + "/" + token
}
