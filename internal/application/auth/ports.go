package auth

import (
	"context"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/mail"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

/*
UserRepo
--------
Persistence port for users.
Only describes WHAT the account service needs, not HOW it's stored.
Email lookups are case-insensitive.
*/
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)
	MarkEmailConfirmed(ctx context.Context, userID string, at time.Time) error
}

/*
PasswordHasher
--------------
Abstracts bcrypt.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
ConfirmTokens
-------------
Signed, time-limited tokens that carry an email address.
Verify returns the embedded email or a domain error
(confirm_token_invalid / confirm_token_expired).
*/
type ConfirmTokens interface {
	Generate(email string) (string, error)
	Verify(token string) (email string, err error)
}

/*
SessionStore
------------
Server-side login sessions keyed by an opaque cookie token.
Backed by Redis or memory.
*/
type SessionStore interface {
	Create(ctx context.Context, userID string, ttl time.Duration) (token string, err error)
	GetUserID(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

// Mailer is the outbound email port; see package mail.
type Mailer = mail.Mailer
