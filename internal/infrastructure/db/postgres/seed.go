package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
)

type SeederHasher interface {
	Hash(password string) (string, error)
}

type SeederRepo interface {
	Create(ctx context.Context, u domain.User) (domain.User, error)
}

// SeedAdmin creates a confirmed admin account. Restart safe: an existing
// email is left untouched. Returns true when a user was created.
func SeedAdmin(ctx context.Context, repo SeederRepo, hasher SeederHasher, email, password string) bool {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return false
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("seed: hash failed")
		return false
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      true,
		CreatedAt:    now,
	}
	u.Confirm(now)

	if _, err := repo.Create(ctx, u); err != nil {
		if !domain.Is(err, "email_already_exists") {
			logger.Logger.Warn().Err(err).Msg("seed: create admin failed")
		}
		return false
	}

	logger.Logger.Info().Msg("seed: admin user created")
	return true
}
