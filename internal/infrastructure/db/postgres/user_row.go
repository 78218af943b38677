package postgres

import (
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

const userColumns = `id, email, password_hash, is_admin, email_confirmed, email_confirmed_at, created_at`

type userRow struct {
	ID               string
	Email            string
	PasswordHash     string
	IsAdmin          bool
	EmailConfirmed   bool
	EmailConfirmedAt *time.Time
	CreatedAt        time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserRow(row rowScanner) (userRow, error) {
	var ur userRow
	err := row.Scan(
		&ur.ID,
		&ur.Email,
		&ur.PasswordHash,
		&ur.IsAdmin,
		&ur.EmailConfirmed,
		&ur.EmailConfirmedAt,
		&ur.CreatedAt,
	)
	return ur, err
}

func (ur userRow) toDomain() domain.User {
	return domain.User{
		ID:               ur.ID,
		Email:            ur.Email,
		PasswordHash:     ur.PasswordHash,
		IsAdmin:          ur.IsAdmin,
		EmailConfirmed:   ur.EmailConfirmed,
		EmailConfirmedAt: ur.EmailConfirmedAt,
		CreatedAt:        ur.CreatedAt,
	}
}
