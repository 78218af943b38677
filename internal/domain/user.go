package domain

import (
	"strings"
	"time"
)

type User struct {
	ID               string
	Email            string
	PasswordHash     string
	IsAdmin          bool
	EmailConfirmed   bool
	EmailConfirmedAt *time.Time
	CreatedAt        time.Time
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Confirm marks the email as confirmed at the given instant.
func (u *User) Confirm(at time.Time) {
	u.EmailConfirmed = true
	t := at.UTC()
	u.EmailConfirmedAt = &t
}
