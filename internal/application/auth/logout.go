package auth

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// Logout destroys the server-side session.
// If the session token is missing/empty, it becomes a no-op.
func (s *Service) Logout(ctx context.Context, sessionToken string) error {
	if sessionToken == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionToken)
}

// CurrentUser resolves a session token to its user.
// Returns session_invalid when the token is unknown, expired or points at a
// user that no longer exists.
func (s *Service) CurrentUser(ctx context.Context, sessionToken string) (domain.User, error) {
	if sessionToken == "" {
		return domain.User{}, domain.ErrSessionInvalid()
	}

	userID, err := s.sessions.GetUserID(ctx, sessionToken)
	if err != nil {
		return domain.User{}, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			_ = s.sessions.Delete(ctx, sessionToken)
			return domain.User{}, domain.ErrSessionInvalid()
		}
		return domain.User{}, err
	}
	return u, nil
}
