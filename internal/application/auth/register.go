package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// Register creates a non-admin account, opens a session for it and either
// confirms it on the spot (confirmation disabled) or mails a confirmation link.
// An existing email is reported as email_already_exists so the handler can
// show it as a form error.
func (s *Service) Register(ctx context.Context, email, password string) (RegisterResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return RegisterResult{}, domain.ErrMissingField("email")
	}
	if password == "" {
		return RegisterResult{}, domain.ErrMissingField("password")
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return RegisterResult{}, domain.ErrEmailAlreadyExists()
	case !domain.Is(err, "user_not_found"):
		return RegisterResult{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return RegisterResult{}, domain.ErrHashFailed(err)
	}

	u := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      false,
		CreatedAt:    s.now().UTC(),
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return RegisterResult{}, err
	}

	token, err := s.sessions.Create(ctx, created.ID, s.sessionTTL)
	if err != nil {
		return RegisterResult{}, err
	}

	s.audit(ctx, "register", map[string]string{"user_id": created.ID, "email": created.Email})

	res := RegisterResult{User: created, SessionToken: token}

	if s.confirmationDisabled {
		at := s.now()
		if err := s.users.MarkEmailConfirmed(ctx, created.ID, at); err != nil {
			return RegisterResult{}, err
		}
		res.User.Confirm(at)
		return res, nil
	}

	if err := s.sendConfirmation(ctx, created); err != nil {
		return RegisterResult{}, err
	}
	res.ConfirmationSent = true
	return res, nil
}
