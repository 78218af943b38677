package auth

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/mail"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// Confirm checks a confirmation token against the logged-in user.
// Bad signatures, expiry and email mismatch all collapse into ConfirmInvalid
// with a nil error; only storage failures are returned as errors.
func (s *Service) Confirm(ctx context.Context, u domain.User, token string) (ConfirmOutcome, error) {
	if u.EmailConfirmed {
		return ConfirmAlready, nil
	}

	email, err := s.tokens.Verify(token)
	if err != nil {
		s.audit(ctx, "confirm_failed", map[string]string{"user_id": u.ID, "reason": domainCode(err)})
		return ConfirmInvalid, nil
	}
	if domain.NormalizeEmail(email) != domain.NormalizeEmail(u.Email) {
		s.audit(ctx, "confirm_failed", map[string]string{"user_id": u.ID, "reason": "email_mismatch"})
		return ConfirmInvalid, nil
	}

	if err := s.users.MarkEmailConfirmed(ctx, u.ID, s.now()); err != nil {
		return ConfirmInvalid, err
	}

	s.audit(ctx, "email_confirmed", map[string]string{"user_id": u.ID})
	return ConfirmOK, nil
}

// ResendConfirmation mails a fresh link. Returns false without sending when
// the account is already confirmed.
func (s *Service) ResendConfirmation(ctx context.Context, u domain.User) (bool, error) {
	if u.EmailConfirmed {
		return false, nil
	}
	if err := s.sendConfirmation(ctx, u); err != nil {
		return false, err
	}
	s.audit(ctx, "confirmation_resent", map[string]string{"user_id": u.ID})
	return true, nil
}

func (s *Service) sendConfirmation(ctx context.Context, u domain.User) error {
	token, err := s.tokens.Generate(u.Email)
	if err != nil {
		return domain.ErrTokenSignFailed(err)
	}

	s.mailer.SendAsync(ctx, mail.Message{
		To:       u.Email,
		Subject:  ConfirmEmailSubject,
		Template: ConfirmEmailTemplate,
		Data: map[string]string{
			"token":       token,
			"user":        u.Email,
			"confirm_url": s.confirmURL(token),
		},
	})
	return nil
}
