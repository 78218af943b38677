package email

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/mail"
)

// LogSender writes emails to the log instead of delivering them.
// Used in development and as the sender behind tests.
type LogSender struct {
	lg zerolog.Logger

	mu   sync.Mutex
	sent []mail.Email
}

func NewLogSender(lg zerolog.Logger) *LogSender {
	return &LogSender{lg: lg.With().Str("component", "log_sender").Logger()}
}

func (s *LogSender) Send(_ context.Context, e mail.Email) error {
	s.mu.Lock()
	s.sent = append(s.sent, e)
	s.mu.Unlock()

	s.lg.Info().
		Str("to", e.To).
		Str("subject", e.Subject).
		Str("body", e.Text).
		Msg("email (not delivered)")
	return nil
}

// Sent returns a copy of everything passed to Send.
func (s *LogSender) Sent() []mail.Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]mail.Email, len(s.sent))
	copy(out, s.sent)
	return out
}
