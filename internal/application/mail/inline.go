package mail

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// InlineMailer delivers each message on its own goroutine.
// The request context is not propagated: a finished request must not cancel
// an in-flight send.
type InlineMailer struct {
	deliverer *Deliverer
	timeout   time.Duration
	log       zerolog.Logger

	wg sync.WaitGroup
}

func NewInlineMailer(d *Deliverer, timeout time.Duration, log zerolog.Logger) *InlineMailer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &InlineMailer{deliverer: d, timeout: timeout, log: log}
}

func (m *InlineMailer) SendAsync(_ context.Context, msg Message) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		if err := m.deliverer.Deliver(ctx, msg); err != nil {
			m.log.Error().
				Err(err).
				Str("template", msg.Template).
				Msg("email send failed")
			return
		}
		m.log.Debug().Str("template", msg.Template).Msg("email sent")
	}()
}

// Wait blocks until all in-flight sends finish. Used on shutdown.
func (m *InlineMailer) Wait() { m.wg.Wait() }
