package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/mail"
)

// Handler is what the worker calls for every decoded message.
type Handler interface {
	Deliver(ctx context.Context, msg mail.Message) error
}

// Worker runs the asynq server that drains the mail queue.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	handler Handler
	lg      zerolog.Logger
}

func NewWorker(opt asynq.RedisConnOpt, concurrency int, h Handler, lg zerolog.Logger) *Worker {
	if concurrency <= 0 {
		concurrency = 4
	}
	w := &Worker{
		server: asynq.NewServer(opt, asynq.Config{
			Concurrency: concurrency,
			Queues:      map[string]int{QueueMail: 1},
		}),
		mux:     asynq.NewServeMux(),
		handler: h,
		lg:      lg.With().Str("component", "asynq_worker").Logger(),
	}
	w.mux.HandleFunc(TaskSendEmail, w.handleSendEmail)
	return w
}

// Start runs the server in background goroutines.
func (w *Worker) Start() error {
	return w.server.Start(w.mux)
}

func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleSendEmail(ctx context.Context, task *asynq.Task) error {
	var msg mail.Message
	if err := json.Unmarshal(task.Payload(), &msg); err != nil {
		w.lg.Error().Err(err).Msg("bad payload; dropping")
		return fmt.Errorf("decode %s: %v: %w", TaskSendEmail, err, asynq.SkipRetry)
	}

	if err := w.handler.Deliver(ctx, msg); err != nil {
		w.lg.Error().Err(err).Str("template", msg.Template).Msg("email send failed")
		return err
	}
	w.lg.Info().Str("template", msg.Template).Msg("email sent")
	return nil
}
