// Command mailer drains the mail queue (RabbitMQ or asynq) and sends the
// confirmation emails the API publishes.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/bootstrap"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
)

type builder func() (bootstrap.Worker, func(), error)

// Run starts the worker and blocks until a signal arrives. It returns the
// process exit code.
func Run(build builder, sigCh <-chan os.Signal, lg zerolog.Logger) int {
	w, cleanup, err := build()
	if err != nil {
		lg.Error().Err(err).Msg("bootstrap failed")
		return 1
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		lg.Error().Err(err).Msg("mailer failed to start")
		return 1
	}
	lg.Info().Msg("account-mailer started")

	sig := <-sigCh
	lg.Info().Str("signal", sig.String()).Msg("shutdown signal received")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer stopCancel()

	if err := w.Stop(stopCtx); err != nil {
		lg.Error().Err(err).Msg("graceful stop failed")
		return 1
	}

	lg.Info().Msg("shutdown complete")
	return 0
}

func main() {
	logger.Init()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	os.Exit(Run(bootstrap.NewWorker, sigCh, logger.Logger))
}
