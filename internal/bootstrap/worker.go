package bootstrap

import (
	"context"
	"fmt"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/mail"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/config"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/messaging/taskqueue"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
)

// Worker is the lifecycle cmd/mailer drives.
type Worker interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type WorkerDeps struct {
	LoadConfig   func() (*config.Config, error)
	NewDeliverer func(cfg *config.Config) (*mail.Deliverer, error)
}

// NewWorker builds the queue consumer that sends mail published by the API.
func NewWorker() (Worker, func(), error) {
	return newWorker(WorkerDeps{
		LoadConfig:   config.LoadMailer,
		NewDeliverer: NewDeliverer,
	})
}

func newWorker(deps WorkerDeps) (Worker, func(), error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	d, err := deps.NewDeliverer(cfg)
	if err != nil {
		return nil, nil, err
	}

	switch cfg.MailTransport {
	case config.MailTransportRabbitMQ:
		c := rabbitmq.NewConsumer(rabbitmq.Config{
			RabbitURL: cfg.RabbitURL,
			Exchange:  cfg.RabbitExchange,
			Queue:     cfg.RabbitQueue,
			Prefetch:  8,
			Tag:       "account-mailer",
		}, d, logger.Logger)
		return c, func() {}, nil

	case config.MailTransportAsynq:
		w := taskqueue.NewWorker(
			taskqueue.RedisOpt(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB),
			4, d, logger.Logger,
		)
		return asynqWorker{w}, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("MAIL_TRANSPORT=%s sends from the API process; nothing to consume", cfg.MailTransport)
	}
}

// asynqWorker adapts taskqueue.Worker to Worker.
type asynqWorker struct{ w *taskqueue.Worker }

func (a asynqWorker) Start(context.Context) error { return a.w.Start() }

func (a asynqWorker) Stop(context.Context) error {
	a.w.Shutdown()
	return nil
}
