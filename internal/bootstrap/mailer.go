package bootstrap

import (
	"context"
	"fmt"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/mail"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/config"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/email"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/messaging/taskqueue"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/metrics"
)

// SiteName is shown in page titles and email footers.
const SiteName = "Account Service"

// NewDeliverer builds the render+send pipeline used by the inline mailer
// and by cmd/mailer.
func NewDeliverer(cfg *config.Config) (*mail.Deliverer, error) {
	renderer, err := email.NewMarkdownRenderer(SiteName)
	if err != nil {
		return nil, fmt.Errorf("mail templates: %w", err)
	}

	var sender mail.Sender
	switch cfg.EmailSender {
	case config.EmailSenderSMTP:
		sender = email.NewSMTPSender(email.SMTPConfig{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUsername,
			Password:  cfg.SMTPPassword,
			From:      cfg.SMTPFrom,
			Timeout:   cfg.MailTimeout,
			TLSPolicy: cfg.SMTPTLSPolicy,
		}, logger.Logger)
	default:
		sender = email.NewLogSender(logger.Logger)
	}
	return mail.NewDeliverer(renderer, sender), nil
}

// newMailer picks the outbound transport. The returned cleanup flushes or
// closes it.
func newMailer(cfg *config.Config) (mail.Mailer, func(), error) {
	switch cfg.MailTransport {
	case config.MailTransportRabbitMQ:
		p, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange, logger.Logger)
		if err != nil {
			if cfg.Env != "dev" {
				return nil, nil, err
			}
			logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; sending mail inline")
			return newInlineMailer(cfg)
		}
		return countingMailer{next: p, transport: config.MailTransportRabbitMQ}, func() { _ = p.Close() }, nil

	case config.MailTransportAsynq:
		c := taskqueue.NewClient(taskqueue.RedisOpt(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), logger.Logger)
		return countingMailer{next: c, transport: config.MailTransportAsynq}, func() { _ = c.Close() }, nil

	default:
		return newInlineMailer(cfg)
	}
}

func newInlineMailer(cfg *config.Config) (mail.Mailer, func(), error) {
	d, err := NewDeliverer(cfg)
	if err != nil {
		return nil, nil, err
	}
	m := mail.NewInlineMailer(d, cfg.MailTimeout, logger.Logger)
	return countingMailer{next: m, transport: config.MailTransportInline}, m.Wait, nil
}

// countingMailer records every message handed to a transport.
type countingMailer struct {
	next      mail.Mailer
	transport string
}

func (m countingMailer) SendAsync(ctx context.Context, msg mail.Message) {
	metrics.EmailsDispatchedTotal.WithLabelValues(m.transport).Inc()
	m.next.SendAsync(ctx, msg)
}
