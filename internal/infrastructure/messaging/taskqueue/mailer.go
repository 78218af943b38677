package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/mail"
)

const (
	TaskSendEmail = "email:send"
	QueueMail     = "mail"

	enqueueTimeout = 2 * time.Second
)

// RedisOpt builds the asynq connection options shared by client and server.
func RedisOpt(addr, password string, db int) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: addr, Password: password, DB: db}
}

func newSendTask(msg mail.Message) (*asynq.Task, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(TaskSendEmail, body, asynq.Queue(QueueMail), asynq.MaxRetry(0)), nil
}

// Client implements mail.Mailer by enqueueing a task per message.
type Client struct {
	client *asynq.Client
	lg     zerolog.Logger
}

func NewClient(opt asynq.RedisConnOpt, lg zerolog.Logger) *Client {
	return &Client{
		client: asynq.NewClient(opt),
		lg:     lg.With().Str("component", "asynq_mailer").Logger(),
	}
}

func (c *Client) SendAsync(ctx context.Context, msg mail.Message) {
	task, err := newSendTask(msg)
	if err != nil {
		c.lg.Error().Err(err).Msg("email enqueue failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enqueueTimeout)
	defer cancel()

	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		c.lg.Error().Err(err).Str("template", msg.Template).Msg("email enqueue failed")
		return
	}
	c.lg.Debug().Str("task_id", info.ID).Msg("email enqueued")
}

func (c *Client) Close() error {
	return c.client.Close()
}
