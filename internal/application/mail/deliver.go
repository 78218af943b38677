package mail

import (
	"context"
	"fmt"
	"strings"
)

// Deliverer renders a Message and hands it to a Sender.
// Shared by the inline mailer and the queue consumers in cmd/mailer.
type Deliverer struct {
	renderer Renderer
	sender   Sender
}

func NewDeliverer(r Renderer, s Sender) *Deliverer {
	return &Deliverer{renderer: r, sender: s}
}

func (d *Deliverer) Deliver(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("mail: empty recipient")
	}
	if msg.Template == "" {
		return fmt.Errorf("mail: empty template")
	}

	text, html, err := d.renderer.Render(msg.Template, msg.Data)
	if err != nil {
		return fmt.Errorf("mail: render %s: %w", msg.Template, err)
	}

	return d.sender.Send(ctx, Email{
		To:      msg.To,
		Subject: msg.Subject,
		Text:    text,
		HTML:    html,
	})
}
