package mail

import "context"

// Message is a request to send a templated email. It is the payload that
// crosses the queue when delivery is deferred to cmd/mailer.
type Message struct {
	To       string            `json:"to"`
	Subject  string            `json:"subject"`
	Template string            `json:"template"`
	Data     map[string]string `json:"data,omitempty"`
}

// Email is a fully rendered message ready for a Sender.
type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

/*
Mailer
------
Fire-and-forget dispatch. Implementations never block the caller on SMTP and
never retry; failures are logged by the implementation.
*/
type Mailer interface {
	SendAsync(ctx context.Context, msg Message)
}

// Renderer turns a template name plus data into text and HTML bodies.
type Renderer interface {
	Render(name string, data map[string]string) (text string, html string, err error)
}

// Sender performs the actual delivery (SMTP, log, ...).
type Sender interface {
	Send(ctx context.Context, e Email) error
}
