package email

import (
	"context"
	"time"
)

// Message is a single outbound email.
type Message struct {
	To      string
	From    string // empty uses the sender default
	Subject string
	HTML    string
	Text    string
	ReplyTo string
}

// Receipt is what the provider reports for an accepted message.
type Receipt struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers email through a provider.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}
