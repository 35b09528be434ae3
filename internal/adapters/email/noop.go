package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// NoopSender logs messages instead of delivering them. Sent messages are kept so
// tests can inspect them.
type NoopSender struct {
	mu   sync.Mutex
	sent []Message
}

var _ Sender = (*NoopSender)(nil)

func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

func (s *NoopSender) Send(_ context.Context, msg Message) (Receipt, error) {
	slog.Info("noop_email_send", "subject", msg.Subject)
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	return Receipt{
		MessageID: fmt.Sprintf("noop-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}

// Sent returns a copy of every message passed to Send.
func (s *NoopSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}
