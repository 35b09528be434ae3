package email

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SMTPConfig configures SMTPSender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers mail through an SMTP relay with PLAIN auth.
type SMTPSender struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender creates a sender for the relay in cfg.
// PRE: cfg.Host and cfg.From are set
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPSender{cfg: cfg, send: smtp.SendMail}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	from := msg.From
	if from == "" {
		from = s.cfg.From
	}
	id := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.cfg.Host)
	body := buildMIME(from, msg, id, time.Now())

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	if err := s.send(addr, auth, envelopeAddress(from), []string{msg.To}, body); err != nil {
		return Receipt{}, fmt.Errorf("smtp send failed: %w", err)
	}

	slog.Info("smtp_sent", "message_id", id, "subject", msg.Subject)
	return Receipt{MessageID: id, SentAt: time.Now()}, nil
}

// envelopeAddress strips a display name: "Academy <qa@x.com>" -> "qa@x.com".
func envelopeAddress(from string) string {
	if i := strings.LastIndexByte(from, '<'); i >= 0 {
		if j := strings.IndexByte(from[i:], '>'); j > 0 {
			return from[i+1 : i+j]
		}
	}
	return strings.TrimSpace(from)
}

func buildMIME(from string, msg Message, messageID string, now time.Time) []byte {
	const boundary = "academy-alt-boundary"
	var b strings.Builder
	header := func(k, v string) { b.WriteString(k + ": " + v + "\r\n") }

	header("From", from)
	header("To", msg.To)
	if msg.ReplyTo != "" {
		header("Reply-To", msg.ReplyTo)
	}
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", messageID)
	header("MIME-Version", "1.0")
	header("Content-Type", `multipart/alternative; boundary="`+boundary+`"`)
	b.WriteString("\r\n")

	for _, part := range []struct{ ctype, body string }{
		{"text/plain", msg.Text},
		{"text/html", msg.HTML},
	} {
		if part.body == "" {
			continue
		}
		b.WriteString("--" + boundary + "\r\n")
		header("Content-Type", part.ctype+`; charset="utf-8"`)
		b.WriteString("\r\n")
		b.WriteString(strings.ReplaceAll(part.body, "\n", "\r\n"))
		b.WriteString("\r\n")
	}
	b.WriteString("--" + boundary + "--\r\n")
	return []byte(b.String())
}
