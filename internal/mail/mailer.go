package mail

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Message is a rendered email.
type Message struct {
	To       string    `json:"to"`
	Subject  string    `json:"subject"`
	Template string    `json:"template"`
	HTML     string    `json:"-"`
	SentAt   time.Time `json:"sentAt"`
}

// Mailer delivers rendered messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer "delivers" by logging and keeping the message in memory.
type LogMailer struct {
	mu     sync.Mutex
	outbox []Message
	limit  int
}

// NewLogMailer keeps at most limit messages; older ones are discarded.
func NewLogMailer(limit int) *LogMailer {
	if limit <= 0 {
		limit = 100
	}
	return &LogMailer{limit: limit}
}

// Send implements Mailer.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg.SentAt = time.Now()

	m.mu.Lock()
	m.outbox = append(m.outbox, msg)
	if len(m.outbox) > m.limit {
		m.outbox = m.outbox[len(m.outbox)-m.limit:]
	}
	m.mu.Unlock()

	log.Info().Str("to", msg.To).Str("template", msg.Template).Str("subject", msg.Subject).Int("bytes", len(msg.HTML)).Msg("Email sent")
	return nil
}

// Sent returns a copy of the outbox, oldest first.
func (m *LogMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.outbox))
	copy(out, m.outbox)
	return out
}
