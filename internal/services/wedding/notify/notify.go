// Package notify delivers outbound email.
package notify

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/louisbranch/wedding.rsvp/internal/platform/logging"
)

// ErrNoRecipients indicates a message without a destination.
var ErrNoRecipients = errors.New("message has no recipients")

// Message is one email.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Recipients returns the trimmed, non-empty addresses.
func (m Message) Recipients() []string {
	out := make([]string, 0, len(m.To))
	for _, to := range m.To {
		if to = strings.TrimSpace(to); to != "" {
			out = append(out, to)
		}
	}
	return out
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender logs messages instead of delivering them. It stands in when
// SMTP is not configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender builds a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logging.OrNop(logger)}
}

// Send implements Sender.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	to := msg.Recipients()
	if len(to) == 0 {
		return ErrNoRecipients
	}
	s.logger.Info("email not sent, smtp disabled",
		zap.Strings("to", to),
		zap.String("subject", msg.Subject),
	)
	return nil
}
