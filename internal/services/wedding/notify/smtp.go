package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/louisbranch/wedding.rsvp/internal/platform/timeouts"
)

// SMTPConfig configures the SMTP relay.
type SMTPConfig struct {
	Host     string `env:"WEDDING_SMTP_HOST"`
	Port     int    `env:"WEDDING_SMTP_PORT" envDefault:"587"`
	Username string `env:"WEDDING_SMTP_USERNAME"`
	Password string `env:"WEDDING_SMTP_PASSWORD"`
	From     string `env:"WEDDING_SMTP_FROM"`
}

// Enabled reports whether a relay host is configured.
func (c SMTPConfig) Enabled() bool {
	return strings.TrimSpace(c.Host) != ""
}

// SMTPSender delivers mail through an SMTP relay. Port 465 uses implicit
// TLS; other ports upgrade with STARTTLS when offered.
type SMTPSender struct {
	cfg SMTPConfig
	// dial replaces the network dialer when set.
	dial mail.DialContextFunc
	now  func() time.Time
}

// NewSMTPSender builds a sender for cfg.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("smtp from address is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	return &SMTPSender{cfg: cfg, now: time.Now}, nil
}

// Send implements Sender.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	to := msg.Recipients()
	if len(to) == 0 {
		return ErrNoRecipients
	}
	m, err := s.message(to, msg)
	if err != nil {
		return err
	}
	client, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithTimeout(timeouts.SMTPSend),
		mail.WithTLSConfig(&tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}),
	}
	if s.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	if s.dial != nil {
		opts = append(opts, mail.WithDialContextFunc(s.dial))
	}
	return append(opts, mail.WithPort(s.cfg.Port))
}

// message builds a multipart/alternative email with the plain text part
// first.
func (s *SMTPSender) message(to []string, msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("smtp from %q: %w", s.cfg.From, err)
	}
	if err := m.To(to...); err != nil {
		return nil, fmt.Errorf("smtp rcpt: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDateWithValue(s.now())
	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBodyString(mail.TypeTextPlain, msg.Text)
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	case msg.HTML != "":
		m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	default:
		m.SetBodyString(mail.TypeTextPlain, msg.Text)
	}
	return m, nil
}
