package notify

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/text/message"

	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/calendar"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/reminder"
)

// Localizer is the message-printer contract the renderers need.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// ReminderInput is the data of one reminder email.
type ReminderInput struct {
	Title         string
	GuestName     string
	Language      string
	Type          reminder.Type
	Deadline      time.Time
	Link          string
	CustomMessage string
}

// RenderReminder builds the reminder email for one guest.
func RenderReminder(ctx context.Context, loc Localizer, in ReminderInput) (Message, error) {
	deadline := calendar.FormatDate(in.Deadline, in.Language)
	subject := loc.Sprintf(in.Type.SubjectKey())
	greeting := loc.Sprintf("email.reminder.greeting", in.GuestName)
	body := loc.Sprintf("email.reminder.body", deadline)
	cta := loc.Sprintf("email.reminder.cta")
	signoff := loc.Sprintf("email.reminder.signoff")
	custom := strings.TrimSpace(in.CustomMessage)

	html, err := renderComponent(ctx, reminderEmail(in.Title, greeting, body, custom, in.Link, cta, signoff))
	if err != nil {
		return Message{}, err
	}

	text := []string{greeting, "", body}
	if custom != "" {
		text = append(text, "", custom)
	}
	text = append(text, "", cta+": "+in.Link, "", signoff, in.Title)
	return Message{
		Subject: subject,
		HTML:    html,
		Text:    strings.Join(text, "\n"),
	}, nil
}

// CancellationInput is the data of the admin cancellation notice.
type CancellationInput struct {
	Title       string
	GuestName   string
	Phone       string
	CancelledAt time.Time
}

// RenderCancellation builds the notice sent to the admin when a guest
// cancels.
func RenderCancellation(ctx context.Context, loc Localizer, in CancellationInput) (Message, error) {
	subject := loc.Sprintf("email.cancellation.subject", in.GuestName)
	lines := []string{
		loc.Sprintf("email.cancellation.body", in.GuestName),
		loc.Sprintf("email.cancellation.phone", in.Phone),
		loc.Sprintf("email.cancellation.when", calendar.FormatDateTime(in.CancelledAt)),
	}
	html, err := renderComponent(ctx, cancellationEmail(in.Title, lines))
	if err != nil {
		return Message{}, err
	}
	return Message{Subject: subject, HTML: html, Text: strings.Join(lines, "\n")}, nil
}

func renderComponent(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}
