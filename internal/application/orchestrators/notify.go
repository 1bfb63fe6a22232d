package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fitstudio/internal/domain/appointment"
	"fitstudio/internal/domain/event"
	"fitstudio/internal/domain/lead"
	"fitstudio/internal/domain/outbox"
)

// OutboxSaver is the slice of the outbox store needed to enqueue.
type OutboxSaver interface {
	Save(ctx context.Context, m outbox.Message) error
}

// EnqueueNotificationInput carries one message to queue.
type EnqueueNotificationInput struct {
	Channel     string
	Recipient   string
	Subject     string
	Body        string
	Topic       string
	MaxAttempts int
}

// EnqueueNotificationDeps holds dependencies for EnqueueNotification.
type EnqueueNotificationDeps struct {
	OutboxStore OutboxSaver
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteEnqueueNotification validates and queues a message for the outbox processor.
// PRE: Channel is email or whatsapp
// POST: Message persisted in pending status, due immediately
func ExecuteEnqueueNotification(ctx context.Context, input EnqueueNotificationInput, deps EnqueueNotificationDeps) (outbox.Message, error) {
	m := outbox.Message{
		ID:          idFn(deps.GenerateID),
		Channel:     input.Channel,
		Recipient:   strings.TrimSpace(input.Recipient),
		Subject:     input.Subject,
		Body:        input.Body,
		Topic:       input.Topic,
		Status:      outbox.StatusPending,
		MaxAttempts: input.MaxAttempts,
		CreatedAt:   nowFn(deps.Now),
	}
	if err := m.Validate(); err != nil {
		return outbox.Message{}, invalid(err)
	}
	if err := deps.OutboxStore.Save(ctx, m); err != nil {
		return outbox.Message{}, err
	}
	slog.Info("outbox_event", "event", "message_enqueued", "message_id", m.ID, "channel", m.Channel, "topic", m.Topic)
	return m, nil
}

// Notifier queues side-effect notifications for other orchestrators.
// A nil Notifier drops everything. Failures are logged, never returned.
type Notifier struct {
	Deps       EnqueueNotificationDeps
	StaffEmail string
}

// Email queues an email.
func (n *Notifier) Email(ctx context.Context, to, subject, body, topic string) {
	if n == nil || to == "" {
		return
	}
	n.enqueue(ctx, EnqueueNotificationInput{Channel: outbox.ChannelEmail, Recipient: to, Subject: subject, Body: body, Topic: topic})
}

// WhatsApp queues a WhatsApp text.
func (n *Notifier) WhatsApp(ctx context.Context, to, body, topic string) {
	if n == nil || to == "" {
		return
	}
	n.enqueue(ctx, EnqueueNotificationInput{Channel: outbox.ChannelWhatsApp, Recipient: to, Body: body, Topic: topic})
}

// Staff queues an email to the studio's notification inbox, if configured.
func (n *Notifier) Staff(ctx context.Context, subject, body, topic string) {
	if n == nil {
		return
	}
	n.Email(ctx, n.StaffEmail, subject, body, topic)
}

func (n *Notifier) enqueue(ctx context.Context, input EnqueueNotificationInput) {
	if _, err := ExecuteEnqueueNotification(ctx, input, n.Deps); err != nil {
		slog.Warn("outbox_event", "event", "enqueue_failed", "topic", input.Topic, "channel", input.Channel, "error", err)
	}
}

// Message bodies are markdown; the email adapter renders them.

func leadReceivedBody(l lead.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**New lead:** %s\n\n", l.Name)
	fmt.Fprintf(&b, "- Email: %s\n- Phone: %s\n- Source: %s\n", orNone(l.Email), orNone(l.Phone), orNone(l.Source))
	if l.Goal != "" {
		fmt.Fprintf(&b, "- Goal: %s\n", l.Goal)
	}
	if l.UTMCampaign != "" {
		fmt.Fprintf(&b, "- Campaign: %s / %s / %s\n", l.UTMSource, l.UTMMedium, l.UTMCampaign)
	}
	if l.Message != "" {
		fmt.Fprintf(&b, "\n> %s\n", strings.ReplaceAll(l.Message, "\n", "\n> "))
	}
	return b.String()
}

func bookingConfirmationBody(l lead.Lead, a appointment.Appointment) string {
	return fmt.Sprintf("Hi %s,\n\nYour free consultation is booked for **%s at %s**.\n\n"+
		"Reply to this email if you need to change the time.\n\nSee you soon!", firstName(l.Name), a.Date, a.StartTime)
}

func registrationConfirmedBody(e event.Event, r event.Registration) string {
	where := ""
	if e.Location != "" {
		where = " at " + e.Location
	}
	return fmt.Sprintf("Hi %s,\n\nYou're confirmed for **%s** on %s, %s%s.\n\nSee you there!",
		firstName(r.Name), e.Title, e.Date, e.StartTime, where)
}

func firstName(name string) string {
	if f := strings.Fields(name); len(f) > 0 {
		return f[0]
	}
	return "there"
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
