package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fitstudio/internal/adapters/email"
	"fitstudio/internal/adapters/monitoring"
	"fitstudio/internal/adapters/whatsapp"
	domain "fitstudio/internal/domain/outbox"
)

// OutboxStore is the outbox persistence needed by the processor.
type OutboxStore interface {
	GetByID(ctx context.Context, id string) (domain.Message, error)
	Save(ctx context.Context, m domain.Message) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Message, error)
}

// ChannelSender delivers a message over one channel.
type ChannelSender interface {
	// Deliver sends the message and returns the provider's ID for it.
	Deliver(ctx context.Context, m domain.Message) (string, error)
}

// ErrTerminal is returned when retrying a message that is sent, failed or abandoned.
var ErrTerminal = errors.New("message is in a terminal state and cannot be retried")

// OutboxProcessor delivers queued notifications with retries.
type OutboxProcessor struct {
	store     OutboxStore
	senders   map[string]ChannelSender
	metrics   *monitoring.Metrics
	now       func() time.Time
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
}

// NewOutboxProcessor creates a new outbox processor.
func NewOutboxProcessor(store OutboxStore, senders map[string]ChannelSender, metrics *monitoring.Metrics) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		senders:   senders,
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
		baseDelay: 30 * time.Second,
		maxDelay:  1 * time.Hour,
		batchSize: 25,
	}
}

// WithClock replaces the processor's clock.
func (p *OutboxProcessor) WithClock(now func() time.Time) *OutboxProcessor {
	p.now = now
	return p
}

// ProcessPendingResult summarizes one processing pass.
type ProcessPendingResult struct {
	Sent   int
	Failed int
}

// ProcessPending delivers every message that is due.
// PRE: Context is valid
// POST: Due messages are attempted once; failures are rescheduled with exponential
// backoff until MaxAttempts, then marked failed
func (p *OutboxProcessor) ProcessPending(ctx context.Context) (ProcessPendingResult, error) {
	now := p.now()
	msgs, err := p.store.ListDue(ctx, now, p.batchSize)
	if err != nil {
		return ProcessPendingResult{}, fmt.Errorf("list due outbox messages: %w", err)
	}

	var res ProcessPendingResult
	for _, m := range msgs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		sent, err := p.deliver(ctx, m, now)
		if err != nil {
			slog.Error("outbox_event", "event", "process_failed", "message_id", m.ID, "channel", m.Channel, "error", err)
		}
		if sent {
			res.Sent++
		} else {
			res.Failed++
		}
	}
	if len(msgs) > 0 {
		slog.Info("outbox_event", "event", "batch_processed", "due", len(msgs), "sent", res.Sent, "failed", res.Failed)
	}
	return res, nil
}

// deliver attempts one message and persists the outcome. The returned error is a
// persistence error; delivery failures are recorded on the message.
func (p *OutboxProcessor) deliver(ctx context.Context, m domain.Message, now time.Time) (bool, error) {
	sender, ok := p.senders[m.Channel]
	if !ok {
		m.MarkAttempt()
		m.Attempts = m.MaxAttempts
		m.MarkFailed(fmt.Errorf("no sender registered for channel: %s", m.Channel), now, p.baseDelay, p.maxDelay)
		p.metrics.OutboxDelivery(m.Channel, "failed")
		return false, p.store.Save(ctx, m)
	}

	m.MarkAttempt()
	externalID, err := sender.Deliver(ctx, m)
	if err != nil {
		m.MarkFailed(err, now, p.baseDelay, p.maxDelay)
		slog.Warn("outbox_event", "event", "delivery_failed", "message_id", m.ID, "channel", m.Channel, "attempt", m.Attempts, "status", m.Status, "error", err)
		p.metrics.OutboxDelivery(m.Channel, "failed")
		return false, p.store.Save(ctx, m)
	}
	m.MarkSent(externalID, now)
	slog.Info("outbox_event", "event", "delivered", "message_id", m.ID, "channel", m.Channel, "topic", m.Topic, "external_id", externalID)
	p.metrics.OutboxDelivery(m.Channel, "sent")
	return true, p.store.Save(ctx, m)
}

// ProcessSingle immediately retries one message (admin action).
// PRE: id refers to a message that is not terminal
// POST: Message attempted once; a failed message is re-armed with fresh attempts
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, id string) (domain.Message, error) {
	m, err := p.store.GetByID(ctx, id)
	if err != nil {
		return domain.Message{}, err
	}
	switch m.Status {
	case domain.StatusSent, domain.StatusAbandoned:
		return domain.Message{}, invalid(ErrTerminal)
	case domain.StatusFailed:
		m.Status = domain.StatusRetrying
		m.MaxAttempts = m.Attempts + 1
	}

	if _, err := p.deliver(ctx, m, p.now()); err != nil {
		return domain.Message{}, err
	}
	return p.store.GetByID(ctx, id)
}

// AbandonEntry stops further delivery attempts for a message.
// PRE: id refers to an existing message
// POST: Message status is abandoned
func (p *OutboxProcessor) AbandonEntry(ctx context.Context, id string) (domain.Message, error) {
	m, err := p.store.GetByID(ctx, id)
	if err != nil {
		return domain.Message{}, err
	}
	if m.Status == domain.StatusSent {
		return domain.Message{}, invalid(ErrTerminal)
	}
	m.MarkAbandoned()
	if err := p.store.Save(ctx, m); err != nil {
		return domain.Message{}, err
	}
	slog.Info("outbox_event", "event", "abandoned", "message_id", m.ID)
	return m, nil
}

// --- Channel senders ---

// EmailChannel delivers outbox messages through an email.Sender.
type EmailChannel struct {
	Sender email.Sender
}

// Deliver sends the message body as markdown email.
func (c EmailChannel) Deliver(ctx context.Context, m domain.Message) (string, error) {
	res, err := c.Sender.Send(ctx, email.SendRequest{
		To:       []string{m.Recipient},
		Subject:  m.Subject,
		Markdown: m.Body,
		Topic:    m.Topic,
	})
	if err != nil {
		return "", err
	}
	return res.MessageID, nil
}

// WhatsAppChannel delivers outbox messages through a whatsapp.Sender.
type WhatsAppChannel struct {
	Sender whatsapp.Sender
}

// Deliver sends the message body as a WhatsApp text.
func (c WhatsAppChannel) Deliver(ctx context.Context, m domain.Message) (string, error) {
	res, err := c.Sender.Send(ctx, whatsapp.SendRequest{To: m.Recipient, Body: m.Body})
	if err != nil {
		return "", err
	}
	return res.MessageID, nil
}

// NewChannelSenders wires the supported channels.
func NewChannelSenders(mail email.Sender, wa whatsapp.Sender) map[string]ChannelSender {
	return map[string]ChannelSender{
		domain.ChannelEmail:    EmailChannel{Sender: mail},
		domain.ChannelWhatsApp: WhatsAppChannel{Sender: wa},
	}
}
