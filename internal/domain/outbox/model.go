package outbox

import (
	"errors"
	"strings"
	"time"
)

// Status constants for the message lifecycle.
const (
	StatusPending   = "pending"
	StatusRetrying  = "retrying"
	StatusSent      = "sent"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
)

// Channel constants for the supported notification providers.
const (
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"
)

// DefaultMaxAttempts applies when a message is enqueued without an explicit limit.
const DefaultMaxAttempts = 5

// Domain errors.
var (
	ErrInvalidChannel = errors.New("channel must be one of: email, whatsapp")
	ErrEmptyRecipient = errors.New("recipient is required")
	ErrEmptyBody      = errors.New("body is required")
	ErrEmptySubject   = errors.New("email subject is required")
)

// Message is a queued notification awaiting delivery by the outbox processor.
type Message struct {
	ID            string
	Channel       string
	Recipient     string // email address or E.164 phone number
	Subject       string // email only
	Body          string // markdown for email, plain text for whatsapp
	Topic         string // what triggered the message, e.g. "lead_created"
	Status        string
	Attempts      int
	MaxAttempts   int
	NextAttemptAt time.Time
	LastError     string
	ExternalID    string
	SentAt        time.Time
	CreatedAt     time.Time
}

// Validate checks that the Message has valid data.
// PRE: Message struct is populated
// POST: Returns nil if valid, error otherwise; MaxAttempts defaulted when unset
func (m *Message) Validate() error {
	if m.Channel != ChannelEmail && m.Channel != ChannelWhatsApp {
		return ErrInvalidChannel
	}
	if strings.TrimSpace(m.Recipient) == "" {
		return ErrEmptyRecipient
	}
	if strings.TrimSpace(m.Body) == "" {
		return ErrEmptyBody
	}
	if m.Channel == ChannelEmail && strings.TrimSpace(m.Subject) == "" {
		return ErrEmptySubject
	}
	if m.MaxAttempts <= 0 {
		m.MaxAttempts = DefaultMaxAttempts
	}
	return nil
}

// IsDue reports whether the message should be attempted at now.
// INVARIANT: Message fields are not mutated
func (m *Message) IsDue(now time.Time) bool {
	if m.Status != StatusPending && m.Status != StatusRetrying {
		return false
	}
	if m.Attempts >= m.MaxAttempts {
		return false
	}
	return m.NextAttemptAt.IsZero() || !now.Before(m.NextAttemptAt)
}

// MarkAttempt records a delivery attempt.
// POST: Attempts incremented, status set to retrying
func (m *Message) MarkAttempt() {
	m.Attempts++
	m.Status = StatusRetrying
}

// MarkSent marks the message as delivered.
// POST: Status is sent, LastError cleared
func (m *Message) MarkSent(externalID string, now time.Time) {
	m.Status = StatusSent
	m.ExternalID = externalID
	m.LastError = ""
	m.SentAt = now
}

// MarkFailed records a failed attempt and schedules the next one.
// POST: Status is failed once attempts are exhausted, otherwise NextAttemptAt moves forward
func (m *Message) MarkFailed(err error, now time.Time, baseDelay, maxDelay time.Duration) {
	m.LastError = err.Error()
	if m.Attempts >= m.MaxAttempts {
		m.Status = StatusFailed
		return
	}
	m.NextAttemptAt = now.Add(m.NextRetryDelay(baseDelay, maxDelay))
}

// MarkAbandoned stops further delivery attempts.
func (m *Message) MarkAbandoned() {
	m.Status = StatusAbandoned
}

// NextRetryDelay returns 2^attempts * baseDelay, capped at maxDelay.
// PRE: Attempts is set
func (m *Message) NextRetryDelay(baseDelay time.Duration, maxDelay time.Duration) time.Duration {
	if m.Attempts > 20 {
		return maxDelay
	}
	delay := baseDelay * (1 << m.Attempts)
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}
