package email

import (
	"context"
	"time"
)

// SendRequest contains the data needed to send an email via an external provider.
type SendRequest struct {
	To       []string
	Subject  string
	Markdown string // rendered to HTML when HTML is empty
	HTML     string
	ReplyTo  string
	Topic    string // attached as a provider tag for filtering
}

// SendResult contains the response from the email provider.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender is the interface for sending emails via an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
