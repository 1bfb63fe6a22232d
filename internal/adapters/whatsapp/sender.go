// Package whatsapp delivers plain-text notifications over the WhatsApp Cloud API.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the Graph API root for the Cloud API.
const DefaultBaseURL = "https://graph.facebook.com/v19.0"

// SendRequest is one outbound text message.
type SendRequest struct {
	To   string // E.164, with or without leading '+'
	Body string
}

// SendResult contains the provider's message ID.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender is the interface for sending WhatsApp messages.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}

// CloudSender sends text messages through the Cloud API.
type CloudSender struct {
	baseURL string
	phoneID string
	token   string
	client  *http.Client
}

// NewCloudSender creates a sender for the given business phone number ID.
// PRE: token and phoneID are non-empty
func NewCloudSender(token, phoneID string) *CloudSender {
	return &CloudSender{
		baseURL: DefaultBaseURL,
		phoneID: phoneID,
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURL points the sender at another Graph API root.
func (s *CloudSender) WithBaseURL(u string) *CloudSender {
	s.baseURL = strings.TrimRight(u, "/")
	return s
}

type textMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

// Send posts a text message.
// POST: Returns the wamid on 2xx, otherwise an error carrying the API message
func (s *CloudSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	msg := textMessage{MessagingProduct: "whatsapp", To: strings.TrimPrefix(req.To, "+"), Type: "text"}
	msg.Text.Body = req.Body
	payload, err := json.Marshal(msg)
	if err != nil {
		return SendResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/%s/messages", s.baseURL, s.phoneID), bytes.NewReader(payload))
	if err != nil {
		return SendResult{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return SendResult{}, fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return SendResult{}, err
	}

	if resp.StatusCode/100 != 2 {
		apiMsg := gjson.GetBytes(body, "error.message").String()
		slog.Error("whatsapp_send_failed", "status", resp.StatusCode, "error", apiMsg)
		return SendResult{}, fmt.Errorf("whatsapp send failed: status %d: %s", resp.StatusCode, apiMsg)
	}

	id := gjson.GetBytes(body, "messages.0.id").String()
	slog.Info("whatsapp_sent", "message_id", id)
	return SendResult{MessageID: id, SentAt: time.Now()}, nil
}

// NoopSender logs messages without delivering them.
type NoopSender struct{}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the message and reports success.
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	slog.Info("noop_whatsapp_send", "to", req.To, "length", len(req.Body))
	return SendResult{MessageID: fmt.Sprintf("noop-%d", time.Now().UnixNano()), SentAt: time.Now()}, nil
}
