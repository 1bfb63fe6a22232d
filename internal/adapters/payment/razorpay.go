// Package payment talks to the Razorpay orders API and verifies its webhooks.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the Razorpay REST root.
const DefaultBaseURL = "https://api.razorpay.com/v1"

// ErrNotConfigured is returned when order creation is attempted without API keys.
var ErrNotConfigured = errors.New("payment gateway is not configured")

// Order is a gateway order the client pays against.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Gateway creates orders and checks webhook signatures.
type Gateway interface {
	Enabled() bool
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (Order, error)
	VerifyWebhookSignature(body []byte, signature string) bool
}

// RazorpayClient implements Gateway against the Razorpay API.
type RazorpayClient struct {
	baseURL       string
	keyID         string
	keySecret     string
	webhookSecret string
	client        *http.Client
}

// NewRazorpayClient creates a client. Empty keys disable order creation;
// an empty webhook secret rejects every webhook.
func NewRazorpayClient(keyID, keySecret, webhookSecret string) *RazorpayClient {
	return &RazorpayClient{
		baseURL:       DefaultBaseURL,
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		client:        &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURL points the client at another API root.
func (c *RazorpayClient) WithBaseURL(u string) *RazorpayClient {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

// Enabled reports whether API keys are configured.
func (c *RazorpayClient) Enabled() bool {
	return c.keyID != "" && c.keySecret != ""
}

// KeyID returns the public key the checkout widget needs.
func (c *RazorpayClient) KeyID() string {
	return c.keyID
}

type orderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// CreateOrder registers an order for amount minor units.
// PRE: amount > 0; receipt is at most 40 characters
// POST: Returns the created order or an error carrying the gateway description
func (c *RazorpayClient) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (Order, error) {
	if !c.Enabled() {
		return Order{}, ErrNotConfigured
	}
	if len(receipt) > 40 {
		receipt = receipt[:40]
	}
	payload, err := json.Marshal(orderRequest{Amount: amount, Currency: currency, Receipt: receipt, Notes: notes})
	if err != nil {
		return Order{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return Order{}, err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Order{}, fmt.Errorf("razorpay request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Order{}, err
	}
	if resp.StatusCode/100 != 2 {
		desc := gjson.GetBytes(body, "error.description").String()
		slog.Error("razorpay_order_failed", "status", resp.StatusCode, "error", desc)
		return Order{}, fmt.Errorf("razorpay order failed: status %d: %s", resp.StatusCode, desc)
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return Order{}, fmt.Errorf("decode razorpay order: %w", err)
	}
	slog.Info("razorpay_order_created", "order_id", order.ID, "amount", order.Amount, "currency", order.Currency)
	return order, nil
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header against the raw body.
// INVARIANT: Comparison is constant-time; an empty secret or signature never verifies
func (c *RazorpayClient) VerifyWebhookSignature(body []byte, signature string) bool {
	return VerifySignature(body, signature, c.webhookSecret)
}

// VerifySignature reports whether signature is the hex HMAC-SHA256 of body under secret.
func VerifySignature(body []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	return hmac.Equal(got, Sign(body, secret))
}

// Sign computes the raw HMAC-SHA256 of body under secret.
func Sign(body []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}
