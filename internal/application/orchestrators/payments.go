package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/tidwall/gjson"

	"fitstudio/internal/adapters/monitoring"
	"fitstudio/internal/domain/event"
	"fitstudio/internal/domain/payment"
)

// ErrInvalidSignature is returned when a webhook body does not match its signature.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Webhook outcomes, also used as the metrics label.
const (
	WebhookApplied          = "applied"
	WebhookIgnored          = "ignored"
	WebhookInvalidSignature = "invalid_signature"
)

// SignatureVerifier checks a webhook body against its signature header.
type SignatureVerifier interface {
	VerifyWebhookSignature(body []byte, signature string) bool
}

// --- Payment Webhook ---

// PaymentWebhookInput carries the raw webhook request.
type PaymentWebhookInput struct {
	Body      []byte
	Signature string
}

// PaymentWebhookDeps holds dependencies for PaymentWebhook.
type PaymentWebhookDeps struct {
	Verifier     SignatureVerifier
	PaymentStore PaymentStore
	EventStore   EventStore
	Notifier     *Notifier
	Metrics      *monitoring.Metrics
	Now          func() time.Time
}

// PaymentWebhookResult reports what the webhook did.
type PaymentWebhookResult struct {
	Outcome            string `json:"outcome"`
	Event              string `json:"event,omitempty"`
	PaymentID          string `json:"payment_id,omitempty"`
	PaymentStatus      string `json:"payment_status,omitempty"`
	RegistrationStatus string `json:"registration_status,omitempty"`
}

// ExecutePaymentWebhook verifies and applies a gateway payment webhook.
// PRE: Body is the exact raw request body
// POST: On a bad signature nothing is read or written and ErrInvalidSignature is returned.
// Unknown orders and unsupported events are acknowledged and ignored.
// Otherwise the payment and its registration move to the mapped statuses.
// INVARIANT: replaying a webhook leaves the stored state unchanged
func ExecutePaymentWebhook(ctx context.Context, input PaymentWebhookInput, deps PaymentWebhookDeps) (PaymentWebhookResult, error) {
	if deps.Verifier == nil || !deps.Verifier.VerifyWebhookSignature(input.Body, input.Signature) {
		slog.Warn("payment_event", "event", "webhook_rejected", "reason", "signature")
		deps.Metrics.WebhookHandled(WebhookInvalidSignature)
		return PaymentWebhookResult{Outcome: WebhookInvalidSignature}, ErrInvalidSignature
	}

	doc := gjson.ParseBytes(input.Body)
	eventName := doc.Get("event").String()
	entity := doc.Get("payload.payment.entity")
	orderID := entity.Get("order_id").String()
	gatewayPaymentID := entity.Get("id").String()
	failureReason := entity.Get("error_description").String()

	ignored := func(reason string) (PaymentWebhookResult, error) {
		slog.Info("payment_event", "event", "webhook_ignored", "reason", reason, "webhook_event", eventName, "order_id", orderID)
		deps.Metrics.WebhookHandled(WebhookIgnored)
		return PaymentWebhookResult{Outcome: WebhookIgnored, Event: eventName}, nil
	}

	switch eventName {
	case payment.EventCaptured, payment.EventAuthorized, payment.EventFailed:
	default:
		return ignored("unsupported_event")
	}
	if orderID == "" {
		return ignored("missing_order")
	}

	p, err := deps.PaymentStore.GetByGatewayOrderID(ctx, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return ignored("unknown_order")
	}
	if err != nil {
		return PaymentWebhookResult{}, err
	}

	now := nowFn(deps.Now)
	regStatus, err := p.ApplyGatewayEvent(eventName, gatewayPaymentID, failureReason, now)
	if err != nil {
		return ignored("unsupported_event")
	}
	if err := deps.PaymentStore.Save(ctx, p); err != nil {
		return PaymentWebhookResult{}, err
	}

	r, err := updateRegistrationStatus(ctx, deps.EventStore, deps.Notifier, p.RegistrationID, regStatus, now)
	if err != nil {
		return PaymentWebhookResult{}, err
	}

	slog.Info("payment_event", "event", "webhook_applied", "webhook_event", eventName, "payment_id", p.ID, "payment_status", p.Status, "registration_status", r.Status)
	deps.Metrics.WebhookHandled(WebhookApplied)
	return PaymentWebhookResult{
		Outcome:            WebhookApplied,
		Event:              eventName,
		PaymentID:          p.ID,
		PaymentStatus:      p.Status,
		RegistrationStatus: r.Status,
	}, nil
}

// --- Mark Payment Paid ---

// MarkPaymentPaidDeps holds dependencies for MarkPaymentPaid.
type MarkPaymentPaidDeps struct {
	PaymentStore PaymentStore
	EventStore   EventStore
	Notifier     *Notifier
	Now          func() time.Time
}

// ExecuteMarkPaymentPaid records an offline payment and confirms the registration.
// PRE: paymentID refers to a payment that is not yet captured
// POST: Payment captured with method manual; registration confirmed
func ExecuteMarkPaymentPaid(ctx context.Context, paymentID string, deps MarkPaymentPaidDeps) (payment.Payment, error) {
	p, err := deps.PaymentStore.GetByID(ctx, paymentID)
	if err != nil {
		return payment.Payment{}, err
	}
	now := nowFn(deps.Now)
	if err := p.MarkManuallyPaid(now); err != nil {
		return payment.Payment{}, invalid(err)
	}
	if err := deps.PaymentStore.Save(ctx, p); err != nil {
		return payment.Payment{}, err
	}
	if _, err := updateRegistrationStatus(ctx, deps.EventStore, deps.Notifier, p.RegistrationID, event.RegistrationConfirmed, now); err != nil {
		return payment.Payment{}, err
	}
	slog.Info("payment_event", "event", "payment_marked_paid", "payment_id", p.ID, "registration_id", p.RegistrationID)
	return p, nil
}

// updateRegistrationStatus moves a registration to status and sends the
// confirmation email on the transition into confirmed. Cancelled registrations stay cancelled.
func updateRegistrationStatus(ctx context.Context, store EventStore, n *Notifier, registrationID, status string, now time.Time) (event.Registration, error) {
	r, err := store.GetRegistration(ctx, registrationID)
	if err != nil {
		return event.Registration{}, err
	}
	if r.Status == status || r.Status == event.RegistrationCancelled {
		return r, nil
	}
	r.Status = status
	r.UpdatedAt = now
	if err := store.SaveRegistration(ctx, r); err != nil {
		return event.Registration{}, err
	}
	if status == event.RegistrationConfirmed {
		if e, err := store.GetByID(ctx, r.EventID); err == nil {
			n.Email(ctx, r.Email, "You're registered: "+e.Title, registrationConfirmedBody(e, r), "registration_confirmed")
		}
	}
	return r, nil
}
