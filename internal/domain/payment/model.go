package payment

import (
	"errors"
	"time"

	"fitstudio/internal/domain/event"
)

// Status constants
const (
	StatusPending    = "pending"
	StatusAuthorized = "authorized"
	StatusCaptured   = "captured"
	StatusFailed     = "failed"
)

// Method constants
const (
	MethodGateway = "gateway"
	MethodManual  = "manual"
)

// Gateway webhook event names
const (
	EventCaptured   = "payment.captured"
	EventAuthorized = "payment.authorized"
	EventFailed     = "payment.failed"
)

// Domain errors
var (
	ErrEmptyRegistration = errors.New("payment must be linked to a registration")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidStatus     = errors.New("status must be one of: pending, authorized, captured, failed")
	ErrInvalidMethod     = errors.New("method must be one of: gateway, manual")
	ErrUnknownEvent      = errors.New("unsupported webhook event")
	ErrAlreadyCaptured   = errors.New("payment is already captured")
)

// Payment tracks money owed for an event registration.
type Payment struct {
	ID               string
	RegistrationID   string
	Amount           int64 // minor units
	Currency         string
	Status           string
	Method           string
	GatewayOrderID   string
	GatewayPaymentID string
	FailureReason    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Validate checks if the Payment has valid data.
// PRE: Payment struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Payment) Validate() error {
	if p.RegistrationID == "" {
		return ErrEmptyRegistration
	}
	if p.Amount <= 0 {
		return ErrInvalidAmount
	}
	switch p.Status {
	case StatusPending, StatusAuthorized, StatusCaptured, StatusFailed:
	default:
		return ErrInvalidStatus
	}
	if p.Method != MethodGateway && p.Method != MethodManual {
		return ErrInvalidMethod
	}
	return nil
}

// IsSettled reports whether the money is secured (authorized or captured).
func (p *Payment) IsSettled() bool {
	return p.Status == StatusAuthorized || p.Status == StatusCaptured
}

// ApplyGatewayEvent moves the payment to the status named by a webhook event and
// returns the registration status that follows from it.
// Replaying the same event leaves the payment unchanged.
// PRE: eventName is a gateway webhook event name
// POST: Status, GatewayPaymentID and FailureReason updated; returns ErrUnknownEvent otherwise
func (p *Payment) ApplyGatewayEvent(eventName, gatewayPaymentID, failureReason string, now time.Time) (string, error) {
	var regStatus string
	switch eventName {
	case EventCaptured:
		p.Status = StatusCaptured
		p.FailureReason = ""
		regStatus = event.RegistrationConfirmed
	case EventAuthorized:
		// A late authorization never downgrades a capture.
		if p.Status != StatusCaptured {
			p.Status = StatusAuthorized
		}
		p.FailureReason = ""
		regStatus = event.RegistrationConfirmed
	case EventFailed:
		if p.IsSettled() {
			return event.RegistrationConfirmed, nil
		}
		p.Status = StatusFailed
		p.FailureReason = failureReason
		regStatus = event.RegistrationPaymentFailed
	default:
		return "", ErrUnknownEvent
	}
	if gatewayPaymentID != "" {
		p.GatewayPaymentID = gatewayPaymentID
	}
	p.UpdatedAt = now
	return regStatus, nil
}

// MarkManuallyPaid records an offline payment confirmed by staff.
// PRE: Payment exists
// POST: Status captured, Method manual; ErrAlreadyCaptured if it was already captured
func (p *Payment) MarkManuallyPaid(now time.Time) error {
	if p.Status == StatusCaptured {
		return ErrAlreadyCaptured
	}
	p.Status = StatusCaptured
	p.Method = MethodManual
	p.FailureReason = ""
	p.UpdatedAt = now
	return nil
}
