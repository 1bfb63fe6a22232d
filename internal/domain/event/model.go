package event

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"fitstudio/internal/domain/booking"
)

// DefaultCurrency applies to paid events created without a currency.
const DefaultCurrency = "INR"

// Registration status constants
const (
	RegistrationPending       = "pending"
	RegistrationConfirmed     = "confirmed"
	RegistrationPaymentFailed = "payment_failed"
	RegistrationCancelled     = "cancelled"
)

// ValidRegistrationStatuses lists every registration status.
var ValidRegistrationStatuses = []string{RegistrationPending, RegistrationConfirmed, RegistrationPaymentFailed, RegistrationCancelled}

// Domain errors
var (
	ErrEmptyTitle        = errors.New("title cannot be empty")
	ErrTitleTooLong      = errors.New("title cannot exceed 200 characters")
	ErrInvalidDate       = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidTime       = errors.New("times must be in HH:MM format with end after start")
	ErrNegativeCapacity  = errors.New("max capacity cannot be negative")
	ErrNegativeFee       = errors.New("fee cannot be negative")
	ErrInvalidCurrency   = errors.New("currency must be a 3-letter ISO code")
	ErrEmptyName         = errors.New("name cannot be empty")
	ErrInvalidEmail      = errors.New("a valid email is required")
	ErrInvalidStatus     = errors.New("status must be one of: pending, confirmed, payment_failed, cancelled")
	ErrEventFull         = errors.New("event is at full capacity")
	ErrNotPublished      = errors.New("event is not open for registration")
	ErrAlreadyRegistered = errors.New("this email is already registered for the event")
)

// Event is a one-off studio event with optional capacity and fee.
type Event struct {
	ID          string
	Title       string
	Description string
	Location    string
	Date        string // YYYY-MM-DD
	StartTime   string // HH:MM
	EndTime     string // HH:MM, optional
	MaxCapacity int    // 0 = unlimited
	FeeAmount   int64  // minor units (paise)
	Currency    string
	Published   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Registration is one person's signup for an event.
type Registration struct {
	ID        string
	EventID   string
	Name      string
	Email     string
	Phone     string
	Status    string
	PaymentID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks if the Event has valid data.
// PRE: Event struct is populated
// POST: Returns nil if valid; Currency is upper-cased and defaulted for paid events
func (e *Event) Validate() error {
	title := strings.TrimSpace(e.Title)
	if title == "" {
		return ErrEmptyTitle
	}
	if len(title) > 200 {
		return ErrTitleTooLong
	}
	if _, err := booking.ParseDate(e.Date); err != nil {
		return ErrInvalidDate
	}
	if _, err := booking.ParseTime(e.StartTime); err != nil {
		return ErrInvalidTime
	}
	if e.EndTime != "" {
		if _, err := booking.ParseTime(e.EndTime); err != nil || e.EndTime <= e.StartTime {
			return ErrInvalidTime
		}
	}
	if e.MaxCapacity < 0 {
		return ErrNegativeCapacity
	}
	if e.FeeAmount < 0 {
		return ErrNegativeFee
	}
	e.Currency = strings.ToUpper(strings.TrimSpace(e.Currency))
	if e.Currency == "" {
		e.Currency = DefaultCurrency
	}
	if len(e.Currency) != 3 {
		return ErrInvalidCurrency
	}
	return nil
}

// IsFree reports whether registration needs no payment.
func (e *Event) IsFree() bool {
	return e.FeeAmount == 0
}

// HasCapacity reports whether one more registration fits, given the number of
// confirmed plus pending registrations.
// INVARIANT: Event fields are not mutated
func (e *Event) HasCapacity(activeCount int) bool {
	if e.MaxCapacity == 0 {
		return true
	}
	return activeCount < e.MaxCapacity
}

// Validate checks if the Registration has valid data.
// PRE: Registration struct is populated
// POST: Returns nil if valid; Email is trimmed and lower-cased
func (r *Registration) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return ErrInvalidEmail
	}
	if !IsValidRegistrationStatus(r.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// IsActive reports whether the registration holds a seat.
func (r *Registration) IsActive() bool {
	return r.Status == RegistrationConfirmed || r.Status == RegistrationPending
}

// IsValidRegistrationStatus reports whether status is a known registration status.
func IsValidRegistrationStatus(status string) bool {
	for _, s := range ValidRegistrationStatuses {
		if s == status {
			return true
		}
	}
	return false
}
