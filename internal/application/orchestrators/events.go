package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"fitstudio/internal/adapters/monitoring"
	paymentgw "fitstudio/internal/adapters/payment"
	"fitstudio/internal/domain/event"
	"fitstudio/internal/domain/lead"
	"fitstudio/internal/domain/payment"
)

// EventStore defines the event persistence needed by event orchestrators.
type EventStore interface {
	GetByID(ctx context.Context, id string) (event.Event, error)
	Save(ctx context.Context, e event.Event) error
	GetRegistration(ctx context.Context, id string) (event.Registration, error)
	SaveRegistration(ctx context.Context, r event.Registration) error
	CountActiveRegistrations(ctx context.Context, eventID string) (int, error)
	HasActiveRegistration(ctx context.Context, eventID, email string) (bool, error)
}

// PaymentStore defines the payment persistence needed by registration and webhooks.
type PaymentStore interface {
	GetByID(ctx context.Context, id string) (payment.Payment, error)
	GetByGatewayOrderID(ctx context.Context, orderID string) (payment.Payment, error)
	Save(ctx context.Context, p payment.Payment) error
}

// --- Save Event ---

// SaveEventInput carries the editable fields of an event.
type SaveEventInput struct {
	ID          string // empty on create
	Title       string
	Description string
	Location    string
	Date        string
	StartTime   string
	EndTime     string
	MaxCapacity int
	FeeAmount   int64
	Currency    string
	Published   bool
}

// SaveEventDeps holds dependencies for SaveEvent.
type SaveEventDeps struct {
	EventStore EventStore
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteSaveEvent creates or updates an event.
// POST: Event persisted; Currency defaults to event.DefaultCurrency
func ExecuteSaveEvent(ctx context.Context, input SaveEventInput, deps SaveEventDeps) (event.Event, error) {
	now := nowFn(deps.Now)
	e := event.Event{ID: input.ID, CreatedAt: now}
	if input.ID == "" {
		e.ID = idFn(deps.GenerateID)
	} else {
		existing, err := deps.EventStore.GetByID(ctx, input.ID)
		if err != nil {
			return event.Event{}, err
		}
		e.CreatedAt = existing.CreatedAt
	}
	e.Title = strings.TrimSpace(input.Title)
	e.Description = input.Description
	e.Location = input.Location
	e.Date = input.Date
	e.StartTime = input.StartTime
	e.EndTime = input.EndTime
	e.MaxCapacity = input.MaxCapacity
	e.FeeAmount = input.FeeAmount
	e.Currency = input.Currency
	e.Published = input.Published
	e.UpdatedAt = now

	if err := e.Validate(); err != nil {
		return event.Event{}, invalid(err)
	}
	if err := deps.EventStore.Save(ctx, e); err != nil {
		return event.Event{}, err
	}
	slog.Info("event_event", "event", "event_saved", "event_id", e.ID, "published", e.Published, "fee", e.FeeAmount)
	return e, nil
}

// --- Register For Event ---

// RegisterForEventInput carries a public event registration.
type RegisterForEventInput struct {
	EventID string
	Name    string
	Email   string
	Phone   string
}

// RegisterForEventDeps holds dependencies for RegisterForEvent.
type RegisterForEventDeps struct {
	EventStore   EventStore
	PaymentStore PaymentStore
	Gateway      paymentgw.Gateway // nil or disabled means manual payment
	GatewayKeyID string
	LeadStore    LeadStore // optional; registrants are captured as event leads
	Notifier     *Notifier
	Metrics      *monitoring.Metrics
	GenerateID   func() string
	Now          func() time.Time
}

// RegisterForEventResult carries what the client needs to complete checkout.
type RegisterForEventResult struct {
	Registration event.Registration `json:"registration"`
	Payment      *payment.Payment   `json:"payment,omitempty"`
	Order        *paymentgw.Order   `json:"order,omitempty"`
	KeyID        string             `json:"key_id,omitempty"`
}

// ExecuteRegisterForEvent registers a person for a published event.
// PRE: event exists and is published
// POST: Free events confirm immediately. Paid events persist a pending registration
// and a pending payment, with a gateway order when the gateway is enabled.
// INVARIANT: confirmed plus pending registrations never exceed MaxCapacity (checked, then inserted)
func ExecuteRegisterForEvent(ctx context.Context, input RegisterForEventInput, deps RegisterForEventDeps) (RegisterForEventResult, error) {
	e, err := deps.EventStore.GetByID(ctx, input.EventID)
	if err != nil {
		return RegisterForEventResult{}, err
	}
	if !e.Published {
		return RegisterForEventResult{}, invalid(event.ErrNotPublished)
	}

	now := nowFn(deps.Now)
	r := event.Registration{
		ID:        idFn(deps.GenerateID),
		EventID:   e.ID,
		Name:      strings.TrimSpace(input.Name),
		Email:     input.Email,
		Phone:     strings.TrimSpace(input.Phone),
		Status:    event.RegistrationPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.Validate(); err != nil {
		return RegisterForEventResult{}, invalid(err)
	}

	dup, err := deps.EventStore.HasActiveRegistration(ctx, e.ID, r.Email)
	if err != nil {
		return RegisterForEventResult{}, err
	}
	if dup {
		return RegisterForEventResult{}, invalid(event.ErrAlreadyRegistered)
	}
	active, err := deps.EventStore.CountActiveRegistrations(ctx, e.ID)
	if err != nil {
		return RegisterForEventResult{}, err
	}
	if !e.HasCapacity(active) {
		return RegisterForEventResult{}, invalid(event.ErrEventFull)
	}

	result := RegisterForEventResult{}
	var p *payment.Payment
	if e.IsFree() {
		r.Status = event.RegistrationConfirmed
	} else {
		p = &payment.Payment{
			ID:             idFn(deps.GenerateID),
			RegistrationID: r.ID,
			Amount:         e.FeeAmount,
			Currency:       e.Currency,
			Status:         payment.StatusPending,
			Method:         payment.MethodManual,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if deps.Gateway != nil && deps.Gateway.Enabled() {
			order, err := deps.Gateway.CreateOrder(ctx, p.Amount, p.Currency, p.ID, map[string]string{
				"event_id":        e.ID,
				"registration_id": r.ID,
			})
			if err != nil {
				return RegisterForEventResult{}, err
			}
			p.Method = payment.MethodGateway
			p.GatewayOrderID = order.ID
			result.Order = &order
			result.KeyID = deps.GatewayKeyID
		}
		if err := p.Validate(); err != nil {
			return RegisterForEventResult{}, invalid(err)
		}
		r.PaymentID = p.ID
	}

	if err := deps.EventStore.SaveRegistration(ctx, r); err != nil {
		return RegisterForEventResult{}, err
	}
	if p != nil {
		if err := deps.PaymentStore.Save(ctx, *p); err != nil {
			return RegisterForEventResult{}, err
		}
		result.Payment = p
	}
	result.Registration = r

	slog.Info("event_event", "event", "registration_created", "event_id", e.ID, "registration_id", r.ID, "status", r.Status, "payment_id", r.PaymentID)
	deps.Metrics.RegistrationCreated(r.Status)
	if r.Status == event.RegistrationConfirmed {
		deps.Notifier.Email(ctx, r.Email, "You're registered: "+e.Title, registrationConfirmedBody(e, r), "registration_confirmed")
	}
	captureEventLead(ctx, deps, r, e, now)
	return result, nil
}

// captureEventLead records the registrant as a lead so staff can follow up.
func captureEventLead(ctx context.Context, deps RegisterForEventDeps, r event.Registration, e event.Event, now time.Time) {
	if deps.LeadStore == nil {
		return
	}
	l := lead.Lead{
		ID:        idFn(deps.GenerateID),
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		Message:   "Registered for " + e.Title + " on " + e.Date,
		Source:    lead.SourceEvent,
		Status:    lead.StatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := l.Validate(); err != nil {
		slog.Warn("lead_event", "event", "event_lead_skipped", "registration_id", r.ID, "error", err)
		return
	}
	if err := deps.LeadStore.Save(ctx, l); err != nil {
		slog.Warn("lead_event", "event", "event_lead_failed", "registration_id", r.ID, "error", err)
		return
	}
	deps.Metrics.LeadCreated(l.Source)
}
