package event

import (
	"context"

	domain "fitstudio/internal/domain/event"
)

// Store persists events and their registrations.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Event, error)
	Save(ctx context.Context, e domain.Event) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Event, error)
	Count(ctx context.Context, filter ListFilter) (int, error)

	GetRegistration(ctx context.Context, id string) (domain.Registration, error)
	SaveRegistration(ctx context.Context, r domain.Registration) error
	ListRegistrations(ctx context.Context, eventID string) ([]domain.Registration, error)
	// CountActiveRegistrations counts pending and confirmed registrations.
	CountActiveRegistrations(ctx context.Context, eventID string) (int, error)
	// HasActiveRegistration reports whether email already holds an active seat.
	HasActiveRegistration(ctx context.Context, eventID, email string) (bool, error)
}

// ListFilter carries filtering parameters for event listing.
type ListFilter struct {
	PublishedOnly bool
	FromDate      string // inclusive YYYY-MM-DD
	Limit         int
	Offset        int
}
