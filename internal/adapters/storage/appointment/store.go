package appointment

import (
	"context"

	domain "fitstudio/internal/domain/appointment"
)

// Store persists Appointment state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Appointment, error)
	Save(ctx context.Context, a domain.Appointment) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Appointment, error)
	Count(ctx context.Context, filter ListFilter) (int, error)

	// ExistsAt reports whether an appointment already occupies the exact
	// (client, date, start time) triple.
	ExistsAt(ctx context.Context, clientID, date, startTime string) (bool, error)

	// CreateBatch inserts every appointment in one transaction.
	// POST: Either all rows are inserted or none
	CreateBatch(ctx context.Context, appts []domain.Appointment) error

	// BookedStartTimes returns the start times taken on date by appointments that are not cancelled.
	BookedStartTimes(ctx context.Context, date string) ([]string, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	ClientID string
	DateFrom string // inclusive
	DateTo   string // inclusive
	Status   string
	Type     string
	Limit    int
	Offset   int
}
