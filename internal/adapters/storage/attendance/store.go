package attendance

import (
	"context"

	domain "fitstudio/internal/domain/attendance"
)

// Store persists attendance logs.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Log, error)
	Save(ctx context.Context, l domain.Log) error
	List(ctx context.Context, filter ListFilter) ([]domain.Log, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	// HasOpenForAppointment reports whether a log without check-out exists for appointmentID.
	HasOpenForAppointment(ctx context.Context, appointmentID string) (bool, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	ClientID string
	Date     string // YYYY-MM-DD prefix of check-in (UTC)
	OpenOnly bool
	Limit    int
	Offset   int
}
