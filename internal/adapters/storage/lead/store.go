package lead

import (
	"context"

	domain "fitstudio/internal/domain/lead"
)

// Store persists Lead state.
type Store interface {
	// GetByID retrieves a lead by its ID.
	// PRE: id is non-empty
	// POST: Returns the lead or an error wrapping sql.ErrNoRows
	GetByID(ctx context.Context, id string) (domain.Lead, error)

	// Save inserts or updates a lead.
	// PRE: lead has been validated
	Save(ctx context.Context, l domain.Lead) error

	// Delete removes a lead.
	Delete(ctx context.Context, id string) error

	// List returns leads matching filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]domain.Lead, error)

	// Count returns the number of leads matching filter, ignoring Limit and Offset.
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Status string
	Source string
	Search string // matches name, email or phone
	Limit  int
	Offset int
}
