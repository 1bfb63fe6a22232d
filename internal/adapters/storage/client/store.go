package client

import (
	"context"

	domain "fitstudio/internal/domain/client"
)

// Store persists Client state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Client, error)
	// GetByLeadID returns the client converted from leadID, or an error wrapping sql.ErrNoRows.
	GetByLeadID(ctx context.Context, leadID string) (domain.Client, error)
	Save(ctx context.Context, c domain.Client) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Client, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	// ListByIDs returns the clients whose IDs are in ids, in no particular order.
	ListByIDs(ctx context.Context, ids []string) ([]domain.Client, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}
