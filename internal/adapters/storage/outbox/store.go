package outbox

import (
	"context"
	"time"

	domain "fitstudio/internal/domain/outbox"
)

// Store defines the interface for queued notification persistence.
type Store interface {
	// GetByID retrieves a message by its ID.
	// PRE: id is non-empty
	// POST: Returns the message or an error wrapping sql.ErrNoRows
	GetByID(ctx context.Context, id string) (domain.Message, error)

	// Save persists a message.
	// PRE: message has been validated
	// POST: Message is persisted (insert or update)
	Save(ctx context.Context, m domain.Message) error

	// ListDue returns messages whose next attempt is at or before now.
	// PRE: limit > 0
	// POST: Returns up to limit pending or retrying messages ordered by created_at
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Message, error)

	// List returns messages for the admin view, newest first.
	List(ctx context.Context, filter ListFilter) ([]domain.Message, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Status  string
	Channel string
	Limit   int
	Offset  int
}
