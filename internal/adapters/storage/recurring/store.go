package recurring

import (
	"context"

	domain "fitstudio/internal/domain/recurring"
)

// Store persists recurring session templates.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Session, error)
	Save(ctx context.Context, s domain.Session) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Session, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	ClientID   string
	ActiveOnly bool
	IDs        []string // restrict to these templates when non-empty
}
