package payment

import (
	"context"

	domain "fitstudio/internal/domain/payment"
)

// Store persists payments.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Payment, error)
	GetByGatewayOrderID(ctx context.Context, orderID string) (domain.Payment, error)
	Save(ctx context.Context, p domain.Payment) error
	List(ctx context.Context, filter ListFilter) ([]domain.Payment, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for payment listing.
type ListFilter struct {
	Status         string
	RegistrationID string
	Limit          int
	Offset         int
}
