package payment

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fitstudio/internal/adapters/storage"
	domain "fitstudio/internal/domain/payment"
)

const paymentColumns = "id, registration_id, amount, currency, status, method, gateway_order_id, gateway_payment_id, failure_reason, created_at, updated_at"

// SQLStore implements Store over any SQL dialect supported by storage.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new payment store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves a payment by its ID.
// POST: Returns the payment or an error wrapping sql.ErrNoRows
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Payment, error) {
	p, err := scanPayment(s.db.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM payment WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return domain.Payment{}, fmt.Errorf("payment not found: %w", err)
	}
	return p, err
}

// GetByGatewayOrderID finds the payment created for a gateway order.
// PRE: orderID is non-empty
// POST: Returns the payment or an error wrapping sql.ErrNoRows
func (s *SQLStore) GetByGatewayOrderID(ctx context.Context, orderID string) (domain.Payment, error) {
	p, err := scanPayment(s.db.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payment WHERE gateway_order_id = ?", orderID))
	if err == sql.ErrNoRows {
		return domain.Payment{}, fmt.Errorf("payment for order %s not found: %w", orderID, err)
	}
	return p, err
}

// Save inserts or updates a payment.
// PRE: payment has been validated
func (s *SQLStore) Save(ctx context.Context, p domain.Payment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payment (`+paymentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status=excluded.status, method=excluded.method,
		   gateway_order_id=excluded.gateway_order_id, gateway_payment_id=excluded.gateway_payment_id,
		   failure_reason=excluded.failure_reason, updated_at=excluded.updated_at`,
		p.ID, p.RegistrationID, p.Amount, p.Currency, p.Status, p.Method,
		p.GatewayOrderID, p.GatewayPaymentID, p.FailureReason,
		storage.FormatTime(p.CreatedAt), storage.FormatTime(p.UpdatedAt))
	return err
}

// List returns payments newest first.
// PRE: filter.Limit > 0
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]domain.Payment, error) {
	where, args := filter.where()
	args = append(args, filter.Limit, filter.Offset)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+paymentColumns+" FROM payment"+where+" ORDER BY created_at DESC, id LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

// Count returns the number of payments matching filter.
func (s *SQLStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filter.where()
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM payment"+where, args...).Scan(&n)
	return n, err
}

func (f ListFilter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
	}
	if f.RegistrationID != "" {
		clauses = append(clauses, "registration_id = ?")
		args = append(args, f.RegistrationID)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanPayment(row storage.Scanner) (domain.Payment, error) {
	var p domain.Payment
	var createdAt, updatedAt string
	err := row.Scan(&p.ID, &p.RegistrationID, &p.Amount, &p.Currency, &p.Status, &p.Method,
		&p.GatewayOrderID, &p.GatewayPaymentID, &p.FailureReason, &createdAt, &updatedAt)
	if err != nil {
		return domain.Payment{}, err
	}
	if p.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Payment{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if p.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return domain.Payment{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return p, nil
}
