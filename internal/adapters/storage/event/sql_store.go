package event

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fitstudio/internal/adapters/storage"
	domain "fitstudio/internal/domain/event"
)

const (
	eventColumns = "id, title, description, location, date, start_time, end_time, max_capacity, fee_amount, currency, published, created_at, updated_at"
	regColumns   = "id, event_id, name, email, phone, status, payment_id, created_at, updated_at"
)

// SQLStore implements Store over any SQL dialect supported by storage.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new event store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves an event by its ID.
// PRE: id is non-empty
// POST: Returns the event or an error wrapping sql.ErrNoRows
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Event, error) {
	e, err := scanEvent(s.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM event WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return domain.Event{}, fmt.Errorf("event not found: %w", err)
	}
	return e, err
}

// Save inserts or updates an event.
// PRE: event has been validated
func (s *SQLStore) Save(ctx context.Context, e domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO event (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title, description=excluded.description, location=excluded.location,
		   date=excluded.date, start_time=excluded.start_time, end_time=excluded.end_time,
		   max_capacity=excluded.max_capacity, fee_amount=excluded.fee_amount,
		   currency=excluded.currency, published=excluded.published, updated_at=excluded.updated_at`,
		e.ID, e.Title, e.Description, e.Location, e.Date, e.StartTime, e.EndTime,
		e.MaxCapacity, e.FeeAmount, e.Currency, storage.BoolToInt(e.Published),
		storage.FormatTime(e.CreatedAt), storage.FormatTime(e.UpdatedAt))
	return err
}

// Delete removes an event; registrations cascade.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, "DELETE FROM event_registration WHERE event_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM event WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// List returns events ordered by date and start time.
// PRE: filter.Limit > 0
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]domain.Event, error) {
	where, args := filter.where()
	args = append(args, filter.Limit, filter.Offset)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM event"+where+" ORDER BY date, start_time, id LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

// Count returns the number of events matching filter.
func (s *SQLStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filter.where()
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM event"+where, args...).Scan(&n)
	return n, err
}

// GetRegistration retrieves a registration by its ID.
// POST: Returns the registration or an error wrapping sql.ErrNoRows
func (s *SQLStore) GetRegistration(ctx context.Context, id string) (domain.Registration, error) {
	r, err := scanRegistration(s.db.QueryRowContext(ctx,
		"SELECT "+regColumns+" FROM event_registration WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return domain.Registration{}, fmt.Errorf("registration not found: %w", err)
	}
	return r, err
}

// SaveRegistration inserts or updates a registration.
// PRE: registration has been validated
func (s *SQLStore) SaveRegistration(ctx context.Context, r domain.Registration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO event_registration (`+regColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, email=excluded.email, phone=excluded.phone,
		   status=excluded.status, payment_id=excluded.payment_id, updated_at=excluded.updated_at`,
		r.ID, r.EventID, r.Name, r.Email, r.Phone, r.Status, r.PaymentID,
		storage.FormatTime(r.CreatedAt), storage.FormatTime(r.UpdatedAt))
	return err
}

// ListRegistrations returns every registration for an event in signup order.
func (s *SQLStore) ListRegistrations(ctx context.Context, eventID string) ([]domain.Registration, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+regColumns+" FROM event_registration WHERE event_id = ? ORDER BY created_at, id", eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Registration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// CountActiveRegistrations counts registrations holding a seat.
func (s *SQLStore) CountActiveRegistrations(ctx context.Context, eventID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM event_registration WHERE event_id = ? AND status IN (?, ?)",
		eventID, domain.RegistrationPending, domain.RegistrationConfirmed).Scan(&n)
	return n, err
}

// HasActiveRegistration reports whether email holds a pending or confirmed seat.
// PRE: email is already lower-cased
func (s *SQLStore) HasActiveRegistration(ctx context.Context, eventID, email string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM event_registration WHERE event_id = ? AND email = ? AND status IN (?, ?)",
		eventID, email, domain.RegistrationPending, domain.RegistrationConfirmed).Scan(&n)
	return n > 0, err
}

func (f ListFilter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.PublishedOnly {
		clauses = append(clauses, "published = 1")
	}
	if f.FromDate != "" {
		clauses = append(clauses, "date >= ?")
		args = append(args, f.FromDate)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanEvent(row storage.Scanner) (domain.Event, error) {
	var e domain.Event
	var published int
	var createdAt, updatedAt string
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.Date, &e.StartTime, &e.EndTime,
		&e.MaxCapacity, &e.FeeAmount, &e.Currency, &published, &createdAt, &updatedAt)
	if err != nil {
		return domain.Event{}, err
	}
	e.Published = published != 0
	if e.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Event{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if e.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return domain.Event{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return e, nil
}

func scanRegistration(row storage.Scanner) (domain.Registration, error) {
	var r domain.Registration
	var createdAt, updatedAt string
	err := row.Scan(&r.ID, &r.EventID, &r.Name, &r.Email, &r.Phone, &r.Status, &r.PaymentID, &createdAt, &updatedAt)
	if err != nil {
		return domain.Registration{}, err
	}
	if r.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Registration{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if r.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return domain.Registration{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return r, nil
}
