package appointment

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fitstudio/internal/adapters/storage"
	domain "fitstudio/internal/domain/appointment"
)

const appointmentColumns = `id, client_id, date, start_time, end_time, type, status, notes,
	recurring_session_id, created_at, updated_at`

const insertAppointment = `INSERT INTO appointment (` + appointmentColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const upsertAppointment = insertAppointment + `
	ON CONFLICT(id) DO UPDATE SET
	  client_id=excluded.client_id, date=excluded.date, start_time=excluded.start_time,
	  end_time=excluded.end_time, type=excluded.type, status=excluded.status, notes=excluded.notes,
	  recurring_session_id=excluded.recurring_session_id, updated_at=excluded.updated_at`

// SQLStore implements Store over any SQL dialect supported by storage.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new appointment store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves an appointment by its ID.
// PRE: id is non-empty
// POST: Returns the appointment or an error wrapping sql.ErrNoRows
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Appointment, error) {
	a, err := scanAppointment(s.db.QueryRowContext(ctx,
		"SELECT "+appointmentColumns+" FROM appointment WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return domain.Appointment{}, fmt.Errorf("appointment not found: %w", err)
	}
	return a, err
}

// Save inserts or updates an appointment.
// PRE: appointment has been validated
func (s *SQLStore) Save(ctx context.Context, a domain.Appointment) error {
	_, err := s.db.ExecContext(ctx, upsertAppointment, appointmentArgs(a)...)
	return err
}

// Delete removes an appointment.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM appointment WHERE id = ?", id)
	return err
}

// List returns appointments matching filter in calendar order.
// PRE: filter.Limit > 0
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]domain.Appointment, error) {
	where, args := filter.where()
	args = append(args, filter.Limit, filter.Offset)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+appointmentColumns+" FROM appointment"+where+" ORDER BY date, start_time, id LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

// Count returns the number of appointments matching filter.
func (s *SQLStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filter.where()
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM appointment"+where, args...).Scan(&n)
	return n, err
}

// ExistsAt is a point lookup on (client_id, date, start_time).
// PRE: date is YYYY-MM-DD, startTime is HH:MM
func (s *SQLStore) ExistsAt(ctx context.Context, clientID, date, startTime string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM appointment WHERE client_id = ? AND date = ? AND start_time = ?",
		clientID, date, startTime).Scan(&n)
	return n > 0, err
}

// CreateBatch inserts appts atomically.
// PRE: every appointment has been validated and has a fresh ID
// POST: All rows inserted, or none on error
func (s *SQLStore) CreateBatch(ctx context.Context, appts []domain.Appointment) error {
	if len(appts) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, a := range appts {
		if _, err := tx.ExecContext(ctx, insertAppointment, appointmentArgs(a)...); err != nil {
			return fmt.Errorf("insert appointment %s %s: %w", a.Date, a.StartTime, err)
		}
	}
	return tx.Commit()
}

// BookedStartTimes returns start times on date held by non-cancelled appointments.
func (s *SQLStore) BookedStartTimes(ctx context.Context, date string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT start_time FROM appointment WHERE date = ? AND status <> ? ORDER BY start_time",
		date, domain.StatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

func (f ListFilter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.ClientID != "" {
		clauses = append(clauses, "client_id = ?")
		args = append(args, f.ClientID)
	}
	if f.DateFrom != "" {
		clauses = append(clauses, "date >= ?")
		args = append(args, f.DateFrom)
	}
	if f.DateTo != "" {
		clauses = append(clauses, "date <= ?")
		args = append(args, f.DateTo)
	}
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
	}
	if f.Type != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, f.Type)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func appointmentArgs(a domain.Appointment) []any {
	return []any{a.ID, a.ClientID, a.Date, a.StartTime, a.EndTime, a.Type, a.Status, a.Notes,
		a.RecurringSessionID, storage.FormatTime(a.CreatedAt), storage.FormatTime(a.UpdatedAt)}
}

func scanAppointment(row storage.Scanner) (domain.Appointment, error) {
	var a domain.Appointment
	var createdAt, updatedAt string
	err := row.Scan(&a.ID, &a.ClientID, &a.Date, &a.StartTime, &a.EndTime, &a.Type, &a.Status,
		&a.Notes, &a.RecurringSessionID, &createdAt, &updatedAt)
	if err != nil {
		return domain.Appointment{}, err
	}
	if a.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Appointment{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if a.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return domain.Appointment{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return a, nil
}
