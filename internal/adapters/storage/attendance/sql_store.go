package attendance

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fitstudio/internal/adapters/storage"
	domain "fitstudio/internal/domain/attendance"
)

const logColumns = "id, client_id, appointment_id, check_in_time, check_out_time, notes"

// SQLStore implements Store over any SQL dialect supported by storage.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new attendance store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves a log by its ID.
// PRE: id is non-empty
// POST: Returns the log or an error wrapping sql.ErrNoRows
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Log, error) {
	l, err := scanLog(s.db.QueryRowContext(ctx, "SELECT "+logColumns+" FROM attendance_log WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return domain.Log{}, fmt.Errorf("attendance not found: %w", err)
	}
	return l, err
}

// Save inserts or updates a log.
// PRE: log has been validated
func (s *SQLStore) Save(ctx context.Context, l domain.Log) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance_log (`+logColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   client_id=excluded.client_id, appointment_id=excluded.appointment_id,
		   check_in_time=excluded.check_in_time, check_out_time=excluded.check_out_time,
		   notes=excluded.notes`,
		l.ID, l.ClientID, l.AppointmentID, storage.FormatTime(l.CheckInTime),
		storage.OptionalTime(l.CheckOutTime), l.Notes)
	return err
}

// List returns logs matching filter, most recent check-in first.
// PRE: filter.Limit > 0
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]domain.Log, error) {
	where, args := filter.where()
	args = append(args, filter.Limit, filter.Offset)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+logColumns+" FROM attendance_log"+where+" ORDER BY check_in_time DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Log
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, l)
	}
	return results, rows.Err()
}

// Count returns the number of logs matching filter.
func (s *SQLStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filter.where()
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM attendance_log"+where, args...).Scan(&n)
	return n, err
}

// HasOpenForAppointment reports whether an open log exists for appointmentID.
// PRE: appointmentID is non-empty
func (s *SQLStore) HasOpenForAppointment(ctx context.Context, appointmentID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM attendance_log WHERE appointment_id = ? AND check_out_time = ''",
		appointmentID).Scan(&n)
	return n > 0, err
}

func (f ListFilter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.ClientID != "" {
		clauses = append(clauses, "client_id = ?")
		args = append(args, f.ClientID)
	}
	if f.Date != "" {
		clauses = append(clauses, "check_in_time LIKE ?")
		args = append(args, f.Date+"%")
	}
	if f.OpenOnly {
		clauses = append(clauses, "check_out_time = ''")
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanLog(row storage.Scanner) (domain.Log, error) {
	var l domain.Log
	var checkIn, checkOut string
	if err := row.Scan(&l.ID, &l.ClientID, &l.AppointmentID, &checkIn, &checkOut, &l.Notes); err != nil {
		return domain.Log{}, err
	}
	var err error
	if l.CheckInTime, err = storage.ParseTime(checkIn); err != nil {
		return domain.Log{}, fmt.Errorf("failed to parse check_in_time: %w", err)
	}
	if l.CheckOutTime, err = storage.ParseTime(checkOut); err != nil {
		return domain.Log{}, fmt.Errorf("failed to parse check_out_time: %w", err)
	}
	return l, nil
}
