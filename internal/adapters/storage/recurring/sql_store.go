package recurring

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fitstudio/internal/adapters/storage"
	domain "fitstudio/internal/domain/recurring"
)

const sessionColumns = `id, client_id, days_of_week, start_time, duration_minutes, type, notes,
	active, start_date, end_date, created_at, updated_at`

// SQLStore implements Store over any SQL dialect supported by storage.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new recurring session store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves a template by its ID.
// PRE: id is non-empty
// POST: Returns the template or an error wrapping sql.ErrNoRows
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Session, error) {
	rs, err := scanSession(s.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM recurring_session WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return domain.Session{}, fmt.Errorf("recurring session not found: %w", err)
	}
	return rs, err
}

// Save inserts or updates a template.
// PRE: template has been validated
func (s *SQLStore) Save(ctx context.Context, rs domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recurring_session (`+sessionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   client_id=excluded.client_id, days_of_week=excluded.days_of_week,
		   start_time=excluded.start_time, duration_minutes=excluded.duration_minutes,
		   type=excluded.type, notes=excluded.notes, active=excluded.active,
		   start_date=excluded.start_date, end_date=excluded.end_date, updated_at=excluded.updated_at`,
		rs.ID, rs.ClientID, domain.FormatDays(rs.DaysOfWeek), rs.StartTime, rs.DurationMinutes,
		rs.Type, rs.Notes, storage.BoolToInt(rs.Active), rs.StartDate, rs.EndDate,
		storage.FormatTime(rs.CreatedAt), storage.FormatTime(rs.UpdatedAt))
	return err
}

// Delete removes a template. Appointments already generated from it are kept.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM recurring_session WHERE id = ?", id)
	return err
}

// List returns templates matching filter ordered by creation.
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]domain.Session, error) {
	var clauses []string
	var args []any
	if filter.ClientID != "" {
		clauses = append(clauses, "client_id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.ActiveOnly {
		clauses = append(clauses, "active = 1")
	}
	if len(filter.IDs) > 0 {
		clauses = append(clauses, "id IN (?)")
		args = append(args, filter.IDs)
	}
	query := "SELECT " + sessionColumns + " FROM recurring_session"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at, id"
	query, args, err := storage.In(query, args...)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Session
	for rows.Next() {
		rs, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rs)
	}
	return results, rows.Err()
}

func scanSession(row storage.Scanner) (domain.Session, error) {
	var rs domain.Session
	var days, createdAt, updatedAt string
	var active int
	err := row.Scan(&rs.ID, &rs.ClientID, &days, &rs.StartTime, &rs.DurationMinutes, &rs.Type,
		&rs.Notes, &active, &rs.StartDate, &rs.EndDate, &createdAt, &updatedAt)
	if err != nil {
		return domain.Session{}, err
	}
	rs.Active = active != 0
	if rs.DaysOfWeek, err = domain.ParseDays(days); err != nil {
		return domain.Session{}, fmt.Errorf("failed to parse days_of_week: %w", err)
	}
	if rs.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Session{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if rs.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return domain.Session{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return rs, nil
}
