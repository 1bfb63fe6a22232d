package lead

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fitstudio/internal/adapters/storage"
	domain "fitstudio/internal/domain/lead"
)

const leadColumns = `id, name, email, phone, message, goal, source, utm_source, utm_medium, utm_campaign,
	utm_term, utm_content, status, notes, client_id, created_at, updated_at`

// SQLStore implements Store over any SQL dialect supported by storage.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new lead store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves a lead by its ID.
// PRE: id is non-empty
// POST: Returns the lead or an error wrapping sql.ErrNoRows
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Lead, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+leadColumns+" FROM lead WHERE id = ?", id)
	l, err := scanLead(row)
	if err == sql.ErrNoRows {
		return domain.Lead{}, fmt.Errorf("lead not found: %w", err)
	}
	return l, err
}

// Save inserts or updates a lead.
// PRE: lead has been validated
// POST: Row with l.ID reflects l
func (s *SQLStore) Save(ctx context.Context, l domain.Lead) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lead (`+leadColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, email=excluded.email, phone=excluded.phone, message=excluded.message,
		   goal=excluded.goal, source=excluded.source, utm_source=excluded.utm_source,
		   utm_medium=excluded.utm_medium, utm_campaign=excluded.utm_campaign, utm_term=excluded.utm_term,
		   utm_content=excluded.utm_content, status=excluded.status, notes=excluded.notes,
		   client_id=excluded.client_id, updated_at=excluded.updated_at`,
		l.ID, l.Name, l.Email, l.Phone, l.Message, l.Goal, l.Source, l.UTMSource, l.UTMMedium,
		l.UTMCampaign, l.UTMTerm, l.UTMContent, l.Status, l.Notes, l.ClientID,
		storage.FormatTime(l.CreatedAt), storage.FormatTime(l.UpdatedAt))
	return err
}

// Delete removes a lead.
// PRE: id is non-empty
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM lead WHERE id = ?", id)
	return err
}

// List returns leads matching filter, newest first.
// PRE: filter.Limit > 0
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]domain.Lead, error) {
	where, args := filter.where()
	args = append(args, filter.Limit, filter.Offset)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+leadColumns+" FROM lead"+where+" ORDER BY created_at DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, l)
	}
	return results, rows.Err()
}

// Count returns the number of leads matching filter.
func (s *SQLStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filter.where()
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM lead"+where, args...).Scan(&n)
	return n, err
}

func (f ListFilter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
	}
	if f.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, f.Source)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		clauses = append(clauses, "(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?)")
		args = append(args, like, like, like)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanLead(row storage.Scanner) (domain.Lead, error) {
	var l domain.Lead
	var createdAt, updatedAt string
	err := row.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Message, &l.Goal, &l.Source,
		&l.UTMSource, &l.UTMMedium, &l.UTMCampaign, &l.UTMTerm, &l.UTMContent, &l.Status,
		&l.Notes, &l.ClientID, &createdAt, &updatedAt)
	if err != nil {
		return domain.Lead{}, err
	}
	if l.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Lead{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if l.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return domain.Lead{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return l, nil
}
