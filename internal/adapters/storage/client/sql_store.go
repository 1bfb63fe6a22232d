package client

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fitstudio/internal/adapters/storage"
	domain "fitstudio/internal/domain/client"
)

const clientColumns = `id, lead_id, name, email, phone, date_of_birth, gender, goal, program,
	start_date, status, notes, created_at, updated_at`

// SQLStore implements Store over any SQL dialect supported by storage.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new client store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves a client by its ID.
// PRE: id is non-empty
// POST: Returns the client or an error wrapping sql.ErrNoRows
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Client, error) {
	c, err := scanClient(s.db.QueryRowContext(ctx, "SELECT "+clientColumns+" FROM client WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return domain.Client{}, fmt.Errorf("client not found: %w", err)
	}
	return c, err
}

// GetByLeadID retrieves the client created from a lead.
// PRE: leadID is non-empty
func (s *SQLStore) GetByLeadID(ctx context.Context, leadID string) (domain.Client, error) {
	c, err := scanClient(s.db.QueryRowContext(ctx,
		"SELECT "+clientColumns+" FROM client WHERE lead_id = ? ORDER BY created_at LIMIT 1", leadID))
	if err == sql.ErrNoRows {
		return domain.Client{}, fmt.Errorf("client not found: %w", err)
	}
	return c, err
}

// Save inserts or updates a client.
// PRE: client has been validated
func (s *SQLStore) Save(ctx context.Context, c domain.Client) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO client (`+clientColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   lead_id=excluded.lead_id, name=excluded.name, email=excluded.email, phone=excluded.phone,
		   date_of_birth=excluded.date_of_birth, gender=excluded.gender, goal=excluded.goal,
		   program=excluded.program, start_date=excluded.start_date, status=excluded.status,
		   notes=excluded.notes, updated_at=excluded.updated_at`,
		c.ID, c.LeadID, c.Name, c.Email, c.Phone, c.DateOfBirth, c.Gender, c.Goal, c.Program,
		c.StartDate, c.Status, c.Notes, storage.FormatTime(c.CreatedAt), storage.FormatTime(c.UpdatedAt))
	return err
}

// Delete removes a client. Appointments, plans and logs keep their soft reference.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM client WHERE id = ?", id)
	return err
}

// List returns clients matching filter ordered by name.
// PRE: filter.Limit > 0
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]domain.Client, error) {
	where, args := filter.where()
	args = append(args, filter.Limit, filter.Offset)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+clientColumns+" FROM client"+where+" ORDER BY name, id LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClients(rows)
}

// Count returns the number of clients matching filter.
func (s *SQLStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filter.where()
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM client"+where, args...).Scan(&n)
	return n, err
}

// ListByIDs returns the clients whose IDs are in ids.
// POST: Missing IDs are silently skipped
func (s *SQLStore) ListByIDs(ctx context.Context, ids []string) ([]domain.Client, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := storage.In("SELECT "+clientColumns+" FROM client WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClients(rows)
}

func (f ListFilter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
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

func scanClients(rows *sql.Rows) ([]domain.Client, error) {
	var results []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

func scanClient(row storage.Scanner) (domain.Client, error) {
	var c domain.Client
	var createdAt, updatedAt string
	err := row.Scan(&c.ID, &c.LeadID, &c.Name, &c.Email, &c.Phone, &c.DateOfBirth, &c.Gender,
		&c.Goal, &c.Program, &c.StartDate, &c.Status, &c.Notes, &createdAt, &updatedAt)
	if err != nil {
		return domain.Client{}, err
	}
	if c.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Client{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if c.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return domain.Client{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return c, nil
}
