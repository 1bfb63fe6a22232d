package account

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fitstudio/internal/adapters/storage"
	domain "fitstudio/internal/domain/account"
)

const accountColumns = "id, email, name, password_hash, role, client_id, created_at, failed_logins, locked_until"

// SQLStore implements the account Store over any SQL dialect supported by storage.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new account store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves an account by ID.
// PRE: id is non-empty
// POST: Returns the account or an error wrapping sql.ErrNoRows
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM account WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	return a, err
}

// GetByEmail retrieves an account by its login email, case-insensitively.
func (s *SQLStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM account WHERE email = ?", strings.ToLower(strings.TrimSpace(email))))
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	return a, err
}

// Save inserts or updates an account.
// PRE: account has been validated; Email is lower-cased
func (s *SQLStore) Save(ctx context.Context, a domain.Account) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO account (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   email=excluded.email, name=excluded.name, password_hash=excluded.password_hash,
		   role=excluded.role, client_id=excluded.client_id,
		   failed_logins=excluded.failed_logins, locked_until=excluded.locked_until`,
		a.ID, a.Email, a.Name, a.PasswordHash, a.Role, a.ClientID,
		storage.FormatTime(a.CreatedAt), a.FailedLogins, storage.OptionalTime(a.LockedUntil))
	return err
}

// Delete removes an account.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM account WHERE id = ?", id)
	return err
}

// List returns accounts ordered by email.
// PRE: filter.Limit > 0
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]domain.Account, error) {
	where, args := filter.where()
	args = append(args, filter.Limit, filter.Offset)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+accountColumns+" FROM account"+where+" ORDER BY email LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

// Count returns the number of accounts matching filter.
func (s *SQLStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filter.where()
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account"+where, args...).Scan(&n)
	return n, err
}

func (f ListFilter) where() (string, []any) {
	if f.Role == "" {
		return "", nil
	}
	return " WHERE role = ?", []any{f.Role}
}

func scanAccount(row storage.Scanner) (domain.Account, error) {
	var a domain.Account
	var createdAt, lockedUntil string
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.Role, &a.ClientID,
		&createdAt, &a.FailedLogins, &lockedUntil)
	if err != nil {
		return domain.Account{}, err
	}
	if a.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Account{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if a.LockedUntil, err = storage.ParseTime(lockedUntil); err != nil {
		return domain.Account{}, fmt.Errorf("failed to parse locked_until: %w", err)
	}
	return a, nil
}
