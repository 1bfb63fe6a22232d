package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"fitstudio/internal/adapters/storage"
	domain "fitstudio/internal/domain/outbox"
)

const messageColumns = "id, channel, recipient, subject, body, topic, status, attempts, max_attempts, next_attempt_at, last_error, external_id, sent_at, created_at"

// SQLStore implements the outbox Store over any SQL dialect supported by storage.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new outbox store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByID retrieves a message by its ID.
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Message, error) {
	m, err := scanMessage(s.db.QueryRowContext(ctx, "SELECT "+messageColumns+" FROM outbox_message WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return domain.Message{}, fmt.Errorf("outbox message not found: %w", err)
	}
	return m, err
}

// Save persists a message (insert or update).
func (s *SQLStore) Save(ctx context.Context, m domain.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outbox_message (`+messageColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status=excluded.status, attempts=excluded.attempts, max_attempts=excluded.max_attempts,
		   next_attempt_at=excluded.next_attempt_at, last_error=excluded.last_error,
		   external_id=excluded.external_id, sent_at=excluded.sent_at`,
		m.ID, m.Channel, m.Recipient, m.Subject, m.Body, m.Topic, m.Status, m.Attempts, m.MaxAttempts,
		storage.OptionalTime(m.NextAttemptAt), m.LastError, m.ExternalID,
		storage.OptionalTime(m.SentAt), storage.FormatTime(m.CreatedAt))
	return err
}

// ListDue returns deliverable messages.
// INVARIANT: Timestamps are fixed-width UTC text so string comparison orders them
func (s *SQLStore) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Message, error) {
	return s.query(ctx,
		`SELECT `+messageColumns+` FROM outbox_message
		 WHERE status IN (?, ?) AND attempts < max_attempts
		   AND (next_attempt_at = '' OR next_attempt_at <= ?)
		 ORDER BY created_at, id LIMIT ?`,
		domain.StatusPending, domain.StatusRetrying, storage.FormatTime(now), limit)
}

// List returns messages matching filter, newest first.
// PRE: filter.Limit > 0
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]domain.Message, error) {
	where, args := filter.where()
	args = append(args, filter.Limit, filter.Offset)
	return s.query(ctx,
		"SELECT "+messageColumns+" FROM outbox_message"+where+" ORDER BY created_at DESC, id LIMIT ? OFFSET ?", args...)
}

// Count returns the number of messages matching filter.
func (s *SQLStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filter.where()
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM outbox_message"+where, args...).Scan(&n)
	return n, err
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

func (f ListFilter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
	}
	if f.Channel != "" {
		clauses = append(clauses, "channel = ?")
		args = append(args, f.Channel)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanMessage(row storage.Scanner) (domain.Message, error) {
	var m domain.Message
	var nextAttemptAt, sentAt, createdAt string
	err := row.Scan(&m.ID, &m.Channel, &m.Recipient, &m.Subject, &m.Body, &m.Topic, &m.Status,
		&m.Attempts, &m.MaxAttempts, &nextAttemptAt, &m.LastError, &m.ExternalID, &sentAt, &createdAt)
	if err != nil {
		return domain.Message{}, err
	}
	if m.NextAttemptAt, err = storage.ParseTime(nextAttemptAt); err != nil {
		return domain.Message{}, fmt.Errorf("failed to parse next_attempt_at: %w", err)
	}
	if m.SentAt, err = storage.ParseTime(sentAt); err != nil {
		return domain.Message{}, fmt.Errorf("failed to parse sent_at: %w", err)
	}
	if m.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Message{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return m, nil
}
