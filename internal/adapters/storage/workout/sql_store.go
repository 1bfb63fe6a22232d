package workout

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fitstudio/internal/adapters/storage"
	domain "fitstudio/internal/domain/workout"
)

const planColumns = "id, name, description, level, created_by, created_at, updated_at"

// SQLStore implements Store over any SQL dialect supported by storage.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new workout store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetPlan loads a plan with its days and exercises ordered by day number and position.
// PRE: id is non-empty
// POST: Returns the plan or an error wrapping sql.ErrNoRows
func (s *SQLStore) GetPlan(ctx context.Context, id string) (domain.Plan, error) {
	p, err := scanPlan(s.db.QueryRowContext(ctx, "SELECT "+planColumns+" FROM workout_plan WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return domain.Plan{}, fmt.Errorf("workout plan not found: %w", err)
	}
	if err != nil {
		return domain.Plan{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, plan_id, day_number, title FROM workout_day WHERE plan_id = ? ORDER BY day_number", id)
	if err != nil {
		return domain.Plan{}, err
	}
	dayIndex := make(map[string]int)
	for rows.Next() {
		var d domain.Day
		if err := rows.Scan(&d.ID, &d.PlanID, &d.DayNumber, &d.Title); err != nil {
			rows.Close()
			return domain.Plan{}, err
		}
		dayIndex[d.ID] = len(p.Days)
		p.Days = append(p.Days, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.Plan{}, err
	}

	exRows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.day_id, e.name, e.sets, e.reps, e.rest_seconds, e.notes, e.position
		 FROM workout_exercise e JOIN workout_day d ON d.id = e.day_id
		 WHERE d.plan_id = ? ORDER BY d.day_number, e.position`, id)
	if err != nil {
		return domain.Plan{}, err
	}
	defer exRows.Close()
	for exRows.Next() {
		var e domain.Exercise
		if err := exRows.Scan(&e.ID, &e.DayID, &e.Name, &e.Sets, &e.Reps, &e.RestSeconds, &e.Notes, &e.Position); err != nil {
			return domain.Plan{}, err
		}
		if i, ok := dayIndex[e.DayID]; ok {
			p.Days[i].Exercises = append(p.Days[i].Exercises, e)
		}
	}
	return p, exRows.Err()
}

// SavePlan upserts the plan and rewrites its day tree.
// PRE: plan has been validated; every day and exercise has an ID
// POST: Stored tree equals p.Days, or nothing changes on error
func (s *SQLStore) SavePlan(ctx context.Context, p domain.Plan) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO workout_plan (`+planColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, description=excluded.description, level=excluded.level,
		   updated_at=excluded.updated_at`,
		p.ID, p.Name, p.Description, p.Level, p.CreatedBy,
		storage.FormatTime(p.CreatedAt), storage.FormatTime(p.UpdatedAt))
	if err != nil {
		return err
	}
	if err := deleteTree(ctx, tx, p.ID); err != nil {
		return err
	}
	for _, d := range p.Days {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO workout_day (id, plan_id, day_number, title) VALUES (?, ?, ?, ?)",
			d.ID, p.ID, d.DayNumber, d.Title); err != nil {
			return fmt.Errorf("insert day %d: %w", d.DayNumber, err)
		}
		for _, e := range d.Exercises {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO workout_exercise (id, day_id, name, sets, reps, rest_seconds, notes, position)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				e.ID, d.ID, e.Name, e.Sets, e.Reps, e.RestSeconds, e.Notes, e.Position); err != nil {
				return fmt.Errorf("insert exercise %q: %w", e.Name, err)
			}
		}
	}
	return tx.Commit()
}

// DeletePlan removes a plan and its day tree.
// PRE: caller has checked there are no assignments
func (s *SQLStore) DeletePlan(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := deleteTree(ctx, tx, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM workout_plan WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteTree(ctx context.Context, tx storage.Tx, planID string) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM workout_exercise WHERE day_id IN (SELECT id FROM workout_day WHERE plan_id = ?)", planID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, "DELETE FROM workout_day WHERE plan_id = ?", planID)
	return err
}

// ListPlans returns plans ordered by name.
// PRE: filter.Limit > 0
func (s *SQLStore) ListPlans(ctx context.Context, filter ListFilter) ([]domain.Plan, error) {
	where, args := filter.where()
	args = append(args, filter.Limit, filter.Offset)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+planColumns+" FROM workout_plan"+where+" ORDER BY name, id LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

// CountPlans returns the number of plans matching filter.
func (s *SQLStore) CountPlans(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filter.where()
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM workout_plan"+where, args...).Scan(&n)
	return n, err
}

// SaveAssignment inserts or updates an assignment.
// PRE: assignment has been validated
func (s *SQLStore) SaveAssignment(ctx context.Context, a domain.Assignment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workout_assignment (id, plan_id, client_id, start_date, end_date, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   start_date=excluded.start_date, end_date=excluded.end_date, active=excluded.active`,
		a.ID, a.PlanID, a.ClientID, a.StartDate, a.EndDate, storage.BoolToInt(a.Active),
		storage.FormatTime(a.CreatedAt))
	return err
}

// ListAssignments returns assignments matching filter, newest first.
func (s *SQLStore) ListAssignments(ctx context.Context, filter AssignmentFilter) ([]domain.Assignment, error) {
	var clauses []string
	var args []any
	if filter.PlanID != "" {
		clauses = append(clauses, "plan_id = ?")
		args = append(args, filter.PlanID)
	}
	if filter.ClientID != "" {
		clauses = append(clauses, "client_id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.ActiveOnly {
		clauses = append(clauses, "active = 1")
	}
	query := "SELECT id, plan_id, client_id, start_date, end_date, active, created_at FROM workout_assignment"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	rows, err := s.db.QueryContext(ctx, query+" ORDER BY created_at DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Assignment
	for rows.Next() {
		var a domain.Assignment
		var active int
		var createdAt string
		if err := rows.Scan(&a.ID, &a.PlanID, &a.ClientID, &a.StartDate, &a.EndDate, &active, &createdAt); err != nil {
			return nil, err
		}
		a.Active = active != 0
		if a.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

// CountAssignments returns how many assignments reference planID.
func (s *SQLStore) CountAssignments(ctx context.Context, planID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM workout_assignment WHERE plan_id = ?", planID).Scan(&n)
	return n, err
}

// SaveLog inserts a completion log.
// PRE: log has been validated
func (s *SQLStore) SaveLog(ctx context.Context, l domain.CompletionLog) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workout_log (id, client_id, plan_id, day_id, exercise_id, completed_at, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.ClientID, l.PlanID, l.DayID, l.ExerciseID, storage.FormatTime(l.CompletedAt), l.Notes)
	return err
}

// ListLogs returns completion logs matching filter, most recent first.
// PRE: filter.Limit > 0
func (s *SQLStore) ListLogs(ctx context.Context, filter LogFilter) ([]domain.CompletionLog, error) {
	var clauses []string
	var args []any
	if filter.ClientID != "" {
		clauses = append(clauses, "client_id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.PlanID != "" {
		clauses = append(clauses, "plan_id = ?")
		args = append(args, filter.PlanID)
	}
	query := "SELECT id, client_id, plan_id, day_id, exercise_id, completed_at, notes FROM workout_log"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	rows, err := s.db.QueryContext(ctx, query+" ORDER BY completed_at DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.CompletionLog
	for rows.Next() {
		var l domain.CompletionLog
		var completedAt string
		if err := rows.Scan(&l.ID, &l.ClientID, &l.PlanID, &l.DayID, &l.ExerciseID, &completedAt, &l.Notes); err != nil {
			return nil, err
		}
		if l.CompletedAt, err = storage.ParseTime(completedAt); err != nil {
			return nil, fmt.Errorf("failed to parse completed_at: %w", err)
		}
		results = append(results, l)
	}
	return results, rows.Err()
}

func (f ListFilter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.Level != "" {
		clauses = append(clauses, "level = ?")
		args = append(args, f.Level)
	}
	if f.Search != "" {
		clauses = append(clauses, "LOWER(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanPlan(row storage.Scanner) (domain.Plan, error) {
	var p domain.Plan
	var createdAt, updatedAt string
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Level, &p.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return domain.Plan{}, err
	}
	if p.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Plan{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if p.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return domain.Plan{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return p, nil
}
