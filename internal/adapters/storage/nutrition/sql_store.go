package nutrition

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fitstudio/internal/adapters/storage"
	domain "fitstudio/internal/domain/nutrition"
)

const (
	planColumns = "id, name, description, daily_calories, created_at, updated_at"
	logColumns  = "id, client_id, logged_at, meal, description, calories, protein_g, carbs_g, fat_g"
)

// SQLStore implements Store over any SQL dialect supported by storage.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new nutrition store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// GetPlan loads a meal plan and its items ordered by position.
// PRE: id is non-empty
// POST: Returns the plan or an error wrapping sql.ErrNoRows
func (s *SQLStore) GetPlan(ctx context.Context, id string) (domain.Plan, error) {
	p, err := scanPlan(s.db.QueryRowContext(ctx, "SELECT "+planColumns+" FROM meal_plan WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return domain.Plan{}, fmt.Errorf("meal plan not found: %w", err)
	}
	if err != nil {
		return domain.Plan{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, meal_plan_id, meal, name, quantity, calories, protein_g, carbs_g, fat_g, position
		 FROM meal_plan_item WHERE meal_plan_id = ? ORDER BY position`, id)
	if err != nil {
		return domain.Plan{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ID, &it.MealPlanID, &it.Meal, &it.Name, &it.Quantity,
			&it.Calories, &it.ProteinG, &it.CarbsG, &it.FatG, &it.Position); err != nil {
			return domain.Plan{}, err
		}
		p.Items = append(p.Items, it)
	}
	return p, rows.Err()
}

// SavePlan upserts the plan and rewrites its items.
// PRE: plan has been validated; every item has an ID
// POST: Stored items equal p.Items, or nothing changes on error
func (s *SQLStore) SavePlan(ctx context.Context, p domain.Plan) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO meal_plan (`+planColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, description=excluded.description,
		   daily_calories=excluded.daily_calories, updated_at=excluded.updated_at`,
		p.ID, p.Name, p.Description, p.DailyCalories,
		storage.FormatTime(p.CreatedAt), storage.FormatTime(p.UpdatedAt))
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM meal_plan_item WHERE meal_plan_id = ?", p.ID); err != nil {
		return err
	}
	for _, it := range p.Items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO meal_plan_item (id, meal_plan_id, meal, name, quantity, calories, protein_g, carbs_g, fat_g, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			it.ID, p.ID, it.Meal, it.Name, it.Quantity, it.Calories, it.ProteinG, it.CarbsG, it.FatG, it.Position); err != nil {
			return fmt.Errorf("insert item %q: %w", it.Name, err)
		}
	}
	return tx.Commit()
}

// DeletePlan removes a meal plan and its items.
// PRE: caller has checked there are no assignments
func (s *SQLStore) DeletePlan(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, "DELETE FROM meal_plan_item WHERE meal_plan_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM meal_plan WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// ListPlans returns meal plans ordered by name, without items.
// PRE: filter.Limit > 0
func (s *SQLStore) ListPlans(ctx context.Context, filter ListFilter) ([]domain.Plan, error) {
	where, args := filter.where()
	args = append(args, filter.Limit, filter.Offset)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+planColumns+" FROM meal_plan"+where+" ORDER BY name, id LIMIT ? OFFSET ?", args...)
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

// CountPlans returns the number of meal plans matching filter.
func (s *SQLStore) CountPlans(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filter.where()
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM meal_plan"+where, args...).Scan(&n)
	return n, err
}

// SaveAssignment inserts or updates an assignment.
func (s *SQLStore) SaveAssignment(ctx context.Context, a domain.Assignment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meal_plan_assignment (id, meal_plan_id, client_id, start_date, end_date, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   start_date=excluded.start_date, end_date=excluded.end_date, active=excluded.active`,
		a.ID, a.MealPlanID, a.ClientID, a.StartDate, a.EndDate, storage.BoolToInt(a.Active),
		storage.FormatTime(a.CreatedAt))
	return err
}

// ListAssignments returns assignments matching filter, newest first.
func (s *SQLStore) ListAssignments(ctx context.Context, filter AssignmentFilter) ([]domain.Assignment, error) {
	var clauses []string
	var args []any
	if filter.PlanID != "" {
		clauses = append(clauses, "meal_plan_id = ?")
		args = append(args, filter.PlanID)
	}
	if filter.ClientID != "" {
		clauses = append(clauses, "client_id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.ActiveOnly {
		clauses = append(clauses, "active = 1")
	}
	query := "SELECT id, meal_plan_id, client_id, start_date, end_date, active, created_at FROM meal_plan_assignment"
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
		if err := rows.Scan(&a.ID, &a.MealPlanID, &a.ClientID, &a.StartDate, &a.EndDate, &active, &createdAt); err != nil {
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
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM meal_plan_assignment WHERE meal_plan_id = ?", planID).Scan(&n)
	return n, err
}

// SaveFoodLog inserts a food log entry.
// PRE: log has been validated
func (s *SQLStore) SaveFoodLog(ctx context.Context, l domain.FoodLog) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO food_log ("+logColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		l.ID, l.ClientID, storage.FormatTime(l.LoggedAt), l.Meal, l.Description,
		l.Calories, l.ProteinG, l.CarbsG, l.FatG)
	return err
}

// ListFoodLogs returns food logs matching filter, most recent first.
// PRE: filter.Limit > 0
func (s *SQLStore) ListFoodLogs(ctx context.Context, filter FoodLogFilter) ([]domain.FoodLog, error) {
	var clauses []string
	var args []any
	if filter.ClientID != "" {
		clauses = append(clauses, "client_id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.Date != "" {
		clauses = append(clauses, "logged_at LIKE ?")
		args = append(args, filter.Date+"%")
	}
	query := "SELECT " + logColumns + " FROM food_log"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	rows, err := s.db.QueryContext(ctx, query+" ORDER BY logged_at DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.FoodLog
	for rows.Next() {
		var l domain.FoodLog
		var loggedAt string
		if err := rows.Scan(&l.ID, &l.ClientID, &loggedAt, &l.Meal, &l.Description,
			&l.Calories, &l.ProteinG, &l.CarbsG, &l.FatG); err != nil {
			return nil, err
		}
		if l.LoggedAt, err = storage.ParseTime(loggedAt); err != nil {
			return nil, fmt.Errorf("failed to parse logged_at: %w", err)
		}
		results = append(results, l)
	}
	return results, rows.Err()
}

func (f ListFilter) where() (string, []any) {
	if f.Search == "" {
		return "", nil
	}
	return " WHERE LOWER(name) LIKE ?", []any{"%" + strings.ToLower(f.Search) + "%"}
}

func scanPlan(row storage.Scanner) (domain.Plan, error) {
	var p domain.Plan
	var createdAt, updatedAt string
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.DailyCalories, &createdAt, &updatedAt)
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
