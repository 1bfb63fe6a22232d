package nutrition

import (
	"context"

	domain "fitstudio/internal/domain/nutrition"
)

// Store persists meal plans, their assignments and client food logs.
type Store interface {
	// GetPlan loads a meal plan with its items.
	GetPlan(ctx context.Context, id string) (domain.Plan, error)
	// SavePlan replaces the plan and its items in one transaction.
	SavePlan(ctx context.Context, p domain.Plan) error
	DeletePlan(ctx context.Context, id string) error
	ListPlans(ctx context.Context, filter ListFilter) ([]domain.Plan, error)
	CountPlans(ctx context.Context, filter ListFilter) (int, error)

	SaveAssignment(ctx context.Context, a domain.Assignment) error
	ListAssignments(ctx context.Context, filter AssignmentFilter) ([]domain.Assignment, error)
	CountAssignments(ctx context.Context, planID string) (int, error)

	SaveFoodLog(ctx context.Context, l domain.FoodLog) error
	ListFoodLogs(ctx context.Context, filter FoodLogFilter) ([]domain.FoodLog, error)
}

// ListFilter carries filtering parameters for meal plan listing.
type ListFilter struct {
	Search string
	Limit  int
	Offset int
}

// AssignmentFilter selects meal plan assignments.
type AssignmentFilter struct {
	PlanID     string
	ClientID   string
	ActiveOnly bool
}

// FoodLogFilter selects food logs. Date matches the UTC day prefix of logged_at.
type FoodLogFilter struct {
	ClientID string
	Date     string
	Limit    int
	Offset   int
}
