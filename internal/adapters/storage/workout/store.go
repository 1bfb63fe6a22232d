package workout

import (
	"context"

	domain "fitstudio/internal/domain/workout"
)

// Store persists workout plans, their assignments and completion logs.
type Store interface {
	// GetPlan loads a plan with its days and exercises.
	GetPlan(ctx context.Context, id string) (domain.Plan, error)
	// SavePlan replaces the plan and its whole day/exercise tree in one transaction.
	SavePlan(ctx context.Context, p domain.Plan) error
	DeletePlan(ctx context.Context, id string) error
	// ListPlans returns plans without their day tree.
	ListPlans(ctx context.Context, filter ListFilter) ([]domain.Plan, error)
	CountPlans(ctx context.Context, filter ListFilter) (int, error)

	SaveAssignment(ctx context.Context, a domain.Assignment) error
	ListAssignments(ctx context.Context, filter AssignmentFilter) ([]domain.Assignment, error)
	CountAssignments(ctx context.Context, planID string) (int, error)

	SaveLog(ctx context.Context, l domain.CompletionLog) error
	ListLogs(ctx context.Context, filter LogFilter) ([]domain.CompletionLog, error)
}

// ListFilter carries filtering parameters for plan listing.
type ListFilter struct {
	Level  string
	Search string
	Limit  int
	Offset int
}

// AssignmentFilter selects assignments.
type AssignmentFilter struct {
	PlanID     string
	ClientID   string
	ActiveOnly bool
}

// LogFilter selects completion logs.
type LogFilter struct {
	ClientID string
	PlanID   string
	Limit    int
	Offset   int
}
