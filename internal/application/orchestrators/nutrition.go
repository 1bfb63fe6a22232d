package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	nutritionstore "fitstudio/internal/adapters/storage/nutrition"
	"fitstudio/internal/domain/nutrition"
)

// NutritionStore defines the meal-plan persistence needed by nutrition orchestrators.
type NutritionStore interface {
	GetPlan(ctx context.Context, id string) (nutrition.Plan, error)
	SavePlan(ctx context.Context, p nutrition.Plan) error
	DeletePlan(ctx context.Context, id string) error
	SaveAssignment(ctx context.Context, a nutrition.Assignment) error
	ListAssignments(ctx context.Context, filter nutritionstore.AssignmentFilter) ([]nutrition.Assignment, error)
	CountAssignments(ctx context.Context, planID string) (int, error)
	SaveFoodLog(ctx context.Context, l nutrition.FoodLog) error
}

// SaveMealPlanInput carries a meal plan with its items. Item IDs are regenerated.
type SaveMealPlanInput struct {
	ID            string
	Name          string
	Description   string
	DailyCalories int
	Items         []nutrition.Item
}

// MealPlanDeps holds dependencies for the meal plan orchestrators.
type MealPlanDeps struct {
	NutritionStore NutritionStore
	ClientStore    ClientGetter
	Location       *time.Location
	GenerateID     func() string
	Now            func() time.Time
}

// ExecuteSaveMealPlan creates or replaces a meal plan and its items.
// POST: Plan and items persisted atomically; item positions follow input order
func ExecuteSaveMealPlan(ctx context.Context, input SaveMealPlanInput, deps MealPlanDeps) (nutrition.Plan, error) {
	now := nowFn(deps.Now)
	p := nutrition.Plan{ID: input.ID, CreatedAt: now}
	if input.ID == "" {
		p.ID = idFn(deps.GenerateID)
	} else {
		existing, err := deps.NutritionStore.GetPlan(ctx, input.ID)
		if err != nil {
			return nutrition.Plan{}, err
		}
		p.CreatedAt = existing.CreatedAt
	}
	p.Name = strings.TrimSpace(input.Name)
	p.Description = input.Description
	p.DailyCalories = input.DailyCalories
	p.UpdatedAt = now
	p.Items = make([]nutrition.Item, len(input.Items))
	for i, it := range input.Items {
		it.ID = idFn(deps.GenerateID)
		it.MealPlanID = p.ID
		it.Name = strings.TrimSpace(it.Name)
		p.Items[i] = it
	}

	if err := p.Validate(); err != nil {
		return nutrition.Plan{}, invalid(err)
	}
	if err := deps.NutritionStore.SavePlan(ctx, p); err != nil {
		return nutrition.Plan{}, err
	}
	slog.Info("nutrition_event", "event", "meal_plan_saved", "plan_id", p.ID, "items", len(p.Items))
	return p, nil
}

// ExecuteAssignMealPlan assigns a meal plan to a client, deactivating the
// client's previously active meal plan assignments.
// PRE: plan and client exist
func ExecuteAssignMealPlan(ctx context.Context, input AssignPlanInput, deps MealPlanDeps) (nutrition.Assignment, error) {
	if _, err := deps.NutritionStore.GetPlan(ctx, input.PlanID); err != nil {
		return nutrition.Assignment{}, err
	}
	if _, err := deps.ClientStore.GetByID(ctx, input.ClientID); err != nil {
		return nutrition.Assignment{}, err
	}
	now := nowFn(deps.Now)
	a := nutrition.Assignment{
		ID:         idFn(deps.GenerateID),
		MealPlanID: input.PlanID,
		ClientID:   input.ClientID,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Active:     true,
		CreatedAt:  now,
	}
	if a.StartDate == "" {
		a.StartDate = studioToday(now, deps.Location).Format("2006-01-02")
	}
	if err := a.Validate(); err != nil {
		return nutrition.Assignment{}, invalid(err)
	}

	previous, err := deps.NutritionStore.ListAssignments(ctx, nutritionstore.AssignmentFilter{ClientID: a.ClientID, ActiveOnly: true})
	if err != nil {
		return nutrition.Assignment{}, err
	}
	for _, prev := range previous {
		prev.Active = false
		if err := deps.NutritionStore.SaveAssignment(ctx, prev); err != nil {
			return nutrition.Assignment{}, err
		}
	}
	if err := deps.NutritionStore.SaveAssignment(ctx, a); err != nil {
		return nutrition.Assignment{}, err
	}
	slog.Info("nutrition_event", "event", "meal_plan_assigned", "plan_id", a.MealPlanID, "client_id", a.ClientID, "replaced", len(previous))
	return a, nil
}

// ExecuteDeleteMealPlan removes a meal plan that nobody is assigned to.
// POST: Plan deleted, or a ValidationError wrapping nutrition.ErrPlanHasAssignee
func ExecuteDeleteMealPlan(ctx context.Context, planID string, deps MealPlanDeps) error {
	if _, err := deps.NutritionStore.GetPlan(ctx, planID); err != nil {
		return err
	}
	n, err := deps.NutritionStore.CountAssignments(ctx, planID)
	if err != nil {
		return err
	}
	if n > 0 {
		return invalid(nutrition.ErrPlanHasAssignee)
	}
	if err := deps.NutritionStore.DeletePlan(ctx, planID); err != nil {
		return err
	}
	slog.Info("nutrition_event", "event", "meal_plan_deleted", "plan_id", planID)
	return nil
}

// LogFoodInput carries one food diary entry.
type LogFoodInput struct {
	ClientID    string
	LoggedAt    time.Time // zero means now
	Meal        string
	Description string
	nutrition.Macros
}

// ExecuteLogFood records a food diary entry.
// POST: Food log persisted with LoggedAt defaulting to now
func ExecuteLogFood(ctx context.Context, input LogFoodInput, deps MealPlanDeps) (nutrition.FoodLog, error) {
	l := nutrition.FoodLog{
		ID:          idFn(deps.GenerateID),
		ClientID:    input.ClientID,
		LoggedAt:    input.LoggedAt,
		Meal:        input.Meal,
		Description: strings.TrimSpace(input.Description),
		Macros:      input.Macros,
	}
	if err := l.Validate(nowFn(deps.Now)); err != nil {
		return nutrition.FoodLog{}, invalid(err)
	}
	if err := deps.NutritionStore.SaveFoodLog(ctx, l); err != nil {
		return nutrition.FoodLog{}, err
	}
	slog.Info("nutrition_event", "event", "food_logged", "client_id", l.ClientID, "meal", l.Meal, "calories", l.Calories)
	return l, nil
}
