package web

import (
	"net/http"
	"time"

	"fitstudio/internal/adapters/http/middleware"
	nutritionStore "fitstudio/internal/adapters/storage/nutrition"
	workoutStore "fitstudio/internal/adapters/storage/workout"
	"fitstudio/internal/application/listutil"
	"fitstudio/internal/application/orchestrators"
	"fitstudio/internal/domain/nutrition"
)

// --- Workout plans ---

type workoutPlanRequest struct {
	Name        string    `json:"name" validate:"required,max=120"`
	Description string    `json:"description" validate:"max=2000"`
	Level       string    `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Days        []dayView `json:"days" validate:"dive"`
}

// handleListWorkoutPlans handles GET /api/workout-plans?level=&q=
func handleListWorkoutPlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lp := listutil.ParseListParams(r.URL.Query(), []string{"level"})
	filter := workoutStore.ListFilter{Level: lp.Filters["level"], Search: lp.Search}
	total, err := stores.WorkoutStore.CountPlans(ctx, filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	page := listutil.NewPageInfo(lp.Page, lp.PerPage, total)
	filter.Limit = page.PerPage
	filter.Offset = page.Offset()
	plans, err := stores.WorkoutStore.ListPlans(ctx, filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	respondList(w, mapSlice(plans, toWorkoutPlanView), page)
}

// handleCreateWorkoutPlan handles POST /api/workout-plans
func handleCreateWorkoutPlan(w http.ResponseWriter, r *http.Request) {
	var req workoutPlanRequest
	if !bind(w, r, &req) {
		return
	}
	sess, _ := middleware.GetSessionFromContext(r.Context())
	p, err := orchestrators.ExecuteSaveWorkoutPlan(r.Context(), orchestrators.SaveWorkoutPlanInput{
		Name:        req.Name,
		Description: req.Description,
		Level:       req.Level,
		CreatedBy:   sess.AccountID,
		Days:        toWorkoutDays(req.Days),
	}, orchestrators.SaveWorkoutPlanDeps{
		WorkoutStore: stores.WorkoutStore,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toWorkoutPlanView(p))
}

// handleGetWorkoutPlan handles GET /api/workout-plans/{id}
func handleGetWorkoutPlan(w http.ResponseWriter, r *http.Request) {
	p, err := stores.WorkoutStore.GetPlan(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toWorkoutPlanView(p))
}

// handleDeleteWorkoutPlan handles DELETE /api/workout-plans/{id}. Plans that are
// assigned to anyone are refused with 400.
func handleDeleteWorkoutPlan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := orchestrators.ExecuteDeleteWorkoutPlan(r.Context(), id, orchestrators.DeletePlanDeps{
		WorkoutStore: stores.WorkoutStore,
	}); err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

type assignPlanRequest struct {
	ClientID  string `json:"client_id" validate:"required"`
	StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

func (req assignPlanRequest) input(planID string) orchestrators.AssignPlanInput {
	return orchestrators.AssignPlanInput{
		PlanID:    planID,
		ClientID:  req.ClientID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
}

// handleAssignWorkoutPlan handles POST /api/workout-plans/{id}/assign
func handleAssignWorkoutPlan(w http.ResponseWriter, r *http.Request) {
	var req assignPlanRequest
	if !bind(w, r, &req) {
		return
	}
	a, err := orchestrators.ExecuteAssignWorkoutPlan(r.Context(), req.input(r.PathValue("id")), orchestrators.AssignWorkoutPlanDeps{
		WorkoutStore: stores.WorkoutStore,
		ClientStore:  stores.ClientStore,
		Location:     studioLocation(),
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toWorkoutAssignmentView(a))
}

type workoutLogRequest struct {
	ClientID    string     `json:"client_id" validate:"required"`
	PlanID      string     `json:"plan_id" validate:"required"`
	DayID       string     `json:"day_id"`
	ExerciseID  string     `json:"exercise_id"`
	CompletedAt *time.Time `json:"completed_at"`
	Notes       string     `json:"notes" validate:"max=2000"`
}

func (req workoutLogRequest) input() orchestrators.LogWorkoutInput {
	in := orchestrators.LogWorkoutInput{
		ClientID:   req.ClientID,
		PlanID:     req.PlanID,
		DayID:      req.DayID,
		ExerciseID: req.ExerciseID,
		Notes:      req.Notes,
	}
	if req.CompletedAt != nil {
		in.CompletedAt = req.CompletedAt.UTC()
	}
	return in
}

func logWorkoutDeps() orchestrators.LogWorkoutDeps {
	return orchestrators.LogWorkoutDeps{WorkoutStore: stores.WorkoutStore, GenerateID: generateID, Now: timeNow}
}

// handleListWorkoutLogs handles GET /api/workout-logs?client_id=&plan_id=
func handleListWorkoutLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pp := listutil.ParsePageParams(q)
	logs, err := stores.WorkoutStore.ListLogs(r.Context(), workoutStore.LogFilter{
		ClientID: q.Get("client_id"),
		PlanID:   q.Get("plan_id"),
		Limit:    pp.PerPage,
		Offset:   (pp.Page - 1) * pp.PerPage,
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, mapSlice(logs, toWorkoutLogView))
}

// handleLogWorkout handles POST /api/workout-logs (staff logging on behalf of a client).
func handleLogWorkout(w http.ResponseWriter, r *http.Request) {
	var req workoutLogRequest
	if !bind(w, r, &req) {
		return
	}
	if _, err := stores.ClientStore.GetByID(r.Context(), req.ClientID); err != nil {
		handleError(w, r, err)
		return
	}
	l, err := orchestrators.ExecuteLogWorkout(r.Context(), req.input(), logWorkoutDeps())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toWorkoutLogView(l))
}

// --- Meal plans ---

type mealPlanRequest struct {
	Name          string         `json:"name" validate:"required,max=120"`
	Description   string         `json:"description" validate:"max=2000"`
	DailyCalories int            `json:"daily_calories" validate:"gte=0"`
	Items         []mealItemView `json:"items" validate:"dive"`
}

func mealPlanDeps() orchestrators.MealPlanDeps {
	return orchestrators.MealPlanDeps{
		NutritionStore: stores.NutritionStore,
		ClientStore:    stores.ClientStore,
		Location:       studioLocation(),
		GenerateID:     generateID,
		Now:            timeNow,
	}
}

// handleListMealPlans handles GET /api/meal-plans?q=
func handleListMealPlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lp := listutil.ParseListParams(r.URL.Query(), nil)
	filter := nutritionStore.ListFilter{Search: lp.Search}
	total, err := stores.NutritionStore.CountPlans(ctx, filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	page := listutil.NewPageInfo(lp.Page, lp.PerPage, total)
	filter.Limit = page.PerPage
	filter.Offset = page.Offset()
	plans, err := stores.NutritionStore.ListPlans(ctx, filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	respondList(w, mapSlice(plans, toMealPlanView), page)
}

// handleCreateMealPlan handles POST /api/meal-plans
func handleCreateMealPlan(w http.ResponseWriter, r *http.Request) {
	var req mealPlanRequest
	if !bind(w, r, &req) {
		return
	}
	p, err := orchestrators.ExecuteSaveMealPlan(r.Context(), orchestrators.SaveMealPlanInput{
		Name:          req.Name,
		Description:   req.Description,
		DailyCalories: req.DailyCalories,
		Items:         toMealItems(req.Items),
	}, mealPlanDeps())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toMealPlanView(p))
}

// handleGetMealPlan handles GET /api/meal-plans/{id}
func handleGetMealPlan(w http.ResponseWriter, r *http.Request) {
	p, err := stores.NutritionStore.GetPlan(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toMealPlanView(p))
}

// handleDeleteMealPlan handles DELETE /api/meal-plans/{id}
func handleDeleteMealPlan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := orchestrators.ExecuteDeleteMealPlan(r.Context(), id, mealPlanDeps()); err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

// handleAssignMealPlan handles POST /api/meal-plans/{id}/assign
func handleAssignMealPlan(w http.ResponseWriter, r *http.Request) {
	var req assignPlanRequest
	if !bind(w, r, &req) {
		return
	}
	a, err := orchestrators.ExecuteAssignMealPlan(r.Context(), req.input(r.PathValue("id")), mealPlanDeps())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toMealAssignmentView(a))
}

type foodLogRequest struct {
	ClientID    string     `json:"client_id" validate:"required"`
	LoggedAt    *time.Time `json:"logged_at"`
	Meal        string     `json:"meal" validate:"required,oneof=breakfast lunch dinner snack"`
	Description string     `json:"description" validate:"required,max=500"`
	Calories    int        `json:"calories" validate:"gte=0"`
	ProteinG    float64    `json:"protein_g" validate:"gte=0"`
	CarbsG      float64    `json:"carbs_g" validate:"gte=0"`
	FatG        float64    `json:"fat_g" validate:"gte=0"`
}

func (req foodLogRequest) input() orchestrators.LogFoodInput {
	in := orchestrators.LogFoodInput{
		ClientID:    req.ClientID,
		Meal:        req.Meal,
		Description: req.Description,
		Macros:      nutrition.Macros{Calories: req.Calories, ProteinG: req.ProteinG, CarbsG: req.CarbsG, FatG: req.FatG},
	}
	if req.LoggedAt != nil {
		in.LoggedAt = req.LoggedAt.UTC()
	}
	return in
}

// handleListFoodLogs handles GET /api/food-logs?client_id=&date=
func handleListFoodLogs(w http.ResponseWriter, r *http.Request) {
	if !datesOK(w, r, "date") {
		return
	}
	q := r.URL.Query()
	pp := listutil.ParsePageParams(q)
	logs, err := stores.NutritionStore.ListFoodLogs(r.Context(), nutritionStore.FoodLogFilter{
		ClientID: q.Get("client_id"),
		Date:     q.Get("date"),
		Limit:    pp.PerPage,
		Offset:   (pp.Page - 1) * pp.PerPage,
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, mapSlice(logs, toFoodLogView))
}

// handleLogFood handles POST /api/food-logs
func handleLogFood(w http.ResponseWriter, r *http.Request) {
	var req foodLogRequest
	if !bind(w, r, &req) {
		return
	}
	if _, err := stores.ClientStore.GetByID(r.Context(), req.ClientID); err != nil {
		handleError(w, r, err)
		return
	}
	l, err := orchestrators.ExecuteLogFood(r.Context(), req.input(), mealPlanDeps())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toFoodLogView(l))
}
