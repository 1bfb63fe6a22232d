package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	workoutstore "fitstudio/internal/adapters/storage/workout"
	"fitstudio/internal/domain/workout"
)

// WorkoutStore defines the workout persistence needed by workout orchestrators.
type WorkoutStore interface {
	GetPlan(ctx context.Context, id string) (workout.Plan, error)
	SavePlan(ctx context.Context, p workout.Plan) error
	DeletePlan(ctx context.Context, id string) error
	SaveAssignment(ctx context.Context, a workout.Assignment) error
	ListAssignments(ctx context.Context, filter workoutstore.AssignmentFilter) ([]workout.Assignment, error)
	CountAssignments(ctx context.Context, planID string) (int, error)
	SaveLog(ctx context.Context, l workout.CompletionLog) error
}

// --- Save Workout Plan ---

// SaveWorkoutPlanInput carries a whole plan tree. Day and exercise IDs in the
// input are ignored; the tree is rewritten on every save.
type SaveWorkoutPlanInput struct {
	ID          string // empty on create
	Name        string
	Description string
	Level       string
	CreatedBy   string
	Days        []workout.Day
}

// SaveWorkoutPlanDeps holds dependencies for SaveWorkoutPlan.
type SaveWorkoutPlanDeps struct {
	WorkoutStore WorkoutStore
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSaveWorkoutPlan creates or replaces a workout plan with its days and exercises.
// PRE: Name is non-empty; day numbers are positive and unique
// POST: Plan tree persisted atomically; exercise positions follow input order
func ExecuteSaveWorkoutPlan(ctx context.Context, input SaveWorkoutPlanInput, deps SaveWorkoutPlanDeps) (workout.Plan, error) {
	now := nowFn(deps.Now)
	p := workout.Plan{ID: input.ID, CreatedAt: now, CreatedBy: input.CreatedBy}
	if input.ID == "" {
		p.ID = idFn(deps.GenerateID)
	} else {
		existing, err := deps.WorkoutStore.GetPlan(ctx, input.ID)
		if err != nil {
			return workout.Plan{}, err
		}
		p.CreatedAt = existing.CreatedAt
		p.CreatedBy = existing.CreatedBy
	}
	p.Name = strings.TrimSpace(input.Name)
	p.Description = input.Description
	p.Level = input.Level
	p.UpdatedAt = now

	p.Days = make([]workout.Day, len(input.Days))
	for i, d := range input.Days {
		day := workout.Day{ID: idFn(deps.GenerateID), PlanID: p.ID, DayNumber: d.DayNumber, Title: d.Title}
		day.Exercises = make([]workout.Exercise, len(d.Exercises))
		for j, e := range d.Exercises {
			e.ID = idFn(deps.GenerateID)
			e.DayID = day.ID
			e.Name = strings.TrimSpace(e.Name)
			day.Exercises[j] = e
		}
		p.Days[i] = day
	}

	if err := p.Validate(); err != nil {
		return workout.Plan{}, invalid(err)
	}
	if err := deps.WorkoutStore.SavePlan(ctx, p); err != nil {
		return workout.Plan{}, err
	}
	slog.Info("workout_event", "event", "plan_saved", "plan_id", p.ID, "days", len(p.Days), "exercises", p.ExerciseCount())
	return p, nil
}

// --- Assign Workout Plan ---

// AssignPlanInput carries a plan assignment; shared by workout and meal plans.
type AssignPlanInput struct {
	PlanID    string
	ClientID  string
	StartDate string // defaults to today in the studio timezone
	EndDate   string
}

// AssignWorkoutPlanDeps holds dependencies for AssignWorkoutPlan.
type AssignWorkoutPlanDeps struct {
	WorkoutStore WorkoutStore
	ClientStore  ClientGetter
	Location     *time.Location
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteAssignWorkoutPlan assigns a plan to a client.
// PRE: plan and client exist
// POST: New active assignment persisted; the client's previously active workout
// assignments are deactivated
// INVARIANT: a client follows at most one active workout plan
func ExecuteAssignWorkoutPlan(ctx context.Context, input AssignPlanInput, deps AssignWorkoutPlanDeps) (workout.Assignment, error) {
	if _, err := deps.WorkoutStore.GetPlan(ctx, input.PlanID); err != nil {
		return workout.Assignment{}, err
	}
	if _, err := deps.ClientStore.GetByID(ctx, input.ClientID); err != nil {
		return workout.Assignment{}, err
	}
	now := nowFn(deps.Now)
	a := workout.Assignment{
		ID:        idFn(deps.GenerateID),
		PlanID:    input.PlanID,
		ClientID:  input.ClientID,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Active:    true,
		CreatedAt: now,
	}
	if a.StartDate == "" {
		a.StartDate = studioToday(now, deps.Location).Format("2006-01-02")
	}
	if err := a.Validate(); err != nil {
		return workout.Assignment{}, invalid(err)
	}

	previous, err := deps.WorkoutStore.ListAssignments(ctx, workoutstore.AssignmentFilter{ClientID: a.ClientID, ActiveOnly: true})
	if err != nil {
		return workout.Assignment{}, err
	}
	for _, prev := range previous {
		prev.Active = false
		if err := deps.WorkoutStore.SaveAssignment(ctx, prev); err != nil {
			return workout.Assignment{}, err
		}
	}
	if err := deps.WorkoutStore.SaveAssignment(ctx, a); err != nil {
		return workout.Assignment{}, err
	}
	slog.Info("workout_event", "event", "plan_assigned", "plan_id", a.PlanID, "client_id", a.ClientID, "replaced", len(previous))
	return a, nil
}

// --- Delete Workout Plan ---

// DeletePlanDeps holds dependencies for DeleteWorkoutPlan.
type DeletePlanDeps struct {
	WorkoutStore WorkoutStore
}

// ExecuteDeleteWorkoutPlan removes an unassigned plan.
// PRE: plan exists
// POST: Plan tree deleted, or a ValidationError wrapping workout.ErrPlanHasAssignee
func ExecuteDeleteWorkoutPlan(ctx context.Context, planID string, deps DeletePlanDeps) error {
	if _, err := deps.WorkoutStore.GetPlan(ctx, planID); err != nil {
		return err
	}
	n, err := deps.WorkoutStore.CountAssignments(ctx, planID)
	if err != nil {
		return err
	}
	if n > 0 {
		return invalid(workout.ErrPlanHasAssignee)
	}
	if err := deps.WorkoutStore.DeletePlan(ctx, planID); err != nil {
		return err
	}
	slog.Info("workout_event", "event", "plan_deleted", "plan_id", planID)
	return nil
}

// --- Log Workout ---

// LogWorkoutInput carries a completed exercise or day.
type LogWorkoutInput struct {
	ClientID    string
	PlanID      string
	DayID       string
	ExerciseID  string
	CompletedAt time.Time // zero means now
	Notes       string
}

// LogWorkoutDeps holds dependencies for LogWorkout.
type LogWorkoutDeps struct {
	WorkoutStore WorkoutStore
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteLogWorkout records workout completion.
// PRE: PlanID exists; DayID and ExerciseID, when set, belong to it
// POST: Completion log persisted
func ExecuteLogWorkout(ctx context.Context, input LogWorkoutInput, deps LogWorkoutDeps) (workout.CompletionLog, error) {
	l := workout.CompletionLog{
		ID:          idFn(deps.GenerateID),
		ClientID:    input.ClientID,
		PlanID:      input.PlanID,
		DayID:       input.DayID,
		ExerciseID:  input.ExerciseID,
		CompletedAt: input.CompletedAt,
		Notes:       input.Notes,
	}
	if l.CompletedAt.IsZero() {
		l.CompletedAt = nowFn(deps.Now)
	}
	if err := l.Validate(); err != nil {
		return workout.CompletionLog{}, invalid(err)
	}
	p, err := deps.WorkoutStore.GetPlan(ctx, l.PlanID)
	if err != nil {
		return workout.CompletionLog{}, err
	}
	if !planContains(p, l.DayID, l.ExerciseID) {
		return workout.CompletionLog{}, invalidField("exercise_id", "day or exercise is not part of this plan")
	}
	if err := deps.WorkoutStore.SaveLog(ctx, l); err != nil {
		return workout.CompletionLog{}, err
	}
	slog.Info("workout_event", "event", "workout_logged", "client_id", l.ClientID, "plan_id", l.PlanID, "day_id", l.DayID)
	return l, nil
}

func planContains(p workout.Plan, dayID, exerciseID string) bool {
	if dayID == "" && exerciseID == "" {
		return true
	}
	for _, d := range p.Days {
		if dayID != "" && d.ID != dayID {
			continue
		}
		if exerciseID == "" {
			return true
		}
		for _, e := range d.Exercises {
			if e.ID == exerciseID {
				return true
			}
		}
	}
	return false
}
