package projections

import (
	"context"
	"log/slog"
	"time"

	"fitstudio/internal/adapters/storage/appointment"
	"fitstudio/internal/adapters/storage/attendance"
	"fitstudio/internal/adapters/storage/nutrition"
	"fitstudio/internal/adapters/storage/workout"
	domainAppointment "fitstudio/internal/domain/appointment"
	domainAttendance "fitstudio/internal/domain/attendance"
	domainClient "fitstudio/internal/domain/client"
	domainNutrition "fitstudio/internal/domain/nutrition"
	domainWorkout "fitstudio/internal/domain/workout"
)

const (
	portalUpcomingLimit   = 10
	portalAttendanceLimit = 10
	portalWorkoutLogLimit = 20
	portalFoodLogLimit    = 50
)

// GetPortalQuery carries query parameters.
type GetPortalQuery struct {
	ClientID string
}

// GetPortalResult is everything a client sees on their portal home.
type GetPortalResult struct {
	Client           domainClient.Client
	Upcoming         []domainAppointment.Appointment
	WorkoutPlan      *domainWorkout.Plan // nil when no active assignment
	MealPlan         *domainNutrition.Plan
	RecentAttendance []domainAttendance.Log
	RecentWorkouts   []domainWorkout.CompletionLog
	TodaysFood       []domainNutrition.FoodLog
	TodaysCalories   int
}

// GetPortalDeps holds dependencies for GetPortal.
type GetPortalDeps struct {
	ClientStore      ClientStore
	AppointmentStore AppointmentStore
	WorkoutStore     WorkoutStore
	NutritionStore   NutritionStore
	AttendanceStore  AttendanceStore
	Location         *time.Location
	Now              func() time.Time
}

// QueryGetPortal assembles the client portal.
// PRE: query.ClientID is non-empty
// POST: Returns an error wrapping sql.ErrNoRows when the client does not exist;
// other sections are best-effort and left empty when their store fails
// INVARIANT: Upcoming holds only scheduled appointments that have not started yet
func QueryGetPortal(ctx context.Context, query GetPortalQuery, deps GetPortalDeps) (GetPortalResult, error) {
	c, err := deps.ClientStore.GetByID(ctx, query.ClientID)
	if err != nil {
		return GetPortalResult{}, err
	}
	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}
	today, clock := studioToday(now, deps.Location)
	result := GetPortalResult{Client: c}

	appts, err := deps.AppointmentStore.List(ctx, appointment.ListFilter{
		ClientID: c.ID,
		DateFrom: today,
		Status:   domainAppointment.StatusScheduled,
		Limit:    portalUpcomingLimit + 5,
	})
	if err != nil {
		slog.Warn("portal_event", "event", "appointments_failed", "client_id", c.ID, "error", err)
	}
	for _, a := range appts {
		if a.Date == today && a.StartTime <= clock {
			continue
		}
		if len(result.Upcoming) == portalUpcomingLimit {
			break
		}
		result.Upcoming = append(result.Upcoming, a)
	}

	result.WorkoutPlan = activeWorkoutPlan(ctx, deps.WorkoutStore, c.ID)
	result.MealPlan = activeMealPlan(ctx, deps.NutritionStore, c.ID)

	if logs, err := deps.AttendanceStore.List(ctx, attendance.ListFilter{ClientID: c.ID, Limit: portalAttendanceLimit}); err == nil {
		result.RecentAttendance = logs
	} else {
		slog.Warn("portal_event", "event", "attendance_failed", "client_id", c.ID, "error", err)
	}

	if logs, err := deps.WorkoutStore.ListLogs(ctx, workout.LogFilter{ClientID: c.ID, Limit: portalWorkoutLogLimit}); err == nil {
		result.RecentWorkouts = logs
	}

	// Food logs are keyed by the UTC day of logged_at.
	utcDay := now.UTC().Format("2006-01-02")
	if logs, err := deps.NutritionStore.ListFoodLogs(ctx, nutrition.FoodLogFilter{ClientID: c.ID, Date: utcDay, Limit: portalFoodLogLimit}); err == nil {
		result.TodaysFood = logs
		for _, l := range logs {
			result.TodaysCalories += l.Calories
		}
	}

	return result, nil
}

func activeWorkoutPlan(ctx context.Context, store WorkoutStore, clientID string) *domainWorkout.Plan {
	assignments, err := store.ListAssignments(ctx, workout.AssignmentFilter{ClientID: clientID, ActiveOnly: true})
	if err != nil || len(assignments) == 0 {
		return nil
	}
	p, err := store.GetPlan(ctx, assignments[0].PlanID)
	if err != nil {
		slog.Warn("portal_event", "event", "workout_plan_missing", "plan_id", assignments[0].PlanID, "error", err)
		return nil
	}
	return &p
}

func activeMealPlan(ctx context.Context, store NutritionStore, clientID string) *domainNutrition.Plan {
	assignments, err := store.ListAssignments(ctx, nutrition.AssignmentFilter{ClientID: clientID, ActiveOnly: true})
	if err != nil || len(assignments) == 0 {
		return nil
	}
	p, err := store.GetPlan(ctx, assignments[0].MealPlanID)
	if err != nil {
		slog.Warn("portal_event", "event", "meal_plan_missing", "plan_id", assignments[0].MealPlanID, "error", err)
		return nil
	}
	return &p
}
