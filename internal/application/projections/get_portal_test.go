package projections

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	domainAppointment "fitstudio/internal/domain/appointment"
	domainAttendance "fitstudio/internal/domain/attendance"
	domainClient "fitstudio/internal/domain/client"
	domainNutrition "fitstudio/internal/domain/nutrition"
	domainWorkout "fitstudio/internal/domain/workout"
)

func portalDeps() GetPortalDeps {
	return GetPortalDeps{
		ClientStore: &mockClientStore{clients: []domainClient.Client{
			{ID: "c1", Name: "Asha", Status: domainClient.StatusActive},
		}},
		AppointmentStore: &mockAppointmentStore{appts: []domainAppointment.Appointment{
			{ID: "a-past", ClientID: "c1", Date: "2026-10-18", StartTime: "10:00", Status: domainAppointment.StatusScheduled},
			{ID: "a-started", ClientID: "c1", Date: "2026-10-19", StartTime: "10:20", Status: domainAppointment.StatusScheduled},
			{ID: "a-later", ClientID: "c1", Date: "2026-10-19", StartTime: "11:00", Status: domainAppointment.StatusScheduled},
			{ID: "a-cancel", ClientID: "c1", Date: "2026-10-20", StartTime: "10:00", Status: domainAppointment.StatusCancelled},
			{ID: "a-next", ClientID: "c1", Date: "2026-10-21", StartTime: "12:00", Status: domainAppointment.StatusScheduled},
			{ID: "a-other", ClientID: "c2", Date: "2026-10-21", StartTime: "12:00", Status: domainAppointment.StatusScheduled},
		}},
		WorkoutStore: &mockWorkoutStore{
			plans: map[string]domainWorkout.Plan{"wp1": {ID: "wp1", Name: "Strength A"}},
			assignments: []domainWorkout.Assignment{
				{ID: "wa0", PlanID: "wp0", ClientID: "c1", Active: false},
				{ID: "wa1", PlanID: "wp1", ClientID: "c1", Active: true},
			},
			logs: []domainWorkout.CompletionLog{{ID: "wl1", ClientID: "c1", PlanID: "wp1"}},
		},
		NutritionStore: &mockNutritionStore{
			plans:       map[string]domainNutrition.Plan{"mp1": {ID: "mp1", Name: "Cut"}},
			assignments: []domainNutrition.Assignment{{ID: "ma1", MealPlanID: "mp1", ClientID: "c1", Active: true}},
			foodLogs: []domainNutrition.FoodLog{
				{ID: "f1", ClientID: "c1", Macros: domainNutrition.Macros{Calories: 450}},
				{ID: "f2", ClientID: "c1", Macros: domainNutrition.Macros{Calories: 300}},
			},
		},
		AttendanceStore: &mockAttendanceStore{logs: []domainAttendance.Log{
			{ID: "at1", ClientID: "c1", CheckInTime: fixedTime.Add(-24 * time.Hour)},
		}},
		Now: fixedNow,
	}
}

// TestQueryGetPortal verifies every portal section is assembled for the client.
func TestQueryGetPortal(t *testing.T) {
	deps := portalDeps()

	result, err := QueryGetPortal(context.Background(), GetPortalQuery{ClientID: "c1"}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Client.Name != "Asha" {
		t.Errorf("expected client Asha, got %s", result.Client.Name)
	}

	var upcoming []string
	for _, a := range result.Upcoming {
		upcoming = append(upcoming, a.ID)
	}
	want := []string{"a-later", "a-next"}
	if len(upcoming) != len(want) || upcoming[0] != want[0] || upcoming[1] != want[1] {
		t.Errorf("upcoming: got %v, want %v", upcoming, want)
	}

	if result.WorkoutPlan == nil || result.WorkoutPlan.ID != "wp1" {
		t.Errorf("expected active workout plan wp1, got %+v", result.WorkoutPlan)
	}
	if result.MealPlan == nil || result.MealPlan.ID != "mp1" {
		t.Errorf("expected active meal plan mp1, got %+v", result.MealPlan)
	}
	if len(result.RecentAttendance) != 1 {
		t.Errorf("expected 1 attendance log, got %d", len(result.RecentAttendance))
	}
	if len(result.RecentWorkouts) != 1 {
		t.Errorf("expected 1 workout log, got %d", len(result.RecentWorkouts))
	}
	if result.TodaysCalories != 750 {
		t.Errorf("expected 750 calories, got %d", result.TodaysCalories)
	}
	if got := deps.NutritionStore.(*mockNutritionStore).lastFood.Date; got != "2026-10-19" {
		t.Errorf("expected food log date 2026-10-19, got %s", got)
	}
}

// TestQueryGetPortal_NoPlans verifies missing assignments leave plans nil.
func TestQueryGetPortal_NoPlans(t *testing.T) {
	deps := portalDeps()
	deps.WorkoutStore = &mockWorkoutStore{}
	deps.NutritionStore = &mockNutritionStore{
		assignments: []domainNutrition.Assignment{{ID: "ma1", MealPlanID: "gone", ClientID: "c1", Active: true}},
	}

	result, err := QueryGetPortal(context.Background(), GetPortalQuery{ClientID: "c1"}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.WorkoutPlan != nil {
		t.Errorf("expected no workout plan, got %+v", result.WorkoutPlan)
	}
	if result.MealPlan != nil {
		t.Errorf("expected dangling meal assignment to be skipped, got %+v", result.MealPlan)
	}
}

// TestQueryGetPortal_UnknownClient verifies a missing client is not found.
func TestQueryGetPortal_UnknownClient(t *testing.T) {
	_, err := QueryGetPortal(context.Background(), GetPortalQuery{ClientID: "nope"}, portalDeps())
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

// TestQueryGetPortal_SectionFailure verifies one failing section does not fail the portal.
func TestQueryGetPortal_SectionFailure(t *testing.T) {
	deps := portalDeps()
	deps.AttendanceStore = &mockAttendanceStore{err: errStoreDown}
	deps.AppointmentStore = &mockAppointmentStore{err: errStoreDown}

	result, err := QueryGetPortal(context.Background(), GetPortalQuery{ClientID: "c1"}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Upcoming) != 0 || len(result.RecentAttendance) != 0 {
		t.Errorf("expected failed sections to be empty, got %+v", result)
	}
	if result.WorkoutPlan == nil {
		t.Error("expected unaffected sections to be populated")
	}
}
