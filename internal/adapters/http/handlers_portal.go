package web

import (
	"net/http"

	"fitstudio/internal/adapters/http/middleware"
	workoutStore "fitstudio/internal/adapters/storage/workout"
	"fitstudio/internal/application/orchestrators"
	"fitstudio/internal/application/projections"
)

// portalClientID returns the client linked to the session, writing 403 when the
// account has none.
func portalClientID(w http.ResponseWriter, r *http.Request) (string, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok || sess.ClientID == "" {
		respondError(w, http.StatusForbidden, "account is not linked to a client", nil)
		return "", false
	}
	return sess.ClientID, true
}

// handlePortal handles GET /api/portal/me
func handlePortal(w http.ResponseWriter, r *http.Request) {
	clientID, ok := portalClientID(w, r)
	if !ok {
		return
	}
	result, err := projections.QueryGetPortal(r.Context(), projections.GetPortalQuery{ClientID: clientID}, projections.GetPortalDeps{
		ClientStore:      stores.ClientStore,
		AppointmentStore: stores.AppointmentStore,
		WorkoutStore:     stores.WorkoutStore,
		NutritionStore:   stores.NutritionStore,
		AttendanceStore:  stores.AttendanceStore,
		Location:         studioLocation(),
		Now:              timeNow,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toPortalView(result))
}

// handlePortalLogWorkout handles POST /api/portal/workout-logs. Clients may only
// log against plans assigned to them; plan_id defaults to the active assignment.
func handlePortalLogWorkout(w http.ResponseWriter, r *http.Request) {
	clientID, ok := portalClientID(w, r)
	if !ok {
		return
	}
	var req workoutLogRequest
	if !decode(w, r, &req) {
		return
	}
	req.ClientID = clientID

	ctx := r.Context()
	filter := workoutStore.AssignmentFilter{ClientID: clientID, PlanID: req.PlanID}
	if req.PlanID == "" {
		filter.ActiveOnly = true
	}
	assignments, err := stores.WorkoutStore.ListAssignments(ctx, filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if len(assignments) == 0 {
		handleError(w, r, &orchestrators.ValidationError{
			Message: "validation failed",
			Fields:  map[string]string{"plan_id": "no such plan is assigned to you"},
		})
		return
	}
	req.PlanID = assignments[0].PlanID
	if !check(w, &req) {
		return
	}

	l, err := orchestrators.ExecuteLogWorkout(ctx, req.input(), logWorkoutDeps())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toWorkoutLogView(l))
}

// handlePortalLogFood handles POST /api/portal/food-logs
func handlePortalLogFood(w http.ResponseWriter, r *http.Request) {
	clientID, ok := portalClientID(w, r)
	if !ok {
		return
	}
	var req foodLogRequest
	if !decode(w, r, &req) {
		return
	}
	req.ClientID = clientID
	if !check(w, &req) {
		return
	}
	l, err := orchestrators.ExecuteLogFood(r.Context(), req.input(), mealPlanDeps())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toFoodLogView(l))
}

// handleDashboard handles GET /api/dashboard
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetDashboard(r.Context(), projections.GetDashboardDeps{
		LeadStore:        stores.LeadStore,
		ClientStore:      stores.ClientStore,
		AppointmentStore: stores.AppointmentStore,
		AttendanceStore:  stores.AttendanceStore,
		PaymentStore:     stores.PaymentStore,
		Location:         studioLocation(),
		Now:              timeNow,
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toDashboardView(result))
}
