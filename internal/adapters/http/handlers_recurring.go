package web

import (
	"net/http"

	recurringStore "fitstudio/internal/adapters/storage/recurring"
	"fitstudio/internal/application/orchestrators"
	"fitstudio/internal/domain/booking"
	"fitstudio/internal/domain/recurring"
)

type recurringRequest struct {
	ClientID        string `json:"client_id" validate:"required"`
	DaysOfWeek      []int  `json:"days_of_week" validate:"required,min=1,dive,min=0,max=6"`
	StartTime       string `json:"start_time" validate:"required,datetime=15:04"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,min=5,max=240"`
	Type            string `json:"type" validate:"omitempty,oneof=session consultation assessment event"`
	Notes           string `json:"notes" validate:"max=2000"`
	Active          *bool  `json:"active"`
	StartDate       string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate         string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

func recurringRequestFrom(s recurring.Session) recurringRequest {
	active := s.Active
	return recurringRequest{
		ClientID:        s.ClientID,
		DaysOfWeek:      s.DaysOfWeek,
		StartTime:       s.StartTime,
		DurationMinutes: s.DurationMinutes,
		Type:            s.Type,
		Notes:           s.Notes,
		Active:          &active,
		StartDate:       s.StartDate,
		EndDate:         s.EndDate,
	}
}

func (req recurringRequest) input(id string) orchestrators.RecurringSessionInput {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	duration := req.DurationMinutes
	if duration == 0 {
		duration = booking.SlotMinutes
	}
	return orchestrators.RecurringSessionInput{
		ID:              id,
		ClientID:        req.ClientID,
		DaysOfWeek:      req.DaysOfWeek,
		StartTime:       req.StartTime,
		DurationMinutes: duration,
		Type:            req.Type,
		Notes:           req.Notes,
		Active:          active,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
	}
}

func recurringDeps() orchestrators.RecurringSessionDeps {
	return orchestrators.RecurringSessionDeps{
		RecurringStore: stores.RecurringStore,
		ClientStore:    stores.ClientStore,
		GenerateID:     generateID,
		Now:            timeNow,
	}
}

// handleListRecurring handles GET /api/recurring-sessions?client_id=&active=true
func handleListRecurring(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := stores.RecurringStore.List(r.Context(), recurringStore.ListFilter{
		ClientID:   q.Get("client_id"),
		ActiveOnly: q.Get("active") == "true",
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, mapSlice(list, toRecurringView))
}

// handleCreateRecurring handles POST /api/recurring-sessions
func handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req recurringRequest
	if !bind(w, r, &req) {
		return
	}
	s, err := orchestrators.ExecuteCreateRecurringSession(r.Context(), req.input(""), recurringDeps())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toRecurringView(s))
}

// handleUpdateRecurring handles PATCH /api/recurring-sessions/{id}
func handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	current, err := stores.RecurringStore.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	req := recurringRequestFrom(current)
	if !patch(w, r, &req) {
		return
	}
	s, err := orchestrators.ExecuteUpdateRecurringSession(r.Context(), req.input(id), recurringDeps())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toRecurringView(s))
}

// handleDeleteRecurring handles DELETE /api/recurring-sessions/{id}. Appointments
// already generated from the template stay on the calendar.
func handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if _, err := stores.RecurringStore.GetByID(ctx, id); err != nil {
		handleError(w, r, err)
		return
	}
	if err := stores.RecurringStore.Delete(ctx, id); err != nil {
		internalError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

type generateRecurringRequest struct {
	Weeks      int      `json:"weeks" validate:"gte=0,lte=12"`
	SessionIDs []string `json:"session_ids"`
	ClientID   string   `json:"client_id"`
}

// handleGenerateRecurring handles POST /api/recurring-sessions/generate. An empty
// body expands every active template for the default window.
func handleGenerateRecurring(w http.ResponseWriter, r *http.Request) {
	var req generateRecurringRequest
	if r.ContentLength > 0 && !bind(w, r, &req) {
		return
	}
	result, err := orchestrators.ExecuteGenerateRecurringSessions(r.Context(), orchestrators.GenerateRecurringInput{
		Weeks:      req.Weeks,
		SessionIDs: req.SessionIDs,
		ClientID:   req.ClientID,
	}, orchestrators.GenerateRecurringDeps{
		RecurringStore:   stores.RecurringStore,
		AppointmentStore: stores.AppointmentStore,
		Metrics:          services.Metrics,
		Location:         studioLocation(),
		GenerateID:       generateID,
		Now:              timeNow,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{
		"created":      result.Created,
		"skipped":      result.Skipped,
		"sessions":     result.Sessions,
		"appointments": mapSlice(result.Appointments, toAppointmentView),
	})
}
