package web

import (
	"net/http"

	appointmentStore "fitstudio/internal/adapters/storage/appointment"
	"fitstudio/internal/application/listutil"
	"fitstudio/internal/application/orchestrators"
	"fitstudio/internal/application/projections"
)

// handleBookingSlots handles GET /api/booking/slots?date=YYYY-MM-DD
func handleBookingSlots(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetBookingSlots(r.Context(), projections.GetBookingSlotsQuery{
		Date: r.URL.Query().Get("date"),
	}, projections.GetBookingSlotsDeps{
		AppointmentStore: stores.AppointmentStore,
		Location:         studioLocation(),
		Now:              timeNow,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, result)
}

type bookSlotRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Phone       string `json:"phone" validate:"max=30"`
	Goal        string `json:"goal" validate:"max=200"`
	Message     string `json:"message" validate:"max=2000"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,datetime=15:04"`
	UTMSource   string `json:"utm_source" validate:"max=100"`
	UTMMedium   string `json:"utm_medium" validate:"max=100"`
	UTMCampaign string `json:"utm_campaign" validate:"max=100"`
}

// handleBookSlot handles POST /api/booking from the public site.
func handleBookSlot(w http.ResponseWriter, r *http.Request) {
	var req bookSlotRequest
	if !bind(w, r, &req) {
		return
	}
	result, err := orchestrators.ExecuteBookSlot(r.Context(), orchestrators.BookSlotInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Goal:        req.Goal,
		Message:     req.Message,
		Date:        req.Date,
		Time:        req.Time,
		UTMSource:   req.UTMSource,
		UTMMedium:   req.UTMMedium,
		UTMCampaign: req.UTMCampaign,
	}, orchestrators.BookSlotDeps{
		LeadStore:        stores.LeadStore,
		AppointmentStore: stores.AppointmentStore,
		Notifier:         notifier(),
		Metrics:          services.Metrics,
		Location:         studioLocation(),
		GenerateID:       generateID,
		Now:              timeNow,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, map[string]string{
		"lead_id":        result.Lead.ID,
		"appointment_id": result.Appointment.ID,
		"date":           result.Appointment.Date,
		"start_time":     result.Appointment.StartTime,
		"end_time":       result.Appointment.EndTime,
	})
}

type appointmentRequest struct {
	ClientID  string `json:"client_id"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"omitempty,datetime=15:04"`
	Type      string `json:"type" validate:"omitempty,oneof=session consultation assessment event"`
	Status    string `json:"status" validate:"omitempty,oneof=scheduled completed cancelled no_show"`
	Notes     string `json:"notes" validate:"max=2000"`
}

func (req appointmentRequest) input(id string) orchestrators.SaveAppointmentInput {
	return orchestrators.SaveAppointmentInput{
		ID:        id,
		ClientID:  req.ClientID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Type:      req.Type,
		Status:    req.Status,
		Notes:     req.Notes,
	}
}

func saveAppointmentDeps() orchestrators.SaveAppointmentDeps {
	return orchestrators.SaveAppointmentDeps{
		AppointmentStore: stores.AppointmentStore,
		ClientStore:      stores.ClientStore,
		GenerateID:       generateID,
		Now:              timeNow,
	}
}

// handleListAppointments handles
// GET /api/appointments?client_id=&from=&to=&status=&type=&page=&per_page=
func handleListAppointments(w http.ResponseWriter, r *http.Request) {
	if !datesOK(w, r, "from", "to", "date") {
		return
	}
	ctx := r.Context()
	q := r.URL.Query()
	pp := listutil.ParsePageParams(q)
	filter := appointmentStore.ListFilter{
		ClientID: q.Get("client_id"),
		DateFrom: q.Get("from"),
		DateTo:   q.Get("to"),
		Status:   q.Get("status"),
		Type:     q.Get("type"),
	}
	if date := q.Get("date"); date != "" {
		filter.DateFrom, filter.DateTo = date, date
	}

	total, err := stores.AppointmentStore.Count(ctx, filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	page := listutil.NewPageInfo(pp.Page, pp.PerPage, total)
	filter.Limit = page.PerPage
	filter.Offset = page.Offset()
	appts, err := stores.AppointmentStore.List(ctx, filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	respondList(w, mapSlice(appts, toAppointmentView), page)
}

// handleCreateAppointment handles POST /api/appointments
func handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if !bind(w, r, &req) {
		return
	}
	a, err := orchestrators.ExecuteSaveAppointment(r.Context(), req.input(""), saveAppointmentDeps())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toAppointmentView(a))
}

// handleGetAppointment handles GET /api/appointments/{id}
func handleGetAppointment(w http.ResponseWriter, r *http.Request) {
	a, err := stores.AppointmentStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toAppointmentView(a))
}

// handleUpdateAppointment handles PATCH /api/appointments/{id}. Moving the start
// recomputes the end; an explicit end is kept only while the start is unchanged.
func handleUpdateAppointment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	current, err := stores.AppointmentStore.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	req := appointmentRequest{
		ClientID:  current.ClientID,
		Date:      current.Date,
		StartTime: current.StartTime,
		Type:      current.Type,
		Status:    current.Status,
		Notes:     current.Notes,
	}
	if !patch(w, r, &req) {
		return
	}
	a, err := orchestrators.ExecuteSaveAppointment(r.Context(), req.input(id), saveAppointmentDeps())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toAppointmentView(a))
}

// handleDeleteAppointment handles DELETE /api/appointments/{id}
func handleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if _, err := stores.AppointmentStore.GetByID(ctx, id); err != nil {
		handleError(w, r, err)
		return
	}
	if err := stores.AppointmentStore.Delete(ctx, id); err != nil {
		internalError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}
