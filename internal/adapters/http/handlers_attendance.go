package web

import (
	"net/http"

	attendanceStore "fitstudio/internal/adapters/storage/attendance"
	"fitstudio/internal/application/listutil"
	"fitstudio/internal/application/orchestrators"
)

// handleListAttendance handles GET /api/attendance?client_id=&date=&open=true
func handleListAttendance(w http.ResponseWriter, r *http.Request) {
	if !datesOK(w, r, "date") {
		return
	}
	ctx := r.Context()
	q := r.URL.Query()
	pp := listutil.ParsePageParams(q)
	filter := attendanceStore.ListFilter{
		ClientID: q.Get("client_id"),
		Date:     q.Get("date"),
		OpenOnly: q.Get("open") == "true",
	}
	total, err := stores.AttendanceStore.Count(ctx, filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	page := listutil.NewPageInfo(pp.Page, pp.PerPage, total)
	filter.Limit = page.PerPage
	filter.Offset = page.Offset()
	logs, err := stores.AttendanceStore.List(ctx, filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	respondList(w, mapSlice(logs, toAttendanceView), page)
}

type checkInRequest struct {
	ClientID      string `json:"client_id" validate:"required"`
	AppointmentID string `json:"appointment_id"`
	Notes         string `json:"notes" validate:"max=2000"`
}

// handleCheckIn handles POST /api/attendance/check-in
func handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if !bind(w, r, &req) {
		return
	}
	l, err := orchestrators.ExecuteCheckIn(r.Context(), orchestrators.CheckInInput{
		ClientID:      req.ClientID,
		AppointmentID: req.AppointmentID,
		Notes:         req.Notes,
	}, orchestrators.CheckInDeps{
		AttendanceStore:  stores.AttendanceStore,
		ClientStore:      stores.ClientStore,
		AppointmentStore: stores.AppointmentStore,
		GenerateID:       generateID,
		Now:              timeNow,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toAttendanceView(l))
}

type checkOutRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// handleCheckOut handles POST /api/attendance/{id}/check-out. The body is optional.
func handleCheckOut(w http.ResponseWriter, r *http.Request) {
	var req checkOutRequest
	if r.ContentLength > 0 && !bind(w, r, &req) {
		return
	}
	l, err := orchestrators.ExecuteCheckOut(r.Context(), orchestrators.CheckOutInput{
		AttendanceID: r.PathValue("id"),
		Notes:        req.Notes,
	}, orchestrators.CheckOutDeps{
		AttendanceStore:  stores.AttendanceStore,
		AppointmentStore: stores.AppointmentStore,
		Now:              timeNow,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toAttendanceView(l))
}
