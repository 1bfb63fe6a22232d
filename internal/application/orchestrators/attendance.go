package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"fitstudio/internal/domain/appointment"
	"fitstudio/internal/domain/attendance"
)

// AttendanceStore defines the attendance persistence needed by check-in and check-out.
type AttendanceStore interface {
	GetByID(ctx context.Context, id string) (attendance.Log, error)
	Save(ctx context.Context, l attendance.Log) error
	HasOpenForAppointment(ctx context.Context, appointmentID string) (bool, error)
}

// --- Check In ---

// CheckInInput carries input for a check-in.
type CheckInInput struct {
	ClientID      string
	AppointmentID string
	Notes         string
}

// CheckInDeps holds dependencies for CheckIn.
type CheckInDeps struct {
	AttendanceStore  AttendanceStore
	ClientStore      ClientGetter
	AppointmentStore AppointmentStore // optional; verifies AppointmentID when set
	GenerateID       func() string
	Now              func() time.Time
}

// ExecuteCheckIn opens an attendance log for a client.
// PRE: ClientID refers to an existing client
// POST: Open log persisted with CheckInTime = now
// INVARIANT: at most one open log per appointment
func ExecuteCheckIn(ctx context.Context, input CheckInInput, deps CheckInDeps) (attendance.Log, error) {
	if input.ClientID == "" {
		return attendance.Log{}, invalid(attendance.ErrEmptyClient)
	}
	if _, err := deps.ClientStore.GetByID(ctx, input.ClientID); err != nil {
		return attendance.Log{}, err
	}
	if input.AppointmentID != "" {
		if deps.AppointmentStore != nil {
			a, err := deps.AppointmentStore.GetByID(ctx, input.AppointmentID)
			if err != nil {
				return attendance.Log{}, err
			}
			if a.ClientID != "" && a.ClientID != input.ClientID {
				return attendance.Log{}, invalidField("appointment_id", "appointment belongs to another client")
			}
		}
		open, err := deps.AttendanceStore.HasOpenForAppointment(ctx, input.AppointmentID)
		if err != nil {
			return attendance.Log{}, err
		}
		if open {
			return attendance.Log{}, invalid(attendance.ErrAlreadyCheckedIn)
		}
	}

	l := attendance.Log{
		ID:            idFn(deps.GenerateID),
		ClientID:      input.ClientID,
		AppointmentID: input.AppointmentID,
		CheckInTime:   nowFn(deps.Now),
		Notes:         input.Notes,
	}
	if err := l.Validate(); err != nil {
		return attendance.Log{}, invalid(err)
	}
	if err := deps.AttendanceStore.Save(ctx, l); err != nil {
		return attendance.Log{}, err
	}
	slog.Info("attendance_event", "event", "checked_in", "attendance_id", l.ID, "client_id", l.ClientID, "appointment_id", l.AppointmentID)
	return l, nil
}

// --- Check Out ---

// CheckOutInput carries input for a check-out.
type CheckOutInput struct {
	AttendanceID string
	Notes        string
}

// CheckOutDeps holds dependencies for CheckOut.
type CheckOutDeps struct {
	AttendanceStore  AttendanceStore
	AppointmentStore AppointmentStore // optional; linked appointment is marked completed
	Now              func() time.Time
}

// ExecuteCheckOut closes an open attendance log.
// PRE: AttendanceID refers to an open log
// POST: CheckOutTime = now; a linked scheduled appointment becomes completed (best effort)
func ExecuteCheckOut(ctx context.Context, input CheckOutInput, deps CheckOutDeps) (attendance.Log, error) {
	l, err := deps.AttendanceStore.GetByID(ctx, input.AttendanceID)
	if err != nil {
		return attendance.Log{}, err
	}
	now := nowFn(deps.Now)
	if err := l.CheckOut(now); err != nil {
		return attendance.Log{}, invalid(err)
	}
	if input.Notes != "" {
		l.Notes = input.Notes
	}
	if err := deps.AttendanceStore.Save(ctx, l); err != nil {
		return attendance.Log{}, err
	}
	slog.Info("attendance_event", "event", "checked_out", "attendance_id", l.ID, "client_id", l.ClientID, "minutes", int(l.Duration(now).Minutes()))

	if l.AppointmentID != "" && deps.AppointmentStore != nil {
		completeAppointment(ctx, deps.AppointmentStore, l.AppointmentID, now)
	}
	return l, nil
}

func completeAppointment(ctx context.Context, store AppointmentStore, id string, now time.Time) {
	a, err := store.GetByID(ctx, id)
	if err != nil {
		slog.Warn("attendance_event", "event", "appointment_complete_failed", "appointment_id", id, "error", err)
		return
	}
	if a.Status != appointment.StatusScheduled {
		return
	}
	a.Status = appointment.StatusCompleted
	a.UpdatedAt = now
	if err := store.Save(ctx, a); err != nil {
		slog.Warn("attendance_event", "event", "appointment_complete_failed", "appointment_id", id, "error", err)
	}
}
