package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"fitstudio/internal/adapters/monitoring"
	"fitstudio/internal/domain/appointment"
	"fitstudio/internal/domain/booking"
	"fitstudio/internal/domain/client"
	"fitstudio/internal/domain/lead"
)

// AppointmentStore defines the appointment persistence needed by appointment orchestrators.
type AppointmentStore interface {
	GetByID(ctx context.Context, id string) (appointment.Appointment, error)
	Save(ctx context.Context, a appointment.Appointment) error
}

// ClientGetter loads a client for existence checks.
type ClientGetter interface {
	GetByID(ctx context.Context, id string) (client.Client, error)
}

// --- Save Appointment ---

// SaveAppointmentInput carries input for creating or updating an appointment.
type SaveAppointmentInput struct {
	ID        string // empty on create
	ClientID  string
	Date      string
	StartTime string
	EndTime   string // optional; see appointment.ResolveEndTime
	Type      string
	Status    string
	Notes     string
}

// SaveAppointmentDeps holds dependencies for SaveAppointment.
type SaveAppointmentDeps struct {
	AppointmentStore AppointmentStore
	ClientStore      ClientGetter // optional; verifies ClientID when set
	GenerateID       func() string
	Now              func() time.Time
}

// ExecuteSaveAppointment creates or updates an appointment.
// PRE: Date is YYYY-MM-DD and StartTime is HH:MM
// POST: On create, EndTime is the explicit end if given, else start plus one slot.
// On update, EndTime follows appointment.ResolveEndTime against the stored start.
func ExecuteSaveAppointment(ctx context.Context, input SaveAppointmentInput, deps SaveAppointmentDeps) (appointment.Appointment, error) {
	now := nowFn(deps.Now)

	var a appointment.Appointment
	if input.ID == "" {
		a = appointment.Appointment{ID: idFn(deps.GenerateID), CreatedAt: now, Status: appointment.StatusScheduled}
		end := input.EndTime
		if end == "" {
			var err error
			if end, err = booking.CalculateEndTime(input.StartTime); err != nil {
				return appointment.Appointment{}, invalidField("start_time", appointment.ErrInvalidStart.Error())
			}
		}
		a.EndTime = end
	} else {
		existing, err := deps.AppointmentStore.GetByID(ctx, input.ID)
		if err != nil {
			return appointment.Appointment{}, err
		}
		a = existing
		end, err := appointment.ResolveEndTime(existing.StartTime, existing.EndTime, input.StartTime, input.EndTime)
		if err != nil {
			return appointment.Appointment{}, invalidField("start_time", err.Error())
		}
		a.EndTime = end
	}

	a.ClientID = strings.TrimSpace(input.ClientID)
	a.Date = input.Date
	a.StartTime = input.StartTime
	a.Type = input.Type
	if a.Type == "" {
		a.Type = appointment.TypeSession
	}
	if input.Status != "" {
		a.Status = input.Status
	}
	a.Notes = input.Notes
	a.UpdatedAt = now

	if err := a.Validate(); err != nil {
		return appointment.Appointment{}, invalid(err)
	}
	if a.ClientID != "" && deps.ClientStore != nil {
		if _, err := deps.ClientStore.GetByID(ctx, a.ClientID); err != nil {
			return appointment.Appointment{}, err
		}
	}
	if err := deps.AppointmentStore.Save(ctx, a); err != nil {
		return appointment.Appointment{}, err
	}

	slog.Info("appointment_event", "event", "appointment_saved", "appointment_id", a.ID, "date", a.Date, "start", a.StartTime, "created", input.ID == "")
	return a, nil
}

// --- Book Slot ---

// BookedTimesLister reports which slot starts are taken on a date.
type BookedTimesLister interface {
	BookedStartTimes(ctx context.Context, date string) ([]string, error)
}

// BookingAppointmentStore is the appointment persistence needed by public booking.
type BookingAppointmentStore interface {
	BookedTimesLister
	Save(ctx context.Context, a appointment.Appointment) error
}

// BookSlotInput carries a public consultation booking.
type BookSlotInput struct {
	Name        string
	Email       string
	Phone       string
	Goal        string
	Message     string
	Date        string
	Time        string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
}

// BookSlotDeps holds dependencies for BookSlot.
type BookSlotDeps struct {
	LeadStore        LeadStore
	AppointmentStore BookingAppointmentStore
	Notifier         *Notifier
	Metrics          *monitoring.Metrics
	Location         *time.Location
	GenerateID       func() string
	Now              func() time.Time
}

// BookSlotResult is returned after a successful booking.
type BookSlotResult struct {
	Lead        lead.Lead
	Appointment appointment.Appointment
}

// ExecuteBookSlot books a free consultation from the marketing site.
// PRE: Date is today or later in the studio timezone, Time is one of the slots for Date
// POST: A lead with source booking and a scheduled consultation appointment are persisted
// INVARIANT: a slot already taken by a non-cancelled appointment is rejected
func ExecuteBookSlot(ctx context.Context, input BookSlotInput, deps BookSlotDeps) (BookSlotResult, error) {
	date, err := booking.ParseDate(input.Date)
	if err != nil {
		return BookSlotResult{}, invalidField("date", err.Error())
	}
	now := nowFn(deps.Now)
	today := studioToday(now, deps.Location)
	if date.Before(today) {
		return BookSlotResult{}, invalidField("date", "date cannot be in the past")
	}
	if !booking.IsValidTimeSlot(date, input.Time) {
		return BookSlotResult{}, invalidField("time", "time is not an available slot for this date")
	}
	if date.Equal(today) && input.Time <= now.In(locOrUTC(deps.Location)).Format(booking.TimeLayout) {
		return BookSlotResult{}, invalidField("time", "time has already passed")
	}
	booked, err := deps.AppointmentStore.BookedStartTimes(ctx, input.Date)
	if err != nil {
		return BookSlotResult{}, err
	}
	if slices.Contains(booked, input.Time) {
		return BookSlotResult{}, invalidField("time", "slot is already booked")
	}

	end, err := booking.CalculateEndTime(input.Time)
	if err != nil {
		return BookSlotResult{}, invalidField("time", err.Error())
	}

	l := lead.Lead{
		ID:          idFn(deps.GenerateID),
		Name:        strings.TrimSpace(input.Name),
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:       strings.TrimSpace(input.Phone),
		Goal:        input.Goal,
		Message:     input.Message,
		Source:      lead.SourceBooking,
		UTMSource:   input.UTMSource,
		UTMMedium:   input.UTMMedium,
		UTMCampaign: input.UTMCampaign,
		Status:      lead.StatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := l.Validate(); err != nil {
		return BookSlotResult{}, invalid(err)
	}
	a := appointment.Appointment{
		ID:        idFn(deps.GenerateID),
		Date:      input.Date,
		StartTime: input.Time,
		EndTime:   end,
		Type:      appointment.TypeConsultation,
		Status:    appointment.StatusScheduled,
		Notes:     fmt.Sprintf("Consultation booked by %s (lead %s)", l.Name, l.ID),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.Validate(); err != nil {
		return BookSlotResult{}, invalid(err)
	}

	if err := deps.LeadStore.Save(ctx, l); err != nil {
		return BookSlotResult{}, err
	}
	if err := deps.AppointmentStore.Save(ctx, a); err != nil {
		return BookSlotResult{}, err
	}

	slog.Info("booking_event", "event", "slot_booked", "lead_id", l.ID, "appointment_id", a.ID, "date", a.Date, "start", a.StartTime)
	deps.Metrics.LeadCreated(l.Source)
	deps.Notifier.Email(ctx, l.Email, "Your consultation is booked", bookingConfirmationBody(l, a), "booking_confirmation")
	deps.Notifier.Staff(ctx, "New booking: "+l.Name+" on "+a.Date+" "+a.StartTime, leadReceivedBody(l), "booking_created")
	return BookSlotResult{Lead: l, Appointment: a}, nil
}
