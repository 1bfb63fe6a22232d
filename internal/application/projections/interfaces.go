package projections

import (
	"context"
	"time"

	"fitstudio/internal/adapters/storage/appointment"
	"fitstudio/internal/adapters/storage/attendance"
	"fitstudio/internal/adapters/storage/client"
	"fitstudio/internal/adapters/storage/lead"
	"fitstudio/internal/adapters/storage/nutrition"
	"fitstudio/internal/adapters/storage/payment"
	"fitstudio/internal/adapters/storage/workout"
	domainAppointment "fitstudio/internal/domain/appointment"
	domainAttendance "fitstudio/internal/domain/attendance"
	"fitstudio/internal/domain/booking"
	domainClient "fitstudio/internal/domain/client"
	domainLead "fitstudio/internal/domain/lead"
	domainNutrition "fitstudio/internal/domain/nutrition"
	domainWorkout "fitstudio/internal/domain/workout"
)

// LeadStore interface for lead queries.
type LeadStore interface {
	List(ctx context.Context, filter lead.ListFilter) ([]domainLead.Lead, error)
	Count(ctx context.Context, filter lead.ListFilter) (int, error)
}

// ClientStore interface for client queries.
type ClientStore interface {
	GetByID(ctx context.Context, id string) (domainClient.Client, error)
	List(ctx context.Context, filter client.ListFilter) ([]domainClient.Client, error)
	Count(ctx context.Context, filter client.ListFilter) (int, error)
}

// AppointmentStore interface for appointment queries.
type AppointmentStore interface {
	List(ctx context.Context, filter appointment.ListFilter) ([]domainAppointment.Appointment, error)
}

// BookedTimesStore returns the start times already taken on a date.
type BookedTimesStore interface {
	BookedStartTimes(ctx context.Context, date string) ([]string, error)
}

// AttendanceStore interface for attendance queries.
type AttendanceStore interface {
	List(ctx context.Context, filter attendance.ListFilter) ([]domainAttendance.Log, error)
	Count(ctx context.Context, filter attendance.ListFilter) (int, error)
}

// WorkoutStore interface for workout plan queries.
type WorkoutStore interface {
	GetPlan(ctx context.Context, id string) (domainWorkout.Plan, error)
	ListAssignments(ctx context.Context, filter workout.AssignmentFilter) ([]domainWorkout.Assignment, error)
	ListLogs(ctx context.Context, filter workout.LogFilter) ([]domainWorkout.CompletionLog, error)
}

// NutritionStore interface for meal plan queries.
type NutritionStore interface {
	GetPlan(ctx context.Context, id string) (domainNutrition.Plan, error)
	ListAssignments(ctx context.Context, filter nutrition.AssignmentFilter) ([]domainNutrition.Assignment, error)
	ListFoodLogs(ctx context.Context, filter nutrition.FoodLogFilter) ([]domainNutrition.FoodLog, error)
}

// PaymentCounter counts payments by status.
type PaymentCounter interface {
	Count(ctx context.Context, filter payment.ListFilter) (int, error)
}

// studioToday returns the current calendar date in loc as YYYY-MM-DD, plus
// the current wall-clock time there as HH:MM.
func studioToday(now time.Time, loc *time.Location) (date, hhmm string) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return local.Format(booking.DateLayout), local.Format(booking.TimeLayout)
}
