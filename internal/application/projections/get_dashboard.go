package projections

import (
	"context"
	"log/slog"
	"time"

	"fitstudio/internal/adapters/storage/appointment"
	"fitstudio/internal/adapters/storage/attendance"
	"fitstudio/internal/adapters/storage/client"
	"fitstudio/internal/adapters/storage/lead"
	"fitstudio/internal/adapters/storage/payment"
	domainAppointment "fitstudio/internal/domain/appointment"
	domainClient "fitstudio/internal/domain/client"
	domainLead "fitstudio/internal/domain/lead"
	domainPayment "fitstudio/internal/domain/payment"
)

const dashboardAppointmentLimit = 100

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	LeadStore        LeadStore
	ClientStore      ClientStore
	AppointmentStore AppointmentStore
	AttendanceStore  AttendanceStore
	PaymentStore     PaymentCounter // optional: nil leaves PendingPayments at zero
	Location         *time.Location
	Now              func() time.Time
}

// DashboardResult carries the staff dashboard counters.
type DashboardResult struct {
	Date               string
	NewLeads           int
	ActiveClients      int
	TodaysAppointments []domainAppointment.Appointment
	OpenCheckIns       int
	PendingPayments    int
}

// QueryGetDashboard aggregates the staff dashboard for the studio's current day.
// PRE: none
// POST: Each section is best-effort; a failing store leaves its counter at zero
func QueryGetDashboard(ctx context.Context, deps GetDashboardDeps) (DashboardResult, error) {
	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}
	today, _ := studioToday(now, deps.Location)
	result := DashboardResult{Date: today}

	if n, err := deps.LeadStore.Count(ctx, lead.ListFilter{Status: domainLead.StatusNew}); err == nil {
		result.NewLeads = n
	} else {
		slog.Warn("dashboard_event", "event", "section_failed", "section", "leads", "error", err)
	}

	if n, err := deps.ClientStore.Count(ctx, client.ListFilter{Status: domainClient.StatusActive}); err == nil {
		result.ActiveClients = n
	} else {
		slog.Warn("dashboard_event", "event", "section_failed", "section", "clients", "error", err)
	}

	appts, err := deps.AppointmentStore.List(ctx, appointment.ListFilter{
		DateFrom: today,
		DateTo:   today,
		Limit:    dashboardAppointmentLimit,
	})
	if err != nil {
		slog.Warn("dashboard_event", "event", "section_failed", "section", "appointments", "error", err)
	}
	result.TodaysAppointments = make([]domainAppointment.Appointment, 0, len(appts))
	for _, a := range appts {
		if a.Status != domainAppointment.StatusCancelled {
			result.TodaysAppointments = append(result.TodaysAppointments, a)
		}
	}

	if n, err := deps.AttendanceStore.Count(ctx, attendance.ListFilter{OpenOnly: true}); err == nil {
		result.OpenCheckIns = n
	} else {
		slog.Warn("dashboard_event", "event", "section_failed", "section", "attendance", "error", err)
	}

	if deps.PaymentStore != nil {
		if n, err := deps.PaymentStore.Count(ctx, payment.ListFilter{Status: domainPayment.StatusPending}); err == nil {
			result.PendingPayments = n
		}
	}

	return result, nil
}
