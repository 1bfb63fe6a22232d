package projections

import (
	"context"
	"testing"
	"time"

	domainAppointment "fitstudio/internal/domain/appointment"
	domainAttendance "fitstudio/internal/domain/attendance"
	domainClient "fitstudio/internal/domain/client"
	domainLead "fitstudio/internal/domain/lead"
)

func dashboardDeps() GetDashboardDeps {
	return GetDashboardDeps{
		LeadStore: &mockLeadStore{leads: []domainLead.Lead{
			{ID: "l1", Status: domainLead.StatusNew},
			{ID: "l2", Status: domainLead.StatusNew},
			{ID: "l3", Status: domainLead.StatusContacted},
		}},
		ClientStore: &mockClientStore{clients: []domainClient.Client{
			{ID: "c1", Status: domainClient.StatusActive},
			{ID: "c2", Status: domainClient.StatusInactive},
		}},
		AppointmentStore: &mockAppointmentStore{appts: []domainAppointment.Appointment{
			{ID: "a1", Date: "2026-10-19", StartTime: "10:00", Status: domainAppointment.StatusScheduled},
			{ID: "a2", Date: "2026-10-19", StartTime: "10:20", Status: domainAppointment.StatusCancelled},
			{ID: "a3", Date: "2026-10-19", StartTime: "11:00", Status: domainAppointment.StatusCompleted},
			{ID: "a4", Date: "2026-10-20", StartTime: "10:00", Status: domainAppointment.StatusScheduled},
		}},
		AttendanceStore: &mockAttendanceStore{logs: []domainAttendance.Log{
			{ID: "at1", ClientID: "c1", CheckInTime: fixedTime.Add(-time.Hour)},
			{ID: "at2", ClientID: "c1", CheckInTime: fixedTime.Add(-3 * time.Hour), CheckOutTime: fixedTime.Add(-2 * time.Hour)},
		}},
		PaymentStore: &mockPaymentCounter{n: 4},
		Now:          fixedNow,
	}
}

// TestQueryGetDashboard verifies the staff counters.
func TestQueryGetDashboard(t *testing.T) {
	deps := dashboardDeps()

	result, err := QueryGetDashboard(context.Background(), deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Date != "2026-10-19" {
		t.Errorf("expected date 2026-10-19, got %s", result.Date)
	}
	if result.NewLeads != 2 {
		t.Errorf("expected 2 new leads, got %d", result.NewLeads)
	}
	if result.ActiveClients != 1 {
		t.Errorf("expected 1 active client, got %d", result.ActiveClients)
	}
	if len(result.TodaysAppointments) != 2 {
		t.Errorf("expected 2 non-cancelled appointments today, got %d", len(result.TodaysAppointments))
	}
	if result.OpenCheckIns != 1 {
		t.Errorf("expected 1 open check-in, got %d", result.OpenCheckIns)
	}
	if result.PendingPayments != 4 {
		t.Errorf("expected 4 pending payments, got %d", result.PendingPayments)
	}
	f := deps.AppointmentStore.(*mockAppointmentStore).lastFilter
	if f.DateFrom != "2026-10-19" || f.DateTo != "2026-10-19" {
		t.Errorf("expected today's window, got %+v", f)
	}
}

// TestQueryGetDashboard_StudioTimezone verifies today follows the studio location.
func TestQueryGetDashboard_StudioTimezone(t *testing.T) {
	deps := dashboardDeps()
	deps.Location = time.FixedZone("IST", 19800)
	deps.Now = func() time.Time { return time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC) }

	result, err := QueryGetDashboard(context.Background(), deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Date != "2026-10-20" {
		t.Errorf("expected studio date 2026-10-20, got %s", result.Date)
	}
	if len(result.TodaysAppointments) != 1 || result.TodaysAppointments[0].ID != "a4" {
		t.Errorf("expected a4 only, got %+v", result.TodaysAppointments)
	}
}

// TestQueryGetDashboard_BestEffort verifies failing sections stay at zero without an error.
func TestQueryGetDashboard_BestEffort(t *testing.T) {
	deps := dashboardDeps()
	deps.LeadStore = &mockLeadStore{err: errStoreDown}
	deps.AttendanceStore = &mockAttendanceStore{err: errStoreDown}
	deps.PaymentStore = nil

	result, err := QueryGetDashboard(context.Background(), deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NewLeads != 0 || result.OpenCheckIns != 0 || result.PendingPayments != 0 {
		t.Errorf("expected zeroed counters, got %+v", result)
	}
	if result.ActiveClients != 1 {
		t.Errorf("expected clients section to survive, got %d", result.ActiveClients)
	}
}
