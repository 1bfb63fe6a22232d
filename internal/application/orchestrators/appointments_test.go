package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"fitstudio/internal/domain/appointment"
	"fitstudio/internal/domain/client"
	"fitstudio/internal/domain/lead"
)

var studioTZ = time.FixedZone("IST", 5*3600+30*60)

// TestExecuteSaveAppointment_EndTime covers end-time derivation on create and update.
func TestExecuteSaveAppointment_EndTime(t *testing.T) {
	existing := appointment.Appointment{
		ID: "appt-1", Date: "2026-10-20", StartTime: "10:00", EndTime: "10:40",
		Type: appointment.TypeSession, Status: appointment.StatusScheduled, CreatedAt: fixedTime,
	}
	tests := []struct {
		name  string
		input SaveAppointmentInput
		want  string
	}{
		{"create derives end", SaveAppointmentInput{Date: "2026-10-20", StartTime: "10:50"}, "11:10"},
		{"create honours explicit end", SaveAppointmentInput{Date: "2026-10-20", StartTime: "10:00", EndTime: "11:00"}, "11:00"},
		{"update start change derives", SaveAppointmentInput{ID: "appt-1", Date: "2026-10-20", StartTime: "12:40", EndTime: "14:00"}, "13:00"},
		{"update keeps previous end", SaveAppointmentInput{ID: "appt-1", Date: "2026-10-20", StartTime: "10:00"}, "10:40"},
		{"update honours override", SaveAppointmentInput{ID: "appt-1", Date: "2026-10-20", StartTime: "10:00", EndTime: "10:45"}, "10:45"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockAppointmentStore(existing)
			a, err := ExecuteSaveAppointment(context.Background(), tt.input, SaveAppointmentDeps{
				AppointmentStore: store, GenerateID: fixedID, Now: fixedNow,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a.EndTime != tt.want {
				t.Errorf("EndTime = %s, want %s", a.EndTime, tt.want)
			}
			if store.appts[a.ID].EndTime != tt.want {
				t.Error("persisted end time differs")
			}
		})
	}
}

// TestExecuteSaveAppointment_Errors covers validation and missing references.
func TestExecuteSaveAppointment_Errors(t *testing.T) {
	clients := newMockClientStore(client.Client{ID: "client-1", Name: "Ravi", Status: client.StatusActive})
	deps := SaveAppointmentDeps{AppointmentStore: newMockAppointmentStore(), ClientStore: clients, GenerateID: fixedID, Now: fixedNow}

	if _, err := ExecuteSaveAppointment(context.Background(), SaveAppointmentInput{Date: "20-10-2026", StartTime: "10:00"}, deps); !IsValidation(err) {
		t.Errorf("expected validation error for bad date, got %v", err)
	}
	if _, err := ExecuteSaveAppointment(context.Background(), SaveAppointmentInput{Date: "2026-10-20", StartTime: "10:00", Type: "yoga"}, deps); !IsValidation(err) {
		t.Errorf("expected validation error for bad type, got %v", err)
	}
	if _, err := ExecuteSaveAppointment(context.Background(), SaveAppointmentInput{Date: "2026-10-20", StartTime: "10:00", ClientID: "ghost"}, deps); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected not found for unknown client, got %v", err)
	}
	if _, err := ExecuteSaveAppointment(context.Background(), SaveAppointmentInput{ID: "nope", Date: "2026-10-20", StartTime: "10:00"}, deps); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected not found for unknown appointment, got %v", err)
	}
	a, err := ExecuteSaveAppointment(context.Background(), SaveAppointmentInput{Date: "2026-10-20", StartTime: "10:00", ClientID: "client-1"}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Type != appointment.TypeSession || a.Status != appointment.StatusScheduled {
		t.Errorf("expected defaults session/scheduled, got %s/%s", a.Type, a.Status)
	}
}

func bookDeps(leads *mockLeadStore, appts *mockAppointmentStore, out *mockOutboxStore) BookSlotDeps {
	return BookSlotDeps{
		LeadStore:        leads,
		AppointmentStore: appts,
		Notifier:         testNotifier(out),
		Location:         studioTZ,
		GenerateID:       seqIDs("id"),
		Now:              fixedNow,
	}
}

// TestExecuteBookSlot_Valid verifies a booking creates a lead and a consultation.
func TestExecuteBookSlot_Valid(t *testing.T) {
	leads := newMockLeadStore()
	appts := newMockAppointmentStore()
	out := newMockOutboxStore()
	res, err := ExecuteBookSlot(context.Background(), BookSlotInput{
		Name: "Asha", Email: "asha@example.com", Date: "2026-10-20", Time: "10:20",
	}, bookDeps(leads, appts, out))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Lead.Source != lead.SourceBooking || res.Lead.Status != lead.StatusNew {
		t.Errorf("unexpected lead: %+v", res.Lead)
	}
	if res.Appointment.Type != appointment.TypeConsultation || res.Appointment.EndTime != "10:40" {
		t.Errorf("unexpected appointment: %+v", res.Appointment)
	}
	if len(leads.leads) != 1 || len(appts.appts) != 1 {
		t.Errorf("expected one lead and one appointment, got %d/%d", len(leads.leads), len(appts.appts))
	}
	if len(out.byTopic("booking_confirmation")) != 1 || len(out.byTopic("booking_created")) != 1 {
		t.Error("expected confirmation and staff notifications")
	}
}

// TestExecuteBookSlot_Rejections covers the slot policy.
func TestExecuteBookSlot_Rejections(t *testing.T) {
	taken := appointment.Appointment{ID: "a-1", Date: "2026-10-20", StartTime: "11:00", EndTime: "11:20",
		Type: appointment.TypeSession, Status: appointment.StatusScheduled}
	cancelled := appointment.Appointment{ID: "a-2", Date: "2026-10-20", StartTime: "11:20", EndTime: "11:40",
		Type: appointment.TypeSession, Status: appointment.StatusCancelled}

	tests := []struct {
		name    string
		date    string
		time    string
		wantErr bool
	}{
		{"past date", "2026-10-18", "10:00", true},
		{"today slot already passed", "2026-10-19", "12:00", true},
		{"not a weekday slot", "2026-10-20", "13:20", true},
		{"off grid", "2026-10-20", "10:10", true},
		{"sunday late slot", "2026-10-25", "10:20", true},
		{"sunday early slot", "2026-10-25", "09:00", false},
		{"taken slot", "2026-10-20", "11:00", true},
		{"cancelled slot is free", "2026-10-20", "11:20", false},
		{"last weekday slot", "2026-10-20", "13:00", false},
		{"bad date", "tomorrow", "10:00", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leads := newMockLeadStore()
			appts := newMockAppointmentStore(taken, cancelled)
			_, err := ExecuteBookSlot(context.Background(), BookSlotInput{
				Name: "Asha", Phone: "+919800000000", Date: tt.date, Time: tt.time,
			}, bookDeps(leads, appts, newMockOutboxStore()))
			if tt.wantErr {
				if !IsValidation(err) {
					t.Fatalf("expected validation error, got %v", err)
				}
				if len(leads.leads) != 0 || len(appts.appts) != 2 {
					t.Error("rejected booking must not persist anything")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
