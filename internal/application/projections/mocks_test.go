package projections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
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
	domainClient "fitstudio/internal/domain/client"
	domainLead "fitstudio/internal/domain/lead"
	domainNutrition "fitstudio/internal/domain/nutrition"
	domainWorkout "fitstudio/internal/domain/workout"
)

var errStoreDown = errors.New("store unavailable")

// fixedTime is Monday 2026-10-19 10:30 UTC.
var fixedTime = time.Date(2026, 10, 19, 10, 30, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

type mockLeadStore struct {
	leads      []domainLead.Lead
	err        error
	lastFilter lead.ListFilter
	countCalls []lead.ListFilter
}

// List returns the seeded leads matching status, paged by the filter.
// PRE: filter is valid
// POST: Records the filter it was called with
func (m *mockLeadStore) List(_ context.Context, f lead.ListFilter) ([]domainLead.Lead, error) {
	m.lastFilter = f
	if m.err != nil {
		return nil, m.err
	}
	var out []domainLead.Lead
	for _, l := range m.leads {
		if f.Status == "" || l.Status == f.Status {
			out = append(out, l)
		}
	}
	return page(out, f.Limit, f.Offset), nil
}

// Count returns the number of seeded leads matching status.
func (m *mockLeadStore) Count(_ context.Context, f lead.ListFilter) (int, error) {
	m.countCalls = append(m.countCalls, f)
	if m.err != nil {
		return 0, m.err
	}
	n := 0
	for _, l := range m.leads {
		if f.Status == "" || l.Status == f.Status {
			n++
		}
	}
	return n, nil
}

type mockClientStore struct {
	clients    []domainClient.Client
	err        error
	lastFilter client.ListFilter
}

// GetByID returns a seeded client or a not-found error.
func (m *mockClientStore) GetByID(_ context.Context, id string) (domainClient.Client, error) {
	for _, c := range m.clients {
		if c.ID == id {
			return c, nil
		}
	}
	return domainClient.Client{}, fmt.Errorf("client not found: %w", sql.ErrNoRows)
}

// List returns the seeded clients matching status.
func (m *mockClientStore) List(_ context.Context, f client.ListFilter) ([]domainClient.Client, error) {
	m.lastFilter = f
	if m.err != nil {
		return nil, m.err
	}
	var out []domainClient.Client
	for _, c := range m.clients {
		if f.Status == "" || c.Status == f.Status {
			out = append(out, c)
		}
	}
	return page(out, f.Limit, f.Offset), nil
}

// Count returns the number of seeded clients matching status.
func (m *mockClientStore) Count(_ context.Context, f client.ListFilter) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	n := 0
	for _, c := range m.clients {
		if f.Status == "" || c.Status == f.Status {
			n++
		}
	}
	return n, nil
}

type mockAppointmentStore struct {
	appts      []domainAppointment.Appointment
	booked     map[string][]string
	err        error
	lastFilter appointment.ListFilter
}

// List returns seeded appointments inside the filter's date window.
func (m *mockAppointmentStore) List(_ context.Context, f appointment.ListFilter) ([]domainAppointment.Appointment, error) {
	m.lastFilter = f
	if m.err != nil {
		return nil, m.err
	}
	var out []domainAppointment.Appointment
	for _, a := range m.appts {
		if f.ClientID != "" && a.ClientID != f.ClientID {
			continue
		}
		if f.DateFrom != "" && a.Date < f.DateFrom {
			continue
		}
		if f.DateTo != "" && a.Date > f.DateTo {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, a)
	}
	return page(out, f.Limit, f.Offset), nil
}

// BookedStartTimes returns the seeded start times for date.
func (m *mockAppointmentStore) BookedStartTimes(_ context.Context, date string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.booked[date], nil
}

type mockAttendanceStore struct {
	logs []domainAttendance.Log
	err  error
}

// List returns seeded logs for the client.
func (m *mockAttendanceStore) List(_ context.Context, f attendance.ListFilter) ([]domainAttendance.Log, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domainAttendance.Log
	for _, l := range m.logs {
		if f.ClientID != "" && l.ClientID != f.ClientID {
			continue
		}
		if f.OpenOnly && !l.IsOpen() {
			continue
		}
		out = append(out, l)
	}
	return page(out, f.Limit, f.Offset), nil
}

// Count returns the number of seeded logs matching the filter.
func (m *mockAttendanceStore) Count(ctx context.Context, f attendance.ListFilter) (int, error) {
	f.Limit, f.Offset = 0, 0
	logs, err := m.List(ctx, f)
	return len(logs), err
}

type mockWorkoutStore struct {
	plans       map[string]domainWorkout.Plan
	assignments []domainWorkout.Assignment
	logs        []domainWorkout.CompletionLog
}

// GetPlan returns a seeded plan or a not-found error.
func (m *mockWorkoutStore) GetPlan(_ context.Context, id string) (domainWorkout.Plan, error) {
	p, ok := m.plans[id]
	if !ok {
		return domainWorkout.Plan{}, fmt.Errorf("workout plan not found: %w", sql.ErrNoRows)
	}
	return p, nil
}

// ListAssignments returns seeded assignments for the client.
func (m *mockWorkoutStore) ListAssignments(_ context.Context, f workout.AssignmentFilter) ([]domainWorkout.Assignment, error) {
	var out []domainWorkout.Assignment
	for _, a := range m.assignments {
		if a.ClientID == f.ClientID && (!f.ActiveOnly || a.Active) {
			out = append(out, a)
		}
	}
	return out, nil
}

// ListLogs returns seeded completion logs for the client.
func (m *mockWorkoutStore) ListLogs(_ context.Context, f workout.LogFilter) ([]domainWorkout.CompletionLog, error) {
	var out []domainWorkout.CompletionLog
	for _, l := range m.logs {
		if l.ClientID == f.ClientID {
			out = append(out, l)
		}
	}
	return out, nil
}

type mockNutritionStore struct {
	plans       map[string]domainNutrition.Plan
	assignments []domainNutrition.Assignment
	foodLogs    []domainNutrition.FoodLog
	lastFood    nutrition.FoodLogFilter
}

// GetPlan returns a seeded meal plan or a not-found error.
func (m *mockNutritionStore) GetPlan(_ context.Context, id string) (domainNutrition.Plan, error) {
	p, ok := m.plans[id]
	if !ok {
		return domainNutrition.Plan{}, fmt.Errorf("meal plan not found: %w", sql.ErrNoRows)
	}
	return p, nil
}

// ListAssignments returns seeded meal plan assignments for the client.
func (m *mockNutritionStore) ListAssignments(_ context.Context, f nutrition.AssignmentFilter) ([]domainNutrition.Assignment, error) {
	var out []domainNutrition.Assignment
	for _, a := range m.assignments {
		if a.ClientID == f.ClientID && (!f.ActiveOnly || a.Active) {
			out = append(out, a)
		}
	}
	return out, nil
}

// ListFoodLogs returns seeded food logs for the client.
func (m *mockNutritionStore) ListFoodLogs(_ context.Context, f nutrition.FoodLogFilter) ([]domainNutrition.FoodLog, error) {
	m.lastFood = f
	var out []domainNutrition.FoodLog
	for _, l := range m.foodLogs {
		if l.ClientID == f.ClientID {
			out = append(out, l)
		}
	}
	return out, nil
}

type mockPaymentCounter struct {
	n int
}

// Count returns the seeded count.
func (m *mockPaymentCounter) Count(_ context.Context, _ payment.ListFilter) (int, error) {
	return m.n, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
