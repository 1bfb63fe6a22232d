package orchestrators

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"fitstudio/internal/adapters/ai"
	paymentgw "fitstudio/internal/adapters/payment"
	accountstore "fitstudio/internal/adapters/storage/account"
	nutritionstore "fitstudio/internal/adapters/storage/nutrition"
	recurringstore "fitstudio/internal/adapters/storage/recurring"
	workoutstore "fitstudio/internal/adapters/storage/workout"
	"fitstudio/internal/domain/account"
	"fitstudio/internal/domain/appointment"
	"fitstudio/internal/domain/attendance"
	"fitstudio/internal/domain/client"
	"fitstudio/internal/domain/event"
	"fitstudio/internal/domain/lead"
	"fitstudio/internal/domain/nutrition"
	"fitstudio/internal/domain/outbox"
	"fitstudio/internal/domain/payment"
	"fitstudio/internal/domain/recurring"
	"fitstudio/internal/domain/workout"
)

// Monday 2026-10-19, 12:00 UTC (17:30 in Asia/Kolkata).
var fixedTime = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func fixedID() string { return "test-id-001" }

// seqIDs returns a generator producing prefix-1, prefix-2, ...
func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func notFound(entity string) error {
	return fmt.Errorf("%s not found: %w", entity, sql.ErrNoRows)
}

// --- leads ---

type mockLeadStore struct {
	leads   map[string]lead.Lead
	saveErr error
	saves   int
}

func newMockLeadStore(ls ...lead.Lead) *mockLeadStore {
	m := &mockLeadStore{leads: make(map[string]lead.Lead)}
	for _, l := range ls {
		m.leads[l.ID] = l
	}
	return m
}

func (m *mockLeadStore) GetByID(_ context.Context, id string) (lead.Lead, error) {
	l, ok := m.leads[id]
	if !ok {
		return lead.Lead{}, notFound("lead")
	}
	return l, nil
}

func (m *mockLeadStore) Save(_ context.Context, l lead.Lead) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.leads[l.ID] = l
	return nil
}

// --- clients ---

type mockClientStore struct {
	clients map[string]client.Client
}

func newMockClientStore(cs ...client.Client) *mockClientStore {
	m := &mockClientStore{clients: make(map[string]client.Client)}
	for _, c := range cs {
		m.clients[c.ID] = c
	}
	return m
}

func (m *mockClientStore) GetByID(_ context.Context, id string) (client.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return client.Client{}, notFound("client")
	}
	return c, nil
}

func (m *mockClientStore) Save(_ context.Context, c client.Client) error {
	m.clients[c.ID] = c
	return nil
}

// --- appointments ---

type mockAppointmentStore struct {
	appts   map[string]appointment.Appointment
	batches int
}

func newMockAppointmentStore(as ...appointment.Appointment) *mockAppointmentStore {
	m := &mockAppointmentStore{appts: make(map[string]appointment.Appointment)}
	for _, a := range as {
		m.appts[a.ID] = a
	}
	return m
}

func (m *mockAppointmentStore) GetByID(_ context.Context, id string) (appointment.Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return appointment.Appointment{}, notFound("appointment")
	}
	return a, nil
}

func (m *mockAppointmentStore) Save(_ context.Context, a appointment.Appointment) error {
	m.appts[a.ID] = a
	return nil
}

func (m *mockAppointmentStore) ExistsAt(_ context.Context, clientID, date, start string) (bool, error) {
	for _, a := range m.appts {
		if a.ClientID == clientID && a.Date == date && a.StartTime == start {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAppointmentStore) CreateBatch(_ context.Context, as []appointment.Appointment) error {
	m.batches++
	for _, a := range as {
		m.appts[a.ID] = a
	}
	return nil
}

func (m *mockAppointmentStore) BookedStartTimes(_ context.Context, date string) ([]string, error) {
	var out []string
	for _, a := range m.appts {
		if a.Date == date && a.Status != appointment.StatusCancelled {
			out = append(out, a.StartTime)
		}
	}
	sort.Strings(out)
	return out, nil
}

// --- recurring ---

type mockRecurringStore struct {
	sessions map[string]recurring.Session
}

func newMockRecurringStore(ss ...recurring.Session) *mockRecurringStore {
	m := &mockRecurringStore{sessions: make(map[string]recurring.Session)}
	for _, s := range ss {
		m.sessions[s.ID] = s
	}
	return m
}

func (m *mockRecurringStore) GetByID(_ context.Context, id string) (recurring.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return recurring.Session{}, notFound("recurring session")
	}
	return s, nil
}

func (m *mockRecurringStore) Save(_ context.Context, s recurring.Session) error {
	m.sessions[s.ID] = s
	return nil
}

func (m *mockRecurringStore) List(_ context.Context, f recurringstore.ListFilter) ([]recurring.Session, error) {
	var out []recurring.Session
	for _, s := range m.sessions {
		if f.ActiveOnly && !s.Active {
			continue
		}
		if f.ClientID != "" && s.ClientID != f.ClientID {
			continue
		}
		if len(f.IDs) > 0 && !containsString(f.IDs, s.ID) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- attendance ---

type mockAttendanceStore struct {
	logs map[string]attendance.Log
}

func newMockAttendanceStore(ls ...attendance.Log) *mockAttendanceStore {
	m := &mockAttendanceStore{logs: make(map[string]attendance.Log)}
	for _, l := range ls {
		m.logs[l.ID] = l
	}
	return m
}

func (m *mockAttendanceStore) GetByID(_ context.Context, id string) (attendance.Log, error) {
	l, ok := m.logs[id]
	if !ok {
		return attendance.Log{}, notFound("attendance")
	}
	return l, nil
}

func (m *mockAttendanceStore) Save(_ context.Context, l attendance.Log) error {
	m.logs[l.ID] = l
	return nil
}

func (m *mockAttendanceStore) HasOpenForAppointment(_ context.Context, appointmentID string) (bool, error) {
	for _, l := range m.logs {
		if l.AppointmentID == appointmentID && l.IsOpen() {
			return true, nil
		}
	}
	return false, nil
}

// --- workout ---

type mockWorkoutStore struct {
	plans       map[string]workout.Plan
	assignments map[string]workout.Assignment
	logs        []workout.CompletionLog
	deleted     []string
}

func newMockWorkoutStore() *mockWorkoutStore {
	return &mockWorkoutStore{plans: make(map[string]workout.Plan), assignments: make(map[string]workout.Assignment)}
}

func (m *mockWorkoutStore) GetPlan(_ context.Context, id string) (workout.Plan, error) {
	p, ok := m.plans[id]
	if !ok {
		return workout.Plan{}, notFound("workout plan")
	}
	return p, nil
}

func (m *mockWorkoutStore) SavePlan(_ context.Context, p workout.Plan) error {
	m.plans[p.ID] = p
	return nil
}

func (m *mockWorkoutStore) DeletePlan(_ context.Context, id string) error {
	delete(m.plans, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockWorkoutStore) SaveAssignment(_ context.Context, a workout.Assignment) error {
	m.assignments[a.ID] = a
	return nil
}

func (m *mockWorkoutStore) ListAssignments(_ context.Context, f workoutstore.AssignmentFilter) ([]workout.Assignment, error) {
	var out []workout.Assignment
	for _, a := range m.assignments {
		if f.ClientID != "" && a.ClientID != f.ClientID {
			continue
		}
		if f.PlanID != "" && a.PlanID != f.PlanID {
			continue
		}
		if f.ActiveOnly && !a.Active {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *mockWorkoutStore) CountAssignments(_ context.Context, planID string) (int, error) {
	n := 0
	for _, a := range m.assignments {
		if a.PlanID == planID {
			n++
		}
	}
	return n, nil
}

func (m *mockWorkoutStore) SaveLog(_ context.Context, l workout.CompletionLog) error {
	m.logs = append(m.logs, l)
	return nil
}

// --- nutrition ---

type mockNutritionStore struct {
	plans       map[string]nutrition.Plan
	assignments map[string]nutrition.Assignment
	foodLogs    []nutrition.FoodLog
}

func newMockNutritionStore() *mockNutritionStore {
	return &mockNutritionStore{plans: make(map[string]nutrition.Plan), assignments: make(map[string]nutrition.Assignment)}
}

func (m *mockNutritionStore) GetPlan(_ context.Context, id string) (nutrition.Plan, error) {
	p, ok := m.plans[id]
	if !ok {
		return nutrition.Plan{}, notFound("meal plan")
	}
	return p, nil
}

func (m *mockNutritionStore) SavePlan(_ context.Context, p nutrition.Plan) error {
	m.plans[p.ID] = p
	return nil
}

func (m *mockNutritionStore) DeletePlan(_ context.Context, id string) error {
	delete(m.plans, id)
	return nil
}

func (m *mockNutritionStore) SaveAssignment(_ context.Context, a nutrition.Assignment) error {
	m.assignments[a.ID] = a
	return nil
}

func (m *mockNutritionStore) ListAssignments(_ context.Context, f nutritionstore.AssignmentFilter) ([]nutrition.Assignment, error) {
	var out []nutrition.Assignment
	for _, a := range m.assignments {
		if f.ClientID != "" && a.ClientID != f.ClientID {
			continue
		}
		if f.ActiveOnly && !a.Active {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *mockNutritionStore) CountAssignments(_ context.Context, planID string) (int, error) {
	n := 0
	for _, a := range m.assignments {
		if a.MealPlanID == planID {
			n++
		}
	}
	return n, nil
}

func (m *mockNutritionStore) SaveFoodLog(_ context.Context, l nutrition.FoodLog) error {
	m.foodLogs = append(m.foodLogs, l)
	return nil
}

// --- events and payments ---

type mockEventStore struct {
	events        map[string]event.Event
	registrations map[string]event.Registration
}

func newMockEventStore(es ...event.Event) *mockEventStore {
	m := &mockEventStore{events: make(map[string]event.Event), registrations: make(map[string]event.Registration)}
	for _, e := range es {
		m.events[e.ID] = e
	}
	return m
}

func (m *mockEventStore) GetByID(_ context.Context, id string) (event.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return event.Event{}, notFound("event")
	}
	return e, nil
}

func (m *mockEventStore) Save(_ context.Context, e event.Event) error {
	m.events[e.ID] = e
	return nil
}

func (m *mockEventStore) GetRegistration(_ context.Context, id string) (event.Registration, error) {
	r, ok := m.registrations[id]
	if !ok {
		return event.Registration{}, notFound("registration")
	}
	return r, nil
}

func (m *mockEventStore) SaveRegistration(_ context.Context, r event.Registration) error {
	m.registrations[r.ID] = r
	return nil
}

func (m *mockEventStore) CountActiveRegistrations(_ context.Context, eventID string) (int, error) {
	n := 0
	for _, r := range m.registrations {
		if r.EventID == eventID && r.IsActive() {
			n++
		}
	}
	return n, nil
}

func (m *mockEventStore) HasActiveRegistration(_ context.Context, eventID, email string) (bool, error) {
	for _, r := range m.registrations {
		if r.EventID == eventID && r.IsActive() && strings.EqualFold(r.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

type mockPaymentStore struct {
	payments map[string]payment.Payment
	reads    int
	saves    int
}

func newMockPaymentStore(ps ...payment.Payment) *mockPaymentStore {
	m := &mockPaymentStore{payments: make(map[string]payment.Payment)}
	for _, p := range ps {
		m.payments[p.ID] = p
	}
	return m
}

func (m *mockPaymentStore) GetByID(_ context.Context, id string) (payment.Payment, error) {
	m.reads++
	p, ok := m.payments[id]
	if !ok {
		return payment.Payment{}, notFound("payment")
	}
	return p, nil
}

func (m *mockPaymentStore) GetByGatewayOrderID(_ context.Context, orderID string) (payment.Payment, error) {
	m.reads++
	for _, p := range m.payments {
		if p.GatewayOrderID == orderID {
			return p, nil
		}
	}
	return payment.Payment{}, notFound("payment")
}

func (m *mockPaymentStore) Save(_ context.Context, p payment.Payment) error {
	m.saves++
	m.payments[p.ID] = p
	return nil
}

type stubGateway struct {
	enabled bool
	orders  int
	err     error
}

func (g *stubGateway) Enabled() bool { return g.enabled }

func (g *stubGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string, _ map[string]string) (paymentgw.Order, error) {
	if g.err != nil {
		return paymentgw.Order{}, g.err
	}
	g.orders++
	return paymentgw.Order{ID: "order_" + receipt, Amount: amount, Currency: currency, Receipt: receipt, Status: "created"}, nil
}

func (g *stubGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	return paymentgw.VerifySignature(body, signature, "whsec")
}

// --- outbox ---

type mockOutboxStore struct {
	messages map[string]outbox.Message
}

func newMockOutboxStore(ms ...outbox.Message) *mockOutboxStore {
	m := &mockOutboxStore{messages: make(map[string]outbox.Message)}
	for _, msg := range ms {
		m.messages[msg.ID] = msg
	}
	return m
}

func (m *mockOutboxStore) GetByID(_ context.Context, id string) (outbox.Message, error) {
	msg, ok := m.messages[id]
	if !ok {
		return outbox.Message{}, notFound("outbox message")
	}
	return msg, nil
}

func (m *mockOutboxStore) Save(_ context.Context, msg outbox.Message) error {
	m.messages[msg.ID] = msg
	return nil
}

func (m *mockOutboxStore) ListDue(_ context.Context, now time.Time, limit int) ([]outbox.Message, error) {
	var out []outbox.Message
	for _, msg := range m.messages {
		if msg.IsDue(now) {
			out = append(out, msg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockOutboxStore) byTopic(topic string) []outbox.Message {
	var out []outbox.Message
	for _, msg := range m.messages {
		if msg.Topic == topic {
			out = append(out, msg)
		}
	}
	return out
}

func testNotifier(store *mockOutboxStore) *Notifier {
	return &Notifier{
		Deps:       EnqueueNotificationDeps{OutboxStore: store, GenerateID: seqIDs("msg"), Now: fixedNow},
		StaffEmail: "staff@studio.test",
	}
}

// --- accounts ---

type mockAccountStore struct {
	accounts map[string]account.Account
}

func newMockAccountStore(as ...account.Account) *mockAccountStore {
	m := &mockAccountStore{accounts: make(map[string]account.Account)}
	for _, a := range as {
		m.accounts[a.ID] = a
	}
	return m
}

func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return account.Account{}, notFound("account")
	}
	return a, nil
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range m.accounts {
		if a.Email == strings.ToLower(strings.TrimSpace(email)) {
			return a, nil
		}
	}
	return account.Account{}, notFound("account")
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountStore) Count(_ context.Context, f accountstore.ListFilter) (int, error) {
	n := 0
	for _, a := range m.accounts {
		if f.Role == "" || a.Role == f.Role {
			n++
		}
	}
	return n, nil
}

// --- ai ---

type stubDrafter struct {
	enabled bool
	plan    workout.Plan
	lastReq ai.LeadReplyRequest
}

func (d *stubDrafter) Enabled() bool { return d.enabled }

func (d *stubDrafter) DraftCaption(_ context.Context, req ai.CaptionRequest) (string, error) {
	return "Caption about " + req.Topic + " #fitness", nil
}

func (d *stubDrafter) DraftLeadReply(_ context.Context, req ai.LeadReplyRequest) (string, error) {
	d.lastReq = req
	return "Hi " + req.Name, nil
}

func (d *stubDrafter) DraftWorkoutPlan(_ context.Context, _ ai.WorkoutRequest) (workout.Plan, error) {
	return d.plan, nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
