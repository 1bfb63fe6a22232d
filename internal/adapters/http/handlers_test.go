package web

import (
	"context"
	"encoding/hex"
	"net/http"
	"strings"
	"testing"

	paymentgw "fitstudio/internal/adapters/payment"
	"fitstudio/internal/application/projections"
	"fitstudio/internal/domain/account"
	"fitstudio/internal/domain/event"
	"fitstudio/internal/domain/lead"
)

func TestCreateLead_PublicAcknowledgement(t *testing.T) {
	ts := newTestServer(t, Services{})
	rec := ts.do(t, "POST", "/api/leads", `{"name":"Priya","email":"priya@example.com","goal":"lose weight","utm_source":"instagram"}`, "")
	expectStatus(t, rec, http.StatusCreated)

	var ack map[string]string
	decodeData(t, rec, &ack)
	if ack["id"] == "" || ack["status"] != lead.StatusNew {
		t.Errorf("ack = %v", ack)
	}
	if len(ack) != 2 {
		t.Errorf("public response leaked fields: %v", ack)
	}

	trainer := ts.login(t, account.RoleTrainer, "")
	rec = ts.do(t, "GET", "/api/leads/"+ack["id"], "", trainer)
	expectStatus(t, rec, http.StatusOK)
	var got leadView
	decodeData(t, rec, &got)
	if got.Source != lead.SourceWebsite || got.UTMSource != "instagram" {
		t.Errorf("lead = %+v", got)
	}
}

func TestCreateLead_Validation(t *testing.T) {
	ts := newTestServer(t, Services{})
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing name", `{"email":"a@b.co"}`, "name"},
		{"bad email", `{"name":"A","email":"nope"}`, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, "POST", "/api/leads", tt.body, "")
			expectStatus(t, rec, http.StatusBadRequest)
			if env := decodeEnvelope(t, rec); env.Details[tt.wantField] == "" {
				t.Errorf("details = %v, want %s", env.Details, tt.wantField)
			}
		})
	}

	trainer := ts.login(t, account.RoleTrainer, "")
	rec := ts.do(t, "POST", "/api/leads", `{"name":"A","email":"a@b.co","status":"won"}`, trainer)
	expectStatus(t, rec, http.StatusBadRequest)
	if env := decodeEnvelope(t, rec); env.Details["status"] == "" {
		t.Errorf("staff with unknown status: details = %v", env.Details)
	}
}

func TestCreateLead_PublicIgnoresStatusAndNotes(t *testing.T) {
	ts := newTestServer(t, Services{})
	for _, body := range []string{
		`{"name":"Meera","email":"meera@mail.com","status":"won","notes":"vip"}`,
		`{"name":"Kabir","email":"kabir@mail.com","status":"converted"}`,
	} {
		rec := ts.do(t, "POST", "/api/leads", body, "")
		expectStatus(t, rec, http.StatusCreated)
		var ack map[string]string
		decodeData(t, rec, &ack)

		got, err := ts.stores.LeadStore.GetByID(context.Background(), ack["id"])
		if err != nil {
			t.Fatalf("load lead: %v", err)
		}
		if got.Status != lead.StatusNew || got.Notes != "" {
			t.Errorf("public lead stored with status=%q notes=%q", got.Status, got.Notes)
		}
	}
}

func TestLeadLifecycle_UpdateConvertDelete(t *testing.T) {
	ts := newTestServer(t, Services{})
	trainer := ts.login(t, account.RoleTrainer, "")

	rec := ts.do(t, "POST", "/api/leads", `{"name":"Arjun","phone":"9800000001","source":"manual"}`, trainer)
	expectStatus(t, rec, http.StatusCreated)
	var l leadView
	decodeData(t, rec, &l)

	rec = ts.do(t, "PATCH", "/api/leads/"+l.ID, `{"status":"contacted","notes":"called"}`, trainer)
	expectStatus(t, rec, http.StatusOK)
	decodeData(t, rec, &l)
	if l.Status != lead.StatusContacted || l.Name != "Arjun" || l.Notes != "called" {
		t.Errorf("patched lead = %+v", l)
	}

	rec = ts.do(t, "POST", "/api/leads/"+l.ID+"/convert", `{"program":"strength"}`, trainer)
	expectStatus(t, rec, http.StatusCreated)
	var c clientView
	decodeData(t, rec, &c)
	if c.LeadID != l.ID || c.Program != "strength" {
		t.Errorf("client = %+v", c)
	}

	rec = ts.do(t, "GET", "/api/leads?status=converted", "", trainer)
	expectStatus(t, rec, http.StatusOK)
	var leads []leadView
	env := decodeData(t, rec, &leads)
	if len(leads) != 1 || env.Pagination == nil || env.Pagination.Total != 1 {
		t.Errorf("converted leads = %d, pagination %+v", len(leads), env.Pagination)
	}

	expectStatus(t, ts.do(t, "DELETE", "/api/leads/"+l.ID, "", trainer), http.StatusOK)
	expectStatus(t, ts.do(t, "GET", "/api/leads/"+l.ID, "", trainer), http.StatusNotFound)
	expectStatus(t, ts.do(t, "DELETE", "/api/leads/missing", "", trainer), http.StatusNotFound)
}

func TestClientCRUD(t *testing.T) {
	ts := newTestServer(t, Services{})
	trainer := ts.login(t, account.RoleTrainer, "")

	rec := ts.do(t, "POST", "/api/clients", `{"name":"Meera","email":"meera@example.com","start_date":"2026-10-01"}`, trainer)
	expectStatus(t, rec, http.StatusCreated)
	var c clientView
	decodeData(t, rec, &c)
	if c.Status != "active" {
		t.Errorf("default status = %q, want active", c.Status)
	}

	rec = ts.do(t, "PATCH", "/api/clients/"+c.ID, `{"goal":"deadlift 100kg"}`, trainer)
	expectStatus(t, rec, http.StatusOK)
	decodeData(t, rec, &c)
	if c.Goal != "deadlift 100kg" || c.Name != "Meera" || c.StartDate != "2026-10-01" {
		t.Errorf("patch lost fields: %+v", c)
	}

	rec = ts.do(t, "PATCH", "/api/clients/"+c.ID, `{"start_date":"01/10/2026"}`, trainer)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = ts.do(t, "GET", "/api/clients?q=meer", "", trainer)
	expectStatus(t, rec, http.StatusOK)
	var list []clientView
	decodeData(t, rec, &list)
	if len(list) != 1 {
		t.Errorf("search returned %d clients, want 1", len(list))
	}

	expectStatus(t, ts.do(t, "DELETE", "/api/clients/"+c.ID, "", trainer), http.StatusOK)
	expectStatus(t, ts.do(t, "GET", "/api/clients/"+c.ID, "", trainer), http.StatusNotFound)
}

func TestBooking_SlotsAndDoubleBooking(t *testing.T) {
	ts := newTestServer(t, Services{})

	rec := ts.do(t, "GET", "/api/booking/slots?date=2026-10-20", "", "")
	expectStatus(t, rec, http.StatusOK)
	var slots projections.GetBookingSlotsResult
	decodeData(t, rec, &slots)
	if len(slots.Slots) == 0 || slots.Slots[0].Time != "10:00" || !slots.Slots[0].Available {
		t.Fatalf("slots = %+v", slots.Slots)
	}

	body := `{"name":"Kavya","email":"kavya@example.com","date":"2026-10-20","time":"10:00"}`
	rec = ts.do(t, "POST", "/api/booking", body, "")
	expectStatus(t, rec, http.StatusCreated)
	var booked map[string]string
	decodeData(t, rec, &booked)
	if booked["end_time"] != "10:20" || booked["lead_id"] == "" {
		t.Errorf("booking = %v", booked)
	}

	rec = ts.do(t, "POST", "/api/booking", strings.Replace(body, "kavya@", "other@", 1), "")
	expectStatus(t, rec, http.StatusBadRequest)
	if env := decodeEnvelope(t, rec); env.Details["time"] == "" {
		t.Errorf("details = %v, want time", env.Details)
	}

	rec = ts.do(t, "GET", "/api/booking/slots?date=2026-10-20", "", "")
	decodeData(t, rec, &slots)
	if slots.Slots[0].Available {
		t.Error("10:00 still reported available after booking")
	}

	rec = ts.do(t, "POST", "/api/booking", `{"name":"Kavya","email":"kavya@example.com","date":"2026-10-20","time":"10:05"}`, "")
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestAppointments_UpdateKeepsDurationUnlessMoved(t *testing.T) {
	ts := newTestServer(t, Services{})
	trainer := ts.login(t, account.RoleTrainer, "")

	rec := ts.do(t, "POST", "/api/appointments", `{"date":"2026-10-21","start_time":"11:00","end_time":"12:00","type":"session"}`, trainer)
	expectStatus(t, rec, http.StatusCreated)
	var a appointmentView
	decodeData(t, rec, &a)
	if a.EndTime != "12:00" {
		t.Fatalf("end_time = %q, want 12:00", a.EndTime)
	}

	rec = ts.do(t, "PATCH", "/api/appointments/"+a.ID, `{"notes":"bring bands"}`, trainer)
	expectStatus(t, rec, http.StatusOK)
	decodeData(t, rec, &a)
	if a.EndTime != "12:00" || a.Notes != "bring bands" {
		t.Errorf("after notes patch: %+v", a)
	}

	rec = ts.do(t, "GET", "/api/appointments?date=2026-10-21", "", trainer)
	expectStatus(t, rec, http.StatusOK)
	var list []appointmentView
	decodeData(t, rec, &list)
	if len(list) != 1 {
		t.Errorf("appointments on date = %d, want 1", len(list))
	}

	expectStatus(t, ts.do(t, "DELETE", "/api/appointments/"+a.ID, "", trainer), http.StatusOK)
	expectStatus(t, ts.do(t, "GET", "/api/appointments/"+a.ID, "", trainer), http.StatusNotFound)
}

func TestAttendance_CheckInCheckOut(t *testing.T) {
	ts := newTestServer(t, Services{})
	trainer := ts.login(t, account.RoleTrainer, "")
	var c clientView
	decodeData(t, ts.do(t, "POST", "/api/clients", `{"name":"Ravi"}`, trainer), &c)

	expectStatus(t, ts.do(t, "POST", "/api/attendance/check-in", `{"client_id":"missing"}`, trainer), http.StatusNotFound)

	rec := ts.do(t, "POST", "/api/attendance/check-in", `{"client_id":"`+c.ID+`"}`, trainer)
	expectStatus(t, rec, http.StatusCreated)
	var l attendanceView
	decodeData(t, rec, &l)
	if l.CheckOutTime != nil {
		t.Errorf("new check-in already checked out: %+v", l)
	}

	rec = ts.do(t, "GET", "/api/attendance?open=true", "", trainer)
	var open []attendanceView
	decodeData(t, rec, &open)
	if len(open) != 1 {
		t.Errorf("open check-ins = %d, want 1", len(open))
	}

	rec = ts.do(t, "POST", "/api/attendance/"+l.ID+"/check-out", "", trainer)
	expectStatus(t, rec, http.StatusOK)
	decodeData(t, rec, &l)
	if l.CheckOutTime == nil {
		t.Error("check-out time not set")
	}
}

func TestWorkoutPlans_AssignBlocksDeleteAndPortalLogs(t *testing.T) {
	ts := newTestServer(t, Services{})
	trainer := ts.login(t, account.RoleTrainer, "")
	var c clientView
	decodeData(t, ts.do(t, "POST", "/api/clients", `{"name":"Isha"}`, trainer), &c)

	planBody := `{"name":"Starter","level":"beginner","days":[
		{"day_number":1,"title":"Push","exercises":[{"name":"Push-up","sets":3,"reps":"10"},{"name":"Dip","sets":3,"reps":"8"}]},
		{"day_number":2,"title":"Pull","exercises":[{"name":"Row","sets":3,"reps":"12"}]}]}`
	rec := ts.do(t, "POST", "/api/workout-plans", planBody, trainer)
	expectStatus(t, rec, http.StatusCreated)
	var p workoutPlanView
	decodeData(t, rec, &p)
	if len(p.Days) != 2 || len(p.Days[0].Exercises) != 2 || p.CreatedBy != "trainer-001" {
		t.Fatalf("plan = %+v", p)
	}

	rec = ts.do(t, "POST", "/api/workout-plans/"+p.ID+"/assign", `{"client_id":"`+c.ID+`"}`, trainer)
	expectStatus(t, rec, http.StatusCreated)
	var asg workoutAssignmentView
	decodeData(t, rec, &asg)
	if asg.StartDate != "2026-10-19" || !asg.Active {
		t.Errorf("assignment = %+v", asg)
	}

	expectStatus(t, ts.do(t, "DELETE", "/api/workout-plans/"+p.ID, "", trainer), http.StatusBadRequest)

	member := ts.login(t, account.RoleClient, c.ID)
	rec = ts.do(t, "POST", "/api/portal/workout-logs", `{"day_id":"`+p.Days[0].ID+`","notes":"felt strong"}`, member)
	expectStatus(t, rec, http.StatusCreated)
	var wl workoutLogView
	decodeData(t, rec, &wl)
	if wl.PlanID != p.ID || wl.ClientID != c.ID {
		t.Errorf("log = %+v", wl)
	}

	rec = ts.do(t, "POST", "/api/portal/workout-logs", `{"plan_id":"someone-elses-plan"}`, member)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = ts.do(t, "GET", "/api/portal/me", "", member)
	expectStatus(t, rec, http.StatusOK)
	var portal portalView
	decodeData(t, rec, &portal)
	if portal.WorkoutPlan == nil || portal.WorkoutPlan.ID != p.ID || len(portal.RecentWorkouts) != 1 {
		t.Errorf("portal = %+v", portal)
	}
}

func TestMealPlans_AssignAndFoodLog(t *testing.T) {
	ts := newTestServer(t, Services{})
	trainer := ts.login(t, account.RoleTrainer, "")
	var c clientView
	decodeData(t, ts.do(t, "POST", "/api/clients", `{"name":"Neha"}`, trainer), &c)

	rec := ts.do(t, "POST", "/api/meal-plans", `{"name":"Cut","daily_calories":1800,"items":[
		{"meal":"breakfast","name":"Oats","calories":350,"protein_g":12},
		{"meal":"lunch","name":"Dal rice","calories":600,"protein_g":20}]}`, trainer)
	expectStatus(t, rec, http.StatusCreated)
	var mp mealPlanView
	decodeData(t, rec, &mp)
	if len(mp.Items) != 2 || mp.Totals.Calories != 950 {
		t.Fatalf("meal plan = %+v", mp)
	}

	rec = ts.do(t, "POST", "/api/meal-plans", `{"name":"Bad","items":[{"meal":"brunch","name":"x"}]}`, trainer)
	expectStatus(t, rec, http.StatusBadRequest)

	expectStatus(t, ts.do(t, "POST", "/api/meal-plans/"+mp.ID+"/assign", `{"client_id":"`+c.ID+`"}`, trainer), http.StatusCreated)
	expectStatus(t, ts.do(t, "DELETE", "/api/meal-plans/"+mp.ID, "", trainer), http.StatusBadRequest)

	member := ts.login(t, account.RoleClient, c.ID)
	rec = ts.do(t, "POST", "/api/portal/food-logs", `{"meal":"snack","description":"banana","calories":105}`, member)
	expectStatus(t, rec, http.StatusCreated)

	rec = ts.do(t, "GET", "/api/food-logs?client_id="+c.ID, "", trainer)
	expectStatus(t, rec, http.StatusOK)
	var logs []foodLogView
	decodeData(t, rec, &logs)
	if len(logs) != 1 || logs[0].Calories != 105 {
		t.Errorf("food logs = %+v", logs)
	}
}

func TestPortal_RequiresLinkedClient(t *testing.T) {
	ts := newTestServer(t, Services{})
	member := ts.login(t, account.RoleClient, "")
	expectStatus(t, ts.do(t, "GET", "/api/portal/me", "", member), http.StatusForbidden)
}

func TestEvents_DraftVisibilityAndFreeRegistration(t *testing.T) {
	ts := newTestServer(t, Services{})
	trainer := ts.login(t, account.RoleTrainer, "")

	rec := ts.do(t, "POST", "/api/events", `{"title":"Mobility workshop","date":"2026-11-01","start_time":"09:00","end_time":"11:00","max_capacity":1}`, trainer)
	expectStatus(t, rec, http.StatusCreated)
	var e eventView
	decodeData(t, rec, &e)

	expectStatus(t, ts.do(t, "GET", "/api/events/"+e.ID, "", ""), http.StatusNotFound)
	expectStatus(t, ts.do(t, "GET", "/api/events/"+e.ID, "", trainer), http.StatusOK)
	expectStatus(t, ts.do(t, "POST", "/api/events/"+e.ID+"/register", `{"name":"Tara","email":"tara@example.com"}`, ""), http.StatusBadRequest)

	rec = ts.do(t, "PATCH", "/api/events/"+e.ID, `{"published":true}`, trainer)
	expectStatus(t, rec, http.StatusOK)

	rec = ts.do(t, "POST", "/api/events/"+e.ID+"/register", `{"name":"Tara","email":"tara@example.com"}`, "")
	expectStatus(t, rec, http.StatusCreated)
	var res registrationResultView
	decodeData(t, rec, &res)
	if res.Registration.Status != event.RegistrationConfirmed || res.Payment != nil {
		t.Errorf("free registration = %+v", res)
	}

	rec = ts.do(t, "POST", "/api/events/"+e.ID+"/register", `{"name":"Sam","email":"sam@example.com"}`, "")
	expectStatus(t, rec, http.StatusBadRequest)

	rec = ts.do(t, "GET", "/api/events/"+e.ID+"/registrations", "", trainer)
	var regs []registrationView
	decodeData(t, rec, &regs)
	if len(regs) != 1 {
		t.Errorf("registrations = %d, want 1", len(regs))
	}
}

func TestPaidEvent_ManualPaymentConfirmsRegistration(t *testing.T) {
	ts := newTestServer(t, Services{})
	trainer := ts.login(t, account.RoleTrainer, "")
	var e eventView
	decodeData(t, ts.do(t, "POST", "/api/events", `{"title":"Bootcamp","date":"2026-11-08","start_time":"07:00","fee_amount":50000,"published":true}`, trainer), &e)

	rec := ts.do(t, "POST", "/api/events/"+e.ID+"/register", `{"name":"Dev","email":"dev@example.com"}`, "")
	expectStatus(t, rec, http.StatusCreated)
	var res registrationResultView
	decodeData(t, rec, &res)
	if res.Registration.Status != event.RegistrationPending || res.Payment == nil || res.Order != nil {
		t.Fatalf("paid registration without gateway = %+v", res)
	}

	rec = ts.do(t, "POST", "/api/payments/"+res.Payment.ID+"/mark-paid", "", trainer)
	expectStatus(t, rec, http.StatusOK)
	var p paymentView
	decodeData(t, rec, &p)
	if p.Status != "captured" {
		t.Errorf("payment status = %q, want captured", p.Status)
	}

	rec = ts.do(t, "GET", "/api/events/"+e.ID+"/registrations", "", trainer)
	var regs []registrationView
	decodeData(t, rec, &regs)
	if len(regs) != 1 || regs[0].Status != event.RegistrationConfirmed {
		t.Errorf("registrations = %+v", regs)
	}
}

func TestPaymentWebhook_Signature(t *testing.T) {
	const secret = "whsec_test"
	ts := newTestServer(t, Services{Gateway: paymentgw.NewRazorpayClient("rzp_test_key", "key_secret", secret)})
	body := `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_unknown"}}}}`

	tests := []struct {
		name      string
		signature string
		want      int
	}{
		{"missing signature", "", http.StatusUnauthorized},
		{"wrong signature", hex.EncodeToString(paymentgw.Sign([]byte(body), "other")), http.StatusUnauthorized},
		{"unknown order is acknowledged", hex.EncodeToString(paymentgw.Sign([]byte(body), secret)), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newJSONRequest("POST", "/api/payments/webhook", body)
			if tt.signature != "" {
				req.Header.Set(webhookSignatureHeader, tt.signature)
			}
			rec := serve(ts, req)
			expectStatus(t, rec, tt.want)
		})
	}
}

func TestAIRoutes_NotConfigured(t *testing.T) {
	ts := newTestServer(t, Services{})
	trainer := ts.login(t, account.RoleTrainer, "")
	rec := ts.do(t, "POST", "/api/ai/caption", `{"topic":"new batch starting"}`, trainer)
	expectStatus(t, rec, http.StatusServiceUnavailable)
	rec = ts.do(t, "POST", "/api/ai/workout-plan", `{"goal":"strength","days_per_week":3}`, trainer)
	expectStatus(t, rec, http.StatusServiceUnavailable)
}

func TestOutboxAdmin(t *testing.T) {
	ts := newTestServer(t, Services{StaffEmail: "desk@studio.test"})
	admin := ts.login(t, account.RoleAdmin, "")

	expectStatus(t, ts.do(t, "POST", "/api/leads", `{"name":"Zoya","email":"zoya@example.com"}`, ""), http.StatusCreated)

	rec := ts.do(t, "GET", "/api/admin/outbox?status=all", "", admin)
	expectStatus(t, rec, http.StatusOK)
	var msgs []outboxView
	decodeData(t, rec, &msgs)
	if len(msgs) == 0 {
		t.Fatal("lead capture queued no notification")
	}

	expectStatus(t, ts.do(t, "POST", "/api/admin/outbox/"+msgs[0].ID+"/retry", "", admin), http.StatusServiceUnavailable)
}

func TestDashboard(t *testing.T) {
	ts := newTestServer(t, Services{})
	trainer := ts.login(t, account.RoleTrainer, "")
	ts.do(t, "POST", "/api/leads", `{"name":"Lead One","email":"one@example.com"}`, "")
	ts.do(t, "POST", "/api/clients", `{"name":"Client One"}`, trainer)

	rec := ts.do(t, "GET", "/api/dashboard", "", trainer)
	expectStatus(t, rec, http.StatusOK)
	var d dashboardView
	decodeData(t, rec, &d)
	if d.Date != "2026-10-19" || d.NewLeads != 1 || d.ActiveClients != 1 {
		t.Errorf("dashboard = %+v", d)
	}
}
