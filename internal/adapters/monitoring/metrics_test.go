package monitoring

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/leads", "/api/leads"},
		{"/api/leads/3f2b8c1e-9d4a-4b7e-a1c2-5e6f7a8b9c0d/convert", "/api/leads/{id}/convert"},
		{"/api/clients/42", "/api/clients/{id}"},
		{"/api/booking/slots", "/api/booking/slots"},
		{"/", "/"},
	}
	for _, tt := range tests {
		if got := RouteLabel(tt.path); got != tt.want {
			t.Errorf("RouteLabel(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest("GET", "/api/clients/42", 200, 10*time.Millisecond)
	m.ObserveRequest("GET", "/api/clients/43", 200, 10*time.Millisecond)
	m.ObserveQuery("query", time.Millisecond)
	m.LeadCreated("")
	m.LeadCreated("instagram")
	m.WebhookHandled("rejected")
	m.AppointmentsGenerated(3)
	m.AppointmentsGenerated(0)

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/api/clients/{id}", "200")); got != 2 {
		t.Errorf("requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.leadsTotal.WithLabelValues("unknown")); got != 1 {
		t.Errorf("unknown leads = %v", got)
	}
	if got := testutil.ToFloat64(m.appointmentsGenerated); got != 3 {
		t.Errorf("appointments generated = %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "studio_payment_webhooks_total") {
		t.Error("exposition missing webhook counter")
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveQuery("exec", time.Millisecond)
	m.ObserveRequest("GET", "/", 200, time.Millisecond)
	m.LeadCreated("web")
	m.OutboxDelivery("email", "sent")
	CaptureError(context.Background(), errors.New("no sentry configured"), nil)
}
