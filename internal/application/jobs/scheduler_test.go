package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"fitstudio/internal/application/orchestrators"
	"fitstudio/internal/domain/appointment"
	"fitstudio/internal/domain/outbox"
)

// TestSchedulerAdd covers valid, disabled and malformed schedules.
func TestSchedulerAdd(t *testing.T) {
	s := New(time.FixedZone("IST", 5*3600+30*60))
	noop := func(context.Context) error { return nil }

	if err := s.Add("outbox", "@every 1m", time.Minute, noop); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Add("recurring", "30 2 * * *", time.Minute, noop); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Add("disabled", "", time.Minute, noop); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Add("broken", "every minute please", time.Minute, noop); err == nil {
		t.Fatal("expected error for malformed spec")
	}

	jobs := s.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %v", jobs)
	}
}

// TestRunHonoursTimeout verifies each run gets a bounded context.
func TestRunHonoursTimeout(t *testing.T) {
	var sawDeadline bool
	run("deadline_check", 50*time.Millisecond, func(ctx context.Context) error {
		_, sawDeadline = ctx.Deadline()
		return errors.New("logged, not returned")
	})
	if !sawDeadline {
		t.Error("expected a deadline on the job context")
	}
}

type memOutbox struct {
	msgs map[string]outbox.Message
}

func (m *memOutbox) GetByID(_ context.Context, id string) (outbox.Message, error) {
	return m.msgs[id], nil
}

func (m *memOutbox) Save(_ context.Context, msg outbox.Message) error {
	m.msgs[msg.ID] = msg
	return nil
}

func (m *memOutbox) ListDue(_ context.Context, now time.Time, _ int) ([]outbox.Message, error) {
	var out []outbox.Message
	for _, msg := range m.msgs {
		if msg.IsDue(now) {
			out = append(out, msg)
		}
	}
	return out, nil
}

type okChannel struct{}

func (okChannel) Deliver(context.Context, outbox.Message) (string, error) { return "ext-1", nil }

// TestOutboxJob delivers due messages through the processor.
func TestOutboxJob(t *testing.T) {
	store := &memOutbox{msgs: map[string]outbox.Message{
		"m-1": {ID: "m-1", Channel: outbox.ChannelEmail, Recipient: "a@b.co", Subject: "s", Body: "b", Status: outbox.StatusPending, MaxAttempts: 3},
	}}
	p := orchestrators.NewOutboxProcessor(store, map[string]orchestrators.ChannelSender{outbox.ChannelEmail: okChannel{}}, nil)

	if err := OutboxJob(p)(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.msgs["m-1"].Status != outbox.StatusSent {
		t.Errorf("expected sent, got %s", store.msgs["m-1"].Status)
	}
}

type badWeeksStore struct{}

func (badWeeksStore) ExistsAt(context.Context, string, string, string) (bool, error) {
	return false, nil
}
func (badWeeksStore) CreateBatch(context.Context, []appointment.Appointment) error { return nil }

// TestRecurringJobRejectsBadHorizon surfaces validation errors to the runner.
func TestRecurringJobRejectsBadHorizon(t *testing.T) {
	err := RecurringJob(orchestrators.GenerateRecurringDeps{AppointmentStore: badWeeksStore{}}, 52)(context.Background())
	if !orchestrators.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
