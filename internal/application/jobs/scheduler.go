// Package jobs runs the studio's periodic background work on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"fitstudio/internal/application/orchestrators"
)

// Func is one unit of scheduled work.
type Func func(ctx context.Context) error

// Scheduler wraps a cron runner whose schedules are read in the studio timezone.
type Scheduler struct {
	cron  *cron.Cron
	names map[cron.EntryID]string
}

// New creates a scheduler. Overlapping runs of the same job are skipped and
// panics inside a job are recovered and logged.
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	logger := slogLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		names: make(map[cron.EntryID]string),
	}
}

// Add registers fn under name. An empty spec disables the job.
// PRE: spec is a standard 5-field cron expression or a descriptor like "@every 1m"
// POST: Each run gets its own context bounded by timeout
func (s *Scheduler) Add(name, spec string, timeout time.Duration, fn Func) error {
	if spec == "" {
		slog.Info("job_event", "event", "job_disabled", "job", name)
		return nil
	}
	id, err := s.cron.AddFunc(spec, func() { run(name, timeout, fn) })
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.names[id] = name
	slog.Info("job_event", "event", "job_scheduled", "job", name, "spec", spec)
	return nil
}

// Jobs returns the names of the scheduled jobs.
func (s *Scheduler) Jobs() []string {
	var names []string
	for _, e := range s.cron.Entries() {
		names = append(names, s.names[e.ID])
	}
	return names
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and returns a context that is done when running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func run(name string, timeout time.Duration, fn Func) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	start := time.Now()
	if err := fn(ctx); err != nil {
		slog.Error("job_event", "event", "job_failed", "job", name, "duration_ms", time.Since(start).Milliseconds(), "error", err)
		return
	}
	slog.Debug("job_event", "event", "job_done", "job", name, "duration_ms", time.Since(start).Milliseconds())
}

// OutboxJob delivers due outbox messages.
func OutboxJob(p *orchestrators.OutboxProcessor) Func {
	return func(ctx context.Context) error {
		_, err := p.ProcessPending(ctx)
		return err
	}
}

// RecurringJob expands every active recurring template weeks ahead.
func RecurringJob(deps orchestrators.GenerateRecurringDeps, weeks int) Func {
	return func(ctx context.Context) error {
		_, err := orchestrators.ExecuteGenerateRecurringSessions(ctx, orchestrators.GenerateRecurringInput{Weeks: weeks}, deps)
		return err
	}
}

// slogLogger adapts cron's logger to slog.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron_"+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron_"+msg, append(keysAndValues, "error", err)...)
}
