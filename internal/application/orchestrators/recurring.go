package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"fitstudio/internal/adapters/monitoring"
	recurringstore "fitstudio/internal/adapters/storage/recurring"
	"fitstudio/internal/domain/appointment"
	"fitstudio/internal/domain/recurring"
)

// RecurringStore defines the template persistence needed by recurring orchestrators.
type RecurringStore interface {
	GetByID(ctx context.Context, id string) (recurring.Session, error)
	Save(ctx context.Context, s recurring.Session) error
	List(ctx context.Context, filter recurringstore.ListFilter) ([]recurring.Session, error)
}

// --- Save Recurring Session ---

// RecurringSessionInput carries the editable fields of a recurring template.
type RecurringSessionInput struct {
	ID              string // empty on create
	ClientID        string
	DaysOfWeek      []int
	StartTime       string
	DurationMinutes int
	Type            string
	Notes           string
	Active          bool
	StartDate       string
	EndDate         string
}

// RecurringSessionDeps holds dependencies for Create/UpdateRecurringSession.
type RecurringSessionDeps struct {
	RecurringStore RecurringStore
	ClientStore    ClientGetter // optional
	GenerateID     func() string
	Now            func() time.Time
}

// ExecuteCreateRecurringSession stores a new weekly template.
// POST: Template persisted; no appointments are materialized until generation runs
func ExecuteCreateRecurringSession(ctx context.Context, input RecurringSessionInput, deps RecurringSessionDeps) (recurring.Session, error) {
	now := nowFn(deps.Now)
	s := recurring.Session{ID: idFn(deps.GenerateID), CreatedAt: now}
	return saveRecurringSession(ctx, s, input, now, deps)
}

// ExecuteUpdateRecurringSession replaces the fields of an existing template.
// Appointments already generated are left untouched.
func ExecuteUpdateRecurringSession(ctx context.Context, input RecurringSessionInput, deps RecurringSessionDeps) (recurring.Session, error) {
	s, err := deps.RecurringStore.GetByID(ctx, input.ID)
	if err != nil {
		return recurring.Session{}, err
	}
	return saveRecurringSession(ctx, s, input, nowFn(deps.Now), deps)
}

func saveRecurringSession(ctx context.Context, s recurring.Session, in RecurringSessionInput, now time.Time, deps RecurringSessionDeps) (recurring.Session, error) {
	s.ClientID = in.ClientID
	s.DaysOfWeek = in.DaysOfWeek
	s.StartTime = in.StartTime
	s.DurationMinutes = in.DurationMinutes
	s.Type = in.Type
	if s.Type == "" {
		s.Type = appointment.TypeSession
	}
	s.Notes = in.Notes
	s.Active = in.Active
	s.StartDate = in.StartDate
	s.EndDate = in.EndDate
	s.UpdatedAt = now

	if err := s.Validate(); err != nil {
		return recurring.Session{}, invalid(err)
	}
	if deps.ClientStore != nil {
		if _, err := deps.ClientStore.GetByID(ctx, s.ClientID); err != nil {
			return recurring.Session{}, err
		}
	}
	if err := deps.RecurringStore.Save(ctx, s); err != nil {
		return recurring.Session{}, err
	}
	slog.Info("recurring_event", "event", "recurring_session_saved", "recurring_session_id", s.ID, "client_id", s.ClientID, "active", s.Active)
	return s, nil
}

// --- Generate Recurring Sessions ---

// OccurrenceStore is the appointment persistence needed by generation.
type OccurrenceStore interface {
	ExistsAt(ctx context.Context, clientID, date, startTime string) (bool, error)
	CreateBatch(ctx context.Context, appts []appointment.Appointment) error
}

// GenerateRecurringInput selects which templates to expand and how far ahead.
type GenerateRecurringInput struct {
	Weeks      int      // 0 means recurring.DefaultWeeks
	SessionIDs []string // optional; restricts expansion to these templates
	ClientID   string   // optional
}

// GenerateRecurringDeps holds dependencies for GenerateRecurringSessions.
type GenerateRecurringDeps struct {
	RecurringStore   RecurringStore
	AppointmentStore OccurrenceStore
	Metrics          *monitoring.Metrics
	Location         *time.Location
	GenerateID       func() string
	Now              func() time.Time
}

// GenerateRecurringResult reports the outcome of an expansion run.
type GenerateRecurringResult struct {
	Created      int                       `json:"created"`
	Skipped      int                       `json:"skipped"`
	Invalid      int                       `json:"invalid"` // templates skipped because an occurrence failed validation
	Sessions     int                       `json:"sessions"`
	Appointments []appointment.Appointment `json:"appointments"`
}

// ExecuteGenerateRecurringSessions materializes active templates into appointments for
// every matching date in [today, today+weeks*7], today taken in the studio timezone.
// PRE: Weeks is 0 or within recurring.ValidateWeeks bounds
// POST: New appointments are inserted in one batch; occurrences whose
// (client, date, start) already exist are skipped, so repeated runs are idempotent
func ExecuteGenerateRecurringSessions(ctx context.Context, input GenerateRecurringInput, deps GenerateRecurringDeps) (GenerateRecurringResult, error) {
	weeks := input.Weeks
	if weeks == 0 {
		weeks = recurring.DefaultWeeks
	}
	if err := recurring.ValidateWeeks(weeks); err != nil {
		return GenerateRecurringResult{}, invalidField("weeks", err.Error())
	}

	sessions, err := deps.RecurringStore.List(ctx, recurringstore.ListFilter{
		ClientID:   input.ClientID,
		ActiveOnly: true,
		IDs:        input.SessionIDs,
	})
	if err != nil {
		return GenerateRecurringResult{}, err
	}

	now := nowFn(deps.Now)
	today := studioToday(now, deps.Location)
	result := GenerateRecurringResult{Sessions: len(sessions), Appointments: []appointment.Appointment{}}
	seen := make(map[string]bool)
	var batch []appointment.Appointment

templates:
	for _, s := range sessions {
		for _, date := range s.CandidateDates(today, weeks) {
			occ, err := s.Occurrence(date)
			if err != nil {
				slog.Warn("recurring_event", "event", "template_skipped", "recurring_session_id", s.ID, "error", err)
				result.Invalid++
				continue templates
			}
			key := occ.Key()
			if seen[key] {
				result.Skipped++
				continue
			}
			seen[key] = true

			exists, err := deps.AppointmentStore.ExistsAt(ctx, occ.ClientID, occ.Date, occ.StartTime)
			if err != nil {
				return GenerateRecurringResult{}, err
			}
			if exists {
				result.Skipped++
				continue
			}
			occ.ID = idFn(deps.GenerateID)
			occ.CreatedAt = now
			occ.UpdatedAt = now
			batch = append(batch, occ)
		}
	}

	if len(batch) > 0 {
		if err := deps.AppointmentStore.CreateBatch(ctx, batch); err != nil {
			return GenerateRecurringResult{}, err
		}
	}
	result.Created = len(batch)
	if batch != nil {
		result.Appointments = batch
	}

	slog.Info("recurring_event", "event", "recurring_generated", "sessions", result.Sessions, "created", result.Created, "skipped", result.Skipped, "weeks", weeks)
	deps.Metrics.AppointmentsGenerated(result.Created)
	return result, nil
}
