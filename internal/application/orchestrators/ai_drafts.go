package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"fitstudio/internal/adapters/ai"
	"fitstudio/internal/domain/workout"
)

// Drafter produces LLM-written drafts for staff to review.
type Drafter interface {
	Enabled() bool
	DraftCaption(ctx context.Context, req ai.CaptionRequest) (string, error)
	DraftLeadReply(ctx context.Context, req ai.LeadReplyRequest) (string, error)
	DraftWorkoutPlan(ctx context.Context, req ai.WorkoutRequest) (workout.Plan, error)
}

// DraftDeps holds dependencies shared by the AI draft orchestrators.
type DraftDeps struct {
	Drafter      Drafter
	LeadStore    LeadStore    // DraftLeadReply only
	WorkoutStore WorkoutStore // DraftWorkoutPlan with Save only
	GenerateID   func() string
	Now          func() time.Time
}

func (d DraftDeps) enabled() error {
	if d.Drafter == nil || !d.Drafter.Enabled() {
		return ai.ErrNotConfigured
	}
	return nil
}

// ExecuteDraftCaption drafts a social media caption.
// PRE: Topic is non-empty
func ExecuteDraftCaption(ctx context.Context, input ai.CaptionRequest, deps DraftDeps) (string, error) {
	if strings.TrimSpace(input.Topic) == "" {
		return "", invalidField("topic", "topic is required")
	}
	if err := deps.enabled(); err != nil {
		return "", err
	}
	caption, err := deps.Drafter.DraftCaption(ctx, input)
	if err != nil {
		return "", err
	}
	slog.Info("ai_event", "event", "caption_drafted", "platform", input.Platform, "chars", len(caption))
	return caption, nil
}

// ExecuteDraftLeadReply drafts a first reply to a lead from their enquiry.
// PRE: leadID refers to an existing lead
func ExecuteDraftLeadReply(ctx context.Context, leadID string, deps DraftDeps) (string, error) {
	l, err := deps.LeadStore.GetByID(ctx, leadID)
	if err != nil {
		return "", err
	}
	if err := deps.enabled(); err != nil {
		return "", err
	}
	reply, err := deps.Drafter.DraftLeadReply(ctx, ai.LeadReplyRequest{
		Name:    l.Name,
		Goal:    l.Goal,
		Message: l.Message,
		Source:  l.Source,
	})
	if err != nil {
		return "", err
	}
	slog.Info("ai_event", "event", "lead_reply_drafted", "lead_id", l.ID)
	return reply, nil
}

// DraftWorkoutPlanInput carries the brief for a drafted plan.
type DraftWorkoutPlanInput struct {
	ai.WorkoutRequest
	Save      bool   // persist the draft as a new plan
	CreatedBy string // account ID recorded on a saved plan
}

// ExecuteDraftWorkoutPlan drafts a workout plan and optionally saves it.
// PRE: Goal is non-empty, DaysPerWeek in 1..7
// POST: Returns the draft; when Save is set the plan is persisted through SaveWorkoutPlan
func ExecuteDraftWorkoutPlan(ctx context.Context, input DraftWorkoutPlanInput, deps DraftDeps) (workout.Plan, error) {
	if strings.TrimSpace(input.Goal) == "" {
		return workout.Plan{}, invalidField("goal", "goal is required")
	}
	if input.DaysPerWeek < 1 || input.DaysPerWeek > 7 {
		return workout.Plan{}, invalidField("days_per_week", "must be between 1 and 7")
	}
	if err := deps.enabled(); err != nil {
		return workout.Plan{}, err
	}
	draft, err := deps.Drafter.DraftWorkoutPlan(ctx, input.WorkoutRequest)
	if err != nil {
		return workout.Plan{}, err
	}
	slog.Info("ai_event", "event", "workout_plan_drafted", "days", len(draft.Days), "exercises", draft.ExerciseCount(), "save", input.Save)
	if !input.Save {
		return draft, nil
	}
	return ExecuteSaveWorkoutPlan(ctx, SaveWorkoutPlanInput{
		Name:        draft.Name,
		Description: draft.Description,
		Level:       draft.Level,
		CreatedBy:   input.CreatedBy,
		Days:        draft.Days,
	}, SaveWorkoutPlanDeps{WorkoutStore: deps.WorkoutStore, GenerateID: deps.GenerateID, Now: deps.Now})
}
