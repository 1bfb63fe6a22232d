package web

import (
	"net/http"

	"fitstudio/internal/adapters/ai"
	"fitstudio/internal/adapters/http/middleware"
	"fitstudio/internal/application/orchestrators"
)

func draftDeps() orchestrators.DraftDeps {
	return orchestrators.DraftDeps{
		Drafter:      services.Drafter,
		LeadStore:    stores.LeadStore,
		WorkoutStore: stores.WorkoutStore,
		GenerateID:   generateID,
		Now:          timeNow,
	}
}

type captionRequest struct {
	Topic    string `json:"topic" validate:"required,max=500"`
	Platform string `json:"platform" validate:"omitempty,oneof=instagram facebook linkedin x"`
	Tone     string `json:"tone" validate:"max=50"`
}

// handleDraftCaption handles POST /api/ai/caption
func handleDraftCaption(w http.ResponseWriter, r *http.Request) {
	var req captionRequest
	if !bind(w, r, &req) {
		return
	}
	caption, err := orchestrators.ExecuteDraftCaption(r.Context(), ai.CaptionRequest{
		Topic:    req.Topic,
		Platform: req.Platform,
		Tone:     req.Tone,
	}, draftDeps())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"caption": caption})
}

type draftWorkoutRequest struct {
	Goal        string `json:"goal" validate:"required,max=200"`
	Level       string `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	DaysPerWeek int    `json:"days_per_week" validate:"required,min=1,max=7"`
	Equipment   string `json:"equipment" validate:"max=200"`
	Notes       string `json:"notes" validate:"max=1000"`
	Save        bool   `json:"save"`
}

// handleDraftWorkoutPlan handles POST /api/ai/workout-plan. With save=true the
// draft is stored as a plan owned by the caller and 201 is returned.
func handleDraftWorkoutPlan(w http.ResponseWriter, r *http.Request) {
	var req draftWorkoutRequest
	if !bind(w, r, &req) {
		return
	}
	sess, _ := middleware.GetSessionFromContext(r.Context())
	plan, err := orchestrators.ExecuteDraftWorkoutPlan(r.Context(), orchestrators.DraftWorkoutPlanInput{
		WorkoutRequest: ai.WorkoutRequest{
			Goal:        req.Goal,
			Level:       req.Level,
			DaysPerWeek: req.DaysPerWeek,
			Equipment:   req.Equipment,
			Notes:       req.Notes,
		},
		Save:      req.Save,
		CreatedBy: sess.AccountID,
	}, draftDeps())
	if err != nil {
		handleError(w, r, err)
		return
	}
	status := http.StatusOK
	if req.Save {
		status = http.StatusCreated
	}
	respondData(w, status, toWorkoutPlanView(plan))
}
