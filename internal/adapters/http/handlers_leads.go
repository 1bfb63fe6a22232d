package web

import (
	"net/http"
	"strings"

	"fitstudio/internal/adapters/http/middleware"
	"fitstudio/internal/application/listutil"
	"fitstudio/internal/application/orchestrators"
	"fitstudio/internal/application/projections"
	"fitstudio/internal/domain/lead"
)

// leadRequest is the create and patch body for leads. Status and Notes are
// dropped from anonymous submissions before validation.
type leadRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Email       string `json:"email" validate:"omitempty,email,max=254"`
	Phone       string `json:"phone" validate:"max=30"`
	Message     string `json:"message" validate:"max=2000"`
	Goal        string `json:"goal" validate:"max=200"`
	Source      string `json:"source" validate:"omitempty,oneof=website booking event manual"`
	UTMSource   string `json:"utm_source" validate:"max=100"`
	UTMMedium   string `json:"utm_medium" validate:"max=100"`
	UTMCampaign string `json:"utm_campaign" validate:"max=100"`
	UTMTerm     string `json:"utm_term" validate:"max=100"`
	UTMContent  string `json:"utm_content" validate:"max=100"`
	Status      string `json:"status" validate:"omitempty,oneof=new contacted converted not_interested"`
	Notes       string `json:"notes" validate:"max=2000"`
}

func leadRequestFrom(l lead.Lead) leadRequest {
	return leadRequest{
		Name:        l.Name,
		Email:       l.Email,
		Phone:       l.Phone,
		Message:     l.Message,
		Goal:        l.Goal,
		Source:      l.Source,
		UTMSource:   l.UTMSource,
		UTMMedium:   l.UTMMedium,
		UTMCampaign: l.UTMCampaign,
		UTMTerm:     l.UTMTerm,
		UTMContent:  l.UTMContent,
		Status:      l.Status,
		Notes:       l.Notes,
	}
}

// leadFromForm reads a urlencoded marketing-site submission.
func leadFromForm(r *http.Request) (leadRequest, error) {
	if err := r.ParseForm(); err != nil {
		return leadRequest{}, err
	}
	return leadRequest{
		Name:        r.PostFormValue("name"),
		Email:       r.PostFormValue("email"),
		Phone:       r.PostFormValue("phone"),
		Message:     r.PostFormValue("message"),
		Goal:        r.PostFormValue("goal"),
		Source:      r.PostFormValue("source"),
		UTMSource:   r.PostFormValue("utm_source"),
		UTMMedium:   r.PostFormValue("utm_medium"),
		UTMCampaign: r.PostFormValue("utm_campaign"),
		UTMTerm:     r.PostFormValue("utm_term"),
		UTMContent:  r.PostFormValue("utm_content"),
	}, nil
}

// handleCreateLead handles POST /api/leads for both the public site (JSON or form)
// and staff. Public submissions always start as new.
func handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		var err error
		if req, err = leadFromForm(r); err != nil {
			respondError(w, http.StatusBadRequest, "invalid form submission", nil)
			return
		}
	} else if !decode(w, r, &req) {
		return
	}
	isStaff := middleware.IsStaff(r.Context())
	if !isStaff {
		req.Status, req.Notes = "", ""
	}
	if !check(w, &req) {
		return
	}

	l, err := orchestrators.ExecuteCreateLead(r.Context(), orchestrators.CreateLeadInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Message:     req.Message,
		Goal:        req.Goal,
		Source:      req.Source,
		UTMSource:   req.UTMSource,
		UTMMedium:   req.UTMMedium,
		UTMCampaign: req.UTMCampaign,
		UTMTerm:     req.UTMTerm,
		UTMContent:  req.UTMContent,
		Status:      req.Status,
		Notes:       req.Notes,
		Public:      !isStaff,
	}, orchestrators.CreateLeadDeps{
		LeadStore:  stores.LeadStore,
		Notifier:   notifier(),
		Metrics:    services.Metrics,
		GenerateID: generateID,
		Now:        timeNow,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	if !isStaff {
		// The public site only needs an acknowledgement.
		respondData(w, http.StatusCreated, map[string]string{"id": l.ID, "status": l.Status})
		return
	}
	respondData(w, http.StatusCreated, toLeadView(l))
}

// handleListLeads handles GET /api/leads?status=&source=&q=&page=&per_page=
func handleListLeads(w http.ResponseWriter, r *http.Request) {
	lp := listutil.ParseListParams(r.URL.Query(), []string{"status", "source"})
	result, err := projections.QueryGetLeadList(r.Context(), projections.GetLeadListQuery{
		Status:  lp.Filters["status"],
		Source:  lp.Filters["source"],
		Search:  lp.Search,
		Page:    lp.Page,
		PerPage: lp.PerPage,
	}, projections.GetLeadListDeps{LeadStore: stores.LeadStore})
	if err != nil {
		internalError(w, r, err)
		return
	}
	respondList(w, mapSlice(result.Leads, toLeadView), result.Page)
}

// handleGetLead handles GET /api/leads/{id}
func handleGetLead(w http.ResponseWriter, r *http.Request) {
	l, err := stores.LeadStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toLeadView(l))
}

// handleUpdateLead handles PATCH /api/leads/{id}
func handleUpdateLead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	current, err := stores.LeadStore.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	req := leadRequestFrom(current)
	if !patch(w, r, &req) {
		return
	}

	l, err := orchestrators.ExecuteUpdateLead(r.Context(), orchestrators.UpdateLeadInput{
		ID:          id,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Message:     req.Message,
		Goal:        req.Goal,
		Source:      req.Source,
		UTMSource:   req.UTMSource,
		UTMMedium:   req.UTMMedium,
		UTMCampaign: req.UTMCampaign,
		UTMTerm:     req.UTMTerm,
		UTMContent:  req.UTMContent,
		Status:      req.Status,
		Notes:       req.Notes,
	}, orchestrators.UpdateLeadDeps{LeadStore: stores.LeadStore, Now: timeNow})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toLeadView(l))
}

// handleDeleteLead handles DELETE /api/leads/{id}
func handleDeleteLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if _, err := stores.LeadStore.GetByID(ctx, id); err != nil {
		handleError(w, r, err)
		return
	}
	if err := stores.LeadStore.Delete(ctx, id); err != nil {
		internalError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

type convertLeadRequest struct {
	Program   string `json:"program" validate:"max=100"`
	StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	Notes     string `json:"notes" validate:"max=2000"`
}

// handleConvertLead handles POST /api/leads/{id}/convert. An empty body is allowed.
func handleConvertLead(w http.ResponseWriter, r *http.Request) {
	var req convertLeadRequest
	if r.ContentLength > 0 && !bind(w, r, &req) {
		return
	}
	c, err := orchestrators.ExecuteConvertLead(r.Context(), orchestrators.ConvertLeadInput{
		LeadID:    r.PathValue("id"),
		Program:   req.Program,
		StartDate: req.StartDate,
		Notes:     req.Notes,
	}, orchestrators.ConvertLeadDeps{
		LeadStore:   stores.LeadStore,
		ClientStore: stores.ClientStore,
		GenerateID:  generateID,
		Now:         timeNow,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toClientView(c))
}

// handleLeadReplyDraft handles POST /api/leads/{id}/reply-draft
func handleLeadReplyDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := orchestrators.ExecuteDraftLeadReply(r.Context(), r.PathValue("id"), draftDeps())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"draft": draft})
}
