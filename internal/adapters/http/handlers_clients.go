package web

import (
	"net/http"

	"fitstudio/internal/application/listutil"
	"fitstudio/internal/application/orchestrators"
	"fitstudio/internal/application/projections"
	"fitstudio/internal/domain/client"
)

type clientRequest struct {
	LeadID      string `json:"lead_id"`
	Name        string `json:"name" validate:"required,max=100"`
	Email       string `json:"email" validate:"omitempty,email,max=254"`
	Phone       string `json:"phone" validate:"max=30"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Gender      string `json:"gender" validate:"max=30"`
	Goal        string `json:"goal" validate:"max=200"`
	Program     string `json:"program" validate:"max=100"`
	StartDate   string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	Status      string `json:"status" validate:"omitempty,oneof=active paused inactive"`
	Notes       string `json:"notes" validate:"max=2000"`
}

func clientRequestFrom(c client.Client) clientRequest {
	return clientRequest{
		LeadID:      c.LeadID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		DateOfBirth: c.DateOfBirth,
		Gender:      c.Gender,
		Goal:        c.Goal,
		Program:     c.Program,
		StartDate:   c.StartDate,
		Status:      c.Status,
		Notes:       c.Notes,
	}
}

func (req clientRequest) input(id string) orchestrators.ClientInput {
	return orchestrators.ClientInput{
		ID:          id,
		LeadID:      req.LeadID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		Goal:        req.Goal,
		Program:     req.Program,
		StartDate:   req.StartDate,
		Status:      req.Status,
		Notes:       req.Notes,
	}
}

func clientDeps() orchestrators.ClientDeps {
	return orchestrators.ClientDeps{ClientStore: stores.ClientStore, GenerateID: generateID, Now: timeNow}
}

// handleListClients handles GET /api/clients?status=&q=&page=&per_page=
func handleListClients(w http.ResponseWriter, r *http.Request) {
	lp := listutil.ParseListParams(r.URL.Query(), []string{"status"})
	result, err := projections.QueryGetClientList(r.Context(), projections.GetClientListQuery{
		Status:  lp.Filters["status"],
		Search:  lp.Search,
		Page:    lp.Page,
		PerPage: lp.PerPage,
	}, projections.GetClientListDeps{ClientStore: stores.ClientStore})
	if err != nil {
		internalError(w, r, err)
		return
	}
	respondList(w, mapSlice(result.Clients, toClientView), result.Page)
}

// handleCreateClient handles POST /api/clients
func handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if !bind(w, r, &req) {
		return
	}
	c, err := orchestrators.ExecuteCreateClient(r.Context(), req.input(""), clientDeps())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toClientView(c))
}

// handleGetClient handles GET /api/clients/{id}
func handleGetClient(w http.ResponseWriter, r *http.Request) {
	c, err := stores.ClientStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toClientView(c))
}

// handleUpdateClient handles PATCH /api/clients/{id}
func handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	current, err := stores.ClientStore.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	req := clientRequestFrom(current)
	if !patch(w, r, &req) {
		return
	}
	c, err := orchestrators.ExecuteUpdateClient(r.Context(), req.input(id), clientDeps())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toClientView(c))
}

// handleDeleteClient handles DELETE /api/clients/{id}
func handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if _, err := stores.ClientStore.GetByID(ctx, id); err != nil {
		handleError(w, r, err)
		return
	}
	if err := stores.ClientStore.Delete(ctx, id); err != nil {
		internalError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}
