package web

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"

	"fitstudio/internal/adapters/http/middleware"
	eventStore "fitstudio/internal/adapters/storage/event"
	paymentStore "fitstudio/internal/adapters/storage/payment"
	"fitstudio/internal/application/listutil"
	"fitstudio/internal/application/orchestrators"
	"fitstudio/internal/domain/event"
)

// webhookSignatureHeader carries the gateway's HMAC of the raw body.
const webhookSignatureHeader = "X-Razorpay-Signature"

// maxWebhookBytes bounds the webhook body read.
const maxWebhookBytes = 1 << 20

type eventRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Location    string `json:"location" validate:"max=200"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime     string `json:"end_time" validate:"omitempty,datetime=15:04"`
	MaxCapacity int    `json:"max_capacity" validate:"gte=0"`
	FeeAmount   int64  `json:"fee_amount" validate:"gte=0"`
	Currency    string `json:"currency" validate:"omitempty,len=3"`
	Published   bool   `json:"published"`
}

func eventRequestFrom(e event.Event) eventRequest {
	return eventRequest{
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		Date:        e.Date,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		MaxCapacity: e.MaxCapacity,
		FeeAmount:   e.FeeAmount,
		Currency:    e.Currency,
		Published:   e.Published,
	}
}

func (req eventRequest) input(id string) orchestrators.SaveEventInput {
	return orchestrators.SaveEventInput{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		MaxCapacity: req.MaxCapacity,
		FeeAmount:   req.FeeAmount,
		Currency:    req.Currency,
		Published:   req.Published,
	}
}

func saveEventDeps() orchestrators.SaveEventDeps {
	return orchestrators.SaveEventDeps{EventStore: stores.EventStore, GenerateID: generateID, Now: timeNow}
}

// handleListEvents handles GET /api/events?from=&published=true. Anonymous
// callers only ever see published events.
func handleListEvents(w http.ResponseWriter, r *http.Request) {
	if !datesOK(w, r, "from") {
		return
	}
	ctx := r.Context()
	q := r.URL.Query()
	pp := listutil.ParsePageParams(q)
	filter := eventStore.ListFilter{
		PublishedOnly: !middleware.IsStaff(ctx) || q.Get("published") == "true",
		FromDate:      q.Get("from"),
	}
	total, err := stores.EventStore.Count(ctx, filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	page := listutil.NewPageInfo(pp.Page, pp.PerPage, total)
	filter.Limit = page.PerPage
	filter.Offset = page.Offset()
	events, err := stores.EventStore.List(ctx, filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	respondList(w, mapSlice(events, toEventView), page)
}

// handleCreateEvent handles POST /api/events
func handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !bind(w, r, &req) {
		return
	}
	e, err := orchestrators.ExecuteSaveEvent(r.Context(), req.input(""), saveEventDeps())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toEventView(e))
}

// handleGetEvent handles GET /api/events/{id}. Drafts are hidden from anonymous callers.
func handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	e, err := stores.EventStore.GetByID(ctx, r.PathValue("id"))
	if err == nil && !e.Published && !middleware.IsStaff(ctx) {
		err = fmt.Errorf("event %s: %w", e.ID, sql.ErrNoRows)
	}
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toEventView(e))
}

// handleUpdateEvent handles PATCH /api/events/{id}
func handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	current, err := stores.EventStore.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	req := eventRequestFrom(current)
	if !patch(w, r, &req) {
		return
	}
	e, err := orchestrators.ExecuteSaveEvent(r.Context(), req.input(id), saveEventDeps())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toEventView(e))
}

// handleDeleteEvent handles DELETE /api/events/{id}
func handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if _, err := stores.EventStore.GetByID(ctx, id); err != nil {
		handleError(w, r, err)
		return
	}
	if err := stores.EventStore.Delete(ctx, id); err != nil {
		internalError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

type registerRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email,max=254"`
	Phone string `json:"phone" validate:"max=30"`
}

// handleRegisterForEvent handles POST /api/events/{id}/register from the public site.
func handleRegisterForEvent(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !bind(w, r, &req) {
		return
	}
	res, err := orchestrators.ExecuteRegisterForEvent(r.Context(), orchestrators.RegisterForEventInput{
		EventID: r.PathValue("id"),
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
	}, orchestrators.RegisterForEventDeps{
		EventStore:   stores.EventStore,
		PaymentStore: stores.PaymentStore,
		Gateway:      services.Gateway,
		GatewayKeyID: services.GatewayKeyID,
		LeadStore:    stores.LeadStore,
		Notifier:     notifier(),
		Metrics:      services.Metrics,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toRegistrationResultView(res))
}

// handleListRegistrations handles GET /api/events/{id}/registrations
func handleListRegistrations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if _, err := stores.EventStore.GetByID(ctx, id); err != nil {
		handleError(w, r, err)
		return
	}
	regs, err := stores.EventStore.ListRegistrations(ctx, id)
	if err != nil {
		internalError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, mapSlice(regs, toRegistrationView))
}

// --- Payments ---

// handleListPayments handles GET /api/payments?status=&registration_id=
func handleListPayments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lp := listutil.ParseListParams(r.URL.Query(), []string{"status", "registration_id"})
	filter := paymentStore.ListFilter{
		Status:         lp.Filters["status"],
		RegistrationID: lp.Filters["registration_id"],
	}
	total, err := stores.PaymentStore.Count(ctx, filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	page := listutil.NewPageInfo(lp.Page, lp.PerPage, total)
	filter.Limit = page.PerPage
	filter.Offset = page.Offset()
	payments, err := stores.PaymentStore.List(ctx, filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	respondList(w, mapSlice(payments, toPaymentView), page)
}

// handlePaymentWebhook handles POST /api/payments/webhook. The signature is
// checked against the raw body, so the body is never decoded before verification.
func handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read request body", nil)
		return
	}
	deps := orchestrators.PaymentWebhookDeps{
		PaymentStore: stores.PaymentStore,
		EventStore:   stores.EventStore,
		Notifier:     notifier(),
		Metrics:      services.Metrics,
		Now:          timeNow,
	}
	if services.Gateway != nil {
		deps.Verifier = services.Gateway
	}
	res, err := orchestrators.ExecutePaymentWebhook(r.Context(), orchestrators.PaymentWebhookInput{
		Body:      body,
		Signature: r.Header.Get(webhookSignatureHeader),
	}, deps)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, res)
}

// handleMarkPaymentPaid handles POST /api/payments/{id}/mark-paid for cash and
// bank-transfer payments.
func handleMarkPaymentPaid(w http.ResponseWriter, r *http.Request) {
	p, err := orchestrators.ExecuteMarkPaymentPaid(r.Context(), r.PathValue("id"), orchestrators.MarkPaymentPaidDeps{
		PaymentStore: stores.PaymentStore,
		EventStore:   stores.EventStore,
		Notifier:     notifier(),
		Now:          timeNow,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toPaymentView(p))
}
