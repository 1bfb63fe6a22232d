package web

import (
	"net/http"

	outboxStore "fitstudio/internal/adapters/storage/outbox"
	"fitstudio/internal/application/listutil"
	"fitstudio/internal/domain/outbox"
)

// handleListOutbox handles GET /api/admin/outbox?status=&channel=. Without a
// status filter the failed messages are listed, since those need attention.
func handleListOutbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lp := listutil.ParseListParams(r.URL.Query(), []string{"status", "channel"})
	status := lp.Filters["status"]
	switch status {
	case "":
		status = outbox.StatusFailed
	case "all":
		status = ""
	}
	filter := outboxStore.ListFilter{Status: status, Channel: lp.Filters["channel"]}
	total, err := stores.OutboxStore.Count(ctx, filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	page := listutil.NewPageInfo(lp.Page, lp.PerPage, total)
	filter.Limit = page.PerPage
	filter.Offset = page.Offset()
	msgs, err := stores.OutboxStore.List(ctx, filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	respondList(w, mapSlice(msgs, toOutboxView), page)
}

// handleRetryOutbox handles POST /api/admin/outbox/{id}/retry
func handleRetryOutbox(w http.ResponseWriter, r *http.Request) {
	if services.Outbox == nil {
		respondError(w, http.StatusServiceUnavailable, "outbox delivery is not configured", nil)
		return
	}
	m, err := services.Outbox.ProcessSingle(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toOutboxView(m))
}

// handleAbandonOutbox handles POST /api/admin/outbox/{id}/abandon
func handleAbandonOutbox(w http.ResponseWriter, r *http.Request) {
	if services.Outbox == nil {
		respondError(w, http.StatusServiceUnavailable, "outbox delivery is not configured", nil)
		return
	}
	m, err := services.Outbox.AbandonEntry(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toOutboxView(m))
}
