package projections

import (
	"context"

	"fitstudio/internal/adapters/storage/client"
	"fitstudio/internal/adapters/storage/lead"
	"fitstudio/internal/application/listutil"
	domainClient "fitstudio/internal/domain/client"
	domainLead "fitstudio/internal/domain/lead"
)

// GetLeadListQuery carries query parameters.
type GetLeadListQuery struct {
	Status  string
	Source  string
	Search  string
	Page    int
	PerPage int
}

// GetLeadListResult carries one page of leads.
type GetLeadListResult struct {
	Leads []domainLead.Lead
	Page  listutil.PageInfo
}

// GetLeadListDeps holds dependencies for GetLeadList.
type GetLeadListDeps struct {
	LeadStore LeadStore
}

// QueryGetLeadList retrieves one page of leads, newest first.
// PRE: none
// POST: Page.Total counts every matching lead; Leads holds at most Page.PerPage rows
func QueryGetLeadList(ctx context.Context, query GetLeadListQuery, deps GetLeadListDeps) (GetLeadListResult, error) {
	filter := lead.ListFilter{Status: query.Status, Source: query.Source, Search: query.Search}
	total, err := deps.LeadStore.Count(ctx, filter)
	if err != nil {
		return GetLeadListResult{}, err
	}
	page := listutil.NewPageInfo(query.Page, query.PerPage, total)
	filter.Limit = page.PerPage
	filter.Offset = page.Offset()

	leads, err := deps.LeadStore.List(ctx, filter)
	if err != nil {
		return GetLeadListResult{}, err
	}
	if leads == nil {
		leads = []domainLead.Lead{}
	}
	return GetLeadListResult{Leads: leads, Page: page}, nil
}

// GetClientListQuery carries query parameters.
type GetClientListQuery struct {
	Status  string
	Search  string
	Page    int
	PerPage int
}

// GetClientListResult carries one page of clients.
type GetClientListResult struct {
	Clients []domainClient.Client
	Page    listutil.PageInfo
}

// GetClientListDeps holds dependencies for GetClientList.
type GetClientListDeps struct {
	ClientStore ClientStore
}

// QueryGetClientList retrieves one page of clients ordered by name.
// PRE: none
// POST: Page.Total counts every matching client
func QueryGetClientList(ctx context.Context, query GetClientListQuery, deps GetClientListDeps) (GetClientListResult, error) {
	filter := client.ListFilter{Status: query.Status, Search: query.Search}
	total, err := deps.ClientStore.Count(ctx, filter)
	if err != nil {
		return GetClientListResult{}, err
	}
	page := listutil.NewPageInfo(query.Page, query.PerPage, total)
	filter.Limit = page.PerPage
	filter.Offset = page.Offset()

	clients, err := deps.ClientStore.List(ctx, filter)
	if err != nil {
		return GetClientListResult{}, err
	}
	if clients == nil {
		clients = []domainClient.Client{}
	}
	return GetClientListResult{Clients: clients, Page: page}, nil
}
