// Package listutil parses the query parameters shared by every list endpoint.
package listutil

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100

	// DateLayout is the calendar date format of date, from and to filters.
	DateLayout = "2006-01-02"
)

// PageParams is the requested page. Page is 1-indexed.
type PageParams struct {
	Page    int
	PerPage int
}

// FilterParams is the free-text search (q) plus exact-match filters.
type FilterParams struct {
	Search  string
	Filters map[string]string
}

// ListParams combines paging and filtering.
type ListParams struct {
	PageParams
	FilterParams
}

// PageInfo is the pagination block of a list response.
type PageInfo struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// ParsePageParams reads page and per_page. Unparseable values fall back to defaults.
// POST: Page >= 1 and 1 <= PerPage <= MaxPerPage
func ParsePageParams(q url.Values) PageParams {
	return PageParams{
		Page:    max(intParam(q, "page"), 1),
		PerPage: clampPerPage(intParam(q, "per_page")),
	}
}

// ParseFilterParams reads q and the allowed filter keys; blank values are dropped.
func ParseFilterParams(q url.Values, filterKeys []string) FilterParams {
	filters := make(map[string]string, len(filterKeys))
	for _, key := range filterKeys {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			filters[key] = v
		}
	}
	return FilterParams{Search: strings.TrimSpace(q.Get("q")), Filters: filters}
}

// ParseListParams parses page and filter parameters together.
func ParseListParams(q url.Values, filterKeys []string) ListParams {
	return ListParams{PageParams: ParsePageParams(q), FilterParams: ParseFilterParams(q, filterKeys)}
}

// InvalidDates reports the given keys whose values are present but are not
// YYYY-MM-DD dates, keyed by parameter name. Nil means every date is usable.
func InvalidDates(q url.Values, keys ...string) map[string]string {
	var bad map[string]string
	for _, key := range keys {
		v := strings.TrimSpace(q.Get(key))
		if v == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, v); err != nil {
			if bad == nil {
				bad = make(map[string]string)
			}
			bad[key] = "must be a date in YYYY-MM-DD format"
		}
	}
	return bad
}

// NewPageInfo computes pagination metadata for total rows.
// PRE: total >= 0
// POST: 1 <= Page <= TotalPages; an empty result still has one page
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	pages := max((total+perPage-1)/perPage, 1)
	page = min(max(page, 1), pages)
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: pages,
		HasNext:    page < pages,
	}
}

// Offset returns the SQL OFFSET of the page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

func intParam(q url.Values, key string) int {
	n, err := strconv.Atoi(q.Get(key))
	if err != nil {
		return 0
	}
	return n
}

func clampPerPage(n int) int {
	switch {
	case n < 1:
		return DefaultPerPage
	case n > MaxPerPage:
		return MaxPerPage
	}
	return n
}
