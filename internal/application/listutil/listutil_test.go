package listutil

import (
	"net/url"
	"testing"
)

// TestParsePageParams verifies page and per_page parsing with defaults and caps.
func TestParsePageParams(t *testing.T) {
	tests := []struct {
		name        string
		q           url.Values
		wantPage    int
		wantPerPage int
	}{
		{"defaults", url.Values{}, 1, DefaultPerPage},
		{"valid", url.Values{"page": {"3"}, "per_page": {"50"}}, 3, 50},
		{"negativePage", url.Values{"page": {"-1"}}, 1, DefaultPerPage},
		{"garbage", url.Values{"page": {"abc"}, "per_page": {"x"}}, 1, DefaultPerPage},
		{"perPageCapped", url.Values{"per_page": {"5000"}}, 1, MaxPerPage},
		{"zeroPerPage", url.Values{"per_page": {"0"}}, 1, DefaultPerPage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParsePageParams(tt.q)
			if p.Page != tt.wantPage {
				t.Errorf("Page: got %d, want %d", p.Page, tt.wantPage)
			}
			if p.PerPage != tt.wantPerPage {
				t.Errorf("PerPage: got %d, want %d", p.PerPage, tt.wantPerPage)
			}
		})
	}
}

// TestParseFilterParams verifies search and filter extraction from query values.
func TestParseFilterParams(t *testing.T) {
	q := url.Values{"q": {" priya "}, "status": {"new"}, "unknown": {"x"}, "source": {""}}
	f := ParseFilterParams(q, []string{"status", "source"})
	if f.Search != "priya" {
		t.Errorf("expected search=priya, got %q", f.Search)
	}
	if f.Filters["status"] != "new" {
		t.Errorf("expected status=new, got %s", f.Filters["status"])
	}
	if _, ok := f.Filters["unknown"]; ok {
		t.Error("unexpected filter key 'unknown'")
	}
	if _, ok := f.Filters["source"]; ok {
		t.Error("empty filter values should be dropped")
	}
}

// TestNewPageInfo verifies pagination metadata computation.
func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		perPage    int
		total      int
		wantPages  int
		wantPage   int
		wantNext   bool
		wantOffset int
	}{
		{"basic", 1, 20, 85, 5, 1, true, 0},
		{"page2", 2, 20, 85, 5, 2, true, 20},
		{"lastPage", 5, 20, 85, 5, 5, false, 80},
		{"pageBeyondTotal", 10, 20, 85, 5, 5, false, 80},
		{"emptyList", 1, 20, 0, 1, 1, false, 0},
		{"exactFit", 1, 10, 10, 1, 1, false, 0},
		{"zeroPerPage", 1, 0, 45, 3, 1, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := NewPageInfo(tt.page, tt.perPage, tt.total)
			if pi.TotalPages != tt.wantPages {
				t.Errorf("TotalPages: got %d, want %d", pi.TotalPages, tt.wantPages)
			}
			if pi.Page != tt.wantPage {
				t.Errorf("Page: got %d, want %d", pi.Page, tt.wantPage)
			}
			if pi.HasNext != tt.wantNext {
				t.Errorf("HasNext: got %v, want %v", pi.HasNext, tt.wantNext)
			}
			if pi.Offset() != tt.wantOffset {
				t.Errorf("Offset: got %d, want %d", pi.Offset(), tt.wantOffset)
			}
		})
	}
}

func TestInvalidDates(t *testing.T) {
	q := url.Values{"from": {"2026-10-01"}, "to": {"10/31/2026"}, "date": {""}, "day": {"2026-02-30"}}
	bad := InvalidDates(q, "from", "to", "date", "day", "missing")
	if len(bad) != 2 || bad["to"] == "" || bad["day"] == "" {
		t.Errorf("InvalidDates = %v, want to and day", bad)
	}
	if got := InvalidDates(url.Values{"from": {"2026-10-01"}}, "from"); got != nil {
		t.Errorf("expected nil for valid dates, got %v", got)
	}
}
