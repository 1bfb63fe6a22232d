package orchestrators

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"fitstudio/internal/domain/client"
	"fitstudio/internal/domain/lead"
)

// TestExecuteCreateLead_PublicForcesNew verifies public submissions cannot pick their status.
func TestExecuteCreateLead_PublicForcesNew(t *testing.T) {
	store := newMockLeadStore()
	outbox := newMockOutboxStore()
	l, err := ExecuteCreateLead(context.Background(), CreateLeadInput{
		Name:        "Asha Rao",
		Email:       " Asha@Example.com ",
		Goal:        "lose weight",
		Status:      lead.StatusContacted,
		Notes:       "vip",
		UTMSource:   "instagram",
		UTMCampaign: "diwali",
		Public:      true,
	}, CreateLeadDeps{LeadStore: store, Notifier: testNotifier(outbox), GenerateID: fixedID, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Status != lead.StatusNew {
		t.Errorf("expected status=new, got %s", l.Status)
	}
	if l.Notes != "" {
		t.Errorf("expected notes to be ignored, got %q", l.Notes)
	}
	if l.Email != "asha@example.com" {
		t.Errorf("expected normalized email, got %s", l.Email)
	}
	if l.Source != lead.SourceWebsite {
		t.Errorf("expected source=website, got %s", l.Source)
	}
	if l.UTMCampaign != "diwali" {
		t.Errorf("expected utm campaign kept, got %s", l.UTMCampaign)
	}
	if _, ok := store.leads["test-id-001"]; !ok {
		t.Error("expected lead to be persisted")
	}
	if got := len(outbox.byTopic("lead_created")); got != 1 {
		t.Errorf("expected 1 staff notification, got %d", got)
	}
}

// TestExecuteCreateLead_StaffStatus verifies staff may create a lead in any open status.
func TestExecuteCreateLead_StaffStatus(t *testing.T) {
	store := newMockLeadStore()
	l, err := ExecuteCreateLead(context.Background(), CreateLeadInput{
		Name:   "Vikram",
		Phone:  "+919800000001",
		Status: lead.StatusContacted,
		Notes:  "walk-in",
	}, CreateLeadDeps{LeadStore: store, GenerateID: fixedID, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Status != lead.StatusContacted || l.Notes != "walk-in" || l.Source != lead.SourceManual {
		t.Errorf("unexpected lead: %+v", l)
	}
}

// TestExecuteCreateLead_Validation covers rejected inputs.
func TestExecuteCreateLead_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateLeadInput
	}{
		{"missing name", CreateLeadInput{Email: "a@b.co", Public: true}},
		{"no contact", CreateLeadInput{Name: "Asha", Public: true}},
		{"bad email", CreateLeadInput{Name: "Asha", Email: "nope", Public: true}},
		{"converted by staff", CreateLeadInput{Name: "Asha", Email: "a@b.co", Status: lead.StatusConverted}},
		{"unknown status", CreateLeadInput{Name: "Asha", Email: "a@b.co", Status: "hot"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockLeadStore()
			_, err := ExecuteCreateLead(context.Background(), tt.input, CreateLeadDeps{LeadStore: store, GenerateID: fixedID, Now: fixedNow})
			if !IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if store.saves != 0 {
				t.Error("expected nothing persisted")
			}
		})
	}
}

func existingLead(status string) lead.Lead {
	return lead.Lead{
		ID: "lead-1", Name: "Meera", Email: "meera@example.com", Goal: "strength",
		Source: lead.SourceWebsite, Status: status, CreatedAt: fixedTime, UpdatedAt: fixedTime,
	}
}

// TestExecuteUpdateLead covers status transitions through update.
func TestExecuteUpdateLead(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr bool
	}{
		{"new to contacted", lead.StatusNew, lead.StatusContacted, false},
		{"contacted to not interested", lead.StatusContacted, lead.StatusNotInterested, false},
		{"not interested back to contacted", lead.StatusNotInterested, lead.StatusContacted, false},
		{"cannot convert via update", lead.StatusContacted, lead.StatusConverted, true},
		{"converted is terminal", lead.StatusConverted, lead.StatusNew, true},
		{"unknown status", lead.StatusNew, "warm", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockLeadStore(existingLead(tt.from))
			l, err := ExecuteUpdateLead(context.Background(), UpdateLeadInput{
				ID: "lead-1", Name: "Meera", Email: "meera@example.com", Source: lead.SourceWebsite,
				Status: tt.to, Notes: "called",
			}, UpdateLeadDeps{LeadStore: store, Now: fixedNow})
			if tt.wantErr {
				if !IsValidation(err) {
					t.Fatalf("expected validation error, got %v", err)
				}
				if store.leads["lead-1"].Status != tt.from {
					t.Error("status must be unchanged after a rejected update")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if l.Status != tt.to || store.leads["lead-1"].Notes != "called" {
				t.Errorf("unexpected lead after update: %+v", l)
			}
		})
	}
}

// TestExecuteUpdateLead_NotFound verifies a missing lead surfaces sql.ErrNoRows.
func TestExecuteUpdateLead_NotFound(t *testing.T) {
	_, err := ExecuteUpdateLead(context.Background(), UpdateLeadInput{ID: "missing", Name: "x", Email: "x@y.z", Status: lead.StatusNew},
		UpdateLeadDeps{LeadStore: newMockLeadStore(), Now: fixedNow})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

// TestExecuteConvertLead verifies the client is created and the lead linked.
func TestExecuteConvertLead(t *testing.T) {
	leads := newMockLeadStore(existingLead(lead.StatusContacted))
	clients := newMockClientStore()
	c, err := ExecuteConvertLead(context.Background(), ConvertLeadInput{
		LeadID: "lead-1", Program: "strength-12", StartDate: "2026-10-20",
	}, ConvertLeadDeps{LeadStore: leads, ClientStore: clients, GenerateID: fixedID, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.LeadID != "lead-1" || c.Name != "Meera" || c.Status != client.StatusActive || c.Program != "strength-12" {
		t.Errorf("unexpected client: %+v", c)
	}
	if _, ok := clients.clients[c.ID]; !ok {
		t.Error("expected client to be persisted")
	}
	l := leads.leads["lead-1"]
	if l.Status != lead.StatusConverted || l.ClientID != c.ID {
		t.Errorf("expected lead converted and linked, got %+v", l)
	}
}

// TestExecuteConvertLead_AlreadyConverted verifies a second conversion is rejected.
func TestExecuteConvertLead_AlreadyConverted(t *testing.T) {
	leads := newMockLeadStore(existingLead(lead.StatusConverted))
	clients := newMockClientStore()
	_, err := ExecuteConvertLead(context.Background(), ConvertLeadInput{LeadID: "lead-1"},
		ConvertLeadDeps{LeadStore: leads, ClientStore: clients, GenerateID: fixedID, Now: fixedNow})
	if !IsValidation(err) || !errors.Is(err, lead.ErrAlreadyConverted) {
		t.Fatalf("expected ErrAlreadyConverted validation error, got %v", err)
	}
	if len(clients.clients) != 0 {
		t.Error("expected no client to be created")
	}
}

// TestExecuteConvertLead_LeadSaveFails verifies the partial state is reported.
func TestExecuteConvertLead_LeadSaveFails(t *testing.T) {
	leads := newMockLeadStore(existingLead(lead.StatusNew))
	leads.saveErr = errors.New("disk full")
	clients := newMockClientStore()
	_, err := ExecuteConvertLead(context.Background(), ConvertLeadInput{LeadID: "lead-1"},
		ConvertLeadDeps{LeadStore: leads, ClientStore: clients, GenerateID: fixedID, Now: fixedNow})
	if err == nil || IsValidation(err) {
		t.Fatalf("expected downstream error, got %v", err)
	}
	if len(clients.clients) != 1 {
		t.Error("client insert is not rolled back when the lead update fails")
	}
}

// TestExecuteClientCreateAndUpdate covers direct client management.
func TestExecuteClientCreateAndUpdate(t *testing.T) {
	store := newMockClientStore()
	deps := ClientDeps{ClientStore: store, GenerateID: fixedID, Now: fixedNow}
	c, err := ExecuteCreateClient(context.Background(), ClientInput{Name: "Ravi", Email: "RAVI@example.com"}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != client.StatusActive || c.Email != "ravi@example.com" {
		t.Errorf("unexpected client: %+v", c)
	}

	stored := store.clients[c.ID]
	stored.LeadID = "lead-9"
	store.clients[c.ID] = stored
	u, err := ExecuteUpdateClient(context.Background(), ClientInput{ID: c.ID, Name: "Ravi K", Status: client.StatusPaused}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Name != "Ravi K" || u.Status != client.StatusPaused || u.LeadID != "lead-9" {
		t.Errorf("unexpected client after update: %+v", u)
	}

	if _, err := ExecuteUpdateClient(context.Background(), ClientInput{ID: c.ID, Name: "Ravi", Status: "gone"}, deps); !IsValidation(err) {
		t.Errorf("expected validation error for bad status, got %v", err)
	}
}
