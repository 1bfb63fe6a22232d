package client_test

import (
	"testing"

	"fitstudio/internal/domain/client"
	"fitstudio/internal/domain/lead"
)

// TestClientValidation tests validation of Client.
func TestClientValidation(t *testing.T) {
	tests := []struct {
		name    string
		client  client.Client
		wantErr bool
	}{
		{"valid", client.Client{Name: "Ravi", Email: "ravi@example.com", Status: client.StatusActive}, false},
		{"valid without email", client.Client{Name: "Ravi", Status: client.StatusPaused}, false},
		{"valid dates", client.Client{Name: "Ravi", Status: client.StatusActive, DateOfBirth: "1990-04-01", StartDate: "2026-10-01"}, false},
		{"empty name", client.Client{Status: client.StatusActive}, true},
		{"bad email", client.Client{Name: "Ravi", Email: "ravi", Status: client.StatusActive}, true},
		{"bad status", client.Client{Name: "Ravi", Status: "gone"}, true},
		{"bad date", client.Client{Name: "Ravi", Status: client.StatusActive, StartDate: "01/10/2026"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.client.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Client.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestFromLead verifies the lead link and contact details carry over.
func TestFromLead(t *testing.T) {
	l := lead.Lead{ID: "lead-1", Name: "Meera", Email: "meera@example.com", Phone: "+91", Goal: "strength", Status: lead.StatusContacted}
	c := client.FromLead(l)
	if c.LeadID != "lead-1" || c.Name != "Meera" || c.Email != "meera@example.com" || c.Goal != "strength" {
		t.Errorf("FromLead() = %+v", c)
	}
	if c.Status != client.StatusActive {
		t.Errorf("Status = %s, want active", c.Status)
	}
}
