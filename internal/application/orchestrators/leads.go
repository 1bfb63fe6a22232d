package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"fitstudio/internal/adapters/monitoring"
	"fitstudio/internal/domain/client"
	"fitstudio/internal/domain/lead"
)

// LeadStore defines the lead persistence needed by lead orchestrators.
type LeadStore interface {
	GetByID(ctx context.Context, id string) (lead.Lead, error)
	Save(ctx context.Context, l lead.Lead) error
}

// ClientSaver defines the client persistence needed by conversion.
type ClientSaver interface {
	Save(ctx context.Context, c client.Client) error
}

// --- Create Lead ---

// CreateLeadInput carries input for lead creation.
type CreateLeadInput struct {
	Name        string
	Email       string
	Phone       string
	Message     string
	Goal        string
	Source      string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
	UTMTerm     string
	UTMContent  string
	Status      string // ignored when Public
	Notes       string // ignored when Public
	Public      bool   // submitted from the marketing site
}

// CreateLeadDeps holds dependencies for CreateLead.
type CreateLeadDeps struct {
	LeadStore  LeadStore
	Notifier   *Notifier
	Metrics    *monitoring.Metrics
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteCreateLead records a new lead.
// PRE: Name and one of Email/Phone are set
// POST: Lead persisted; public submissions always start as new
func ExecuteCreateLead(ctx context.Context, input CreateLeadInput, deps CreateLeadDeps) (lead.Lead, error) {
	now := nowFn(deps.Now)
	l := lead.Lead{
		ID:          idFn(deps.GenerateID),
		Name:        strings.TrimSpace(input.Name),
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:       strings.TrimSpace(input.Phone),
		Message:     input.Message,
		Goal:        input.Goal,
		Source:      input.Source,
		UTMSource:   input.UTMSource,
		UTMMedium:   input.UTMMedium,
		UTMCampaign: input.UTMCampaign,
		UTMTerm:     input.UTMTerm,
		UTMContent:  input.UTMContent,
		Status:      lead.StatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.Public {
		if l.Source == "" {
			l.Source = lead.SourceWebsite
		}
	} else {
		if input.Status != "" {
			l.Status = input.Status
		}
		l.Notes = input.Notes
		if l.Source == "" {
			l.Source = lead.SourceManual
		}
	}
	if l.Status == lead.StatusConverted {
		return lead.Lead{}, invalidField("status", "leads become converted through the convert action")
	}

	if err := l.Validate(); err != nil {
		return lead.Lead{}, invalid(err)
	}
	if err := deps.LeadStore.Save(ctx, l); err != nil {
		return lead.Lead{}, err
	}

	slog.Info("lead_event", "event", "lead_created", "lead_id", l.ID, "source", l.Source, "public", input.Public)
	deps.Metrics.LeadCreated(l.Source)
	if input.Public {
		deps.Notifier.Staff(ctx, "New lead: "+l.Name, leadReceivedBody(l), "lead_created")
	}
	return l, nil
}

// --- Update Lead ---

// UpdateLeadInput carries the full editable state of a lead.
type UpdateLeadInput struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	Message     string
	Goal        string
	Source      string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
	UTMTerm     string
	UTMContent  string
	Status      string
	Notes       string
}

// UpdateLeadDeps holds dependencies for UpdateLead.
type UpdateLeadDeps struct {
	LeadStore LeadStore
	Now       func() time.Time
}

// ExecuteUpdateLead applies staff edits to a lead.
// PRE: ID refers to an existing lead
// POST: Lead persisted; status changes follow lead.CanTransition
// INVARIANT: converted status is only reachable through ConvertLead
func ExecuteUpdateLead(ctx context.Context, input UpdateLeadInput, deps UpdateLeadDeps) (lead.Lead, error) {
	l, err := deps.LeadStore.GetByID(ctx, input.ID)
	if err != nil {
		return lead.Lead{}, err
	}
	if input.Status != l.Status {
		if input.Status == lead.StatusConverted {
			return lead.Lead{}, invalidField("status", "leads become converted through the convert action")
		}
		if err := l.SetStatus(input.Status); err != nil {
			return lead.Lead{}, invalid(err)
		}
	}
	l.Name = strings.TrimSpace(input.Name)
	l.Email = strings.ToLower(strings.TrimSpace(input.Email))
	l.Phone = strings.TrimSpace(input.Phone)
	l.Message = input.Message
	l.Goal = input.Goal
	l.Source = input.Source
	l.UTMSource = input.UTMSource
	l.UTMMedium = input.UTMMedium
	l.UTMCampaign = input.UTMCampaign
	l.UTMTerm = input.UTMTerm
	l.UTMContent = input.UTMContent
	l.Notes = input.Notes
	l.UpdatedAt = nowFn(deps.Now)

	if err := l.Validate(); err != nil {
		return lead.Lead{}, invalid(err)
	}
	if err := deps.LeadStore.Save(ctx, l); err != nil {
		return lead.Lead{}, err
	}
	slog.Info("lead_event", "event", "lead_updated", "lead_id", l.ID, "status", l.Status)
	return l, nil
}

// --- Convert Lead ---

// ConvertLeadInput carries input for converting a lead into a client.
type ConvertLeadInput struct {
	LeadID    string
	Program   string
	StartDate string
	Notes     string
}

// ConvertLeadDeps holds dependencies for ConvertLead.
type ConvertLeadDeps struct {
	LeadStore   LeadStore
	ClientStore ClientSaver
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteConvertLead creates a client from a lead, then marks the lead converted.
// PRE: LeadID refers to an existing, unconverted lead
// POST: Client persisted with LeadID set; lead status converted with ClientID set
// INVARIANT: the two writes are sequential, not atomic; a failure on the second leaves
// the client in place and is reported to the caller
func ExecuteConvertLead(ctx context.Context, input ConvertLeadInput, deps ConvertLeadDeps) (client.Client, error) {
	l, err := deps.LeadStore.GetByID(ctx, input.LeadID)
	if err != nil {
		return client.Client{}, err
	}
	if l.IsConverted() {
		return client.Client{}, invalid(lead.ErrAlreadyConverted)
	}

	now := nowFn(deps.Now)
	c := client.FromLead(l)
	c.ID = idFn(deps.GenerateID)
	c.Program = input.Program
	c.StartDate = input.StartDate
	c.Notes = input.Notes
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := c.Validate(); err != nil {
		return client.Client{}, invalid(err)
	}
	if err := deps.ClientStore.Save(ctx, c); err != nil {
		return client.Client{}, err
	}

	if err := l.MarkConverted(c.ID); err != nil {
		return client.Client{}, invalid(err)
	}
	l.UpdatedAt = now
	if err := deps.LeadStore.Save(ctx, l); err != nil {
		slog.Error("lead_event", "event", "lead_convert_partial", "lead_id", l.ID, "client_id", c.ID, "error", err)
		return c, err
	}

	slog.Info("lead_event", "event", "lead_converted", "lead_id", l.ID, "client_id", c.ID)
	return c, nil
}
