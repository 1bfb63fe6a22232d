package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"fitstudio/internal/domain/client"
)

// ClientStore defines the client persistence needed by client orchestrators.
type ClientStore interface {
	GetByID(ctx context.Context, id string) (client.Client, error)
	Save(ctx context.Context, c client.Client) error
}

// ClientInput carries the editable fields of a client.
type ClientInput struct {
	ID          string // empty on create
	LeadID      string
	Name        string
	Email       string
	Phone       string
	DateOfBirth string
	Gender      string
	Goal        string
	Program     string
	StartDate   string
	Status      string
	Notes       string
}

// ClientDeps holds dependencies for CreateClient and UpdateClient.
type ClientDeps struct {
	ClientStore ClientStore
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteCreateClient creates a client directly (without a lead).
// POST: Client persisted; Status defaults to active
func ExecuteCreateClient(ctx context.Context, input ClientInput, deps ClientDeps) (client.Client, error) {
	now := nowFn(deps.Now)
	c := client.Client{ID: idFn(deps.GenerateID), CreatedAt: now}
	applyClientInput(&c, input)
	if c.Status == "" {
		c.Status = client.StatusActive
	}
	c.UpdatedAt = now
	if err := c.Validate(); err != nil {
		return client.Client{}, invalid(err)
	}
	if err := deps.ClientStore.Save(ctx, c); err != nil {
		return client.Client{}, err
	}
	slog.Info("client_event", "event", "client_created", "client_id", c.ID)
	return c, nil
}

// ExecuteUpdateClient replaces the editable fields of an existing client.
// PRE: input.ID refers to an existing client
func ExecuteUpdateClient(ctx context.Context, input ClientInput, deps ClientDeps) (client.Client, error) {
	c, err := deps.ClientStore.GetByID(ctx, input.ID)
	if err != nil {
		return client.Client{}, err
	}
	leadID := c.LeadID
	applyClientInput(&c, input)
	if input.LeadID == "" {
		c.LeadID = leadID
	}
	c.UpdatedAt = nowFn(deps.Now)
	if err := c.Validate(); err != nil {
		return client.Client{}, invalid(err)
	}
	if err := deps.ClientStore.Save(ctx, c); err != nil {
		return client.Client{}, err
	}
	slog.Info("client_event", "event", "client_updated", "client_id", c.ID, "status", c.Status)
	return c, nil
}

func applyClientInput(c *client.Client, in ClientInput) {
	c.LeadID = in.LeadID
	c.Name = strings.TrimSpace(in.Name)
	c.Email = strings.ToLower(strings.TrimSpace(in.Email))
	c.Phone = strings.TrimSpace(in.Phone)
	c.DateOfBirth = in.DateOfBirth
	c.Gender = in.Gender
	c.Goal = in.Goal
	c.Program = in.Program
	c.StartDate = in.StartDate
	c.Status = in.Status
	c.Notes = in.Notes
}
