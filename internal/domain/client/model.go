package client

import (
	"errors"
	"strings"
	"time"

	"fitstudio/internal/domain/lead"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Status constants
const (
	StatusActive   = "active"
	StatusPaused   = "paused"
	StatusInactive = "inactive"
)

// Domain errors
var (
	ErrEmptyName     = errors.New("client name cannot be empty")
	ErrNameTooLong   = errors.New("client name cannot exceed 100 characters")
	ErrInvalidEmail  = errors.New("client email must be valid")
	ErrInvalidStatus = errors.New("status must be 'active', 'paused', or 'inactive'")
	ErrInvalidDate   = errors.New("dates must be in YYYY-MM-DD format")
)

// Client is a paying or active studio member.
type Client struct {
	ID          string
	LeadID      string // originating lead, if any
	Name        string
	Email       string
	Phone       string
	DateOfBirth string // YYYY-MM-DD
	Gender      string
	Goal        string
	Program     string
	StartDate   string // YYYY-MM-DD
	Status      string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks if the Client has valid data.
// PRE: Client struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return ErrInvalidEmail
	}
	if c.Status != StatusActive && c.Status != StatusPaused && c.Status != StatusInactive {
		return ErrInvalidStatus
	}
	for _, d := range []string{c.DateOfBirth, c.StartDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return ErrInvalidDate
		}
	}
	return nil
}

// IsActive returns true if the client is currently training.
// INVARIANT: Status field is not mutated
func (c *Client) IsActive() bool {
	return c.Status == StatusActive
}

// FromLead seeds a new client profile from a lead's contact details.
// PRE: l has passed Validate
// POST: Returns an active client linked back to l; ID and timestamps are left for the caller
func FromLead(l lead.Lead) Client {
	return Client{
		LeadID: l.ID,
		Name:   l.Name,
		Email:  l.Email,
		Phone:  l.Phone,
		Goal:   l.Goal,
		Status: StatusActive,
	}
}
