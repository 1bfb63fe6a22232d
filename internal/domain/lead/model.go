package lead

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength    = 100
	MaxMessageLength = 2000
)

// Status constants
const (
	StatusNew           = "new"
	StatusContacted     = "contacted"
	StatusConverted     = "converted"
	StatusNotInterested = "not_interested"
)

// Source constants for where a lead came from.
const (
	SourceWebsite = "website"
	SourceBooking = "booking"
	SourceEvent   = "event"
	SourceManual  = "manual"
)

// ValidStatuses lists every lead status.
var ValidStatuses = []string{StatusNew, StatusContacted, StatusConverted, StatusNotInterested}

// Domain errors
var (
	ErrEmptyName         = errors.New("lead name cannot be empty")
	ErrNameTooLong       = errors.New("lead name cannot exceed 100 characters")
	ErrNoContact         = errors.New("lead needs an email or a phone number")
	ErrInvalidEmail      = errors.New("lead email must be valid")
	ErrInvalidStatus     = errors.New("status must be one of: new, contacted, converted, not_interested")
	ErrMessageTooLong    = errors.New("lead message cannot exceed 2000 characters")
	ErrAlreadyConverted  = errors.New("lead is already converted")
	ErrInvalidTransition = errors.New("lead status transition is not allowed")
)

// Lead is a prospective client captured from a form or manual entry.
type Lead struct {
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
	ClientID    string // set once converted
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks if the Lead has valid data.
// PRE: Lead struct is populated
// POST: Returns nil if valid, error otherwise
// INVARIANT: a lead is reachable by email or phone
func (l *Lead) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return ErrEmptyName
	}
	if len(l.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if strings.TrimSpace(l.Email) == "" && strings.TrimSpace(l.Phone) == "" {
		return ErrNoContact
	}
	if l.Email != "" && !strings.Contains(l.Email, "@") {
		return ErrInvalidEmail
	}
	if len(l.Message) > MaxMessageLength {
		return ErrMessageTooLong
	}
	if !IsValidStatus(l.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// IsValidStatus reports whether s is a known lead status.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// CanTransition reports whether the lead may move to next.
// Converted is terminal; staff may otherwise move freely between the open states.
// INVARIANT: Lead fields are not mutated
func (l *Lead) CanTransition(next string) bool {
	if !IsValidStatus(next) {
		return false
	}
	if l.Status == StatusConverted {
		return next == StatusConverted
	}
	return true
}

// SetStatus applies a status change after checking the transition.
// PRE: next is a valid status
// POST: Status updated, or ErrInvalidTransition
func (l *Lead) SetStatus(next string) error {
	if !IsValidStatus(next) {
		return ErrInvalidStatus
	}
	if !l.CanTransition(next) {
		return ErrInvalidTransition
	}
	l.Status = next
	return nil
}

// MarkConverted links the lead to the client created from it.
// PRE: clientID is non-empty
// POST: Status is converted and ClientID is set
func (l *Lead) MarkConverted(clientID string) error {
	if l.Status == StatusConverted {
		return ErrAlreadyConverted
	}
	l.Status = StatusConverted
	l.ClientID = clientID
	return nil
}

// IsConverted returns true once the lead has become a client.
func (l *Lead) IsConverted() bool {
	return l.Status == StatusConverted
}
