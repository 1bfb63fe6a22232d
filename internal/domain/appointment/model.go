package appointment

import (
	"errors"
	"time"

	"fitstudio/internal/domain/booking"
)

// Type constants
const (
	TypeSession      = "session"
	TypeConsultation = "consultation"
	TypeAssessment   = "assessment"
	TypeEvent        = "event"
)

// Status constants
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// ValidTypes lists every appointment type.
var ValidTypes = []string{TypeSession, TypeConsultation, TypeAssessment, TypeEvent}

// ValidStatuses lists every appointment status.
var ValidStatuses = []string{StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow}

// Domain errors
var (
	ErrInvalidDate    = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidStart   = errors.New("start time must be in HH:MM format")
	ErrInvalidEnd     = errors.New("end time must be in HH:MM format")
	ErrEndBeforeStart = errors.New("end time must be after start time")
	ErrInvalidType    = errors.New("type must be one of: session, consultation, assessment, event")
	ErrInvalidStatus  = errors.New("status must be one of: scheduled, completed, cancelled, no_show")
)

// Appointment is a single booked slot, optionally tied to a client.
type Appointment struct {
	ID                 string
	ClientID           string // optional
	Date               string // YYYY-MM-DD
	StartTime          string // HH:MM
	EndTime            string // HH:MM
	Type               string
	Status             string
	Notes              string
	RecurringSessionID string // set when materialized from a recurring template
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Validate checks if the Appointment has valid data.
// PRE: Appointment struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Appointment) Validate() error {
	if _, err := booking.ParseDate(a.Date); err != nil {
		return ErrInvalidDate
	}
	if _, err := booking.ParseTime(a.StartTime); err != nil {
		return ErrInvalidStart
	}
	if _, err := booking.ParseTime(a.EndTime); err != nil {
		return ErrInvalidEnd
	}
	if a.EndTime <= a.StartTime {
		return ErrEndBeforeStart
	}
	if !contains(ValidTypes, a.Type) {
		return ErrInvalidType
	}
	if !contains(ValidStatuses, a.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// Key identifies the (client, date, start) triple used for duplicate detection.
func (a *Appointment) Key() string {
	return a.ClientID + "|" + a.Date + "|" + a.StartTime
}

// ResolveEndTime decides the end time for a create or update.
// When the start changes (or on create, where prevStart is empty) the end is always
// start plus one slot. An explicit end is honoured only while the start is unchanged;
// with no explicit end the previous end is kept.
// PRE: newStart is HH:MM
// POST: Returns the HH:MM end time or ErrInvalidStart
func ResolveEndTime(prevStart, prevEnd, newStart, requestedEnd string) (string, error) {
	if newStart != prevStart || prevStart == "" {
		end, err := booking.CalculateEndTime(newStart)
		if err != nil {
			return "", ErrInvalidStart
		}
		return end, nil
	}
	if requestedEnd != "" {
		return requestedEnd, nil
	}
	if prevEnd != "" {
		return prevEnd, nil
	}
	end, err := booking.CalculateEndTime(newStart)
	if err != nil {
		return "", ErrInvalidStart
	}
	return end, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
