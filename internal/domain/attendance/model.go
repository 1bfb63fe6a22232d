package attendance

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrEmptyClient       = errors.New("attendance must be associated with a client")
	ErrNoCheckIn         = errors.New("check-in time must be set")
	ErrCheckOutBeforeIn  = errors.New("check-out time cannot be before check-in time")
	ErrAlreadyCheckedOut = errors.New("attendance is already checked out")
	ErrAlreadyCheckedIn  = errors.New("client is already checked in for this appointment")
)

// Log records one visit to the studio, optionally tied to an appointment.
type Log struct {
	ID            string
	ClientID      string
	AppointmentID string // optional
	CheckInTime   time.Time
	CheckOutTime  time.Time
	Notes         string
}

// Validate checks if the Log has valid data.
// PRE: Log struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: ClientID must not be empty, CheckInTime must be set
func (l *Log) Validate() error {
	if l.ClientID == "" {
		return ErrEmptyClient
	}
	if l.CheckInTime.IsZero() {
		return ErrNoCheckIn
	}
	if !l.CheckOutTime.IsZero() && l.CheckOutTime.Before(l.CheckInTime) {
		return ErrCheckOutBeforeIn
	}
	return nil
}

// IsOpen returns true while the client has not checked out.
func (l *Log) IsOpen() bool {
	return l.CheckOutTime.IsZero()
}

// CheckOut closes the log at now.
// PRE: Log is open
// POST: CheckOutTime is now, or an error if already closed or now precedes check-in
func (l *Log) CheckOut(now time.Time) error {
	if !l.IsOpen() {
		return ErrAlreadyCheckedOut
	}
	if now.Before(l.CheckInTime) {
		return ErrCheckOutBeforeIn
	}
	l.CheckOutTime = now
	return nil
}

// Duration returns the length of the visit.
// PRE: Log is initialized with CheckInTime
// POST: Returns duration, or time since check-in if still open
func (l *Log) Duration(now time.Time) time.Duration {
	if !l.IsOpen() {
		return l.CheckOutTime.Sub(l.CheckInTime)
	}
	return now.Sub(l.CheckInTime)
}
