package recurring

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"fitstudio/internal/domain/appointment"
	"fitstudio/internal/domain/booking"
)

// DefaultWeeks is the expansion horizon used when the caller does not pick one.
const DefaultWeeks = 4

// MaxWeeks bounds a single expansion run.
const MaxWeeks = 12

// Domain errors
var (
	ErrEmptyClient     = errors.New("recurring session must be associated with a client")
	ErrNoDays          = errors.New("at least one day of week is required")
	ErrInvalidDay      = errors.New("days of week must be between 0 (Sunday) and 6 (Saturday)")
	ErrInvalidStart    = errors.New("start time must be in HH:MM format")
	ErrInvalidDuration = errors.New("duration must be between 5 and 240 minutes")
	ErrInvalidType     = errors.New("type must be one of: session, consultation, assessment, event")
	ErrInvalidBounds   = errors.New("start date and end date must be YYYY-MM-DD with start on or before end")
	ErrInvalidWeeks    = errors.New("weeks must be between 1 and 12")
	ErrPastMidnight    = errors.New("session must end on the day it starts")
)

// Session is a weekly recurrence template expanded into concrete appointments.
type Session struct {
	ID              string
	ClientID        string
	DaysOfWeek      []int // 0 = Sunday
	StartTime       string
	DurationMinutes int
	Type            string
	Notes           string
	Active          bool
	StartDate       string // optional lower bound, YYYY-MM-DD
	EndDate         string // optional upper bound, YYYY-MM-DD
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate checks if the Session has valid data.
// PRE: Session struct is populated
// POST: Returns nil if valid, error otherwise; DaysOfWeek is sorted and deduplicated
func (s *Session) Validate() error {
	if strings.TrimSpace(s.ClientID) == "" {
		return ErrEmptyClient
	}
	if len(s.DaysOfWeek) == 0 {
		return ErrNoDays
	}
	for _, d := range s.DaysOfWeek {
		if d < 0 || d > 6 {
			return ErrInvalidDay
		}
	}
	s.DaysOfWeek = normalizeDays(s.DaysOfWeek)
	start, err := booking.ParseTime(s.StartTime)
	if err != nil {
		return ErrInvalidStart
	}
	if s.DurationMinutes < 5 || s.DurationMinutes > 240 {
		return ErrInvalidDuration
	}
	// an end of exactly 24:00 would be stored as 00:00
	if start.Hour()*60+start.Minute()+s.DurationMinutes >= 24*60 {
		return ErrPastMidnight
	}
	valid := false
	for _, t := range appointment.ValidTypes {
		if t == s.Type {
			valid = true
		}
	}
	if !valid {
		return ErrInvalidType
	}
	var from, until time.Time
	if s.StartDate != "" {
		if from, err = booking.ParseDate(s.StartDate); err != nil {
			return ErrInvalidBounds
		}
	}
	if s.EndDate != "" {
		if until, err = booking.ParseDate(s.EndDate); err != nil {
			return ErrInvalidBounds
		}
	}
	if !from.IsZero() && !until.IsZero() && until.Before(from) {
		return ErrInvalidBounds
	}
	return nil
}

// EndTime returns the HH:MM end of each occurrence.
// PRE: StartTime is valid HH:MM
func (s *Session) EndTime() (string, error) {
	return booking.AddMinutes(s.StartTime, s.DurationMinutes)
}

// RunsOn reports whether the template recurs on the given weekday.
func (s *Session) RunsOn(day time.Weekday) bool {
	for _, d := range s.DaysOfWeek {
		if time.Weekday(d) == day {
			return true
		}
	}
	return false
}

// CandidateDates returns the YYYY-MM-DD dates in [today, today+weeks*7] on which the
// template recurs, clipped to the template's own StartDate/EndDate.
// PRE: today is a calendar date in the studio timezone, weeks >= 1
// POST: Dates are ascending and unique
func (s *Session) CandidateDates(today time.Time, weeks int) []string {
	from := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, weeks*7)
	if s.StartDate != "" {
		if d, err := booking.ParseDate(s.StartDate); err == nil && d.After(from) {
			from = d
		}
	}
	if s.EndDate != "" {
		if d, err := booking.ParseDate(s.EndDate); err == nil && d.Before(to) {
			to = d
		}
	}

	var dates []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if s.RunsOn(d.Weekday()) {
			dates = append(dates, d.Format(booking.DateLayout))
		}
	}
	return dates
}

// Occurrence builds the appointment materialized on date.
// PRE: date is YYYY-MM-DD
// POST: The returned appointment passes appointment.Validate, or an error is returned
func (s *Session) Occurrence(date string) (appointment.Appointment, error) {
	end, err := s.EndTime()
	if err != nil {
		return appointment.Appointment{}, err
	}
	occ := appointment.Appointment{
		ClientID:           s.ClientID,
		Date:               date,
		StartTime:          s.StartTime,
		EndTime:            end,
		Type:               s.Type,
		Status:             appointment.StatusScheduled,
		Notes:              s.Notes,
		RecurringSessionID: s.ID,
	}
	if err := occ.Validate(); err != nil {
		return appointment.Appointment{}, fmt.Errorf("recurring session %s on %s: %w", s.ID, date, err)
	}
	return occ, nil
}

// ValidateWeeks checks an expansion horizon.
func ValidateWeeks(weeks int) error {
	if weeks < 1 || weeks > MaxWeeks {
		return ErrInvalidWeeks
	}
	return nil
}

// FormatDays encodes days as a comma-separated list for storage ("1,3,5").
func FormatDays(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

// ParseDays decodes the storage form produced by FormatDays.
func ParseDays(value string) ([]int, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid day %q: %w", p, err)
		}
		days = append(days, d)
	}
	return days, nil
}

func normalizeDays(days []int) []int {
	seen := make(map[int]bool, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Ints(out)
	return out
}
