package booking

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// TimeLayout is the wire and storage format for wall-clock times.
const TimeLayout = "15:04"

// SlotMinutes is the length of a single bookable slot.
const SlotMinutes = 20

// Weekday window: first and last slot start, inclusive.
const (
	weekdayFirstSlot = "10:00"
	weekdayLastSlot  = "13:00"
)

// sundaySlots are the special Sunday session starts.
var sundaySlots = []string{"09:00", "09:20", "09:40", "10:00"}

// Domain errors
var (
	ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidTime = errors.New("time must be in HH:MM format")
)

// ParseDate parses a YYYY-MM-DD calendar date.
// PRE: none
// POST: Returns the date at midnight UTC, or ErrInvalidDate
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// ParseTime parses an HH:MM wall-clock time.
// PRE: none
// POST: Returns the parsed time on the zero date, or ErrInvalidTime
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}
	return t, nil
}

// TimeSlotsForDate returns the ordered slot start times allowed on date.
// PRE: none
// POST: Sunday yields the four morning slots; any other day yields 10:00 through 13:00
// in 20 minute steps inclusive. The returned slice is a fresh copy.
func TimeSlotsForDate(date time.Time) []string {
	if date.Weekday() == time.Sunday {
		out := make([]string, len(sundaySlots))
		copy(out, sundaySlots)
		return out
	}

	first, _ := time.Parse(TimeLayout, weekdayFirstSlot)
	last, _ := time.Parse(TimeLayout, weekdayLastSlot)
	var slots []string
	for t := first; !t.After(last); t = t.Add(SlotMinutes * time.Minute) {
		slots = append(slots, t.Format(TimeLayout))
	}
	return slots
}

// IsValidTimeSlot reports whether hhmm is one of the slots for date.
// INVARIANT: pure membership test against TimeSlotsForDate
func IsValidTimeSlot(date time.Time, hhmm string) bool {
	for _, s := range TimeSlotsForDate(date) {
		if s == hhmm {
			return true
		}
	}
	return false
}

// CalculateEndTime returns start plus one slot length.
// PRE: start is HH:MM
// POST: Minutes carry into hours; hours wrap past midnight
func CalculateEndTime(start string) (string, error) {
	return AddMinutes(start, SlotMinutes)
}

// AddMinutes adds minutes to an HH:MM time, wrapping at 24h.
// PRE: start is HH:MM, minutes >= 0
// POST: Returns the HH:MM result or ErrInvalidTime
func AddMinutes(start string, minutes int) (string, error) {
	t, err := ParseTime(start)
	if err != nil {
		return "", err
	}
	total := t.Hour()*60 + t.Minute() + minutes
	total %= 24 * 60
	if total < 0 {
		total += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60), nil
}
