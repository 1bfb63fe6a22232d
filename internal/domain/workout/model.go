package workout

import (
	"errors"
	"strings"
	"time"

	"fitstudio/internal/domain/booking"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 120
	MaxNotesLength = 2000
)

// Level constants
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// ValidLevels lists every plan level.
var ValidLevels = []string{LevelBeginner, LevelIntermediate, LevelAdvanced}

// Domain errors
var (
	ErrEmptyName       = errors.New("plan name cannot be empty")
	ErrNameTooLong     = errors.New("plan name cannot exceed 120 characters")
	ErrInvalidLevel    = errors.New("level must be one of: beginner, intermediate, advanced")
	ErrInvalidDay      = errors.New("day numbers must be positive and unique")
	ErrEmptyExercise   = errors.New("exercise name cannot be empty")
	ErrInvalidSets     = errors.New("sets and rest seconds cannot be negative")
	ErrEmptyClient     = errors.New("a client is required")
	ErrEmptyPlan       = errors.New("a plan is required")
	ErrInvalidRange    = errors.New("dates must be YYYY-MM-DD with start on or before end")
	ErrPlanHasAssignee = errors.New("plan cannot be deleted while it is assigned to clients")
)

// Exercise is a single movement prescribed on a plan day.
type Exercise struct {
	ID          string
	DayID       string
	Name        string
	Sets        int
	Reps        string // "8-12", "AMRAP", "30s"
	RestSeconds int
	Notes       string
	Position    int
}

// Day is one training day inside a plan.
type Day struct {
	ID        string
	PlanID    string
	DayNumber int
	Title     string
	Exercises []Exercise
}

// Plan is a reusable workout template.
type Plan struct {
	ID          string
	Name        string
	Description string
	Level       string
	CreatedBy   string // account ID
	Days        []Day
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Assignment links a plan to a client for a date range.
type Assignment struct {
	ID        string
	PlanID    string
	ClientID  string
	StartDate string
	EndDate   string // optional
	Active    bool
	CreatedAt time.Time
}

// CompletionLog records that a client completed part of a plan.
type CompletionLog struct {
	ID          string
	ClientID    string
	PlanID      string
	DayID       string
	ExerciseID  string
	CompletedAt time.Time
	Notes       string
}

// Validate checks the plan and its nested days and exercises.
// PRE: Plan struct is populated
// POST: Returns nil if valid; exercise positions are renumbered in order
func (p *Plan) Validate() error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	if p.Level == "" {
		p.Level = LevelBeginner
	}
	if !contains(ValidLevels, p.Level) {
		return ErrInvalidLevel
	}
	seen := make(map[int]bool, len(p.Days))
	for i := range p.Days {
		d := &p.Days[i]
		if d.DayNumber <= 0 || seen[d.DayNumber] {
			return ErrInvalidDay
		}
		seen[d.DayNumber] = true
		for j := range d.Exercises {
			e := &d.Exercises[j]
			if strings.TrimSpace(e.Name) == "" {
				return ErrEmptyExercise
			}
			if e.Sets < 0 || e.RestSeconds < 0 {
				return ErrInvalidSets
			}
			e.Position = j + 1
		}
	}
	return nil
}

// ExerciseCount returns the number of exercises across all days.
func (p *Plan) ExerciseCount() int {
	n := 0
	for _, d := range p.Days {
		n += len(d.Exercises)
	}
	return n
}

// Validate checks if the Assignment has valid data.
// PRE: Assignment struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Assignment) Validate() error {
	if a.PlanID == "" {
		return ErrEmptyPlan
	}
	if a.ClientID == "" {
		return ErrEmptyClient
	}
	return validateRange(a.StartDate, a.EndDate)
}

// CoversDate reports whether the assignment is active on date (YYYY-MM-DD).
func (a *Assignment) CoversDate(date string) bool {
	if !a.Active {
		return false
	}
	if a.StartDate != "" && date < a.StartDate {
		return false
	}
	if a.EndDate != "" && date > a.EndDate {
		return false
	}
	return true
}

// Validate checks if the CompletionLog has valid data.
// PRE: CompletionLog struct is populated
// POST: Returns nil if valid, error otherwise
func (l *CompletionLog) Validate() error {
	if l.ClientID == "" {
		return ErrEmptyClient
	}
	if l.PlanID == "" {
		return ErrEmptyPlan
	}
	if len(l.Notes) > MaxNotesLength {
		return errors.New("notes cannot exceed 2000 characters")
	}
	return nil
}

func validateRange(start, end string) error {
	if start == "" {
		return ErrInvalidRange
	}
	if _, err := booking.ParseDate(start); err != nil {
		return ErrInvalidRange
	}
	if end == "" {
		return nil
	}
	if _, err := booking.ParseDate(end); err != nil {
		return ErrInvalidRange
	}
	if end < start {
		return ErrInvalidRange
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
