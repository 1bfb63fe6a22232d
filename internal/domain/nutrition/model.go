package nutrition

import (
	"errors"
	"strings"
	"time"

	"fitstudio/internal/domain/booking"
)

// Meal constants
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

// ValidMeals lists every meal slot.
var ValidMeals = []string{MealBreakfast, MealLunch, MealDinner, MealSnack}

// Domain errors
var (
	ErrEmptyName       = errors.New("name cannot be empty")
	ErrNameTooLong     = errors.New("name cannot exceed 120 characters")
	ErrInvalidMeal     = errors.New("meal must be one of: breakfast, lunch, dinner, snack")
	ErrNegativeMacro   = errors.New("calories and macros cannot be negative")
	ErrEmptyClient     = errors.New("a client is required")
	ErrEmptyPlan       = errors.New("a meal plan is required")
	ErrInvalidRange    = errors.New("dates must be YYYY-MM-DD with start on or before end")
	ErrEmptyFood       = errors.New("food description cannot be empty")
	ErrPlanHasAssignee = errors.New("meal plan cannot be deleted while it is assigned to clients")
)

// Macros groups the energy and macronutrient figures shared by items and logs.
type Macros struct {
	Calories int
	ProteinG float64
	CarbsG   float64
	FatG     float64
}

func (m Macros) validate() error {
	if m.Calories < 0 || m.ProteinG < 0 || m.CarbsG < 0 || m.FatG < 0 {
		return ErrNegativeMacro
	}
	return nil
}

// Item is one food in a meal plan.
type Item struct {
	ID         string
	MealPlanID string
	Meal       string
	Name       string
	Quantity   string // "150 g", "1 cup"
	Macros
	Position int
}

// Plan is a reusable meal plan template.
type Plan struct {
	ID            string
	Name          string
	Description   string
	DailyCalories int
	Items         []Item
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Assignment links a meal plan to a client for a date range.
type Assignment struct {
	ID         string
	MealPlanID string
	ClientID   string
	StartDate  string
	EndDate    string // optional
	Active     bool
	CreatedAt  time.Time
}

// FoodLog is a client-reported meal.
type FoodLog struct {
	ID          string
	ClientID    string
	LoggedAt    time.Time
	Meal        string
	Description string
	Macros
}

// Validate checks the plan and its items.
// PRE: Plan struct is populated
// POST: Returns nil if valid; item positions are renumbered in order
func (p *Plan) Validate() error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > 120 {
		return ErrNameTooLong
	}
	if p.DailyCalories < 0 {
		return ErrNegativeMacro
	}
	for i := range p.Items {
		it := &p.Items[i]
		if strings.TrimSpace(it.Name) == "" {
			return ErrEmptyName
		}
		if !isValidMeal(it.Meal) {
			return ErrInvalidMeal
		}
		if err := it.Macros.validate(); err != nil {
			return err
		}
		it.Position = i + 1
	}
	return nil
}

// Totals sums the macros of every item in the plan.
func (p *Plan) Totals() Macros {
	var t Macros
	for _, it := range p.Items {
		t.Calories += it.Calories
		t.ProteinG += it.ProteinG
		t.CarbsG += it.CarbsG
		t.FatG += it.FatG
	}
	return t
}

// Validate checks if the Assignment has valid data.
func (a *Assignment) Validate() error {
	if a.MealPlanID == "" {
		return ErrEmptyPlan
	}
	if a.ClientID == "" {
		return ErrEmptyClient
	}
	if _, err := booking.ParseDate(a.StartDate); err != nil {
		return ErrInvalidRange
	}
	if a.EndDate != "" {
		if _, err := booking.ParseDate(a.EndDate); err != nil || a.EndDate < a.StartDate {
			return ErrInvalidRange
		}
	}
	return nil
}

// Validate checks if the FoodLog has valid data.
// PRE: FoodLog struct is populated
// POST: Returns nil if valid; LoggedAt defaults to now when unset
func (l *FoodLog) Validate(now time.Time) error {
	if l.ClientID == "" {
		return ErrEmptyClient
	}
	if !isValidMeal(l.Meal) {
		return ErrInvalidMeal
	}
	if strings.TrimSpace(l.Description) == "" {
		return ErrEmptyFood
	}
	if err := l.Macros.validate(); err != nil {
		return err
	}
	if l.LoggedAt.IsZero() {
		l.LoggedAt = now
	}
	return nil
}

func isValidMeal(meal string) bool {
	for _, m := range ValidMeals {
		if m == meal {
			return true
		}
	}
	return false
}
