package orchestrators

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ValidationError is a business-rule violation the caller can fix by changing the request.
// Handlers render it as 400.
type ValidationError struct {
	Message string
	Fields  map[string]string // optional field -> problem
	cause   error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return e.Message + " (" + strings.Join(parts, ", ") + ")"
}

// Unwrap exposes the domain error, if any.
func (e *ValidationError) Unwrap() error {
	return e.cause
}

// invalid wraps a domain error as a ValidationError.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return err
	}
	return &ValidationError{Message: err.Error(), cause: err}
}

// invalidField builds a single-field ValidationError.
func invalidField(field, msg string) error {
	return &ValidationError{Message: "validation failed", Fields: map[string]string{field: msg}}
}

// IsValidation reports whether err should be surfaced as a 400.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Clock and ID helpers shared by deps structs; nil funcs fall back to real time and UUIDs.

func nowFn(f func() time.Time) time.Time {
	if f == nil {
		return time.Now().UTC()
	}
	return f()
}

func idFn(f func() string) string {
	if f == nil {
		return uuid.New().String()
	}
	return f()
}

func locOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

// studioToday returns midnight of the current calendar day in loc, expressed in UTC
// so date arithmetic never crosses a DST boundary.
func studioToday(now time.Time, loc *time.Location) time.Time {
	local := now.In(locOrUTC(loc))
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
