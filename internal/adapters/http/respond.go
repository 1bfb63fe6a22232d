package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"fitstudio/internal/adapters/ai"
	"fitstudio/internal/adapters/http/middleware"
	"fitstudio/internal/adapters/monitoring"
	"fitstudio/internal/application/listutil"
	"fitstudio/internal/application/orchestrators"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// envelope is the shape of every API response.
type envelope struct {
	Success    bool               `json:"success"`
	Data       any                `json:"data,omitempty"`
	Error      string             `json:"error,omitempty"`
	Details    map[string]string  `json:"details,omitempty"`
	Pagination *listutil.PageInfo `json:"pagination,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report the JSON field name so details match what the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("response_encode_failed", "error", err)
	}
}

// respondData writes a success envelope.
func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// respondList writes a success envelope with pagination.
func respondList(w http.ResponseWriter, data any, page listutil.PageInfo) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Pagination: &page})
}

// respondError writes an error envelope.
func respondError(w http.ResponseWriter, status int, msg string, details map[string]string) {
	writeJSON(w, status, envelope{Success: false, Error: msg, Details: details})
}

// respondValidation writes a 400 with per-field details.
func respondValidation(w http.ResponseWriter, details map[string]string) {
	respondError(w, http.StatusBadRequest, "validation failed", details)
}

// internalError logs the real error, reports it, and hides it in production.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal_error", "request_id", middleware.RequestID(r.Context()), "method", r.Method, "path", r.URL.Path, "error", err.Error())
	monitoring.CaptureRequestError(r, err)
	msg := "internal server error"
	if !services.Production {
		msg = err.Error()
	}
	respondError(w, http.StatusInternalServerError, msg, nil)
}

// handleError maps orchestrator and store errors to status codes.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *orchestrators.ValidationError
	switch {
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, ve.Message, ve.Fields)
	case errors.Is(err, sql.ErrNoRows):
		respondError(w, http.StatusNotFound, "not found", nil)
	case errors.Is(err, orchestrators.ErrInvalidSignature):
		respondError(w, http.StatusUnauthorized, "invalid signature", nil)
	case errors.Is(err, ai.ErrNotConfigured):
		respondError(w, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		internalError(w, r, err)
	}
}

// decodeJSON reads a JSON body into dst, rejecting unknown fields and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// validationDetails flattens validator errors to field -> rule.
func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		details[fe.Field()] = rule
	}
	return details
}

// bind decodes and validates a JSON request body. On failure it writes the 400 and
// returns false.
func bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decode(w, r, dst) && check(w, dst)
}

// decode reads the JSON body into dst and writes a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return false
	}
	return true
}

// check validates dst and writes a 400 on failure.
func check(w http.ResponseWriter, dst any) bool {
	if err := validate.Struct(dst); err != nil {
		respondValidation(w, validationDetails(err))
		return false
	}
	return true
}

// datesOK writes a 400 when any of the named query filters is not a YYYY-MM-DD date.
func datesOK(w http.ResponseWriter, r *http.Request, keys ...string) bool {
	if bad := listutil.InvalidDates(r.URL.Query(), keys...); bad != nil {
		respondValidation(w, bad)
		return false
	}
	return true
}

// patch overlays a JSON body onto current, then validates the merged request.
// Fields absent from the body keep their current values.
func patch(w http.ResponseWriter, r *http.Request, current any) bool {
	return bind(w, r, current)
}
