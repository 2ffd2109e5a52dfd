package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// errorResponse is the wire shape of every error: a stable
// machine-readable kind and a human message.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

// writeError maps a domain error to its status code and error kind.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)
	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
		// Internal details stay out of the response body.
		writeJSON(w, status, errorResponse{Error: kind, Message: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: kind, Message: err.Error()})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, core.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, core.ErrInvalidCategory):
		return http.StatusBadRequest, "invalid_category"
	case errors.Is(err, core.ErrTypeMismatch):
		return http.StatusBadRequest, "type_mismatch"
	case errors.Is(err, core.ErrDuplicateName):
		return http.StatusConflict, "duplicate_name"
	case errors.Is(err, core.ErrDuplicateBudget):
		return http.StatusConflict, "duplicate_budget"
	case errors.Is(err, core.ErrDuplicateUser):
		return http.StatusConflict, "duplicate_user"
	case errors.Is(err, core.ErrInUse):
		return http.StatusConflict, "in_use"
	case errors.Is(err, core.ErrValidation),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrNameTooLong),
		errors.Is(err, core.ErrDescriptionTooLong):
		return http.StatusBadRequest, "validation_error"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
