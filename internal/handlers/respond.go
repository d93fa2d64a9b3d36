// internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/anvikram/stocktrack-be/internal/core/domain"
)

// respondJSON writes data as a JSON response body
func respondJSON(logger *slog.Logger, w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

// respondError writes a JSON error envelope
func respondError(logger *slog.Logger, w http.ResponseWriter, status int, message string) {
	respondJSON(logger, w, status, map[string]string{"error": message})
}

// statusForError maps the domain sentinel taxonomy to HTTP status codes.
// Anything outside the taxonomy is an internal error.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrProcessingFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondDomainError classifies err and writes the matching error response.
// Internal errors get the generic fallback message; classified ones expose
// the wrapped error text, which never carries internals.
func respondDomainError(logger *slog.Logger, w http.ResponseWriter, err error, fallback string) {
	status := statusForError(err)
	message := fallback
	if status != http.StatusInternalServerError {
		message = err.Error()
	}
	respondError(logger, w, status, message)
}
