// Package handler implements the HTTP surface: JSON decoding, calling the
// services, and mapping domain errors to status codes.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rahat/chatterpoint/internal/apperror"
	"github.com/rahat/chatterpoint/internal/service"
)

// serverErrorMessage is the only message a client sees for an unexpected
// failure; the real cause goes to the log.
const serverErrorMessage = "Server error. Please try again."

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// statusForError maps the apperror sentinels to HTTP status codes. Anything
// that is not a domain error is a 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError sends the error as JSON. Domain errors keep their message; an
// unexpected error is logged and replaced with the fixed server-error
// message so internals never leak to clients.
func writeError(w http.ResponseWriter, logger *slog.Logger, r *http.Request, err error) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		message = serverErrorMessage
	}
	writeJSON(w, status, map[string]string{"message": message})
}

// decodeJSON decodes the request body into v. A body that does not parse is
// a validation error, not a server error.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperror.ValidationFailed("body", "Invalid request body")
	}
	return nil
}

// pageRequest reads the page/limit query parameters. Absent or malformed
// values come back as zero and take the service defaults.
func pageRequest(r *http.Request) service.PageRequest {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return service.PageRequest{Page: page, Limit: limit}
}
