package handler

// RESPONSE HELPERS:
// Every JSON answer goes through writeJSON and every failure through writeError,
// so handlers never set Content-Type or pick status codes by hand:
//
//	writeJSON(w, http.StatusOK, users)
//	writeError(w, err)
//
// ERROR FORMAT:
// Every error response from the API has the same shape:
//
//	{"error": "not_found", "message": "Could not find user data in database"}

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/github-profiles/internal/apperror"
)

// ErrorResponse is the body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`           // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"`         // Human-readable description
	Field   string `json:"field,omitempty"` // Offending query parameter, validation errors only
}

// writeJSON sends a JSON response with the given status code.
// Headers must be set before WriteHeader; anything set after the first Write is
// silently dropped.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// ERROR MAPPING:
// Services return apperror kinds and never see HTTP. This is the one place kinds
// become status codes:
//
//	apperror.ErrValidation → 400 validation_error
//	apperror.ErrNotFound   → 404 not_found
//	anything else          → 500 internal_error, details only in the log
//
// errors.As walks the whole chain, so a service may wrap the AppError with
// fmt.Errorf("...: %w", err) and the mapping still finds it.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
			Field:   appErr.Field,
		})
		return
	}

	// Raw errors can carry SQL or file paths, so the client gets a generic message.
	slog.Error("unhandled error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
