package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cinetrack/cinetrack/internal/service"
	"github.com/cinetrack/cinetrack/internal/validation"
)

type errorResponse struct {
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// writeServiceError maps service errors onto the wire: business-rule
// violations come back 400 with their own message, missing accounts 404,
// everything else is logged and collapsed into a generic 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case isBadRequest(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}

func isBadRequest(err error) bool {
	var ve validation.Error
	if errors.As(err, &ve) {
		return true
	}

	for _, kind := range []error{
		service.ErrEmailTaken,
		service.ErrInvalidCredentials,
		service.ErrNoPassword,
		service.ErrNoChallenge,
		service.ErrCodeMismatch,
		service.ErrCodeExpired,
		service.ErrInvalidEmail,
		service.ErrMovieRequired,
		service.ErrDuplicateMovie,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
