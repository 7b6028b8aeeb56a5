package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/feedbackdesk/backend/internal/infrastructure/observability"
	apperrors "github.com/feedbackdesk/backend/pkg/errors"
)

// MsgServerError is the only text clients see for unexpected failures.
const MsgServerError = "Server error. Please try again."

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithServiceError maps a service error to its status code. Messages of
// validation and not-found errors are returned as-is; anything else is logged
// and replaced by a generic message.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		respondWithError(w, status, MsgServerError)
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		respondWithError(w, status, appErr.Message)
		return
	}
	respondWithError(w, status, http.StatusText(status))
}
