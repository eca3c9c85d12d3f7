package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"shop-inventory/internal/model"

	"github.com/rs/zerolog"
)

// statusByCode maps domain error codes to HTTP status codes. Codes not listed
// are server-side failures.
var statusByCode = map[string]int{
	model.ErrCodeValidation:         http.StatusBadRequest,
	model.ErrCodeProductNotFound:    http.StatusNotFound,
	model.ErrCodeInvalidCredentials: http.StatusUnauthorized,
	model.ErrCodeUnauthorised:       http.StatusUnauthorized,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeServiceError translates an error returned by a service into a response.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var de *model.DomainError
	if !errors.As(err, &de) {
		logger.Error().Err(err).Msg("unexpected service error")
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
		return
	}

	status, ok := statusByCode[de.Code]
	if !ok {
		status = http.StatusInternalServerError
	}
	writeError(w, status, de.Code, de.Error(), logger)
}
