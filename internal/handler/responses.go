package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/osse101/liveops/internal/domain"
	"github.com/osse101/liveops/internal/logger"
)

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

// ValidationErrorResponse carries per-field validation messages
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	buf := getBuffer()
	defer putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		// headers are already sent
		slog.Error(LogMsgEncodeFailed, "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error(LogMsgWriteFailed, "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError logs err and writes the mapped status and message.
// Validation failures include their field details.
func respondServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := mapServiceError(err)

	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(LogMsgServiceError, "op", op, "status", status, "error", err)
	} else {
		log.Warn(LogMsgServiceError, "op", op, "status", status, "error", err)
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		respondJSON(w, status, ValidationErrorResponse{Error: msg, Fields: verr.Fields})
		return
	}
	respondError(w, status, msg)
}

// mapServiceError maps domain errors to HTTP status codes and user-facing messages
func mapServiceError(err error) (int, string) {
	var verr *domain.ValidationError
	switch {
	case err == nil:
		return http.StatusInternalServerError, ErrMsgGenericServerError
	case errors.As(err, &verr):
		return http.StatusBadRequest, ErrMsgInvalidRequestSummary
	case errors.Is(err, domain.ErrEventNotFound):
		return http.StatusNotFound, ErrMsgEventNotFound
	case errors.Is(err, domain.ErrProgressNotFound):
		return http.StatusNotFound, ErrMsgProgressNotFound
	case errors.Is(err, domain.ErrCompletionNotFound):
		return http.StatusNotFound, ErrMsgCompletionNotFound
	case errors.Is(err, domain.ErrEventAlreadyExists):
		return http.StatusConflict, ErrMsgEventExists
	case errors.Is(err, domain.ErrEventInactive):
		return http.StatusConflict, ErrMsgEventInactive
	case errors.Is(err, domain.ErrGrantFailed):
		return http.StatusBadGateway, ErrMsgGrantFailed
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, ErrMsgStoreUnavailable
	}
	return http.StatusInternalServerError, ErrMsgGenericServerError
}
