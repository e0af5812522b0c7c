package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/portfolio-api/internal/apperr"
	"go.uber.org/zap"
)

// Machine-readable error codes carried next to the message.
const (
	CodeInvalidRequest     = "invalid_request"
	CodeUnauthorized       = "unauthorized"
	CodeInvalidCredentials = "invalid_credentials"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeConflict           = "conflict"
	CodeRateLimited        = "rate_limited"
	CodeInternal           = "internal_error"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// StatusOf maps err to its HTTP status, error code and client message.
// Faults never expose their cause.
func StatusOf(err error) (int, string, string) {
	var e *apperr.Error
	kind := err
	if errors.As(err, &e) {
		kind = e.Kind
	}
	switch {
	case errors.Is(kind, apperr.ErrConflict):
		return http.StatusConflict, CodeConflict, apperr.Message(err, "Conflict")
	case errors.Is(kind, apperr.ErrNotFound):
		return http.StatusNotFound, CodeNotFound, apperr.Message(err, "Not found")
	case errors.Is(kind, apperr.ErrBadRequest):
		return http.StatusBadRequest, CodeInvalidRequest, apperr.Message(err, "Bad request")
	case errors.Is(kind, apperr.ErrUnauthenticated), errors.Is(kind, apperr.ErrInvalidToken):
		return http.StatusUnauthorized, CodeUnauthorized, apperr.Message(err, "Unauthorized")
	case errors.Is(kind, apperr.ErrInvalidCredentials):
		return http.StatusUnauthorized, CodeInvalidCredentials, apperr.Message(err, "Invalid Credentials")
	case errors.Is(kind, apperr.ErrForbidden):
		return http.StatusForbidden, CodeForbidden, apperr.Message(err, "Forbidden")
	default:
		return http.StatusInternalServerError, CodeInternal, "internal error"
	}
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError renders err as an ErrorBody. Faults are logged with their cause.
func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	status, code, msg := StatusOf(err)
	if status == http.StatusInternalServerError && log != nil {
		log.Error("request failed", zap.Error(err))
	}
	WriteJSON(w, status, ErrorBody{Error: msg, Code: code})
}
