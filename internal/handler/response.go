package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/prn-tf/taskflow/internal/domain"
)

var errNoSession = domain.ErrNoSession

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps a store error to its HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "InvalidCredentials"
	case errors.Is(err, domain.ErrNoSession):
		return http.StatusForbidden, "NoSession"
	case errors.Is(err, domain.ErrAccessDenied):
		return http.StatusForbidden, "AccessDenied"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "ValidationFailed"
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return http.StatusBadRequest, "UserAlreadyExists"
	case errors.Is(err, domain.ErrProtectedUser):
		return http.StatusConflict, "ProtectedUser"
	case errors.Is(err, errNotFound):
		return http.StatusNotFound, "NotFound"
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "BadRequest"
	default:
		return http.StatusInternalServerError, "InternalError"
	}
}

var (
	errNotFound   = errors.New("not found")
	errBadRequest = errors.New("malformed request")
)

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		rt.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}
