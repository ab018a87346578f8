package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hupe1980/winemesh/chat"
	"github.com/hupe1980/winemesh/core"
	"github.com/hupe1980/winemesh/internal/database"
	"github.com/hupe1980/winemesh/sqlgen"
	"github.com/hupe1980/winemesh/summary"
	"github.com/hupe1980/winemesh/wine"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

// mapError translates service errors into a status and error code.
func mapError(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, errForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, summary.ErrMissingWine),
		errors.Is(err, sqlgen.ErrEmptyQuestion),
		errors.Is(err, database.ErrEmptyQuery):
		return http.StatusUnprocessableEntity, "validation_error"
	case errors.Is(err, wine.ErrNoWines):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, core.ErrNoContent),
		errors.Is(err, summary.ErrNoResponse),
		errors.Is(err, sqlgen.ErrUnparseable):
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, database.ErrNotConfigured), errors.Is(err, errUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

var (
	errBadRequest  = errors.New("bad request")
	errUnavailable = errors.New("service not configured")
	errForbidden   = errors.New("user_id does not match the token")
)

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := mapError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("http.handler.failed", "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, code, err.Error())
}
