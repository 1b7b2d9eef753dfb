package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/eduplatform/internal/common"
	"github.com/dmitrijs2005/eduplatform/internal/logging"
)

var (
	errInternal         = errors.New("internal server error")
	errScoreRequired    = fmt.Errorf("%w: score is required", common.ErrorValidation)
	errRouteNotFound    = fmt.Errorf("%w: no such route", common.ErrorNotFound)
	errMethodNotAllowed = errors.New("method not allowed")
)

type errorMapping struct {
	target  error
	status  int
	errCode string
}

// Order matters: the first sentinel err matches wins.
var errorMappings = []errorMapping{
	{common.ErrDuplicateEmail, http.StatusBadRequest, "duplicate_email"},
	{common.ErrorValidation, http.StatusBadRequest, "validation_error"},
	{common.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{common.ErrInvalidAuthHeader, http.StatusUnauthorized, "unauthenticated"},
	{common.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
	{common.ErrForbidden, http.StatusForbidden, "forbidden"},
	{common.ErrorNotFound, http.StatusNotFound, "not_found"},
	{common.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
	{common.ErrMediaNotConfigured, http.StatusServiceUnavailable, "media_unavailable"},
}

// StatusFor maps a service error to its HTTP status and error code.
func StatusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.errCode
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeServiceError renders err. Unexpected errors are logged and replaced
// by a generic message so that internals never reach the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	status, code := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(r.Context(), "request failed", "error", err, "path", r.URL.Path)
		err = errInternal
	}
	if status == http.StatusUnauthorized && !errors.Is(err, common.ErrInvalidCredentials) {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	}
	WriteError(w, ErrorParams{Code: status, ErrCode: code, Err: err})
}
