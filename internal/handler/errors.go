package handler

import (
	"errors"
	"net/http"
	"strings"

	"bruce/internal/domain"
	"bruce/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrNotConfigured):
		httputil.RespondError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, domain.ErrUpstream):
		httputil.RespondError(w, http.StatusBadGateway, "model request failed")
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parseRequest decodes a required JSON body, answering 400 or 413 itself
// when decoding fails. It reports whether the handler should continue.
func parseRequest(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := httputil.ParseJSON(w, r, dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// userEmail prefers the email sent in the body and falls back to the one
// taken from a verified bearer token.
func userEmail(r *http.Request, fromBody string) string {
	if email := strings.TrimSpace(fromBody); email != "" {
		return email
	}
	return httputil.GetUserEmail(r)
}
