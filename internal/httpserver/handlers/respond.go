package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"liftcore/internal/license"
)

func respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// respondEngineError maps the engine's error taxonomy onto HTTP statuses:
// bad tokens are 401, missing rows 404, every business rejection 403.
func respondEngineError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), engineStatus(err))
}

func engineStatus(err error) int {
	switch {
	case errors.Is(err, license.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, license.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, license.ErrRevoked),
		errors.Is(err, license.ErrExpired),
		errors.Is(err, license.ErrDeviceLimitReached),
		errors.Is(err, license.ErrDeviceNotActivated),
		errors.Is(err, license.ErrQuotaExceeded),
		errors.Is(err, license.ErrResellerProfileMissing),
		errors.Is(err, license.ErrUnauthorized):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
