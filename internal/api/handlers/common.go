// Package handlers contains HTTP handlers for the API.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/jasim8799/api/internal/utils"
)

// respondError writes err with its mapped status. Server-side failures are logged.
func respondError(w http.ResponseWriter, logger *utils.Logger, err error, fallback string) {
	if utils.StatusCode(err) >= http.StatusInternalServerError {
		logger.Error(fallback, err)
	}
	utils.RespondWithAppError(w, err, fallback)
}

// validateRequest writes a validation error response and reports false when data is invalid.
func validateRequest(w http.ResponseWriter, data any) bool {
	if err := utils.Validate(data); err != nil {
		utils.RespondWithValidationError(w, err)
		return false
	}
	return true
}

// intQuery parses an optional integer query parameter within [minValue, maxValue].
// ok is false when the parameter is present but malformed or out of range.
func intQuery(r *http.Request, name string, def, minValue, maxValue int64) (value int64, ok bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < minValue || v > maxValue {
		return 0, false
	}
	return v, true
}
