// Package utils provides utility functions used throughout the application.
package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// APIResponse represents a standard API response.
type APIResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Error   any  `json:"error,omitempty"`
}

// ValidationErrorItem represents a single validation error.
type ValidationErrorItem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RespondWithJSON sends a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			GetLogger().Error("Failed to encode JSON response", err)
		}
	}
}

// RespondWithError sends an error response with the given status code and message.
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	response := APIResponse{
		Success: false,
		Error: map[string]string{
			"message": message,
		},
	}
	RespondWithJSON(w, statusCode, response)
}

// RespondWithValidationError sends a validation error response.
func RespondWithValidationError(w http.ResponseWriter, err error) {
	var validationErrors []ValidationErrorItem

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			field := e.Namespace()
			// Drop the root struct name, keep the json path (videoLinks[0].url).
			if idx := strings.Index(field, "."); idx >= 0 {
				field = field[idx+1:]
			}

			var message string
			switch e.Tag() {
			case "required":
				message = field + " is required"
			case "min":
				message = field + " must have at least " + e.Param() + " item(s)"
			case "max":
				message = field + " must be at most " + e.Param()
			case "url", "http_url":
				message = field + " must be a valid URL"
			case "oneof":
				message = field + " must be one of " + e.Param()
			case "objectid":
				message = field + " must be a valid ID"
			case "region":
				message = field + " must be one of Hollywood, Bollywood, All"
			case "iso8601":
				message = field + " must be an ISO 8601 date"
			default:
				message = field + " failed validation: " + e.Tag()
			}

			validationErrors = append(validationErrors, ValidationErrorItem{
				Field:   field,
				Message: message,
			})
		}
	} else {
		validationErrors = append(validationErrors, ValidationErrorItem{
			Field:   "general",
			Message: err.Error(),
		})
	}

	response := APIResponse{
		Success: false,
		Error: map[string]any{
			"message": "Validation failed",
			"errors":  validationErrors,
		},
	}

	RespondWithJSON(w, http.StatusBadRequest, response)
}

// RespondWithAppError maps err to its HTTP status and writes the standard error body.
// Messages of unexpected errors are not leaked to the client.
func RespondWithAppError(w http.ResponseWriter, err error, fallback string) {
	code := StatusCode(err)
	message := fallback
	var appErr *AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	} else if code != http.StatusInternalServerError {
		message = err.Error()
	}
	RespondWithError(w, code, message)
}

// ExtractBearerToken extracts the Bearer token from the Authorization header.
func ExtractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("no token provided: %w", ErrUnauthorized)
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return "", fmt.Errorf("invalid token format: %w", ErrUnauthorized)
	}

	return tokenParts[1], nil
}
