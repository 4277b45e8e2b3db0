// Package models contains the data structures used throughout the application.
package models

import (
	"errors"
	"maps"
	"net/http"
)

// Common error types for domain-specific errors
var (
	// Catalog errors
	ErrMovieNotFound        = errors.New("movie not found")
	ErrSeriesNotFound       = errors.New("series not found")
	ErrLinkNotFound         = errors.New("delivery link not found")
	ErrEndpointGone         = errors.New("endpoint deprecated")
	ErrInvalidID            = errors.New("invalid ID format")
	ErrMissingRequiredField = errors.New("missing required field")

	// App errors
	ErrVersionNotFound = errors.New("version not found")
	ErrInvalidPlatform = errors.New("invalid platform")
)

// DomainError represents an error that occurs in the application domain.
type DomainError struct {
	// Original is the underlying error
	Original error

	// Message is a human-readable error message
	Message string

	// Code is the HTTP status code
	Code int

	// Domain is the area of the application where the error occurred
	Domain string

	// Details contains additional context for the error
	Details map[string]any
}

// Error returns the error message
func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Original.Error()
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Original
}

// StatusCode returns the HTTP status code carried by the error.
func (e *DomainError) StatusCode() int {
	return e.Code
}

// NewDomainError creates a new DomainError
func NewDomainError(err error, message string, code int, domain string) *DomainError {
	if message == "" && err != nil {
		message = err.Error()
	}

	return &DomainError{
		Original: err,
		Message:  message,
		Code:     code,
		Domain:   domain,
		Details:  make(map[string]any),
	}
}

// WithDetails adds details to the error
func (e *DomainError) WithDetails(details map[string]any) *DomainError {
	maps.Copy(e.Details, details)
	return e
}

// NewCatalogError creates a catalog-related domain error
func NewCatalogError(err error, message string, code int) *DomainError {
	return NewDomainError(err, message, code, "catalog")
}

// NewAppError creates a domain error for the client app endpoints.
func NewAppError(err error, message string, code int) *DomainError {
	return NewDomainError(err, message, code, "app")
}

// NewDeliveryError creates a delivery-related domain error
func NewDeliveryError(err error, message string, code int) *DomainError {
	return NewDomainError(err, message, code, "delivery")
}

// NewNotFoundError creates a catalog 404 error.
func NewNotFoundError(err error, message string) *DomainError {
	return NewCatalogError(err, message, http.StatusNotFound)
}

// NewInternalError creates an internal server error
func NewInternalError(err error, message string) *DomainError {
	if message == "" {
		message = "An internal server error occurred"
	}
	return NewDomainError(err, message, http.StatusInternalServerError, "system")
}
