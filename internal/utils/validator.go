// Package utils provides utility functions used throughout the application.
package utils

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	objectIDRegex = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

	// Regions a catalog record may be published under.
	catalogRegions = map[string]bool{
		"Hollywood": true,
		"Bollywood": true,
		"All":       true,
	}
)

func init() {
	validate = validator.New()

	// Report json names so errors match the request body.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("region", validateRegion)
	_ = validate.RegisterValidation("objectid", validateObjectID)
	_ = validate.RegisterValidation("iso8601", validateISO8601)
}

// Validate performs validation on the given struct and returns validation errors.
func Validate(s any) error {
	return validate.Struct(s)
}

// validateRegion accepts the catalog regions, matched case-sensitively like the stored enum.
func validateRegion(fl validator.FieldLevel) bool {
	return catalogRegions[fl.Field().String()]
}

func validateObjectID(fl validator.FieldLevel) bool {
	return objectIDRegex.MatchString(fl.Field().String())
}

// validateISO8601 accepts a calendar date or a full RFC 3339 timestamp.
func validateISO8601(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	for _, layout := range []string{time.DateOnly, time.RFC3339, time.RFC3339Nano} {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}
