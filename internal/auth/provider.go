// Package auth provides authentication and authorization functionality.
package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin grants access to catalog write routes.
const RoleAdmin = "admin"

// BaseClaims represents the application claims in a JWT token.
type BaseClaims struct {
	// Roles contains the operator's roles.
	Roles []string `json:"roles"`
}

// Claims represents the JWT claims.
type Claims struct {
	BaseClaims
	jwt.RegisteredClaims
}

// HasRole reports whether the claims carry role.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}
