// Package middleware contains HTTP middleware for the API.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/jasim8799/api/internal/auth"
	"github.com/jasim8799/api/internal/utils"
)

type contextKey string

// ClaimsKey holds the admin claims of an authenticated write request.
const ClaimsKey contextKey = "claims"

// AuthMiddleware gates routes behind the shared API key and, for writes, an admin token.
type AuthMiddleware struct {
	apiKey *auth.APIKeyVerifier
	tokens *auth.JWTProvider
	logger *utils.Logger
}

// NewAuthMiddleware creates a new auth middleware.
// A nil token provider disables the admin token check.
func NewAuthMiddleware(apiKey *auth.APIKeyVerifier, tokens *auth.JWTProvider, logger *utils.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		apiKey: apiKey,
		tokens: tokens,
		logger: logger.Named("auth_middleware"),
	}
}

// RequireAPIKey rejects requests without the shared key in the x-api-key header.
func (m *AuthMiddleware) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.apiKey.Verify(r.Header.Get("x-api-key")) {
			m.logger.Debug("Rejected request without a valid API key", "path", r.URL.Path, "ip", utils.GetRequestIP(r))
			utils.RespondWithError(w, http.StatusForbidden, "Forbidden: Invalid or missing API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin requires a bearer token carrying the admin role.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	if m.tokens == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := utils.ExtractBearerToken(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := m.tokens.ValidateToken(token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				utils.RespondWithError(w, http.StatusUnauthorized, "Token has expired")
			default:
				utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			}
			return
		}

		if !claims.HasRole(auth.RoleAdmin) {
			utils.RespondWithError(w, http.StatusForbidden, "Insufficient permissions")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireProxyToken requires the proxy's shared secret as a bearer token.
func (m *AuthMiddleware) RequireProxyToken(secret *auth.APIKeyVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := utils.ExtractBearerToken(r)
			if err != nil || !secret.Verify(token) {
				m.logger.Debug("Rejected proxy request", "path", r.URL.Path, "ip", utils.GetRequestIP(r))
				utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
