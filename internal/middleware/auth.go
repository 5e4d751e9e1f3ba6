// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

// Package middleware provides the request authentication and authorization
// middlewares.
package middleware

import (
	"net/http"
	"strings"

	"github.com/crewdeck/api/internal/models"
	"github.com/crewdeck/api/internal/services/token"
	"github.com/labstack/echo/v4"
)

// identityKey is the echo context key holding the verified access claims.
const identityKey = "identity"

// RequireAuth verifies the Bearer access token and stores its claims in the
// request context. Requests without a valid token are rejected.
func RequireAuth(signer *token.Signer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			claims, err := signer.VerifyAccess(raw)
			if err != nil || claims.UserID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}

			c.Set(identityKey, claims)
			return next(c)
		}
	}
}

// RequireRole rejects authenticated requests whose role is not in the given
// set. It must run after RequireAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := CurrentUser(c)
			if claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
		}
	}
}

// CurrentUser returns the access claims of the authenticated request, or
// nil when the request is unauthenticated.
func CurrentUser(c echo.Context) *token.AccessClaims {
	claims, _ := c.Get(identityKey).(*token.AccessClaims)
	return claims
}

// IsElevated reports whether the claims belong to an admin or owner.
func IsElevated(claims *token.AccessClaims) bool {
	return claims != nil && (claims.Role == models.RoleAdmin || claims.Role == models.RoleOwner)
}
