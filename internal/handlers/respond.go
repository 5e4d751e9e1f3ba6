// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/crewdeck/api/internal/repository"
	"github.com/crewdeck/api/internal/services/identity"
	"github.com/crewdeck/api/internal/services/users"
	"github.com/labstack/echo/v4"
)

// Response is the uniform JSON envelope of the API.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// OK writes a success envelope with the given status code.
func OK(c echo.Context, status int, data any) error {
	return c.JSON(status, Response{Success: true, Message: "Success", Data: data})
}

// Fail maps a service error to its status code and writes a failure
// envelope. Every handler funnels its errors through here, so the
// kind-to-status mapping exists exactly once.
func Fail(c echo.Context, err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg, _ := httpErr.Message.(string)
		if msg == "" {
			msg = http.StatusText(httpErr.Code)
		}
		return c.JSON(httpErr.Code, Response{Success: false, Message: msg})
	}

	switch {
	case errors.Is(err, identity.ErrEmailTaken):
		return c.JSON(http.StatusConflict, Response{Success: false, Message: "Email already exists"})
	case errors.Is(err, identity.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, Response{Success: false, Message: "Invalid credentials"})
	case errors.Is(err, identity.ErrEmailNotVerified):
		return c.JSON(http.StatusUnauthorized, Response{Success: false, Message: "Verify your email first"})
	case errors.Is(err, identity.ErrInvalidRefreshToken):
		return c.JSON(http.StatusUnauthorized, Response{Success: false, Message: "Invalid refresh token"})
	case errors.Is(err, identity.ErrInvalidToken):
		return c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Invalid token"})
	case errors.Is(err, users.ErrInvalidRole):
		return c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Invalid role"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, Response{Success: false, Message: "Not found"})
	}

	slog.Error("request_failed", "method", c.Request().Method, "uri", c.Request().RequestURI, "error", err)
	return c.JSON(http.StatusInternalServerError, Response{Success: false, Message: "Internal server error"})
}
