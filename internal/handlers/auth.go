// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/crewdeck/api/internal/middleware"
	"github.com/crewdeck/api/internal/services/audit"
	"github.com/crewdeck/api/internal/services/identity"
	"github.com/labstack/echo/v4"
)

// AuthHandlers contains the handlers of the credential lifecycle endpoints.
type AuthHandlers struct {
	identity *identity.Service
	audit    *audit.Service
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(identitySvc *identity.Service, auditSvc *audit.Service) *AuthHandlers {
	return &AuthHandlers{identity: identitySvc, audit: auditSvc}
}

// RegisterRequest is the request body for company registration.
type RegisterRequest struct {
	CompanyName string `json:"companyName"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Password    string `json:"password"`
}

// SessionResponse carries the user together with both bearer tokens and
// the access token lifetime in seconds.
type SessionResponse struct {
	User         any    `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// Register creates a new company with its owner account.
func (h *AuthHandlers) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, echo.NewHTTPError(http.StatusBadRequest, "invalid request"))
	}
	if req.CompanyName == "" || req.Email == "" || req.Name == "" || req.Password == "" {
		return Fail(c, echo.NewHTTPError(http.StatusBadRequest, "companyName, email, name and password are required"))
	}

	session, err := h.identity.Register(c.Request().Context(), req.CompanyName, req.Email, req.Name, req.Password)
	if err != nil {
		return Fail(c, err)
	}

	h.audit.Record(c.Request().Context(), audit.Entry{
		CompanyID: session.User.CompanyID,
		UserID:    session.User.ID,
		Action:    "auth.register",
		Entity:    "auth",
	})

	return OK(c, http.StatusCreated, SessionResponse{
		User:         session.User,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    session.ExpiresIn,
	})
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user and issues a fresh token pair.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, echo.NewHTTPError(http.StatusBadRequest, "invalid request"))
	}
	if req.Email == "" || req.Password == "" {
		return Fail(c, echo.NewHTTPError(http.StatusBadRequest, "email and password are required"))
	}

	session, err := h.identity.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return Fail(c, err)
	}

	h.audit.Record(c.Request().Context(), audit.Entry{
		CompanyID: session.User.CompanyID,
		UserID:    session.User.ID,
		Action:    "auth.login",
		Entity:    "auth",
	})

	return OK(c, http.StatusOK, SessionResponse{
		User:         session.User,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    session.ExpiresIn,
	})
}

// RefreshRequest is the request body for the token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh exchanges a refresh token for a new access token.
func (h *AuthHandlers) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, echo.NewHTTPError(http.StatusBadRequest, "invalid request"))
	}
	if req.RefreshToken == "" {
		return Fail(c, echo.NewHTTPError(http.StatusBadRequest, "refreshToken is required"))
	}

	grant, err := h.identity.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return Fail(c, err)
	}

	return OK(c, http.StatusOK, RefreshResponse{
		AccessToken: grant.AccessToken,
		ExpiresIn:   grant.ExpiresIn,
	})
}

// RefreshResponse carries the replacement access token.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// Logout revokes the refresh token of the authenticated user.
func (h *AuthHandlers) Logout(c echo.Context) error {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		return Fail(c, echo.NewHTTPError(http.StatusUnauthorized, "authentication required"))
	}

	if err := h.identity.Logout(c.Request().Context(), claims.UserID); err != nil {
		return Fail(c, err)
	}

	h.audit.Record(c.Request().Context(), audit.Entry{
		CompanyID: claims.CompanyID,
		UserID:    claims.UserID,
		Action:    "auth.logout",
		Entity:    "auth",
	})

	return OK(c, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Me returns the token claims of the authenticated request.
func (h *AuthHandlers) Me(c echo.Context) error {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		return Fail(c, echo.NewHTTPError(http.StatusUnauthorized, "authentication required"))
	}

	return OK(c, http.StatusOK, map[string]string{
		"userId":    claims.UserID,
		"companyId": claims.CompanyID,
		"role":      claims.Role,
	})
}

// VerifyEmail consumes an email verification token from the mailed link.
func (h *AuthHandlers) VerifyEmail(c echo.Context) error {
	if err := h.identity.VerifyEmail(c.Request().Context(), c.Param("token")); err != nil {
		return Fail(c, err)
	}

	return OK(c, http.StatusOK, map[string]string{"message": "Email verified"})
}

// ForgotPasswordRequest is the request body for the reset request.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword starts a password reset. The response is identical whether
// or not the email belongs to an account.
func (h *AuthHandlers) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, echo.NewHTTPError(http.StatusBadRequest, "invalid request"))
	}
	if req.Email == "" {
		return Fail(c, echo.NewHTTPError(http.StatusBadRequest, "email is required"))
	}

	if err := h.identity.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return Fail(c, err)
	}

	return OK(c, http.StatusOK, map[string]string{"message": "If email exists, reset link sent"})
}

// ResetPasswordRequest is the request body for the password reset.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// ResetPassword consumes a reset token and sets the new password.
func (h *AuthHandlers) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, echo.NewHTTPError(http.StatusBadRequest, "invalid request"))
	}
	if req.Password == "" {
		return Fail(c, echo.NewHTTPError(http.StatusBadRequest, "password is required"))
	}

	if err := h.identity.ResetPassword(c.Request().Context(), c.Param("token"), req.Password); err != nil {
		return Fail(c, err)
	}

	return OK(c, http.StatusOK, map[string]string{"message": "Password reset successful"})
}
