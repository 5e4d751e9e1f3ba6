// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

// Package server wires configuration, database, services and HTTP routes
// together and runs the API server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crewdeck/api/internal/config"
	"github.com/crewdeck/api/internal/database"
	"github.com/crewdeck/api/internal/handlers"
	appmw "github.com/crewdeck/api/internal/middleware"
	"github.com/crewdeck/api/internal/models"
	"github.com/crewdeck/api/internal/repository"
	"github.com/crewdeck/api/internal/services/audit"
	"github.com/crewdeck/api/internal/services/email"
	"github.com/crewdeck/api/internal/services/identity"
	"github.com/crewdeck/api/internal/services/token"
	"github.com/crewdeck/api/internal/services/users"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database, migrated on open
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// Repository and services
	repo := repository.New(db)
	signer := token.NewSigner(&cfg.Auth)

	mailer, err := email.NewService(&cfg.SMTP, cfg.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to set up mailer: %w", err)
	}

	identitySvc := identity.NewService(repo, signer, mailer, &cfg.Auth)
	usersSvc := users.NewService(repo, mailer, &cfg.Auth)
	auditSvc := audit.NewService(repo)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	setupMiddleware(e, cfg)
	setupRoutes(e, signer, identitySvc, usersSvc, auditSvc)

	return startWithGracefulShutdown(ctx, e, cfg)
}

func setupRoutes(e *echo.Echo, signer *token.Signer, identitySvc *identity.Service, usersSvc *users.Service, auditSvc *audit.Service) {
	authH := handlers.NewAuth(identitySvc, auditSvc)
	usersH := handlers.NewUsers(usersSvc, auditSvc)
	auditH := handlers.NewAudit(auditSvc)

	e.GET("/health", handlers.Health)

	auth := e.Group("/api/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.Refresh)
	auth.POST("/logout", authH.Logout, appmw.RequireAuth(signer))
	auth.GET("/me", authH.Me, appmw.RequireAuth(signer))
	auth.GET("/verify-email/:token", authH.VerifyEmail)
	auth.POST("/forgot-password", authH.ForgotPassword)
	auth.POST("/reset-password/:token", authH.ResetPassword)

	usersGroup := e.Group("/api/users", appmw.RequireAuth(signer))
	usersGroup.GET("", usersH.List)
	usersGroup.POST("", usersH.Create)
	usersGroup.GET("/:id", usersH.Get)
	usersGroup.PATCH("/:id", usersH.Update)
	usersGroup.DELETE("/:id", usersH.Delete)

	auditGroup := e.Group("/api/audit", appmw.RequireAuth(signer), appmw.RequireRole(models.RoleOwner, models.RoleAdmin))
	auditGroup.GET("", auditH.List)
}

func startWithGracefulShutdown(ctx context.Context, e *echo.Echo, cfg *config.Config) error {
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
