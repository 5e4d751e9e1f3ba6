// Copyright 2025 The Crewdeck Authors
// Licensed under the EUPL-1.2

// Package email delivers the verification and password reset notifications.
// The identity service only hands over the recipient and the raw one-time
// token; link shape and wording live here.
package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/crewdeck/api/internal/config"
	"github.com/wneessen/go-mail"
)

// Service sends transactional mail via SMTP.
type Service struct {
	cfg     *config.SMTPConfig
	baseURL string
}

// NewService creates a new email service.
func NewService(cfg *config.SMTPConfig, baseURL string) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	return &Service{
		cfg:     cfg,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// SendVerification sends the email verification link for a fresh account.
func (s *Service) SendVerification(ctx context.Context, toEmail, name, token string) error {
	verifyURL := fmt.Sprintf("%s/api/auth/verify-email/%s", s.baseURL, token)

	subject := "Verify your email address"
	body := fmt.Sprintf(
		"Hi %s,\n\nplease confirm your email address by opening the link below:\n\n%s\n\nThe link is valid for 24 hours.\n",
		name, verifyURL)

	return s.send(ctx, toEmail, subject, body)
}

// SendPasswordReset sends the password reset link.
func (s *Service) SendPasswordReset(ctx context.Context, toEmail, name, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password/%s", s.baseURL, token)

	subject := "Reset your password"
	body := fmt.Sprintf(
		"Hi %s,\n\na password reset was requested for your account. Open the link below to choose a new password:\n\n%s\n\nThe link is valid for one hour. If you did not request this, you can ignore this email.\n",
		name, resetURL)

	return s.send(ctx, toEmail, subject, body)
}

// send sends an email via SMTP using go-mail.
func (s *Service) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	// Use implicit TLS (SSL) for port 465, STARTTLS for others
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
