// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package reset implements the password reset workflow: issuing a reset
// link by email and completing the reset with a verified token.
package reset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"codeberg.org/oliverandrich/passreset/internal/models"
	"codeberg.org/oliverandrich/passreset/internal/password"
	"codeberg.org/oliverandrich/passreset/internal/repository"
	"codeberg.org/oliverandrich/passreset/internal/services/token"
)

// Subject is the subject line of reset emails.
const Subject = "Password Reset Link"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidOrExpiredLink = errors.New("password reset link is invalid or has expired")
	ErrPasswordReused       = errors.New("new password must differ from the current password")
	ErrDeliveryFailure      = errors.New("reset link could not be delivered")
)

// Sender delivers a plain-text message and reports whether it was accepted.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) (bool, error)
}

// Delivery describes the outcome of sending a reset link.
type Delivery struct {
	To       string
	Accepted bool
}

// Service runs the reset workflow against a credential store.
type Service struct {
	store   repository.UserStore
	tokens  *token.Service
	sender  Sender
	baseURL string
}

// NewService creates a reset service. baseURL is the public site URL that
// reset links point to.
func NewService(store repository.UserStore, tokens *token.Service, sender Sender, baseURL string) *Service {
	return &Service{
		store:   store,
		tokens:  tokens,
		sender:  sender,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// LinkURL returns the reset page URL carrying the given token.
func (s *Service) LinkURL(tok string) string {
	return s.baseURL + "/resetpassword?token=" + url.QueryEscape(tok)
}

// RequestReset issues a token for the account with the given email and
// mails the reset link to it. Nothing is sent for unknown emails.
func (s *Service) RequestReset(ctx context.Context, email string) (*Delivery, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Info("reset_user_not_found")
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	tok, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	accepted, err := s.sender.Send(ctx, user.Email, Subject, s.LinkURL(tok))
	if err != nil {
		slog.Error("reset_link_delivery_failed", "user_id", user.ID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrDeliveryFailure, err)
	}

	slog.Info("reset_link_sent", "user_id", user.ID, "accepted", accepted)
	return &Delivery{To: user.Email, Accepted: accepted}, nil
}

// VerifyLink checks a token without changing anything. It decides whether
// the reset form is offered; CompleteReset verifies again on submit.
func (s *Service) VerifyLink(tok string) (*token.Claims, error) {
	claims, err := s.tokens.Verify(tok)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOrExpiredLink, err)
	}
	return claims, nil
}

// CompleteReset verifies the token and stores newPassword for its user.
// The stored hash is left untouched when newPassword equals the current one.
func (s *Service) CompleteReset(ctx context.Context, tok, newPassword string) (*models.User, error) {
	claims, err := s.VerifyLink(tok)
	if err != nil {
		slog.Info("password_reset_invalid_link")
		return nil, err
	}

	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Warn("password_reset_user_not_found", "user_id", claims.UserID)
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if password.Compare(user.PasswordHash, newPassword) {
		slog.Info("password_reset_reused", "user_id", user.ID)
		return nil, ErrPasswordReused
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateUserPassword(ctx, user.ID, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password_reset_success", "user_id", updated.ID)
	return updated, nil
}
