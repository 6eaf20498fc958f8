// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"

	"codeberg.org/oliverandrich/passreset/internal/models"
	"codeberg.org/oliverandrich/passreset/internal/password"
	"codeberg.org/oliverandrich/passreset/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email format")
)

// dummyHash is used for constant-time login to prevent timing attacks
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), password.Cost)

type Service struct {
	store             repository.UserStore
	passwordValidator *PasswordValidator
}

func NewService(store repository.UserStore) *Service {
	return &Service{
		store:             store,
		passwordValidator: DefaultPasswordValidator(),
	}
}

// Register creates a new user account
func (s *Service) Register(ctx context.Context, email, rawPassword string) (*models.User, error) {
	// Validate email format
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}

	// Validate password
	validation := s.passwordValidator.Validate(rawPassword, email)
	if !validation.Valid {
		return nil, &PasswordValidationError{Errors: validation.Errors}
	}

	user, err := s.store.CreateUser(ctx, email, rawPassword)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("register_success", "user_id", user.ID, "email", email)

	return user, nil
}

// Login checks the credentials and returns the user if they match.
// No session is established.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Constant-time: always perform bcrypt comparison to prevent timing attacks
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(rawPassword))
			slog.Warn("login_failed", "email", email, "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !password.Compare(user.PasswordHash, rawPassword) {
		slog.Warn("login_failed", "email", email, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	slog.Info("login_success", "user_id", user.ID, "email", email)
	return user, nil
}
