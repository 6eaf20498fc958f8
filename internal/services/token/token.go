// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token issues and verifies signed password reset tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"codeberg.org/oliverandrich/passreset/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// Lifetime is how long an issued token stays valid.
const Lifetime = 10 * time.Minute

// ErrInvalidToken is returned for tokens that fail signature, shape or expiry checks.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims identify the user a token was issued for.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Service signs tokens with a shared HMAC secret.
type Service struct {
	secret []byte
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a token service. The secret must not be empty.
func NewService(secret []byte, opts ...Option) (*Service, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: token secret", config.ErrConfigurationMissing)
	}

	s := &Service{secret: secret, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue creates a token for the given user that expires after Lifetime.
func (s *Service) Issue(subjectID, subjectEmail string) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: subjectID,
		Email:  subjectEmail,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(Lifetime)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded claims.
// A token is valid strictly before its expiry instant.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.UserID == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: missing subject claims", ErrInvalidToken)
	}
	return claims, nil
}
