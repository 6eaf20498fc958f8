// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package password hashes and compares passwords with bcrypt.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt cost factor for stored password hashes.
const Cost = 10

// Hash returns the bcrypt hash of a raw password.
func Hash(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare reports whether raw matches the stored hash.
// A malformed hash never matches.
func Compare(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
