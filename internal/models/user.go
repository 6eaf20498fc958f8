// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"time"
)

// User is an account identified by email with a hashed password.
type User struct { //nolint:govet // fieldalignment not critical for models
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Summary is the part of a user that is safe to hand back to callers.
type Summary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Summary returns the user without credentials.
func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Email: u.Email}
}
