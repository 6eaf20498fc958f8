// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/passreset/internal/models"
	"codeberg.org/oliverandrich/passreset/internal/password"
	"github.com/google/uuid"
)

// CreateUser hashes the password and creates a new user.
func (r *Repository) CreateUser(ctx context.Context, email, rawPassword string) (*models.User, error) {
	hash, err := password.Hash(rawPassword)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return nil, wrapError(err)
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, email); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// UpdateUserPassword stores a new password hash and returns the updated user.
func (r *Repository) UpdateUserPassword(ctx context.Context, id, passwordHash string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ? RETURNING *`,
		passwordHash, time.Now().UTC(), id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}
