// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codeberg.org/oliverandrich/passreset/internal/models"
	"github.com/vinovest/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when creating a user whose email is taken
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrPersistence wraps connection and query failures of the backing store
	ErrPersistence = errors.New("persistence failure")
)

// UserStore is the credential store used by the services.
// Lookups report a missing user as ErrNotFound.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, email, rawPassword string) (*models.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) (*models.User, error)
}

// Repository is the SQLite implementation of UserStore.
type Repository struct {
	db *sqlx.DB
}

var _ UserStore = (*Repository)(nil)

// New creates a new Repository instance
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// DB returns the underlying database handle
func (r *Repository) DB() *sqlx.DB {
	return r.db
}

// wrapError converts driver errors to repository errors
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return ErrDuplicateEmail
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
