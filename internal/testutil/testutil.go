// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"codeberg.org/oliverandrich/passreset/internal/database"
	"codeberg.org/oliverandrich/passreset/internal/models"
	"codeberg.org/oliverandrich/passreset/internal/repository"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestUser creates a test user with the given raw password.
func NewTestUser(t *testing.T, repo repository.UserStore, email, password string) *models.User {
	t.Helper()
	user, err := repo.CreateUser(context.Background(), email, password)
	require.NoError(t, err)
	return user
}

// SentMail is a message captured by RecordingSender.
type SentMail struct {
	To      string
	Subject string
	Body    string
}

// RecordingSender is a notification sender that keeps messages in memory.
type RecordingSender struct {
	mu       sync.Mutex
	messages []SentMail

	// Reject makes Send report the message as not accepted.
	Reject bool
	// Err is returned from Send when set.
	Err error
}

// Send records the message.
func (s *RecordingSender) Send(_ context.Context, to, subject, body string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	s.messages = append(s.messages, SentMail{To: to, Subject: subject, Body: body})
	return !s.Reject, nil
}

// Messages returns a copy of all recorded messages.
func (s *RecordingSender) Messages() []SentMail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentMail(nil), s.messages...)
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewFormContext creates an Echo context carrying a url-encoded form body.
func NewFormContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}
