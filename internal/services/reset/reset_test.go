// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package reset_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"time"

	"codeberg.org/oliverandrich/passreset/internal/password"
	"codeberg.org/oliverandrich/passreset/internal/repository"
	"codeberg.org/oliverandrich/passreset/internal/services/reset"
	"codeberg.org/oliverandrich/passreset/internal/services/token"
	"codeberg.org/oliverandrich/passreset/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const baseURL = "https://site.example.com"

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	svc    *reset.Service
	repo   *repository.Repository
	tokens *token.Service
	sender *testutil.RecordingSender
	now    time.Time
}

func (f *fixture) clock() time.Time { return f.now }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	_, repo := testutil.NewTestDB(t)

	f := &fixture{
		repo:   repo,
		sender: &testutil.RecordingSender{},
		now:    time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	tokens, err := token.NewService([]byte("test-secret"), token.WithClock(f.clock))
	require.NoError(t, err)
	f.tokens = tokens
	f.svc = reset.NewService(repo, tokens, f.sender, baseURL+"/")
	return f
}

// tokenFromLink extracts the token from a reset link.
func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/resetpassword", u.Path)
	return u.Query().Get("token")
}

func TestRequestReset(t *testing.T) {
	f := newFixture(t)
	user := testutil.NewTestUser(t, f.repo, "a@x.com", "sameAsOld")

	delivery, err := f.svc.RequestReset(context.Background(), "a@x.com")

	require.NoError(t, err)
	assert.Equal(t, "a@x.com", delivery.To)
	assert.True(t, delivery.Accepted)

	messages := f.sender.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "a@x.com", messages[0].To)
	assert.Equal(t, "Password Reset Link", messages[0].Subject)
	assert.True(t, strings.HasPrefix(messages[0].Body, baseURL+"/resetpassword?token="))
	assert.NotContains(t, messages[0].Body, "\n")

	claims, err := f.tokens.Verify(tokenFromLink(t, messages[0].Body))
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, f.now.Add(token.Lifetime), claims.ExpiresAt.Time.UTC())
}

func TestRequestReset_UnknownEmail(t *testing.T) {
	f := newFixture(t)

	delivery, err := f.svc.RequestReset(context.Background(), "nobody@x.com")

	assert.Nil(t, delivery)
	require.ErrorIs(t, err, reset.ErrUserNotFound)
	assert.Empty(t, f.sender.Messages())
}

func TestRequestReset_UnknownEmailNotLogged(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	f := newFixture(t)

	_, err := f.svc.RequestReset(context.Background(), "nobody@x.com")

	require.ErrorIs(t, err, reset.ErrUserNotFound)
	assert.Contains(t, buf.String(), "reset_user_not_found")
	assert.NotContains(t, buf.String(), "nobody@x.com")
}

func TestRequestReset_DeliveryFailure(t *testing.T) {
	f := newFixture(t)
	testutil.NewTestUser(t, f.repo, "a@x.com", "sameAsOld")
	smtpErr := errors.New("dial tcp: connection refused")
	f.sender.Err = smtpErr

	_, err := f.svc.RequestReset(context.Background(), "a@x.com")

	require.ErrorIs(t, err, reset.ErrDeliveryFailure)
	assert.ErrorIs(t, err, smtpErr)
}

func TestRequestReset_NotAccepted(t *testing.T) {
	f := newFixture(t)
	testutil.NewTestUser(t, f.repo, "a@x.com", "sameAsOld")
	f.sender.Reject = true

	delivery, err := f.svc.RequestReset(context.Background(), "a@x.com")

	require.NoError(t, err)
	assert.False(t, delivery.Accepted)
}

func TestRequestReset_EachCallIssuesValidToken(t *testing.T) {
	f := newFixture(t)
	testutil.NewTestUser(t, f.repo, "a@x.com", "sameAsOld")
	ctx := context.Background()

	_, err := f.svc.RequestReset(ctx, "a@x.com")
	require.NoError(t, err)
	f.now = f.now.Add(time.Second)
	_, err = f.svc.RequestReset(ctx, "a@x.com")
	require.NoError(t, err)

	messages := f.sender.Messages()
	require.Len(t, messages, 2)
	assert.NotEqual(t, messages[0].Body, messages[1].Body)
	for _, m := range messages {
		_, err := f.svc.VerifyLink(tokenFromLink(t, m.Body))
		assert.NoError(t, err)
	}
}

func TestVerifyLink_Expiry(t *testing.T) {
	f := newFixture(t)
	issuedAt := f.now
	tok, err := f.tokens.Issue("u1", "a@x.com")
	require.NoError(t, err)

	f.now = issuedAt.Add(9*time.Minute + 59*time.Second)
	claims, err := f.svc.VerifyLink(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)

	f.now = issuedAt.Add(10*time.Minute + time.Second)
	_, err = f.svc.VerifyLink(tok)
	assert.ErrorIs(t, err, reset.ErrInvalidOrExpiredLink)
}

func TestVerifyLink_Garbage(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.VerifyLink("not-a-token")

	assert.ErrorIs(t, err, reset.ErrInvalidOrExpiredLink)
}

func TestCompleteReset(t *testing.T) {
	f := newFixture(t)
	user := testutil.NewTestUser(t, f.repo, "a@x.com", "sameAsOld")
	tok, err := f.tokens.Issue(user.ID, user.Email)
	require.NoError(t, err)
	ctx := context.Background()

	updated, err := f.svc.CompleteReset(ctx, tok, "NewPass123")

	require.NoError(t, err)
	assert.Equal(t, user.ID, updated.ID)

	stored, err := f.repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, password.Compare(stored.PasswordHash, "NewPass123"))
	assert.False(t, password.Compare(stored.PasswordHash, "sameAsOld"))
}

func TestCompleteReset_PasswordReused(t *testing.T) {
	f := newFixture(t)
	user := testutil.NewTestUser(t, f.repo, "a@x.com", "sameAsOld")
	tok, err := f.tokens.Issue(user.ID, user.Email)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = f.svc.CompleteReset(ctx, tok, "sameAsOld")

	require.ErrorIs(t, err, reset.ErrPasswordReused)
	stored, err := f.repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.PasswordHash, stored.PasswordHash)
	assert.Equal(t, user.UpdatedAt.Unix(), stored.UpdatedAt.Unix())
}

func TestCompleteReset_ExpiredToken(t *testing.T) {
	f := newFixture(t)
	user := testutil.NewTestUser(t, f.repo, "a@x.com", "sameAsOld")
	tok, err := f.tokens.Issue(user.ID, user.Email)
	require.NoError(t, err)
	ctx := context.Background()

	f.now = f.now.Add(token.Lifetime + time.Second)
	_, err = f.svc.CompleteReset(ctx, tok, "NewPass123")

	require.ErrorIs(t, err, reset.ErrInvalidOrExpiredLink)
	stored, err := f.repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.PasswordHash, stored.PasswordHash)
}

func TestCompleteReset_UnknownSubject(t *testing.T) {
	f := newFixture(t)
	tok, err := f.tokens.Issue("missing-user", "ghost@x.com")
	require.NoError(t, err)

	_, err = f.svc.CompleteReset(context.Background(), tok, "NewPass123")

	assert.ErrorIs(t, err, reset.ErrUserNotFound)
}

func TestCompleteReset_AnyDifferentPasswordIsStored(t *testing.T) {
	for _, newPassword := range []string{"hunter2", "password123", "12345678901", "a"} {
		t.Run(newPassword, func(t *testing.T) {
			f := newFixture(t)
			user := testutil.NewTestUser(t, f.repo, "a@x.com", "sameAsOld")
			tok, err := f.tokens.Issue(user.ID, user.Email)
			require.NoError(t, err)
			ctx := context.Background()

			_, err = f.svc.CompleteReset(ctx, tok, newPassword)
			require.NoError(t, err)

			stored, err := f.repo.GetUserByID(ctx, user.ID)
			require.NoError(t, err)
			assert.True(t, password.Compare(stored.PasswordHash, newPassword))
		})
	}
}

func TestCompleteReset_TokenReusableUntilExpiry(t *testing.T) {
	f := newFixture(t)
	user := testutil.NewTestUser(t, f.repo, "a@x.com", "sameAsOld")
	tok, err := f.tokens.Issue(user.ID, user.Email)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = f.svc.CompleteReset(ctx, tok, "NewPass123")
	require.NoError(t, err)

	_, err = f.svc.CompleteReset(ctx, tok, "Another456")
	require.NoError(t, err)

	_, err = f.svc.CompleteReset(ctx, tok, "Another456")
	assert.ErrorIs(t, err, reset.ErrPasswordReused)
}

func TestCompleteReset_StoreFailure(t *testing.T) {
	db, repo := testutil.NewTestDB(t)
	tokens, err := token.NewService([]byte("test-secret"))
	require.NoError(t, err)
	svc := reset.NewService(repo, tokens, &testutil.RecordingSender{}, baseURL)
	tok, err := tokens.Issue("u1", "a@x.com")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = svc.CompleteReset(context.Background(), tok, "NewPass123")

	require.ErrorIs(t, err, repository.ErrPersistence)
	assert.NotErrorIs(t, err, reset.ErrUserNotFound)
}

func TestLinkURL(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, baseURL+"/resetpassword?token=a.b%2Bc", f.svc.LinkURL("a.b+c"))
}
