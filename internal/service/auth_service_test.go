package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatescout/internal/models"
	"estatescout/internal/repository/memory"
	"estatescout/internal/security"
)

func TestRegisterThenLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.auth.Register(ctx, RegisterInput{Email: " A@X.com ", Password: "pw123456", Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", reg.User.Email)
	assert.Equal(t, models.UserRoleAgent, reg.User.Role)
	assert.NotEqual(t, "pw123456", string(reg.User.PasswordHash))

	identity, err := f.tokens.Verify(reg.AccessToken, security.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, identity.UserID)

	login, err := f.auth.Login(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)
	assert.False(t, reg.User.CreatedAt.IsZero())
	assert.True(t, reg.User.CreatedAt.Equal(login.User.CreatedAt), "returned and stored creation times differ")
	_, err = f.tokens.Verify(login.RefreshToken, security.RefreshToken)
	require.NoError(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "dup@x.com")
	_, err := f.auth.Register(ctx, RegisterInput{Email: "DUP@x.com", Password: "other-pass", Name: "Dup"})
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, f.users.Count())
}

func TestRegisterRequiresFields(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Register(context.Background(), RegisterInput{Email: "x@x.com"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a@x.com")

	_, err := f.auth.Login(ctx, "a@x.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.auth.Login(ctx, "nobody@x.com", "pw123456")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.auth.Register(ctx, RegisterInput{Email: "a@x.com", Password: "pw123456", Name: "Ada"})
	require.NoError(t, err)

	token, err := f.auth.Refresh(ctx, reg.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, reg.AccessToken, token)

	identity, err := f.auth.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, identity.UserID)

	_, err = f.auth.Refresh(ctx, "")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.auth.Refresh(ctx, reg.RefreshToken+"x")
	require.ErrorIs(t, err, ErrForbidden)

	// An access token is not a refresh token.
	_, err = f.auth.Refresh(ctx, reg.AccessToken)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestRefreshTTLSeconds(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, 604800, f.auth.RefreshTTLSeconds())
}

func TestAuthenticateExpiryBoundary(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tokens, err := security.NewTokenService("access-secret-0123456789", "refresh-secret-0123456789",
		security.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	auth := NewAuthService(memory.NewUserStore(), tokens, security.MinHashCost, zerolog.Nop())

	token, err := tokens.IssueAccessToken(security.Identity{UserID: "u1", Role: models.UserRoleAgent})
	require.NoError(t, err)

	now = now.Add(14 * time.Minute)
	_, err = auth.Authenticate(token)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = auth.Authenticate(token)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.ErrorIs(t, err, security.ErrTokenExpired)

	_, err = auth.Authenticate("not-a-token")
	require.ErrorIs(t, err, ErrForbidden)
}
