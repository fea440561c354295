package placement_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	placement "github.com/placement-labs/placement-backend"
)

func newTestAuthenticator(t *testing.T) (*placement.Authenticator, placement.RepositoryManager) {
	t.Helper()
	db := newTestDB(t)
	repo := placement.NewRepositoryManager(db)
	tokens := placement.NewTokenService(newTestConfig(), nil)
	return placement.NewAuthenticator(repo, tokens, nil), repo
}

func TestAuthenticatorRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	auther, repo := newTestAuthenticator(t)

	result, err := auther.Register(ctx, "Reg User", "reg@example.com", "Passw0rd!", "")
	require.NoError(t, err)
	require.NotNil(t, result.User)
	assert.Equal(t, placement.RoleStudent, result.User.Role)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)

	t.Run("registration opens a session", func(t *testing.T) {
		session, err := repo.Sessions().FindByTokenAndUser(ctx, result.Tokens.RefreshToken, result.User.ID)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, session.UserID)
	})

	t.Run("registration links a credentials account", func(t *testing.T) {
		accounts, err := repo.Accounts().FindByUserID(ctx, result.User.ID)
		require.NoError(t, err)
		require.Len(t, accounts, 1)
		assert.Equal(t, placement.LoginMethodCredentials, accounts[0].Provider)
	})

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		_, err := auther.Register(ctx, "Reg User", "reg@example.com", "Passw0rd!", "")
		assert.ErrorIs(t, err, placement.ErrEmailTaken)
	})

	t.Run("login succeeds and stamps last login", func(t *testing.T) {
		login, err := auther.Login(ctx, "reg@example.com", "Passw0rd!")
		require.NoError(t, err)
		assert.NotNil(t, login.User.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := auther.Login(ctx, "reg@example.com", "WrongPass1!")
		assert.ErrorIs(t, err, placement.ErrInvalidCredentials)
	})

	t.Run("unknown email reads as invalid credentials", func(t *testing.T) {
		_, err := auther.Login(ctx, "ghost@example.com", "Passw0rd!")
		assert.ErrorIs(t, err, placement.ErrInvalidCredentials)
	})

	t.Run("blocked account cannot log in", func(t *testing.T) {
		require.NoError(t, repo.Users().SetBlocked(ctx, result.User.ID, true))
		_, err := auther.Login(ctx, "reg@example.com", "Passw0rd!")
		assert.ErrorIs(t, err, placement.ErrAccountBlocked)
		require.NoError(t, repo.Users().SetBlocked(ctx, result.User.ID, false))
	})

	t.Run("deleted account cannot log in", func(t *testing.T) {
		require.NoError(t, repo.Users().SoftDelete(ctx, result.User.ID))
		_, err := auther.Login(ctx, "reg@example.com", "Passw0rd!")
		assert.ErrorIs(t, err, placement.ErrAccountDeleted)
	})
}

func TestAuthenticatorRefreshRotation(t *testing.T) {
	ctx := context.Background()
	auther, _ := newTestAuthenticator(t)

	result, err := auther.Register(ctx, "Rot User", "rot@example.com", "Passw0rd!", "")
	require.NoError(t, err)

	refreshed, err := auther.Refresh(ctx, result.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, result.Tokens.RefreshToken, refreshed.Tokens.RefreshToken)

	t.Run("old refresh token is dead after rotation", func(t *testing.T) {
		_, err := auther.Refresh(ctx, result.Tokens.RefreshToken)
		assert.ErrorIs(t, err, placement.ErrRefreshTokenNotFound)
	})

	t.Run("rotated token refreshes again", func(t *testing.T) {
		again, err := auther.Refresh(ctx, refreshed.Tokens.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, refreshed.Tokens.RefreshToken, again.Tokens.RefreshToken)
	})

	t.Run("garbage token rejected before any lookup", func(t *testing.T) {
		_, err := auther.Refresh(ctx, "not-a-jwt")
		assert.Error(t, err)
	})

	t.Run("logout kills the session", func(t *testing.T) {
		login, err := auther.Login(ctx, "rot@example.com", "Passw0rd!")
		require.NoError(t, err)

		require.NoError(t, auther.Logout(ctx, login.Tokens.RefreshToken))
		_, err = auther.Refresh(ctx, login.Tokens.RefreshToken)
		assert.ErrorIs(t, err, placement.ErrRefreshTokenNotFound)
	})

	t.Run("logout all clears every device", func(t *testing.T) {
		a, err := auther.Login(ctx, "rot@example.com", "Passw0rd!")
		require.NoError(t, err)
		b, err := auther.Login(ctx, "rot@example.com", "Passw0rd!")
		require.NoError(t, err)

		require.NoError(t, auther.LogoutAll(ctx, a.User.ID))

		_, err = auther.Refresh(ctx, a.Tokens.RefreshToken)
		assert.ErrorIs(t, err, placement.ErrRefreshTokenNotFound)
		_, err = auther.Refresh(ctx, b.Tokens.RefreshToken)
		assert.ErrorIs(t, err, placement.ErrRefreshTokenNotFound)
	})
}

func TestAuthenticatorGoogleRegister(t *testing.T) {
	ctx := context.Background()
	auther, repo := newTestAuthenticator(t)

	profile := placement.GoogleProfile{
		Name:          "Goo Gle",
		Email:         "goo@example.com",
		Image:         "https://example.com/avatar.png",
		ProviderID:    "google-oauth2|12345",
		AccessToken:   "ya29.token",
		EmailVerified: true,
	}

	user, account, err := auther.GoogleRegister(ctx, profile)
	require.NoError(t, err)
	assert.Equal(t, placement.LoginMethodGoogle, user.LoginMethod)
	assert.NotNil(t, user.EmailVerified)
	assert.Equal(t, placement.LoginMethodGoogle, account.Provider)
	assert.Equal(t, profile.ProviderID, account.ProviderID)

	t.Run("repeat call is idempotent", func(t *testing.T) {
		again, sameAccount, err := auther.GoogleRegister(ctx, profile)
		require.NoError(t, err)
		assert.Equal(t, user.ID, again.ID)
		assert.Equal(t, account.ID, sameAccount.ID)

		accounts, err := repo.Accounts().FindByUserID(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, accounts, 1)
	})

	t.Run("google user cannot use a password", func(t *testing.T) {
		_, err := auther.Login(ctx, "goo@example.com", "anything1!")
		assert.ErrorIs(t, err, placement.ErrInvalidCredentials)
	})
}
