package placement_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	placement "github.com/placement-labs/placement-backend"
)

func TestVerifierEmailVerification(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := placement.NewRepositoryManager(db)
	mailer := newRecordingMailer()
	verifier := placement.NewVerifier(repo, mailer, nil, time.Hour)

	user, err := repo.Users().Register(ctx, &placement.User{
		Name:         "Vera",
		Email:        "vera@example.com",
		PasswordHash: "digest",
	})
	require.NoError(t, err)
	require.Nil(t, user.EmailVerified)

	t.Run("issue mails the code", func(t *testing.T) {
		token, err := verifier.IssueEmailVerification(ctx, user.Email)
		require.NoError(t, err)
		require.Len(t, token.Code, 6)

		body := mailer.waitForMail(t)
		assert.Contains(t, body, token.Code)
	})

	t.Run("wrong code leaves user unverified", func(t *testing.T) {
		_, err := verifier.ConsumeEmailVerification(ctx, user.Email, "000000")
		assert.ErrorIs(t, err, placement.ErrInvalidCode)

		got, err := repo.Users().GetByEmail(ctx, user.Email)
		require.NoError(t, err)
		assert.Nil(t, got.EmailVerified)

		verified, err := verifier.IsEmailVerified(ctx, user.Email)
		require.NoError(t, err)
		assert.False(t, verified)
	})

	t.Run("correct code verifies and is single use", func(t *testing.T) {
		token, err := verifier.IssueEmailVerification(ctx, user.Email)
		require.NoError(t, err)
		mailer.waitForMail(t)

		got, err := verifier.ConsumeEmailVerification(ctx, user.Email, token.Code)
		require.NoError(t, err)
		assert.NotNil(t, got.EmailVerified)

		verified, err := verifier.IsEmailVerified(ctx, user.Email)
		require.NoError(t, err)
		assert.True(t, verified)

		// the consumed code cannot be replayed
		_, err = verifier.ConsumeEmailVerification(ctx, user.Email, token.Code)
		assert.ErrorIs(t, err, placement.ErrInvalidCode)
	})

	t.Run("unknown email reports not found", func(t *testing.T) {
		_, err := verifier.IssueEmailVerification(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, placement.ErrUserNotFound)

		verified, err := verifier.IsEmailVerified(ctx, "ghost@example.com")
		require.NoError(t, err)
		assert.False(t, verified)
	})
}
