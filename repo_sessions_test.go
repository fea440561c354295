package placement_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	placement "github.com/placement-labs/placement-backend"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	sessions := placement.NewSessionRepository(db)
	userID := uuid.New()

	t.Run("create and find", func(t *testing.T) {
		created, err := sessions.Create(ctx, userID, "token-1", time.Hour)
		require.NoError(t, err)

		found, err := sessions.FindByTokenAndUser(ctx, "token-1", userID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("token scoped to its user", func(t *testing.T) {
		_, err := sessions.FindByTokenAndUser(ctx, "token-1", uuid.New())
		assert.ErrorIs(t, err, placement.ErrRefreshTokenNotFound)
	})

	t.Run("rotate replaces the token in place", func(t *testing.T) {
		session, err := sessions.FindByTokenAndUser(ctx, "token-1", userID)
		require.NoError(t, err)

		require.NoError(t, sessions.Rotate(ctx, session, "token-2", time.Hour))

		rotated, err := sessions.FindByTokenAndUser(ctx, "token-2", userID)
		require.NoError(t, err)
		assert.Equal(t, session.ID, rotated.ID)

		// pre-rotation token no longer matches anything
		_, err = sessions.FindByTokenAndUser(ctx, "token-1", userID)
		assert.ErrorIs(t, err, placement.ErrRefreshTokenNotFound)
	})

	t.Run("delete by token is idempotent", func(t *testing.T) {
		require.NoError(t, sessions.DeleteByToken(ctx, "token-2"))
		require.NoError(t, sessions.DeleteByToken(ctx, "token-2"))

		_, err := sessions.FindByTokenAndUser(ctx, "token-2", userID)
		assert.ErrorIs(t, err, placement.ErrRefreshTokenNotFound)
	})
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	sessions := placement.NewSessionRepository(db)
	userID := uuid.New()

	created, err := sessions.Create(ctx, userID, "stale-token", time.Hour)
	require.NoError(t, err)

	// age the row past its expiry
	_, err = db.NewUpdate().Model((*placement.Session)(nil)).
		Set("expires_at = ?", time.Now().Add(-time.Minute)).
		Where("id = ?", created.ID).
		Exec(ctx)
	require.NoError(t, err)

	// first read reports expiry and deletes the row
	_, err = sessions.FindByTokenAndUser(ctx, "stale-token", userID)
	assert.ErrorIs(t, err, placement.ErrRefreshTokenExpired)

	// second read no longer finds it
	_, err = sessions.FindByTokenAndUser(ctx, "stale-token", userID)
	assert.ErrorIs(t, err, placement.ErrRefreshTokenNotFound)
}

func TestSessionDeleteAllForUser(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	sessions := placement.NewSessionRepository(db)

	userID := uuid.New()
	otherID := uuid.New()

	for _, token := range []string{"dev-a", "dev-b", "dev-c"} {
		_, err := sessions.Create(ctx, userID, token, time.Hour)
		require.NoError(t, err)
	}
	_, err := sessions.Create(ctx, otherID, "other-dev", time.Hour)
	require.NoError(t, err)

	require.NoError(t, sessions.DeleteAllForUser(ctx, userID))

	for _, token := range []string{"dev-a", "dev-b", "dev-c"} {
		_, err := sessions.FindByTokenAndUser(ctx, token, userID)
		assert.ErrorIs(t, err, placement.ErrRefreshTokenNotFound)
	}

	// other users keep their sessions
	_, err = sessions.FindByTokenAndUser(ctx, "other-dev", otherID)
	assert.NoError(t, err)
}
