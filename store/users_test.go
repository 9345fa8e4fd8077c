package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanashcherbakova/QueueTubeBot/models"
)

func TestEnsureUserIdempotent(t *testing.T) {
	db := newTestDB(t)
	us := NewUserStore(db)
	ctx := context.Background()

	first, err := us.Ensure(ctx, 42, "alice")
	require.NoError(t, err)
	require.NotZero(t, first)

	second, err := us.Ensure(ctx, 42, "alice")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var count int64
	require.NoError(t, db.Table("users").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureUserConflictKeepsDisplayName(t *testing.T) {
	db := newTestDB(t)
	us := NewUserStore(db)
	ctx := context.Background()

	id, err := us.Ensure(ctx, 42, "alice")
	require.NoError(t, err)

	again, err := us.Ensure(ctx, 42, "renamed")
	require.NoError(t, err)
	require.Equal(t, id, again)

	user, err := us.GetByExternalID(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.DisplayName)
}

func TestEnsureUserSeparateIdentities(t *testing.T) {
	db := newTestDB(t)
	us := NewUserStore(db)
	ctx := context.Background()

	a, err := us.Ensure(ctx, 1, "a")
	require.NoError(t, err)
	b, err := us.Ensure(ctx, 2, "b")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGetByExternalIDMissing(t *testing.T) {
	db := newTestDB(t)
	us := NewUserStore(db)

	user, err := us.GetByExternalID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestEnsureDefaultIdempotent(t *testing.T) {
	db := newTestDB(t)
	us := NewUserStore(db)
	ps := NewPlaylistStore(db)
	ctx := context.Background()

	userID, err := us.Ensure(ctx, 42, "alice")
	require.NoError(t, err)

	first, err := ps.EnsureDefault(ctx, userID)
	require.NoError(t, err)
	require.NotZero(t, first)

	for i := 0; i < 3; i++ {
		id, err := ps.EnsureDefault(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, first, id)
	}

	var count int64
	require.NoError(t, db.Table("playlists").
		Where("user_id = ? AND source_ref = ?", userID, models.DefaultSourceRef).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
