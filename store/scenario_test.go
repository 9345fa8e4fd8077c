package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanashcherbakova/QueueTubeBot/models"
)

// Walks the full watch loop: a three-video playlist is queued, served
// in order and settles only after the last video completes.
func TestWatchQueueLifecycle(t *testing.T) {
	db := newTestDB(t)
	us := NewUserStore(db)
	ps := NewPlaylistStore(db)
	is := NewItemStore(db)
	ctx := context.Background()

	userID, err := us.Ensure(ctx, 42, "alice")
	require.NoError(t, err)
	_, err = ps.EnsureDefault(ctx, userID)
	require.NoError(t, err)

	playlistID, err := ps.CreateWithItems(ctx, models.PlaylistDBModel{
		UserID:           userID,
		SourceRef:        "https://www.youtube.com/playlist?list=PLlife",
		Title:            "lifecycle",
		TotalDurationSec: 360,
	}, []models.PlaylistItemDBModel{
		{Position: intPtr(1), Title: "v1", URL: "https://www.youtube.com/watch?v=v1", DurationSec: int64Ptr(60)},
		{Position: intPtr(2), Title: "v2", URL: "https://www.youtube.com/watch?v=v2", DurationSec: int64Ptr(120)},
		{Position: intPtr(3), Title: "v3", URL: "https://www.youtube.com/watch?v=v3", DurationSec: int64Ptr(180)},
	})
	require.NoError(t, err)
	require.NotZero(t, playlistID)

	picked, err := ps.PickRandomReady(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, playlistID, picked)

	wantOrder := []string{"v1", "v2", "v3"}
	for i, title := range wantOrder {
		item, err := ps.FindNextPending(ctx, playlistID, userID)
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, title, item.Title)

		ok, err := is.MarkDone(ctx, item.ID, playlistID, userID)
		require.NoError(t, err)
		require.True(t, ok)

		touched, err := ps.TouchLastServed(ctx, playlistID, userID)
		require.NoError(t, err)
		assert.True(t, touched)

		settled, err := ps.MarkDoneIfSettled(ctx, playlistID, userID)
		require.NoError(t, err)
		assert.Equal(t, i == len(wantOrder)-1, settled, "after item %d", i+1)
	}

	item, err := ps.FindNextPending(ctx, playlistID, userID)
	require.NoError(t, err)
	assert.Nil(t, item)

	stats, err := ps.UserStats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Playlists)
	assert.Equal(t, int64(3), stats.DoneCount)
	assert.Equal(t, int64(360), stats.DoneSec)
	assert.Zero(t, stats.PendingCnt)
	assert.Zero(t, stats.PendingSec)

	// a restart brings everything back
	result, err := ps.Restart(ctx, playlistID, userID)
	require.NoError(t, err)
	assert.Equal(t, playlistID, result.PlaylistID)
	assert.Equal(t, int64(3), result.ItemsReset)

	item, err = ps.FindNextPending(ctx, playlistID, userID)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "v1", item.Title)
}

// Adding a single video transparently lands in the default playlist at
// position 1 and bumps its duration.
func TestSingleVideoIntoFreshDefault(t *testing.T) {
	db := newTestDB(t)
	us := NewUserStore(db)
	ps := NewPlaylistStore(db)
	is := NewItemStore(db)
	ctx := context.Background()

	userID, err := us.Ensure(ctx, 43, "bob")
	require.NoError(t, err)
	defaultID, err := ps.EnsureDefault(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, is.AddSingle(ctx, defaultID, "lone video", "https://www.youtube.com/watch?v=solo", int64Ptr(240)))

	item, err := ps.FindNextPending(ctx, defaultID, userID)
	require.NoError(t, err)
	require.NotNil(t, item)
	require.NotNil(t, item.Position)
	assert.Equal(t, 1, *item.Position)
	assert.Equal(t, "lone video", item.Title)

	var playlist models.PlaylistDBModel
	require.NoError(t, db.Table("playlists").Where("id = ?", defaultID).First(&playlist).Error)
	assert.Equal(t, int64(240), playlist.TotalDurationSec)
}
