package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yanashcherbakova/QueueTubeBot/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "queuetube.db") + "?_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, NewUserStore(db).CreateTable())
	require.NoError(t, NewPlaylistStore(db).CreateTable())
	require.NoError(t, NewItemStore(db).CreateTable())
	return db
}

func intPtr(v int) *int {
	return &v
}

func int64Ptr(v int64) *int64 {
	return &v
}

func seedPlaylist(t *testing.T, db *gorm.DB, userID int64, sourceRef, title string, status models.Status) int64 {
	t.Helper()

	playlist := models.PlaylistDBModel{
		UserID:    userID,
		SourceRef: sourceRef,
		Title:     title,
		Status:    status,
	}
	require.NoError(t, db.Table("playlists").Create(&playlist).Error)
	return playlist.ID
}

func seedItem(t *testing.T, db *gorm.DB, playlistID int64, position *int, durationSec *int64, status models.Status) int64 {
	t.Helper()

	item := models.PlaylistItemDBModel{
		PlaylistID:  playlistID,
		Position:    position,
		Title:       "seeded",
		URL:         "https://www.youtube.com/watch?v=seed",
		DurationSec: durationSec,
		Status:      status,
	}
	require.NoError(t, db.Table("playlist_items").Create(&item).Error)
	return item.ID
}

func itemStatus(t *testing.T, db *gorm.DB, itemID int64) models.Status {
	t.Helper()

	var item models.PlaylistItemDBModel
	require.NoError(t, db.Table("playlist_items").Where("id = ?", itemID).First(&item).Error)
	return item.Status
}
