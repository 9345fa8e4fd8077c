package store

import (
	"context"
	"time"

	"github.com/yanashcherbakova/QueueTubeBot/models"
	"gorm.io/gorm"
)

type ItemStore interface {
	CreateTable() error
	AddSingle(ctx context.Context, playlistID int64, title, url string, durationSec *int64) error
	MarkDone(ctx context.Context, itemID, playlistID, userID int64) (bool, error)
	DB() *gorm.DB
}

type itemStore struct {
	db *gorm.DB
}

func NewItemStore(db *gorm.DB) ItemStore {
	return &itemStore{
		db: db,
	}
}

func (is *itemStore) table() string {
	return "playlist_items"
}

func (is *itemStore) DB() *gorm.DB {
	return is.db
}

func (is *itemStore) CreateTable() error {
	return is.db.AutoMigrate(&models.PlaylistItemDBModel{})
}

// AddSingle appends one video to the playlist at MAX(position)+1 and
// bumps the playlist's cumulative duration. The duration bump runs
// first inside the transaction so the playlist row lock serializes
// concurrent position assignment for the same playlist.
func (is *itemStore) AddSingle(ctx context.Context, playlistID int64, title, url string, durationSec *int64) error {
	var dur int64
	if durationSec != nil {
		dur = *durationSec
	}

	return is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Table("playlists").
			Where("id = ?", playlistID).
			Update("total_duration_sec", gorm.Expr("COALESCE(total_duration_sec, 0) + ?", dur))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var next int
		err := tx.Table(is.table()).
			Where("playlist_id = ?", playlistID).
			Select("COALESCE(MAX(position), 0) + 1").
			Scan(&next).Error
		if err != nil {
			return err
		}

		item := models.PlaylistItemDBModel{
			PlaylistID:  playlistID,
			Position:    &next,
			Title:       title,
			URL:         url,
			DurationSec: durationSec,
			Status:      models.StatusPending,
		}
		return tx.Table(is.table()).Create(&item).Error
	})
}

// MarkDone completes one item, only if it belongs to the given playlist
// and that playlist belongs to the given user.
func (is *itemStore) MarkDone(ctx context.Context, itemID, playlistID, userID int64) (bool, error) {
	res := is.db.WithContext(ctx).Table(is.table()).
		Where("id = ? AND playlist_id = ?", itemID, playlistID).
		Where("playlist_id IN (?)",
			is.db.Table("playlists").Select("id").Where("id = ? AND user_id = ?", playlistID, userID)).
		Updates(map[string]any{
			"status":       models.StatusDone,
			"completed_at": time.Now(),
		})

	return res.RowsAffected > 0, res.Error
}
