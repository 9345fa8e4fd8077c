package store

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/yanashcherbakova/QueueTubeBot/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pendingExpr matches rows whose stored status normalizes to pending,
// including legacy null/blank values. Every status comparison in this
// package goes through this or doneExpr; column names are fixed at the
// call sites, never caller-supplied.
func pendingExpr(col string) string {
	return fmt.Sprintf("COALESCE(TRIM(LOWER(%s)), '') IN ('', 'pending')", col)
}

func doneExpr(col string) string {
	return fmt.Sprintf("TRIM(LOWER(COALESCE(%s, ''))) = 'done'", col)
}

// RestartResult reports what a restart actually changed. PlaylistID is
// zero when the playlist row itself was not reset (already pending, or
// not found); ItemsReset is reported regardless.
type RestartResult struct {
	PlaylistID int64
	ItemsReset int64
	Message    string
}

type DeletedPlaylist struct {
	ID        int64
	Title     string
	SourceRef string
}

type OverviewRow struct {
	PlaylistID int64
	SourceRef  string
	Title      string
	Status     models.Status
	WatchedSec int64
	Num        int
}

type Stats struct {
	Playlists  int64
	DoneCount  int64
	DoneSec    int64
	PendingCnt int64
	PendingSec int64
}

type PlaylistStore interface {
	CreateTable() error
	EnsureDefault(ctx context.Context, userID int64) (int64, error)
	CreateWithItems(ctx context.Context, playlist models.PlaylistDBModel, items []models.PlaylistItemDBModel) (int64, error)
	FindNextPending(ctx context.Context, playlistID, userID int64) (*models.PlaylistItemDBModel, error)
	MarkDoneIfSettled(ctx context.Context, playlistID, userID int64) (bool, error)
	SetPending(ctx context.Context, playlistID, userID int64) (bool, error)
	TouchLastServed(ctx context.Context, playlistID, userID int64) (bool, error)
	Restart(ctx context.Context, playlistID, userID int64) (RestartResult, error)
	Delete(ctx context.Context, playlistID, userID int64) (*DeletedPlaylist, error)
	ResolvePosition(ctx context.Context, userID int64, position int) (int64, error)
	PickRandomReady(ctx context.Context, userID int64) (int64, error)
	Overview(ctx context.Context, userID int64) ([]OverviewRow, error)
	UserStats(ctx context.Context, userID int64) (Stats, error)
	DB() *gorm.DB
}

type playlistStore struct {
	db *gorm.DB
}

func NewPlaylistStore(db *gorm.DB) PlaylistStore {
	return &playlistStore{
		db: db,
	}
}

func (ps *playlistStore) table() string {
	return "playlists"
}

func (ps *playlistStore) DB() *gorm.DB {
	return ps.db
}

func (ps *playlistStore) CreateTable() error {
	return ps.db.Table(ps.table()).AutoMigrate(&models.PlaylistDBModel{})
}

// EnsureDefault upserts the sentinel default playlist for the user and
// returns its id. Same conflict-then-fetch pattern as UserStore.Ensure.
func (ps *playlistStore) EnsureDefault(ctx context.Context, userID int64) (int64, error) {
	playlist := models.PlaylistDBModel{
		UserID:    userID,
		SourceRef: models.DefaultSourceRef,
		Title:     models.DefaultTitle,
		Status:    models.StatusPending,
	}

	res := ps.db.WithContext(ctx).Table(ps.table()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "source_ref"}},
			DoNothing: true,
		}).
		Create(&playlist)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		return playlist.ID, nil
	}

	var existing models.PlaylistDBModel
	err := ps.db.WithContext(ctx).Table(ps.table()).
		Where("user_id = ? AND source_ref = ?", userID, models.DefaultSourceRef).
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, models.ErrUpsertRace
		}
		return 0, err
	}
	return existing.ID, nil
}

// CreateWithItems inserts a playlist and all its items in one
// transaction. Returns 0 when a playlist with the same (user, source)
// already exists; no items are written in that case.
func (ps *playlistStore) CreateWithItems(ctx context.Context, playlist models.PlaylistDBModel, items []models.PlaylistItemDBModel) (int64, error) {
	if playlist.Status == "" {
		playlist.Status = models.StatusPending
	}

	var id int64
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Table(ps.table()).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "source_ref"}},
				DoNothing: true,
			}).
			Create(&playlist)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		for i := range items {
			items[i].PlaylistID = playlist.ID
			if items[i].Status == "" {
				items[i].Status = models.StatusPending
			}
		}
		if len(items) > 0 {
			if err := tx.Table("playlist_items").CreateInBatches(items, len(items)).Error; err != nil {
				return err
			}
		}

		id = playlist.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// FindNextPending returns the single next pending item of the playlist,
// scoped to the owning user: position ascending with nulls first, then
// id ascending. Nil when nothing is pending.
func (ps *playlistStore) FindNextPending(ctx context.Context, playlistID, userID int64) (*models.PlaylistItemDBModel, error) {
	var item models.PlaylistItemDBModel
	err := ps.db.WithContext(ctx).Table("playlist_items").
		Select("playlist_items.*").
		Joins("JOIN playlists ON playlists.id = playlist_items.playlist_id").
		Where("playlist_items.playlist_id = ? AND playlists.user_id = ?", playlistID, userID).
		Where(pendingExpr("playlist_items.status")).
		Order("playlist_items.position ASC NULLS FIRST, playlist_items.id ASC").
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &item, nil
}

// MarkDoneIfSettled completes the playlist only if it has at least one
// item and none of them is still pending. A playlist is never marked
// done while empty.
func (ps *playlistStore) MarkDoneIfSettled(ctx context.Context, playlistID, userID int64) (bool, error) {
	res := ps.db.WithContext(ctx).Table(ps.table()).
		Where("id = ? AND user_id = ?", playlistID, userID).
		Where("EXISTS (SELECT 1 FROM playlist_items WHERE playlist_items.playlist_id = playlists.id)").
		Where("NOT EXISTS (SELECT 1 FROM playlist_items WHERE playlist_items.playlist_id = playlists.id AND " + pendingExpr("playlist_items.status") + ")").
		Updates(map[string]any{
			"status":       models.StatusDone,
			"completed_at": time.Now(),
		})

	return res.RowsAffected > 0, res.Error
}

// SetPending flips the playlist back to pending when it still has a
// pending item, clearing its completion time. Used after a single video
// lands in an already-finished default playlist.
func (ps *playlistStore) SetPending(ctx context.Context, playlistID, userID int64) (bool, error) {
	res := ps.db.WithContext(ctx).Table(ps.table()).
		Where("id = ? AND user_id = ?", playlistID, userID).
		Where("EXISTS (SELECT 1 FROM playlist_items WHERE playlist_items.playlist_id = playlists.id AND " + pendingExpr("playlist_items.status") + ")").
		Updates(map[string]any{
			"status":       models.StatusPending,
			"completed_at": nil,
		})

	return res.RowsAffected > 0, res.Error
}

func (ps *playlistStore) TouchLastServed(ctx context.Context, playlistID, userID int64) (bool, error) {
	res := ps.db.WithContext(ctx).Table(ps.table()).
		Where("id = ? AND user_id = ?", playlistID, userID).
		Update("last_served_at", time.Now())

	return res.RowsAffected > 0, res.Error
}

// Restart resets every non-pending item to pending and then resets the
// playlist itself if it was not already pending, all in one
// transaction. The item reset count is reported regardless of the
// playlist-level outcome.
func (ps *playlistStore) Restart(ctx context.Context, playlistID, userID int64) (RestartResult, error) {
	var result RestartResult

	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resItems := tx.Table("playlist_items").
			Where("playlist_id IN (?)",
				tx.Table(ps.table()).Select("id").Where("id = ? AND user_id = ?", playlistID, userID)).
			Where("NOT (" + pendingExpr("status") + ")").
			Updates(map[string]any{
				"status":       models.StatusPending,
				"completed_at": nil,
			})
		if resItems.Error != nil {
			return resItems.Error
		}
		result.ItemsReset = resItems.RowsAffected

		resPlaylist := tx.Table(ps.table()).
			Where("id = ? AND user_id = ?", playlistID, userID).
			Where("NOT (" + pendingExpr("status") + ")").
			Updates(map[string]any{
				"status":         models.StatusPending,
				"completed_at":   nil,
				"last_served_at": nil,
			})
		if resPlaylist.Error != nil {
			return resPlaylist.Error
		}
		if resPlaylist.RowsAffected > 0 {
			result.PlaylistID = playlistID
		}
		return nil
	})
	if err != nil {
		return RestartResult{}, err
	}

	switch {
	case result.PlaylistID != 0:
		result.Message = fmt.Sprintf("Playlist #%d restarted.\nItems reset: %d.", result.PlaylistID, result.ItemsReset)
	case result.ItemsReset > 0:
		result.Message = fmt.Sprintf("Items reset: %d.\nPlaylist status was already 'pending'.", result.ItemsReset)
	default:
		result.Message = "Playlist not found or doesn't belong to you."
	}
	return result, nil
}

// Delete removes the playlist if it is owned by the user and is not the
// default one, returning the deleted identity for confirmation
// messaging. Items go away with the row via the cascade on
// playlist_items.playlist_id.
func (ps *playlistStore) Delete(ctx context.Context, playlistID, userID int64) (*DeletedPlaylist, error) {
	var deleted *DeletedPlaylist

	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var playlist models.PlaylistDBModel
		err := tx.Table(ps.table()).
			Where("id = ? AND user_id = ? AND source_ref <> ?", playlistID, userID, models.DefaultSourceRef).
			First(&playlist).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		res := tx.Table(ps.table()).
			Where("id = ? AND user_id = ? AND source_ref <> ?", playlistID, userID, models.DefaultSourceRef).
			Delete(&models.PlaylistDBModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		deleted = &DeletedPlaylist{
			ID:        playlist.ID,
			Title:     playlist.Title,
			SourceRef: playlist.SourceRef,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// ResolvePosition translates a 1-based display position over the user's
// non-default playlists (ordered by id) into the internal id. Fails
// closed: out-of-range positions yield 0, never an error.
func (ps *playlistStore) ResolvePosition(ctx context.Context, userID int64, position int) (int64, error) {
	if position < 1 {
		return 0, nil
	}

	var ids []int64
	res := ps.db.WithContext(ctx).Table(ps.table()).
		Where("user_id = ? AND source_ref <> ?", userID, models.DefaultSourceRef).
		Order("id ASC").
		Offset(position - 1).
		Limit(1).
		Pluck("id", &ids)
	if res.Error != nil {
		return 0, res.Error
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return ids[0], nil
}

// PickRandomReady selects uniformly at random among the user's
// playlists that still have at least one pending item. 0 when none.
func (ps *playlistStore) PickRandomReady(ctx context.Context, userID int64) (int64, error) {
	var ids []int64
	res := ps.db.WithContext(ctx).Table(ps.table()).
		Where("user_id = ?", userID).
		Where("EXISTS (SELECT 1 FROM playlist_items WHERE playlist_items.playlist_id = playlists.id AND " + pendingExpr("playlist_items.status") + ")").
		Pluck("id", &ids)
	if res.Error != nil {
		return 0, res.Error
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return ids[rand.Intn(len(ids))], nil
}

// Overview returns one row per non-default playlist, ordered by id and
// numbered from 1, with total watched seconds summed over done items.
func (ps *playlistStore) Overview(ctx context.Context, userID int64) ([]OverviewRow, error) {
	var rows []OverviewRow
	err := ps.db.WithContext(ctx).Table(ps.table()).
		Select("playlists.id AS playlist_id, playlists.source_ref, playlists.title, playlists.status, "+
			"COALESCE(SUM(CASE WHEN "+doneExpr("playlist_items.status")+" THEN COALESCE(playlist_items.duration_sec, 0) ELSE 0 END), 0) AS watched_sec").
		Joins("LEFT JOIN playlist_items ON playlist_items.playlist_id = playlists.id").
		Where("playlists.user_id = ? AND playlists.source_ref <> ?", userID, models.DefaultSourceRef).
		Group("playlists.id, playlists.source_ref, playlists.title, playlists.status").
		Order("playlists.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].Num = i + 1
	}
	return rows, nil
}

// UserStats aggregates done/pending item counts and durations across
// all playlists of the user, plus the raw playlist count (the default
// playlist included; presentation subtracts it).
func (ps *playlistStore) UserStats(ctx context.Context, userID int64) (Stats, error) {
	var stats Stats

	err := ps.db.WithContext(ctx).Table(ps.table()).
		Where("user_id = ?", userID).
		Count(&stats.Playlists).Error
	if err != nil {
		return Stats{}, err
	}

	agg := struct {
		DoneCount  int64
		DoneSec    int64
		PendingCnt int64
		PendingSec int64
	}{}
	err = ps.db.WithContext(ctx).Table(ps.table()).
		Select("COALESCE(SUM(CASE WHEN "+doneExpr("playlist_items.status")+" THEN 1 ELSE 0 END), 0) AS done_count, "+
			"COALESCE(SUM(CASE WHEN "+doneExpr("playlist_items.status")+" THEN COALESCE(playlist_items.duration_sec, 0) ELSE 0 END), 0) AS done_sec, "+
			"COALESCE(SUM(CASE WHEN "+pendingExpr("playlist_items.status")+" THEN 1 ELSE 0 END), 0) AS pending_cnt, "+
			"COALESCE(SUM(CASE WHEN "+pendingExpr("playlist_items.status")+" THEN COALESCE(playlist_items.duration_sec, 0) ELSE 0 END), 0) AS pending_sec").
		Joins("JOIN playlist_items ON playlist_items.playlist_id = playlists.id").
		Where("playlists.user_id = ?", userID).
		Scan(&agg).Error
	if err != nil {
		return Stats{}, err
	}

	stats.DoneCount = agg.DoneCount
	stats.DoneSec = agg.DoneSec
	stats.PendingCnt = agg.PendingCnt
	stats.PendingSec = agg.PendingSec
	return stats, nil
}
