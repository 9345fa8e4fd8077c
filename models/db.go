package models

import "time"

// DefaultSourceRef marks the implicit per-user playlist that holds
// individually added videos. It is created on first contact and can
// never be deleted.
const (
	DefaultSourceRef = "default_playlist"
	DefaultTitle     = "playlist_for_single_videos"
)

type UserDBModel struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement"`
	ExternalID  int64  `gorm:"column:external_id;uniqueIndex"`
	DisplayName string `gorm:"column:display_name"`
}

func (UserDBModel) TableName() string {
	return "users"
}

type PlaylistDBModel struct {
	ID               int64      `gorm:"column:id;primaryKey;autoIncrement"`
	UserID           int64      `gorm:"column:user_id;uniqueIndex:idx_playlists_user_source"`
	SourceRef        string     `gorm:"column:source_ref;uniqueIndex:idx_playlists_user_source"`
	Title            string     `gorm:"column:title"`
	TotalDurationSec int64      `gorm:"column:total_duration_sec"`
	Status           Status     `gorm:"column:status"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	LastServedAt     *time.Time `gorm:"column:last_served_at"`
	CompletedAt      *time.Time `gorm:"column:completed_at"`
}

func (PlaylistDBModel) TableName() string {
	return "playlists"
}

type PlaylistItemDBModel struct {
	ID          int64            `gorm:"column:id;primaryKey;autoIncrement"`
	PlaylistID  int64            `gorm:"column:playlist_id;index"`
	Playlist    *PlaylistDBModel `gorm:"foreignKey:PlaylistID;constraint:OnDelete:CASCADE"`
	Position    *int             `gorm:"column:position"`
	Title       string           `gorm:"column:title"`
	URL         string           `gorm:"column:url"`
	DurationSec *int64           `gorm:"column:duration_sec"`
	Status      Status           `gorm:"column:status"`
	CompletedAt *time.Time       `gorm:"column:completed_at"`
}

func (PlaylistItemDBModel) TableName() string {
	return "playlist_items"
}
