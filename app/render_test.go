package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yanashcherbakova/QueueTubeBot/models"
	"github.com/yanashcherbakova/QueueTubeBot/store"
)

func TestRenderOverviewEmpty(t *testing.T) {
	assert.Equal(t, "No playlists saved", renderOverview(nil))
}

func TestRenderOverviewEscapesAndFormats(t *testing.T) {
	out := renderOverview([]store.OverviewRow{
		{
			Num:        1,
			Title:      "Tom & Jerry <classics>",
			SourceRef:  "https://www.youtube.com/playlist?list=PLx",
			Status:     models.StatusPending,
			WatchedSec: 150,
		},
		{
			Num:       2,
			SourceRef: "https://www.youtube.com/playlist?list=PLy",
			Status:    models.StatusDone,
		},
	})

	assert.Contains(t, out, "Your playlists:")
	assert.Contains(t, out, "1 Tom &amp; Jerry &lt;classics&gt;")
	assert.Contains(t, out, `<a href="https://www.youtube.com/playlist?list=PLx">link</a>`)
	assert.Contains(t, out, "Watched: 2min")
	assert.Contains(t, out, "2 (noname)")
	assert.Contains(t, out, "Status: done")
	assert.NotContains(t, out, "<classics>")
}

func TestRenderStatsFullyWatched(t *testing.T) {
	// default playlist plus one real playlist, all 360s watched
	out := renderStats(store.Stats{
		Playlists:  2,
		DoneCount:  3,
		DoneSec:    360,
		PendingCnt: 0,
		PendingSec: 0,
	})

	assert.Contains(t, out, "Playlist count: 1")
	assert.Contains(t, out, "Videos done: 3")
	assert.Contains(t, out, "Videos pending: 0")
	assert.Contains(t, out, "⏳ Time pending 0 h 0 min")
	assert.Contains(t, out, "⌛ Time watched: 0 h 6 min")
	assert.Contains(t, out, "⬛⬛⬛⬛⬛⬛(100%)")
}

func TestRenderStatsNoItems(t *testing.T) {
	out := renderStats(store.Stats{Playlists: 1})

	assert.Contains(t, out, "Playlist count: 0")
	assert.Contains(t, out, "⬛⬜⬜⬜⬜⬜(0%)")
}

func TestRenderStatsPartialProgress(t *testing.T) {
	out := renderStats(store.Stats{
		Playlists:  3,
		DoneCount:  1,
		DoneSec:    600,
		PendingCnt: 1,
		PendingSec: 600,
	})

	assert.Contains(t, out, "⬛⬛⬛⬜⬜⬜(50%)")
	assert.Contains(t, out, "⏳ Time pending 0 h 10 min")
}

func TestFormatHoursMinutes(t *testing.T) {
	cases := []struct {
		sec  int64
		want string
	}{
		{0, "0 h 0 min"},
		{59, "0 h 0 min"},
		{360, "0 h 6 min"},
		{3600, "1 h 0 min"},
		{3905, "1 h 5 min"},
		{86400, "24 h 0 min"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, formatHoursMinutes(tc.sec), "sec=%d", tc.sec)
	}
}

func TestProgressBlocks(t *testing.T) {
	cases := []struct {
		pct  int64
		want string
	}{
		{0, "⬛⬜⬜⬜⬜⬜"},
		{19, "⬛⬜⬜⬜⬜⬜"},
		{20, "⬛⬛⬜⬜⬜⬜"},
		{40, "⬛⬛⬛⬜⬜⬜"},
		{60, "⬛⬛⬛⬛⬜⬜"},
		{80, "⬛⬛⬛⬛⬛⬜"},
		{99, "⬛⬛⬛⬛⬛⬜"},
		{100, "⬛⬛⬛⬛⬛⬛"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, progressBlocks(tc.pct), "pct=%d", tc.pct)
	}
}
