package app

import (
	"fmt"
	"html"
	"strings"

	"github.com/yanashcherbakova/QueueTubeBot/store"
)

// renderOverview formats the numbered playlist list for Telegram HTML
// parse mode. Everything user-supplied is escaped.
func renderOverview(rows []store.OverviewRow) string {
	if len(rows) == 0 {
		return "No playlists saved"
	}

	lines := []string{"Your playlists:\n"}
	for _, row := range rows {
		title := row.Title
		if title == "" {
			title = "(noname)"
		}
		lines = append(lines, fmt.Sprintf(
			"%d %s\n🔗 <a href=\"%s\">link</a>\nStatus: %s\nWatched: %dmin\n",
			row.Num,
			html.EscapeString(title),
			html.EscapeString(row.SourceRef),
			html.EscapeString(string(row.Status)),
			row.WatchedSec/60,
		))
	}
	return strings.Join(lines, "\n")
}

func renderStats(s store.Stats) string {
	totalSec := s.DoneSec + s.PendingSec
	var donePct int64
	if totalSec > 0 {
		donePct = s.DoneSec * 100 / totalSec
	}

	// the displayed count excludes the implicit default playlist
	playlists := s.Playlists - 1
	if playlists < 0 {
		playlists = 0
	}

	return fmt.Sprintf(
		"User statistic:\n\nPlaylist count: %d\nVideos done: %d\nVideos pending: %d\n\n"+
			"⏳ Time pending %s\n⌛ Time watched: %s\n\nProgress: %s(%d%%)",
		playlists,
		s.DoneCount,
		s.PendingCnt,
		formatHoursMinutes(s.PendingSec),
		formatHoursMinutes(s.DoneSec),
		progressBlocks(donePct),
		donePct,
	)
}

func formatHoursMinutes(totalSec int64) string {
	mins := totalSec / 60
	hrs := mins / 60
	return fmt.Sprintf("%d h %d min", hrs, mins-hrs*60)
}

// progressBlocks quantizes a completion percentage into six blocks,
// rounding down to the nearest 20% step.
func progressBlocks(pct int64) string {
	switch {
	case pct == 100:
		return "⬛⬛⬛⬛⬛⬛"
	case pct >= 80:
		return "⬛⬛⬛⬛⬛⬜"
	case pct >= 60:
		return "⬛⬛⬛⬛⬜⬜"
	case pct >= 40:
		return "⬛⬛⬛⬜⬜⬜"
	case pct >= 20:
		return "⬛⬛⬜⬜⬜⬜"
	default:
		return "⬛⬜⬜⬜⬜⬜"
	}
}
