package models

import "strings"

// Status is the lifecycle state of a playlist or a playlist item.
// Playlists only ever hold pending or done; items can additionally be
// skipped. Rows written by this code always carry a canonical value,
// ParseStatus is the single place where legacy free-text values are
// normalized.
type Status string

const (
	StatusPending Status = "pending"
	StatusSkipped Status = "skipped"
	StatusDone    Status = "done"
)

// ParseStatus normalizes a raw stored status. Null, blank and
// unrecognized values all read as pending.
func ParseStatus(raw string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusSkipped:
		return StatusSkipped
	case StatusDone:
		return StatusDone
	default:
		return StatusPending
	}
}
