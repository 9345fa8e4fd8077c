package models

import "errors"

var (
	ErrNotYouTubeLink  = errors.New("not a youtube link")
	ErrUnknownLinkKind = errors.New("link is neither a video nor a playlist")
	ErrVideoNotFound   = errors.New("video not found or unavailable")

	// ErrUpsertRace means an insert hit a conflict but the fallback
	// lookup found no row either. Retryable.
	ErrUpsertRace = errors.New("upsert returned no id and fallback lookup found nothing")
)
