package youtube

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/yanashcherbakova/QueueTubeBot/models"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

type LinkKind string

const (
	KindVideo    LinkKind = "video"
	KindPlaylist LinkKind = "playlist"
	KindUnknown  LinkKind = "unknown"
)

var linkRE = regexp.MustCompile(`(?i)^https?://(?:www\.)?(?:youtube\.com|youtu\.be)/\S+$`)

// IsYouTubeLink reports whether the text looks like a YouTube URL.
func IsYouTubeLink(text string) bool {
	return linkRE.MatchString(strings.TrimSpace(text))
}

type Video struct {
	Title       string
	URL         string
	DurationSec *int64
}

type PlaylistItem struct {
	Position    int
	Title       string
	URL         string
	DurationSec *int64
}

type Playlist struct {
	Title            string
	URL              string
	TotalDurationSec int64
	Items            []PlaylistItem
}

// Classifier resolves a YouTube URL into a typed extraction result.
// Classify is pure URL-shape inspection; the Extract calls hit the
// Data API.
type Classifier interface {
	Classify(rawURL string) LinkKind
	ExtractVideo(ctx context.Context, rawURL string) (*Video, error)
	ExtractPlaylist(ctx context.Context, rawURL string) (*Playlist, error)
}

type apiClassifier struct {
	svc *ytapi.Service
}

func NewClassifier(ctx context.Context, apiKey string) (Classifier, error) {
	svc, err := ytapi.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &apiClassifier{svc: svc}, nil
}

// Classify decides video vs playlist from the URL alone. A link
// carrying a list parameter counts as a playlist even when it also
// points at a video, matching how the queue treats mixed links.
func (c *apiClassifier) Classify(rawURL string) LinkKind {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return KindUnknown
	}

	if playlistIDFromURL(u) != "" {
		return KindPlaylist
	}
	if videoIDFromURL(u) != "" {
		return KindVideo
	}
	return KindUnknown
}

func (c *apiClassifier) ExtractVideo(ctx context.Context, rawURL string) (*Video, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrNotYouTubeLink, rawURL)
	}
	id := videoIDFromURL(u)
	if id == "" {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownLinkKind, rawURL)
	}

	resp, err := c.svc.Videos.List([]string{"snippet", "contentDetails"}).Id(id).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("videos.list failed for %s: %w", id, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrVideoNotFound, id)
	}

	item := resp.Items[0]
	video := &Video{
		Title: item.Snippet.Title,
		URL:   canonicalVideoURL(id),
	}
	if item.ContentDetails != nil {
		if sec, ok := parseISO8601Duration(item.ContentDetails.Duration); ok {
			video.DurationSec = &sec
		}
	}
	return video, nil
}

// ExtractPlaylist walks the playlist pages, drops unavailable entries
// and resolves per-item durations with batched videos.list calls.
// Positions come from the playlist itself, so filtered entries leave
// gaps instead of renumbering the rest.
func (c *apiClassifier) ExtractPlaylist(ctx context.Context, rawURL string) (*Playlist, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrNotYouTubeLink, rawURL)
	}
	playlistID := playlistIDFromURL(u)
	if playlistID == "" {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownLinkKind, rawURL)
	}

	meta, err := c.svc.Playlists.List([]string{"snippet"}).Id(playlistID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("playlists.list failed for %s: %w", playlistID, err)
	}
	if len(meta.Items) == 0 {
		return nil, fmt.Errorf("%w: playlist %s", models.ErrVideoNotFound, playlistID)
	}

	playlist := &Playlist{
		Title: meta.Items[0].Snippet.Title,
		URL:   rawURL,
	}

	videoIDs := []string{}
	pageToken := ""
	for {
		call := c.svc.PlaylistItems.List([]string{"snippet", "status"}).
			PlaylistId(playlistID).
			MaxResults(50)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		page, err := call.Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("playlistItems.list failed for %s: %w", playlistID, err)
		}

		for _, entry := range page.Items {
			if entry.Snippet == nil || entry.Snippet.ResourceId == nil {
				continue
			}
			if !entryAvailable(entry) {
				continue
			}

			videoID := entry.Snippet.ResourceId.VideoId
			playlist.Items = append(playlist.Items, PlaylistItem{
				Position: int(entry.Snippet.Position) + 1,
				Title:    entry.Snippet.Title,
				URL:      canonicalVideoURL(videoID),
			})
			videoIDs = append(videoIDs, videoID)
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	durations, err := c.videoDurations(ctx, videoIDs)
	if err != nil {
		return nil, err
	}
	for i := range playlist.Items {
		if sec, ok := durations[videoIDs[i]]; ok {
			d := sec
			playlist.Items[i].DurationSec = &d
			playlist.TotalDurationSec += sec
		}
	}

	return playlist, nil
}

// videoDurations resolves durations for up to 50 ids per videos.list
// call, the API's batch limit.
func (c *apiClassifier) videoDurations(ctx context.Context, videoIDs []string) (map[string]int64, error) {
	durations := make(map[string]int64, len(videoIDs))

	for start := 0; start < len(videoIDs); start += 50 {
		end := start + 50
		if end > len(videoIDs) {
			end = len(videoIDs)
		}

		resp, err := c.svc.Videos.List([]string{"contentDetails"}).
			Id(strings.Join(videoIDs[start:end], ",")).
			Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("videos.list durations failed: %w", err)
		}

		for _, item := range resp.Items {
			if item.ContentDetails == nil {
				continue
			}
			if sec, ok := parseISO8601Duration(item.ContentDetails.Duration); ok {
				durations[item.Id] = sec
			}
		}
	}

	return durations, nil
}

// entryAvailable filters out private, deleted and otherwise gated
// playlist entries before they reach the queue.
func entryAvailable(entry *ytapi.PlaylistItem) bool {
	if entry.Status != nil {
		switch entry.Status.PrivacyStatus {
		case "private", "privacyStatusUnspecified":
			return false
		}
	}

	title := strings.ToLower(entry.Snippet.Title)
	if strings.HasPrefix(title, "[private") || strings.HasPrefix(title, "[deleted]") {
		return false
	}
	return entry.Snippet.ResourceId.VideoId != ""
}

func canonicalVideoURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func playlistIDFromURL(u *url.URL) string {
	if !isYouTubeHost(u.Host) {
		return ""
	}
	return u.Query().Get("list")
}

func videoIDFromURL(u *url.URL) string {
	host := strings.ToLower(u.Host)
	if host == "youtu.be" {
		return strings.Trim(u.Path, "/")
	}
	if !isYouTubeHost(u.Host) {
		return ""
	}

	switch {
	case u.Path == "/watch":
		return u.Query().Get("v")
	case strings.HasPrefix(u.Path, "/shorts/"),
		strings.HasPrefix(u.Path, "/live/"),
		strings.HasPrefix(u.Path, "/embed/"):
		parts := strings.SplitN(strings.Trim(u.Path, "/"), "/", 2)
		if len(parts) == 2 {
			return parts[1]
		}
	}
	return ""
}

func isYouTubeHost(host string) bool {
	host = strings.ToLower(host)
	return host == "youtube.com" || host == "www.youtube.com" || host == "m.youtube.com" || host == "youtu.be"
}
