package domain

import (
	"strings"
	"time"
)

// StreamKind distinguishes single videos from playlists
type StreamKind string

const (
	KindVideo    StreamKind = "video"
	KindPlaylist StreamKind = "playlist"
)

// PlaylistIDPrefix namespaces playlist entry IDs. ':' is outside the YouTube
// ID charset so a playlist entry can never collide with a video entry.
const PlaylistIDPrefix = "playlist:"

// StreamEntry is one user-curated reference to a YouTube video or playlist
type StreamEntry struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	URL        string     `json:"url"`
	Kind       StreamKind `json:"kind"`
	PlaylistID string     `json:"playlist_id,omitempty"`

	// Refresh state (playlists only)
	CachedLatestVideo *VideoRef  `json:"cached_latest_video,omitempty"`
	CacheTimestamp    *time.Time `json:"cache_timestamp,omitempty"`
}

// PlaylistEntryID returns the registry ID for a playlist
func PlaylistEntryID(playlistID string) string {
	return PlaylistIDPrefix + playlistID
}

// IsPlaylist returns true for playlist entries
func (s StreamEntry) IsPlaylist() bool {
	return s.Kind == KindPlaylist
}

// VideoID returns the video to embed for this entry: the entry itself for
// videos, the cached resolution for playlists ("" if never resolved).
func (s StreamEntry) VideoID() string {
	if !s.IsPlaylist() {
		return s.ID
	}
	if s.CachedLatestVideo != nil {
		return s.CachedLatestVideo.ID
	}
	return ""
}

// IsStale reports whether the cached resolution is older than maxAge
func (s StreamEntry) IsStale(now time.Time, maxAge time.Duration) bool {
	if s.CacheTimestamp == nil || s.CachedLatestVideo == nil {
		return true
	}
	return now.Sub(*s.CacheTimestamp) > maxAge
}

// VideoRef is a concrete video chosen for display
type VideoRef struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	PublishedAt  string `json:"published_at"`
	IsLive       bool   `json:"is_live"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// Registry is the persisted, ordered stream list plus refresh metadata
type Registry struct {
	Streams            []StreamEntry `json:"streams"`
	LastUpdated        *time.Time    `json:"last_updated"`
	AutoRefreshEnabled bool          `json:"auto_refresh_enabled"`
}

// Find returns the index of the entry with the given ID, or -1
func (r *Registry) Find(id string) int {
	for i := range r.Streams {
		if r.Streams[i].ID == id {
			return i
		}
	}
	return -1
}

// FindByTitle returns the index of the first entry with the given title, or -1
func (r *Registry) FindByTitle(title string) int {
	for i := range r.Streams {
		if r.Streams[i].Title == title {
			return i
		}
	}
	return -1
}

// HasURL reports whether any entry was added from exactly this URL
func (r *Registry) HasURL(url string) bool {
	url = strings.TrimSpace(url)
	for i := range r.Streams {
		if r.Streams[i].URL == url {
			return true
		}
	}
	return false
}

// Playlists returns the indexes of all playlist entries
func (r *Registry) Playlists() []int {
	var idx []int
	for i := range r.Streams {
		if r.Streams[i].IsPlaylist() {
			idx = append(idx, i)
		}
	}
	return idx
}

// Clone returns a deep-enough copy for handing to a front end
func (r *Registry) Clone() Registry {
	out := Registry{
		AutoRefreshEnabled: r.AutoRefreshEnabled,
		Streams:            make([]StreamEntry, len(r.Streams)),
	}
	if r.LastUpdated != nil {
		ts := *r.LastUpdated
		out.LastUpdated = &ts
	}
	for i, s := range r.Streams {
		if s.CachedLatestVideo != nil {
			v := *s.CachedLatestVideo
			s.CachedLatestVideo = &v
		}
		if s.CacheTimestamp != nil {
			ts := *s.CacheTimestamp
			s.CacheTimestamp = &ts
		}
		out.Streams[i] = s
	}
	return out
}

// PlaylistVideo is one playlistItems row
type PlaylistVideo struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	PublishedAt string            `json:"published_at"`
	Thumbnails  map[string]string `json:"thumbnails,omitempty"` // size -> URL
	Position    int               `json:"position"`
}

// Published parses PublishedAt as RFC 3339
func (v PlaylistVideo) Published() (time.Time, error) {
	return time.Parse(time.RFC3339, v.PublishedAt)
}

// VideoDetails is one videos row with live status resolved
type VideoDetails struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	PublishedAt      string            `json:"published_at"`
	Thumbnails       map[string]string `json:"thumbnails,omitempty"`
	IsLive           bool              `json:"is_live"`
	BroadcastContent string            `json:"broadcast_content"`
	ActualStartTime  string            `json:"actual_start_time,omitempty"`
	ActualEndTime    string            `json:"actual_end_time,omitempty"`
}

// LiveVideo is a live broadcast found by a channel search
type LiveVideo struct {
	ID           string
	Title        string
	ChannelID    string
	ChannelTitle string
	PublishedAt  string
}

// ChannelPlaylist is a playlist owned by a channel
type ChannelPlaylist struct {
	ID    string
	Title string
}

// EmbedStatus is the result of an oEmbed embeddability check
type EmbedStatus struct {
	VideoID    string    `json:"video_id"`
	Embeddable bool      `json:"embeddable"`
	Title      string    `json:"title,omitempty"`
	EmbedURL   string    `json:"embed_url,omitempty"`
	Message    string    `json:"message"`
	CheckedAt  time.Time `json:"checked_at"`
}

// MediumThumbnail picks the "medium" thumbnail, falling back to "default"
func MediumThumbnail(thumbs map[string]string) string {
	if u := thumbs["medium"]; u != "" {
		return u
	}
	return thumbs["default"]
}
