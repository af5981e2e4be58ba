package domain

import "time"

// PlaylistSnapshot is a cached playlist membership listing
type PlaylistSnapshot struct {
	PlaylistID string          `json:"playlist_id"`
	Videos     []PlaylistVideo `json:"videos"`
	FetchedAt  time.Time       `json:"fetched_at"`
}

// Store handles the local response cache (BoltDB + memory).
type Store interface {
	// === Playlist membership ===
	GetPlaylistSnapshot(playlistID string) (*PlaylistSnapshot, bool)
	SavePlaylistSnapshot(snap *PlaylistSnapshot) error

	// === Embeddability ===
	GetEmbedStatus(videoID string) (*EmbedStatus, bool)
	SaveEmbedStatus(status *EmbedStatus) error

	// === Invalidation ===
	InvalidatePlaylist(playlistID string)
	InvalidateAll()

	Close() error
}
