package domain

import (
	"context"
)

// RegistryRepository persists the stream registry as one document
type RegistryRepository interface {
	// Load returns the stored registry; a missing store is an empty registry
	Load(ctx context.Context) (*Registry, error)

	// Save replaces the stored registry
	Save(ctx context.Context, reg *Registry) error
}

// VideoSource provides access to the YouTube Data API
type VideoSource interface {
	// HasKey reports whether an API key is currently available
	HasKey() bool

	// ValidateKey probes the API with the current key
	ValidateKey(ctx context.Context) (bool, string)

	// FetchAllPlaylistVideos returns every member of a playlist (handles pagination internally)
	FetchAllPlaylistVideos(ctx context.Context, playlistID string) ([]PlaylistVideo, error)

	// CheckLiveStatus returns details keyed by video ID (handles batching internally)
	CheckLiveStatus(ctx context.Context, videoIDs []string) (map[string]VideoDetails, error)

	// PlaylistTitle returns the title of a playlist
	PlaylistTitle(ctx context.Context, playlistID string) (string, error)

	// SearchLiveVideos returns the channel's current live broadcasts
	SearchLiveVideos(ctx context.Context, channelID string) ([]LiveVideo, error)

	// ChannelPlaylists returns all playlists owned by a channel
	ChannelPlaylists(ctx context.Context, channelID string) ([]ChannelPlaylist, error)

	// CheckEmbeddable asks oEmbed whether a video can be embedded
	CheckEmbeddable(ctx context.Context, videoID string) (EmbedStatus, error)
}
