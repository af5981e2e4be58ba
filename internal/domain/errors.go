package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrMissingURL indicates an add request without a URL
	ErrMissingURL = errors.New("URL is required")

	// ErrMissingTitle indicates an add or rename without a title
	ErrMissingTitle = errors.New("title is required")

	// ErrInvalidURL indicates neither a playlist nor a video ID could be extracted
	ErrInvalidURL = errors.New("invalid YouTube URL")

	// ErrDuplicateStream indicates the derived ID is already registered
	ErrDuplicateStream = errors.New("stream already exists")

	// ErrStreamNotFound indicates the requested entry does not exist
	ErrStreamNotFound = errors.New("stream not found")

	// ErrNotPlaylist indicates a playlist-only operation on a video entry
	ErrNotPlaylist = errors.New("stream is not a playlist")

	// ErrNoVideos indicates a playlist resolved to nothing
	ErrNoVideos = errors.New("no videos found")

	// ErrPlaylistNotFound indicates no channel playlist matched
	ErrPlaylistNotFound = errors.New("no matching playlist found")

	// ErrNoAPIKey indicates an API-gated feature was used without a key
	ErrNoAPIKey = errors.New("no YouTube API key configured")
)

// IsValidation reports whether err is a caller mistake (never retried)
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingURL) ||
		errors.Is(err, ErrMissingTitle) ||
		errors.Is(err, ErrInvalidURL) ||
		errors.Is(err, ErrDuplicateStream)
}

// UpstreamError describes a failed YouTube API round-trip
type UpstreamError struct {
	Op         string // API operation, e.g. "playlistItems"
	Context    string // which page/batch/id failed
	StatusCode int    // 0 for network failures
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := "youtube " + e.Op
	if e.Context != "" {
		msg += " (" + e.Context + ")"
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstream reports whether err came from the YouTube API
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
