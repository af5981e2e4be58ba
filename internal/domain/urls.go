package domain

import (
	"regexp"
	"strings"
)

// youtubeHost matches an optional scheme and subdomains at the start of the
// URL, so the host must itself be youtube.com or youtu.be
const youtubeHost = `^(?:https?://)?(?:[A-Za-z0-9-]+\.)*`

// Video URL shapes, tried in order. The ID runs to the next &, newline, ? or #.
var videoPatterns = []*regexp.Regexp{
	regexp.MustCompile(youtubeHost + `youtube\.com/watch\?(?:[^#\n]*&)?v=([^&\n?#]+)`),
	regexp.MustCompile(youtubeHost + `youtu\.be/([^&\n?#]+)`),
	regexp.MustCompile(youtubeHost + `youtube\.com/embed/([^&\n?#]+)`),
	regexp.MustCompile(youtubeHost + `youtube\.com/live/([^&\n?#]+)`),
	regexp.MustCompile(youtubeHost + `youtube\.com/shorts/([^&\n?#]+)`),
}

var playlistPattern = regexp.MustCompile(`[?&]list=([A-Za-z0-9_-]+)`)

// "OT2-LCM-TrainingLab stream @AC cam-fb7p, 2025-07-24 UTC 01:00"
var deviceNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^([^-]+-[^-]+-[^-]+)\s+stream\s+@AC`),
	regexp.MustCompile(`^([^\s]+)\s+stream\s+@AC`),
}

// ExtractVideoID returns the YouTube video ID in url, if any
func ExtractVideoID(url string) (string, bool) {
	for _, re := range videoPatterns {
		if m := re.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// ExtractPlaylistID returns the value of the list= query parameter, if any
func ExtractPlaylistID(url string) (string, bool) {
	if m := playlistPattern.FindStringSubmatch(url); m != nil {
		return m[1], true
	}
	return "", false
}

// Classify derives the registry entry shape for url.
// Playlists win over videos so watch?v=X&list=Y is treated as the playlist.
func Classify(url string) (id string, kind StreamKind, playlistID string, err error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", "", "", ErrMissingURL
	}
	if pid, ok := ExtractPlaylistID(url); ok {
		return PlaylistEntryID(pid), KindPlaylist, pid, nil
	}
	if vid, ok := ExtractVideoID(url); ok {
		return vid, KindVideo, "", nil
	}
	return "", "", "", ErrInvalidURL
}

// ParseDeviceName extracts the device label from a lab stream title
func ParseDeviceName(title string) (string, bool) {
	for _, re := range deviceNamePatterns {
		if m := re.FindStringSubmatch(title); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// EmbedURL returns an autoplaying, muted, looping embed URL
func EmbedURL(videoID string) string {
	return "https://www.youtube.com/embed/" + videoID +
		"?autoplay=1&mute=1&loop=1&playlist=" + videoID
}

// WatchURL returns the canonical watch page for a video
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// PlaylistURL returns the canonical playlist page
func PlaylistURL(playlistID string) string {
	return "https://www.youtube.com/playlist?list=" + playlistID
}
