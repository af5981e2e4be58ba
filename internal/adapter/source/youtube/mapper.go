package youtube

import (
	"github.com/mmcdole/multiview/internal/domain"
)

// Placeholder titles the API reports for members the caller cannot watch
var inaccessibleTitles = map[string]bool{
	"Private video": true,
	"Deleted video": true,
}

// MapPlaylistItem converts a playlistItems row. Rows without a video ID and
// private or deleted members return false.
func MapPlaylistItem(item PlaylistItem) (domain.PlaylistVideo, bool) {
	id := item.Snippet.ResourceID.VideoID
	if id == "" || inaccessibleTitles[item.Snippet.Title] {
		return domain.PlaylistVideo{}, false
	}
	title := item.Snippet.Title
	if title == "" {
		title = "Unknown Title"
	}
	return domain.PlaylistVideo{
		ID:          id,
		Title:       title,
		PublishedAt: item.Snippet.PublishedAt,
		Thumbnails:  mapThumbnails(item.Snippet.Thumbnails),
		Position:    item.Snippet.Position,
	}, true
}

// MapVideo converts a videos row and resolves its live status
func MapVideo(v Video) domain.VideoDetails {
	d := domain.VideoDetails{
		ID:               v.ID,
		Title:            v.Snippet.Title,
		PublishedAt:      v.Snippet.PublishedAt,
		Thumbnails:       mapThumbnails(v.Snippet.Thumbnails),
		BroadcastContent: v.Snippet.LiveBroadcastContent,
	}
	if d.BroadcastContent == "" {
		d.BroadcastContent = "none"
	}
	if v.LiveStreamingDetails != nil {
		d.ActualStartTime = v.LiveStreamingDetails.ActualStartTime
		d.ActualEndTime = v.LiveStreamingDetails.ActualEndTime
	}
	d.IsLive = (d.ActualStartTime != "" && d.ActualEndTime == "") || d.BroadcastContent == "live"
	return d
}

// MapSearchResult converts a live search hit
func MapSearchResult(r SearchResult) (domain.LiveVideo, bool) {
	if r.ID.VideoID == "" {
		return domain.LiveVideo{}, false
	}
	return domain.LiveVideo{
		ID:           r.ID.VideoID,
		Title:        r.Snippet.Title,
		ChannelID:    r.Snippet.ChannelID,
		ChannelTitle: r.Snippet.ChannelTitle,
		PublishedAt:  r.Snippet.PublishedAt,
	}, true
}

// MapPlaylist converts a playlists row
func MapPlaylist(p Playlist) domain.ChannelPlaylist {
	return domain.ChannelPlaylist{ID: p.ID, Title: p.Snippet.Title}
}

func mapThumbnails(in map[string]Thumbnail) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for size, t := range in {
		out[size] = t.URL
	}
	return out
}
