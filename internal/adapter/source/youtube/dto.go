package youtube

// Data API v3 response envelopes. Only the fields we read are declared.

// Thumbnail is one entry of a snippet's thumbnails map
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ResourceID identifies the resource a playlist item points to
type ResourceID struct {
	Kind    string `json:"kind"`
	VideoID string `json:"videoId"`
}

// PlaylistItemSnippet is the snippet part of a playlistItems row
type PlaylistItemSnippet struct {
	PublishedAt string               `json:"publishedAt"`
	Title       string               `json:"title"`
	Thumbnails  map[string]Thumbnail `json:"thumbnails"`
	Position    int                  `json:"position"`
	ResourceID  ResourceID           `json:"resourceId"`
}

// PlaylistItem is one playlistItems row
type PlaylistItem struct {
	ID      string              `json:"id"`
	Snippet PlaylistItemSnippet `json:"snippet"`
}

// PlaylistItemsResponse is the playlistItems list envelope
type PlaylistItemsResponse struct {
	NextPageToken string          `json:"nextPageToken"`
	Items         *[]PlaylistItem `json:"items"` // nil when the field is absent
}

// VideoSnippet is the snippet part of a videos row
type VideoSnippet struct {
	PublishedAt          string               `json:"publishedAt"`
	ChannelID            string               `json:"channelId"`
	Title                string               `json:"title"`
	Thumbnails           map[string]Thumbnail `json:"thumbnails"`
	ChannelTitle         string               `json:"channelTitle"`
	LiveBroadcastContent string               `json:"liveBroadcastContent"`
}

// LiveStreamingDetails is the liveStreamingDetails part of a videos row
type LiveStreamingDetails struct {
	ActualStartTime    string `json:"actualStartTime"`
	ActualEndTime      string `json:"actualEndTime"`
	ScheduledStartTime string `json:"scheduledStartTime"`
	ConcurrentViewers  string `json:"concurrentViewers"`
}

// Video is one videos row
type Video struct {
	ID                   string                `json:"id"`
	Snippet              VideoSnippet          `json:"snippet"`
	LiveStreamingDetails *LiveStreamingDetails `json:"liveStreamingDetails"`
}

// VideosResponse is the videos list envelope
type VideosResponse struct {
	Items []Video `json:"items"`
}

// SearchID identifies a search hit
type SearchID struct {
	Kind       string `json:"kind"`
	VideoID    string `json:"videoId"`
	PlaylistID string `json:"playlistId"`
}

// SearchResult is one search row
type SearchResult struct {
	ID      SearchID     `json:"id"`
	Snippet VideoSnippet `json:"snippet"`
}

// SearchResponse is the search list envelope
type SearchResponse struct {
	NextPageToken string         `json:"nextPageToken"`
	Items         []SearchResult `json:"items"`
}

// PlaylistSnippet is the snippet part of a playlists row
type PlaylistSnippet struct {
	Title       string `json:"title"`
	ChannelID   string `json:"channelId"`
	PublishedAt string `json:"publishedAt"`
}

// Playlist is one playlists row
type Playlist struct {
	ID      string          `json:"id"`
	Snippet PlaylistSnippet `json:"snippet"`
}

// PlaylistsResponse is the playlists list envelope
type PlaylistsResponse struct {
	NextPageToken string     `json:"nextPageToken"`
	Items         []Playlist `json:"items"`
}

// ErrorResponse is the Data API error envelope
type ErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// OEmbedResponse is the oEmbed JSON body
type OEmbedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ProviderName string `json:"provider_name"`
	HTML         string `json:"html"`
	ThumbnailURL string `json:"thumbnail_url"`
}
