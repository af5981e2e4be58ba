package domain

// GridShape returns the column and row count for a tile count:
// 1 -> 1x1, up to 4 -> 2x2, anything larger -> 3x3
func GridShape(size int) (cols, rows int) {
	switch {
	case size <= 1:
		return 1, 1
	case size <= 4:
		return 2, 2
	default:
		return 3, 3
	}
}

// GridTile is one render-ready slot of the viewing grid
type GridTile struct {
	Entry      StreamEntry `json:"entry"`
	VideoID    string      `json:"video_id"` // empty for an unresolved playlist
	EmbedURL   string      `json:"embed_url,omitempty"`
	WatchURL   string      `json:"watch_url,omitempty"`
	DeviceName string      `json:"device_name,omitempty"`
	IsLive     bool        `json:"is_live"`
}

// NewGridTile derives display fields from an entry
func NewGridTile(e StreamEntry) GridTile {
	tile := GridTile{Entry: e, VideoID: e.VideoID()}
	if tile.VideoID != "" {
		tile.EmbedURL = EmbedURL(tile.VideoID)
		tile.WatchURL = WatchURL(tile.VideoID)
	}
	title := e.Title
	if e.CachedLatestVideo != nil {
		tile.IsLive = e.CachedLatestVideo.IsLive
		if name, ok := ParseDeviceName(e.CachedLatestVideo.Title); ok {
			tile.DeviceName = name
		}
	}
	if tile.DeviceName == "" {
		tile.DeviceName, _ = ParseDeviceName(title)
	}
	return tile
}
