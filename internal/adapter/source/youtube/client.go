package youtube

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/mmcdole/multiview/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://www.googleapis.com/youtube/v3"
	defaultOEmbedURL = "https://www.youtube.com/oembed"
	defaultTimeout   = 10 * time.Second
	userAgent        = "Multiview/1.0"

	liveBatchSize = 50 // ids per videos request
)

// KeySource supplies the current API key
type KeySource interface {
	Key() string
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL           string
	OEmbedURL         string
	Timeout           time.Duration
	RequestsPerSecond float64 // <= 0 disables pacing
	HTTPClient        *http.Client
}

// Client implements domain.VideoSource for the YouTube Data API v3
type Client struct {
	baseURL    string
	oembedURL  string
	keys       KeySource
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a new Data API client
func NewClient(opts Options, keys KeySource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.OEmbedURL == "" {
		opts.OEmbedURL = defaultOEmbedURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		oembedURL:  opts.OEmbedURL,
		keys:       keys,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger,
	}
}

// HasKey reports whether an API key is currently available
func (c *Client) HasKey() bool {
	return c.key() != ""
}

func (c *Client) key() string {
	if c.keys == nil {
		return ""
	}
	return strings.TrimSpace(c.keys.Key())
}

// doRequest performs a GET and returns the decoded body. Non-200 responses
// and transport failures come back as *domain.UpstreamError.
func (c *Client) doRequest(ctx context.Context, rawURL, op string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &domain.UpstreamError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, br")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("youtube request", "op", op)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, &domain.UpstreamError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("youtube request error", "op", op, "status", resp.StatusCode)
		return nil, &domain.UpstreamError{Op: op, StatusCode: resp.StatusCode, Err: apiError(body)}
	}

	return body, nil
}

// readBody reads the response, undoing gzip or brotli content encoding
func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// apiError extracts the message from a Data API error body
func apiError(body []byte) error {
	var e ErrorResponse
	if json.Unmarshal(body, &e) == nil && e.Error.Message != "" {
		if len(e.Error.Errors) > 0 && e.Error.Errors[0].Reason != "" {
			return fmt.Errorf("%s (%s)", e.Error.Message, e.Error.Errors[0].Reason)
		}
		return errors.New(e.Error.Message)
	}
	return nil
}

// get calls a Data API endpoint with the current key and decodes into dest
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, dest interface{}) error {
	key := c.key()
	if key == "" {
		return domain.ErrNoAPIKey
	}
	query.Set("key", key)

	body, err := c.doRequest(ctx, c.baseURL+"/"+endpoint+"?"+query.Encode(), endpoint)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dest); err != nil {
		c.logger.Error("JSON parse error", "op", endpoint, "error", err, "bodyLen", len(body))
		return &domain.UpstreamError{Op: endpoint, StatusCode: http.StatusOK, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return nil
}

// ValidateKey checks the current key with a one-result search
func (c *Client) ValidateKey(ctx context.Context) (bool, string) {
	if c.key() == "" {
		return false, "No API key available"
	}

	query := url.Values{}
	query.Set("part", "snippet")
	query.Set("q", "test")
	query.Set("maxResults", "1")

	var resp json.RawMessage
	err := c.get(ctx, "search", query, &resp)

	var ue *domain.UpstreamError
	switch {
	case err == nil:
		return true, "API key is valid"
	case errors.As(err, &ue) && ue.StatusCode == http.StatusForbidden:
		return false, "API key is invalid or quota exceeded"
	case errors.As(err, &ue) && ue.StatusCode != 0:
		return false, fmt.Sprintf("API error: %d", ue.StatusCode)
	case errors.As(err, &ue):
		return false, fmt.Sprintf("Connection error: %v", ue.Err)
	default:
		return false, fmt.Sprintf("Connection error: %v", err)
	}
}

// FetchAllPlaylistVideos returns every member video of a playlist in API
// order, without duplicates
func (c *Client) FetchAllPlaylistVideos(ctx context.Context, playlistID string) ([]domain.PlaylistVideo, error) {
	if !c.HasKey() {
		return nil, domain.ErrNoAPIKey
	}

	seen := make(map[string]bool)
	page := 0

	videos, err := fetchAll(ctx, c.logger, "playlistItems", playlistID,
		func(ctx context.Context, token string) ([]domain.PlaylistVideo, string, error) {
			page++
			query := url.Values{}
			query.Set("part", "snippet")
			query.Set("playlistId", playlistID)
			query.Set("maxResults", strconv.Itoa(pageSize))
			if token != "" {
				query.Set("pageToken", token)
			}

			var resp PlaylistItemsResponse
			if err := c.get(ctx, "playlistItems", query, &resp); err != nil {
				return nil, "", withContext(err, fmt.Sprintf("playlist %s page %d", playlistID, page))
			}
			if resp.Items == nil {
				return nil, "", nil
			}

			var out []domain.PlaylistVideo
			for _, item := range *resp.Items {
				v, ok := MapPlaylistItem(item)
				if !ok || seen[v.ID] {
					continue
				}
				seen[v.ID] = true
				out = append(out, v)
			}
			return out, resp.NextPageToken, nil
		})
	if err != nil {
		return nil, err
	}

	c.logger.Info("fetched playlist videos", "playlist", playlistID, "count", len(videos), "pages", page)
	return videos, nil
}

// CheckLiveStatus looks up snippet and live details for videoIDs in batches
// of 50. Failed batches are logged and skipped.
func (c *Client) CheckLiveStatus(ctx context.Context, videoIDs []string) (map[string]domain.VideoDetails, error) {
	if !c.HasKey() {
		return nil, domain.ErrNoAPIKey
	}

	result := make(map[string]domain.VideoDetails, len(videoIDs))

	for start, batch := 0, 0; start < len(videoIDs); start, batch = start+liveBatchSize, batch+1 {
		end := min(start+liveBatchSize, len(videoIDs))

		query := url.Values{}
		query.Set("part", "snippet,liveStreamingDetails")
		query.Set("id", strings.Join(videoIDs[start:end], ","))

		var resp VideosResponse
		if err := c.get(ctx, "videos", query, &resp); err != nil {
			if errors.Is(err, domain.ErrNoAPIKey) {
				return nil, err
			}
			c.logger.Warn("live status batch failed, skipping",
				"batch", batch, "size", end-start, "error", withContext(err, fmt.Sprintf("batch %d", batch)))
			continue
		}

		for _, v := range resp.Items {
			result[v.ID] = MapVideo(v)
		}
	}

	return result, nil
}

// PlaylistTitle returns a playlist's title
func (c *Client) PlaylistTitle(ctx context.Context, playlistID string) (string, error) {
	query := url.Values{}
	query.Set("part", "snippet")
	query.Set("id", playlistID)

	var resp PlaylistsResponse
	if err := c.get(ctx, "playlists", query, &resp); err != nil {
		return "", withContext(err, "playlist "+playlistID)
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("playlist %s: %w", playlistID, domain.ErrPlaylistNotFound)
	}
	return resp.Items[0].Snippet.Title, nil
}

// SearchLiveVideos returns the live broadcasts currently running on a channel
func (c *Client) SearchLiveVideos(ctx context.Context, channelID string) ([]domain.LiveVideo, error) {
	query := url.Values{}
	query.Set("part", "snippet")
	query.Set("channelId", channelID)
	query.Set("eventType", "live")
	query.Set("type", "video")
	query.Set("maxResults", strconv.Itoa(pageSize))

	var resp SearchResponse
	if err := c.get(ctx, "search", query, &resp); err != nil {
		return nil, withContext(err, "channel "+channelID)
	}

	var out []domain.LiveVideo
	for _, r := range resp.Items {
		if v, ok := MapSearchResult(r); ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// ChannelPlaylists returns all playlists owned by a channel
func (c *Client) ChannelPlaylists(ctx context.Context, channelID string) ([]domain.ChannelPlaylist, error) {
	if !c.HasKey() {
		return nil, domain.ErrNoAPIKey
	}

	page := 0
	return fetchAll(ctx, c.logger, "playlists", channelID,
		func(ctx context.Context, token string) ([]domain.ChannelPlaylist, string, error) {
			page++
			query := url.Values{}
			query.Set("part", "snippet")
			query.Set("channelId", channelID)
			query.Set("maxResults", strconv.Itoa(pageSize))
			if token != "" {
				query.Set("pageToken", token)
			}

			var resp PlaylistsResponse
			if err := c.get(ctx, "playlists", query, &resp); err != nil {
				return nil, "", withContext(err, fmt.Sprintf("channel %s page %d", channelID, page))
			}

			out := make([]domain.ChannelPlaylist, 0, len(resp.Items))
			for _, p := range resp.Items {
				out = append(out, MapPlaylist(p))
			}
			return out, resp.NextPageToken, nil
		})
}

// withContext records which page/batch/resource an upstream error belongs to
func withContext(err error, where string) error {
	var ue *domain.UpstreamError
	if errors.As(err, &ue) && ue.Context == "" {
		ue.Context = where
	}
	return err
}
