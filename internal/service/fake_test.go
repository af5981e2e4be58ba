package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/multiview/internal/domain"
	"github.com/mmcdole/multiview/internal/store"
	"github.com/stretchr/testify/require"
)

// fakeSource is an in-memory domain.VideoSource
type fakeSource struct {
	mu sync.Mutex

	key          bool
	playlists    map[string][]domain.PlaylistVideo
	fetchErr     map[string]error
	live         map[string]bool
	titles       map[string]string
	channelLive  map[string][]domain.LiveVideo
	channelErr   map[string]error
	channelLists map[string][]domain.ChannelPlaylist
	embeds       map[string]domain.EmbedStatus

	fetchCalls  int
	liveCalls   int
	embedCalls  int
	lastLiveIDs []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		key:          true,
		playlists:    map[string][]domain.PlaylistVideo{},
		fetchErr:     map[string]error{},
		live:         map[string]bool{},
		titles:       map[string]string{},
		channelLive:  map[string][]domain.LiveVideo{},
		channelErr:   map[string]error{},
		channelLists: map[string][]domain.ChannelPlaylist{},
		embeds:       map[string]domain.EmbedStatus{},
	}
}

func (f *fakeSource) HasKey() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.key
}

func (f *fakeSource) ValidateKey(ctx context.Context) (bool, string) {
	if !f.HasKey() {
		return false, "No API key available"
	}
	return true, "API key is valid"
}

func (f *fakeSource) FetchAllPlaylistVideos(ctx context.Context, playlistID string) ([]domain.PlaylistVideo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if !f.key {
		return nil, domain.ErrNoAPIKey
	}
	if err := f.fetchErr[playlistID]; err != nil {
		return nil, err
	}
	return append([]domain.PlaylistVideo(nil), f.playlists[playlistID]...), nil
}

func (f *fakeSource) CheckLiveStatus(ctx context.Context, videoIDs []string) (map[string]domain.VideoDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.liveCalls++
	f.lastLiveIDs = append([]string(nil), videoIDs...)
	if !f.key {
		return nil, domain.ErrNoAPIKey
	}
	out := make(map[string]domain.VideoDetails, len(videoIDs))
	for _, id := range videoIDs {
		out[id] = domain.VideoDetails{
			ID:         id,
			Title:      "detail " + id,
			IsLive:     f.live[id],
			Thumbnails: map[string]string{"medium": "https://img/" + id},
		}
	}
	return out, nil
}

func (f *fakeSource) PlaylistTitle(ctx context.Context, playlistID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.titles[playlistID]; ok {
		return t, nil
	}
	return "", fmt.Errorf("playlist %s: %w", playlistID, domain.ErrPlaylistNotFound)
}

func (f *fakeSource) SearchLiveVideos(ctx context.Context, channelID string) ([]domain.LiveVideo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.channelErr[channelID]; err != nil {
		return nil, err
	}
	return f.channelLive[channelID], nil
}

func (f *fakeSource) ChannelPlaylists(ctx context.Context, channelID string) ([]domain.ChannelPlaylist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.channelLists[channelID], nil
}

func (f *fakeSource) CheckEmbeddable(ctx context.Context, videoID string) (domain.EmbedStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embedCalls++
	st, ok := f.embeds[videoID]
	if !ok {
		return domain.EmbedStatus{VideoID: videoID, Message: "Video not found or unavailable", CheckedAt: time.Now()}, nil
	}
	st.CheckedAt = time.Now()
	return st, nil
}

func video(id string, published string) domain.PlaylistVideo {
	return domain.PlaylistVideo{ID: id, Title: "video " + id, PublishedAt: published}
}

type testEnv struct {
	svc    *StreamService
	source *fakeSource
	repo   *store.RegistryStore
	cache  *store.CacheStore
}

func newTestEnv(t *testing.T, opts StreamOptions) *testEnv {
	t.Helper()
	src := newFakeSource()
	repo := store.NewRegistryStore(filepath.Join(t.TempDir(), "streams.json"), nil)
	cache, err := store.NewCacheStore("")
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	resolver := NewResolver(src, cache, time.Minute, nil)
	svc := NewStreamService(repo, src, resolver, cache, opts, nil)
	return &testEnv{svc: svc, source: src, repo: repo, cache: cache}
}

func (e *testEnv) registry(t *testing.T) *domain.Registry {
	t.Helper()
	reg, err := e.repo.Load(context.Background())
	require.NoError(t, err)
	return reg
}
