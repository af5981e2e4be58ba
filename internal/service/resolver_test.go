package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mmcdole/multiview/internal/domain"
	"github.com/mmcdole/multiview/internal/store"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) (*Resolver, *fakeSource) {
	t.Helper()
	src := newFakeSource()
	cache, err := store.NewCacheStore("")
	require.NoError(t, err)
	return NewResolver(src, cache, time.Minute, nil), src
}

func TestResolve_NewestLiveBeatsNewestOverall(t *testing.T) {
	r, src := newTestResolver(t)
	src.playlists["PL"] = []domain.PlaylistVideo{
		video("A", "2025-07-01T00:00:00Z"),
		video("B", "2025-07-02T00:00:00Z"),
		video("C", "2025-07-03T00:00:00Z"),
	}
	src.live["B"] = true

	ref, err := r.Resolve(context.Background(), "PL")
	require.NoError(t, err)
	require.Equal(t, "B", ref.ID)
	require.True(t, ref.IsLive)
	require.Equal(t, "detail B", ref.Title)
	require.Equal(t, "https://www.youtube.com/watch?v=B", ref.URL)
	require.Equal(t, "https://img/B", ref.ThumbnailURL)
}

func TestResolve_NoLiveReturnsNewest(t *testing.T) {
	r, src := newTestResolver(t)
	src.playlists["PL"] = []domain.PlaylistVideo{
		video("A", "2025-07-01T00:00:00Z"),
		video("B", "2025-07-02T00:00:00Z"),
		video("C", "2025-07-03T00:00:00Z"),
	}

	ref, err := r.Resolve(context.Background(), "PL")
	require.NoError(t, err)
	require.Equal(t, "C", ref.ID)
	require.False(t, ref.IsLive)
	require.Equal(t, "detail C", ref.Title)
	require.Equal(t, "2025-07-03T00:00:00Z", ref.PublishedAt)
}

func TestResolve_UnparseableTimestampKeepsOrder(t *testing.T) {
	r, src := newTestResolver(t)
	src.playlists["PL"] = []domain.PlaylistVideo{
		video("first", "2025-07-01T00:00:00Z"),
		video("second", "not a date"),
		video("third", "2025-07-03T00:00:00Z"),
	}

	ref, err := r.Resolve(context.Background(), "PL")
	require.NoError(t, err)
	require.Equal(t, "first", ref.ID)
	require.Equal(t, []string{"first", "second", "third"}, src.lastLiveIDs)
}

func TestResolve_ChecksAtMost100Newest(t *testing.T) {
	r, src := newTestResolver(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 150; i++ {
		src.playlists["PL"] = append(src.playlists["PL"],
			video(fmt.Sprintf("v%03d", i), base.Add(time.Duration(i)*time.Hour).Format(time.RFC3339)))
	}
	// oldest video is live but outside the window
	src.live["v000"] = true

	ref, err := r.Resolve(context.Background(), "PL")
	require.NoError(t, err)
	require.Len(t, src.lastLiveIDs, maxLiveCandidates)
	require.Equal(t, "v149", src.lastLiveIDs[0])
	require.Equal(t, "v149", ref.ID)
	require.False(t, ref.IsLive)
}

func TestResolve_EmptyPlaylist(t *testing.T) {
	r, _ := newTestResolver(t)
	_, err := r.Resolve(context.Background(), "PLempty")
	require.ErrorIs(t, err, domain.ErrNoVideos)
}

func TestResolve_UpstreamErrorPropagates(t *testing.T) {
	r, src := newTestResolver(t)
	src.fetchErr["PL"] = &domain.UpstreamError{Op: "playlistItems", StatusCode: 404}

	_, err := r.Resolve(context.Background(), "PL")
	require.True(t, domain.IsUpstream(err))
}

func TestResolveCached_ReusesFreshSnapshot(t *testing.T) {
	r, src := newTestResolver(t)
	src.playlists["PL"] = []domain.PlaylistVideo{video("A", "2025-07-01T00:00:00Z")}

	ctx := context.Background()
	_, err := r.ResolveCached(ctx, "PL")
	require.NoError(t, err)
	_, err = r.ResolveCached(ctx, "PL")
	require.NoError(t, err)
	require.Equal(t, 1, src.fetchCalls)
	require.Equal(t, 2, src.liveCalls)

	// past the window the playlist is paged again
	r.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = r.ResolveCached(ctx, "PL")
	require.NoError(t, err)
	require.Equal(t, 2, src.fetchCalls)
}
