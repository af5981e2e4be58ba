package store

import (
	"testing"
	"time"

	"github.com/mmcdole/multiview/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestCacheStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewCacheStore(dir)
	require.NoError(t, err)

	fetched := time.Date(2025, 7, 24, 1, 0, 0, 0, time.UTC)
	require.NoError(t, s.SavePlaylistSnapshot(&domain.PlaylistSnapshot{
		PlaylistID: "PL1",
		Videos:     []domain.PlaylistVideo{{ID: "a", PublishedAt: "2025-07-24T00:00:00Z"}},
		FetchedAt:  fetched,
	}))
	require.NoError(t, s.SaveEmbedStatus(&domain.EmbedStatus{VideoID: "a", Embeddable: true, Message: "ok"}))
	require.NoError(t, s.Close())

	s, err = NewCacheStore(dir)
	require.NoError(t, err)
	defer s.Close()

	snap, ok := s.GetPlaylistSnapshot("PL1")
	require.True(t, ok)
	require.Len(t, snap.Videos, 1)
	require.True(t, snap.FetchedAt.Equal(fetched))

	status, ok := s.GetEmbedStatus("a")
	require.True(t, ok)
	require.True(t, status.Embeddable)
}

func TestCacheStore_Invalidate(t *testing.T) {
	s, err := NewCacheStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SavePlaylistSnapshot(&domain.PlaylistSnapshot{PlaylistID: "PL1"}))
	require.NoError(t, s.SavePlaylistSnapshot(&domain.PlaylistSnapshot{PlaylistID: "PL2"}))
	require.NoError(t, s.SaveEmbedStatus(&domain.EmbedStatus{VideoID: "a"}))

	s.InvalidatePlaylist("PL1")
	_, ok := s.GetPlaylistSnapshot("PL1")
	require.False(t, ok)
	_, ok = s.GetPlaylistSnapshot("PL2")
	require.True(t, ok)

	s.InvalidateAll()
	_, ok = s.GetPlaylistSnapshot("PL2")
	require.False(t, ok)
	_, ok = s.GetEmbedStatus("a")
	require.False(t, ok)
}

func TestCacheStore_MemoryOnly(t *testing.T) {
	s, err := NewCacheStore("")
	require.NoError(t, err)

	_, ok := s.GetEmbedStatus("missing")
	require.False(t, ok)

	require.NoError(t, s.SaveEmbedStatus(&domain.EmbedStatus{VideoID: "x", Embeddable: false, Message: "private"}))
	status, ok := s.GetEmbedStatus("x")
	require.True(t, ok)
	require.Equal(t, "private", status.Message)
	require.NoError(t, s.Close())
}
