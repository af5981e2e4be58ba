package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/multiview/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestAdd_VideoAndPlaylist(t *testing.T) {
	env := newTestEnv(t, StreamOptions{})
	env.source.key = false
	ctx := context.Background()

	v, err := env.svc.Add(ctx, "https://www.youtube.com/watch?v=abc123", "Cam 1")
	require.NoError(t, err)
	require.Equal(t, "abc123", v.ID)
	require.Equal(t, domain.KindVideo, v.Kind)

	// the list parameter wins over v=
	p, err := env.svc.Add(ctx, "https://www.youtube.com/watch?v=zzz&list=PL42", "Booth")
	require.NoError(t, err)
	require.Equal(t, "playlist:PL42", p.ID)
	require.Equal(t, "PL42", p.PlaylistID)
	require.Nil(t, p.CachedLatestVideo)

	reg := env.registry(t)
	require.Len(t, reg.Streams, 2)
	require.Equal(t, "Cam 1", reg.Streams[0].Title)
	require.Equal(t, "Booth", reg.Streams[1].Title)
}

func TestAdd_DuplicateLeavesRegistryUnchanged(t *testing.T) {
	env := newTestEnv(t, StreamOptions{})
	ctx := context.Background()

	_, err := env.svc.Add(ctx, "https://youtu.be/abc123", "First")
	require.NoError(t, err)

	_, err = env.svc.Add(ctx, "https://www.youtube.com/watch?v=abc123", "Second")
	require.ErrorIs(t, err, domain.ErrDuplicateStream)
	require.True(t, domain.IsValidation(err))

	reg := env.registry(t)
	require.Len(t, reg.Streams, 1)
	require.Equal(t, "First", reg.Streams[0].Title)
}

func TestAdd_ValidationErrors(t *testing.T) {
	env := newTestEnv(t, StreamOptions{})
	env.source.key = false
	ctx := context.Background()

	tests := []struct {
		name  string
		url   string
		title string
		want  error
	}{
		{"empty url", "  ", "x", domain.ErrMissingURL},
		{"not youtube", "https://example.com/video", "x", domain.ErrInvalidURL},
		{"blank video title", "https://youtu.be/abc", " ", domain.ErrMissingTitle},
		{"blank playlist title without key", "https://www.youtube.com/playlist?list=PL1", "", domain.ErrMissingTitle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Add(ctx, tt.url, tt.title)
			require.ErrorIs(t, err, tt.want)
		})
	}
	require.Empty(t, env.registry(t).Streams)
}

func TestAdd_PlaylistTitleAndInitialResolution(t *testing.T) {
	env := newTestEnv(t, StreamOptions{})
	env.source.titles["PL9"] = "Stage Cameras"
	env.source.playlists["PL9"] = []domain.PlaylistVideo{
		video("old", "2025-01-01T00:00:00Z"),
		video("new", "2025-02-01T00:00:00Z"),
	}

	e, err := env.svc.Add(context.Background(), "https://www.youtube.com/playlist?list=PL9", "")
	require.NoError(t, err)
	require.Equal(t, "Stage Cameras", e.Title)
	require.NotNil(t, e.CachedLatestVideo)
	require.Equal(t, "new", e.CachedLatestVideo.ID)
	require.NotNil(t, e.CacheTimestamp)
}

func TestAdd_BlankPlaylistTitleRejected(t *testing.T) {
	env := newTestEnv(t, StreamOptions{})
	env.source.titles["PL9"] = "   "

	_, err := env.svc.Add(context.Background(), "https://www.youtube.com/playlist?list=PL9", "")
	require.ErrorIs(t, err, domain.ErrMissingTitle)
	require.True(t, domain.IsValidation(err))
	require.Empty(t, env.registry(t).Streams)
}

func TestAdd_InitialResolutionFailureStillAdds(t *testing.T) {
	env := newTestEnv(t, StreamOptions{})
	env.source.fetchErr["PL1"] = &domain.UpstreamError{Op: "playlistItems", StatusCode: 500}

	e, err := env.svc.Add(context.Background(), "https://www.youtube.com/playlist?list=PL1", "Booth")
	require.NoError(t, err)
	require.Nil(t, e.CachedLatestVideo)
	require.Len(t, env.registry(t).Streams, 1)
}

func TestRemove(t *testing.T) {
	env := newTestEnv(t, StreamOptions{})
	ctx := context.Background()

	_, err := env.svc.Add(ctx, "https://youtu.be/one", "Same")
	require.NoError(t, err)
	_, err = env.svc.Add(ctx, "https://youtu.be/two", "Same")
	require.NoError(t, err)
	_, err = env.svc.Add(ctx, "https://youtu.be/three", "Other")
	require.NoError(t, err)

	removed, err := env.svc.RemoveByTitle(ctx, "Same")
	require.NoError(t, err)
	require.Equal(t, "one", removed.ID)

	reg := env.registry(t)
	require.Len(t, reg.Streams, 2)
	require.Equal(t, "two", reg.Streams[0].ID)

	require.NoError(t, env.svc.Remove(ctx, "three"))
	require.ErrorIs(t, env.svc.Remove(ctx, "three"), domain.ErrStreamNotFound)

	_, err = env.svc.RemoveByTitle(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrStreamNotFound)
	require.Len(t, env.registry(t).Streams, 1)
}

func TestUpdate(t *testing.T) {
	env := newTestEnv(t, StreamOptions{})
	ctx := context.Background()

	_, err := env.svc.Add(ctx, "https://youtu.be/one", "Old")
	require.NoError(t, err)

	e, err := env.svc.Update(ctx, "one", "  New  ")
	require.NoError(t, err)
	require.Equal(t, "New", e.Title)
	require.Equal(t, "New", env.registry(t).Streams[0].Title)

	_, err = env.svc.Update(ctx, "nope", "x")
	require.ErrorIs(t, err, domain.ErrStreamNotFound)

	_, err = env.svc.Update(ctx, "one", "")
	require.ErrorIs(t, err, domain.ErrMissingTitle)
}

func TestBulkAdd(t *testing.T) {
	env := newTestEnv(t, StreamOptions{})
	ctx := context.Background()

	_, err := env.svc.Add(ctx, "https://youtu.be/existing", "Existing")
	require.NoError(t, err)

	text := strings.Join([]string{
		"https://youtu.be/aaa|Alpha",
		"",
		"https://youtu.be/bbb, Bravo",
		"https://youtu.be/ccc",
		"not a url",
		"https://youtu.be/existing",
	}, "\n")

	res, err := env.svc.BulkAdd(ctx, text)
	require.NoError(t, err)
	require.Equal(t, 3, res.Added)
	require.Equal(t, 2, res.Failed)
	require.Equal(t, []string{
		"line 5: " + domain.ErrInvalidURL.Error(),
		"line 6: " + domain.ErrDuplicateStream.Error(),
	}, res.Errors)

	reg := env.registry(t)
	require.Len(t, reg.Streams, 4)
	require.Equal(t, "Alpha", reg.Streams[1].Title)
	require.Equal(t, "Bravo", reg.Streams[2].Title)
	require.Equal(t, "Stream 4", reg.Streams[3].Title)
}

func TestBulkAdd_CapsErrorSamples(t *testing.T) {
	env := newTestEnv(t, StreamOptions{})

	var lines []string
	for i := 0; i < 8; i++ {
		lines = append(lines, fmt.Sprintf("bad line %d", i))
	}
	res, err := env.svc.BulkAdd(context.Background(), strings.Join(lines, "\n"))
	require.NoError(t, err)
	require.Equal(t, 0, res.Added)
	require.Equal(t, 8, res.Failed)
	require.Len(t, res.Errors, maxSampleErrors)
	require.Empty(t, env.registry(t).Streams)
}

func TestStatusAndAutoRefresh(t *testing.T) {
	env := newTestEnv(t, StreamOptions{Channels: []string{"UC1", "UC2"}})
	ctx := context.Background()
	env.source.key = false

	_, err := env.svc.Add(ctx, "https://youtu.be/one", "One")
	require.NoError(t, err)
	_, err = env.svc.Add(ctx, "https://www.youtube.com/playlist?list=PL1", "List")
	require.NoError(t, err)

	st, err := env.svc.Status(ctx)
	require.NoError(t, err)
	require.False(t, st.APIKeyConfigured)
	require.Equal(t, 2, st.ChannelCount)
	require.Equal(t, 2, st.StreamCount)
	require.Equal(t, 1, st.PlaylistCount)
	require.Nil(t, st.LastRefresh)
	require.False(t, st.AutoRefreshEnabled)

	st, err = env.svc.SetAutoRefresh(ctx, true)
	require.NoError(t, err)
	require.True(t, st.AutoRefreshEnabled)
	require.True(t, env.registry(t).AutoRefreshEnabled)
}

func TestCSV_RoundTrip(t *testing.T) {
	src := newTestEnv(t, StreamOptions{})
	src.source.key = false
	ctx := context.Background()

	_, err := src.svc.Add(ctx, "https://youtu.be/one", "Cam, with comma")
	require.NoError(t, err)
	_, err = src.svc.Add(ctx, "https://www.youtube.com/playlist?list=PL1", `Quoted "booth"`)
	require.NoError(t, err)

	text, err := src.svc.ExportCSV(ctx)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(text, "url,title,type,playlist_id\n"))

	dst := newTestEnv(t, StreamOptions{})
	res, err := dst.svc.ImportCSV(ctx, text)
	require.NoError(t, err)
	require.Equal(t, ImportResult{Imported: 2}, res)

	want := src.registry(t).Streams
	got := dst.registry(t).Streams
	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, want[i].ID, got[i].ID)
		require.Equal(t, want[i].Title, got[i].Title)
		require.Equal(t, want[i].URL, got[i].URL)
		require.Equal(t, want[i].Kind, got[i].Kind)
		require.Equal(t, want[i].PlaylistID, got[i].PlaylistID)
	}

	// importing again only reports duplicates
	res, err = dst.svc.ImportCSV(ctx, text)
	require.NoError(t, err)
	require.Equal(t, ImportResult{Duplicates: 2}, res)
}

func TestImportCSV_SkipsBadRows(t *testing.T) {
	env := newTestEnv(t, StreamOptions{})
	text := strings.Join([]string{
		"https://youtu.be/aaa,Alpha",
		"https://youtu.be/bbb,",
		"https://example.com/x,Nope",
		",Missing URL",
		"https://youtu.be/aaa,Alpha again",
		"https://www.youtube.com/channel/x,Booth,playlist,PL7",
	}, "\n")

	res, err := env.svc.ImportCSV(context.Background(), text)
	require.NoError(t, err)
	require.Equal(t, ImportResult{Imported: 2, Skipped: 3, Duplicates: 1}, res)

	reg := env.registry(t)
	require.Equal(t, "aaa", reg.Streams[0].ID)
	require.Equal(t, "playlist:PL7", reg.Streams[1].ID)
	require.Equal(t, "PL7", reg.Streams[1].PlaylistID)
}

func TestRefreshAll_PartialFailure(t *testing.T) {
	env := newTestEnv(t, StreamOptions{})
	ctx := context.Background()
	env.source.playlists["PLgood"] = []domain.PlaylistVideo{video("g1", "2025-03-01T00:00:00Z")}
	env.source.fetchErr["PLbad"] = &domain.UpstreamError{Op: "playlistItems", StatusCode: 404}

	_, err := env.svc.Add(ctx, "https://www.youtube.com/playlist?list=PLgood", "Good")
	require.NoError(t, err)
	_, err = env.svc.Add(ctx, "https://www.youtube.com/playlist?list=PLbad", "Bad")
	require.NoError(t, err)
	_, err = env.svc.Add(ctx, "https://youtu.be/plain", "Plain")
	require.NoError(t, err)

	env.source.playlists["PLgood"] = append(env.source.playlists["PLgood"], video("g2", "2025-04-01T00:00:00Z"))
	env.source.live["g2"] = true

	res, err := env.svc.RefreshAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, res.Refreshed)
	require.Equal(t, 1, res.Changed)
	require.Len(t, res.Failed, 1)
	require.Equal(t, "playlist:PLbad", res.Failed[0].ID)

	reg := env.registry(t)
	require.NotNil(t, reg.LastUpdated)
	good := reg.Streams[reg.Find("playlist:PLgood")]
	require.Equal(t, "g2", good.CachedLatestVideo.ID)
	require.True(t, good.CachedLatestVideo.IsLive)
	require.Nil(t, reg.Streams[reg.Find("playlist:PLbad")].CachedLatestVideo)
}

func TestRefreshAll_NoKey(t *testing.T) {
	env := newTestEnv(t, StreamOptions{})
	env.source.key = false

	_, err := env.svc.RefreshAll(context.Background())
	require.ErrorIs(t, err, domain.ErrNoAPIKey)
}

func TestRefreshPlaylist(t *testing.T) {
	env := newTestEnv(t, StreamOptions{})
	ctx := context.Background()
	env.source.playlists["PL1"] = []domain.PlaylistVideo{video("a", "2025-03-01T00:00:00Z")}

	_, err := env.svc.Add(ctx, "https://www.youtube.com/playlist?list=PL1", "List")
	require.NoError(t, err)
	_, err = env.svc.Add(ctx, "https://youtu.be/plain", "Plain")
	require.NoError(t, err)

	env.source.playlists["PL1"] = append(env.source.playlists["PL1"], video("b", "2025-03-02T00:00:00Z"))
	e, err := env.svc.RefreshPlaylist(ctx, "playlist:PL1")
	require.NoError(t, err)
	require.Equal(t, "b", e.CachedLatestVideo.ID)

	_, err = env.svc.RefreshPlaylist(ctx, "plain")
	require.ErrorIs(t, err, domain.ErrNotPlaylist)
	_, err = env.svc.RefreshPlaylist(ctx, "playlist:nope")
	require.ErrorIs(t, err, domain.ErrStreamNotFound)
}

func TestRefreshChannels(t *testing.T) {
	env := newTestEnv(t, StreamOptions{Channels: []string{"UC1", "UC2"}})
	ctx := context.Background()

	_, err := env.svc.Add(ctx, "https://youtu.be/known", "Known")
	require.NoError(t, err)

	env.source.channelLive["UC1"] = []domain.LiveVideo{
		{ID: "known", Title: "Already here", ChannelID: "UC1"},
		{ID: "fresh", Title: "Court 3 live", ChannelID: "UC1"},
	}
	env.source.channelErr["UC2"] = &domain.UpstreamError{Op: "search", StatusCode: 403}

	res, err := env.svc.RefreshChannels(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, res.Channels)
	require.Equal(t, 1, res.Added)
	require.Len(t, res.Failed, 1)
	require.Equal(t, "UC2", res.Failed[0].ID)

	reg := env.registry(t)
	require.Len(t, reg.Streams, 2)
	fresh := reg.Streams[1]
	require.Equal(t, "fresh", fresh.ID)
	require.Equal(t, "Court 3 live", fresh.Title)
	require.Equal(t, domain.KindVideo, fresh.Kind)
}

func TestAddChannelPlaylist(t *testing.T) {
	env := newTestEnv(t, StreamOptions{})
	ctx := context.Background()
	env.source.channelLists["UC1"] = []domain.ChannelPlaylist{
		{ID: "PLa", Title: "Court 1 Archive"},
		{ID: "PLb", Title: "Center Court Streams"},
	}
	env.source.playlists["PLb"] = []domain.PlaylistVideo{video("x", "2025-03-01T00:00:00Z")}

	e, err := env.svc.AddChannelPlaylist(ctx, "UC1", "center court", "")
	require.NoError(t, err)
	require.Equal(t, "playlist:PLb", e.ID)
	require.Equal(t, "Center Court Streams", e.Title)

	_, err = env.svc.AddChannelPlaylist(ctx, "UC1", "zzzzzz", "")
	require.ErrorIs(t, err, domain.ErrPlaylistNotFound)

	_, err = env.svc.AddChannelPlaylist(ctx, "", "center", "")
	require.True(t, domain.IsValidation(err))
}

func TestMatchPlaylist(t *testing.T) {
	lists := []domain.ChannelPlaylist{
		{ID: "1", Title: "Main Stage Recordings"},
		{ID: "2", Title: "Side Stage"},
	}

	p, ok := matchPlaylist(lists, "side stage")
	require.True(t, ok)
	require.Equal(t, "2", p.ID)

	// fuzzy: characters in order
	p, ok = matchPlaylist(lists, "mnstg")
	require.True(t, ok)
	require.Equal(t, "1", p.ID)

	_, ok = matchPlaylist(lists, "qqq")
	require.False(t, ok)
}

func TestGridEntries(t *testing.T) {
	env := newTestEnv(t, StreamOptions{StaleAfter: time.Minute})
	ctx := context.Background()
	env.source.playlists["PL1"] = []domain.PlaylistVideo{
		{ID: "v1", Title: "Booth A", PublishedAt: "2025-03-01T00:00:00Z"},
	}

	_, err := env.svc.Add(ctx, "https://youtu.be/solo", "Solo cam")
	require.NoError(t, err)
	_, err = env.svc.Add(ctx, "https://www.youtube.com/playlist?list=PL1", "Booth")
	require.NoError(t, err)

	tiles, err := env.svc.GridEntries(ctx, []string{"playlist:PL1", "unknown", "solo"})
	require.NoError(t, err)
	require.Len(t, tiles, 2)
	require.Equal(t, "v1", tiles[0].VideoID)
	require.Equal(t, domain.EmbedURL("v1"), tiles[0].EmbedURL)
	require.Equal(t, "solo", tiles[1].VideoID)

	all, err := env.svc.GridEntries(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "solo", all[0].VideoID)
}

func TestGridEntries_AutoRefreshStale(t *testing.T) {
	env := newTestEnv(t, StreamOptions{StaleAfter: time.Minute})
	ctx := context.Background()
	env.source.playlists["PL1"] = []domain.PlaylistVideo{video("v1", "2025-03-01T00:00:00Z")}

	_, err := env.svc.Add(ctx, "https://www.youtube.com/playlist?list=PL1", "Booth")
	require.NoError(t, err)
	env.source.playlists["PL1"] = append(env.source.playlists["PL1"], video("v2", "2025-03-02T00:00:00Z"))

	// fresh entries are not re-resolved, with or without auto-refresh
	tiles, err := env.svc.GridEntries(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, "v1", tiles[0].VideoID)

	_, err = env.svc.SetAutoRefresh(ctx, true)
	require.NoError(t, err)

	later := time.Now().Add(10 * time.Minute)
	env.svc.now = func() time.Time { return later }
	env.svc.resolver.now = func() time.Time { return later }

	tiles, err = env.svc.GridEntries(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, "v2", tiles[0].VideoID)

	reg := env.registry(t)
	require.Equal(t, "v2", reg.Streams[0].CachedLatestVideo.ID)
	require.True(t, reg.Streams[0].CacheTimestamp.Equal(later))
}

func TestCheckEmbeddable_Cached(t *testing.T) {
	env := newTestEnv(t, StreamOptions{})
	ctx := context.Background()
	env.source.embeds["abc"] = domain.EmbedStatus{VideoID: "abc", Embeddable: true, Title: "Cam", Message: "Video 'Cam' is embeddable"}

	_, err := env.svc.Add(ctx, "https://youtu.be/abc", "Cam")
	require.NoError(t, err)

	st, err := env.svc.CheckEmbeddable(ctx, "abc")
	require.NoError(t, err)
	require.True(t, st.Embeddable)

	st, err = env.svc.CheckEmbeddable(ctx, "abc")
	require.NoError(t, err)
	require.True(t, st.Embeddable)
	require.Equal(t, 1, env.source.embedCalls)

	env.svc.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	_, err = env.svc.CheckEmbeddable(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, 2, env.source.embedCalls)

	_, err = env.svc.CheckEmbeddable(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrStreamNotFound)
}

func TestCheckEmbeddable_UnresolvedPlaylist(t *testing.T) {
	env := newTestEnv(t, StreamOptions{})
	env.source.key = false
	ctx := context.Background()

	_, err := env.svc.Add(ctx, "https://www.youtube.com/playlist?list=PL1", "List")
	require.NoError(t, err)

	_, err = env.svc.CheckEmbeddable(ctx, "playlist:PL1")
	require.ErrorIs(t, err, domain.ErrNoVideos)
}

func TestInvalidateCache(t *testing.T) {
	env := newTestEnv(t, StreamOptions{})
	ctx := context.Background()
	env.source.embeds["abc"] = domain.EmbedStatus{VideoID: "abc", Embeddable: true, Message: "ok"}

	_, err := env.svc.Add(ctx, "https://youtu.be/abc", "Cam")
	require.NoError(t, err)

	_, err = env.svc.CheckEmbeddable(ctx, "abc")
	require.NoError(t, err)
	_, ok := env.cache.GetEmbedStatus("abc")
	require.True(t, ok)

	env.svc.InvalidateCache()
	_, ok = env.cache.GetEmbedStatus("abc")
	require.False(t, ok)

	_, err = env.svc.CheckEmbeddable(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, 2, env.source.embedCalls)
}
