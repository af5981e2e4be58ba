package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/multiview/internal/domain"
)

// embedCacheTTL is how long an oEmbed answer is reused
const embedCacheTTL = 24 * time.Hour

// RefreshFailure is one playlist or channel that could not be refreshed
type RefreshFailure struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	Error string `json:"error"`
}

// RefreshResult reports the outcome of RefreshAll
type RefreshResult struct {
	Refreshed   int              `json:"refreshed"`
	Changed     int              `json:"changed"`
	Failed      []RefreshFailure `json:"failed"`
	LastUpdated time.Time        `json:"last_updated"`
}

// ChannelRefreshResult reports the outcome of RefreshChannels
type ChannelRefreshResult struct {
	Channels int              `json:"channels"`
	Added    int              `json:"added"`
	Failed   []RefreshFailure `json:"failed"`
}

// RefreshReport combines a channel search and a playlist refresh
type RefreshReport struct {
	Channels  ChannelRefreshResult `json:"channels"`
	Playlists RefreshResult        `json:"playlists"`
}

// RefreshAll re-resolves every playlist entry. A failing playlist is
// reported and keeps its previous cache; the others still refresh.
func (s *StreamService) RefreshAll(ctx context.Context) (RefreshResult, error) {
	if !s.hasKey() {
		return RefreshResult{}, domain.ErrNoAPIKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := RefreshResult{Failed: []RefreshFailure{}}
	err := s.mutate(ctx, func(reg *domain.Registry) error {
		for _, i := range reg.Playlists() {
			e := &reg.Streams[i]
			ref, err := s.resolver.Resolve(ctx, e.PlaylistID)
			if err != nil {
				s.logger.Warn("playlist refresh failed", "id", e.ID, "error", err)
				res.Failed = append(res.Failed, RefreshFailure{ID: e.ID, Title: e.Title, Error: err.Error()})
				continue
			}
			if e.CachedLatestVideo == nil || e.CachedLatestVideo.ID != ref.ID {
				res.Changed++
			}
			setCache(e, ref, s.now())
			res.Refreshed++
		}

		now := s.now()
		reg.LastUpdated = &now
		res.LastUpdated = now
		return nil
	})
	if err != nil {
		return RefreshResult{}, err
	}

	s.logger.Info("playlists refreshed", "refreshed", res.Refreshed, "changed", res.Changed, "failed", len(res.Failed))
	return res, nil
}

// RefreshPlaylist re-resolves a single playlist entry
func (s *StreamService) RefreshPlaylist(ctx context.Context, id string) (*domain.StreamEntry, error) {
	if !s.hasKey() {
		return nil, domain.ErrNoAPIKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out domain.StreamEntry
	err := s.mutate(ctx, func(reg *domain.Registry) error {
		i := reg.Find(id)
		if i < 0 {
			return fmt.Errorf("%s: %w", id, domain.ErrStreamNotFound)
		}
		e := &reg.Streams[i]
		if !e.IsPlaylist() {
			return fmt.Errorf("%s: %w", id, domain.ErrNotPlaylist)
		}
		ref, err := s.resolver.Resolve(ctx, e.PlaylistID)
		if err != nil {
			return err
		}
		setCache(e, ref, s.now())
		out = *e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func setCache(e *domain.StreamEntry, ref domain.VideoRef, now time.Time) {
	e.CachedLatestVideo = &ref
	e.CacheTimestamp = &now
}

// RefreshChannels searches every monitored channel for live broadcasts and
// adds the ones not yet registered as video entries
func (s *StreamService) RefreshChannels(ctx context.Context) (ChannelRefreshResult, error) {
	if !s.hasKey() {
		return ChannelRefreshResult{}, domain.ErrNoAPIKey
	}

	res := ChannelRefreshResult{Channels: len(s.opts.Channels), Failed: []RefreshFailure{}}
	if len(s.opts.Channels) == 0 {
		return res, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(ctx, func(reg *domain.Registry) error {
		for _, ch := range s.opts.Channels {
			live, err := s.source.SearchLiveVideos(ctx, ch)
			if err != nil {
				s.logger.Warn("channel live search failed", "channel", ch, "error", err)
				res.Failed = append(res.Failed, RefreshFailure{ID: ch, Error: err.Error()})
				continue
			}
			for _, v := range live {
				if reg.Find(v.ID) >= 0 {
					continue
				}
				title := v.Title
				if title == "" {
					title = v.ChannelTitle + " live"
				}
				reg.Streams = append(reg.Streams, domain.StreamEntry{
					ID:    v.ID,
					Title: title,
					URL:   domain.WatchURL(v.ID),
					Kind:  domain.KindVideo,
				})
				res.Added++
			}
		}
		if res.Added == 0 {
			return errNothingToSave
		}
		return nil
	})
	if err != nil && !errors.Is(err, errNothingToSave) {
		return ChannelRefreshResult{}, err
	}

	s.logger.Info("channels refreshed", "channels", res.Channels, "added", res.Added, "failed", len(res.Failed))
	return res, nil
}

// Refresh runs the channel search and then the playlist refresh
func (s *StreamService) Refresh(ctx context.Context) (RefreshReport, error) {
	var report RefreshReport
	var err error
	if report.Channels, err = s.RefreshChannels(ctx); err != nil {
		return RefreshReport{}, err
	}
	if report.Playlists, err = s.RefreshAll(ctx); err != nil {
		return RefreshReport{}, err
	}
	return report, nil
}

// AddChannelPlaylist finds the channel playlist whose title best matches
// deviceName and registers it. A blank title uses the playlist's title.
func (s *StreamService) AddChannelPlaylist(ctx context.Context, channelID, deviceName, title string) (*domain.StreamEntry, error) {
	channelID = strings.TrimSpace(channelID)
	deviceName = strings.TrimSpace(deviceName)
	if channelID == "" || deviceName == "" {
		return nil, fmt.Errorf("%w: channel_id and device_name are required", domain.ErrMissingURL)
	}
	if !s.hasKey() {
		return nil, domain.ErrNoAPIKey
	}

	lists, err := s.source.ChannelPlaylists(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("list playlists for %s: %w", channelID, err)
	}
	match, ok := matchPlaylist(lists, deviceName)
	if !ok {
		return nil, fmt.Errorf("device %q: %w", deviceName, domain.ErrPlaylistNotFound)
	}

	if strings.TrimSpace(title) == "" {
		title = match.Title
	}
	s.logger.Info("matched device playlist", "device", deviceName, "playlist", match.ID, "title", match.Title)
	return s.Add(ctx, domain.PlaylistURL(match.ID), title)
}

// matchPlaylist prefers a case-insensitive substring hit in channel order,
// then the closest fuzzy match
func matchPlaylist(lists []domain.ChannelPlaylist, deviceName string) (domain.ChannelPlaylist, bool) {
	needle := strings.ToLower(deviceName)
	titles := make([]string, len(lists))
	for i, p := range lists {
		if strings.Contains(strings.ToLower(p.Title), needle) {
			return p, true
		}
		titles[i] = p.Title
	}

	ranks := fuzzy.RankFindFold(deviceName, titles)
	if len(ranks) == 0 {
		return domain.ChannelPlaylist{}, false
	}
	sort.Sort(ranks)
	return lists[ranks[0].OriginalIndex], true
}

// GridEntries returns render-ready tiles for ids in the given order (all
// entries when ids is empty). Unknown ids are skipped. With auto-refresh on
// and a key available, stale playlists are re-resolved before rendering.
func (s *StreamService) GridEntries(ctx context.Context, ids []string) ([]domain.GridTile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}

	var idx []int
	if len(ids) == 0 {
		for i := range reg.Streams {
			idx = append(idx, i)
		}
	} else {
		for _, id := range ids {
			if i := reg.Find(id); i >= 0 {
				idx = append(idx, i)
			}
		}
	}

	dirty := false
	if reg.AutoRefreshEnabled && s.hasKey() && s.resolver != nil {
		now := s.now()
		for _, i := range idx {
			e := &reg.Streams[i]
			if !e.IsPlaylist() || !e.IsStale(now, s.opts.StaleAfter) {
				continue
			}
			ref, err := s.resolver.ResolveCached(ctx, e.PlaylistID)
			if err != nil {
				s.logger.Warn("render-time refresh failed", "id", e.ID, "error", err)
				continue
			}
			setCache(e, ref, now)
			dirty = true
		}
	}
	if dirty {
		if err := s.repo.Save(ctx, reg); err != nil {
			s.logger.Warn("failed to persist render-time refresh", "error", err)
		}
	}

	tiles := make([]domain.GridTile, 0, len(idx))
	for _, i := range idx {
		tiles = append(tiles, domain.NewGridTile(reg.Streams[i]))
	}
	return tiles, nil
}

// CheckEmbeddable reports whether the entry's current video can be embedded
func (s *StreamService) CheckEmbeddable(ctx context.Context, id string) (domain.EmbedStatus, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return domain.EmbedStatus{}, err
	}
	videoID := e.VideoID()
	if videoID == "" {
		return domain.EmbedStatus{}, fmt.Errorf("%s not resolved yet: %w", id, domain.ErrNoVideos)
	}

	if s.cache != nil {
		if st, ok := s.cache.GetEmbedStatus(videoID); ok && s.now().Sub(st.CheckedAt) < embedCacheTTL {
			return *st, nil
		}
	}

	st, err := s.source.CheckEmbeddable(ctx, videoID)
	if err != nil {
		return domain.EmbedStatus{}, err
	}
	if s.cache != nil {
		if err := s.cache.SaveEmbedStatus(&st); err != nil {
			s.logger.Warn("failed to cache embed status", "video", videoID, "error", err)
		}
	}
	return st, nil
}
