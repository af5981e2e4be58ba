package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mmcdole/multiview/internal/domain"
)

// maxLiveCandidates bounds how many of the newest members are checked for
// a live broadcast
const maxLiveCandidates = 100

// Resolver picks the video to display for a playlist: the newest live
// broadcast if any, else the newest upload
type Resolver struct {
	source     domain.VideoSource
	cache      domain.Store // optional
	staleAfter time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewResolver creates a resolver. cache may be nil.
func NewResolver(source domain.VideoSource, cache domain.Store, staleAfter time.Duration, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		source:     source,
		cache:      cache,
		staleAfter: staleAfter,
		logger:     logger,
		now:        time.Now,
	}
}

// Resolve fetches the playlist's members and picks one
func (r *Resolver) Resolve(ctx context.Context, playlistID string) (domain.VideoRef, error) {
	videos, err := r.fetch(ctx, playlistID)
	if err != nil {
		return domain.VideoRef{}, err
	}
	return r.pick(ctx, playlistID, videos)
}

// ResolveCached is Resolve, but reuses a membership snapshot younger than the
// staleness window instead of paging the playlist again. Live status is
// always checked fresh.
func (r *Resolver) ResolveCached(ctx context.Context, playlistID string) (domain.VideoRef, error) {
	if r.cache != nil {
		if snap, ok := r.cache.GetPlaylistSnapshot(playlistID); ok && r.now().Sub(snap.FetchedAt) < r.staleAfter && len(snap.Videos) > 0 {
			r.logger.Debug("using cached playlist snapshot", "playlist", playlistID, "videos", len(snap.Videos))
			return r.pick(ctx, playlistID, snap.Videos)
		}
	}
	return r.Resolve(ctx, playlistID)
}

func (r *Resolver) fetch(ctx context.Context, playlistID string) ([]domain.PlaylistVideo, error) {
	videos, err := r.source.FetchAllPlaylistVideos(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("fetch playlist %s: %w", playlistID, err)
	}
	if len(videos) == 0 {
		return nil, fmt.Errorf("playlist %s: %w", playlistID, domain.ErrNoVideos)
	}

	if r.cache != nil {
		snap := &domain.PlaylistSnapshot{PlaylistID: playlistID, Videos: videos, FetchedAt: r.now()}
		if err := r.cache.SavePlaylistSnapshot(snap); err != nil {
			r.logger.Warn("failed to cache playlist snapshot", "playlist", playlistID, "error", err)
		}
	}
	return videos, nil
}

func (r *Resolver) pick(ctx context.Context, playlistID string, videos []domain.PlaylistVideo) (domain.VideoRef, error) {
	sorted := sortNewestFirst(videos)
	if len(sorted) != len(videos) {
		r.logger.Warn("unparseable publish time, keeping playlist order", "playlist", playlistID)
		sorted = videos
	}

	candidates := sorted[:min(len(sorted), maxLiveCandidates)]
	ids := make([]string, len(candidates))
	for i, v := range candidates {
		ids[i] = v.ID
	}

	details, err := r.source.CheckLiveStatus(ctx, ids)
	if err != nil {
		return domain.VideoRef{}, fmt.Errorf("check live status for %s: %w", playlistID, err)
	}

	for _, v := range candidates {
		d, ok := details[v.ID]
		if !ok || !d.IsLive {
			continue
		}
		r.logger.Info("found live video", "playlist", playlistID, "video", v.ID, "title", d.Title)
		return domain.VideoRef{
			ID:           v.ID,
			Title:        d.Title,
			URL:          domain.WatchURL(v.ID),
			PublishedAt:  d.PublishedAt,
			IsLive:       true,
			ThumbnailURL: domain.MediumThumbnail(d.Thumbnails),
		}, nil
	}

	latest := sorted[0]
	ref := domain.VideoRef{
		ID:           latest.ID,
		Title:        latest.Title,
		URL:          domain.WatchURL(latest.ID),
		PublishedAt:  latest.PublishedAt,
		ThumbnailURL: domain.MediumThumbnail(latest.Thumbnails),
	}
	if d, ok := details[latest.ID]; ok {
		if d.Title != "" {
			ref.Title = d.Title
		}
		if thumb := domain.MediumThumbnail(d.Thumbnails); thumb != "" {
			ref.ThumbnailURL = thumb
		}
	}
	r.logger.Info("no live video, using most recent", "playlist", playlistID, "video", ref.ID)
	return ref, nil
}

// sortNewestFirst returns a copy ordered by publish time, newest first.
// It returns nil if any publish time fails to parse.
func sortNewestFirst(videos []domain.PlaylistVideo) []domain.PlaylistVideo {
	type stamped struct {
		v  domain.PlaylistVideo
		ts time.Time
	}
	items := make([]stamped, len(videos))
	for i, v := range videos {
		ts, err := v.Published()
		if err != nil {
			return nil
		}
		items[i] = stamped{v, ts}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ts.After(items[j].ts)
	})

	out := make([]domain.PlaylistVideo, len(items))
	for i, it := range items {
		out[i] = it.v
	}
	return out
}
