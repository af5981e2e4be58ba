package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/multiview/internal/domain"
)

const maxSampleErrors = 5

// StreamOptions configures a StreamService
type StreamOptions struct {
	Channels   []string      // monitored channel IDs for live search
	StaleAfter time.Duration // age at which a playlist resolution is re-done
}

// StreamService owns every registry mutation. Each action holds mu across its
// whole load-mutate-save cycle so actions in one process never interleave.
type StreamService struct {
	repo     domain.RegistryRepository
	source   domain.VideoSource
	resolver *Resolver
	cache    domain.Store // optional
	opts     StreamOptions
	logger   *slog.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewStreamService creates a new stream service
func NewStreamService(
	repo domain.RegistryRepository,
	source domain.VideoSource,
	resolver *Resolver,
	cache domain.Store,
	opts StreamOptions,
	logger *slog.Logger,
) *StreamService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 5 * time.Minute
	}
	return &StreamService{
		repo:     repo,
		source:   source,
		resolver: resolver,
		cache:    cache,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// mutate runs fn against the freshly loaded registry and saves it if fn
// succeeds. Callers must hold s.mu.
func (s *StreamService) mutate(ctx context.Context, fn func(reg *domain.Registry) error) error {
	reg, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}
	if err := fn(reg); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, reg); err != nil {
		return fmt.Errorf("save registry: %w", err)
	}
	return nil
}

func (s *StreamService) hasKey() bool {
	return s.source != nil && s.source.HasKey()
}

// List returns a copy of the registry
func (s *StreamService) List(ctx context.Context) (domain.Registry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, err := s.repo.Load(ctx)
	if err != nil {
		return domain.Registry{}, fmt.Errorf("load registry: %w", err)
	}
	return reg.Clone(), nil
}

// Get returns one entry by ID
func (s *StreamService) Get(ctx context.Context, id string) (*domain.StreamEntry, error) {
	reg, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	i := reg.Find(id)
	if i < 0 {
		return nil, fmt.Errorf("%s: %w", id, domain.ErrStreamNotFound)
	}
	return &reg.Streams[i], nil
}

// Add registers a video or playlist URL. Playlist URLs win over video URLs.
// A blank title is filled from the API for playlists when a key is set.
func (s *StreamService) Add(ctx context.Context, rawURL, title string) (*domain.StreamEntry, error) {
	rawURL = strings.TrimSpace(rawURL)
	title = strings.TrimSpace(title)

	id, kind, playlistID, err := domain.Classify(rawURL)
	if err != nil {
		return nil, err
	}
	if title == "" && (kind != domain.KindPlaylist || !s.hasKey()) {
		return nil, domain.ErrMissingTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var added domain.StreamEntry
	err = s.mutate(ctx, func(reg *domain.Registry) error {
		if reg.Find(id) >= 0 {
			return fmt.Errorf("%s: %w", id, domain.ErrDuplicateStream)
		}
		if title == "" {
			t, err := s.source.PlaylistTitle(ctx, playlistID)
			if err != nil {
				return fmt.Errorf("%w: playlist title lookup failed: %v", domain.ErrMissingTitle, err)
			}
			title = strings.TrimSpace(t)
			if title == "" {
				return fmt.Errorf("%w: playlist %s has no title", domain.ErrMissingTitle, playlistID)
			}
		}

		added = domain.StreamEntry{
			ID:         id,
			Title:      title,
			URL:        rawURL,
			Kind:       kind,
			PlaylistID: playlistID,
		}
		s.resolveInto(ctx, &added)
		reg.Streams = append(reg.Streams, added)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stream added", "id", added.ID, "kind", added.Kind, "title", added.Title)
	return &added, nil
}

// resolveInto fills a new playlist entry's cache when a key is available.
// Failures are logged; the entry is still added.
func (s *StreamService) resolveInto(ctx context.Context, e *domain.StreamEntry) {
	if !e.IsPlaylist() || !s.hasKey() || s.resolver == nil {
		return
	}
	ref, err := s.resolver.Resolve(ctx, e.PlaylistID)
	if err != nil {
		s.logger.Warn("initial playlist resolution failed", "id", e.ID, "error", err)
		return
	}
	ts := s.now()
	e.CachedLatestVideo = &ref
	e.CacheTimestamp = &ts
}

// Remove deletes the entry with the given ID
func (s *StreamService) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, func(reg *domain.Registry) error {
		i := reg.Find(id)
		if i < 0 {
			return fmt.Errorf("%s: %w", id, domain.ErrStreamNotFound)
		}
		s.logger.Info("stream removed", "id", id)
		reg.Streams = append(reg.Streams[:i], reg.Streams[i+1:]...)
		return nil
	})
}

// RemoveByTitle deletes the first entry with the given title. Titles are not
// unique; later entries with the same title are kept.
func (s *StreamService) RemoveByTitle(ctx context.Context, title string) (*domain.StreamEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed domain.StreamEntry
	err := s.mutate(ctx, func(reg *domain.Registry) error {
		i := reg.FindByTitle(title)
		if i < 0 {
			return fmt.Errorf("title %q: %w", title, domain.ErrStreamNotFound)
		}
		removed = reg.Streams[i]
		reg.Streams = append(reg.Streams[:i], reg.Streams[i+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("stream removed", "id", removed.ID, "title", title)
	return &removed, nil
}

// Update renames an entry in place
func (s *StreamService) Update(ctx context.Context, id, title string) (*domain.StreamEntry, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.ErrMissingTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var updated domain.StreamEntry
	err := s.mutate(ctx, func(reg *domain.Registry) error {
		i := reg.Find(id)
		if i < 0 {
			return fmt.Errorf("%s: %w", id, domain.ErrStreamNotFound)
		}
		reg.Streams[i].Title = title
		updated = reg.Streams[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// BulkResult reports the outcome of BulkAdd
type BulkResult struct {
	Added  int      `json:"added"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors"` // at most 5 samples, "line N: reason"
}

// BulkAdd adds one stream per non-blank line. Lines are a bare URL,
// "url,title" or "url|title". Untitled entries are named "Stream N" after
// their position in the registry.
func (s *StreamService) BulkAdd(ctx context.Context, text string) (BulkResult, error) {
	res := BulkResult{Errors: []string{}}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(ctx, func(reg *domain.Registry) error {
		for n, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			rawURL, title := splitBulkLine(line)
			id, kind, playlistID, err := domain.Classify(rawURL)
			if err == nil && reg.Find(id) >= 0 {
				err = domain.ErrDuplicateStream
			}
			if err != nil {
				res.Failed++
				if len(res.Errors) < maxSampleErrors {
					res.Errors = append(res.Errors, fmt.Sprintf("line %d: %v", n+1, err))
				}
				continue
			}

			if title == "" {
				title = "Stream " + strconv.Itoa(len(reg.Streams)+1)
			}
			reg.Streams = append(reg.Streams, domain.StreamEntry{
				ID:         id,
				Title:      title,
				URL:        rawURL,
				Kind:       kind,
				PlaylistID: playlistID,
			})
			res.Added++
		}
		if res.Added == 0 {
			return errNothingToSave
		}
		return nil
	})
	if err != nil && !errors.Is(err, errNothingToSave) {
		return BulkResult{}, err
	}

	s.logger.Info("bulk add finished", "added", res.Added, "failed", res.Failed)
	return res, nil
}

// errNothingToSave aborts a mutation without writing
var errNothingToSave = errors.New("nothing to save")

func splitBulkLine(line string) (rawURL, title string) {
	sep := "|"
	if !strings.Contains(line, sep) {
		sep = ","
	}
	rawURL, title, _ = strings.Cut(line, sep)
	return strings.TrimSpace(rawURL), strings.TrimSpace(title)
}

// InvalidateCache drops cached playlist snapshots and embed checks so the
// next read goes back to the API
func (s *StreamService) InvalidateCache() {
	if s.cache == nil {
		return
	}
	s.cache.InvalidateAll()
	s.logger.Info("response cache cleared")
}

// Status summarizes configuration and registry state
type Status struct {
	APIKeyConfigured   bool       `json:"api_key_configured"`
	ChannelCount       int        `json:"channel_count"`
	StreamCount        int        `json:"stream_count"`
	PlaylistCount      int        `json:"playlist_count"`
	LastRefresh        *time.Time `json:"last_refresh"`
	AutoRefreshEnabled bool       `json:"auto_refresh_enabled"`
}

// Status returns the current status summary
func (s *StreamService) Status(ctx context.Context) (Status, error) {
	reg, err := s.List(ctx)
	if err != nil {
		return Status{}, err
	}
	return s.status(&reg), nil
}

func (s *StreamService) status(reg *domain.Registry) Status {
	return Status{
		APIKeyConfigured:   s.hasKey(),
		ChannelCount:       len(s.opts.Channels),
		StreamCount:        len(reg.Streams),
		PlaylistCount:      len(reg.Playlists()),
		LastRefresh:        reg.LastUpdated,
		AutoRefreshEnabled: reg.AutoRefreshEnabled,
	}
}

// SetAutoRefresh toggles render-time playlist refresh
func (s *StreamService) SetAutoRefresh(ctx context.Context, enabled bool) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st Status
	err := s.mutate(ctx, func(reg *domain.Registry) error {
		reg.AutoRefreshEnabled = enabled
		st = s.status(reg)
		return nil
	})
	return st, err
}

// ValidateKey checks the current API key against the API
func (s *StreamService) ValidateKey(ctx context.Context) (bool, string) {
	if s.source == nil {
		return false, "No API key available"
	}
	return s.source.ValidateKey(ctx)
}
