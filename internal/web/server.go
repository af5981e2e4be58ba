// Package web serves the multiview HTTP API and the grid page.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mmcdole/multiview/internal/domain"
	"github.com/mmcdole/multiview/internal/service"
)

// StreamAPI is the registry surface the handlers need
type StreamAPI interface {
	List(ctx context.Context) (domain.Registry, error)
	Add(ctx context.Context, rawURL, title string) (*domain.StreamEntry, error)
	Update(ctx context.Context, id, title string) (*domain.StreamEntry, error)
	Remove(ctx context.Context, id string) error
	BulkAdd(ctx context.Context, text string) (service.BulkResult, error)
	ExportCSV(ctx context.Context) (string, error)
	ImportCSV(ctx context.Context, text string) (service.ImportResult, error)
	AddChannelPlaylist(ctx context.Context, channelID, deviceName, title string) (*domain.StreamEntry, error)
	CheckEmbeddable(ctx context.Context, id string) (domain.EmbedStatus, error)
	Refresh(ctx context.Context) (service.RefreshReport, error)
	Status(ctx context.Context) (service.Status, error)
	SetAutoRefresh(ctx context.Context, enabled bool) (service.Status, error)
	ValidateKey(ctx context.Context) (bool, string)
	GridEntries(ctx context.Context, ids []string) ([]domain.GridTile, error)
}

// KeySetter replaces the API key for the running process
type KeySetter interface {
	SetKey(key string)
}

// Options configures the server
type Options struct {
	GridSize int // default tiles on the grid page: 1, 4 or 9
}

// Server routes HTTP requests to the stream service
type Server struct {
	streams StreamAPI
	keys    KeySetter
	opts    Options
	logger  *slog.Logger
	router  chi.Router
}

// NewServer builds the router. keys may be nil, which disables POST /api/key.
func NewServer(streams StreamAPI, keys KeySetter, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if !validGridSize(opts.GridSize) {
		opts.GridSize = 4
	}
	s := &Server{
		streams: streams,
		keys:    keys,
		opts:    opts,
		logger:  logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleGrid)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/key", s.handleSetKey)
		r.Put("/settings", s.handleSettings)

		r.Route("/streams", func(r chi.Router) {
			r.Get("/", s.handleListStreams)
			r.Post("/", s.handleAddStream)
			r.Post("/bulk", s.handleBulkAdd)
			r.Get("/export", s.handleExport)
			r.Post("/import", s.handleImport)
			r.Post("/live-playlist", s.handleLivePlaylist)

			r.Put("/{id}", s.handleUpdateStream)
			r.Delete("/{id}", s.handleDeleteStream)
			r.Get("/{id}/embeddable", s.handleEmbeddable)
		})
	})
	return r
}

// logRequests logs one line per request at info, or warn for 5xx
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		level := slog.LevelInfo
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		s.logger.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorStatus maps domain errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case domain.IsValidation(err), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStreamNotFound),
		errors.Is(err, domain.ErrPlaylistNotFound),
		errors.Is(err, domain.ErrNoVideos),
		errors.Is(err, domain.ErrNotPlaylist):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoAPIKey):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

var errBadRequest = errors.New("invalid request body")

// maxBodyBytes caps request bodies, CSV imports included
const maxBodyBytes = 4 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dest); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
