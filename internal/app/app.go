// Package app wires configuration into the stores, the YouTube client and the
// stream service shared by both binaries.
package app

import (
	"log/slog"

	"github.com/mmcdole/multiview/internal/adapter"
	"github.com/mmcdole/multiview/internal/adapter/source/youtube"
	"github.com/mmcdole/multiview/internal/service"
	"github.com/mmcdole/multiview/internal/store"
)

// App holds the long-lived collaborators of a running binary
type App struct {
	Config      *adapter.Config
	Credentials *adapter.Credentials
	Client      *youtube.Client
	Cache       *store.CacheStore
	Registry    *store.RegistryStore
	Streams     *service.StreamService
	Logger      *slog.Logger
}

// New builds an App from cfg. The bbolt cache is opened once per process;
// when another process holds it the cache falls back to memory.
func New(cfg *adapter.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	creds := adapter.NewCredentials(cfg.YouTube.APIKey)
	client := youtube.NewClient(youtube.Options{
		BaseURL:           cfg.YouTube.BaseURL,
		OEmbedURL:         cfg.YouTube.OEmbedURL,
		Timeout:           cfg.YouTube.Timeout,
		RequestsPerSecond: cfg.YouTube.RequestsPerSecond,
	}, creds, logger)

	cache, err := store.NewCacheStore(cfg.Storage.CacheDir)
	if err != nil {
		logger.Warn("cache unavailable, using memory", "dir", cfg.Storage.CacheDir, "error", err)
		if cache, err = store.NewCacheStore(""); err != nil {
			return nil, err
		}
	}

	registry := store.NewRegistryStore(cfg.Storage.StreamsFile, logger)
	resolver := service.NewResolver(client, cache, cfg.Refresh.StaleAfter, logger)
	streams := service.NewStreamService(registry, client, resolver, cache, service.StreamOptions{
		Channels:   cfg.YouTube.Channels,
		StaleAfter: cfg.Refresh.StaleAfter,
	}, logger)

	return &App{
		Config:      cfg,
		Credentials: creds,
		Client:      client,
		Cache:       cache,
		Registry:    registry,
		Streams:     streams,
		Logger:      logger,
	}, nil
}

// Close releases the cache database
func (a *App) Close() error {
	return a.Cache.Close()
}
