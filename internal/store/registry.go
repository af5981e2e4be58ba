package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mmcdole/multiview/internal/domain"
)

// RegistryStore implements domain.RegistryRepository over a single JSON file.
// There is no cross-process locking: the last writer wins.
type RegistryStore struct {
	path   string
	logger *slog.Logger
}

// NewRegistryStore creates a store backed by path
func NewRegistryStore(path string, logger *slog.Logger) *RegistryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegistryStore{path: path, logger: logger}
}

// Path returns the backing file path
func (s *RegistryStore) Path() string {
	return s.path
}

// Load reads the registry. A missing file is an empty registry and the
// legacy bare-array layout loads with no last_updated.
func (s *RegistryStore) Load(ctx context.Context) (*domain.Registry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &domain.Registry{Streams: []domain.StreamEntry{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	reg, err := decodeRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", s.path, err)
	}
	return reg, nil
}

func decodeRegistry(data []byte) (*domain.Registry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return &domain.Registry{Streams: []domain.StreamEntry{}}, nil
	}

	var reg domain.Registry
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &reg.Streams); err != nil {
			return nil, err
		}
	} else if err := json.Unmarshal(trimmed, &reg); err != nil {
		return nil, err
	}

	if reg.Streams == nil {
		reg.Streams = []domain.StreamEntry{}
	}
	for i := range reg.Streams {
		normalizeEntry(&reg.Streams[i])
	}
	return &reg, nil
}

// normalizeEntry fills kind and the namespaced ID for entries written
// before either existed
func normalizeEntry(e *domain.StreamEntry) {
	if e.Kind == "" {
		if e.PlaylistID != "" {
			e.Kind = domain.KindPlaylist
		} else {
			e.Kind = domain.KindVideo
		}
	}
	if e.Kind == domain.KindPlaylist && e.PlaylistID != "" {
		e.ID = domain.PlaylistEntryID(e.PlaylistID)
	}
}

// Save writes the registry to a temp file and renames it into place
func (s *RegistryStore) Save(ctx context.Context, reg *domain.Registry) error {
	out := *reg
	if out.Streams == nil {
		out.Streams = []domain.StreamEntry{}
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create registry dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".streams-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace registry: %w", err)
	}

	s.logger.Debug("registry saved", "path", s.path, "streams", len(out.Streams))
	return nil
}
