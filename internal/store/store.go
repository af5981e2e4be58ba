package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mmcdole/multiview/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketPlaylists = []byte("playlists")
	bucketEmbeds    = []byte("embeds")
)

var allBuckets = [][]byte{bucketPlaylists, bucketEmbeds}

// CacheStore implements domain.Store using BoltDB.
type CacheStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewCacheStore opens (or creates) the cache under cacheDir.
// An empty cacheDir gives a memory-only store.
func NewCacheStore(cacheDir string) (*CacheStore, error) {
	if cacheDir == "" {
		return &CacheStore{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(cacheDir, "multiview.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &CacheStore{db: db, cache: make(map[string][]byte)}, nil
}

func (s *CacheStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *CacheStore) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *CacheStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[string(bucket)+":"+key] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *CacheStore) delete(bucket []byte, key string) {
	s.mu.Lock()
	delete(s.cache, string(bucket)+":"+key)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucket); b != nil {
			b.Delete([]byte(key))
		}
		return nil
	})
}

// === Playlist snapshots (key: items:{playlistID}) ===

func (s *CacheStore) GetPlaylistSnapshot(playlistID string) (*domain.PlaylistSnapshot, bool) {
	var snap domain.PlaylistSnapshot
	if !s.get(bucketPlaylists, "items:"+playlistID, &snap) {
		return nil, false
	}
	return &snap, true
}

func (s *CacheStore) SavePlaylistSnapshot(snap *domain.PlaylistSnapshot) error {
	return s.set(bucketPlaylists, "items:"+snap.PlaylistID, snap)
}

func (s *CacheStore) InvalidatePlaylist(playlistID string) {
	s.delete(bucketPlaylists, "items:"+playlistID)
}

// === Embeddability (key: video:{videoID}) ===

func (s *CacheStore) GetEmbedStatus(videoID string) (*domain.EmbedStatus, bool) {
	var status domain.EmbedStatus
	if !s.get(bucketEmbeds, "video:"+videoID, &status) {
		return nil, false
	}
	return &status, true
}

func (s *CacheStore) SaveEmbedStatus(status *domain.EmbedStatus) error {
	return s.set(bucketEmbeds, "video:"+status.VideoID, status)
}

// InvalidateAll wipes every bucket
func (s *CacheStore) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if err := tx.DeleteBucket(bucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}
