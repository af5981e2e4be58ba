package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mmcdole/multiview/internal/adapter"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *adapter.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := adapter.DefaultConfig()
	cfg.Storage.StreamsFile = filepath.Join(dir, "streams.json")
	cfg.Storage.CacheDir = filepath.Join(dir, "cache")
	return cfg
}

func TestNew_WiresRegistry(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg, adapter.NullLogger())
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	entry, err := a.Streams.Add(ctx, "https://youtu.be/dQw4w9WgXcQ", "Cam A")
	require.NoError(t, err)
	require.Equal(t, "dQw4w9WgXcQ", entry.ID)
	require.FileExists(t, cfg.Storage.StreamsFile)

	st, err := a.Streams.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, st.StreamCount)
	require.False(t, st.APIKeyConfigured)
}

func TestNew_RuntimeKey(t *testing.T) {
	a, err := New(testConfig(t), adapter.NullLogger())
	require.NoError(t, err)
	defer a.Close()

	require.False(t, a.Client.HasKey())
	a.Credentials.SetKey("AIza-runtime")
	require.True(t, a.Client.HasKey())
}

func TestNew_CacheLockedFallsBackToMemory(t *testing.T) {
	cfg := testConfig(t)
	first, err := New(cfg, adapter.NullLogger())
	require.NoError(t, err)
	defer first.Close()

	second, err := New(cfg, adapter.NullLogger())
	require.NoError(t, err)
	defer second.Close()

	require.NotSame(t, first.Cache, second.Cache)
}
