package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverrides_ApplyFoldsNonZeroValues(t *testing.T) {
	cfg := &Config{
		SearchWindow:   500,
		SearchLimit:    50,
		DebounceQuiet:  300 * time.Millisecond,
		ThrottleWindow: 500 * time.Millisecond,
		CacheListTTL:   2 * time.Minute,
		CacheSearchTTL: 5 * time.Minute,
	}

	o := &Overrides{}
	o.Search.Window = 200
	o.Cache.SearchTTL = 10 * time.Minute

	o.Apply(cfg)

	// Overridden values land, untouched ones keep their defaults
	assert.Equal(t, 200, cfg.SearchWindow)
	assert.Equal(t, 10*time.Minute, cfg.CacheSearchTTL)
	assert.Equal(t, 50, cfg.SearchLimit)
	assert.Equal(t, 300*time.Millisecond, cfg.DebounceQuiet)
	assert.Equal(t, 2*time.Minute, cfg.CacheListTTL)
}

func TestLoadOverrides_ParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  window: 250\n  limit: 30\n"), 0o644))

	o, err := LoadOverrides(path)
	require.NoError(t, err)
	assert.Equal(t, 250, o.Search.Window)
	assert.Equal(t, 30, o.Search.Limit)
}

func TestLoadOverrides_RejectsNegativeValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  window: -1\n"), 0o644))

	_, err := LoadOverrides(path)
	assert.Error(t, err)
}

func TestLoadOverrides_MissingFile(t *testing.T) {
	_, err := LoadOverrides(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
