package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_OverlaysFileOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minidb.toml")
	require.NoError(t, os.WriteFile(path, []byte("pool_size = 256\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.PoolSize)
	assert.Equal(t, Defaults().ReplacerK, cfg.ReplacerK)
	assert.Equal(t, Defaults().MaxDepth, cfg.MaxDepth)
}
