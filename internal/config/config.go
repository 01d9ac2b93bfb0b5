// Package config loads the tuning knobs minidb.toml carries: buffer pool
// size, the LRU-K replacer's lookback window, and the hash index
// directory's maximum depth.
package config

import (
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Config mirrors minidb.toml's top-level keys. Zero values are not valid
// configuration; Load always returns Defaults() overlaid with whatever the
// file sets.
type Config struct {
	PoolSize  int `toml:"pool_size"`
	ReplacerK int `toml:"replacer_k"`
	MaxDepth  int `toml:"max_depth"`
}

// Defaults returns the values Load starts from, and returns unchanged when
// the file does not exist.
func Defaults() Config {
	return Config{PoolSize: 128, ReplacerK: 2, MaxDepth: 8}
}

// Load reads path and overlays its keys onto Defaults(). A missing file is
// not an error: callers that never ship a minidb.toml still get workable
// defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "config: reading %s", path)
	}

	var file Config
	if err := toml.Unmarshal(data, &file); err != nil {
		return cfg, errors.Wrapf(err, "config: parsing %s", path)
	}
	if file.PoolSize != 0 {
		cfg.PoolSize = file.PoolSize
	}
	if file.ReplacerK != 0 {
		cfg.ReplacerK = file.ReplacerK
	}
	if file.MaxDepth != 0 {
		cfg.MaxDepth = file.MaxDepth
	}
	return cfg, nil
}
