// Package conf reads the optional TOML config file. The built-in sweep
// list and patterns never change; the config can only add to them.
package conf

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

type Config struct {
	// Extra directories to sweep, after the built-in set.
	ExtraDirs []string `toml:"extra_dirs"`

	// Extra glob patterns, swept after the derived ones.
	ExtraPatterns []string `toml:"extra_patterns"`

	// Rotating log file size cap, in megabytes.
	LogMaxSizeMB int `toml:"log_max_size_mb"`
}

const defaultLogMaxSizeMB = 5

func Default() Config {
	return Config{
		LogMaxSizeMB: defaultLogMaxSizeMB,
	}
}

// Load parses the config at path. An empty path means defaults; a path
// that doesn't exist or doesn't parse is an error, not a silent fallback.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	bs, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.WithMessage(err, "reading config file")
	}

	err = toml.Unmarshal(bs, &cfg)
	if err != nil {
		return cfg, errors.WithMessage(err, "parsing config file")
	}

	if cfg.LogMaxSizeMB <= 0 {
		cfg.LogMaxSizeMB = defaultLogMaxSizeMB
	}

	return cfg, nil
}
