package session

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the tunables the engine needs at construction time.
type Config struct {
	// MaxTotalLogSize bounds, in vdiff terms, how far behind a local
	// user's tracked vector may trail before can-undo/can-redo are
	// forced false and before cleanup may reclaim that history.
	MaxTotalLogSize uint64 `yaml:"max_total_log_size"`
}

// DefaultConfig returns the engine's documented defaults.
func DefaultConfig() Config {
	return Config{MaxTotalLogSize: 2048}
}

// LoadConfig reads a YAML config file, filling in defaults for any field
// left unset.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "session: load config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "session: parse config")
	}
	if cfg.MaxTotalLogSize == 0 {
		cfg.MaxTotalLogSize = DefaultConfig().MaxTotalLogSize
	}
	return cfg, nil
}
