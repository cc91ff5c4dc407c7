package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/neotheprogramist/scheduler/scheduler"
)

// Config is a sched.toml run configuration.
type Config struct {
	// Capacity is the combined byte budget of the data and call
	// stacks. Zero means the engine default.
	Capacity int `toml:"capacity"`

	Checkpoint CheckpointConfig `toml:"checkpoint"`
}

// CheckpointConfig controls the optional checkpoint journal.
type CheckpointConfig struct {
	// Path of the SQLite journal. Empty disables checkpointing.
	Path string `toml:"path"`

	// Every is the checkpoint interval in completed steps.
	Every uint64 `toml:"every"`
}

// defaultConfig returns the configuration used when no sched.toml is
// given.
func defaultConfig() *Config {
	return &Config{
		Capacity: scheduler.DefaultCapacity,
		Checkpoint: CheckpointConfig{
			Every: 1,
		},
	}
}

// loadConfig parses a sched.toml file and fills in defaults for
// omitted keys.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	cfg := defaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if cfg.Capacity < 0 {
		return nil, fmt.Errorf("%s: capacity must not be negative", path)
	}
	if cfg.Checkpoint.Every == 0 {
		cfg.Checkpoint.Every = 1
	}
	return cfg, nil
}
