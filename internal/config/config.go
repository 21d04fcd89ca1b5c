// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and ARCADE_* environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"strings"
)

// Storage backends.
const (
	BackendFile = "file"
	BackendBolt = "bolt"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataDir holds the score files, the statistics file or the bolt database.
	DataDir string `koanf:"data_dir"`

	// Backend selects the store: "file" or "bolt".
	Backend string `koanf:"backend"`

	// BoltFile is the database file name inside DataDir.
	BoltFile string `koanf:"bolt_file"`

	// LeaderboardSize is the number of entries kept per game.
	LeaderboardSize int `koanf:"leaderboard_size"`

	// DefaultPlayer replaces an empty player name.
	DefaultPlayer string `koanf:"default_player"`

	// RecentDays and ProgressionDays are the query windows used when a
	// request does not give one.
	RecentDays      int `koanf:"recent_days"`
	ProgressionDays int `koanf:"progression_days"`
}

// New returns a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		DataDir:         "data",
		Backend:         BackendFile,
		BoltFile:        "arcade.db",
		LeaderboardSize: 10,
		DefaultPlayer:   "Player",
		RecentDays:      7,
		ProgressionDays: 30,
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return invalid("addr must not be empty")
	case c.DataDir == "":
		return invalid("data_dir must not be empty")
	case c.Backend != BackendFile && c.Backend != BackendBolt:
		return invalid("backend must be %q or %q, got %q", BackendFile, BackendBolt, c.Backend)
	case c.Backend == BackendBolt && c.BoltFile == "":
		return invalid("bolt_file must not be empty")
	case c.LeaderboardSize < 1:
		return invalid("leaderboard_size must be positive, got %d", c.LeaderboardSize)
	case strings.TrimSpace(c.DefaultPlayer) == "":
		return invalid("default_player must not be blank")
	case c.RecentDays < 0 || c.ProgressionDays < 0:
		return invalid("recent_days and progression_days must not be negative")
	}
	return nil
}
