// Package config defines service configuration structures and loading hooks.
package config

import (
	"context"
	"time"

	"github.com/okian/teambalance/internal/domain/model"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// MaxRosterSize caps the number of players accepted per request.
	MaxRosterSize int `koanf:"max_roster_size"`

	// RunHistorySize bounds the number of runs kept for GET /runs.
	RunHistorySize int `koanf:"run_history_size"`

	// DefaultMode is used when a request does not name a mode.
	DefaultMode string `koanf:"default_mode"`

	// League holds the defaults applied when a request carries no config.
	League model.LeagueConfig `koanf:"league"`

	// Metrics tunes the Prometheus collectors.
	Metrics Metrics `koanf:"metrics"`
}

// Metrics configures pkg/metrics. Empty buckets keep the built-in ones.
type Metrics struct {
	Namespace       string            `koanf:"namespace"`
	Buckets         []float64         `koanf:"buckets"`
	RefreshInterval time.Duration     `koanf:"refresh_interval"`
	Labels          map[string]string `koanf:"labels"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":9080",
		MaxRosterSize:  2_000,
		RunHistorySize: 256,
		DefaultMode:    string(model.ModeBalanced),
		League: model.LeagueConfig{
			MaxTeamSize: 7,
			MinFemales:  2,
			MinMales:    2,
		},
		Metrics: Metrics{
			Namespace:       "teambalance",
			RefreshInterval: 10 * time.Second,
		},
	}
}
