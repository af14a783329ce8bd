package config

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/teambalance/internal/domain/capacity"
	"github.com/okian/teambalance/internal/domain/model"
)

const (
	envPrefix = "TEAMS_"
	envFile   = "TEAMS_CONFIG"
)

var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if TEAMS_CONFIG is set
//  3. env (prefix TEAMS_; "__" separates nested keys)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(envFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// TEAMS_MAX_ROSTER_SIZE -> max_roster_size
	// TEAMS_LEAGUE__MIN_FEMALES -> league.min_females
	// TEAMS_METRICS__BUCKETS=1,5,25 -> metrics.buckets
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, any) {
		if key == envFile {
			return "", nil
		}
		key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, envPrefix)), "__", ".")
		if strings.Contains(value, ",") {
			return key, strings.Split(value, ",")
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.MaxRosterSize < 1 {
		return fmt.Errorf("%w: max_roster_size must be positive, got %d", ErrInvalidConfig, c.MaxRosterSize)
	}
	if c.RunHistorySize < 1 {
		return fmt.Errorf("%w: run_history_size must be positive, got %d", ErrInvalidConfig, c.RunHistorySize)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if _, err := model.ParseMode(c.DefaultMode); err != nil {
		return fmt.Errorf("%w: default_mode: %w", ErrInvalidConfig, err)
	}
	if err := capacity.Validate(c.League); err != nil {
		return fmt.Errorf("%w: league: %w", ErrInvalidConfig, err)
	}
	return c.Metrics.validate()
}

func (m *Metrics) validate() error {
	if !metricName.MatchString(m.Namespace) {
		return fmt.Errorf("%w: metrics.namespace %q is not a valid metric name", ErrInvalidConfig, m.Namespace)
	}
	if m.RefreshInterval <= 0 {
		return fmt.Errorf("%w: metrics.refresh_interval must be positive, got %s", ErrInvalidConfig, m.RefreshInterval)
	}
	for i := 1; i < len(m.Buckets); i++ {
		if m.Buckets[i] <= m.Buckets[i-1] {
			return fmt.Errorf("%w: metrics.buckets must be strictly increasing", ErrInvalidConfig)
		}
	}
	for name := range m.Labels {
		if !metricName.MatchString(name) {
			return fmt.Errorf("%w: metrics.labels key %q is not a valid label name", ErrInvalidConfig, name)
		}
	}
	return nil
}
