package service

import (
	"time"

	"github.com/okian/teambalance/internal/adapters/repository"
	"github.com/okian/teambalance/internal/domain/model"
	"github.com/okian/teambalance/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore replaces the default in-memory run store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRunHistorySize bounds the default run store.
func WithRunHistorySize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historySize = n
		}
	}
}

// WithMaxRosterSize caps the players accepted per request.
func WithMaxRosterSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRoster = n
		}
	}
}

// WithLeagueDefaults sets the config used when a request carries none.
func WithLeagueDefaults(cfg model.LeagueConfig) Option {
	return func(s *Service) {
		s.defaults = cfg
	}
}

// WithDefaultMode sets the mode used when a request names none.
func WithDefaultMode(mode model.Mode) Option {
	return func(s *Service) {
		if mode != "" {
			s.defaultMode = mode
		}
	}
}

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}
