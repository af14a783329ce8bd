// Package service wires the team balancing engine to persistence, logging and
// metrics, and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/teambalance/internal/adapters/repository"
	"github.com/okian/teambalance/internal/domain/capacity"
	"github.com/okian/teambalance/internal/domain/engine"
	"github.com/okian/teambalance/internal/domain/model"
	"github.com/okian/teambalance/pkg/logger"
	"github.com/okian/teambalance/pkg/metrics"
)

// GenerateRequest is one call to the engine. Nil Config and empty Mode fall
// back to the service defaults.
type GenerateRequest struct {
	Players   []model.Player
	Groups    []model.PlayerGroup
	Config    *model.LeagueConfig
	Mode      model.Mode
	Seed      *int64
	TeamNames []string
}

// Run is a stored generation.
type Run struct {
	ID     string        `json:"runId"`
	Result *model.Result `json:"result"`
}

// Service implements the API dependencies for team generation.
type Service struct {
	mu sync.RWMutex

	store  repository.Store
	logger logger.Logger
	clock  func() time.Time

	// Configuration
	defaults    model.LeagueConfig
	defaultMode model.Mode
	maxRoster   int
	historySize int

	// State
	started   bool
	startedAt time.Time

	generated atomic.Int64
	failed    atomic.Int64
	players   atomic.Int64
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		clock:       time.Now,
		defaults:    model.LeagueConfig{MaxTeamSize: 7, MinFemales: 2, MinMales: 2},
		defaultMode: model.ModeBalanced,
		maxRoster:   2_000,
		historySize: 256,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if err := capacity.Validate(s.defaults); err != nil {
		return fmt.Errorf("league defaults: %w", err)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithCapacity(s.historySize))
	}

	s.started = true
	s.startedAt = s.clock()
	s.logger.Info(ctx, "team balancing service started",
		logger.Int("maxRosterSize", s.maxRoster),
		logger.Int("runHistorySize", s.historySize),
		logger.String("defaultMode", string(s.defaultMode)),
	)
	return nil
}

// Stop marks the service stopped. Stored runs stay readable.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "team balancing service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// Generate runs the engine and stores the result.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (Run, error) {
	if err := s.ready(); err != nil {
		return Run{}, err
	}
	if len(req.Players) > s.maxRoster {
		return Run{}, fmt.Errorf("%w: %d players, limit %d", ErrRosterTooLarge, len(req.Players), s.maxRoster)
	}

	mode := req.Mode
	if mode == "" {
		mode = s.defaultMode
	}
	cfg := s.defaults
	if req.Config != nil {
		cfg = *req.Config
	}
	opts := []engine.Option{engine.WithClock(s.clock)}
	if req.Seed != nil {
		opts = append(opts, engine.WithSeed(*req.Seed))
	}
	if len(req.TeamNames) > 0 {
		opts = append(opts, engine.WithTeamNames(req.TeamNames))
	}

	res, err := engine.Generate(req.Players, cfg, req.Groups, mode, opts...)
	if err != nil {
		s.failed.Add(1)
		outcome := metrics.OutcomeError
		if errors.Is(err, capacity.ErrInvalidConfig) {
			outcome = metrics.OutcomeInvalidConfig
		}
		metrics.RecordFailedRun(string(mode), outcome)
		s.logger.Warn(ctx, "team generation rejected",
			logger.String("mode", string(mode)),
			logger.Int("players", len(req.Players)),
			logger.Error(err),
		)
		return Run{}, err
	}

	run := Run{ID: uuid.NewString(), Result: res}
	log := s.logger.With(logger.String("runId", run.ID))
	for _, issue := range res.Issues {
		log.Warn(ctx, "roster integrity issue",
			logger.String("kind", string(issue.Kind)),
			logger.String("playerId", issue.PlayerID),
			logger.String("groupId", issue.GroupID),
			logger.String("message", issue.Message),
		)
	}

	if err := s.store.Save(ctx, repository.Run{ID: run.ID, CreatedAt: res.GeneratedAt, Result: res}); err != nil {
		log.Error(ctx, "failed to store run", logger.Error(err))
		return Run{}, fmt.Errorf("store run: %w", err)
	}

	s.generated.Add(1)
	s.players.Add(int64(len(req.Players)))
	metrics.RecordRun(summarize(res))
	log.Info(ctx, "teams generated",
		logger.String("mode", string(res.Mode)),
		logger.Int("teams", len(res.Teams)),
		logger.Int("assigned", res.Stats.AssignedPlayers),
		logger.Int("unassigned", res.Stats.UnassignedPlayers),
		logger.Int("nearMisses", len(res.NearMisses)),
		logger.Float64("skillSpread", res.Stats.TeamSkillSpread),
		logger.Duration("duration", res.Stats.GenerationTime),
	)
	return run, nil
}

// GetRun returns a stored run.
func (s *Service) GetRun(ctx context.Context, id string) (Run, error) {
	if err := s.ready(); err != nil {
		return Run{}, err
	}
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return Run{}, err
	}
	return Run{ID: r.ID, Result: r.Result}, nil
}

// RawRun returns the stored JSON encoding of a run's result.
func (s *Service) RawRun(ctx context.Context, id string) ([]byte, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.Raw(ctx, id)
}

// ListRuns returns up to limit run summaries, newest first.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]repository.Summary, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.List(ctx, limit)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"defaultMode":    string(s.defaultMode),
		"maxRosterSize":  s.maxRoster,
		"runHistorySize": s.historySize,
		"runsGenerated":  s.generated.Load(),
		"runsFailed":     s.failed.Load(),
		"playersSeen":    s.players.Load(),
	}
	if s.started {
		stats["storedRuns"] = s.store.Count(context.Background())
		stats["uptimeSeconds"] = int64(s.clock().Sub(s.startedAt) / time.Second)
	}
	return stats
}

func summarize(res *model.Result) metrics.Run {
	r := metrics.Run{
		Mode:            string(res.Mode),
		Duration:        res.Stats.GenerationTime,
		Assigned:        res.Stats.AssignedPlayers,
		Unassigned:      res.Stats.UnassignedPlayers,
		NearMisses:      make(map[string]int),
		Conflicts:       make(map[string]int),
		Issues:          make(map[string]int),
		AvoidViolations: res.Stats.AvoidRequestsViolated,
		DissolvedTeams:  res.Stats.DissolvedTeams,
		SkillSpread:     res.Stats.TeamSkillSpread,
	}
	for _, nm := range res.NearMisses {
		r.NearMisses[string(nm.Reason)]++
	}
	for _, c := range res.Conflicts {
		r.Conflicts[string(c.Type)]++
	}
	for _, i := range res.Issues {
		r.Issues[string(i.Kind)]++
	}
	return r
}
