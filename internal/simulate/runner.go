package simulate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/teambalance/internal/domain/model"
	"github.com/okian/teambalance/pkg/logger"
)

var modes = []model.Mode{model.ModeBalanced, model.ModeRandomized, model.ModeManual}

type job struct {
	index   int
	players []model.Player
	groups  []model.PlayerGroup
	mode    model.Mode
	seed    int64
}

// Run generates cfg.Runs rosters, submits them with cfg.Workers concurrent
// submitters and verifies every result. Violations are returned in Stats;
// the error reports only failures to reach the service.
func Run(ctx context.Context, cfg Config) (Stats, error) {
	log := logger.Named("simulate")
	start := time.Now()
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("runs", cfg.Runs),
		logger.Int("players", cfg.Players),
		logger.Int("workers", cfg.Workers),
		logger.Int64("seed", cfg.Seed),
	)
	if err := client.Health(ctx); err != nil {
		return Stats{}, fmt.Errorf("service health check failed: %w", err)
	}

	// Rosters are generated up front so the sequence only depends on the seed.
	gen := NewGenerator(cfg.Seed, cfg.Roster)
	jobs := make([]job, cfg.Runs)
	for i := range jobs {
		players, groups := gen.Roster(cfg.Players)
		mode := cfg.Mode
		if mode == "" {
			mode = modes[i%len(modes)]
		}
		jobs[i] = job{index: i, players: players, groups: groups, mode: mode, seed: cfg.Seed + int64(i)}
	}

	var (
		mu    sync.Mutex
		stats Stats
		wg    sync.WaitGroup
	)
	ch := make(chan job, max(1, cfg.Workers)*2)
	for w := 0; w < max(1, cfg.Workers); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range ch {
				outcome := submit(ctx, client, cfg, j)
				mu.Lock()
				stats.add(outcome)
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(ch)
		for _, j := range jobs {
			select {
			case <-ctx.Done():
				return
			case ch <- j:
			}
		}
	}()
	wg.Wait()

	stats.Duration = time.Since(start)
	log.Info(ctx, "simulation completed",
		logger.Int("submitted", stats.RunsSubmitted),
		logger.Int("succeeded", stats.RunsSucceeded),
		logger.Int("rejected", stats.RunsRejected),
		logger.Int("failed", stats.RunsFailed),
		logger.Int("violations", len(stats.Violations)),
		logger.Duration("duration", stats.Duration),
	)
	return stats, ctx.Err()
}

type outcome struct {
	err        error
	res        *GenerateResponse
	violations []Violation
}

func submit(ctx context.Context, client *Client, cfg Config, j job) outcome {
	league := cfg.League
	payload := GeneratePayload{
		Players: j.players,
		Groups:  j.groups,
		Config:  &league,
		Mode:    j.mode,
		Seed:    &j.seed,
	}
	resp, err := client.Generate(ctx, payload)
	if err != nil {
		logger.Named("simulate").Warn(ctx, "run not generated", logger.Int("run", j.index), logger.Error(err))
		return outcome{err: err}
	}

	var vs []Violation
	for _, msg := range Verify(j.players, j.groups, cfg.League, &resp.Result) {
		vs = append(vs, Violation{Run: j.index, RunID: resp.RunID, Message: msg})
	}
	return outcome{res: &resp, violations: vs}
}

func (s *Stats) add(o outcome) {
	s.RunsSubmitted++
	switch {
	case o.err == nil:
		s.RunsSucceeded++
		s.PlayersAssigned += o.res.Result.Stats.AssignedPlayers
		s.PlayersLeftOut += o.res.Result.Stats.UnassignedPlayers
		s.Violations = append(s.Violations, o.violations...)
	case errors.Is(o.err, ErrRejected):
		s.RunsRejected++
	default:
		s.RunsFailed++
	}
}
