// Package capacity derives the team count and per-team limits for a run.
package capacity

import (
	"github.com/okian/teambalance/internal/domain/model"
)

// Plan is the capacity layout for one run.
type Plan struct {
	Teams       int
	MaxTeamSize int
	MinFemales  int
	MinMales    int
	// OpenTeams is how many teams the roster can staff while meeting the
	// gender floors. Teams beyond it stay empty.
	OpenTeams int
}

// Validate checks cfg on its own, before headcount is known.
func Validate(cfg model.LeagueConfig) error {
	if cfg.MaxTeamSize < 1 {
		return configErr("maxTeamSize", "must be at least 1, got %d", cfg.MaxTeamSize)
	}
	if cfg.MinFemales < 0 {
		return configErr("minFemales", "must not be negative, got %d", cfg.MinFemales)
	}
	if cfg.MinMales < 0 {
		return configErr("minMales", "must not be negative, got %d", cfg.MinMales)
	}
	if cfg.TargetTeams < 0 {
		return configErr("targetTeams", "must not be negative, got %d", cfg.TargetTeams)
	}
	females, males := cfg.Floors()
	if females+males > cfg.MaxTeamSize {
		return configErr("minFemales+minMales", "gender floors %d+%d exceed max team size %d",
			females, males, cfg.MaxTeamSize)
	}
	return nil
}

// New plans a run over a roster with the given headcounts.
func New(cfg model.LeagueConfig, headcount, females, males int) (Plan, error) {
	if err := Validate(cfg); err != nil {
		return Plan{}, err
	}
	if cfg.TargetTeams > 0 && headcount > 0 && cfg.TargetTeams > headcount {
		return Plan{}, configErr("targetTeams", "%d teams for %d players leaves teams with no capacity",
			cfg.TargetTeams, headcount)
	}

	p := Plan{MaxTeamSize: cfg.MaxTeamSize}
	p.MinFemales, p.MinMales = cfg.Floors()

	switch {
	case cfg.TargetTeams > 0:
		p.Teams = cfg.TargetTeams
	default:
		p.Teams = max(1, (headcount+cfg.MaxTeamSize-1)/cfg.MaxTeamSize)
	}

	p.OpenTeams = p.Teams
	if p.MinFemales > 0 {
		p.OpenTeams = min(p.OpenTeams, females/p.MinFemales)
	}
	if p.MinMales > 0 {
		p.OpenTeams = min(p.OpenTeams, males/p.MinMales)
	}
	return p, nil
}

// Floor returns the per-team floor for gender g.
func (p Plan) Floor(g model.Gender) int {
	switch g {
	case model.GenderFemale:
		return p.MinFemales
	case model.GenderMale:
		return p.MinMales
	}
	return 0
}

// Capacity is the total number of seats across open teams.
func (p Plan) Capacity() int { return p.OpenTeams * p.MaxTeamSize }
