// Package engine is the entry point of the team balancing pipeline. A call to
// Generate is a pure computation over its inputs: nothing is shared between
// calls and nothing is logged.
package engine

import (
	"fmt"
	"slices"
	"time"

	"github.com/okian/teambalance/internal/domain/assign"
	"github.com/okian/teambalance/internal/domain/capacity"
	"github.com/okian/teambalance/internal/domain/grouping"
	"github.com/okian/teambalance/internal/domain/model"
	"github.com/okian/teambalance/internal/domain/preference"
	"github.com/okian/teambalance/internal/domain/report"
	"github.com/okian/teambalance/internal/domain/skill"
)

// Generate partitions players into teams. Configuration problems are returned
// as a *capacity.ConfigurationError before anything is placed; every other
// problem is reported on the result.
func Generate(players []model.Player, cfg model.LeagueConfig, groups []model.PlayerGroup, mode model.Mode, opts ...Option) (*model.Result, error) {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	start := o.clock()

	parsed, err := model.ParseMode(string(mode))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	mode = parsed
	strat, ok := assign.For(mode)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if err := capacity.Validate(cfg); err != nil {
		return nil, err
	}

	roster, issues := sanitize(players)
	membership := grouping.Reconcile(roster, groups)
	issues = append(issues, membership.Issues...)

	var females, males int
	for i := range roster {
		switch roster[i].Gender {
		case model.GenderFemale:
			females++
		case model.GenderMale:
			males++
		}
	}
	plan, err := capacity.New(cfg, len(roster), females, males)
	if err != nil {
		return nil, err
	}

	graph := preference.Build(roster, membership.Of)
	units := grouping.Resolve(roster, graph, membership, grouping.Options{
		MaxTeamSize: plan.MaxTeamSize,
		InferMutual: mode == model.ModeBalanced,
	})

	var seed int64
	if mode == model.ModeRandomized {
		seed = o.seed
		if !o.seeded {
			seed = start.UnixNano()
		}
	}

	outcome := strat.Run(assign.Input{
		Players: roster,
		Graph:   graph,
		Units:   units.Units,
		Plan:    plan,
		Seed:    seed,
	})

	closed := 0
	if mode != model.ModeManual {
		closed = plan.Teams - plan.OpenTeams
	}
	rep := report.Build(report.Input{
		Players:            roster,
		Graph:              graph,
		Grouping:           &units,
		Outcome:            outcome,
		TeamNames:          o.teamNames,
		ClosedTeams:        closed,
		PreferencesIgnored: mode != model.ModeBalanced,
	})

	end := o.clock()
	rep.Stats.GenerationTime = end.Sub(start)

	if issues == nil {
		issues = []model.Issue{}
	}
	return &model.Result{
		Mode:              mode,
		Seed:              seed,
		GeneratedAt:       end,
		Teams:             rep.Teams,
		UnassignedPlayers: rep.Unassigned,
		Stats:             rep.Stats,
		Conflicts:         rep.Conflicts,
		NearMisses:        rep.NearMisses,
		Unfulfilled:       rep.Unfulfilled,
		Issues:            issues,
	}, nil
}

// sanitize copies the roster, clamps ratings, maps unknown genders to Other
// and drops later records that reuse an id.
func sanitize(players []model.Player) ([]model.Player, []model.Issue) {
	out := make([]model.Player, 0, len(players))
	var issues []model.Issue
	seen := make(map[string]bool, len(players))
	for _, p := range players {
		if seen[p.ID] {
			issues = append(issues, model.Issue{
				Kind:     model.IssueDuplicatePlayer,
				PlayerID: p.ID,
				Message:  fmt.Sprintf("duplicate player id %s; keeping the first record", p.ID),
			})
			continue
		}
		seen[p.ID] = true

		p = skill.Normalize(p)
		if !p.Gender.Valid() {
			p.Gender = model.GenderOther
		}
		p.TeammateRequests = cloneNames(p.TeammateRequests)
		p.AvoidRequests = cloneNames(p.AvoidRequests)
		out = append(out, p)
	}
	return out, issues
}

func cloneNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	return slices.Clone(names)
}
