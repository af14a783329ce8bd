// Package assign places units onto teams. Balanced, randomized and manual
// placement share one set of hard-constraint checks and differ only in unit
// ordering and team choice.
package assign

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/okian/teambalance/internal/domain/capacity"
	"github.com/okian/teambalance/internal/domain/grouping"
	"github.com/okian/teambalance/internal/domain/model"
	"github.com/okian/teambalance/internal/domain/preference"
	"github.com/okian/teambalance/internal/domain/skill"
)

// Input is everything a strategy needs.
type Input struct {
	Players []model.Player
	Graph   *preference.Graph
	Units   []grouping.Unit
	Plan    capacity.Plan
	// Seed drives randomized mode.
	Seed int64
}

// Team is a placed team before it is rendered into a result.
type Team struct {
	ID      string
	Members []int
}

// Outcome is the result of one placement pass.
type Outcome struct {
	Teams      []Team
	Unassigned []int
	// TeamOf maps a roster index to its team index, or -1.
	TeamOf     []int
	NearMisses []model.NearMissGroup
	Dissolved  int
}

// Strategy selects unit ordering and team choice.
type Strategy interface {
	Mode() model.Mode
	Run(in Input) Outcome
}

// For returns the strategy for mode.
func For(mode model.Mode) (Strategy, bool) {
	switch mode {
	case model.ModeBalanced, model.ModeRandomized, model.ModeManual:
		return strategy{mode: mode}, true
	}
	return nil, false
}

type strategy struct {
	mode model.Mode
}

func (st strategy) Mode() model.Mode { return st.mode }

func (st strategy) Run(in Input) Outcome {
	manual := st.mode == model.ModeManual
	s := newState(in.Players, in.Graph, in.Plan, manual)

	var rng *rand.Rand
	if st.mode == model.ModeRandomized {
		rng = rand.New(rand.NewSource(in.Seed))
	}

	var nearMisses []model.NearMissGroup
	var retry []int

	for _, ui := range st.order(in, rng) {
		u := &in.Units[ui]
		if manual && u.Kind != grouping.KindExplicit {
			s.abandon(u.Members...)
			continue
		}
		if u.Oversized {
			retry = append(retry, u.Members...)
			continue
		}
		t, ok := st.choose(s, u, rng)
		if ok {
			s.place(u, t)
			continue
		}
		if u.Size() == 1 {
			s.abandon(u.Members...)
			continue
		}
		nearMisses = append(nearMisses, model.NearMissGroup{
			Reason:    model.ReasonNoEligibleTeam,
			GroupID:   u.GroupID,
			PlayerIDs: playerIDs(in.Players, u.Members),
			Message:   fmt.Sprintf("no team can take %s together", grouping.Describe(in.Players, u)),
		})
		retry = append(retry, u.Members...)
	}

	if manual {
		s.abandon(retry...)
	} else {
		if st.mode == model.ModeBalanced {
			sort.SliceStable(retry, func(a, b int) bool {
				return skill.Effective(&in.Players[retry[a]]) > skill.Effective(&in.Players[retry[b]])
			})
		}
		for _, p := range retry {
			u := grouping.NewUnit(in.Players, []int{p}, grouping.KindSingle, in.Plan.MaxTeamSize)
			if t, ok := st.choose(s, &u, rng); ok {
				s.place(&u, t)
			} else {
				s.abandon(p)
			}
		}
	}

	var dissolved int
	if !manual {
		dissolved = s.repair()
	}

	out := Outcome{
		Teams:      make([]Team, len(s.teams)),
		TeamOf:     s.teamOf,
		NearMisses: nearMisses,
		Dissolved:  dissolved,
	}
	fp := fingerprint(in.Players)
	for i := range s.teams {
		members := append([]int(nil), s.teams[i].members...)
		sort.Ints(members)
		out.Teams[i] = Team{ID: TeamID(fp, i), Members: members}
	}
	for i, t := range s.teamOf {
		if t == unplaced {
			out.Unassigned = append(out.Unassigned, i)
		}
	}
	return out
}

// order returns unit indices in placement order.
func (st strategy) order(in Input, rng *rand.Rand) []int {
	idx := make([]int, len(in.Units))
	for i := range idx {
		idx[i] = i
	}
	switch st.mode {
	case model.ModeBalanced:
		sort.SliceStable(idx, func(a, b int) bool {
			ua, ub := &in.Units[idx[a]], &in.Units[idx[b]]
			if ua.SkillSum != ub.SkillSum {
				return ua.SkillSum > ub.SkillSum
			}
			return ua.Size() > ub.Size()
		})
	case model.ModeRandomized:
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
	}
	return idx
}

// choose picks the team for u among those passing every hard check.
func (st strategy) choose(s *state, u *grouping.Unit, rng *rand.Rand) (int, bool) {
	eligible := make([]int, 0, len(s.teams))
	for t := range s.teams {
		if !s.fits(u, t) {
			continue
		}
		if st.mode != model.ModeManual && !s.reachable(u, t) {
			continue
		}
		eligible = append(eligible, t)
	}
	if len(eligible) == 0 {
		return 0, false
	}

	switch st.mode {
	case model.ModeManual:
		return eligible[0], true
	case model.ModeRandomized:
		return eligible[rng.Intn(len(eligible))], true
	}

	best := eligible[0]
	bestMust, bestNice := s.requestHits(u, best)
	for _, t := range eligible[1:] {
		must, nice := s.requestHits(u, t)
		if st.better(s, u, t, must, nice, best, bestMust, bestNice) {
			best, bestMust, bestNice = t, must, nice
		}
	}
	return best, true
}

// better ranks team a over team b for a balanced placement: request hits
// first, then the emptier team, then the weaker team, then fewer handlers
// when the unit brings one. Remaining ties keep the earlier team.
func (st strategy) better(s *state, u *grouping.Unit, a, aMust, aNice, b, bMust, bNice int) bool {
	if aMust != bMust {
		return aMust > bMust
	}
	if aNice != bNice {
		return aNice > bNice
	}
	ta, tb := &s.teams[a], &s.teams[b]
	if ta.size() != tb.size() {
		return ta.size() < tb.size()
	}
	if ta.average() != tb.average() {
		return ta.average() < tb.average()
	}
	if u.Handlers > 0 && ta.handlers != tb.handlers {
		return ta.handlers < tb.handlers
	}
	return false
}

func playerIDs(players []model.Player, members []int) []string {
	out := make([]string, len(members))
	for k, i := range members {
		out[k] = players[i].ID
	}
	return out
}
