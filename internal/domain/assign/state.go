package assign

import (
	"github.com/okian/teambalance/internal/domain/capacity"
	"github.com/okian/teambalance/internal/domain/grouping"
	"github.com/okian/teambalance/internal/domain/model"
	"github.com/okian/teambalance/internal/domain/preference"
	"github.com/okian/teambalance/internal/domain/skill"
)

const unplaced = -1

type team struct {
	members  []int
	females  int
	males    int
	skill    float64
	handlers int
	open     bool
}

func (t *team) size() int { return len(t.members) }

func (t *team) average() float64 {
	if len(t.members) == 0 {
		return 0
	}
	return t.skill / float64(len(t.members))
}

// state is the mutable arena for one run. Teams and players are addressed by
// index.
type state struct {
	players []model.Player
	graph   *preference.Graph
	plan    capacity.Plan

	teams  []team
	teamOf []int
	// loose marks players that are not held in place by a larger unit. Only
	// these may be moved by the gender repair pass.
	loose []bool
	pool  []int

	// remaining headcount per gender not yet placed or given up on.
	remFemales int
	remMales   int
}

func newState(players []model.Player, g *preference.Graph, plan capacity.Plan, openAll bool) *state {
	s := &state{
		players: players,
		graph:   g,
		plan:    plan,
		teams:   make([]team, plan.Teams),
		teamOf:  make([]int, len(players)),
		loose:   make([]bool, len(players)),
	}
	for i := range s.teams {
		s.teams[i].open = openAll || i < plan.OpenTeams
	}
	for i := range players {
		s.teamOf[i] = unplaced
		switch players[i].Gender {
		case model.GenderFemale:
			s.remFemales++
		case model.GenderMale:
			s.remMales++
		}
	}
	return s
}

func (s *state) deficit(females, males int) (int, int) {
	return max(0, s.plan.MinFemales-females), max(0, s.plan.MinMales-males)
}

func (s *state) totalDeficit() (int, int) {
	var df, dm int
	for i := range s.teams {
		if !s.teams[i].open {
			continue
		}
		f, m := s.deficit(s.teams[i].females, s.teams[i].males)
		df += f
		dm += m
	}
	return df, dm
}

// avoids reports whether any member of u avoids any player on team t.
func (s *state) avoids(members []int, t int) bool {
	for _, m := range members {
		for _, x := range s.teams[t].members {
			if s.graph.Avoids(m, x) {
				return true
			}
		}
	}
	return false
}

// fits applies the per-team hard constraints: room, avoids, and enough slack
// left to still meet both floors.
func (s *state) fits(u *grouping.Unit, t int) bool {
	tm := &s.teams[t]
	if !tm.open {
		return false
	}
	size := tm.size() + u.Size()
	if size > s.plan.MaxTeamSize {
		return false
	}
	df, dm := s.deficit(tm.females+u.Females, tm.males+u.Males)
	if size+df+dm > s.plan.MaxTeamSize {
		return false
	}
	return !s.avoids(u.Members, t)
}

// reachable reports whether, after placing u on t, the players not yet placed
// can still cover every open team's gender floors.
func (s *state) reachable(u *grouping.Unit, t int) bool {
	tm := &s.teams[t]
	df, dm := s.totalDeficit()
	bf, bm := s.deficit(tm.females, tm.males)
	af, am := s.deficit(tm.females+u.Females, tm.males+u.Males)
	df += af - bf
	dm += am - bm
	return df <= s.remFemales-u.Females && dm <= s.remMales-u.Males
}

func (s *state) place(u *grouping.Unit, t int) {
	tm := &s.teams[t]
	for _, m := range u.Members {
		tm.members = append(tm.members, m)
		s.teamOf[m] = t
		s.loose[m] = u.Size() == 1
	}
	tm.females += u.Females
	tm.males += u.Males
	tm.skill += u.SkillSum
	tm.handlers += u.Handlers
	s.remFemales -= u.Females
	s.remMales -= u.Males
}

// abandon moves players to the unassigned pool without placing them.
func (s *state) abandon(members ...int) {
	for _, m := range members {
		s.pool = append(s.pool, m)
		s.loose[m] = true
		switch s.players[m].Gender {
		case model.GenderFemale:
			s.remFemales--
		case model.GenderMale:
			s.remMales--
		}
	}
}

// remove takes player p off its team.
func (s *state) remove(p int) {
	t := s.teamOf[p]
	tm := &s.teams[t]
	for k, m := range tm.members {
		if m == p {
			tm.members = append(tm.members[:k], tm.members[k+1:]...)
			break
		}
	}
	s.adjust(tm, p, -1)
	s.teamOf[p] = unplaced
}

// add puts player p on team t as a single.
func (s *state) add(p, t int) {
	tm := &s.teams[t]
	tm.members = append(tm.members, p)
	s.adjust(tm, p, 1)
	s.teamOf[p] = t
	s.loose[p] = true
}

func (s *state) adjust(tm *team, p, sign int) {
	pl := &s.players[p]
	switch pl.Gender {
	case model.GenderFemale:
		tm.females += sign
	case model.GenderMale:
		tm.males += sign
	}
	if pl.IsHandler {
		tm.handlers += sign
	}
	tm.skill += float64(sign) * skill.Effective(pl)
}

// requestHits counts must-have and nice-to-have links between u and team t,
// in either direction.
func (s *state) requestHits(u *grouping.Unit, t int) (must, nice int) {
	in := make(map[int]bool, u.Size())
	for _, m := range u.Members {
		in[m] = true
	}
	for _, m := range u.Members {
		for _, r := range s.graph.Requests(m) {
			if r.Resolved() && s.teamOf[r.Target] == t {
				if r.MustHave {
					must++
				} else {
					nice++
				}
			}
		}
	}
	for _, x := range s.teams[t].members {
		for _, r := range s.graph.Requests(x) {
			if r.Resolved() && in[r.Target] {
				if r.MustHave {
					must++
				} else {
					nice++
				}
			}
		}
	}
	return must, nice
}
