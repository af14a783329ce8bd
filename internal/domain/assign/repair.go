package assign

import "github.com/okian/teambalance/internal/domain/model"

// repair fixes teams left below a gender floor by pulling loose players in
// from the unassigned pool or from teams with a surplus, moving when there is
// room and swapping when there is not. Teams that stay short are dissolved
// into the pool, and what is left in the pool is offered once more to teams
// that already meet their floors. It returns the number of dissolved teams.
func (s *state) repair() int {
	dissolved := 0
	for {
		for changed := true; changed; {
			changed = false
			for t := range s.teams {
				if g, ok := s.short(t); ok && s.pull(t, g) {
					changed = true
				}
			}
		}

		t := s.firstShort()
		if t < 0 {
			s.refill()
			return dissolved
		}
		s.dissolve(t)
		dissolved++
	}
}

func (s *state) short(t int) (model.Gender, bool) {
	tm := &s.teams[t]
	if !tm.open || tm.size() == 0 {
		return "", false
	}
	if tm.females < s.plan.MinFemales {
		return model.GenderFemale, true
	}
	if tm.males < s.plan.MinMales {
		return model.GenderMale, true
	}
	return "", false
}

func (s *state) firstShort() int {
	for t := range s.teams {
		if _, ok := s.short(t); ok {
			return t
		}
	}
	return -1
}

func (s *state) count(t int, g model.Gender) int {
	switch g {
	case model.GenderFemale:
		return s.teams[t].females
	case model.GenderMale:
		return s.teams[t].males
	}
	return s.teams[t].size()
}

// spare reports whether team t can give up one player of gender g without
// falling below its floor.
func (s *state) spare(t int, g model.Gender) bool {
	return s.count(t, g) > s.plan.Floor(g)
}

// clashes reports whether p avoids anyone on team t other than except.
func (s *state) clashes(p, t, except int) bool {
	for _, x := range s.teams[t].members {
		if x != except && s.graph.Avoids(p, x) {
			return true
		}
	}
	return false
}

func (s *state) movable(t int, g model.Gender) []int {
	var out []int
	for _, p := range s.teams[t].members {
		if s.loose[p] && s.players[p].Gender == g {
			out = append(out, p)
		}
	}
	return out
}

func (s *state) poolOf(g model.Gender) []int {
	var out []int
	for _, p := range s.pool {
		if s.loose[p] && s.players[p].Gender == g {
			out = append(out, p)
		}
	}
	return out
}

func (s *state) takeFromPool(p int) {
	for k, x := range s.pool {
		if x == p {
			s.pool = append(s.pool[:k], s.pool[k+1:]...)
			return
		}
	}
}

func (s *state) pull(t int, g model.Gender) bool {
	if s.teams[t].size() < s.plan.MaxTeamSize {
		for _, p := range s.poolOf(g) {
			if !s.clashes(p, t, unplaced) {
				s.takeFromPool(p)
				s.add(p, t)
				return true
			}
		}
		for d := range s.teams {
			if d == t || !s.spare(d, g) {
				continue
			}
			for _, p := range s.movable(d, g) {
				if !s.clashes(p, t, unplaced) {
					s.remove(p)
					s.add(p, t)
					return true
				}
			}
		}
	}

	for _, q := range append([]int(nil), s.teams[t].members...) {
		qg := s.players[q].Gender
		if !s.loose[q] || qg == g || (qg != model.GenderOther && !s.spare(t, qg)) {
			continue
		}
		for _, p := range s.poolOf(g) {
			if !s.clashes(p, t, q) {
				s.remove(q)
				s.takeFromPool(p)
				s.add(p, t)
				s.pool = append(s.pool, q)
				return true
			}
		}
		for d := range s.teams {
			if d == t || !s.teams[d].open || !s.spare(d, g) {
				continue
			}
			for _, p := range s.movable(d, g) {
				if !s.clashes(p, t, q) && !s.clashes(q, d, p) {
					s.remove(p)
					s.remove(q)
					s.add(p, t)
					s.add(q, d)
					return true
				}
			}
		}
	}
	return false
}

// refill places loose pool players on non-empty open teams with room,
// emptiest and then weakest first. Adding a player never breaks a floor
// that is already met.
func (s *state) refill() {
	for _, p := range append([]int(nil), s.pool...) {
		if !s.loose[p] {
			continue
		}
		best := unplaced
		for t := range s.teams {
			tm := &s.teams[t]
			if !tm.open || tm.size() == 0 || tm.size() >= s.plan.MaxTeamSize || s.clashes(p, t, unplaced) {
				continue
			}
			if best == unplaced || tm.size() < s.teams[best].size() ||
				(tm.size() == s.teams[best].size() && tm.average() < s.teams[best].average()) {
				best = t
			}
		}
		if best != unplaced {
			s.takeFromPool(p)
			s.add(p, best)
		}
	}
}

func (s *state) dissolve(t int) {
	tm := &s.teams[t]
	for _, p := range tm.members {
		s.teamOf[p] = unplaced
		s.pool = append(s.pool, p)
	}
	*tm = team{}
}
