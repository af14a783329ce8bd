package report

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/okian/teambalance/internal/domain/model"
)

func stats(in Input, teams []model.Team, together func(a, b int) bool) model.Stats {
	s := model.Stats{
		TotalPlayers:         len(in.Players),
		UnassignedPlayers:    len(in.Outcome.Unassigned),
		GenderShortfallTeams: in.ClosedTeams,
		DissolvedTeams:       in.Outcome.Dissolved,
	}
	s.AssignedPlayers = s.TotalPlayers - s.UnassignedPlayers

	// A must-have counts as honored only when it is reciprocated in any slot
	// and both players share a team.
	for i := range in.Players {
		reqs := in.Graph.Requests(i)
		if len(reqs) == 0 {
			continue
		}
		if t, ok := in.Graph.MustHave(i); ok && in.Graph.Requested(t, i) && together(i, t) {
			s.MutualRequestsHonored++
		} else {
			s.MutualRequestsBroken++
		}
		for _, r := range reqs[1:] {
			if r.Resolved() && together(i, r.Target) {
				s.NiceToHaveHonored++
			}
		}
	}

	seen := make(map[[2]int]bool)
	for _, p := range in.Graph.AvoidPairs() {
		a, b := p[0], p[1]
		if a > b {
			a, b = b, a
		}
		if seen[[2]int{a, b}] || !together(a, b) {
			continue
		}
		seen[[2]int{a, b}] = true
		s.AvoidRequestsViolated++
	}

	averages := make([]float64, 0, len(teams))
	handlers := make([]float64, 0, len(teams))
	for i := range teams {
		if len(teams[i].Players) == 0 {
			continue
		}
		averages = append(averages, teams[i].AverageSkill)
		handlers = append(handlers, float64(teams[i].HandlerCount))
	}
	if len(averages) > 0 {
		s.TeamSkillSpread = floats.Max(averages) - floats.Min(averages)
		s.HandlerSpread = int(floats.Max(handlers) - floats.Min(handlers))
	}
	if len(averages) > 1 {
		s.TeamSkillStdDev = stat.PopStdDev(averages, nil)
	}
	return s
}
