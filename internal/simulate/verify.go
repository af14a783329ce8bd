package simulate

import (
	"fmt"
	"strings"

	"github.com/okian/teambalance/internal/domain/model"
)

// Verify checks res against the guarantees every run must keep for the given
// inputs and returns one message per broken guarantee. Players are expected
// to carry unique ids and names.
func Verify(players []model.Player, groups []model.PlayerGroup, cfg model.LeagueConfig, res *model.Result) []string {
	var out []string
	fail := func(format string, args ...any) {
		out = append(out, fmt.Sprintf(format, args...))
	}

	teamOf := make(map[string]string, len(players))
	seen := make(map[string]int, len(players))
	minF, minM := cfg.Floors()
	for _, tm := range res.Teams {
		if len(tm.Players) > cfg.MaxTeamSize {
			fail("team %s has %d players, limit %d", tm.Name, len(tm.Players), cfg.MaxTeamSize)
		}
		if res.Mode != model.ModeManual && len(tm.Players) > 0 &&
			(tm.Genders.Females < minF || tm.Genders.Males < minM) {
			fail("team %s has %d women and %d men, floors %d and %d",
				tm.Name, tm.Genders.Females, tm.Genders.Males, minF, minM)
		}
		for _, p := range tm.Players {
			seen[p.ID]++
			teamOf[p.ID] = tm.ID
		}
	}
	for _, p := range res.UnassignedPlayers {
		seen[p.ID]++
	}
	for _, p := range players {
		switch n := seen[p.ID]; n {
		case 1:
		case 0:
			fail("player %s is missing from the result", p.ID)
		default:
			fail("player %s appears %d times", p.ID, n)
		}
	}
	if len(seen) != len(players) {
		fail("result holds %d distinct players, roster has %d", len(seen), len(players))
	}

	s := res.Stats
	if s.TotalPlayers != len(players) || s.AssignedPlayers+s.UnassignedPlayers != s.TotalPlayers {
		fail("stats count %d total, %d assigned, %d unassigned for %d players",
			s.TotalPlayers, s.AssignedPlayers, s.UnassignedPlayers, len(players))
	}
	if s.AvoidRequestsViolated != 0 {
		fail("%d avoid requests violated", s.AvoidRequestsViolated)
	}

	byName := make(map[string]string, len(players))
	for _, p := range players {
		byName[strings.ToLower(strings.TrimSpace(p.Name))] = p.ID
	}
	for _, p := range players {
		for _, name := range p.AvoidRequests {
			other, ok := byName[strings.ToLower(strings.TrimSpace(name))]
			if !ok || other == p.ID {
				continue
			}
			if t := teamOf[p.ID]; t != "" && t == teamOf[other] {
				fail("player %s shares a team with avoided %s", p.ID, other)
			}
		}
	}

	reported := make(map[string]bool, len(res.NearMisses))
	for _, nm := range res.NearMisses {
		reported[nm.GroupID] = true
	}
	for _, g := range groups {
		if reported[g.ID] || len(g.PlayerIDs) == 0 {
			continue
		}
		first := teamOf[g.PlayerIDs[0]]
		for _, id := range g.PlayerIDs[1:] {
			if teamOf[id] != first && first != "" && teamOf[id] != "" {
				fail("group %s is split across teams", g.ID)
				break
			}
		}
	}
	return out
}
