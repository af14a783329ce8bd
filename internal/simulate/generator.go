package simulate

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/okian/teambalance/internal/domain/model"
)

// RosterOptions shapes generated rosters. Rates are per player.
type RosterOptions struct {
	MutualRate  float64
	OneWayRate  float64
	AvoidRate   float64
	HandlerRate float64
	GroupRate   float64
	// UnknownRate is the chance a request names nobody on the roster.
	UnknownRate float64
}

// DefaultRosterOptions returns a league-like mix of requests.
func DefaultRosterOptions() RosterOptions {
	return RosterOptions{
		MutualRate:  0.2,
		OneWayRate:  0.15,
		AvoidRate:   0.05,
		HandlerRate: 0.25,
		GroupRate:   0.05,
		UnknownRate: 0.02,
	}
}

var firstNames = []string{
	"Ada", "Bea", "Cal", "Dev", "Eli", "Fay", "Gus", "Hal", "Ida", "Jo",
	"Kai", "Liv", "Max", "Nia", "Oz", "Pia", "Quin", "Ray", "Sol", "Tess",
}

// Generator builds reproducible synthetic rosters.
type Generator struct {
	rng  *rand.Rand
	opts RosterOptions
}

// NewGenerator returns a generator seeded with seed.
func NewGenerator(seed int64, opts RosterOptions) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed)), opts: opts}
}

// Roster returns n players and a few explicit groups.
func (g *Generator) Roster(n int) ([]model.Player, []model.PlayerGroup) {
	players := make([]model.Player, n)
	for i := range players {
		id, err := uuid.NewRandomFromReader(g.rng)
		if err != nil {
			id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprint(i)))
		}
		p := model.Player{
			ID:          id.String(),
			Name:        fmt.Sprintf("%s %03d", firstNames[g.rng.Intn(len(firstNames))], i),
			Gender:      g.gender(),
			SkillRating: float64(g.rng.Intn(101)) / 10,
			IsHandler:   g.rng.Float64() < g.opts.HandlerRate,
		}
		if g.rng.Float64() < 0.05 {
			o := float64(g.rng.Intn(101)) / 10
			p.OverrideSkill = &o
		}
		players[i] = p
	}
	if n < 2 {
		return players, nil
	}

	for i := range players {
		if g.rng.Float64() < g.opts.MutualRate && len(players[i].TeammateRequests) == 0 {
			j := g.other(i, n)
			if len(players[j].TeammateRequests) == 0 {
				players[i].TeammateRequests = []string{players[j].Name}
				players[j].TeammateRequests = []string{players[i].Name}
			}
		}
		if g.rng.Float64() < g.opts.OneWayRate {
			players[i].TeammateRequests = append(players[i].TeammateRequests, players[g.other(i, n)].Name)
		}
		if g.rng.Float64() < g.opts.UnknownRate {
			players[i].TeammateRequests = append(players[i].TeammateRequests, "Nobody "+fmt.Sprint(i))
		}
		if g.rng.Float64() < g.opts.AvoidRate {
			players[i].AvoidRequests = append(players[i].AvoidRequests, players[g.other(i, n)].Name)
		}
	}

	var groups []model.PlayerGroup
	used := make(map[int]bool)
	for i := range players {
		if used[i] || g.rng.Float64() >= g.opts.GroupRate {
			continue
		}
		size := 2 + g.rng.Intn(model.MaxGroupSize)
		grp := model.PlayerGroup{ID: fmt.Sprintf("grp-%d", len(groups)+1), Label: "carpool"}
		for k := i; k < n && len(grp.PlayerIDs) < size; k++ {
			if !used[k] {
				used[k] = true
				grp.PlayerIDs = append(grp.PlayerIDs, players[k].ID)
			}
		}
		if len(grp.PlayerIDs) > 1 {
			groups = append(groups, grp)
		}
	}
	return players, groups
}

func (g *Generator) gender() model.Gender {
	switch r := g.rng.Intn(20); {
	case r < 9:
		return model.GenderFemale
	case r < 19:
		return model.GenderMale
	default:
		return model.GenderOther
	}
}

// other picks an index different from i.
func (g *Generator) other(i, n int) int {
	j := g.rng.Intn(n - 1)
	if j >= i {
		j++
	}
	return j
}
