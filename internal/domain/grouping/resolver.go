// Package grouping builds the atomic placement units scheduled by the
// assignment stage: explicit groups, mutual-request clusters and singletons.
package grouping

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/teambalance/internal/domain/model"
	"github.com/okian/teambalance/internal/domain/preference"
	"github.com/okian/teambalance/internal/domain/skill"
)

// Kind tells where a unit came from.
type Kind int

// Unit kinds.
const (
	KindSingle Kind = iota
	KindExplicit
	KindMutual
)

// Unit is one placement unit. Members are roster indices in ascending order.
type Unit struct {
	Kind    Kind
	GroupID string
	Members []int

	Females  int
	Males    int
	SkillSum float64
	Handlers int
	// Oversized is set when the unit alone exceeds the team size cap.
	Oversized bool
}

// Size is the number of players in the unit.
func (u *Unit) Size() int { return len(u.Members) }

// Options tune Resolve.
type Options struct {
	MaxTeamSize int
	// InferMutual clusters free players along mutual requests. When false
	// every player outside an explicit group is a singleton.
	InferMutual bool
}

// Resolution is the output of Resolve.
type Resolution struct {
	Units      []Unit
	NearMisses []model.NearMissGroup
	// UnitOf maps a roster index to its unit index.
	UnitOf []int

	rejected map[[2]int]model.NearMissReason
}

// Rejected reports why a mutual merge between a and b was refused, if it was.
func (r *Resolution) Rejected(a, b int) (model.NearMissReason, bool) {
	if a > b {
		a, b = b, a
	}
	reason, ok := r.rejected[[2]int{a, b}]
	return reason, ok
}

// NewUnit builds a unit over members, computing its footprint.
func NewUnit(players []model.Player, members []int, kind Kind, maxTeamSize int) Unit {
	u := Unit{Kind: kind, Members: members}
	for _, i := range members {
		p := &players[i]
		switch p.Gender {
		case model.GenderFemale:
			u.Females++
		case model.GenderMale:
			u.Males++
		}
		if p.IsHandler {
			u.Handlers++
		}
		u.SkillSum += skill.Effective(p)
	}
	u.Oversized = len(members) > maxTeamSize
	return u
}

// Resolve turns the reconciled membership and preference graph into units.
// Explicit groups come first in group order, followed by clusters and
// singletons ordered by their lowest roster index.
func Resolve(players []model.Player, g *preference.Graph, m Membership, opts Options) Resolution {
	res := Resolution{
		UnitOf:   make([]int, len(players)),
		rejected: make(map[[2]int]model.NearMissReason),
	}
	for i := range res.UnitOf {
		res.UnitOf[i] = -1
	}

	add := func(u Unit) {
		idx := len(res.Units)
		for _, i := range u.Members {
			res.UnitOf[i] = idx
		}
		if u.Oversized {
			res.NearMisses = append(res.NearMisses, model.NearMissGroup{
				Reason:    model.ReasonWouldExceedTeamSize,
				GroupID:   u.GroupID,
				PlayerIDs: ids(players, u.Members),
				Message: fmt.Sprintf("unit of %d exceeds max team size %d",
					u.Size(), opts.MaxTeamSize),
			})
		}
		res.Units = append(res.Units, u)
	}

	// bound marks players whose placement is decided by their explicit group,
	// whether or not the group survived.
	bound := make([]bool, len(players))
	var broken []int

	for _, grp := range m.Groups {
		if len(grp.Members) == 0 {
			continue
		}
		for _, i := range grp.Members {
			bound[i] = true
		}
		if len(grp.Members) > model.MaxGroupSize {
			res.NearMisses = append(res.NearMisses, model.NearMissGroup{
				Reason:    model.ReasonGroupTooLarge,
				GroupID:   grp.ID,
				PlayerIDs: ids(players, grp.Members),
				Message: fmt.Sprintf("group %s has %d members, cap is %d",
					grp.ID, len(grp.Members), model.MaxGroupSize),
			})
			broken = append(broken, grp.Members...)
			continue
		}
		if a, b, ok := internalAvoid(g, grp.Members); ok {
			res.NearMisses = append(res.NearMisses, model.NearMissGroup{
				Reason:    model.ReasonAvoidConflict,
				GroupID:   grp.ID,
				PlayerIDs: ids(players, grp.Members),
				Message: fmt.Sprintf("group %s contains %s and %s who avoid each other",
					grp.ID, players[a].Name, players[b].Name),
			})
			broken = append(broken, grp.Members...)
			continue
		}
		u := NewUnit(players, append([]int(nil), grp.Members...), KindExplicit, opts.MaxTeamSize)
		u.GroupID = grp.ID
		add(u)
	}

	sort.Ints(broken)
	for _, i := range broken {
		add(NewUnit(players, []int{i}, KindSingle, opts.MaxTeamSize))
	}

	uf := newUnionFind(len(players))
	if opts.InferMutual {
		for _, p := range g.MutualPairs() {
			a, b := p[0], p[1]
			if bound[a] || bound[b] {
				continue
			}
			ra, rb := uf.find(a), uf.find(b)
			if ra == rb {
				continue
			}
			merged := append(uf.members(ra), uf.members(rb)...)
			sort.Ints(merged)

			if len(merged) > model.MaxGroupSize {
				res.rejected[[2]int{a, b}] = model.ReasonGroupTooLarge
				res.NearMisses = append(res.NearMisses, model.NearMissGroup{
					Reason:    model.ReasonGroupTooLarge,
					PlayerIDs: ids(players, merged),
					Message: fmt.Sprintf("joining %s and %s would form a group of %d, cap is %d",
						players[a].Name, players[b].Name, len(merged), model.MaxGroupSize),
				})
				continue
			}
			if x, y, ok := internalAvoid(g, merged); ok {
				res.rejected[[2]int{a, b}] = model.ReasonAvoidConflict
				res.NearMisses = append(res.NearMisses, model.NearMissGroup{
					Reason:    model.ReasonAvoidConflict,
					PlayerIDs: ids(players, merged),
					Message: fmt.Sprintf("joining %s and %s would put %s with %s, who avoid each other",
						players[a].Name, players[b].Name, players[x].Name, players[y].Name),
				})
				continue
			}
			uf.union(ra, rb)
		}
	}

	for i := range players {
		if bound[i] {
			continue
		}
		root := uf.find(i)
		if res.UnitOf[root] >= 0 {
			continue
		}
		members := uf.members(root)
		kind := KindSingle
		if len(members) > 1 {
			kind = KindMutual
		}
		add(NewUnit(players, members, kind, opts.MaxTeamSize))
	}
	return res
}

// internalAvoid returns the first pair of members that avoid each other.
func internalAvoid(g *preference.Graph, members []int) (int, int, bool) {
	for x := 0; x < len(members); x++ {
		for y := x + 1; y < len(members); y++ {
			if g.Avoids(members[x], members[y]) {
				return members[x], members[y], true
			}
		}
	}
	return 0, 0, false
}

func ids(players []model.Player, members []int) []string {
	out := make([]string, len(members))
	for k, i := range members {
		out[k] = players[i].ID
	}
	return out
}

// Describe renders a unit for log and near-miss messages.
func Describe(players []model.Player, u *Unit) string {
	names := make([]string, len(u.Members))
	for k, i := range u.Members {
		names[k] = players[i].Name
	}
	return strings.Join(names, ", ")
}

type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), size: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// union attaches the larger root under the smaller so a cluster's root is
// always its lowest index.
func (uf *unionFind) union(ra, rb int) {
	if ra > rb {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
}

func (uf *unionFind) members(root int) []int {
	out := make([]int, 0, uf.size[root])
	for i := range uf.parent {
		if uf.find(i) == root {
			out = append(out, i)
		}
	}
	return out
}
