// Package preference turns name-based teammate and avoid requests into a
// relationship graph over roster indices.
package preference

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/teambalance/internal/domain/model"
)

// Unresolved marks a request whose name matched no single player.
const Unresolved = -1

// Request is one teammate request as written on the player record, plus its
// resolved target index.
type Request struct {
	Name     string
	Target   int
	MustHave bool
}

// Resolved reports whether the request points at a roster player.
func (r Request) Resolved() bool { return r.Target != Unresolved }

// Edge is a directed teammate request between two resolved players.
type Edge struct {
	From     int
	To       int
	MustHave bool
}

type pair [2]int

func orderedPair(a, b int) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a, b}
}

// Graph holds resolved relationships. Players are referenced by their index
// in the slice passed to Build.
type Graph struct {
	players   []model.Player
	groupOf   []int
	requests  [][]Request
	requested map[pair]bool // directed: {from, to}
	avoids    map[pair]bool // directed: {avoider, avoided}
	conflicts []model.RequestConflict
}

// Build resolves every player's requests. groupOf[i] is the explicit group
// index of player i or a negative value; it may be nil.
func Build(players []model.Player, groupOf []int) *Graph {
	g := &Graph{
		players:   players,
		groupOf:   groupOf,
		requests:  make([][]Request, len(players)),
		requested: make(map[pair]bool),
		avoids:    make(map[pair]bool),
	}
	r := newResolver(players)

	for i := range players {
		p := &players[i]
		reqs := make([]Request, 0, len(p.TeammateRequests))
		for slot, name := range p.TeammateRequests {
			target := r.resolve(name, i)
			reqs = append(reqs, Request{Name: name, Target: target, MustHave: slot == 0})
			if target != Unresolved {
				g.requested[pair{i, target}] = true
			}
		}
		g.requests[i] = reqs

		for _, name := range p.AvoidRequests {
			if target := r.resolve(name, i); target != Unresolved {
				g.avoids[pair{i, target}] = true
			}
		}
	}

	g.conflicts = g.detectConflicts()
	return g
}

// Len returns the number of players in the graph.
func (g *Graph) Len() int { return len(g.players) }

// Requests returns player i's teammate requests in their original order.
func (g *Graph) Requests(i int) []Request { return g.requests[i] }

// MustHave returns the resolved must-have target of player i.
func (g *Graph) MustHave(i int) (int, bool) {
	reqs := g.requests[i]
	if len(reqs) == 0 || !reqs[0].Resolved() {
		return Unresolved, false
	}
	return reqs[0].Target, true
}

// Requested reports whether a asked for b in any slot.
func (g *Graph) Requested(a, b int) bool { return g.requested[pair{a, b}] }

// Mutual reports whether a and b requested each other in any slot.
func (g *Graph) Mutual(a, b int) bool {
	return g.requested[pair{a, b}] && g.requested[pair{b, a}]
}

// Avoids reports whether either player avoids the other.
func (g *Graph) Avoids(a, b int) bool {
	return g.avoids[pair{a, b}] || g.avoids[pair{b, a}]
}

// AvoidsDirected reports whether a listed b as someone to avoid.
func (g *Graph) AvoidsDirected(a, b int) bool { return g.avoids[pair{a, b}] }

// MutualPairs returns every mutual pair once as (low, high), sorted.
func (g *Graph) MutualPairs() [][2]int {
	out := make([][2]int, 0)
	for e := range g.requested {
		if e[0] < e[1] && g.requested[pair{e[1], e[0]}] {
			out = append(out, [2]int{e[0], e[1]})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

// OneWay returns resolved requests that were not reciprocated, in roster and
// slot order.
func (g *Graph) OneWay() []Edge {
	out := make([]Edge, 0)
	for i, reqs := range g.requests {
		for _, r := range reqs {
			if r.Resolved() && !g.requested[pair{r.Target, i}] {
				out = append(out, Edge{From: i, To: r.Target, MustHave: r.MustHave})
			}
		}
	}
	return out
}

// AvoidPairs returns every directed avoid relationship as (avoider, avoided),
// sorted.
func (g *Graph) AvoidPairs() [][2]int {
	out := make([][2]int, 0, len(g.avoids))
	for e := range g.avoids {
		out = append(out, [2]int{e[0], e[1]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

// Conflicts returns the avoid-vs-request conflicts found while building.
func (g *Graph) Conflicts() []model.RequestConflict {
	return append([]model.RequestConflict{}, g.conflicts...)
}

// companions are the players bound to i regardless of placement: explicit
// group mates and mutual-request partners.
func (g *Graph) companions(i int) []int {
	out := make([]int, 0)
	for j := range g.players {
		if j == i {
			continue
		}
		if g.sameGroup(i, j) || g.Mutual(i, j) {
			out = append(out, j)
		}
	}
	return out
}

func (g *Graph) sameGroup(a, b int) bool {
	if g.groupOf == nil {
		return false
	}
	return g.groupOf[a] >= 0 && g.groupOf[a] == g.groupOf[b]
}

// detectConflicts flags every request a->b where satisfying it would put two
// avoiding players together: b and a themselves, or a companion of either
// side against the other side.
func (g *Graph) detectConflicts() []model.RequestConflict {
	type key struct {
		req     pair
		avoider int
		avoided int
	}
	seen := make(map[key]bool)
	out := make([]model.RequestConflict, 0)

	add := func(a, b, avoider, avoided int) {
		req := pair{a, b}
		if g.Mutual(a, b) {
			req = orderedPair(a, b)
		}
		k := key{req: req, avoider: avoider, avoided: avoided}
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, model.RequestConflict{
			Type:      model.ConflictAvoidVsRequest,
			PlayerID:  g.players[req[0]].ID,
			TargetID:  g.players[req[1]].ID,
			AvoiderID: g.players[avoider].ID,
			AvoidedID: g.players[avoided].ID,
			Message: fmt.Sprintf("%s wants %s, but %s avoids %s",
				g.players[req[0]].Name, g.players[req[1]].Name,
				g.players[avoider].Name, g.players[avoided].Name),
		})
	}

	check := func(a, b, x, y int) {
		if g.avoids[pair{x, y}] {
			add(a, b, x, y)
		}
		if g.avoids[pair{y, x}] {
			add(a, b, y, x)
		}
	}

	for a, reqs := range g.requests {
		for _, r := range reqs {
			if !r.Resolved() {
				continue
			}
			b := r.Target
			check(a, b, a, b)
			for _, c := range g.companions(a) {
				if c != b {
					check(a, b, c, b)
				}
			}
			for _, c := range g.companions(b) {
				if c != a {
					check(a, b, c, a)
				}
			}
		}
	}
	return out
}

// resolver matches request strings to roster indices.
type resolver struct {
	byName map[string][]int
	byID   map[string]int
}

func newResolver(players []model.Player) *resolver {
	r := &resolver{
		byName: make(map[string][]int, len(players)),
		byID:   make(map[string]int, len(players)),
	}
	for i := range players {
		key := normalize(players[i].Name)
		if key != "" {
			r.byName[key] = append(r.byName[key], i)
		}
		r.byID[players[i].ID] = i
	}
	return r
}

// resolve returns the single player matching name, never self. Names shared by
// several players stay unresolved.
func (r *resolver) resolve(name string, self int) int {
	key := normalize(name)
	if key == "" {
		return Unresolved
	}
	target := Unresolved
	if matches := r.byName[key]; len(matches) == 1 {
		target = matches[0]
	} else if len(matches) == 0 {
		if idx, ok := r.byID[strings.TrimSpace(name)]; ok {
			target = idx
		}
	}
	if target == self {
		return Unresolved
	}
	return target
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
