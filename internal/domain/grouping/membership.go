package grouping

import (
	"fmt"
	"sort"

	"github.com/okian/teambalance/internal/domain/model"
)

// Group is an explicit PlayerGroup with its members resolved to roster
// indices.
type Group struct {
	ID      string
	Label   string
	Members []int
}

// Membership is the reconciled view of explicit groups.
type Membership struct {
	Groups []Group
	// Of maps a roster index to its group index, or -1.
	Of     []int
	Issues []model.Issue
}

// Reconcile merges group member lists with the players' own group references.
// Invalid references are dropped and reported as issues; a player claimed by
// two groups stays with the first.
func Reconcile(players []model.Player, groups []model.PlayerGroup) Membership {
	m := Membership{Of: make([]int, len(players))}
	for i := range m.Of {
		m.Of[i] = -1
	}

	byID := make(map[string]int, len(players))
	for i := range players {
		byID[players[i].ID] = i
	}
	groupIdx := make(map[string]int, len(groups))

	join := func(gi, pi int) {
		switch cur := m.Of[pi]; {
		case cur == gi:
		case cur >= 0:
			m.Issues = append(m.Issues, model.Issue{
				Kind:     model.IssueDuplicateGroupMembership,
				PlayerID: players[pi].ID,
				GroupID:  m.Groups[gi].ID,
				Message: fmt.Sprintf("player %s already belongs to group %s",
					players[pi].ID, m.Groups[cur].ID),
			})
		default:
			m.Of[pi] = gi
			m.Groups[gi].Members = append(m.Groups[gi].Members, pi)
		}
	}

	for _, pg := range groups {
		if _, dup := groupIdx[pg.ID]; dup {
			m.Issues = append(m.Issues, model.Issue{
				Kind:    model.IssueDuplicateGroup,
				GroupID: pg.ID,
				Message: fmt.Sprintf("group %s is defined more than once", pg.ID),
			})
			continue
		}
		gi := len(m.Groups)
		groupIdx[pg.ID] = gi
		m.Groups = append(m.Groups, Group{ID: pg.ID, Label: pg.Label})

		for _, pid := range pg.PlayerIDs {
			pi, ok := byID[pid]
			if !ok {
				m.Issues = append(m.Issues, model.Issue{
					Kind:     model.IssueUnknownGroupMember,
					PlayerID: pid,
					GroupID:  pg.ID,
					Message:  fmt.Sprintf("group %s lists unknown player %s", pg.ID, pid),
				})
				continue
			}
			join(gi, pi)
		}
	}

	for pi := range players {
		ref := players[pi].GroupID
		if ref == "" {
			continue
		}
		gi, ok := groupIdx[ref]
		if !ok {
			m.Issues = append(m.Issues, model.Issue{
				Kind:     model.IssueUnknownGroupReference,
				PlayerID: players[pi].ID,
				GroupID:  ref,
				Message:  fmt.Sprintf("player %s references unknown group %s", players[pi].ID, ref),
			})
			continue
		}
		join(gi, pi)
	}

	for gi := range m.Groups {
		sort.Ints(m.Groups[gi].Members)
	}
	return m
}
