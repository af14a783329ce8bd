// Package report renders a placement outcome into the result snapshot:
// teams, statistics and the diagnostics a human reviews afterwards.
package report

import (
	"fmt"

	"github.com/okian/teambalance/internal/domain/assign"
	"github.com/okian/teambalance/internal/domain/grouping"
	"github.com/okian/teambalance/internal/domain/model"
	"github.com/okian/teambalance/internal/domain/preference"
	"github.com/okian/teambalance/internal/domain/skill"
)

// Input gathers the artifacts of one run.
type Input struct {
	Players  []model.Player
	Graph    *preference.Graph
	Grouping *grouping.Resolution
	Outcome  assign.Outcome
	// TeamNames overrides default names by team index.
	TeamNames []string
	// ClosedTeams is how many planned teams were left empty for lack of
	// players to meet the gender floors.
	ClosedTeams int
	// PreferencesIgnored is set for modes that never consider requests.
	PreferencesIgnored bool
}

// Report is everything Build derives.
type Report struct {
	Teams       []model.Team
	Unassigned  []model.Player
	Stats       model.Stats
	Conflicts   []model.RequestConflict
	NearMisses  []model.NearMissGroup
	Unfulfilled []model.UnfulfilledRequest
}

// Build produces the report. GenerationTime is left for the caller to fill.
func Build(in Input) Report {
	r := Report{
		Teams:       teams(in),
		Unassigned:  make([]model.Player, 0, len(in.Outcome.Unassigned)),
		Conflicts:   in.Graph.Conflicts(),
		NearMisses:  append(append([]model.NearMissGroup{}, in.Grouping.NearMisses...), in.Outcome.NearMisses...),
		Unfulfilled: make([]model.UnfulfilledRequest, 0),
	}
	for _, i := range in.Outcome.Unassigned {
		r.Unassigned = append(r.Unassigned, in.Players[i])
	}

	together := func(a, b int) bool {
		ta := in.Outcome.TeamOf[a]
		return ta >= 0 && ta == in.Outcome.TeamOf[b]
	}

	for _, e := range in.Graph.OneWay() {
		if together(e.From, e.To) {
			continue
		}
		from, to := &in.Players[e.From], &in.Players[e.To]
		r.Conflicts = append(r.Conflicts, model.RequestConflict{
			Type:     model.ConflictOneWayRequest,
			PlayerID: from.ID,
			TargetID: to.ID,
			Message:  fmt.Sprintf("%s asked for %s, who did not ask back", from.Name, to.Name),
		})
	}

	for i := range in.Players {
		for _, req := range in.Graph.Requests(i) {
			if req.Resolved() && together(i, req.Target) {
				continue
			}
			r.Unfulfilled = append(r.Unfulfilled, model.UnfulfilledRequest{
				PlayerID:      in.Players[i].ID,
				RequestedName: req.Name,
				MustHave:      req.MustHave,
				Reason:        unfulfilledReason(in, r.Conflicts, i, req),
			})
		}
	}

	r.Stats = stats(in, r.Teams, together)
	return r
}

func teams(in Input) []model.Team {
	out := make([]model.Team, len(in.Outcome.Teams))
	for i, at := range in.Outcome.Teams {
		t := model.Team{
			ID:      at.ID,
			Name:    fmt.Sprintf("Team %d", i+1),
			Players: make([]model.Player, 0, len(at.Members)),
		}
		if i < len(in.TeamNames) && in.TeamNames[i] != "" {
			t.Name = in.TeamNames[i]
		}
		var sum float64
		for _, m := range at.Members {
			p := in.Players[m]
			t.Players = append(t.Players, p)
			t.Genders.Add(p.Gender)
			if p.IsHandler {
				t.HandlerCount++
			}
			sum += skill.Effective(&p)
		}
		if len(at.Members) > 0 {
			t.AverageSkill = sum / float64(len(at.Members))
		}
		out[i] = t
	}
	return out
}

func unfulfilledReason(in Input, conflicts []model.RequestConflict, i int, req preference.Request) model.UnfulfilledReason {
	if !req.Resolved() {
		return model.UnfulfilledUnknownPlayer
	}
	t := req.Target
	if in.Outcome.TeamOf[i] < 0 || in.Outcome.TeamOf[t] < 0 {
		return model.UnfulfilledUnplaced
	}
	if in.Graph.Avoids(i, t) || avoidConflict(in, conflicts, i, t) {
		return model.UnfulfilledAvoidConflict
	}
	if reason, ok := in.Grouping.Rejected(i, t); ok && reason == model.ReasonGroupTooLarge {
		return model.UnfulfilledGroupFull
	}
	other := in.Grouping.UnitOf[t] != in.Grouping.UnitOf[i]
	unit := &in.Grouping.Units[in.Grouping.UnitOf[t]]
	if other && unit.Size() >= model.MaxGroupSize {
		return model.UnfulfilledGroupFull
	}
	if !in.Graph.Requested(t, i) {
		return model.UnfulfilledNonReciprocal
	}
	if in.PreferencesIgnored {
		return model.UnfulfilledPreferencesIgnored
	}
	if other && unit.Kind == grouping.KindExplicit {
		return model.UnfulfilledGroupFull
	}
	return model.UnfulfilledNoRoom
}

func avoidConflict(in Input, conflicts []model.RequestConflict, i, t int) bool {
	if reason, ok := in.Grouping.Rejected(i, t); ok && reason == model.ReasonAvoidConflict {
		return true
	}
	a, b := in.Players[i].ID, in.Players[t].ID
	for _, c := range conflicts {
		if c.Type != model.ConflictAvoidVsRequest {
			continue
		}
		if (c.PlayerID == a && c.TargetID == b) || (c.PlayerID == b && c.TargetID == a) {
			return true
		}
	}
	return false
}
