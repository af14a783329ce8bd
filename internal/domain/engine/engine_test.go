package engine_test

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/teambalance/internal/domain/capacity"
	"github.com/okian/teambalance/internal/domain/engine"
	"github.com/okian/teambalance/internal/domain/model"
)

var fixed = time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)

func clock() time.Time { return fixed }

func p(id string, g model.Gender, skill float64) model.Player {
	return model.Player{ID: id, Name: id, Gender: g, SkillRating: skill}
}

func TestGenerateLeagueNights(t *testing.T) {
	Convey("Given eight players with skills 9 down to 2", t, func() {
		genders := []model.Gender{model.GenderFemale, model.GenderMale}
		players := make([]model.Player, 0, 8)
		for i, s := range []float64{9, 8, 7, 6, 5, 4, 3, 2} {
			players = append(players, p(fmt.Sprintf("p%d", i), genders[i%2], s))
		}
		cfg := model.LeagueConfig{MaxTeamSize: 4, MinFemales: 1, MinMales: 1}

		res, err := engine.Generate(players, cfg, nil, model.ModeBalanced, engine.WithClock(clock))
		So(err, ShouldBeNil)

		Convey("Then two teams average 5.5 each with nobody left over", func() {
			So(res.Teams, ShouldHaveLength, 2)
			for _, tm := range res.Teams {
				So(tm.AverageSkill, ShouldAlmostEqual, 5.5, 0.5)
				So(tm.Genders.Females, ShouldBeGreaterThanOrEqualTo, 1)
				So(tm.Genders.Males, ShouldBeGreaterThanOrEqualTo, 1)
			}
			So(res.UnassignedPlayers, ShouldBeEmpty)
			So(res.Stats.TeamSkillSpread, ShouldAlmostEqual, 0, 1e-9)
			So(res.Stats.AssignedPlayers, ShouldEqual, 8)
		})

		Convey("Then teams get default names and stable ids", func() {
			So(res.Teams[0].Name, ShouldEqual, "Team 1")
			So(res.Teams[1].Name, ShouldEqual, "Team 2")
			again, err := engine.Generate(players, cfg, nil, model.ModeBalanced, engine.WithClock(clock))
			So(err, ShouldBeNil)
			So(again.Teams[0].ID, ShouldEqual, res.Teams[0].ID)
		})
	})

	Convey("Given a group of three and a fourth player who avoids one member", t, func() {
		players := []model.Player{
			p("g1", model.GenderOther, 5), p("g2", model.GenderOther, 5),
			p("g3", model.GenderOther, 5), p("d", model.GenderOther, 9),
		}
		players[3].AvoidRequests = []string{"G2"}
		groups := []model.PlayerGroup{{ID: "friends", PlayerIDs: []string{"g1", "g2", "g3"}}}

		Convey("When there is a second team", func() {
			res, err := engine.Generate(players, model.LeagueConfig{MaxTeamSize: 3}, groups, model.ModeBalanced)
			So(err, ShouldBeNil)

			Convey("Then the group places together and the avoider goes elsewhere", func() {
				So(res.Teams, ShouldHaveLength, 2)
				var groupTeam, avoiderTeam string
				for _, tm := range res.Teams {
					for _, pl := range tm.Players {
						switch pl.ID {
						case "g1":
							groupTeam = tm.ID
						case "d":
							avoiderTeam = tm.ID
						}
					}
				}
				So(groupTeam, ShouldNotBeEmpty)
				So(avoiderTeam, ShouldNotBeEmpty)
				So(avoiderTeam, ShouldNotEqual, groupTeam)
				So(res.Stats.AvoidRequestsViolated, ShouldEqual, 0)
			})
		})

		Convey("When the only team could hold everyone", func() {
			res, err := engine.Generate(players, model.LeagueConfig{MaxTeamSize: 4, TargetTeams: 1}, groups, model.ModeBalanced)
			So(err, ShouldBeNil)

			Convey("Then the avoider is left unassigned rather than forced in", func() {
				So(res.Teams[0].Players, ShouldHaveLength, 3)
				So(res.UnassignedPlayers, ShouldHaveLength, 1)
				So(res.UnassignedPlayers[0].ID, ShouldEqual, "d")
				So(res.Stats.AvoidRequestsViolated, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a must-have request that is not returned", t, func() {
		players := []model.Player{
			p("a", model.GenderOther, 5), p("b", model.GenderOther, 6),
			p("c", model.GenderOther, 7), p("d", model.GenderOther, 4),
		}
		players[0].TeammateRequests = []string{"b"}
		players[1].TeammateRequests = []string{"c"}
		players[2].TeammateRequests = []string{"b"}

		res, err := engine.Generate(players, model.LeagueConfig{MaxTeamSize: 4}, nil, model.ModeBalanced)

		Convey("Then exactly one must-have is broken and nothing fails", func() {
			So(err, ShouldBeNil)
			So(res.Stats.MutualRequestsBroken, ShouldEqual, 1)
			So(res.Stats.MutualRequestsHonored, ShouldEqual, 2)
		})
	})

	Convey("Given gender floors larger than a team", t, func() {
		players := []model.Player{p("a", model.GenderFemale, 5)}
		res, err := engine.Generate(players, model.LeagueConfig{MaxTeamSize: 8, MinFemales: 5, MinMales: 5}, nil, model.ModeBalanced)

		Convey("Then a configuration error is returned and no result", func() {
			So(res, ShouldBeNil)
			So(errors.Is(err, capacity.ErrInvalidConfig), ShouldBeTrue)
			var cerr *capacity.ConfigurationError
			So(errors.As(err, &cerr), ShouldBeTrue)
		})
	})
}

func TestGenerateInputs(t *testing.T) {
	Convey("Given problem inputs", t, func() {
		Convey("When the mode is unknown", func() {
			_, err := engine.Generate(nil, model.LeagueConfig{MaxTeamSize: 4}, nil, "snake")
			So(errors.Is(err, engine.ErrUnknownMode), ShouldBeTrue)
		})

		Convey("When the mode is empty", func() {
			res, err := engine.Generate(nil, model.LeagueConfig{MaxTeamSize: 4}, nil, "")
			So(err, ShouldBeNil)
			So(res.Mode, ShouldEqual, model.ModeBalanced)
			So(res.Teams, ShouldHaveLength, 1)
			So(res.Stats.TotalPlayers, ShouldEqual, 0)
		})

		Convey("When ids repeat and groups reference ghosts", func() {
			players := []model.Player{
				p("a", model.GenderMale, 5), p("a", model.GenderFemale, 7), p("b", model.GenderMale, 3),
			}
			groups := []model.PlayerGroup{{ID: "g", PlayerIDs: []string{"a", "ghost"}}}
			res, err := engine.Generate(players, model.LeagueConfig{MaxTeamSize: 4}, groups, model.ModeBalanced)
			So(err, ShouldBeNil)

			Convey("Then the later duplicate and the ghost are dropped as issues", func() {
				So(res.Stats.TotalPlayers, ShouldEqual, 2)
				So(res.Issues, ShouldHaveLength, 2)
				So(res.Issues[0].Kind, ShouldEqual, model.IssueDuplicatePlayer)
				So(res.Issues[1].Kind, ShouldEqual, model.IssueUnknownGroupMember)
			})
		})

		Convey("When skills are out of range", func() {
			over := 42.0
			players := []model.Player{p("a", model.GenderMale, -3)}
			players[0].OverrideSkill = &over
			res, err := engine.Generate(players, model.LeagueConfig{MaxTeamSize: 4}, nil, model.ModeBalanced)
			So(err, ShouldBeNil)

			Convey("Then they are clamped and the input is untouched", func() {
				So(res.Teams[0].AverageSkill, ShouldEqual, 10.0)
				So(res.Teams[0].Players[0].SkillRating, ShouldEqual, 0.0)
				So(*players[0].OverrideSkill, ShouldEqual, 42.0)
			})
		})

		Convey("When team names are supplied", func() {
			players := []model.Player{p("a", model.GenderMale, 5), p("b", model.GenderMale, 5), p("c", model.GenderMale, 5)}
			res, err := engine.Generate(players, model.LeagueConfig{MaxTeamSize: 1}, nil, model.ModeBalanced,
				engine.WithTeamNames([]string{"Hawks", "", "Owls"}))
			So(err, ShouldBeNil)
			So(res.Teams[0].Name, ShouldEqual, "Hawks")
			So(res.Teams[1].Name, ShouldEqual, "Team 2")
			So(res.Teams[2].Name, ShouldEqual, "Owls")
		})

		Convey("When the clock is fixed", func() {
			res, err := engine.Generate(nil, model.LeagueConfig{MaxTeamSize: 4}, nil, model.ModeBalanced, engine.WithClock(clock))
			So(err, ShouldBeNil)
			So(res.GeneratedAt.Equal(fixed), ShouldBeTrue)
			So(res.Stats.GenerationTime, ShouldEqual, time.Duration(0))
		})
	})
}

func TestDiagnostics(t *testing.T) {
	Convey("Given requests that cannot all be honored", t, func() {
		players := []model.Player{
			p("ann", model.GenderOther, 5), p("bo", model.GenderOther, 5),
			p("cy", model.GenderOther, 5), p("di", model.GenderOther, 5),
		}
		players[0].TeammateRequests = []string{"bo", "nobody"}
		players[1].TeammateRequests = []string{"ann"}
		players[1].AvoidRequests = []string{"cy"}
		players[2].TeammateRequests = []string{"ann"}
		players[3].TeammateRequests = []string{"cy"}

		res, err := engine.Generate(players, model.LeagueConfig{MaxTeamSize: 2}, nil, model.ModeBalanced)
		So(err, ShouldBeNil)

		Convey("Then the avoid-vs-request tension is reported", func() {
			var found bool
			for _, c := range res.Conflicts {
				if c.Type == model.ConflictAvoidVsRequest && c.PlayerID == "cy" && c.TargetID == "ann" {
					found = true
					So(c.AvoiderID, ShouldEqual, "bo")
					So(c.AvoidedID, ShouldEqual, "cy")
				}
			}
			So(found, ShouldBeTrue)
		})

		Convey("Then unknown names are listed as unfulfilled", func() {
			var reasons []model.UnfulfilledReason
			for _, u := range res.Unfulfilled {
				if u.PlayerID == "ann" {
					reasons = append(reasons, u.Reason)
					So(u.RequestedName, ShouldEqual, "nobody")
					So(u.MustHave, ShouldBeFalse)
				}
			}
			So(reasons, ShouldResemble, []model.UnfulfilledReason{model.UnfulfilledUnknownPlayer})
		})

		Convey("Then mutual partners share a team", func() {
			So(res.Stats.MutualRequestsHonored, ShouldBeGreaterThanOrEqualTo, 2)
		})
	})

	Convey("Given a one-way request between players on different teams", t, func() {
		players := []model.Player{p("a", model.GenderOther, 9), p("b", model.GenderOther, 8)}
		players[1].TeammateRequests = []string{"a"}
		players[0].AvoidRequests = []string{"b"}

		res, err := engine.Generate(players, model.LeagueConfig{MaxTeamSize: 1}, nil, model.ModeBalanced)
		So(err, ShouldBeNil)

		Convey("Then it is reported as a broken one-way request", func() {
			types := make([]model.ConflictType, 0, len(res.Conflicts))
			for _, c := range res.Conflicts {
				types = append(types, c.Type)
			}
			So(types, ShouldContain, model.ConflictOneWayRequest)
			So(types, ShouldContain, model.ConflictAvoidVsRequest)
			So(res.Unfulfilled, ShouldHaveLength, 1)
			So(res.Unfulfilled[0].Reason, ShouldEqual, model.UnfulfilledAvoidConflict)
		})
	})

	Convey("Given too few women for every team", t, func() {
		players := []model.Player{
			p("f", model.GenderFemale, 5), p("m1", model.GenderMale, 9), p("m2", model.GenderMale, 8),
			p("m3", model.GenderMale, 7), p("m4", model.GenderMale, 6), p("m5", model.GenderMale, 5),
		}
		res, err := engine.Generate(players, model.LeagueConfig{MaxTeamSize: 3, MinFemales: 1}, nil, model.ModeBalanced)
		So(err, ShouldBeNil)

		Convey("Then the shortfall lands in the unassigned pool", func() {
			So(res.Teams, ShouldHaveLength, 2)
			So(res.Teams[0].Players, ShouldHaveLength, 3)
			So(res.Teams[0].Genders.Females, ShouldEqual, 1)
			So(res.Teams[1].Players, ShouldBeEmpty)
			So(res.UnassignedPlayers, ShouldHaveLength, 3)
			So(res.Stats.GenderShortfallTeams, ShouldEqual, 1)
		})
	})

	Convey("Given a chain of five mutual requests", t, func() {
		players := []model.Player{
			p("A", model.GenderOther, 5), p("B", model.GenderOther, 5), p("C", model.GenderOther, 5),
			p("D", model.GenderOther, 5), p("E", model.GenderOther, 5),
		}
		players[0].TeammateRequests = []string{"B"}
		players[1].TeammateRequests = []string{"A", "C"}
		players[2].TeammateRequests = []string{"B", "D"}
		players[3].TeammateRequests = []string{"C", "E"}
		players[4].TeammateRequests = []string{"D"}

		res, err := engine.Generate(players, model.LeagueConfig{MaxTeamSize: 4}, nil, model.ModeBalanced)
		So(err, ShouldBeNil)

		Convey("Then the last merge is refused as too large", func() {
			var found bool
			for _, nm := range res.NearMisses {
				if nm.Reason == model.ReasonGroupTooLarge {
					found = true
					So(nm.PlayerIDs, ShouldResemble, []string{"A", "B", "C", "D", "E"})
				}
			}
			So(found, ShouldBeTrue)
		})

		Convey("Then the cut-off player's must-have is tagged group-full", func() {
			So(res.Unfulfilled, ShouldContain, model.UnfulfilledRequest{
				PlayerID:      "E",
				RequestedName: "D",
				MustHave:      true,
				Reason:        model.UnfulfilledGroupFull,
			})
		})
	})

	Convey("Given a one-way request into a full explicit group", t, func() {
		players := []model.Player{
			p("A", model.GenderOther, 5), p("B", model.GenderOther, 5), p("C", model.GenderOther, 5),
			p("D", model.GenderOther, 5), p("F", model.GenderOther, 5),
		}
		players[4].TeammateRequests = []string{"A"}
		groups := []model.PlayerGroup{{ID: "g", PlayerIDs: []string{"A", "B", "C", "D"}}}

		res, err := engine.Generate(players, model.LeagueConfig{MaxTeamSize: 4}, groups, model.ModeBalanced)
		So(err, ShouldBeNil)

		Convey("Then the request is tagged group-full", func() {
			So(res.Unfulfilled, ShouldResemble, []model.UnfulfilledRequest{{
				PlayerID:      "F",
				RequestedName: "A",
				MustHave:      true,
				Reason:        model.UnfulfilledGroupFull,
			}})
		})
	})
}

func TestDeterminism(t *testing.T) {
	Convey("Given a realistic roster", t, func() {
		players, groups := randomRoster(rand.New(rand.NewSource(11)), 60)
		cfg := model.LeagueConfig{MaxTeamSize: 8, MinFemales: 2, MinMales: 2}

		for _, mode := range []model.Mode{model.ModeBalanced, model.ModeManual} {
			Convey(fmt.Sprintf("When %s mode runs twice", mode), func() {
				a, err := engine.Generate(players, cfg, groups, mode, engine.WithClock(clock))
				So(err, ShouldBeNil)
				b, err := engine.Generate(players, cfg, groups, mode, engine.WithClock(clock))
				So(err, ShouldBeNil)
				So(cmp.Diff(a, b), ShouldBeEmpty)
			})
		}

		Convey("When randomized mode reuses a seed", func() {
			a, err := engine.Generate(players, cfg, groups, model.ModeRandomized, engine.WithSeed(99), engine.WithClock(clock))
			So(err, ShouldBeNil)
			b, err := engine.Generate(players, cfg, groups, model.ModeRandomized, engine.WithSeed(99), engine.WithClock(clock))
			So(err, ShouldBeNil)
			So(cmp.Diff(a, b), ShouldBeEmpty)
			So(a.Seed, ShouldEqual, int64(99))
		})

		Convey("When randomized mode has no seed", func() {
			res, err := engine.Generate(players, cfg, groups, model.ModeRandomized, engine.WithClock(clock))
			So(err, ShouldBeNil)
			So(res.Seed, ShouldEqual, fixed.UnixNano())
		})
	})
}

func TestInvariants(t *testing.T) {
	Convey("Given many generated rosters", t, func() {
		rng := rand.New(rand.NewSource(2024))
		for round := 0; round < 60; round++ {
			players, groups := randomRoster(rng, rng.Intn(45))
			cfg := randomConfig(rng, len(players))

			for _, mode := range []model.Mode{model.ModeBalanced, model.ModeRandomized, model.ModeManual} {
				res, err := engine.Generate(players, cfg, groups, mode, engine.WithSeed(int64(round)))
				So(err, ShouldBeNil)
				checkInvariants(res, players, groups, cfg, mode)
			}
		}
	})
}

func checkInvariants(res *model.Result, players []model.Player, groups []model.PlayerGroup, cfg model.LeagueConfig, mode model.Mode) {
	teamOf := make(map[string]string, len(players))
	seen := make(map[string]int, len(players))
	for _, tm := range res.Teams {
		So(len(tm.Players), ShouldBeLessThanOrEqualTo, cfg.MaxTeamSize)
		for _, pl := range tm.Players {
			seen[pl.ID]++
			teamOf[pl.ID] = tm.ID
		}
		if mode != model.ModeManual && len(tm.Players) > 0 {
			minF, minM := cfg.Floors()
			So(tm.Genders.Females, ShouldBeGreaterThanOrEqualTo, minF)
			So(tm.Genders.Males, ShouldBeGreaterThanOrEqualTo, minM)
		}
	}
	for _, pl := range res.UnassignedPlayers {
		seen[pl.ID]++
	}
	So(len(seen), ShouldEqual, len(players))
	for _, n := range seen {
		So(n, ShouldEqual, 1)
	}

	byName := make(map[string]string, len(players))
	for _, pl := range players {
		byName[pl.Name] = pl.ID
	}
	for _, pl := range players {
		for _, name := range pl.AvoidRequests {
			other := byName[name]
			if other == pl.ID {
				continue
			}
			if teamOf[pl.ID] != "" && teamOf[pl.ID] == teamOf[other] {
				So(fmt.Sprintf("%s shares a team with avoided %s", pl.ID, other), ShouldBeEmpty)
			}
		}
	}
	So(res.Stats.AvoidRequestsViolated, ShouldEqual, 0)

	reported := make(map[string]bool)
	for _, nm := range res.NearMisses {
		reported[nm.GroupID] = true
	}
	for _, g := range groups {
		if reported[g.ID] {
			continue
		}
		placed := true
		for _, id := range g.PlayerIDs {
			if teamOf[id] == "" {
				placed = false
			}
		}
		if !placed {
			continue
		}
		for _, id := range g.PlayerIDs {
			So(teamOf[id], ShouldEqual, teamOf[g.PlayerIDs[0]])
		}
	}
}

func randomRoster(rng *rand.Rand, n int) ([]model.Player, []model.PlayerGroup) {
	genders := []model.Gender{model.GenderFemale, model.GenderMale, model.GenderMale, model.GenderFemale, model.GenderOther}
	players := make([]model.Player, n)
	for i := range players {
		players[i] = model.Player{
			ID:          fmt.Sprintf("id-%02d", i),
			Name:        fmt.Sprintf("Player %02d", i),
			Gender:      genders[rng.Intn(len(genders))],
			SkillRating: float64(rng.Intn(101)) / 10,
			IsHandler:   rng.Intn(4) == 0,
		}
		if rng.Intn(8) == 0 {
			v := float64(rng.Intn(11))
			players[i].OverrideSkill = &v
		}
	}
	if n < 2 {
		return players, nil
	}
	for i := range players {
		for k := rng.Intn(3); k > 0; k-- {
			players[i].TeammateRequests = append(players[i].TeammateRequests, players[rng.Intn(n)].Name)
		}
		if rng.Intn(5) == 0 {
			players[i].AvoidRequests = append(players[i].AvoidRequests, players[rng.Intn(n)].Name)
		}
	}

	var groups []model.PlayerGroup
	perm := rng.Perm(n)
	for next := 0; next < n && len(groups) < n/6; {
		size := 1 + rng.Intn(5)
		if next+size > n {
			break
		}
		g := model.PlayerGroup{ID: fmt.Sprintf("grp-%d", len(groups))}
		for _, idx := range perm[next : next+size] {
			g.PlayerIDs = append(g.PlayerIDs, players[idx].ID)
		}
		groups = append(groups, g)
		next += size
	}
	return players, groups
}

func randomConfig(rng *rand.Rand, n int) model.LeagueConfig {
	cfg := model.LeagueConfig{MaxTeamSize: 2 + rng.Intn(7)}
	cfg.MinFemales = rng.Intn(3)
	cfg.MinMales = rng.Intn(3)
	for cfg.MinFemales+cfg.MinMales > cfg.MaxTeamSize {
		cfg.MinMales--
	}
	cfg.RequireMixedGender = rng.Intn(4) == 0 && max(cfg.MinFemales, 1)+max(cfg.MinMales, 1) <= cfg.MaxTeamSize
	if n > 0 && rng.Intn(3) == 0 {
		cfg.TargetTeams = 1 + rng.Intn(n)
		if cfg.TargetTeams > 6 {
			cfg.TargetTeams = 6
		}
	}
	return cfg
}
