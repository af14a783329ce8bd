package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/okian/teambalance/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestGender(t *testing.T) {
	convey.Convey("Given the gender enum", t, func() {
		convey.Convey("Then the known values should be valid", func() {
			convey.So(model.GenderMale.Valid(), convey.ShouldBeTrue)
			convey.So(model.GenderFemale.Valid(), convey.ShouldBeTrue)
			convey.So(model.GenderOther.Valid(), convey.ShouldBeTrue)
		})

		convey.Convey("And anything else should be rejected", func() {
			convey.So(model.Gender("").Valid(), convey.ShouldBeFalse)
			convey.So(model.Gender("m").Valid(), convey.ShouldBeFalse)
		})

		convey.Convey("When counting a breakdown", func() {
			var b model.GenderBreakdown
			for _, g := range []model.Gender{model.GenderMale, model.GenderFemale, model.GenderFemale, model.GenderOther} {
				b.Add(g)
			}
			convey.So(b, convey.ShouldResemble, model.GenderBreakdown{Males: 1, Females: 2, Others: 1})
		})
	})
}

func TestLeagueConfigFloors(t *testing.T) {
	convey.Convey("Given a league config", t, func() {
		convey.Convey("When mixed gender is not required", func() {
			f, m := model.LeagueConfig{MaxTeamSize: 8}.Floors()
			convey.So(f, convey.ShouldEqual, 0)
			convey.So(m, convey.ShouldEqual, 0)
		})

		convey.Convey("When mixed gender is required", func() {
			f, m := model.LeagueConfig{MaxTeamSize: 8, MinFemales: 3, RequireMixedGender: true}.Floors()
			convey.So(f, convey.ShouldEqual, 3)
			convey.So(m, convey.ShouldEqual, 1)
		})
	})
}

func TestParseMode(t *testing.T) {
	convey.Convey("Given mode strings", t, func() {
		for in, want := range map[string]model.Mode{
			"":           model.ModeBalanced,
			"balanced":   model.ModeBalanced,
			"randomized": model.ModeRandomized,
			"manual":     model.ModeManual,
		} {
			got, err := model.ParseMode(in)
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldEqual, want)
		}

		_, err := model.ParseMode("snake")
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestPlayerJSON(t *testing.T) {
	convey.Convey("Given players with and without an override skill", t, func() {
		zero := 0.0
		players := []model.Player{
			{ID: "a", Name: "A", Gender: model.GenderFemale, SkillRating: 6},
			{ID: "b", Name: "B", Gender: model.GenderMale, SkillRating: 6, OverrideSkill: &zero},
		}

		convey.Convey("When they pass through JSON", func() {
			raw, err := json.Marshal(players)
			convey.So(err, convey.ShouldBeNil)

			var back []model.Player
			convey.So(json.Unmarshal(raw, &back), convey.ShouldBeNil)

			convey.Convey("Then an unset override stays unset and a zero override stays zero", func() {
				convey.So(back[0].OverrideSkill, convey.ShouldBeNil)
				convey.So(back[1].OverrideSkill, convey.ShouldNotBeNil)
				convey.So(*back[1].OverrideSkill, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When reading the must-have request", func() {
			p := model.Player{TeammateRequests: []string{"Sam", "Alex"}}
			name, ok := p.MustHave()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(name, convey.ShouldEqual, "Sam")

			_, ok = (&model.Player{}).MustHave()
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}
