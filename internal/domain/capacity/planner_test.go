package capacity_test

import (
	"errors"
	"testing"

	"github.com/okian/teambalance/internal/domain/capacity"
	"github.com/okian/teambalance/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestValidate(t *testing.T) {
	Convey("Given league configs", t, func() {
		Convey("When gender floors exceed the team size", func() {
			err := capacity.Validate(model.LeagueConfig{MaxTeamSize: 8, MinFemales: 5, MinMales: 5})

			Convey("Then a ConfigurationError is returned", func() {
				So(errors.Is(err, capacity.ErrInvalidConfig), ShouldBeTrue)
				var cerr *capacity.ConfigurationError
				So(errors.As(err, &cerr), ShouldBeTrue)
				So(cerr.Field, ShouldEqual, "minFemales+minMales")
			})
		})

		Convey("When mixed gender raises the floors past the cap", func() {
			err := capacity.Validate(model.LeagueConfig{MaxTeamSize: 1, RequireMixedGender: true})
			So(errors.Is(err, capacity.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When values are out of range", func() {
			for _, cfg := range []model.LeagueConfig{
				{MaxTeamSize: 0},
				{MaxTeamSize: 4, MinFemales: -1},
				{MaxTeamSize: 4, MinMales: -1},
				{MaxTeamSize: 4, TargetTeams: -2},
			} {
				So(errors.Is(capacity.Validate(cfg), capacity.ErrInvalidConfig), ShouldBeTrue)
			}
		})

		Convey("When floors fill the team exactly", func() {
			So(capacity.Validate(model.LeagueConfig{MaxTeamSize: 4, MinFemales: 2, MinMales: 2}), ShouldBeNil)
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given a valid config", t, func() {
		cfg := model.LeagueConfig{MaxTeamSize: 4, MinFemales: 1, MinMales: 1}

		Convey("When no target is set", func() {
			p, err := capacity.New(cfg, 9, 4, 5)
			So(err, ShouldBeNil)

			Convey("Then the team count is the ceiling of headcount over size", func() {
				So(p.Teams, ShouldEqual, 3)
				So(p.OpenTeams, ShouldEqual, 3)
				So(p.Capacity(), ShouldEqual, 12)
			})
		})

		Convey("When the roster is empty", func() {
			p, err := capacity.New(cfg, 0, 0, 0)
			So(err, ShouldBeNil)
			So(p.Teams, ShouldEqual, 1)
			So(p.OpenTeams, ShouldEqual, 0)
		})

		Convey("When a target is set", func() {
			cfg.TargetTeams = 2
			p, err := capacity.New(cfg, 12, 6, 6)
			So(err, ShouldBeNil)
			So(p.Teams, ShouldEqual, 2)
		})

		Convey("When the target exceeds the headcount", func() {
			cfg.TargetTeams = 5
			_, err := capacity.New(cfg, 3, 1, 2)
			So(errors.Is(err, capacity.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When there are too few females for every team", func() {
			p, err := capacity.New(cfg, 12, 2, 10)
			So(err, ShouldBeNil)

			Convey("Then only the staffable teams are open", func() {
				So(p.Teams, ShouldEqual, 3)
				So(p.OpenTeams, ShouldEqual, 2)
			})
		})

		Convey("When reading floors by gender", func() {
			p, _ := capacity.New(model.LeagueConfig{MaxTeamSize: 6, MinFemales: 2, MinMales: 1}, 6, 3, 3)
			So(p.Floor(model.GenderFemale), ShouldEqual, 2)
			So(p.Floor(model.GenderMale), ShouldEqual, 1)
			So(p.Floor(model.GenderOther), ShouldEqual, 0)
		})
	})
}
