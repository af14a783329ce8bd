package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialised with defaults", func() {
			So(Init(), ShouldBeNil)
			So(Get(), ShouldNotBeNil)
			So(Named("test"), ShouldNotBeNil)
			So(Sync(), ShouldBeNil)
		})

		Convey("When given an unknown format", func() {
			So(Init(WithFormat("xml")), ShouldNotBeNil)
		})

		Convey("When given an unknown level", func() {
			So(Init(), ShouldBeNil)
			So(SetLevelString("loud"), ShouldNotBeNil)
			So(SetLevelString("WARN"), ShouldBeNil)
			So(SetLevelString(""), ShouldBeNil)
		})
	})
}

func TestJSONOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithOutput(&buf), WithFormat("json")), ShouldBeNil)
		ctx := context.Background()

		Convey("When a record is written with fields", func() {
			Get().With(String("run", "r1")).Warn(ctx, "dropped reference",
				Int("teams", 3), Bool("manual", false), Duration("took", time.Millisecond), Error(errors.New("boom")))

			var rec map[string]any
			So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)

			Convey("Then every field is present", func() {
				So(rec["msg"], ShouldEqual, "dropped reference")
				So(rec["level"], ShouldEqual, "WARN")
				So(rec["run"], ShouldEqual, "r1")
				So(rec["teams"], ShouldEqual, 3.0)
				So(rec["manual"], ShouldEqual, false)
				So(rec["error"], ShouldEqual, "boom")
				So(rec["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level filters a record", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			So(strings.TrimSpace(buf.String()), ShouldBeEmpty)
		})
	})
}
