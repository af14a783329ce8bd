package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/teambalance/internal/config"
	"github.com/okian/teambalance/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestNewServer(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		convey.So(logger.Init(logger.WithOutput(io.Discard)), convey.ShouldBeNil)
		ctx := context.Background()
		cfg := config.New(ctx)

		srv, svc, err := newServer(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		convey.Convey("Then the server listens on the configured address", func() {
			convey.So(srv.Addr, convey.ShouldEqual, cfg.Addr)
		})

		convey.Convey("Then every route is wired", func() {
			body := `{"players":[
				{"id":"1","name":"A","gender":"F","skillRating":5},
				{"id":"2","name":"B","gender":"F","skillRating":6},
				{"id":"3","name":"C","gender":"M","skillRating":7},
				{"id":"4","name":"D","gender":"M","skillRating":8}]}`
			cases := []struct {
				method, path, body string
				want               int
			}{
				{http.MethodPost, "/teams/generate", body, http.StatusOK},
				{http.MethodGet, "/runs", "", http.StatusOK},
				{http.MethodGet, "/stats", "", http.StatusOK},
				{http.MethodGet, "/healthz", "", http.StatusOK},
				{http.MethodGet, "/api-docs", "", http.StatusOK},
				{http.MethodGet, "/openapi.yaml", "", http.StatusOK},
			}
			for _, c := range cases {
				req := httptest.NewRequest(c.method, c.path, strings.NewReader(c.body))
				w := httptest.NewRecorder()
				srv.Handler.ServeHTTP(w, req)
				convey.So(w.Code, convey.ShouldEqual, c.want)
			}
		})
	})

	convey.Convey("Given metrics settings", t, func() {
		convey.So(logger.Init(logger.WithOutput(io.Discard)), convey.ShouldBeNil)
		ctx := context.Background()
		cfg := config.New(ctx)
		cfg.Metrics.Namespace = "league"
		cfg.Metrics.Labels = map[string]string{"night": "tuesday"}

		srv, svc, err := newServer(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		convey.Convey("Then /healthz exports under them", func() {
			w := httptest.NewRecorder()
			srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `league_engine_players_assigned_total{night="tuesday"}`)
			convey.So(w.Body.String(), convey.ShouldNotContainSubstring, "teambalance_engine_")
		})
	})

	convey.Convey("Given league defaults that cannot work", t, func() {
		convey.So(logger.Init(logger.WithOutput(io.Discard)), convey.ShouldBeNil)
		ctx := context.Background()
		cfg := config.New(ctx)
		cfg.League.MaxTeamSize = 1

		_, _, err := newServer(ctx, cfg)

		convey.Convey("Then the server is not built", func() {
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
