package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/safeeats/internal/config"
	"github.com/okian/safeeats/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a search API and a wired application", t, func() {
		upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/restaurants/search":
				_, _ = w.Write([]byte(`[{"id":1,"name":"Zuni","star_rating":2},{"id":2,"name":"Aldo","star_rating":4}]`))
			default:
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"detail":"Not found."}`))
			}
		}))
		defer upstreamSrv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg := config.New()
		cfg.UpstreamBaseURL = upstreamSrv.URL + "/api"
		cfg.UpstreamRPS = 0

		svc, err := newService(cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux := newMux(ctx, cfg, svc)

		convey.Convey("When searching through the HTTP API", func() {
			req := httptest.NewRequest(http.MethodGet, "/search?q=a&sort=stars_desc", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			convey.Convey("Then ranked results should be returned", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				body := w.Body.String()
				convey.So(body, convey.ShouldContainSubstring, `"sort":"stars_desc"`)
				convey.So(len(body), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When requesting an unknown restaurant", func() {
			req := httptest.NewRequest(http.MethodGet, "/restaurants/99", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusNotFound)
		})

		convey.Convey("When requesting the API docs", func() {
			req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When the configuration is invalid", func() {
			_ = os.Setenv("SAFEEATS_ADDR", "")
			defer func() { _ = os.Unsetenv("SAFEEATS_ADDR") }()

			convey.Convey("Then run should fail before serving", func() {
				err := run(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the upstream base url is invalid", func() {
			cfg := config.New()
			cfg.UpstreamBaseURL = "not a url"

			_, err := newService(cfg, logger.Get())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startSystemMetricsUpdater(ctx)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When testing service metrics update", func() {
			svc, err := newService(config.New(), logger.Get())
			convey.So(err, convey.ShouldBeNil)

			convey.So(func() {
				updateServiceMetrics(svc)
				updateSystemMetrics()
			}, convey.ShouldNotPanic)
		})
	})
}
