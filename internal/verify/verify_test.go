package verify_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/healthdash/internal/adapters/catalog"
	"github.com/okian/healthdash/internal/adapters/http/api"
	"github.com/okian/healthdash/internal/adapters/http/healthapi"
	"github.com/okian/healthdash/internal/adapters/http/site"
	app "github.com/okian/healthdash/internal/app"
	"github.com/okian/healthdash/internal/domain/model"
	"github.com/okian/healthdash/internal/verify"
	"github.com/okian/healthdash/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

var records = []model.ProjectRecord{
	{ID: "1", Name: "Alpha", TotalTasks: 10, CompletedTasks: 8, StartDate: "2024-01-01", RiskFactors: []string{"a", "b"}},
	{ID: "2", Name: "Beta", TotalTasks: 5, CompletedTasks: 2, StartDate: "2024-01-01", RiskFactors: []string{"a", "b", "c", "d", "e", "f"}},
}

func startHealthAPI(c catalog.Catalog) *httptest.Server {
	srv, err := healthapi.New(c)
	So(err, ShouldBeNil)
	return httptest.NewServer(srv.Handler(context.Background()))
}

func startDashboard(apiURL string) (*httptest.Server, *app.Service) {
	ctx := context.Background()
	svc := app.New(app.WithBaseURL(apiURL))
	So(svc.Start(ctx), ShouldBeNil)
	select {
	case <-svc.Ready():
	case <-time.After(2 * time.Second):
	}

	r := chi.NewRouter()
	api.NewServer(svc, svc).Register(ctx, r)
	pages, err := site.NewHandler(svc)
	So(err, ShouldBeNil)
	pages.Register(ctx, r)
	return httptest.NewServer(r), svc
}

func TestRun(t *testing.T) {
	Convey("Given a dashboard mounted against a live health API", t, func() {
		healthAPI := startHealthAPI(catalog.NewMemory(records))
		defer healthAPI.Close()
		dash, svc := startDashboard(healthAPI.URL)
		defer dash.Close()
		defer svc.Stop()

		cfg := &verify.Config{APIURL: healthAPI.URL, DashboardURL: dash.URL, Timeout: 2 * time.Second}

		Convey("When verifying", func() {
			stats, err := verify.Run(context.Background(), cfg)

			Convey("Then everything agrees", func() {
				So(err, ShouldBeNil)
				So(stats.OK(), ShouldBeTrue)
				So(stats.SourceProjects, ShouldEqual, 2)
				So(stats.DashboardProjects, ShouldEqual, 2)
				So(stats.CardsChecked, ShouldEqual, 2)
				So(stats.PageCards, ShouldEqual, 2)
				So(stats.PageBars, ShouldEqual, 4)
			})

			Convey("Then the summary reports success", func() {
				var buf bytes.Buffer
				verify.WriteSummary(&buf, stats)
				So(buf.String(), ShouldContainSubstring, "Result:             OK")
			})
		})
	})

	Convey("Given a dashboard that loaded before the catalog changed", t, func() {
		first := startHealthAPI(catalog.NewMemory(records[:1]))
		dash, svc := startDashboard(first.URL)
		first.Close()
		defer dash.Close()
		defer svc.Stop()

		current := startHealthAPI(catalog.NewMemory(records))
		defer current.Close()

		Convey("When verifying against the current API", func() {
			stats, err := verify.Run(context.Background(), &verify.Config{
				APIURL: current.URL, DashboardURL: dash.URL, Timeout: 2 * time.Second,
			})

			Convey("Then the drift is reported", func() {
				So(errors.Is(err, verify.ErrMismatch), ShouldBeTrue)
				So(stats.OK(), ShouldBeFalse)
				So(stats.Mismatches[0], ShouldContainSubstring, "dashboard holds 1 projects, API serves 2")

				var buf bytes.Buffer
				verify.WriteSummary(&buf, stats)
				So(buf.String(), ShouldContainSubstring, "mismatches")
			})
		})
	})

	Convey("Given an API that is down", t, func() {
		down := httptest.NewServer(http.NotFoundHandler())
		down.Close()

		Convey("Then the health check fails first", func() {
			_, err := verify.Run(context.Background(), &verify.Config{
				APIURL: down.URL, DashboardURL: down.URL, Timeout: time.Second,
			})
			So(errors.Is(err, verify.ErrUnhealthy), ShouldBeTrue)
		})
	})
}
