package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	service "github.com/okian/healthdash/internal/app"
	"github.com/okian/healthdash/internal/domain/health"
	"github.com/okian/healthdash/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func waitReady(svc *service.Service) {
	select {
	case <-svc.Ready():
	case <-time.After(5 * time.Second):
	}
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a project-health API with two projects", t, func() {
		var hits atomic.Int32
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/project-health" {
				http.NotFound(w, r)
				return
			}
			hits.Add(1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"id":"1","name":"Alpha","healthMetrics":{"progress":80,"risks":2}},
				{"id":"2","name":"Beta","healthMetrics":{"progress":40,"risks":6}}
			]`))
		}))
		defer api.Close()

		svc := service.New(service.WithBaseURL(api.URL))
		defer svc.Stop()

		Convey("When the service starts", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			waitReady(svc)

			Convey("Then the list is held in fetch order", func() {
				projects := svc.Projects(context.Background())
				So(len(projects), ShouldEqual, 2)
				So(projects[0].Name, ShouldEqual, "Alpha")
				So(projects[1].Name, ShouldEqual, "Beta")
			})

			Convey("Then the view carries rings, labels and the chart", func() {
				view := svc.View(context.Background())
				So(len(view.Cards), ShouldEqual, 2)
				So(view.Cards[0].Ring.Value, ShouldEqual, 80.0)
				So(view.Cards[1].Ring.Value, ShouldEqual, 40.0)
				So(view.Cards[0].Risk.Text, ShouldEqual, "2/10")
				So(view.Cards[0].Risk.Color, ShouldEqual, health.RiskGreen)
				So(view.Cards[1].Risk.Text, ShouldEqual, "6/10")
				So(view.Cards[1].Risk.Color, ShouldEqual, health.RiskRed)
				So(view.Chart.Labels, ShouldResemble, []string{"Alpha", "Beta"})
				So(view.Chart.Progress().Data, ShouldResemble, []float64{80, 40})
				So(view.Chart.Risks().Data, ShouldResemble, []float64{2, 6})
			})

			Convey("Then stats report the loaded list", func() {
				stats := svc.GetStats()
				So(stats["totalProjects"], ShouldEqual, 2)
				So(stats["version"], ShouldEqual, uint64(1))
				So(stats["projectsByRisk"], ShouldResemble, map[string]int{"green": 1, "orange": 0, "red": 1})
			})

			Convey("Then mutating a returned list does not leak into the service", func() {
				projects := svc.Projects(context.Background())
				projects[0] = model.Project{ID: "x", Name: "Mutated"}
				So(svc.Projects(context.Background())[0].Name, ShouldEqual, "Alpha")
			})
		})

		Convey("When the service is started twice without stopping", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Start(context.Background()), ShouldBeNil)
			waitReady(svc)

			Convey("Then only one read is issued", func() {
				So(hits.Load(), ShouldEqual, int32(1))
			})
		})

		Convey("When the service is stopped and started again", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			waitReady(svc)
			svc.Stop()
			So(svc.Start(context.Background()), ShouldBeNil)
			waitReady(svc)

			Convey("Then each mount performs its own read", func() {
				So(hits.Load(), ShouldEqual, int32(2))
				So(len(svc.Projects(context.Background())), ShouldEqual, 2)
			})
		})
	})
}
