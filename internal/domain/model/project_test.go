package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/okian/healthdash/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestProjectWireFormat(t *testing.T) {
	convey.Convey("Given a project-health payload", t, func() {
		payload := `[{"id":"1","name":"Alpha","healthMetrics":{"progress":80,"risks":2}},
			{"id":"2","name":"Beta","healthMetrics":{"progress":40.5,"risks":6}}]`

		convey.Convey("When decoding it", func() {
			var ps []model.Project
			err := json.Unmarshal([]byte(payload), &ps)

			convey.Convey("Then fields land in fetch order", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(ps, convey.ShouldHaveLength, 2)
				convey.So(ps[0].ID, convey.ShouldEqual, "1")
				convey.So(ps[0].Name, convey.ShouldEqual, "Alpha")
				convey.So(ps[0].HealthMetrics.Progress, convey.ShouldEqual, 80.0)
				convey.So(ps[1].HealthMetrics.Progress, convey.ShouldEqual, 40.5)
				convey.So(ps[1].HealthMetrics.Risks, convey.ShouldEqual, 6.0)
			})
		})

		convey.Convey("When a numeric field carries a string", func() {
			var ps []model.Project
			err := json.Unmarshal([]byte(`[{"id":"1","healthMetrics":{"progress":"80"}}]`), &ps)

			convey.Convey("Then decoding fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When out-of-range values arrive", func() {
			var ps []model.Project
			err := json.Unmarshal([]byte(`[{"id":"x","healthMetrics":{"progress":140,"risks":-3}}]`), &ps)

			convey.Convey("Then they pass through untouched", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(ps[0].HealthMetrics.Progress, convey.ShouldEqual, 140.0)
				convey.So(ps[0].HealthMetrics.Risks, convey.ShouldEqual, -3.0)
			})
		})
	})
}

func TestCloneProjects(t *testing.T) {
	convey.Convey("Given a project slice", t, func() {
		src := []model.Project{{ID: "1", Name: "Alpha"}}

		convey.Convey("When cloning and mutating the clone", func() {
			dst := model.CloneProjects(src)
			dst[0].Name = "changed"

			convey.Convey("Then the source is unchanged", func() {
				convey.So(src[0].Name, convey.ShouldEqual, "Alpha")
			})
		})

		convey.Convey("When cloning nil", func() {
			dst := model.CloneProjects(nil)

			convey.Convey("Then the result is empty but not nil", func() {
				convey.So(dst, convey.ShouldNotBeNil)
				convey.So(dst, convey.ShouldBeEmpty)
			})
		})
	})
}
