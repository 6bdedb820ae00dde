package metrics_test

import (
	"testing"

	"github.com/rollrank/rollrank/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetrics(t *testing.T) {
	Convey("Given the engine metrics registry", t, func() {
		Convey("When recording a spread of events", func() {
			So(func() {
				metrics.RecordEventAnalyzed("cached")
				metrics.RecordEventAnalyzed("fetched")
				metrics.RecordEventAnalyzed("skipped")
				metrics.RecordEventFailure("retrieval")
				metrics.RecordScoreInserted()
				metrics.RecordContribution()
				metrics.RecordReevaluated()
				metrics.UpdateCompetitorTotal(311)
				metrics.ObserveEventAnalysis(0.02)
				metrics.ObserveRunDuration(1.4)
			}, ShouldNotPanic)
		})

		Convey("Then the registry gathers the engine metric families", func() {
			families, err := metrics.Registry().Gather()
			So(err, ShouldBeNil)

			names := make(map[string]bool, len(families))
			for _, f := range families {
				names[f.GetName()] = true
			}
			So(names["rollrank_events_analyzed_total"], ShouldBeTrue)
			So(names["rollrank_event_failures_total"], ShouldBeTrue)
			So(names["rollrank_competitors_total"], ShouldBeTrue)
			So(names["rollrank_run_duration_seconds"], ShouldBeTrue)
		})
	})
}
