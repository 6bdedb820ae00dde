package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/rollrank/rollrank/internal/adapters/provider"
	"github.com/rollrank/rollrank/internal/adapters/store"
	"github.com/rollrank/rollrank/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestServiceRun(t *testing.T) {
	Convey("Given a snapshot with two scored events and one out-of-window event", t, func() {
		dir := t.TempDir()
		writeFixture(t, dir, "events_2024.json",
			`[{"id":1,"name":"Spring Open","week":26,"year":2024}]`)
		writeFixture(t, dir, "events_2023.json",
			`[{"id":2,"name":"Autumn Cup","week":20,"year":2023}]`)
		writeFixture(t, dir, "events_2022.json",
			`[{"id":3,"name":"Ancient Cup","week":20,"year":2022}]`)
		writeFixture(t, dir, "results_1.json",
			`{"players":[{"id":7,"name":"Alpha"}],"scores":["5.00"]}`)
		writeFixture(t, dir, "results_2.json",
			`{"players":[{"id":7,"name":"Alpha"}],"scores":["8.00"]}`)

		st := store.NewMemory()
		var buf bytes.Buffer
		svc := New(
			WithEndDate(26, 2024),
			WithWorkerCount(2),
			WithStore(st),
			WithProvider(provider.NewSnapshot(dir)),
			WithOutput(&buf),
		)

		Convey("When the run executes", func() {
			rep, err := svc.Run(context.Background())
			So(err, ShouldBeNil)

			Convey("Then both in-window events are fetched and the stale one skipped", func() {
				So(rep.Events, ShouldEqual, 3)
				So(rep.Fetched, ShouldEqual, 2)
				So(rep.Skipped, ShouldEqual, 1)
				So(rep.CacheHits, ShouldEqual, 0)
				So(rep.Degraded(), ShouldBeFalse)
				So(rep.RunID, ShouldNotBeEmpty)
			})

			Convey("Then the weighted average lands at 0.2250", func() {
				// 500*10000 + 800*5000 = 9,000,000 over a floor divisor of 400.
				So(rep.Ranked, ShouldEqual, 1)
				So(buf.String(), ShouldEqual, "1.\t\tAlpha\t 0.2250\n")
			})

			Convey("Then the aggregates are persisted for the end date", func() {
				saved := st.SavedAggregates(26, 2024)
				So(saved, ShouldHaveLength, 1)
				So(saved[0].CompetitorID, ShouldEqual, 7)
				So(saved[0].Weighted, ShouldEqual, int64(9_000_000))
				So(saved[0].Count, ShouldEqual, 2)
			})
		})

		Convey("When a second run shares the store", func() {
			_, err := svc.Run(context.Background())
			So(err, ShouldBeNil)

			var second bytes.Buffer
			again := New(
				WithEndDate(26, 2024),
				WithWorkerCount(2),
				WithStore(st),
				WithProvider(provider.NewSnapshot(dir)),
				WithOutput(&second),
			)
			rep, err := again.Run(context.Background())
			So(err, ShouldBeNil)

			Convey("Then both events are served from the score cache", func() {
				So(rep.CacheHits, ShouldEqual, 2)
				So(rep.Fetched, ShouldEqual, 0)
				So(second.String(), ShouldEqual, "1.\t\tAlpha\t 0.2250\n")
			})
		})
	})
}

func TestServiceRunDegraded(t *testing.T) {
	Convey("Given a catalog that promises a result sheet the snapshot lacks", t, func() {
		dir := t.TempDir()
		writeFixture(t, dir, "events_2024.json",
			`[{"id":1,"name":"Spring Open","week":26,"year":2024},`+
				`{"id":9,"name":"Ghost Event","week":25,"year":2024}]`)
		writeFixture(t, dir, "results_1.json",
			`{"players":[{"id":7,"name":"Alpha"}],"scores":["5.00"]}`)

		var buf bytes.Buffer
		svc := New(
			WithEndDate(26, 2024),
			WithWorkerCount(3),
			WithProvider(provider.NewSnapshot(dir)),
			WithOutput(&buf),
		)

		Convey("When the run executes", func() {
			rep, err := svc.Run(context.Background())
			So(err, ShouldBeNil)

			Convey("Then the failure is recorded but the table still renders", func() {
				So(rep.Degraded(), ShouldBeTrue)
				So(rep.Failures, ShouldHaveLength, 1)
				So(rep.Failures[0].EventID, ShouldEqual, 9)
				So(rep.Failures[0].Kind, ShouldEqual, FailureRetrieval)
				So(rep.Fetched, ShouldEqual, 1)
				So(buf.String(), ShouldEqual, "1.\t\tAlpha\t 0.1250\n")
			})
		})
	})
}

func TestServiceRunMalformedWeeks(t *testing.T) {
	Convey("Given a catalog entry with a week outside 1..52", t, func() {
		dir := t.TempDir()
		writeFixture(t, dir, "events_2024.json",
			`[{"id":1,"name":"Spring Open","week":26,"year":2024},`+
				`{"id":5,"name":"Bad Week","week":0,"year":2024}]`)
		writeFixture(t, dir, "results_1.json",
			`{"players":[{"id":7,"name":"Alpha"}],"scores":["5.00"]}`)

		var buf bytes.Buffer
		svc := New(
			WithEndDate(26, 2024),
			WithProvider(provider.NewSnapshot(dir)),
			WithOutput(&buf),
		)

		rep, err := svc.Run(context.Background())
		So(err, ShouldBeNil)

		Convey("Then the malformed entry is dropped before analysis", func() {
			So(rep.Events, ShouldEqual, 1)
			So(rep.Degraded(), ShouldBeFalse)
		})
	})
}

func TestServiceRunCancelled(t *testing.T) {
	Convey("Given a cancelled context", t, func() {
		dir := t.TempDir()
		writeFixture(t, dir, "events_2024.json",
			`[{"id":1,"name":"Spring Open","week":26,"year":2024}]`)
		writeFixture(t, dir, "results_1.json",
			`{"players":[{"id":7,"name":"Alpha"}],"scores":["5.00"]}`)

		svc := New(
			WithEndDate(26, 2024),
			WithProvider(provider.NewSnapshot(dir)),
			WithOutput(&bytes.Buffer{}),
		)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := svc.Run(ctx)
		Convey("Then the run aborts with the context error", func() {
			So(err, ShouldEqual, context.Canceled)
		})
	})
}
