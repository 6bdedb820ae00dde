package analyzer_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/rollrank/rollrank/internal/adapters/provider"
	"github.com/rollrank/rollrank/internal/adapters/store"
	"github.com/rollrank/rollrank/internal/domain/analyzer"
	"github.com/rollrank/rollrank/internal/domain/model"
	"github.com/rollrank/rollrank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// collectingSink records contributions in arrival order.
type collectingSink struct {
	got []model.Contribution
}

func (s *collectingSink) Add(c model.Contribution) {
	s.got = append(s.got, c)
}

// staticSource serves canned results and counts fetches.
type staticSource struct {
	results map[int]provider.Results
	err     error
	fetches int
}

func (f *staticSource) EventResults(_ context.Context, eventID int) (provider.Results, error) {
	f.fetches++
	if f.err != nil {
		return provider.Results{}, f.err
	}
	res, ok := f.results[eventID]
	if !ok {
		return provider.Results{}, fmt.Errorf("%w: event %d", provider.ErrRetrieval, eventID)
	}
	return res, nil
}

func TestAnalyzer_Analyze(t *testing.T) {
	Convey("Given an analyzer over an empty store", t, func() {
		ctx := context.Background()
		st := store.NewMemory()
		src := &staticSource{results: map[int]provider.Results{
			101: {
				Players: []provider.Player{{ID: 7, Name: "Alpha"}, {ID: 8, Name: "Beta"}},
				Scores:  []string{"5.00", "12.345"},
			},
		}}
		a := analyzer.New(st, src)
		ev := model.Event{ID: 101, Name: "Spring Open", Week: 26, Year: 2024}

		Convey("When the event carries weight zero", func() {
			sink := &collectingSink{}
			outcome, err := a.Analyze(ctx, ev, 0, sink)

			Convey("Then nothing is fetched, stored or emitted", func() {
				So(err, ShouldBeNil)
				So(outcome, ShouldEqual, analyzer.OutcomeSkipped)
				So(src.fetches, ShouldEqual, 0)
				So(sink.got, ShouldBeEmpty)
			})
		})

		Convey("When the event is analyzed fresh", func() {
			sink := &collectingSink{}
			outcome, err := a.Analyze(ctx, ev, 10000, sink)

			Convey("Then normalized records are persisted and emitted", func() {
				So(err, ShouldBeNil)
				So(outcome, ShouldEqual, analyzer.OutcomeFetched)
				So(len(sink.got), ShouldEqual, 2)
				So(sink.got[0].CompetitorID, ShouldEqual, 7)
				So(sink.got[0].Points, ShouldEqual, 500)
				So(sink.got[0].Weight, ShouldEqual, 10000)
				// truncated, not rounded
				So(sink.got[1].Points, ShouldEqual, 1234)

				cached, err := st.EventScores(ctx, 101)
				So(err, ShouldBeNil)
				So(len(cached), ShouldEqual, 2)
			})

			Convey("And a second run hits the cache without fetching", func() {
				again := &collectingSink{}
				outcome, err := a.Analyze(ctx, ev, 10000, again)

				So(err, ShouldBeNil)
				So(outcome, ShouldEqual, analyzer.OutcomeCached)
				So(src.fetches, ShouldEqual, 1)
				So(len(again.got), ShouldEqual, 2)
				So(again.got[0].Points, ShouldEqual, sink.got[0].Points)
				So(again.got[1].Points, ShouldEqual, sink.got[1].Points)
			})
		})

		Convey("When the player and score lists disagree", func() {
			src.results[202] = provider.Results{
				Players: []provider.Player{{ID: 7, Name: "Alpha"}},
				Scores:  []string{"5.00", "6.00"},
			}
			sink := &collectingSink{}
			bad := model.Event{ID: 202, Name: "Broken Cup", Week: 26, Year: 2024}
			_, err := a.Analyze(ctx, bad, 10000, sink)

			Convey("Then a DataShapeError names the event and nothing leaks", func() {
				var shape *analyzer.DataShapeError
				So(errors.As(err, &shape), ShouldBeTrue)
				So(shape.EventID, ShouldEqual, 202)
				So(shape.Players, ShouldEqual, 1)
				So(shape.Scores, ShouldEqual, 2)
				So(sink.got, ShouldBeEmpty)

				cached, err := st.EventScores(ctx, 202)
				So(err, ShouldBeNil)
				So(cached, ShouldBeEmpty)
			})
		})

		Convey("When a score fails to parse", func() {
			src.results[303] = provider.Results{
				Players: []provider.Player{{ID: 7, Name: "Alpha"}},
				Scores:  []string{"n/a"},
			}
			sink := &collectingSink{}
			bad := model.Event{ID: 303, Name: "Garbled Open", Week: 26, Year: 2024}
			_, err := a.Analyze(ctx, bad, 10000, sink)

			Convey("Then the failure is a retrieval failure and nothing is emitted", func() {
				So(errors.Is(err, provider.ErrRetrieval), ShouldBeTrue)
				So(sink.got, ShouldBeEmpty)
			})
		})

		Convey("When the source is unreachable", func() {
			src.err = fmt.Errorf("%w: connection refused", provider.ErrRetrieval)
			sink := &collectingSink{}
			_, err := a.Analyze(ctx, ev, 10000, sink)

			Convey("Then the failure wraps ErrRetrieval", func() {
				So(errors.Is(err, provider.ErrRetrieval), ShouldBeTrue)
				So(sink.got, ShouldBeEmpty)
			})
		})
	})
}

func TestParsePoints(t *testing.T) {
	Convey("Given textual scores", t, func() {
		Convey("Then valid decimals normalize to scale x100", func() {
			cases := map[string]int64{
				"5.00":    500,
				"5.5":     550,
				"5":       500,
				"800":     80000,
				"12.345":  1234, // truncated beyond two digits
				"12.349":  1234,
				"0.07":    7,
				"0":       0,
				" 42.10 ": 4210,
			}
			for text, want := range cases {
				got, err := analyzer.ParsePoints(text)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
			}
		})

		Convey("Then malformed scores are rejected", func() {
			for _, text := range []string{"", ".", "n/a", "-5.00", "5.", "1,23", "5.0x"} {
				_, err := analyzer.ParsePoints(text)
				So(err, ShouldNotBeNil)
			}
		})
	})
}
