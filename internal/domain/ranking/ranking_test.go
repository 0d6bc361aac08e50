package ranking_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/okian/simboard/internal/domain/evaluation"
	"github.com/okian/simboard/internal/domain/model"
	"github.com/okian/simboard/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	id      string
	name    string
	status  model.Status
	scores  []float64
	daysAgo int // <0 means no completion time
}

func build(fs ...fixture) []model.DerivedCandidate {
	out := make([]model.DerivedCandidate, 0, len(fs))
	for _, f := range fs {
		raw := model.RawCandidate{AssessmentID: f.id, SimulationID: "sim", Status: f.status}
		if f.name != "" {
			raw.Name = model.Ptr(f.name)
		}
		for i, s := range f.scores {
			raw.Dimensions = append(raw.Dimensions, model.DimensionScore{Name: string(rune('A' + i)), Score: s})
		}
		if f.daysAgo >= 0 {
			ts := base.AddDate(0, 0, -f.daysAgo)
			raw.CompletedAt = &ts
		}
		out = append(out, evaluation.Derive(raw))
	}
	return out
}

func ids(cs []model.DerivedCandidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.AssessmentID
	}
	return out
}

func TestRank_ScoreSort(t *testing.T) {
	Convey("Given candidates scored 4.0, unscored and 2.0", t, func() {
		records := build(
			fixture{id: "high", status: model.Completed, scores: []float64{4}, daysAgo: 1},
			fixture{id: "none", status: model.Working, daysAgo: -1},
			fixture{id: "low", status: model.Completed, scores: []float64{2}, daysAgo: 1},
		)

		Convey("When ranked with the default sort", func() {
			got := ranking.Rank(records, ranking.Filters{}, ranking.ParseSortKey(""))

			Convey("Then scored candidates come first, unscored last", func() {
				So(ids(got), ShouldResemble, []string{"high", "low", "none"})
			})
		})
	})

	Convey("Given tied scores", t, func() {
		records := build(
			fixture{id: "old", status: model.Completed, scores: []float64{3}, daysAgo: 5},
			fixture{id: "missing", status: model.Completed, scores: []float64{3}, daysAgo: -1},
			fixture{id: "new", status: model.Completed, scores: []float64{3}, daysAgo: 1},
			fixture{id: "unscored-old", status: model.Working, daysAgo: 9},
			fixture{id: "unscored-new", status: model.Working, daysAgo: 2},
		)

		Convey("Then recency breaks the tie and a missing time sorts last", func() {
			got := ranking.Rank(records, ranking.Filters{}, ranking.SortScore)
			So(ids(got), ShouldResemble, []string{"new", "old", "missing", "unscored-new", "unscored-old"})
		})
	})

	Convey("Given any filter combination", t, func() {
		records := build(
			fixture{id: "u1", status: model.Completed, daysAgo: 0},
			fixture{id: "s1", status: model.Completed, scores: []float64{1}, daysAgo: 3},
			fixture{id: "u2", status: model.Welcome, daysAgo: -1},
			fixture{id: "s2", status: model.Completed, scores: []float64{3.8}, daysAgo: 2},
		)
		completed := model.Completed
		filters := []ranking.Filters{{}, {Status: &completed}}

		Convey("Then every unscored candidate is after every scored one", func() {
			for _, f := range filters {
				got := ranking.Rank(records, f, ranking.SortScore)
				seenUnscored := false
				for _, c := range got {
					if c.OverallScore == nil {
						seenUnscored = true
						continue
					}
					So(seenUnscored, ShouldBeFalse)
				}
			}
		})
	})
}

func TestRank_OtherSorts(t *testing.T) {
	Convey("Given named candidates", t, func() {
		records := build(
			fixture{id: "b", name: "bob", status: model.Completed, scores: []float64{2}, daysAgo: 3},
			fixture{id: "anon", status: model.Completed, scores: []float64{4}, daysAgo: -1},
			fixture{id: "A", name: "Alice", status: model.Working, daysAgo: 1},
			fixture{id: "c", name: "CAROL", status: model.Completed, scores: []float64{3}, daysAgo: 7},
		)

		Convey("When sorted by name", func() {
			got := ranking.Rank(records, ranking.Filters{}, ranking.SortName)

			Convey("Then order is case-insensitive and a missing name comes first", func() {
				So(ids(got), ShouldResemble, []string{"anon", "A", "b", "c"})
			})
		})

		Convey("When sorted by recency", func() {
			got := ranking.Rank(records, ranking.Filters{}, ranking.SortRecent)

			Convey("Then most recent is first and a missing time is last", func() {
				So(ids(got), ShouldResemble, []string{"A", "b", "c", "anon"})
			})
		})
	})
}

func TestRank_Filters(t *testing.T) {
	Convey("Given a mixed batch", t, func() {
		records := build(
			fixture{id: "exc", status: model.Completed, scores: []float64{4, 3.5}, daysAgo: 1},
			fixture{id: "str", status: model.Completed, scores: []float64{3}, daysAgo: 1},
			fixture{id: "dev", status: model.Completed, scores: []float64{1}, daysAgo: 1},
			fixture{id: "wip", status: model.Working, daysAgo: -1},
			fixture{id: "odd", status: model.ParseStatus("archived"), daysAgo: -1},
		)

		Convey("When filtering by status", func() {
			working := model.Working
			got := ranking.Rank(records, ranking.Filters{Status: &working}, ranking.SortScore)
			So(ids(got), ShouldResemble, []string{"wip"})

			archived := model.ParseStatus("archived")
			got = ranking.Rank(records, ranking.Filters{Status: &archived}, ranking.SortScore)
			So(ids(got), ShouldResemble, []string{"odd"})
		})

		Convey("When filtering by strength", func() {
			tier := model.TierStrong
			got := ranking.Rank(records, ranking.Filters{Strength: &tier}, ranking.SortScore)
			So(ids(got), ShouldResemble, []string{"str"})
		})

		Convey("When filtering by minimum score", func() {
			threshold := 3.0
			got := ranking.Rank(records, ranking.Filters{MinScore: &threshold}, ranking.SortScore)

			Convey("Then unscored records are excluded", func() {
				So(ids(got), ShouldResemble, []string{"exc", "str"})
			})
		})

		Convey("When filters combine and match nothing", func() {
			threshold := 3.9
			tier := model.TierStrong
			view := ranking.Project(records, ranking.Filters{MinScore: &threshold, Strength: &tier}, ranking.SortScore)

			Convey("Then the view is empty with a zero of N count", func() {
				So(view.Records, ShouldBeEmpty)
				So(view.Empty(), ShouldBeTrue)
				So(view.Shown, ShouldEqual, 0)
				So(view.Total, ShouldEqual, 5)
			})
		})

		Convey("When no filter is active", func() {
			So(ranking.Filters{}.Active(), ShouldBeFalse)
			So(ranking.Rank(records, ranking.Filters{}, ranking.SortScore), ShouldHaveLength, 5)
		})
	})

	Convey("Given empty input", t, func() {
		So(ranking.Rank(nil, ranking.Filters{}, ranking.SortName), ShouldBeEmpty)
		view := ranking.Project(nil, ranking.Filters{}, ranking.SortScore)
		So(view.Total, ShouldEqual, 0)
	})
}

func TestRank_Determinism(t *testing.T) {
	Convey("Given a batch with fully tied keys", t, func() {
		records := build(
			fixture{id: "t1", status: model.Completed, scores: []float64{3}, daysAgo: 1},
			fixture{id: "t2", status: model.Completed, scores: []float64{3}, daysAgo: 1},
			fixture{id: "t3", status: model.Completed, scores: []float64{3}, daysAgo: 1},
			fixture{id: "x", status: model.Completed, scores: []float64{2}, daysAgo: 4},
		)

		Convey("Then ranking twice gives identical output", func() {
			a := ranking.Rank(records, ranking.Filters{}, ranking.SortScore)
			b := ranking.Rank(records, ranking.Filters{}, ranking.SortScore)
			So(ids(a), ShouldResemble, ids(b))
			So(ids(a), ShouldResemble, []string{"t1", "t2", "t3", "x"})
		})

		Convey("Then changing a non-key field does not reorder the others", func() {
			changed := make([]model.DerivedCandidate, len(records))
			copy(changed, records)
			changed[3].Email = model.Ptr("x@example.com")
			changed[3].RedFlagCount = 7
			So(ids(ranking.Rank(changed, ranking.Filters{}, ranking.SortScore)), ShouldResemble, []string{"t1", "t2", "t3", "x"})
		})

		Convey("Then the input slice is left untouched", func() {
			_ = ranking.Rank(records, ranking.Filters{}, ranking.SortName)
			So(ids(records), ShouldResemble, []string{"t1", "t2", "t3", "x"})
		})
	})
}

func TestParseQuery(t *testing.T) {
	Convey("Given dashboard query parameters", t, func() {
		Convey("When every parameter is valid", func() {
			q := url.Values{}
			q.Set("status", "completed")
			q.Set("strength", "Exceptional")
			q.Set("min_score", "2.75")
			q.Set("sort", "recent")
			f, key := ranking.ParseQuery(q)

			So(f.Status.Is(model.StatusCompleted), ShouldBeTrue)
			So(*f.Strength, ShouldEqual, model.TierExceptional)
			So(*f.MinScore, ShouldEqual, 2.75)
			So(key, ShouldEqual, ranking.SortRecent)

			Convey("Then encoding gives back an equivalent query", func() {
				out := url.Values{}
				ranking.Encode(out, f, key)
				f2, key2 := ranking.ParseQuery(out)
				So(f2.Status.Equal(*f.Status), ShouldBeTrue)
				So(*f2.Strength, ShouldEqual, *f.Strength)
				So(*f2.MinScore, ShouldEqual, *f.MinScore)
				So(key2, ShouldEqual, key)
			})
		})

		Convey("When parameters are 'all' or garbage", func() {
			q := url.Values{}
			q.Set("status", "all")
			q.Set("strength", "legendary")
			q.Set("min_score", "NaN")
			q.Set("sort", "random")
			f, key := ranking.ParseQuery(q)

			So(f.Active(), ShouldBeFalse)
			So(key, ShouldEqual, ranking.SortScore)
		})
	})
}
