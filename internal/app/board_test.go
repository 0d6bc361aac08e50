package service_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	service "github.com/okian/simboard/internal/app"
	"github.com/okian/simboard/internal/domain/compare"
	"github.com/okian/simboard/internal/domain/model"
	"github.com/okian/simboard/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func ids(recs []model.DerivedCandidate) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.AssessmentID
	}
	return out
}

func seeded(opts ...service.Option) *service.Service {
	svc := service.New(opts...)
	working := raw("w", "sim", 4)
	working.Status = model.Working
	batch := []model.RawCandidate{
		raw("a", "sim", 2),
		raw("b", "sim", 4, 3),
		working,
		raw("c", "sim", 3),
		raw("x", "other", 4),
	}
	batch[0].Name = model.Ptr("Zoe")
	batch[1].Name = model.Ptr("adam")
	batch[3].Name = model.Ptr("Bea")
	if _, err := svc.Load(context.Background(), batch); err != nil {
		panic(err)
	}
	return svc
}

func TestService_Candidates(t *testing.T) {
	Convey("Given a seeded simulation", t, func() {
		ctx := context.Background()
		svc := seeded()

		Convey("When no query is given", func() {
			b, err := svc.Candidates(ctx, "sim", url.Values{})

			Convey("Then candidates rank by score with unscored last", func() {
				So(err, ShouldBeNil)
				So(ids(b.View.Records), ShouldResemble, []string{"b", "c", "a", "w"})
				So(b.View.Shown, ShouldEqual, 4)
				So(b.View.Total, ShouldEqual, 4)
				So(b.Sort, ShouldEqual, ranking.SortScore)
				So(b.Selection.Active, ShouldBeFalse)
			})
		})

		Convey("When filtering by minimum score", func() {
			b, err := svc.Candidates(ctx, "sim", url.Values{"min_score": {"2.5"}})

			Convey("Then only scored candidates at or above it remain", func() {
				So(err, ShouldBeNil)
				So(ids(b.View.Records), ShouldResemble, []string{"b", "c"})
				So(b.View.Total, ShouldEqual, 4)
			})
		})

		Convey("When the query carries a selection", func() {
			q := url.Values{"sort": {"name"}, "compare": {"1"}, "selected": {"b,c"}}
			b, err := svc.Candidates(ctx, "sim", q)

			Convey("Then the selection is restored alongside the view", func() {
				So(err, ShouldBeNil)
				So(ids(b.View.Records), ShouldResemble, []string{"w", "b", "c", "a"})
				So(b.Selection.Selected, ShouldResemble, []string{"b", "c"})
				So(b.CanCompare, ShouldBeTrue)
				So(b.Query.Get("sort"), ShouldEqual, "name")
			})
		})

		Convey("When the simulation is unknown", func() {
			b, err := svc.Candidates(ctx, "nope", url.Values{})

			Convey("Then the view is empty", func() {
				So(err, ShouldBeNil)
				So(b.View.Empty(), ShouldBeTrue)
				So(b.View.Total, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a service defaulting to name order", t, func() {
		svc := seeded(service.WithDefaultSort(ranking.SortName))

		Convey("Then a query without sort uses it", func() {
			b, err := svc.Candidates(context.Background(), "sim", url.Values{})
			So(err, ShouldBeNil)
			So(b.Sort, ShouldEqual, ranking.SortName)
		})
	})
}

func TestService_Compare(t *testing.T) {
	Convey("Given a seeded simulation", t, func() {
		ctx := context.Background()
		svc := seeded()
		base := url.Values{"status": {"completed"}}

		Convey("When entering compare mode", func() {
			tr, err := svc.Compare(ctx, "sim", base, service.ActionEnter, "")

			Convey("Then the query turns compare on and keeps the filters", func() {
				So(err, ShouldBeNil)
				So(tr.Outcome, ShouldBeNil)
				So(tr.Selection.Active, ShouldBeTrue)
				So(tr.Query.Get("compare"), ShouldEqual, "1")
				So(tr.Query.Get("status"), ShouldEqual, "completed")
			})

			Convey("And toggling scored candidates adds them", func() {
				tr, err = svc.Compare(ctx, "sim", tr.Query, service.ActionToggle, "b")
				So(err, ShouldBeNil)
				So(*tr.Outcome, ShouldEqual, compare.Added)
				tr, err = svc.Compare(ctx, "sim", tr.Query, service.ActionToggle, "c")
				So(err, ShouldBeNil)
				So(tr.Query.Get("selected"), ShouldEqual, "b,c")
				So(tr.CanCompare, ShouldBeTrue)

				Convey("And unscored or foreign candidates are rejected", func() {
					w, err := svc.Compare(ctx, "sim", tr.Query, service.ActionToggle, "w")
					So(err, ShouldBeNil)
					So(*w.Outcome, ShouldEqual, compare.RejectedIneligible)
					x, _ := svc.Compare(ctx, "sim", tr.Query, service.ActionToggle, "x")
					So(*x.Outcome, ShouldEqual, compare.RejectedIneligible)
					So(x.Query.Get("selected"), ShouldEqual, "b,c")
				})

				Convey("And exiting clears the selection keys only", func() {
					ex, err := svc.Compare(ctx, "sim", tr.Query, service.ActionExit, "")
					So(err, ShouldBeNil)
					So(ex.Query.Has("compare"), ShouldBeFalse)
					So(ex.Query.Has("selected"), ShouldBeFalse)
					So(ex.Query.Get("status"), ShouldEqual, "completed")
				})
			})
		})

		Convey("When toggling outside compare mode", func() {
			tr, err := svc.Compare(ctx, "sim", base, service.ActionToggle, "b")

			Convey("Then it is rejected as inactive", func() {
				So(err, ShouldBeNil)
				So(*tr.Outcome, ShouldEqual, compare.RejectedInactive)
			})
		})

		Convey("When the action is unknown", func() {
			_, err := svc.Compare(ctx, "sim", base, service.Action("jump"), "")

			Convey("Then an error is returned", func() {
				So(errors.Is(err, service.ErrUnknownAction), ShouldBeTrue)
			})
		})
	})
}

func TestService_Commit(t *testing.T) {
	Convey("Given a seeded simulation", t, func() {
		ctx := context.Background()
		svc := seeded()

		Convey("When committing two selected candidates", func() {
			recs, err := svc.Commit(ctx, "sim", url.Values{"compare": {"1"}, "selected": {"c,b"}})

			Convey("Then they come back in selection order", func() {
				So(err, ShouldBeNil)
				So(ids(recs), ShouldResemble, []string{"c", "b"})
			})
		})

		Convey("When only one candidate is selected", func() {
			_, err := svc.Commit(ctx, "sim", url.Values{"compare": {"1"}, "selected": {"b"}})

			Convey("Then the selection cannot be compared", func() {
				So(errors.Is(err, compare.ErrCannotCompare), ShouldBeTrue)
			})
		})

		Convey("When a selected id does not exist", func() {
			_, err := svc.Commit(ctx, "sim", url.Values{"compare": {"1"}, "selected": {"b,ghost"}})

			Convey("Then the commit fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestService_Simulations(t *testing.T) {
	Convey("Given two seeded simulations", t, func() {
		sums, err := seeded().Simulations(context.Background())

		Convey("Then each is counted in first-seen order", func() {
			So(err, ShouldBeNil)
			So(sums, ShouldResemble, []service.SimulationSummary{
				{ID: "sim", Candidates: 4, Scored: 3},
				{ID: "other", Candidates: 1, Scored: 1},
			})
		})
	})

	Convey("Given an empty service", t, func() {
		sums, err := service.New().Simulations(context.Background())
		So(err, ShouldBeNil)
		So(sums, ShouldBeEmpty)
	})
}
