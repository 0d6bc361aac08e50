package compare_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/okian/simboard/internal/domain/compare"
	"github.com/okian/simboard/internal/domain/evaluation"
	"github.com/okian/simboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func candidates() []model.DerivedCandidate {
	mk := func(id string, status model.Status, score float64) model.DerivedCandidate {
		raw := model.RawCandidate{AssessmentID: id, Status: status}
		if score > 0 {
			raw.Dimensions = []model.DimensionScore{{Name: "A", Score: score}}
		}
		return evaluation.Derive(raw)
	}
	return []model.DerivedCandidate{
		mk("c1", model.Completed, 4),
		mk("c2", model.Completed, 3),
		mk("c3", model.Completed, 2),
		mk("c4", model.Completed, 1),
		mk("c5", model.Completed, 3.5),
		mk("wip", model.Working, 3),
		mk("empty", model.Completed, 0),
	}
}

func newActive(persist func(url.Values)) *compare.Selector {
	s := compare.New(nil,
		compare.WithEligibility(compare.EligibleIn(candidates())),
		compare.WithPersist(persist),
	)
	s.Enter()
	return s
}

func TestSelector_Transitions(t *testing.T) {
	Convey("Given a selector restored from nothing", t, func() {
		s := compare.New(url.Values{})

		Convey("Then it is inactive and empty", func() {
			So(s.Active(), ShouldBeFalse)
			So(s.State().Selected, ShouldBeEmpty)
		})

		Convey("When toggling while inactive", func() {
			So(s.Toggle("c1"), ShouldEqual, compare.RejectedInactive)
			So(s.State().Selected, ShouldBeEmpty)
		})
	})

	Convey("Given compare mode is entered", t, func() {
		s := newActive(nil)

		Convey("When four eligible candidates are toggled on", func() {
			for _, id := range []string{"c1", "c2", "c3", "c4"} {
				So(s.Toggle(id), ShouldEqual, compare.Added)
			}

			Convey("Then a fifth eligible candidate is rejected", func() {
				So(s.Toggle("c5"), ShouldEqual, compare.RejectedFull)
				So(s.State().Selected, ShouldResemble, []string{"c1", "c2", "c3", "c4"})
			})

			Convey("Then removing one makes room for the fifth", func() {
				So(s.Toggle("c2"), ShouldEqual, compare.Removed)
				So(s.Toggle("c5"), ShouldEqual, compare.Added)
				So(s.State().Selected, ShouldResemble, []string{"c1", "c3", "c4", "c5"})
			})

			Convey("Then removal is allowed at capacity", func() {
				So(s.Toggle("c4"), ShouldEqual, compare.Removed)
				So(len(s.State().Selected), ShouldEqual, 3)
			})
		})

		Convey("When toggling ineligible candidates", func() {
			So(s.Toggle("wip"), ShouldEqual, compare.RejectedIneligible)
			So(s.Toggle("empty"), ShouldEqual, compare.RejectedIneligible)
			So(s.Toggle("ghost"), ShouldEqual, compare.RejectedIneligible)
			So(s.State().Selected, ShouldBeEmpty)
		})

		Convey("When exiting and re-entering", func() {
			s.Toggle("c1")
			s.Toggle("c2")
			s.Exit()
			So(s.Active(), ShouldBeFalse)
			So(s.State().Selected, ShouldBeEmpty)
			s.Enter()

			Convey("Then the selection starts fresh", func() {
				So(s.Active(), ShouldBeTrue)
				So(s.State().Selected, ShouldBeEmpty)
			})
		})

		Convey("When entering twice", func() {
			s.Toggle("c1")
			s.Enter()
			So(s.State().Selected, ShouldResemble, []string{"c1"})
		})
	})
}

func TestSelector_CanCompare(t *testing.T) {
	Convey("Given selections of growing size", t, func() {
		s := newActive(nil)
		want := map[int]bool{0: false, 1: false, 2: true, 3: true, 4: true}
		So(s.CanCompare(), ShouldEqual, want[0])
		for i, id := range []string{"c1", "c2", "c3", "c4"} {
			s.Toggle(id)
			So(s.CanCompare(), ShouldEqual, want[i+1])
		}
		s.Toggle("c5")
		So(len(s.State().Selected), ShouldEqual, 4)
	})
}

func TestSelector_Commit(t *testing.T) {
	Convey("Given an active selector", t, func() {
		s := newActive(nil)
		var got []string
		nav := compare.NavigatorFunc(func(_ context.Context, ids []string) error {
			got = ids
			return nil
		})

		Convey("When fewer than two are selected", func() {
			s.Toggle("c1")
			err := s.Commit(context.Background(), nav)
			So(errors.Is(err, compare.ErrCannotCompare), ShouldBeTrue)
			So(got, ShouldBeNil)
		})

		Convey("When enough are selected", func() {
			s.Toggle("c3")
			s.Toggle("c1")
			before := s.State()
			err := s.Commit(context.Background(), nav)

			Convey("Then ids are emitted in selection order and state is unchanged", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []string{"c3", "c1"})
				So(s.State().Equal(before), ShouldBeTrue)
				So(s.Active(), ShouldBeTrue)
			})
		})

		Convey("When no navigator is given", func() {
			s.Toggle("c1")
			s.Toggle("c2")
			So(errors.Is(s.Commit(context.Background(), nil), compare.ErrNoNavigator), ShouldBeTrue)
		})
	})
}

func TestSelector_Persistence(t *testing.T) {
	Convey("Given a selector with a persist callback", t, func() {
		var last url.Values
		writes := 0
		s := newActive(func(q url.Values) {
			last = q
			writes++
		})
		s.Toggle("c1")
		s.Toggle("c2")

		Convey("Then every transition is written", func() {
			So(writes, ShouldEqual, 3)
			So(last.Get("compare"), ShouldEqual, "1")
			So(last.Get("selected"), ShouldEqual, "c1,c2")
		})

		Convey("Then a new selector restores the same state", func() {
			restored := compare.New(last)
			So(restored.State().Equal(s.State()), ShouldBeTrue)
		})

		Convey("Then exiting writes an empty representation", func() {
			s.Exit()
			So(last, ShouldBeEmpty)
		})
	})
}

func TestSerializeDeserialize(t *testing.T) {
	Convey("Given reachable states", t, func() {
		states := []compare.State{
			{},
			{Active: true},
			{Active: true, Selected: []string{"a"}},
			{Active: true, Selected: []string{"b", "a", "c", "d"}},
		}

		Convey("Then they round-trip", func() {
			for _, st := range states {
				So(compare.Deserialize(compare.Serialize(st)).Equal(st), ShouldBeTrue)
			}
		})
	})

	Convey("Given garbage input", t, func() {
		inputs := []url.Values{
			nil,
			{"compare": {"maybe"}, "selected": {"a,b"}},
			{"selected": {"a,b"}},
			{"compare": {""}},
			{"compare": {"0"}, "selected": {"a"}},
		}

		Convey("Then the inactive empty state is returned", func() {
			for _, q := range inputs {
				st := compare.Deserialize(q)
				So(st.Active, ShouldBeFalse)
				So(st.Selected, ShouldBeEmpty)
			}
		})
	})

	Convey("Given a selected list with duplicates and unknown ids", t, func() {
		st := compare.Deserialize(url.Values{
			"compare":  {"true"},
			"selected": {"x, y,,x,unknown", "y,z,w"},
		})

		Convey("Then ids are deduplicated, kept as-is and capped", func() {
			So(st.Active, ShouldBeTrue)
			So(st.Selected, ShouldResemble, []string{"x", "y", "unknown", "z"})
		})
	})

	Convey("Given other query keys", t, func() {
		q := url.Values{"sort": {"name"}, "selected": {"old"}}
		out := compare.Merge(q, compare.State{Active: true, Selected: []string{"a", "b"}})

		Convey("Then they survive the merge", func() {
			So(out.Get("sort"), ShouldEqual, "name")
			So(out.Get("selected"), ShouldEqual, "a,b")
			So(out.Get("compare"), ShouldEqual, "1")
		})
	})
}

func TestSelector_InvalidIDs(t *testing.T) {
	Convey("Given a selector that finds every id eligible", t, func() {
		var last url.Values
		s := compare.New(nil,
			compare.WithEligibility(compare.EligibilityFunc(func(string) bool { return true })),
			compare.WithPersist(func(q url.Values) { last = q }),
		)
		s.Enter()

		Convey("When ids that break the encoding are toggled", func() {
			for _, id := range []string{"a,b", " a", "b ", ",", ""} {
				So(s.Toggle(id), ShouldEqual, compare.RejectedInvalid)
			}

			Convey("Then nothing is selected", func() {
				So(s.State().Selected, ShouldBeEmpty)
				So(compare.RejectedInvalid.Changed(), ShouldBeFalse)
				So(compare.RejectedInvalid.String(), ShouldEqual, "rejected_invalid")
			})
		})

		Convey("When valid ids fill the selection", func() {
			for _, id := range []string{"x,1", "a", "b", "c", "d", "e,f"} {
				s.Toggle(id)
			}

			Convey("Then the persisted state reloads unchanged", func() {
				So(s.State().Selected, ShouldResemble, []string{"a", "b", "c", "d"})
				So(compare.New(last).State().Equal(s.State()), ShouldBeTrue)
			})
		})
	})
}
