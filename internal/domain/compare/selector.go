// Package compare implements the bounded multi-select used to pick 2 to 4
// candidates for side-by-side comparison. The selection is a small state
// machine whose state is mirrored into query values after every transition,
// so any host (URL, session, file) can persist it.
package compare

import (
	"context"
	"net/url"
	"slices"

	"github.com/okian/simboard/internal/domain/model"
)

// Outcome describes what a Toggle did. Rejections are advisory, not faults.
type Outcome int

// Toggle outcomes.
const (
	Added Outcome = iota
	Removed
	RejectedInactive
	RejectedIneligible
	RejectedFull
	RejectedInvalid
)

func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case RejectedInactive:
		return "rejected_inactive"
	case RejectedIneligible:
		return "rejected_ineligible"
	case RejectedFull:
		return "rejected_full"
	case RejectedInvalid:
		return "rejected_invalid"
	default:
		return "unknown"
	}
}

// Changed reports whether the selection was modified.
func (o Outcome) Changed() bool { return o == Added || o == Removed }

// Eligibility decides whether an id may be added to the selection.
type Eligibility interface {
	Eligible(id string) bool
}

// EligibilityFunc adapts a function to Eligibility.
type EligibilityFunc func(id string) bool

// Eligible implements Eligibility.
func (f EligibilityFunc) Eligible(id string) bool { return f(id) }

// EligibleIn returns an Eligibility that accepts scored candidates from records.
func EligibleIn(records []model.DerivedCandidate) Eligibility {
	ok := make(map[string]struct{}, len(records))
	for _, r := range records {
		if model.IsScored(r) {
			ok[r.AssessmentID] = struct{}{}
		}
	}
	return EligibilityFunc(func(id string) bool {
		_, found := ok[id]
		return found
	})
}

// Navigator receives the committed selection.
type Navigator interface {
	Navigate(ctx context.Context, ids []string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, ids []string) error

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(ctx context.Context, ids []string) error { return f(ctx, ids) }

// Selector owns one session's selection. It assumes a single writer.
// The selection starts empty only on the Inactive to Active transition;
// entering while already active keeps the current selection.
type Selector struct {
	state    State
	eligible Eligibility
	persist  func(State)
}

// New restores a selector from persisted query values.
func New(persisted url.Values, opts ...Option) *Selector {
	s := &Selector{
		state:    Deserialize(persisted),
		eligible: EligibilityFunc(func(string) bool { return false }),
		persist:  func(State) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a copy of the current state.
func (s *Selector) State() State {
	return State{Active: s.state.Active, Selected: slices.Clone(s.state.Selected)}
}

// Active reports whether compare mode is on.
func (s *Selector) Active() bool { return s.state.Active }

// Enter turns compare mode on with an empty selection. It is a no-op when
// already active.
func (s *Selector) Enter() {
	if !s.state.Active {
		s.state = State{Active: true, Selected: []string{}}
	}
	s.save()
}

// Exit turns compare mode off and discards the selection.
func (s *Selector) Exit() {
	s.state = State{}
	s.save()
}

// Toggle removes id when selected, otherwise adds it if it is eligible and
// there is room. Removal is always allowed. Ids that would not survive
// Serialize are rejected before anything else is checked.
func (s *Selector) Toggle(id string) Outcome {
	defer s.save()

	if !s.state.Active {
		return RejectedInactive
	}
	if model.ValidateAssessmentID(id) != nil {
		return RejectedInvalid
	}
	if i := slices.Index(s.state.Selected, id); i >= 0 {
		s.state.Selected = slices.Delete(s.state.Selected, i, i+1)
		return Removed
	}
	if !s.eligible.Eligible(id) {
		return RejectedIneligible
	}
	if len(s.state.Selected) >= MaxSelected {
		return RejectedFull
	}
	s.state.Selected = append(s.state.Selected, id)
	return Added
}

// CanCompare reports whether the selection size is within [MinCompare, MaxSelected].
func (s *Selector) CanCompare() bool {
	n := len(s.state.Selected)
	return s.state.Active && n >= MinCompare && n <= MaxSelected
}

// Commit hands the selected ids, in selection order, to nav. It does not
// change the state.
func (s *Selector) Commit(ctx context.Context, nav Navigator) error {
	if !s.CanCompare() {
		return ErrCannotCompare
	}
	if nav == nil {
		return ErrNoNavigator
	}
	return nav.Navigate(ctx, slices.Clone(s.state.Selected))
}

func (s *Selector) save() {
	s.persist(s.State())
}
