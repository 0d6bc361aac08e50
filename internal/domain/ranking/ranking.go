// Package ranking filters and orders derived candidates into the view shown on
// the dashboard. Every function here is pure: inputs are never mutated and
// the output depends only on the arguments.
package ranking

import (
	"slices"

	"github.com/okian/simboard/internal/domain/model"
)

// SortKey selects the ordering of a ranked view.
type SortKey string

// Supported sort keys. SortScore is the default.
const (
	SortScore  SortKey = "score"
	SortRecent SortKey = "recent"
	SortName   SortKey = "name"
)

// ParseSortKey returns the matching key, or SortScore for anything unknown.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortRecent:
		return SortRecent
	case SortName:
		return SortName
	default:
		return SortScore
	}
}

// Filters narrows a candidate list. A nil field means "all". Set fields are
// combined with AND.
type Filters struct {
	Status   *model.Status
	Strength *model.Tier
	// MinScore keeps only scored candidates with OverallScore >= MinScore.
	MinScore *float64
}

// Active reports whether any filter is set.
func (f Filters) Active() bool {
	return f.Status != nil || f.Strength != nil || f.MinScore != nil
}

// Match reports whether c passes every set filter.
func (f Filters) Match(c *model.DerivedCandidate) bool {
	if f.Status != nil && !c.Status.Equal(*f.Status) {
		return false
	}
	if f.Strength != nil && (c.StrengthTier == nil || *c.StrengthTier != *f.Strength) {
		return false
	}
	if f.MinScore != nil && (c.OverallScore == nil || *c.OverallScore < *f.MinScore) {
		return false
	}
	return true
}

// Rank filters records and orders the survivors by sortBy. The sort is stable:
// fully tied records keep their input order. Empty input gives empty output.
func Rank(records []model.DerivedCandidate, filters Filters, sortBy SortKey) []model.DerivedCandidate {
	out := make([]model.DerivedCandidate, 0, len(records))
	for i := range records {
		if filters.Match(&records[i]) {
			out = append(out, records[i])
		}
	}
	cmp := comparator(sortBy)
	slices.SortStableFunc(out, func(a, b model.DerivedCandidate) int {
		return cmp(&a, &b)
	})
	return out
}

// View is a ranked projection plus the (shown, total) count pair.
type View struct {
	Records []model.DerivedCandidate
	Shown   int
	Total   int
}

// Empty reports whether nothing matched.
func (v View) Empty() bool { return v.Shown == 0 }

// Project ranks records and wraps the result with its counts.
func Project(records []model.DerivedCandidate, filters Filters, sortBy SortKey) View {
	ranked := Rank(records, filters, sortBy)
	return View{Records: ranked, Shown: len(ranked), Total: len(records)}
}
