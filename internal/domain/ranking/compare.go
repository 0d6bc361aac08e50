package ranking

import (
	"strings"
	"time"

	"github.com/okian/simboard/internal/domain/model"
	"golang.org/x/text/cases"
)

// rule is one tie-break step. Each rule is a total order on its own and
// returns <0 when a ranks before b.
type rule func(a, b *model.DerivedCandidate) int

// chain combines rules left to right, stopping at the first non-zero result.
func chain(rules ...rule) rule {
	return func(a, b *model.DerivedCandidate) int {
		for _, r := range rules {
			if c := r(a, b); c != 0 {
				return c
			}
		}
		return 0
	}
}

func comparator(key SortKey) rule {
	switch key {
	case SortRecent:
		return recentFirst
	case SortName:
		return nameAsc()
	default:
		return chain(unscoredLast, scoreDesc, recentFirst)
	}
}

// unscoredLast puts records without an overall score after all scored ones.
func unscoredLast(a, b *model.DerivedCandidate) int {
	switch {
	case a.OverallScore != nil && b.OverallScore == nil:
		return -1
	case a.OverallScore == nil && b.OverallScore != nil:
		return 1
	default:
		return 0
	}
}

// scoreDesc orders scored records by overall score, highest first. Unscored
// pairs compare equal.
func scoreDesc(a, b *model.DerivedCandidate) int {
	if a.OverallScore == nil || b.OverallScore == nil {
		return 0
	}
	return compareDesc(*a.OverallScore, *b.OverallScore)
}

// recentFirst orders by completion time, most recent first. A missing
// timestamp is the earliest possible time.
func recentFirst(a, b *model.DerivedCandidate) int {
	return -completedAt(a).Compare(completedAt(b))
}

func completedAt(c *model.DerivedCandidate) time.Time {
	if c.CompletedAt == nil {
		return time.Time{}
	}
	return *c.CompletedAt
}

// nameAsc orders by case-folded display name. A missing name is "" and sorts first.
func nameAsc() rule {
	fold := cases.Fold()
	return func(a, b *model.DerivedCandidate) int {
		return strings.Compare(fold.String(a.DisplayName()), fold.String(b.DisplayName()))
	}
}

func compareDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
