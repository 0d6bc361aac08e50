// Package evaluation derives summary metrics from a candidate's raw
// per-dimension scores: overall score, strength tier, highlight dimensions,
// red-flag count and a display summary.
package evaluation

import (
	"slices"

	"github.com/okian/simboard/internal/domain/model"
)

// Default derivation constants.
const (
	DefaultSummaryLimit = 120
	DefaultEllipsis     = "..."
)

// Tier thresholds on the 1-4 point scale. Lower bounds are inclusive.
const (
	exceptionalMin = 3.5
	strongMin      = 2.5
	proficientMin  = 1.5
)

// Deriver turns raw candidates into derived candidates. It holds no state
// besides its configuration and is safe for concurrent use.
type Deriver struct {
	summaryLimit int
	ellipsis     string
}

// NewDeriver creates a Deriver with configuration options.
func NewDeriver(opts ...Option) *Deriver {
	d := &Deriver{
		summaryLimit: DefaultSummaryLimit,
		ellipsis:     DefaultEllipsis,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var defaultDeriver = NewDeriver()

// Derive derives raw with the default configuration.
func Derive(raw model.RawCandidate) model.DerivedCandidate {
	return defaultDeriver.Derive(raw)
}

// Derive computes the derived record for raw. It never fails: a candidate
// that is not completed or has no dimension scores is simply not scored.
func (d *Deriver) Derive(raw model.RawCandidate) model.DerivedCandidate {
	out := model.DerivedCandidate{
		RawCandidate: raw,
		RedFlagCount: CountRedFlags(raw.Findings),
	}
	out.Summary = d.truncate(raw.Summary)

	// The caller's slices must not be shared with the derived record.
	out.Dimensions = slices.Clone(raw.Dimensions)
	out.Findings = slices.Clone(raw.Findings)

	if !raw.Status.Is(model.StatusCompleted) || len(raw.Dimensions) == 0 {
		return out
	}

	score := Mean(raw.Dimensions)
	tier := TierFor(score)
	out.OverallScore = &score
	out.StrengthTier = &tier
	out.TopDimension, out.MidDimension, out.BottomDimension = Highlights(raw.Dimensions)
	return out
}

// DeriveAll derives every record in order.
func (d *Deriver) DeriveAll(raws []model.RawCandidate) []model.DerivedCandidate {
	out := make([]model.DerivedCandidate, len(raws))
	for i, r := range raws {
		out[i] = d.Derive(r)
	}
	return out
}

// Mean returns the unweighted arithmetic mean of the scores. Callers must not
// pass an empty slice.
func Mean(dims []model.DimensionScore) float64 {
	var sum float64
	for _, dim := range dims {
		sum += dim.Score
	}
	return sum / float64(len(dims))
}

// TierFor bands an overall score. The highest matching threshold wins.
func TierFor(score float64) model.Tier {
	switch {
	case score >= exceptionalMin:
		return model.TierExceptional
	case score >= strongMin:
		return model.TierStrong
	case score >= proficientMin:
		return model.TierProficient
	default:
		return model.TierDeveloping
	}
}

// Highlights picks the top, middle and bottom dimensions from a stable
// descending sort of dims. mid is only set for more than two dimensions and
// sits at index len/2. With a single dimension top and bottom are the same
// element.
func Highlights(dims []model.DimensionScore) (top, mid, bottom *model.DimensionScore) {
	if len(dims) == 0 {
		return nil, nil, nil
	}
	sorted := slices.Clone(dims)
	slices.SortStableFunc(sorted, func(a, b model.DimensionScore) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	first, last := sorted[0], sorted[len(sorted)-1]
	top, bottom = &first, &last
	if len(sorted) > 2 {
		m := sorted[len(sorted)/2]
		mid = &m
	}
	return top, mid, bottom
}

// CountRedFlags sums the red flags across all findings.
func CountRedFlags(findings []model.Finding) int {
	n := 0
	for _, f := range findings {
		n += len(f.RedFlags)
	}
	return n
}

// Truncate shortens s with the default limit and marker.
func Truncate(s *string) *string {
	return defaultDeriver.truncate(s)
}

func (d *Deriver) truncate(s *string) *string {
	if s == nil {
		return nil
	}
	r := []rune(*s)
	if len(r) <= d.summaryLimit {
		v := *s
		return &v
	}
	v := string(r[:d.summaryLimit]) + d.ellipsis
	return &v
}
