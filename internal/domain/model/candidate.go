// Package model contains domain models passed between layers.
package model

import "time"

// DimensionScore is a single competency axis and the score a candidate received on it.
type DimensionScore struct {
	Name  string
	Score float64
}

// Finding is an upstream per-dimension finding. Only the number of red flags matters here.
type Finding struct {
	Dimension string
	RedFlags  []string
}

// RawCandidate is one candidate's assessment against one simulation, as supplied
// by the data source.
type RawCandidate struct {
	AssessmentID string
	SimulationID string
	Name         *string
	Email        *string
	Status       Status
	Dimensions   []DimensionScore
	Summary      *string
	CompletedAt  *time.Time
	Percentile   *float64
	Findings     []Finding
	Confidence   Confidence
}

// DerivedCandidate is a RawCandidate plus the metrics derived from it.
// Values are immutable once produced for a given input.
type DerivedCandidate struct {
	RawCandidate

	OverallScore    *float64
	StrengthTier    *Tier
	TopDimension    *DimensionScore
	MidDimension    *DimensionScore
	BottomDimension *DimensionScore
	RedFlagCount    int
}

// IsScored reports whether a candidate can take part in score based features:
// the assessment is completed and an overall score was derived.
func IsScored(c DerivedCandidate) bool {
	return c.Status.Is(StatusCompleted) && c.OverallScore != nil
}

// DisplayName returns the name or "" when absent.
func (c RawCandidate) DisplayName() string {
	if c.Name == nil {
		return ""
	}
	return *c.Name
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
