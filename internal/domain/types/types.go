// Package types contains the wire shapes shared by the HTTP API and the CLI.
package types

import (
	"time"

	"github.com/okian/simboard/internal/domain/model"
)

// Dimension is a named score.
type Dimension struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Finding lists the red flags raised on one dimension.
type Finding struct {
	Dimension string   `json:"dimension"`
	RedFlags  []string `json:"red_flags"`
}

// Candidate is a derived candidate as rendered to clients.
type Candidate struct {
	AssessmentID    string      `json:"assessment_id"`
	SimulationID    string      `json:"simulation_id"`
	Name            *string     `json:"name,omitempty"`
	Email           *string     `json:"email,omitempty"`
	Status          string      `json:"status"`
	Dimensions      []Dimension `json:"dimensions"`
	Summary         *string     `json:"summary,omitempty"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
	Percentile      *float64    `json:"percentile,omitempty"`
	Confidence      string      `json:"confidence"`
	OverallScore    *float64    `json:"overall_score"`
	StrengthTier    *string     `json:"strength_tier"`
	TopDimension    *Dimension  `json:"top_dimension,omitempty"`
	MidDimension    *Dimension  `json:"mid_dimension,omitempty"`
	BottomDimension *Dimension  `json:"bottom_dimension,omitempty"`
	RedFlagCount    int         `json:"red_flag_count"`
	Scored          bool        `json:"scored"`
}

// CandidateInput is the body of an ingest request.
type CandidateInput struct {
	SubmissionID string      `json:"submission_id"`
	AssessmentID string      `json:"assessment_id"`
	SimulationID string      `json:"simulation_id"`
	Name         *string     `json:"name"`
	Email        *string     `json:"email"`
	Status       string      `json:"status"`
	Dimensions   []Dimension `json:"dimensions"`
	Summary      *string     `json:"summary"`
	CompletedAt  *time.Time  `json:"completed_at"`
	Percentile   *float64    `json:"percentile"`
	Findings     []Finding   `json:"findings"`
	Confidence   string      `json:"confidence"`
}

// FromDerived renders c.
func FromDerived(c model.DerivedCandidate) Candidate { //nolint:gocritic // hugeParam: records are values
	out := Candidate{
		AssessmentID:    c.AssessmentID,
		SimulationID:    c.SimulationID,
		Name:            c.Name,
		Email:           c.Email,
		Status:          c.Status.String(),
		Dimensions:      make([]Dimension, len(c.Dimensions)),
		Summary:         c.Summary,
		CompletedAt:     c.CompletedAt,
		Percentile:      c.Percentile,
		Confidence:      c.Confidence.String(),
		OverallScore:    c.OverallScore,
		TopDimension:    dimension(c.TopDimension),
		MidDimension:    dimension(c.MidDimension),
		BottomDimension: dimension(c.BottomDimension),
		RedFlagCount:    c.RedFlagCount,
		Scored:          model.IsScored(c),
	}
	for i, d := range c.Dimensions {
		out.Dimensions[i] = Dimension{Name: d.Name, Score: d.Score}
	}
	if c.StrengthTier != nil {
		s := c.StrengthTier.String()
		out.StrengthTier = &s
	}
	return out
}

// FromDerivedAll renders every record in order.
func FromDerivedAll(cs []model.DerivedCandidate) []Candidate {
	out := make([]Candidate, len(cs))
	for i := range cs {
		out[i] = FromDerived(cs[i])
	}
	return out
}

func dimension(d *model.DimensionScore) *Dimension {
	if d == nil {
		return nil
	}
	return &Dimension{Name: d.Name, Score: d.Score}
}

// ToRaw converts an ingest request to the domain record.
func (in CandidateInput) ToRaw() model.RawCandidate { //nolint:gocritic // hugeParam: decoded value
	raw := model.RawCandidate{
		AssessmentID: in.AssessmentID,
		SimulationID: in.SimulationID,
		Name:         in.Name,
		Email:        in.Email,
		Status:       model.ParseStatus(in.Status),
		Summary:      in.Summary,
		CompletedAt:  in.CompletedAt,
		Percentile:   in.Percentile,
		Confidence:   model.ParseConfidence(in.Confidence),
	}
	for _, d := range in.Dimensions {
		raw.Dimensions = append(raw.Dimensions, model.DimensionScore{Name: d.Name, Score: d.Score})
	}
	for _, f := range in.Findings {
		raw.Findings = append(raw.Findings, model.Finding{Dimension: f.Dimension, RedFlags: f.RedFlags})
	}
	return raw
}
