// Package fixture reads batches of raw candidate records from YAML files.
//
// A file looks like:
//
//	simulation: sim-backend
//	candidates:
//	  - assessment_id: a-1
//	    name: Ada
//	    status: completed
//	    completed_at: 2024-05-01T10:00:00Z
//	    dimensions:
//	      - {name: Communication, score: 3.5}
//	    findings:
//	      - {dimension: Communication, red_flags: [interrupts]}
//
// Records without a simulation_id inherit the file-level simulation. Records
// without an assessment_id get a random one.
package fixture

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/okian/simboard/internal/domain/model"
)

// Document is the top level of a fixture file.
type Document struct {
	Simulation string   `yaml:"simulation"`
	Candidates []Record `yaml:"candidates"`
}

// Record is one candidate as written in a fixture file.
type Record struct {
	AssessmentID string      `yaml:"assessment_id"`
	SimulationID string      `yaml:"simulation_id"`
	Name         *string     `yaml:"name"`
	Email        *string     `yaml:"email"`
	Status       string      `yaml:"status"`
	Dimensions   []Dimension `yaml:"dimensions"`
	Summary      *string     `yaml:"summary"`
	CompletedAt  *time.Time  `yaml:"completed_at"`
	Percentile   *float64    `yaml:"percentile"`
	Findings     []Finding   `yaml:"findings"`
	Confidence   string      `yaml:"confidence"`
}

// Dimension is a named score.
type Dimension struct {
	Name  string  `yaml:"name"`
	Score float64 `yaml:"score"`
}

// Finding lists the red flags raised on a dimension.
type Finding struct {
	Dimension string   `yaml:"dimension"`
	RedFlags  []string `yaml:"red_flags"`
}

// LoadFile reads and converts the fixture at path.
func LoadFile(path string) ([]model.RawCandidate, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFixture, err)
	}
	defer func() { _ = f.Close() }()

	out, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// Parse decodes one fixture document from r. Unknown keys are rejected.
func Parse(r io.Reader) ([]model.RawCandidate, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %w", ErrLoadFixture, err)
	}

	out := make([]model.RawCandidate, 0, len(doc.Candidates))
	for i, rec := range doc.Candidates {
		c, err := rec.toModel(doc.Simulation)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (r Record) toModel(simulation string) (model.RawCandidate, error) { //nolint:gocritic // hugeParam: decoded value
	c := model.RawCandidate{
		AssessmentID: r.AssessmentID,
		SimulationID: r.SimulationID,
		Name:         r.Name,
		Email:        r.Email,
		Status:       model.ParseStatus(r.Status),
		Summary:      r.Summary,
		CompletedAt:  r.CompletedAt,
		Percentile:   r.Percentile,
		Confidence:   model.ParseConfidence(r.Confidence),
	}
	if c.SimulationID == "" {
		c.SimulationID = simulation
	}
	if c.SimulationID == "" {
		return model.RawCandidate{}, fmt.Errorf("%w: no simulation", ErrInvalidRecord)
	}
	if c.AssessmentID == "" {
		c.AssessmentID = uuid.NewString()
	}
	if err := model.ValidateAssessmentID(c.AssessmentID); err != nil {
		return model.RawCandidate{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	for _, d := range r.Dimensions {
		if math.IsNaN(d.Score) || math.IsInf(d.Score, 0) {
			return model.RawCandidate{}, fmt.Errorf("%w: dimension %q score is not finite", ErrInvalidRecord, d.Name)
		}
		c.Dimensions = append(c.Dimensions, model.DimensionScore{Name: d.Name, Score: d.Score})
	}
	for _, f := range r.Findings {
		c.Findings = append(c.Findings, model.Finding{Dimension: f.Dimension, RedFlags: f.RedFlags})
	}
	return c, nil
}
