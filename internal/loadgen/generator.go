package loadgen

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/okian/simboard/internal/domain/model"
	"github.com/okian/simboard/internal/domain/types"
)

var (
	dimensionNames = []string{"Problem Solving", "Communication", "Ownership", "Delivery", "Collaboration", "Craft"}
	redFlags       = []string{"missed requirement", "talks over interviewer", "vague answers", "no tests"}
	firstNames     = []string{"Ada", "bo", "Cy", "Dana", "Émile", "fern", "Gus", "Hana", "Ito", "Jun"}
	confidences    = []string{"high", "medium", "low", ""}
)

// generator produces reproducible candidates for a seed.
type generator struct {
	rng  *rand.Rand
	base time.Time
}

func newGenerator(seed uint64) *generator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &generator{
		rng:  rand.New(rand.NewPCG(seed, seed>>1|1)),
		base: time.Now().UTC().Truncate(time.Second),
	}
}

// candidates generates n inputs spread round robin over sims simulations.
// Every input carries fresh submission and assessment ids.
func (g *generator) candidates(runID string, n, sims int) []types.CandidateInput {
	out := make([]types.CandidateInput, n)
	for i := range out {
		out[i] = g.candidate(fmt.Sprintf("%s-sim-%d", runID, i%sims))
	}
	return out
}

func (g *generator) candidate(simulationID string) types.CandidateInput {
	in := types.CandidateInput{
		SubmissionID: uuid.NewString(),
		AssessmentID: uuid.NewString(),
		SimulationID: simulationID,
		Status:       g.status(),
		Confidence:   confidences[g.rng.IntN(len(confidences))],
	}
	if g.rng.IntN(5) > 0 {
		in.Name = model.Ptr(firstNames[g.rng.IntN(len(firstNames))])
	}
	if in.Status == "completed" {
		at := g.base.Add(-time.Duration(g.rng.IntN(30*24)) * time.Hour)
		in.CompletedAt = &at
		in.Percentile = model.Ptr(float64(g.rng.IntN(101)))
	}

	// Welcome candidates have not produced scores yet.
	if in.Status != "welcome" {
		perm := g.rng.Perm(len(dimensionNames))
		for _, idx := range perm[:1+g.rng.IntN(len(dimensionNames))] {
			in.Dimensions = append(in.Dimensions, types.Dimension{
				Name:  dimensionNames[idx],
				Score: 1 + float64(g.rng.IntN(7))*0.5, // 1.0 to 4.0
			})
		}
	}
	for _, d := range in.Dimensions {
		if g.rng.IntN(4) == 0 {
			in.Findings = append(in.Findings, types.Finding{
				Dimension: d.Name,
				RedFlags:  redFlags[:1+g.rng.IntN(len(redFlags))],
			})
		}
	}
	return in
}

func (g *generator) status() string {
	switch n := g.rng.IntN(10); {
	case n < 7:
		return "completed"
	case n < 9:
		return "working"
	default:
		return "welcome"
	}
}
