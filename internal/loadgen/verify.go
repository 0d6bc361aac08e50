package loadgen

import (
	"fmt"
	"math"

	"github.com/okian/simboard/internal/domain/evaluation"
	"github.com/okian/simboard/internal/domain/model"
	"github.com/okian/simboard/internal/domain/types"
)

// scoreTolerance absorbs float formatting through JSON.
const scoreTolerance = 1e-9

// expectations derives every input locally, grouped by simulation.
func expectations(inputs []types.CandidateInput) map[string]map[string]model.DerivedCandidate {
	out := make(map[string]map[string]model.DerivedCandidate)
	for _, in := range inputs {
		d := evaluation.Derive(in.ToRaw())
		if out[d.SimulationID] == nil {
			out[d.SimulationID] = make(map[string]model.DerivedCandidate)
		}
		out[d.SimulationID][d.AssessmentID] = d
	}
	return out
}

// verifyBoard checks a default-sorted board against the expected records.
// It returns one message per problem found.
func verifyBoard(b board, want map[string]model.DerivedCandidate) []string {
	var problems []string
	if b.Total != len(want) || b.Shown != len(want) {
		problems = append(problems, fmt.Sprintf("counts shown=%d total=%d, want %d", b.Shown, b.Total, len(want)))
	}

	var prev *types.Candidate
	for i := range b.Candidates {
		got := &b.Candidates[i]
		exp, ok := want[got.AssessmentID]
		if !ok {
			problems = append(problems, fmt.Sprintf("unexpected candidate %s", got.AssessmentID))
			continue
		}
		problems = append(problems, compareDerived(got, &exp)...)
		if prev != nil {
			if msg := orderProblem(prev, got); msg != "" {
				problems = append(problems, fmt.Sprintf("position %d: %s", i, msg))
			}
		}
		prev = got
	}
	return problems
}

func compareDerived(got *types.Candidate, exp *model.DerivedCandidate) []string {
	var problems []string
	switch {
	case (got.OverallScore == nil) != (exp.OverallScore == nil):
		problems = append(problems, fmt.Sprintf("%s: scored=%v, want %v", got.AssessmentID, got.OverallScore != nil, exp.OverallScore != nil))
	case got.OverallScore != nil && math.Abs(*got.OverallScore-*exp.OverallScore) > scoreTolerance:
		problems = append(problems, fmt.Sprintf("%s: score %.4f, want %.4f", got.AssessmentID, *got.OverallScore, *exp.OverallScore))
	}
	if exp.StrengthTier != nil && (got.StrengthTier == nil || *got.StrengthTier != exp.StrengthTier.String()) {
		problems = append(problems, fmt.Sprintf("%s: tier %v, want %s", got.AssessmentID, got.StrengthTier, exp.StrengthTier))
	}
	if got.RedFlagCount != exp.RedFlagCount {
		problems = append(problems, fmt.Sprintf("%s: red flags %d, want %d", got.AssessmentID, got.RedFlagCount, exp.RedFlagCount))
	}
	return problems
}

// orderProblem reports a violation of the score ordering between neighbours.
func orderProblem(prev, cur *types.Candidate) string {
	switch {
	case prev.OverallScore == nil && cur.OverallScore != nil:
		return "scored candidate after unscored one"
	case prev.OverallScore == nil || cur.OverallScore == nil:
		return ""
	case *cur.OverallScore > *prev.OverallScore:
		return fmt.Sprintf("score %.4f after %.4f", *cur.OverallScore, *prev.OverallScore)
	case *cur.OverallScore == *prev.OverallScore && completedAfter(cur, prev):
		return "equal scores not ordered by completion time"
	}
	return ""
}

func completedAfter(a, b *types.Candidate) bool {
	switch {
	case a.CompletedAt == nil:
		return false
	case b.CompletedAt == nil:
		return true
	default:
		return a.CompletedAt.After(*b.CompletedAt)
	}
}
