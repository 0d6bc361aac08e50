package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/okian/simboard/internal/adapters/repository"
	"github.com/okian/simboard/internal/domain/compare"
	"github.com/okian/simboard/internal/domain/model"
	"github.com/okian/simboard/internal/domain/ranking"
	"github.com/okian/simboard/pkg/logger"
	"github.com/okian/simboard/pkg/metrics"
)

// Action is a compare-mode transition requested by the dashboard.
type Action string

// Compare-mode actions.
const (
	ActionEnter  Action = "enter"
	ActionExit   Action = "exit"
	ActionToggle Action = "toggle"
)

// ErrUnknownAction is returned for an action outside the known set.
var ErrUnknownAction = errors.New("unknown compare action")

// Board is the dashboard state of one simulation: the ranked view, the
// filters and sort it was built with, and the compare selection carried in
// the query.
type Board struct {
	SimulationID string
	View         ranking.View
	Filters      ranking.Filters
	Sort         ranking.SortKey
	Selection    compare.State
	CanCompare   bool
	Query        url.Values
}

// Transition is the result of a compare-mode action.
type Transition struct {
	Outcome    *compare.Outcome
	Selection  compare.State
	CanCompare bool
	Query      url.Values
}

// SimulationSummary counts the candidates of one simulation.
type SimulationSummary struct {
	ID         string `json:"id"`
	Candidates int    `json:"candidates"`
	Scored     int    `json:"scored"`
}

// Simulations summarizes every known simulation in first-seen order.
func (s *Service) Simulations(ctx context.Context) ([]SimulationSummary, error) {
	ids := s.store.Simulations(ctx)
	out := make([]SimulationSummary, 0, len(ids))
	for _, id := range ids {
		recs, err := s.records(ctx, id)
		if err != nil {
			return nil, err
		}
		sum := SimulationSummary{ID: id, Candidates: len(recs)}
		for i := range recs {
			if model.IsScored(recs[i]) {
				sum.Scored++
			}
		}
		out = append(out, sum)
	}
	return out, nil
}

// Candidate returns one derived candidate.
func (s *Service) Candidate(ctx context.Context, assessmentID string) (model.DerivedCandidate, error) {
	c, err := s.store.Get(ctx, assessmentID)
	if err != nil {
		return model.DerivedCandidate{}, fmt.Errorf("get candidate %q: %w", assessmentID, err)
	}
	return c, nil
}

// records lists a simulation's candidates. An unknown simulation has none.
func (s *Service) records(ctx context.Context, simulationID string) ([]model.DerivedCandidate, error) {
	recs, err := s.store.List(ctx, simulationID)
	if errors.Is(err, repository.ErrUnknownSimulation) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list simulation %q: %w", simulationID, err)
	}
	return recs, nil
}

// query reads filters and sort from q, applying the configured default sort
// when q names none.
func (s *Service) query(q url.Values) (ranking.Filters, ranking.SortKey) {
	f, key := ranking.ParseQuery(q)
	if q.Get(ranking.ParamSort) == "" {
		key = s.defaultSort
	}
	return f, key
}

// Candidates ranks a simulation's candidates for the filters, sort and
// selection persisted in q.
func (s *Service) Candidates(ctx context.Context, simulationID string, q url.Values) (Board, error) {
	recs, err := s.records(ctx, simulationID)
	if err != nil {
		return Board{}, err
	}
	filters, key := s.query(q)

	start := time.Now()
	view := ranking.Project(recs, filters, key)
	metrics.RecordRankingLatency(string(key), float64(time.Since(start).Microseconds())/1000)
	metrics.RecordRankingShown(view.Shown)

	sel := compare.New(q)
	return Board{
		SimulationID: simulationID,
		View:         view,
		Filters:      filters,
		Sort:         key,
		Selection:    sel.State(),
		CanCompare:   sel.CanCompare(),
		Query:        compare.Merge(q, sel.State()),
	}, nil
}

// Compare applies a compare-mode action to the selection persisted in q and
// returns the updated query. Only scored candidates of the simulation can be
// added.
func (s *Service) Compare(ctx context.Context, simulationID string, q url.Values, action Action, id string) (Transition, error) {
	var next url.Values
	persist := compare.WithPersist(func(v url.Values) { next = v })

	var sel *compare.Selector
	var outcome *compare.Outcome
	switch action {
	case ActionEnter:
		sel = compare.New(q, persist)
		sel.Enter()
	case ActionExit:
		sel = compare.New(q, persist)
		sel.Exit()
	case ActionToggle:
		recs, err := s.records(ctx, simulationID)
		if err != nil {
			return Transition{}, err
		}
		sel = compare.New(q, persist, compare.WithEligibility(compare.EligibleIn(recs)))
		o := sel.Toggle(id)
		outcome = &o
		metrics.RecordSelectionOutcome(o.String())
		s.logger.Debug(ctx, "compare toggle",
			logger.String("simulationID", simulationID),
			logger.String("assessmentID", id),
			logger.String("outcome", o.String()),
		)
	default:
		return Transition{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	// Drop the old selection keys, then lay the persisted ones over the rest
	// of the query.
	merged := compare.Merge(q, compare.State{})
	for k, v := range next {
		merged[k] = v
	}
	return Transition{Outcome: outcome, Selection: sel.State(), CanCompare: sel.CanCompare(), Query: merged}, nil
}

// Commit resolves the selection persisted in q into its candidates, in the
// order they were selected. Returns compare.ErrCannotCompare when the
// selection is not comparable.
func (s *Service) Commit(ctx context.Context, simulationID string, q url.Values) ([]model.DerivedCandidate, error) {
	recs, err := s.records(ctx, simulationID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.DerivedCandidate, len(recs))
	for _, r := range recs {
		byID[r.AssessmentID] = r
	}

	var out []model.DerivedCandidate
	nav := compare.NavigatorFunc(func(_ context.Context, ids []string) error {
		out = make([]model.DerivedCandidate, 0, len(ids))
		for _, id := range ids {
			c, ok := byID[id]
			if !ok {
				return fmt.Errorf("compare %q: %w", id, repository.ErrNotFound)
			}
			out = append(out, c)
		}
		return nil
	})

	if err := compare.New(q).Commit(ctx, nav); err != nil {
		return nil, err
	}
	metrics.RecordCompareCommit()
	return out, nil
}
