package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/okian/simboard/internal/domain/model"
	"github.com/okian/simboard/pkg/metrics"
)

// MemoryStore is an in-memory Store. Ranking depends on input order for
// stable tie-breaking, so each simulation keeps its ids in first-insertion
// order and an upsert of a known assessment keeps its position.
type MemoryStore struct {
	mu           sync.RWMutex
	byID         map[string]model.DerivedCandidate
	bySimulation map[string][]string
	simulations  []string
	capacityHint int
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{}
	for _, opt := range opts {
		opt(s)
	}
	s.byID = make(map[string]model.DerivedCandidate, s.capacityHint)
	s.bySimulation = make(map[string][]string)
	return s
}

// Upsert implements Store.Upsert.
func (s *MemoryStore) Upsert(_ context.Context, c model.DerivedCandidate) (bool, error) {
	if model.ValidateAssessmentID(c.AssessmentID) != nil || c.SimulationID == "" {
		metrics.RecordErrorByComponent("repository", "invalid_candidate")
		return false, ErrInvalidCandidate
	}

	s.mu.Lock()
	old, exists := s.byID[c.AssessmentID]
	if exists && old.SimulationID != c.SimulationID {
		s.detach(old.SimulationID, c.AssessmentID)
		exists = false
	}
	if !exists {
		if _, ok := s.bySimulation[c.SimulationID]; !ok {
			s.simulations = append(s.simulations, c.SimulationID)
		}
		s.bySimulation[c.SimulationID] = append(s.bySimulation[c.SimulationID], c.AssessmentID)
	}
	_, known := s.byID[c.AssessmentID]
	s.byID[c.AssessmentID] = c
	total, sims := len(s.byID), len(s.simulations)
	s.mu.Unlock()

	metrics.UpdateCandidatesTotal(total)
	metrics.UpdateSimulationsTotal(sims)
	return !known, nil
}

// detach removes id from a simulation, dropping the simulation when empty.
// Must be called with s.mu held.
func (s *MemoryStore) detach(simulationID, id string) {
	ids := s.bySimulation[simulationID]
	if i := slices.Index(ids, id); i >= 0 {
		ids = slices.Delete(ids, i, i+1)
	}
	if len(ids) > 0 {
		s.bySimulation[simulationID] = ids
		return
	}
	delete(s.bySimulation, simulationID)
	if i := slices.Index(s.simulations, simulationID); i >= 0 {
		s.simulations = slices.Delete(s.simulations, i, i+1)
	}
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, assessmentID string) (model.DerivedCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[assessmentID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.DerivedCandidate{}, fmt.Errorf("%w: %s", ErrNotFound, assessmentID)
	}
	return c, nil
}

// List implements Store.List.
func (s *MemoryStore) List(_ context.Context, simulationID string) ([]model.DerivedCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, ok := s.bySimulation[simulationID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "unknown_simulation")
		return nil, fmt.Errorf("%w: %s", ErrUnknownSimulation, simulationID)
	}
	out := make([]model.DerivedCandidate, len(ids))
	for i, id := range ids {
		out[i] = s.byID[id]
	}
	return out, nil
}

// Simulations implements Store.Simulations.
func (s *MemoryStore) Simulations(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.simulations)
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
