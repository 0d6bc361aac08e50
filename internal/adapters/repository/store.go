// Package repository holds derived candidate records grouped per simulation.
package repository

import (
	"context"

	"github.com/okian/simboard/internal/domain/model"
)

// Store provides read/write access to candidate records.
type Store interface {
	// Upsert stores c keyed by its assessment id. Returns true when the
	// assessment was not known before.
	Upsert(ctx context.Context, c model.DerivedCandidate) (bool, error)

	// Get returns one candidate. Returns ErrNotFound if unknown.
	Get(ctx context.Context, assessmentID string) (model.DerivedCandidate, error)

	// List returns every candidate of a simulation in first-insertion order.
	// Returns ErrUnknownSimulation if the simulation has no candidates.
	List(ctx context.Context, simulationID string) ([]model.DerivedCandidate, error)

	// Simulations returns the known simulation ids in first-seen order.
	Simulations(ctx context.Context) []string

	// Count returns the number of stored candidates.
	Count(ctx context.Context) int
}
