package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound          = errors.New("candidate not found")
	ErrUnknownSimulation = errors.New("simulation not found")
	ErrInvalidCandidate  = errors.New("candidate must have assessment and simulation ids")
)
