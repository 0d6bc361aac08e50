package fixture

import "errors"

// Sentinel kinds for fixture errors.
var (
	ErrLoadFixture   = errors.New("load fixture failed")
	ErrInvalidRecord = errors.New("invalid fixture record")
)
