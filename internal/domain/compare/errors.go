package compare

import "errors"

// Sentinel kinds for comparison errors.
var (
	ErrCannotCompare = errors.New("selection must hold between 2 and 4 candidates")
	ErrNoNavigator   = errors.New("no navigator configured")
)
