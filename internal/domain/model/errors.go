package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidAssessmentID is returned for ids that cannot survive a round trip
// through the comma joined selection encoding.
var ErrInvalidAssessmentID = errors.New("invalid assessment id")

// ValidateAssessmentID rejects empty ids, ids containing a comma and ids with
// leading or trailing whitespace.
func ValidateAssessmentID(id string) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: empty", ErrInvalidAssessmentID)
	case strings.Contains(id, ","):
		return fmt.Errorf("%w: %q contains a comma", ErrInvalidAssessmentID, id)
	case strings.TrimSpace(id) != id:
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidAssessmentID, id)
	}
	return nil
}
