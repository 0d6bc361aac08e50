package model

import "strings"

// StatusKind enumerates the lifecycle states of an assessment.
type StatusKind int

// Known lifecycle states. StatusUnknown keeps the original text in Status.Raw.
const (
	StatusUnknown StatusKind = iota
	StatusWelcome
	StatusWorking
	StatusCompleted
)

// Status is a closed variant over the known lifecycle states.
type Status struct {
	kind StatusKind
	raw  string
}

// Canonical wire names.
const (
	welcomeName   = "WELCOME"
	workingName   = "WORKING"
	completedName = "COMPLETED"
)

// Welcome, Working and Completed are the known statuses.
var (
	Welcome   = Status{kind: StatusWelcome, raw: welcomeName}
	Working   = Status{kind: StatusWorking, raw: workingName}
	Completed = Status{kind: StatusCompleted, raw: completedName}
)

// ParseStatus maps s onto a known status, case-insensitively. Anything else is
// StatusUnknown with s preserved.
func ParseStatus(s string) Status {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case welcomeName:
		return Welcome
	case workingName:
		return Working
	case completedName:
		return Completed
	default:
		return Status{kind: StatusUnknown, raw: s}
	}
}

// Kind returns the variant tag.
func (s Status) Kind() StatusKind { return s.kind }

// Is reports whether s has the given kind.
func (s Status) Is(k StatusKind) bool { return s.kind == k }

// Raw returns the original text the status was parsed from.
func (s Status) Raw() string { return s.raw }

// String returns the canonical name for known statuses and the raw text otherwise.
func (s Status) String() string { return s.raw }

// Equal reports whether two statuses match exactly. Unknown statuses match on
// their original text.
func (s Status) Equal(o Status) bool {
	if s.kind != o.kind {
		return false
	}
	if s.kind == StatusUnknown {
		return s.raw == o.raw
	}
	return true
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.raw), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	*s = ParseStatus(string(b))
	return nil
}
