package model

import (
	"fmt"
	"strings"
)

// Tier is the four-level banding of an overall score.
type Tier int

// Strength tiers, strongest first.
const (
	TierExceptional Tier = iota + 1
	TierStrong
	TierProficient
	TierDeveloping
)

var tierNames = map[Tier]string{
	TierExceptional: "Exceptional",
	TierStrong:      "Strong",
	TierProficient:  "Proficient",
	TierDeveloping:  "Developing",
}

func (t Tier) String() string {
	if n, ok := tierNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// ParseTier parses a tier name case-insensitively.
func ParseTier(s string) (Tier, bool) {
	s = strings.TrimSpace(s)
	for t, n := range tierNames {
		if strings.EqualFold(n, s) {
			return t, true
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Confidence is the upstream confidence label. Anything that is not "high" or
// "medium" is Low, including a missing label.
type Confidence int

// Confidence levels.
const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

// ParseConfidence collapses free text onto the three confidence levels.
func ParseConfidence(s string) Confidence {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return ConfidenceHigh
	case "medium":
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	default:
		return "low"
	}
}
