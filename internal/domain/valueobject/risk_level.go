package valueobject

import (
	"fmt"
	"strings"
)

// RiskLevel is an immutable value object for the coarse risk classification
// reported by the scoring model. The zero value is unset; use
// RiskLevelFromModel to obtain a level that is never unset.
type RiskLevel struct {
	value string
}

var (
	RiskLevelLow      = RiskLevel{value: "LOW"}
	RiskLevelMedium   = RiskLevel{value: "MEDIUM"}
	RiskLevelHigh     = RiskLevel{value: "HIGH"}
	RiskLevelCritical = RiskLevel{value: "CRITICAL"}
)

// DefaultRiskLevel is substituted whenever the model's label is missing or unknown.
var DefaultRiskLevel = RiskLevelLow

// RiskLevelFromString parses a level case-insensitively, ignoring
// surrounding whitespace.
func RiskLevelFromString(s string) (RiskLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW":
		return RiskLevelLow, nil
	case "MEDIUM":
		return RiskLevelMedium, nil
	case "HIGH":
		return RiskLevelHigh, nil
	case "CRITICAL":
		return RiskLevelCritical, nil
	default:
		return RiskLevel{}, fmt.Errorf("invalid risk level: %q", s)
	}
}

// RiskLevelFromModel converts the model's optional label. It never fails:
// a nil or unrecognized label yields DefaultRiskLevel with recognized=false.
func RiskLevelFromModel(label *string) (level RiskLevel, recognized bool) {
	if label == nil {
		return DefaultRiskLevel, false
	}
	level, err := RiskLevelFromString(*label)
	if err != nil {
		return DefaultRiskLevel, false
	}
	return level, true
}

// String returns the canonical upper-case label.
func (r RiskLevel) String() string {
	return r.value
}

// IsZero returns true if the RiskLevel has not been set.
func (r RiskLevel) IsZero() bool {
	return r.value == ""
}

// Equal checks equality with another RiskLevel.
func (r RiskLevel) Equal(other RiskLevel) bool {
	return r.value == other.value
}

// IsElevated reports whether the level warrants a high-risk alert.
func (r RiskLevel) IsElevated() bool {
	return r.Equal(RiskLevelHigh) || r.Equal(RiskLevelCritical)
}
