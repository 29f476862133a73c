package consultation

import "strings"

// Severity is the self-reported frequency/intensity of a symptom.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Weight maps a severity onto 0..3; unknown values weigh 0.
func (s Severity) Weight() int {
	switch s {
	case SeverityMild:
		return 1
	case SeverityModerate:
		return 2
	case SeveritySevere:
		return 3
	default:
		return 0
	}
}

// Positive reports whether the answer confirms the symptom.
func (s Severity) Positive() bool { return s.Weight() > 0 }

func (s Severity) Valid() bool {
	switch s {
	case SeverityNone, SeverityMild, SeverityModerate, SeveritySevere:
		return true
	default:
		return false
	}
}

// NormalizeSeverity lowercases and trims raw without validating it; callers
// check Valid so the error can be reported alongside other input errors.
func NormalizeSeverity(raw string) Severity {
	return Severity(strings.ToLower(strings.TrimSpace(raw)))
}
