package engine

import (
	"math"

	"github.com/yungbote/mindcheck-backend/internal/domain/knowledge"
)

// DefaultFiringThreshold makes a rule fire only when every required symptom
// is present.
const DefaultFiringThreshold = 100

type MatchResult struct {
	RuleCode        string   `json:"rule_code"`
	Confidence      int      `json:"confidence"`
	Matches         bool     `json:"matches"`
	MatchedSymptoms []string `json:"matched_symptoms"`
	MissingSymptoms []string `json:"missing_symptoms"`
}

// Matcher scores one rule against a set of reported symptoms. Confidence is
// plain coverage; severity does not weight it.
type Matcher struct {
	FiringThreshold int
}

func NewMatcher(firingThreshold int) Matcher {
	return Matcher{FiringThreshold: normalizeThreshold(firingThreshold, DefaultFiringThreshold)}
}

func (m Matcher) Threshold() int {
	return normalizeThreshold(m.FiringThreshold, DefaultFiringThreshold)
}

func (m Matcher) Match(reported SymptomSet, rule *knowledge.DiagnosisRule) MatchResult {
	res := MatchResult{MatchedSymptoms: []string{}, MissingSymptoms: []string{}}
	if rule == nil {
		return res
	}
	res.RuleCode = rule.RuleCode
	for _, code := range rule.SymptomCodes {
		if reported.Has(code) {
			res.MatchedSymptoms = append(res.MatchedSymptoms, code)
		} else {
			res.MissingSymptoms = append(res.MissingSymptoms, code)
		}
	}
	res.Confidence = Confidence(len(res.MatchedSymptoms), len(rule.SymptomCodes))
	res.Matches = len(rule.SymptomCodes) > 0 && res.Confidence >= m.Threshold()
	return res
}

// Confidence is round(100 * matched / total), 0 for an empty rule.
func Confidence(matched, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(matched) / float64(total)))
}

func normalizeThreshold(v, def int) int {
	if v <= 0 || v > 100 {
		return def
	}
	return v
}

func clampPercent(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
