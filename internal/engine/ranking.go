package engine

import (
	"sort"

	"github.com/yungbote/mindcheck-backend/internal/domain/knowledge"
)

// RuleMatch is a MatchResult bound to its rule. Refuted is set when one of
// the rule's symptoms was explicitly answered negatively, so the rule can no
// longer reach full coverage.
type RuleMatch struct {
	MatchResult
	Rule    *knowledge.DiagnosisRule
	Refuted bool
}

// Standing is a disorder's running score: the best of its rules (rules are
// alternatives, symptoms within a rule are all required).
type Standing struct {
	Disorder *knowledge.MentalDisorder
	Best     RuleMatch
	Rules    []RuleMatch
}

// Rank scores every disorder that owns rules, best first. asked may be nil.
func (kb *KnowledgeBase) Rank(m Matcher, confirmed, asked SymptomSet) []Standing {
	out := make([]Standing, 0, len(kb.rulesByDisorder))
	for _, d := range kb.disorders {
		rules := kb.rulesByDisorder[d.ID]
		if len(rules) == 0 {
			continue
		}
		st := Standing{Disorder: d, Rules: make([]RuleMatch, 0, len(rules))}
		for _, r := range rules {
			rm := RuleMatch{MatchResult: m.Match(confirmed, r), Rule: r}
			for _, code := range rm.MissingSymptoms {
				if asked.Has(code) {
					rm.Refuted = true
					break
				}
			}
			st.Rules = append(st.Rules, rm)
		}
		sort.SliceStable(st.Rules, func(i, j int) bool { return betterMatch(st.Rules[i].MatchResult, st.Rules[j].MatchResult) })
		st.Best = st.Rules[0]
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool { return betterMatch(out[i].Best.MatchResult, out[j].Best.MatchResult) })
	return out
}

// betterMatch orders by confidence, then fewer missing symptoms, then
// lexicographic rule code.
func betterMatch(a, b MatchResult) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if len(a.MissingSymptoms) != len(b.MissingSymptoms) {
		return len(a.MissingSymptoms) < len(b.MissingSymptoms)
	}
	return a.RuleCode < b.RuleCode
}

// viableFirst returns rules that can still fire ahead of refuted ones,
// keeping the existing order otherwise.
func viableFirst(rules []RuleMatch) []RuleMatch {
	out := make([]RuleMatch, 0, len(rules))
	for _, r := range rules {
		if !r.Refuted {
			out = append(out, r)
		}
	}
	for _, r := range rules {
		if r.Refuted {
			out = append(out, r)
		}
	}
	return out
}
