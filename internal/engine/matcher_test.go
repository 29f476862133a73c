package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/mindcheck-backend/internal/domain/knowledge"
)

func TestMatchPartialRule(t *testing.T) {
	rule := &knowledge.DiagnosisRule{RuleCode: "R1", SymptomCodes: []string{"G1", "G2", "G3"}}
	res := NewMatcher(0).Match(NewSymptomSet("G1", "G2"), rule)

	require.Equal(t, "R1", res.RuleCode)
	require.Equal(t, 67, res.Confidence)
	require.False(t, res.Matches)
	require.Equal(t, []string{"G1", "G2"}, res.MatchedSymptoms)
	require.Equal(t, []string{"G3"}, res.MissingSymptoms)
}

func TestMatchSingleSymptomRule(t *testing.T) {
	rule := &knowledge.DiagnosisRule{RuleCode: "R5", SymptomCodes: []string{"G1"}}
	res := NewMatcher(DefaultFiringThreshold).Match(NewSymptomSet("G1"), rule)

	require.Equal(t, 100, res.Confidence)
	require.True(t, res.Matches)
	require.NotNil(t, res.MissingSymptoms)
	require.Empty(t, res.MissingSymptoms)
}

func TestMatchPartitionsRule(t *testing.T) {
	rule := &knowledge.DiagnosisRule{RuleCode: "R2", SymptomCodes: []string{"G4", "G2", "G9", "G1"}}
	universe := []string{"G1", "G2", "G3", "G4", "G9"}
	m := NewMatcher(DefaultFiringThreshold)

	for mask := 0; mask < 1<<len(universe); mask++ {
		reported := NewSymptomSet()
		for i, c := range universe {
			if mask&(1<<i) != 0 {
				reported.Add(c)
			}
		}
		res := m.Match(reported, rule)

		seen := map[string]int{}
		for _, c := range res.MatchedSymptoms {
			seen[c]++
			require.True(t, reported.Has(c))
		}
		for _, c := range res.MissingSymptoms {
			seen[c]++
			require.False(t, reported.Has(c))
		}
		require.Len(t, seen, len(rule.SymptomCodes), "mask=%b", mask)
		for _, c := range rule.SymptomCodes {
			require.Equal(t, 1, seen[c], "mask=%b code=%s", mask, c)
		}

		subset := len(res.MissingSymptoms) == 0
		require.Equal(t, subset, res.Confidence == 100, "mask=%b", mask)
		require.Equal(t, subset, res.Matches, "mask=%b", mask)
	}
}

func TestMatchConfidenceMonotonic(t *testing.T) {
	rule := &knowledge.DiagnosisRule{RuleCode: "R7", SymptomCodes: []string{"G1", "G2", "G3", "G4", "G5", "G6", "G7"}}
	m := NewMatcher(DefaultFiringThreshold)
	reported := NewSymptomSet()
	prev := m.Match(reported, rule).Confidence
	for _, c := range []string{"G9", "G3", "G12", "G1", "G7", "G2", "G4", "G5", "G6"} {
		reported.Add(c)
		got := m.Match(reported, rule).Confidence
		require.GreaterOrEqual(t, got, prev, "after adding %s", c)
		prev = got
	}
	require.Equal(t, 100, prev)
}

func TestMatcherThreshold(t *testing.T) {
	rule := &knowledge.DiagnosisRule{RuleCode: "R1", SymptomCodes: []string{"G1", "G2", "G3"}}
	reported := NewSymptomSet("G1", "G2")

	require.True(t, NewMatcher(60).Match(reported, rule).Matches)
	require.False(t, NewMatcher(70).Match(reported, rule).Matches)

	for _, bad := range []int{0, -5, 101} {
		require.Equal(t, DefaultFiringThreshold, NewMatcher(bad).Threshold(), "threshold=%d", bad)
	}
	require.Equal(t, DefaultFiringThreshold, Matcher{}.Threshold())
}

func TestMatchEmptyRule(t *testing.T) {
	res := NewMatcher(DefaultFiringThreshold).Match(NewSymptomSet("G1"), &knowledge.DiagnosisRule{RuleCode: "R0"})
	require.Equal(t, 0, res.Confidence)
	require.False(t, res.Matches)
	require.Empty(t, res.MatchedSymptoms)
}

func TestConfidenceRounding(t *testing.T) {
	require.Equal(t, 33, Confidence(1, 3))
	require.Equal(t, 67, Confidence(2, 3))
	require.Equal(t, 50, Confidence(1, 2))
	require.Equal(t, 0, Confidence(3, 0))
}

func TestTestRuleIsPure(t *testing.T) {
	kb := standardKB(t)
	e := New(DefaultPolicy())
	rule := ruleByCode(t, kb, "R1")

	first := e.TestRule(rule, []string{"g1", "G2", "NOPE"})
	second := e.TestRule(rule, []string{"g1", "G2", "NOPE"})
	require.Equal(t, first, second)
	require.Equal(t, 67, first.Confidence)
	require.Equal(t, []string{"G3"}, first.MissingSymptoms)
	require.Equal(t, []string{"G1", "G2", "G3"}, []string(rule.SymptomCodes))
}
