package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testSelector(margin int) Selector {
	return Selector{Matcher: NewMatcher(DefaultFiringThreshold), DiscriminationMargin: margin}
}

func TestFreshSessionStartsWithScreening(t *testing.T) {
	kb := standardKB(t)
	q, err := testSelector(DefaultDiscriminationMargin).Next(kb, State{})
	require.NoError(t, err)

	require.Equal(t, QuestionScreening, q.Type)
	require.Equal(t, ScreeningLabel, q.PotentialDisorder)
	require.Equal(t, "G1", q.Code, "G1 supports two of three disorders")
	require.Equal(t, 67, q.Priority)
	require.Equal(t, 0, q.CurrentConfidence)
	require.Empty(t, q.RuleCode)
	require.Equal(t, "symptom G1", q.Description)
	require.Equal(t, "mood_emotional", q.Category)
}

func TestLeaderGetsRuleBasedQuestion(t *testing.T) {
	kb := standardKB(t)
	st := State{Confirmed: NewSymptomSet("G1"), Asked: NewSymptomSet("G1")}
	q, err := testSelector(DefaultDiscriminationMargin).Next(kb, st)
	require.NoError(t, err)

	require.Equal(t, QuestionRuleBased, q.Type)
	require.Equal(t, "G7", q.Code)
	require.Equal(t, "R8", q.RuleCode)
	require.Equal(t, "Anorexia Nervosa", q.PotentialDisorder)
	require.Equal(t, 50, q.CurrentConfidence)
	require.Equal(t, 75, q.Priority)
}

func TestCloseCandidatesGetDiscriminatingQuestion(t *testing.T) {
	kb := standardKB(t)
	st := State{Confirmed: NewSymptomSet("G1"), Asked: NewSymptomSet("G1")}
	q, err := testSelector(20).Next(kb, st)
	require.NoError(t, err)

	require.Equal(t, QuestionDiscriminating, q.Type)
	require.Equal(t, "G7", q.Code)
	require.Equal(t, 85, q.Priority)
}

func TestSatisfiedRuleStopsAskingItsSymptoms(t *testing.T) {
	kb := standardKB(t)
	st := State{Confirmed: NewSymptomSet("G1", "G2", "G3"), Asked: NewSymptomSet("G1", "G2", "G3")}
	q, err := testSelector(DefaultDiscriminationMargin).Next(kb, st)
	require.NoError(t, err)

	require.False(t, st.Confirmed.Has(q.Code))
	require.Equal(t, "G7", q.Code)
	require.Equal(t, 100, q.CurrentConfidence)
}

func TestRefutedRuleFallsBackToNextCandidate(t *testing.T) {
	kb := standardKB(t)
	st := State{Confirmed: NewSymptomSet("G1"), Asked: NewSymptomSet("G1", "G7")}
	q, err := testSelector(DefaultDiscriminationMargin).Next(kb, st)
	require.NoError(t, err)

	require.Equal(t, QuestionRuleBased, q.Type)
	require.Equal(t, "G2", q.Code)
	require.Equal(t, "R1", q.RuleCode)
}

func TestSelectorNeverReasks(t *testing.T) {
	kb := standardKB(t)
	sel := testSelector(DefaultDiscriminationMargin)
	st := State{Confirmed: NewSymptomSet(), Asked: NewSymptomSet()}
	for i := 0; i < kb.TotalSymptoms(); i++ {
		q, err := sel.Next(kb, st)
		require.NoError(t, err)
		require.False(t, st.Asked.Has(q.Code), "re-asked %s", q.Code)
		require.GreaterOrEqual(t, q.Priority, 0)
		require.LessOrEqual(t, q.Priority, 100)
		st.Asked.Add(q.Code)
		if i%2 == 0 {
			st.Confirmed.Add(q.Code)
		}
	}
	_, err := sel.Next(kb, st)
	require.ErrorIs(t, err, ErrExhausted)
}

func TestSelectorRejectsEmptyKnowledgeBase(t *testing.T) {
	_, err := testSelector(DefaultDiscriminationMargin).Next(nil, State{})
	require.ErrorIs(t, err, ErrMisconfigured)
}
