package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/mindcheck-backend/internal/domain/consultation"
)

func TestNewNormalizesPolicy(t *testing.T) {
	e := New(Policy{FiringThreshold: 500, FinalizeThreshold: -1, MinQuestions: 0, DiscriminationMargin: -3})
	require.Equal(t, DefaultPolicy(), e.Policy())
	require.Equal(t, DefaultFiringThreshold, e.Matcher().Threshold())
}

func TestAnswerValidationLeavesSessionUntouched(t *testing.T) {
	kb := standardKB(t)
	e := New(DefaultPolicy())
	sess := NewSession()
	_, err := e.Answer(kb, sess, "G1", consultation.SeverityMild)
	require.NoError(t, err)

	_, err = e.Answer(kb, sess, "G99", consultation.SeverityMild)
	require.ErrorIs(t, err, ErrUnknownSymptom)

	_, err = e.Answer(kb, sess, "G2", consultation.Severity("often"))
	require.ErrorIs(t, err, ErrInvalidSeverity)

	_, err = e.Answer(kb, sess, "g1", consultation.SeveritySevere)
	require.ErrorIs(t, err, ErrAlreadyAnswered)

	require.Len(t, sess.Answers, 1)
	require.Equal(t, []string{"G1"}, sess.CurrentSymptoms)
	require.Equal(t, consultation.SeverityMild, sess.Answers[0].Severity)
}

func TestAnswerRecordsProposedQuestion(t *testing.T) {
	kb := standardKB(t)
	e := New(DefaultPolicy())
	sess := NewSession()

	step, err := e.Answer(kb, sess, "G1", consultation.SeveritySevere)
	require.NoError(t, err)
	require.Equal(t, QuestionScreening, step.Recorded.Type)
	require.Equal(t, 67, step.Recorded.Priority)
	require.Equal(t, 3, step.Recorded.Weight)
	require.Equal(t, "mood_emotional", step.Recorded.Category)
	require.False(t, step.Completed)
	require.NotNil(t, step.Next)
	require.Equal(t, "G7", step.Next.Code)
}

func TestAnswerOffScriptIsUnprompted(t *testing.T) {
	kb := standardKB(t)
	e := New(DefaultPolicy())
	sess := NewSession()

	step, err := e.Answer(kb, sess, "G4", consultation.SeverityNone)
	require.NoError(t, err)
	require.Equal(t, QuestionUnprompted, step.Recorded.Type)
	require.Equal(t, 0, step.Recorded.Priority)
	require.Empty(t, step.Recorded.RuleCode)
	require.Empty(t, sess.CurrentSymptoms, "none does not confirm")
}

func TestProgressIsMonotonicAndBounded(t *testing.T) {
	kb := standardKB(t)
	e := New(Policy{FinalizeThreshold: 100, MinQuestions: 100})
	sess := NewSession()
	prev := 0
	severities := []consultation.Severity{
		consultation.SeverityMild, consultation.SeverityNone, consultation.SeveritySevere,
		consultation.SeverityNone, consultation.SeverityNone, consultation.SeverityModerate,
		consultation.SeverityNone, consultation.SeverityMild,
	}
	for i := 0; sess.InProgress(); i++ {
		q, err := e.NextQuestion(kb, sess)
		require.NoError(t, err)
		step, err := e.Answer(kb, sess, q.Code, severities[i%len(severities)])
		require.NoError(t, err)
		require.GreaterOrEqual(t, sess.Progress, prev)
		require.LessOrEqual(t, sess.Progress, 100)
		if !step.Completed {
			require.Less(t, sess.Progress, 100)
		}
		prev = sess.Progress
	}
	require.Equal(t, 100, sess.Progress)
	require.Len(t, sess.Answers, kb.TotalSymptoms())
}

func TestConfidentCompletionWaitsForMinimumQuestions(t *testing.T) {
	kb := standardKB(t)
	e := New(Policy{FinalizeThreshold: 80, MinQuestions: 3})
	sess := NewSession()

	step, err := e.Answer(kb, sess, "G1", consultation.SeverityMild)
	require.NoError(t, err)
	require.False(t, step.Completed)

	step, err = e.Answer(kb, sess, "G7", consultation.SeverityModerate)
	require.NoError(t, err)
	require.False(t, step.Completed, "two answers are below the floor")
	require.Equal(t, "G2", step.Next.Code)

	step, err = e.Answer(kb, sess, "G2", consultation.SeverityNone)
	require.NoError(t, err)
	require.True(t, step.Completed)
	require.Equal(t, CompletionConfident, step.CompletionReason)
	require.True(t, step.Diagnosis.IsDiagnosis())
	require.Equal(t, "P8", step.Diagnosis.Disorder.Code)
	require.Equal(t, "R8", step.Diagnosis.Rule.RuleCode)
	require.Equal(t, 100, step.Diagnosis.Confidence)
	require.Equal(t, consultation.StatusCompleted, sess.Status)
	require.Equal(t, 100, sess.Progress)

	_, err = e.Answer(kb, sess, "G3", consultation.SeverityMild)
	require.ErrorIs(t, err, ErrSessionClosed)
	_, err = e.NextQuestion(kb, sess)
	require.ErrorIs(t, err, ErrSessionClosed)
}

func TestExhaustionCompletesWithoutDiagnosis(t *testing.T) {
	kb := buildKB(t, 2, map[string]string{"P1": "Panic Disorder"}, []ruleDef{
		{code: "R1", disorder: "P1", symptoms: []string{"G1", "G2"}},
	})
	e := New(DefaultPolicy())
	sess := NewSession()

	step, err := e.Answer(kb, sess, "G1", consultation.SeverityNone)
	require.NoError(t, err)
	require.False(t, step.Completed)

	step, err = e.Answer(kb, sess, "G2", consultation.SeverityNone)
	require.NoError(t, err)
	require.True(t, step.Completed)
	require.Equal(t, CompletionExhausted, step.CompletionReason)
	require.False(t, step.Diagnosis.IsDiagnosis())
	require.Equal(t, 0, step.Diagnosis.Confidence)
	require.Equal(t, NoDiagnosisRecommendation, step.Diagnosis.Recommendation)
	require.Len(t, step.Diagnosis.Candidates, 1)
}

func TestExhaustionStillDiagnoses(t *testing.T) {
	kb := buildKB(t, 2, map[string]string{"P1": "Panic Disorder"}, []ruleDef{
		{code: "R1", disorder: "P1", symptoms: []string{"G1", "G2"}},
	})
	e := New(DefaultPolicy())
	sess := NewSession()

	_, err := e.Answer(kb, sess, "G1", consultation.SeveritySevere)
	require.NoError(t, err)
	step, err := e.Answer(kb, sess, "G2", consultation.SeverityMild)
	require.NoError(t, err)
	require.True(t, step.Completed)
	require.Equal(t, CompletionExhausted, step.CompletionReason)
	require.Equal(t, "P1", step.Diagnosis.Disorder.Code)
	require.Equal(t, "see a specialist about Panic Disorder", step.Diagnosis.Recommendation)
}

func TestAbandon(t *testing.T) {
	kb := standardKB(t)
	e := New(DefaultPolicy())

	sess := NewSession()
	_, err := e.Answer(kb, sess, "G1", consultation.SeverityMild)
	require.NoError(t, err)
	require.True(t, sess.Abandon())
	require.Equal(t, consultation.StatusAbandoned, sess.Status)
	require.Len(t, sess.Answers, 1, "answers survive abandon")
	require.False(t, sess.Abandon())

	done := NewSession()
	_, err = e.Finalize(kb, done)
	require.NoError(t, err)
	require.False(t, done.Abandon())
	require.Equal(t, consultation.StatusCompleted, done.Status)
}
