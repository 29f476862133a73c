package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/mindcheck-backend/internal/data/repos/testutil"
	types "github.com/yungbote/mindcheck-backend/internal/domain"
)

func TestCreateSymptomNormalizesAndRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sym, err := env.kb.CreateSymptom(ctx, SymptomInput{Code: " g9 ", Description: "Restlessness"})
	require.NoError(t, err)
	require.Equal(t, "G9", sym.Code)

	_, err = env.kb.CreateSymptom(ctx, SymptomInput{Code: "G9", Description: "again"})
	requireAPIError(t, err, http.StatusConflict, CodeDuplicateCode)

	_, err = env.kb.CreateSymptom(ctx, SymptomInput{Code: "G10"})
	requireAPIError(t, err, http.StatusUnprocessableEntity, CodeInvalidInput)
}

func TestUpdateSymptomKeepsCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.symptoms["G2"].ID

	_, err := env.kb.UpdateSymptom(ctx, id, SymptomInput{Code: "G20", Description: "renamed"})
	requireAPIError(t, err, http.StatusUnprocessableEntity, CodeImmutableCode)

	sym, err := env.kb.UpdateSymptom(ctx, id, SymptomInput{Code: "G2", Description: "Feeling on edge"})
	require.NoError(t, err)
	require.Equal(t, "Feeling on edge", sym.Description)

	_, err = env.kb.UpdateSymptom(ctx, uuid.New(), SymptomInput{Description: "x"})
	requireNotFound(t, err)
}

func TestDeleteSymptomReferencedByRuleIsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.kb.DeleteSymptom(ctx, env.symptoms["G1"].ID)
	requireAPIError(t, err, http.StatusConflict, CodeInUse)
	require.Contains(t, err.Error(), "R1")

	list, err := env.kb.ListSymptoms(ctx)
	require.NoError(t, err)
	require.Len(t, list, 8)
}

func TestDeleteSymptomWithAnswersIsRejected(t *testing.T) {
	env := newTestEnv(t)
	bg := context.Background()
	c := testutil.SeedConsultation(t, bg, env.db, uuid.New())
	testutil.SeedAnswer(t, bg, env.db, c.ID, 1, "G8", types.Severity("mild"))

	err := env.kb.DeleteSymptom(bg, env.symptoms["G8"].ID)
	requireAPIError(t, err, http.StatusConflict, CodeInUse)
}

func TestDeleteUnusedSymptomRefreshesSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	kb, err := env.kb.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 8, kb.TotalSymptoms())

	require.NoError(t, env.kb.DeleteSymptom(ctx, env.symptoms["G8"].ID))

	kb, err = env.kb.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 7, kb.TotalSymptoms())
	require.Nil(t, kb.Symptom("G8"))
}

func TestCreateRuleValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p3 := env.disorders["P3"].ID

	_, err := env.kb.CreateRule(ctx, RuleInput{RuleCode: "R3B", MentalDisorderID: p3})
	requireAPIError(t, err, http.StatusUnprocessableEntity, CodeEmptyRule)

	_, err = env.kb.CreateRule(ctx, RuleInput{RuleCode: "R3B", MentalDisorderID: uuid.New(), SymptomCodes: []string{"G4"}})
	requireAPIError(t, err, http.StatusUnprocessableEntity, CodeUnknownDisorder)

	_, err = env.kb.CreateRule(ctx, RuleInput{RuleCode: "R3B", MentalDisorderID: p3, SymptomCodes: []string{"G4", "G42"}})
	requireAPIError(t, err, http.StatusUnprocessableEntity, CodeUnknownSymptom)
	require.Contains(t, err.Error(), "G42")

	_, err = env.kb.CreateRule(ctx, RuleInput{RuleCode: "r1", MentalDisorderID: p3, SymptomCodes: []string{"G4"}})
	requireAPIError(t, err, http.StatusConflict, CodeDuplicateCode)

	rule, err := env.kb.CreateRule(ctx, RuleInput{RuleCode: "r3b", MentalDisorderID: p3, SymptomCodes: []string{"g5", "G4", "G4"}})
	require.NoError(t, err)
	require.Equal(t, "R3B", rule.RuleCode)
	require.Equal(t, []string{"G5", "G4"}, []string(rule.SymptomCodes), "entry order is kept")

	res, err := env.kb.TestRule(ctx, rule.ID, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"G5", "G4"}, res.MissingSymptoms)

	rules, err := env.kb.ListRules(ctx, &p3)
	require.NoError(t, err)
	require.Len(t, rules, 2)
}

func TestUpdateRuleKeepsOwnCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	r8 := env.rules["R8"]

	rule, err := env.kb.UpdateRule(ctx, r8.ID, RuleInput{
		RuleCode:         "R8",
		MentalDisorderID: r8.MentalDisorderID,
		SymptomCodes:     []string{"G7", "G8"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"G7", "G8"}, []string(rule.SymptomCodes))

	_, err = env.kb.UpdateRule(ctx, r8.ID, RuleInput{
		RuleCode:         "R3",
		MentalDisorderID: r8.MentalDisorderID,
		SymptomCodes:     []string{"G7"},
	})
	requireAPIError(t, err, http.StatusConflict, CodeDuplicateCode)

	got, err := env.kb.GetRule(ctx, r8.ID)
	require.NoError(t, err)
	require.Equal(t, "R8", got.RuleCode)
}

func TestDeleteLastRuleIsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.kb.DeleteRule(ctx, env.rules["R1"].ID))
	require.NoError(t, env.kb.DeleteRule(ctx, env.rules["R3"].ID))
	err := env.kb.DeleteRule(ctx, env.rules["R8"].ID)
	requireAPIError(t, err, http.StatusConflict, CodeLastRule)

	err = env.kb.DeleteRule(ctx, env.rules["R1"].ID)
	requireNotFound(t, err)
}

func TestDeleteDisorderWithRulesIsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.kb.DeleteDisorder(ctx, env.disorders["P3"].ID)
	requireAPIError(t, err, http.StatusConflict, CodeInUse)

	d, err := env.kb.CreateDisorder(ctx, DisorderInput{Code: "p9", Name: "Insomnia Disorder"})
	require.NoError(t, err)
	require.Equal(t, "P9", d.Code)
	require.NoError(t, env.kb.DeleteDisorder(ctx, d.ID))
}

func TestUpdateDisorderRejectsTakenCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.disorders["P8"].ID

	_, err := env.kb.UpdateDisorder(ctx, id, DisorderInput{Code: "P1", Name: "Anorexia Nervosa"})
	requireAPIError(t, err, http.StatusConflict, CodeDuplicateCode)

	d, err := env.kb.UpdateDisorder(ctx, id, DisorderInput{Code: "P8", Name: "Anorexia Nervosa", Recommendation: "see a specialist"})
	require.NoError(t, err)
	require.Equal(t, "see a specialist", d.Recommendation)
}

func TestTestRulePartialMatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.kb.TestRule(ctx, env.rules["R1"].ID, []string{"G1", "G2"})
	require.NoError(t, err)
	require.Equal(t, 67, res.Confidence)
	require.False(t, res.Matches)
	require.Equal(t, []string{"G3"}, res.MissingSymptoms)

	again, err := env.kb.TestRule(ctx, env.rules["R1"].ID, []string{"G1", "G2"})
	require.NoError(t, err)
	require.Equal(t, res, again)

	_, err = env.kb.TestRule(ctx, uuid.New(), []string{"G1"})
	requireNotFound(t, err)
}

func TestDeleteDisorderWithDiagnosesIsRejected(t *testing.T) {
	env := newTestEnv(t)
	completeP1(t, userCtx(uuid.New()), env)

	ctx := context.Background()
	p1, p3 := env.disorders["P1"].ID, env.disorders["P3"].ID
	// Move P1's only rule away so the diagnosis is the sole reference.
	_, err := env.kb.UpdateRule(ctx, env.rules["R1"].ID, RuleInput{RuleCode: "R1", MentalDisorderID: p3, SymptomCodes: []string{"G1", "G2", "G3"}})
	require.NoError(t, err)

	err = env.kb.DeleteDisorder(ctx, p1)
	requireAPIError(t, err, http.StatusConflict, CodeInUse)
	require.Contains(t, err.Error(), "diagnoses")

	disorders, err := env.kb.ListDisorders(ctx)
	require.NoError(t, err)
	require.Len(t, disorders, 3)
}
