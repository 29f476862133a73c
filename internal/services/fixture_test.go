package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/mindcheck-backend/internal/data/repos"
	"github.com/yungbote/mindcheck-backend/internal/data/repos/testutil"
	types "github.com/yungbote/mindcheck-backend/internal/domain"
	"github.com/yungbote/mindcheck-backend/internal/engine"
	"github.com/yungbote/mindcheck-backend/internal/platform/apierr"
	"github.com/yungbote/mindcheck-backend/internal/platform/ctxutil"
)

type testEnv struct {
	db        *gorm.DB
	kb        KnowledgeBaseService
	consult   ConsultationService
	symptoms  map[string]*types.Symptom
	disorders map[string]*types.MentalDisorder
	rules     map[string]*types.DiagnosisRule
}

// newTestEnv seeds G1..G8 with P1 R1{G1,G2,G3}, P3 R3{G4,G5,G6} and
// P8 R8{G7,G1}.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	env := &testEnv{
		db:        db,
		symptoms:  map[string]*types.Symptom{},
		disorders: map[string]*types.MentalDisorder{},
		rules:     map[string]*types.DiagnosisRule{},
	}
	for _, code := range []string{"G1", "G2", "G3", "G4", "G5", "G6", "G7", "G8"} {
		env.symptoms[code] = testutil.SeedSymptom(t, ctx, db, code)
	}
	env.disorders["P1"] = testutil.SeedDisorder(t, ctx, db, "P1", "Generalized Anxiety Disorder")
	env.disorders["P3"] = testutil.SeedDisorder(t, ctx, db, "P3", "Major Depressive Disorder")
	env.disorders["P8"] = testutil.SeedDisorder(t, ctx, db, "P8", "Anorexia Nervosa")
	env.rules["R1"] = testutil.SeedRule(t, ctx, db, "R1", env.disorders["P1"].ID, "G1", "G2", "G3")
	env.rules["R3"] = testutil.SeedRule(t, ctx, db, "R3", env.disorders["P3"].ID, "G4", "G5", "G6")
	env.rules["R8"] = testutil.SeedRule(t, ctx, db, "R8", env.disorders["P8"].ID, "G7", "G1")

	symptomRepo := repos.NewSymptomRepo(db, log)
	disorderRepo := repos.NewDisorderRepo(db, log)
	ruleRepo := repos.NewRuleRepo(db, log)
	answerRepo := repos.NewAnswerRepo(db, log)
	diagnosisRepo := repos.NewDiagnosisRepo(db, log)
	consultationRepo := repos.NewConsultationRepo(db, log)

	eng := engine.New(engine.DefaultPolicy())
	cache := NewKnowledgeBaseCache(log, symptomRepo, disorderRepo, ruleRepo, time.Minute)
	env.kb = NewKnowledgeBaseService(db, log, symptomRepo, disorderRepo, ruleRepo, answerRepo, diagnosisRepo, cache, eng)
	env.consult = NewConsultationService(db, log, eng, cache, NewLocalSessionLocker(), time.Second,
		consultationRepo, answerRepo, diagnosisRepo, symptomRepo)
	return env
}

func userCtx(userID uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID, Role: ctxutil.RoleUser})
}

func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)
	ae, ok := apierr.As(err)
	require.True(t, ok, "want *apierr.Error, got %T: %v", err, err)
	require.Equal(t, status, ae.Status, ae.Error())
	require.Equal(t, code, ae.Code)
}

func requireNotFound(t *testing.T, err error) {
	t.Helper()
	requireAPIError(t, err, http.StatusNotFound, "not_found")
}

// completeP1 runs a consultation for ctx's caller to a confident P1 diagnosis.
func completeP1(t *testing.T, ctx context.Context, env *testEnv) uuid.UUID {
	t.Helper()
	c, err := env.consult.Start(ctx)
	require.NoError(t, err)
	var last *AnswerResult
	for _, a := range []struct{ code, sev string }{
		{"G1", "severe"}, {"G2", "moderate"}, {"G3", "mild"}, {"G4", "none"}, {"G5", "none"},
	} {
		last, err = env.consult.SubmitAnswer(ctx, c.ID, a.code, a.sev)
		require.NoError(t, err, a.code)
	}
	require.True(t, last.Completed)
	require.Equal(t, "P1", last.Diagnosis.DisorderCode)
	return c.ID
}
