package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/mindcheck-backend/internal/domain"
)

func SeedSymptom(tb testing.TB, ctx context.Context, tx *gorm.DB, code string) *types.Symptom {
	tb.Helper()
	s := &types.Symptom{
		ID:          uuid.New(),
		Code:        code,
		Description: "symptom " + code,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed symptom: %v", err)
	}
	return s
}

func SeedDisorder(tb testing.TB, ctx context.Context, tx *gorm.DB, code, name string) *types.MentalDisorder {
	tb.Helper()
	d := &types.MentalDisorder{
		ID:             uuid.New(),
		Code:           code,
		Name:           name,
		Description:    name + " description",
		Recommendation: "talk to a professional about " + name,
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed disorder: %v", err)
	}
	return d
}

func SeedRule(tb testing.TB, ctx context.Context, tx *gorm.DB, ruleCode string, disorderID uuid.UUID, codes ...string) *types.DiagnosisRule {
	tb.Helper()
	r := &types.DiagnosisRule{
		ID:               uuid.New(),
		RuleCode:         ruleCode,
		MentalDisorderID: disorderID,
		SymptomCodes:     datatypes.JSONSlice[string](codes),
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed rule: %v", err)
	}
	return r
}

func SeedConsultation(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *types.Consultation {
	tb.Helper()
	c := &types.Consultation{
		ID:              uuid.New(),
		UserID:          userID,
		Status:          types.StatusInProgress,
		CurrentSymptoms: datatypes.JSONSlice[string]{},
		StartedAt:       time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed consultation: %v", err)
	}
	return c
}

func SeedAnswer(tb testing.TB, ctx context.Context, tx *gorm.DB, consultationID uuid.UUID, seq int, code string, sev types.Severity) *types.ConsultationAnswer {
	tb.Helper()
	a := &types.ConsultationAnswer{
		ID:             uuid.New(),
		ConsultationID: consultationID,
		Seq:            seq,
		SymptomCode:    code,
		Severity:       sev,
		Weight:         sev.Weight(),
		Category:       "uncategorized",
		QuestionType:   "unprompted",
		AnsweredAt:     time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed answer: %v", err)
	}
	return a
}
