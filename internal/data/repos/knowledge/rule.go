package knowledge

import (
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mindcheck-backend/internal/domain"
	kdomain "github.com/yungbote/mindcheck-backend/internal/domain/knowledge"
	"github.com/yungbote/mindcheck-backend/internal/platform/dbctx"
	"github.com/yungbote/mindcheck-backend/internal/platform/logger"
)

type RuleRepo interface {
	Create(dbc dbctx.Context, rules []*types.DiagnosisRule) ([]*types.DiagnosisRule, error)
	// List returns all rules, or only those of disorderID when it is non-nil.
	List(dbc dbctx.Context, disorderID *uuid.UUID) ([]*types.DiagnosisRule, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.DiagnosisRule, error)
	Save(dbc dbctx.Context, rule *types.DiagnosisRule) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
	CountByDisorder(dbc dbctx.Context, disorderID uuid.UUID) (int64, error)
	ListReferencing(dbc dbctx.Context, symptomCode string) ([]*types.DiagnosisRule, error)
}

type ruleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRuleRepo(db *gorm.DB, baseLog *logger.Logger) RuleRepo {
	return &ruleRepo{db: db, log: baseLog.With("repo", "RuleRepo")}
}

func (r *ruleRepo) Create(dbc dbctx.Context, rules []*types.DiagnosisRule) ([]*types.DiagnosisRule, error) {
	if len(rules) == 0 {
		return []*types.DiagnosisRule{}, nil
	}
	if err := dbc.DB(r.db).Create(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *ruleRepo) List(dbc dbctx.Context, disorderID *uuid.UUID) ([]*types.DiagnosisRule, error) {
	q := dbc.DB(r.db).Order("rule_code ASC")
	if disorderID != nil {
		q = q.Where("mental_disorder_id = ?", *disorderID)
	}
	var out []*types.DiagnosisRule
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return kdomain.CompareCodes(out[i].RuleCode, out[j].RuleCode) < 0 })
	return out, nil
}

func (r *ruleRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.DiagnosisRule, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var rule types.DiagnosisRule
	err := dbc.DB(r.db).Where("id = ?", id).First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *ruleRepo) Save(dbc dbctx.Context, rule *types.DiagnosisRule) error {
	return dbc.DB(r.db).
		Model(&types.DiagnosisRule{}).
		Where("id = ?", rule.ID).
		Updates(map[string]interface{}{
			"rule_code":          rule.RuleCode,
			"mental_disorder_id": rule.MentalDisorderID,
			"symptom_codes":      rule.SymptomCodes,
		}).Error
}

func (r *ruleRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.DiagnosisRule{}).Error
}

func (r *ruleRepo) CountByDisorder(dbc dbctx.Context, disorderID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).
		Model(&types.DiagnosisRule{}).
		Where("mental_disorder_id = ?", disorderID).
		Count(&n).Error
	return n, err
}

// ListReferencing filters in Go so the JSON column stays portable across
// postgres and sqlite. The rule table is small.
func (r *ruleRepo) ListReferencing(dbc dbctx.Context, symptomCode string) ([]*types.DiagnosisRule, error) {
	all, err := r.List(dbc, nil)
	if err != nil {
		return nil, err
	}
	out := make([]*types.DiagnosisRule, 0)
	for _, rule := range all {
		if rule.References(symptomCode) {
			out = append(out, rule)
		}
	}
	return out, nil
}
