package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/mindcheck-backend/internal/data/db"
	"github.com/yungbote/mindcheck-backend/internal/data/repos"
	types "github.com/yungbote/mindcheck-backend/internal/domain"
	kdomain "github.com/yungbote/mindcheck-backend/internal/domain/knowledge"
	"github.com/yungbote/mindcheck-backend/internal/engine"
	"github.com/yungbote/mindcheck-backend/internal/platform/apierr"
	"github.com/yungbote/mindcheck-backend/internal/platform/dbctx"
	"github.com/yungbote/mindcheck-backend/internal/platform/logger"
)

type SymptomInput struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type DisorderInput struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

type RuleInput struct {
	RuleCode         string    `json:"rule_code"`
	MentalDisorderID uuid.UUID `json:"mental_disorder_id"`
	SymptomCodes     []string  `json:"symptom_codes"`
}

type KnowledgeBaseService interface {
	ListSymptoms(ctx context.Context) ([]*types.Symptom, error)
	CreateSymptom(ctx context.Context, in SymptomInput) (*types.Symptom, error)
	UpdateSymptom(ctx context.Context, id uuid.UUID, in SymptomInput) (*types.Symptom, error)
	DeleteSymptom(ctx context.Context, id uuid.UUID) error

	ListDisorders(ctx context.Context) ([]*types.MentalDisorder, error)
	CreateDisorder(ctx context.Context, in DisorderInput) (*types.MentalDisorder, error)
	UpdateDisorder(ctx context.Context, id uuid.UUID, in DisorderInput) (*types.MentalDisorder, error)
	DeleteDisorder(ctx context.Context, id uuid.UUID) error

	ListRules(ctx context.Context, disorderID *uuid.UUID) ([]*types.DiagnosisRule, error)
	GetRule(ctx context.Context, id uuid.UUID) (*types.DiagnosisRule, error)
	CreateRule(ctx context.Context, in RuleInput) (*types.DiagnosisRule, error)
	UpdateRule(ctx context.Context, id uuid.UUID, in RuleInput) (*types.DiagnosisRule, error)
	DeleteRule(ctx context.Context, id uuid.UUID) error
	TestRule(ctx context.Context, id uuid.UUID, symptomCodes []string) (*engine.MatchResult, error)

	// Snapshot returns the validated knowledge base consultations run on.
	Snapshot(ctx context.Context) (*engine.KnowledgeBase, error)
}

type knowledgeBaseService struct {
	db            *gorm.DB
	log           *logger.Logger
	symptomRepo   repos.SymptomRepo
	disorderRepo  repos.DisorderRepo
	ruleRepo      repos.RuleRepo
	answerRepo    repos.AnswerRepo
	diagnosisRepo repos.DiagnosisRepo
	cache         KnowledgeBaseCache
	engine        *engine.Engine
}

func NewKnowledgeBaseService(
	db *gorm.DB,
	log *logger.Logger,
	symptomRepo repos.SymptomRepo,
	disorderRepo repos.DisorderRepo,
	ruleRepo repos.RuleRepo,
	answerRepo repos.AnswerRepo,
	diagnosisRepo repos.DiagnosisRepo,
	cache KnowledgeBaseCache,
	eng *engine.Engine,
) KnowledgeBaseService {
	return &knowledgeBaseService{
		db:            db,
		log:           log.With("service", "KnowledgeBaseService"),
		symptomRepo:   symptomRepo,
		disorderRepo:  disorderRepo,
		ruleRepo:      ruleRepo,
		answerRepo:    answerRepo,
		diagnosisRepo: diagnosisRepo,
		cache:         cache,
		engine:        eng,
	}
}

// ---------- symptoms ----------

func (s *knowledgeBaseService) ListSymptoms(ctx context.Context) ([]*types.Symptom, error) {
	return s.symptomRepo.List(dbctx.Context{Ctx: ctx})
}

func (s *knowledgeBaseService) CreateSymptom(ctx context.Context, in SymptomInput) (*types.Symptom, error) {
	code := kdomain.NormalizeCode(in.Code)
	desc := strings.TrimSpace(in.Description)
	if code == "" || desc == "" {
		return nil, apierr.Validation(CodeInvalidInput, errors.New("code and description are required"))
	}
	sym := &types.Symptom{Code: code, Description: desc}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := s.symptomRepo.GetByCodes(dbc, []string{code})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return duplicateCode(code)
		}
		_, err = s.symptomRepo.Create(dbc, []*types.Symptom{sym})
		return err
	})
	if err != nil {
		return nil, s.writeError("create symptom", err, code)
	}
	s.cache.Invalidate()
	s.log.Info("symptom created", "code", code)
	return sym, nil
}

func (s *knowledgeBaseService) UpdateSymptom(ctx context.Context, id uuid.UUID, in SymptomInput) (*types.Symptom, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, apierr.Validation(CodeInvalidInput, errors.New("description is required"))
	}
	var out *types.Symptom
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		sym, err := s.symptomRepo.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if sym == nil {
			return apierr.NotFound("symptom")
		}
		if code := kdomain.NormalizeCode(in.Code); code != "" && code != sym.Code {
			return apierr.Validation(CodeImmutableCode, fmt.Errorf("symptom code %s cannot be changed", sym.Code))
		}
		if err := s.symptomRepo.UpdateDescription(dbc, id, desc); err != nil {
			return err
		}
		sym.Description = desc
		out = sym
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	return out, nil
}

// DeleteSymptom refuses while any rule or recorded answer refers to the code.
func (s *knowledgeBaseService) DeleteSymptom(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		sym, err := s.symptomRepo.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if sym == nil {
			return apierr.NotFound("symptom")
		}
		rules, err := s.ruleRepo.ListReferencing(dbc, sym.Code)
		if err != nil {
			return err
		}
		if len(rules) > 0 {
			codes := make([]string, 0, len(rules))
			for _, r := range rules {
				codes = append(codes, r.RuleCode)
			}
			return apierr.Conflict(CodeInUse, fmt.Errorf("symptom %s is used by rules %s", sym.Code, strings.Join(codes, ", ")))
		}
		answers, err := s.answerRepo.CountBySymptomCode(dbc, sym.Code)
		if err != nil {
			return err
		}
		if answers > 0 {
			return apierr.Conflict(CodeInUse, fmt.Errorf("symptom %s is recorded in %d consultation answers", sym.Code, answers))
		}
		return s.symptomRepo.Delete(dbc, id)
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate()
	s.log.Info("symptom deleted", "symptom_id", id)
	return nil
}

// ---------- disorders ----------

func (s *knowledgeBaseService) ListDisorders(ctx context.Context) ([]*types.MentalDisorder, error) {
	return s.disorderRepo.List(dbctx.Context{Ctx: ctx})
}

func (s *knowledgeBaseService) CreateDisorder(ctx context.Context, in DisorderInput) (*types.MentalDisorder, error) {
	d, err := disorderFromInput(in)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.ensureDisorderCodeFree(dbc, d.Code, uuid.Nil); err != nil {
			return err
		}
		_, err := s.disorderRepo.Create(dbc, []*types.MentalDisorder{d})
		return err
	})
	if err != nil {
		return nil, s.writeError("create disorder", err, d.Code)
	}
	s.cache.Invalidate()
	s.log.Info("disorder created", "code", d.Code)
	return d, nil
}

func (s *knowledgeBaseService) UpdateDisorder(ctx context.Context, id uuid.UUID, in DisorderInput) (*types.MentalDisorder, error) {
	next, err := disorderFromInput(in)
	if err != nil {
		return nil, err
	}
	var out *types.MentalDisorder
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		d, err := s.disorderRepo.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if d == nil {
			return apierr.NotFound("disorder")
		}
		if err := s.ensureDisorderCodeFree(dbc, next.Code, id); err != nil {
			return err
		}
		if err := s.disorderRepo.UpdateFields(dbc, id, map[string]interface{}{
			"code":           next.Code,
			"name":           next.Name,
			"description":    next.Description,
			"recommendation": next.Recommendation,
		}); err != nil {
			return err
		}
		d.Code, d.Name, d.Description, d.Recommendation = next.Code, next.Name, next.Description, next.Recommendation
		out = d
		return nil
	})
	if err != nil {
		return nil, s.writeError("update disorder", err, next.Code)
	}
	s.cache.Invalidate()
	return out, nil
}

func (s *knowledgeBaseService) DeleteDisorder(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		d, err := s.disorderRepo.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if d == nil {
			return apierr.NotFound("disorder")
		}
		rules, err := s.ruleRepo.CountByDisorder(dbc, id)
		if err != nil {
			return err
		}
		if rules > 0 {
			return apierr.Conflict(CodeInUse, fmt.Errorf("disorder %s has %d diagnosis rules", d.Code, rules))
		}
		diagnoses, err := s.diagnosisRepo.CountByDisorder(dbc, id)
		if err != nil {
			return err
		}
		if diagnoses > 0 {
			return apierr.Conflict(CodeInUse, fmt.Errorf("disorder %s is referenced by %d diagnoses", d.Code, diagnoses))
		}
		return s.disorderRepo.Delete(dbc, id)
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate()
	s.log.Info("disorder deleted", "disorder_id", id)
	return nil
}

func (s *knowledgeBaseService) ensureDisorderCodeFree(dbc dbctx.Context, code string, self uuid.UUID) error {
	other, err := s.disorderRepo.GetByCode(dbc, code)
	if err != nil {
		return err
	}
	if other != nil && other.ID != self {
		return duplicateCode(code)
	}
	return nil
}

func disorderFromInput(in DisorderInput) (*types.MentalDisorder, error) {
	d := &types.MentalDisorder{
		Code:           kdomain.NormalizeCode(in.Code),
		Name:           strings.TrimSpace(in.Name),
		Description:    strings.TrimSpace(in.Description),
		Recommendation: strings.TrimSpace(in.Recommendation),
	}
	if d.Code == "" || d.Name == "" {
		return nil, apierr.Validation(CodeInvalidInput, errors.New("code and name are required"))
	}
	return d, nil
}

// ---------- rules ----------

func (s *knowledgeBaseService) ListRules(ctx context.Context, disorderID *uuid.UUID) ([]*types.DiagnosisRule, error) {
	return s.ruleRepo.List(dbctx.Context{Ctx: ctx}, disorderID)
}

func (s *knowledgeBaseService) GetRule(ctx context.Context, id uuid.UUID) (*types.DiagnosisRule, error) {
	rule, err := s.ruleRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, apierr.NotFound("rule")
	}
	return rule, nil
}

func (s *knowledgeBaseService) CreateRule(ctx context.Context, in RuleInput) (*types.DiagnosisRule, error) {
	var out *types.DiagnosisRule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		rule, err := s.validateRule(dbc, in, uuid.Nil)
		if err != nil {
			return err
		}
		if _, err := s.ruleRepo.Create(dbc, []*types.DiagnosisRule{rule}); err != nil {
			return err
		}
		out = rule
		return nil
	})
	if err != nil {
		return nil, s.writeError("create rule", err, kdomain.NormalizeCode(in.RuleCode))
	}
	s.cache.Invalidate()
	s.log.Info("rule created", "rule_code", out.RuleCode, "symptom_count", len(out.SymptomCodes))
	return out, nil
}

func (s *knowledgeBaseService) UpdateRule(ctx context.Context, id uuid.UUID, in RuleInput) (*types.DiagnosisRule, error) {
	var out *types.DiagnosisRule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := s.ruleRepo.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return apierr.NotFound("rule")
		}
		next, err := s.validateRule(dbc, in, id)
		if err != nil {
			return err
		}
		existing.RuleCode = next.RuleCode
		existing.MentalDisorderID = next.MentalDisorderID
		existing.SymptomCodes = next.SymptomCodes
		if err := s.ruleRepo.Save(dbc, existing); err != nil {
			return err
		}
		out = existing
		return nil
	})
	if err != nil {
		return nil, s.writeError("update rule", err, kdomain.NormalizeCode(in.RuleCode))
	}
	s.cache.Invalidate()
	return out, nil
}

// DeleteRule keeps at least one rule so the engine always has something to run.
func (s *knowledgeBaseService) DeleteRule(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		rule, err := s.ruleRepo.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if rule == nil {
			return apierr.NotFound("rule")
		}
		all, err := s.ruleRepo.List(dbc, nil)
		if err != nil {
			return err
		}
		if len(all) <= 1 {
			return apierr.Conflict(CodeLastRule, fmt.Errorf("rule %s is the last diagnosis rule", rule.RuleCode))
		}
		return s.ruleRepo.Delete(dbc, id)
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate()
	s.log.Info("rule deleted", "rule_id", id)
	return nil
}

func (s *knowledgeBaseService) TestRule(ctx context.Context, id uuid.UUID, symptomCodes []string) (*engine.MatchResult, error) {
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	res := s.engine.TestRule(rule, symptomCodes)
	return &res, nil
}

func (s *knowledgeBaseService) Snapshot(ctx context.Context) (*engine.KnowledgeBase, error) {
	kb, err := s.cache.Snapshot(ctx)
	if err != nil {
		return nil, translateEngineError(err)
	}
	return kb, nil
}

// validateRule normalizes in and checks it against the stored knowledge base.
// self is the rule being updated, uuid.Nil on create.
func (s *knowledgeBaseService) validateRule(dbc dbctx.Context, in RuleInput, self uuid.UUID) (*types.DiagnosisRule, error) {
	code := kdomain.NormalizeCode(in.RuleCode)
	if code == "" {
		return nil, apierr.Validation(CodeInvalidInput, errors.New("rule_code is required"))
	}
	all, err := s.ruleRepo.List(dbc, nil)
	if err != nil {
		return nil, err
	}
	for _, r := range all {
		if r.RuleCode == code && r.ID != self {
			return nil, duplicateCode(code)
		}
	}
	codes := kdomain.NormalizeCodes(in.SymptomCodes)
	if len(codes) == 0 {
		return nil, apierr.Validation(CodeEmptyRule, errors.New("a rule needs at least one symptom"))
	}
	d, err := s.disorderRepo.GetByID(dbc, in.MentalDisorderID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apierr.Validation(CodeUnknownDisorder, fmt.Errorf("disorder %s does not exist", in.MentalDisorderID))
	}
	found, err := s.symptomRepo.GetByCodes(dbc, codes)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(found))
	for _, sym := range found {
		known[sym.Code] = true
	}
	var missing []string
	for _, c := range codes {
		if !known[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, apierr.Validation(CodeUnknownSymptom, fmt.Errorf("unknown symptom codes: %s", strings.Join(missing, ", ")))
	}
	return &types.DiagnosisRule{
		RuleCode:         code,
		MentalDisorderID: d.ID,
		SymptomCodes:     datatypes.JSONSlice[string](codes),
	}, nil
}

func duplicateCode(code string) error {
	return apierr.Conflict(CodeDuplicateCode, fmt.Errorf("code %s already exists", code))
}

// writeError turns unique violations into duplicate_code and logs the rest.
func (s *knowledgeBaseService) writeError(op string, err error, code string) error {
	if _, ok := apierr.As(err); ok {
		return err
	}
	if db.IsUniqueViolation(err) {
		return duplicateCode(code)
	}
	s.log.Error(op+" failed", "error", err)
	return fmt.Errorf("%s: %w", op, err)
}
