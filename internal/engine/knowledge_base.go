package engine

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/yungbote/mindcheck-backend/internal/domain/knowledge"
)

// KnowledgeBase is a validated, read-only view over the symptom, disorder and
// rule tables. Build one per knowledge base version and share it freely.
type KnowledgeBase struct {
	symptoms        []*knowledge.Symptom
	symptomByCode   map[string]*knowledge.Symptom
	disorders       []*knowledge.MentalDisorder
	disorderByID    map[uuid.UUID]*knowledge.MentalDisorder
	rules           []*knowledge.DiagnosisRule
	rulesByDisorder map[uuid.UUID][]*knowledge.DiagnosisRule
	ruleRefs        map[string]int
}

func NewKnowledgeBase(symptoms []*knowledge.Symptom, disorders []*knowledge.MentalDisorder, rules []*knowledge.DiagnosisRule) (*KnowledgeBase, error) {
	kb := &KnowledgeBase{
		symptomByCode:   make(map[string]*knowledge.Symptom, len(symptoms)),
		disorderByID:    make(map[uuid.UUID]*knowledge.MentalDisorder, len(disorders)),
		rulesByDisorder: make(map[uuid.UUID][]*knowledge.DiagnosisRule, len(disorders)),
		ruleRefs:        make(map[string]int),
	}
	for _, s := range symptoms {
		if s == nil {
			continue
		}
		code := knowledge.NormalizeCode(s.Code)
		if _, dup := kb.symptomByCode[code]; dup {
			return nil, fmt.Errorf("%w: duplicate symptom code %s", ErrMisconfigured, code)
		}
		kb.symptomByCode[code] = s
		kb.symptoms = append(kb.symptoms, s)
	}
	if len(kb.symptoms) == 0 {
		return nil, fmt.Errorf("%w: question bank is empty", ErrMisconfigured)
	}
	for _, d := range disorders {
		if d == nil {
			continue
		}
		kb.disorderByID[d.ID] = d
		kb.disorders = append(kb.disorders, d)
	}
	for _, r := range rules {
		if r == nil {
			continue
		}
		if len(r.SymptomCodes) == 0 {
			return nil, fmt.Errorf("%w: rule %s has no symptoms", ErrMisconfigured, r.RuleCode)
		}
		if _, ok := kb.disorderByID[r.MentalDisorderID]; !ok {
			return nil, fmt.Errorf("%w: rule %s references unknown disorder %s", ErrMisconfigured, r.RuleCode, r.MentalDisorderID)
		}
		for _, code := range r.SymptomCodes {
			if _, ok := kb.symptomByCode[code]; !ok {
				return nil, fmt.Errorf("%w: rule %s references unknown symptom %s", ErrMisconfigured, r.RuleCode, code)
			}
			kb.ruleRefs[code]++
		}
		kb.rules = append(kb.rules, r)
		kb.rulesByDisorder[r.MentalDisorderID] = append(kb.rulesByDisorder[r.MentalDisorderID], r)
	}
	if len(kb.rules) == 0 {
		return nil, fmt.Errorf("%w: no diagnosis rules defined", ErrMisconfigured)
	}

	sort.SliceStable(kb.symptoms, func(i, j int) bool {
		return knowledge.CompareCodes(kb.symptoms[i].Code, kb.symptoms[j].Code) < 0
	})
	sort.SliceStable(kb.disorders, func(i, j int) bool {
		return knowledge.CompareCodes(kb.disorders[i].Code, kb.disorders[j].Code) < 0
	})
	byRuleCode := func(rs []*knowledge.DiagnosisRule) {
		sort.SliceStable(rs, func(i, j int) bool { return knowledge.CompareCodes(rs[i].RuleCode, rs[j].RuleCode) < 0 })
	}
	byRuleCode(kb.rules)
	for id := range kb.rulesByDisorder {
		byRuleCode(kb.rulesByDisorder[id])
	}
	return kb, nil
}

func (kb *KnowledgeBase) Symptom(code string) *knowledge.Symptom {
	return kb.symptomByCode[knowledge.NormalizeCode(code)]
}

func (kb *KnowledgeBase) Symptoms() []*knowledge.Symptom { return kb.symptoms }

func (kb *KnowledgeBase) Disorder(id uuid.UUID) *knowledge.MentalDisorder { return kb.disorderByID[id] }

func (kb *KnowledgeBase) Disorders() []*knowledge.MentalDisorder { return kb.disorders }

func (kb *KnowledgeBase) Rules() []*knowledge.DiagnosisRule { return kb.rules }

func (kb *KnowledgeBase) RulesFor(disorderID uuid.UUID) []*knowledge.DiagnosisRule {
	return kb.rulesByDisorder[disorderID]
}

func (kb *KnowledgeBase) TotalSymptoms() int { return len(kb.symptoms) }

// RuleReferences counts the rules requiring code.
func (kb *KnowledgeBase) RuleReferences(code string) int { return kb.ruleRefs[code] }

func (kb *KnowledgeBase) disorderRequires(disorderID uuid.UUID, code string) bool {
	for _, r := range kb.rulesByDisorder[disorderID] {
		if r.References(code) {
			return true
		}
	}
	return false
}

// diagnosableDisorders counts disorders that own at least one rule.
func (kb *KnowledgeBase) diagnosableDisorders() int { return len(kb.rulesByDisorder) }
