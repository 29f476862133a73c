package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/yungbote/mindcheck-backend/internal/domain/knowledge"
)

type QuestionType string

const (
	QuestionRuleBased      QuestionType = "rule_based"
	QuestionDiscriminating QuestionType = "discriminating"
	QuestionScreening      QuestionType = "strategic_screening"
	// QuestionUnprompted labels answers the client sent for a symptom other
	// than the one the selector proposed.
	QuestionUnprompted QuestionType = "unprompted"
)

// ScreeningLabel is the potential_disorder shown for disorder-agnostic questions.
const ScreeningLabel = "Strategic Screening"

const DefaultDiscriminationMargin = 15

type Question struct {
	Code              string       `json:"code"`
	Description       string       `json:"description"`
	Category          string       `json:"category"`
	Priority          int          `json:"priority"`
	PotentialDisorder string       `json:"potential_disorder"`
	RuleCode          string       `json:"rule_code,omitempty"`
	CurrentConfidence int          `json:"current_confidence"`
	Type              QuestionType `json:"type"`
}

// State is what the selector needs from a session. Asked symptoms that are not
// confirmed were answered negatively.
type State struct {
	Confirmed SymptomSet
	Asked     SymptomSet
}

type Selector struct {
	Matcher              Matcher
	DiscriminationMargin int
}

// Next picks the most useful unasked symptom. It returns ErrExhausted when
// every symptom was asked and ErrMisconfigured on an empty question bank.
func (s Selector) Next(kb *KnowledgeBase, st State) (*Question, error) {
	if kb == nil || len(kb.symptoms) == 0 {
		return nil, fmt.Errorf("%w: question bank is empty", ErrMisconfigured)
	}
	if st.Asked.Len() >= len(kb.symptoms) && s.allAsked(kb, st.Asked) {
		return nil, ErrExhausted
	}

	standings := kb.Rank(s.Matcher, st.Confirmed, st.Asked)
	lead := 0
	if len(standings) > 0 {
		lead = standings[0].Best.Confidence
	}
	if lead > 0 {
		if q := s.discriminating(kb, standings, st.Asked, lead); q != nil {
			return q, nil
		}
		if q := s.ruleBased(kb, standings, st.Asked, lead); q != nil {
			return q, nil
		}
	}
	if q := s.screening(kb, standings, st.Asked, lead); q != nil {
		return q, nil
	}
	return nil, ErrExhausted
}

func (s Selector) allAsked(kb *KnowledgeBase, asked SymptomSet) bool {
	for _, sym := range kb.symptoms {
		if !asked.Has(sym.Code) {
			return false
		}
	}
	return true
}

// ruleBased chases the missing symptoms of the leading candidates' rules,
// leader first, rules that can still fire before refuted ones.
func (s Selector) ruleBased(kb *KnowledgeBase, standings []Standing, asked SymptomSet, lead int) *Question {
	for _, sd := range standings {
		if sd.Best.Confidence == 0 {
			break
		}
		for _, rm := range viableFirst(sd.Rules) {
			for _, code := range rm.MissingSymptoms {
				if asked.Has(code) {
					continue
				}
				return s.question(kb, code, QuestionRuleBased, sd.Disorder.Name, rm.RuleCode, 50+rm.Confidence/2, lead)
			}
		}
	}
	return nil
}

// discriminating applies when the top two candidates are close: prefer a
// symptom one of them requires and the other never does.
func (s Selector) discriminating(kb *KnowledgeBase, standings []Standing, asked SymptomSet, lead int) *Question {
	if len(standings) < 2 {
		return nil
	}
	first, second := standings[0], standings[1]
	if second.Best.Confidence == 0 || first.Best.Confidence-second.Best.Confidence > s.margin() {
		return nil
	}
	pick := func(target, other Standing) *Question {
		for _, rm := range viableFirst(target.Rules) {
			if rm.Confidence == 0 {
				continue
			}
			for _, code := range rm.MissingSymptoms {
				if asked.Has(code) || kb.disorderRequires(other.Disorder.ID, code) {
					continue
				}
				return s.question(kb, code, QuestionDiscriminating, target.Disorder.Name, rm.RuleCode, 60+rm.Confidence/2, lead)
			}
		}
		return nil
	}
	if q := pick(first, second); q != nil {
		return q
	}
	return pick(second, first)
}

type screeningCandidate struct {
	code     string
	priority int
	refs     int
}

// screening ranks unasked symptoms by how many disorders they can still
// support through rules that are not refuted.
func (s Selector) screening(kb *KnowledgeBase, standings []Standing, asked SymptomSet, lead int) *Question {
	support := make(map[string]map[string]struct{})
	for _, sd := range standings {
		for _, rm := range sd.Rules {
			if rm.Refuted {
				continue
			}
			for _, code := range rm.Rule.SymptomCodes {
				if support[code] == nil {
					support[code] = make(map[string]struct{})
				}
				support[code][sd.Disorder.Code] = struct{}{}
			}
		}
	}
	total := kb.diagnosableDisorders()

	cands := make([]screeningCandidate, 0, len(kb.symptoms))
	for _, sym := range kb.symptoms {
		if asked.Has(sym.Code) {
			continue
		}
		p := 0
		if total > 0 {
			p = int(math.Round(100 * float64(len(support[sym.Code])) / float64(total)))
		}
		cands = append(cands, screeningCandidate{code: sym.Code, priority: p, refs: kb.RuleReferences(sym.Code)})
	}
	if len(cands) == 0 {
		return nil
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.priority != b.priority {
			return a.priority > b.priority
		}
		if a.refs != b.refs {
			return a.refs > b.refs
		}
		return knowledge.CompareCodes(a.code, b.code) < 0
	})
	best := cands[0]
	return s.question(kb, best.code, QuestionScreening, ScreeningLabel, "", best.priority, lead)
}

func (s Selector) question(kb *KnowledgeBase, code string, typ QuestionType, potential, ruleCode string, priority, lead int) *Question {
	sym := kb.Symptom(code)
	q := &Question{
		Code:              code,
		Category:          knowledge.SymptomCategory(code),
		Priority:          clampPercent(priority),
		PotentialDisorder: potential,
		RuleCode:          ruleCode,
		CurrentConfidence: lead,
		Type:              typ,
	}
	if sym != nil {
		q.Description = sym.Description
	}
	return q
}

func (s Selector) margin() int {
	if s.DiscriminationMargin < 0 {
		return 0
	}
	return s.DiscriminationMargin
}
