package engine

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/mindcheck-backend/internal/domain/knowledge"
)

type ruleDef struct {
	code     string
	disorder string
	symptoms []string
}

func buildKB(t *testing.T, symptomCount int, disorders map[string]string, rules []ruleDef) *KnowledgeBase {
	t.Helper()
	syms := make([]*knowledge.Symptom, 0, symptomCount)
	for i := 1; i <= symptomCount; i++ {
		code := fmt.Sprintf("G%d", i)
		syms = append(syms, &knowledge.Symptom{ID: uuid.New(), Code: code, Description: "symptom " + code})
	}
	byCode := make(map[string]*knowledge.MentalDisorder, len(disorders))
	ds := make([]*knowledge.MentalDisorder, 0, len(disorders))
	for code, name := range disorders {
		d := &knowledge.MentalDisorder{ID: uuid.New(), Code: code, Name: name, Recommendation: "see a specialist about " + name}
		byCode[code] = d
		ds = append(ds, d)
	}
	rs := make([]*knowledge.DiagnosisRule, 0, len(rules))
	for _, r := range rules {
		d, ok := byCode[r.disorder]
		require.True(t, ok, "rule %s targets unknown disorder %s", r.code, r.disorder)
		rs = append(rs, &knowledge.DiagnosisRule{ID: uuid.New(), RuleCode: r.code, MentalDisorderID: d.ID, SymptomCodes: r.symptoms})
	}
	kb, err := NewKnowledgeBase(syms, ds, rs)
	require.NoError(t, err)
	return kb
}

// standardKB: P8 (R8) and P1 (R1) share G1; G8 is referenced by no rule.
func standardKB(t *testing.T) *KnowledgeBase {
	return buildKB(t, 8,
		map[string]string{
			"P1": "Generalized Anxiety Disorder",
			"P3": "Major Depressive Disorder",
			"P8": "Anorexia Nervosa",
		},
		[]ruleDef{
			{code: "R1", disorder: "P1", symptoms: []string{"G1", "G2", "G3"}},
			{code: "R3", disorder: "P3", symptoms: []string{"G4", "G5", "G6"}},
			{code: "R8", disorder: "P8", symptoms: []string{"G7", "G1"}},
		})
}

func ruleByCode(t *testing.T, kb *KnowledgeBase, code string) *knowledge.DiagnosisRule {
	t.Helper()
	for _, r := range kb.Rules() {
		if r.RuleCode == code {
			return r
		}
	}
	t.Fatalf("rule %s not found", code)
	return nil
}
