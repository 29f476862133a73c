package engine

import (
	"github.com/yungbote/mindcheck-backend/internal/domain/consultation"
	"github.com/yungbote/mindcheck-backend/internal/domain/knowledge"
)

const (
	// NoDiagnosisRecommendation is returned when no rule matched any reported symptom.
	NoDiagnosisRecommendation = "Your answers do not indicate a specific condition from this assessment. " +
		"If you are struggling, talk to a qualified mental health professional or someone you trust."
	// DefaultDisorderRecommendation fills in for disorders stored without advice.
	DefaultDisorderRecommendation = "Consider discussing these results with a qualified mental health professional " +
		"for a full evaluation."
	SafetyDisclaimer = "This self-assessment is not a medical diagnosis. If you are in crisis or thinking about " +
		"harming yourself, contact your local emergency number or a crisis line right away."
)

// Result is the outcome of a finished consultation. Disorder is nil for a
// no-diagnosis outcome.
type Result struct {
	Disorder       *knowledge.MentalDisorder
	Rule           *knowledge.DiagnosisRule
	Match          MatchResult
	Confidence     int
	Recommendation string
	Candidates     []consultation.CandidateSnapshot
}

func (r *Result) IsDiagnosis() bool { return r != nil && r.Disorder != nil }

// Recommendations lists the advice shown in a summary, the safety disclaimer last.
func (r *Result) Recommendations() []string {
	out := make([]string, 0, 2)
	if r != nil && r.Recommendation != "" {
		out = append(out, r.Recommendation)
	}
	return append(out, SafetyDisclaimer)
}

// Finalize ranks every disorder against the confirmed symptoms and picks the
// best one. It never invents a disorder: zero confidence yields no diagnosis.
func Finalize(kb *KnowledgeBase, m Matcher, confirmed SymptomSet) Result {
	standings := kb.Rank(m, confirmed, nil)
	res := Result{Candidates: make([]consultation.CandidateSnapshot, 0, len(standings))}
	for _, sd := range standings {
		res.Candidates = append(res.Candidates, consultation.CandidateSnapshot{
			DisorderCode:    sd.Disorder.Code,
			DisorderName:    sd.Disorder.Name,
			RuleCode:        sd.Best.RuleCode,
			Confidence:      sd.Best.Confidence,
			Matches:         sd.Best.Matches,
			MissingSymptoms: sd.Best.MissingSymptoms,
		})
	}
	if len(standings) == 0 || standings[0].Best.Confidence == 0 {
		res.Recommendation = NoDiagnosisRecommendation
		return res
	}
	best := standings[0]
	res.Disorder = best.Disorder
	res.Rule = best.Best.Rule
	res.Match = best.Best.MatchResult
	res.Confidence = best.Best.Confidence
	res.Recommendation = best.Disorder.Recommendation
	if res.Recommendation == "" {
		res.Recommendation = DefaultDisorderRecommendation
	}
	return res
}
