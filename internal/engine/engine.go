package engine

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/yungbote/mindcheck-backend/internal/domain/consultation"
	"github.com/yungbote/mindcheck-backend/internal/domain/knowledge"
)

// Policy holds the tunable thresholds of a consultation.
type Policy struct {
	// FiringThreshold is the confidence at which a rule matches.
	FiringThreshold int
	// FinalizeThreshold is the leading confidence that ends a consultation early.
	FinalizeThreshold int
	// MinQuestions is the answer floor before an early finish is allowed.
	MinQuestions         int
	DiscriminationMargin int
}

func DefaultPolicy() Policy {
	return Policy{
		FiringThreshold:      DefaultFiringThreshold,
		FinalizeThreshold:    80,
		MinQuestions:         5,
		DiscriminationMargin: DefaultDiscriminationMargin,
	}
}

const (
	CompletionExhausted = "exhausted"
	CompletionConfident = "confident"
)

// Engine drives consultations over a KnowledgeBase. It holds no session
// state and is safe for concurrent use.
type Engine struct {
	policy   Policy
	matcher  Matcher
	selector Selector
	now      func() time.Time
}

func New(p Policy) *Engine {
	def := DefaultPolicy()
	p.FinalizeThreshold = normalizeThreshold(p.FinalizeThreshold, def.FinalizeThreshold)
	if p.MinQuestions <= 0 {
		p.MinQuestions = def.MinQuestions
	}
	if p.DiscriminationMargin < 0 {
		p.DiscriminationMargin = def.DiscriminationMargin
	}
	m := NewMatcher(p.FiringThreshold)
	p.FiringThreshold = m.Threshold()
	return &Engine{
		policy:   p,
		matcher:  m,
		selector: Selector{Matcher: m, DiscriminationMargin: p.DiscriminationMargin},
		now:      time.Now,
	}
}

func (e *Engine) Policy() Policy   { return e.policy }
func (e *Engine) Matcher() Matcher { return e.matcher }

// TestRule scores an ad-hoc symptom list against one rule. Unknown codes are
// kept and simply never match.
func (e *Engine) TestRule(rule *knowledge.DiagnosisRule, codes []string) MatchResult {
	return e.matcher.Match(NewSymptomSet(codes...), rule)
}

// NextQuestion returns the question to ask, ErrExhausted when none is left,
// or ErrSessionClosed for a terminal session.
func (e *Engine) NextQuestion(kb *KnowledgeBase, sess *Session) (*Question, error) {
	if !sess.InProgress() {
		return nil, ErrSessionClosed
	}
	return e.selector.Next(kb, sess.State())
}

// Step is the outcome of one answer.
type Step struct {
	Recorded         Answer
	Next             *Question
	Completed        bool
	CompletionReason string
	Diagnosis        *Result
}

// Answer validates and records one answer, then either proposes the next
// question or completes the session. Nothing is mutated on error.
func (e *Engine) Answer(kb *KnowledgeBase, sess *Session, code string, sev consultation.Severity) (*Step, error) {
	if !sess.InProgress() {
		return nil, ErrSessionClosed
	}
	code = knowledge.NormalizeCode(code)
	sym := kb.Symptom(code)
	if sym == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymptom, code)
	}
	if !sev.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeverity, sev)
	}
	st := sess.State()
	if st.Asked.Has(code) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyAnswered, code)
	}

	proposed, err := e.selector.Next(kb, st)
	if err != nil {
		return nil, err
	}
	rec := Answer{
		Code:       code,
		Severity:   sev,
		Weight:     sev.Weight(),
		Category:   knowledge.SymptomCategory(code),
		Type:       QuestionUnprompted,
		AnsweredAt: e.now().UTC(),
	}
	if proposed.Code == code {
		rec.Priority = proposed.Priority
		rec.RuleCode = proposed.RuleCode
		rec.Type = proposed.Type
	}
	sess.record(rec)

	step := &Step{Recorded: rec}
	standings := kb.Rank(e.matcher, sess.Confirmed(), sess.Asked())
	var lead RuleMatch
	if len(standings) > 0 {
		lead = standings[0].Best
	}
	sess.Progress = e.progress(kb, sess, lead.Confidence)

	next, err := e.selector.Next(kb, sess.State())
	switch {
	case errors.Is(err, ErrExhausted):
		step.CompletionReason = CompletionExhausted
	case err != nil:
		return nil, err
	case e.confident(lead, len(sess.Answers)):
		step.CompletionReason = CompletionConfident
	default:
		step.Next = next
		return step, nil
	}

	res := Finalize(kb, e.matcher, sess.Confirmed())
	sess.complete()
	step.Completed = true
	step.Diagnosis = &res
	return step, nil
}

// Finalize completes an in-progress session on the evidence collected so far.
func (e *Engine) Finalize(kb *KnowledgeBase, sess *Session) (*Result, error) {
	if !sess.InProgress() {
		return nil, ErrSessionClosed
	}
	res := Finalize(kb, e.matcher, sess.Confirmed())
	sess.complete()
	return &res, nil
}

func (e *Engine) confident(lead RuleMatch, answered int) bool {
	if lead.Rule == nil || lead.Confidence < e.policy.FinalizeThreshold {
		return false
	}
	floor := e.policy.MinQuestions
	if n := len(lead.Rule.SymptomCodes); n > floor {
		floor = n
	}
	return answered >= floor
}

// progress blends question coverage with the leading confidence. It never
// decreases and stays below 100 until the session completes.
func (e *Engine) progress(kb *KnowledgeBase, sess *Session, leadConfidence int) int {
	total := kb.TotalSymptoms()
	if total == 0 {
		return sess.Progress
	}
	est := int(math.Round(70*float64(len(sess.Answers))/float64(total) + 0.3*float64(leadConfidence)))
	if est > 99 {
		est = 99
	}
	if est < sess.Progress {
		return sess.Progress
	}
	return est
}
