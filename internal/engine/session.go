package engine

import (
	"time"

	"github.com/yungbote/mindcheck-backend/internal/domain/consultation"
)

// Answer is one recorded question/answer pair.
type Answer struct {
	Code       string
	Severity   consultation.Severity
	Weight     int
	Priority   int
	RuleCode   string
	Category   string
	Type       QuestionType
	AnsweredAt time.Time
}

// Session is the in-memory state of a consultation. Answers is append-only
// and CurrentSymptoms keeps confirmation order.
type Session struct {
	Status          consultation.Status
	Answers         []Answer
	CurrentSymptoms []string
	Progress        int
}

func NewSession() *Session {
	return &Session{Status: consultation.StatusInProgress, CurrentSymptoms: []string{}}
}

func (s *Session) InProgress() bool { return s != nil && s.Status == consultation.StatusInProgress }

func (s *Session) Asked() SymptomSet {
	out := make(SymptomSet, len(s.Answers))
	for _, a := range s.Answers {
		out.Add(a.Code)
	}
	return out
}

func (s *Session) Confirmed() SymptomSet {
	return NewSymptomSet(s.CurrentSymptoms...)
}

func (s *Session) State() State {
	return State{Confirmed: s.Confirmed(), Asked: s.Asked()}
}

func (s *Session) record(a Answer) {
	s.Answers = append(s.Answers, a)
	if a.Severity.Positive() && !s.Confirmed().Has(a.Code) {
		s.CurrentSymptoms = append(s.CurrentSymptoms, a.Code)
	}
}

// Abandon moves an in-progress session to abandoned and reports whether
// anything changed. Terminal sessions are left alone.
func (s *Session) Abandon() bool {
	if !s.InProgress() {
		return false
	}
	s.Status = consultation.StatusAbandoned
	return true
}

func (s *Session) complete() {
	s.Status = consultation.StatusCompleted
	s.Progress = 100
}
