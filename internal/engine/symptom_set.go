package engine

import (
	"sort"

	"github.com/yungbote/mindcheck-backend/internal/domain/knowledge"
)

// SymptomSet is a set of normalized symptom codes. The zero value is an empty,
// read-only set.
type SymptomSet map[string]struct{}

func NewSymptomSet(codes ...string) SymptomSet {
	s := make(SymptomSet, len(codes))
	for _, c := range codes {
		s.Add(c)
	}
	return s
}

func (s SymptomSet) Add(code string) {
	if c := knowledge.NormalizeCode(code); c != "" {
		s[c] = struct{}{}
	}
}

func (s SymptomSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

func (s SymptomSet) Len() int { return len(s) }

// Sorted returns the members in natural code order.
func (s SymptomSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return knowledge.CompareCodes(out[i], out[j]) < 0 })
	return out
}
