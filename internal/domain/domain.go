package domain

import (
	"github.com/yungbote/mindcheck-backend/internal/domain/consultation"
	"github.com/yungbote/mindcheck-backend/internal/domain/knowledge"
)

type (
	Symptom        = knowledge.Symptom
	MentalDisorder = knowledge.MentalDisorder
	DiagnosisRule  = knowledge.DiagnosisRule

	Consultation       = consultation.Consultation
	ConsultationAnswer = consultation.Answer
	UserDiagnosis      = consultation.UserDiagnosis
	SymptomDetail      = consultation.SymptomDetail
	CandidateSnapshot  = consultation.CandidateSnapshot
	Severity           = consultation.Severity
	ConsultationStatus = consultation.Status
)

const (
	StatusInProgress = consultation.StatusInProgress
	StatusCompleted  = consultation.StatusCompleted
	StatusAbandoned  = consultation.StatusAbandoned
)

var NormalizeSeverity = consultation.NormalizeSeverity

// Models lists every persisted model in migration order.
func Models() []any {
	return []any{
		&Symptom{},
		&MentalDisorder{},
		&DiagnosisRule{},
		&Consultation{},
		&ConsultationAnswer{},
		&UserDiagnosis{},
	}
}
