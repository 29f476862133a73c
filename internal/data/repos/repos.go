package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/mindcheck-backend/internal/data/repos/consultation"
	"github.com/yungbote/mindcheck-backend/internal/data/repos/knowledge"
	"github.com/yungbote/mindcheck-backend/internal/platform/logger"
)

type SymptomRepo = knowledge.SymptomRepo
type DisorderRepo = knowledge.DisorderRepo
type RuleRepo = knowledge.RuleRepo

type ConsultationRepo = consultation.ConsultationRepo
type AnswerRepo = consultation.AnswerRepo
type DiagnosisRepo = consultation.DiagnosisRepo

func NewSymptomRepo(db *gorm.DB, baseLog *logger.Logger) SymptomRepo {
	return knowledge.NewSymptomRepo(db, baseLog)
}
func NewDisorderRepo(db *gorm.DB, baseLog *logger.Logger) DisorderRepo {
	return knowledge.NewDisorderRepo(db, baseLog)
}
func NewRuleRepo(db *gorm.DB, baseLog *logger.Logger) RuleRepo {
	return knowledge.NewRuleRepo(db, baseLog)
}

func NewConsultationRepo(db *gorm.DB, baseLog *logger.Logger) ConsultationRepo {
	return consultation.NewConsultationRepo(db, baseLog)
}
func NewAnswerRepo(db *gorm.DB, baseLog *logger.Logger) AnswerRepo {
	return consultation.NewAnswerRepo(db, baseLog)
}
func NewDiagnosisRepo(db *gorm.DB, baseLog *logger.Logger) DiagnosisRepo {
	return consultation.NewDiagnosisRepo(db, baseLog)
}
