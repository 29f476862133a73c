package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/mindcheck-backend/internal/data/repos"
	"github.com/yungbote/mindcheck-backend/internal/platform/logger"
)

type Repos struct {
	Symptom      repos.SymptomRepo
	Disorder     repos.DisorderRepo
	Rule         repos.RuleRepo
	Consultation repos.ConsultationRepo
	Answer       repos.AnswerRepo
	Diagnosis    repos.DiagnosisRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Symptom:      repos.NewSymptomRepo(db, log),
		Disorder:     repos.NewDisorderRepo(db, log),
		Rule:         repos.NewRuleRepo(db, log),
		Consultation: repos.NewConsultationRepo(db, log),
		Answer:       repos.NewAnswerRepo(db, log),
		Diagnosis:    repos.NewDiagnosisRepo(db, log),
	}
}
