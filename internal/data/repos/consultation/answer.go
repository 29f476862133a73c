package consultation

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mindcheck-backend/internal/domain"
	"github.com/yungbote/mindcheck-backend/internal/platform/dbctx"
	"github.com/yungbote/mindcheck-backend/internal/platform/logger"
)

// AnswerRepo is append-only: answers are never updated or deleted.
type AnswerRepo interface {
	Append(dbc dbctx.Context, a *types.ConsultationAnswer) error
	ListByConsultation(dbc dbctx.Context, consultationID uuid.UUID) ([]*types.ConsultationAnswer, error)
	CountBySymptomCode(dbc dbctx.Context, code string) (int64, error)
}

type answerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnswerRepo(db *gorm.DB, baseLog *logger.Logger) AnswerRepo {
	return &answerRepo{db: db, log: baseLog.With("repo", "AnswerRepo")}
}

func (r *answerRepo) Append(dbc dbctx.Context, a *types.ConsultationAnswer) error {
	return dbc.DB(r.db).Create(a).Error
}

func (r *answerRepo) ListByConsultation(dbc dbctx.Context, consultationID uuid.UUID) ([]*types.ConsultationAnswer, error) {
	var out []*types.ConsultationAnswer
	if consultationID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("consultation_id = ?", consultationID).
		Order("seq ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *answerRepo) CountBySymptomCode(dbc dbctx.Context, code string) (int64, error) {
	var n int64
	err := dbc.DB(r.db).
		Model(&types.ConsultationAnswer{}).
		Where("symptom_code = ?", code).
		Count(&n).Error
	return n, err
}
