package consultation

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mindcheck-backend/internal/domain"
	"github.com/yungbote/mindcheck-backend/internal/platform/dbctx"
	"github.com/yungbote/mindcheck-backend/internal/platform/logger"
)

type DiagnosisRepo interface {
	Create(dbc dbctx.Context, d *types.UserDiagnosis) error
	GetByConsultation(dbc dbctx.Context, consultationID uuid.UUID) (*types.UserDiagnosis, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.UserDiagnosis, error)
	CountByDisorder(dbc dbctx.Context, disorderID uuid.UUID) (int64, error)
}

type diagnosisRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDiagnosisRepo(db *gorm.DB, baseLog *logger.Logger) DiagnosisRepo {
	return &diagnosisRepo{db: db, log: baseLog.With("repo", "DiagnosisRepo")}
}

func (r *diagnosisRepo) Create(dbc dbctx.Context, d *types.UserDiagnosis) error {
	return dbc.DB(r.db).Create(d).Error
}

func (r *diagnosisRepo) GetByConsultation(dbc dbctx.Context, consultationID uuid.UUID) (*types.UserDiagnosis, error) {
	if consultationID == uuid.Nil {
		return nil, nil
	}
	var d types.UserDiagnosis
	err := dbc.DB(r.db).Where("consultation_id = ?", consultationID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *diagnosisRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.UserDiagnosis, error) {
	var out []*types.UserDiagnosis
	if userID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).Where("user_id = ?", userID).Order("diagnosed_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *diagnosisRepo) CountByDisorder(dbc dbctx.Context, disorderID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).
		Model(&types.UserDiagnosis{}).
		Where("mental_disorder_id = ?", disorderID).
		Count(&n).Error
	return n, err
}
