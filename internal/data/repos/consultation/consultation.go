package consultation

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mindcheck-backend/internal/domain"
	"github.com/yungbote/mindcheck-backend/internal/platform/dbctx"
	"github.com/yungbote/mindcheck-backend/internal/platform/logger"
)

type ConsultationRepo interface {
	Create(dbc dbctx.Context, c *types.Consultation) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Consultation, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Consultation, error)
	// SaveState writes the mutable session fields only if the stored version
	// still equals c.Version. On success c.Version is advanced.
	SaveState(dbc dbctx.Context, c *types.Consultation) (bool, error)
}

type consultationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConsultationRepo(db *gorm.DB, baseLog *logger.Logger) ConsultationRepo {
	return &consultationRepo{db: db, log: baseLog.With("repo", "ConsultationRepo")}
}

func (r *consultationRepo) Create(dbc dbctx.Context, c *types.Consultation) error {
	if c.StartedAt.IsZero() {
		c.StartedAt = time.Now().UTC()
	}
	if c.Status == "" {
		c.Status = types.StatusInProgress
	}
	return dbc.DB(r.db).Create(c).Error
}

func (r *consultationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Consultation, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var c types.Consultation
	err := dbc.DB(r.db).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *consultationRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Consultation, error) {
	var out []*types.Consultation
	if userID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *consultationRepo) SaveState(dbc dbctx.Context, c *types.Consultation) (bool, error) {
	res := dbc.DB(r.db).
		Model(&types.Consultation{}).
		Where("id = ? AND version = ?", c.ID, c.Version).
		Updates(map[string]interface{}{
			"status":           c.Status,
			"progress":         c.Progress,
			"current_symptoms": c.CurrentSymptoms,
			"question_count":   c.QuestionCount,
			"completed_at":     c.CompletedAt,
			"abandoned_at":     c.AbandonedAt,
			"version":          gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected != 1 {
		return false, nil
	}
	c.Version++
	return true, nil
}
