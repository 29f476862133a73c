package knowledge

import (
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mindcheck-backend/internal/domain"
	kdomain "github.com/yungbote/mindcheck-backend/internal/domain/knowledge"
	"github.com/yungbote/mindcheck-backend/internal/platform/dbctx"
	"github.com/yungbote/mindcheck-backend/internal/platform/logger"
)

type SymptomRepo interface {
	Create(dbc dbctx.Context, symptoms []*types.Symptom) ([]*types.Symptom, error)
	List(dbc dbctx.Context) ([]*types.Symptom, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Symptom, error)
	GetByCodes(dbc dbctx.Context, codes []string) ([]*types.Symptom, error)
	UpdateDescription(dbc dbctx.Context, id uuid.UUID, description string) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type symptomRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSymptomRepo(db *gorm.DB, baseLog *logger.Logger) SymptomRepo {
	return &symptomRepo{db: db, log: baseLog.With("repo", "SymptomRepo")}
}

func (r *symptomRepo) Create(dbc dbctx.Context, symptoms []*types.Symptom) ([]*types.Symptom, error) {
	if len(symptoms) == 0 {
		return []*types.Symptom{}, nil
	}
	if err := dbc.DB(r.db).Create(&symptoms).Error; err != nil {
		return nil, err
	}
	return symptoms, nil
}

// List returns every symptom in natural code order (G2 before G10).
func (r *symptomRepo) List(dbc dbctx.Context) ([]*types.Symptom, error) {
	var out []*types.Symptom
	if err := dbc.DB(r.db).Order("code ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return kdomain.CompareCodes(out[i].Code, out[j].Code) < 0 })
	return out, nil
}

func (r *symptomRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Symptom, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var s types.Symptom
	err := dbc.DB(r.db).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *symptomRepo) GetByCodes(dbc dbctx.Context, codes []string) ([]*types.Symptom, error) {
	var out []*types.Symptom
	if len(codes) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("code IN ?", codes).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateDescription is the only symptom mutation; codes are immutable.
func (r *symptomRepo) UpdateDescription(dbc dbctx.Context, id uuid.UUID, description string) error {
	return dbc.DB(r.db).
		Model(&types.Symptom{}).
		Where("id = ?", id).
		Update("description", description).Error
}

func (r *symptomRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.Symptom{}).Error
}
