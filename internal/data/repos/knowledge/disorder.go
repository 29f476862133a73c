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

type DisorderRepo interface {
	Create(dbc dbctx.Context, disorders []*types.MentalDisorder) ([]*types.MentalDisorder, error)
	List(dbc dbctx.Context) ([]*types.MentalDisorder, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MentalDisorder, error)
	GetByCode(dbc dbctx.Context, code string) (*types.MentalDisorder, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type disorderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDisorderRepo(db *gorm.DB, baseLog *logger.Logger) DisorderRepo {
	return &disorderRepo{db: db, log: baseLog.With("repo", "DisorderRepo")}
}

func (r *disorderRepo) Create(dbc dbctx.Context, disorders []*types.MentalDisorder) ([]*types.MentalDisorder, error) {
	if len(disorders) == 0 {
		return []*types.MentalDisorder{}, nil
	}
	if err := dbc.DB(r.db).Create(&disorders).Error; err != nil {
		return nil, err
	}
	return disorders, nil
}

func (r *disorderRepo) List(dbc dbctx.Context) ([]*types.MentalDisorder, error) {
	var out []*types.MentalDisorder
	if err := dbc.DB(r.db).Order("code ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return kdomain.CompareCodes(out[i].Code, out[j].Code) < 0 })
	return out, nil
}

func (r *disorderRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MentalDisorder, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc, "id = ?", id)
}

func (r *disorderRepo) GetByCode(dbc dbctx.Context, code string) (*types.MentalDisorder, error) {
	if code == "" {
		return nil, nil
	}
	return r.first(dbc, "code = ?", code)
}

func (r *disorderRepo) first(dbc dbctx.Context, query string, arg interface{}) (*types.MentalDisorder, error) {
	var d types.MentalDisorder
	err := dbc.DB(r.db).Where(query, arg).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *disorderRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.MentalDisorder{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *disorderRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.MentalDisorder{}).Error
}
