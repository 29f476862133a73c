package knowledge

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MentalDisorder struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code           string    `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Name           string    `gorm:"column:name;not null" json:"name"`
	Description    string    `gorm:"column:description;type:text" json:"description"`
	Recommendation string    `gorm:"column:recommendation;type:text" json:"recommendation"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (MentalDisorder) TableName() string { return "mental_disorder" }

func (d *MentalDisorder) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (d *MentalDisorder) Category() string {
	if d == nil {
		return CategoryUncategorized
	}
	return DisorderCategory(d.Code)
}
