package knowledge

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Symptom is one askable item of the question bank. Code is the business key
// and never changes after creation.
type Symptom struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string    `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Description string    `gorm:"column:description;type:text;not null" json:"description"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Symptom) TableName() string { return "symptom" }

func (s *Symptom) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *Symptom) Category() string {
	if s == nil {
		return CategoryUncategorized
	}
	return SymptomCategory(s.Code)
}
