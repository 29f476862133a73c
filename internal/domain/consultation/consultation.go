package consultation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusAbandoned  Status = "abandoned"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// Consultation is one interactive self-assessment session owned by a single
// user. Version is bumped on every state write and guards against stale updates.
type Consultation struct {
	ID              uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID                   `gorm:"type:uuid;column:user_id;not null;index" json:"user_id"`
	Status          Status                      `gorm:"column:status;not null;index" json:"status"`
	Progress        int                         `gorm:"column:progress;not null" json:"progress"`
	CurrentSymptoms datatypes.JSONSlice[string] `gorm:"column:current_symptoms;not null" json:"current_symptoms"`
	QuestionCount   int                         `gorm:"column:question_count;not null" json:"question_count"`
	Version         int                         `gorm:"column:version;not null" json:"-"`

	StartedAt   time.Time  `gorm:"column:started_at;not null" json:"started_at"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	AbandonedAt *time.Time `gorm:"column:abandoned_at" json:"abandoned_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (Consultation) TableName() string { return "consultation" }

func (c *Consultation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CurrentSymptoms == nil {
		c.CurrentSymptoms = datatypes.JSONSlice[string]{}
	}
	return nil
}
