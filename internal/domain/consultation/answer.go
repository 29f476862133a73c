package consultation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Answer is one immutable entry of a consultation's question/answer log.
// (consultation_id, seq) is unique so concurrent appends cannot interleave.
type Answer struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConsultationID uuid.UUID `gorm:"type:uuid;column:consultation_id;not null;uniqueIndex:idx_consultation_answer_seq,priority:1" json:"consultation_id"`
	Seq            int       `gorm:"column:seq;not null;uniqueIndex:idx_consultation_answer_seq,priority:2" json:"seq"`
	SymptomCode    string    `gorm:"column:symptom_code;not null;index" json:"symptom_code"`
	Severity       Severity  `gorm:"column:severity;not null" json:"severity"`
	Weight         int       `gorm:"column:weight;not null" json:"weight"`
	Priority       int       `gorm:"column:priority;not null" json:"priority"`
	RuleCode       string    `gorm:"column:rule_code" json:"rule_code,omitempty"`
	Category       string    `gorm:"column:category;not null" json:"category"`
	QuestionType   string    `gorm:"column:question_type;not null" json:"question_type"`
	AnsweredAt     time.Time `gorm:"column:answered_at;not null" json:"answered_at"`
}

func (Answer) TableName() string { return "consultation_answer" }

func (a *Answer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
