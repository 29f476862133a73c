package consultation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SymptomDetail is a by-value copy of a reported symptom at diagnosis time.
type SymptomDetail struct {
	Code        string   `json:"code"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Severity    Severity `json:"severity"`
	Weight      int      `json:"weight"`
}

// CandidateSnapshot records how a disorder ranked when the diagnosis was made.
type CandidateSnapshot struct {
	DisorderCode    string   `json:"disorder_code"`
	DisorderName    string   `json:"disorder_name"`
	RuleCode        string   `json:"rule_code"`
	Confidence      int      `json:"confidence"`
	Matches         bool     `json:"matches"`
	MissingSymptoms []string `json:"missing_symptoms"`
}

// UserDiagnosis is the historical outcome of a completed consultation. All
// descriptive fields are copies; later knowledge base edits never touch it.
// MentalDisorderID is nil when no rule matched (no diagnosis).
type UserDiagnosis struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID  `gorm:"type:uuid;column:user_id;not null;index" json:"user_id"`
	ConsultationID   uuid.UUID  `gorm:"type:uuid;column:consultation_id;not null;uniqueIndex" json:"consultation_id"`
	MentalDisorderID *uuid.UUID `gorm:"type:uuid;column:mental_disorder_id;index" json:"mental_disorder_id,omitempty"`

	DisorderCode    string `gorm:"column:disorder_code" json:"disorder_code,omitempty"`
	DisorderName    string `gorm:"column:disorder_name" json:"disorder_name,omitempty"`
	RuleCode        string `gorm:"column:rule_code" json:"rule_code,omitempty"`
	ConfidenceLevel int    `gorm:"column:confidence_level;not null" json:"confidence_level"`
	Recommendation  string `gorm:"column:recommendation;type:text;not null" json:"recommendation"`

	SymptomsDetails datatypes.JSONSlice[SymptomDetail]     `gorm:"column:symptoms_details;not null" json:"symptoms_details"`
	Candidates      datatypes.JSONSlice[CandidateSnapshot] `gorm:"column:candidates" json:"candidates,omitempty"`

	DiagnosedAt time.Time `gorm:"column:diagnosed_at;not null;index" json:"diagnosed_at"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (UserDiagnosis) TableName() string { return "user_diagnosis" }

func (d *UserDiagnosis) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (d *UserDiagnosis) HasDisorder() bool {
	return d != nil && d.MentalDisorderID != nil
}
