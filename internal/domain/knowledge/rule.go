package knowledge

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DiagnosisRule links one disorder to the symptom codes that together support
// it. Several rules may target the same disorder; they are alternatives.
type DiagnosisRule struct {
	ID               uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	RuleCode         string                      `gorm:"column:rule_code;not null;uniqueIndex" json:"rule_code"`
	MentalDisorderID uuid.UUID                   `gorm:"type:uuid;column:mental_disorder_id;not null;index" json:"mental_disorder_id"`
	SymptomCodes     datatypes.JSONSlice[string] `gorm:"column:symptom_codes;not null" json:"symptom_codes"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (DiagnosisRule) TableName() string { return "diagnosis_rule" }

func (r *DiagnosisRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *DiagnosisRule) References(code string) bool {
	if r == nil {
		return false
	}
	for _, c := range r.SymptomCodes {
		if c == code {
			return true
		}
	}
	return false
}

const (
	VariantPrimary     = "Primary"
	VariantSecondary   = "Secondary"
	VariantAlternative = "Alternative"

	ComplexitySimple   = "Simple"
	ComplexityStandard = "Standard"
	ComplexityComplex  = "Complex"
)

// RuleVariant reads the A/B suffix convention of rule codes (R2A, R2B).
func RuleVariant(ruleCode string) string {
	code := NormalizeCode(ruleCode)
	switch {
	case strings.HasSuffix(code, "A"):
		return VariantPrimary
	case strings.HasSuffix(code, "B"):
		return VariantSecondary
	default:
		return VariantAlternative
	}
}

func RuleComplexity(symptomCount int) string {
	switch {
	case symptomCount <= 3:
		return ComplexitySimple
	case symptomCount <= 6:
		return ComplexityStandard
	default:
		return ComplexityComplex
	}
}
