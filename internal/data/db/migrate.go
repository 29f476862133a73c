package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/mindcheck-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(domain.Models()...)
}

// EnsureIndexes creates the composite indexes gorm tags cannot express. The
// statements are valid on both postgres and sqlite.
func EnsureIndexes(db *gorm.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{
			// One answer per symptom per consultation.
			name: "idx_consultation_answer_symptom",
			sql: `CREATE UNIQUE INDEX IF NOT EXISTS idx_consultation_answer_symptom
				ON consultation_answer (consultation_id, symptom_code);`,
		},
		{
			name: "idx_consultation_user_created",
			sql:  `CREATE INDEX IF NOT EXISTS idx_consultation_user_created ON consultation (user_id, created_at DESC);`,
		},
		{
			name: "idx_user_diagnosis_user_diagnosed",
			sql:  `CREATE INDEX IF NOT EXISTS idx_user_diagnosis_user_diagnosed ON user_diagnosis (user_id, diagnosed_at DESC);`,
		},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}
