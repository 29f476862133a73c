package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

func sqliteDialector(path string) gorm.Dialector {
	if path == "" {
		path = MemoryDSN
	}
	return sqlite.Open(path)
}

// configureSQLite pins the pool to one connection: every :memory: connection
// is its own database, and sqlite serializes writers anyway.
func configureSQLite(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec(`PRAGMA busy_timeout = 5000;`).Error; err != nil {
		return fmt.Errorf("sqlite busy_timeout: %w", err)
	}
	return nil
}
