package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/verustcode/adreport/pkg/logger"
)

// sqlitePragmas are applied in order to the mirror connection before migration.
// The mirror holds no foreign keys yet, so enabling them up front is safe.
var sqlitePragmas = []struct {
	name  string
	value string
}{
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
	{"busy_timeout", "5000"},
	{"foreign_keys", "ON"},
}

func openSQLite(path string) gorm.Dialector {
	return sqlite.Open(path)
}

// configureSQLite pins the pool to one connection, which serializes snapshot
// writes from concurrent poll goroutines, and applies sqlitePragmas.
// A pragma that fails is logged and skipped.
func configureSQLite(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	applied := make([]zap.Field, 0, len(sqlitePragmas))
	for _, p := range sqlitePragmas {
		if err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)).Error; err != nil {
			logger.Warn("Failed to apply SQLite pragma", zap.String("pragma", p.name), zap.Error(err))
			continue
		}
		applied = append(applied, zap.String(p.name, p.value))
	}

	logger.Debug("SQLite connection configured", applied...)
	return nil
}
