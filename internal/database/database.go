// Package database provides database initialization and connection management.
// It uses GORM with SQLite for embedded database storage, with driver abstraction
// for future extensibility to support other relational databases.
package database

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/verustcode/adreport/internal/model"
	"github.com/verustcode/adreport/pkg/errors"
	"github.com/verustcode/adreport/pkg/logger"
)

const (
	// DefaultDBPath is the snapshot mirror database used when no path is configured
	DefaultDBPath = "./data/adreport.db"
)

var (
	db   *gorm.DB
	once sync.Once
)

// Init initializes the database connection at DefaultDBPath and performs auto-migration.
// This function is safe to call multiple times; only the first call will take effect.
func Init() error {
	return InitWithPath(DefaultDBPath)
}

// InitWithPath initializes the database at the given path.
func InitWithPath(dbPath string) error {
	var initErr error
	once.Do(func() {
		initErr = initDB(dbPath)
	})
	return initErr
}

// initDB creates the database connection and runs migrations
func initDB(dbPath string) error {
	logger.Info("Initializing database", zap.String("path", dbPath))

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("Failed to create database directory", zap.Error(err), zap.String("dir", dir))
		return errors.Wrap(errors.ErrCodeDBConnection, "failed to create database directory", err)
	}

	conn, err := gorm.Open(openSQLite(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		return errors.Wrap(errors.ErrCodeDBConnection, "failed to connect to database", err)
	}

	if err := configureSQLite(conn); err != nil {
		logger.Error("Failed to configure SQLite connection", zap.Error(err))
		return errors.Wrap(errors.ErrCodeDBConnection, "failed to configure database connection", err)
	}

	if err := migrate(conn); err != nil {
		return err
	}

	db = conn
	logger.Info("Database initialized successfully")
	return nil
}

// migrate runs auto-migration for all models
func migrate(db *gorm.DB) error {
	logger.Info("Running database migrations")

	// Collapse duplicate snapshot rows before the unique index on report_id is created
	if err := migrateDeduplicateSnapshots(db); err != nil {
		logger.Error("Failed to deduplicate report snapshots", zap.Error(err))
		return errors.Wrap(errors.ErrCodeDBMigration, "failed to deduplicate report snapshots", err)
	}

	models := model.AllModels()
	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run database migrations", zap.Error(err))
		return errors.Wrap(errors.ErrCodeDBMigration, "failed to run database migrations", err)
	}

	logger.Info("Database migrations completed", zap.Int("models", len(models)))
	return nil
}

// Get returns the database instance.
// Panics if the database hasn't been initialized.
func Get() *gorm.DB {
	if db == nil {
		panic("database not initialized, call Init first")
	}
	return db
}

// Close closes the database connection
func Close() error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	logger.Info("Closing database connection")
	return sqlDB.Close()
}

// ResetForTesting resets the database state for testing purposes.
// This allows re-initialization of the database in tests.
// WARNING: Only use this function in tests!
func ResetForTesting() {
	if db != nil {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		db = nil
	}
	once = sync.Once{}
}

// Transaction executes a function within a database transaction
func Transaction(fn func(tx *gorm.DB) error) error {
	return Get().Transaction(fn)
}

// HealthCheck performs a simple health check on the database
func HealthCheck() error {
	if db == nil {
		return errors.New(errors.ErrCodeDBConnection, "database not initialized")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(errors.ErrCodeDBConnection, "failed to get database connection", err)
	}
	return sqlDB.Ping()
}
