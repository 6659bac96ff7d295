package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/verustcode/adreport/pkg/logger"
)

// migrateDeduplicateSnapshots removes duplicate report_snapshots rows so the
// unique index on report_id can be created. The most recently fetched row wins.
//
// The migration is idempotent: it is a no-op when the table does not exist
// or already holds one row per report.
func migrateDeduplicateSnapshots(db *gorm.DB) error {
	const table = "report_snapshots"

	var tableExists bool
	err := db.Raw("SELECT COUNT(*) > 0 FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&tableExists).Error
	if err != nil {
		return fmt.Errorf("failed to check table existence for %s: %w", table, err)
	}
	if !tableExists {
		logger.Debug("Table does not exist yet, skipping deduplication", zap.String("table", table))
		return nil
	}

	var duplicates int64
	err = db.Raw(`SELECT COUNT(*) FROM (
		SELECT report_id FROM report_snapshots GROUP BY report_id HAVING COUNT(*) > 1
	)`).Scan(&duplicates).Error
	if err != nil {
		return fmt.Errorf("failed to count duplicate snapshots: %w", err)
	}
	if duplicates == 0 {
		return nil
	}

	logger.Info("Removing duplicate report snapshots", zap.Int64("reports", duplicates))

	res := db.Exec(`DELETE FROM report_snapshots WHERE id NOT IN (
		SELECT id FROM (
			SELECT id, ROW_NUMBER() OVER (PARTITION BY report_id ORDER BY fetched_at DESC, id DESC) AS rn
			FROM report_snapshots
		) WHERE rn = 1
	)`)
	if res.Error != nil {
		return fmt.Errorf("failed to delete duplicate snapshots: %w", res.Error)
	}

	logger.Info("Duplicate report snapshots removed", zap.Int64("rows", res.RowsAffected))
	return nil
}
