package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// AddIndexes adds composite indexes that struct tags cannot express.
// The existence check reads pg_indexes, so it only runs on PostgreSQL.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Inbox listing
		{"notifications", "idx_notifications_receiver_status", "receiver_id, status"},
		{"notifications", "idx_notifications_sender_bulk", "sender_id, bulk_identifier"},

		// Active distribution per type
		{"point_distributions", "idx_point_distributions_type_active", "type, active"},

		// Lend info
		{"lend_records", "idx_lend_records_reader_returned", "reader_id, returned"},

		// Analytics
		{"page_logs", "idx_page_logs_page_time", "page, time"},
		{"module_logs", "idx_module_logs_module_time", "module_name, time"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			log.Printf("Index %s already exists, skipping", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}

// MigrateDatabase runs the migrations that AutoMigrate does not cover
func MigrateDatabase(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
