package database

import (
	"log"

	"gorm.io/gorm"
)

// RunMigrations applies custom migrations AutoMigrate cannot express.
func RunMigrations(db *gorm.DB) error {
	if err := cleanupDuplicateLiveCards(db); err != nil {
		return err
	}
	return createLiveCanonicalKeyIndex(db)
}

// createLiveCanonicalKeyIndex enforces the dedup invariant at the store
// level: one live card per (tenant_id, canonical_key). The index is partial
// so a soft-deleted row keeps its key without blocking a fresh row from
// taking it over.
func createLiveCanonicalKeyIndex(db *gorm.DB) error {
	return db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS ux_cards_tenant_canonical_live
		ON cards (tenant_id, canonical_key)
		WHERE deleted_at IS NULL
	`).Error
}

// cleanupDuplicateLiveCards soft-deletes older duplicates before the unique
// index is created, keeping the most recently updated row per key. Runs
// before createLiveCanonicalKeyIndex so databases written by pre-index
// versions can still migrate.
func cleanupDuplicateLiveCards(db *gorm.DB) error {
	if !db.Migrator().HasTable("cards") {
		return nil
	}

	result := db.Exec(`
		UPDATE cards
		SET deleted_at = CURRENT_TIMESTAMP
		WHERE deleted_at IS NULL
		  AND card_uuid NOT IN (
			SELECT card_uuid FROM cards c2
			WHERE c2.deleted_at IS NULL
			  AND c2.updated_at = (
				SELECT MAX(c3.updated_at) FROM cards c3
				WHERE c3.tenant_id = c2.tenant_id
				  AND c3.canonical_key = c2.canonical_key
				  AND c3.deleted_at IS NULL
			  )
		  )
	`)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("Soft-deleted %d duplicate live cards before unique index creation", result.RowsAffected)
	}
	return nil
}
