package services

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/codyseavey/cardvault/internal/database"
	"github.com/codyseavey/cardvault/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// A file-backed database per test: ":memory:" gives every pooled
	// connection its own database, which breaks cross-connection reads.
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	return db
}

func testRecord() CardRecord {
	return CardRecord{
		Sport:   models.SportBaseball,
		Year:    intPtr(1990),
		Brand:   "Topps",
		SetName: "1990 Topps Baseball",
		Subset:  "Base Set",
		CardNo:  "1",
		Player:  "Nolan Ryan",
	}
}

func liveCardCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.Card{}).Where("deleted_at IS NULL").Count(&count).Error; err != nil {
		t.Fatalf("count cards: %v", err)
	}
	return count
}

func TestUpsertCreatesThenUpdates(t *testing.T) {
	db := newTestDB(t)
	engine, err := NewUpsertEngine("local")
	if err != nil {
		t.Fatalf("NewUpsertEngine: %v", err)
	}

	status, err := engine.Upsert(db, testRecord())
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if status != UpsertCreated {
		t.Errorf("first upsert = %v, want created", status)
	}

	rec := testRecord()
	rec.Team = "Rangers"
	status, err = engine.Upsert(db, rec)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if status != UpsertUpdated {
		t.Errorf("second upsert = %v, want updated", status)
	}

	if got := liveCardCount(t, db); got != 1 {
		t.Errorf("live cards = %d, want 1", got)
	}

	var card models.Card
	if err := db.First(&card).Error; err != nil {
		t.Fatalf("load card: %v", err)
	}
	if card.Team != "Rangers" {
		t.Errorf("update did not overwrite fields: team = %q", card.Team)
	}
	if card.CanonicalKey != testRecord().Key() {
		t.Errorf("canonical key = %q, want %q", card.CanonicalKey, testRecord().Key())
	}
}

func TestUpsertSurvivesCacheReset(t *testing.T) {
	// Simulates two runs: the second run's empty cache must fall through
	// to the store and find the existing row.
	db := newTestDB(t)
	engine, err := NewUpsertEngine("local")
	if err != nil {
		t.Fatalf("NewUpsertEngine: %v", err)
	}

	if _, err := engine.Upsert(db, testRecord()); err != nil {
		t.Fatalf("first run upsert: %v", err)
	}
	engine.Reset()

	status, err := engine.Upsert(db, testRecord())
	if err != nil {
		t.Fatalf("second run upsert: %v", err)
	}
	if status != UpsertUpdated {
		t.Errorf("second run upsert = %v, want updated", status)
	}
	if got := liveCardCount(t, db); got != 1 {
		t.Errorf("live cards = %d, want 1", got)
	}
}

func TestUpsertNewRowVisibleBeforeCommit(t *testing.T) {
	db := newTestDB(t)
	engine, err := NewUpsertEngine("local")
	if err != nil {
		t.Fatalf("NewUpsertEngine: %v", err)
	}

	tx := db.Begin()
	if tx.Error != nil {
		t.Fatalf("begin: %v", tx.Error)
	}
	defer tx.Rollback()

	if _, err := engine.Upsert(tx, testRecord()); err != nil {
		t.Fatalf("create in tx: %v", err)
	}

	// A second occurrence inside the same uncommitted transaction must
	// find the row, even with a cold cache.
	engine.Reset()
	status, err := engine.Upsert(tx, testRecord())
	if err != nil {
		t.Fatalf("repeat in tx: %v", err)
	}
	if status != UpsertUpdated {
		t.Errorf("repeat in tx = %v, want updated", status)
	}
}

func TestUpsertAfterSoftDeleteCreatesFreshRow(t *testing.T) {
	db := newTestDB(t)
	engine, err := NewUpsertEngine("local")
	if err != nil {
		t.Fatalf("NewUpsertEngine: %v", err)
	}

	if _, err := engine.Upsert(db, testRecord()); err != nil {
		t.Fatalf("initial upsert: %v", err)
	}

	var original models.Card
	if err := db.First(&original).Error; err != nil {
		t.Fatalf("load original: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	if err := db.Model(&models.Card{}).
		Where("card_uuid = ?", original.CardUUID).
		Update("deleted_at", now).Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	// Re-importing the identical record takes over the key with a fresh
	// id; the deleted row is not resurrected.
	engine.Reset()
	status, err := engine.Upsert(db, testRecord())
	if err != nil {
		t.Fatalf("re-import after delete: %v", err)
	}
	if status != UpsertCreated {
		t.Errorf("re-import after delete = %v, want created", status)
	}

	var live models.Card
	if err := db.Where("deleted_at IS NULL").First(&live).Error; err != nil {
		t.Fatalf("load live row: %v", err)
	}
	if live.CardUUID == original.CardUUID {
		t.Error("soft-deleted row was resurrected instead of creating a fresh id")
	}
	if live.CanonicalKey != original.CanonicalKey {
		t.Errorf("live row key = %q, want %q", live.CanonicalKey, original.CanonicalKey)
	}

	var total int64
	db.Model(&models.Card{}).Count(&total)
	if total != 2 {
		t.Errorf("total rows = %d, want 2 (deleted row retained)", total)
	}
}

func TestUpsertTenantScoping(t *testing.T) {
	db := newTestDB(t)

	engineA, err := NewUpsertEngine("tenant-a")
	if err != nil {
		t.Fatalf("NewUpsertEngine: %v", err)
	}
	engineB, err := NewUpsertEngine("tenant-b")
	if err != nil {
		t.Fatalf("NewUpsertEngine: %v", err)
	}

	if status, _ := engineA.Upsert(db, testRecord()); status != UpsertCreated {
		t.Fatalf("tenant-a upsert = %v, want created", status)
	}
	if status, _ := engineB.Upsert(db, testRecord()); status != UpsertCreated {
		t.Errorf("tenant-b upsert = %v, want created (uniqueness is per tenant)", status)
	}
}
