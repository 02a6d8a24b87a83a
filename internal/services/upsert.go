package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"gorm.io/gorm"

	"github.com/codyseavey/cardvault/internal/models"
)

// CardRecord is one parsed card heading into the catalog, from either the
// bulk importer or the CSV import path.
type CardRecord struct {
	Sport    models.Sport
	Year     *int
	Brand    string
	SetName  string
	Subset   string
	CardNo   string
	Player   string
	Team     string
	Parallel string
	Variant  string
	PrintRun *int
	Notes    string

	ExternalSource string
	ExternalID     string
	AttributesJSON string
	VariationsJSON string
	ParallelsJSON  string
}

// Key returns the record's canonical key.
func (r CardRecord) Key() string {
	return CanonicalKey(r.Year, r.Brand, r.SetName, r.Subset, r.CardNo, r.Parallel, r.Variant)
}

type UpsertStatus string

const (
	UpsertCreated UpsertStatus = "created"
	UpsertUpdated UpsertStatus = "updated"
)

// runCacheSize bounds the in-memory tier. Eviction is harmless: a re-lookup
// falls through to the store, which already holds the row because creates
// are persisted immediately within the run transaction.
const runCacheSize = 8192

// UpsertEngine maps card records onto persisted rows by canonical key,
// guaranteeing one live row per key within a tenant. Lookups go through a
// two-tier cache: an in-memory LRU scoped to one run, then the store.
//
// The engine assumes a single writer per run. Concurrent API writes are
// covered separately by the store's partial unique index.
type UpsertEngine struct {
	tenant string
	cache  *lru.Cache[string, *models.Card]
}

func NewUpsertEngine(tenant string) (*UpsertEngine, error) {
	if tenant == "" {
		tenant = models.DefaultTenant
	}
	cache, err := lru.New[string, *models.Card](runCacheSize)
	if err != nil {
		return nil, err
	}
	return &UpsertEngine{tenant: tenant, cache: cache}, nil
}

// Upsert looks up or creates the live row for rec's canonical key inside tx
// and overwrites its mutable fields from rec. New rows are persisted
// immediately so later lookups in the same transaction see them before
// commit.
func (e *UpsertEngine) Upsert(tx *gorm.DB, rec CardRecord) (UpsertStatus, error) {
	key := rec.Key()

	row, ok := e.cache.Get(key)
	if !ok {
		var found models.Card
		err := tx.Where("tenant_id = ? AND canonical_key = ? AND deleted_at IS NULL", e.tenant, key).
			First(&found).Error
		switch {
		case err == nil:
			row = &found
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = nil
		default:
			return "", err
		}
	}

	now := time.Now().UTC().Truncate(time.Second)

	if row == nil {
		row = &models.Card{
			CardUUID:      "c_" + uuid.New().String(),
			TenantID:      e.tenant,
			SchemaVersion: models.SchemaVersion,
			CreatedAt:     now,
			UpdatedAt:     now,
			CanonicalKey:  key,
		}
		applyRecord(row, rec)
		if err := tx.Create(row).Error; err != nil {
			return "", err
		}
		e.cache.Add(key, row)
		return UpsertCreated, nil
	}

	// Keep the cache pointing at the authoritative row so a later record
	// with the same key cannot trigger a second insert.
	e.cache.Add(key, row)

	applyRecord(row, rec)
	row.UpdatedAt = now
	if err := tx.Save(row).Error; err != nil {
		return "", err
	}
	return UpsertUpdated, nil
}

// Reset clears the in-memory tier. Call between runs; the cache must never
// outlive the run that filled it.
func (e *UpsertEngine) Reset() {
	e.cache.Purge()
}

func applyRecord(row *models.Card, rec CardRecord) {
	row.Sport = rec.Sport
	row.Year = rec.Year
	row.Brand = rec.Brand
	row.SetName = rec.SetName
	row.Subset = rec.Subset
	row.CardNo = rec.CardNo
	row.Player = rec.Player
	row.Team = rec.Team
	row.Parallel = rec.Parallel
	row.Variant = rec.Variant
	row.PrintRun = rec.PrintRun
	if rec.Notes != "" {
		row.Notes = rec.Notes
	}
	row.ExternalSource = rec.ExternalSource
	row.ExternalID = rec.ExternalID
	row.AttributesJSON = rec.AttributesJSON
	row.VariationsJSON = rec.VariationsJSON
	row.ParallelsJSON = rec.ParallelsJSON
}
