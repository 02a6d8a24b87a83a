package models

import (
	"time"
)

type Sport string

const (
	SportBaseball   Sport = "Baseball"
	SportBasketball Sport = "Basketball"
	SportFootball   Sport = "Football"
	SportHockey     Sport = "Hockey"
)

// DefaultTenant is the partition every deployment uses today. Uniqueness of
// canonical keys is scoped by tenant so the schema is reusable if that ever
// changes.
const DefaultTenant = "local"

const SchemaVersion = "v1"

type Card struct {
	CardUUID      string     `json:"card_uuid" gorm:"primaryKey"`
	TenantID      string     `json:"tenant_id" gorm:"not null;index;default:local"`
	SchemaVersion string     `json:"schema_version" gorm:"default:v1"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at" gorm:"index"`

	Year     *int   `json:"year"`
	Brand    string `json:"brand"`
	SetName  string `json:"set_name"`
	Subset   string `json:"subset"`
	CardNo   string `json:"card_no"`
	Player   string `json:"player" gorm:"index"`
	Team     string `json:"team"`
	Sport    Sport  `json:"sport"`
	Parallel string `json:"parallel"`
	Variant  string `json:"variant"`
	PrintRun *int   `json:"print_run"`
	Notes    string `json:"notes"`

	Wishlisted bool `json:"wishlisted"`

	// CanonicalKey is the dedup fingerprint. The (tenant_id, canonical_key)
	// pair is unique among live rows; see database.Initialize for the
	// partial index.
	CanonicalKey string `json:"canonical_key" gorm:"index"`

	// Pass-through payload from third-party card lists. Opaque to the core.
	ExternalSource string `json:"external_source,omitempty"`
	ExternalID     string `json:"external_id,omitempty"`
	AttributesJSON string `json:"attributes_json,omitempty"`
	VariationsJSON string `json:"variations_json,omitempty"`
	ParallelsJSON  string `json:"parallels_json,omitempty"`
}

// Live reports whether the card has not been soft-deleted.
func (c *Card) Live() bool {
	return c.DeletedAt == nil
}

type CardListResult struct {
	Cards      []Card `json:"cards"`
	TotalCount int64  `json:"total_count"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}
