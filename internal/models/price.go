package models

import (
	"time"
)

// Price is a sale-price comparable observed for a card: one sold lot, ask,
// or bid from an external marketplace.
type Price struct {
	PriceUUID     string     `json:"price_uuid" gorm:"primaryKey"`
	TenantID      string     `json:"tenant_id" gorm:"not null;index;default:local"`
	SchemaVersion string     `json:"schema_version" gorm:"default:v1"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at" gorm:"index"`

	CardUUID string `json:"card_uuid" gorm:"not null;index"`

	ConditionType   string   `json:"condition_type"`
	GradeScale      string   `json:"grade_scale"`
	GradeValue      string   `json:"grade_value"`
	SaleDate        string   `json:"sale_date"`
	SourceMarket    string   `json:"source_market"`
	SourceLotURL    string   `json:"source_lot_url"`
	AmountAllIn     *float64 `json:"amount_all_in"`
	Currency        string   `json:"currency" gorm:"default:USD"`
	FeesIncluded    string   `json:"fees_included"`      // "Y" or "N"
	BuyerPremiumPct string   `json:"buyer_premium_pct"`
	IsAskOrBid      string   `json:"is_ask_or_bid"`      // SOLD | ASK | BID
	Confidence      string   `json:"confidence"`         // HIGH | MEDIUM | LOW
	Notes           string   `json:"notes"`
}
