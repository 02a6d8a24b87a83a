package models

import (
	"time"
)

const (
	ConditionRaw    = "RAW"
	ConditionGraded = "GRADED"
)

const (
	StatusOwned  = "OWNED"
	StatusSold   = "SOLD"
	StatusTraded = "TRADED"
)

// Ownership records one physical copy (or stack of copies) of a card:
// grading, acquisition cost, and where it lives.
type Ownership struct {
	OwnershipUUID string     `json:"ownership_uuid" gorm:"primaryKey"`
	TenantID      string     `json:"tenant_id" gorm:"not null;index;default:local"`
	SchemaVersion string     `json:"schema_version" gorm:"default:v1"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at" gorm:"index"`

	CardUUID string `json:"card_uuid" gorm:"not null;index"`

	ConditionType string   `json:"condition_type"` // RAW | GRADED
	GradeScale    string   `json:"grade_scale"`    // PSA | BGS | SGC | RAW
	GradeValue    string   `json:"grade_value"`    // "10", "9.5", ...
	CertNo        string   `json:"cert_no"`
	AcquiredDate  string   `json:"acquired_date"`
	PricePaid     *float64 `json:"price_paid"`
	Currency      string   `json:"currency" gorm:"default:USD"`
	Source        string   `json:"source"`
	Location      string   `json:"location"`
	Quantity      int      `json:"quantity" gorm:"default:1"`
	Status        string   `json:"status"` // OWNED | SOLD | TRADED
	Notes         string   `json:"notes"`
}
