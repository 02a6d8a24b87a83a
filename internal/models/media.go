package models

import (
	"time"
)

const (
	MediaKindFront = "front"
	MediaKindBack  = "back"
)

// Media is one stored photo of a card or of an owned copy (e.g. a slab).
// The file itself lives on disk under the configured media directory; Path
// is relative to it.
type Media struct {
	MediaUUID     string     `json:"media_uuid" gorm:"primaryKey"`
	TenantID      string     `json:"tenant_id" gorm:"not null;index;default:local"`
	SchemaVersion string     `json:"schema_version" gorm:"default:v1"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at" gorm:"index"`

	CardUUID      string `json:"card_uuid" gorm:"index"`
	OwnershipUUID string `json:"ownership_uuid" gorm:"index"`

	Path          string `json:"path" gorm:"not null"`
	Kind          string `json:"kind"` // front | back
	SHA256        string `json:"sha256"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	FilesizeBytes int64  `json:"filesize_bytes"`
	Notes         string `json:"notes"`
}
