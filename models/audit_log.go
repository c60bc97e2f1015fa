package models

import "time"

const AuditTable = "tt_audit_logs"

// Audit action tags.
const (
	AuditLogin          = "login"
	AuditCheckout       = "checkout"
	AuditCheckin        = "checkin"
	AuditMarkMissing    = "mark_missing"
	AuditResolveMissing = "resolve_missing"
)

// AuditLog records who did what to which entity. Append-only.
type AuditLog struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	PersonnelID string `gorm:"type:uuid;index" json:"personnelId"`

	Action     string `gorm:"size:40;index;not null" json:"action"`
	EntityType string `gorm:"size:40" json:"entityType,omitempty"`
	EntityID   string `gorm:"size:120" json:"entityId,omitempty"`
	Detail     string `gorm:"size:500" json:"detail,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (AuditLog) TableName() string { return AuditTable }
