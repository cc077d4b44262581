package models

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionMove   AuditAction = "move"
	AuditActionStatus AuditAction = "status"
)

// AuditEntityIDSize bounds EntityID. Upload entries use the stored file name.
const AuditEntityIDSize = 255

type AuditLog struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`

	UserID   string `gorm:"size:36;index"`
	UserName string `gorm:"size:100"` // denormalized, survives user deletion

	// e.g. "brand", "product", "order"
	EntityType string `gorm:"size:50;index"`
	EntityID   string `gorm:"size:255;index"`

	Action      AuditAction `gorm:"size:20"`
	Description string      `gorm:"type:text"`

	BeforeData string `gorm:"type:text"`
	AfterData  string `gorm:"type:text"`
}
