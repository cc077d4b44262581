package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base gives every catalog entity an opaque string id and timestamps.
type Base struct {
	ID        string `gorm:"size:36;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
