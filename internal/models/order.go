package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "new"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusProcessing,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, st := range OrderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Order is a customer lead. ProductIDs may point at products that have since
// been deleted. AdminComment is kept in the schema but no route writes it.
type Order struct {
	ID           string      `gorm:"size:36;primaryKey"`
	Phone        string      `gorm:"size:32;not null"`
	Comment      string      `gorm:"type:text"`
	AdminComment string      `gorm:"type:text"`
	ProductIDs   StringList  `gorm:"column:product_ids"`
	Status       OrderStatus `gorm:"size:20;not null;default:new;index"`
	CreatedAt    time.Time   `gorm:"autoCreateTime;<-:create;index"`
	UpdatedAt    time.Time
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = OrderStatusNew
	}
	if o.ProductIDs == nil {
		o.ProductIDs = StringList{}
	}
	return nil
}
