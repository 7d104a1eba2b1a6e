package models

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for tables keyed by uuid
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// All returns every model, in dependency order, for AutoMigrate in tests and tooling
func All() []any {
	return []any{
		&VariantModel{},
		&ChannelInventoryRecordModel{},
		&InventoryAuditLogModel{},
		&OrderModel{},
		&OrderItemModel{},
	}
}
