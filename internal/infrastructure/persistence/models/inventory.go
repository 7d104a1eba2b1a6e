package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/channel"
	"github.com/storefront/backend/internal/domain/inventory"
)

// VariantModel is the persistence model for a sellable variant
type VariantModel struct {
	BaseModel
	SKU           string                        `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name          string                        `gorm:"type:varchar(255);not null"`
	UnitPrice     decimal.Decimal               `gorm:"type:decimal(18,4);not null;default:0"`
	LocalQuantity int                           `gorm:"not null;default:0;check:local_quantity >= 0"`
	Records       []ChannelInventoryRecordModel `gorm:"foreignKey:VariantID;references:ID"`
}

// TableName returns the table name for GORM
func (VariantModel) TableName() string {
	return "variants"
}

// ToDomain converts the persistence model to a domain Variant
func (m *VariantModel) ToDomain() *inventory.Variant {
	return &inventory.Variant{
		ID:            m.ID,
		SKU:           m.SKU,
		Name:          m.Name,
		UnitPrice:     m.UnitPrice,
		LocalQuantity: m.LocalQuantity,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ToCatalogEntry converts the model and its preloaded records
func (m *VariantModel) ToCatalogEntry() inventory.CatalogEntry {
	entry := inventory.CatalogEntry{
		Variant: *m.ToDomain(),
		Records: make(map[channel.Channel]inventory.ChannelRecord, len(m.Records)),
	}
	for _, r := range m.Records {
		entry.Records[r.Channel] = r.ToDomain()
	}
	return entry
}

// VariantModelFromDomain creates a persistence model from a domain Variant
func VariantModelFromDomain(v *inventory.Variant) *VariantModel {
	return &VariantModel{
		BaseModel: BaseModel{
			ID:        v.ID,
			CreatedAt: v.CreatedAt,
			UpdatedAt: v.UpdatedAt,
		},
		SKU:           v.SKU,
		Name:          v.Name,
		UnitPrice:     v.UnitPrice,
		LocalQuantity: v.LocalQuantity,
	}
}

// ChannelInventoryRecordModel caches the last known quantity per (variant, channel)
type ChannelInventoryRecordModel struct {
	VariantID    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Channel      channel.Channel `gorm:"type:varchar(20);primaryKey"`
	Quantity     int             `gorm:"not null;default:0"`
	LastSyncedAt time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ChannelInventoryRecordModel) TableName() string {
	return "channel_inventory_records"
}

// ToDomain converts the persistence model to a domain ChannelRecord
func (m *ChannelInventoryRecordModel) ToDomain() inventory.ChannelRecord {
	return inventory.ChannelRecord{
		VariantID:    m.VariantID,
		Channel:      m.Channel,
		Quantity:     m.Quantity,
		LastSyncedAt: m.LastSyncedAt,
	}
}

// InventoryAuditLogModel is one append-only audit row
type InventoryAuditLogModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	VariantID      uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_variant_created,priority:1"`
	QuantityChange int       `gorm:"not null"`
	ChangeType     string    `gorm:"type:varchar(30);not null"`
	Reason         string    `gorm:"type:varchar(500)"`
	CreatedAt      time.Time `gorm:"not null;index:idx_audit_variant_created,priority:2"`
}

// TableName returns the table name for GORM
func (InventoryAuditLogModel) TableName() string {
	return "inventory_audit_log"
}

// ToDomain converts the persistence model to a domain AuditEntry
func (m *InventoryAuditLogModel) ToDomain() inventory.AuditEntry {
	return inventory.AuditEntry{
		ID:             m.ID,
		VariantID:      m.VariantID,
		QuantityChange: m.QuantityChange,
		ChangeType:     inventory.ChangeType(m.ChangeType),
		Reason:         m.Reason,
		CreatedAt:      m.CreatedAt,
	}
}

// AuditLogModelFromDomain creates a persistence model from a domain AuditEntry
func AuditLogModelFromDomain(e inventory.AuditEntry) *InventoryAuditLogModel {
	return &InventoryAuditLogModel{
		ID:             e.ID,
		VariantID:      e.VariantID,
		QuantityChange: e.QuantityChange,
		ChangeType:     string(e.ChangeType),
		Reason:         e.Reason,
		CreatedAt:      e.CreatedAt,
	}
}
