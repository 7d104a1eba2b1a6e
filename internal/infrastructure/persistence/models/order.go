package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/channel"
	"github.com/storefront/backend/internal/domain/order"
)

// OrderModel is the persistence model for an ingested channel order
type OrderModel struct {
	BaseModel
	ExternalID    string           `gorm:"type:varchar(100);not null;uniqueIndex:idx_orders_channel_external,priority:2"`
	Channel       channel.Channel  `gorm:"type:varchar(20);not null;uniqueIndex:idx_orders_channel_external,priority:1"`
	Status        string           `gorm:"type:varchar(20);not null"`
	NativeStatus  string           `gorm:"type:varchar(50)"`
	CustomerName  string           `gorm:"type:varchar(255)"`
	CustomerEmail string           `gorm:"type:varchar(255)"`
	TotalAmount   decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Currency      string           `gorm:"type:varchar(3)"`
	PlacedAt      time.Time        `gorm:"not null"`
	Items         []OrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		ID:            m.ID,
		ExternalID:    m.ExternalID,
		Channel:       m.Channel,
		Status:        channel.OrderStatus(m.Status),
		NativeStatus:  m.NativeStatus,
		CustomerName:  m.CustomerName,
		CustomerEmail: m.CustomerEmail,
		TotalAmount:   m.TotalAmount,
		Currency:      m.Currency,
		PlacedAt:      m.PlacedAt,
		CreatedAt:     m.CreatedAt,
		Items:         make([]order.Item, len(m.Items)),
	}
	for i := range m.Items {
		o.Items[i] = m.Items[i].ToDomain()
	}
	return o
}

// OrderModelFromDomain creates a persistence model, items included
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{
		BaseModel: BaseModel{
			ID:        o.ID,
			CreatedAt: o.CreatedAt,
			UpdatedAt: o.CreatedAt,
		},
		ExternalID:    o.ExternalID,
		Channel:       o.Channel,
		Status:        string(o.Status),
		NativeStatus:  o.NativeStatus,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		TotalAmount:   o.TotalAmount,
		Currency:      o.Currency,
		PlacedAt:      o.PlacedAt,
		Items:         make([]OrderItemModel, len(o.Items)),
	}
	for i, it := range o.Items {
		m.Items[i] = OrderItemModel{
			ID:        it.ID,
			OrderID:   o.ID,
			VariantID: it.VariantID,
			SKU:       it.SKU,
			Title:     it.Title,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}
	return m
}

// OrderItemModel is one line of an ingested order
type OrderItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariantID *uuid.UUID      `gorm:"type:uuid;index"`
	SKU       string          `gorm:"type:varchar(100);not null"`
	Title     string          `gorm:"type:varchar(255)"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Item
func (m *OrderItemModel) ToDomain() order.Item {
	return order.Item{
		ID:        m.ID,
		OrderID:   m.OrderID,
		VariantID: m.VariantID,
		SKU:       m.SKU,
		Title:     m.Title,
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
	}
}
