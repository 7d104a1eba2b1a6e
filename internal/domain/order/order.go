package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/channel"
)

// ErrDuplicateOrder is returned when (channel, external id) already exists
var ErrDuplicateOrder = errors.New("order: already ingested")

// Order is a local order materialized from a channel order
type Order struct {
	ID            uuid.UUID
	ExternalID    string
	Channel       channel.Channel
	Status        channel.OrderStatus
	NativeStatus  string
	CustomerName  string
	CustomerEmail string
	TotalAmount   decimal.Decimal
	Currency      string
	PlacedAt      time.Time
	CreatedAt     time.Time
	Items         []Item
}

// Item is one line of a local order. VariantID is nil when the SKU did not resolve.
type Item struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	VariantID *uuid.UUID
	SKU       string
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

// FromChannel builds a local order from a marketplace order. An unknown
// status falls back to PENDING.
func FromChannel(src channel.Order) *Order {
	status := src.Status
	if !status.IsValid() {
		status = channel.OrderStatusPending
	}
	o := &Order{
		ID:            uuid.New(),
		ExternalID:    src.ExternalID,
		Channel:       src.Channel,
		Status:        status,
		NativeStatus:  src.NativeStatus,
		CustomerName:  src.CustomerName,
		CustomerEmail: src.CustomerEmail,
		TotalAmount:   src.TotalAmount,
		Currency:      src.Currency,
		PlacedAt:      src.PlacedAt,
		CreatedAt:     time.Now(),
		Items:         make([]Item, 0, len(src.Items)),
	}
	for _, it := range src.Items {
		o.Items = append(o.Items, Item{
			ID:        uuid.New(),
			OrderID:   o.ID,
			SKU:       it.SKU,
			Title:     it.Title,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	if o.TotalAmount.IsZero() {
		o.TotalAmount = o.ItemsTotal()
	}
	return o
}

// ItemsTotal sums quantity * unit price over all items
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// CreateResult reports what happened to stock while an order was stored
type CreateResult struct {
	Order    *Order
	Warnings []string
}

// Store persists channel orders
type Store interface {
	// ExistsByExternalID reports whether an order from ch with this external id exists
	ExistsByExternalID(ctx context.Context, ch channel.Channel, externalID string) (bool, error)

	// CreateFromChannel stores the order and its items and, for orders that
	// consume stock, decrements matching variants with RESERVED audit entries,
	// all in one transaction. Returns ErrDuplicateOrder on a key conflict.
	CreateFromChannel(ctx context.Context, o *Order) (*CreateResult, error)

	// FindByExternalID loads an order with its items
	FindByExternalID(ctx context.Context, ch channel.Channel, externalID string) (*Order, error)
}
