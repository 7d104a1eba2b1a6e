package channel

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Adapter is the uniform contract every marketplace integration satisfies.
// Every error returned by an Adapter method matches ErrChannelUnavailable.
type Adapter interface {
	// Channel returns the channel this adapter serves
	Channel() Channel

	// FetchRemoteInventory lists every SKU the marketplace currently carries
	FetchRemoteInventory(ctx context.Context) ([]RemoteInventoryItem, error)

	// FetchOrders lists orders created at or after since. An empty statuses
	// slice means all statuses.
	FetchOrders(ctx context.Context, since time.Time, statuses []OrderStatus) ([]Order, error)

	// PushQuantity sets the absolute available quantity of sku on the
	// marketplace. Pushing the same quantity twice has no further effect.
	PushQuantity(ctx context.Context, sku string, quantity int) error

	// Ping performs the cheapest authenticated read the marketplace offers
	Ping(ctx context.Context) error
}

// RemoteInventoryItem is one SKU as seen by a marketplace
type RemoteInventoryItem struct {
	SKU        string
	Quantity   int
	ExternalID string
}

// ---------------------------------------------------------------------------
// OrderStatus
// ---------------------------------------------------------------------------

// OrderStatus is the internal order lifecycle every marketplace status maps to
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// IsValid returns true if the status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// ConsumesStock reports whether an order in this status holds inventory
func (s OrderStatus) ConsumesStock() bool {
	return s != OrderStatusCancelled
}

// ---------------------------------------------------------------------------
// Channel orders
// ---------------------------------------------------------------------------

// Order is a marketplace order already mapped onto internal vocabulary
type Order struct {
	ExternalID    string
	Channel       Channel
	Status        OrderStatus
	NativeStatus  string
	CustomerName  string
	CustomerEmail string
	TotalAmount   decimal.Decimal
	Currency      string
	PlacedAt      time.Time
	Items         []OrderItem
}

// OrderItem is one line of a marketplace order
type OrderItem struct {
	ExternalID string
	SKU        string
	Title      string
	Quantity   int
	UnitPrice  decimal.Decimal
}
