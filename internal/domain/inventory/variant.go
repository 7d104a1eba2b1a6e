package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/channel"
)

// Variant is a sellable unit. LocalQuantity is the authoritative on-hand count.
type Variant struct {
	ID            uuid.UUID
	SKU           string
	Name          string
	UnitPrice     decimal.Decimal
	LocalQuantity int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewVariant creates a variant with a generated ID
func NewVariant(sku, name string, unitPrice decimal.Decimal, quantity int) (*Variant, error) {
	if sku == "" {
		return nil, ErrEmptySKU
	}
	if quantity < 0 {
		return nil, ErrNegativeQuantity
	}
	now := time.Now()
	return &Variant{
		ID:            uuid.New(),
		SKU:           sku,
		Name:          name,
		UnitPrice:     unitPrice,
		LocalQuantity: quantity,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// ChannelRecord is the last known quantity of a variant on one channel.
// It caches remote truth and is never authoritative.
type ChannelRecord struct {
	VariantID    uuid.UUID
	Channel      channel.Channel
	Quantity     int
	LastSyncedAt time.Time
}

// CatalogEntry is a variant together with its channel records, as read for a sync pass
type CatalogEntry struct {
	Variant
	Records map[channel.Channel]ChannelRecord
}

// Record returns the cached record for ch, if any
func (e CatalogEntry) Record(ch channel.Channel) (ChannelRecord, bool) {
	r, ok := e.Records[ch]
	return r, ok
}

// LineItem is one (variant, quantity) pair of a reservation or release
type LineItem struct {
	VariantID uuid.UUID
	Quantity  int
}

// MergeLineItems folds items that reference the same variant and rejects
// non-positive quantities. Input order of first occurrence is kept.
func MergeLineItems(items []LineItem) ([]LineItem, error) {
	idx := make(map[uuid.UUID]int, len(items))
	merged := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrNonPositiveQuantity
		}
		if i, ok := idx[item.VariantID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		idx[item.VariantID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

// Adjustment sets a variant's on-hand quantity to an absolute value
type Adjustment struct {
	VariantID   uuid.UUID
	NewQuantity int
	Reason      string
}

// BulkAdjustResult reports the outcome of a batch of adjustments
type BulkAdjustResult struct {
	Applied       []AppliedAdjustment
	Skipped       []SkippedAdjustment
	AuditFailures []AuditWriteError
}

// AppliedAdjustment is one adjustment that was written
type AppliedAdjustment struct {
	VariantID   uuid.UUID
	OldQuantity int
	NewQuantity int
	Delta       int
}

// SkippedAdjustment is one adjustment that was not applied
type SkippedAdjustment struct {
	VariantID uuid.UUID
	Reason    string
}
