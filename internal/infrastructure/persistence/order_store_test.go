package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/channel"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

func newChannelOrder(id string, status channel.OrderStatus, items ...channel.OrderItem) channel.Order {
	return channel.Order{
		ExternalID:   id,
		Channel:      channel.Etsy,
		Status:       status,
		NativeStatus: "paid",
		CustomerName: "Ada",
		Currency:     "USD",
		PlacedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Items:        items,
	}
}

func TestGormOrderStore_CreateFromChannel(t *testing.T) {
	ctx := context.Background()

	t.Run("stores order and decrements stock", func(t *testing.T) {
		db := setupTestDB(t)
		ledger := NewGormInventoryLedger(db, zap.NewNop())
		store := NewGormOrderStore(db, zap.NewNop())
		v := seedVariant(t, ledger, "MUG", 5)

		o := order.FromChannel(newChannelOrder("R-1", channel.OrderStatusProcessing,
			channel.OrderItem{ExternalID: "T-1", SKU: "MUG", Title: "Mug", Quantity: 2, UnitPrice: decimal.NewFromInt(12)},
		))
		result, err := store.CreateFromChannel(ctx, o)
		require.NoError(t, err)
		assert.Empty(t, result.Warnings)

		assert.Equal(t, 3, quantityOf(t, ledger, "MUG"))
		entries, err := ledger.ListAudit(ctx, v.ID, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, -2, entries[0].QuantityChange)
		assert.Equal(t, inventory.ChangeTypeReserved, entries[0].ChangeType)
		assert.Equal(t, "ETSY order R-1", entries[0].Reason)

		stored, err := store.FindByExternalID(ctx, channel.Etsy, "R-1")
		require.NoError(t, err)
		require.Len(t, stored.Items, 1)
		require.NotNil(t, stored.Items[0].VariantID)
		assert.Equal(t, v.ID, *stored.Items[0].VariantID)
		assert.True(t, stored.TotalAmount.Equal(decimal.NewFromInt(24)))
	})

	t.Run("duplicate is rejected without touching stock", func(t *testing.T) {
		db := setupTestDB(t)
		ledger := NewGormInventoryLedger(db, zap.NewNop())
		store := NewGormOrderStore(db, zap.NewNop())
		seedVariant(t, ledger, "MUG", 5)

		src := newChannelOrder("R-2", channel.OrderStatusPending,
			channel.OrderItem{SKU: "MUG", Quantity: 1, UnitPrice: decimal.NewFromInt(12)})
		_, err := store.CreateFromChannel(ctx, order.FromChannel(src))
		require.NoError(t, err)

		_, err = store.CreateFromChannel(ctx, order.FromChannel(src))
		assert.ErrorIs(t, err, order.ErrDuplicateOrder)
		assert.Equal(t, 4, quantityOf(t, ledger, "MUG"))

		exists, err := store.ExistsByExternalID(ctx, channel.Etsy, "R-2")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("unknown sku is skipped with a warning", func(t *testing.T) {
		db := setupTestDB(t)
		ledger := NewGormInventoryLedger(db, zap.NewNop())
		store := NewGormOrderStore(db, zap.NewNop())
		seedVariant(t, ledger, "MUG", 5)

		o := order.FromChannel(newChannelOrder("R-3", channel.OrderStatusProcessing,
			channel.OrderItem{SKU: "MUG", Quantity: 1, UnitPrice: decimal.NewFromInt(12)},
			channel.OrderItem{SKU: "GHOST", Quantity: 1, UnitPrice: decimal.NewFromInt(3)},
		))
		result, err := store.CreateFromChannel(ctx, o)
		require.NoError(t, err)

		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "GHOST")
		assert.Equal(t, 4, quantityOf(t, ledger, "MUG"))

		stored, err := store.FindByExternalID(ctx, channel.Etsy, "R-3")
		require.NoError(t, err)
		assert.Len(t, stored.Items, 2, "unmatched items are still recorded on the order")
	})

	t.Run("oversold quantity floors at zero", func(t *testing.T) {
		db := setupTestDB(t)
		ledger := NewGormInventoryLedger(db, zap.NewNop())
		store := NewGormOrderStore(db, zap.NewNop())
		v := seedVariant(t, ledger, "MUG", 2)

		o := order.FromChannel(newChannelOrder("R-4", channel.OrderStatusShipped,
			channel.OrderItem{SKU: "MUG", Quantity: 5, UnitPrice: decimal.NewFromInt(12)}))
		result, err := store.CreateFromChannel(ctx, o)
		require.NoError(t, err)

		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "floored at zero")
		assert.Equal(t, 0, quantityOf(t, ledger, "MUG"))

		entries, err := ledger.ListAudit(ctx, v.ID, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, -2, entries[0].QuantityChange)
	})

	t.Run("cancelled order does not consume stock", func(t *testing.T) {
		db := setupTestDB(t)
		ledger := NewGormInventoryLedger(db, zap.NewNop())
		store := NewGormOrderStore(db, zap.NewNop())
		v := seedVariant(t, ledger, "MUG", 5)

		o := order.FromChannel(newChannelOrder("R-5", channel.OrderStatusCancelled,
			channel.OrderItem{SKU: "MUG", Quantity: 3, UnitPrice: decimal.NewFromInt(12)}))
		_, err := store.CreateFromChannel(ctx, o)
		require.NoError(t, err)

		assert.Equal(t, 5, quantityOf(t, ledger, "MUG"))
		entries, err := ledger.ListAudit(ctx, v.ID, 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestGormOrderStore_FindByExternalID_NotFound(t *testing.T) {
	store := NewGormOrderStore(setupTestDB(t), nil)
	_, err := store.FindByExternalID(context.Background(), channel.Amazon, "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
