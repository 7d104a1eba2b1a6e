//go:build integration

package integration

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/application/reconciliation"
	"github.com/storefront/backend/internal/domain/channel"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/marketplace"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"github.com/storefront/backend/tests/testutil"
)

func TestSchemaConstraints(t *testing.T) {
	tdb := NewTestDB(t)
	store := tdb.Store()
	mug := store.SeedVariant(t, "MUG", 3)

	t.Run("quantity cannot go negative", func(t *testing.T) {
		err := tdb.DB.Exec("UPDATE variants SET local_quantity = -1 WHERE id = ?", mug.ID).Error
		assert.Error(t, err)
	})

	t.Run("audit log is append-only", func(t *testing.T) {
		_, err := store.Ledger.BulkAdjust(context.Background(), []inventory.Adjustment{{VariantID: mug.ID, NewQuantity: 5, Reason: "count"}})
		require.NoError(t, err)

		err = tdb.DB.Exec("UPDATE inventory_audit_log SET quantity_change = 0").Error
		assert.ErrorContains(t, err, "append-only")
		err = tdb.DB.Exec("DELETE FROM inventory_audit_log").Error
		assert.ErrorContains(t, err, "append-only")
	})

	t.Run("unknown channel rejected", func(t *testing.T) {
		err := tdb.DB.Exec(
			"INSERT INTO channel_inventory_records (variant_id, channel, quantity, last_synced_at) VALUES (?, 'EBAY', 1, NOW())",
			mug.ID).Error
		assert.Error(t, err)
	})
}

func TestMigrationsRoundTrip(t *testing.T) {
	tdb := NewTestDB(t)

	m, err := migration.New(tdb.SqlDB, migration.WithLogger(zap.NewNop()))
	require.NoError(t, err)

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.EqualValues(t, 3, version)
	assert.False(t, dirty)

	require.NoError(t, m.Down())
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Zero(t, version)

	require.NoError(t, m.Up())
	// Up on an up-to-date schema is not an error
	require.NoError(t, m.Up())
}

func TestReserveForOrder_RollsBackOnShortfall(t *testing.T) {
	tdb := NewTestDB(t)
	store := tdb.Store()
	mug := store.SeedVariant(t, "MUG", 5)
	hat := store.SeedVariant(t, "HAT", 1)

	err := store.Ledger.ReserveForOrder(context.Background(), []inventory.LineItem{
		{VariantID: mug.ID, Quantity: 2},
		{VariantID: hat.ID, Quantity: 3},
	}, "order 42")

	assert.ErrorIs(t, err, inventory.ErrInsufficientInventory)
	assert.Equal(t, 5, store.Quantity(t, "MUG"))
	assert.Equal(t, 1, store.Quantity(t, "HAT"))
	assert.Empty(t, store.Audit(t, "MUG"))
}

func TestRunSync_CorrectsChannelsOnPostgres(t *testing.T) {
	tdb := NewTestDB(t)
	store := tdb.Store()
	store.SeedVariant(t, "MUG", 8)
	store.SeedVariant(t, "CAP", 2)
	store.SeedVariant(t, "SOLD-OUT", 0)

	amazon := testutil.NewFakeAdapter(channel.Amazon).WithListing("MUG", 8).WithListing("CAP", 5)
	etsy := testutil.NewFakeAdapter(channel.Etsy).WithListing("MUG", 1)
	reg, err := marketplace.NewRegistry(amazon, etsy)
	require.NoError(t, err)
	engine := reconciliation.NewEngine(store.Ledger, store.Orders, reg, reconciliation.DefaultConfig(), zap.NewNop())
	ctx := context.Background()

	run, err := engine.RunSync(ctx, nil, true)
	require.NoError(t, err)

	assert.Equal(t, "success", run.Outcome())
	// CAP differs on Amazon; MUG differs on Etsy and CAP is missing there
	assert.Len(t, run.Discrepancies, 3)
	assert.ElementsMatch(t, []testutil.Push{{SKU: "CAP", Quantity: 2}}, amazon.Pushes())
	// A SKU missing remotely is reported, never created
	assert.Equal(t, []testutil.Push{{SKU: "MUG", Quantity: 8}}, etsy.Pushes())

	capAudit := store.Audit(t, "CAP")
	require.Len(t, capAudit, 1)
	assert.Equal(t, inventory.ChangeTypeSyncCorrection, capAudit[0].ChangeType)
	assert.Equal(t, -3, capAudit[0].QuantityChange)

	again, err := engine.RunSync(ctx, nil, true)
	require.NoError(t, err)
	require.Len(t, again.Discrepancies, 1)
	assert.Equal(t, reconciliation.IssueNotFoundRemote, again.Discrepancies[0].Issue)
	assert.Equal(t, 2, again.Channels[channel.Amazon].Skipped)
	assert.Equal(t, 1, again.Channels[channel.Etsy].Skipped)
}

func TestCreateFromChannel_ConcurrentDuplicates(t *testing.T) {
	tdb := NewTestDB(t)
	store := tdb.Store()
	store.SeedVariant(t, "MUG", 10)

	const workers = 5
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		dupes   int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o := order.FromChannel(channel.Order{
				ExternalID:  "A-1",
				Channel:     channel.Amazon,
				Status:      channel.OrderStatusProcessing,
				TotalAmount: decimal.NewFromInt(20),
				Currency:    "USD",
				PlacedAt:    time.Now(),
				Items:       []channel.OrderItem{{SKU: "MUG", Quantity: 2, UnitPrice: decimal.NewFromInt(10)}},
			})
			_, err := store.Orders.CreateFromChannel(context.Background(), o)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			default:
				assert.ErrorIs(t, err, order.ErrDuplicateOrder)
				dupes++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, dupes)
	assert.Equal(t, 8, store.Quantity(t, "MUG"), "stock is consumed exactly once")
}

func TestHTTPAPI_EndToEnd(t *testing.T) {
	tdb := NewTestDB(t)
	store := tdb.Store()
	mug := store.SeedVariant(t, "MUG", 4)

	amazon := testutil.NewFakeAdapter(channel.Amazon).WithListing("MUG", 9).WithOrders(channel.Order{
		ExternalID: "114-7",
		Status:     channel.OrderStatusShipped,
		PlacedAt:   time.Now().Add(-2 * time.Hour),
		Items:      []channel.OrderItem{{SKU: "MUG", Quantity: 1}},
	})
	reg, err := marketplace.NewRegistry(amazon)
	require.NoError(t, err)
	engine := reconciliation.NewEngine(store.Ledger, store.Orders, reg, reconciliation.DefaultConfig(), zap.NewNop())
	coordinator := scheduler.NewSyncCoordinator(engine, scheduler.DefaultCoordinatorConfig(), zap.NewNop())
	t.Cleanup(func() { _ = coordinator.Shutdown(context.Background()) })

	jwtService := auth.NewJWTService(config.JWTConfig{Secret: "integration", AdminRole: "admin"})
	token, err := jwtService.GenerateToken("ops", "admin", time.Hour)
	require.NoError(t, err)
	admin := map[string]string{"Authorization": "Bearer " + token}

	api := router.NewEngine(router.Options{
		AdminGuard: middleware.AdminAuth(jwtService, zap.NewNop()),
	}, router.Handlers{
		Sync:      handler.NewSyncHandler(coordinator, engine),
		Inventory: handler.NewInventoryHandler(store.Ledger),
		System:    handler.NewSystemHandler("storefront", "test", &persistence.Database{DB: tdb.DB}),
	})

	w := testutil.PerformRequest(t, api, http.MethodGet, "/ready", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.PerformRequest(t, api, http.MethodPost, "/api/v1/sync/orders", nil, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "orders: 1 created, 0 skipped, 0 errors", testutil.DecodeData[dto.TriggerSyncResponse](t, w).Message)
	assert.Equal(t, 3, store.Quantity(t, "MUG"))

	w = testutil.PerformRequest(t, api, http.MethodPost, "/api/v1/sync/inventory", map[string]any{"auto_sync": true}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	q, ok := amazon.RemoteQuantity("MUG")
	require.True(t, ok)
	assert.Equal(t, 3, q)

	w = testutil.PerformRequest(t, api, http.MethodGet, "/api/v1/inventory/variants/"+mug.ID.String()+"/audit", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := testutil.DecodeData[[]dto.AuditEntryResponse](t, w)
	require.Len(t, entries, 2)
	types := []string{entries[0].ChangeType, entries[1].ChangeType}
	assert.ElementsMatch(t, []string{string(inventory.ChangeTypeReserved), string(inventory.ChangeTypeSyncCorrection)}, types)

	w = testutil.PerformRequest(t, api, http.MethodGet, "/api/v1/sync/history", nil, nil)
	runs := testutil.DecodeData[[]dto.SyncRunResponse](t, w)
	require.Len(t, runs, 2)
	assert.Equal(t, "INVENTORY", runs[0].Kind)
	assert.Equal(t, "ORDERS", runs[1].Kind)
}
