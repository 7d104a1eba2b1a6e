package handler

import (
	"context"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/application/reconciliation"
	"github.com/storefront/backend/internal/domain/channel"
	"github.com/storefront/backend/internal/infrastructure/marketplace"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/tests/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// syncFixture wires the real engine and coordinator over an in-memory store
type syncFixture struct {
	store       *testutil.Store
	engine      *reconciliation.Engine
	coordinator *scheduler.SyncCoordinator
	router      *gin.Engine
}

func newSyncFixture(t *testing.T, adapters ...channel.Adapter) *syncFixture {
	t.Helper()

	store := testutil.NewStore(t)
	reg, err := marketplace.NewRegistry(adapters...)
	require.NoError(t, err)
	engine := reconciliation.NewEngine(store.Ledger, store.Orders, reg, reconciliation.DefaultConfig(), nil)
	coordinator := scheduler.NewSyncCoordinator(engine, scheduler.DefaultCoordinatorConfig(), zap.NewNop())
	t.Cleanup(func() {
		_ = coordinator.Shutdown(context.Background())
	})

	sync := NewSyncHandler(coordinator, engine)
	inv := NewInventoryHandler(store.Ledger)

	router := gin.New()
	router.Use(middleware.RequestID())
	api := router.Group("/api/v1")
	api.POST("/sync/inventory", sync.TriggerInventorySync)
	api.POST("/sync/orders", sync.TriggerOrderSync)
	api.GET("/sync/status", sync.GetStatus)
	api.GET("/sync/history", sync.GetHistory)
	api.POST("/sync/schedule", sync.Schedule)
	api.DELETE("/sync/schedule", sync.Unschedule)
	api.GET("/sync/health", sync.GetHealth)
	api.POST("/inventory/adjustments", inv.BulkAdjust)
	api.GET("/inventory/variants/:id/audit", inv.ListAudit)

	return &syncFixture{store: store, engine: engine, coordinator: coordinator, router: router}
}
