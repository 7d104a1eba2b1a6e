package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/channel"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/tests/testutil"
)

func TestTriggerInventorySync_ReportsAndCorrects(t *testing.T) {
	amazon := testutil.NewFakeAdapter(channel.Amazon).WithListing("MUG", 3).WithListing("CAP", 5)
	etsy := testutil.NewFakeAdapter(channel.Etsy).WithListing("MUG", 10)
	f := newSyncFixture(t, amazon, etsy)
	f.store.SeedVariant(t, "MUG", 10)
	f.store.SeedVariant(t, "CAP", 5)

	w := testutil.PerformRequest(t, f.router, http.MethodPost, "/api/v1/sync/inventory",
		map[string]any{"channels": []string{"amazon"}, "auto_sync": true}, nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := testutil.DecodeData[dto.TriggerSyncResponse](t, w)
	require.NotNil(t, resp.Results)
	assert.Equal(t, "inventory: 1 channels, 1 discrepancies, 1 corrected, 1 in sync, 0 errors", resp.Message)
	assert.True(t, resp.Results.AutoCorrect)
	require.Len(t, resp.Results.Discrepancies, 1)
	assert.Equal(t, "MUG", resp.Results.Discrepancies[0].SKU)
	assert.Equal(t, "QUANTITY_MISMATCH", resp.Results.Discrepancies[0].Issue)

	assert.Equal(t, []testutil.Push{{SKU: "MUG", Quantity: 10}}, amazon.Pushes())
	assert.Zero(t, etsy.FetchCalls(), "only the selected channel is read")
}

func TestTriggerInventorySync_EmptyBodyReportsOnly(t *testing.T) {
	amazon := testutil.NewFakeAdapter(channel.Amazon)
	f := newSyncFixture(t, amazon)
	f.store.SeedVariant(t, "MUG", 4)

	w := testutil.PerformRequest(t, f.router, http.MethodPost, "/api/v1/sync/inventory", nil, nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := testutil.DecodeData[dto.TriggerSyncResponse](t, w)
	require.Len(t, resp.Results.Discrepancies, 1)
	assert.Equal(t, "NOT_FOUND_REMOTE", resp.Results.Discrepancies[0].Issue)
	assert.Nil(t, resp.Results.Discrepancies[0].RemoteQuantity)
	assert.Empty(t, amazon.Pushes())
}

func TestTriggerInventorySync_RejectsUnknownChannel(t *testing.T) {
	f := newSyncFixture(t, testutil.NewFakeAdapter(channel.Amazon))

	w := testutil.PerformRequest(t, f.router, http.MethodPost, "/api/v1/sync/inventory",
		map[string]any{"channels": []string{"EBAY"}}, nil)

	testutil.AssertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
}

func TestTriggerInventorySync_ConflictWhileRunning(t *testing.T) {
	fetching := make(chan struct{}, 1)
	unblock := make(chan struct{})
	amazon := testutil.NewFakeAdapter(channel.Amazon).OnFetch(func(context.Context) {
		select {
		case fetching <- struct{}{}:
			<-unblock
		default:
		}
	})
	f := newSyncFixture(t, amazon)
	f.store.SeedVariant(t, "MUG", 1)

	done := make(chan int, 1)
	go func() {
		w := testutil.PerformRequest(t, f.router, http.MethodPost, "/api/v1/sync/inventory", nil, nil)
		done <- w.Code
	}()
	<-fetching

	status := testutil.PerformRequest(t, f.router, http.MethodGet, "/api/v1/sync/status", nil, nil)
	assert.Equal(t, "RUNNING", testutil.DecodeData[dto.SyncStatusResponse](t, status).Status)

	w := testutil.PerformRequest(t, f.router, http.MethodPost, "/api/v1/sync/inventory", nil, nil)
	testutil.AssertErrorCode(t, w, http.StatusConflict, dto.ErrCodeSyncInProgress)

	orders := testutil.PerformRequest(t, f.router, http.MethodPost, "/api/v1/sync/orders", nil, nil)
	testutil.AssertErrorCode(t, orders, http.StatusConflict, dto.ErrCodeSyncInProgress)

	close(unblock)
	assert.Equal(t, http.StatusOK, <-done)

	status = testutil.PerformRequest(t, f.router, http.MethodGet, "/api/v1/sync/status", nil, nil)
	st := testutil.DecodeData[dto.SyncStatusResponse](t, status)
	assert.Equal(t, "IDLE", st.Status)
	assert.Equal(t, 1, st.TotalRuns)
}

func TestTriggerInventorySync_CatalogUnavailable(t *testing.T) {
	f := newSyncFixture(t, testutil.NewFakeAdapter(channel.Amazon))
	sqlDB, err := f.store.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := testutil.PerformRequest(t, f.router, http.MethodPost, "/api/v1/sync/inventory", nil, nil)

	testutil.AssertErrorCode(t, w, http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable)

	history := testutil.PerformRequest(t, f.router, http.MethodGet, "/api/v1/sync/history", nil, nil)
	runs := testutil.DecodeData[[]dto.SyncRunResponse](t, history)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].Failed)
	assert.Equal(t, "failed", runs[0].Outcome)
}

func TestTriggerOrderSync_IngestsOnce(t *testing.T) {
	placed := time.Now().Add(-time.Hour)
	amazon := testutil.NewFakeAdapter(channel.Amazon).WithOrders(channel.Order{
		ExternalID: "114-1",
		Status:     channel.OrderStatusProcessing,
		PlacedAt:   placed,
		Items:      []channel.OrderItem{{SKU: "MUG", Quantity: 2}},
	})
	f := newSyncFixture(t, amazon)
	f.store.SeedVariant(t, "MUG", 10)

	since := time.Now().Add(-48 * time.Hour).UTC().Truncate(time.Second)
	body := map[string]any{"since": since.Format(time.RFC3339)}

	first := testutil.PerformRequest(t, f.router, http.MethodPost, "/api/v1/sync/orders", body, nil)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	resp := testutil.DecodeData[dto.TriggerSyncResponse](t, first)
	assert.Equal(t, "ORDERS", resp.Results.Kind)
	assert.Equal(t, "orders: 1 created, 0 skipped, 0 errors", resp.Message)

	second := testutil.PerformRequest(t, f.router, http.MethodPost, "/api/v1/sync/orders", body, nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "orders: 0 created, 1 skipped, 0 errors", testutil.DecodeData[dto.TriggerSyncResponse](t, second).Message)

	assert.Equal(t, 8, f.store.Quantity(t, "MUG"))
	require.Len(t, amazon.OrdersSince(), 2)
	assert.True(t, amazon.OrdersSince()[0].Equal(since))
}

func TestGetHistory_NewestFirstAndLimit(t *testing.T) {
	f := newSyncFixture(t, testutil.NewFakeAdapter(channel.Amazon))

	for range 3 {
		w := testutil.PerformRequest(t, f.router, http.MethodPost, "/api/v1/sync/inventory", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := testutil.PerformRequest(t, f.router, http.MethodGet, "/api/v1/sync/history?limit=2", nil, nil)
	runs := testutil.DecodeData[[]dto.SyncRunResponse](t, w)
	require.Len(t, runs, 2)
	assert.False(t, runs[0].StartTime.Before(runs[1].StartTime))

	bad := testutil.PerformRequest(t, f.router, http.MethodGet, "/api/v1/sync/history?limit=500", nil, nil)
	testutil.AssertErrorCode(t, bad, http.StatusBadRequest, dto.ErrCodeValidation)
}

func TestSchedule_EnableAndDisable(t *testing.T) {
	f := newSyncFixture(t, testutil.NewFakeAdapter(channel.Amazon))

	w := testutil.PerformRequest(t, f.router, http.MethodPost, "/api/v1/sync/schedule",
		map[string]any{"interval_minutes": 30}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	st := testutil.DecodeData[dto.SyncStatusResponse](t, w)
	assert.True(t, st.Scheduled)
	assert.Equal(t, 30, st.IntervalMinutes)

	w = testutil.PerformRequest(t, f.router, http.MethodDelete, "/api/v1/sync/schedule", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, testutil.DecodeData[dto.SyncStatusResponse](t, w).Scheduled)

	// Stopping twice is fine
	w = testutil.PerformRequest(t, f.router, http.MethodDelete, "/api/v1/sync/schedule", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSchedule_RejectsNonPositiveInterval(t *testing.T) {
	f := newSyncFixture(t, testutil.NewFakeAdapter(channel.Amazon))

	w := testutil.PerformRequest(t, f.router, http.MethodPost, "/api/v1/sync/schedule",
		map[string]any{"interval_minutes": 0}, nil)

	testutil.AssertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	assert.False(t, f.coordinator.GetStatus().Scheduled)
}

func TestGetHealth(t *testing.T) {
	amazon := testutil.NewFakeAdapter(channel.Amazon)
	etsy := testutil.NewFakeAdapter(channel.Etsy).FailPing(errors.New("connection refused"))
	f := newSyncFixture(t, amazon, etsy)

	w := testutil.PerformRequest(t, f.router, http.MethodGet, "/api/v1/sync/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := testutil.DecodeData[dto.SyncHealthResponse](t, w)
	assert.False(t, resp.Healthy)
	require.Len(t, resp.Channels, 2)
	assert.True(t, resp.Channels[0].Healthy)
	assert.Contains(t, resp.Channels[1].Error, "connection refused")

	w = testutil.PerformRequest(t, f.router, http.MethodGet, "/api/v1/sync/health?channel=amazon", nil, nil)
	resp = testutil.DecodeData[dto.SyncHealthResponse](t, w)
	assert.True(t, resp.Healthy)
	assert.Len(t, resp.Channels, 1)
}
