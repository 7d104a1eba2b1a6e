package dto

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/application/reconciliation"
	"github.com/storefront/backend/internal/domain/channel"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
)

func sampleRun() *reconciliation.SyncRun {
	remote := 4
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mismatch := reconciliation.Discrepancy{
		SKU: "MUG-BLUE", ProductName: "Blue mug", VariantID: uuid.New(),
		Channel: channel.Amazon, LocalQuantity: 7, RemoteQuantity: &remote,
		Issue: reconciliation.IssueQuantityMismatch,
	}
	missing := reconciliation.Discrepancy{
		SKU: "MUG-RED", ProductName: "Red mug", VariantID: uuid.New(),
		Channel: channel.Etsy, LocalQuantity: 2,
		Issue: reconciliation.IssueNotFoundRemote,
	}
	return &reconciliation.SyncRun{
		SyncID:      uuid.New(),
		Kind:        reconciliation.RunKindInventory,
		StartTime:   start,
		EndTime:     start.Add(1500 * time.Millisecond),
		AutoCorrect: true,
		Channels: map[channel.Channel]*reconciliation.ChannelResult{
			channel.Etsy:   {Channel: channel.Etsy, Errors: 1, Discrepancies: []reconciliation.Discrepancy{missing}},
			channel.Amazon: {Channel: channel.Amazon, Synced: 1, Skipped: 3, Discrepancies: []reconciliation.Discrepancy{mismatch}},
		},
		Discrepancies: []reconciliation.Discrepancy{mismatch, missing},
		Errors: []reconciliation.SyncError{
			{Channel: channel.Etsy, SKU: "MUG-RED", Op: "push quantity", Message: "listing not found"},
		},
	}
}

func TestNewSyncRunResponse(t *testing.T) {
	run := sampleRun()
	resp := NewSyncRunResponse(run)

	assert.Equal(t, run.SyncID.String(), resp.SyncID)
	assert.Equal(t, "INVENTORY", resp.Kind)
	assert.EqualValues(t, 1500, resp.DurationMs)
	assert.Equal(t, "partial", resp.Outcome)

	require.Len(t, resp.Channels, 2)
	assert.Equal(t, "AMAZON", resp.Channels[0].Channel, "channels follow canonical order")
	assert.Equal(t, "ETSY", resp.Channels[1].Channel)
	assert.Equal(t, 1, resp.Channels[0].Discrepancies)

	require.Len(t, resp.Discrepancies, 2)
	assert.Equal(t, 4, *resp.Discrepancies[0].RemoteQuantity)
	assert.Nil(t, resp.Discrepancies[1].RemoteQuantity)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "push quantity", resp.Errors[0].Op)
}

func TestNewSyncRunResponse_NotFoundRemoteSerializesNullQuantity(t *testing.T) {
	data, err := json.Marshal(NewSyncRunResponse(sampleRun()))
	require.NoError(t, err)

	var decoded struct {
		Discrepancies []map[string]any `json:"discrepancies"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Discrepancies, 2)
	v, present := decoded.Discrepancies[1]["remote_quantity"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestNewSyncRunResponse_Orders(t *testing.T) {
	run := &reconciliation.SyncRun{
		SyncID: uuid.New(),
		Kind:   reconciliation.RunKindOrders,
		Orders: &reconciliation.IngestResult{
			Synced: 2, Skipped: 1,
			Channels: map[channel.Channel]*reconciliation.ChannelIngestResult{
				channel.Etsy:   {Channel: channel.Etsy, Fetched: 1, Skipped: 1},
				channel.Amazon: {Channel: channel.Amazon, Fetched: 2, Synced: 2},
			},
			Warnings: []string{`AMAZON order A-1: sku "X" not found, item skipped`},
		},
	}

	resp := NewSyncRunResponse(run)
	require.NotNil(t, resp.Orders)
	assert.Equal(t, "orders: 2 created, 1 skipped, 0 errors", resp.Message)
	require.Len(t, resp.Orders.Channels, 2)
	assert.Equal(t, "AMAZON", resp.Orders.Channels[0].Channel)
	assert.Len(t, resp.Orders.Warnings, 1)
}

func TestNewSyncRunResponse_Nil(t *testing.T) {
	assert.Nil(t, NewSyncRunResponse(nil))
}

func TestNewSyncStatusResponse(t *testing.T) {
	run := sampleRun()
	resp := NewSyncStatusResponse(scheduler.Status{
		IsRunning: true,
		LastRun:   run,
		TotalRuns: 3,
		Scheduled: true,
		Interval:  15 * time.Minute,
	})

	assert.Equal(t, "RUNNING", resp.Status)
	assert.Equal(t, 15, resp.IntervalMinutes)
	require.NotNil(t, resp.LastRun)
	assert.Equal(t, run.SyncID.String(), resp.LastRun.SyncID)

	idle := NewSyncStatusResponse(scheduler.Status{})
	assert.Equal(t, "IDLE", idle.Status)
	assert.Nil(t, idle.LastRun)
}

func TestNewChannelHealthResponse(t *testing.T) {
	resp := NewChannelHealthResponse([]reconciliation.ChannelHealth{
		{Channel: channel.Amazon, Healthy: true, Latency: 42 * time.Millisecond},
		{Channel: channel.Etsy, Error: "connection refused"},
	})

	require.Len(t, resp, 2)
	assert.EqualValues(t, 42, resp[0].LatencyMs)
	assert.False(t, resp[1].Healthy)
	assert.Equal(t, "connection refused", resp[1].Error)
}

func TestBulkAdjustRequest_ToDomain(t *testing.T) {
	id := uuid.New()
	zero := 0
	req := BulkAdjustRequest{Adjustments: []AdjustmentItem{
		{VariantID: id.String(), NewQuantity: &zero, Reason: "stocktake"},
	}}

	adj := req.ToDomain()
	require.Len(t, adj, 1)
	assert.Equal(t, inventory.Adjustment{VariantID: id, NewQuantity: 0, Reason: "stocktake"}, adj[0])
}

func TestNewBulkAdjustResponse(t *testing.T) {
	applied := uuid.New()
	skipped := uuid.New()
	res := &inventory.BulkAdjustResult{
		Applied: []inventory.AppliedAdjustment{{VariantID: applied, OldQuantity: 5, NewQuantity: 8, Delta: 3}},
		Skipped: []inventory.SkippedAdjustment{{VariantID: skipped, Reason: "variant not found"}},
		AuditFailures: []inventory.AuditWriteError{{
			Entry: inventory.NewAuditEntry(applied, 3, inventory.ChangeTypeAdjustment, "stocktake"),
			Err:   errors.New("disk full"),
		}},
	}

	resp := NewBulkAdjustResponse(res)
	require.Len(t, resp.Applied, 1)
	assert.Equal(t, 3, resp.Applied[0].Delta)
	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, skipped.String(), resp.Skipped[0].VariantID)
	require.Len(t, resp.AuditFailures, 1)
	assert.Contains(t, resp.AuditFailures[0], "disk full")
}
