package reconciliation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/channel"
	"github.com/storefront/backend/tests/testutil"
)

func TestCheckHealth(t *testing.T) {
	store := testutil.NewStore(t)
	amazon := testutil.NewFakeAdapter(channel.Amazon)
	etsy := testutil.NewFakeAdapter(channel.Etsy).FailPing(errors.New("401 unauthorized"))
	engine := newEngine(t, store.Ledger, store, DefaultConfig(), amazon, etsy)

	health := engine.CheckHealth(context.Background(), nil)
	require.Len(t, health, 2)

	assert.Equal(t, channel.Amazon, health[0].Channel)
	assert.True(t, health[0].Healthy)
	assert.Empty(t, health[0].Error)
	assert.False(t, health[0].CheckedAt.IsZero())

	assert.Equal(t, channel.Etsy, health[1].Channel)
	assert.False(t, health[1].Healthy)
	assert.Contains(t, health[1].Error, "401")
}

func TestCheckHealth_UnregisteredChannel(t *testing.T) {
	store := testutil.NewStore(t)
	engine := newEngine(t, store.Ledger, store, DefaultConfig(), testutil.NewFakeAdapter(channel.Amazon))

	health := engine.CheckHealth(context.Background(), []channel.Channel{channel.Etsy, channel.PWA})
	require.Len(t, health, 1)
	assert.Equal(t, channel.Etsy, health[0].Channel)
	assert.False(t, health[0].Healthy)
	assert.NotEmpty(t, health[0].Error)
}

func TestSyncRun_Summary(t *testing.T) {
	run := &SyncRun{
		Kind: RunKindInventory,
		Channels: map[channel.Channel]*ChannelResult{
			channel.Etsy:   {Channel: channel.Etsy, Synced: 2, Skipped: 3},
			channel.Amazon: {Channel: channel.Amazon, Errors: 1},
		},
		Discrepancies: make([]Discrepancy, 2),
	}
	assert.Equal(t, []channel.Channel{channel.Amazon, channel.Etsy}, run.SortedChannels())
	assert.Equal(t, "partial", run.Outcome())
	assert.Equal(t, "inventory: 2 channels, 2 discrepancies, 2 corrected, 3 in sync, 1 errors", run.Message())

	orders := &SyncRun{Kind: RunKindOrders, Orders: &IngestResult{Synced: 4, Skipped: 1}}
	assert.Equal(t, "success", orders.Outcome())
	assert.Equal(t, "orders: 4 created, 1 skipped, 0 errors", orders.Message())

	failed := &SyncRun{Failed: true, FailureReason: "catalog unavailable"}
	assert.Equal(t, "failed", failed.Outcome())
	assert.Equal(t, "sync failed: catalog unavailable", failed.Message())
	assert.Zero(t, failed.Duration())
}
