package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/application/reconciliation"
	"github.com/storefront/backend/internal/domain/channel"
	"github.com/storefront/backend/internal/infrastructure/marketplace"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/tests/testutil"
)

type cliFixture struct {
	store  *testutil.Store
	amazon *testutil.FakeAdapter
	etsy   *testutil.FakeAdapter
	closed bool
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	return &cliFixture{
		store:  testutil.NewStore(t),
		amazon: testutil.NewFakeAdapter(channel.Amazon),
		etsy:   testutil.NewFakeAdapter(channel.Etsy),
	}
}

func (f *cliFixture) bootstrap(t *testing.T) Bootstrapper {
	return func(ctx context.Context, opts *RootOptions) (*Services, error) {
		reg, err := marketplace.NewRegistry(f.amazon, f.etsy)
		require.NoError(t, err)
		engine := reconciliation.NewEngine(f.store.Ledger, f.store.Orders, reg, reconciliation.DefaultConfig(), nil)
		coordinator := scheduler.NewSyncCoordinator(engine, scheduler.DefaultCoordinatorConfig(), zap.NewNop())
		return &Services{
			Sync:   coordinator,
			Health: engine,
			Close: func() error {
				f.closed = true
				return coordinator.Shutdown(context.Background())
			},
		}, nil
	}
}

func (f *cliFixture) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommandWithOptions(&RootOptions{Bootstrap: f.bootstrap(t)})
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "reconcile", cmd.Use)

	for _, name := range []string{"run", "ingest", "health", "status"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestRootCommand_RejectsUnknownFormat(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.execute(t, "run", "--format", "yaml")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunCommand_ReportOnly(t *testing.T) {
	f := newCLIFixture(t)
	f.store.SeedVariant(t, "MUG", 6)
	f.amazon.WithListing("MUG", 6)
	f.etsy.WithListing("MUG", 1)

	out, err := f.execute(t, "run")

	// A discrepancy alone is not an error
	require.NoError(t, err)
	assert.Contains(t, out, "inventory: 2 channels, 1 discrepancies, 0 corrected, 1 in sync, 0 errors")
	assert.Contains(t, out, "QUANTITY_MISMATCH")
	assert.Empty(t, f.etsy.Pushes())
	assert.True(t, f.closed)
}

func TestRunCommand_ApplyJSON(t *testing.T) {
	f := newCLIFixture(t)
	f.store.SeedVariant(t, "MUG", 6)
	f.etsy.WithListing("MUG", 1)

	out, err := f.execute(t, "run", "--channel", "etsy", "--apply", "--format", "json")

	require.NoError(t, err)
	var run dto.SyncRunResponse
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	assert.Equal(t, "success", run.Outcome)
	assert.True(t, run.AutoCorrect)
	require.Len(t, run.Channels, 1)
	assert.Equal(t, "ETSY", run.Channels[0].Channel)
	assert.Equal(t, []testutil.Push{{SKU: "MUG", Quantity: 6}}, f.etsy.Pushes())
	assert.Zero(t, f.amazon.FetchCalls())
}

func TestRunCommand_PartialRunExitsWithFailure(t *testing.T) {
	f := newCLIFixture(t)
	f.store.SeedVariant(t, "MUG", 6)
	f.amazon.FailFetch(errors.New("throttled"))

	out, err := f.execute(t, "run", "--channel", "amazon")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "throttled")
}

func TestRunCommand_InvalidChannel(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.execute(t, "run", "--channel", "ebay")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, channel.ErrInvalidChannel)
}

func TestIngestCommand(t *testing.T) {
	f := newCLIFixture(t)
	f.store.SeedVariant(t, "MUG", 6)
	f.etsy.WithOrders(channel.Order{
		ExternalID: "3001",
		Status:     channel.OrderStatusProcessing,
		PlacedAt:   time.Now().Add(-time.Hour),
		Items:      []channel.OrderItem{{SKU: "MUG", Quantity: 1}},
	})

	out, err := f.execute(t, "ingest", "--since", "6h")

	require.NoError(t, err)
	assert.Contains(t, out, "orders: 1 created, 0 skipped, 0 errors")
	assert.Equal(t, 5, f.store.Quantity(t, "MUG"))

	since := f.etsy.OrdersSince()
	require.Len(t, since, 1)
	assert.WithinDuration(t, time.Now().Add(-6*time.Hour), since[0], time.Minute)
}

func TestParseSince(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		value   string
		want    time.Time
		wantErr bool
	}{
		{"", time.Time{}, false},
		{"2h", now.Add(-2 * time.Hour), false},
		{"2026-02-01T00:00:00Z", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), false},
		{"-2h", time.Time{}, true},
		{"yesterday", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := parseSince(tt.value, now)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestHealthCommand(t *testing.T) {
	f := newCLIFixture(t)
	f.etsy.FailPing(errors.New("401 unauthorized"))

	out, err := f.execute(t, "health")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 of 2 channels unhealthy")
	assert.Contains(t, out, "401 unauthorized")

	_, err = f.execute(t, "health", "--channel", "amazon")
	assert.NoError(t, err)
}

func TestStatusCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/sync/status", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(dto.NewSuccessResponse(dto.SyncStatusResponse{
			IsRunning:       true,
			Status:          "RUNNING",
			TotalRuns:       4,
			Scheduled:       true,
			IntervalMinutes: 15,
		}))
	}))
	defer srv.Close()
	f := newCLIFixture(t)

	out, err := f.execute(t, "status", "--server", srv.URL+"/")

	require.NoError(t, err)
	assert.Contains(t, out, "status: RUNNING")
	assert.Contains(t, out, "total runs: 4")
	assert.Contains(t, out, "schedule: every 15 minutes")
	assert.False(t, f.closed, "status does not bootstrap services")
}

func TestStatusCommand_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(dto.NewErrorResponse(dto.ErrCodeServiceUnavailable, "down"))
	}))
	defer srv.Close()
	f := newCLIFixture(t)

	_, err := f.execute(t, "status", "--server", srv.URL)

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), dto.ErrCodeServiceUnavailable)
}
