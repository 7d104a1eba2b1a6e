// Package scheduler owns the single-run guard around the reconciliation
// engine, the run history and the recurring sync timer.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/application/reconciliation"
	"github.com/storefront/backend/internal/domain/channel"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
)

// Engine is the part of reconciliation.Engine the coordinator drives
type Engine interface {
	RunSync(ctx context.Context, channels []channel.Channel, autoCorrect bool) (*reconciliation.SyncRun, error)
	IngestOrders(ctx context.Context, channels []channel.Channel, since time.Time) (*reconciliation.IngestResult, error)
}

// RunLock extends the single-run guard across processes.
// acquired is false when another holder owns the lock.
type RunLock interface {
	Acquire(ctx context.Context) (release func(context.Context) error, acquired bool, err error)
}

// CoordinatorConfig holds coordinator settings
type CoordinatorConfig struct {
	// HistoryLimit is how many finished runs are retained, at most config.MaxHistoryLimit
	HistoryLimit int
	// OrderLookback is the default ingestion window when no since is given
	OrderLookback time.Duration
	// RunTimeout bounds one run; zero means unbounded
	RunTimeout time.Duration
}

// DefaultCoordinatorConfig returns default coordinator settings
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		HistoryLimit:  config.MaxHistoryLimit,
		OrderLookback: 24 * time.Hour,
		RunTimeout:    30 * time.Minute,
	}
}

// CoordinatorConfigFromSync maps the sync config section
func CoordinatorConfigFromSync(cfg config.SyncConfig) CoordinatorConfig {
	return CoordinatorConfig{
		HistoryLimit:  cfg.HistoryLimit,
		OrderLookback: cfg.OrderLookback,
		RunTimeout:    cfg.RunTimeout,
	}
}

// SyncOptions parameterizes an inventory run. No channels means all registered.
type SyncOptions struct {
	Channels    []channel.Channel
	AutoCorrect bool
}

// OrderSyncOptions parameterizes an order ingestion run. A zero Since means
// now minus the configured lookback.
type OrderSyncOptions struct {
	Channels []channel.Channel
	Since    time.Time
}

// Status is a point-in-time view of the coordinator
type Status struct {
	IsRunning bool
	LastRun   *reconciliation.SyncRun
	TotalRuns int
	Scheduled bool
	Interval  time.Duration
}

// SyncCoordinator admits at most one run at a time. Inventory and order runs
// share the guard because both mutate local quantities.
type SyncCoordinator struct {
	engine  Engine
	cfg     CoordinatorConfig
	logger  *zap.Logger
	metrics *telemetry.SyncMetrics
	lock    RunLock

	// admit orders the closed check and active.Add against Shutdown's Wait
	admit   sync.Mutex
	running atomic.Bool
	closed  atomic.Bool
	active  sync.WaitGroup

	mu        sync.RWMutex
	history   []*reconciliation.SyncRun // newest first
	totalRuns int
	interval  time.Duration

	schedMu sync.Mutex
	stop    chan struct{}
	loops   sync.WaitGroup
}

// CoordinatorOption configures a SyncCoordinator
type CoordinatorOption func(*SyncCoordinator)

// WithRunLock adds a cross-process guard taken after the local one
func WithRunLock(l RunLock) CoordinatorOption {
	return func(c *SyncCoordinator) {
		c.lock = l
	}
}

// WithMetrics records every finished and rejected run on m
func WithMetrics(m *telemetry.SyncMetrics) CoordinatorOption {
	return func(c *SyncCoordinator) {
		c.metrics = m
	}
}

// NewSyncCoordinator creates an idle coordinator with an empty history
func NewSyncCoordinator(engine Engine, cfg CoordinatorConfig, zl *zap.Logger, opts ...CoordinatorOption) *SyncCoordinator {
	d := DefaultCoordinatorConfig()
	if cfg.HistoryLimit <= 0 || cfg.HistoryLimit > config.MaxHistoryLimit {
		cfg.HistoryLimit = d.HistoryLimit
	}
	if cfg.OrderLookback <= 0 {
		cfg.OrderLookback = d.OrderLookback
	}
	if zl == nil {
		zl = zap.NewNop()
	}
	c := &SyncCoordinator{
		engine: engine,
		cfg:    cfg,
		logger: zl,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TriggerSync runs one inventory reconciliation, or fails immediately with
// ErrSyncInProgress when a run is active. A failed or panicked run is still
// recorded and returned alongside the error.
func (c *SyncCoordinator) TriggerSync(ctx context.Context, opts SyncOptions) (*reconciliation.SyncRun, error) {
	return c.execute(ctx, reconciliation.RunKindInventory, opts.AutoCorrect, func(ctx context.Context) (*reconciliation.SyncRun, error) {
		return c.engine.RunSync(ctx, opts.Channels, opts.AutoCorrect)
	})
}

// TriggerOrderSync runs one order ingestion under the same guard as TriggerSync
func (c *SyncCoordinator) TriggerOrderSync(ctx context.Context, opts OrderSyncOptions) (*reconciliation.SyncRun, error) {
	since := opts.Since
	if since.IsZero() {
		since = time.Now().Add(-c.cfg.OrderLookback)
	}
	return c.execute(ctx, reconciliation.RunKindOrders, false, func(ctx context.Context) (*reconciliation.SyncRun, error) {
		res, err := c.engine.IngestOrders(ctx, opts.Channels, since)
		if err != nil {
			return nil, err
		}
		return &reconciliation.SyncRun{
			Kind:   reconciliation.RunKindOrders,
			Orders: res,
			Errors: res.Failures,
		}, nil
	})
}

func (c *SyncCoordinator) execute(
	ctx context.Context,
	kind reconciliation.RunKind,
	autoCorrect bool,
	fn func(context.Context) (*reconciliation.SyncRun, error),
) (*reconciliation.SyncRun, error) {
	c.admit.Lock()
	if c.closed.Load() {
		c.admit.Unlock()
		return nil, ErrShutdown
	}
	if !c.running.CompareAndSwap(false, true) {
		c.admit.Unlock()
		c.metrics.RecordRejected(ctx, string(kind))
		return nil, ErrSyncInProgress
	}
	c.active.Add(1)
	c.admit.Unlock()
	defer func() {
		c.running.Store(false)
		c.active.Done()
	}()

	// A run outlives the request that triggered it
	runCtx := context.WithoutCancel(ctx)
	if c.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, c.cfg.RunTimeout)
		defer cancel()
	}

	if c.lock != nil {
		release, acquired, err := c.lock.Acquire(runCtx)
		if err != nil {
			return nil, fmt.Errorf("acquire run lock: %w", err)
		}
		if !acquired {
			c.metrics.RecordRejected(ctx, string(kind))
			return nil, ErrSyncInProgress
		}
		defer func() {
			if err := release(context.WithoutCancel(runCtx)); err != nil {
				c.logger.Warn("Failed to release run lock", zap.Error(err))
			}
		}()
	}

	syncID := uuid.New()
	runCtx, log := logger.WithSyncID(runCtx, c.logger, syncID.String())
	log.Info("Sync run started", zap.String("kind", string(kind)), zap.Bool("auto_correct", autoCorrect))

	start := time.Now()
	run, err := c.safeRun(runCtx, log, kind, fn)
	end := time.Now()

	if err != nil {
		run = &reconciliation.SyncRun{
			Kind:          kind,
			AutoCorrect:   autoCorrect,
			Failed:        true,
			FailureReason: err.Error(),
		}
	}
	run.SyncID = syncID
	run.StartTime = start
	run.EndTime = end
	c.record(run)

	c.metrics.RecordRun(runCtx, string(kind), run.Outcome(), run.Duration())
	fields := []zap.Field{
		zap.String("kind", string(kind)),
		zap.String("outcome", run.Outcome()),
		zap.Duration("duration", run.Duration()),
		zap.String("summary", run.Message()),
	}
	if err != nil {
		log.Error("Sync run failed", append(fields, zap.Error(err))...)
	} else {
		log.Info("Sync run finished", fields...)
	}
	return run, err
}

func (c *SyncCoordinator) safeRun(
	ctx context.Context,
	log *zap.Logger,
	kind reconciliation.RunKind,
	fn func(context.Context) (*reconciliation.SyncRun, error),
) (run *reconciliation.SyncRun, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Sync run panicked", zap.Any("panic", r), zap.Stack("stack"))
			run, err = nil, fmt.Errorf("%w: %v", ErrSyncPanicked, r)
		}
	}()
	telemetry.WithSyncLabels(ctx, string(kind), func(ctx context.Context) {
		run, err = fn(ctx)
	})
	return run, err
}

func (c *SyncCoordinator) record(run *reconciliation.SyncRun) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalRuns++
	c.history = append([]*reconciliation.SyncRun{run}, c.history...)
	if len(c.history) > c.cfg.HistoryLimit {
		c.history = c.history[:c.cfg.HistoryLimit]
	}
}

// GetStatus returns the running flag, the latest run and the schedule
func (c *SyncCoordinator) GetStatus() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Status{
		IsRunning: c.running.Load(),
		TotalRuns: c.totalRuns,
		Scheduled: c.interval > 0,
		Interval:  c.interval,
	}
	if len(c.history) > 0 {
		s.LastRun = c.history[0]
	}
	return s
}

// GetHistory returns up to limit runs, most recent first. A non-positive
// limit returns everything retained.
func (c *SyncCoordinator) GetHistory(limit int) []*reconciliation.SyncRun {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if limit <= 0 || limit > len(c.history) {
		limit = len(c.history)
	}
	out := make([]*reconciliation.SyncRun, limit)
	copy(out, c.history[:limit])
	return out
}

// ScheduleRecurring triggers an auto-correcting sync every intervalMinutes,
// replacing any existing schedule.
func (c *SyncCoordinator) ScheduleRecurring(intervalMinutes int) error {
	if intervalMinutes <= 0 {
		return ErrInvalidInterval
	}
	return c.scheduleEvery(time.Duration(intervalMinutes) * time.Minute)
}

func (c *SyncCoordinator) scheduleEvery(interval time.Duration) error {
	if c.closed.Load() {
		return ErrShutdown
	}
	c.schedMu.Lock()
	defer c.schedMu.Unlock()

	c.stopLocked()

	stop := make(chan struct{})
	c.stop = stop
	c.setInterval(interval)

	c.loops.Add(1)
	go c.loop(interval, stop)

	c.logger.Info("Recurring sync scheduled", zap.Duration("interval", interval))
	return nil
}

// StopRecurring cancels the schedule. Stopping twice is a no-op. A tick that
// is already running finishes on its own.
func (c *SyncCoordinator) StopRecurring() {
	c.schedMu.Lock()
	defer c.schedMu.Unlock()
	if c.stopLocked() {
		c.logger.Info("Recurring sync stopped")
	}
}

func (c *SyncCoordinator) stopLocked() bool {
	if c.stop == nil {
		return false
	}
	close(c.stop)
	c.stop = nil
	c.setInterval(0)
	return true
}

func (c *SyncCoordinator) setInterval(d time.Duration) {
	c.mu.Lock()
	c.interval = d
	c.mu.Unlock()
}

func (c *SyncCoordinator) loop(interval time.Duration, stop <-chan struct{}) {
	defer c.loops.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if c.GetStatus().IsRunning {
				c.logger.Debug("Skipping scheduled sync, a run is active")
				continue
			}
			if _, err := c.TriggerSync(context.Background(), SyncOptions{AutoCorrect: true}); err != nil {
				c.logger.Warn("Scheduled sync did not complete", zap.Error(err))
			}
		}
	}
}

// Shutdown stops the schedule, rejects new triggers and waits for the
// active run and any scheduled tick to finish.
func (c *SyncCoordinator) Shutdown(ctx context.Context) error {
	c.admit.Lock()
	c.closed.Store(true)
	c.admit.Unlock()
	c.StopRecurring()

	done := make(chan struct{})
	go func() {
		c.loops.Wait()
		c.active.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
