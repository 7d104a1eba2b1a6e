package cli

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/application/reconciliation"
	"github.com/storefront/backend/internal/domain/channel"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/marketplace"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
)

// SyncRunner starts guarded runs
type SyncRunner interface {
	TriggerSync(ctx context.Context, opts scheduler.SyncOptions) (*reconciliation.SyncRun, error)
	TriggerOrderSync(ctx context.Context, opts scheduler.OrderSyncOptions) (*reconciliation.SyncRun, error)
}

// HealthChecker pings channel adapters
type HealthChecker interface {
	CheckHealth(ctx context.Context, channels []channel.Channel) []reconciliation.ChannelHealth
}

// Services is what the run, ingest and health commands operate on
type Services struct {
	Sync   SyncRunner
	Health HealthChecker
	Close  func() error
}

// Bootstrapper builds Services for one command invocation
type Bootstrapper func(ctx context.Context, opts *RootOptions) (*Services, error)

// DefaultBootstrap wires the same stack as the server: database, channel
// adapters, engine and a coordinator that honours the cluster lock, so a CLI
// run never overlaps a server run.
func DefaultBootstrap(ctx context.Context, opts *RootOptions) (*Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	level := cfg.Log.Level
	if opts.Verbose {
		level = "debug"
	}
	log, err := logger.New(&logger.Config{Level: level, Format: "console", Output: "stderr"})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to initialize logger", err)
	}

	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(log, "warn", cfg.Telemetry.DBSlowQueryThresh))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to connect to database", err)
	}
	closers := []func() error{db.Close}
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		_ = log.Sync()
		return errors.Join(errs...)
	}

	registry, err := marketplace.NewRegistryFromConfig(&cfg.Marketplace)
	if err != nil {
		_ = closeAll()
		return nil, WrapExitError(ExitCommandError, "failed to configure marketplace channels", err)
	}

	engine := reconciliation.NewEngine(
		persistence.NewGormInventoryLedger(db.DB, log),
		persistence.NewGormOrderStore(db.DB, log),
		registry,
		reconciliation.Config{
			MaxConcurrentChannels: cfg.Sync.MaxConcurrentChannels,
			PushConcurrency:       cfg.Sync.PushConcurrency,
			AdapterTimeout:        cfg.Sync.AdapterTimeout,
		},
		log,
	)

	var coordOpts []scheduler.CoordinatorOption
	if cfg.Sync.DistributedLock {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			_ = closeAll()
			return nil, WrapExitError(ExitCommandError, "failed to connect to Redis", err)
		}
		closers = append(closers, client.Close)
		coordOpts = append(coordOpts, scheduler.WithRunLock(
			cache.NewRedisRunLock(client, cfg.Sync.LockTTL, cache.WithRunLockLogger(log))))
	}
	coordinator := scheduler.NewSyncCoordinator(engine, scheduler.CoordinatorConfigFromSync(cfg.Sync), log, coordOpts...)
	closers = append(closers, func() error { return coordinator.Shutdown(context.Background()) })

	log.Debug("Services ready", zap.Stringers("channels", registry.Channels()))
	return &Services{Sync: coordinator, Health: engine, Close: closeAll}, nil
}
