// Package reconciliation compares the local catalog with every marketplace,
// optionally pushes local quantities out, and ingests marketplace orders.
package reconciliation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/storefront/backend/internal/domain/channel"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
)

// CorrectionReason is the audit reason of every SYNC_CORRECTION entry
const CorrectionReason = "channel sync"

// AdapterSource resolves channel adapters. marketplace.Registry implements it.
type AdapterSource interface {
	Get(ch channel.Channel) (channel.Adapter, error)
	Channels() []channel.Channel
}

// Config bounds the engine's concurrency and adapter calls
type Config struct {
	// MaxConcurrentChannels is how many channels are processed at once
	MaxConcurrentChannels int
	// PushConcurrency is how many corrections one channel pushes at once.
	// 1 keeps a channel strictly sequential.
	PushConcurrency int
	// AdapterTimeout bounds every single adapter call
	AdapterTimeout time.Duration
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		MaxConcurrentChannels: 2,
		PushConcurrency:       1,
		AdapterTimeout:        60 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxConcurrentChannels <= 0 {
		c.MaxConcurrentChannels = d.MaxConcurrentChannels
	}
	if c.PushConcurrency <= 0 {
		c.PushConcurrency = d.PushConcurrency
	}
	if c.AdapterTimeout <= 0 {
		c.AdapterTimeout = d.AdapterTimeout
	}
	return c
}

// Engine runs reconciliation and order ingestion. It holds no run state and
// is safe for concurrent use; exclusivity is the coordinator's job.
type Engine struct {
	ledger   inventory.Ledger
	orders   order.Store
	adapters AdapterSource
	cfg      Config
	logger   *zap.Logger
	metrics  *telemetry.SyncMetrics
}

// Option configures an Engine
type Option func(*Engine)

// WithMetrics records per-channel outcomes on m
func WithMetrics(m *telemetry.SyncMetrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates an engine. A nil logger is replaced by a no-op logger.
func NewEngine(
	ledger inventory.Ledger,
	orders order.Store,
	adapters AdapterSource,
	cfg Config,
	zl *zap.Logger,
	opts ...Option,
) *Engine {
	if zl == nil {
		zl = zap.NewNop()
	}
	e := &Engine{
		ledger:   ledger,
		orders:   orders,
		adapters: adapters,
		cfg:      cfg.withDefaults(),
		logger:   zl,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Channels returns the channels the engine can reach
func (e *Engine) Channels() []channel.Channel {
	return e.adapters.Channels()
}

// channelOutcome is what one channel goroutine hands back to RunSync
type channelOutcome struct {
	result        *ChannelResult
	errors        []SyncError
	auditFailures []AuditFailure
}

func (o *channelOutcome) fail(ch channel.Channel, sku, op string, err error) {
	o.result.Errors++
	o.errors = append(o.errors, SyncError{Channel: ch, SKU: sku, Op: op, Message: err.Error()})
}

// RunSync compares the local catalog with each channel and, when autoCorrect
// is set, pushes the local quantity for every mismatch. An empty channel list
// means every registered channel. Per-channel failures are collected in the
// run; only a catalog read failure fails the call.
func (e *Engine) RunSync(ctx context.Context, channels []channel.Channel, autoCorrect bool) (*SyncRun, error) {
	ctx, span := telemetry.StartSpan(ctx, "reconciliation.RunSync", attribute.Bool("sync.auto_correct", autoCorrect))
	defer span.End()

	run := &SyncRun{
		SyncID:      syncIDFrom(ctx),
		Kind:        RunKindInventory,
		AutoCorrect: autoCorrect,
		Channels:    make(map[channel.Channel]*ChannelResult),
	}
	log := e.log(ctx)

	catalog, err := e.ledger.GetCatalogForSync(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Error("Failed to load catalog for sync", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	targets := e.resolveChannels(channels)
	span.SetAttributes(attribute.Int("sync.catalog_size", len(catalog)), attribute.Int("sync.channels", len(targets)))
	log.Info("Sync started",
		zap.Int("variants", len(catalog)),
		zap.Stringers("channels", targets),
		zap.Bool("auto_correct", autoCorrect),
	)

	outcomes := make([]*channelOutcome, len(targets))
	var g errgroup.Group
	g.SetLimit(e.cfg.MaxConcurrentChannels)
	for i, ch := range targets {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					out := &channelOutcome{result: &ChannelResult{Channel: ch}}
					out.fail(ch, "", OpPanic, e.recovered(ctx, ch, r))
					e.recordChannel(ctx, out)
					outcomes[i] = out
				}
			}()
			outcomes[i] = e.syncChannel(ctx, ch, catalog, autoCorrect)
			return nil
		})
	}
	_ = g.Wait()

	byChannel := make(map[channel.Channel]*channelOutcome, len(targets))
	for i, ch := range targets {
		byChannel[ch] = outcomes[i]
		run.Channels[ch] = outcomes[i].result
	}
	for _, ch := range run.SortedChannels() {
		o := byChannel[ch]
		run.Discrepancies = append(run.Discrepancies, o.result.Discrepancies...)
		run.Errors = append(run.Errors, o.errors...)
		run.AuditFailures = append(run.AuditFailures, o.auditFailures...)
	}

	span.SetAttributes(
		attribute.Int("sync.discrepancies", len(run.Discrepancies)),
		attribute.Int("sync.errors", len(run.Errors)),
	)
	log.Info("Sync finished",
		zap.Int("discrepancies", len(run.Discrepancies)),
		zap.Int("errors", len(run.Errors)),
		zap.Int("audit_failures", len(run.AuditFailures)),
	)
	return run, nil
}

// resolveChannels dedupes the request, drops the local channel and expands
// an empty request to every registered channel. Unknown channels are kept so
// they surface as per-channel errors.
func (e *Engine) resolveChannels(requested []channel.Channel) []channel.Channel {
	if len(requested) == 0 {
		return e.adapters.Channels()
	}
	seen := make(map[channel.Channel]bool, len(requested))
	out := make([]channel.Channel, 0, len(requested))
	for _, ch := range requested {
		if ch == channel.PWA || seen[ch] {
			continue
		}
		seen[ch] = true
		out = append(out, ch)
	}
	sortChannels(out)
	return out
}

func (e *Engine) syncChannel(ctx context.Context, ch channel.Channel, catalog []inventory.CatalogEntry, autoCorrect bool) *channelOutcome {
	ctx, span := telemetry.StartSpan(ctx, "reconciliation.syncChannel", attribute.String("sync.channel", ch.String()))
	defer span.End()

	out := &channelOutcome{result: &ChannelResult{Channel: ch}}
	log := e.log(ctx).With(zap.String("channel", ch.String()))

	adapter, err := e.adapters.Get(ch)
	if err != nil {
		out.fail(ch, "", "resolve adapter", err)
		log.Warn("No adapter for channel", zap.Error(err))
		return out
	}

	fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.AdapterTimeout)
	remote, err := adapter.FetchRemoteInventory(fetchCtx)
	cancel()
	if err != nil {
		telemetry.RecordError(span, err)
		out.fail(ch, "", "fetch inventory", err)
		log.Warn("Channel inventory fetch failed", zap.Error(err))
		e.recordChannel(ctx, out)
		return out
	}

	remoteQty := make(map[string]int, len(remote))
	for _, item := range remote {
		remoteQty[item.SKU] = item.Quantity
	}

	var mismatches []Discrepancy
	for _, entry := range catalog {
		qty, found := remoteQty[entry.SKU]
		switch {
		case !found:
			out.result.Discrepancies = append(out.result.Discrepancies, Discrepancy{
				SKU:           entry.SKU,
				ProductName:   entry.Name,
				VariantID:     entry.ID,
				Channel:       ch,
				LocalQuantity: entry.LocalQuantity,
				Issue:         IssueNotFoundRemote,
			})
		case qty != entry.LocalQuantity:
			d := Discrepancy{
				SKU:            entry.SKU,
				ProductName:    entry.Name,
				VariantID:      entry.ID,
				Channel:        ch,
				LocalQuantity:  entry.LocalQuantity,
				RemoteQuantity: &qty,
				Issue:          IssueQuantityMismatch,
			}
			out.result.Discrepancies = append(out.result.Discrepancies, d)
			mismatches = append(mismatches, d)
		default:
			out.result.Skipped++
			if err := e.ledger.UpsertChannelRecord(ctx, entry.ID, ch, qty); err != nil {
				out.fail(ch, entry.SKU, "refresh record", err)
				log.Warn("Channel record refresh failed", zap.String("sku", entry.SKU), zap.Error(err))
			}
		}
	}

	if autoCorrect && len(mismatches) > 0 {
		e.correct(ctx, adapter, mismatches, out, log)
	}

	span.SetAttributes(
		attribute.Int("sync.discrepancies", len(out.result.Discrepancies)),
		attribute.Int("sync.synced", out.result.Synced),
		attribute.Int("sync.errors", out.result.Errors),
	)
	e.recordChannel(ctx, out)
	return out
}

// correct pushes the local quantity of every mismatch. With PushConcurrency 1
// the pushes run in discrepancy order.
func (e *Engine) correct(ctx context.Context, adapter channel.Adapter, mismatches []Discrepancy, out *channelOutcome, log *zap.Logger) {
	ch := adapter.Channel()
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(e.cfg.PushConcurrency)
	for _, d := range mismatches {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					err := e.recovered(ctx, ch, r)
					mu.Lock()
					out.fail(ch, d.SKU, OpPanic, err)
					mu.Unlock()
				}
			}()
			pushCtx, cancel := context.WithTimeout(ctx, e.cfg.AdapterTimeout)
			err := adapter.PushQuantity(pushCtx, d.SKU, d.LocalQuantity)
			cancel()

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.fail(ch, d.SKU, "push quantity", err)
				log.Warn("Quantity push failed", zap.String("sku", d.SKU), zap.Error(err))
				return nil
			}
			// The channel now holds the local quantity, so the correction counts
			// even if the bookkeeping below fails.
			out.result.Synced++

			if err := e.ledger.UpsertChannelRecord(ctx, d.VariantID, ch, d.LocalQuantity); err != nil {
				out.fail(ch, d.SKU, "update channel record", err)
				log.Warn("Channel record update failed", zap.String("sku", d.SKU), zap.Error(err))
			}

			delta := d.LocalQuantity - *d.RemoteQuantity
			entry := inventory.NewAuditEntry(d.VariantID, delta, inventory.ChangeTypeSyncCorrection, CorrectionReason)
			if err := e.ledger.AppendAudit(ctx, entry); err != nil {
				out.auditFailures = append(out.auditFailures, AuditFailure{
					Channel:        ch,
					SKU:            d.SKU,
					VariantID:      d.VariantID,
					QuantityChange: delta,
					Message:        err.Error(),
				})
				log.Error("Sync correction applied without audit entry",
					zap.String("sku", d.SKU),
					zap.Int("quantity_change", delta),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Engine) recordChannel(ctx context.Context, out *channelOutcome) {
	if e.metrics == nil {
		return
	}
	r := out.result
	e.metrics.RecordChannel(ctx, r.Channel.String(), r.Synced, r.Skipped, r.Errors, len(out.auditFailures))

	counts := make(map[Issue]int, 2)
	for _, d := range r.Discrepancies {
		counts[d.Issue]++
	}
	for issue, n := range counts {
		e.metrics.RecordDiscrepancies(ctx, r.Channel.String(), string(issue), n)
	}
}

// recovered logs a panic raised while working on ch and returns it as an
// error. Worker goroutines recover on their own; errgroup does not carry a
// panic back to Wait.
func (e *Engine) recovered(ctx context.Context, ch channel.Channel, r any) error {
	err := fmt.Errorf("%w: %v", ErrChannelPanic, r)
	e.log(ctx).Error("Recovered panic in channel worker",
		zap.String("channel", ch.String()),
		zap.Any("panic", r),
		zap.Stack("stack"),
	)
	return err
}

// log prefers the logger the caller put into ctx, which carries the sync id
func (e *Engine) log(ctx context.Context) *zap.Logger {
	if logger.GetSyncID(ctx) != "" || logger.GetRequestID(ctx) != "" {
		return logger.L(ctx)
	}
	return logger.WithTraceContext(ctx, e.logger)
}

func syncIDFrom(ctx context.Context) uuid.UUID {
	if id, err := uuid.Parse(logger.GetSyncID(ctx)); err == nil {
		return id
	}
	return uuid.New()
}
