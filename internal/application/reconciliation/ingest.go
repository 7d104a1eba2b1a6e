package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/storefront/backend/internal/domain/channel"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
)

// IngestOrders pulls orders placed since the given time from each channel and
// stores the ones not seen before. Re-running with overlapping windows is
// safe: known (channel, external id) pairs are skipped.
func (e *Engine) IngestOrders(ctx context.Context, channels []channel.Channel, since time.Time) (*IngestResult, error) {
	if since.IsZero() {
		return nil, ErrSinceRequired
	}
	ctx, span := telemetry.StartSpan(ctx, "reconciliation.IngestOrders", attribute.String("orders.since", since.UTC().Format(time.RFC3339)))
	defer span.End()

	targets := e.resolveChannels(channels)
	log := e.log(ctx)
	log.Info("Order ingestion started", zap.Stringers("channels", targets), zap.Time("since", since))

	results := make([]*ChannelIngestResult, len(targets))
	failures := make([][]SyncError, len(targets))
	var g errgroup.Group
	g.SetLimit(e.cfg.MaxConcurrentChannels)
	for i, ch := range targets {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					err := e.recovered(ctx, ch, r)
					res := &ChannelIngestResult{Channel: ch, Errors: 1}
					e.recordOrders(ctx, res)
					results[i] = res
					failures[i] = []SyncError{{Channel: ch, Op: OpPanic, Message: err.Error()}}
				}
			}()
			results[i], failures[i] = e.ingestChannel(ctx, ch, since)
			return nil
		})
	}
	_ = g.Wait()

	res := &IngestResult{
		Since:    since,
		Channels: make(map[channel.Channel]*ChannelIngestResult, len(targets)),
	}
	for i, ch := range targets {
		r := results[i]
		res.Channels[ch] = r
		res.Synced += r.Synced
		res.Skipped += r.Skipped
		res.Errors += r.Errors
		res.Failures = append(res.Failures, failures[i]...)
		res.Warnings = append(res.Warnings, r.Warnings...)
	}

	span.SetAttributes(
		attribute.Int("orders.created", res.Synced),
		attribute.Int("orders.skipped", res.Skipped),
		attribute.Int("orders.errors", res.Errors),
	)
	log.Info("Order ingestion finished",
		zap.Int("created", res.Synced),
		zap.Int("skipped", res.Skipped),
		zap.Int("errors", res.Errors),
		zap.Int("warnings", len(res.Warnings)),
	)
	return res, nil
}

func (e *Engine) ingestChannel(ctx context.Context, ch channel.Channel, since time.Time) (*ChannelIngestResult, []SyncError) {
	ctx, span := telemetry.StartSpan(ctx, "reconciliation.ingestChannel", attribute.String("sync.channel", ch.String()))
	defer span.End()

	res := &ChannelIngestResult{Channel: ch}
	var failures []SyncError
	fail := func(ref, op string, err error) {
		res.Errors++
		failures = append(failures, SyncError{Channel: ch, SKU: ref, Op: op, Message: err.Error()})
	}
	log := e.log(ctx).With(zap.String("channel", ch.String()))

	adapter, err := e.adapters.Get(ch)
	if err != nil {
		fail("", "resolve adapter", err)
		return res, failures
	}

	fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.AdapterTimeout)
	remote, err := adapter.FetchOrders(fetchCtx, since, nil)
	cancel()
	if err != nil {
		telemetry.RecordError(span, err)
		fail("", "fetch orders", err)
		log.Warn("Channel order fetch failed", zap.Error(err))
		e.recordOrders(ctx, res)
		return res, failures
	}
	res.Fetched = len(remote)

	for _, src := range remote {
		src.Channel = ch
		if src.ExternalID == "" {
			fail("", "ingest order", errors.New("order without external id"))
			continue
		}

		exists, err := e.orders.ExistsByExternalID(ctx, ch, src.ExternalID)
		if err != nil {
			fail(src.ExternalID, "check order", err)
			continue
		}
		if exists {
			res.Skipped++
			continue
		}

		if !src.Status.IsValid() {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("%s order %s: unknown status %q stored as %s", ch, src.ExternalID, src.NativeStatus, channel.OrderStatusPending))
		}

		created, err := e.orders.CreateFromChannel(ctx, order.FromChannel(src))
		switch {
		case errors.Is(err, order.ErrDuplicateOrder):
			// A concurrent ingestion stored it between the check and the insert
			res.Skipped++
		case err != nil:
			fail(src.ExternalID, "store order", err)
			log.Warn("Order could not be stored", zap.String("external_id", src.ExternalID), zap.Error(err))
		default:
			res.Synced++
			for _, w := range created.Warnings {
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s order %s: %s", ch, src.ExternalID, w))
			}
		}
	}

	e.recordOrders(ctx, res)
	return res, failures
}

func (e *Engine) recordOrders(ctx context.Context, r *ChannelIngestResult) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordOrders(ctx, r.Channel.String(), r.Synced, r.Skipped, r.Errors)
}
