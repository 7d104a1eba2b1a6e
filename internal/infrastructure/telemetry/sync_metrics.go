package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome labels a finished run.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
)

// SyncMetrics records reconciliation activity. A nil *SyncMetrics is valid and records nothing.
type SyncMetrics struct {
	runs          *Counter
	runDuration   *Histogram
	rejected      *Counter
	discrepancies *Counter
	corrections   *Counter
	skipped       *Counter
	channelErrors *Counter
	auditFailures *Counter
	orders        *Counter
}

// NewSyncMetrics registers the reconciliation instruments on meter.
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &SyncMetrics{}
	var err error
	if m.runs, err = NewCounter(meter, "storefront_sync_runs_total", "Finished reconciliation runs", "{runs}"); err != nil {
		return nil, err
	}
	if m.runDuration, err = NewHistogram(meter, "storefront_sync_run_duration_seconds", "Wall time of reconciliation runs", "s",
		0.5, 1, 5, 15, 30, 60, 120, 300, 600); err != nil {
		return nil, err
	}
	if m.rejected, err = NewCounter(meter, "storefront_sync_rejected_total", "Triggers refused because a run was active", "{triggers}"); err != nil {
		return nil, err
	}
	if m.discrepancies, err = NewCounter(meter, "storefront_sync_discrepancies_total", "Discrepancies found per channel and issue", "{items}"); err != nil {
		return nil, err
	}
	if m.corrections, err = NewCounter(meter, "storefront_sync_corrections_total", "Quantities pushed to a channel", "{items}"); err != nil {
		return nil, err
	}
	if m.skipped, err = NewCounter(meter, "storefront_sync_in_sync_total", "Variants already matching the channel", "{items}"); err != nil {
		return nil, err
	}
	if m.channelErrors, err = NewCounter(meter, "storefront_sync_channel_errors_total", "Errors per channel", "{errors}"); err != nil {
		return nil, err
	}
	if m.auditFailures, err = NewCounter(meter, "storefront_sync_audit_failures_total", "Corrections committed without an audit entry", "{entries}"); err != nil {
		return nil, err
	}
	if m.orders, err = NewCounter(meter, "storefront_orders_ingested_total", "Channel orders seen by ingestion", "{orders}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordRun records a finished run of the given kind (INVENTORY, ORDERS).
func (m *SyncMetrics) RecordRun(ctx context.Context, kind, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("kind", kind), attribute.String("outcome", outcome)}
	m.runs.Inc(ctx, attrs...)
	m.runDuration.RecordDuration(ctx, d, attribute.String("kind", kind))
}

// RecordRejected records a trigger refused with a busy coordinator.
func (m *SyncMetrics) RecordRejected(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.rejected.Inc(ctx, attribute.String("kind", kind))
}

// RecordChannel records per-channel counts of one inventory run.
func (m *SyncMetrics) RecordChannel(ctx context.Context, channel string, synced, skipped, errs, auditFailures int) {
	if m == nil {
		return
	}
	attr := attribute.String("channel", channel)
	m.corrections.Add(ctx, int64(synced), attr)
	m.skipped.Add(ctx, int64(skipped), attr)
	m.channelErrors.Add(ctx, int64(errs), attr)
	m.auditFailures.Add(ctx, int64(auditFailures), attr)
}

// RecordDiscrepancies records discrepancies of one issue type on a channel.
func (m *SyncMetrics) RecordDiscrepancies(ctx context.Context, channel, issue string, count int) {
	if m == nil {
		return
	}
	m.discrepancies.Add(ctx, int64(count), attribute.String("channel", channel), attribute.String("issue", issue))
}

// RecordOrders records ingestion counts of one channel.
func (m *SyncMetrics) RecordOrders(ctx context.Context, channel string, created, skipped, failed int) {
	if m == nil {
		return
	}
	attr := attribute.String("channel", channel)
	m.orders.Add(ctx, int64(created), attr, attribute.String("result", "created"))
	m.orders.Add(ctx, int64(skipped), attr, attribute.String("result", "skipped"))
	m.orders.Add(ctx, int64(failed), attr, attribute.String("result", "failed"))
}
