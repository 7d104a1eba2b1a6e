package dto

import (
	"time"

	"github.com/storefront/backend/internal/application/reconciliation"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
)

// TriggerSyncRequest starts an inventory reconciliation run
type TriggerSyncRequest struct {
	Channels []string `json:"channels" binding:"omitempty,dive,channel"`
	AutoSync bool     `json:"auto_sync"`
}

// TriggerOrderSyncRequest starts an order ingestion run. A missing Since
// means the configured lookback window.
type TriggerOrderSyncRequest struct {
	Channels []string   `json:"channels" binding:"omitempty,dive,channel"`
	Since    *time.Time `json:"since"`
}

// ScheduleRequest enables the recurring inventory run
type ScheduleRequest struct {
	IntervalMinutes int `json:"interval_minutes" binding:"required,min=1,max=10080"`
}

// HistoryQuery bounds the number of runs returned
type HistoryQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// HealthQuery restricts the health check to some channels
type HealthQuery struct {
	Channels []string `form:"channel" binding:"omitempty,dive,channel"`
}

// TriggerSyncResponse is the payload of both trigger endpoints
type TriggerSyncResponse struct {
	Results *SyncRunResponse `json:"results"`
	Message string           `json:"message"`
}

// SyncRunResponse is one run of the history
type SyncRunResponse struct {
	SyncID        string                  `json:"sync_id"`
	Kind          string                  `json:"kind"`
	StartTime     time.Time               `json:"start_time"`
	EndTime       time.Time               `json:"end_time"`
	DurationMs    int64                   `json:"duration_ms"`
	AutoCorrect   bool                    `json:"auto_correct"`
	Outcome       string                  `json:"outcome"`
	Message       string                  `json:"message"`
	Failed        bool                    `json:"failed"`
	FailureReason string                  `json:"failure_reason,omitempty"`
	Channels      []ChannelResultResponse `json:"channels,omitempty"`
	Discrepancies []DiscrepancyResponse   `json:"discrepancies,omitempty"`
	Errors        []SyncErrorResponse     `json:"errors,omitempty"`
	AuditFailures []AuditFailureResponse  `json:"audit_failures,omitempty"`
	Orders        *OrderIngestionResponse `json:"orders,omitempty"`
}

// ChannelResultResponse is one channel's part of an inventory run
type ChannelResultResponse struct {
	Channel       string `json:"channel"`
	Synced        int    `json:"synced"`
	Skipped       int    `json:"skipped"`
	Errors        int    `json:"errors"`
	Discrepancies int    `json:"discrepancies"`
}

// DiscrepancyResponse is one SKU that differs from its channel
type DiscrepancyResponse struct {
	SKU            string `json:"sku"`
	ProductName    string `json:"product_name"`
	VariantID      string `json:"variant_id"`
	Channel        string `json:"channel"`
	LocalQuantity  int    `json:"local_quantity"`
	RemoteQuantity *int   `json:"remote_quantity"`
	Issue          string `json:"issue"`
}

// SyncErrorResponse is one recovered failure
type SyncErrorResponse struct {
	Channel string `json:"channel"`
	SKU     string `json:"sku,omitempty"`
	Op      string `json:"op"`
	Message string `json:"message"`
}

// AuditFailureResponse is a correction whose audit entry was lost
type AuditFailureResponse struct {
	Channel        string `json:"channel"`
	SKU            string `json:"sku"`
	VariantID      string `json:"variant_id"`
	QuantityChange int    `json:"quantity_change"`
	Message        string `json:"message"`
}

// OrderIngestionResponse summarizes an order ingestion run
type OrderIngestionResponse struct {
	Since    time.Time                  `json:"since"`
	Synced   int                        `json:"synced"`
	Skipped  int                        `json:"skipped"`
	Errors   int                        `json:"errors"`
	Channels []ChannelIngestionResponse `json:"channels,omitempty"`
	Warnings []string                   `json:"warnings,omitempty"`
}

// ChannelIngestionResponse is one channel's part of an order ingestion
type ChannelIngestionResponse struct {
	Channel string `json:"channel"`
	Fetched int    `json:"fetched"`
	Synced  int    `json:"synced"`
	Skipped int    `json:"skipped"`
	Errors  int    `json:"errors"`
}

// SyncStatusResponse reports the coordinator state
type SyncStatusResponse struct {
	IsRunning       bool             `json:"is_running"`
	Status          string           `json:"status"`
	TotalRuns       int              `json:"total_runs"`
	Scheduled       bool             `json:"scheduled"`
	IntervalMinutes int              `json:"interval_minutes,omitempty"`
	LastRun         *SyncRunResponse `json:"last_run,omitempty"`
}

// ChannelHealthResponse is the result of one channel ping
type ChannelHealthResponse struct {
	Channel   string    `json:"channel"`
	Healthy   bool      `json:"healthy"`
	LatencyMs int64     `json:"latency_ms"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// NewSyncRunResponse converts a run for the API
func NewSyncRunResponse(run *reconciliation.SyncRun) *SyncRunResponse {
	if run == nil {
		return nil
	}
	resp := &SyncRunResponse{
		SyncID:        run.SyncID.String(),
		Kind:          string(run.Kind),
		StartTime:     run.StartTime,
		EndTime:       run.EndTime,
		DurationMs:    run.Duration().Milliseconds(),
		AutoCorrect:   run.AutoCorrect,
		Outcome:       run.Outcome(),
		Message:       run.Message(),
		Failed:        run.Failed,
		FailureReason: run.FailureReason,
	}

	for _, ch := range run.SortedChannels() {
		c := run.Channels[ch]
		resp.Channels = append(resp.Channels, ChannelResultResponse{
			Channel:       ch.String(),
			Synced:        c.Synced,
			Skipped:       c.Skipped,
			Errors:        c.Errors,
			Discrepancies: len(c.Discrepancies),
		})
	}
	for _, d := range run.Discrepancies {
		resp.Discrepancies = append(resp.Discrepancies, DiscrepancyResponse{
			SKU:            d.SKU,
			ProductName:    d.ProductName,
			VariantID:      d.VariantID.String(),
			Channel:        d.Channel.String(),
			LocalQuantity:  d.LocalQuantity,
			RemoteQuantity: d.RemoteQuantity,
			Issue:          string(d.Issue),
		})
	}
	for _, e := range run.Errors {
		resp.Errors = append(resp.Errors, SyncErrorResponse{
			Channel: e.Channel.String(),
			SKU:     e.SKU,
			Op:      e.Op,
			Message: e.Message,
		})
	}
	for _, f := range run.AuditFailures {
		resp.AuditFailures = append(resp.AuditFailures, AuditFailureResponse{
			Channel:        f.Channel.String(),
			SKU:            f.SKU,
			VariantID:      f.VariantID.String(),
			QuantityChange: f.QuantityChange,
			Message:        f.Message,
		})
	}
	if run.Orders != nil {
		resp.Orders = newOrderIngestionResponse(run.Orders)
	}
	return resp
}

func newOrderIngestionResponse(res *reconciliation.IngestResult) *OrderIngestionResponse {
	out := &OrderIngestionResponse{
		Since:    res.Since,
		Synced:   res.Synced,
		Skipped:  res.Skipped,
		Errors:   res.Errors,
		Warnings: res.Warnings,
	}
	for _, ch := range res.SortedChannels() {
		c := res.Channels[ch]
		out.Channels = append(out.Channels, ChannelIngestionResponse{
			Channel: ch.String(),
			Fetched: c.Fetched,
			Synced:  c.Synced,
			Skipped: c.Skipped,
			Errors:  c.Errors,
		})
	}
	return out
}

// NewSyncRunListResponse converts a slice of runs, preserving order
func NewSyncRunListResponse(runs []*reconciliation.SyncRun) []*SyncRunResponse {
	out := make([]*SyncRunResponse, 0, len(runs))
	for _, r := range runs {
		out = append(out, NewSyncRunResponse(r))
	}
	return out
}

// NewSyncStatusResponse converts the coordinator status
func NewSyncStatusResponse(s scheduler.Status) SyncStatusResponse {
	state := "IDLE"
	if s.IsRunning {
		state = "RUNNING"
	}
	return SyncStatusResponse{
		IsRunning:       s.IsRunning,
		Status:          state,
		TotalRuns:       s.TotalRuns,
		Scheduled:       s.Scheduled,
		IntervalMinutes: int(s.Interval / time.Minute),
		LastRun:         NewSyncRunResponse(s.LastRun),
	}
}

// SyncHealthResponse is the health of every checked channel
type SyncHealthResponse struct {
	Healthy  bool                    `json:"healthy"`
	Channels []ChannelHealthResponse `json:"channels"`
}

// NewSyncHealthResponse converts health check results; Healthy requires every channel up
func NewSyncHealthResponse(results []reconciliation.ChannelHealth) SyncHealthResponse {
	healthy := len(results) > 0
	for _, h := range results {
		healthy = healthy && h.Healthy
	}
	return SyncHealthResponse{Healthy: healthy, Channels: NewChannelHealthResponse(results)}
}

// NewChannelHealthResponse converts health check results
func NewChannelHealthResponse(results []reconciliation.ChannelHealth) []ChannelHealthResponse {
	out := make([]ChannelHealthResponse, 0, len(results))
	for _, h := range results {
		out = append(out, ChannelHealthResponse{
			Channel:   h.Channel.String(),
			Healthy:   h.Healthy,
			LatencyMs: h.Latency.Milliseconds(),
			Error:     h.Error,
			CheckedAt: h.CheckedAt,
		})
	}
	return out
}
