package reconciliation

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/channel"
)

// RunKind distinguishes inventory reconciliation from order ingestion in the run history
type RunKind string

const (
	RunKindInventory RunKind = "INVENTORY"
	RunKindOrders    RunKind = "ORDERS"
)

// Issue classifies a discrepancy
type Issue string

const (
	// IssueQuantityMismatch means the SKU exists remotely with a different quantity
	IssueQuantityMismatch Issue = "QUANTITY_MISMATCH"
	// IssueNotFoundRemote means the SKU is not listed on the channel
	IssueNotFoundRemote Issue = "NOT_FOUND_REMOTE"
)

// Discrepancy is one SKU whose remote view differs from the local one
type Discrepancy struct {
	SKU            string
	ProductName    string
	VariantID      uuid.UUID
	Channel        channel.Channel
	LocalQuantity  int
	RemoteQuantity *int // nil for IssueNotFoundRemote
	Issue          Issue
}

// SyncError is one recovered failure inside a run. SKU is empty for channel-level failures.
type SyncError struct {
	Channel channel.Channel
	SKU     string
	Op      string
	Message string
}

func (e SyncError) String() string {
	if e.SKU == "" {
		return fmt.Sprintf("%s %s: %s", e.Channel, e.Op, e.Message)
	}
	return fmt.Sprintf("%s %s %s: %s", e.Channel, e.Op, e.SKU, e.Message)
}

// AuditFailure is a committed correction whose audit entry was lost.
// Operators reconcile these against the audit trail by hand.
type AuditFailure struct {
	Channel        channel.Channel
	SKU            string
	VariantID      uuid.UUID
	QuantityChange int
	Message        string
}

// ChannelResult aggregates one channel's part of an inventory run
type ChannelResult struct {
	Channel       channel.Channel
	Synced        int
	Skipped       int
	Errors        int
	Discrepancies []Discrepancy
}

// ChannelIngestResult aggregates one channel's part of an order ingestion
type ChannelIngestResult struct {
	Channel  channel.Channel
	Fetched  int
	Synced   int
	Skipped  int
	Errors   int
	Warnings []string
}

// IngestResult is the outcome of IngestOrders
type IngestResult struct {
	Since    time.Time
	Synced   int
	Skipped  int
	Errors   int
	Channels map[channel.Channel]*ChannelIngestResult
	Failures []SyncError
	Warnings []string
}

// SyncRun is one entry of the run history
type SyncRun struct {
	SyncID        uuid.UUID
	Kind          RunKind
	StartTime     time.Time
	EndTime       time.Time
	AutoCorrect   bool
	Channels      map[channel.Channel]*ChannelResult
	Discrepancies []Discrepancy
	Errors        []SyncError
	AuditFailures []AuditFailure
	Orders        *IngestResult

	// Failed is set when the run produced no meaningful result,
	// e.g. the catalog could not be read or the run panicked.
	Failed        bool
	FailureReason string
}

// Duration returns EndTime - StartTime, or zero for an unfinished run.
func (r *SyncRun) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

// ErrorCount counts recovered errors across channels.
func (r *SyncRun) ErrorCount() int {
	if r.Orders != nil {
		return r.Orders.Errors
	}
	n := 0
	for _, c := range r.Channels {
		n += c.Errors
	}
	return n
}

// Outcome is "failed", "partial" or "success".
func (r *SyncRun) Outcome() string {
	switch {
	case r.Failed:
		return "failed"
	case r.ErrorCount() > 0 || len(r.AuditFailures) > 0:
		return "partial"
	default:
		return "success"
	}
}

// Message summarizes the run in one line for the trigger surface.
func (r *SyncRun) Message() string {
	if r.Failed {
		return "sync failed: " + r.FailureReason
	}
	if r.Kind == RunKindOrders && r.Orders != nil {
		return fmt.Sprintf("orders: %d created, %d skipped, %d errors",
			r.Orders.Synced, r.Orders.Skipped, r.Orders.Errors)
	}
	synced, skipped := 0, 0
	for _, c := range r.Channels {
		synced += c.Synced
		skipped += c.Skipped
	}
	msg := fmt.Sprintf("inventory: %d channels, %d discrepancies, %d corrected, %d in sync, %d errors",
		len(r.Channels), len(r.Discrepancies), synced, skipped, r.ErrorCount())
	if n := len(r.AuditFailures); n > 0 {
		msg += fmt.Sprintf(", %d audit failures", n)
	}
	return msg
}

// SortedChannels returns the channels of the run in canonical order.
func (r *SyncRun) SortedChannels() []channel.Channel {
	out := make([]channel.Channel, 0, len(r.Channels))
	for ch := range r.Channels {
		out = append(out, ch)
	}
	sortChannels(out)
	return out
}

// SortedChannels returns the ingested channels in canonical order.
func (r *IngestResult) SortedChannels() []channel.Channel {
	out := make([]channel.Channel, 0, len(r.Channels))
	for ch := range r.Channels {
		out = append(out, ch)
	}
	sortChannels(out)
	return out
}

// ChannelHealth is the result of one adapter Ping
type ChannelHealth struct {
	Channel   channel.Channel
	Healthy   bool
	Latency   time.Duration
	Error     string
	CheckedAt time.Time
}

func sortChannels(chs []channel.Channel) {
	rank := make(map[channel.Channel]int)
	for i, ch := range channel.All() {
		rank[ch] = i
	}
	sort.SliceStable(chs, func(i, j int) bool {
		ri, iok := rank[chs[i]]
		rj, jok := rank[chs[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return chs[i] < chs[j]
		}
	})
}
