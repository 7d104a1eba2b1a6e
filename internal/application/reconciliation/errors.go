package reconciliation

import "errors"

var (
	// ErrCatalogUnavailable fails a run wholesale: without the local catalog nothing can be compared
	ErrCatalogUnavailable = errors.New("reconciliation: local catalog unavailable")
	// ErrSinceRequired is returned by IngestOrders when no lower bound is given
	ErrSinceRequired = errors.New("reconciliation: order ingestion needs a since timestamp")
	// ErrChannelPanic wraps a panic recovered from a channel worker
	ErrChannelPanic = errors.New("reconciliation: channel worker panicked")
)

// OpPanic is the SyncError op of a recovered channel worker panic
const OpPanic = "panic"

