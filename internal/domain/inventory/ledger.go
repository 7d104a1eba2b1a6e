package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/channel"
)

// Ledger owns every persisted quantity and every audit write.
// All mutations of LocalQuantity go through it; callers never read-modify-write.
type Ledger interface {
	// GetCatalogForSync returns variants with a positive quantity together with
	// their channel records, ordered by SKU. It takes no row locks.
	GetCatalogForSync(ctx context.Context) ([]CatalogEntry, error)

	// UpsertChannelRecord stores the last known quantity of a variant on a channel.
	// Fails with ErrVariantNotFound or ErrInvalidChannel for an invalid key.
	UpsertChannelRecord(ctx context.Context, variantID uuid.UUID, ch channel.Channel, quantity int) error

	// AppendAudit inserts one audit entry. Failures are *AuditWriteError.
	AppendAudit(ctx context.Context, entry AuditEntry) error

	// ReserveForOrder decrements every line in one transaction, writing one
	// RESERVED entry per line. Any shortfall rolls back everything.
	ReserveForOrder(ctx context.Context, items []LineItem, reason string) error

	// ReleaseForOrder increments every line and writes RELEASED entries. The
	// increment is committed before the audit write.
	ReleaseForOrder(ctx context.Context, items []LineItem, reason string) error

	// BulkAdjust sets absolute quantities. Unknown variants are skipped and reported.
	BulkAdjust(ctx context.Context, adjustments []Adjustment) (*BulkAdjustResult, error)

	// ListAudit returns the most recent audit entries of a variant, newest first
	ListAudit(ctx context.Context, variantID uuid.UUID, limit int) ([]AuditEntry, error)

	// FindVariantBySKU resolves an exact, case-sensitive SKU
	FindVariantBySKU(ctx context.Context, sku string) (*Variant, error)
}
