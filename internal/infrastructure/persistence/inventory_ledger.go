package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefront/backend/internal/domain/channel"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
)

const (
	defaultAuditListLimit = 50
	maxAuditListLimit     = 500

	// casRetries bounds compare-and-swap loops on variants.local_quantity
	casRetries = 5
)

var errCASExhausted = errors.New("inventory: concurrent updates exhausted retries")

// GormInventoryLedger implements inventory.Ledger using GORM
type GormInventoryLedger struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormInventoryLedger creates a new GormInventoryLedger
func NewGormInventoryLedger(db *gorm.DB, logger *zap.Logger) *GormInventoryLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormInventoryLedger{db: db, logger: logger.Named("ledger")}
}

// GetCatalogForSync returns in-stock variants with their channel records
func (l *GormInventoryLedger) GetCatalogForSync(ctx context.Context) ([]inventory.CatalogEntry, error) {
	var rows []models.VariantModel
	if err := l.db.WithContext(ctx).
		Preload("Records").
		Where("local_quantity > ?", 0).
		Order("sku ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	entries := make([]inventory.CatalogEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToCatalogEntry()
	}
	return entries, nil
}

// UpsertChannelRecord stores the last known quantity of a variant on a channel
func (l *GormInventoryLedger) UpsertChannelRecord(ctx context.Context, variantID uuid.UUID, ch channel.Channel, quantity int) error {
	if !ch.IsValid() {
		return inventory.ErrInvalidChannel
	}
	if quantity < 0 {
		return inventory.ErrNegativeQuantity
	}

	db := l.db.WithContext(ctx)
	exists, err := variantExists(db, variantID)
	if err != nil {
		return err
	}
	if !exists {
		return inventory.ErrVariantNotFound
	}

	now := time.Now()
	record := &models.ChannelInventoryRecordModel{
		VariantID:    variantID,
		Channel:      ch,
		Quantity:     quantity,
		LastSyncedAt: now,
		UpdatedAt:    now,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "variant_id"}, {Name: "channel"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "last_synced_at", "updated_at"}),
	}).Create(record).Error
}

// AppendAudit inserts one audit entry
func (l *GormInventoryLedger) AppendAudit(ctx context.Context, entry inventory.AuditEntry) error {
	if err := appendAudit(l.db.WithContext(ctx), entry); err != nil {
		return &inventory.AuditWriteError{Entry: entry, Err: err}
	}
	return nil
}

// ReserveForOrder decrements every line all-or-nothing, audit entries included
func (l *GormInventoryLedger) ReserveForOrder(ctx context.Context, items []inventory.LineItem, reason string) error {
	if len(items) == 0 {
		return inventory.ErrNoLineItems
	}
	merged, err := inventory.MergeLineItems(items)
	if err != nil {
		return err
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shortfalls []inventory.Shortfall
		for _, item := range merged {
			res := tx.Model(&models.VariantModel{}).
				Where("id = ? AND local_quantity >= ?", item.VariantID, item.Quantity).
				UpdateColumns(map[string]any{
					"local_quantity": gorm.Expr("local_quantity - ?", item.Quantity),
					"updated_at":     time.Now(),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				continue
			}

			available, err := currentQuantity(tx, item.VariantID)
			if err != nil {
				return err
			}
			shortfalls = append(shortfalls, inventory.Shortfall{
				VariantID: item.VariantID,
				Requested: item.Quantity,
				Available: available,
			})
		}
		if len(shortfalls) > 0 {
			return &inventory.InsufficientInventoryError{Shortfalls: shortfalls}
		}

		for _, item := range merged {
			entry := inventory.NewAuditEntry(item.VariantID, -item.Quantity, inventory.ChangeTypeReserved, reason)
			if err := appendAudit(tx, entry); err != nil {
				return fmt.Errorf("reserve audit: %w", err)
			}
		}
		return nil
	})
}

// ReleaseForOrder increments every line, then writes RELEASED entries outside
// the increment's transaction.
func (l *GormInventoryLedger) ReleaseForOrder(ctx context.Context, items []inventory.LineItem, reason string) error {
	if len(items) == 0 {
		return inventory.ErrNoLineItems
	}
	merged, err := inventory.MergeLineItems(items)
	if err != nil {
		return err
	}

	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range merged {
			res := tx.Model(&models.VariantModel{}).
				Where("id = ?", item.VariantID).
				UpdateColumns(map[string]any{
					"local_quantity": gorm.Expr("local_quantity + ?", item.Quantity),
					"updated_at":     time.Now(),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return inventory.ErrVariantNotFound
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	var auditErrs []error
	for _, item := range merged {
		entry := inventory.NewAuditEntry(item.VariantID, item.Quantity, inventory.ChangeTypeReleased, reason)
		if err := l.AppendAudit(ctx, entry); err != nil {
			l.warnAuditLoss(entry, err)
			auditErrs = append(auditErrs, err)
		}
	}
	return errors.Join(auditErrs...)
}

// BulkAdjust sets absolute quantities item by item
func (l *GormInventoryLedger) BulkAdjust(ctx context.Context, adjustments []inventory.Adjustment) (*inventory.BulkAdjustResult, error) {
	result := &inventory.BulkAdjustResult{
		Applied:       make([]inventory.AppliedAdjustment, 0, len(adjustments)),
		Skipped:       make([]inventory.SkippedAdjustment, 0),
		AuditFailures: make([]inventory.AuditWriteError, 0),
	}

	for _, adj := range adjustments {
		if adj.NewQuantity < 0 {
			result.Skipped = append(result.Skipped, inventory.SkippedAdjustment{
				VariantID: adj.VariantID,
				Reason:    inventory.ErrNegativeQuantity.Message,
			})
			continue
		}

		old, err := l.setQuantity(ctx, adj.VariantID, adj.NewQuantity)
		if errors.Is(err, inventory.ErrVariantNotFound) {
			result.Skipped = append(result.Skipped, inventory.SkippedAdjustment{
				VariantID: adj.VariantID,
				Reason:    inventory.ErrVariantNotFound.Message,
			})
			continue
		}
		if err != nil {
			return result, fmt.Errorf("adjust variant %s: %w", adj.VariantID, err)
		}

		applied := inventory.AppliedAdjustment{
			VariantID:   adj.VariantID,
			OldQuantity: old,
			NewQuantity: adj.NewQuantity,
			Delta:       adj.NewQuantity - old,
		}
		result.Applied = append(result.Applied, applied)
		if applied.Delta == 0 {
			continue
		}

		entry := inventory.NewAuditEntry(adj.VariantID, applied.Delta, inventory.ChangeTypeAdjustment, adj.Reason)
		if err := l.AppendAudit(ctx, entry); err != nil {
			l.warnAuditLoss(entry, err)
			var awe *inventory.AuditWriteError
			if errors.As(err, &awe) {
				result.AuditFailures = append(result.AuditFailures, *awe)
			}
		}
	}

	return result, nil
}

// ListAudit returns the newest audit entries of a variant
func (l *GormInventoryLedger) ListAudit(ctx context.Context, variantID uuid.UUID, limit int) ([]inventory.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultAuditListLimit
	}
	if limit > maxAuditListLimit {
		limit = maxAuditListLimit
	}

	var rows []models.InventoryAuditLogModel
	if err := l.db.WithContext(ctx).
		Where("variant_id = ?", variantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]inventory.AuditEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

// FindVariantBySKU resolves an exact SKU
func (l *GormInventoryLedger) FindVariantBySKU(ctx context.Context, sku string) (*inventory.Variant, error) {
	var row models.VariantModel
	if err := l.db.WithContext(ctx).Where("sku = ?", sku).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrVariantNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// CreateVariant inserts a new variant. Used by seeding and tests.
func (l *GormInventoryLedger) CreateVariant(ctx context.Context, v *inventory.Variant) error {
	return l.db.WithContext(ctx).Create(models.VariantModelFromDomain(v)).Error
}

// setQuantity swaps local_quantity to target and returns the previous value
func (l *GormInventoryLedger) setQuantity(ctx context.Context, variantID uuid.UUID, target int) (int, error) {
	db := l.db.WithContext(ctx)
	for attempt := 0; attempt < casRetries; attempt++ {
		old, err := currentQuantity(db, variantID)
		if err != nil {
			return 0, err
		}
		res := db.Model(&models.VariantModel{}).
			Where("id = ? AND local_quantity = ?", variantID, old).
			UpdateColumns(map[string]any{"local_quantity": target, "updated_at": time.Now()})
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 1 {
			return old, nil
		}
	}
	return 0, errCASExhausted
}

func (l *GormInventoryLedger) warnAuditLoss(entry inventory.AuditEntry, err error) {
	l.logger.Warn("Consistency warning: quantity change committed without audit entry",
		zap.String("variant_id", entry.VariantID.String()),
		zap.String("change_type", entry.ChangeType.String()),
		zap.Int("quantity_change", entry.QuantityChange),
		zap.String("reason", entry.Reason),
		zap.Error(err),
	)
}

// ---------------------------------------------------------------------------
// helpers shared with the order store
// ---------------------------------------------------------------------------

func appendAudit(db *gorm.DB, entry inventory.AuditEntry) error {
	if !entry.ChangeType.IsValid() {
		return fmt.Errorf("invalid change type %q", entry.ChangeType)
	}
	return db.Create(models.AuditLogModelFromDomain(entry)).Error
}

func variantExists(db *gorm.DB, id uuid.UUID) (bool, error) {
	var count int64
	if err := db.Model(&models.VariantModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func currentQuantity(db *gorm.DB, id uuid.UUID) (int, error) {
	var row models.VariantModel
	if err := db.Select("id", "local_quantity").Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, inventory.ErrVariantNotFound
		}
		return 0, err
	}
	return row.LocalQuantity, nil
}

// decrementFloored takes up to want units and returns how many were taken.
// The quantity never goes below zero.
func decrementFloored(db *gorm.DB, id uuid.UUID, want int) (int, error) {
	res := db.Model(&models.VariantModel{}).
		Where("id = ? AND local_quantity >= ?", id, want).
		UpdateColumns(map[string]any{
			"local_quantity": gorm.Expr("local_quantity - ?", want),
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 1 {
		return want, nil
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		have, err := currentQuantity(db, id)
		if err != nil {
			return 0, err
		}
		take := min(have, want)
		res := db.Model(&models.VariantModel{}).
			Where("id = ? AND local_quantity = ?", id, have).
			UpdateColumns(map[string]any{"local_quantity": have - take, "updated_at": time.Now()})
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 1 {
			return take, nil
		}
	}
	return 0, errCASExhausted
}

// Ensure GormInventoryLedger implements inventory.Ledger
var _ inventory.Ledger = (*GormInventoryLedger)(nil)
