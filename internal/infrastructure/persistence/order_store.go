package persistence

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/channel"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
)

// GormOrderStore implements order.Store using GORM
type GormOrderStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormOrderStore creates a new GormOrderStore
func NewGormOrderStore(db *gorm.DB, logger *zap.Logger) *GormOrderStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormOrderStore{db: db, logger: logger.Named("order_store")}
}

// ExistsByExternalID reports whether the channel order was already ingested
func (s *GormOrderStore) ExistsByExternalID(ctx context.Context, ch channel.Channel, externalID string) (bool, error) {
	return orderExists(s.db.WithContext(ctx), ch, externalID)
}

// CreateFromChannel stores the order and applies its stock effect in one transaction
func (s *GormOrderStore) CreateFromChannel(ctx context.Context, o *order.Order) (*order.CreateResult, error) {
	result := &order.CreateResult{Order: o}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Warnings from an aborted attempt must not leak into the result
		result.Warnings = result.Warnings[:0]

		exists, err := orderExists(tx, o.Channel, o.ExternalID)
		if err != nil {
			return err
		}
		if exists {
			return order.ErrDuplicateOrder
		}

		var entries []inventory.AuditEntry
		reason := fmt.Sprintf("%s order %s", o.Channel, o.ExternalID)
		for i := range o.Items {
			item := &o.Items[i]

			var variant models.VariantModel
			err := tx.Select("id", "sku").Where("sku = ?", item.SKU).Take(&variant).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.Warnings = append(result.Warnings, fmt.Sprintf("sku %q not found, item skipped", item.SKU))
				continue
			}
			if err != nil {
				return err
			}
			id := variant.ID
			item.VariantID = &id

			if !o.Status.ConsumesStock() || item.Quantity <= 0 {
				continue
			}
			taken, err := decrementFloored(tx, id, item.Quantity)
			if err != nil {
				return err
			}
			if taken < item.Quantity {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("sku %q: ordered %d but only %d on hand, quantity floored at zero", item.SKU, item.Quantity, taken))
			}
			if taken > 0 {
				entries = append(entries, inventory.NewAuditEntry(id, -taken, inventory.ChangeTypeReserved, reason))
			}
		}

		if err := tx.Create(models.OrderModelFromDomain(o)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return order.ErrDuplicateOrder
			}
			return err
		}
		for _, e := range entries {
			if err := appendAudit(tx, e); err != nil {
				return fmt.Errorf("order audit: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, w := range result.Warnings {
		s.logger.Warn("Order ingestion warning",
			zap.String("channel", o.Channel.String()),
			zap.String("external_id", o.ExternalID),
			zap.String("warning", w),
		)
	}
	return result, nil
}

// FindByExternalID loads an order with its items
func (s *GormOrderStore) FindByExternalID(ctx context.Context, ch channel.Channel, externalID string) (*order.Order, error) {
	var row models.OrderModel
	if err := s.db.WithContext(ctx).
		Preload("Items").
		Where("channel = ? AND external_id = ?", ch, externalID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

func orderExists(db *gorm.DB, ch channel.Channel, externalID string) (bool, error) {
	var count int64
	if err := db.Model(&models.OrderModel{}).
		Where("channel = ? AND external_id = ?", ch, externalID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormOrderStore implements order.Store
var _ order.Store = (*GormOrderStore)(nil)
