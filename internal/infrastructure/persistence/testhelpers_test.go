package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
)

// setupTestDB opens an isolated in-memory sqlite database with the schema migrated.
// A single connection keeps every statement on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func seedVariant(t *testing.T, ledger *GormInventoryLedger, sku string, qty int) *inventory.Variant {
	t.Helper()
	v, err := inventory.NewVariant(sku, "Variant "+sku, decimal.NewFromInt(10), qty)
	require.NoError(t, err)
	require.NoError(t, ledger.CreateVariant(context.Background(), v))
	return v
}

func quantityOf(t *testing.T, ledger *GormInventoryLedger, sku string) int {
	t.Helper()
	v, err := ledger.FindVariantBySKU(context.Background(), sku)
	require.NoError(t, err)
	return v.LocalQuantity
}
