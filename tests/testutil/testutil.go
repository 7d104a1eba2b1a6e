// Package testutil provides shared fixtures for package and integration tests:
// isolated sqlite ledgers, a scriptable channel adapter and HTTP helpers.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewSQLiteDB opens an isolated in-memory database with the schema migrated.
// One connection keeps every statement on the same in-memory database, so
// code under test must run in-transaction queries on the transaction handle.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:testutil_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...), "migrate sqlite")
	return db
}

// Store bundles the ledger and order store sharing one database.
type Store struct {
	DB     *gorm.DB
	Ledger *persistence.GormInventoryLedger
	Orders *persistence.GormOrderStore
}

// NewStore returns a ledger and an order store over a fresh sqlite database.
func NewStore(t *testing.T) *Store {
	t.Helper()
	db := NewSQLiteDB(t)
	return &Store{
		DB:     db,
		Ledger: persistence.NewGormInventoryLedger(db, nil),
		Orders: persistence.NewGormOrderStore(db, nil),
	}
}

// SeedVariant creates a variant with the given on-hand quantity.
func (s *Store) SeedVariant(t *testing.T, sku string, qty int) *inventory.Variant {
	t.Helper()
	v, err := inventory.NewVariant(sku, "Variant "+sku, decimal.NewFromInt(10), qty)
	require.NoError(t, err)
	require.NoError(t, s.Ledger.CreateVariant(context.Background(), v))
	return v
}

// Quantity returns the current on-hand quantity of sku.
func (s *Store) Quantity(t *testing.T, sku string) int {
	t.Helper()
	v, err := s.Ledger.FindVariantBySKU(context.Background(), sku)
	require.NoError(t, err)
	return v.LocalQuantity
}

// Audit returns the audit entries of sku, newest first.
func (s *Store) Audit(t *testing.T, sku string) []inventory.AuditEntry {
	t.Helper()
	v, err := s.Ledger.FindVariantBySKU(context.Background(), sku)
	require.NoError(t, err)
	entries, err := s.Ledger.ListAudit(context.Background(), v.ID, 100)
	require.NoError(t, err)
	return entries
}

// ContextWithTimeout returns a context cancelled at test cleanup at the latest.
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// RequireEventually polls condition until it holds or timeout elapses.
func RequireEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(interval)
	}
	require.Fail(t, "Condition not met within timeout", msgAndArgs...)
}
