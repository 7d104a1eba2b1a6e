package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBConfig controls span creation for ledger queries.
type DBConfig struct {
	Enabled            bool
	LogFullSQL         bool          // keep bound variables in db.statement
	SlowQueryThreshold time.Duration // Default: 200ms
	DBSystem           string        // Default: postgresql
	TracerProvider     trace.TracerProvider
}

type queryStartKey struct{}

// InstrumentDB registers otelgorm on db plus callbacks that tag slow or failed statements.
func InstrumentDB(db *gorm.DB, cfg DBConfig, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled")
		return nil
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	annotate := slowQueryAnnotator(cfg.SlowQueryThreshold)
	cb := db.Callback()
	err := errors.Join(
		cb.Create().Before("gorm:create").Register("storefront:start_create", markQueryStart),
		cb.Query().Before("gorm:query").Register("storefront:start_query", markQueryStart),
		cb.Update().Before("gorm:update").Register("storefront:start_update", markQueryStart),
		cb.Delete().Before("gorm:delete").Register("storefront:start_delete", markQueryStart),
		cb.Row().Before("gorm:row").Register("storefront:start_row", markQueryStart),
		cb.Raw().Before("gorm:raw").Register("storefront:start_raw", markQueryStart),

		cb.Create().After("gorm:create").Register("storefront:annotate_create", annotate),
		cb.Query().After("gorm:query").Register("storefront:annotate_query", annotate),
		cb.Update().After("gorm:update").Register("storefront:annotate_update", annotate),
		cb.Delete().After("gorm:delete").Register("storefront:annotate_delete", annotate),
		cb.Row().After("gorm:row").Register("storefront:annotate_row", annotate),
		cb.Raw().After("gorm:raw").Register("storefront:annotate_raw", annotate),
	)
	if err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThreshold),
		zap.String("db_system", cfg.DBSystem),
	)
	return nil
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func slowQueryAnnotator(threshold time.Duration) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}

		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))

		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			span.RecordError(db.Error)
			span.SetStatus(codes.Error, db.Error.Error())
		}

		start, ok := ctx.Value(queryStartKey{}).(time.Time)
		if !ok {
			return
		}
		if elapsed := time.Since(start); elapsed > threshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
