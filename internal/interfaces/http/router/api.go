package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	_ "github.com/storefront/backend/docs"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// Handlers are the HTTP handlers mounted by NewEngine
type Handlers struct {
	Sync      *handler.SyncHandler
	Inventory *handler.InventoryHandler
	System    *handler.SystemHandler
}

// Options configures the middleware stack
type Options struct {
	Logger         *zap.Logger
	Meter          metric.Meter // nil disables HTTP metrics
	Tracing        middleware.TracingConfig
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	TrustedProxies []string
	// AdminGuard protects the POST and DELETE routes; nil leaves them open
	AdminGuard gin.HandlerFunc
}

// NewEngine builds the gin engine with the middleware stack and every route.
//
// Middleware order:
//  1. RequestID, so every later layer can tag its output
//  2. Tracing, then request logging and panic recovery inside the span
//  3. Metrics, security headers, CORS and the body limit
func NewEngine(opts Options, h Handlers) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(opts.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(opts.Tracing))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(opts.Meter))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(opts.CORS))
	engine.Use(middleware.BodyLimit(opts.MaxBodySize))

	// Probes stay outside API versioning
	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	syncRoutes := NewDomainGroup("sync", "/sync").
		GET("/status", h.Sync.GetStatus).
		GET("/history", h.Sync.GetHistory).
		GET("/health", h.Sync.GetHealth).
		POST("/inventory", h.Sync.TriggerInventorySync).
		POST("/orders", h.Sync.TriggerOrderSync).
		POST("/schedule", h.Sync.Schedule).
		DELETE("/schedule", h.Sync.Unschedule)

	inventoryRoutes := NewDomainGroup("inventory", "/inventory").
		POST("/adjustments", h.Inventory.BulkAdjust).
		GET("/variants/:id/audit", h.Inventory.ListAudit)

	systemRoutes := NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo)

	NewRouter(engine, WithAPIVersion("v1"), WithAdminGuard(opts.AdminGuard)).
		Register(syncRoutes).
		Register(inventoryRoutes).
		Register(systemRoutes).
		Setup()

	if opts.AdminGuard == nil {
		log.Warn("Admin guard not configured, mutating routes are open",
			zap.Strings("routes", append(syncRoutes.Guarded(), inventoryRoutes.Guarded()...)))
	}

	return engine
}
