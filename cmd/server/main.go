package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/exportops/backend/internal/application/catalog"
	ledgerapp "github.com/exportops/backend/internal/application/ledger"
	partnerapp "github.com/exportops/backend/internal/application/partner"
	tradeapp "github.com/exportops/backend/internal/application/trade"
	"github.com/exportops/backend/internal/infrastructure/config"
	"github.com/exportops/backend/internal/infrastructure/event"
	"github.com/exportops/backend/internal/infrastructure/lock"
	"github.com/exportops/backend/internal/infrastructure/logger"
	"github.com/exportops/backend/internal/infrastructure/persistence"
	"github.com/exportops/backend/internal/infrastructure/telemetry"
	"github.com/exportops/backend/internal/interfaces/http/handler"
	"github.com/exportops/backend/internal/interfaces/http/middleware"
	"github.com/exportops/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ExportOps Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Telemetry providers
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Database query tracing
	if cfg.Telemetry.DBTraceEnabled {
		dbTracingCfg := telemetry.DefaultDBTracingConfig()
		dbTracingCfg.Enabled = true
		if err := telemetry.RegisterDBTracing(db.DB, dbTracingCfg, log); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Redis client for distributed ledger locks
	var rdb *redis.Client
	if cfg.Lock.Distributed {
		rdb = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		log.Info("Redis connected, distributed ledger locks enabled")
	}
	ledgerLocker := lock.New(cfg.Lock, rdb, log)

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)
	entryRepo := persistence.NewGormEntryRepository(db.DB)

	// Application services
	commitmentService := ledgerapp.NewCommitmentService(txScope, log)
	availabilityService := ledgerapp.NewAvailabilityService(entryRepo, log)
	inwardService := ledgerapp.NewInwardService(txScope, warehouseRepo, commitmentService, log)
	outwardService := ledgerapp.NewOutwardService(txScope, ledgerLocker, log)
	summaryService := ledgerapp.NewSummaryService(txScope, productRepo, warehouseRepo, log)
	orderService := tradeapp.NewOrderService(txScope, commitmentService, log)
	pickupService := tradeapp.NewPickupService(txScope, commitmentService, inwardService, log)
	productService := catalogapp.NewProductService(productRepo, log)
	warehouseService := partnerapp.NewWarehouseService(warehouseRepo, log)

	// Event bus for ledger domain events
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	commitmentService.SetEventPublisher(eventBus)
	inwardService.SetEventPublisher(eventBus)
	outwardService.SetEventPublisher(eventBus)
	orderService.SetEventPublisher(eventBus)
	pickupService.SetEventPublisher(eventBus)

	// Ledger counters fed from domain events, stock-health gauges collected
	// on a fixed interval
	if meterProvider.IsEnabled() {
		ledgerMetrics, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
			Meter:             meterProvider.Meter("ledger"),
			Logger:            log,
			LowStockThreshold: cfg.Ledger.LowStockThreshold,
			StockProvider:     telemetry.NewGormStockMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize ledger metrics", zap.Error(err))
		} else {
			eventBus.Subscribe(telemetry.NewLedgerEventHandler(ledgerMetrics, log))
			ledgerMetrics.StartPeriodicCollection(context.Background(), 0)
			defer ledgerMetrics.Stop()
		}
	}

	// HTTP handlers
	receiptHandler := handler.NewReceiptHandler(inwardService)
	dispatchHandler := handler.NewDispatchHandler(outwardService)
	stockHandler := handler.NewStockHandler(availabilityService, summaryService)
	orderHandler := handler.NewOrderHandler(orderService)
	pickupHandler := handler.NewPickupHandler(pickupService)
	productHandler := handler.NewProductHandler(productService)
	warehouseHandler := handler.NewWarehouseHandler(warehouseService)
	systemHandler := handler.NewSystemHandler()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order: request ID first so recovery and logging can tag
	// entries, tracing before handlers so spans cover the full request.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		ServiceName:   cfg.Telemetry.ServiceName,
		Enabled:       cfg.Telemetry.Enabled,
	}))

	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(receiptHandler).
		Register(dispatchHandler).
		Register(stockHandler).
		Register(orderHandler).
		Register(pickupHandler).
		Register(productHandler).
		Register(warehouseHandler).
		Register(systemHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports liveness including database reachability
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
