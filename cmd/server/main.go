package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/application/entitlement"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared/valueobject"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/cache"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/config"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/event"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/logger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/persistence"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/telemetry"
	"github.com/QodexGroup/gym-management-system-sub002/internal/interfaces/http/handler"
	"github.com/QodexGroup/gym-management-system-sub002/internal/interfaces/http/middleware"
	"github.com/QodexGroup/gym-management-system-sub002/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
)

const serviceVersion = "1.0.0"

//	@title			Gym Ledger API
//	@version		1.0
//	@description	Customer bills, payments, memberships and PT packages for the gym front desk.
//	@description	Every mutation returns the refreshed customer view state in meta.view_fresh.

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	PermissionHeader
//	@in							header
//	@name						X-Permissions
//	@description				Comma separated permission keys granted to the caller

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
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry: traces, metrics and, when enabled, OTLP log export teed onto zap
	providers, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		MetricsEnabled:    cfg.Telemetry.MetricsEnabled,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    serviceVersion,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Warn("Telemetry shutdown incomplete", zap.Error(err))
		}
	}()
	log = providers.Logs.Bridge(log, zapcore.InfoLevel)

	log.Info("Starting gym ledger service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("currency", cfg.Ledger.Currency),
	)

	metrics, err := telemetry.NewLedgerMetrics(providers.Meter.Meter("gym-ledger"))
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}

	// Database
	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(log.Named("gorm"), logger.MapGormLogLevel(cfg.Database.LogLevel)),
		persistence.WithTracing(telemetry.DBTracingConfig{
			Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if db.Driver == "sqlite" {
		// Postgres schemas are owned by cmd/migrate
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}
	log.Info("Database connected successfully", zap.String("driver", db.Driver))

	// Views
	views, err := cache.NewSynchronizerFromConfig(ctx, cfg, log, metrics)
	if err != nil {
		log.Fatal("Failed to initialize view synchronizer", zap.Error(err))
	}
	defer func() {
		if err := views.Close(); err != nil {
			log.Warn("Error closing view store", zap.Error(err))
		}
	}()
	go func() {
		if err := views.StartInvalidationSubscription(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("View invalidation subscription ended", zap.Error(err))
		}
	}()

	// Events and notifications
	notifier := event.NewLogNotifier(log)
	bus := event.NewInMemoryEventBus(log.Named("events"))
	bus.Subscribe(event.NewNotificationHandler(notifier, language.English))
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = bus.Stop(stopCtx)
	}()

	// Application
	currency := valueobject.Currency(cfg.Ledger.Currency)
	coordinator := entitlement.NewCoordinator(
		persistence.NewGormTransactionScope(db.DB),
		persistence.NewGormRepositories(db.DB),
		views,
		entitlement.WithEventPublisher(bus),
		entitlement.WithNotifier(notifier),
		entitlement.WithCurrency(currency),
		entitlement.WithLogger(log.Named("entitlement")),
		entitlement.WithMetrics(metrics),
	)

	systemHandler := handler.NewSystemHandler(cfg.App.Name, serviceVersion).
		AddCheck("database", db.Ping)

	// HTTP
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

	// Order matters: the request id and logger come first so that recovery,
	// tracing and permission denials are all logged with it.
	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	gate := middleware.HeaderPermissionGate{}
	engine.Use(
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanAnnotator(),
		middleware.CORSWithConfig(corsConfig),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Timeout(cfg.HTTP.WriteTimeout),
	)

	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithGroupMiddleware(gate.Middleware()),
	)
	router.RegisterAPIRoutes(r, router.Handlers{
		Customers:   handler.NewCustomerHandler(coordinator, currency),
		Bills:       handler.NewBillHandler(coordinator, currency),
		Plans:       handler.NewMembershipPlanHandler(coordinator),
		Allocations: handler.NewPtAllocationHandler(coordinator),
		System:      systemHandler,
	}, gate)
	r.Setup()
	router.RegisterDocs(engine, middleware.DocsAccess(middleware.DocsAccessConfig{
		Enabled:    cfg.Swagger.Enabled,
		AllowedIPs: cfg.Swagger.AllowedIPs,
	}))
	log.Info("Routes registered", zap.Int("count", len(engine.Routes())), zap.String("base", r.BasePath()))

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Failed to start server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
