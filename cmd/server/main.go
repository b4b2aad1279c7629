package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/gtfsreview/backend/docs"
	categoryapp "github.com/gtfsreview/backend/internal/application/category"
	evaluationapp "github.com/gtfsreview/backend/internal/application/evaluation"
	feedapp "github.com/gtfsreview/backend/internal/application/feed"
	"github.com/gtfsreview/backend/internal/application/media"
	"github.com/gtfsreview/backend/internal/infrastructure/auth"
	"github.com/gtfsreview/backend/internal/infrastructure/config"
	"github.com/gtfsreview/backend/internal/infrastructure/event"
	"github.com/gtfsreview/backend/internal/infrastructure/gtfsfeed"
	"github.com/gtfsreview/backend/internal/infrastructure/gtfsschema"
	"github.com/gtfsreview/backend/internal/infrastructure/logger"
	"github.com/gtfsreview/backend/internal/infrastructure/migration"
	"github.com/gtfsreview/backend/internal/infrastructure/persistence"
	"github.com/gtfsreview/backend/internal/infrastructure/session"
	"github.com/gtfsreview/backend/internal/infrastructure/storage"
	"github.com/gtfsreview/backend/internal/infrastructure/telemetry"
	"github.com/gtfsreview/backend/internal/interfaces/http/handler"
	"github.com/gtfsreview/backend/internal/interfaces/http/middleware"
	"github.com/gtfsreview/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//go:generate swag init --dir ../.. --generalInfo cmd/server/main.go --output ../../docs --outputTypes go

//	@title			GTFS Review API
//	@version		1.0
//	@description	Manual data quality review of GTFS feeds
//	@BasePath		/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Admin bearer token. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
		Rotation: logger.RotationConfig{
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		},
	}

	// The bootstrap logger reports telemetry setup; the final logger also
	// exports over OTLP when log export is enabled
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	tel, err := telemetry.Setup(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	log, err := logger.New(logCfg, tel.LogCore(cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting GTFS review service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database with the zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if err := migrateSchema(db, &cfg.Database, log); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database ready", zap.String("driver", db.Driver))

	// GTFS reference
	schema, err := loadSchema(cfg.GTFS)
	if err != nil {
		log.Fatal("Failed to load GTFS reference", zap.Error(err))
	}

	// Object storage for widget and result images and feed archives
	objects, err := storage.New(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	images := media.NewImages(objects, cfg.Storage.PresignExpiration, log)
	var archive media.ObjectStorage
	if cfg.Storage.ArchiveUploadedZip {
		archive = objects
	}

	// Repositories
	reviewCategoryRepo := persistence.NewGormReviewCategoryRepository(db.DB)
	gtfsFieldRepo := persistence.NewGormGtfsFieldRepository(db.DB)
	dataSelectorRepo := persistence.NewGormDataSelectorRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	resultRepo := persistence.NewGormResultRepository(db.DB)
	modeRepo := persistence.NewGormModeRepository(db.DB)

	// Application services
	extractor := gtfsfeed.NewExtractor(gtfsfeed.ExtractorConfig{
		BaseDir:      cfg.Feed.BaseDir,
		MaxEntrySize: cfg.Feed.MaxEntrySize,
		MaxTotalSize: cfg.Feed.MaxTotalSize,
	}, log)
	feedService := feedapp.NewService(extractor, archive, modeRepo, log)
	feedService.SetReviewMetrics(tel.Metrics)
	categoryService := categoryapp.NewService(reviewCategoryRepo, gtfsFieldRepo, dataSelectorRepo,
		resultRepo, schema, images, log)
	evaluationService := evaluationapp.NewService(reviewRepo, resultRepo, reviewCategoryRepo,
		modeRepo, feedService, images, log)
	evaluationService.SetReviewMetrics(tel.Metrics)

	// Event bus: audit log for every event, metrics for the review lifecycle
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))
	eventBus.Subscribe(event.NewMetricsHandler(tel.Metrics))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()
	categoryService.SetEventPublisher(eventBus)
	evaluationService.SetEventPublisher(eventBus)

	// Removes extracted feeds whose session has expired
	if !cfg.Feed.SweeperDisabled {
		sweeper := gtfsfeed.NewSweeper(gtfsfeed.SweeperConfig{
			BaseDir:   extractor.BaseDir(),
			Retention: cfg.Feed.Retention,
			Interval:  cfg.Feed.SweepInterval,
		}, log)
		if err := sweeper.Start(ctx); err != nil {
			log.Fatal("Failed to start feed sweeper", zap.Error(err))
		}
		defer func() {
			if err := sweeper.Stop(context.Background()); err != nil {
				log.Error("Error stopping feed sweeper", zap.Error(err))
			}
		}()
	}

	// Sessions, with Redis shared by the token blacklist when available
	sessionStore, err := session.NewStoreFactory(cfg.Redis, cfg.Session.TTL,
		session.WithLogger(log),
		session.WithInMemoryFallback(!cfg.Session.RequireRedis),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create session store", zap.Error(err))
	}
	defer func() {
		if err := sessionStore.Close(); err != nil {
			log.Error("Error closing session store", zap.Error(err))
		}
	}()

	checks := map[string]handler.HealthCheck{"database": db.Ping}

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisStore, ok := sessionStore.(*session.RedisStore); ok {
		blacklist = auth.NewRedisTokenBlacklist(redisStore.Client())
		checks["redis"] = func(ctx context.Context) error {
			return redisStore.Client().Ping(ctx).Err()
		}
	}

	authenticator := auth.NewAdminAuthenticator(cfg.Admin, auth.NewJWTService(cfg.JWT), blacklist, log)
	if !authenticator.Enabled() {
		log.Warn("Admin password not configured; admin routes are open")
	}

	// HTTP handlers
	handlers := router.Handlers{
		Feed:       handler.NewFeedHandler(feedService),
		Category:   handler.NewCategoryHandler(categoryService),
		Widget:     handler.NewWidgetHandler(categoryService),
		Evaluation: handler.NewEvaluationHandler(evaluationService, feedService),
		Review:     handler.NewReviewHandler(evaluationService),
		Auth:       handler.NewAuthHandler(authenticator),
		System:     handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion, checks),
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	httpMetrics, err := middleware.HTTPMetrics(tel.Meter.Meter(telemetry.MeterName))
	if err != nil {
		log.Fatal("Failed to register HTTP metrics", zap.Error(err))
	}

	securityConfig := middleware.DefaultSecurityConfig()
	securityConfig.HSTSEnabled = cfg.Session.Secure

	// Middleware order:
	// 1. RequestID, so every later log line and span carries it
	// 2. Recovery and request logging
	// 3. Tracing and span attributes
	// 4. Security headers and CORS
	// 5. Body limit, with the feed upload allowed a larger body
	// 6. Session, metrics and profiling labels
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanAttributes())
	engine.Use(middleware.Secure(securityConfig))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	engine.Use(middleware.BodyLimitWithRoutes(cfg.HTTP.MaxBodySize, map[string]int64{
		r.BasePath() + "/feed": cfg.Feed.MaxUploadSize,
	}))
	engine.Use(middleware.Session(sessionStore, middleware.SessionOptionsFromConfig(cfg.Session)))
	engine.Use(httpMetrics)
	if tel.Profiler.IsEnabled() {
		engine.Use(middleware.Profiling())
	}

	adminGuard := middleware.AdminAuth(authenticator)
	if cfg.Swagger.Enabled {
		router.RegisterDocs(r, middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, adminGuard))
		log.Info("API documentation enabled", zap.String("path", "/swagger/index.html"),
			zap.Bool("require_auth", cfg.Swagger.RequireAuth), zap.Strings("allowed_ips", cfg.Swagger.AllowedIPs))
	}

	router.RegisterAPI(r, handlers, router.Guards{
		Admin: adminGuard,
		Login: middleware.RateLimit(middleware.NewRateLimiter(cfg.Admin.LoginLimit, cfg.Admin.LoginWindow)),
	})
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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down telemetry", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// migrateSchema brings the schema up to date: AutoMigrate for SQLite, the
// SQL migrations for PostgreSQL when auto-migration is enabled
func migrateSchema(db *persistence.Database, cfg *config.DatabaseConfig, log *zap.Logger) error {
	if db.Driver == persistence.DriverSQLite {
		return db.AutoMigrate()
	}
	if !cfg.AutoMigrate {
		return nil
	}
	sqlDB, err := db.SQL()
	if err != nil {
		return err
	}
	return migration.Apply(sqlDB, cfg.MigrationsPath, log)
}

func loadSchema(cfg config.GTFSConfig) (*gtfsschema.Schema, error) {
	if cfg.SchemaPath == "" {
		return gtfsschema.Default()
	}
	return gtfsschema.Load(cfg.SchemaPath)
}
