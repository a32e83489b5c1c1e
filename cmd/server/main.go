package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/RabbirReaper/online-order-system-sub004/internal/application/integration"
	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
	"github.com/RabbirReaper/online-order-system-sub004/internal/infrastructure/config"
	"github.com/RabbirReaper/online-order-system-sub004/internal/infrastructure/dedup"
	"github.com/RabbirReaper/online-order-system-sub004/internal/infrastructure/delivery"
	"github.com/RabbirReaper/online-order-system-sub004/internal/infrastructure/logger"
	"github.com/RabbirReaper/online-order-system-sub004/internal/infrastructure/persistence"
	"github.com/RabbirReaper/online-order-system-sub004/internal/infrastructure/printing"
	"github.com/RabbirReaper/online-order-system-sub004/internal/infrastructure/signature"
	"github.com/RabbirReaper/online-order-system-sub004/internal/infrastructure/token"
	"github.com/RabbirReaper/online-order-system-sub004/internal/interfaces/http/handler"
	"github.com/RabbirReaper/online-order-system-sub004/internal/interfaces/http/middleware"
	"github.com/RabbirReaper/online-order-system-sub004/internal/interfaces/http/router"
)

// version is set at build time via -ldflags.
var version = "dev"

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

	log.Info("Starting order integration service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	credentialRepo := persistence.NewGormCredentialRepository(db.DB)
	linkRepo := persistence.NewGormStoreLinkRepository(db.DB)
	menuRepo := persistence.NewGormMenuRepository(db.DB)
	orderRepo := persistence.NewGormPlatformOrderRepository(db.DB)

	// Processed-event ledger: Redis when available, otherwise the database.
	var dedupStore platform.DedupStore
	if cfg.Redis.Enabled {
		redisStore, err := dedup.NewRedisStore(dedup.RedisConfig{
			Host:      cfg.Redis.Host,
			Port:      cfg.Redis.Port,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			Retention: cfg.Webhook.LedgerRetention,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		dedupStore = redisStore
		log.Info("Using Redis event ledger",
			zap.String("host", cfg.Redis.Host),
			zap.Duration("retention", cfg.Webhook.LedgerRetention))
	} else {
		dedupStore = dedup.NewGormStore(db.DB)
		log.Info("Using database event ledger",
			zap.Duration("retention", cfg.Webhook.LedgerRetention))
	}
	defer func() {
		if err := dedupStore.Close(); err != nil {
			log.Error("Error closing event ledger", zap.Error(err))
		}
	}()

	// Webhook signing secrets, one key ring across all platforms so secret
	// rotation keeps a verification window for the old key.
	signingSecrets := make(map[platform.Code]string)
	if cfg.Platforms.UberEats.Enabled {
		signingSecrets[platform.CodeUberEats] = cfg.Platforms.UberEats.SigningSecret
	}
	if cfg.Platforms.Foodpanda.Enabled {
		signingSecrets[platform.CodeFoodpanda] = cfg.Platforms.Foodpanda.SigningSecret
	}
	keyRing := signature.NewKeyRing(signingSecrets)

	// Platform adapters
	var adapters []platform.DeliveryPlatform
	if cfg.Platforms.UberEats.Enabled {
		uberConfig := delivery.NewUberEatsConfig()
		if cfg.Platforms.UberEats.APIBaseURL != "" {
			uberConfig.APIBaseURL = cfg.Platforms.UberEats.APIBaseURL
		}
		uberAdapter, err := delivery.NewUberEatsAdapter(uberConfig)
		if err != nil {
			log.Fatal("Failed to create Uber Eats adapter", zap.Error(err))
		}
		adapters = append(adapters, uberAdapter)
	}
	if cfg.Platforms.Foodpanda.Enabled {
		pandaConfig := delivery.NewFoodpandaConfig()
		if cfg.Platforms.Foodpanda.APIBaseURL != "" {
			pandaConfig.APIBaseURL = cfg.Platforms.Foodpanda.APIBaseURL
		}
		pandaAdapter, err := delivery.NewFoodpandaAdapter(pandaConfig)
		if err != nil {
			log.Fatal("Failed to create foodpanda adapter", zap.Error(err))
		}
		adapters = append(adapters, pandaAdapter)
	}
	if len(adapters) == 0 {
		log.Warn("No delivery platforms enabled; webhook and sync endpoints will reject all traffic")
	}
	registry := delivery.NewRegistry(adapters...)

	// OAuth token exchangers, one per enabled platform
	exchangers := make(map[platform.Code]platform.TokenExchanger)
	for code, platformCfg := range map[platform.Code]config.PlatformConfig{
		platform.CodeUberEats:  cfg.Platforms.UberEats,
		platform.CodeFoodpanda: cfg.Platforms.Foodpanda,
	} {
		if !platformCfg.Enabled {
			continue
		}
		exchanger, err := token.NewHTTPExchanger(token.ExchangerConfig{
			TokenURL:     platformCfg.TokenURL,
			ClientID:     platformCfg.ClientID,
			ClientSecret: platformCfg.ClientSecret,
			Scopes:       platformCfg.Scopes,
		})
		if err != nil {
			log.Fatal("Failed to create token exchanger",
				zap.String("platform", string(code)), zap.Error(err))
		}
		exchangers[code] = exchanger
	}

	tokenManager := token.NewManager(credentialRepo, linkRepo, registry, exchangers, keyRing, log,
		token.WithExpirySkew(cfg.Sync.TokenExpirySkew))

	// Receipt printing: bridge when configured, log sink otherwise
	var printer platform.PrinterSink
	if cfg.Printing.BridgeEndpoint != "" {
		bridgePrinter, err := printing.NewBridgePrinter(printing.BridgeConfig{
			Endpoint: cfg.Printing.BridgeEndpoint,
			Timeout:  cfg.Printing.Timeout,
		}, log)
		if err != nil {
			log.Fatal("Failed to create print bridge", zap.Error(err))
		}
		printer = bridgePrinter
	} else {
		logPrinter, err := printing.NewLogPrinter(log)
		if err != nil {
			log.Fatal("Failed to create log printer", zap.Error(err))
		}
		printer = logPrinter
	}

	// Application services
	orderSink := integration.NewOrderCommandService(linkRepo, registry, tokenManager, orderRepo, printer, log)
	webhookService := integration.NewWebhookService(registry, keyRing, dedupStore, orderSink, log)
	syncService := integration.NewSyncService(linkRepo, registry, tokenManager, menuRepo, log,
		integration.WithSyncRetryInterval(cfg.Sync.RetryBaseInterval))
	provisioningService := integration.NewProvisioningService(tokenManager, linkRepo, log)

	// Periodic ledger GC keeps the processed-event table inside the
	// redelivery retention window. The Redis ledger expires entries itself.
	gcCtx, stopGC := context.WithCancel(context.Background())
	defer stopGC()
	go runLedgerGC(gcCtx, webhookService, cfg.Webhook.LedgerRetention, cfg.Webhook.PurgeInterval, log)

	// HTTP handlers
	webhookHandler := handler.NewWebhookHandler(webhookService, cfg.Webhook.MaxBodySize, log)
	integrationHandler := handler.NewIntegrationHandler(provisioningService, syncService, log)
	systemHandler := handler.NewSystemHandler(version)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request id, panic recovery, request logging, CORS,
	// body size limit.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(systemHandler)
	r.Register(webhookHandler)
	r.Register(integrationHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
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

	stopGC()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// runLedgerGC purges expired processed-event entries on a fixed interval
// until the context is cancelled.
func runLedgerGC(ctx context.Context, webhooks *integration.WebhookService, retention, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := webhooks.PurgeProcessedEvents(ctx, retention)
			if err != nil {
				log.Error("Event ledger purge failed", zap.Error(err))
				continue
			}
			if purged > 0 {
				log.Info("Purged expired processed events", zap.Int64("count", purged))
			}
		}
	}
}
