package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/echo-cache/audit"
	"github.com/dev-mohitbeniwal/echo-cache/cache"
	"github.com/dev-mohitbeniwal/echo-cache/config"
	"github.com/dev-mohitbeniwal/echo-cache/controller"
	"github.com/dev-mohitbeniwal/echo-cache/dao"
	"github.com/dev-mohitbeniwal/echo-cache/db"
	logger "github.com/dev-mohitbeniwal/echo-cache/logging"
	"github.com/dev-mohitbeniwal/echo-cache/metrics"
	"github.com/dev-mohitbeniwal/echo-cache/model"
	"github.com/dev-mohitbeniwal/echo-cache/router"
	"github.com/dev-mohitbeniwal/echo-cache/service"
	"github.com/dev-mohitbeniwal/echo-cache/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	cfg := config.GetConfig()

	// Initialize logger
	logger.InitLogger(logger.Options{Dir: cfg.Log.Dir, Level: cfg.Log.Level, Console: cfg.Log.Console})
	defer logger.Sync()

	collector := metrics.NewCollector("echo_cache")

	// Initialize the entity store
	database, err := db.OpenDatabase(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.CloseDatabase(database)

	// Initialize Redis
	redisClient, err := db.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis(redisClient)

	backend := cache.NewGuardedBackend(cache.NewRedisBackend(redisClient), cache.GuardConfig{
		Name:             "redis",
		OpTimeout:        cfg.Cache.OpTimeout,
		MaxRequests:      cfg.Cache.Breaker.MaxRequests,
		Interval:         cfg.Cache.Breaker.Interval,
		Timeout:          cfg.Cache.Breaker.Timeout,
		FailureThreshold: cfg.Cache.Breaker.FailureThreshold,
		MinRequests:      cfg.Cache.Breaker.MinRequests,
	}, collector)

	deps := service.CacheDeps{
		Backend: backend,
		Keys:    cache.NewKeyBuilder(cfg.Cache.Namespace),
		Codec:   cache.MsgpackCodec{},
		TTL: service.TTLs{
			Get:         cfg.Cache.TTL.Get,
			FilterFirst: cfg.Cache.TTL.FF,
			FilterCount: cfg.Cache.TTL.FC,
			Count:       cfg.Cache.TTL.Count,
		},
		Metrics: collector,
	}
	if cfg.Cache.EncryptionKey != "" {
		sealed, err := cache.NewSealedCodec(deps.Codec, []byte(cfg.Cache.EncryptionKey))
		if err != nil {
			logger.Fatal("Invalid cache encryption key", zap.Error(err))
		}
		deps.SealedCodec = sealed
	}

	// Initialize EventBus
	eventBus := util.NewEventBus(cfg.Workers.Count, cfg.Workers.QueueSize)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Initialize services
	lifecycle := dao.NewLifecycle()
	services := service.InitializeServices(database, deps, lifecycle, util.NewValidationUtil())

	auditRepository, err := audit.NewElasticsearchRepository(cfg.Elasticsearch.URL, cfg.Elasticsearch.Index)
	if err != nil {
		logger.Fatal("Failed to initialize audit repository", zap.Error(err))
	}
	auditService := audit.NewService(auditRepository)
	audit.NewTrail(auditService, eventBus).Track(lifecycle, model.WidgetSchema.Kind, model.WidgetLikeSchema.Kind)

	// Set up Gin
	gin.SetMode(gin.ReleaseMode)
	controllers := controller.InitializeControllers(services, auditService)
	r := router.SetupRouter(controllers, router.Options{
		Limiter:           services.RateLimit,
		RateLimitRequests: cfg.RateLimit.Requests,
		RateLimitDuration: cfg.RateLimit.Window,
		Registry:          collector.Registry(),
		Breaker:           backend,
	})

	// Set up the server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Drain queued audit events before the clients close.
	eventBus.Stop()

	logger.Info("Server exiting")
}
