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

	"storefront-service/config"
	"storefront-service/internal/api"
	"storefront-service/internal/auth"
	"storefront-service/internal/broker"
	"storefront-service/internal/catalog"
	"storefront-service/internal/curator"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/service"
	"storefront-service/internal/store"
	"storefront-service/internal/util"
	"storefront-service/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront service", zap.String("env", cfg.Server.Env))

	tp, err := util.InitTracer("storefront-service", cfg.Observ.JaegerEndpoint, cfg.Observ.SampleRatio)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	policy, err := catalog.ParseReconcilePolicy(cfg.Catalog.Reconcile)
	if err != nil {
		logger.Fatal("Invalid catalog configuration", zap.Error(err))
	}

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.Migrate(migrateCtx)
	migrateCancel()
	if err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Redis connected")

	catalogProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicCatalog)
	defer catalogProducer.Close()
	orderProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
	defer orderProducer.Close()
	logger.Info("Kafka producers initialized",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("catalog_topic", cfg.Kafka.TopicCatalog),
		zap.String("order_topic", cfg.Kafka.TopicOrder))

	eventPublisher := broker.NewEventPublisher(catalogProducer, orderProducer)

	catalogStore := catalog.NewStore(catalog.Fallback(), catalog.WithReconcilePolicy(policy))
	catalogClient := service.NewCatalogClient(db, eventPublisher)
	gateway := service.NewGateway(catalogClient, catalogStore)
	checkout := service.NewCheckout(db, eventPublisher)
	sessions := service.NewSessions(catalogStore, gateway, checkout, redisClient, cfg.Server.MaxSessions)
	identity := auth.NewIdentity(cfg.Auth.JWTSecret, cfg.Auth.AdminEmail)

	var model curator.Model
	if gemini, err := curator.NewGeminiModel(context.Background(), cfg.Curator.GeminiAPIKey, cfg.Curator.Model); err != nil {
		logger.Warn("Curator disabled", zap.Error(err))
	} else {
		model = gemini
	}
	assistant := curator.New(model)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	group := worker.ConsumerGroup(cfg.Kafka.ConsumerGroup)
	catalogConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicCatalog, group)
	catalogWorker := worker.NewCatalogWorker(catalogConsumer, catalogClient, catalogStore)
	go func() {
		if err := catalogWorker.Start(workerCtx); err != nil && workerCtx.Err() == nil {
			logger.Error("Catalog worker error", zap.Error(err))
		}
	}()
	logger.Info("Catalog worker started",
		zap.String("group", group),
		zap.String("reconcile", policy.String()))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(sessions, identity, assistant, map[string]api.Pinger{
		"postgres": db,
		"redis":    redisClient,
	})
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if err := catalogWorker.Stop(); err != nil {
		logger.Warn("Error stopping catalog worker", zap.Error(err))
	}

	logger.Info("Server exited")
}
