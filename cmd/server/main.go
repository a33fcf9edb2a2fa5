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

	"checkout-service/config"
	"checkout-service/internal/api"
	"checkout-service/internal/broker"
	"checkout-service/internal/catalog"
	"checkout-service/internal/checkout"
	"checkout-service/internal/redisclient"
	"checkout-service/internal/store"
	"checkout-service/internal/util"
	"checkout-service/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting checkout service")

	if cfg.Observ.TracingEnabled {
		tp, err := util.InitTracer(util.TracerConfig{
			ServiceName:    "checkout-service",
			Environment:    cfg.Server.Env,
			JaegerEndpoint: cfg.Observ.JaegerEndpoint,
			SampleRatio:    cfg.Observ.SampleRatio,
		})
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				logger.Error("Error shutting down tracer", zap.Error(err))
			}
		}()
	}

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	var db *store.Store
	if cfg.NeedsDatabase() {
		var err error
		db, err = store.NewStore(cfg.Database.URL)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := db.Migrate(appCtx); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
		logger.Info("Database connected")
	}

	source, sourceName := buildSource(cfg, db)

	if cfg.Catalog.CacheEnabled {
		redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		logger.Info("Redis connected")

		source = catalog.NewCachedSource(source, redisClient, cfg.Catalog.CacheTTL)
		sourceName += "+redis"
	}

	observers := []checkout.Observer{checkout.MetricsObserver{}}

	var auditWorker *worker.AuditWorker
	publisherDone := make(chan struct{})
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicCheckout)
		defer producer.Close()
		logger.Info("Kafka producer initialized")

		eventPublisher := broker.NewEventPublisher(producer, 1024)
		go func() {
			eventPublisher.Run(appCtx)
			close(publisherDone)
		}()
		observers = append(observers, eventPublisher)

		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicCheckout, cfg.Kafka.ConsumerGroup)
		auditWorker = worker.NewAuditWorker(consumer, db)
		go func() {
			if err := auditWorker.Start(appCtx); err != nil && appCtx.Err() == nil {
				logger.Error("Audit worker error", zap.Error(err))
			}
		}()
	} else {
		close(publisherDone)
	}

	registry := checkout.NewRegistry(
		appCtx,
		catalog.NewInstrumented(source, sourceName, cfg.Catalog.FetchTimeout),
		observers...,
	)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(registry)
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

	logger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	registry.CloseAll()
	appCancel()
	<-publisherDone
	if auditWorker != nil {
		if err := auditWorker.Stop(); err != nil {
			logger.Error("Failed to stop audit worker", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}

func buildSource(cfg *config.Config, db *store.Store) (catalog.Source, string) {
	switch cfg.Catalog.Source {
	case config.CatalogSourcePostgres:
		return db, db.Name()
	default:
		return catalog.NewStaticSource(catalog.DefaultProducts(), catalog.WithLatency(cfg.Catalog.MockLatency)), config.CatalogSourceStatic
	}
}
