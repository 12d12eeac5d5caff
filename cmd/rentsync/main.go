package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rentsync/internal/app/schedule"
	"rentsync/internal/app/services"
	"rentsync/internal/app/uow"
	"rentsync/internal/infra/broker/kafka"
	"rentsync/internal/infra/cache"
	"rentsync/internal/infra/config"
	mongodb "rentsync/internal/infra/db/mongo"
	"rentsync/internal/infra/fetch"
	ginserver "rentsync/internal/infra/http/gin"
	"rentsync/internal/infra/obs"
	"rentsync/internal/infra/storage/memory"
	"rentsync/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	uowFactory, ready := buildStorage(ctx, cfg, logger)

	opts := services.Options{
		UoWFactory:   uowFactory,
		Fetcher:      fetch.NewHTTPFetcher(cfg.FetchTimeout),
		Logger:       logger,
		TopicPrefix:  cfg.KafkaTopicPrefix,
		FetchTimeout: cfg.FetchTimeout,
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Error("kafka producer init failed", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		opts.Publisher = producer
	} else {
		logger.Info("kafka disabled, sync events will not be published")
	}

	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.CacheTTL)
		defer redisCache.Close()
		opts.Cache = redisCache
	} else {
		logger.Info("redis disabled, calendar responses are uncached")
	}

	publishFeeds := false
	if cfg.S3Endpoint != "" {
		uploader, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
		if err != nil {
			logger.Error("s3 client init failed", "error", err)
			os.Exit(1)
		}
		opts.Uploader = uploader
		publishFeeds = true
	} else {
		logger.Info("s3 disabled, exported feeds served over HTTP only")
	}

	core, err := services.New(opts)
	if err != nil {
		logger.Error("application core init failed", "error", err)
		os.Exit(1)
	}

	scheduler := schedule.NewSyncScheduler(core, logger, cfg.SyncCron, publishFeeds)
	if err := scheduler.Start(ctx); err != nil {
		logger.Error("sync scheduler init failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: ready}, ginserver.Handlers{
		Calendar: ginserver.CalendarHandler{Core: core},
		Quote:    ginserver.QuoteHandler{Core: core},
		Blocks:   ginserver.BlockHandler{Core: core},
		Rules:    ginserver.RuleHandler{Core: core},
		Sync:     ginserver.SyncHandler{Core: core},
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

// buildStorage picks Mongo when configured and falls back to the in-memory
// stores otherwise. The readiness probe reports Mongo connectivity; the
// memory stores are always ready.
func buildStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (uow.UoWFactory, func() bool) {
	if cfg.MongoURI == "" {
		logger.Info("mongo disabled, using in-memory storage")
		return memory.NewFactory(), func() bool { return true }
	}
	client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("mongo init failed", "error", err)
		os.Exit(1)
	}
	factory := mongodb.NewFactory(client.DB)
	if err := factory.EnsureIndexes(ctx); err != nil {
		logger.Error("mongo index creation failed", "error", err)
		os.Exit(1)
	}
	ready := func() bool {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return client.Ping(pingCtx) == nil
	}
	return factory, ready
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
