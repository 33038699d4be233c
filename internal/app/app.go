package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	httpadapter "github.com/arman61-hub/AutoDek/internal/adapter/http"
	natsadapter "github.com/arman61-hub/AutoDek/internal/adapter/messaging/nats"
	"github.com/arman61-hub/AutoDek/internal/adapter/ratelimit"
	"github.com/arman61-hub/AutoDek/internal/adapter/repository/cache"
	"github.com/arman61-hub/AutoDek/internal/adapter/repository/postgres"
	"github.com/arman61-hub/AutoDek/internal/adapter/storage/s3"
	"github.com/arman61-hub/AutoDek/internal/adapter/vision/gemini"
	"github.com/arman61-hub/AutoDek/internal/app/config"
	"github.com/arman61-hub/AutoDek/internal/listing/usecase"
	"github.com/arman61-hub/AutoDek/internal/mailer"
	"github.com/arman61-hub/AutoDek/internal/platform/logger"
	"github.com/arman61-hub/AutoDek/internal/platform/tracer"
)

const serviceName = "autodek-listing"

type App struct {
	cfg            *config.Config
	log            logger.Logger
	server         *http.Server
	pool           *pgxpool.Pool
	redisClient    *redis.Client
	publisher      *natsadapter.Publisher
	tracerProvider *sdktrace.TracerProvider
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	log, err := logger.NewZapLogger(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	log.Infof("configuration loaded: env=%s, http port=%s", cfg.Env, cfg.HTTPServer.Port)

	var tracerProvider *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		tracerProvider, err = tracer.Init(ctx, serviceName, cfg.Tracing.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("initialize tracer: %w", err)
		}
		log.Info("tracing enabled")
	}

	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Info("postgres ready")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	log.Info("redis ready")

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL, log)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	log.Info("nats ready")

	storage, err := s3.NewS3Storage(cfg.MinIO, log)
	if err != nil {
		return nil, fmt.Errorf("initialize object storage: %w", err)
	}

	visionClient, err := gemini.NewClient(gemini.Config{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		BaseURL:     cfg.Gemini.BaseURL,
		Timeout:     cfg.Gemini.Timeout,
		Temperature: cfg.Gemini.Temperature,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("initialize vision client: %w", err)
	}

	listingRepo := postgres.NewListingRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	feedCache := cache.NewListingViewCache(redisClient, publisher)
	rateGate := ratelimit.NewRedisLimiter(redisClient, cfg.RateLimit.Limit, cfg.RateLimit.Window)
	notifier := mailer.NewMailer(cfg.SMTP, log)

	extractor := usecase.NewExtractorUsecase(visionClient, rateGate, log)
	ingest := usecase.NewIngestUsecase(userRepo, listingRepo, storage, feedCache, notifier, cfg.SMTP.AdminEmail, log)
	lifecycle := usecase.NewLifecycleUsecase(userRepo, listingRepo, storage, feedCache, log)

	handler := httpadapter.NewHandler(extractor, ingest, lifecycle, log)
	router := httpadapter.NewRouter(handler, cfg.JWT.Secret, log)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPServer.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	return &App{
		cfg:            cfg,
		log:            log,
		server:         server,
		pool:           pool,
		redisClient:    redisClient,
		publisher:      publisher,
		tracerProvider: tracerProvider,
	}, nil
}

func (a *App) Run() {
	go func() {
		a.log.Infof("http server listening on %s", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Fatalf("http server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	a.log.Infof("received signal %v, shutting down", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Errorf("http server shutdown: %v", err)
	}

	a.publisher.Close()
	if err := a.redisClient.Close(); err != nil {
		a.log.Errorf("redis close: %v", err)
	}
	a.pool.Close()

	if a.tracerProvider != nil {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := a.tracerProvider.Shutdown(flushCtx); err != nil {
			a.log.Errorf("tracer shutdown: %v", err)
		}
	}

	a.log.Info("shutdown complete")
}
