package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/aesthiq-api/internal/config"
	"github.com/jwalitptl/aesthiq-api/internal/handler/health"
	promHandler "github.com/jwalitptl/aesthiq-api/internal/handler/prometheus"
	"github.com/jwalitptl/aesthiq-api/internal/repository/postgres"
	"github.com/jwalitptl/aesthiq-api/pkg/logger"
	"github.com/jwalitptl/aesthiq-api/pkg/messaging/redis"
	"github.com/jwalitptl/aesthiq-api/pkg/metrics"
	"github.com/jwalitptl/aesthiq-api/pkg/worker"
)

func main() {
	configFile := flag.String("config", "", "path to config file")
	opsAddr := flag.String("ops-addr", ":8081", "listen address for health and metrics")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	workerLogger := logger.Setup(cfg.Log.ToLoggerConfig()).With().Str("service", "outbox_worker").Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := postgres.NewDB(ctx, postgres.DBConfig{
		DSN:             cfg.Database.DSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		workerLogger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	redisClient, err := redis.NewClient(ctx, cfg.Redis.ToBrokerConfig())
	if err != nil {
		workerLogger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	broker := redis.NewRedisBroker(redisClient, workerLogger)
	defer broker.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	processor, err := worker.NewOutboxProcessor(
		postgres.NewOutboxRepository(postgres.NewBaseRepository(db)),
		broker,
		cfg.Outbox.ToWorkerConfig(),
		workerLogger,
		metrics.NewMetrics(registry, "aesthiq", "outbox_processor"),
	)
	if err != nil {
		workerLogger.Fatal().Err(err).Msg("Failed to create outbox processor")
	}

	ops := opsServer(*opsAddr, map[string]health.Pinger{
		"postgres": db,
		"redis": health.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}),
	}, registry)
	go func() {
		if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			workerLogger.Error().Err(err).Msg("Health check server failed")
			os.Exit(1)
		}
	}()

	processor.Start(ctx)

	shutdown(ops, workerLogger)
}

func opsServer(addr string, checks map[string]health.Pinger, registry *prometheus.Registry) *http.Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	health.NewHandler(checks).RegisterRoutes(engine)
	engine.GET("/metrics", promHandler.New(registry, "aesthiq_worker").Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func shutdown(srv *http.Server, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to stop health check server")
	}
	logger.Info().Msg("Worker stopped")
}
