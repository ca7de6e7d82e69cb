package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"basegraph.app/cadence/common/id"
	"basegraph.app/cadence/common/logger"
	"basegraph.app/cadence/common/otel"
	"basegraph.app/cadence/core/config"
	"basegraph.app/cadence/core/db"
	"basegraph.app/cadence/internal/metrics"
	"basegraph.app/cadence/internal/planning"
	"basegraph.app/cadence/internal/queue"
	"basegraph.app/cadence/internal/service"
	"basegraph.app/cadence/internal/store"
	"basegraph.app/cadence/internal/worker"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	fmt.Printf("%s\n", banner)

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger.Setup(cfg)

	slog.InfoContext(ctx, "cadence worker starting",
		"env", cfg.Env,
		"consumer_group", cfg.Refresh.Group,
		"consumer_name", cfg.Refresh.Consumer)

	// The worker mints plan ids too, so it needs its own node id.
	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Refresh.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Refresh.Stream)

	consumer, err := queue.NewRedisConsumer(ctx, redisClient, queue.ConsumerConfig{
		Stream:       cfg.Refresh.Stream,
		Group:        cfg.Refresh.Group,
		Consumer:     cfg.Refresh.Consumer,
		DLQStream:    cfg.Refresh.DLQStream,
		BatchSize:    1,
		Block:        5 * time.Second,
		MaxAttempts:  cfg.Refresh.MaxAttempts,
		RequeueDelay: time.Second,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewPrometheus(registry, cfg.Metrics.Namespace)
	if err != nil {
		slog.ErrorContext(ctx, "failed to register metrics", "error", err)
		os.Exit(1)
	}

	services := service.NewServices(service.ServicesConfig{
		Stores:         store.NewStores(database.Pool()),
		TxRunner:       service.NewTxRunner(database),
		Engine:         planning.New(planning.Collaborators{}),
		Metrics:        recorder,
		DefaultHorizon: cfg.Planning.DefaultHorizonWeeks,
	})

	w := worker.New(consumer, services.Plans(), recorder, worker.Config{
		MaxAttempts: cfg.Refresh.MaxAttempts,
	})

	reclaimer := worker.NewReclaimer(consumer, worker.ReclaimerConfig{
		MinIdle:   5 * time.Minute,
		Interval:  time.Minute,
		BatchSize: 10,
	}, w.HandleMessage)

	metricsServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "metrics server error", "error", err)
		}
	}()

	errCh := make(chan error, 2)
	go func() {
		errCh <- w.Run(ctx)
	}()
	go func() {
		reclaimer.Run(ctx)
		errCh <- nil
	}()

	slog.InfoContext(ctx, "worker initialized and running", "metrics_port", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	reclaimer.Stop()
	w.Stop()

	select {
	case <-shutdownCtx.Done():
		slog.WarnContext(ctx, "shutdown timeout exceeded")
	case err := <-errCh:
		if err != nil {
			slog.ErrorContext(ctx, "worker error during shutdown", "error", err)
		}
	}

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "metrics server shutdown error", "error", err)
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
	}

	slog.InfoContext(ctx, "worker shutdown complete")
}

const banner = `
  ___ __ _  __| | ___ _ __   ___ ___   __      _____  _ __| | _____ _ __
 / __/ _' |/ _' |/ _ \ '_ \ / __/ _ \  \ \ /\ / / _ \| '__| |/ / _ \ '__|
| (_| (_| | (_| |  __/ | | | (_|  __/   \ V  V / (_) | |  |   <  __/ |
 \___\__,_|\__,_|\___|_| |_|\___\___|    \_/\_/ \___/|_|  |_|\_\___|_|
`
