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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"basegraph.app/cadence/common/id"
	"basegraph.app/cadence/common/llm"
	"basegraph.app/cadence/common/logger"
	"basegraph.app/cadence/common/otel"
	"basegraph.app/cadence/core/config"
	"basegraph.app/cadence/core/db"
	"basegraph.app/cadence/internal/drafting"
	"basegraph.app/cadence/internal/http/handler"
	"basegraph.app/cadence/internal/http/middleware"
	httprouter "basegraph.app/cadence/internal/http/router"
	"basegraph.app/cadence/internal/metrics"
	"basegraph.app/cadence/internal/planning"
	"basegraph.app/cadence/internal/queue"
	"basegraph.app/cadence/internal/service"
	"basegraph.app/cadence/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "cadence starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewPrometheus(registry, cfg.Metrics.Namespace)
	if err != nil {
		slog.ErrorContext(ctx, "failed to register metrics", "error", err)
		os.Exit(1)
	}

	healthChecks := map[string]handler.Check{"database": database.Ping}

	// Async refresh is optional: without Redis the endpoint answers 503.
	var producer queue.Producer
	redisClient, err := connectRedis(ctx, cfg.Refresh.RedisURL)
	if err != nil {
		slog.WarnContext(ctx, "redis unavailable, async refresh disabled", "error", err)
	} else {
		producer = queue.NewRedisProducer(redisClient, cfg.Refresh.Stream)
		defer producer.Close() // closes redisClient
		healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		slog.InfoContext(ctx, "redis connected", "stream", cfg.Refresh.Stream)
	}

	services := service.NewServices(service.ServicesConfig{
		Stores:         store.NewStores(database.Pool()),
		TxRunner:       service.NewTxRunner(database),
		Engine:         planning.New(planning.Collaborators{}),
		Producer:       producer,
		Metrics:        recorder,
		DefaultHorizon: cfg.Planning.DefaultHorizonWeeks,
	})

	var llmClient llm.Client
	if cfg.DraftLLM.Enabled() {
		llmClient, err = llm.New(llm.Config{
			Provider: cfg.DraftLLM.Provider,
			APIKey:   cfg.DraftLLM.APIKey,
			BaseURL:  cfg.DraftLLM.BaseURL,
			Model:    cfg.DraftLLM.Model,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to create llm client", "error", err)
			os.Exit(1)
		}
		slog.InfoContext(ctx, "drafting enabled", "provider", cfg.DraftLLM.Provider, "model", llmClient.Model())
	}
	drafter := drafting.NewService(llmClient, services.Plans())

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, httprouter.RouterConfig{
		Drafter:      drafter,
		Gatherer:     registry,
		HealthChecks: healthChecks,
	})
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services, routes httprouter.RouterConfig) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span, Recovery catches panics, Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, routes)

	return router
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

const banner = `
  ___ __ _  __| | ___ _ __   ___ ___
 / __/ _' |/ _' |/ _ \ '_ \ / __/ _ \
| (_| (_| | (_| |  __/ | | | (_|  __/
 \___\__,_|\__,_|\___|_| |_|\___\___|
`
