// API server entry point for the risk engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/scamshield/riskengine/internal/application/assessment"
	"github.com/scamshield/riskengine/internal/config"
	"github.com/scamshield/riskengine/internal/domain/artifact"
	"github.com/scamshield/riskengine/internal/infrastructure/database/redis"
	"github.com/scamshield/riskengine/internal/infrastructure/messaging/kafka"
	"github.com/scamshield/riskengine/internal/infrastructure/monitoring/logging"
	"github.com/scamshield/riskengine/internal/infrastructure/monitoring/prometheus"
	"github.com/scamshield/riskengine/internal/intelligence/dynaprobe"
	"github.com/scamshield/riskengine/internal/intelligence/staticmodel"
	httpserver "github.com/scamshield/riskengine/internal/interfaces/http"
	"github.com/scamshield/riskengine/internal/interfaces/http/handlers"
	"github.com/scamshield/riskengine/internal/interfaces/http/middleware"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *httpPort); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, httpPort int) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if httpPort > 0 {
		cfg.Server.Port = httpPort
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.Info("starting risk engine",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port),
		logging.String("cache_backend", cfg.Cache.Backend),
		logging.Bool("probe_enabled", cfg.Probe.Enabled),
		logging.Bool("events_enabled", cfg.Events.Enabled),
	)

	scorer, err := staticmodel.NewScorerFromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("load static models: %w", err)
	}

	registry := dynaprobe.NewRegistry()
	if cfg.Probe.Enabled {
		registry.Register(artifact.TypeLink, dynaprobe.NewFallbackProber(
			dynaprobe.NewBrowserProber(logger), dynaprobe.NewNetProber(logger), logger))
	}
	analyzer := dynaprobe.NewAnalyzer(registry, cfg.Probe, cfg.Rules, cfg.Model, logger)

	var checkers []handlers.HealthChecker

	deps := assessment.Deps{
		Scorer:   scorer,
		Analyzer: analyzer,
		Logger:   logger,
	}

	if cfg.Cache.Backend == "redis" {
		redisClient, err := redis.NewClient(cfg.Cache.Redis, logger)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
		deps.Cache = redis.NewResultCache(redisClient, logger,
			redis.WithPrefix(cfg.Cache.KeyPrefix))
		checkers = append(checkers, &redisHealthAdapter{client: redisClient})
	}

	if cfg.Events.Enabled {
		publisher := kafka.NewPublisher(cfg.Events, logger)
		defer publisher.Close()
		deps.Events = publisher
	}

	var metrics *prometheus.Metrics
	if cfg.Metrics.Enabled {
		metrics = prometheus.New()
		deps.Metrics = metrics
	}

	engine, err := assessment.NewEngine(deps, cfg.Cache, cfg.Probe)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		AssessHandler: handlers.NewAssessHandler(engine, logger),
		HealthHandler: handlers.NewHealthHandler(version, checkers...),
		Logging:       middleware.DefaultLoggingConfig(),
		Logger:        logger,
		Metrics:       metrics,
	})
	server := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))
	}

	if err := server.Stop(context.Background()); err != nil {
		return err
	}
	logger.Info("risk engine stopped")
	return nil
}
