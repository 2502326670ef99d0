// Package main provides the entry point for the SENTINEL console, the
// presentation tier of the SENTINEL threat intelligence platform. It
// serves presentation-ready view models derived from the platform's REST
// API; all storage, ingestion, and scoring live behind that API.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lvonguyen/sentinel-console/internal/api"
	"github.com/lvonguyen/sentinel-console/internal/assistant"
	"github.com/lvonguyen/sentinel-console/internal/attackmap"
	"github.com/lvonguyen/sentinel-console/internal/auth"
	"github.com/lvonguyen/sentinel-console/internal/config"
	"github.com/lvonguyen/sentinel-console/internal/dashboard"
	"github.com/lvonguyen/sentinel-console/internal/feeds"
	"github.com/lvonguyen/sentinel-console/internal/reports"
	"github.com/lvonguyen/sentinel-console/internal/search"
)

// Version information (injected at build time via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "configs/console.yaml", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("SENTINEL console %s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Missing config is fine for local use; defaults point at localhost.
		cfg = config.DefaultConfig()
		cfg.API.BaseURL = firstNonEmpty(os.Getenv("SENTINEL_API_URL"), cfg.API.BaseURL)
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting SENTINEL console",
		zap.String("version", Version),
		zap.String("api", cfg.API.BaseURL),
	)

	app, err := newApp(cfg, logger)
	if err != nil {
		logger.Fatal("initialization failed", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", app.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	app.routes(r)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	app.session.Init(ctx, app.client)
	app.aggregator.Start(ctx)
	defer app.aggregator.Stop()

	go func() {
		logger.Info("console listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	sig := <-sigChan
	logger.Info("shutting down", zap.String("signal", sig.String()))
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
	logger.Info("console stopped")
}

// app wires the console's views together around one API client.
type app struct {
	client     *api.Client
	session    *auth.Session
	aggregator *dashboard.Aggregator
	feedMgr    *feeds.Manager
	attackView *attackmap.View
	searchView *search.View
	reportView *reports.View
	chat       *assistant.Conversation
	logger     *zap.Logger
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	session := auth.NewSession(auth.NewFileTokenStore(cfg.Auth.TokenFile), logger)
	client := api.NewClient(cfg.API, logger, session.Token)

	if cfg.Cache.Enabled {
		cache := api.NewCache(cfg.Cache.Redis, logger)
		if err := cache.Ping(context.Background()); err != nil {
			logger.Warn("response cache unavailable, continuing without it", zap.Error(err))
		} else {
			client.WithCache(cache)
		}
	}

	return &app{
		client:  client,
		session: session,
		aggregator: dashboard.NewAggregator(client, dashboard.Config{
			PollInterval:  cfg.Dashboard.PollInterval,
			TimelineLimit: cfg.Dashboard.TimelineLimit,
			TopThreats:    cfg.Dashboard.TopThreats,
		}, logger),
		feedMgr:    feeds.NewManager(client, logger),
		attackView: attackmap.NewView(client, logger),
		searchView: search.NewView(client, logger),
		reportView: reports.NewView(client, logger),
		chat:       assistant.NewConversation(client, logger),
		logger:     logger,
	}, nil
}

func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
