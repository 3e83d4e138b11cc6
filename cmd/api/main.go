package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/admin-security/internal/app"
	"github.com/jwalitptl/admin-security/internal/config"
	"github.com/jwalitptl/admin-security/internal/handler/health"
	securityHandler "github.com/jwalitptl/admin-security/internal/handler/security"
	"github.com/jwalitptl/admin-security/internal/middleware"
	"github.com/jwalitptl/admin-security/internal/repository/cached"
	"github.com/jwalitptl/admin-security/internal/router"
	securityService "github.com/jwalitptl/admin-security/internal/service/security"
	"github.com/jwalitptl/admin-security/pkg/auth"
	"github.com/jwalitptl/admin-security/pkg/metrics"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to load .env file")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := app.NewLogger(cfg.Log, "admin-security-api")
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	repos, err := app.OpenRepositories(cfg.Database, logger)
	if err != nil {
		logger.Fatal(err, "failed to initialize storage")
	}
	defer repos.Close()

	broker, err := app.OpenBroker(cfg.Redis, logger)
	if err != nil {
		logger.Fatal(err, "failed to initialize broker")
	}
	defer broker.Close()

	params := cached.NewParameterStore(repos.Parameters, cached.Config{
		TTL:             cfg.Cache.TTL,
		CleanupInterval: cfg.Cache.CleanupInterval,
	}, logger.Zerolog())
	go func() {
		if err := params.Listen(ctx, broker); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error(err, "parameter invalidation listener stopped")
		}
	}()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.NewMetrics(cfg.Monitoring.Namespace, "policy", registry)

	// Initialize services
	securitySvc := securityService.NewService(securityService.Dependencies{
		Engine:      app.NewEngine(),
		Parameters:  params,
		History:     repos.History,
		Accounts:    repos.Accounts,
		Connections: repos.Connections,
		Broker:      broker,
		Metrics:     appMetrics,
		Logger:      logger,
		Defaults:    cfg.Security.Defaults.PolicyDefaults(),
		Channel:     cached.ChannelParametersUpdated,
	})

	if err := middleware.RegisterValidators(middleware.ValidationConfig{
		CustomValidators: securityHandler.Validators(),
	}); err != nil {
		logger.Fatal(err, "failed to register validators")
	}

	// Initialize handlers
	readiness := map[string]health.Pinger{}
	if repos.Ping != nil {
		readiness["database"] = health.PingFunc(repos.Ping)
	}
	if p, ok := broker.(health.Pinger); ok {
		readiness["redis"] = p
	}
	var gatherer prometheus.Gatherer = registry
	if !cfg.Monitoring.PrometheusEnabled {
		gatherer = prometheus.NewRegistry()
	}
	healthH := health.NewHandler(gatherer, readiness)
	secH := securityHandler.NewHandler(securitySvc)

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	// Setup router
	r := router.NewRouter(
		middleware.NewAuthMiddleware(jwtSvc),
		healthH,
		secH,
		secH,
		router.RouterConfig{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			AdminRole:        cfg.JWT.AdminRole,
			MetricsPrefix:    cfg.Monitoring.Namespace + "_http",
			Registerer:       registry,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		logger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(err, "failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, "server forced to shutdown")
	}
	logger.Info("server exited")
}
