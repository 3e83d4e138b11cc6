package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/admin-security/internal/app"
	"github.com/jwalitptl/admin-security/internal/config"
	"github.com/jwalitptl/admin-security/internal/email"
	"github.com/jwalitptl/admin-security/internal/worker"
	"github.com/jwalitptl/admin-security/pkg/logger"
	"github.com/jwalitptl/admin-security/pkg/metrics"
)

const healthAddr = ":8081"

func setupHealthCheck(log *logger.Logger, gatherer prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/health/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: healthAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err, "health check server failed")
		}
	}()
	return srv
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to load .env file")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger := app.NewLogger(cfg.Log, "admin-security-worker")

	if !cfg.Alerts.Enabled {
		logger.Warn("account alerts disabled, worker only deactivates expired accounts")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := app.OpenRepositories(cfg.Database, logger)
	if err != nil {
		logger.Fatal(err, "failed to initialize storage")
	}
	defer repos.Close()

	registry := prometheus.NewRegistry()
	workerMetrics := metrics.NewMetrics(cfg.Monitoring.Namespace, "worker", registry)

	mailer := email.NewSMTPService(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	w := worker.NewAccountLifetimeWorker(
		app.NewEngine(),
		repos.Parameters,
		repos.Accounts,
		mailer,
		workerMetrics,
		logger,
		worker.Config{
			Interval:      cfg.Alerts.Interval,
			BatchSize:     cfg.Alerts.BatchSize,
			DisableAlerts: !cfg.Alerts.Enabled,
		},
	)

	healthSrv := setupHealthCheck(logger, registry)
	defer healthSrv.Close()

	logger.Info(fmt.Sprintf("worker started, running every %s", cfg.Alerts.Interval))
	w.Start(ctx)
	logger.Info("worker stopped")
}
