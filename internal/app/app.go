// Package app wires the shared infrastructure of the api and worker binaries.
package app

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/admin-security/internal/config"
	"github.com/jwalitptl/admin-security/internal/policy"
	"github.com/jwalitptl/admin-security/internal/repository"
	"github.com/jwalitptl/admin-security/internal/repository/memory"
	"github.com/jwalitptl/admin-security/internal/repository/postgres"
	"github.com/jwalitptl/admin-security/pkg/logger"
	"github.com/jwalitptl/admin-security/pkg/messaging"
	"github.com/jwalitptl/admin-security/pkg/messaging/redis"
	"github.com/jwalitptl/admin-security/pkg/security"
)

// NewLogger builds the application logger and installs it as the global
// zerolog logger used by the HTTP middleware.
func NewLogger(cfg config.LogConfig, service string) *logger.Logger {
	l := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		JSON:       cfg.JSON,
	}).WithFields(map[string]interface{}{"service": service})

	log.Logger = *l.Zerolog()
	return l
}

// OpenRepositories connects to PostgreSQL, or falls back to process memory
// when no database host is configured.
func OpenRepositories(cfg config.DatabaseConfig, l *logger.Logger) (*repository.Set, error) {
	if cfg.Host == "" {
		l.Warn("no database host configured, using in-memory storage")
		return memory.NewStore().Set(), nil
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	l.Info("connected to database", "host", cfg.Host, "name", cfg.Name)
	return postgres.NewSet(db), nil
}

// OpenBroker connects to Redis, or returns an in-process broker when no URL
// is configured.
func OpenBroker(cfg config.RedisConfig, l *logger.Logger) (messaging.Broker, error) {
	if cfg.URL == "" {
		l.Warn("no redis url configured, parameter changes stay local to this instance")
		return messaging.NewMemoryBroker(), nil
	}

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.URL,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	}, l.Zerolog())
	if err != nil {
		return nil, fmt.Errorf("failed to open broker: %w", err)
	}
	return broker, nil
}

// NewEngine returns the policy engine with the production format rule and
// digest algorithms.
func NewEngine() *policy.Engine {
	return policy.NewEngine(security.NewFormatValidator(), security.NewDigestHasher())
}
