package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/admin-security/internal/email"
	"github.com/jwalitptl/admin-security/internal/model"
	"github.com/jwalitptl/admin-security/internal/policy"
	"github.com/jwalitptl/admin-security/internal/repository"
	"github.com/jwalitptl/admin-security/pkg/logger"
	"github.com/jwalitptl/admin-security/pkg/metrics"
)

const day = 24 * time.Hour

// AccountLifetimeWorker deactivates expired accounts and warns users whose
// account is about to expire.
type AccountLifetimeWorker struct {
	engine    *policy.Engine
	params    policy.ParameterStore
	accounts  repository.AccountRepository
	emailSvc  email.Service
	metrics   *metrics.Metrics
	logger    *logger.Logger
	interval  time.Duration
	batchSize int
	alerts    bool
}

type Config struct {
	Interval      time.Duration
	BatchSize     int
	// DisableAlerts limits runs to deactivating expired accounts.
	DisableAlerts bool
}

// RunResult summarizes one run.
type RunResult struct {
	Expired     int64
	AlertsSent  int
	AlertErrors int
}

func NewAccountLifetimeWorker(
	engine *policy.Engine,
	params policy.ParameterStore,
	accounts repository.AccountRepository,
	emailSvc email.Service,
	m *metrics.Metrics,
	log *logger.Logger,
	cfg Config,
) *AccountLifetimeWorker {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if m == nil {
		m = metrics.New("adminsec")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AccountLifetimeWorker{
		engine:    engine,
		params:    params,
		accounts:  accounts,
		emailSvc:  emailSvc,
		metrics:   m,
		logger:    log,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
		alerts:    !cfg.DisableAlerts,
	}
}

// Start runs once immediately and then on every tick until ctx is done.
func (w *AccountLifetimeWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx); err != nil {
			w.logger.Error(err, "account lifetime run failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *AccountLifetimeWorker) RunOnce(ctx context.Context) (RunResult, error) {
	start := time.Now()
	defer func() {
		w.metrics.WorkerRunsDuration.Observe(time.Since(start).Seconds())
	}()

	var result RunResult
	snap, err := w.engine.LoadSnapshot(ctx, w.params)
	if err != nil {
		return result, fmt.Errorf("failed to load security parameters: %w", err)
	}
	now := w.engine.Now()

	expired, err := w.accounts.ExpireBefore(ctx, now)
	if err != nil {
		return result, fmt.Errorf("failed to expire accounts: %w", err)
	}
	result.Expired = expired
	w.metrics.AccountsExpired.Add(float64(expired))
	if expired > 0 {
		w.logger.Info("accounts expired", "count", expired)
	}

	if !w.alerts || snap.AccountLifetimeMonths() <= 0 || snap.AlertLeadTimeDays() <= 0 || snap.AlertCount() <= 0 {
		return result, nil
	}

	accounts, err := w.accounts.ListExpiring(ctx, model.ExpiringAccountFilter{
		ExpiresBefore:   now.Add(time.Duration(snap.AlertLeadTimeDays()) * day),
		MaxAlerts:       snap.AlertCount(),
		LastAlertBefore: now.Add(-time.Duration(snap.AlertIntervalDays()) * day),
		Limit:           w.batchSize,
	})
	if err != nil {
		return result, fmt.Errorf("failed to list expiring accounts: %w", err)
	}

	for _, account := range accounts {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := w.emailSvc.SendAccountExpiryAlert(ctx, account); err != nil {
			result.AlertErrors++
			w.metrics.ExpiryAlertsFailed.Inc()
			w.logger.Error(err, "failed to send expiry alert", "account_id", account.ID)
			continue
		}
		if err := w.accounts.MarkAlertSent(ctx, account.ID, now); err != nil {
			return result, fmt.Errorf("failed to record alert for account %d: %w", account.ID, err)
		}
		result.AlertsSent++
		w.metrics.ExpiryAlertsSent.Inc()
	}
	return result, nil
}
