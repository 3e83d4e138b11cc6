package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	// Password policy metrics
	PasswordValidations *prometheus.CounterVec
	PasswordChanges     *prometheus.CounterVec
	ParameterUpdates    *prometheus.CounterVec
	AccessLockouts      prometheus.Counter

	// Account lifetime worker metrics
	ExpiryAlertsSent    prometheus.Counter
	ExpiryAlertsFailed  prometheus.Counter
	AccountsExpired     prometheus.Counter
	WorkerRunsDuration  prometheus.Histogram
}

// NewMetrics creates the application metrics and registers them with reg.
func NewMetrics(namespace, subsystem string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PasswordValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "password_validations_total",
			Help:      "Password validations by audience and outcome",
		}, []string{"audience", "outcome"}),
		PasswordChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "password_changes_total",
			Help:      "Password change attempts by outcome",
		}, []string{"outcome"}),
		ParameterUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "parameter_updates_total",
			Help:      "Security parameter updates by operation",
		}, []string{"operation"}),
		AccessLockouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "access_lockouts_total",
			Help:      "Access checks that found the login locked out",
		}),
		ExpiryAlertsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "expiry_alerts_sent_total",
			Help:      "Account expiry alerts sent",
		}),
		ExpiryAlertsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "expiry_alerts_failed_total",
			Help:      "Account expiry alerts that could not be sent",
		}),
		AccountsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "accounts_expired_total",
			Help:      "Accounts deactivated because their lifetime ended",
		}),
		WorkerRunsDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "account_worker_run_duration_seconds",
			Help:      "Time spent in one account lifetime worker run",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.PasswordValidations,
			m.PasswordChanges,
			m.ParameterUpdates,
			m.AccessLockouts,
			m.ExpiryAlertsSent,
			m.ExpiryAlertsFailed,
			m.AccountsExpired,
			m.WorkerRunsDuration,
		)
	}
	return m
}

// New creates unregistered metrics, convenient for tests.
func New(namespace string) *Metrics {
	return NewMetrics(namespace, "", nil)
}
