package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jwalitptl/admin-security/internal/model"
)

var ErrNotFound = errors.New("not found")

// All repository interfaces in one file
type (
	// ParameterRepository stores security parameters. FindByKey returns nil, nil
	// for unknown keys.
	ParameterRepository interface {
		FindByKey(ctx context.Context, key string) (*model.Parameter, error)
		Update(ctx context.Context, key, value string) error
		List(ctx context.Context) ([]*model.Parameter, error)
	}

	PasswordHistoryRepository interface {
		SelectPasswordHistory(ctx context.Context, userID int) ([]model.PasswordHistoryEntry, error)
		CountHistorySince(ctx context.Context, since time.Time, userID int) (int, error)
	}

	AccountRepository interface {
		Get(ctx context.Context, id int) (*model.Account, error)
		// UpdatePassword stores the encoded password and records it in the
		// password history in one transaction.
		UpdatePassword(ctx context.Context, id int, encoded string, changedAt time.Time, expiresAt *time.Time) error
		ListExpiring(ctx context.Context, filter model.ExpiringAccountFilter) ([]*model.Account, error)
		MarkAlertSent(ctx context.Context, id int, at time.Time) error
		ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}

	ConnectionLogRepository interface {
		CountFailuresSince(ctx context.Context, login string, since time.Time) (int, error)
	}
)

// Set bundles the repositories of one storage backend.
type Set struct {
	Parameters  ParameterRepository
	History     PasswordHistoryRepository
	Accounts    AccountRepository
	Connections ConnectionLogRepository
	// Ping checks the backend, nil when there is nothing to check.
	Ping  func(ctx context.Context) error
	Close func() error
}
