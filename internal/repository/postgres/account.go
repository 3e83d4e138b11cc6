package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/admin-security/internal/model"
	"github.com/jwalitptl/admin-security/internal/repository"
)

type accountRepository struct {
	BaseRepository
}

func NewAccountRepository(base BaseRepository) repository.AccountRepository {
	return &accountRepository{base}
}

const accountColumns = `id, login, email, status, expires_at, password_expires_at, alerts_sent, last_alert_at, updated_at`

func (r *accountRepository) Get(ctx context.Context, id int) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	var account model.Account
	if err := r.GetDB().GetContext(ctx, &account, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) UpdatePassword(ctx context.Context, id int, encoded string, changedAt time.Time, expiresAt *time.Time) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE accounts
			SET password = $2, password_expires_at = $3, updated_at = $4
			WHERE id = $1
		`, id, encoded, expiresAt, changedAt)
		if err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return repository.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO password_history (user_id, password, created_at)
			VALUES ($1, $2, $3)
		`, id, encoded, changedAt); err != nil {
			return fmt.Errorf("failed to append password history: %w", err)
		}
		return nil
	})
}

func (r *accountRepository) ListExpiring(ctx context.Context, filter model.ExpiringAccountFilter) ([]*model.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts
		WHERE status = $1
		AND expires_at IS NOT NULL
		AND expires_at < $2
		AND alerts_sent < $3
		AND (last_alert_at IS NULL OR last_alert_at < $4)
		ORDER BY expires_at
		LIMIT $5
	`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	var accounts []*model.Account
	err := r.GetDB().SelectContext(ctx, &accounts, query,
		model.AccountStatusActive, filter.ExpiresBefore, filter.MaxAlerts, filter.LastAlertBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring accounts: %w", err)
	}
	return accounts, nil
}

func (r *accountRepository) MarkAlertSent(ctx context.Context, id int, at time.Time) error {
	query := `
		UPDATE accounts
		SET alerts_sent = alerts_sent + 1, last_alert_at = $2, updated_at = $2
		WHERE id = $1
	`

	if _, err := r.GetDB().ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("failed to mark alert sent: %w", err)
	}
	return nil
}

func (r *accountRepository) ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE accounts
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND expires_at IS NOT NULL AND expires_at < $3
	`

	result, err := r.GetDB().ExecContext(ctx, query, model.AccountStatusExpired, model.AccountStatusActive, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to expire accounts: %w", err)
	}
	return result.RowsAffected()
}
