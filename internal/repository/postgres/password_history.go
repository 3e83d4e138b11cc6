package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/admin-security/internal/model"
	"github.com/jwalitptl/admin-security/internal/repository"
)

type passwordHistoryRepository struct {
	BaseRepository
}

func NewPasswordHistoryRepository(base BaseRepository) repository.PasswordHistoryRepository {
	return &passwordHistoryRepository{base}
}

func (r *passwordHistoryRepository) SelectPasswordHistory(ctx context.Context, userID int) ([]model.PasswordHistoryEntry, error) {
	query := `
		SELECT user_id, password, created_at
		FROM password_history
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	var entries []model.PasswordHistoryEntry
	if err := r.GetDB().SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, fmt.Errorf("failed to select password history: %w", err)
	}
	return entries, nil
}

func (r *passwordHistoryRepository) CountHistorySince(ctx context.Context, since time.Time, userID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM password_history
		WHERE user_id = $1 AND created_at >= $2
	`

	var count int
	if err := r.GetDB().GetContext(ctx, &count, query, userID, since); err != nil {
		return 0, fmt.Errorf("failed to count password history: %w", err)
	}
	return count, nil
}
