package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/admin-security/internal/repository"
)

type connectionLogRepository struct {
	BaseRepository
}

func NewConnectionLogRepository(base BaseRepository) repository.ConnectionLogRepository {
	return &connectionLogRepository{base}
}

func (r *connectionLogRepository) CountFailuresSince(ctx context.Context, login string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM connection_log
		WHERE login = $1 AND success = FALSE AND attempted_at >= $2
	`

	var count int
	if err := r.GetDB().GetContext(ctx, &count, query, login, since); err != nil {
		return 0, fmt.Errorf("failed to count access failures: %w", err)
	}
	return count, nil
}
