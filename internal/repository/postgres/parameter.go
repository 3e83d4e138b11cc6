package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jwalitptl/admin-security/internal/model"
	"github.com/jwalitptl/admin-security/internal/repository"
)

type parameterRepository struct {
	BaseRepository
}

func NewParameterRepository(base BaseRepository) repository.ParameterRepository {
	return &parameterRepository{base}
}

func (r *parameterRepository) FindByKey(ctx context.Context, key string) (*model.Parameter, error) {
	query := `
		SELECT parameter_key, parameter_value, COALESCE(label, '') AS label
		FROM security_parameters
		WHERE parameter_key = $1
	`

	var p model.Parameter
	if err := r.GetDB().GetContext(ctx, &p, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get parameter %s: %w", key, err)
	}
	return &p, nil
}

func (r *parameterRepository) Update(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO security_parameters (parameter_key, parameter_value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (parameter_key) DO UPDATE
		SET parameter_value = EXCLUDED.parameter_value, updated_at = NOW()
	`

	if _, err := r.GetDB().ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to update parameter %s: %w", key, err)
	}
	return nil
}

func (r *parameterRepository) List(ctx context.Context) ([]*model.Parameter, error) {
	query := `
		SELECT parameter_key, parameter_value, COALESCE(label, '') AS label
		FROM security_parameters
		ORDER BY parameter_key
	`

	var params []*model.Parameter
	if err := r.GetDB().SelectContext(ctx, &params, query); err != nil {
		return nil, fmt.Errorf("failed to list parameters: %w", err)
	}
	return params, nil
}
