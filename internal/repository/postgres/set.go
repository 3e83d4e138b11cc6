package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/admin-security/internal/repository"
)

// NewSet builds every repository on db.
func NewSet(db *sqlx.DB) *repository.Set {
	base := NewBaseRepository(db)
	return &repository.Set{
		Parameters:  NewParameterRepository(base),
		History:     NewPasswordHistoryRepository(base),
		Accounts:    NewAccountRepository(base),
		Connections: NewConnectionLogRepository(base),
		Ping:        db.PingContext,
		Close:       db.Close,
	}
}
