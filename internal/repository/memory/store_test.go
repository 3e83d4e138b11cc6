package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/admin-security/internal/model"
	"github.com/jwalitptl/admin-security/internal/repository"
)

var base = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func TestParameters(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	p, err := s.FindByKey(ctx, "password_minimum_length")
	require.NoError(t, err)
	assert.Nil(t, p)

	require.NoError(t, s.Update(ctx, "password_minimum_length", "8"))
	require.NoError(t, s.Update(ctx, "password_format", "true"))

	p, err = s.FindByKey(ctx, "password_minimum_length")
	require.NoError(t, err)
	assert.Equal(t, "8", p.Value)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "password_format", all[0].Key)
}

func TestUpdatePasswordAppendsHistory(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.PutAccount(model.Account{ID: 1, Login: "jdoe", Status: model.AccountStatusActive})

	require.NoError(t, s.UpdatePassword(ctx, 1, "old", base.Add(-48*time.Hour), nil))
	require.NoError(t, s.UpdatePassword(ctx, 1, "new", base, nil))
	assert.ErrorIs(t, s.UpdatePassword(ctx, 2, "x", base, nil), repository.ErrNotFound)

	entries, err := s.SelectPasswordHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "new", entries[0].EncodedValue)
	assert.Equal(t, "new", s.Password(1))

	count, err := s.CountHistorySince(ctx, base.Add(-24*time.Hour), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestExpiringAccounts(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	soon := base.Add(5 * 24 * time.Hour)
	past := base.Add(-time.Hour)
	alerted := base.Add(-time.Hour)

	s.PutAccount(model.Account{ID: 1, Status: model.AccountStatusActive, ExpiresAt: &soon})
	s.PutAccount(model.Account{ID: 2, Status: model.AccountStatusActive, ExpiresAt: &soon, AlertsSent: 1, LastAlertAt: &alerted})
	s.PutAccount(model.Account{ID: 3, Status: model.AccountStatusActive, ExpiresAt: &past})

	accounts, err := s.ListExpiring(ctx, model.ExpiringAccountFilter{
		ExpiresBefore:   base.Add(7 * 24 * time.Hour),
		MaxAlerts:       2,
		LastAlertBefore: base.Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, 3, accounts[0].ID)
	assert.Equal(t, 1, accounts[1].ID)

	n, err := s.ExpireBefore(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	a, err := s.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, model.AccountStatusExpired, a.Status)

	require.NoError(t, s.MarkAlertSent(ctx, 1, base))
	a, err = s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, a.AlertsSent)
}

func TestCountFailuresSince(t *testing.T) {
	s := NewStore()
	s.RecordAttempt("jdoe", false, base.Add(-10*time.Minute))
	s.RecordAttempt("jdoe", false, base.Add(-time.Hour))
	s.RecordAttempt("jdoe", true, base.Add(-time.Minute))
	s.RecordAttempt("other", false, base.Add(-time.Minute))

	count, err := s.CountFailuresSince(context.Background(), "jdoe", base.Add(-30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
