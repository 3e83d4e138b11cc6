// Package memory keeps every repository in process memory. It backs local
// development runs without a database and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jwalitptl/admin-security/internal/model"
	"github.com/jwalitptl/admin-security/internal/repository"
)

var (
	_ repository.ParameterRepository       = (*Store)(nil)
	_ repository.PasswordHistoryRepository = (*Store)(nil)
	_ repository.AccountRepository         = (*Store)(nil)
	_ repository.ConnectionLogRepository   = (*Store)(nil)
)

type attempt struct {
	login   string
	success bool
	at      time.Time
}

type Store struct {
	mu        sync.RWMutex
	params    map[string]model.Parameter
	history   []model.PasswordHistoryEntry
	accounts  map[int]model.Account
	passwords map[int]string
	attempts  []attempt
}

func NewStore() *Store {
	return &Store{
		params:    make(map[string]model.Parameter),
		accounts:  make(map[int]model.Account),
		passwords: make(map[int]string),
	}
}

func (s *Store) FindByKey(ctx context.Context, key string) (*model.Parameter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.params[key]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Store) Update(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.params[key]
	p.Key = key
	p.Value = value
	s.params[key] = p
	return nil
}

func (s *Store) List(ctx context.Context) ([]*model.Parameter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	params := make([]*model.Parameter, 0, len(s.params))
	for _, p := range s.params {
		p := p
		params = append(params, &p)
	}
	sort.Slice(params, func(i, j int) bool { return params[i].Key < params[j].Key })
	return params, nil
}

func (s *Store) SelectPasswordHistory(ctx context.Context, userID int) ([]model.PasswordHistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []model.PasswordHistoryEntry
	for _, e := range s.history {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
	return entries, nil
}

func (s *Store) CountHistorySince(ctx context.Context, since time.Time, userID int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, e := range s.history {
		if e.UserID == userID && !e.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// AppendHistory adds a history entry without touching the account.
func (s *Store) AppendHistory(entry model.PasswordHistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, entry)
}

// PutAccount inserts or replaces an account.
func (s *Store) PutAccount(account model.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = account
}

// Password returns the stored encoded password of an account.
func (s *Store) Password(id int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.passwords[id]
}

func (s *Store) Get(ctx context.Context, id int) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (s *Store) UpdatePassword(ctx context.Context, id int, encoded string, changedAt time.Time, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.PasswordExpiresAt = expiresAt
	a.UpdatedAt = changedAt
	s.accounts[id] = a
	s.passwords[id] = encoded
	s.history = append(s.history, model.PasswordHistoryEntry{UserID: id, EncodedValue: encoded, CreatedAt: changedAt})
	return nil
}

func (s *Store) ListExpiring(ctx context.Context, filter model.ExpiringAccountFilter) ([]*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var accounts []*model.Account
	for _, a := range s.accounts {
		if a.Status != model.AccountStatusActive || a.ExpiresAt == nil || !a.ExpiresAt.Before(filter.ExpiresBefore) {
			continue
		}
		if a.AlertsSent >= filter.MaxAlerts {
			continue
		}
		if a.LastAlertAt != nil && !a.LastAlertAt.Before(filter.LastAlertBefore) {
			continue
		}
		a := a
		accounts = append(accounts, &a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ExpiresAt.Before(*accounts[j].ExpiresAt) })
	if filter.Limit > 0 && len(accounts) > filter.Limit {
		accounts = accounts[:filter.Limit]
	}
	return accounts, nil
}

func (s *Store) MarkAlertSent(ctx context.Context, id int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.AlertsSent++
	a.LastAlertAt = &at
	a.UpdatedAt = at
	s.accounts[id] = a
	return nil
}

func (s *Store) ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, a := range s.accounts {
		if a.Status == model.AccountStatusActive && a.ExpiresAt != nil && a.ExpiresAt.Before(cutoff) {
			a.Status = model.AccountStatusExpired
			a.UpdatedAt = cutoff
			s.accounts[id] = a
			n++
		}
	}
	return n, nil
}

// RecordAttempt logs a login attempt.
func (s *Store) RecordAttempt(login string, success bool, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, attempt{login: login, success: success, at: at})
}

func (s *Store) CountFailuresSince(ctx context.Context, login string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, a := range s.attempts {
		if a.login == login && !a.success && !a.at.Before(since) {
			count++
		}
	}
	return count, nil
}

// Set exposes the store as a repository set.
func (s *Store) Set() *repository.Set {
	return &repository.Set{
		Parameters:  s,
		History:     s,
		Accounts:    s,
		Connections: s,
		Close:       func() error { return nil },
	}
}
