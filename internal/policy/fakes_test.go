package policy

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jwalitptl/admin-security/internal/model"
)

var errStoreDown = errors.New("store unavailable")

type memStore struct {
	values  map[string]string
	writes  []string
	failKey string
}

func newMemStore(values map[Key]string) *memStore {
	m := &memStore{values: make(map[string]string)}
	for k, v := range values {
		m.values[string(k)] = v
	}
	return m
}

func (m *memStore) FindByKey(ctx context.Context, key string) (*model.Parameter, error) {
	if key == m.failKey {
		return nil, errStoreDown
	}
	v, ok := m.values[key]
	if !ok {
		return nil, nil
	}
	return &model.Parameter{Key: key, Value: v, Label: strings.ReplaceAll(key, "_", " ")}, nil
}

func (m *memStore) Update(ctx context.Context, key, value string) error {
	if key == m.failKey {
		return errStoreDown
	}
	m.values[key] = value
	m.writes = append(m.writes, key)
	return nil
}

func (m *memStore) wrote(k Key) bool {
	for _, w := range m.writes {
		if w == string(k) {
			return true
		}
	}
	return false
}

type memHistory struct {
	entries []model.PasswordHistoryEntry
	err     error
	since   time.Time
}

func (h *memHistory) SelectPasswordHistory(ctx context.Context, userID int) ([]model.PasswordHistoryEntry, error) {
	if h.err != nil {
		return nil, h.err
	}
	var out []model.PasswordHistoryEntry
	for _, e := range h.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (h *memHistory) CountHistorySince(ctx context.Context, since time.Time, userID int) (int, error) {
	if h.err != nil {
		return 0, h.err
	}
	h.since = since
	n := 0
	for _, e := range h.entries {
		if e.UserID == userID && !e.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

type failureCounter struct {
	failures []time.Time
	err      error
}

func (f failureCounter) CountFailuresSince(ctx context.Context, login string, since time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n := 0
	for _, t := range f.failures {
		if !t.Before(since) {
			n++
		}
	}
	return n, nil
}

// prefixHasher makes encoded values easy to predict.
type prefixHasher struct {
	err error
}

func (p prefixHasher) Encode(raw, algorithm string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return algorithm + ":" + raw, nil
}

type formatFunc func(string) bool

func (f formatFunc) CheckFormat(password string) bool { return f(password) }

func requireDigit(password string) bool {
	return strings.ContainsAny(password, "0123456789")
}
