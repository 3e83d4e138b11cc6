// Package policy evaluates passwords and accounts against the security
// parameters of the platform.
//
// All evaluations work on a Snapshot read once from a ParameterStore, so a
// concurrent parameter update never changes the rules half way through a
// check. The Engine itself keeps no state besides its collaborators and is
// safe for concurrent use.
package policy

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/jwalitptl/admin-security/internal/model"
)

// ParameterStore reads and writes security parameters. FindByKey returns
// nil, nil when the key is not stored.
type ParameterStore interface {
	FindByKey(ctx context.Context, key string) (*model.Parameter, error)
	Update(ctx context.Context, key, value string) error
}

// HistoryStore gives access to the password history of a user.
type HistoryStore interface {
	// SelectPasswordHistory returns entries most recent first.
	SelectPasswordHistory(ctx context.Context, userID int) ([]model.PasswordHistoryEntry, error)
	CountHistorySince(ctx context.Context, since time.Time, userID int) (int, error)
}

// FailureCounter counts failed logins.
type FailureCounter interface {
	CountFailuresSince(ctx context.Context, login string, since time.Time) (int, error)
}

type FormatValidator interface {
	CheckFormat(password string) bool
}

type Hasher interface {
	Encode(raw, algorithm string) (string, error)
}

type Engine struct {
	format FormatValidator
	hasher Hasher
	now    func() time.Time
}

type Option func(*Engine)

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(format FormatValidator, hasher Hasher, opts ...Option) *Engine {
	e := &Engine{
		format: format,
		hasher: hasher,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine clock.
func (e *Engine) Now() time.Time {
	return e.now()
}

// CheckMinimumLength passes when no minimum is configured or the password is
// long enough. Length is counted in characters, not bytes.
func (e *Engine) CheckMinimumLength(password string, s Snapshot) bool {
	minLength := s.MinimumLength()
	return minLength <= 0 || utf8.RuneCountInString(password) >= minLength
}

// CheckFormat passes when the format rule is off, otherwise the format
// validator decides.
func (e *Engine) CheckFormat(password string, s Snapshot) bool {
	if !s.FormatRequired() {
		return true
	}
	return e.format.CheckFormat(password)
}

// EncodePassword returns raw unchanged unless encryption is enabled.
func (e *Engine) EncodePassword(s Snapshot, raw string) (string, error) {
	if !s.EncryptionEnabled() {
		return raw, nil
	}
	encoded, err := e.hasher.Encode(raw, s.EncryptionAlgorithm())
	if err != nil {
		return "", fmt.Errorf("encode password: %w", err)
	}
	return encoded, nil
}

// ValidateForAdmin applies the length and format rules only. Back office
// resets are not subject to reuse or rate rules.
func (e *Engine) ValidateForAdmin(s Snapshot, raw string) Outcome {
	if !e.CheckMinimumLength(raw, s) {
		return TooShort
	}
	if !e.CheckFormat(raw, s) {
		return WrongFormat
	}
	return Valid
}

// ValidateForEndUser checks, in order: length, format, reuse among the last
// HistorySize passwords and the number of changes in the sliding window. The
// history rules only apply to existing accounts (userID > 0).
func (e *Engine) ValidateForEndUser(ctx context.Context, s Snapshot, history HistoryStore, raw string, userID int) (Outcome, error) {
	if outcome := e.ValidateForAdmin(s, raw); outcome != Valid {
		return outcome, nil
	}
	if userID <= 0 {
		return Valid, nil
	}

	if size := s.HistorySize(); size > 0 {
		encoded, err := e.EncodePassword(s, raw)
		if err != nil {
			return Valid, err
		}
		entries, err := history.SelectPasswordHistory(ctx, userID)
		if err != nil {
			return Valid, fmt.Errorf("select password history: %w", err)
		}
		if len(entries) > size {
			entries = entries[:size]
		}
		for _, entry := range entries {
			if entry.EncodedValue == encoded {
				return PasswordReused, nil
			}
		}
	}

	if limit := s.MaxChangesAllowed(); limit > 0 {
		count, err := history.CountHistorySince(ctx, e.changeWindowStart(s), userID)
		if err != nil {
			return Valid, fmt.Errorf("count password history: %w", err)
		}
		if count >= limit {
			return TooManyRecentChanges, nil
		}
	}

	return Valid, nil
}

// changeWindowStart is the epoch when no window is configured, which makes
// the change limit apply over the whole account lifetime.
func (e *Engine) changeWindowStart(s Snapshot) time.Time {
	if days := s.MaxChangesWindowDays(); days > 0 {
		return e.now().Add(-time.Duration(days) * 24 * time.Hour)
	}
	return time.Unix(0, 0).UTC()
}

// AccessLocked reports whether login has reached the allowed number of failed
// attempts within the failure interval (minutes).
func (e *Engine) AccessLocked(ctx context.Context, s Snapshot, counter FailureCounter, login string) (bool, error) {
	limit := s.FailureMax()
	if limit <= 0 {
		return false, nil
	}
	since := e.now().Add(-time.Duration(s.FailureIntervalMinutes()) * time.Minute)
	count, err := counter.CountFailuresSince(ctx, login, since)
	if err != nil {
		return false, fmt.Errorf("count access failures: %w", err)
	}
	return count >= limit, nil
}
