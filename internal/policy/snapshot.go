package policy

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jwalitptl/admin-security/internal/model"
)

// Snapshot holds every recognized parameter as read at the start of one
// evaluation. It is never refreshed; later policy updates only affect new
// snapshots.
type Snapshot struct {
	params map[Key]model.Parameter
}

// NewSnapshot builds a snapshot from raw values. Unknown keys are ignored.
func NewSnapshot(values map[Key]string) Snapshot {
	s := Snapshot{params: make(map[Key]model.Parameter, len(values))}
	for k, v := range values {
		s.params[k] = model.Parameter{Key: string(k), Value: v}
	}
	return s
}

// LoadSnapshot reads every recognized key from the store. Missing keys are
// simply absent from the snapshot; store errors are returned as is.
func (e *Engine) LoadSnapshot(ctx context.Context, store ParameterStore) (Snapshot, error) {
	s := Snapshot{params: make(map[Key]model.Parameter, len(Keys))}
	for _, k := range Keys {
		p, err := store.FindByKey(ctx, string(k))
		if err != nil {
			return Snapshot{}, fmt.Errorf("read parameter %s: %w", k, err)
		}
		if p != nil {
			s.params[k] = *p
		}
	}
	return s, nil
}

// Int returns the integer value of k, or 0 when missing or not numeric.
func (s Snapshot) Int(k Key) int {
	p, ok := s.params[k]
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(p.Value))
	if err != nil {
		return 0
	}
	return n
}

// Bool returns the flag value of k, or false when missing or unparsable.
func (s Snapshot) Bool(k Key) bool {
	p, ok := s.params[k]
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(p.Value))
	return err == nil && b
}

// Value returns the raw value of k.
func (s Snapshot) Value(k Key) string {
	return s.params[k].Value
}

// Label returns the display label of k.
func (s Snapshot) Label(k Key) string {
	return s.params[k].Label
}

func (s Snapshot) AdvancedEnabled() bool       { return s.Bool(KeyAdvancedEnabled) }
func (s Snapshot) EncryptionEnabled() bool     { return s.Bool(KeyEncryptionEnabled) }
func (s Snapshot) EncryptionAlgorithm() string { return strings.TrimSpace(s.Value(KeyEncryptionAlgorithm)) }
func (s Snapshot) ForceChangeAfterReset() bool { return s.Bool(KeyForceChangeAfterReset) }
func (s Snapshot) MinimumLength() int          { return s.Int(KeyMinimumLength) }
func (s Snapshot) FormatRequired() bool        { return s.Bool(KeyFormatRequired) }
func (s Snapshot) PasswordDurationDays() int   { return s.Int(KeyDurationDays) }
func (s Snapshot) HistorySize() int            { return s.Int(KeyHistorySize) }
func (s Snapshot) MaxChangesAllowed() int      { return s.Int(KeyMaxChanges) }
func (s Snapshot) MaxChangesWindowDays() int   { return s.Int(KeyMaxChangesWindowDays) }
func (s Snapshot) AccountLifetimeMonths() int  { return s.Int(KeyAccountLifetimeMonths) }
func (s Snapshot) AlertLeadTimeDays() int      { return s.Int(KeyAlertLeadTime) }
func (s Snapshot) AlertCount() int             { return s.Int(KeyAlertCount) }
func (s Snapshot) AlertIntervalDays() int      { return s.Int(KeyAlertInterval) }
func (s Snapshot) FailureMax() int             { return s.Int(KeyFailureMax) }
func (s Snapshot) FailureIntervalMinutes() int { return s.Int(KeyFailureInterval) }

// View renders the snapshot for the back office. Advanced fields are left out
// while advanced parameters are disabled.
func (s Snapshot) View() map[string]interface{} {
	advanced := s.AdvancedEnabled()

	view := make(map[string]interface{}, len(Keys))
	for _, k := range Keys {
		if isAdvanced(k) && !advanced {
			continue
		}
		switch {
		case k == KeyEncryptionAlgorithm:
			view[string(k)] = s.EncryptionAlgorithm()
		case boolKeys[k]:
			view[string(k)] = s.Bool(k)
		default:
			view[string(k)] = s.Int(k)
		}
	}
	return view
}
