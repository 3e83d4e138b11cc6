package policy

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// DefaultEncryptionAlgorithm is written by EnableAdvanced when the defaults do
// not name an algorithm.
const DefaultEncryptionAlgorithm = "SHA-256"

// Defaults are the values written by EnableAdvanced. A missing default is
// written as an empty value.
type Defaults map[Key]string

// ApplyUpdate writes the submitted values of every updatable key. A key absent
// from submitted, or blank, is stored empty. Advanced keys are only written
// while advanced parameters are enabled in the store.
func (e *Engine) ApplyUpdate(ctx context.Context, store ParameterStore, submitted map[string]string) error {
	advanced, err := storedBool(ctx, store, KeyAdvancedEnabled)
	if err != nil {
		return err
	}

	keys := append([]Key{}, leadingUpdateKeys...)
	if advanced {
		keys = append(keys, advancedKeys...)
	}
	keys = append(keys, trailingUpdateKeys...)

	for _, k := range keys {
		if err := update(ctx, store, k, submitted[string(k)]); err != nil {
			return err
		}
	}
	return nil
}

// EnableAdvanced turns advanced parameters on and seeds them from defaults.
// An existing positive minimum length is kept.
func (e *Engine) EnableAdvanced(ctx context.Context, store ParameterStore, defaults Defaults) error {
	values := []struct {
		key   Key
		value string
	}{
		{KeyAdvancedEnabled, strconv.FormatBool(true)},
		{KeyForceChangeAfterReset, strconv.FormatBool(true)},
		{KeyMaxChanges, defaults[KeyMaxChanges]},
		{KeyDurationDays, defaults[KeyDurationDays]},
		{KeyFormatRequired, strconv.FormatBool(true)},
		{KeyHistorySize, defaults[KeyHistorySize]},
		{KeyMaxChangesWindowDays, defaults[KeyMaxChangesWindowDays]},
	}
	for _, v := range values {
		if err := update(ctx, store, v.key, v.value); err != nil {
			return err
		}
	}

	minLength, err := storedInt(ctx, store, KeyMinimumLength)
	if err != nil {
		return err
	}
	if minLength <= 0 {
		if err := update(ctx, store, KeyMinimumLength, defaults[KeyMinimumLength]); err != nil {
			return err
		}
	}

	if err := update(ctx, store, KeyEncryptionEnabled, strconv.FormatBool(true)); err != nil {
		return err
	}
	algorithm := strings.TrimSpace(defaults[KeyEncryptionAlgorithm])
	if algorithm == "" {
		algorithm = DefaultEncryptionAlgorithm
	}
	return update(ctx, store, KeyEncryptionAlgorithm, algorithm)
}

// DisableAdvanced clears the advanced flag and the advanced-only keys. Base
// keys such as the minimum length and the encryption settings are untouched.
func (e *Engine) DisableAdvanced(ctx context.Context, store ParameterStore) error {
	keys := append([]Key{KeyAdvancedEnabled}, advancedKeys...)
	for _, k := range keys {
		if err := update(ctx, store, k, ""); err != nil {
			return err
		}
	}
	return nil
}

func update(ctx context.Context, store ParameterStore, k Key, value string) error {
	if err := store.Update(ctx, string(k), strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("update parameter %s: %w", k, err)
	}
	return nil
}

func storedBool(ctx context.Context, store ParameterStore, k Key) (bool, error) {
	s, err := readOne(ctx, store, k)
	if err != nil {
		return false, err
	}
	return s.Bool(k), nil
}

func storedInt(ctx context.Context, store ParameterStore, k Key) (int, error) {
	s, err := readOne(ctx, store, k)
	if err != nil {
		return 0, err
	}
	return s.Int(k), nil
}

func readOne(ctx context.Context, store ParameterStore, k Key) (Snapshot, error) {
	p, err := store.FindByKey(ctx, string(k))
	if err != nil {
		return Snapshot{}, fmt.Errorf("read parameter %s: %w", k, err)
	}
	if p == nil {
		return Snapshot{}, nil
	}
	return NewSnapshot(map[Key]string{k: p.Value}), nil
}
