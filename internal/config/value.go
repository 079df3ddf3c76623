package config

import "fmt"

// Value binds one configuration key to a static type with an optional
// validator. Reads that fail conversion or validation fall back to the
// default instead of erroring, so a bad config entry cannot break a read
// path.
type Value[T any] struct {
	manager   *Manager
	key       string
	def       T
	validator func(T) bool
}

// NewValue builds a typed view over a configuration key. A nil validator
// accepts everything.
func NewValue[T any](manager *Manager, key string, def T, validator func(T) bool) *Value[T] {
	return &Value[T]{manager: manager, key: key, def: def, validator: validator}
}

// Get returns the current value, coerced to T, or the default when the key
// is missing, of the wrong shape, or rejected by the validator.
func (v *Value[T]) Get() T {
	raw := v.manager.Get(v.key, nil)
	if raw == nil {
		return v.def
	}
	value, ok := coerce[T](raw)
	if !ok {
		return v.def
	}
	if v.validator != nil && !v.validator(value) {
		return v.def
	}
	return value
}

// Set validates and stores a new value.
func (v *Value[T]) Set(value T) error {
	if v.validator != nil && !v.validator(value) {
		return fmt.Errorf("%w: invalid value for %q: %v", ErrConfig, v.key, value)
	}
	v.manager.Set(v.key, value)
	return nil
}

// coerce converts the dynamic shapes the decoders produce into T. Numeric
// widths are bridged because JSON decodes every number as float64.
func coerce[T any](raw any) (T, bool) {
	if value, ok := raw.(T); ok {
		return value, true
	}

	var zero T
	switch any(zero).(type) {
	case int:
		switch n := raw.(type) {
		case float64:
			return any(int(n)).(T), true
		case int64:
			return any(int(n)).(T), true
		}
	case int64:
		switch n := raw.(type) {
		case float64:
			return any(int64(n)).(T), true
		case int:
			return any(int64(n)).(T), true
		}
	case float64:
		switch n := raw.(type) {
		case int:
			return any(float64(n)).(T), true
		case int64:
			return any(float64(n)).(T), true
		}
	case string:
		return any(fmt.Sprint(raw)).(T), true
	}
	return zero, false
}
