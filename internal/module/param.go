package module

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidatorFunc reports whether a configuration value is acceptable.
type ValidatorFunc func(value any) bool

// Param declares one configuration parameter: its name, default,
// documentation, and validation rules. The default's type drives light
// coercion of file-sourced values, so an integer parameter accepts the
// float64 a JSON decoder produces.
type Param struct {
	Name        string
	Default     any
	Description string
	Required    bool
	Validators  []ValidatorFunc
}

// Validate checks a raw value against the declaration and returns the value
// that should take effect. A nil value resolves to the default, or an error
// when the parameter is required.
func (p Param) Validate(value any) (any, error) {
	if value == nil {
		if p.Required {
			return nil, fmt.Errorf("%w: missing required parameter %q", ErrConfig, p.Name)
		}
		value = p.Default
	}

	if p.Default != nil && value != nil {
		converted, err := coerceLike(p.Default, value)
		if err != nil {
			return nil, fmt.Errorf("%w: parameter %q: %w", ErrConfig, p.Name, err)
		}
		value = converted
	}

	for i, validator := range p.Validators {
		if !validator(value) {
			return nil, fmt.Errorf("%w: parameter %q failed validation %d: value=%v",
				ErrConfig, p.Name, i+1, value)
		}
	}
	return value, nil
}

// coerceLike converts value to the dynamic type of the template where a safe
// conversion exists.
func coerceLike(template, value any) (any, error) {
	switch template.(type) {
	case int:
		switch v := value.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			return int(v), nil
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("expected int, got %q", v)
			}
			return n, nil
		}
	case float64:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("expected float, got %q", v)
			}
			return f, nil
		}
	case bool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "true", "yes", "y", "1":
				return true, nil
			case "false", "no", "n", "0":
				return false, nil
			}
			return nil, fmt.Errorf("expected bool, got %q", v)
		}
	case string:
		if v, ok := value.(string); ok {
			return v, nil
		}
		return fmt.Sprint(value), nil
	default:
		return value, nil
	}
	return nil, fmt.Errorf("expected %T, got %T", template, value)
}
