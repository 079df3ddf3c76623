package module

import "fmt"

// Dependency declares one injected collaborator. Check, when set, asserts
// the capability the module needs, typically with an interface type
// assertion; a dependency without a Check is accepted as-is.
type Dependency struct {
	Name        string
	Description string
	Required    bool
	Check       func(value any) error
}

// Validate checks an injected value against the declaration.
func (d Dependency) Validate(value any) error {
	if d.Check == nil {
		return nil
	}
	if err := d.Check(value); err != nil {
		return fmt.Errorf("%w: dependency %q: %w", ErrDependency, d.Name, err)
	}
	return nil
}
