package module

import "errors"

// Sentinel errors for the three failure classes a module can report.
var (
	// ErrConfig marks parameter validation and configuration parsing
	// failures.
	ErrConfig = errors.New("module config error")
	// ErrDependency marks missing or invalid injected dependencies.
	ErrDependency = errors.New("module dependency error")
	// ErrOperation marks failures during module operation.
	ErrOperation = errors.New("module operation error")
)
