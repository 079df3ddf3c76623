// Package module provides the declarative module framework: parameter
// declarations with validation, dependency injection with capability checks,
// a component registry with ordered lifecycle management, and a Run helper
// that drives a module from Init through Cleanup.
package module
