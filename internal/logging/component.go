package logging

// Logger is the capability contract framework code logs through. Any
// implementation must provide level filtering and the four severity methods;
// callers rely on this statically instead of probing for optional methods.
type Logger interface {
	ShouldLog(level Level) bool
	Log(level Level, message string, context map[string]any)
	Verbose(message string, context map[string]any)
	Info(message string, context map[string]any)
	Warning(message string, context map[string]any)
	Error(message string, context map[string]any)
}

// ComponentLogger binds a component name to a Manager it does not own. It is
// a pure routing facade with no state of its own.
type ComponentLogger struct {
	manager   *Manager
	component string
}

// NewComponentLogger returns a logger that stamps every event with the given
// component name.
func NewComponentLogger(manager *Manager, component string) *ComponentLogger {
	return &ComponentLogger{manager: manager, component: component}
}

// Component returns the bound component name.
func (c *ComponentLogger) Component() string { return c.component }

// ShouldLog delegates level filtering to the parent manager.
func (c *ComponentLogger) ShouldLog(level Level) bool {
	return c.manager.ShouldLog(level)
}

// Log submits an event at the given level.
func (c *ComponentLogger) Log(level Level, message string, context map[string]any) {
	c.manager.submit(level, message, c.component, context, 4)
}

// Verbose logs at VERBOSE level.
func (c *ComponentLogger) Verbose(message string, context map[string]any) {
	c.manager.submit(LevelVerbose, message, c.component, context, 4)
}

// Info logs at INFO level.
func (c *ComponentLogger) Info(message string, context map[string]any) {
	c.manager.submit(LevelInfo, message, c.component, context, 4)
}

// Warning logs at WARNING level.
func (c *ComponentLogger) Warning(message string, context map[string]any) {
	c.manager.submit(LevelWarning, message, c.component, context, 4)
}

// Error logs at ERROR level.
func (c *ComponentLogger) Error(message string, context map[string]any) {
	c.manager.submit(LevelError, message, c.component, context, 4)
}

// Exception logs an error with its type name and stack trace. Provenance
// points at the caller, same as the severity wrappers.
func (c *ComponentLogger) Exception(err error, message string) {
	c.manager.exception(err, message, c.component, 5)
}

var _ Logger = (*ComponentLogger)(nil)
