package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// ConsoleLogger is a synchronous fallback logger that writes straight to the
// error stream. Modules use it when no Manager-backed logger is supplied;
// there is no process-wide default instance.
type ConsoleLogger struct {
	minLevel Level
	prefix   string

	mu  sync.Mutex
	out io.Writer
}

// NewConsoleLogger builds a console logger filtering below minLevel. The
// prefix, usually a module name, is prepended to every line when non-empty.
func NewConsoleLogger(minLevel Level, prefix string) *ConsoleLogger {
	return &ConsoleLogger{minLevel: minLevel, prefix: prefix, out: os.Stderr}
}

// SetOutput redirects the logger, primarily for tests.
func (c *ConsoleLogger) SetOutput(w io.Writer) {
	c.mu.Lock()
	c.out = w
	c.mu.Unlock()
}

// ShouldLog reports whether the level passes the configured minimum.
func (c *ConsoleLogger) ShouldLog(level Level) bool {
	return level >= c.minLevel
}

// Log writes one line when the level passes the filter. Context values are
// appended as key=value pairs.
func (c *ConsoleLogger) Log(level Level, message string, context map[string]any) {
	if !c.ShouldLog(level) {
		return
	}
	line := fmt.Sprintf("[%s] %s", level, message)
	if c.prefix != "" {
		line = fmt.Sprintf("[%s] %s", c.prefix, line)
	}
	for key, value := range context {
		line += fmt.Sprintf(" %s=%v", key, value)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}

// Verbose logs at VERBOSE level.
func (c *ConsoleLogger) Verbose(message string, context map[string]any) {
	c.Log(LevelVerbose, message, context)
}

// Info logs at INFO level.
func (c *ConsoleLogger) Info(message string, context map[string]any) {
	c.Log(LevelInfo, message, context)
}

// Warning logs at WARNING level.
func (c *ConsoleLogger) Warning(message string, context map[string]any) {
	c.Log(LevelWarning, message, context)
}

// Error logs at ERROR level.
func (c *ConsoleLogger) Error(message string, context map[string]any) {
	c.Log(LevelError, message, context)
}

var _ Logger = (*ConsoleLogger)(nil)
