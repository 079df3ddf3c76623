// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"strings"
	"sync"

	"modkit/internal/logging"
)

// Entry is one recorded log call.
type Entry struct {
	Level   logging.Level
	Message string
	Context map[string]any
}

// Recorder is a logging.Logger that captures every call for assertions.
// Safe for concurrent use.
type Recorder struct {
	minLevel logging.Level

	mu      sync.Mutex
	entries []Entry
}

// NewRecorder returns a recorder accepting every level at or above minLevel.
func NewRecorder(minLevel logging.Level) *Recorder {
	return &Recorder{minLevel: minLevel}
}

// ShouldLog reports whether the level passes the configured minimum.
func (r *Recorder) ShouldLog(level logging.Level) bool {
	return level >= r.minLevel
}

// Log records one entry when the level passes the filter.
func (r *Recorder) Log(level logging.Level, message string, context map[string]any) {
	if !r.ShouldLog(level) {
		return
	}
	r.mu.Lock()
	r.entries = append(r.entries, Entry{Level: level, Message: message, Context: context})
	r.mu.Unlock()
}

// Verbose records at VERBOSE level.
func (r *Recorder) Verbose(message string, context map[string]any) {
	r.Log(logging.LevelVerbose, message, context)
}

// Info records at INFO level.
func (r *Recorder) Info(message string, context map[string]any) {
	r.Log(logging.LevelInfo, message, context)
}

// Warning records at WARNING level.
func (r *Recorder) Warning(message string, context map[string]any) {
	r.Log(logging.LevelWarning, message, context)
}

// Error records at ERROR level.
func (r *Recorder) Error(message string, context map[string]any) {
	r.Log(logging.LevelError, message, context)
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Messages returns just the recorded message strings, in order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	messages := make([]string, len(r.entries))
	for i, entry := range r.entries {
		messages[i] = entry.Message
	}
	return messages
}

// Contains reports whether any recorded message contains the substring.
func (r *Recorder) Contains(substring string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.entries {
		if strings.Contains(entry.Message, substring) {
			return true
		}
	}
	return false
}

var _ logging.Logger = (*Recorder)(nil)
