package logging

import (
	"runtime"
	"strings"
	"time"
)

// Event is an immutable record of one log occurrence. It is created inside
// the log call, owned by the queue entry that carries it, and discarded once
// a writer has emitted it.
type Event struct {
	Level     Level
	Message   string
	Timestamp time.Time
	Service   string
	Component string
	Module    string
	Function  string
	Context   map[string]any
}

func newEvent(level Level, message, service, component string, context map[string]any, callerSkip int) *Event {
	module, function := callerInfo(callerSkip)
	if context == nil {
		context = map[string]any{}
	}
	return &Event{
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
		Service:   service,
		Component: component,
		Module:    module,
		Function:  function,
		Context:   context,
	}
}

// callerInfo resolves the package path and function name of the frame that
// invoked the logging API. Best-effort: failures yield "unknown" rather than
// an error, since provenance is diagnostic only.
func callerInfo(skip int) (string, string) {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return "unknown", "unknown"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown", "unknown"
	}
	name := fn.Name()
	start := strings.LastIndex(name, "/") + 1
	dot := strings.Index(name[start:], ".")
	if dot < 0 {
		return name, "unknown"
	}
	return name[:start+dot], name[start+dot+1:]
}
