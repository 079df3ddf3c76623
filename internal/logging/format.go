package logging

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DefaultFormat is the text-mode template applied to every event. Context
// keys may be referenced the same way as the built-in placeholders.
const DefaultFormat = "[{timestamp}] [{service}] [{component}] [{level}] {message}"

// DefaultTimestampFormat renders wall-clock instants with millisecond
// precision in text mode.
const DefaultTimestampFormat = "2006-01-02 15:04:05.000"

type eventJSON struct {
	Level        string         `json:"level"`
	Message      string         `json:"message"`
	Timestamp    float64        `json:"timestamp"`
	TimestampISO string         `json:"timestamp_iso"`
	Service      string         `json:"service"`
	Component    string         `json:"component"`
	Module       string         `json:"module"`
	Function     string         `json:"function"`
	Context      map[string]any `json:"context"`
}

// formatText substitutes the event fields into the template. Context entries
// participate as additional placeholders; placeholders with no matching field
// are left untouched.
func formatText(ev *Event, format, timestampFormat string) string {
	if format == "" {
		format = DefaultFormat
	}
	if timestampFormat == "" {
		timestampFormat = DefaultTimestampFormat
	}
	pairs := []string{
		"{timestamp}", ev.Timestamp.Format(timestampFormat),
		"{service}", ev.Service,
		"{component}", ev.Component,
		"{module}", ev.Module,
		"{function}", ev.Function,
		"{level}", ev.Level.String(),
		"{message}", ev.Message,
	}
	for key, value := range ev.Context {
		pairs = append(pairs, "{"+key+"}", fmt.Sprint(value))
	}
	return strings.NewReplacer(pairs...).Replace(format)
}

// formatJSON serializes the event as a single self-contained JSON object.
// The timestamp is carried twice: as epoch seconds and as an ISO-8601 string
// derived from the same instant.
func formatJSON(ev *Event) (string, error) {
	payload := eventJSON{
		Level:        ev.Level.String(),
		Message:      ev.Message,
		Timestamp:    float64(ev.Timestamp.UnixNano()) / float64(time.Second),
		TimestampISO: ev.Timestamp.Format(time.RFC3339Nano),
		Service:      ev.Service,
		Component:    ev.Component,
		Module:       ev.Module,
		Function:     ev.Function,
		Context:      ev.Context,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal log event: %w", err)
	}
	return string(data), nil
}
