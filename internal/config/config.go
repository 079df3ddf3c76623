package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Listener receives the dotted key and new value of a configuration change.
type Listener func(key string, value any)

// Options configures Manager construction.
type Options struct {
	// Path is an optional configuration file loaded during construction.
	Path string
	// EnvPrefix enables environment overrides: every variable starting with
	// the prefix becomes a lowercased top-level key, its value JSON-parsed
	// when possible.
	EnvPrefix string
	// Defaults seeds the configuration before the file and environment are
	// applied.
	Defaults map[string]any
}

// Manager holds a nested configuration tree and serializes all access.
// Listeners run outside the lock, so a listener may safely read back other
// keys.
type Manager struct {
	envPrefix string

	mu        sync.RWMutex
	values    map[string]any
	path      string
	listeners map[int]Listener
	nextID    int
	reloadErr func(error)
}

// New builds a Manager from defaults, an optional file, and the environment,
// in that order of increasing precedence.
func New(opts Options) (*Manager, error) {
	values := make(map[string]any, len(opts.Defaults))
	for key, value := range opts.Defaults {
		values[key] = value
	}
	m := &Manager{
		envPrefix: opts.EnvPrefix,
		values:    values,
		listeners: make(map[int]Listener),
	}
	if opts.Path != "" {
		if err := m.LoadFile(opts.Path); err != nil {
			return nil, err
		}
	}
	m.applyEnvOverrides()
	return m, nil
}

// Path returns the most recently loaded configuration file, empty when the
// manager was built from defaults and environment only.
func (m *Manager) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path
}

// LoadFile merges a configuration file into the current tree. The format is
// chosen by extension: .json, .toml, or .yaml/.yml. Listeners are notified
// for every top-level key whose value changed.
func (m *Manager) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read %q: %w", ErrConfig, path, err)
	}
	parsed, err := decode(path, data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.path = path
	changes := make(map[string]any)
	for key, value := range parsed {
		if old, ok := m.values[key]; !ok || !reflect.DeepEqual(old, value) {
			m.values[key] = value
			changes[key] = value
		}
	}
	listeners := m.snapshotListenersLocked()
	m.mu.Unlock()

	for key, value := range changes {
		notify(listeners, key, value)
	}
	return nil
}

func decode(path string, data []byte) (map[string]any, error) {
	parsed := make(map[string]any)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("%w: parse %q: %w", ErrConfig, path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("%w: parse %q: %w", ErrConfig, path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("%w: parse %q: %w", ErrConfig, path, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", ErrConfig, ext)
	}
	return parsed, nil
}

// applyEnvOverrides folds matching environment variables into the tree.
// Values that parse as JSON keep their structure; everything else is a
// string. Environment always wins over defaults and file values.
func (m *Manager) applyEnvOverrides() {
	if m.envPrefix == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range os.Environ() {
		name, raw, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(name, m.envPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, m.envPrefix))
		if key == "" {
			continue
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		m.values[key] = value
	}
}

// Get resolves a key, descending through nested maps on dots. Missing keys
// return the default.
func (m *Manager) Get(key string, def any) any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := lookup(m.values, key)
	if !ok {
		return def
	}
	return value
}

func lookup(tree map[string]any, key string) (any, bool) {
	parts := strings.Split(key, ".")
	var current any = tree
	for _, part := range parts {
		node, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// asMap normalizes the map shapes the decoders produce.
func asMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		converted := make(map[string]any, len(v))
		for key, item := range v {
			converted[fmt.Sprint(key)] = item
		}
		return converted, true
	default:
		return nil, false
	}
}

// Set stores a value, creating intermediate maps along a dotted path, and
// notifies listeners.
func (m *Manager) Set(key string, value any) {
	m.mu.Lock()
	parts := strings.Split(key, ".")
	node := m.values
	for _, part := range parts[:len(parts)-1] {
		child, ok := asMap(node[part])
		if !ok {
			child = make(map[string]any)
		}
		node[part] = child
		node = child
	}
	node[parts[len(parts)-1]] = value
	listeners := m.snapshotListenersLocked()
	m.mu.Unlock()

	notify(listeners, key, value)
}

// GetString returns the value as a string; non-string scalars are rendered
// with fmt.
func (m *Manager) GetString(key, def string) string {
	value := m.Get(key, nil)
	if value == nil {
		return def
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// GetInt returns the value coerced to int, or the default when the value is
// missing or not numeric.
func (m *Manager) GetInt(key string, def int) int {
	switch v := m.Get(key, nil).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// GetFloat returns the value coerced to float64.
func (m *Manager) GetFloat(key string, def float64) float64 {
	switch v := m.Get(key, nil).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return def
}

// GetBool returns the value as a boolean. Strings "true", "yes", "y", and
// "1" count as true; "false", "no", "n", and "0" as false.
func (m *Manager) GetBool(key string, def bool) bool {
	switch v := m.Get(key, nil).(type) {
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "y", "1":
			return true
		case "false", "no", "n", "0":
			return false
		}
	}
	return def
}

// GetList returns the value as a slice. A string value is parsed as a JSON
// array when possible, otherwise split on commas; a scalar is wrapped.
func (m *Manager) GetList(key string, def []any) []any {
	value := m.Get(key, nil)
	if value == nil {
		return def
	}
	switch v := value.(type) {
	case []any:
		return v
	case string:
		var parsed []any
		if err := json.Unmarshal([]byte(v), &parsed); err == nil {
			return parsed
		}
		parts := strings.Split(v, ",")
		list := make([]any, len(parts))
		for i, part := range parts {
			list[i] = strings.TrimSpace(part)
		}
		return list
	default:
		return []any{v}
	}
}

// GetMap returns the value as a nested map, parsing JSON object strings.
func (m *Manager) GetMap(key string, def map[string]any) map[string]any {
	value := m.Get(key, nil)
	if value == nil {
		return def
	}
	if node, ok := asMap(value); ok {
		return node
	}
	if s, ok := value.(string); ok {
		parsed := make(map[string]any)
		if err := json.Unmarshal([]byte(s), &parsed); err == nil {
			return parsed
		}
	}
	return def
}

// AddListener registers a change listener and returns its handle for
// RemoveListener.
func (m *Manager) AddListener(listener Listener) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = listener
	return id
}

// RemoveListener deregisters a listener; unknown handles are ignored.
func (m *Manager) RemoveListener(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.listeners, id)
}

func (m *Manager) snapshotListenersLocked() []Listener {
	listeners := make([]Listener, 0, len(m.listeners))
	for _, listener := range m.listeners {
		listeners = append(listeners, listener)
	}
	return listeners
}

func notify(listeners []Listener, key string, value any) {
	for _, listener := range listeners {
		listener(key, value)
	}
}

// All returns a copy of the top-level configuration map. Nested values are
// shared, not cloned.
func (m *Manager) All() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot := make(map[string]any, len(m.values))
	for key, value := range m.values {
		snapshot[key] = value
	}
	return snapshot
}

// Clear removes every configuration value.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]any)
}

// Save writes the current configuration to a file, format selected by
// extension as in LoadFile.
func (m *Manager) Save(path string) error {
	snapshot := m.All()

	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.MarshalIndent(snapshot, "", "  ")
	case ".toml":
		data, err = toml.Marshal(snapshot)
	case ".yaml", ".yml":
		data, err = yaml.Marshal(snapshot)
	default:
		return fmt.Errorf("%w: unsupported config format %q", ErrConfig, ext)
	}
	if err != nil {
		return fmt.Errorf("%w: encode %q: %w", ErrConfig, path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %q: %w", ErrConfig, path, err)
	}
	return nil
}
