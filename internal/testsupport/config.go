package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"modkit/internal/config"
)

// WriteConfigFile serializes values as JSON into a temp config file and
// returns its path.
func WriteConfigFile(t testing.TB, values map[string]any) string {
	t.Helper()
	data, err := json.Marshal(values)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// NewConfig builds a config.Manager seeded with the given values.
func NewConfig(t testing.TB, values map[string]any) *config.Manager {
	t.Helper()
	m, err := config.New(config.Options{Defaults: values})
	if err != nil {
		t.Fatalf("new config manager: %v", err)
	}
	return m
}
