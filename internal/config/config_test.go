package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modkit/internal/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewWithDefaultsOnly(t *testing.T) {
	m, err := config.New(config.Options{Defaults: map[string]any{
		"app":    map[string]any{"name": "demo", "port": 8080},
		"plain":  "value",
		"nested": map[string]any{"deep": map[string]any{"flag": true}},
	}})
	require.NoError(t, err)

	assert.Equal(t, "demo", m.Get("app.name", nil))
	assert.Equal(t, 8080, m.GetInt("app.port", 0))
	assert.Equal(t, "value", m.GetString("plain", ""))
	assert.True(t, m.GetBool("nested.deep.flag", false))
	assert.Equal(t, "fallback", m.GetString("missing.key", "fallback"))
}

func TestFileOverridesDefaults(t *testing.T) {
	path := writeFile(t, "config.json", `{"server": {"host": "example.org", "port": 9000}}`)
	m, err := config.New(config.Options{
		Path: path,
		Defaults: map[string]any{
			"server": map[string]any{"host": "localhost", "port": 8080},
			"untouched": "default",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "example.org", m.GetString("server.host", ""))
	assert.Equal(t, 9000, m.GetInt("server.port", 0))
	assert.Equal(t, "default", m.GetString("untouched", ""))
	assert.Equal(t, path, m.Path())
}

func TestLoadFileFormats(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"config.json", `{"logging": {"level": "warning", "max_size": 2048}}`},
		{"config.toml", "[logging]\nlevel = \"warning\"\nmax_size = 2048\n"},
		{"config.yaml", "logging:\n  level: warning\n  max_size: 2048\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := config.New(config.Options{Path: writeFile(t, tc.name, tc.content)})
			require.NoError(t, err)
			assert.Equal(t, "warning", m.GetString("logging.level", ""))
			assert.Equal(t, 2048, m.GetInt("logging.max_size", 0))
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	_, err := config.New(config.Options{Path: filepath.Join(t.TempDir(), "absent.json")})
	require.ErrorIs(t, err, config.ErrConfig)

	_, err = config.New(config.Options{Path: writeFile(t, "broken.json", `{"unterminated`)})
	require.ErrorIs(t, err, config.ErrConfig)

	_, err = config.New(config.Options{Path: writeFile(t, "config.ini", "level=warning")})
	require.ErrorIs(t, err, config.ErrConfig)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MODKITTEST_PORT", "9090")
	t.Setenv("MODKITTEST_TAGS", `["a", "b"]`)
	t.Setenv("MODKITTEST_GREETING", "plain text")

	m, err := config.New(config.Options{
		EnvPrefix: "MODKITTEST_",
		Defaults:  map[string]any{"port": 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 9090, m.GetInt("port", 0))
	assert.Equal(t, []any{"a", "b"}, m.GetList("tags", nil))
	assert.Equal(t, "plain text", m.GetString("greeting", ""))
}

func TestSetCreatesNestedPath(t *testing.T) {
	m, err := config.New(config.Options{})
	require.NoError(t, err)

	m.Set("a.b.c", 42)
	assert.Equal(t, 42, m.GetInt("a.b.c", 0))

	// Overwriting a scalar with a nested path replaces it with a map.
	m.Set("a.b", "scalar")
	m.Set("a.b.d", true)
	assert.True(t, m.GetBool("a.b.d", false))
}

func TestTypedGetterCoercion(t *testing.T) {
	m, err := config.New(config.Options{Defaults: map[string]any{
		"float_port": 8080.0,
		"str_port":   "9090",
		"yes":        "yes",
		"off":        "0",
		"csv":        "a, b ,c",
		"json_map":   `{"k": "v"}`,
		"scalar":     7,
	}})
	require.NoError(t, err)

	assert.Equal(t, 8080, m.GetInt("float_port", 0))
	assert.Equal(t, 9090, m.GetInt("str_port", 0))
	assert.InDelta(t, 9090.0, m.GetFloat("str_port", 0), 0.001)
	assert.True(t, m.GetBool("yes", false))
	assert.False(t, m.GetBool("off", true))
	assert.Equal(t, []any{"a", "b", "c"}, m.GetList("csv", nil))
	assert.Equal(t, map[string]any{"k": "v"}, m.GetMap("json_map", nil))
	assert.Equal(t, []any{7}, m.GetList("scalar", nil))
	assert.Equal(t, 5, m.GetInt("yes", 5), "non-numeric string falls back to default")
}

func TestListeners(t *testing.T) {
	m, err := config.New(config.Options{})
	require.NoError(t, err)

	var got []string
	id := m.AddListener(func(key string, value any) {
		got = append(got, key)
	})
	m.Set("watched.key", 1)
	m.RemoveListener(id)
	m.Set("watched.key", 2)

	assert.Equal(t, []string{"watched.key"}, got)
}

func TestLoadFileNotifiesChangedTopLevelKeys(t *testing.T) {
	m, err := config.New(config.Options{Defaults: map[string]any{
		"stable":  "same",
		"changed": "old",
	}})
	require.NoError(t, err)

	changed := map[string]any{}
	m.AddListener(func(key string, value any) {
		changed[key] = value
	})

	path := writeFile(t, "reload.json", `{"stable": "same", "changed": "new", "added": 1}`)
	require.NoError(t, m.LoadFile(path))

	assert.Equal(t, "new", changed["changed"])
	assert.Equal(t, float64(1), changed["added"])
	assert.NotContains(t, changed, "stable")
}

func TestSaveRoundTrip(t *testing.T) {
	m, err := config.New(config.Options{Defaults: map[string]any{
		"logging": map[string]any{"level": "info"},
		"port":    8080,
	}})
	require.NoError(t, err)

	for _, name := range []string{"out.json", "out.toml", "out.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, m.Save(path))

			reloaded, err := config.New(config.Options{Path: path})
			require.NoError(t, err)
			assert.Equal(t, "info", reloaded.GetString("logging.level", ""))
			assert.Equal(t, 8080, reloaded.GetInt("port", 0))
		})
	}
}

func TestAllAndClear(t *testing.T) {
	m, err := config.New(config.Options{Defaults: map[string]any{"a": 1, "b": 2}})
	require.NoError(t, err)

	snapshot := m.All()
	assert.Len(t, snapshot, 2)
	snapshot["c"] = 3
	assert.Nil(t, m.Get("c", nil), "mutating the snapshot must not affect the manager")

	m.Clear()
	assert.Empty(t, m.All())
}

func TestCreateSampleIsLoadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "modkit.toml")
	require.NoError(t, config.CreateSample(path))

	m, err := config.New(config.Options{Path: path})
	require.NoError(t, err)
	assert.Equal(t, "modkit", m.GetString("logging.service", ""))
	assert.Equal(t, 5, m.GetInt("logging.backup_count", 0))
	assert.Equal(t, "Hello, World!", m.GetString("hello.message", ""))
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modkit.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	found, ok := config.Find("modkit.toml", dir)
	assert.True(t, ok)
	assert.Equal(t, path, found)

	_, ok = config.Find("absent.toml", dir)
	assert.False(t, ok)
}
