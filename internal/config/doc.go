// Package config provides hierarchical configuration for modkit hosts and
// modules: defaults, file loading (JSON, TOML, or YAML selected by
// extension), environment variable overrides, dot-path access with typed
// getters, change listeners, and optional live reload via fsnotify.
package config
