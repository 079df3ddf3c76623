// Package sysinfo is the monitoring example module: collector components
// sample runtime and host metrics on an interval and a writer component
// persists the merged report as JSON.
package sysinfo

import (
	"os"
	"runtime"
	"sync"
	"time"

	"modkit/internal/logging"
	"modkit/internal/module"
)

// Module collects system information through its components and exposes the
// merged snapshot.
type Module struct {
	*module.Base

	mu   sync.Mutex
	info map[string]any
}

// Params declares the module's configuration surface.
func Params() []module.Param {
	return []module.Param{
		{Name: "collection_interval", Default: 5.0, Description: "Seconds between collections",
			Validators: []module.ValidatorFunc{module.Positive}},
		{Name: "output_file", Default: "system_info.json", Description: "File to write the report to",
			Validators: []module.ValidatorFunc{module.Length(1, -1)}},
		{Name: "report_cpu", Default: true, Description: "Report CPU and scheduler information"},
		{Name: "report_memory", Default: true, Description: "Report memory statistics"},
		{Name: "report_disk", Default: true, Description: "Report disk usage"},
	}
}

// New builds the module against the raw configuration tree, reading its own
// "sysinfo" section when present.
func New(cfg map[string]any, logger logging.Logger) (*Module, error) {
	base, err := module.NewBase(module.Spec{
		Name:   "SystemInfo",
		ID:     "sysinfo",
		Params: Params(),
		Config: cfg,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	m := &Module{Base: base, info: make(map[string]any)}
	interval := time.Duration(base.Param("collection_interval").(float64) * float64(time.Second))

	if base.Param("report_cpu").(bool) {
		base.AddComponent(&cpuCollector{module: m, interval: interval})
	}
	if base.Param("report_memory").(bool) {
		base.AddComponent(&memoryCollector{module: m, interval: interval})
	}
	if base.Param("report_disk").(bool) {
		base.AddComponent(&diskCollector{module: m, interval: interval, path: "/"})
	}
	base.AddComponent(&reportWriter{
		module:   m,
		interval: interval,
		path:     base.Param("output_file").(string),
		logger:   base.Logger(),
	})

	m.collectStatic()
	return m, nil
}

// collectStatic records host facts that do not change while running.
func (m *Module) collectStatic() {
	hostname, _ := os.Hostname()
	m.setSection("system", map[string]any{
		"hostname":   hostname,
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"go_version": runtime.Version(),
		"cpu_count":  runtime.NumCPU(),
		"pid":        os.Getpid(),
	})
}

func (m *Module) setSection(name string, data map[string]any) {
	m.mu.Lock()
	m.info[name] = data
	m.mu.Unlock()
}

// Snapshot returns a copy of the current report with a fresh timestamp and
// the module's uptime.
func (m *Module) Snapshot() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make(map[string]any, len(m.info)+2)
	for key, value := range m.info {
		snapshot[key] = value
	}
	snapshot["timestamp"] = time.Now().Format(time.RFC3339)
	snapshot["uptime_seconds"] = m.Uptime().Seconds()
	return snapshot
}

var _ module.Module = (*Module)(nil)
