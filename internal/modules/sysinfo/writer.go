package sysinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modkit/internal/logging"
	"modkit/internal/module"
)

// reportWriter persists the merged snapshot as indented JSON. It writes via
// a temp file and rename so readers never observe a partial report.
type reportWriter struct {
	module   *Module
	interval time.Duration
	path     string
	logger   logging.Logger
}

func (w *reportWriter) Name() string { return "report_writer" }

func (w *reportWriter) Init(ctx context.Context) error {
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory %q: %w", dir, err)
		}
	}
	return nil
}

func (w *reportWriter) Run(ctx context.Context) error {
	return sample(ctx, w.interval, func() {
		if err := w.write(); err != nil {
			w.logger.Error("Error writing report: "+err.Error(), nil)
		}
	})
}

func (w *reportWriter) write() error {
	data, err := json.MarshalIndent(w.module.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	tmp := w.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, w.path)
}

// Stop writes one final report so the file reflects the shutdown state.
func (w *reportWriter) Stop(ctx context.Context) error {
	if err := w.write(); err != nil {
		w.logger.Error("Error writing final report: "+err.Error(), nil)
	}
	return nil
}

func (w *reportWriter) Cleanup(ctx context.Context) error { return nil }

var _ module.Component = (*reportWriter)(nil)
