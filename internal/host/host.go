// Package host wires a process together: it builds the configuration
// manager and the log manager, enforces single-instance execution, and
// drives registered modules until a shutdown signal arrives.
package host

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"modkit/internal/config"
	"modkit/internal/logging"
	"modkit/internal/module"
)

// ErrAlreadyRunning reports that another instance holds the lock file.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Factory builds a module from the raw configuration tree and a logger
// bound to the module's name.
type Factory func(cfg map[string]any, logger logging.Logger) (module.Module, error)

// Options configures host construction.
type Options struct {
	// ConfigPath is an optional configuration file. When empty the host
	// searches the standard locations for "modkit.toml" and falls back to
	// defaults.
	ConfigPath string
	// EnvPrefix for configuration overrides; defaults to "MODKIT_".
	EnvPrefix string
	// ServiceName overrides the configured logging service name.
	ServiceName string
}

type registration struct {
	name    string
	factory Factory
}

// Host owns the process-level plumbing shared by all modules.
type Host struct {
	cfg        *config.Manager
	logManager *logging.Manager
	lockPath   string
	runID      string

	registrations []registration
}

// New loads configuration and prepares the log manager. Nothing is started
// until Run.
func New(opts Options) (*Host, error) {
	envPrefix := opts.EnvPrefix
	if envPrefix == "" {
		envPrefix = "MODKIT_"
	}
	path := opts.ConfigPath
	if path == "" {
		if found, ok := config.Find("modkit.toml"); ok {
			path = found
		}
	}

	cfg, err := config.New(config.Options{
		Path:      path,
		EnvPrefix: envPrefix,
		Defaults:  defaults(),
	})
	if err != nil {
		return nil, err
	}

	logOpts := logging.DefaultOptions()
	logOpts.ServiceName = cfg.GetString("logging.service", "modkit")
	if opts.ServiceName != "" {
		logOpts.ServiceName = opts.ServiceName
	}
	logOpts.Level = logging.ParseLevel(cfg.GetString("logging.level", "info"))
	logOpts.LogDir = cfg.GetString("logging.log_dir", "./logs")
	logOpts.MaxSize = int64(cfg.GetInt("logging.max_size", 10*1024*1024))
	logOpts.BackupCount = cfg.GetInt("logging.backup_count", 5)
	logOpts.JSONFormat = cfg.GetBool("logging.json", false)
	logOpts.ConsoleOutput = cfg.GetBool("logging.console", true)

	logManager, err := logging.NewManager(logOpts)
	if err != nil {
		return nil, err
	}

	return &Host{
		cfg:        cfg,
		logManager: logManager,
		lockPath:   filepath.Join(logOpts.LogDir, logOpts.ServiceName+".lock"),
		runID:      uuid.NewString(),
	}, nil
}

func defaults() map[string]any {
	return map[string]any{
		"logging": map[string]any{
			"service":      "modkit",
			"level":        "info",
			"log_dir":      "./logs",
			"max_size":     10 * 1024 * 1024,
			"backup_count": 5,
			"json":         false,
			"console":      true,
		},
	}
}

// Config returns the host's configuration manager.
func (h *Host) Config() *config.Manager { return h.cfg }

// LogManager returns the host's log manager.
func (h *Host) LogManager() *logging.Manager { return h.logManager }

// RunID returns the unique identifier of this host run.
func (h *Host) RunID() string { return h.runID }

// Register adds a module factory. Modules are built and started in
// registration order when Run is called.
func (h *Host) Register(name string, factory Factory) {
	h.registrations = append(h.registrations, registration{name: name, factory: factory})
}

// Run starts the log manager, acquires the instance lock, builds every
// registered module, and drives them until a signal arrives or the context
// is cancelled. Shutdown is ordered: modules first, then the log pipeline so
// their final records are written.
func (h *Host) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The pipeline outlives ctx so shutdown records are still drained; Stop
	// owns worker cancellation.
	if err := h.logManager.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	defer h.logManager.Stop()

	lock := flock.New(h.lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock %q: %w", h.lockPath, err)
	}
	if !locked {
		return fmt.Errorf("%w: lock held at %q", ErrAlreadyRunning, h.lockPath)
	}
	defer func() {
		if err := lock.Unlock(); err == nil {
			os.Remove(h.lockPath)
		}
	}()

	hostLogger := logging.NewComponentLogger(h.logManager, "host")
	hostLogger.Info("host starting", map[string]any{
		"run_id":  h.runID,
		"config":  h.cfg.Path(),
		"modules": len(h.registrations),
	})

	modules := make([]module.Module, 0, len(h.registrations))
	tree := h.cfg.All()
	for _, reg := range h.registrations {
		logger := logging.NewComponentLogger(h.logManager, reg.name)
		m, err := reg.factory(tree, logger)
		if err != nil {
			return fmt.Errorf("build module %q: %w", reg.name, err)
		}
		modules = append(modules, m)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, m := range modules {
		m := m
		g.Go(func() error {
			if err := module.Run(gctx, m); err != nil {
				return fmt.Errorf("module %q: %w", m.Name(), err)
			}
			return nil
		})
	}
	if h.cfg.Path() != "" {
		h.cfg.OnReloadError(func(err error) {
			hostLogger.Warning("config reload failed: "+err.Error(), nil)
		})
		g.Go(func() error {
			// A deadline on the parent context is a clean shutdown, not a
			// watch failure.
			err := h.cfg.Watch(gctx)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("config watch: %w", err)
			}
			return nil
		})
	}

	err = g.Wait()
	if err != nil {
		hostLogger.Error("host run failed: "+err.Error(), map[string]any{"run_id": h.runID})
		return err
	}
	hostLogger.Info("host stopped", map[string]any{"run_id": h.runID})
	return nil
}
