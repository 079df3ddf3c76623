package module

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"modkit/internal/logging"
)

// Spec describes everything a Base needs: the module's identity, its
// declared parameters and dependencies, and the raw configuration and
// injected values to validate against them.
type Spec struct {
	// Name is the module's display name. Required.
	Name string
	// ID identifies the module's configuration section; defaults to the
	// lowercased Name.
	ID string
	// Logger receives the module's log output. When nil a synchronous
	// console logger is used; there is no process-wide default.
	Logger logging.Logger

	Params       []Param
	Dependencies []Dependency

	// Config is the raw configuration tree. A section keyed by ID takes
	// precedence; otherwise declared parameter names are read from the root.
	Config map[string]any
	// Injected supplies the declared dependencies by name.
	Injected map[string]any
}

// Base carries the shared module machinery: validated configuration,
// dependency access, the component registry, and the four-phase lifecycle.
// Concrete modules embed it and layer their own behavior on top.
type Base struct {
	name       string
	id         string
	instanceID string
	logger     logging.Logger

	params     []Param
	values     map[string]any
	deps       map[string]any
	components []Component

	running   atomic.Bool
	startTime time.Time
}

// NewBase validates the spec and builds the module scaffolding. Parameter
// and dependency violations fail construction; a module never starts with a
// configuration it could not validate.
func NewBase(spec Spec) (*Base, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("%w: module name is required", ErrConfig)
	}
	id := spec.ID
	if id == "" {
		id = strings.ToLower(spec.Name)
	}
	logger := spec.Logger
	if logger == nil {
		logger = logging.NewConsoleLogger(logging.LevelInfo, spec.Name)
	}

	b := &Base{
		name:       spec.Name,
		id:         id,
		instanceID: uuid.NewString(),
		logger:     logger,
		params:     spec.Params,
		deps:       make(map[string]any, len(spec.Injected)),
	}

	values, err := b.parseConfig(spec.Config)
	if err != nil {
		return nil, err
	}
	b.values = values

	for _, dep := range spec.Dependencies {
		value, ok := spec.Injected[dep.Name]
		if !ok {
			if dep.Required {
				return nil, fmt.Errorf("%w: missing required dependency %q (%s)",
					ErrDependency, dep.Name, dep.Description)
			}
			continue
		}
		if err := dep.Validate(value); err != nil {
			return nil, err
		}
		b.deps[dep.Name] = value
	}

	return b, nil
}

// parseConfig resolves raw values per parameter declaration: the module's
// own section wins, then root-level keys, then defaults.
func (b *Base) parseConfig(raw map[string]any) (map[string]any, error) {
	section := map[string]any{}
	if raw != nil {
		if node, ok := raw[b.id]; ok {
			if m, ok := node.(map[string]any); ok {
				section = m
			} else {
				b.logger.Warning(fmt.Sprintf("config section %q is not a table, using defaults", b.id), nil)
			}
		} else {
			for _, param := range b.params {
				if value, ok := raw[param.Name]; ok {
					section[param.Name] = value
				}
			}
		}
	}

	values := make(map[string]any, len(b.params))
	for _, param := range b.params {
		validated, err := param.Validate(section[param.Name])
		if err != nil {
			return nil, err
		}
		values[param.Name] = validated
	}
	return values, nil
}

// Name returns the module's display name.
func (b *Base) Name() string { return b.name }

// ID returns the module's configuration section identifier.
func (b *Base) ID() string { return b.id }

// InstanceID returns the unique identifier of this module instance.
func (b *Base) InstanceID() string { return b.instanceID }

// Logger returns the module's logger for components and embedders.
func (b *Base) Logger() logging.Logger { return b.logger }

// Param returns a validated configuration value by declared name.
func (b *Base) Param(name string) any { return b.values[name] }

// Dependency returns an injected dependency by declared name.
func (b *Base) Dependency(name string) (any, bool) {
	value, ok := b.deps[name]
	return value, ok
}

// AddComponent registers a component. Registration order determines Init
// order; Stop and Cleanup run in reverse.
func (b *Base) AddComponent(c Component) {
	b.components = append(b.components, c)
}

// Components returns the registered components in registration order.
func (b *Base) Components() []Component { return b.components }

// Running reports whether the module is between Run and Stop.
func (b *Base) Running() bool { return b.running.Load() }

// Uptime returns the time elapsed since Init, zero before then.
func (b *Base) Uptime() time.Duration {
	if b.startTime.IsZero() {
		return 0
	}
	return time.Since(b.startTime)
}

// Init marks the module started and initializes components in registration
// order. The effective configuration is logged at VERBOSE.
func (b *Base) Init(ctx context.Context) error {
	b.logger.Info("Initializing "+b.name, map[string]any{"instance_id": b.instanceID})
	b.startTime = time.Now()

	if b.logger.ShouldLog(logging.LevelVerbose) {
		for _, param := range b.params {
			value := b.values[param.Name]
			suffix := ""
			if reflect.DeepEqual(value, param.Default) {
				suffix = " (default)"
			}
			b.logger.Verbose(fmt.Sprintf("  %s: %v%s", param.Name, value, suffix), nil)
		}
	}

	for _, component := range b.components {
		if err := component.Init(ctx); err != nil {
			return fmt.Errorf("%w: init component %q: %w", ErrOperation, component.Name(), err)
		}
	}
	return nil
}

// Run drives all components concurrently and blocks until the context is
// cancelled or a component fails. A component failure cancels its siblings
// and is reported; plain cancellation is a clean return.
func (b *Base) Run(ctx context.Context) error {
	b.logger.Info("Running "+b.name, nil)
	b.running.Store(true)
	defer b.running.Store(false)

	g, gctx := errgroup.WithContext(ctx)
	for _, component := range b.components {
		component := component
		g.Go(func() error {
			err := component.Run(gctx)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("component %q: %w", component.Name(), err)
			}
			return nil
		})
	}
	// Hold the module open until shutdown even with no long-running
	// components.
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		b.logger.Error("Error during operation: "+err.Error(), nil)
		return fmt.Errorf("%w: %w", ErrOperation, err)
	}
	b.logger.Info("Stopped "+b.name, nil)
	return nil
}

// Stop halts components in reverse registration order. Component stop
// failures are logged and absorbed so one bad component cannot block the
// rest of the shutdown.
func (b *Base) Stop(ctx context.Context) error {
	b.logger.Info("Stopping "+b.name, nil)
	b.running.Store(false)
	for i := len(b.components) - 1; i >= 0; i-- {
		component := b.components[i]
		if err := component.Stop(ctx); err != nil {
			b.logger.Error(fmt.Sprintf("Error stopping component %s: %v", component.Name(), err), nil)
		}
	}
	return nil
}

// Cleanup releases component resources in reverse registration order,
// absorbing failures like Stop.
func (b *Base) Cleanup(ctx context.Context) error {
	b.logger.Info("Cleaning up "+b.name, nil)
	for i := len(b.components) - 1; i >= 0; i-- {
		component := b.components[i]
		if err := component.Cleanup(ctx); err != nil {
			b.logger.Error(fmt.Sprintf("Error cleaning up component %s: %v", component.Name(), err), nil)
		}
	}
	return nil
}

var _ Module = (*Base)(nil)
