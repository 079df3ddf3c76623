package module

import "context"

// Component is a functional unit owned by a module. Run should block until
// the context is cancelled; Stop and Cleanup are called in reverse
// registration order during shutdown.
type Component interface {
	Name() string
	Init(ctx context.Context) error
	Run(ctx context.Context) error
	Stop(ctx context.Context) error
	Cleanup(ctx context.Context) error
}

// Module is an executable unit coordinating components through a four-phase
// lifecycle. Implementations usually embed Base.
type Module interface {
	Name() string
	Init(ctx context.Context) error
	Run(ctx context.Context) error
	Stop(ctx context.Context) error
	Cleanup(ctx context.Context) error
}
