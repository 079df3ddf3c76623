package module

import (
	"context"
	"errors"
	"time"
)

// shutdownTimeout bounds Stop and Cleanup once the run context is gone.
const shutdownTimeout = 5 * time.Second

// Run drives a module through its full lifecycle: Init, Run until the
// context is cancelled, then Stop and Cleanup on a fresh timeout context.
// Shutdown always runs, even when Init or Run fail, and all errors are
// joined into the result.
func Run(ctx context.Context, m Module) error {
	var errs []error

	initErr := m.Init(ctx)
	if initErr != nil {
		errs = append(errs, initErr)
	} else {
		err := m.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			errs = append(errs, err)
		}
	}

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := m.Stop(stopCtx); err != nil {
		errs = append(errs, err)
	}
	if err := m.Cleanup(stopCtx); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
