// Package hello is the minimal example module: a single greeter component
// that emits a configurable message on an interval.
package hello

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"modkit/internal/logging"
	"modkit/internal/module"
)

// Module greets on a timer. It demonstrates the smallest useful module:
// declared parameters, one component, no dependencies.
type Module struct {
	*module.Base
	greeter *greeter
}

// Params declares the module's configuration surface.
func Params() []module.Param {
	return []module.Param{
		{Name: "message", Default: "Hello, World!", Description: "Message to display"},
		{Name: "interval", Default: 1.0, Description: "Seconds between messages",
			Validators: []module.ValidatorFunc{module.Positive}},
		{Name: "count", Default: 5, Description: "Number of messages to display (0 for infinite)",
			Validators: []module.ValidatorFunc{module.NonNegative}},
	}
}

// New builds the module against the raw configuration tree. The module reads
// its own "hello" section when present.
func New(cfg map[string]any, logger logging.Logger) (*Module, error) {
	base, err := module.NewBase(module.Spec{
		Name:   "HelloWorld",
		ID:     "hello",
		Params: Params(),
		Config: cfg,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	m := &Module{Base: base}
	m.greeter = &greeter{
		logger:   base.Logger(),
		message:  base.Param("message").(string),
		interval: time.Duration(base.Param("interval").(float64) * float64(time.Second)),
		count:    base.Param("count").(int),
		out:      os.Stdout,
	}
	base.AddComponent(m.greeter)
	return m, nil
}

// SetOutput redirects greeting output, primarily for tests.
func (m *Module) SetOutput(w io.Writer) {
	m.greeter.mu.Lock()
	m.greeter.out = w
	m.greeter.mu.Unlock()
}

// greeter emits the configured message until its count is exhausted or the
// context is cancelled.
type greeter struct {
	logger   logging.Logger
	message  string
	interval time.Duration
	count    int

	mu  sync.Mutex
	out io.Writer
}

func (g *greeter) Name() string { return "greeter" }

func (g *greeter) Init(ctx context.Context) error {
	g.logger.Info("Initializing greeter", nil)
	return nil
}

func (g *greeter) Run(ctx context.Context) error {
	g.logger.Info("Starting greeter", nil)

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	sent := 0
	for {
		select {
		case <-ticker.C:
			if g.count == 0 {
				g.display(g.message)
				continue
			}
			sent++
			g.display(fmt.Sprintf("%s (%d/%d)", g.message, sent, g.count))
			if sent >= g.count {
				g.logger.Info("Completed all messages", nil)
				// Stay resident so sibling components keep running.
				<-ctx.Done()
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (g *greeter) display(message string) {
	line := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), message)
	g.logger.Info(line, nil)
	g.mu.Lock()
	fmt.Fprintln(g.out, line)
	g.mu.Unlock()
}

func (g *greeter) Stop(ctx context.Context) error {
	g.logger.Info("Stopping greeter", nil)
	return nil
}

func (g *greeter) Cleanup(ctx context.Context) error { return nil }

var _ module.Component = (*greeter)(nil)
