package main

import (
	"modkit/internal/host"
	"modkit/internal/logging"
	"modkit/internal/module"
	"modkit/internal/modules/hello"
	"modkit/internal/modules/sysinfo"
)

// builtin describes one module shipped with the host.
type builtin struct {
	name        string
	description string
	params      []module.Param
	factory     host.Factory
}

func builtins() []builtin {
	return []builtin{
		{
			name:        "hello",
			description: "Periodic greeter",
			params:      hello.Params(),
			factory: func(cfg map[string]any, logger logging.Logger) (module.Module, error) {
				return hello.New(cfg, logger)
			},
		},
		{
			name:        "sysinfo",
			description: "Runtime and host metrics reporter",
			params:      sysinfo.Params(),
			factory: func(cfg map[string]any, logger logging.Logger) (module.Module, error) {
				return sysinfo.New(cfg, logger)
			},
		},
	}
}
