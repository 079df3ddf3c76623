package main

import (
	"github.com/spf13/cobra"

	"modkit/internal/host"
)

func newRunCommand(configFlag *string) *cobra.Command {
	var only []string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the module host",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := host.New(host.Options{ConfigPath: *configFlag})
			if err != nil {
				return err
			}

			selected := map[string]bool{}
			for _, name := range only {
				selected[name] = true
			}
			for _, b := range builtins() {
				if len(selected) > 0 && !selected[b.name] {
					continue
				}
				h.Register(b.name, b.factory)
			}

			return h.Run(cmd.Context())
		},
	}

	cmd.Flags().StringSliceVar(&only, "module", nil, "Run only the named modules (repeatable)")
	return cmd
}
