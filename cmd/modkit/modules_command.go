package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newModulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List available modules and their parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0)
			for _, b := range builtins() {
				for i, param := range b.params {
					name := ""
					if i == 0 {
						name = fmt.Sprintf("%s - %s", b.name, b.description)
					}
					required := ""
					if param.Required {
						required = "yes"
					}
					rows = append(rows, []string{
						name,
						param.Name,
						fmt.Sprintf("%v", param.Default),
						required,
						param.Description,
					})
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(),
				renderTable([]string{"Module", "Parameter", "Default", "Required", "Description"}, rows))
			return nil
		},
	}
}
