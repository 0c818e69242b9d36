package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cmmoran/bindgen/pkg/action/initialize"
)

func newInitCommand(a *app) *cobra.Command {
	var pf *parserFlags

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "generate bindings",
		Long:  "Introspect the configured source and write Go bindings for every class in its schema",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			opts, err := a.options(c.Flags(), pf)
			if err != nil {
				return err
			}
			file, err := initialize.Generate(c.Context(), opts)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.OutOrStdout(), file)
			return err
		},
	}
	pf = addParserFlags(initCmd.Flags())

	return initCmd
}
