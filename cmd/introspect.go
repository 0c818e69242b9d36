package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cmmoran/bindgen/pkg/action/initialize"
	"github.com/cmmoran/bindgen/pkg/schema"
)

func newIntrospectCommand(a *app) *cobra.Command {
	var (
		pf     *parserFlags
		output string
	)

	introspectCmd := &cobra.Command{
		Use:   "introspect",
		Short: "print the schema",
		Long:  "Introspect the configured source and print its schema document",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			opts, err := a.options(c.Flags(), pf)
			if err != nil {
				return err
			}
			s, par, err := initialize.BuildSchema(c.Context(), opts)
			if err != nil {
				return err
			}
			for _, w := range par.Warnings {
				a.logger.Warn("skipped", "code", w.Code, "subject", w.Subject, "reason", w.Message)
			}

			var buf bytes.Buffer
			if err = schema.Encode(&buf, s); err != nil {
				return fmt.Errorf("encode schema: %w", err)
			}
			if output == "" || output == "-" {
				_, err = c.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err = os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write schema: %w", err)
			}
			a.logger.Info("wrote schema", "file", output, "classes", s.Len())
			return nil
		},
	}
	pf = addParserFlags(introspectCmd.Flags())
	introspectCmd.Flags().StringVar(&output, "output", "", "file to write the schema to (default stdout)")

	return introspectCmd
}
