package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cmmoran/bindgen/pkg/action/snapshot"
	"github.com/cmmoran/bindgen/pkg/schema"
)

func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <schema.json>",
		Short: "check a schema document",
		Long:  "Decode a schema document, reporting every structural and reference error it contains",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			s, err := snapshot.Load(args[0])
			if err != nil {
				var verr *schema.ValidationError
				if errors.As(err, &verr) {
					for _, e := range flattenJoined(err) {
						a.logger.Error("invalid schema", "file", args[0], "error", e)
					}
				}
				return err
			}
			_, err = fmt.Fprintf(c.OutOrStdout(), "%s: ok (%d classes)\n", args[0], s.Len())
			return err
		},
	}
}

// flattenJoined expands the first errors.Join found along err's chain into
// its leaves.
func flattenJoined(err error) []error {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if u, ok := e.(interface{ Unwrap() []error }); ok {
			var out []error
			for _, inner := range u.Unwrap() {
				out = append(out, flattenJoined(inner)...)
			}
			return out
		}
	}
	return []error{err}
}
