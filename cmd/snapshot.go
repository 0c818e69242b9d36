package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cmmoran/bindgen/pkg/action/snapshot"
)

func newSnapshotCommand(a *app) *cobra.Command {
	var manifestPath string

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "record and compare schema snapshots",
	}
	snapshotCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "m", "bindgen.manifest.yaml", "manifest tracking recorded snapshots")

	snapshotCmd.AddCommand(
		newSnapshotRecordCommand(a, &manifestPath),
		newSnapshotDiffCommand(&manifestPath),
		newSnapshotListCommand(&manifestPath),
	)
	return snapshotCmd
}

func newSnapshotRecordCommand(a *app, manifestPath *string) *cobra.Command {
	var (
		pf   *parserFlags
		name string
	)

	recordCmd := &cobra.Command{
		Use:   "record <version>",
		Short: "write the current schema as a new snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			opts, err := a.options(c.Flags(), pf)
			if err != nil {
				return err
			}
			file, err := snapshot.Generate(c.Context(), opts, *manifestPath, name, args[0])
			if err != nil {
				return err
			}
			a.logger.Info("recorded snapshot", "name", name, "version", args[0], "file", file)
			_, err = fmt.Fprintln(c.OutOrStdout(), file)
			return err
		},
	}
	pf = addParserFlags(recordCmd.Flags())
	recordCmd.Flags().StringVarP(&name, "name", "n", "schema", "snapshot name")

	return recordCmd
}

func newSnapshotDiffCommand(manifestPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "compare the current snapshot with the previous one",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			diff, err := snapshot.DiffCurrentWithPrevious(*manifestPath)
			if errors.Is(err, snapshot.ErrNoPrevious) {
				_, err = fmt.Fprintln(c.OutOrStdout(), "nothing to compare")
				return err
			}
			if err != nil {
				return err
			}
			if diff == "" {
				_, err = fmt.Fprintln(c.OutOrStdout(), "no changes")
				return err
			}
			_, err = fmt.Fprint(c.OutOrStdout(), diff)
			return err
		},
	}
}

func newSnapshotListCommand(manifestPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list recorded snapshots",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			m, err := snapshot.List(*manifestPath)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "\tNAME\tVERSION\tCLASSES\tFILE")
			for _, s := range m.Snapshots {
				marker := ""
				switch s.Version {
				case m.CurrentVersion:
					marker = "*"
				case m.PreviousVersion:
					marker = "-"
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", marker, s.Name, s.Version, s.Classes, s.File)
			}
			return tw.Flush()
		},
	}
}
