package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/polyglotai/polybench/internal/runspec"
	"github.com/polyglotai/polybench/internal/store"
)

type listOptions struct {
	spec   string
	model  string
	limit  int
	format string
	specs  bool
}

func newListCmd(st *cliState) *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List stored benchmark runs",
		Args:    cobra.NoArgs,
		PreRunE: loadConfigPreRun(st),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.spec, "spec", "", "filter by run spec name")
	cmd.Flags().StringVar(&opts.model, "model", "", "filter by model")
	cmd.Flags().IntVar(&opts.limit, "limit", 20, "max runs to show")
	cmd.Flags().StringVar(&opts.format, "format", "table", "output format: table|json")
	cmd.Flags().BoolVar(&opts.specs, "specs", false, "list known run spec families instead of stored runs")

	return cmd
}

func runList(cmd *cobra.Command, st *cliState, opts *listOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("list: missing config (internal error)")
	}
	if opts == nil {
		return fmt.Errorf("list: nil options")
	}

	if opts.specs {
		for _, name := range runspec.Known() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	stRuns, err := store.Open(st.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = stRuns.Close() }()

	runs, err := stRuns.ListRuns(cmd.Context(), store.RunFilter{
		SpecName: opts.spec,
		Model:    opts.model,
		Limit:    opts.limit,
	})
	if err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(opts.format)) {
	case "", "table":
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSPEC\tMODEL\tINSTANCES\tFAILED\tCACHED\tSTARTED")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
				r.ID,
				r.SpecName,
				r.Model,
				r.TotalInstances,
				r.FailureCount,
				r.CacheHits,
				r.StartedAt.UTC().Format("2006-01-02 15:04:05Z"),
			)
		}
		return tw.Flush()
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	default:
		return fmt.Errorf("list: invalid --format %q (expected table|json)", opts.format)
	}
}
