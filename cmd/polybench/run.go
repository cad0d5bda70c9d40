package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/polyglotai/polybench/internal/cache"
	"github.com/polyglotai/polybench/internal/client"
	"github.com/polyglotai/polybench/internal/logging"
	"github.com/polyglotai/polybench/internal/runner"
	"github.com/polyglotai/polybench/internal/runspec"
	"github.com/polyglotai/polybench/internal/store"
)

type runOptions struct {
	spec         string
	provider     string
	model        string
	maxInstances int
	concurrency  int
	format       string
}

func newRunCmd(st *cliState) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run a benchmark spec against a model",
		Args:    cobra.NoArgs,
		PreRunE: loadConfigPreRun(st),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(cmd, st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.spec, "spec", "", "run spec description, e.g. mmlu:subject=anatomy,language=de")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "provider to evaluate (overrides config default)")
	cmd.Flags().StringVar(&opts.model, "model", "", "model to evaluate (overrides config)")
	cmd.Flags().IntVar(&opts.maxInstances, "max-instances", 0, "max eval instances (overrides config)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "parallel requests (overrides config)")
	cmd.Flags().StringVar(&opts.format, "format", "table", "output format: table|json")

	return cmd
}

func runBenchmark(cmd *cobra.Command, st *cliState, opts *runOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("run: missing config (internal error)")
	}
	if opts == nil {
		return fmt.Errorf("run: nil options")
	}

	specDesc := strings.TrimSpace(opts.spec)
	if specDesc == "" {
		return fmt.Errorf("run: missing --spec")
	}
	spec, err := runspec.ParseDescription(specDesc)
	if err != nil {
		return err
	}

	log, err := logging.New(st.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	c, err := cache.Open(st.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	reg, err := client.NewRegistryFromConfig(ctx, st.cfg, c, log)
	if err != nil {
		return err
	}

	cl, model, err := client.Resolve(reg, st.cfg, opts.provider, opts.model)
	if err != nil {
		return err
	}

	stRuns, err := store.Open(st.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = stRuns.Close() }()

	lb, err := openLeaderboardStore(st.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = lb.Close() }()

	maxInstances := st.cfg.Evaluation.MaxEvalInstances
	if opts.maxInstances > 0 {
		maxInstances = opts.maxInstances
	}
	concurrency := st.cfg.Evaluation.Concurrency
	if opts.concurrency > 0 {
		concurrency = opts.concurrency
	}

	r := &runner.Runner{
		Client:           cl,
		Provider:         cl.Name(),
		Model:            model,
		Store:            stRuns,
		Board:            lb,
		Log:              log,
		MaxEvalInstances: maxInstances,
		Concurrency:      concurrency,
	}

	record, err := r.Run(ctx, spec)
	if err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(opts.format)) {
	case "", "table":
		return printRunTable(cmd, record)
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	default:
		return fmt.Errorf("run: invalid --format %q (expected table|json)", opts.format)
	}
}

func printRunTable(cmd *cobra.Command, record *store.RunRecord) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run: %s\n", record.ID)
	fmt.Fprintf(out, "Spec: %s\n", record.SpecName)
	fmt.Fprintf(out, "Model: %s/%s\n", record.Provider, record.Model)
	fmt.Fprintf(out, "Instances: %d (success=%d failed=%d cached=%d)\n",
		record.TotalInstances, record.SuccessCount, record.FailureCount, record.CacheHits)

	names := make([]string, 0, len(record.Scores))
	for name := range record.Scores {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "%s: %.4f\n", name, record.Scores[name])
	}
	return nil
}
