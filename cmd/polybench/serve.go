package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/polyglotai/polybench/api"
	"github.com/polyglotai/polybench/internal/store"
)

func newServeCmd(st *cliState) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the HTTP API",
		Args:    cobra.NoArgs,
		PreRunE: loadConfigPreRun(st),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(st, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func runServe(st *cliState, addr string) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("serve: missing config (internal error)")
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

	srv, err := api.NewServer(st.cfg, stRuns, lb)
	if err != nil {
		return err
	}

	if strings.TrimSpace(addr) == "" {
		addr = st.cfg.Server.Addr
	}
	return srv.Run(addr)
}
