package main

import (
	"fmt"

	"github.com/okian/simboard/internal/loadgen"
	"github.com/okian/simboard/pkg/logger"

	"github.com/spf13/cobra"
)

func newLoadgenCmd() *cobra.Command {
	var (
		cfg      loadgen.Config
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "loadgen",
		Short: "Submit random candidates to a running service and verify its boards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithOutput(cmd.ErrOrStderr())); err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			if err := logger.SetLevelString(logLevel); err != nil {
				return err
			}

			stats, err := loadgen.Run(cmd.Context(), cfg)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "generated:   %d\n", stats.Generated)
			fmt.Fprintf(out, "submitted:   %d (accepted %d, duplicate %d, failed %d)\n",
				stats.Submitted, stats.Accepted, stats.Duplicate, stats.Failed)
			fmt.Fprintf(out, "boards read: %d\n", stats.BoardsRead)
			fmt.Fprintf(out, "mismatches:  %d\n", stats.Mismatches)
			fmt.Fprintf(out, "duration:    %s (%.1f submissions/s)\n", stats.Duration, stats.SubmitRate)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "base-url", "http://localhost:9080", "base URL of the service")
	f.IntVar(&cfg.Simulations, "simulations", loadgen.DefaultSimulations, "number of simulations")
	f.IntVar(&cfg.Candidates, "candidates", loadgen.DefaultCandidates, "number of candidates to generate")
	f.IntVar(&cfg.Workers, "workers", 0, "concurrent submitters (default 2 x NumCPU)")
	f.Float64Var(&cfg.Rate, "rate", 0, "submissions per second (0 is unlimited)")
	f.DurationVar(&cfg.Timeout, "timeout", loadgen.DefaultTimeout, "per request timeout")
	f.DurationVar(&cfg.Settle, "settle", loadgen.DefaultSettle, "how long to wait for derivation to finish")
	f.Uint64Var(&cfg.Seed, "seed", 0, "generator seed (0 picks a random one)")
	f.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	return cmd
}
