// Command simboard serves the candidate board and ranks fixture files offline.
package main

import (
	"context"
	"os"

	"github.com/okian/simboard/internal/config"

	"github.com/spf13/cobra"
)

const app = "simboard"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}

// Execute builds the command tree and runs it.
func Execute() error {
	return newRootCmd().Execute()
}

// rootOptions holds the persistent flags shared by subcommands.
type rootOptions struct {
	cfgFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:          app,
		Short:        "simboard ranks and compares candidates assessed against job simulations",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "a YAML config file (default is $"+config.EnvFile+")")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newRankCmd(),
		newLoadgenCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// loadConfig prefers the --config flag over SIMBOARD_CONFIG.
func (o *rootOptions) loadConfig(ctx context.Context) (*config.Config, error) {
	if o.cfgFile != "" {
		return config.LoadFile(ctx, o.cfgFile)
	}
	return config.Load(ctx)
}
