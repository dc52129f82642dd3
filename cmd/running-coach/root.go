package main

import (
	"github.com/spf13/cobra"

	"github.com/lowaak/running-coach/internal/config"
	"github.com/lowaak/running-coach/internal/logging"
)

var version = "dev"

type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "running-coach",
		Short: "Interval timer for walk/run training programs",
		Long: `Runs couch-to-5K style interval programs in the terminal. Each interval
counts down once per second and interval changes are signalled through the
terminal bell and, optionally, a BLE wearable.`,
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoach(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "",
		"config file (default ~/.running-coach/config.yaml)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newListCmd(opts),
		newSimulateCmd(opts),
		newScanCmd(opts),
	)
	return cmd
}

// load resolves the configuration for cmd, including inherited flags
func (o *rootOptions) load(cmd *cobra.Command) (config.Config, error) {
	return config.Load(config.HomeDir(), o.configFile, cmd.Flags())
}

func console(cmd *cobra.Command) logging.Console {
	return logging.Console{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
}
