package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"tinygo.org/x/bluetooth"

	"github.com/lowaak/running-coach/internal/bt"
	"github.com/lowaak/running-coach/internal/logging"
)

func newScanCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Find BLE wearables that can vibrate (Immediate Alert service)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			logs, err := logging.Setup(logging.Params{
				FileName:   cfg.Log.File,
				MaxSizeMB:  cfg.Log.MaxSizeMB,
				MaxBackups: cfg.Log.MaxBackups,
				Debug:      cfg.Log.Debug,
			})
			if err != nil {
				return fmt.Errorf("setting up logging: %w", err)
			}
			defer logs.Close()
			out := console(cmd)

			out.Info("Scanning for %s...", cfg.Haptics.ScanTimeout)
			peripherals, err := bt.Discover(cmd.Context(), logs.Logger, bluetooth.DefaultAdapter, cfg.Haptics.ScanTimeout)
			if err != nil {
				out.Error("Scan failed: %v", err)
				return err
			}
			if len(peripherals) == 0 {
				out.Warn("No wearables found")
				return nil
			}

			out.Header("Wearables")
			for _, p := range peripherals {
				out.Line(1, "%s  %-20s %d dBm", p.Address, p.Name, p.RSSI)
			}
			out.Dim(0, "Pass an address with --device to vibrate it on interval changes")
			return nil
		},
	}
}
