package main

import (
	"github.com/spf13/cobra"

	"github.com/lowaak/running-coach/internal/catalog"
	"github.com/lowaak/running-coach/internal/coach"
	"github.com/lowaak/running-coach/internal/logging"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var showIntervals bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the program catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			cat, err := catalog.LoadOrBuiltin(cfg.Catalog.File)
			if err != nil {
				return err
			}
			printCatalog(console(cmd), cat, showIntervals)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showIntervals, "intervals", false, "show every interval of each program")
	return cmd
}

func printCatalog(out logging.Console, cat *catalog.Catalog, showIntervals bool) {
	for _, family := range cat.Families {
		out.Header("%s (%s)  %s", family.Title, family.ID, family.Subtitle)
		for i, item := range coach.EntryMenuItems(family) {
			out.Line(1, "%2d. %-8s %s", i+1, item.Main, item.Secondary)
			if !showIntervals {
				continue
			}
			for _, interval := range family.Entries[i].Program.Intervals {
				out.Dim(2, "%-5s %s", coach.KindLabel(interval.Kind, family.Entries[i].Title), coach.FormatCountdown(interval.Seconds))
			}
		}
	}
}
