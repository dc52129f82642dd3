package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/lowaak/running-coach/internal/catalog"
	"github.com/lowaak/running-coach/internal/coach"
	"github.com/lowaak/running-coach/internal/haptics"
	"github.com/lowaak/running-coach/internal/logging"
	"github.com/lowaak/running-coach/internal/progression"
)

const minSimulatedTick = time.Millisecond

func newSimulateCmd(opts *rootOptions) *cobra.Command {
	var speed float64

	cmd := &cobra.Command{
		Use:   "simulate <family-id> <program-number>",
		Short: "Run a program at accelerated speed and print every interval change",
		Example: `  running-coach simulate f25k 1
  running-coach simulate intervals 3 --speed 600`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if speed <= 0 {
				return fmt.Errorf("--speed must be positive, got %g", speed)
			}
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			cat, err := catalog.LoadOrBuiltin(cfg.Catalog.File)
			if err != nil {
				return err
			}
			selection, err := resolveSelection(cat, args[0], args[1])
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

			tick := time.Duration(float64(cfg.Timer.Tick) / speed)
			if tick < minSimulatedTick {
				tick = minSimulatedTick
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			out := console(cmd)
			out.Info("Simulating %s / %s, one second every %s", selection.Family.Title, selection.Entry.Title, tick)
			return simulate(ctx, out, cat, selection, tick, logs.Logger, logs.Debug)
		},
	}
	cmd.Flags().Float64Var(&speed, "speed", 60, "how many program seconds pass per real second")
	return cmd
}

// resolveSelection maps a family ID and a 1-based program number to a selection
func resolveSelection(cat *catalog.Catalog, familyID, number string) (catalog.Selection, error) {
	_, familyIdx, err := cat.Family(familyID)
	if err != nil {
		return catalog.Selection{}, err
	}
	n, err := strconv.Atoi(number)
	if err != nil {
		return catalog.Selection{}, fmt.Errorf("program number %q: %w", number, err)
	}
	return cat.Entry(familyIdx, n-1)
}

// simulate drives a real session manager and prints a line per interval.
// It returns once the program completes or ctx is cancelled.
func simulate(ctx context.Context, out logging.Console, cat *catalog.Catalog, selection catalog.Selection, tick time.Duration, logger, debug *log.Logger) error {
	// The first line comes from a local engine so nothing races the session
	var preview progression.State
	if err := preview.Start(selection.Program(), selection.RepeatFirstInterval()); err != nil {
		return err
	}

	model := coach.NewUIModel(cat, "", logger, make(chan string))
	defer model.Shutdown()

	driver := haptics.NewDriver(haptics.NewLogActuator(logger), haptics.DefaultPulseTimeout, logger)
	defer driver.Shutdown()

	sessionManager := coach.NewSessionManager(model, tick, logger, debug)
	defer sessionManager.Shutdown()

	// Buffered for every interval of the longest program, so the session goroutine never waits
	states := make(chan coach.SessionState, progression.PeriodicRepeatCap+1)
	unlisten := model.ListenToSignal(func(sig progression.Signal) {
		driver.HandleSignal(sig)
		select {
		case states <- model.GetSessionState():
		default:
		}
	})
	defer unlisten()

	if err := sessionManager.Start(selection); err != nil {
		return err
	}

	previous := preview.Snapshot()
	elapsed := 0
	printStep(out, elapsed, previous)

	for {
		select {
		case <-ctx.Done():
			out.Warn("Interrupted after %s", coach.FormatCountdown(elapsed))
			return nil
		case state := <-states:
			elapsed += previous.IntervalSeconds
			if state.Status == coach.SessionStatusCompleted {
				out.Success("%s / %s complete after %s", selection.Family.Title, selection.Entry.Title, coach.FormatCountdown(elapsed))
				return nil
			}
			previous = state.Snapshot
			printStep(out, elapsed, previous)
		}
	}
}

func printStep(out logging.Console, elapsed int, snap progression.Snapshot) {
	out.Line(1, "%s  %-6s %s  %s",
		coach.FormatCountdown(elapsed),
		coach.KindLabel(snap.Kind, snap.Title),
		coach.FormatCountdown(snap.IntervalSeconds),
		coach.FormatPeriod(snap.Period, snap.IntervalsTotal))
}
