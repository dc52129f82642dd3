package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"
	"tinygo.org/x/bluetooth"

	"github.com/lowaak/running-coach/internal/bt"
	"github.com/lowaak/running-coach/internal/catalog"
	"github.com/lowaak/running-coach/internal/coach"
	"github.com/lowaak/running-coach/internal/config"
	"github.com/lowaak/running-coach/internal/haptics"
	"github.com/lowaak/running-coach/internal/logging"
)

// runCoach starts the terminal UI and blocks until the user quits
func runCoach(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := opts.load(cmd)
	if err != nil {
		return err
	}

	logs, err := logging.Setup(logging.Params{
		FileName:   cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		Debug:      cfg.Log.Debug,
		UIFeed:     true,
	})
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer logs.Close()
	logger := logs.Logger
	logger.Printf("running-coach %s starting", version)

	cat, err := catalog.LoadOrBuiltin(cfg.Catalog.File)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	app := tview.NewApplication().SetScreen(screen)

	actuator, wearable := buildActuator(cfg, screen, logs)
	pulseTimeout := haptics.DefaultPulseTimeout
	if wearable != nil {
		// The first pulse also scans for and connects to the wearable
		pulseTimeout += cfg.Haptics.ScanTimeout
	}
	driver := haptics.NewDriver(actuator, pulseTimeout, logger)

	model := coach.NewUIModel(cat, cfg.State.Dir, logger, logs.UILines)
	unlistenSignals := model.ListenToSignal(driver.HandleSignal)

	var watcher *catalog.Watcher
	if cfg.Catalog.Watch {
		watcher, err = catalog.NewWatcher(logger, cfg.Catalog.File, catalog.DefaultDebounce)
		if err != nil {
			return err
		}
		updates, err := watcher.Start()
		if err != nil {
			return err
		}
		model.WatchCatalog(updates)
	}

	sessionManager := coach.NewSessionManager(model, cfg.Timer.Tick, logger, logs.Debug)
	controller := coach.NewUIController(model, sessionManager, logger)
	view := coach.NewBaseUIView(coach.NewBaseUIViewArg{
		UIViewImpl:   coach.NewCursesUIView(logger, app),
		UIModel:      model,
		UIController: controller,
		Logger:       logger,
	})

	runErr := view.Run()

	view.Shutdown()
	controller.Shutdown()
	unlistenSignals()
	driver.Shutdown()
	if wearable != nil {
		if err := wearable.Close(); err != nil {
			logger.Printf("Closing wearable: %v", err)
		}
	}
	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			logger.Printf("Stopping catalog watcher: %v", err)
		}
	}
	model.Shutdown()
	logger.Printf("running-coach stopped")

	if runErr != nil {
		return fmt.Errorf("running UI: %w", runErr)
	}
	return nil
}

// buildActuator combines the configured outputs. The log actuator is always present.
func buildActuator(cfg config.Config, screen tcell.Screen, logs *logging.Logs) (haptics.Actuator, *bt.AlertActuator) {
	actuators := haptics.Fanout{haptics.NewLogActuator(logs.Debug)}
	if cfg.Haptics.Bell {
		actuators = append(actuators, haptics.NewBellActuator(screen, haptics.DefaultBellGap))
	}

	var wearable *bt.AlertActuator
	if cfg.Haptics.Device != "" {
		connector := bt.NewAdapterConnector(bluetooth.DefaultAdapter, cfg.Haptics.Device, cfg.Haptics.ScanTimeout, logs.Logger)
		wearable = bt.NewAlertActuator(connector, logs.Logger)
		actuators = append(actuators, wearable)
	}
	return actuators, wearable
}
