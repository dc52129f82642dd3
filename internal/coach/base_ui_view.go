package coach

import (
	"context"
	"log"
	"time"

	"github.com/lowaak/running-coach/internal/catalog"
	"github.com/lowaak/running-coach/internal/go_func_utils"
)

// BaseUIView contains the base logic shared by all UI implementations
type BaseUIView struct {
	uiViewImpl   UIViewImpl
	uiModel      *UIModel
	uiController *UIController
	context      context.Context
	cancelFunc   context.CancelFunc
	goroutines   *go_func_utils.Group
	logger       *log.Logger
}

// NewBaseUIViewArg holds the arguments for creating a new BaseUIView
type NewBaseUIViewArg struct {
	UIViewImpl   UIViewImpl
	UIModel      *UIModel
	UIController *UIController
	Logger       *log.Logger
}

// NewBaseUIView creates a new BaseUIView with the given implementation
func NewBaseUIView(args NewBaseUIViewArg) *BaseUIView {
	if args.Logger == nil {
		panic("BaseUIView: logger cannot be nil")
	}
	if args.UIViewImpl == nil {
		panic("BaseUIView: UIViewImpl cannot be nil")
	}
	if args.UIModel == nil {
		panic("BaseUIView: UIModel cannot be nil")
	}
	if args.UIController == nil {
		panic("BaseUIView: UIController cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())

	base := &BaseUIView{
		uiViewImpl:   args.UIViewImpl,
		uiModel:      args.UIModel,
		uiController: args.UIController,
		context:      ctx,
		cancelFunc:   cancel,
		goroutines:   go_func_utils.NewGroup(args.Logger),
		logger:       args.Logger,
	}

	// Initialize framework-specific widgets
	args.UIViewImpl.Initialize(args.UIController)

	// Set up keyboard handlers
	args.UIViewImpl.SetupKeyboardHandlers(args.UIController)

	// Initial content from model
	base.refreshMenus(args.UIModel.GetCatalog(), args.UIModel.GetUIState())
	args.UIViewImpl.UpdateTimer(BuildTimerDisplay(args.UIModel.GetSessionState()))
	args.UIViewImpl.SetMode(args.UIModel.GetUIState().Mode)

	// Set up periodic resize check and initial display
	base.goroutines.Go("log resize monitor", base.monitorLogResize)
	base.updateLogDisplay()

	base.setupEventListeners()

	return base
}

// listen runs handle for every value sent on ch until shutdown, then redraws
func listen[T any](base *BaseUIView, name string, register func(chan<- T) func(), handle func(T)) {
	ch := make(chan T, 1)
	unregister := register(ch)
	base.goroutines.Go(name, func() {
		defer unregister()
		for {
			select {
			case <-base.context.Done():
				return
			case value, ok := <-ch:
				if !ok {
					return
				}
				handle(value)
				base.draw()
			}
		}
	})
}

func (base *BaseUIView) setupEventListeners() {
	// When a new log arrives, update the display to show the tail
	listen(base, "log listener", base.uiModel.ListenToLog, func(string) {
		base.updateLogDisplay()
	})

	// The listeners below render the model's current value: a full channel
	// drops the newest notification, but the one still queued wakes us anyway.
	listen(base, "ui state listener", base.uiModel.ListenToUIState, func(UIState) {
		state := base.uiModel.GetUIState()
		base.refreshMenus(base.uiModel.GetCatalog(), state)
		base.uiViewImpl.SetMode(state.Mode)
	})

	listen(base, "catalog listener", base.uiModel.ListenToCatalog, func(*catalog.Catalog) {
		base.refreshMenus(base.uiModel.GetCatalog(), base.uiModel.GetUIState())
	})

	listen(base, "session listener", base.uiModel.ListenToSessionState, func(SessionState) {
		base.uiViewImpl.UpdateTimer(BuildTimerDisplay(base.uiModel.GetSessionState()))
	})

	// Listen to close application event from model
	closeChan := make(chan struct{}, 1)
	closeUnregister := base.uiModel.ListenToCloseApplication(closeChan)
	base.goroutines.Go("close listener", func() {
		defer closeUnregister()
		select {
		case <-base.context.Done():
			return
		case _, ok := <-closeChan:
			if !ok {
				return
			}
			base.uiViewImpl.Stop()
		}
	})
}

// refreshMenus fills both menus, highlighting the remembered selection
func (base *BaseUIView) refreshMenus(c *catalog.Catalog, state UIState) {
	lastFamilyID, lastEntry := base.uiModel.GetLastSelection()

	familySelected := -1
	if _, idx, err := c.Family(lastFamilyID); err == nil {
		familySelected = idx
	}
	if state.FamilyIndex >= 0 {
		familySelected = state.FamilyIndex
	}
	base.uiViewImpl.SetFamilyList(FamilyMenuItems(c), familySelected)

	if state.FamilyIndex < 0 || state.FamilyIndex >= len(c.Families) {
		base.uiViewImpl.SetProgramList("", nil, -1)
		return
	}
	family := c.Families[state.FamilyIndex]
	entrySelected := -1
	if family.ID == lastFamilyID && lastEntry < len(family.Entries) {
		entrySelected = lastEntry
	}
	base.uiViewImpl.SetProgramList(family.Title, EntryMenuItems(family), entrySelected)
}

func (base *BaseUIView) draw() {
	if err := base.uiViewImpl.Draw(); err != nil {
		base.logger.Printf("BaseUIView: Error drawing: %v", err)
	}
}

func (base *BaseUIView) updateLogDisplay() {
	height := base.uiViewImpl.GetLogViewHeight()
	if height <= 0 {
		return
	}

	logLines := base.uiModel.GetLogTail(height)

	base.uiViewImpl.ClearLogView()
	for _, line := range logLines {
		if err := base.uiViewImpl.WriteLogLine(line); err != nil {
			base.logger.Printf("BaseUIView: Error writing to log view: %v", err)
		}
	}
}

func (base *BaseUIView) monitorLogResize() {
	var lastHeight int
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-base.context.Done():
			return
		case <-ticker.C:
			height := base.uiViewImpl.GetLogViewHeight()
			if height != lastHeight && height > 0 {
				lastHeight = height
				base.updateLogDisplay()
				base.draw()
			}
		}
	}
}

// Shutdown stops all goroutines and waits for them to finish
func (base *BaseUIView) Shutdown() {
	base.logger.Println("BaseUIView: Shutting down")
	base.cancelFunc()
	base.goroutines.Wait()
	base.logger.Println("BaseUIView: Shutdown complete")
}

// Run starts the UI and blocks until it exits
func (base *BaseUIView) Run() error {
	return base.uiViewImpl.Run()
}
