package coach

import (
	"context"
	"log"
	"sync"

	"github.com/lowaak/running-coach/internal/catalog"
	"github.com/lowaak/running-coach/internal/go_func_utils"
)

// UIController handles UI events and coordinates with the UIModel
type UIController struct {
	model          *UIModel
	sessionManager *SessionManager
	logger         *log.Logger
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
}

// NewUIController creates a new UIController with the given dependencies
func NewUIController(model *UIModel, sessionManager *SessionManager, logger *log.Logger) *UIController {
	if model == nil {
		panic("UIController: model cannot be nil")
	}
	if sessionManager == nil {
		panic("UIController: sessionManager cannot be nil")
	}
	if logger == nil {
		panic("UIController: logger cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &UIController{
		model:          model,
		sessionManager: sessionManager,
		logger:         logger,
		ctx:            ctx,
		cancel:         cancel,
	}

	c.wg.Add(1)
	go_func_utils.SafeGo(logger, "catalog listener", c.listenToCatalog)

	return c
}

// listenToCatalog drops back to the main menu when a reloaded catalog no
// longer has the family being browsed
func (c *UIController) listenToCatalog() {
	defer c.wg.Done()

	ch := make(chan *catalog.Catalog, 1)
	unregister := c.model.ListenToCatalog(ch)
	defer unregister()

	for {
		select {
		case <-c.ctx.Done():
			return
		case cat, ok := <-ch:
			if !ok {
				return
			}
			state := c.model.GetUIState()
			if state.Mode == UIModePrograms && state.FamilyIndex >= len(cat.Families) {
				c.logger.Printf("Family %d no longer in catalog, back to main menu", state.FamilyIndex)
				c.model.SetUIState(UIState{Mode: UIModeFamilies, FamilyIndex: -1})
			}
		}
	}
}

// OnFamilySelected opens the program list of a family
func (c *UIController) OnFamilySelected(index int) {
	cat := c.model.GetCatalog()
	if index < 0 || index >= len(cat.Families) {
		c.logger.Printf("Invalid family index: %d", index)
		return
	}
	c.logger.Printf("Family selected: %s", cat.Families[index].Title)
	c.model.SetUIState(UIState{Mode: UIModePrograms, FamilyIndex: index})
}

// OnEntrySelected starts the chosen program of the current family and shows the timer
func (c *UIController) OnEntrySelected(index int) {
	state := c.model.GetUIState()
	selection, err := c.model.GetCatalog().Entry(state.FamilyIndex, index)
	if err != nil {
		c.logger.Printf("Invalid program selection: %v", err)
		return
	}

	if err := c.sessionManager.Start(selection); err != nil {
		c.logger.Printf("Cannot start %s: %v", selection.Entry.Title, err)
		return
	}
	c.model.SetLastSelection(selection.Family.ID, index)
	c.model.SetUIState(UIState{Mode: UIModeTimer, FamilyIndex: state.FamilyIndex})
}

// OnRewind goes back one interval
func (c *UIController) OnRewind() {
	if c.model.GetUIState().Mode != UIModeTimer {
		return
	}
	c.sessionManager.Rewind()
}

// OnAdvance skips to the next interval
func (c *UIController) OnAdvance() {
	if c.model.GetUIState().Mode != UIModeTimer {
		return
	}
	c.sessionManager.Advance()
}

// OnTogglePause pauses or resumes the session
func (c *UIController) OnTogglePause() {
	if c.model.GetUIState().Mode != UIModeTimer {
		return
	}
	c.sessionManager.TogglePause()
}

// OnEscapeKey goes back one screen. Leaving the timer abandons the session;
// leaving the main menu closes the application.
func (c *UIController) OnEscapeKey() {
	state := c.model.GetUIState()
	switch state.Mode {
	case UIModeTimer:
		c.sessionManager.Stop()
		if state.FamilyIndex >= len(c.model.GetCatalog().Families) {
			c.logger.Printf("Family %d no longer in catalog, back to main menu", state.FamilyIndex)
			c.model.SetUIState(UIState{Mode: UIModeFamilies, FamilyIndex: -1})
			return
		}
		c.model.SetUIState(UIState{Mode: UIModePrograms, FamilyIndex: state.FamilyIndex})
	case UIModePrograms:
		c.model.SetUIState(UIState{Mode: UIModeFamilies, FamilyIndex: -1})
	default:
		c.model.RequestCloseApplication()
	}
}

// Shutdown stops the session manager and cleans up resources
func (c *UIController) Shutdown() {
	c.cancel()
	c.wg.Wait()
	c.sessionManager.Shutdown()
}
