package coach

import (
	"fmt"
	"log"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Page names for tview.Pages
const (
	pageFamilies = "families"
	pagePrograms = "programs"
	pageTimer    = "timer"
)

// CursesUIViewImpl implements UIViewImpl using tview (curses-based terminal UI)
type CursesUIViewImpl struct {
	logger      *log.Logger
	app         *tview.Application
	currentMode UIMode

	// Root container that holds all pages
	pages *tview.Pages

	// Shared components (visible in all modes)
	logView  *tview.TextView
	hints    *tview.TextView
	mainFlex *tview.Flex // Main layout: mode content on left, logs on right

	familyList  *tview.List
	programList *tview.List
	timerText   *tview.TextView
}

func NewCursesUIView(logger *log.Logger, app *tview.Application) *CursesUIViewImpl {
	if logger == nil {
		panic("CursesUIViewImpl: logger cannot be nil")
	}
	if app == nil {
		panic("CursesUIViewImpl: app cannot be nil")
	}
	return &CursesUIViewImpl{
		logger:      logger,
		app:         app,
		currentMode: UIModeFamilies,
	}
}

// Initialize sets up the tview widgets
func (ui *CursesUIViewImpl) Initialize(controller *UIController) {
	// Don't use SetChangedFunc with app.Draw() on the log view: it can hang
	// during shutdown. BaseUIView calls Draw() after updating content.
	ui.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	ui.logView.SetBorder(true).SetTitle(" Logs ")

	ui.hints = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	ui.familyList = tview.NewList().
		ShowSecondaryText(true).
		SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			ui.logger.Printf("UI: Family selected: index=%d, name=%s", index, mainText)
			controller.OnFamilySelected(index)
		})
	ui.familyList.SetBorder(true).SetTitle(" Running Coach ")

	ui.programList = tview.NewList().
		ShowSecondaryText(true).
		SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			ui.logger.Printf("UI: Program selected: index=%d, name=%s", index, mainText)
			controller.OnEntrySelected(index)
		})
	ui.programList.SetBorder(true).SetTitle(" Programs ")

	ui.timerText = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	ui.timerText.SetBorder(true).SetTitle(" Timer ")

	ui.pages = tview.NewPages()
	ui.pages.AddPage(pageFamilies, ui.familyList, true, true)
	ui.pages.AddPage(pagePrograms, ui.programList, true, false)
	ui.pages.AddPage(pageTimer, ui.timerText, true, false)

	content := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.hints, 1, 0, false).
		AddItem(ui.pages, 0, 1, true)

	// Create main layout: pages on left, logs on right
	ui.mainFlex = tview.NewFlex().
		AddItem(content, 0, 1, true).
		AddItem(ui.logView, 0, 1, false)

	ui.updateHints()
	ui.setFocusForCurrentMode()
}

// SetMode switches the UI to the specified mode
func (ui *CursesUIViewImpl) SetMode(mode UIMode) {
	if ui.currentMode == mode {
		return
	}

	ui.currentMode = mode

	switch mode {
	case UIModeFamilies:
		ui.pages.SwitchToPage(pageFamilies)
	case UIModePrograms:
		ui.pages.SwitchToPage(pagePrograms)
	case UIModeTimer:
		ui.pages.SwitchToPage(pageTimer)
	}

	ui.updateHints()
	ui.setFocusForCurrentMode()
	ui.app.Draw()
}

// GetCurrentMode returns the currently active UI mode
func (ui *CursesUIViewImpl) GetCurrentMode() UIMode {
	return ui.currentMode
}

func (ui *CursesUIViewImpl) updateHints() {
	if info, ok := GetUIModeInfo(ui.currentMode); ok {
		ui.hints.SetText(info.KeyHints)
	}
}

// setFocusForCurrentMode focuses the widget of the current page
func (ui *CursesUIViewImpl) setFocusForCurrentMode() {
	switch ui.currentMode {
	case UIModeFamilies:
		ui.app.SetFocus(ui.familyList)
	case UIModePrograms:
		ui.app.SetFocus(ui.programList)
	case UIModeTimer:
		ui.app.SetFocus(ui.timerText)
	}
}

// SetupKeyboardHandlers sets up keyboard event handlers
func (ui *CursesUIViewImpl) SetupKeyboardHandlers(controller *UIController) {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			controller.OnEscapeKey()
			return nil
		}

		if ui.currentMode != UIModeTimer {
			return event
		}

		switch event.Key() {
		case tcell.KeyUp:
			controller.OnRewind()
			return nil
		case tcell.KeyDown:
			controller.OnAdvance()
			return nil
		case tcell.KeyEnter:
			controller.OnTogglePause()
			return nil
		case tcell.KeyRune:
			if event.Rune() == ' ' {
				controller.OnTogglePause()
				return nil
			}
		}
		return event
	})
}

// SetFamilyList fills the main menu
func (ui *CursesUIViewImpl) SetFamilyList(items []MenuItem, selected int) {
	setListItems(ui.familyList, items, selected)
}

// SetProgramList fills the program menu
func (ui *CursesUIViewImpl) SetProgramList(title string, items []MenuItem, selected int) {
	if title == "" {
		title = "Programs"
	}
	ui.programList.SetTitle(fmt.Sprintf(" %s ", title))
	setListItems(ui.programList, items, selected)
}

func setListItems(list *tview.List, items []MenuItem, selected int) {
	current := list.GetCurrentItem()
	list.Clear()
	for _, item := range items {
		list.AddItem(item.Main, item.Secondary, 0, nil)
	}
	if selected < 0 {
		selected = current
	}
	if selected >= 0 && selected < len(items) {
		list.SetCurrentItem(selected)
	}
}

// UpdateTimer redraws the timer page
func (ui *CursesUIViewImpl) UpdateTimer(display TimerDisplay) {
	ui.timerText.SetText(formatTimerText(display))
}

func formatTimerText(display TimerDisplay) string {
	var b strings.Builder
	b.WriteString("\n\n")
	if display.Label == "" {
		b.WriteString("[gray]No session[white]\n")
		return b.String()
	}

	fmt.Fprintf(&b, "[yellow]%s[white]\n\n", display.Label)
	if display.Time != "" {
		fmt.Fprintf(&b, "[::b]%s[::-]\n\n", display.Time)
	}
	if display.Period != "" {
		fmt.Fprintf(&b, "%s\n\n", display.Period)
	}
	if display.Status != "" {
		fmt.Fprintf(&b, "[gray]%s[white]\n", display.Status)
	}
	return b.String()
}

// GetLogViewHeight returns the visible height of the log view
func (ui *CursesUIViewImpl) GetLogViewHeight() int {
	_, _, _, height := ui.logView.GetInnerRect()
	return height
}

// ClearLogView clears the log view
func (ui *CursesUIViewImpl) ClearLogView() {
	ui.logView.Clear()
}

// WriteLogLine writes a line to the log view
func (ui *CursesUIViewImpl) WriteLogLine(line string) error {
	_, err := fmt.Fprintln(ui.logView, tview.Escape(line))
	return err
}

// Draw refreshes/redraws the UI
func (ui *CursesUIViewImpl) Draw() error {
	ui.app.Draw()
	return nil
}

// Run starts the UI and blocks until it exits
func (ui *CursesUIViewImpl) Run() error {
	// SetRoot must be called before setting focus, otherwise focus may be reset
	ui.app.SetRoot(ui.mainFlex, true)
	ui.setFocusForCurrentMode()
	return ui.app.Run()
}

// Stop stops the UI framework
func (ui *CursesUIViewImpl) Stop() {
	ui.app.Stop()
}
