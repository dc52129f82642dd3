package coach

import (
	"context"
	"log"
	"sync"

	"github.com/lowaak/running-coach/internal/catalog"
	"github.com/lowaak/running-coach/internal/events"
	"github.com/lowaak/running-coach/internal/go_func_utils"
	"github.com/lowaak/running-coach/internal/progression"
)

// UIState holds the current state of the UI that views need to render
type UIState struct {
	Mode        UIMode
	FamilyIndex int // Family whose programs are listed, -1 on the main menu
}

type UIModel struct {
	logEvent              *events.ChannelEvent[string]
	closeApplicationEvent *events.ChannelEvent[struct{}]
	uiStateEvent          *events.ChannelEvent[UIState]
	uiState               UIState
	catalogEvent          *events.ChannelEvent[*catalog.Catalog]
	catalog               *catalog.Catalog
	sessionStateEvent     *events.ChannelEvent[SessionState]
	sessionState          SessionState
	signalEvent           *events.CallbackEvent[progression.Signal]
	persistence           *uiModelPersistence
	logLines              []string
	logMu                 sync.RWMutex
	mu                    sync.RWMutex
	ctx                   context.Context
	cancel                context.CancelFunc
	wg                    sync.WaitGroup
	logger                *log.Logger
}

// NewUIModel creates the model. stateDir holds the remembered menu selection;
// an empty stateDir disables persistence.
func NewUIModel(c *catalog.Catalog, stateDir string, logger *log.Logger, uiLogChan <-chan string) *UIModel {
	if c == nil {
		panic("UIModel: catalog cannot be nil")
	}
	if logger == nil {
		panic("UIModel: logger cannot be nil")
	}
	if uiLogChan == nil {
		panic("UIModel: uiLogChan cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	model := &UIModel{
		logEvent:              events.NewChannelEvent[string](false),
		closeApplicationEvent: events.NewChannelEvent[struct{}](true),
		uiStateEvent:          events.NewChannelEvent[UIState](true),
		uiState:               UIState{Mode: UIModeFamilies, FamilyIndex: -1},
		catalogEvent:          events.NewChannelEvent[*catalog.Catalog](true),
		catalog:               c,
		sessionStateEvent:     events.NewChannelEvent[SessionState](true),
		sessionState:          SessionState{Status: SessionStatusIdle},
		signalEvent:           events.NewCallbackEvent[progression.Signal](false),
		persistence:           newUIModelPersistence(stateDir, logger),
		logLines:              make([]string, 0, maxLogLines),
		ctx:                   ctx,
		cancel:                cancel,
		logger:                logger,
	}

	// Read from the UI log channel and populate logLines
	model.wg.Add(1)
	go_func_utils.SafeGo(model.logger, "ui log reader", func() { model.readFromLogChannel(ctx, uiLogChan) })

	return model
}

// Shutdown stops all goroutines and waits for them to finish
func (m *UIModel) Shutdown() {
	m.logger.Println("UIModel: Shutting down")
	m.cancel()
	m.wg.Wait()
	m.logger.Println("UIModel: Shutdown complete")
}

// ListenToLog registers a channel to receive log messages
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToLog(ch chan<- string) func() {
	return m.logEvent.Listen(ch)
}

// ListenToCloseApplication registers a channel to receive close application signals
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToCloseApplication(ch chan<- struct{}) func() {
	return m.closeApplicationEvent.Listen(ch)
}

// RequestCloseApplication signals that the application should close
func (m *UIModel) RequestCloseApplication() {
	m.closeApplicationEvent.Notify(struct{}{})
}

// ListenToUIState registers a channel to receive UI state changes
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToUIState(ch chan<- UIState) func() {
	return m.uiStateEvent.Listen(ch)
}

// GetUIState returns the current UI state
func (m *UIModel) GetUIState() UIState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.uiState
}

// SetUIState updates the current UI state and notifies listeners
func (m *UIModel) SetUIState(state UIState) {
	m.mu.Lock()
	if m.uiState == state {
		m.mu.Unlock()
		return
	}
	m.uiState = state
	m.mu.Unlock()

	m.uiStateEvent.Notify(state)
}

// SetMode updates the current UI mode, keeping the family, and notifies listeners
func (m *UIModel) SetMode(mode UIMode) {
	m.mu.Lock()
	if m.uiState.Mode == mode {
		m.mu.Unlock()
		return
	}
	m.uiState.Mode = mode
	state := m.uiState
	m.mu.Unlock()

	m.uiStateEvent.Notify(state)
}

// ListenToCatalog registers a channel to receive catalog replacements
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToCatalog(ch chan<- *catalog.Catalog) func() {
	return m.catalogEvent.Listen(ch)
}

// GetCatalog returns the current catalog
func (m *UIModel) GetCatalog() *catalog.Catalog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.catalog
}

// SetCatalog replaces the catalog and notifies listeners. A running session
// keeps the program it was started with.
func (m *UIModel) SetCatalog(c *catalog.Catalog) {
	if c == nil {
		return
	}
	m.mu.Lock()
	m.catalog = c
	m.mu.Unlock()

	m.catalogEvent.Notify(c)
}

// WatchCatalog applies every catalog received on updates until the channel
// closes or the model shuts down
func (m *UIModel) WatchCatalog(updates <-chan *catalog.Catalog) {
	m.wg.Add(1)
	go_func_utils.SafeGo(m.logger, "catalog updates", func() {
		defer m.wg.Done()
		for {
			select {
			case <-m.ctx.Done():
				return
			case c, ok := <-updates:
				if !ok {
					return
				}
				m.logger.Printf("UIModel: Catalog replaced (%d families)", len(c.Families))
				m.SetCatalog(c)
			}
		}
	})
}

// ListenToSessionState registers a channel to receive session state updates
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToSessionState(ch chan<- SessionState) func() {
	return m.sessionStateEvent.Listen(ch)
}

// GetSessionState returns the current session state
func (m *UIModel) GetSessionState() SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessionState
}

// SetSessionState updates the session state and notifies listeners
func (m *UIModel) SetSessionState(state SessionState) {
	m.mu.Lock()
	m.sessionState = state
	m.mu.Unlock()

	m.sessionStateEvent.Notify(state)
}

// ListenToSignal registers a callback for interval and program ends.
// Callbacks run on the session goroutine and must not block.
func (m *UIModel) ListenToSignal(callback func(progression.Signal)) func() {
	return m.signalEvent.Listen(callback)
}

// NotifySignal forwards a non-empty engine signal to listeners
func (m *UIModel) NotifySignal(signal progression.Signal) {
	if signal == progression.SignalNone {
		return
	}
	m.signalEvent.Notify(signal)
}

// GetLastSelection returns the remembered family ID and entry index
func (m *UIModel) GetLastSelection() (string, int) {
	return m.persistence.getLastSelection()
}

// SetLastSelection remembers the family ID and entry index of a started program
func (m *UIModel) SetLastSelection(familyID string, entryIndex int) {
	m.persistence.setLastSelection(familyID, entryIndex)
}

// readFromLogChannel reads log lines from the channel and populates logLines
func (m *UIModel) readFromLogChannel(ctx context.Context, logChan <-chan string) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-logChan:
			if !ok {
				return
			}

			m.logMu.Lock()
			m.logLines = append(m.logLines, line)
			if len(m.logLines) > maxLogLines {
				m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
			}
			m.logMu.Unlock()

			// Notify listeners for immediate display
			m.logEvent.Notify(line)
		}
	}
}

// GetLogTail returns the last n lines of logs
func (m *UIModel) GetLogTail(n int) []string {
	m.logMu.RLock()
	defer m.logMu.RUnlock()

	if n <= 0 {
		return []string{}
	}
	if n > len(m.logLines) {
		n = len(m.logLines)
	}
	result := make([]string, n)
	copy(result, m.logLines[len(m.logLines)-n:])
	return result
}
