package coach

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lowaak/running-coach/internal/catalog"
	"github.com/lowaak/running-coach/internal/go_func_utils"
	"github.com/lowaak/running-coach/internal/progression"
)

// sessionCommandKind represents commands sent to the session goroutine
type sessionCommandKind int

const (
	cmdStart sessionCommandKind = iota
	cmdTogglePause
	cmdAdvance
	cmdRewind
	cmdStop
)

func (k sessionCommandKind) String() string {
	switch k {
	case cmdStart:
		return "start"
	case cmdTogglePause:
		return "toggle pause"
	case cmdAdvance:
		return "advance"
	case cmdRewind:
		return "rewind"
	case cmdStop:
		return "stop"
	default:
		return "unknown"
	}
}

type sessionCommand struct {
	kind      sessionCommandKind
	selection catalog.Selection
}

// SessionManager owns the progression engine. All engine calls happen on its
// goroutine; a time.Ticker supplies the one-second ticks.
type SessionManager struct {
	model      *UIModel
	logger     *log.Logger
	debug      *log.Logger
	tickPeriod time.Duration
	newID      func() string

	// Current session state (protected by mu)
	mu          sync.RWMutex
	engine      progression.State
	id          string
	status      SessionStatus
	familyTitle string
	lastSignal  progression.Signal
	skipPending bool

	// Goroutine management
	cmdChan      chan sessionCommand
	doneChan     chan struct{} // Closed to signal shutdown
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewSessionManager creates a SessionManager and starts its goroutine.
// debug receives the engine dump around every tick.
func NewSessionManager(model *UIModel, tickPeriod time.Duration, logger, debug *log.Logger) *SessionManager {
	if model == nil {
		panic("SessionManager: model cannot be nil")
	}
	if logger == nil {
		panic("SessionManager: logger cannot be nil")
	}
	if debug == nil {
		panic("SessionManager: debug logger cannot be nil")
	}
	if tickPeriod <= 0 {
		tickPeriod = DefaultTickPeriod
	}

	sm := &SessionManager{
		model:      model,
		logger:     logger,
		debug:      debug,
		tickPeriod: tickPeriod,
		newID:      uuid.NewString,
		status:     SessionStatusIdle,
		cmdChan:    make(chan sessionCommand, 4),
		doneChan:   make(chan struct{}),
	}

	sm.wg.Add(1)
	go_func_utils.SafeGo(logger, "session loop", sm.runSessionLoop)

	return sm
}

// Start begins a new session for the selection, replacing any current one.
// An invalid program is rejected here and the current session is untouched.
func (sm *SessionManager) Start(selection catalog.Selection) error {
	if err := selection.Program().Validate(); err != nil {
		sm.logger.Printf("SessionManager: Cannot start %q: %v", selection.Entry.Title, err)
		return err
	}
	sm.logger.Printf("SessionManager: Starting %s / %s", selection.Family.Title, selection.Entry.Title)
	sm.send(sessionCommand{kind: cmdStart, selection: selection})
	return nil
}

// TogglePause pauses a running session or resumes a paused one
func (sm *SessionManager) TogglePause() {
	sm.send(sessionCommand{kind: cmdTogglePause})
}

// Advance skips to the next interval
func (sm *SessionManager) Advance() {
	sm.send(sessionCommand{kind: cmdAdvance})
}

// Rewind goes back to the previous interval, or restarts the first one
func (sm *SessionManager) Rewind() {
	sm.send(sessionCommand{kind: cmdRewind})
}

// Stop abandons the current session
func (sm *SessionManager) Stop() {
	sm.send(sessionCommand{kind: cmdStop})
}

// State returns the current session state
func (sm *SessionManager) State() SessionState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.buildState()
}

// Shutdown stops the session goroutine.
// Safe to call multiple times - only the first call has effect
func (sm *SessionManager) Shutdown() {
	sm.shutdownOnce.Do(func() {
		sm.logger.Printf("SessionManager: Shutting down")
		close(sm.doneChan)
		sm.wg.Wait()
		sm.logger.Printf("SessionManager: Shutdown complete")
	})
}

func (sm *SessionManager) send(cmd sessionCommand) {
	select {
	case sm.cmdChan <- cmd:
	case <-sm.doneChan:
		sm.logger.Printf("SessionManager: Dropping %s command after shutdown", cmd.kind)
	}
}

// --- Private Methods ---

// buildState computes the published state. MUST be called with mu held.
func (sm *SessionManager) buildState() SessionState {
	return SessionState{
		ID:          sm.id,
		Status:      sm.status,
		FamilyTitle: sm.familyTitle,
		Snapshot:    sm.engine.Snapshot(),
		LastSignal:  sm.lastSignal,
		SkipPending: sm.skipPending,
	}
}

func (sm *SessionManager) handleStart(selection catalog.Selection) (SessionState, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if err := sm.engine.Start(selection.Program(), selection.RepeatFirstInterval()); err != nil {
		return sm.buildState(), err
	}
	sm.id = sm.newID()
	sm.status = SessionStatusRunning
	sm.familyTitle = selection.Family.Title
	sm.lastSignal = progression.SignalNone
	sm.skipPending = false
	sm.debug.Printf("SessionManager: session %s start %s", sm.id, sm.engine.String())
	return sm.buildState(), nil
}

func (sm *SessionManager) handleTogglePause() (SessionState, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	switch sm.status {
	case SessionStatusRunning:
		sm.status = SessionStatusPaused
	case SessionStatusPaused:
		sm.status = SessionStatusRunning
	default:
		return SessionState{}, false
	}
	return sm.buildState(), true
}

// skipResult holds the result of a manual skip
type skipResult struct {
	state   SessionState
	skip    bool // nothing changed, publish nothing
	running bool // the ticker phase must restart
}

func (sm *SessionManager) handleSkip(kind sessionCommandKind) skipResult {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !(sm.status == SessionStatusRunning || sm.status == SessionStatusPaused) {
		return skipResult{skip: true}
	}

	if kind == cmdAdvance {
		if !sm.engine.Advance() {
			return skipResult{skip: true}
		}
	} else {
		// Rewind restarts the countdown even when already on the first interval
		sm.engine.Rewind()
	}
	sm.lastSignal = progression.SignalNone
	sm.skipPending = true
	sm.debug.Printf("SessionManager: %s -> %s", kind, sm.engine.String())

	return skipResult{
		state:   sm.buildState(),
		running: sm.status == SessionStatusRunning,
	}
}

func (sm *SessionManager) handleStop() (SessionState, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.status == SessionStatusIdle {
		return SessionState{}, false
	}
	sm.engine = progression.State{}
	sm.id = ""
	sm.status = SessionStatusIdle
	sm.familyTitle = ""
	sm.lastSignal = progression.SignalNone
	sm.skipPending = false
	return sm.buildState(), true
}

// tickResult holds the result of processing a timer tick
type tickResult struct {
	state  SessionState
	skip   bool // status wasn't running, skip this tick
	signal progression.Signal
}

// handleTick advances the engine by one second under lock
func (sm *SessionManager) handleTick() tickResult {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.status != SessionStatusRunning {
		return tickResult{skip: true}
	}

	sm.debug.Printf("SessionManager: before tick %s", sm.engine.String())
	signal := sm.engine.Tick()
	sm.debug.Printf("SessionManager: after tick %s", sm.engine.String())

	sm.lastSignal = signal
	sm.skipPending = false
	if signal == progression.SignalProgramEnded {
		sm.status = SessionStatusCompleted
	}
	return tickResult{state: sm.buildState(), signal: signal}
}

// runSessionLoop is the goroutine that owns the ticker
func (sm *SessionManager) runSessionLoop() {
	defer sm.wg.Done()

	ticker := time.NewTicker(sm.tickPeriod)
	ticker.Stop() // Started when a session starts

	for {
		select {
		case <-sm.doneChan:
			ticker.Stop()
			sm.logger.Printf("SessionManager: Goroutine exiting")
			return

		case cmd := <-sm.cmdChan:
			switch cmd.kind {
			case cmdStart:
				state, err := sm.handleStart(cmd.selection)
				if err != nil {
					sm.logger.Printf("SessionManager: Start failed: %v", err)
					continue
				}
				ticker.Reset(sm.tickPeriod)
				sm.model.SetSessionState(state)
				sm.logSessionStarted(state)

			case cmdTogglePause:
				state, ok := sm.handleTogglePause()
				if !ok {
					sm.logger.Printf("SessionManager: No active session to pause")
					continue
				}
				if state.Status == SessionStatusRunning {
					ticker.Reset(sm.tickPeriod)
					sm.logger.Printf("SessionManager: Session resumed")
				} else {
					ticker.Stop()
					sm.logger.Printf("SessionManager: Session paused")
				}
				sm.model.SetSessionState(state)

			case cmdAdvance, cmdRewind:
				result := sm.handleSkip(cmd.kind)
				if result.skip {
					continue
				}
				// A manual skip restarts the one-second phase
				if result.running {
					ticker.Reset(sm.tickPeriod)
				}
				sm.model.SetSessionState(result.state)
				sm.logger.Printf("SessionManager: %s to %s, %s", cmd.kind,
					result.state.Snapshot.Kind, FormatPeriod(result.state.Snapshot.Period, result.state.Snapshot.IntervalsTotal))

			case cmdStop:
				ticker.Stop()
				state, ok := sm.handleStop()
				if !ok {
					sm.logger.Printf("SessionManager: No session to stop")
					continue
				}
				sm.model.SetSessionState(state)
				sm.logger.Printf("SessionManager: Session stopped")
			}

		case <-ticker.C:
			result := sm.handleTick()
			if result.skip {
				continue
			}

			if result.signal == progression.SignalProgramEnded {
				ticker.Stop()
			}

			sm.model.SetSessionState(result.state)
			if result.signal != progression.SignalNone {
				sm.logSignal(result.state, result.signal)
				sm.model.NotifySignal(result.signal)
			}
		}
	}
}

func (sm *SessionManager) logSessionStarted(state SessionState) {
	snap := state.Snapshot
	sm.logger.Printf("SessionManager: Session %s started: %q, %d intervals, %s %s",
		state.ID, snap.Title, snap.IntervalsTotal, snap.Kind, FormatCountdown(snap.SecondsRemaining))
}

func (sm *SessionManager) logSignal(state SessionState, signal progression.Signal) {
	snap := state.Snapshot
	switch signal {
	case progression.SignalProgramEnded:
		sm.logger.Printf("SessionManager: Session %s completed: %q", state.ID, snap.Title)
	case progression.SignalIntervalEnded:
		sm.logger.Printf("SessionManager: Interval ended, now %s %s, %s",
			snap.Kind, FormatCountdown(snap.SecondsRemaining), FormatPeriod(snap.Period, snap.IntervalsTotal))
	}
}
