package coach

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/running-coach/internal/catalog"
	"github.com/lowaak/running-coach/internal/progression"
)

// Never fires during a test, so only commands move the session
const stoppedClock = time.Hour

type signalRecorder struct {
	mu      sync.Mutex
	signals []progression.Signal
}

func (r *signalRecorder) record(s progression.Signal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, s)
}

func (r *signalRecorder) get() []progression.Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]progression.Signal(nil), r.signals...)
}

func TestSessionManager_RunsProgramToCompletion(t *testing.T) {
	c := testCatalog(t)
	model, _ := newTestModel(t, c)
	sm := newTestSessionManager(t, model, 5*time.Millisecond)

	recorder := &signalRecorder{}
	unregister := model.ListenToSignal(recorder.record)
	defer unregister()

	require.NoError(t, sm.Start(testSelection(t, c, 0, 0)))

	state := waitForSession(t, model, func(s SessionState) bool {
		return s.Status == SessionStatusCompleted
	})
	assert.NotEmpty(t, state.ID)
	assert.Equal(t, "Test", state.FamilyTitle)
	assert.True(t, state.Snapshot.ProgramJustEnded)
	assert.Equal(t, progression.SignalProgramEnded, state.LastSignal)
	assert.Equal(t, []progression.Signal{
		progression.SignalIntervalEnded,
		progression.SignalIntervalEnded,
		progression.SignalProgramEnded,
	}, recorder.get())

	// The ticker stops with the program
	time.Sleep(30 * time.Millisecond)
	assert.Len(t, recorder.get(), 3)
	assert.Equal(t, state, sm.State())
}

func TestSessionManager_StartRejectsInvalidProgram(t *testing.T) {
	c := testCatalog(t)
	model, _ := newTestModel(t, c)
	sm := newTestSessionManager(t, model, stoppedClock)

	invalid := catalog.Selection{
		Family: c.Families[0],
		Entry:  catalog.Entry{Title: "Empty", Program: progression.Program{Title: "Empty"}},
	}
	err := sm.Start(invalid)
	require.ErrorIs(t, err, progression.ErrInvalidProgram)
	assert.Equal(t, SessionStatusIdle, sm.State().Status)
}

func TestSessionManager_StartStatus(t *testing.T) {
	c := testCatalog(t)
	model, _ := newTestModel(t, c)
	sm := newTestSessionManager(t, model, stoppedClock)

	require.NoError(t, sm.Start(testSelection(t, c, 0, 1)))
	state := waitForSession(t, model, func(s SessionState) bool {
		return s.Status == SessionStatusRunning
	})
	assert.Equal(t, "Long", state.Snapshot.Title)
	assert.Equal(t, progression.KindWarmup, state.Snapshot.Kind)
	assert.Equal(t, 100, state.Snapshot.SecondsRemaining)
	assert.Equal(t, 3, state.Snapshot.IntervalsTotal)
	assert.Equal(t, 1, state.Snapshot.Period)
}

func TestSessionManager_AdvanceAndRewind(t *testing.T) {
	c := testCatalog(t)
	model, _ := newTestModel(t, c)
	sm := newTestSessionManager(t, model, stoppedClock)

	require.NoError(t, sm.Start(testSelection(t, c, 0, 1)))
	waitForSession(t, model, func(s SessionState) bool { return s.Status == SessionStatusRunning })

	sm.Advance()
	state := waitForSession(t, model, func(s SessionState) bool { return s.Snapshot.CursorIndex == 1 })
	assert.Equal(t, progression.KindRun, state.Snapshot.Kind)
	assert.Equal(t, 100+progression.ManualSkipBias, state.Snapshot.SecondsRemaining)

	sm.Advance()
	waitForSession(t, model, func(s SessionState) bool { return s.Snapshot.CursorIndex == 2 })

	// At the final interval advance changes nothing
	sm.Advance()
	sm.Rewind()
	state = waitForSession(t, model, func(s SessionState) bool { return s.Snapshot.CursorIndex == 1 })
	assert.Equal(t, 2, state.Snapshot.IntervalsRemaining)

	sm.Rewind()
	sm.Rewind()
	state = waitForSession(t, model, func(s SessionState) bool {
		return s.Snapshot.CursorIndex == 0 && s.Snapshot.IntervalsRemaining == 3
	})
	assert.Equal(t, 100+progression.ManualSkipBias, state.Snapshot.SecondsRemaining)
	assert.Equal(t, SessionStatusRunning, state.Status)
}

func TestSessionManager_SkipShowsNominalDuration(t *testing.T) {
	c := testCatalog(t)
	model, _ := newTestModel(t, c)
	sm := newTestSessionManager(t, model, stoppedClock)

	require.NoError(t, sm.Start(testSelection(t, c, 0, 1)))
	waitForSession(t, model, func(s SessionState) bool { return s.Status == SessionStatusRunning })

	// Running: rewind on the first interval restarts it
	sm.Rewind()
	state := waitForSession(t, model, func(s SessionState) bool { return s.SkipPending })
	assert.Equal(t, "01:40", BuildTimerDisplay(state).Time)
	assert.Equal(t, 100+progression.ManualSkipBias, state.Snapshot.SecondsRemaining)

	sm.Advance()
	state = waitForSession(t, model, func(s SessionState) bool { return s.Snapshot.CursorIndex == 1 })
	assert.Equal(t, "01:40", BuildTimerDisplay(state).Time)

	// Paused: the skip stays pending for the whole pause
	sm.TogglePause()
	waitForSession(t, model, func(s SessionState) bool { return s.Status == SessionStatusPaused })
	sm.Advance()
	state = waitForSession(t, model, func(s SessionState) bool { return s.Snapshot.CursorIndex == 2 })
	assert.Equal(t, SessionStatusPaused, state.Status)
	assert.Equal(t, "01:40", BuildTimerDisplay(state).Time)

	sm.Rewind()
	sm.Rewind()
	state = waitForSession(t, model, func(s SessionState) bool { return s.Snapshot.CursorIndex == 0 })
	assert.Equal(t, "01:40", BuildTimerDisplay(state).Time)
	assert.Equal(t, "01:40", BuildTimerDisplay(sm.State()).Time)
}

func TestSessionManager_TickConsumesSkip(t *testing.T) {
	c := testCatalog(t)
	model, _ := newTestModel(t, c)
	sm := newTestSessionManager(t, model, 5*time.Millisecond)

	require.NoError(t, sm.Start(testSelection(t, c, 0, 1)))
	waitForSession(t, model, func(s SessionState) bool { return s.Status == SessionStatusRunning })

	sm.Advance()
	state := waitForSession(t, model, func(s SessionState) bool {
		return s.Snapshot.CursorIndex == 1 && !s.SkipPending
	})
	assert.Equal(t, state.Snapshot.SecondsRemaining, state.DisplaySeconds())
	assert.LessOrEqual(t, state.DisplaySeconds(), 100)
}

func TestSessionManager_PauseStopsTicks(t *testing.T) {
	c := testCatalog(t)
	model, _ := newTestModel(t, c)
	sm := newTestSessionManager(t, model, 5*time.Millisecond)

	require.NoError(t, sm.Start(testSelection(t, c, 0, 1)))
	waitForSession(t, model, func(s SessionState) bool { return s.Snapshot.SecondsRemaining < 98 })

	sm.TogglePause()
	paused := waitForSession(t, model, func(s SessionState) bool { return s.Status == SessionStatusPaused })

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, paused.Snapshot.SecondsRemaining, sm.State().Snapshot.SecondsRemaining)

	// Skips still work while paused and keep the session paused
	sm.Advance()
	state := waitForSession(t, model, func(s SessionState) bool { return s.Snapshot.CursorIndex == 1 })
	assert.Equal(t, SessionStatusPaused, state.Status)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, 100+progression.ManualSkipBias, sm.State().Snapshot.SecondsRemaining)

	sm.TogglePause()
	waitForSession(t, model, func(s SessionState) bool {
		return s.Status == SessionStatusRunning && s.Snapshot.SecondsRemaining < 100
	})
}

func TestSessionManager_StopReturnsToIdle(t *testing.T) {
	c := testCatalog(t)
	model, _ := newTestModel(t, c)
	sm := newTestSessionManager(t, model, stoppedClock)

	require.NoError(t, sm.Start(testSelection(t, c, 1, 0)))
	running := waitForSession(t, model, func(s SessionState) bool { return s.Status == SessionStatusRunning })
	assert.True(t, running.Snapshot.RepeatFirstInterval)
	assert.Equal(t, progression.PeriodicRepeatCap, running.Snapshot.IntervalsTotal)

	sm.Stop()
	state := waitForSession(t, model, func(s SessionState) bool { return s.Status == SessionStatusIdle })
	assert.Empty(t, state.ID)
	assert.Equal(t, progression.StatusIdle, state.Snapshot.Status)

	// Commands without a session are ignored
	sm.Advance()
	sm.TogglePause()
	sm.Stop()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, SessionStatusIdle, sm.State().Status)
}

func TestSessionManager_RestartGetsNewID(t *testing.T) {
	c := testCatalog(t)
	model, _ := newTestModel(t, c)
	sm := newTestSessionManager(t, model, stoppedClock)

	ids := []string{"first", "second"}
	sm.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	require.NoError(t, sm.Start(testSelection(t, c, 0, 1)))
	waitForSession(t, model, func(s SessionState) bool { return s.ID == "first" })

	require.NoError(t, sm.Start(testSelection(t, c, 0, 0)))
	state := waitForSession(t, model, func(s SessionState) bool { return s.ID == "second" })
	assert.Equal(t, "Short", state.Snapshot.Title)
}

func TestSessionManager_ShutdownIsIdempotent(t *testing.T) {
	c := testCatalog(t)
	model, _ := newTestModel(t, c)
	sm := NewSessionManager(model, stoppedClock, testLogger(), testLogger())

	sm.Shutdown()
	sm.Shutdown()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			sm.Advance()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("commands blocked after shutdown")
	}
}

func TestNewSessionManager_PanicsOnNilDeps(t *testing.T) {
	c := testCatalog(t)
	model, _ := newTestModel(t, c)
	assert.Panics(t, func() { NewSessionManager(nil, time.Second, testLogger(), testLogger()) })
	assert.Panics(t, func() { NewSessionManager(model, time.Second, nil, testLogger()) })
	assert.Panics(t, func() { NewSessionManager(model, time.Second, testLogger(), nil) })
}
