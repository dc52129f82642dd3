package coach

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/running-coach/internal/catalog"
)

func newTestController(t *testing.T) (*UIController, *UIModel, *SessionManager) {
	t.Helper()
	c := testCatalog(t)
	model, _ := newTestModel(t, c)
	sm := newTestSessionManager(t, model, stoppedClock)
	controller := NewUIController(model, sm, testLogger())
	t.Cleanup(controller.Shutdown)
	return controller, model, sm
}

func TestUIController_FamilySelection(t *testing.T) {
	controller, model, _ := newTestController(t)

	controller.OnFamilySelected(1)
	assert.Equal(t, UIState{Mode: UIModePrograms, FamilyIndex: 1}, model.GetUIState())

	controller.OnFamilySelected(7)
	assert.Equal(t, UIState{Mode: UIModePrograms, FamilyIndex: 1}, model.GetUIState())
}

func TestUIController_EntrySelectionStartsSession(t *testing.T) {
	controller, model, _ := newTestController(t)

	controller.OnFamilySelected(0)
	controller.OnEntrySelected(1)

	assert.Equal(t, UIState{Mode: UIModeTimer, FamilyIndex: 0}, model.GetUIState())
	state := waitForSession(t, model, func(s SessionState) bool { return s.Status == SessionStatusRunning })
	assert.Equal(t, "Long", state.Snapshot.Title)

	familyID, entry := model.GetLastSelection()
	assert.Equal(t, "test", familyID)
	assert.Equal(t, 1, entry)
}

func TestUIController_InvalidEntryStaysInMenu(t *testing.T) {
	controller, model, sm := newTestController(t)

	controller.OnFamilySelected(0)
	controller.OnEntrySelected(5)

	assert.Equal(t, UIState{Mode: UIModePrograms, FamilyIndex: 0}, model.GetUIState())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, SessionStatusIdle, sm.State().Status)
}

func TestUIController_TimerKeysOnlyInTimerMode(t *testing.T) {
	controller, model, sm := newTestController(t)

	controller.OnFamilySelected(0)
	controller.OnEntrySelected(1)
	waitForSession(t, model, func(s SessionState) bool { return s.Status == SessionStatusRunning })

	controller.OnAdvance()
	waitForSession(t, model, func(s SessionState) bool { return s.Snapshot.CursorIndex == 1 })
	controller.OnRewind()
	waitForSession(t, model, func(s SessionState) bool { return s.Snapshot.CursorIndex == 0 })
	controller.OnTogglePause()
	waitForSession(t, model, func(s SessionState) bool { return s.Status == SessionStatusPaused })

	// Outside the timer the keys do nothing
	model.SetMode(UIModePrograms)
	controller.OnAdvance()
	controller.OnTogglePause()
	time.Sleep(20 * time.Millisecond)
	state := sm.State()
	assert.Equal(t, 0, state.Snapshot.CursorIndex)
	assert.Equal(t, SessionStatusPaused, state.Status)
}

func TestUIController_EscapeGoesBack(t *testing.T) {
	controller, model, _ := newTestController(t)

	closeCh := make(chan struct{}, 1)
	unregister := model.ListenToCloseApplication(closeCh)
	defer unregister()

	controller.OnFamilySelected(0)
	controller.OnEntrySelected(0)
	waitForSession(t, model, func(s SessionState) bool { return s.Status == SessionStatusRunning })

	controller.OnEscapeKey()
	assert.Equal(t, UIState{Mode: UIModePrograms, FamilyIndex: 0}, model.GetUIState())
	waitForSession(t, model, func(s SessionState) bool { return s.Status == SessionStatusIdle })

	controller.OnEscapeKey()
	assert.Equal(t, UIState{Mode: UIModeFamilies, FamilyIndex: -1}, model.GetUIState())
	assert.Empty(t, closeCh)

	controller.OnEscapeKey()
	select {
	case <-closeCh:
	case <-time.After(time.Second):
		t.Fatal("close not requested")
	}
}

func TestUIController_ShrunkCatalogReturnsToMainMenu(t *testing.T) {
	controller, model, _ := newTestController(t)

	controller.OnFamilySelected(1)

	smaller, err := catalog.Parse([]byte(`
families:
  - id: only
    title: Only
    entries:
      - title: One
        intervals: [run 10]
`))
	require.NoError(t, err)
	model.SetCatalog(smaller)

	require.Eventually(t, func() bool {
		return model.GetUIState() == UIState{Mode: UIModeFamilies, FamilyIndex: -1}
	}, time.Second, 5*time.Millisecond)
}

func TestUIController_EscapeFromTimerAfterFamilyRemoved(t *testing.T) {
	controller, model, _ := newTestController(t)

	controller.OnFamilySelected(1)
	controller.OnEntrySelected(0)
	waitForSession(t, model, func(s SessionState) bool { return s.Status == SessionStatusRunning })

	smaller, err := catalog.Parse([]byte(`
families:
  - id: only
    title: Only
    entries:
      - title: One
        intervals: [run 10]
`))
	require.NoError(t, err)
	model.SetCatalog(smaller)

	// The timer keeps its session while the catalog changes underneath
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, UIState{Mode: UIModeTimer, FamilyIndex: 1}, model.GetUIState())

	controller.OnEscapeKey()
	assert.Equal(t, UIState{Mode: UIModeFamilies, FamilyIndex: -1}, model.GetUIState())
	waitForSession(t, model, func(s SessionState) bool { return s.Status == SessionStatusIdle })
}

func TestNewUIController_PanicsOnNilDeps(t *testing.T) {
	c := testCatalog(t)
	model, _ := newTestModel(t, c)
	sm := newTestSessionManager(t, model, stoppedClock)
	assert.Panics(t, func() { NewUIController(nil, sm, testLogger()) })
	assert.Panics(t, func() { NewUIController(model, nil, testLogger()) })
	assert.Panics(t, func() { NewUIController(model, sm, nil) })
}
