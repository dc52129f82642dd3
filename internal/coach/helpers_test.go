package coach

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lowaak/running-coach/internal/catalog"
)

const testCatalogYAML = `
families:
  - id: test
    title: Test
    subtitle: Test family
    entries:
      - title: Short
        subtitle: Day 1
        intervals: [warmup 1, run 1, cooldown 1]
      - title: Long
        intervals: [warmup 100, run 100, walk 100]
  - id: periodic
    title: Periodic
    style: periodic
    entries:
      - {title: 05 sec, intervals: [periodic 5]}
`

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Parse([]byte(testCatalogYAML))
	require.NoError(t, err)
	return c
}

func testSelection(t *testing.T, c *catalog.Catalog, familyIdx, entryIdx int) catalog.Selection {
	t.Helper()
	sel, err := c.Entry(familyIdx, entryIdx)
	require.NoError(t, err)
	return sel
}

// newTestModel returns a model with persistence under a temp dir and the
// channel feeding its log tail
func newTestModel(t *testing.T, c *catalog.Catalog) (*UIModel, chan string) {
	t.Helper()
	logLines := make(chan string, 16)
	model := NewUIModel(c, t.TempDir(), testLogger(), logLines)
	t.Cleanup(model.Shutdown)
	return model, logLines
}

func newTestSessionManager(t *testing.T, model *UIModel, tick time.Duration) *SessionManager {
	t.Helper()
	sm := NewSessionManager(model, tick, testLogger(), testLogger())
	t.Cleanup(sm.Shutdown)
	return sm
}

func waitForSession(t *testing.T, model *UIModel, cond func(SessionState) bool) SessionState {
	t.Helper()
	var state SessionState
	require.Eventually(t, func() bool {
		state = model.GetSessionState()
		return cond(state)
	}, 2*time.Second, 5*time.Millisecond)
	return state
}
