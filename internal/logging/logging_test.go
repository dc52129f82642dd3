package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestSetup_FileAndFeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "running-coach.log")

	logs, err := Setup(Params{FileName: path, MaxSizeMB: 1, MaxBackups: 1, UIFeed: true})
	require.NoError(t, err)

	logs.Logger.Printf("SessionManager: started %q", "Week 1")
	logs.Debug.Printf("hidden")

	line := <-logs.UILines
	assert.Contains(t, line, `SessionManager: started "Week 1"`)
	assert.Len(t, logs.UILines, 0, "debug output is discarded")

	require.NoError(t, logs.Close())
	_, open := <-logs.UILines
	assert.False(t, open)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "SessionManager: started")
	assert.NotContains(t, string(data), "hidden")
}

func TestSetup_Debug(t *testing.T) {
	logs, err := Setup(Params{Debug: true, UIFeed: true})
	require.NoError(t, err)
	defer logs.Close()

	logs.Debug.Printf("status=running left=3")
	line := <-logs.UILines
	assert.True(t, strings.HasPrefix(line, "DEBUG "))
	assert.Contains(t, line, "status=running left=3")
}

func TestSetup_NoSinks(t *testing.T) {
	logs, err := Setup(Params{})
	require.NoError(t, err)
	assert.Nil(t, logs.UILines)

	logs.Logger.Printf("goes nowhere")
	assert.NoError(t, logs.Close())
}

func TestChannelWriter_SplitsLines(t *testing.T) {
	w := NewChannelWriter(8)

	_, err := w.Write([]byte("first\nsec"))
	require.NoError(t, err)
	_, err = w.Write([]byte("ond\r\nthird"))
	require.NoError(t, err)

	assert.Equal(t, "first", <-w.Lines())
	assert.Equal(t, "second", <-w.Lines())
	assert.Len(t, w.Lines(), 0, "partial line waits for its newline")
}

func TestChannelWriter_DropsWhenFull(t *testing.T) {
	w := NewChannelWriter(1)

	n, err := w.Write([]byte("a\nb\nc\n"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, 2, w.Dropped())
	assert.Equal(t, "a", <-w.Lines())
}

func TestChannelWriter_WriteAfterClose(t *testing.T) {
	w := NewChannelWriter(1)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	n, err := w.Write([]byte("late\n"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestConsole(t *testing.T) {
	var out, errOut bytes.Buffer
	c := Console{Out: &out, Err: &errOut}

	c.Header("F25K")
	c.Line(1, "Week %d", 1)
	c.Dim(2, "warmup 5:00")
	c.Info("loaded %d families", 3)
	c.Success("completed")
	c.Warn("no device")
	c.Error("boom")

	assert.Equal(t, "F25K\n  Week 1\n    warmup 5:00\n[INFO] loaded 3 families\n[DONE] completed\n[WARN] no device\n", out.String())
	assert.Equal(t, "[ERROR] boom\n", errOut.String())
}
