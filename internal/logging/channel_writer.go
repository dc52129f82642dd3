package logging

import (
	"bytes"
	"strings"
	"sync"
)

// ChannelWriter turns writes into lines on a buffered channel. When the
// reader falls behind, new lines are dropped rather than blocking the logger.
type ChannelWriter struct {
	mu      sync.Mutex
	lines   chan string
	partial bytes.Buffer
	closed  bool
	dropped int
}

func NewChannelWriter(buffer int) *ChannelWriter {
	return &ChannelWriter{lines: make(chan string, buffer)}
}

func (w *ChannelWriter) Lines() <-chan string {
	return w.lines
}

func (w *ChannelWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return len(p), nil
	}

	w.partial.Write(p)
	for {
		data := w.partial.Bytes()
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimRight(string(data[:idx]), "\r")
		w.partial.Next(idx + 1)

		select {
		case w.lines <- line:
		default:
			w.dropped++
		}
	}
	return len(p), nil
}

// Dropped returns how many lines were lost to a full channel
func (w *ChannelWriter) Dropped() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dropped
}

func (w *ChannelWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.lines)
	}
	return nil
}
