// Package logging builds the loggers shared by every component: a rotating
// file through lumberjack, plus a line feed for the TUI log pane.
package logging

import (
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Params configures Setup
type Params struct {
	FileName   string // Empty disables the file sink
	MaxSizeMB  int
	MaxBackups int
	Debug      bool
	UIFeed     bool // Mirror log lines onto Logs.UILines
	Stderr     bool // Mirror log lines onto stderr (CLI subcommands)
}

// Logs is the result of Setup
type Logs struct {
	Logger *log.Logger
	Debug  *log.Logger // Discards unless Params.Debug is set

	UILines <-chan string // nil unless Params.UIFeed is set

	feed    *ChannelWriter
	closers []io.Closer
}

const uiFeedBuffer = 256

func Setup(p Params) (*Logs, error) {
	var writers []io.Writer
	logs := &Logs{}

	if p.FileName != "" {
		if err := os.MkdirAll(filepath.Dir(p.FileName), 0o755); err != nil {
			return nil, err
		}
		file := &lumberjack.Logger{
			Filename:   p.FileName,
			MaxSize:    p.MaxSizeMB,
			MaxBackups: p.MaxBackups,
			LocalTime:  true,
		}
		writers = append(writers, file)
		logs.closers = append(logs.closers, file)
	}

	if p.UIFeed {
		logs.feed = NewChannelWriter(uiFeedBuffer)
		logs.UILines = logs.feed.Lines()
		writers = append(writers, logs.feed)
		logs.closers = append(logs.closers, logs.feed)
	}

	if p.Stderr {
		writers = append(writers, os.Stderr)
	}

	var out io.Writer = io.Discard
	if len(writers) > 0 {
		out = io.MultiWriter(writers...)
	}

	logs.Logger = log.New(out, "", log.LstdFlags)
	logs.Debug = log.New(io.Discard, "DEBUG ", log.LstdFlags)
	if p.Debug {
		logs.Debug.SetOutput(out)
	}
	return logs, nil
}

// Close flushes and releases every sink. The UI feed channel is closed last.
func (l *Logs) Close() error {
	var errs []error
	for _, c := range l.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
