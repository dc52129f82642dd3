package go_func_utils

import (
	"log"
	"runtime/debug"
	"sync"
)

// SafeGo runs fn on a new goroutine. A panic is written to logger with its
// stack and then re-raised: the tview screen owns the terminal, so without
// this the trace would be lost.
func SafeGo(logger *log.Logger, name string, fn func()) {
	go func() {
		defer recoverAndLog(logger, name)
		fn()
	}()
}

func recoverAndLog(logger *log.Logger, name string) {
	if r := recover(); r != nil {
		logPanic(logger, name, r, debug.Stack())
		panic(r)
	}
}

func logPanic(logger *log.Logger, name string, r any, stack []byte) {
	logger.Printf("PANIC in %s: %v\n%s", name, r, stack)
}

// Group is a set of named goroutines that can be waited on together
type Group struct {
	logger *log.Logger
	wg     sync.WaitGroup
}

func NewGroup(logger *log.Logger) *Group {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Group{logger: logger}
}

// Go starts fn under SafeGo and tracks it until it returns
func (g *Group) Go(name string, fn func()) {
	g.wg.Add(1)
	SafeGo(g.logger, name, func() {
		defer g.wg.Done()
		fn()
	})
}

// Wait blocks until every goroutine started with Go has returned
func (g *Group) Wait() {
	g.wg.Wait()
}
