// Package haptics turns progression signals into vibration patterns and
// drives them on one or more actuators.
package haptics

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/lowaak/running-coach/internal/progression"
)

// Pattern is a vibration shape
type Pattern int

const (
	PatternShort  Pattern = iota // One short pulse
	PatternLong                  // One long pulse
	PatternDouble                // Two pulses
)

func (p Pattern) String() string {
	switch p {
	case PatternShort:
		return "short"
	case PatternLong:
		return "long"
	case PatternDouble:
		return "double"
	default:
		return fmt.Sprintf("pattern(%d)", int(p))
	}
}

// Pulses returns how many distinct pulses the pattern has
func (p Pattern) Pulses() int {
	if p == PatternDouble {
		return 2
	}
	return 1
}

// PatternFor maps an engine signal to the pattern to play.
// SignalNone plays nothing.
func PatternFor(sig progression.Signal) (Pattern, bool) {
	switch sig {
	case progression.SignalIntervalEnded:
		return PatternShort, true
	case progression.SignalProgramEnded:
		return PatternDouble, true
	}
	return 0, false
}

// Actuator plays a pattern. Pulse blocks until the pattern is done or ctx ends.
type Actuator interface {
	Pulse(ctx context.Context, p Pattern) error
}

// LogActuator records patterns in the log, for headless runs and debugging
type LogActuator struct {
	logger *log.Logger
}

func NewLogActuator(logger *log.Logger) *LogActuator {
	if logger == nil {
		panic("LogActuator: logger cannot be nil")
	}
	return &LogActuator{logger: logger}
}

func (a *LogActuator) Pulse(_ context.Context, p Pattern) error {
	a.logger.Printf("Haptics: %s pulse", p)
	return nil
}

// Fanout plays a pattern on every actuator in order and joins their errors
type Fanout []Actuator

func (f Fanout) Pulse(ctx context.Context, p Pattern) error {
	var errs []error
	for _, a := range f {
		if err := a.Pulse(ctx, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
