package bt

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lowaak/running-coach/internal/haptics"
)

// AlertLevel is the value written to the Alert Level characteristic
type AlertLevel byte

const (
	AlertNone AlertLevel = 0x00
	AlertMild AlertLevel = 0x01
	AlertHigh AlertLevel = 0x02
)

// AlertWriter writes alert levels to a connected wearable
type AlertWriter interface {
	WriteLevel(level AlertLevel) error
	Close() error
}

// Connector establishes the link to the wearable
type Connector interface {
	Connect(ctx context.Context) (AlertWriter, error)
}

type alertStep struct {
	level AlertLevel
	hold  time.Duration // Wait after writing before the next step
}

const (
	shortPulse  = 250 * time.Millisecond
	longPulse   = 800 * time.Millisecond
	doublePulse = 250 * time.Millisecond
	doubleGap   = 300 * time.Millisecond
)

// alertSequence expands a pattern into timed level writes. Every sequence ends on AlertNone.
func alertSequence(p haptics.Pattern) []alertStep {
	switch p {
	case haptics.PatternLong:
		return []alertStep{{AlertHigh, longPulse}, {AlertNone, 0}}
	case haptics.PatternDouble:
		return []alertStep{
			{AlertHigh, doublePulse},
			{AlertNone, doubleGap},
			{AlertHigh, doublePulse},
			{AlertNone, 0},
		}
	default:
		return []alertStep{{AlertMild, shortPulse}, {AlertNone, 0}}
	}
}

// AlertActuator vibrates a wearable through the Immediate Alert service.
// The connection is made on the first pulse and remade after any failure.
type AlertActuator struct {
	logger    *log.Logger
	connector Connector

	mu     sync.Mutex // Serializes pulses and guards writer
	writer AlertWriter

	sleep func(ctx context.Context, d time.Duration) error
}

func NewAlertActuator(connector Connector, logger *log.Logger) *AlertActuator {
	if connector == nil {
		panic("AlertActuator: connector cannot be nil")
	}
	if logger == nil {
		panic("AlertActuator: logger cannot be nil")
	}
	return &AlertActuator{
		logger:    logger,
		connector: connector,
		sleep:     sleepCtx,
	}
}

func (a *AlertActuator) Pulse(ctx context.Context, p haptics.Pattern) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.writer == nil {
		w, err := a.connector.Connect(ctx)
		if err != nil {
			return fmt.Errorf("connecting wearable: %w", err)
		}
		a.logger.Printf("AlertActuator: wearable connected")
		a.writer = w
	}

	steps := alertSequence(p)
	for _, step := range steps {
		if err := a.writer.WriteLevel(step.level); err != nil {
			a.dropLocked()
			return fmt.Errorf("writing alert level %d: %w", step.level, err)
		}
		if step.hold == 0 {
			continue
		}
		if err := a.sleep(ctx, step.hold); err != nil {
			// Leave the wearable quiet even when the pattern is cut short
			if werr := a.writer.WriteLevel(AlertNone); werr != nil {
				a.dropLocked()
			}
			return err
		}
	}
	return nil
}

// Close disconnects the wearable if connected
func (a *AlertActuator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.writer == nil {
		return nil
	}
	err := a.writer.Close()
	a.writer = nil
	return err
}

func (a *AlertActuator) dropLocked() {
	if err := a.writer.Close(); err != nil {
		a.logger.Printf("AlertActuator: closing failed link: %v", err)
	}
	a.writer = nil
	a.logger.Printf("AlertActuator: link dropped, reconnecting on next pulse")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
