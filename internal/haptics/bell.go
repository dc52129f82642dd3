package haptics

import (
	"context"
	"fmt"
	"time"
)

// Beeper rings a terminal bell. tcell.Screen satisfies it.
type Beeper interface {
	Beep() error
}

// BellActuator rings the bell once per pulse
type BellActuator struct {
	beeper Beeper
	gap    time.Duration
}

const DefaultBellGap = 300 * time.Millisecond

func NewBellActuator(beeper Beeper, gap time.Duration) *BellActuator {
	if beeper == nil {
		panic("BellActuator: beeper cannot be nil")
	}
	return &BellActuator{beeper: beeper, gap: gap}
}

func (a *BellActuator) Pulse(ctx context.Context, p Pattern) error {
	for i := 0; i < p.Pulses(); i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(a.gap):
			}
		}
		if err := a.beeper.Beep(); err != nil {
			return fmt.Errorf("bell: %w", err)
		}
	}
	return nil
}
