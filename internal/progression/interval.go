package progression

import (
	"fmt"
	"strings"
)

// Kind identifies the type of an interval
type Kind int

const (
	KindRun      Kind = iota // Running phase
	KindWalk                 // Walking phase
	KindPeriodic             // Generic periodic vibration phase
	KindWarmup               // Warm-up phase
	KindCooldown             // Cool-down phase
)

// AllKinds lists every interval kind in declaration order
var AllKinds = []Kind{KindRun, KindWalk, KindPeriodic, KindWarmup, KindCooldown}

func (k Kind) String() string {
	switch k {
	case KindRun:
		return "run"
	case KindWalk:
		return "walk"
	case KindPeriodic:
		return "periodic"
	case KindWarmup:
		return "warmup"
	case KindCooldown:
		return "cooldown"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts a kind name back to a Kind.
// Accepts the String() names plus the short forms "warm" and "cool".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "run":
		return KindRun, nil
	case "walk":
		return KindWalk, nil
	case "periodic":
		return KindPeriodic, nil
	case "warmup", "warm":
		return KindWarmup, nil
	case "cooldown", "cool":
		return KindCooldown, nil
	}
	return 0, fmt.Errorf("unknown interval kind %q", s)
}

// Interval is one labeled phase of a program
type Interval struct {
	Kind    Kind
	Seconds int // Duration in whole seconds, must be > 0
}

func (i Interval) String() string {
	return fmt.Sprintf("%s %d", i.Kind, i.Seconds)
}

// Program is an ordered, immutable sequence of intervals with a title.
// Engines only borrow a Program; they never modify its Intervals.
type Program struct {
	Title     string
	Intervals []Interval
}

// TotalSeconds returns the sum of all interval durations
func (p Program) TotalSeconds() int {
	total := 0
	for _, interval := range p.Intervals {
		total += interval.Seconds
	}
	return total
}

// Validate checks that the program can be started
func (p Program) Validate() error {
	if len(p.Intervals) == 0 {
		return &InvalidProgramError{Title: p.Title, Index: -1, Reason: "no intervals"}
	}
	for i, interval := range p.Intervals {
		if interval.Seconds <= 0 {
			return &InvalidProgramError{
				Title:  p.Title,
				Index:  i,
				Reason: fmt.Sprintf("non-positive duration %d", interval.Seconds),
			}
		}
	}
	return nil
}
