// Package progression implements the interval progression engine: the state
// machine that tracks where a session is inside a program and moves that
// position on clock ticks and manual skips.
//
// The engine has no goroutines and no clock of its own. A drive layer calls
// Tick once per elapsed second and Advance/Rewind on user input, all from a
// single goroutine, and reacts to the returned Signal.
package progression

import "fmt"

const (
	// PeriodicRepeatCap is the logical interval total of a repeat-first-interval session
	PeriodicRepeatCap = 100

	// ManualSkipBias is added to the countdown after Advance/Rewind because the
	// next Tick decrements before the value is displayed.
	ManualSkipBias = 1
)

// Status is the lifecycle position of a State
type Status int

const (
	StatusIdle      Status = iota // Zero value, before Start
	StatusRunning                 // Started, program not over
	StatusCompleted               // Final interval reached zero
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Signal reports what a Tick crossed
type Signal int

const (
	SignalNone          Signal = iota // Countdown moved within the current interval
	SignalIntervalEnded               // Crossed into the next logical interval
	SignalProgramEnded                // Final interval finished; stop ticking
)

func (s Signal) String() string {
	switch s {
	case SignalNone:
		return "none"
	case SignalIntervalEnded:
		return "interval-ended"
	case SignalProgramEnded:
		return "program-ended"
	default:
		return fmt.Sprintf("signal(%d)", int(s))
	}
}

// State is the progression state of one session. The zero value is Idle.
// A State must not be used from more than one goroutine at a time.
type State struct {
	program             Program
	repeatFirstInterval bool
	status              Status

	cursor             int // Index into program.Intervals; always 0 in repeat mode
	secondsRemaining   int
	intervalsTotal     int
	intervalsRemaining int

	intervalJustEnded bool
	programJustEnded  bool
}

// Snapshot is a read-only copy of the values a shell renders
type Snapshot struct {
	Title               string
	Status              Status
	Kind                Kind
	SecondsRemaining    int
	IntervalSeconds     int // Nominal duration of the current interval
	IntervalsRemaining  int
	IntervalsTotal      int
	Period              int // 1-based logical position, 0 when idle
	CursorIndex         int
	RepeatFirstInterval bool
	IntervalJustEnded   bool
	ProgramJustEnded    bool
}

// Start resets the state to the first interval of program.
// In repeat mode the first interval is replayed PeriodicRepeatCap times.
func (s *State) Start(program Program, repeatFirstInterval bool) error {
	if err := program.Validate(); err != nil {
		return err
	}

	total := len(program.Intervals)
	if repeatFirstInterval {
		total = PeriodicRepeatCap
	}

	*s = State{
		program:             program,
		repeatFirstInterval: repeatFirstInterval,
		status:              StatusRunning,
		cursor:              0,
		secondsRemaining:    program.Intervals[0].Seconds,
		intervalsTotal:      total,
		intervalsRemaining:  total,
	}
	return nil
}

// Tick accounts for one elapsed second.
// It is a no-op returning SignalNone unless the state is Running.
func (s *State) Tick() Signal {
	if s.status != StatusRunning {
		return SignalNone
	}

	s.secondsRemaining--
	if s.secondsRemaining > 0 {
		s.intervalJustEnded = false
		return SignalNone
	}

	s.intervalJustEnded = true
	s.intervalsRemaining--

	if s.intervalsRemaining > 0 {
		s.rebind()
		s.secondsRemaining = s.current().Seconds
		return SignalIntervalEnded
	}

	s.programJustEnded = true
	s.status = StatusCompleted
	return SignalProgramEnded
}

// Advance skips to the next logical interval. It never skips past the final
// interval and reports whether the position moved.
func (s *State) Advance() bool {
	if s.status != StatusRunning || s.intervalsRemaining <= 1 {
		return false
	}

	s.intervalsRemaining--
	s.rebind()
	s.secondsRemaining = s.current().Seconds + ManualSkipBias
	return true
}

// Rewind steps back to the previous logical interval and reports whether the
// position moved. While Running the current countdown restarts even when
// already at the first interval.
func (s *State) Rewind() bool {
	if s.status != StatusRunning {
		return false
	}

	moved := false
	if s.intervalsRemaining < s.intervalsTotal {
		s.intervalsRemaining++
		s.rebind()
		moved = true
	}

	s.secondsRemaining = s.current().Seconds + ManualSkipBias
	return moved
}

// rebind points the cursor at the interval matching intervalsRemaining.
func (s *State) rebind() {
	if s.repeatFirstInterval {
		return
	}
	next := s.intervalsTotal - s.intervalsRemaining
	if next < 0 || next >= len(s.program.Intervals) {
		panic(fmt.Sprintf("progression: cursor %d out of range [0,%d)", next, len(s.program.Intervals)))
	}
	s.cursor = next
}

func (s *State) current() Interval {
	return s.program.Intervals[s.cursor]
}

// Title returns the active program's title
func (s *State) Title() string {
	return s.program.Title
}

// Interval returns the current interval, or the zero Interval when idle
func (s *State) Interval() Interval {
	if s.status == StatusIdle {
		return Interval{}
	}
	return s.current()
}

// Kind returns the current interval's kind
func (s *State) Kind() Kind {
	return s.Interval().Kind
}

func (s *State) SecondsRemaining() int {
	return s.secondsRemaining
}

func (s *State) IntervalsRemaining() int {
	return s.intervalsRemaining
}

func (s *State) IntervalsTotal() int {
	return s.intervalsTotal
}

// CursorIndex returns the structural index into the program's intervals
func (s *State) CursorIndex() int {
	return s.cursor
}

func (s *State) RepeatFirstInterval() bool {
	return s.repeatFirstInterval
}

// IntervalJustEnded is true only right after the Tick that crossed a boundary
func (s *State) IntervalJustEnded() bool {
	return s.intervalJustEnded
}

// ProgramJustEnded stays true from the final boundary until the next Start
func (s *State) ProgramJustEnded() bool {
	return s.programJustEnded
}

func (s *State) Status() Status {
	return s.status
}

// Period returns the 1-based logical interval position
func (s *State) Period() int {
	if s.status == StatusIdle {
		return 0
	}
	period := s.intervalsTotal - s.intervalsRemaining + 1
	if period > s.intervalsTotal {
		period = s.intervalsTotal
	}
	return period
}

// Snapshot copies the current state for rendering
func (s *State) Snapshot() Snapshot {
	interval := s.Interval()
	return Snapshot{
		Title:               s.program.Title,
		Status:              s.status,
		Kind:                interval.Kind,
		SecondsRemaining:    s.secondsRemaining,
		IntervalSeconds:     interval.Seconds,
		IntervalsRemaining:  s.intervalsRemaining,
		IntervalsTotal:      s.intervalsTotal,
		Period:              s.Period(),
		CursorIndex:         s.cursor,
		RepeatFirstInterval: s.repeatFirstInterval,
		IntervalJustEnded:   s.intervalJustEnded,
		ProgramJustEnded:    s.programJustEnded,
	}
}

// String dumps the state on one line for debug logging
func (s *State) String() string {
	return fmt.Sprintf("status=%s total=%d cursor=%d left=%d seconds=%d repeat=%t intervalOver=%t programOver=%t",
		s.status, s.intervalsTotal, s.cursor, s.intervalsRemaining, s.secondsRemaining,
		s.repeatFirstInterval, s.intervalJustEnded, s.programJustEnded)
}
