package coach

import "github.com/lowaak/running-coach/internal/progression"

// SessionStatus is the drive-level status of a session. Paused exists only
// here: the engine knows nothing about wall-clock time.
type SessionStatus int

const (
	SessionStatusIdle SessionStatus = iota
	SessionStatusRunning
	SessionStatusPaused
	SessionStatusCompleted
)

func (s SessionStatus) String() string {
	switch s {
	case SessionStatusIdle:
		return "Idle"
	case SessionStatusRunning:
		return "Running"
	case SessionStatusPaused:
		return "Paused"
	case SessionStatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// SessionState is what views render after every tick or command
type SessionState struct {
	ID          string
	Status      SessionStatus
	FamilyTitle string
	Snapshot    progression.Snapshot
	LastSignal  progression.Signal
	SkipPending bool // A manual skip has not been consumed by a tick yet
}

// Active reports whether the session can still be ticked or skipped
func (s SessionState) Active() bool {
	return s.Status == SessionStatusRunning || s.Status == SessionStatusPaused
}

// DisplaySeconds is the countdown shown to the user. Right after a manual skip
// the engine holds one extra second that the next tick consumes.
func (s SessionState) DisplaySeconds() int {
	if s.SkipPending {
		return s.Snapshot.SecondsRemaining - progression.ManualSkipBias
	}
	return s.Snapshot.SecondsRemaining
}
