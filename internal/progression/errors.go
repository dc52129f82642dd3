package progression

import (
	"errors"
	"fmt"
)

// ErrInvalidProgram is matched by every InvalidProgramError via errors.Is
var ErrInvalidProgram = errors.New("invalid program")

// InvalidProgramError is returned by Start when a program cannot be run
type InvalidProgramError struct {
	Title  string
	Index  int // Offending interval index, -1 when the program as a whole is invalid
	Reason string
}

func (e *InvalidProgramError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid program %q: %s", e.Title, e.Reason)
	}
	return fmt.Sprintf("invalid program %q: interval %d: %s", e.Title, e.Index, e.Reason)
}

func (e *InvalidProgramError) Is(target error) bool {
	return target == ErrInvalidProgram
}
