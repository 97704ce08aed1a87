package session

import (
	"fmt"
	"time"

	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/stats"
)

// DefaultSubject labels sessions started without a subject.
const DefaultSubject = "General Study"

// State is the phase of the study timer.
type State int

const (
	Idle    State = iota // No session in progress
	Running              // Clock ticking, elapsed time accumulating
	Paused               // Clock stopped, elapsed time kept
	Stopped              // Commit in progress
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// TransitionError reports an operation that is not allowed in the current
// state.
type TransitionError struct {
	Op    string
	State State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Op, e.State)
}

// Status is a point-in-time view of the controller.
type Status struct {
	State   State
	Subject string
	Notes   string
	Elapsed time.Duration
}

// Result describes the outcome of Stop or Record.
type Result struct {
	// Discarded is true when Stop ended a session with no elapsed time.
	Discarded bool

	Session ledger.Session
	Profile ledger.Profile
	Accrual stats.Accrual
}

// PointsEarned returns the points the committed session added.
func (r Result) PointsEarned() int {
	return r.Accrual.Points
}

// FormatElapsed renders d as HH:MM:SS.
func FormatElapsed(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}
