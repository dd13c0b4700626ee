package monitor

import "fmt"

type State int32

const (
	Idle State = iota
	Authenticating
	Fetching
	Diffing
	Persisting
	Notifying
	Waiting
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Authenticating:
		return "authenticating"
	case Fetching:
		return "fetching"
	case Diffing:
		return "diffing"
	case Persisting:
		return "persisting"
	case Notifying:
		return "notifying"
	case Waiting:
		return "waiting"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Outcome is how a polling cycle ended.
type Outcome string

const (
	OutcomeChanged   Outcome = "changed"
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeNoGrades means the semester has nothing published yet, the
	// stored snapshot is left alone.
	OutcomeNoGrades Outcome = "no-grades"
	OutcomeFailed   Outcome = "failed"
)

// Skipped reports whether the cycle ended without persisting a snapshot.
func (o Outcome) Skipped() bool {
	return o == OutcomeNoGrades || o == OutcomeFailed
}
