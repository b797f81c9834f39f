package session

import "fmt"

// Status is the coordinator's lifecycle state. The set is closed and
// transitions go through the table below; StatusError is absorbing and
// only Reset leaves it.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusActive
	StatusScoring
	StatusCompleted
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusActive:
		return "active"
	case StatusScoring:
		return "scoring"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// statusTransitions is the legal forward-transition table. Reset (any →
// idle) and Fail (any non-terminal → error) are handled separately.
var statusTransitions = map[Status][]Status{
	StatusIdle:    {StatusLoading},
	StatusLoading: {StatusReady},
	StatusReady:   {StatusActive},
	StatusActive:  {StatusScoring},
	StatusScoring: {StatusCompleted},
}

// canTransition reports whether from → to is in the table.
func canTransition(from, to Status) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ErrBadTransition reports an attempted illegal status change.
type ErrBadTransition struct {
	From Status
	To   Status
}

func (e *ErrBadTransition) Error() string {
	return fmt.Sprintf("illegal session transition %s -> %s", e.From, e.To)
}
