package state

// QueueStatus is the lifecycle state of a watched purchase intent.
type QueueStatus string

const (
	StatusRunning   QueueStatus = "running"
	StatusCompleted QueueStatus = "completed"
	StatusFailed    QueueStatus = "failed"
	StatusPaused    QueueStatus = "paused"
)

func (s QueueStatus) String() string {
	return string(s)
}

// Valid reports whether s is one of the known queue statuses.
func (s QueueStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

var AllStatuses = []QueueStatus{
	StatusRunning,
	StatusCompleted,
	StatusFailed,
	StatusPaused,
}

type Transition struct {
	From QueueStatus
	To   QueueStatus
}

// ValidTransitions lists every status change the scheduler or the operator may
// apply. Completed has no outgoing edge: a bought server is never re-attempted.
var ValidTransitions = []Transition{
	{From: StatusRunning, To: StatusCompleted},
	{From: StatusRunning, To: StatusPaused},
	{From: StatusRunning, To: StatusFailed},
	{From: StatusPaused, To: StatusRunning},
	{From: StatusPaused, To: StatusFailed},
	{From: StatusFailed, To: StatusRunning},
	{From: StatusFailed, To: StatusPaused},
}

func IsValidTransition(from, to QueueStatus) bool {
	for _, t := range ValidTransitions {
		if t.From == from && t.To == to {
			return true
		}
	}
	return false
}

// OutcomeStatus is the status of a history record.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailed  OutcomeStatus = "failed"
)

func (s OutcomeStatus) String() string {
	return string(s)
}
