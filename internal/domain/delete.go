package domain

import "fmt"

// DeleteState is the admin delete dialog. A cancelled dialog goes straight
// back to idle.
type DeleteState int

const (
	DeleteIdle DeleteState = iota
	DeleteConfirmPending
	DeleteInProgress
)

func (s DeleteState) String() string {
	switch s {
	case DeleteIdle:
		return "idle"
	case DeleteConfirmPending:
		return "confirm_pending"
	case DeleteInProgress:
		return "deleting"
	}
	return fmt.Sprintf("DeleteState(%d)", int(s))
}

type DeleteEvent int

const (
	DeleteRequested DeleteEvent = iota
	DeleteCancelled
	DeleteConfirmed
	DeleteSucceeded
	DeleteFailed
)

var deleteTransitions = map[DeleteState]map[DeleteEvent]DeleteState{
	DeleteIdle: {
		DeleteRequested: DeleteConfirmPending,
	},
	DeleteConfirmPending: {
		DeleteCancelled: DeleteIdle,
		DeleteConfirmed: DeleteInProgress,
	},
	DeleteInProgress: {
		DeleteSucceeded: DeleteIdle,
		DeleteFailed:    DeleteConfirmPending,
	},
}

func (s DeleteState) Next(ev DeleteEvent) (DeleteState, error) {
	next, ok := deleteTransitions[s][ev]
	if !ok {
		return s, fmt.Errorf("invalid delete transition from %v on event %d", s, ev)
	}
	return next, nil
}

// DeleteDialog is the delete dialog for a single record.
type DeleteDialog struct {
	State DeleteState
	AppID string
	Title string
	Error string
}

func (d DeleteDialog) Open() bool {
	return d.State == DeleteConfirmPending
}
