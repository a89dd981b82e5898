package timer

import (
	"github.com/pkg/errors"
)

type State uint8

const (
	StateUnknown State = iota
	// StateIdle indicates the timer is created or reset; not counting
	// down.
	StateIdle
	// StateRunning indicates the timer is counting down to its
	// deadline.
	StateRunning
	// StatePaused indicates the countdown is frozen with some
	// remaining left.
	StatePaused
	// StateCompleted indicates the countdown reached zero; terminal
	// until reset.
	StateCompleted
)

func (st State) String() string {
	switch st {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StatePaused:
		return "PAUSED"
	case StateCompleted:
		return "COMPLETED"
	default:
		return "<unknown State>"
	}
}

func StateFromString(s string) (State, error) {
	switch s {
	case "IDLE":
		return StateIdle, nil
	case "RUNNING":
		return StateRunning, nil
	case "PAUSED":
		return StatePaused, nil
	case "COMPLETED":
		return StateCompleted, nil
	default:
		return StateUnknown, errors.Errorf("unknown State, %q", s)
	}
}

func (st State) IsValid([]byte) error {
	switch st {
	case StateIdle, StateRunning, StatePaused, StateCompleted:
		return nil
	}

	return errors.Errorf("invalid State found; state=%d", st)
}

func (st State) MarshalText() ([]byte, error) {
	return []byte(st.String()), nil
}

func (st *State) UnmarshalText(b []byte) error {
	s, err := StateFromString(string(b))
	if err != nil {
		return err
	}

	*st = s

	return nil
}
