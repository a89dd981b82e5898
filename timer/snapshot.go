package timer

import (
	"time"

	"github.com/tickwerk/tickwerk/util/localtime"
)

// Snapshot is the value copy of one timer crossing the engine
// boundary.
type Snapshot struct {
	id        ID
	name      string
	duration  time.Duration
	remaining time.Duration
	state     State
	createdAt localtime.Time
}

func (sn Snapshot) ID() ID {
	return sn.id
}

func (sn Snapshot) Name() string {
	return sn.name
}

func (sn Snapshot) Duration() time.Duration {
	return sn.duration
}

func (sn Snapshot) Remaining() time.Duration {
	return sn.remaining
}

func (sn Snapshot) State() State {
	return sn.state
}

func (sn Snapshot) Running() bool {
	return sn.state == StateRunning
}

func (sn Snapshot) Completed() bool {
	return sn.state == StateCompleted
}

func (sn Snapshot) CreatedAt() localtime.Time {
	return sn.createdAt
}
