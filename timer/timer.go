package timer

import (
	"time"

	"github.com/tickwerk/tickwerk/util"
	"github.com/tickwerk/tickwerk/util/localtime"
)

var (
	InvalidStateTransitionError = util.NewError("invalid state transition")
	InvalidDurationError        = util.NewError("invalid duration")
)

type ID string

func (id ID) String() string {
	return string(id)
}

// Timer is one countdown entity. While running only the deadline is
// authoritative; otherwise only remaining. It carries no lock of its
// own; the registry serializes all access.
type Timer struct {
	id        ID
	name      string
	duration  time.Duration
	state     State
	remaining time.Duration
	deadline  time.Time
	createdAt time.Time
}

func NewTimer(id ID, name string, duration time.Duration) (*Timer, error) {
	if duration <= 0 {
		return nil, InvalidDurationError.Errorf("duration=%v", duration)
	}

	return &Timer{
		id:        id,
		name:      name,
		duration:  duration,
		state:     StateIdle,
		remaining: duration,
		createdAt: localtime.Normalize(localtime.Now()),
	}, nil
}

func (t *Timer) ID() ID {
	return t.id
}

func (t *Timer) Name() string {
	return t.name
}

func (t *Timer) Duration() time.Duration {
	return t.duration
}

func (t *Timer) State() State {
	return t.state
}

func (t *Timer) CreatedAt() time.Time {
	return t.createdAt
}

// Remaining reports the live countdown; deadline distance while
// running, the frozen value otherwise.
func (t *Timer) Remaining(now time.Time) time.Duration {
	if t.state != StateRunning {
		return t.remaining
	}

	if r := t.deadline.Sub(now); r > 0 {
		return r
	}

	return 0
}

// settle completes a running timer whose deadline has passed.
// Completed is sticky; whichever operation settles first owns the
// completion.
func (t *Timer) settle(now time.Time) bool {
	if t.state != StateRunning {
		return false
	}

	if now.Before(t.deadline) {
		return false
	}

	t.state = StateCompleted
	t.remaining = 0
	t.deadline = time.Time{}

	return true
}

// Start moves an idle timer to running; the deadline is now plus the
// full duration. The settled return reports whether the call completed
// an expired running timer first.
func (t *Timer) Start(now time.Time) (bool, error) {
	settled := t.settle(now)

	if t.state != StateIdle {
		return settled, InvalidStateTransitionError.Errorf("start; state=%v", t.state)
	}

	t.state = StateRunning
	t.deadline = now.Add(t.duration)

	return settled, nil
}

// Pause freezes a running countdown. Pausing an expired timer loses to
// the completion; the timer settles to completed and pause fails.
func (t *Timer) Pause(now time.Time) (bool, error) {
	settled := t.settle(now)

	if t.state != StateRunning {
		return settled, InvalidStateTransitionError.Errorf("pause; state=%v", t.state)
	}

	t.remaining = t.deadline.Sub(now)
	t.deadline = time.Time{}
	t.state = StatePaused

	return settled, nil
}

// Resume re-arms a paused countdown with the frozen remaining.
func (t *Timer) Resume(now time.Time) (bool, error) {
	settled := t.settle(now)

	if t.state != StatePaused {
		return settled, InvalidStateTransitionError.Errorf("resume; state=%v", t.state)
	}

	t.state = StateRunning
	t.deadline = now.Add(t.remaining)

	return settled, nil
}

// Reset returns the timer to idle with the full duration; valid from
// any state.
func (t *Timer) Reset(now time.Time) (bool, error) {
	settled := t.settle(now)

	t.state = StateIdle
	t.remaining = t.duration
	t.deadline = time.Time{}

	return settled, nil
}

// Advance is the tick driver's pass; a running timer either keeps
// counting down or completes when now reached the deadline.
func (t *Timer) Advance(now time.Time) (changed, completed bool) {
	if t.state != StateRunning {
		return false, false
	}

	if t.settle(now) {
		return true, true
	}

	return true, false
}

func (t *Timer) Snapshot(now time.Time) Snapshot {
	return Snapshot{
		id:        t.id,
		name:      t.name,
		duration:  t.duration,
		remaining: t.Remaining(now),
		state:     t.state,
		createdAt: localtime.NewTime(t.createdAt),
	}
}
