package event

import (
	"time"

	"github.com/tickwerk/tickwerk/timer"
	"github.com/tickwerk/tickwerk/util/localtime"
)

type Kind string

const (
	// KindTick reports the countdown state of one timer.
	KindTick Kind = "timer:tick"
	// KindDone reports one finished countdown; published exactly once
	// per completion.
	KindDone Kind = "timer:done"
)

func (k Kind) String() string {
	return string(k)
}

// Event is one notification crossing the engine boundary; payload
// shapes are fixed per kind.
type Event interface {
	Kind() Kind
	Timer() timer.ID
}

// Tick carries the observable countdown state of one timer. It is
// published on every driver cycle for each running timer and
// immediately after every control operation.
type Tick struct {
	timerID   timer.ID
	remaining time.Duration
	duration  time.Duration
	running   bool
}

func NewTick(sn timer.Snapshot) Tick {
	return Tick{
		timerID:   sn.ID(),
		remaining: sn.Remaining(),
		duration:  sn.Duration(),
		running:   sn.Running(),
	}
}

func (Tick) Kind() Kind {
	return KindTick
}

func (ev Tick) Timer() timer.ID {
	return ev.timerID
}

func (ev Tick) Remaining() time.Duration {
	return ev.remaining
}

func (ev Tick) Duration() time.Duration {
	return ev.duration
}

func (ev Tick) Running() bool {
	return ev.running
}

// Done marks one completed countdown with the wall clock instant it
// was observed.
type Done struct {
	timerID    timer.ID
	finishedAt localtime.Time
}

func NewDone(id timer.ID, finishedAt time.Time) Done {
	return Done{
		timerID:    id,
		finishedAt: localtime.NewTime(localtime.Normalize(finishedAt)),
	}
}

func (Done) Kind() Kind {
	return KindDone
}

func (ev Done) Timer() timer.ID {
	return ev.timerID
}

func (ev Done) FinishedAt() localtime.Time {
	return ev.finishedAt
}
