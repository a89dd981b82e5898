package event

import (
	"github.com/tickwerk/tickwerk/util"
	"github.com/tickwerk/tickwerk/util/localtime"
)

type tickJSON struct {
	Kind        Kind   `json:"kind"`
	TimerID     string `json:"timer_id"`
	RemainingMS int64  `json:"remaining_ms"`
	DurationMS  int64  `json:"duration_ms"`
	Running     bool   `json:"running"`
}

func (ev Tick) MarshalJSON() ([]byte, error) {
	return util.JSON.Marshal(tickJSON{
		Kind:        ev.Kind(),
		TimerID:     ev.timerID.String(),
		RemainingMS: ev.remaining.Milliseconds(),
		DurationMS:  ev.duration.Milliseconds(),
		Running:     ev.running,
	})
}

type doneJSON struct {
	Kind       Kind           `json:"kind"`
	TimerID    string         `json:"timer_id"`
	FinishedAt localtime.Time `json:"finished_at"`
}

func (ev Done) MarshalJSON() ([]byte, error) {
	return util.JSON.Marshal(doneJSON{
		Kind:       ev.Kind(),
		TimerID:    ev.timerID.String(),
		FinishedAt: ev.finishedAt,
	})
}
