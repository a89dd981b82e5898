package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tickwerk/tickwerk/event"
	"github.com/tickwerk/tickwerk/timer"
	"github.com/tickwerk/tickwerk/util"
	"github.com/tickwerk/tickwerk/util/localtime"
	"github.com/tickwerk/tickwerk/util/logging"
)

var (
	InvalidTickIntervalError = util.NewError("invalid tick interval")
	ClockReadError           = util.NewError("failed to read clock")
)

var (
	DefaultTickInterval = time.Millisecond * 200
	MinTickInterval     = time.Millisecond * 10
	MaxTickInterval     = time.Second
)

// Engine binds the registry, the tick driver and the notification hub
// into the control surface callers use. Every mutating operation and
// every driver cycle runs under the engine lock, so published events
// follow the mutation order. The cadence only shapes how often ticks
// are reported; completion correctness comes from deadline
// comparison.
type Engine struct {
	sync.RWMutex
	*logging.Logging
	*util.ContextDaemon
	registry *Registry
	hub      *event.Hub
	interval time.Duration
	nowFunc  func() time.Time
	nameseq  uint64
}

func NewEngine(registry *Registry, hub *event.Hub, interval time.Duration) (*Engine, error) {
	if interval == 0 {
		interval = DefaultTickInterval
	}

	if interval < MinTickInterval || interval > MaxTickInterval {
		return nil, InvalidTickIntervalError.Errorf("interval=%v", interval)
	}

	eg := &Engine{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "timer-engine").Dur("tick_interval", interval)
		}),
		registry: registry,
		hub:      hub,
		interval: interval,
		nowFunc:  time.Now,
	}

	eg.ContextDaemon = util.NewContextDaemon("timer-engine", eg.tick)

	return eg, nil
}

func (eg *Engine) SetLogging(l *logging.Logging) *logging.Logging {
	_ = eg.ContextDaemon.SetLogging(l)

	return eg.Logging.SetLogging(l)
}

func (eg *Engine) TickInterval() time.Duration {
	return eg.interval
}

// CreateTimer registers a new idle timer and reports its snapshot. An
// empty name gets a generated one.
func (eg *Engine) CreateTimer(name string, duration time.Duration) (timer.Snapshot, error) {
	eg.Lock()
	defer eg.Unlock()

	now, err := eg.now()
	if err != nil {
		return timer.Snapshot{}, err
	}

	if len(strings.TrimSpace(name)) < 1 {
		eg.nameseq++
		name = fmt.Sprintf("timer-%d", eg.nameseq)
	}

	t, err := timer.NewTimer(timer.ID(util.ULID().String()), name, duration)
	if err != nil {
		return timer.Snapshot{}, err
	}

	if err := eg.registry.Insert(t); err != nil {
		return timer.Snapshot{}, err
	}

	sn := t.Snapshot(now)
	eg.hub.Publish(event.NewTick(sn))

	eg.Log().Debug().
		Str("timer", t.ID().String()).
		Str("name", name).
		Dur("duration", duration).
		Msg("timer created")

	return sn, nil
}

func (eg *Engine) StartTimer(id timer.ID) (timer.Snapshot, error) {
	return eg.transit(id, (*timer.Timer).Start)
}

func (eg *Engine) PauseTimer(id timer.ID) (timer.Snapshot, error) {
	return eg.transit(id, (*timer.Timer).Pause)
}

func (eg *Engine) ResumeTimer(id timer.ID) (timer.Snapshot, error) {
	return eg.transit(id, (*timer.Timer).Resume)
}

func (eg *Engine) ResetTimer(id timer.ID) (timer.Snapshot, error) {
	return eg.transit(id, (*timer.Timer).Reset)
}

// DeleteTimer removes the timer from the registry; later driver
// passes will not see it. Events already queued for it may still
// reach subscribers.
func (eg *Engine) DeleteTimer(id timer.ID) error {
	eg.Lock()
	defer eg.Unlock()

	if err := eg.registry.Remove(id); err != nil {
		return err
	}

	_ = eg.hub.Discard(id)

	eg.Log().Debug().Str("timer", id.String()).Msg("timer deleted")

	return nil
}

// Timer returns the snapshot of one timer.
func (eg *Engine) Timer(id timer.ID) (timer.Snapshot, error) {
	eg.RLock()
	defer eg.RUnlock()

	now, err := eg.now()
	if err != nil {
		return timer.Snapshot{}, err
	}

	return eg.registry.Snapshot(id, now)
}

// Timers returns the snapshots of every timer, consistent as of one
// instant, in creation order.
func (eg *Engine) Timers() ([]timer.Snapshot, error) {
	eg.RLock()
	defer eg.RUnlock()

	now, err := eg.now()
	if err != nil {
		return nil, err
	}

	return eg.registry.Snapshots(now), nil
}

// transit applies one state transition and publishes the outcome: a
// done event when the operation settled an expired countdown, then a
// tick with the new snapshot when the transition succeeded.
func (eg *Engine) transit(id timer.ID, transition func(*timer.Timer, time.Time) (bool, error)) (timer.Snapshot, error) {
	eg.Lock()
	defer eg.Unlock()

	now, err := eg.now()
	if err != nil {
		return timer.Snapshot{}, err
	}

	var settled bool
	sn, err := eg.registry.Mutate(id, now, func(t *timer.Timer) error {
		i, err := transition(t, now)
		settled = i

		return err
	})

	if settled {
		eg.hub.Publish(event.NewDone(id, localtime.Now()))

		eg.Log().Debug().Str("timer", id.String()).Msg("timer completed")
	}

	if err != nil {
		return timer.Snapshot{}, err
	}

	eg.hub.Publish(event.NewTick(sn))

	return sn, nil
}

// tick is the driver loop; it wakes on the cadence until the context
// is canceled or a cycle fails.
func (eg *Engine) tick(ctx context.Context) error {
	ticker := time.NewTicker(eg.interval)
	defer ticker.Stop()

end:
	for {
		select {
		case <-ctx.Done():
			break end
		case <-ticker.C:
			if err := eg.advance(); err != nil {
				eg.Log().Error().Err(err).
					Msg("tick driver stopped; control operations keep working")

				return err
			}
		}
	}

	return nil
}

// advance is one driver cycle: one clock capture advances every
// running timer, then the changed ones are published. Completed is
// sticky, so a pass delayed across several cadences still reports
// each completion exactly once.
func (eg *Engine) advance() error {
	eg.Lock()
	defer eg.Unlock()

	now, err := eg.now()
	if err != nil {
		return err
	}

	ticked, completed := eg.registry.AdvanceAll(now)

	for i := range ticked {
		eg.hub.Publish(event.NewTick(ticked[i]))
	}

	for i := range completed {
		id := completed[i].ID()

		eg.hub.Publish(event.NewDone(id, localtime.Now()))

		eg.Log().Debug().Str("timer", id.String()).Msg("timer completed")
	}

	return nil
}

// now reads the clock for timing math; a zero instant is a failed
// read. The daemon treats it as fatal, control operations just return
// it and stay usable.
func (eg *Engine) now() (time.Time, error) {
	now := eg.nowFunc()
	if now.IsZero() {
		return time.Time{}, ClockReadError.Call()
	}

	return now, nil
}
