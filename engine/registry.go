package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/tickwerk/tickwerk/timer"
	"github.com/tickwerk/tickwerk/util"
)

var TimerNotFoundError = util.NewError("timer not found")

// Registry owns every timer entity. All access, the control surface's
// and the tick driver's alike, is serialized here; entities never
// leave as live references, only as value snapshots.
type Registry struct {
	sync.RWMutex
	timers map[timer.ID]*timer.Timer
}

func NewRegistry() *Registry {
	return &Registry{
		timers: map[timer.ID]*timer.Timer{},
	}
}

func (rg *Registry) Len() int {
	rg.RLock()
	defer rg.RUnlock()

	return len(rg.timers)
}

func (rg *Registry) Insert(t *timer.Timer) error {
	rg.Lock()
	defer rg.Unlock()

	if _, found := rg.timers[t.ID()]; found {
		return util.DuplicatedError.Errorf("timer=%s", t.ID())
	}

	rg.timers[t.ID()] = t

	return nil
}

func (rg *Registry) Remove(id timer.ID) error {
	rg.Lock()
	defer rg.Unlock()

	if _, found := rg.timers[id]; !found {
		return TimerNotFoundError.Errorf("timer=%s", id)
	}

	delete(rg.timers, id)

	return nil
}

// Snapshot returns the value copy of one entity as of now.
func (rg *Registry) Snapshot(id timer.ID, now time.Time) (timer.Snapshot, error) {
	rg.RLock()
	defer rg.RUnlock()

	t, found := rg.timers[id]
	if !found {
		return timer.Snapshot{}, TimerNotFoundError.Errorf("timer=%s", id)
	}

	return t.Snapshot(now), nil
}

// Snapshots returns value copies of every entity as of one instant,
// in creation order; timer ids sort lexicographically in the order
// they were generated.
func (rg *Registry) Snapshots(now time.Time) []timer.Snapshot {
	rg.RLock()
	defer rg.RUnlock()

	sns := make([]timer.Snapshot, 0, len(rg.timers))
	for id := range rg.timers {
		sns = append(sns, rg.timers[id].Snapshot(now))
	}

	sort.Slice(sns, func(i, j int) bool {
		return sns[i].ID() < sns[j].ID()
	})

	return sns
}

// Mutate applies transform to one entity under exclusive access and
// returns the resulting snapshot. The snapshot is valid even when
// transform failed; a rejected transition can still have settled an
// expired countdown first.
func (rg *Registry) Mutate(id timer.ID, now time.Time, transform func(*timer.Timer) error) (timer.Snapshot, error) {
	rg.Lock()
	defer rg.Unlock()

	t, found := rg.timers[id]
	if !found {
		return timer.Snapshot{}, TimerNotFoundError.Errorf("timer=%s", id)
	}

	err := transform(t)

	return t.Snapshot(now), err
}

// AdvanceAll advances every running entity to now. It returns the
// snapshots of the entities whose reported state changed, and the
// subset completed by this pass, both in id order. The registry emits
// nothing; notification is the caller's.
func (rg *Registry) AdvanceAll(now time.Time) (ticked, completed []timer.Snapshot) {
	rg.Lock()
	defer rg.Unlock()

	for id := range rg.timers {
		t := rg.timers[id]

		changed, done := t.Advance(now)
		if !changed {
			continue
		}

		sn := t.Snapshot(now)

		ticked = append(ticked, sn)
		if done {
			completed = append(completed, sn)
		}
	}

	sort.Slice(ticked, func(i, j int) bool {
		return ticked[i].ID() < ticked[j].ID()
	})
	sort.Slice(completed, func(i, j int) bool {
		return completed[i].ID() < completed[j].ID()
	})

	return ticked, completed
}
