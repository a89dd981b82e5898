package engine

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
	"golang.org/x/sync/semaphore"

	"github.com/tickwerk/tickwerk/event"
	"github.com/tickwerk/tickwerk/timer"
	"github.com/tickwerk/tickwerk/util"
)

// fakeClock feeds the engine a hand-driven instant, so tests control
// the passage of time instead of sleeping through it.
type fakeClock struct {
	sync.Mutex
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Now()}
}

func (fc *fakeClock) Now() time.Time {
	fc.Lock()
	defer fc.Unlock()

	return fc.t
}

func (fc *fakeClock) Advance(d time.Duration) {
	fc.Lock()
	defer fc.Unlock()

	fc.t = fc.t.Add(d)
}

func (fc *fakeClock) Set(t time.Time) {
	fc.Lock()
	defer fc.Unlock()

	fc.t = t
}

type testEngine struct {
	suite.Suite
	clock *fakeClock
	hub   *event.Hub
}

func (t *testEngine) SetupTest() {
	t.clock = newFakeClock()

	hb, err := event.NewHub(100, time.Minute)
	t.NoError(err)
	t.hub = hb
}

func (t *testEngine) TearDownTest() {
	t.NoError(t.hub.Close())
}

func (t *testEngine) newEngine() *Engine {
	eg, err := NewEngine(NewRegistry(), t.hub, time.Millisecond*100)
	t.NoError(err)

	eg.nowFunc = t.clock.Now

	return eg
}

func (t *testEngine) drain(sb *event.Subscriber) []event.Event {
	var evs []event.Event

	for {
		select {
		case ev := <-sb.Events():
			evs = append(evs, ev)
		default:
			return evs
		}
	}
}

func (t *testEngine) dones(evs []event.Event) []event.Done {
	var dones []event.Done
	for i := range evs {
		if ev, ok := evs[i].(event.Done); ok {
			dones = append(dones, ev)
		}
	}

	return dones
}

func (t *testEngine) TestNew() {
	eg, err := NewEngine(NewRegistry(), t.hub, 0)
	t.NoError(err)
	t.Equal(DefaultTickInterval, eg.TickInterval())

	_, err = NewEngine(NewRegistry(), t.hub, time.Millisecond)
	t.True(errors.Is(err, InvalidTickIntervalError))

	_, err = NewEngine(NewRegistry(), t.hub, time.Minute)
	t.True(errors.Is(err, InvalidTickIntervalError))
}

func (t *testEngine) TestCreate() {
	eg := t.newEngine()
	sb := t.hub.Subscribe(10)

	sn, err := eg.CreateTimer("focus", time.Millisecond*1500)
	t.NoError(err)

	t.NotEmpty(sn.ID())
	t.Equal("focus", sn.Name())
	t.Equal(time.Millisecond*1500, sn.Duration())
	t.Equal(time.Millisecond*1500, sn.Remaining())
	t.False(sn.Running())
	t.False(sn.Completed())
	t.False(sn.CreatedAt().IsZero())

	evs := t.drain(sb)
	t.Equal(1, len(evs))
	t.Equal(event.KindTick, evs[0].Kind())
	t.Equal(sn.ID(), evs[0].Timer())

	sns, err := eg.Timers()
	t.NoError(err)
	t.Equal(1, len(sns))
	t.Equal(sn.ID(), sns[0].ID())
}

func (t *testEngine) TestCreateInvalidDuration() {
	eg := t.newEngine()

	_, err := eg.CreateTimer("showme", 0)
	t.True(errors.Is(err, timer.InvalidDurationError))

	_, err = eg.CreateTimer("showme", time.Second*-1)
	t.True(errors.Is(err, timer.InvalidDurationError))

	sns, err := eg.Timers()
	t.NoError(err)
	t.Empty(sns)
}

func (t *testEngine) TestCreateGeneratedNames() {
	eg := t.newEngine()

	a, err := eg.CreateTimer("", time.Second)
	t.NoError(err)
	t.Equal("timer-1", a.Name())

	b, err := eg.CreateTimer("   ", time.Second)
	t.NoError(err)
	t.Equal("timer-2", b.Name())

	c, err := eg.CreateTimer("showme", time.Second)
	t.NoError(err)
	t.Equal("showme", c.Name())
}

func (t *testEngine) TestCreateOrderedListing() {
	eg := t.newEngine()

	var ids []timer.ID
	for i := 0; i < 5; i++ {
		sn, err := eg.CreateTimer("", time.Second)
		t.NoError(err)

		ids = append(ids, sn.ID())
	}

	sns, err := eg.Timers()
	t.NoError(err)
	t.Equal(len(ids), len(sns))

	for i := range sns {
		t.Equal(ids[i], sns[i].ID())
	}
}

func (t *testEngine) TestLifecycle() {
	eg := t.newEngine()

	sn, err := eg.CreateTimer("focus", time.Second*3)
	t.NoError(err)
	id := sn.ID()

	sn, err = eg.StartTimer(id)
	t.NoError(err)
	t.True(sn.Running())
	t.Equal(time.Second*3, sn.Remaining())

	t.clock.Advance(time.Second)

	sn, err = eg.PauseTimer(id)
	t.NoError(err)
	t.False(sn.Running())
	t.Equal(time.Second*2, sn.Remaining())

	// paused remaining is frozen
	t.clock.Advance(time.Hour)

	sn, err = eg.Timer(id)
	t.NoError(err)
	t.Equal(time.Second*2, sn.Remaining())

	sn, err = eg.ResumeTimer(id)
	t.NoError(err)
	t.True(sn.Running())

	t.clock.Advance(time.Second)

	sn, err = eg.Timer(id)
	t.NoError(err)
	t.Equal(time.Second, sn.Remaining())

	sn, err = eg.ResetTimer(id)
	t.NoError(err)
	t.False(sn.Running())
	t.Equal(time.Second*3, sn.Remaining())
}

func (t *testEngine) TestStartTwice() {
	eg := t.newEngine()

	sn, err := eg.CreateTimer("showme", time.Second*3)
	t.NoError(err)

	_, err = eg.StartTimer(sn.ID())
	t.NoError(err)

	t.clock.Advance(time.Second)

	_, err = eg.StartTimer(sn.ID())
	t.True(errors.Is(err, timer.InvalidStateTransitionError))

	// the running countdown is untouched
	nsn, err := eg.Timer(sn.ID())
	t.NoError(err)
	t.True(nsn.Running())
	t.Equal(time.Second*2, nsn.Remaining())
}

func (t *testEngine) TestInvalidTransitions() {
	eg := t.newEngine()

	sn, err := eg.CreateTimer("showme", time.Second*3)
	t.NoError(err)

	_, err = eg.PauseTimer(sn.ID())
	t.True(errors.Is(err, timer.InvalidStateTransitionError))

	_, err = eg.ResumeTimer(sn.ID())
	t.True(errors.Is(err, timer.InvalidStateTransitionError))

	_, err = eg.StartTimer(sn.ID())
	t.NoError(err)

	_, err = eg.ResumeTimer(sn.ID())
	t.True(errors.Is(err, timer.InvalidStateTransitionError))
}

func (t *testEngine) TestNotFound() {
	eg := t.newEngine()

	id := timer.ID("showme")

	_, err := eg.StartTimer(id)
	t.True(errors.Is(err, TimerNotFoundError))

	_, err = eg.PauseTimer(id)
	t.True(errors.Is(err, TimerNotFoundError))

	_, err = eg.ResumeTimer(id)
	t.True(errors.Is(err, TimerNotFoundError))

	_, err = eg.ResetTimer(id)
	t.True(errors.Is(err, TimerNotFoundError))

	t.True(errors.Is(eg.DeleteTimer(id), TimerNotFoundError))

	_, err = eg.Timer(id)
	t.True(errors.Is(err, TimerNotFoundError))
}

func (t *testEngine) TestResetIdempotent() {
	eg := t.newEngine()

	sn, err := eg.CreateTimer("showme", time.Second*3)
	t.NoError(err)

	_, err = eg.StartTimer(sn.ID())
	t.NoError(err)

	t.clock.Advance(time.Second)

	first, err := eg.ResetTimer(sn.ID())
	t.NoError(err)

	second, err := eg.ResetTimer(sn.ID())
	t.NoError(err)

	t.Equal(first.Remaining(), second.Remaining())
	t.Equal(time.Second*3, second.Remaining())
	t.False(second.Running())
	t.False(second.Completed())
}

func (t *testEngine) TestDelete() {
	eg := t.newEngine()

	sn, err := eg.CreateTimer("showme", time.Second*3)
	t.NoError(err)
	id := sn.ID()

	_, found := t.hub.Retained(id)
	t.True(found)

	t.NoError(eg.DeleteTimer(id))

	sns, err := eg.Timers()
	t.NoError(err)
	t.Empty(sns)

	_, err = eg.PauseTimer(id)
	t.True(errors.Is(err, TimerNotFoundError))

	// the retained event leaves with the timer
	_, found = t.hub.Retained(id)
	t.False(found)
}

func (t *testEngine) TestAdvanceCompletes() {
	eg := t.newEngine()
	sb := t.hub.Subscribe(100)

	sn, err := eg.CreateTimer("focus", time.Millisecond*1500)
	t.NoError(err)
	id := sn.ID()

	_, err = eg.StartTimer(id)
	t.NoError(err)

	_ = t.drain(sb)

	t.clock.Advance(time.Millisecond * 500)
	t.NoError(eg.advance())

	evs := t.drain(sb)
	t.Equal(1, len(evs))
	tick := evs[0].(event.Tick)
	t.Equal(time.Millisecond*1000, tick.Remaining())
	t.True(tick.Running())

	t.clock.Advance(time.Millisecond * 1000)
	t.NoError(eg.advance())

	evs = t.drain(sb)
	t.Equal(2, len(evs))

	tick = evs[0].(event.Tick)
	t.Equal(time.Duration(0), tick.Remaining())
	t.False(tick.Running())

	done := evs[1].(event.Done)
	t.Equal(id, done.Timer())
	t.False(done.FinishedAt().IsZero())

	// sticky; no more events for the completed timer
	t.clock.Advance(time.Second)
	t.NoError(eg.advance())
	t.Empty(t.drain(sb))

	nsn, err := eg.Timer(id)
	t.NoError(err)
	t.True(nsn.Completed())
	t.Equal(time.Duration(0), nsn.Remaining())
}

func (t *testEngine) TestDelayedCyclesCompleteOnce() {
	eg := t.newEngine()
	sb := t.hub.Subscribe(100)

	sn, err := eg.CreateTimer("focus", time.Second*5)
	t.NoError(err)

	_, err = eg.StartTimer(sn.ID())
	t.NoError(err)

	_ = t.drain(sb)

	// cycles stall past several cadences; the deadline comparison
	// still reports completion at the first late pass, exactly once
	t.clock.Advance(time.Millisecond * 4900)
	t.NoError(eg.advance())

	evs := t.drain(sb)
	t.Empty(t.dones(evs))

	t.clock.Advance(time.Millisecond * 300)
	t.NoError(eg.advance())

	evs = t.drain(sb)
	t.Equal(1, len(t.dones(evs)))

	t.clock.Advance(time.Second * 10)
	t.NoError(eg.advance())
	t.Empty(t.dones(t.drain(sb)))
}

func (t *testEngine) TestPauseLosesToCompletion() {
	eg := t.newEngine()
	sb := t.hub.Subscribe(100)

	sn, err := eg.CreateTimer("showme", time.Second*3)
	t.NoError(err)
	id := sn.ID()

	_, err = eg.StartTimer(id)
	t.NoError(err)

	_ = t.drain(sb)

	// the pause arrives after the deadline; completion wins and is
	// published by the losing operation
	t.clock.Advance(time.Second * 4)

	_, err = eg.PauseTimer(id)
	t.True(errors.Is(err, timer.InvalidStateTransitionError))

	evs := t.drain(sb)
	t.Equal(1, len(evs))
	t.Equal(event.KindDone, evs[0].Kind())

	// the driver pass does not report it again
	t.NoError(eg.advance())
	t.Empty(t.drain(sb))

	nsn, err := eg.Timer(id)
	t.NoError(err)
	t.True(nsn.Completed())
}

func (t *testEngine) TestResetSettledCompletion() {
	eg := t.newEngine()
	sb := t.hub.Subscribe(100)

	sn, err := eg.CreateTimer("showme", time.Second*3)
	t.NoError(err)
	id := sn.ID()

	_, err = eg.StartTimer(id)
	t.NoError(err)

	_ = t.drain(sb)

	t.clock.Advance(time.Minute)

	nsn, err := eg.ResetTimer(id)
	t.NoError(err)
	t.False(nsn.Running())
	t.Equal(time.Second*3, nsn.Remaining())

	// the settled completion and the reset outcome, in that order
	evs := t.drain(sb)
	t.Equal(2, len(evs))
	t.Equal(event.KindDone, evs[0].Kind())
	t.Equal(event.KindTick, evs[1].Kind())
}

func (t *testEngine) TestIndependentTimers() {
	eg := t.newEngine()

	a, err := eg.CreateTimer("a-timer", time.Second*10)
	t.NoError(err)

	b, err := eg.CreateTimer("b-timer", time.Second*10)
	t.NoError(err)

	_, err = eg.StartTimer(a.ID())
	t.NoError(err)

	_, err = eg.StartTimer(b.ID())
	t.NoError(err)

	t.clock.Advance(time.Second * 2)

	// pausing a must not touch b's deadline
	_, err = eg.PauseTimer(a.ID())
	t.NoError(err)

	t.clock.Advance(time.Second * 3)

	asn, err := eg.Timer(a.ID())
	t.NoError(err)
	t.Equal(time.Second*8, asn.Remaining())

	bsn, err := eg.Timer(b.ID())
	t.NoError(err)
	t.True(bsn.Running())
	t.Equal(time.Second*5, bsn.Remaining())

	// b completes alone
	t.clock.Advance(time.Second * 6)
	t.NoError(eg.advance())

	asn, err = eg.Timer(a.ID())
	t.NoError(err)
	t.False(asn.Completed())
	t.Equal(time.Second*8, asn.Remaining())

	bsn, err = eg.Timer(b.ID())
	t.NoError(err)
	t.True(bsn.Completed())
}

func (t *testEngine) TestMonotonicRemaining() {
	eg := t.newEngine()

	sn, err := eg.CreateTimer("showme", time.Second*5)
	t.NoError(err)

	_, err = eg.StartTimer(sn.ID())
	t.NoError(err)

	last := sn.Duration()
	for i := 0; i < 20; i++ {
		t.clock.Advance(time.Millisecond * 300)
		t.NoError(eg.advance())

		nsn, err := eg.Timer(sn.ID())
		t.NoError(err)

		t.True(nsn.Remaining() <= last)
		t.True(nsn.Remaining() >= 0)
		t.True(nsn.Remaining() <= nsn.Duration())

		last = nsn.Remaining()
	}
}

func (t *testEngine) TestMutationEvents() {
	eg := t.newEngine()
	sb := t.hub.Subscribe(100)

	sn, err := eg.CreateTimer("focus", time.Millisecond*1500)
	t.NoError(err)
	id := sn.ID()

	_, err = eg.StartTimer(id)
	t.NoError(err)

	t.clock.Advance(time.Millisecond * 500)

	_, err = eg.PauseTimer(id)
	t.NoError(err)

	evs := t.drain(sb)
	t.Equal(3, len(evs))

	created := evs[0].(event.Tick)
	t.Equal(id, created.Timer())
	t.False(created.Running())
	t.Equal(time.Millisecond*1500, created.Remaining())
	t.Equal(time.Millisecond*1500, created.Duration())

	started := evs[1].(event.Tick)
	t.True(started.Running())
	t.Equal(time.Millisecond*1500, started.Remaining())

	paused := evs[2].(event.Tick)
	t.False(paused.Running())
	t.Equal(time.Millisecond*1000, paused.Remaining())
}

func (t *testEngine) TestClockFailure() {
	eg := t.newEngine()

	sn, err := eg.CreateTimer("showme", time.Second*3)
	t.NoError(err)

	t.clock.Set(time.Time{})

	_, err = eg.CreateTimer("findme", time.Second)
	t.True(errors.Is(err, ClockReadError))

	_, err = eg.StartTimer(sn.ID())
	t.True(errors.Is(err, ClockReadError))

	_, err = eg.Timers()
	t.True(errors.Is(err, ClockReadError))

	// a healthy clock brings every operation back
	t.clock.Set(time.Now())

	nsn, err := eg.StartTimer(sn.ID())
	t.NoError(err)
	t.True(nsn.Running())
}

func (t *testEngine) TestDriverClockFailureDegrades() {
	eg := t.newEngine()

	sn, err := eg.CreateTimer("showme", time.Hour)
	t.NoError(err)

	t.clock.Set(time.Time{})

	errch := eg.Wait(context.Background())

	// the first cycle kills the driver alone
	t.True(errors.Is(<-errch, ClockReadError))
	t.False(eg.IsStarted())

	// control operations keep working on their own reads
	t.clock.Set(time.Now())

	nsn, err := eg.StartTimer(sn.ID())
	t.NoError(err)
	t.True(nsn.Running())
}

func (t *testEngine) TestDaemon() {
	rg := NewRegistry()

	eg, err := NewEngine(rg, t.hub, time.Millisecond*10)
	t.NoError(err)

	sb := t.hub.Subscribe(1024)

	sn, err := eg.CreateTimer("focus", time.Millisecond*100)
	t.NoError(err)
	id := sn.ID()

	_, err = eg.StartTimer(id)
	t.NoError(err)

	t.NoError(eg.Start())
	t.True(errors.Is(eg.Start(), util.DaemonAlreadyStartedError))

	var done event.Done

	timeout := time.After(time.Second * 2)

end:
	for {
		select {
		case <-timeout:
			t.NoError(errors.Errorf("done event did not arrive"))

			break end
		case ev := <-sb.Events():
			if i, ok := ev.(event.Done); ok {
				done = i

				break end
			}
		}
	}

	t.Equal(id, done.Timer())

	t.NoError(eg.Stop())

	// exactly one done for the completed timer
	t.Empty(t.dones(t.drain(sb)))

	nsn, err := eg.Timer(id)
	t.NoError(err)
	t.True(nsn.Completed())
	t.Equal(time.Duration(0), nsn.Remaining())
}

func (t *testEngine) TestConcurrentOperations() {
	eg := t.newEngine()
	eg.nowFunc = time.Now

	sem := semaphore.NewWeighted(10)
	ctx := context.Background()

	var ids []timer.ID
	for i := 0; i < 10; i++ {
		sn, err := eg.CreateTimer("", time.Second*10)
		t.NoError(err)

		ids = append(ids, sn.ID())
	}

	for i := 0; i < 100; i++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			panic(err)
		}

		i := i
		go func() {
			defer sem.Release(1)

			id := ids[i%len(ids)]

			switch i % 5 {
			case 0:
				_, _ = eg.StartTimer(id)
			case 1:
				_, _ = eg.PauseTimer(id)
			case 2:
				_, _ = eg.ResumeTimer(id)
			case 3:
				_, _ = eg.ResetTimer(id)
			case 4:
				t.NoError(eg.advance())
			}
		}()
	}

	t.NoError(sem.Acquire(ctx, 10))

	// whatever interleaving happened, the invariants hold
	sns, err := eg.Timers()
	t.NoError(err)
	t.Equal(len(ids), len(sns))

	for i := range sns {
		sn := sns[i]
		t.True(sn.Remaining() >= 0)
		t.True(sn.Remaining() <= sn.Duration())
		t.Equal(sn.Completed(), sn.Remaining() == 0)
	}
}

func (t *testEngine) TestConcurrentCreateDelete() {
	eg := t.newEngine()
	eg.nowFunc = time.Now

	sem := semaphore.NewWeighted(10)
	ctx := context.Background()

	idch := make(chan timer.ID, 100)

	for i := 0; i < 50; i++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			panic(err)
		}

		go func() {
			defer sem.Release(1)

			sn, err := eg.CreateTimer("", time.Second)
			t.NoError(err)

			idch <- sn.ID()
		}()
	}

	t.NoError(sem.Acquire(ctx, 10))
	sem.Release(10)
	close(idch)

	sns, err := eg.Timers()
	t.NoError(err)
	t.Equal(50, len(sns))

	// generated ids never collide
	seen := map[timer.ID]struct{}{}
	for id := range idch {
		_, found := seen[id]
		t.False(found)
		seen[id] = struct{}{}
	}

	for id := range seen {
		if err := sem.Acquire(ctx, 1); err != nil {
			panic(err)
		}

		id := id
		go func() {
			defer sem.Release(1)

			if rand.Intn(2) == 0 { // nolint:gosec
				_, _ = eg.StartTimer(id)
			}

			t.NoError(eg.DeleteTimer(id))
		}()
	}

	t.NoError(sem.Acquire(ctx, 10))

	sns, err = eg.Timers()
	t.NoError(err)
	t.Empty(sns)
}

func TestEngine(t *testing.T) {
	defer goleak.VerifyNone(t)

	suite.Run(t, new(testEngine))
}
