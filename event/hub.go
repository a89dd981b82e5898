package event

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tickwerk/tickwerk/timer"
	"github.com/tickwerk/tickwerk/util"
	"github.com/tickwerk/tickwerk/util/cache"
	"github.com/tickwerk/tickwerk/util/logging"
)

var DefaultSubscriberBuffer uint = 64

// Subscriber receives the ordered event stream of one subscription.
// Its channel stays open until Unsubscribe or the hub closes.
type Subscriber struct {
	id      string
	ch      chan Event
	dropped int64
}

func (sb *Subscriber) ID() string {
	return sb.id
}

func (sb *Subscriber) Events() <-chan Event {
	return sb.ch
}

// Dropped counts the events lost to a full buffer.
func (sb *Subscriber) Dropped() int64 {
	return atomic.LoadInt64(&sb.dropped)
}

// Hub fans events out to any number of subscribers. Publish never
// blocks; a subscriber with a full buffer loses the event instead of
// stalling the publisher. The latest event per timer is retained so a
// late subscriber can render without waiting for the next cycle.
type Hub struct {
	sync.RWMutex
	*logging.Logging
	subscribers map[string]*Subscriber
	retained    cache.Cache
	closed      bool
}

// NewHub creates a hub retaining up to retainedSize latest-per-timer
// events for retainedExpire; retention is disabled when retainedSize
// is not positive.
func NewHub(retainedSize int, retainedExpire time.Duration) (*Hub, error) {
	var retained cache.Cache = cache.Dummy{}
	if retainedSize > 0 {
		i, err := cache.NewGCache("lru", retainedSize, retainedExpire)
		if err != nil {
			return nil, err
		}

		retained = i
	}

	return &Hub{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "event-hub")
		}),
		subscribers: map[string]*Subscriber{},
		retained:    retained,
	}, nil
}

func (hb *Hub) Subscribe(bufsize uint) *Subscriber {
	if bufsize < 1 {
		bufsize = DefaultSubscriberBuffer
	}

	sb := &Subscriber{
		id: util.UUID().String(),
		ch: make(chan Event, bufsize),
	}

	hb.Lock()
	defer hb.Unlock()

	if hb.closed {
		close(sb.ch)

		return sb
	}

	hb.subscribers[sb.id] = sb

	hb.Log().Debug().Str("subscriber", sb.id).Uint("bufsize", bufsize).Msg("subscribed")

	return sb
}

func (hb *Hub) Unsubscribe(id string) bool {
	hb.Lock()
	defer hb.Unlock()

	sb, found := hb.subscribers[id]
	if !found {
		return false
	}

	delete(hb.subscribers, id)
	close(sb.ch)

	hb.Log().Debug().Str("subscriber", id).Msg("unsubscribed")

	return true
}

// Publish delivers ev to every subscriber and retains it as the
// latest for its timer. Delivery order per subscriber follows the
// publish order.
func (hb *Hub) Publish(ev Event) {
	if ev == nil {
		return
	}

	hb.RLock()
	defer hb.RUnlock()

	if hb.closed {
		return
	}

	_ = hb.retained.Set(ev.Timer().String(), ev, 0)

	for id := range hb.subscribers {
		sb := hb.subscribers[id]

		select {
		case sb.ch <- ev:
		default:
			dropped := atomic.AddInt64(&sb.dropped, 1)

			hb.Log().Warn().
				Str("subscriber", id).
				Str("timer", ev.Timer().String()).
				Str("kind", ev.Kind().String()).
				Int64("dropped", dropped).
				Msg("subscriber buffer full; event dropped")
		}
	}
}

// Retained returns the latest event published for id, if still
// retained. The id may no longer exist in the registry; deleted
// timers leave the cache by Discard or expiry.
func (hb *Hub) Retained(id timer.ID) (Event, bool) {
	i, err := hb.retained.Get(id.String())
	if err != nil || i == nil {
		return nil, false
	}

	ev, ok := i.(Event)

	return ev, ok
}

// RetainedAll returns every retained event, sorted by timer id.
func (hb *Hub) RetainedAll() []Event {
	var evs []Event
	_ = hb.retained.Traverse(func(_, v interface{}) bool {
		if ev, ok := v.(Event); ok {
			evs = append(evs, ev)
		}

		return true
	})

	sort.Slice(evs, func(i, j int) bool {
		return evs[i].Timer() < evs[j].Timer()
	})

	return evs
}

// Discard drops the retained event of id.
func (hb *Hub) Discard(id timer.ID) bool {
	return hb.retained.Remove(id.String())
}

// Close closes every subscriber channel; later publishes are ignored.
func (hb *Hub) Close() error {
	hb.Lock()
	defer hb.Unlock()

	if hb.closed {
		return nil
	}

	hb.closed = true

	for id := range hb.subscribers {
		close(hb.subscribers[id].ch)
	}

	hb.subscribers = map[string]*Subscriber{}

	if err := hb.retained.Purge(); err != nil {
		return err
	}

	hb.Log().Debug().Msg("hub closed")

	return nil
}
