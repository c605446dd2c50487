package events

import (
	"errors"
	"sync"
	"time"

	"github.com/yourusername/tilewm/internal/metrics"
)

var (
	// ErrOverflow is reported by a subscription that fell too far behind.
	// The subscriber is dropped rather than silently missing events.
	ErrOverflow = errors.New("subscriber fell behind and was dropped")
	// ErrBusClosed is reported when the bus shuts down.
	ErrBusClosed = errors.New("event bus closed")
)

// DefaultBuffer is the per-subscriber queue length
const DefaultBuffer = 256

// Published is an event stamped with its position in the global stream
type Published struct {
	Seq   uint64
	Time  time.Time
	Event WmEvent
}

// Subscription receives published events in order until it is closed
type Subscription struct {
	id     uint64
	bus    *Bus
	filter Filter
	ch     chan Published
	err    error
}

// C returns the delivery channel. It is closed when the subscription ends.
func (s *Subscription) C() <-chan Published {
	return s.ch
}

// Err reports why the subscription ended, once C is closed
func (s *Subscription) Err() error {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	return s.err
}

// Close ends the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.bus.remove(s, nil)
}

// Bus fans events out to subscribers in publication order
type Bus struct {
	mu     sync.Mutex
	seq    uint64
	nextID uint64
	buffer int
	subs   map[uint64]*Subscription
	closed bool
	now    func() time.Time
}

// NewBus creates a bus with the given per-subscriber buffer
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Bus{
		buffer: buffer,
		subs:   make(map[uint64]*Subscription),
		now:    time.Now,
	}
}

// Subscribe registers a new subscriber
func (b *Bus) Subscribe(filter Filter) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subscribeLocked(filter)
}

// Replace ends old and registers a subscriber with filter in one step, so
// every event reaches exactly one of the two. old may be nil or already
// ended.
func (b *Bus) Replace(old *Subscription, filter Filter) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	if old != nil {
		b.removeLocked(old, nil)
	}
	return b.subscribeLocked(filter)
}

func (b *Bus) subscribeLocked(filter Filter) *Subscription {
	b.nextID++
	s := &Subscription{
		id:     b.nextID,
		bus:    b,
		filter: filter,
		ch:     make(chan Published, b.buffer),
	}
	if b.closed {
		s.err = ErrBusClosed
		close(s.ch)
		return s
	}
	b.subs[s.id] = s
	metrics.Subscribers.Set(float64(len(b.subs)))
	return s
}

// Publish stamps and delivers events in order. It never blocks: a
// subscriber whose queue is full is closed with ErrOverflow.
func (b *Bus) Publish(evts ...WmEvent) []Published {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Published, 0, len(evts))
	for _, e := range evts {
		b.seq++
		p := Published{Seq: b.seq, Time: b.now(), Event: e}
		out = append(out, p)
		metrics.EventsPublished.WithLabelValues(string(e.Kind())).Inc()

		for _, s := range b.subs {
			if !s.filter.Match(e.Kind()) {
				continue
			}
			select {
			case s.ch <- p:
			default:
				b.removeLocked(s, ErrOverflow)
			}
		}
	}
	return out
}

// Len returns the number of live subscribers
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close ends every subscription with ErrBusClosed
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for _, s := range b.subs {
		b.removeLocked(s, ErrBusClosed)
	}
}

func (b *Bus) remove(s *Subscription, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(s, err)
}

func (b *Bus) removeLocked(s *Subscription, err error) {
	if _, ok := b.subs[s.id]; !ok {
		return
	}
	delete(b.subs, s.id)
	s.err = err
	close(s.ch)
	metrics.Subscribers.Set(float64(len(b.subs)))
}
