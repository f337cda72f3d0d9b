// Package events provides the in-process publish/subscribe bus that carries
// ledger notifications to observers.
package events

import (
	"context"
	"sync"

	"github.com/mmynk/chitpool/internal/models"
)

// subscriberBuffer is the per-subscriber channel capacity. A subscriber that
// falls more than this many events behind starts losing events.
const subscriberBuffer = 16

// Bus fans out ledger events to registered subscribers. Publish never
// blocks: each subscriber has a buffered channel, and when the buffer is
// full the event is dropped for that subscriber (at-most-once delivery).
// Events a subscriber does receive arrive in publish order.
type Bus struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[*Subscription]struct{})}
}

// Subscription represents one registered observer.
// Caller must call Close() when done to release resources.
type Subscription struct {
	events chan models.Event
	cancel context.CancelFunc
	once   sync.Once
}

// Events returns the channel of ledger events. The channel is closed when
// the subscription is closed, its context is cancelled, or the bus shuts
// down.
func (s *Subscription) Events() <-chan models.Event {
	return s.events
}

// Close detaches the subscription from the bus and closes its events
// channel. Implements io.Closer. Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// Subscribe registers a new observer. Cancelling ctx detaches the
// subscriber just like Close.
func (b *Bus) Subscribe(ctx context.Context) *Subscription {
	subCtx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		events: make(chan models.Event, subscriberBuffer),
		cancel: cancel,
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		cancel()
		close(s.events)
		return s
	}
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-subCtx.Done()
		b.mu.Lock()
		delete(b.subs, s)
		b.mu.Unlock()
		// No publisher can reach s past this point, so closing is safe.
		close(s.events)
	}()

	return s
}

// Publish delivers ev to every current subscriber without blocking.
// Callers that need delivery order to match commit order must serialize
// their Publish calls; the ledger does so by publishing inside its write
// lock.
func (b *Bus) Publish(ev models.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for s := range b.subs {
		select {
		case s.events <- ev:
		default:
			// Subscriber too slow; drop rather than stall the ledger.
		}
	}
}

// Close detaches every subscriber and rejects future subscriptions.
// Publish becomes a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := make([]*Subscription, 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
}
