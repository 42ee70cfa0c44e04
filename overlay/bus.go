package overlay

import (
	"sync"
	"sync/atomic"
)

const subscriberBuffer = 64

// Bus fans updates out to subscribers. Publish never blocks; a subscriber
// that falls behind loses updates rather than stalling the gesture loop.
type Bus struct {
	mu      sync.RWMutex
	subs    map[chan Update]struct{}
	dropped atomic.Int64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[chan Update]struct{})}
}

// Subscribe returns a channel of updates and a function that detaches it.
func (b *Bus) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, subscriberBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers u to every subscriber with room for it.
func (b *Bus) Publish(u Update) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs {
		select {
		case ch <- u:
		default:
			b.dropped.Add(1)
		}
	}
}

// Pulse publishes a haptic request.
func (b *Bus) Pulse() {
	b.Publish(Haptic{})
}

// Dropped counts updates lost to slow subscribers.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}
