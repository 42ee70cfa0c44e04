// Package clock abstracts time so gesture timers can be driven deterministically in tests.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock is the time source for every delayed task in the touch pipeline.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc runs f once d has elapsed, unless the returned Timer is stopped first.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable delayed task.
type Timer interface {
	// Stop prevents the task from running. It reports whether the call stopped it.
	Stop() bool
}

// Real uses system time. Callbacks run on their own goroutine.
type Real struct{}

func (Real) Now() time.Time {
	return time.Now()
}

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Serialized wraps base so callbacks are handed to post instead of running in place.
// post is expected to enqueue onto the owning event loop; Stop must be called from that loop.
// A timer stopped after its callback was queued, but before it ran, stays silent.
func Serialized(base Clock, post func(func())) Clock {
	return &serialized{base: base, post: post}
}

type serialized struct {
	base Clock
	post func(func())
}

func (s *serialized) Now() time.Time {
	return s.base.Now()
}

func (s *serialized) AfterFunc(d time.Duration, f func()) Timer {
	t := &loopTimer{}
	t.inner = s.base.AfterFunc(d, func() {
		s.post(func() {
			if t.stopped {
				return
			}
			t.stopped = true
			f()
		})
	})
	return t
}

// loopTimer is only touched from the loop goroutine.
type loopTimer struct {
	inner   Timer
	stopped bool
}

func (t *loopTimer) Stop() bool {
	if t.stopped {
		return false
	}
	t.stopped = true
	t.inner.Stop()
	return true
}

// Fake is a manually advanced Clock. Due callbacks run synchronously inside Advance.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*fakeTimer
}

// NewFake creates a fake clock starting at the given time.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	t := &fakeTimer{clock: f, at: f.now.Add(d), seq: f.seq, fn: fn}
	f.timers = append(f.timers, t)
	return t
}

// Pending is the number of armed timers.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.timers)
}

// Advance moves time forward by d, firing every timer that falls due in order.
// Timers armed by a callback fire too if they become due within the same window.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		sort.SliceStable(f.timers, func(i, j int) bool {
			if f.timers[i].at.Equal(f.timers[j].at) {
				return f.timers[i].seq < f.timers[j].seq
			}
			return f.timers[i].at.Before(f.timers[j].at)
		})

		if len(f.timers) == 0 || f.timers[0].at.After(target) {
			f.now = target
			f.mu.Unlock()
			return
		}

		next := f.timers[0]
		f.timers = f.timers[1:]
		f.now = next.at
		f.mu.Unlock()

		next.fn()
	}
}

type fakeTimer struct {
	clock *Fake
	at    time.Time
	seq   int
	fn    func()
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	for i, other := range t.clock.timers {
		if other == t {
			t.clock.timers = append(t.clock.timers[:i], t.clock.timers[i+1:]...)
			return true
		}
	}
	return false
}
