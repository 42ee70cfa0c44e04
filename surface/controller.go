// Package surface runs the gesture loop: every touch frame, timer callback and
// control request is handled on one goroutine.
package surface

import (
	"context"
	"sync/atomic"

	"github.com/mpvtouch/mpvtouch/clock"
	"github.com/mpvtouch/mpvtouch/config"
	"github.com/mpvtouch/mpvtouch/gesture"
	"github.com/mpvtouch/mpvtouch/log"
	"github.com/mpvtouch/mpvtouch/metrics"
	"github.com/mpvtouch/mpvtouch/overlay"
	"github.com/mpvtouch/mpvtouch/player"
	"github.com/mpvtouch/mpvtouch/seek"
	"github.com/mpvtouch/mpvtouch/speed"
	"github.com/mpvtouch/mpvtouch/tap"
	"github.com/mpvtouch/mpvtouch/touch"
)

const taskBuffer = 64

// Controller owns the touch pipeline.
type Controller struct {
	engine player.Engine
	bus    *overlay.Bus
	clock  clock.Clock

	router    *gesture.Router
	taps      *tap.Sequencer
	coalescer *seek.Coalescer
	speed     *speed.Controller
	collapser *overlay.Collapser

	tasks  chan func()
	done   chan struct{}
	locked atomic.Bool
}

// New wires the pipeline. Timers run on base and are delivered back to the loop.
func New(engine player.Engine, holder *config.Holder, bus *overlay.Bus, base clock.Clock) *Controller {
	c := &Controller{
		engine: engine,
		bus:    bus,
		tasks:  make(chan func(), taskBuffer),
		done:   make(chan struct{}),
	}
	c.clock = clock.Serialized(base, c.post)

	c.coalescer = seek.New(engine, c.clock, func() bool { return holder.Snapshot().PreciseSeeking })
	c.taps = tap.New(engine, c.coalescer, c.clock, bus.Publish)
	c.speed = speed.New(engine, bus.Publish)
	c.collapser = overlay.NewCollapser(c.clock, bus.Publish)
	c.router = gesture.NewRouter(gesture.Deps{
		Engine:    engine,
		Taps:      c.taps,
		Coalescer: c.coalescer,
		Speed:     c.speed,
		Clock:     c.clock,
		Publish:   bus.Publish,
		Settings:  holder.Snapshot,
		Locked:    c.locked.Load,
	})

	return c
}

// Run processes frames until ctx is cancelled or frames is closed.
func (c *Controller) Run(ctx context.Context, frames <-chan touch.Frame) error {
	defer close(c.done)
	defer c.safely(c.shutdown)

	c.safely(c.collapser.Touch)

	for {
		select {
		case <-ctx.Done():
			return nil
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			c.safely(func() { c.handle(f) })
		case task := <-c.tasks:
			c.safely(task)
		}
	}
}

// Locked reports whether the controls are locked.
func (c *Controller) Locked() bool {
	return c.locked.Load()
}

// SetLocked locks or unlocks the controls. Locking ends any gesture in progress
// and restores a boosted speed right away.
func (c *Controller) SetLocked(locked bool) {
	c.post(func() {
		if c.locked.Swap(locked) == locked {
			return
		}
		log.Infof("controls locked: %t", locked)
		if locked {
			c.router.Cancel()
			c.taps.Reset()
		}
	})
}

// FrameStep moves one frame forward or back and keeps the controls expanded.
func (c *Controller) FrameStep(direction int) {
	c.post(func() {
		if c.locked.Load() || direction == 0 {
			return
		}
		c.engine.FrameStep(direction)
		c.collapser.Touch()
	})
}

func (c *Controller) handle(f touch.Frame) {
	if c.router.Channel() == gesture.Idle && len(f.Points) > 0 {
		c.collapser.Touch()
	}
	c.router.Handle(f)
}

// post queues f on the loop. It gives up once the loop has exited.
func (c *Controller) post(f func()) {
	select {
	case c.tasks <- f:
	case <-c.done:
	}
}

// safely runs f, turning a panic into a logged reset of every gesture component.
func (c *Controller) safely(f func()) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecoveredPanicsTotal.Inc()
			log.Errorf("gesture loop recovered: %v", r)
			c.resetAll()
		}
	}()
	f()
}

// resetAll puts every component back into a neutral state. A second panic here is
// swallowed so the loop keeps running.
func (c *Controller) resetAll() {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("gesture reset failed: %v", r)
		}
	}()

	c.speed.Release()
	c.router.Reset()
	c.taps.Reset()
}

func (c *Controller) shutdown() {
	c.router.Reset()
	c.taps.Reset()
	c.coalescer.Flush()
	c.collapser.Stop()
}
