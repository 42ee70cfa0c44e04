// Package seek batches rapid relative seek requests into single mpv commands.
package seek

import (
	"math"
	"time"

	"github.com/mpvtouch/mpvtouch/clock"
	"github.com/mpvtouch/mpvtouch/log"
	"github.com/mpvtouch/mpvtouch/metrics"
	"github.com/mpvtouch/mpvtouch/player"
)

const (
	// Debounce is the quiet period after the last relative request before it is flushed.
	Debounce = 60 * time.Millisecond

	// ExactBelow is the duration under which every seek is frame-exact.
	ExactBelow = 120.0

	epsilon = 1e-6
)

// Coalescer owns the pending relative offset. It must only be used from the
// gesture loop; its timer callbacks are expected to arrive there too.
type Coalescer struct {
	engine  player.Engine
	clock   clock.Clock
	precise func() bool

	pending float64
	timer   clock.Timer
}

// New creates a coalescer. precise reports the user's exact-seek preference and
// is consulted at flush time.
func New(engine player.Engine, c clock.Clock, precise func() bool) *Coalescer {
	if precise == nil {
		precise = func() bool { return false }
	}
	return &Coalescer{engine: engine, clock: c, precise: precise}
}

// Pending is the offset not yet sent to mpv.
func (c *Coalescer) Pending() float64 {
	return c.pending
}

// RequestRelative adds offset to the pending seek and restarts the debounce window.
func (c *Coalescer) RequestRelative(offset float64) {
	metrics.SeekRequestsTotal.WithLabelValues("relative").Inc()

	c.pending += offset
	c.stopTimer()
	c.timer = c.clock.AfterFunc(Debounce, func() {
		c.timer = nil
		c.Flush()
	})
}

// Flush sends the pending offset now, if there is any.
func (c *Coalescer) Flush() {
	c.stopTimer()

	offset := c.pending
	c.pending = 0
	if math.Abs(offset) < epsilon {
		return
	}

	pos, posKnown := c.engine.Position().Get()
	dur, durKnown := c.engine.Duration().Get()
	if posKnown && durKnown {
		target := min(max(pos+offset, 0), dur)
		offset = target - pos
		if math.Abs(offset) < epsilon {
			log.Debugf("relative seek from %.2f clamps to nothing", pos)
			metrics.SeeksDroppedTotal.Inc()
			return
		}
	}

	c.issue(offset, player.Relative)
}

// RequestAbsolute cancels any pending relative seek, discarding its offset,
// and seeks to position immediately. Targets outside [0, duration] are dropped.
// It reports whether a command was issued.
func (c *Coalescer) RequestAbsolute(position float64) bool {
	metrics.SeekRequestsTotal.WithLabelValues("absolute").Inc()

	c.Cancel()

	if position < 0 || math.IsNaN(position) {
		metrics.SeeksDroppedTotal.Inc()
		return false
	}
	if dur, ok := c.engine.Duration().Get(); ok && position > dur {
		metrics.SeeksDroppedTotal.Inc()
		return false
	}

	c.issue(position, player.Absolute)
	return true
}

// Cancel drops the pending offset without sending it.
func (c *Coalescer) Cancel() {
	c.stopTimer()
	c.pending = 0
}

// Precision picks exact seeking for short media or when the user asked for it.
// Degraded engines and unknown durations always get keyframes.
func (c *Coalescer) Precision() player.Precision {
	if c.engine.Degraded() {
		return player.Keyframes
	}
	if c.precise() {
		return player.Exact
	}
	if dur, ok := c.engine.Duration().Get(); ok && dur < ExactBelow {
		return player.Exact
	}
	return player.Keyframes
}

func (c *Coalescer) issue(value float64, mode player.SeekMode) {
	precision := c.Precision()
	c.engine.Seek(value, mode, precision)

	m, p := "relative", "keyframes"
	if mode == player.Absolute {
		m = "absolute"
	}
	if precision == player.Exact {
		p = "exact"
	}
	metrics.SeekCommandsTotal.WithLabelValues(m, p).Inc()
}

func (c *Coalescer) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
