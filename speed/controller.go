// Package speed implements hold to fast-forward, with an optional drag across a fixed speed ladder.
package speed

import (
	"math"

	"github.com/mpvtouch/mpvtouch/config"
	"github.com/mpvtouch/mpvtouch/log"
	"github.com/mpvtouch/mpvtouch/overlay"
	"github.com/mpvtouch/mpvtouch/player"
	"github.com/mpvtouch/mpvtouch/util"
)

// Ladder is the ordered set of speeds reachable by dragging.
var Ladder = []float64{0.25, 0.5, 1.0, 1.5, 2.0, 2.5, 3.0, 4.0}

const (
	// RevealThreshold is the sideways travel that switches a dynamic hold to its interactive overlay.
	RevealThreshold = 10.0

	// dragGain is how many ladder spans one full surface width covers.
	dragGain = 3.5
)

// Nearest returns the ladder index closest to v. Ties go to the lower index.
func Nearest(v float64) int {
	best := 0
	for i, s := range Ladder {
		if util.Abs(s-v) < util.Abs(Ladder[best]-v) {
			best = i
		}
	}
	return best
}

// Controller runs one hold gesture at a time. It is only used from the gesture loop.
type Controller struct {
	engine  player.Engine
	publish func(overlay.Update)

	active      bool
	dynamic     bool
	interactive bool
	original    float64
	start       int
	index       int
	width       float64
}

// New creates an idle controller.
func New(engine player.Engine, publish func(overlay.Update)) *Controller {
	return &Controller{engine: engine, publish: publish}
}

// Activate starts a hold if every precondition is met and reports whether it did.
// width is the surface width used to scale drags.
func (c *Controller) Activate(g *config.Gestures, locked bool, width float64) bool {
	if c.active || locked || g.HoldMultiplier == 0 {
		return false
	}

	paused, ok := c.engine.Paused().Get()
	if !ok || paused {
		return false
	}
	original, ok := c.engine.Speed().Get()
	if !ok {
		log.Debug("hold ignored, speed unknown")
		return false
	}

	c.active = true
	c.dynamic = g.DynamicSpeedOverlay
	c.interactive = false
	c.original = original
	c.width = width
	c.start = Nearest(g.HoldMultiplier)
	c.index = c.start

	c.engine.SetSpeed(g.HoldMultiplier)
	c.publish(overlay.Haptic{})
	c.publish(overlay.Speed{Value: g.HoldMultiplier, Visible: true})
	return true
}

// Active reports whether a hold is in progress.
func (c *Controller) Active() bool {
	return c.active
}

// Dynamic reports whether the active hold accepts drags.
func (c *Controller) Dynamic() bool {
	return c.active && c.dynamic
}

// Index is the last applied ladder index.
func (c *Controller) Index() int {
	return c.index
}

// Original is the speed that Release restores.
func (c *Controller) Original() float64 {
	return c.original
}

// Drag maps the horizontal distance from the hold point onto the ladder.
// Speed and haptics only change when the resolved index does.
func (c *Controller) Drag(dx float64) {
	if !c.Dynamic() || c.width <= 0 {
		return
	}

	if !c.interactive {
		if util.Abs(dx) <= RevealThreshold {
			return
		}
		c.interactive = true
		c.publish(overlay.Speed{Value: Ladder[c.index], Interactive: true, Visible: true})
	}

	steps := dx / c.width * float64(len(Ladder)-1) * dragGain
	index := util.Clamp(c.start+int(math.Round(steps)), 0, len(Ladder)-1)
	if index == c.index {
		return
	}

	c.index = index
	c.engine.SetSpeed(Ladder[index])
	c.publish(overlay.Haptic{})
	c.publish(overlay.Speed{Value: Ladder[index], Interactive: true, Visible: true})
}

// Release restores the speed captured at activation. Every exit path must call it.
func (c *Controller) Release() {
	if !c.active {
		return
	}

	c.engine.SetSpeed(c.original)
	c.publish(overlay.Speed{Value: c.original, Visible: false})

	c.active = false
	c.dynamic = false
	c.interactive = false
}
