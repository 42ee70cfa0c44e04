package overlay

import (
	"time"

	"github.com/mpvtouch/mpvtouch/clock"
)

// InactivityTimeout is how long the controls stay expanded without interaction.
const InactivityTimeout = 10 * time.Second

// Collapser publishes Collapse once no interaction has happened for InactivityTimeout.
// Only one timer is armed at a time; every Touch replaces it.
type Collapser struct {
	clock   clock.Clock
	publish func(Update)
	timer   clock.Timer
}

// NewCollapser wires a collapser to a clock and a publish function.
func NewCollapser(c clock.Clock, publish func(Update)) *Collapser {
	return &Collapser{clock: c, publish: publish}
}

// Touch restarts the inactivity countdown.
func (c *Collapser) Touch() {
	c.Stop()
	c.timer = c.clock.AfterFunc(InactivityTimeout, func() {
		c.timer = nil
		c.publish(Collapse{})
	})
}

// Stop cancels the countdown.
func (c *Collapser) Stop() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
