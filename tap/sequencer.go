// Package tap turns completed taps into single taps, double taps and seek bursts.
package tap

import (
	"time"

	"github.com/mpvtouch/mpvtouch/clock"
	"github.com/mpvtouch/mpvtouch/config"
	"github.com/mpvtouch/mpvtouch/log"
	"github.com/mpvtouch/mpvtouch/metrics"
	"github.com/mpvtouch/mpvtouch/overlay"
	"github.com/mpvtouch/mpvtouch/player"
	"github.com/mpvtouch/mpvtouch/seek"
	"github.com/mpvtouch/mpvtouch/touch"
	"github.com/mpvtouch/mpvtouch/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

const (
	// ContinuationWindow is how long after a burst tap another tap in the same region still extends it.
	ContinuationWindow = 650 * time.Millisecond

	// settleDelay gives mpv time to land on a subtitle cue before the position is sampled.
	settleDelay = 50 * time.Millisecond
)

// Tap is a gesture that lifted without ever locking a drag channel.
type Tap struct {
	Region touch.Region
	InBand bool
}

// Memory is what a seek burst carries from one tap to the next.
type Memory struct {
	Region     touch.Region
	At         time.Time
	Cumulative float64
	Forward    bool
}

// Sequencer owns tap timing. Like the coalescer it lives on the gesture loop.
type Sequencer struct {
	engine    player.Engine
	coalescer *seek.Coalescer
	clock     clock.Clock
	publish   func(overlay.Update)

	// first tap of a possible double tap
	pending   touch.Region
	pendingAt time.Time
	single    clock.Timer

	memory      Memory
	burstAction config.Action
	burstStart  mo.Option[float64]
	settle      clock.Timer
	fade        clock.Timer
}

// New creates a sequencer that seeks through coalescer and pushes overlay updates to publish.
func New(engine player.Engine, coalescer *seek.Coalescer, c clock.Clock, publish func(overlay.Update)) *Sequencer {
	return &Sequencer{
		engine:    engine,
		coalescer: coalescer,
		clock:     c,
		publish:   publish,
	}
}

// Memory returns the current burst state.
func (s *Sequencer) Memory() Memory {
	return s.memory
}

// Tap feeds one completed tap. g is the snapshot the gesture started with.
func (s *Sequencer) Tap(t Tap, g *config.Gestures) {
	now := s.clock.Now()

	if !t.InBand || t.Region == touch.None {
		s.cancelSingle()
		metrics.TapsTotal.WithLabelValues("outside", t.Region.String()).Inc()
		s.publish(overlay.Controls{})
		return
	}

	mapping := Mapping(g, t.Region)
	if mapping.SingleTap {
		s.cancelSingle()
		metrics.TapsTotal.WithLabelValues("instant", t.Region.String()).Inc()
		s.perform(t.Region, mapping, g, now)
		return
	}

	if s.single != nil && s.pending == t.Region && now.Sub(s.pendingAt) < g.DoubleTapTimeout {
		s.cancelSingle()
		s.double(t.Region, g, lo.Ternary(s.blocking(t.Region, now), "burst", "double"))
		return
	}

	// a first tap in another region supersedes the old one
	s.cancelSingle()
	s.pending, s.pendingAt = t.Region, now
	region := t.Region
	blocked := s.blocking(region, now)
	s.single = s.clock.AfterFunc(g.DoubleTapTimeout, func() {
		s.single = nil
		s.pending = touch.None
		if blocked {
			metrics.TapsTotal.WithLabelValues("blocked", region.String()).Inc()
			return
		}
		metrics.TapsTotal.WithLabelValues("single", region.String()).Inc()
		s.publish(overlay.Controls{})
	})
}

// DoubleTap runs the double tap action of region r.
func (s *Sequencer) DoubleTap(r touch.Region, g *config.Gestures) {
	s.cancelSingle()
	s.double(r, g, "double")
}

// Reset forgets every pending tap and the burst, and hides the seek indicator.
func (s *Sequencer) Reset() {
	s.cancelSingle()
	stop(&s.settle)
	if s.fade != nil {
		stop(&s.fade)
		s.publish(overlay.Seek{Region: s.memory.Region, Visible: false})
	}
	s.memory = Memory{}
	s.burstAction = config.ActionNone
	s.burstStart = mo.None[float64]()
}

// Mapping returns the tap configuration of region r.
func Mapping(g *config.Gestures, r touch.Region) config.RegionGesture {
	switch r {
	case touch.Left:
		return g.Left
	case touch.Right:
		return g.Right
	case touch.Center:
		return g.Center
	default:
		return config.RegionGesture{DoubleTap: config.ActionNone}
	}
}

func (s *Sequencer) double(r touch.Region, g *config.Gestures, kind string) {
	metrics.TapsTotal.WithLabelValues(kind, r.String()).Inc()
	s.perform(r, Mapping(g, r), g, s.clock.Now())
}

// blocking reports whether r is inside a live seek burst. A lone tap there
// does not toggle the controls; a completed double tap continues the burst.
func (s *Sequencer) blocking(r touch.Region, now time.Time) bool {
	return s.burstAction.Seeks() && s.continues(r, now)
}

func (s *Sequencer) continues(r touch.Region, now time.Time) bool {
	return s.memory.Region == r && !s.memory.At.IsZero() && now.Sub(s.memory.At) < ContinuationWindow
}

func (s *Sequencer) perform(r touch.Region, m config.RegionGesture, g *config.Gestures, now time.Time) {
	switch m.DoubleTap {
	case config.ActionSeek, config.ActionSubSeek:
		s.seek(r, m.DoubleTap, g, now)
	case config.ActionPlayPause:
		paused, ok := s.engine.Paused().Get()
		if !ok {
			log.Debug("play/pause tap ignored, pause state unknown")
			return
		}
		s.engine.SetPaused(!paused)
	case config.ActionCustom:
		s.engine.Keypress(m.CustomKey)
	case config.ActionNone:
	}
}

func (s *Sequencer) seek(r touch.Region, action config.Action, g *config.Gestures, now time.Time) {
	dir := r.Direction()
	if dir == 0 {
		log.Debugf("%s region has no seek direction", r)
		return
	}

	if !s.continues(r, now) {
		s.memory.Cumulative = 0
		s.burstStart = s.engine.Position()
		stop(&s.settle)
	}
	if s.memory.Cumulative != 0 && util.Sign(s.memory.Cumulative) != dir {
		s.memory.Cumulative = 0
	}

	s.memory.Region = r
	s.memory.At = now
	s.memory.Forward = dir > 0
	s.burstAction = action

	if action == config.ActionSubSeek && s.engine.SubtitleActive() {
		s.engine.SubSeek(dir)
		stop(&s.settle)
		s.settle = s.clock.AfterFunc(settleDelay, func() {
			s.settle = nil
			start, ok := s.burstStart.Get()
			pos, known := s.engine.Position().Get()
			if ok && known {
				s.memory.Cumulative = pos - start
			}
			s.show(r)
		})
	} else {
		delta := float64(dir) * g.DoubleTapSeekDuration
		s.memory.Cumulative += delta
		s.coalescer.RequestRelative(delta)
		s.show(r)
	}

	stop(&s.fade)
	s.fade = s.clock.AfterFunc(ContinuationWindow, func() {
		s.fade = nil
		s.publish(overlay.Seek{Region: r, Amount: s.memory.Cumulative, Forward: s.memory.Forward, Visible: false})
	})
}

func (s *Sequencer) show(r touch.Region) {
	u := overlay.Seek{
		Region:  r,
		Amount:  s.memory.Cumulative,
		Forward: s.memory.Forward,
		Visible: true,
	}
	if start, ok := s.burstStart.Get(); ok {
		u.Text = player.ChapterCrossing(s.engine.Chapters(), start, start+s.memory.Cumulative)
	}
	s.publish(u)
}

func (s *Sequencer) cancelSingle() {
	stop(&s.single)
	s.pending = touch.None
}

func stop(t *clock.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}
