package gesture

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/mpvtouch/mpvtouch/clock"
	"github.com/mpvtouch/mpvtouch/config"
	"github.com/mpvtouch/mpvtouch/overlay"
	"github.com/mpvtouch/mpvtouch/player"
	"github.com/mpvtouch/mpvtouch/player/playertest"
	"github.com/mpvtouch/mpvtouch/seek"
	"github.com/mpvtouch/mpvtouch/speed"
	"github.com/mpvtouch/mpvtouch/tap"
	"github.com/mpvtouch/mpvtouch/touch"
	"github.com/samber/lo"
	"github.com/samber/mo"

	. "github.com/smartystreets/goconvey/convey"
)

const (
	surfaceW = 1000.0
	surfaceH = 600.0
)

type rig struct {
	engine  *playertest.Engine
	clock   *clock.Fake
	g       *config.Gestures
	locked  bool
	updates []overlay.Update
	router  *Router
	taps    *tap.Sequencer
}

func newRig() *rig {
	r := &rig{
		engine: playertest.New(),
		clock:  clock.NewFake(time.Unix(0, 0)),
		g:      config.DefaultGestures(),
	}
	publish := func(u overlay.Update) { r.updates = append(r.updates, u) }
	co := seek.New(r.engine, r.clock, func() bool { return r.g.PreciseSeeking })
	r.taps = tap.New(r.engine, co, r.clock, publish)

	r.router = NewRouter(Deps{
		Engine:    r.engine,
		Taps:      r.taps,
		Coalescer: co,
		Speed:     speed.New(r.engine, publish),
		Clock:     r.clock,
		Publish:   publish,
		Settings:  func() *config.Gestures { return r.g },
		Locked:    func() bool { return r.locked },
	})
	return r
}

func (r *rig) frame(points ...touch.Point) {
	r.router.Handle(touch.Frame{Time: r.clock.Now(), Width: surfaceW, Height: surfaceH, Points: points})
	r.clock.Advance(16 * time.Millisecond)
}

func (r *rig) lift() {
	r.frame()
}

// drag moves pointer 0 from (x0, y0) to (x1, y1) in n steps.
func (r *rig) drag(x0, y0, x1, y1 float64, n int) {
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		r.frame(pt(0, x0+(x1-x0)*t, y0+(y1-y0)*t))
	}
}

func (r *rig) controls() int {
	return lo.CountBy(r.updates, func(u overlay.Update) bool {
		_, ok := u.(overlay.Controls)
		return ok
	})
}

func pt(id int, x, y float64) touch.Point {
	return touch.Point{ID: id, X: x, Y: y}
}

func TestRouterLocking(t *testing.T) {
	Convey("Given a router", t, func() {
		r := newRig()

		Convey("Paths that stay inside the slop never lock a drag", func() {
			rnd := rand.New(rand.NewSource(42))
			for i := 0; i < 200; i++ {
				x, y := 100+rnd.Float64()*800, 100+rnd.Float64()*400
				r.frame(pt(0, x, y))
				steps := rnd.Intn(8)
				for s := 0; s < steps; s++ {
					r.frame(pt(0, x+(rnd.Float64()*2-1)*9.9, y+(rnd.Float64()*2-1)*9.9))
					So(r.router.Channel(), ShouldEqual, Tapping)
				}
				r.lift()
				So(r.router.Channel(), ShouldEqual, Idle)
				r.clock.Advance(time.Second)
			}
			So(r.engine.Commands("volume", "brightness", "zoom"), ShouldBeEmpty)
		})

		Convey("A dominant horizontal move locks seeking", func() {
			r.drag(500, 300, 540, 305, 4)
			So(r.router.Channel(), ShouldEqual, DraggingHorizontalSeek)
		})

		Convey("A dominant vertical move locks a slider", func() {
			r.drag(800, 300, 803, 250, 4)
			So(r.router.Channel(), ShouldEqual, DraggingVerticalVolume)
		})

		Convey("A diagonal move stays unlocked and is not a tap", func() {
			r.drag(500, 300, 515, 312, 3)
			So(r.router.Channel(), ShouldEqual, Tapping)

			r.lift()
			r.clock.Advance(time.Second)
			So(r.controls(), ShouldEqual, 0)
			So(r.engine.Commands(), ShouldBeEmpty)

			Convey("until a later sample breaks the tie", func() {
				r.drag(500, 300, 515, 312, 3)
				r.frame(pt(0, 560, 312))
				So(r.router.Channel(), ShouldEqual, DraggingHorizontalSeek)
			})
		})

		Convey("A disabled direction keeps the gesture from locking", func() {
			r.g.HorizontalSeek = false
			r.drag(500, 300, 700, 300, 5)
			So(r.router.Channel(), ShouldEqual, Tapping)

			r.lift()
			r.clock.Advance(time.Second)
			So(r.engine.Commands(), ShouldBeEmpty)
			So(r.controls(), ShouldEqual, 0)
		})

		Convey("The snapshot is fixed for the whole gesture", func() {
			r.frame(pt(0, 500, 300))
			r.g = config.DefaultGestures()
			r.g.HorizontalSeek = false
			r.drag(500, 300, 600, 300, 3)
			So(r.router.Channel(), ShouldEqual, DraggingHorizontalSeek)
		})
	})
}

func TestRouterTaps(t *testing.T) {
	Convey("Given a router", t, func() {
		r := newRig()
		r.engine.Sticky = true

		Convey("Two quick taps on the right seek forward", func() {
			r.frame(pt(0, 950, 300))
			r.lift()
			r.frame(pt(0, 952, 301))
			r.lift()
			r.clock.Advance(time.Second)

			seeks := r.engine.Commands("seek")
			So(len(seeks), ShouldEqual, 1)
			So(seeks[0].Value, ShouldEqual, 10)
		})

		Convey("Three double taps at 0, 400 and 800ms seek 10s three times", func() {
			start := r.clock.Now()
			tapAt := func(ms int) {
				r.clock.Advance(start.Add(time.Duration(ms) * time.Millisecond).Sub(r.clock.Now()))
				r.frame(pt(0, 950, 300))
				r.lift()
			}
			for _, ms := range []int{0, 100, 400, 500, 800, 900} {
				tapAt(ms)
			}
			r.clock.Advance(2 * time.Second)

			seeks := r.engine.Commands("seek")
			So(len(seeks), ShouldEqual, 3)
			for _, s := range seeks {
				So(s.Value, ShouldEqual, 10)
			}
			So(r.taps.Memory().Cumulative, ShouldEqual, 30)
			So(r.controls(), ShouldEqual, 0)
		})

		Convey("Off-surface taps belong to the nearest region", func() {
			r.frame(pt(0, -40, 300))
			r.lift()
			r.frame(pt(0, -35, 300))
			r.lift()
			r.clock.Advance(time.Second)

			So(r.engine.Commands("seek")[0].Value, ShouldEqual, -10)
		})

		Convey("A tap outside the band toggles the controls", func() {
			r.frame(pt(0, 950, 20))
			r.lift()
			So(r.controls(), ShouldEqual, 1)
		})

		Convey("A locked surface ignores gestures but answers taps with the controls", func() {
			r.locked = true
			r.frame(pt(0, 950, 300))
			r.clock.Advance(time.Second)
			r.lift()
			So(r.controls(), ShouldEqual, 1)
			So(r.engine.Commands(), ShouldBeEmpty)

			r.drag(500, 300, 800, 300, 5)
			r.lift()
			So(r.controls(), ShouldEqual, 1)
			So(r.engine.Commands(), ShouldBeEmpty)
		})
	})
}

func TestRouterSeekDrag(t *testing.T) {
	Convey("Given playback at 50s", t, func() {
		r := newRig()
		r.g.SeekDragSensitivity = 0.1
		r.engine.SetPositionState(mo.Some(50.0))

		Convey("Dragging to 70s issues one absolute seek and resumes", func() {
			r.drag(300, 300, 500, 300, 20)
			So(r.engine.Paused().MustGet(), ShouldBeTrue)
			So(r.engine.Commands("seek"), ShouldBeEmpty)

			r.lift()

			seeks := r.engine.Commands("seek")
			So(len(seeks), ShouldEqual, 1)
			So(seeks[0].Mode, ShouldEqual, player.Absolute)
			So(seeks[0].Value, ShouldAlmostEqual, 70, 1e-9)
			So(r.engine.Paused().MustGet(), ShouldBeFalse)
		})

		Convey("A drag that started paused stays paused", func() {
			r.engine.SetPausedState(mo.Some(true))
			r.drag(300, 300, 500, 300, 20)
			r.lift()

			So(r.engine.Commands("pause"), ShouldBeEmpty)
			So(r.engine.Paused().MustGet(), ShouldBeTrue)
			So(len(r.engine.Commands("seek")), ShouldEqual, 1)
		})

		Convey("The preview is clamped to the media", func() {
			r.drag(300, 300, 0, 300, 10)
			r.frame(pt(0, -2000, 300))
			r.lift()

			So(r.engine.Commands("seek")[0].Value, ShouldAlmostEqual, 20, 1e-9)
		})

		Convey("Unknown position leaves the gesture unlocked", func() {
			r.engine.SetPositionState(mo.None[float64]())
			r.drag(300, 300, 500, 300, 10)
			So(r.router.Channel(), ShouldEqual, Tapping)
			r.lift()
			So(r.engine.Commands(), ShouldBeEmpty)
		})

		Convey("The preview shows the target time", func() {
			r.drag(300, 300, 500, 300, 20)
			last := lo.Filter(r.updates, func(u overlay.Update, _ int) bool {
				_, ok := u.(overlay.Seek)
				return ok
			})
			s := last[len(last)-1].(overlay.Seek)
			So(s.Text, ShouldEqual, "1:10")
			So(s.Amount, ShouldAlmostEqual, 20, 1e-9)
		})
	})
}

func TestRouterSliders(t *testing.T) {
	Convey("Given volume 50 and brightness 0.5", t, func() {
		r := newRig()

		Convey("The right half drives volume", func() {
			r.drag(800, 450, 800, 150, 10)
			So(r.router.Channel(), ShouldEqual, DraggingVerticalVolume)
			So(r.engine.Volume().MustGet(), ShouldEqual, 100)

			r.lift()
			last := r.updates[len(r.updates)-1].(overlay.Slider)
			So(last.Visible, ShouldBeFalse)
		})

		Convey("The left half drives brightness", func() {
			r.drag(200, 300, 200, 450, 10)
			So(r.router.Channel(), ShouldEqual, DraggingVerticalBrightness)
			So(r.engine.Brightness().MustGet(), ShouldAlmostEqual, 0.25, 1e-9)
		})

		Convey("Brightness is written only when the level changes", func() {
			r.drag(200, 300, 200, 450, 10)
			sent := len(r.engine.Commands("brightness"))
			So(sent, ShouldBeGreaterThan, 0)

			r.frame(pt(0, 200, 450))
			r.frame(pt(0, 200, 450))
			So(len(r.engine.Commands("brightness")), ShouldEqual, sent)

			r.drag(200, 450, 200, 900, 10)
			levels := r.engine.Commands("brightness")
			for i := 1; i < len(levels); i++ {
				So(levels[i].Value, ShouldNotEqual, levels[i-1].Value)
			}
			So(levels[len(levels)-1].Value, ShouldEqual, 0)
		})

		Convey("Swapping puts volume on the left", func() {
			r.g.SwapVolumeBrightness = true
			r.drag(200, 300, 200, 250, 5)
			So(r.router.Channel(), ShouldEqual, DraggingVerticalVolume)
		})

		Convey("With only one feature enabled it is used everywhere", func() {
			r.g.Brightness = false
			r.drag(200, 300, 200, 250, 5)
			So(r.router.Channel(), ShouldEqual, DraggingVerticalVolume)
		})

		Convey("Volume stops at 100 when the drag starts below it", func() {
			r.drag(800, 590, 800, 0, 20)
			So(r.engine.Volume().MustGet(), ShouldEqual, 100)
		})

		Convey("Boost opens when the drag starts at 100", func() {
			r.engine.SetVolumeState(mo.Some(100))
			r.drag(800, 590, 800, 0, 20)
			So(r.engine.Volume().MustGet(), ShouldEqual, 100+r.g.VolumeBoostCap)

			sliders := lo.Filter(r.updates, func(u overlay.Update, _ int) bool {
				s, ok := u.(overlay.Slider)
				return ok && s.Boosted
			})
			So(sliders, ShouldNotBeEmpty)

			Convey("unless there is no boost cap", func() {
				r2 := newRig()
				r2.g.VolumeBoostCap = 0
				r2.engine.SetVolumeState(mo.Some(100))
				r2.drag(800, 590, 800, 0, 20)
				So(r2.engine.Volume().MustGet(), ShouldEqual, 100)
			})
		})

		Convey("Unknown volume skips the gesture", func() {
			r.engine.SetVolumeState(mo.None[int]())
			r.drag(800, 450, 800, 150, 10)
			So(r.router.Channel(), ShouldEqual, Tapping)
			So(r.engine.Commands("volume"), ShouldBeEmpty)
		})
	})
}

func TestRouterPinch(t *testing.T) {
	Convey("Given zoom 0", t, func() {
		r := newRig()

		pinch := func(from, to float64, n int) {
			for i := 0; i <= n; i++ {
				d := from + (to-from)*float64(i)/float64(n)
				r.frame(pt(0, 500-d/2, 300), pt(1, 500+d/2, 300))
			}
		}

		Convey("Spreading from 100px to 150px zooms to ln(1.5)*1.5", func() {
			pinch(100, 150, 10)
			So(r.router.Channel(), ShouldEqual, PinchZoom)
			So(r.engine.Zoom().MustGet(), ShouldAlmostEqual, math.Log(1.5)*1.5, 1e-9)
			So(r.engine.Zoom().MustGet(), ShouldAlmostEqual, 0.608, 1e-3)
		})

		Convey("Changes under the noise floor are ignored", func() {
			pinch(100, 109, 3)
			So(r.engine.Commands("zoom"), ShouldBeEmpty)
		})

		Convey("Zoom is clamped", func() {
			pinch(100, 900, 10)
			So(r.engine.Zoom().MustGet(), ShouldEqual, MaxZoom)

			r.lift()
			pinch(900, 20, 10)
			So(r.engine.Zoom().MustGet(), ShouldEqual, MinZoom)
		})

		Convey("Dropping to one finger ends the gesture", func() {
			pinch(100, 150, 5)
			r.frame(pt(0, 400, 300))
			r.drag(400, 300, 900, 300, 5)
			r.lift()

			So(r.engine.Commands("seek", "pause"), ShouldBeEmpty)
			So(r.router.Channel(), ShouldEqual, Idle)
		})

		Convey("A second finger preempts a seek drag and resumes playback", func() {
			r.drag(300, 300, 500, 300, 10)
			So(r.engine.Paused().MustGet(), ShouldBeTrue)

			r.frame(pt(0, 500, 300), pt(1, 600, 300))
			So(r.router.Channel(), ShouldEqual, PinchZoom)
			So(r.engine.Paused().MustGet(), ShouldBeFalse)

			r.lift()
			So(r.engine.Commands("seek"), ShouldBeEmpty)
		})

		Convey("Disabled pinch terminates the gesture", func() {
			r.g.PinchZoom = false
			pinch(100, 300, 5)
			r.lift()
			So(r.engine.Commands("zoom"), ShouldBeEmpty)
		})
	})
}

func TestRouterHold(t *testing.T) {
	Convey("Given playback at 1x", t, func() {
		r := newRig()

		hold := func(x, y float64) {
			r.frame(pt(0, x, y))
			r.clock.Advance(r.g.LongPressTimeout)
		}

		Convey("A long press boosts speed until release", func() {
			hold(500, 300)
			So(r.engine.Speed().MustGet(), ShouldEqual, 2.0)

			r.lift()
			So(r.engine.Speed().MustGet(), ShouldEqual, 1.0)
			r.clock.Advance(time.Second)
			So(r.controls(), ShouldEqual, 0)
		})

		Convey("Dragging sideways during a hold picks a speed", func() {
			hold(500, 300)
			r.drag(500, 300, 500+surfaceW/3, 300, 30)
			So(r.router.Channel(), ShouldEqual, DraggingSpeedControl)
			So(r.engine.Speed().MustGet(), ShouldEqual, 4.0)
			So(r.engine.Commands("seek", "pause"), ShouldBeEmpty)

			r.lift()
			So(r.engine.Speed().MustGet(), ShouldEqual, 1.0)
		})

		Convey("Simple mode keeps the multiplier while dragging", func() {
			r.g.DynamicSpeedOverlay = false
			hold(500, 300)
			r.drag(500, 300, 900, 300, 10)
			So(r.router.Channel(), ShouldEqual, Tapping)
			So(r.engine.Speed().MustGet(), ShouldEqual, 2.0)

			r.lift()
			So(r.engine.Speed().MustGet(), ShouldEqual, 1.0)
		})

		Convey("A second finger restores the speed", func() {
			hold(500, 300)
			r.drag(500, 300, 800, 300, 10)
			r.frame(pt(0, 800, 300), pt(1, 900, 300))
			So(r.engine.Speed().MustGet(), ShouldEqual, 1.0)
		})

		Convey("Moving before the timeout cancels the hold", func() {
			r.drag(500, 300, 700, 300, 5)
			r.clock.Advance(time.Second)
			So(r.engine.Commands("speed"), ShouldBeEmpty)
		})

		Convey("Cancel restores the speed mid-gesture", func() {
			hold(500, 300)
			r.router.Cancel()
			So(r.engine.Speed().MustGet(), ShouldEqual, 1.0)

			r.drag(500, 300, 900, 300, 5)
			r.lift()
			So(r.engine.Commands("seek"), ShouldBeEmpty)
		})
	})
}

func TestTimestamp(t *testing.T) {
	Convey("Timestamp", t, func() {
		So(Timestamp(0), ShouldEqual, "0:00")
		So(Timestamp(70), ShouldEqual, "1:10")
		So(Timestamp(3725), ShouldEqual, "1:02:05")
		So(Timestamp(-3), ShouldEqual, "0:00")
	})
}

func TestChannel(t *testing.T) {
	Convey("Channel names", t, func() {
		So(DraggingSpeedControl.String(), ShouldEqual, "speed")
		So(DraggingVerticalVolume.Vertical(), ShouldBeTrue)
		So(PinchZoom.Vertical(), ShouldBeFalse)
	})
}
