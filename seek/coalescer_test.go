package seek

import (
	"testing"
	"time"

	"github.com/mpvtouch/mpvtouch/clock"
	"github.com/mpvtouch/mpvtouch/player"
	"github.com/mpvtouch/mpvtouch/player/playertest"
	"github.com/samber/mo"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCoalescer(t *testing.T) {
	Convey("Given a coalescer over a playing one hour file", t, func() {
		engine := playertest.New()
		engine.Sticky = true
		c := clock.NewFake(time.Unix(0, 0))
		precise := false
		co := New(engine, c, func() bool { return precise })

		Convey("Requests inside one window become one command with the summed offset", func() {
			co.RequestRelative(10)
			c.Advance(20 * time.Millisecond)
			co.RequestRelative(10)
			c.Advance(59 * time.Millisecond)
			co.RequestRelative(-5)

			So(engine.Commands("seek"), ShouldBeEmpty)
			So(co.Pending(), ShouldEqual, 15)

			c.Advance(Debounce)
			seeks := engine.Commands("seek")
			So(len(seeks), ShouldEqual, 1)
			So(seeks[0].Value, ShouldEqual, 15)
			So(seeks[0].Mode, ShouldEqual, player.Relative)
			So(co.Pending(), ShouldEqual, 0)
		})

		Convey("Requests further apart than the window are sent separately", func() {
			for i := 0; i < 3; i++ {
				co.RequestRelative(10)
				c.Advance(400 * time.Millisecond)
			}
			So(len(engine.Commands("seek")), ShouldEqual, 3)
		})

		Convey("Offsets that cancel out send nothing", func() {
			co.RequestRelative(10)
			co.RequestRelative(-10)
			c.Advance(time.Second)
			So(engine.Commands("seek"), ShouldBeEmpty)
		})

		Convey("Precision", func() {
			Convey("long media uses keyframes", func() {
				So(co.Precision(), ShouldEqual, player.Keyframes)
			})
			Convey("short media is exact", func() {
				engine.SetDurationState(mo.Some(90.0))
				So(co.Precision(), ShouldEqual, player.Exact)
			})
			Convey("the preference forces exact", func() {
				precise = true
				So(co.Precision(), ShouldEqual, player.Exact)
			})
			Convey("unknown duration is not short", func() {
				engine.SetDurationState(mo.None[float64]())
				So(co.Precision(), ShouldEqual, player.Keyframes)
			})
			Convey("a degraded engine always gets keyframes", func() {
				precise = true
				engine.SetDegraded(true)
				So(co.Precision(), ShouldEqual, player.Keyframes)
			})
		})

		Convey("Relative seeks are clamped to the media", func() {
			engine.SetPositionState(mo.Some(3590.0))
			co.RequestRelative(30)
			c.Advance(Debounce)
			So(engine.Commands("seek")[0].Value, ShouldEqual, 10)

			Convey("and dropped when already at the edge", func() {
				engine.Reset()
				engine.SetPositionState(mo.Some(3600.0))
				co.RequestRelative(30)
				c.Advance(Debounce)
				So(engine.Commands("seek"), ShouldBeEmpty)
			})
		})

		Convey("Unknown position sends the offset unclamped", func() {
			engine.SetPositionState(mo.None[float64]())
			co.RequestRelative(-45)
			c.Advance(Debounce)
			So(engine.Commands("seek")[0].Value, ShouldEqual, -45)
		})

		Convey("An absolute seek discards the pending relative offset", func() {
			co.RequestRelative(10)
			So(co.RequestAbsolute(70), ShouldBeTrue)
			c.Advance(time.Second)

			seeks := engine.Commands("seek")
			So(len(seeks), ShouldEqual, 1)
			So(seeks[0].Value, ShouldEqual, 70)
			So(seeks[0].Mode, ShouldEqual, player.Absolute)
		})

		Convey("Absolute targets out of range are dropped", func() {
			So(co.RequestAbsolute(-1), ShouldBeFalse)
			So(co.RequestAbsolute(3601), ShouldBeFalse)
			So(engine.Commands("seek"), ShouldBeEmpty)

			Convey("but an unknown duration only rejects negatives", func() {
				engine.SetDurationState(mo.None[float64]())
				So(co.RequestAbsolute(5000), ShouldBeTrue)
			})
		})

		Convey("Flush sends immediately and cancels the timer", func() {
			co.RequestRelative(5)
			co.Flush()
			So(len(engine.Commands("seek")), ShouldEqual, 1)
			So(c.Pending(), ShouldEqual, 0)
		})
	})
}
