package config

import (
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mpvtouch/mpvtouch/filesystem"
	"github.com/mpvtouch/mpvtouch/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			So(Setup(), ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("gesture.left.double_tap"), ShouldEqual, "gesture_left_double_tap")
		})

		Convey("Field.Env carries the application prefix", func() {
			f := Default[key.GestureHoldMultiplier]
			So(f.Env(), ShouldEqual, "MPVTOUCH_GESTURE_HOLD_MULTIPLIER")
		})
	})
}

func TestGestures(t *testing.T) {
	Convey("Gestures snapshot", t, func() {
		Convey("Defaults", func() {
			g := DefaultGestures()
			So(g.Right.DoubleTap, ShouldEqual, ActionSeek)
			So(g.Center.DoubleTap, ShouldEqual, ActionPlayPause)
			So(g.SeekRegionWidth, ShouldEqual, 0.35)
			So(g.DoubleTapSeekDuration, ShouldEqual, 10)
			So(g.DoubleTapTimeout, ShouldEqual, 300*time.Millisecond)
			So(g.LongPressTimeout, ShouldEqual, 500*time.Millisecond)
			So(g.VolumeBoostCap, ShouldEqual, 30)
		})

		Convey("Load follows viper overrides", func() {
			_ = Setup()
			viper.Set(key.GestureLeftDoubleTap, "sub_seek")
			viper.Set(key.GestureHoldMultiplier, 3)
			defer viper.Set(key.GestureLeftDoubleTap, "seek")
			defer viper.Set(key.GestureHoldMultiplier, 2.0)

			g := Load()
			So(g.Left.DoubleTap, ShouldEqual, ActionSubSeek)
			So(g.HoldMultiplier, ShouldEqual, 3.0)
		})

		Convey("Unknown actions degrade to none", func() {
			_ = Setup()
			viper.Set(key.GestureRightDoubleTap, "explode")
			defer viper.Set(key.GestureRightDoubleTap, "seek")

			So(Load().Right.DoubleTap, ShouldEqual, ActionNone)
		})

		Convey("ParseAction", func() {
			a, err := ParseAction("play_pause")
			So(err, ShouldBeNil)
			So(a, ShouldEqual, ActionPlayPause)
			So(a.Seeks(), ShouldBeFalse)
			So(ActionSubSeek.Seeks(), ShouldBeTrue)

			_, err = ParseAction("")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestHolder(t *testing.T) {
	Convey("Holder", t, func() {
		initial := DefaultGestures()
		h := NewHolder(initial)
		So(h.Snapshot(), ShouldEqual, initial)

		var seen *Gestures
		h.OnReload(func(g *Gestures) { seen = g })

		Convey("Store swaps the snapshot and notifies", func() {
			next := DefaultGestures()
			next.HoldMultiplier = 4
			h.Store(next)

			So(h.Snapshot().HoldMultiplier, ShouldEqual, 4)
			So(seen, ShouldEqual, next)
			So(initial.HoldMultiplier, ShouldEqual, 2.0)
		})

		Convey("Only writes trigger a reload", func() {
			h.handle(fsnotify.Event{Name: "mpvtouch.toml", Op: fsnotify.Chmod})
			So(seen, ShouldBeNil)

			h.handle(fsnotify.Event{Name: "mpvtouch.toml", Op: fsnotify.Write})
			So(seen, ShouldNotBeNil)
			So(h.Snapshot(), ShouldNotEqual, initial)
		})
	})
}
