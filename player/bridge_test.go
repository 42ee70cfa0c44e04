package player

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

type stubBacklight struct {
	level float64
	set   chan float64
}

func (s *stubBacklight) Brightness() (float64, error) { return s.level, nil }
func (s *stubBacklight) SetBrightness(level float64) error {
	s.set <- level
	return nil
}

// slowBacklight takes a few milliseconds per write, like a sysfs backlight behind i2c.
type slowBacklight struct {
	mu     sync.Mutex
	writes []float64
}

func (s *slowBacklight) Brightness() (float64, error) { return 0, nil }
func (s *slowBacklight) SetBrightness(level float64) error {
	s.mu.Lock()
	n := len(s.writes)
	s.mu.Unlock()

	time.Sleep(time.Duration(n%3+1) * time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, level)
	return nil
}

func (s *slowBacklight) last() (float64, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.writes) == 0 {
		return -1, 0
	}
	return s.writes[len(s.writes)-1], len(s.writes)
}

func TestBacklightWrites(t *testing.T) {
	Convey("Given a slow backlight", t, func() {
		light := &slowBacklight{}
		bridge := NewBridge(filepath.Join(t.TempDir(), "missing.sock"), light)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			_ = bridge.Run(ctx)
			close(done)
		}()
		Reset(func() {
			cancel()
			<-done
		})

		Convey("A burst of levels ends on the newest one", func() {
			for i := 1; i <= 20; i++ {
				bridge.SetBrightness(float64(i) / 20)
			}

			So(eventually(func() bool { level, _ := light.last(); return level == 1 }), ShouldBeTrue)
			time.Sleep(20 * time.Millisecond)

			level, n := light.last()
			So(level, ShouldEqual, 1)
			So(n, ShouldBeLessThanOrEqualTo, 20)
			So(bridge.Brightness().MustGet(), ShouldEqual, 1)
		})

		Convey("Repeating a level does not rewrite it", func() {
			bridge.SetBrightness(0.5)
			So(eventually(func() bool { level, _ := light.last(); return level == 0.5 }), ShouldBeTrue)

			bridge.SetBrightness(0.5)
			time.Sleep(20 * time.Millisecond)
			_, n := light.last()
			So(n, ShouldEqual, 1)
		})
	})
}

func TestCell(t *testing.T) {
	Convey("Cell", t, func() {
		var c Cell[float64]
		So(c.Get().IsPresent(), ShouldBeFalse)

		c.Set(0)
		So(c.Get().IsPresent(), ShouldBeTrue)
		So(c.Get().MustGet(), ShouldEqual, 0)

		c.Set(12.5)
		So(c.Get().MustGet(), ShouldEqual, 12.5)

		c.Clear()
		So(c.Get().IsPresent(), ShouldBeFalse)
	})
}

func TestFlags(t *testing.T) {
	Convey("Seek flags", t, func() {
		So(Flags(Relative, Exact), ShouldEqual, "relative+exact")
		So(Flags(Relative, Keyframes), ShouldEqual, "relative+keyframes")
		So(Flags(Absolute, Exact), ShouldEqual, "absolute+exact")
		So(Flags(Absolute, Keyframes), ShouldEqual, "absolute+keyframes")
	})
}

func TestBridge(t *testing.T) {
	Convey("Given a bridge attached to mpv", t, func() {
		mpv := newFakeMPV(t)
		light := &stubBacklight{level: 0.4, set: make(chan float64, 4)}
		bridge := NewBridge(mpv.socket, light)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			_ = bridge.Run(ctx)
			close(done)
		}()
		Reset(func() {
			cancel()
			<-done
		})

		So(eventually(func() bool { return bridge.client.Load() != nil }), ShouldBeTrue)

		Convey("It observes every mirrored property", func() {
			So(len(mpv.named("observe_property")), ShouldEqual, len(observed))
		})

		Convey("Unknown values are distinct from zero", func() {
			So(bridge.Position().IsPresent(), ShouldBeFalse)
			So(bridge.Duration().IsPresent(), ShouldBeFalse)
			So(bridge.SubtitleActive(), ShouldBeFalse)
		})

		Convey("Property changes land in cells", func() {
			mpv.emit(map[string]any{"event": "property-change", "id": 2, "name": "time-pos", "data": 42.5})
			mpv.emit(map[string]any{"event": "property-change", "id": 1, "name": "pause", "data": false})
			mpv.emit(map[string]any{"event": "property-change", "id": 5, "name": "volume", "data": 87.6})
			mpv.emit(map[string]any{"event": "property-change", "id": 8, "name": "sid", "data": 2})
			mpv.emit(map[string]any{"event": "property-change", "id": 9, "name": "chapter-list", "data": []map[string]any{
				{"title": "Intro", "time": 0.0},
				{"title": "Part 1", "time": 90.0},
			}})

			So(eventually(func() bool { return bridge.Chapters().IsPresent() }), ShouldBeTrue)
			So(bridge.Position().MustGet(), ShouldEqual, 42.5)
			So(bridge.Paused().MustGet(), ShouldBeFalse)
			So(bridge.Volume().MustGet(), ShouldEqual, 88)
			So(bridge.SubtitleActive(), ShouldBeTrue)
			So(bridge.Chapters().MustGet()[1].Title, ShouldEqual, "Part 1")

			Convey("and a null payload makes them unknown again", func() {
				mpv.emit(map[string]any{"event": "property-change", "id": 2, "name": "time-pos", "data": nil})
				So(eventually(func() bool { return !bridge.Position().IsPresent() }), ShouldBeTrue)
			})

			Convey("and sid=false means no subtitle", func() {
				mpv.emit(map[string]any{"event": "property-change", "id": 8, "name": "sid", "data": false})
				So(eventually(func() bool { return !bridge.SubtitleActive() }), ShouldBeTrue)
			})

			Convey("and the snapshot reports boost above 100", func() {
				mpv.emit(map[string]any{"event": "property-change", "id": 5, "name": "volume", "data": 115})
				So(eventually(func() bool { return bridge.Volume().OrElse(0) == 115 }), ShouldBeTrue)
				So(bridge.Snapshot().Boost.MustGet(), ShouldEqual, 15)
			})
		})

		Convey("Commands are forwarded in order", func() {
			bridge.Seek(10, Relative, Exact)
			bridge.SetSpeed(2)
			bridge.SubSeek(-1)
			bridge.FrameStep(-1)
			bridge.Keypress("")

			So(eventually(func() bool { return len(mpv.named("frame-back-step")) == 1 }), ShouldBeTrue)
			So(mpv.named("seek")[0], ShouldResemble, []any{"seek", 10.0, "relative+exact"})
			So(mpv.named("set_property")[0], ShouldResemble, []any{"set_property", "speed", 2.0})
			So(mpv.named("sub-seek")[0], ShouldResemble, []any{"sub-seek", -1.0})
			So(mpv.named("keypress"), ShouldBeEmpty)
		})

		Convey("Seek arguments keep their flags", func() {
			bridge.Seek(70, Absolute, Keyframes)
			So(eventually(func() bool { return len(mpv.named("seek")) == 1 }), ShouldBeTrue)

			seek := mpv.named("seek")[0]
			So(seek[1], ShouldEqual, 70.0)
			So(seek[2], ShouldEqual, "absolute+keyframes")
		})

		Convey("Volume is clamped to the boost ceiling", func() {
			bridge.SetVolumeBoostCap(20)
			bridge.SetVolume(500)
			bridge.SetVolume(-3)

			So(eventually(func() bool {
				for _, c := range mpv.named("set_property") {
					if c[1] == "volume" && c[2] == 0.0 {
						return true
					}
				}
				return false
			}), ShouldBeTrue)

			var volumes []any
			for _, c := range mpv.named("set_property") {
				if c[1] == "volume" {
					volumes = append(volumes, c[2])
				}
			}
			So(volumes, ShouldResemble, []any{120.0, 0.0})
		})

		Convey("A rejected seek degrades to keyframes with unknown duration", func() {
			mpv.emit(map[string]any{"event": "property-change", "id": 3, "name": "duration", "data": 3600})
			So(eventually(func() bool { return bridge.Duration().IsPresent() }), ShouldBeTrue)

			mpv.rejectCommand("seek", "error running command")
			bridge.Seek(5, Relative, Exact)

			So(eventually(bridge.Degraded), ShouldBeTrue)
			So(bridge.Duration().IsPresent(), ShouldBeFalse)

			Convey("later duration reports stay unknown", func() {
				mpv.emit(map[string]any{"event": "property-change", "id": 3, "name": "duration", "data": 3600})
				mpv.emit(map[string]any{"event": "property-change", "id": 2, "name": "time-pos", "data": 1.0})
				So(eventually(func() bool { return bridge.Position().IsPresent() }), ShouldBeTrue)
				So(bridge.Duration().IsPresent(), ShouldBeFalse)
			})

			Convey("until the next file loads", func() {
				mpv.emit(map[string]any{"event": "file-loaded"})
				So(eventually(func() bool { return !bridge.Degraded() }), ShouldBeTrue)
			})
		})

		Convey("Brightness goes to the backlight", func() {
			So(bridge.Brightness().MustGet(), ShouldEqual, 0.4)

			bridge.SetBrightness(1.7)
			So(<-light.set, ShouldEqual, 1.0)
			So(bridge.Brightness().MustGet(), ShouldEqual, 1.0)
		})

		Convey("Losing the connection clears state", func() {
			mpv.emit(map[string]any{"event": "property-change", "id": 4, "name": "speed", "data": 1.5})
			So(eventually(func() bool { return bridge.Speed().IsPresent() }), ShouldBeTrue)

			mpv.dropClients()
			So(eventually(func() bool { return !bridge.Speed().IsPresent() }), ShouldBeTrue)

			Convey("and commands issued meanwhile do not block", func() {
				start := time.Now()
				for i := 0; i < 100; i++ {
					bridge.SetSpeed(1)
				}
				So(time.Since(start), ShouldBeLessThan, 100*time.Millisecond)
			})
		})
	})
}

func TestProbe(t *testing.T) {
	Convey("Probe", t, func() {
		mpv := newFakeMPV(t)
		mpv.reply("get_property", "mpv 0.38.0")

		version, err := Probe(context.Background(), mpv.socket)
		So(err, ShouldBeNil)
		So(version, ShouldEqual, "mpv 0.38.0")

		_, err = Probe(context.Background(), mpv.socket+".missing")
		So(err, ShouldNotBeNil)
	})
}

func TestSanitizeMediaTarget(t *testing.T) {
	Convey("sanitizeMediaTarget", t, func() {
		_, err := sanitizeMediaTarget("--script=evil.lua")
		So(err, ShouldNotBeNil)

		_, err = sanitizeMediaTarget("file:///etc/passwd")
		So(err, ShouldNotBeNil)

		_, err = sanitizeMediaTarget("  ")
		So(err, ShouldNotBeNil)

		target, err := sanitizeMediaTarget("https://example.com/v.mkv")
		So(err, ShouldBeNil)
		So(target, ShouldEqual, "https://example.com/v.mkv")

		target, err = sanitizeMediaTarget("./movies/../movies/a.mkv")
		So(err, ShouldBeNil)
		So(target, ShouldEqual, "movies/a.mkv")
	})
}
