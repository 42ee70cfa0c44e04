package overlay

import (
	"testing"
	"time"

	"github.com/mpvtouch/mpvtouch/clock"
	"github.com/mpvtouch/mpvtouch/touch"
	"github.com/tidwall/gjson"

	. "github.com/smartystreets/goconvey/convey"
)

func TestEncode(t *testing.T) {
	Convey("Encode", t, func() {
		Convey("Seek carries its region and payload", func() {
			raw, err := Encode(Seek{Region: touch.Right, Amount: 30, Forward: true, Visible: true})
			So(err, ShouldBeNil)

			msg := gjson.ParseBytes(raw)
			So(msg.Get("type").String(), ShouldEqual, "seek")
			So(msg.Get("region").String(), ShouldEqual, "right")
			So(msg.Get("data.amount").Float(), ShouldEqual, 30)
			So(msg.Get("data.forward").Bool(), ShouldBeTrue)
		})

		Convey("Payload-free variants are bare", func() {
			raw, err := Encode(Collapse{})
			So(err, ShouldBeNil)
			So(string(raw), ShouldEqual, `{"type":"collapse"}`)
		})

		Convey("Sliders name their kind", func() {
			raw, _ := Encode(Slider{Slider: VolumeSlider, Visible: true, Value: 110, Boosted: true})
			So(gjson.GetBytes(raw, "data.slider").String(), ShouldEqual, "volume")
			So(gjson.GetBytes(raw, "data.boosted").Bool(), ShouldBeTrue)
		})
	})
}

func TestBus(t *testing.T) {
	Convey("Bus", t, func() {
		bus := NewBus()
		ch, cancel := bus.Subscribe()

		Convey("delivers to subscribers", func() {
			bus.Publish(Zoom{Value: 1, Visible: true})
			So(<-ch, ShouldResemble, Zoom{Value: 1, Visible: true})
		})

		Convey("never blocks on a full subscriber", func() {
			for i := 0; i < subscriberBuffer+10; i++ {
				bus.Pulse()
			}
			So(bus.Dropped(), ShouldEqual, 10)
		})

		Convey("stops after cancel", func() {
			cancel()
			cancel()
			bus.Publish(Controls{})
			_, open := <-ch
			So(open, ShouldBeFalse)
		})
	})
}

func TestCollapser(t *testing.T) {
	Convey("Collapser", t, func() {
		c := clock.NewFake(time.Unix(0, 0))
		var got []Update
		collapser := NewCollapser(c, func(u Update) { got = append(got, u) })

		Convey("fires after ten quiet seconds", func() {
			collapser.Touch()
			c.Advance(9 * time.Second)
			So(got, ShouldBeEmpty)
			c.Advance(time.Second)
			So(got, ShouldResemble, []Update{Collapse{}})
		})

		Convey("each touch restarts the countdown", func() {
			collapser.Touch()
			c.Advance(8 * time.Second)
			collapser.Touch()
			c.Advance(8 * time.Second)
			So(got, ShouldBeEmpty)
			So(c.Pending(), ShouldEqual, 1)
			c.Advance(2 * time.Second)
			So(len(got), ShouldEqual, 1)
		})

		Convey("stop cancels", func() {
			collapser.Touch()
			collapser.Stop()
			c.Advance(time.Minute)
			So(got, ShouldBeEmpty)
		})
	})
}
