package style

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGauge(t *testing.T) {
	Convey("Gauge", t, func() {
		Convey("fills proportionally", func() {
			g := Gauge(10, 0.5, VolumeColor)
			So(strings.Count(g, "█"), ShouldEqual, 5)
			So(strings.Count(g, "░"), ShouldEqual, 5)
		})

		Convey("clamps out-of-range fractions", func() {
			So(strings.Count(Gauge(4, 2, VolumeColor), "█"), ShouldEqual, 4)
			So(strings.Count(Gauge(4, -1, VolumeColor), "░"), ShouldEqual, 4)
		})

		Convey("is empty without width", func() {
			So(Gauge(0, 1, VolumeColor), ShouldBeEmpty)
		})
	})
}
