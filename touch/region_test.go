package touch

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestClassifier(t *testing.T) {
	Convey("Given a 1000x500 surface with 35% seek regions", t, func() {
		c := NewClassifier(1000, 500, 0.35)

		Convey("Regions split at 350 and 650", func() {
			So(c.Region(Point{X: 349, Y: 250}), ShouldEqual, Left)
			So(c.Region(Point{X: 350, Y: 250}), ShouldEqual, Center)
			So(c.Region(Point{X: 650, Y: 250}), ShouldEqual, Center)
			So(c.Region(Point{X: 651, Y: 250}), ShouldEqual, Right)
		})

		Convey("The band covers the middle half of the height", func() {
			So(c.InBand(Point{X: 10, Y: 124}), ShouldBeFalse)
			So(c.InBand(Point{X: 10, Y: 125}), ShouldBeTrue)
			So(c.InBand(Point{X: 10, Y: 375}), ShouldBeTrue)
			So(c.InBand(Point{X: 10, Y: 376}), ShouldBeFalse)
		})

		Convey("Off-surface points belong to the nearest region", func() {
			So(c.Region(Point{X: -40, Y: 250}), ShouldEqual, Left)
			So(c.Region(Point{X: 4000, Y: -10}), ShouldEqual, Right)
			So(c.Clamp(Point{X: 4000, Y: -10}), ShouldResemble, Point{X: 1000, Y: 0})
		})

		Convey("Halves", func() {
			So(c.LeftHalf(Point{X: 499}), ShouldBeTrue)
			So(c.LeftHalf(Point{X: 500}), ShouldBeFalse)
		})
	})

	Convey("Region width is clamped", t, func() {
		So(NewClassifier(100, 100, 0.05).Fraction(), ShouldEqual, MinRegionWidth)
		So(NewClassifier(100, 100, 0.9).Fraction(), ShouldEqual, MaxRegionWidth)
	})

	Convey("A zero-sized surface classifies nothing", t, func() {
		So(NewClassifier(0, 0, 0.3).Region(Point{X: 1}), ShouldEqual, None)
	})

	Convey("Region directions", t, func() {
		So(Left.Direction(), ShouldEqual, -1)
		So(Right.Direction(), ShouldEqual, 1)
		So(Center.Direction(), ShouldEqual, 0)
		So(Right.String(), ShouldEqual, "right")
	})
}

func TestFrame(t *testing.T) {
	Convey("Frame", t, func() {
		f := Frame{Time: time.Unix(0, 0), Points: []Point{{ID: 4, X: 1}, {ID: 2, X: 2}}}

		p, ok := f.Primary()
		So(ok, ShouldBeTrue)
		So(p.ID, ShouldEqual, 2)

		_, ok = f.Find(4)
		So(ok, ShouldBeTrue)
		_, ok = f.Find(9)
		So(ok, ShouldBeFalse)

		_, ok = Frame{}.Primary()
		So(ok, ShouldBeFalse)
	})
}
