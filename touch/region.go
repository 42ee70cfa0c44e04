package touch

import "github.com/mpvtouch/mpvtouch/util"

// Region is a horizontal zone of the surface.
type Region int

const (
	None Region = iota
	Left
	Center
	Right
)

func (r Region) String() string {
	switch r {
	case Left:
		return "left"
	case Center:
		return "center"
	case Right:
		return "right"
	default:
		return "none"
	}
}

// Direction is the seek direction associated with a region: -1, 0 or +1.
func (r Region) Direction() int {
	switch r {
	case Left:
		return -1
	case Right:
		return 1
	default:
		return 0
	}
}

const (
	MinRegionWidth = 0.20
	MaxRegionWidth = 0.45

	bandTop    = 0.25
	bandBottom = 0.75
)

// Classifier hit-tests points against the left/center/right regions and the vertical band.
type Classifier struct {
	Width, Height float64
	frac          float64
}

// NewClassifier builds a classifier for a w×h surface. frac is clamped to [0.20, 0.45].
func NewClassifier(w, h, frac float64) Classifier {
	return Classifier{Width: w, Height: h, frac: util.Clamp(frac, MinRegionWidth, MaxRegionWidth)}
}

// Fraction is the effective seek region width.
func (c Classifier) Fraction() float64 {
	return c.frac
}

// Clamp pulls a point back onto the surface.
func (c Classifier) Clamp(p Point) Point {
	p.X = util.Clamp(p.X, 0, c.Width)
	p.Y = util.Clamp(p.Y, 0, c.Height)
	return p
}

// Region classifies p, treating off-surface coordinates as the nearest edge.
func (c Classifier) Region(p Point) Region {
	if c.Width <= 0 {
		return None
	}
	p = c.Clamp(p)
	switch {
	case p.X < c.Width*c.frac:
		return Left
	case p.X > c.Width*(1-c.frac):
		return Right
	default:
		return Center
	}
}

// InBand reports whether p lies in the vertical band where taps are recognised.
func (c Classifier) InBand(p Point) bool {
	p = c.Clamp(p)
	return p.Y >= c.Height*bandTop && p.Y <= c.Height*bandBottom
}

// LeftHalf reports whether p is left of the vertical centre line.
func (c Classifier) LeftHalf(p Point) bool {
	return c.Clamp(p).X < c.Width/2
}
