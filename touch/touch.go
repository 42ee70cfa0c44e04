// Package touch holds the raw touch model and the screen region classifier.
package touch

import "time"

// Point is one pointer in contact with the surface.
type Point struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Frame is the complete set of pointers down at one instant.
// An empty Points slice means every finger has lifted.
type Frame struct {
	Time   time.Time
	Width  float64
	Height float64
	Points []Point
}

// Primary returns the lowest-id pointer, which drives single-pointer gestures.
func (f Frame) Primary() (Point, bool) {
	if len(f.Points) == 0 {
		return Point{}, false
	}
	p := f.Points[0]
	for _, q := range f.Points[1:] {
		if q.ID < p.ID {
			p = q
		}
	}
	return p, true
}

// Find returns the pointer with the given id.
func (f Frame) Find(id int) (Point, bool) {
	for _, p := range f.Points {
		if p.ID == id {
			return p, true
		}
	}
	return Point{}, false
}
