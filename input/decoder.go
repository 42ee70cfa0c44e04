// Package input turns touchscreen events and remote surface messages into touch frames.
package input

import (
	"errors"
	"sort"
	"time"

	"github.com/mpvtouch/mpvtouch/touch"
	"github.com/samber/lo"
)

// ErrNotTouchscreen is returned for devices without multitouch axes.
var ErrNotTouchscreen = errors.New("device is not a multitouch screen")

// Linux input event types and codes used by the multitouch protocol B.
const (
	evSyn = 0x00
	evAbs = 0x03

	synReport  = 0x00
	synDropped = 0x03

	absMtSlot       = 0x2f
	absMtPositionX  = 0x35
	absMtPositionY  = 0x36
	absMtTrackingID = 0x39
)

// Event mirrors struct input_event on 64-bit Linux.
type Event struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// Time converts the kernel timestamp.
func (e Event) Time() time.Time {
	return time.Unix(e.Sec, e.Usec*1000)
}

// Axis is the range of one absolute axis.
type Axis struct {
	Min, Max int32
}

func (a Axis) span() float64 {
	return float64(a.Max - a.Min)
}

type slot struct {
	id   int32
	x, y int32
}

// Decoder assembles protocol B slot updates into complete frames, one per SYN_REPORT.
type Decoder struct {
	X, Y Axis

	// Width and Height are the surface size frames are scaled to.
	// Zero means raw device units.
	Width, Height float64

	slots   map[int32]*slot
	current int32
	syncing bool
}

// NewDecoder creates a decoder for a device with the given axis ranges.
func NewDecoder(x, y Axis, width, height float64) *Decoder {
	return &Decoder{X: x, Y: y, Width: width, Height: height, slots: make(map[int32]*slot)}
}

// Feed consumes one event. It returns a frame when ev completes one.
func (d *Decoder) Feed(ev Event) (touch.Frame, bool) {
	switch ev.Type {
	case evSyn:
		switch ev.Code {
		case synDropped:
			// the kernel buffer overflowed; slot state is unreliable until the next report
			d.syncing = true
		case synReport:
			if d.syncing {
				d.syncing = false
				return touch.Frame{}, false
			}
			return d.frame(ev.Time()), true
		}
	case evAbs:
		if d.syncing {
			return touch.Frame{}, false
		}
		d.abs(ev.Code, ev.Value)
	}
	return touch.Frame{}, false
}

func (d *Decoder) abs(code uint16, value int32) {
	if code == absMtSlot {
		d.current = value
		return
	}

	s, ok := d.slots[d.current]
	if !ok {
		if code != absMtTrackingID || value < 0 {
			// updates for a slot that never started
			return
		}
		s = &slot{}
		d.slots[d.current] = s
	}

	switch code {
	case absMtTrackingID:
		if value < 0 {
			delete(d.slots, d.current)
			return
		}
		s.id = value
	case absMtPositionX:
		s.x = value
	case absMtPositionY:
		s.y = value
	}
}

func (d *Decoder) frame(at time.Time) touch.Frame {
	w, h := d.size()
	points := lo.MapToSlice(d.slots, func(_ int32, s *slot) touch.Point {
		return touch.Point{ID: int(s.id), X: d.scale(s.x, d.X, w), Y: d.scale(s.y, d.Y, h)}
	})
	sort.Slice(points, func(i, j int) bool { return points[i].ID < points[j].ID })
	return touch.Frame{Time: at, Width: w, Height: h, Points: points}
}

func (d *Decoder) size() (float64, float64) {
	w, h := d.Width, d.Height
	if w <= 0 {
		w = d.X.span()
	}
	if h <= 0 {
		h = d.Y.span()
	}
	return w, h
}

func (d *Decoder) scale(v int32, a Axis, size float64) float64 {
	if a.span() <= 0 {
		return float64(v)
	}
	return float64(v-a.Min) * size / a.span()
}
