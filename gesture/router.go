package gesture

import (
	"fmt"
	"math"

	"github.com/mpvtouch/mpvtouch/clock"
	"github.com/mpvtouch/mpvtouch/config"
	"github.com/mpvtouch/mpvtouch/log"
	"github.com/mpvtouch/mpvtouch/metrics"
	"github.com/mpvtouch/mpvtouch/overlay"
	"github.com/mpvtouch/mpvtouch/player"
	"github.com/mpvtouch/mpvtouch/seek"
	"github.com/mpvtouch/mpvtouch/speed"
	"github.com/mpvtouch/mpvtouch/tap"
	"github.com/mpvtouch/mpvtouch/touch"
	"github.com/mpvtouch/mpvtouch/util"
	"github.com/samber/lo"
)

const (
	// Slop is the travel from the down point below which nothing locks.
	Slop = 10.0

	// LockRatio is how much one axis must dominate the other to lock a drag.
	LockRatio = 1.5

	// PinchFloor is the distance change a pinch ignores as noise.
	PinchFloor = 10.0

	pinchGain = 1.5
)

// Zoom bounds, in mpv video-zoom units (log2 of the scale).
const (
	// MinZoom shrinks the video to a quarter of its size.
	MinZoom = -2.0
	// MaxZoom enlarges it eight times.
	MaxZoom = 3.0
)

// Deps are the collaborators a Router drives.
type Deps struct {
	Engine    player.Engine
	Taps      *tap.Sequencer
	Coalescer *seek.Coalescer
	Speed     *speed.Controller
	Clock     clock.Clock
	Publish   func(overlay.Update)

	// Settings returns the current configuration snapshot. It is called once per gesture.
	Settings func() *config.Gestures

	// Locked reports whether the on-screen controls are locked.
	Locked func() bool
}

// Router is the top level dispatcher. Feed it every frame from one goroutine.
type Router struct {
	Deps

	g          *config.Gestures
	classifier touch.Classifier
	channel    Channel
	down       touch.Point
	pointer    int
	moved      bool
	terminated bool
	ignoring   bool
	longPress  clock.Timer
	holding    bool

	seekStart    float64
	seekTarget   float64
	pausedByDrag bool

	sliderStart float64
	boostable   bool
	lastVolume  int
	lastLevel   float64

	pinchIDs  [2]int
	pinchD0   float64
	zoomStart float64
	pinchLive bool
	lastZoom  float64
}

// NewRouter creates an idle router.
func NewRouter(d Deps) *Router {
	if d.Locked == nil {
		d.Locked = func() bool { return false }
	}
	return &Router{Deps: d}
}

// Channel is the channel of the gesture in progress, Idle between gestures.
func (r *Router) Channel() Channel {
	return r.channel
}

// Handle consumes one frame.
func (r *Router) Handle(f touch.Frame) {
	n := len(f.Points)

	if r.channel == Idle {
		if n == 0 {
			return
		}
		r.begin(f)
		return
	}

	if n == 0 {
		r.finish()
		return
	}
	if r.terminated {
		return
	}
	if r.ignoring {
		// a locked surface only answers plain taps
		if p, ok := f.Primary(); ok && (n > 1 || util.Hypot(r.down.X, r.down.Y, p.X, p.Y) > Slop) {
			r.moved = true
		}
		return
	}

	switch {
	case n >= 2 && r.channel != PinchZoom:
		r.preempt()
		r.beginPinch(f)
	case n == 1 && r.channel == PinchZoom:
		r.endPinch()
		r.terminated = true
	case r.channel == PinchZoom:
		r.pinch(f)
	default:
		p, ok := f.Find(r.pointer)
		if !ok {
			p, _ = f.Primary()
		}
		r.move(r.classifier.Clamp(p))
	}
}

// Cancel undoes every side effect of the gesture in progress. Remaining frames
// are ignored until all fingers lift.
func (r *Router) Cancel() {
	if r.channel == Idle || r.terminated {
		return
	}
	if r.channel == PinchZoom {
		r.endPinch()
	} else {
		r.preempt()
	}
	r.terminated = true
}

// Reset drops the gesture in progress without waiting for fingers to lift.
func (r *Router) Reset() {
	r.Cancel()
	r.clear()
}

func (r *Router) begin(f touch.Frame) {
	r.clear()
	r.g = r.Settings()
	r.classifier = touch.NewClassifier(f.Width, f.Height, r.g.SeekRegionWidth)
	r.channel = Tapping

	p, _ := f.Primary()
	r.pointer = p.ID
	r.down = r.classifier.Clamp(p)

	if r.Locked() {
		r.ignoring = true
		return
	}

	if len(f.Points) >= 2 {
		r.beginPinch(f)
		return
	}

	r.longPress = r.Clock.AfterFunc(r.g.LongPressTimeout, r.onLongPress)
}

func (r *Router) clear() {
	r.stopLongPress()
	*r = Router{Deps: r.Deps}
}

func (r *Router) finish() {
	r.stopLongPress()

	if r.ignoring {
		if !r.moved {
			r.Publish(overlay.Controls{})
		}
	} else if !r.terminated {
		switch r.channel {
		case Tapping:
			if r.holding {
				r.Speed.Release()
			} else if !r.moved {
				r.Taps.Tap(tap.Tap{
					Region: r.classifier.Region(r.down),
					InBand: r.classifier.InBand(r.down),
				}, r.g)
			}
		case DraggingHorizontalSeek:
			r.endSeek()
		case DraggingVerticalVolume, DraggingVerticalBrightness:
			r.endSlider()
		case DraggingSpeedControl:
			r.Speed.Release()
		case PinchZoom:
			r.endPinch()
		}
	}

	metrics.GesturesTotal.WithLabelValues(r.channel.String()).Inc()
	r.clear()
}

// preempt revokes everything that assumed a single pointer.
func (r *Router) preempt() {
	r.stopLongPress()

	if r.holding || r.channel == DraggingSpeedControl {
		r.Speed.Release()
		r.holding = false
	}

	switch r.channel {
	case DraggingHorizontalSeek:
		r.Publish(overlay.Seek{Region: r.classifier.Region(r.down), Visible: false})
		r.resume()
	case DraggingVerticalVolume, DraggingVerticalBrightness:
		r.endSlider()
	}
}

func (r *Router) onLongPress() {
	r.longPress = nil
	if r.channel != Tapping || r.moved || r.terminated || r.ignoring {
		return
	}
	r.holding = r.Speed.Activate(r.g, r.Locked(), r.classifier.Width)
}

func (r *Router) stopLongPress() {
	if r.longPress != nil {
		r.longPress.Stop()
		r.longPress = nil
	}
}

func (r *Router) move(p touch.Point) {
	dx, dy := p.X-r.down.X, p.Y-r.down.Y

	switch r.channel {
	case Tapping:
		r.lock(dx, dy)
	case DraggingHorizontalSeek:
		r.previewSeek(dx)
	case DraggingVerticalVolume, DraggingVerticalBrightness:
		r.slide(dy)
	case DraggingSpeedControl:
		r.Speed.Drag(dx)
	}
}

// lock picks a drag channel once the pointer leaves the slop and one axis dominates.
func (r *Router) lock(dx, dy float64) {
	ax, ay := util.Abs(dx), util.Abs(dy)
	if ax <= Slop && ay <= Slop {
		return
	}

	if !r.holding {
		r.stopLongPress()
	}
	r.moved = true

	switch {
	case ax > ay*LockRatio:
		if r.holding {
			if r.Speed.Dynamic() {
				r.channel = DraggingSpeedControl
				r.Speed.Drag(dx)
			}
			return
		}
		if r.g.HorizontalSeek && r.beginSeek() {
			r.channel = DraggingHorizontalSeek
			r.previewSeek(dx)
		}
	case ay > ax*LockRatio:
		if r.holding {
			return
		}
		if ch, ok := r.verticalChannel(); ok && r.beginSlider(ch) {
			r.channel = ch
			r.slide(dy)
		}
	}
}

// Horizontal seek

func (r *Router) beginSeek() bool {
	pos, ok := r.Engine.Position().Get()
	if !ok {
		log.Debug("seek drag ignored, position unknown")
		return false
	}

	r.seekStart, r.seekTarget = pos, pos
	if paused, known := r.Engine.Paused().Get(); known && !paused {
		r.Engine.SetPaused(true)
		r.pausedByDrag = true
	}
	return true
}

func (r *Router) previewSeek(dx float64) {
	target := math.Max(0, r.seekStart+dx*r.g.SeekDragSensitivity)
	if dur, ok := r.Engine.Duration().Get(); ok {
		target = math.Min(target, dur)
	}
	r.seekTarget = target

	text := Timestamp(target)
	if chapter := player.ChapterCrossing(r.Engine.Chapters(), r.seekStart, target); chapter != "" {
		text = fmt.Sprintf("%s (%s)", text, chapter)
	}

	amount := target - r.seekStart
	r.Publish(overlay.Seek{
		Region:  r.classifier.Region(r.down),
		Amount:  amount,
		Forward: amount >= 0,
		Text:    text,
		Visible: true,
	})
}

func (r *Router) endSeek() {
	if math.Abs(r.seekTarget-r.seekStart) > 1e-3 {
		r.Coalescer.RequestAbsolute(r.seekTarget)
	}
	r.Publish(overlay.Seek{Region: r.classifier.Region(r.down), Visible: false})
	r.resume()
}

func (r *Router) resume() {
	if r.pausedByDrag {
		r.Engine.SetPaused(false)
		r.pausedByDrag = false
	}
}

// Vertical sliders

func (r *Router) verticalChannel() (Channel, bool) {
	switch {
	case r.g.Volume && r.g.Brightness:
		left := r.classifier.LeftHalf(r.down)
		if r.g.SwapVolumeBrightness {
			left = !left
		}
		return lo.Ternary(left, DraggingVerticalBrightness, DraggingVerticalVolume), true
	case r.g.Volume:
		return DraggingVerticalVolume, true
	case r.g.Brightness:
		return DraggingVerticalBrightness, true
	default:
		return Idle, false
	}
}

func (r *Router) beginSlider(ch Channel) bool {
	if ch == DraggingVerticalVolume {
		v, ok := r.Engine.Volume().Get()
		if !ok {
			log.Debug("volume drag ignored, volume unknown")
			return false
		}
		r.sliderStart = float64(v)
		r.lastVolume = v
		// the boost range opens only for a drag that starts at full volume
		r.boostable = v >= player.BaseVolume && r.g.VolumeBoostCap > 0
		return true
	}

	b, ok := r.Engine.Brightness().Get()
	if !ok {
		log.Debug("brightness drag ignored, brightness unknown")
		return false
	}
	r.sliderStart = b
	r.lastLevel = b
	return true
}

func (r *Router) slide(dy float64) {
	if r.classifier.Height <= 0 {
		return
	}
	// up is positive; one surface height covers the full range
	delta := -dy / r.classifier.Height * r.g.VerticalSensitivity

	if r.channel == DraggingVerticalVolume {
		ceiling := float64(player.BaseVolume)
		if r.boostable {
			ceiling += float64(r.g.VolumeBoostCap)
		}
		volume := int(math.Round(util.Clamp(r.sliderStart+delta*player.BaseVolume, 0, ceiling)))
		if volume != r.lastVolume {
			r.lastVolume = volume
			r.Engine.SetVolume(volume)
		}
		r.Publish(overlay.Slider{
			Slider:  overlay.VolumeSlider,
			Visible: true,
			Value:   float64(volume),
			Boosted: volume > player.BaseVolume,
		})
		return
	}

	level := util.Clamp(r.sliderStart+delta, 0, 1)
	if level != r.lastLevel {
		r.lastLevel = level
		r.Engine.SetBrightness(level)
	}
	r.Publish(overlay.Slider{Slider: overlay.BrightnessSlider, Visible: true, Value: level})
}

func (r *Router) endSlider() {
	kind := lo.Ternary(r.channel == DraggingVerticalVolume, overlay.VolumeSlider, overlay.BrightnessSlider)
	r.Publish(overlay.Slider{Slider: kind, Visible: false})
}

// Pinch

func (r *Router) beginPinch(f touch.Frame) {
	r.channel = PinchZoom

	zoom, ok := r.Engine.Zoom().Get()
	if !r.g.PinchZoom || !ok {
		r.terminated = true
		return
	}

	a, b := pair(f)
	r.pinchIDs = [2]int{a.ID, b.ID}
	r.pinchD0 = util.Hypot(a.X, a.Y, b.X, b.Y)
	r.zoomStart, r.lastZoom = zoom, zoom
	r.pinchLive = false
	r.Publish(overlay.Zoom{Value: zoom, Visible: true})
}

func (r *Router) pinch(f touch.Frame) {
	a, okA := f.Find(r.pinchIDs[0])
	b, okB := f.Find(r.pinchIDs[1])
	if !okA || !okB {
		// a finger was swapped for another in one frame
		r.endPinch()
		r.terminated = true
		return
	}

	d := util.Hypot(a.X, a.Y, b.X, b.Y)
	if !r.pinchLive {
		if math.Abs(d-r.pinchD0) < PinchFloor {
			return
		}
		r.pinchLive = true
	}
	if r.pinchD0 <= 0 || d <= 0 {
		return
	}

	zoom := util.Clamp(r.zoomStart+math.Log(d/r.pinchD0)*pinchGain, MinZoom, MaxZoom)
	if zoom == r.lastZoom {
		return
	}
	r.lastZoom = zoom
	r.Engine.SetZoom(zoom)
	r.Publish(overlay.Zoom{Value: zoom, Visible: true})
}

func (r *Router) endPinch() {
	r.Publish(overlay.Zoom{Value: r.lastZoom, Visible: false})
}

// pair returns the two lowest-id pointers of f.
func pair(f touch.Frame) (touch.Point, touch.Point) {
	first, _ := f.Primary()
	rest := lo.Filter(f.Points, func(p touch.Point, _ int) bool { return p.ID != first.ID })
	second := lo.MinBy(rest, func(a, b touch.Point) bool { return a.ID < b.ID })
	return first, second
}

// Timestamp formats seconds as m:ss or h:mm:ss.
func Timestamp(seconds float64) string {
	total := int(math.Round(math.Max(0, seconds)))
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
