// Package playertest provides an in-memory player.Engine for gesture tests.
package playertest

import (
	"fmt"
	"sync"

	"github.com/mpvtouch/mpvtouch/player"
	"github.com/samber/mo"
)

// Command is one recorded engine call.
type Command struct {
	Name  string
	Value float64
	Mode  player.SeekMode
	Prec  player.Precision
	Text  string
}

func (c Command) String() string {
	switch c.Name {
	case "seek":
		return fmt.Sprintf("seek %g %s", c.Value, player.Flags(c.Mode, c.Prec))
	case "keypress":
		return "keypress " + c.Text
	default:
		return fmt.Sprintf("%s %g", c.Name, c.Value)
	}
}

// Engine records every command and applies the obvious state change,
// so a speed set is visible through Speed() immediately.
type Engine struct {
	mu sync.Mutex

	paused     mo.Option[bool]
	position   mo.Option[float64]
	duration   mo.Option[float64]
	speed      mo.Option[float64]
	volume     mo.Option[int]
	zoom       mo.Option[float64]
	brightness mo.Option[float64]
	chapters   mo.Option[[]player.Chapter]
	subtitle   bool
	degraded   bool

	// Sticky keeps seeks from moving Position; useful for asserting sums.
	Sticky bool

	commands []Command
}

// New returns an engine that is playing at 1x, 100s into a one hour file.
func New() *Engine {
	return &Engine{
		paused:     mo.Some(false),
		position:   mo.Some(100.0),
		duration:   mo.Some(3600.0),
		speed:      mo.Some(1.0),
		volume:     mo.Some(50),
		zoom:       mo.Some(0.0),
		brightness: mo.Some(0.5),
	}
}

func (e *Engine) Paused() mo.Option[bool]      { e.mu.Lock(); defer e.mu.Unlock(); return e.paused }
func (e *Engine) Position() mo.Option[float64] { e.mu.Lock(); defer e.mu.Unlock(); return e.position }
func (e *Engine) Duration() mo.Option[float64] { e.mu.Lock(); defer e.mu.Unlock(); return e.duration }
func (e *Engine) Speed() mo.Option[float64]    { e.mu.Lock(); defer e.mu.Unlock(); return e.speed }
func (e *Engine) Volume() mo.Option[int]       { e.mu.Lock(); defer e.mu.Unlock(); return e.volume }
func (e *Engine) Zoom() mo.Option[float64]     { e.mu.Lock(); defer e.mu.Unlock(); return e.zoom }
func (e *Engine) Brightness() mo.Option[float64] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.brightness
}
func (e *Engine) Chapters() mo.Option[[]player.Chapter] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chapters
}
func (e *Engine) SubtitleActive() bool { e.mu.Lock(); defer e.mu.Unlock(); return e.subtitle }
func (e *Engine) Degraded() bool       { e.mu.Lock(); defer e.mu.Unlock(); return e.degraded }

// State setters for tests.

func (e *Engine) SetPausedState(v mo.Option[bool])      { e.mu.Lock(); e.paused = v; e.mu.Unlock() }
func (e *Engine) SetPositionState(v mo.Option[float64]) { e.mu.Lock(); e.position = v; e.mu.Unlock() }
func (e *Engine) SetDurationState(v mo.Option[float64]) { e.mu.Lock(); e.duration = v; e.mu.Unlock() }
func (e *Engine) SetSpeedState(v mo.Option[float64])    { e.mu.Lock(); e.speed = v; e.mu.Unlock() }
func (e *Engine) SetVolumeState(v mo.Option[int])       { e.mu.Lock(); e.volume = v; e.mu.Unlock() }
func (e *Engine) SetZoomState(v mo.Option[float64])     { e.mu.Lock(); e.zoom = v; e.mu.Unlock() }
func (e *Engine) SetBrightnessState(v mo.Option[float64]) {
	e.mu.Lock()
	e.brightness = v
	e.mu.Unlock()
}
func (e *Engine) SetChapters(c []player.Chapter) { e.mu.Lock(); e.chapters = mo.Some(c); e.mu.Unlock() }
func (e *Engine) SetSubtitle(active bool)        { e.mu.Lock(); e.subtitle = active; e.mu.Unlock() }
func (e *Engine) SetDegraded(d bool)             { e.mu.Lock(); e.degraded = d; e.mu.Unlock() }

// Commands

func (e *Engine) Seek(value float64, mode player.SeekMode, precision player.Precision) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.commands = append(e.commands, Command{Name: "seek", Value: value, Mode: mode, Prec: precision})
	if e.Sticky {
		return
	}
	if pos, ok := e.position.Get(); ok {
		if mode == player.Relative {
			e.position = mo.Some(pos + value)
		} else {
			e.position = mo.Some(value)
		}
	}
}

func (e *Engine) SetPaused(paused bool) {
	e.record(Command{Name: "pause", Value: b2f(paused)}, func() { e.paused = mo.Some(paused) })
}

func (e *Engine) SetSpeed(speed float64) {
	e.record(Command{Name: "speed", Value: speed}, func() { e.speed = mo.Some(speed) })
}

func (e *Engine) SetVolume(volume int) {
	e.record(Command{Name: "volume", Value: float64(volume)}, func() { e.volume = mo.Some(volume) })
}

func (e *Engine) SetBrightness(level float64) {
	e.record(Command{Name: "brightness", Value: level}, func() { e.brightness = mo.Some(level) })
}

func (e *Engine) SetZoom(zoom float64) {
	e.record(Command{Name: "zoom", Value: zoom}, func() { e.zoom = mo.Some(zoom) })
}

// SubSeek moves Position by a fixed five seconds per cue.
func (e *Engine) SubSeek(direction int) {
	e.record(Command{Name: "sub-seek", Value: float64(direction)}, func() {
		if pos, ok := e.position.Get(); ok {
			e.position = mo.Some(pos + 5*float64(direction))
		}
	})
}

func (e *Engine) Keypress(name string) {
	e.record(Command{Name: "keypress", Text: name}, nil)
}

func (e *Engine) FrameStep(direction int) {
	e.record(Command{Name: "frame-step", Value: float64(direction)}, nil)
}

func (e *Engine) record(c Command, apply func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commands = append(e.commands, c)
	if apply != nil {
		apply()
	}
}

// Commands returns every recorded command, optionally filtered by name.
func (e *Engine) Commands(names ...string) []Command {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(names) == 0 {
		return append([]Command(nil), e.commands...)
	}

	var out []Command
	for _, c := range e.commands {
		for _, n := range names {
			if c.Name == n {
				out = append(out, c)
			}
		}
	}
	return out
}

// Reset forgets recorded commands.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commands = nil
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

var _ player.Engine = (*Engine)(nil)
