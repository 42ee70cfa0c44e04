// Package player mirrors mpv state into latest-value cells and issues commands to it over JSON-IPC.
package player

import (
	"errors"
	"fmt"

	"github.com/samber/mo"
)

var (
	// ErrNotConnected is returned for commands issued while no mpv socket is attached.
	ErrNotConnected = errors.New("mpv not connected")

	// ErrCommandRejected wraps an error reply from mpv.
	ErrCommandRejected = errors.New("mpv rejected command")
)

// SeekMode selects how a seek value is interpreted.
type SeekMode int

const (
	Relative SeekMode = iota
	Absolute
)

// Precision selects between frame-exact and keyframe seeking.
type Precision int

const (
	Keyframes Precision = iota
	Exact
)

// Flags renders the mpv seek flag argument, e.g. "relative+exact".
func Flags(mode SeekMode, precision Precision) string {
	m := "relative"
	if mode == Absolute {
		m = "absolute"
	}
	p := "keyframes"
	if precision == Exact {
		p = "exact"
	}
	return fmt.Sprintf("%s+%s", m, p)
}

// BaseVolume is mpv's unamplified volume ceiling.
const BaseVolume = 100

// Track is an entry of mpv's track-list.
type Track struct {
	ID       int    `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title,omitempty"`
	Lang     string `json:"lang,omitempty"`
	Selected bool   `json:"selected"`
}

// Chapter is an entry of mpv's chapter-list.
type Chapter struct {
	Title string  `json:"title"`
	Time  float64 `json:"time"`
}

// Snapshot is a point-in-time copy of the mirrored playback state.
// Each field is read from its own cell, so fields may come from slightly different instants.
type Snapshot struct {
	Position   mo.Option[float64] `json:"position"`
	Duration   mo.Option[float64] `json:"duration"`
	Paused     mo.Option[bool]    `json:"paused"`
	Speed      mo.Option[float64] `json:"speed"`
	Volume     mo.Option[int]     `json:"volume"`
	Boost      mo.Option[int]     `json:"volume_boost"`
	Brightness mo.Option[float64] `json:"brightness"`
	Zoom       mo.Option[float64] `json:"zoom"`
}

// Engine is the read/command surface the gesture pipeline consumes.
// Reads return None when the value is unknown. Commands are fire-and-forget
// and never block the caller.
type Engine interface {
	Paused() mo.Option[bool]
	Position() mo.Option[float64]
	Duration() mo.Option[float64]
	Speed() mo.Option[float64]
	Volume() mo.Option[int]
	Zoom() mo.Option[float64]
	Brightness() mo.Option[float64]
	Chapters() mo.Option[[]Chapter]
	SubtitleActive() bool
	Degraded() bool

	Seek(value float64, mode SeekMode, precision Precision)
	SetPaused(paused bool)
	SetSpeed(speed float64)
	SetVolume(volume int)
	SetBrightness(level float64)
	SetZoom(zoom float64)
	SubSeek(direction int)
	Keypress(name string)
	FrameStep(direction int)
}

// Backlight is the platform brightness control the bridge delegates to.
type Backlight interface {
	Brightness() (float64, error)
	SetBrightness(level float64) error
}
