// Package overlay defines the UI updates pushed by the gesture pipeline and the bus that carries them.
package overlay

import (
	"encoding/json"
	"fmt"

	"github.com/mpvtouch/mpvtouch/touch"
)

// Update is a sealed union of everything the UI can be told to show.
// Exhaustive switches over it live in the websocket encoder and the TUI.
type Update interface {
	// Kind is the wire name of the variant.
	Kind() string
	update()
}

// Seek shows the seek indicator. Amount is the cumulative offset in seconds.
type Seek struct {
	Region  touch.Region `json:"-"`
	Amount  float64      `json:"amount"`
	Forward bool         `json:"forward"`
	Text    string       `json:"text,omitempty"`
	Visible bool         `json:"visible"`
}

// SliderKind tells volume and brightness sliders apart.
type SliderKind string

const (
	VolumeSlider     SliderKind = "volume"
	BrightnessSlider SliderKind = "brightness"
)

// Slider shows or hides a vertical slider. Value is 0..1 for brightness and 0..100+boost for volume.
type Slider struct {
	Slider  SliderKind `json:"slider"`
	Visible bool       `json:"visible"`
	Value   float64    `json:"value"`
	Boosted bool       `json:"boosted"`
}

// Speed shows the hold-to-boost indicator.
type Speed struct {
	Value       float64 `json:"value"`
	Interactive bool    `json:"interactive"`
	Visible     bool    `json:"visible"`
}

// Zoom shows the pinch zoom level.
type Zoom struct {
	Value   float64 `json:"value"`
	Visible bool    `json:"visible"`
}

// Controls toggles the on-screen controls.
type Controls struct{}

// Collapse hides secondary panels after a period of inactivity.
type Collapse struct{}

// Haptic asks a capable client to vibrate briefly.
type Haptic struct{}

func (Seek) Kind() string     { return "seek" }
func (Slider) Kind() string   { return "slider" }
func (Speed) Kind() string    { return "speed" }
func (Zoom) Kind() string     { return "zoom" }
func (Controls) Kind() string { return "controls" }
func (Collapse) Kind() string { return "collapse" }
func (Haptic) Kind() string   { return "haptic" }

func (Seek) update()     {}
func (Slider) update()   {}
func (Speed) update()    {}
func (Zoom) update()     {}
func (Controls) update() {}
func (Collapse) update() {}
func (Haptic) update()   {}

// Message is the wire envelope of an Update.
type Message struct {
	Type   string `json:"type"`
	Region string `json:"region,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// Encode renders u as a JSON wire message.
func Encode(u Update) ([]byte, error) {
	msg := Message{Type: u.Kind()}

	switch v := u.(type) {
	case Seek:
		msg.Region = v.Region.String()
		msg.Data = v
	case Slider, Speed, Zoom:
		msg.Data = v
	case Controls, Collapse, Haptic:
	default:
		return nil, fmt.Errorf("unknown overlay update %T", u)
	}

	return json.Marshal(msg)
}
