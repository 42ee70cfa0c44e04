package input

import (
	"errors"
	"fmt"
	"time"

	"github.com/mpvtouch/mpvtouch/touch"
	"github.com/tidwall/gjson"
)

// MaxRemotePoints bounds the pointers accepted in one remote frame.
const MaxRemotePoints = 10

// RemoteFrame is the message a remote surface sends for every pointer change.
type RemoteFrame struct {
	Type   string        `json:"type" jsonschema:"enum=touch"`
	Width  float64       `json:"width" jsonschema:"exclusiveMinimum=0"`
	Height float64       `json:"height" jsonschema:"exclusiveMinimum=0"`
	TimeMs int64         `json:"time_ms,omitempty"`
	Points []touch.Point `json:"points"`
}

// DecodeFrame parses a remote touch message. The client clock is ignored;
// frames are stamped with now.
func DecodeFrame(data []byte, now time.Time) (touch.Frame, error) {
	if !gjson.ValidBytes(data) {
		return touch.Frame{}, errors.New("invalid json")
	}

	msg := gjson.ParseBytes(data)
	if kind := msg.Get("type").String(); kind != "touch" {
		return touch.Frame{}, fmt.Errorf("unexpected message type %q", kind)
	}

	w, h := msg.Get("width").Float(), msg.Get("height").Float()
	if w <= 0 || h <= 0 {
		return touch.Frame{}, fmt.Errorf("invalid surface size %gx%g", w, h)
	}

	raw := msg.Get("points").Array()
	if len(raw) > MaxRemotePoints {
		return touch.Frame{}, fmt.Errorf("too many points: %d", len(raw))
	}

	points := make([]touch.Point, 0, len(raw))
	seen := make(map[int]bool, len(raw))
	for _, p := range raw {
		id := int(p.Get("id").Int())
		if seen[id] {
			return touch.Frame{}, fmt.Errorf("duplicate pointer id %d", id)
		}
		seen[id] = true
		points = append(points, touch.Point{ID: id, X: p.Get("x").Float(), Y: p.Get("y").Float()})
	}

	return touch.Frame{Time: now, Width: w, Height: h, Points: points}, nil
}
