// Package gesture routes raw touch frames to exactly one interpretation per physical gesture.
package gesture

// Channel is the interpretation locked for one physical gesture.
type Channel int

const (
	Idle Channel = iota
	Tapping
	DraggingHorizontalSeek
	DraggingVerticalVolume
	DraggingVerticalBrightness
	DraggingSpeedControl
	PinchZoom
)

func (c Channel) String() string {
	switch c {
	case Tapping:
		return "tap"
	case DraggingHorizontalSeek:
		return "seek"
	case DraggingVerticalVolume:
		return "volume"
	case DraggingVerticalBrightness:
		return "brightness"
	case DraggingSpeedControl:
		return "speed"
	case PinchZoom:
		return "pinch"
	default:
		return "idle"
	}
}

// Vertical reports whether c is one of the vertical slider channels.
func (c Channel) Vertical() bool {
	return c == DraggingVerticalVolume || c == DraggingVerticalBrightness
}
