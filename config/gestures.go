package config

import (
	"fmt"
	"time"

	"github.com/mpvtouch/mpvtouch/key"
	"github.com/spf13/viper"
)

// Action is what a double tap (or an instant single tap) does in a region.
type Action string

const (
	ActionSeek      Action = "seek"
	ActionSubSeek   Action = "sub_seek"
	ActionPlayPause Action = "play_pause"
	ActionCustom    Action = "custom"
	ActionNone      Action = "none"
)

// Actions lists every accepted Action value.
var Actions = []Action{ActionSeek, ActionSubSeek, ActionPlayPause, ActionCustom, ActionNone}

// ParseAction validates a raw config value.
func ParseAction(s string) (Action, error) {
	for _, a := range Actions {
		if string(a) == s {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("unknown gesture action %q", s)
}

// Seeks reports whether the action belongs to the seek burst family.
func (a Action) Seeks() bool {
	return a == ActionSeek || a == ActionSubSeek
}

// RegionGesture is the tap mapping of a single screen region.
type RegionGesture struct {
	DoubleTap Action
	SingleTap bool
	CustomKey string
}

// Gestures is an immutable snapshot of every setting the touch pipeline reads.
// A gesture captures one at first finger down and keeps it until all fingers lift.
type Gestures struct {
	Left, Right, Center RegionGesture

	SeekRegionWidth       float64
	DoubleTapSeekDuration float64
	HoldMultiplier        float64
	DynamicSpeedOverlay   bool
	SeekDragSensitivity   float64
	VerticalSensitivity   float64
	DoubleTapTimeout      time.Duration
	LongPressTimeout      time.Duration

	Volume               bool
	Brightness           bool
	PinchZoom            bool
	HorizontalSeek       bool
	SwapVolumeBrightness bool

	PreciseSeeking bool
	VolumeBoostCap int
}

// DefaultGestures builds a snapshot from the registered defaults only.
func DefaultGestures() *Gestures {
	return build(func(k string) any { return Default[k].Value })
}

// Load builds a snapshot from the live viper state.
func Load() *Gestures {
	return build(viper.Get)
}

func build(get func(string) any) *Gestures {
	region := func(double, single, custom string) RegionGesture {
		action, err := ParseAction(str(get(double)))
		if err != nil {
			action = ActionNone
		}
		return RegionGesture{
			DoubleTap: action,
			SingleTap: boolean(get(single)),
			CustomKey: str(get(custom)),
		}
	}

	return &Gestures{
		Left:   region(key.GestureLeftDoubleTap, key.GestureLeftSingleTap, key.GestureLeftCustomKey),
		Right:  region(key.GestureRightDoubleTap, key.GestureRightSingleTap, key.GestureRightCustomKey),
		Center: region(key.GestureCenterDoubleTap, key.GestureCenterSingleTap, key.GestureCenterCustomKey),

		SeekRegionWidth:       float(get(key.GestureSeekRegionWidth)),
		DoubleTapSeekDuration: float(get(key.GestureDoubleTapSeekDuration)),
		HoldMultiplier:        float(get(key.GestureHoldMultiplier)),
		DynamicSpeedOverlay:   boolean(get(key.GestureDynamicSpeedOverlay)),
		SeekDragSensitivity:   float(get(key.GestureSeekDragSensitivity)),
		VerticalSensitivity:   float(get(key.GestureVerticalSensitivity)),
		DoubleTapTimeout:      time.Duration(float(get(key.GestureDoubleTapTimeoutMs))) * time.Millisecond,
		LongPressTimeout:      time.Duration(float(get(key.GestureLongPressTimeoutMs))) * time.Millisecond,

		Volume:               boolean(get(key.GestureVolume)),
		Brightness:           boolean(get(key.GestureBrightness)),
		PinchZoom:            boolean(get(key.GesturePinchZoom)),
		HorizontalSeek:       boolean(get(key.GestureHorizontalSeek)),
		SwapVolumeBrightness: boolean(get(key.GestureSwapVolumeBrightness)),

		PreciseSeeking: boolean(get(key.PlayerPreciseSeeking)),
		VolumeBoostCap: int(float(get(key.PlayerVolumeBoostCap))),
	}
}

// Values come back from viper as whatever the decoder produced: toml gives int64,
// env gives strings (unless SetTypeByDefaultValue coerced them), defaults keep their Go type.

func str(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func boolean(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true" || b == "1"
	default:
		return false
	}
}

func float(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case uint:
		return float64(n)
	case uint64:
		return float64(n)
	case string:
		var f float64
		_, _ = fmt.Sscan(n, &f)
		return f
	default:
		return 0
	}
}
