// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Region Gesture Mapping - these keys bind each screen region to its tap actions.
const (
	GestureLeftDoubleTap   = "gesture.left.double_tap"
	GestureLeftSingleTap   = "gesture.left.single_tap"
	GestureLeftCustomKey   = "gesture.left.custom_key"
	GestureRightDoubleTap  = "gesture.right.double_tap"
	GestureRightSingleTap  = "gesture.right.single_tap"
	GestureRightCustomKey  = "gesture.right.custom_key"
	GestureCenterDoubleTap = "gesture.center.double_tap"
	GestureCenterSingleTap = "gesture.center.single_tap"
	GestureCenterCustomKey = "gesture.center.custom_key"
)

// Gesture Tuning - these keys shape how raw touches are classified and scaled.
const (
	GestureSeekRegionWidth       = "gesture.seek_region_width"
	GestureDoubleTapSeekDuration = "gesture.double_tap_seek_duration"
	GestureHoldMultiplier        = "gesture.hold_multiplier"
	GestureDynamicSpeedOverlay   = "gesture.dynamic_speed_overlay"
	GestureSeekDragSensitivity   = "gesture.seek_drag_sensitivity"
	GestureVerticalSensitivity   = "gesture.vertical_sensitivity"
	GestureDoubleTapTimeoutMs    = "gesture.double_tap_timeout_ms"
	GestureLongPressTimeoutMs    = "gesture.long_press_timeout_ms"
)

// Gesture Toggles - these keys enable or disable whole gesture families.
const (
	GestureVolume               = "gesture.volume"
	GestureBrightness           = "gesture.brightness"
	GesturePinchZoom            = "gesture.pinch_zoom"
	GestureHorizontalSeek       = "gesture.horizontal_seek"
	GestureSwapVolumeBrightness = "gesture.swap_volume_brightness"
)

// Playback Engine - these keys configure how commands reach mpv.
const (
	PlayerPreciseSeeking = "player.precise_seeking"
	PlayerVolumeBoostCap = "player.volume_boost_cap"
	MpvSocket            = "mpv.socket"
	MpvBinary            = "mpv.binary"
)

// Input Surface - these keys describe where touches come from.
const (
	InputDevice = "input.device"
	InputWidth  = "input.width"
	InputHeight = "input.height"
)

// Remote Surface - these keys govern the websocket endpoint.
const (
	ServerEnabled      = "server.enabled"
	ServerAddress      = "server.address"
	ServerMaxFrameRate = "server.max_frame_rate"
)

const (
	BrightnessBacklight = "brightness.backlight"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Diagnostics & Logging - these keys control the persistence and verbosity of application telemetry.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// Command-Line Interface (CLI) - these keys manage the presentation of the command interface.
const (
	CliColored = "cli.colored"
)
