// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/mpvtouch/mpvtouch/constant"
	"github.com/mpvtouch/mpvtouch/key"
	"github.com/mpvtouch/mpvtouch/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Mpvtouch + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	actions := "Available options are: seek, sub_seek, play_pause, custom, none"

	register(key.GestureLeftDoubleTap, string(ActionSeek), "Double tap action for the left region.\n"+actions)
	register(key.GestureLeftSingleTap, false, "Fire the left region action on a single tap without waiting for a second one")
	register(key.GestureLeftCustomKey, "", "mpv key name sent by the custom action in the left region")
	register(key.GestureRightDoubleTap, string(ActionSeek), "Double tap action for the right region.\n"+actions)
	register(key.GestureRightSingleTap, false, "Fire the right region action on a single tap without waiting for a second one")
	register(key.GestureRightCustomKey, "", "mpv key name sent by the custom action in the right region")
	register(key.GestureCenterDoubleTap, string(ActionPlayPause), "Double tap action for the center region.\n"+actions)
	register(key.GestureCenterSingleTap, false, "Fire the center region action on a single tap without waiting for a second one")
	register(key.GestureCenterCustomKey, "", "mpv key name sent by the custom action in the center region")

	register(key.GestureSeekRegionWidth, 0.35, "Width of the left and right seek regions as a fraction of the surface.\nClamped to 0.20 - 0.45")
	register(key.GestureDoubleTapSeekDuration, 10, "Seconds to seek on every double tap")
	register(key.GestureHoldMultiplier, 2.0, "Playback speed while holding a finger down. 0 disables the gesture")
	register(key.GestureDynamicSpeedOverlay, true, "Allow dragging sideways during a hold to pick a speed from the ladder")
	register(key.GestureSeekDragSensitivity, 0.15, "Seconds of seek per unit of horizontal drag")
	register(key.GestureVerticalSensitivity, 1.0, "Multiplier applied to vertical volume and brightness drags")
	register(key.GestureDoubleTapTimeoutMs, 300, "Maximum gap between the taps of a double tap, in milliseconds")
	register(key.GestureLongPressTimeoutMs, 500, "Hold duration before the speed boost kicks in, in milliseconds")

	register(key.GestureVolume, true, "Enable vertical drag volume control")
	register(key.GestureBrightness, true, "Enable vertical drag brightness control")
	register(key.GesturePinchZoom, true, "Enable two finger pinch zoom")
	register(key.GestureHorizontalSeek, true, "Enable horizontal drag seeking")
	register(key.GestureSwapVolumeBrightness, false, "Put volume on the left half and brightness on the right")

	register(key.PlayerPreciseSeeking, false, "Always seek to the exact frame instead of the nearest keyframe")
	register(key.PlayerVolumeBoostCap, 30, "Extra volume above 100 reachable by dragging past the top. 0 disables boost")

	register(key.MpvSocket, "", "Path of the mpv IPC socket to attach to.\nDefaults to a socket under the runtime directory")
	register(key.MpvBinary, "mpv", "mpv executable used when launching a file")

	register(key.InputDevice, "", "evdev touchscreen device, e.g. /dev/input/event5.\nEmpty disables local touch input")
	register(key.InputWidth, 1920, "Surface width in touch units for devices that do not report it")
	register(key.InputHeight, 1080, "Surface height in touch units for devices that do not report it")

	register(key.ServerEnabled, true, "Serve the remote touch surface and metrics")
	register(key.ServerAddress, "127.0.0.1:7531", "Listen address of the remote touch surface")
	register(key.ServerMaxFrameRate, 240, "Maximum touch frames per second accepted from one client")

	register(key.BrightnessBacklight, "", "sysfs backlight directory, e.g. /sys/class/backlight/intel_backlight.\nEmpty picks the first one found")

	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, plain, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(style.Purple),
	"blue":     style.Fg(style.Blue),
	"cyan":     style.Fg(style.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(style.Green)(b)
			}
			return style.Fg(style.Red)(b)
		case string:
			return style.Fg(style.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
