// Package icon renders the small status symbols used by the CLI and the overlay monitor.
//
// Icons can be displayed as emoji, nerd-font glyphs or plain ASCII
// depending on user preference.
package icon

import (
	"github.com/mpvtouch/mpvtouch/key"
	"github.com/spf13/viper"
)

// Visual Variant Constants - these define the supported aesthetic styles for icon rendering.
const (
	emoji = "emoji"
	nerd  = "nerd"
	plain = "plain"
)

// AvailableVariants returns a slice of all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain}
}

// Icon identifies a symbol.
type Icon int

const (
	Success Icon = iota
	Fail
	Warn
	Seek
	Rewind
	Volume
	Boost
	Brightness
	Speed
	Zoom
	Paused
	Playing
	Lock
	Touch
)

// iconDef encapsulates the visual representations of a single UI symbol across all supported variants.
type iconDef struct {
	emoji string
	nerd  string
	plain string
}

var icons = map[Icon]*iconDef{
	Success:    {emoji: "🎉", nerd: "", plain: "+"},
	Fail:       {emoji: "💀", nerd: "", plain: "x"},
	Warn:       {emoji: "⚠️", nerd: "", plain: "!"},
	Seek:       {emoji: "⏩", nerd: "", plain: ">>"},
	Rewind:     {emoji: "⏪", nerd: "", plain: "<<"},
	Volume:     {emoji: "🔊", nerd: "", plain: "vol"},
	Boost:      {emoji: "📢", nerd: "", plain: "vol+"},
	Brightness: {emoji: "☀️", nerd: "", plain: "bri"},
	Speed:      {emoji: "🐇", nerd: "", plain: "spd"},
	Zoom:       {emoji: "🔍", nerd: "", plain: "zoom"},
	Paused:     {emoji: "⏸️", nerd: "", plain: "||"},
	Playing:    {emoji: "▶️", nerd: "", plain: "|>"},
	Lock:       {emoji: "🔒", nerd: "", plain: "lock"},
	Touch:      {emoji: "👆", nerd: "", plain: "*"},
}

// Get retrieves the visual representation for the receiver Def based on the global icons variant configuration.
func (d *iconDef) Get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	default:
		return ""
	}
}

// Get returns the rendered string for a specified Icon identifier from the global registry.
func Get(i Icon) string {
	d, ok := icons[i]
	if !ok {
		return ""
	}
	return d.Get()
}
