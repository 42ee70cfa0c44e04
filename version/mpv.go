package version

import (
	"fmt"
	"regexp"
)

// MinimumMpv is the oldest mpv with every command the gesture pipeline sends.
const MinimumMpv = "0.33.0"

var mpvVersion = regexp.MustCompile(`v?(\d+\.\d+\.\d+)`)

// Mpv extracts the semantic version from mpv's version string,
// e.g. "mpv 0.38.0-dirty" or "mpv v0.37.0-401-g8f9e2b1".
func Mpv(raw string) (string, error) {
	m := mpvVersion.FindStringSubmatch(raw)
	if m == nil {
		return "", fmt.Errorf("no version in %q", raw)
	}
	return m[1], nil
}

// SupportedMpv reports whether the mpv described by raw is recent enough.
// Development builds without a release number are assumed recent.
func SupportedMpv(raw string) (string, bool) {
	v, err := Mpv(raw)
	if err != nil {
		return raw, true
	}
	cmp, err := Compare(v, MinimumMpv)
	return v, err != nil || cmp >= 0
}
