// Package platform talks to the host for things mpv does not own, such as the display backlight.
package platform

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mpvtouch/mpvtouch/filesystem"
	"github.com/mpvtouch/mpvtouch/util"
	"github.com/spf13/afero"
)

// BacklightRoot is where the kernel exposes backlight devices.
const BacklightRoot = "/sys/class/backlight"

// ErrNoBacklight is returned when no backlight device can be found.
var ErrNoBacklight = errors.New("no backlight device")

// Backlight drives a sysfs backlight device. Levels are fractions in [0, 1].
type Backlight struct {
	dir string
	max int
}

// FindBacklight opens the named device under BacklightRoot, or the first one if name is empty.
func FindBacklight(name string) (*Backlight, error) {
	if name == "" {
		entries, err := afero.ReadDir(filesystem.API(), BacklightRoot)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoBacklight, err)
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		if len(names) == 0 {
			return nil, ErrNoBacklight
		}
		sort.Strings(names)
		name = names[0]
	}

	b := &Backlight{dir: filepath.Join(BacklightRoot, name)}
	limit, err := b.read("max_brightness")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoBacklight, err)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %s reports max_brightness %d", ErrNoBacklight, name, limit)
	}
	b.max = limit
	return b, nil
}

// Name is the device name.
func (b *Backlight) Name() string {
	return filepath.Base(b.dir)
}

// Brightness reads the current level.
func (b *Backlight) Brightness() (float64, error) {
	raw, err := b.read("brightness")
	if err != nil {
		return 0, err
	}
	return util.Clamp(float64(raw)/float64(b.max), 0, 1), nil
}

// SetBrightness writes level, rounded to the device resolution.
func (b *Backlight) SetBrightness(level float64) error {
	raw := int(math.Round(util.Clamp(level, 0, 1) * float64(b.max)))
	path := filepath.Join(b.dir, "brightness")
	if err := afero.WriteFile(filesystem.API(), path, []byte(strconv.Itoa(raw)), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (b *Backlight) read(file string) (int, error) {
	path := filepath.Join(b.dir, file)
	data, err := afero.ReadFile(filesystem.API(), path)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return n, nil
}
