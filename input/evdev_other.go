//go:build !linux

package input

import (
	"context"
	"errors"

	"github.com/mpvtouch/mpvtouch/touch"
)

// Evdev is only available on Linux.
type Evdev struct{}

// Open always fails outside Linux; use the remote surface instead.
func Open(path string, width, height float64) (*Evdev, error) {
	return nil, errors.New("evdev input requires linux")
}

// Run is never reached on this platform.
func (e *Evdev) Run(ctx context.Context, out chan<- touch.Frame) error {
	return errors.New("evdev input requires linux")
}

// Close is a no-op.
func (e *Evdev) Close() error {
	return nil
}
