// Package tui renders a terminal monitor of the overlay the gesture pipeline drives.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mpvtouch/mpvtouch/overlay"
	"github.com/mpvtouch/mpvtouch/player"
)

// Controls is what the monitor's keys act on.
type Controls interface {
	Locked() bool
	SetLocked(locked bool)
	FrameStep(direction int)
}

// Options wires the monitor to the running daemon.
type Options struct {
	Updates  <-chan overlay.Update
	State    func() player.Snapshot
	Controls Controls
}

// Run blocks until the user quits or ctx is done.
func Run(ctx context.Context, options *Options) error {
	_, err := tea.NewProgram(newModel(options), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
