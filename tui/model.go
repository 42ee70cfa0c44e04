package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mpvtouch/mpvtouch/gesture"
	"github.com/mpvtouch/mpvtouch/icon"
	"github.com/mpvtouch/mpvtouch/overlay"
	"github.com/mpvtouch/mpvtouch/player"
	"github.com/mpvtouch/mpvtouch/speed"
	"github.com/mpvtouch/mpvtouch/style"
	"github.com/mpvtouch/mpvtouch/util"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/samber/lo"
)

const refreshInterval = 250 * time.Millisecond

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

type (
	updateMsg struct{ update overlay.Update }
	closedMsg struct{}
	tickMsg   time.Time
)

type model struct {
	options *Options
	keymap  *keymap
	help    help.Model

	volumeBar, brightnessBar progress.Model

	width, height int

	snapshot player.Snapshot

	seek      overlay.Seek
	slider    overlay.Slider
	speed     overlay.Speed
	zoom      overlay.Zoom
	controls  bool
	collapsed bool
	haptics   int
	closed    bool
}

func newModel(options *Options) *model {
	m := &model{
		options:       options,
		keymap:        newKeymap(),
		help:          help.New(),
		volumeBar:     progress.New(progress.WithSolidFill(string(style.VolumeColor)), progress.WithoutPercentage()),
		brightnessBar: progress.New(progress.WithSolidFill(string(style.LightColor)), progress.WithoutPercentage()),
		width:         80,
		height:        24,
	}

	if w, h, err := util.TerminalSize(); err == nil {
		m.resize(w, h)
	}
	m.refresh()

	return m
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.waitForUpdate(), tick())
}

func (m *model) waitForUpdate() tea.Cmd {
	if m.options.Updates == nil {
		return nil
	}
	return func() tea.Msg {
		u, ok := <-m.options.Updates
		if !ok {
			return closedMsg{}
		}
		return updateMsg{u}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *model) resize(width, height int) {
	m.width, m.height = width, height
	bar := util.Max(10, util.Min(width-20, 60))
	m.volumeBar.Width = bar
	m.brightnessBar.Width = bar
	m.help.Width = width
}

func (m *model) refresh() {
	if m.options.State != nil {
		m.snapshot = m.options.State()
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tickMsg:
		m.refresh()
		return m, tick()
	case closedMsg:
		m.closed = true
	case updateMsg:
		m.apply(msg.update)
		return m, m.waitForUpdate()
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.quit):
		return tea.Quit
	case key.Matches(msg, m.keymap.showHelp):
		m.help.ShowAll = !m.help.ShowAll
	case m.options.Controls == nil:
	case key.Matches(msg, m.keymap.lock):
		m.options.Controls.SetLocked(!m.options.Controls.Locked())
	case key.Matches(msg, m.keymap.stepBack):
		m.options.Controls.FrameStep(-1)
	case key.Matches(msg, m.keymap.stepForward):
		m.options.Controls.FrameStep(1)
	}
	return nil
}

// apply folds one overlay update into the displayed state.
func (m *model) apply(u overlay.Update) {
	switch v := u.(type) {
	case overlay.Seek:
		m.seek = v
	case overlay.Slider:
		m.slider = v
	case overlay.Speed:
		m.speed = v
	case overlay.Zoom:
		m.zoom = v
	case overlay.Controls:
		m.controls = !m.controls
		m.collapsed = false
	case overlay.Collapse:
		m.collapsed = true
	case overlay.Haptic:
		m.haptics++
	}
}

func (m *model) View() string {
	lines := []string{style.Title("mpvtouch"), "", m.viewStatus(), ""}

	if m.seek.Visible {
		lines = append(lines, m.viewSeek())
	}
	if m.slider.Visible {
		lines = append(lines, m.viewSlider())
	}
	if m.speed.Visible {
		lines = append(lines, m.viewSpeed())
	}
	if m.zoom.Visible {
		lines = append(lines, m.viewZoom())
	}

	lines = append(lines, "", m.viewFooter())
	if m.closed {
		lines = append(lines, style.Fg(style.HiRed)("overlay bus closed"))
	}

	body := strings.Join(lines, "\n")
	if h := strings.Count(body, "\n") + 1; m.height > h+4 {
		body += strings.Repeat("\n", m.height-h-4)
	}
	body += "\n" + m.help.View(m.keymap)

	return paddingStyle.Render(body)
}

func (m *model) viewStatus() string {
	s := m.snapshot

	state := style.Faint("unknown")
	if paused, ok := s.Paused.Get(); ok {
		state = lo.Ternary(paused, icon.Get(icon.Paused)+" paused", icon.Get(icon.Playing)+" playing")
	}

	position := "--:--"
	if pos, ok := s.Position.Get(); ok {
		position = gesture.Timestamp(pos)
	}
	if dur, ok := s.Duration.Get(); ok {
		position += " / " + gesture.Timestamp(dur)
	}

	parts := []string{state, position}
	if v, ok := s.Speed.Get(); ok && v != 1 {
		parts = append(parts, fmt.Sprintf("%gx", v))
	}
	if m.options.Controls != nil && m.options.Controls.Locked() {
		parts = append(parts, style.Fg(style.HiRed)(icon.Get(icon.Lock)+" locked"))
	}

	return truncate.StringWithTail(strings.Join(parts, "  "), uint(util.Max(m.width-4, 1)), "…")
}

func (m *model) viewSeek() string {
	direction := lo.Ternary(m.seek.Forward, icon.Get(icon.Seek), icon.Get(icon.Rewind))
	sign := lo.Ternary(m.seek.Forward, "+", "-")
	line := fmt.Sprintf("%s %s%gs", style.Fg(style.SeekColor)(direction), sign, m.seek.Amount)
	if m.seek.Text != "" {
		line += "  " + m.seek.Text
	}
	return wordwrap.String(line, util.Max(m.width-4, 10))
}

func (m *model) viewSlider() string {
	if m.slider.Slider == overlay.BrightnessSlider {
		return fmt.Sprintf("%s %s %3.0f%%",
			icon.Get(icon.Brightness), m.brightnessBar.ViewAs(m.slider.Value), m.slider.Value*100)
	}

	symbol := icon.Get(icon.Volume)
	frac := m.slider.Value / player.BaseVolume
	if m.slider.Boosted {
		symbol = style.Fg(style.BoostColor)(icon.Get(icon.Boost))
	}
	return fmt.Sprintf("%s %s %3.0f", symbol, m.volumeBar.ViewAs(util.Min(frac, 1)), m.slider.Value)
}

func (m *model) viewSpeed() string {
	line := style.Fg(style.SpeedColor)(fmt.Sprintf("%s %gx", icon.Get(icon.Speed), m.speed.Value))
	if !m.speed.Interactive {
		return line
	}

	marks := make([]string, len(speed.Ladder))
	for i, v := range speed.Ladder {
		mark := fmt.Sprintf("%g", v)
		if v == m.speed.Value {
			mark = style.Bold(style.Fg(style.SpeedColor)(mark))
		} else {
			mark = style.Faint(mark)
		}
		marks[i] = mark
	}
	return line + "  " + strings.Join(marks, " ")
}

func (m *model) viewZoom() string {
	frac := (m.zoom.Value - gesture.MinZoom) / (gesture.MaxZoom - gesture.MinZoom)
	return fmt.Sprintf("%s %s %+.2f", icon.Get(icon.Zoom), style.Gauge(m.volumeBar.Width, frac, style.ZoomColor), m.zoom.Value)
}

func (m *model) viewFooter() string {
	controls := lo.Ternary(m.controls, "controls shown", "controls hidden")
	if m.collapsed {
		controls += ", collapsed"
	}
	return style.Faint(fmt.Sprintf("%s  %s %d", controls, icon.Get(icon.Touch), m.haptics))
}
