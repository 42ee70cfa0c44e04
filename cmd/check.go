package cmd

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mpvtouch/mpvtouch/constant"
	"github.com/mpvtouch/mpvtouch/icon"
	"github.com/mpvtouch/mpvtouch/input"
	"github.com/mpvtouch/mpvtouch/key"
	"github.com/mpvtouch/mpvtouch/platform"
	"github.com/mpvtouch/mpvtouch/player"
	"github.com/mpvtouch/mpvtouch/style"
	"github.com/mpvtouch/mpvtouch/version"
	"github.com/mpvtouch/mpvtouch/where"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

// checkCmd verifies everything the daemon depends on.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check for mpv, a running mpv socket, the touchscreen and the backlight",
	Run: func(cmd *cobra.Command, args []string) {
		binary := viper.GetString(key.MpvBinary)
		if _, err := exec.LookPath(binary); err != nil {
			printMissingDependencyError(binary)
		} else {
			report(binary+" found", nil)
		}

		socket := viper.GetString(key.MpvSocket)
		if socket == "" {
			socket = where.Socket()
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
		defer cancel()
		if raw, err := player.Probe(ctx, socket); err != nil {
			report("no mpv listening on "+socket, err)
		} else if v, ok := version.SupportedMpv(raw); !ok {
			report(raw, fmt.Errorf("mpv %s is older than %s", v, version.MinimumMpv))
		} else {
			report(raw+" on "+socket, nil)
		}

		if device := viper.GetString(key.InputDevice); device != "" {
			ev, err := input.Open(device, 0, 0)
			report("touchscreen "+device, err)
			if ev != nil {
				_ = ev.Close()
			}
		} else {
			report("no touchscreen configured, remote surface only", nil)
		}

		b, err := platform.FindBacklight(viper.GetString(key.BrightnessBacklight))
		if err == nil {
			report("backlight "+b.Name(), nil)
		} else {
			report("backlight", err)
		}
	},
}

func report(what string, err error) {
	if err != nil {
		fmt.Printf("%s %s: %s\n", style.Fg(style.HiRed)(icon.Get(icon.Fail)), what, err)
		return
	}
	fmt.Printf("%s %s\n", style.Fg(style.Green)(icon.Get(icon.Success)), what)
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case constant.Darwin:
		installCmd = "brew install mpv"
	case constant.Linux:
		installCmd = "sudo apt install mpv"
	case constant.Windows:
		installCmd = "scoop install mpv"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The required dependency '%s' was not found in your PATH.", dep))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
