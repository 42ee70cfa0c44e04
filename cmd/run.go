package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/mpvtouch/mpvtouch/clock"
	"github.com/mpvtouch/mpvtouch/config"
	"github.com/mpvtouch/mpvtouch/input"
	"github.com/mpvtouch/mpvtouch/key"
	"github.com/mpvtouch/mpvtouch/log"
	"github.com/mpvtouch/mpvtouch/metrics"
	"github.com/mpvtouch/mpvtouch/overlay"
	"github.com/mpvtouch/mpvtouch/platform"
	"github.com/mpvtouch/mpvtouch/player"
	"github.com/mpvtouch/mpvtouch/server"
	"github.com/mpvtouch/mpvtouch/surface"
	"github.com/mpvtouch/mpvtouch/touch"
	"github.com/mpvtouch/mpvtouch/tui"
	"github.com/mpvtouch/mpvtouch/util"
	"github.com/mpvtouch/mpvtouch/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// frameBuffer absorbs bursts from input sources while the gesture loop is busy.
const frameBuffer = 64

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("socket", "s", "", "mpv IPC socket to attach to")
	lo.Must0(viper.BindPFlag(key.MpvSocket, runCmd.Flags().Lookup("socket")))

	runCmd.Flags().StringP("device", "d", "", "evdev touchscreen, e.g. /dev/input/event5")
	lo.Must0(viper.BindPFlag(key.InputDevice, runCmd.Flags().Lookup("device")))

	runCmd.Flags().StringP("listen", "l", "", "Address of the remote touch surface and metrics")
	lo.Must0(viper.BindPFlag(key.ServerAddress, runCmd.Flags().Lookup("listen")))

	runCmd.Flags().Int("width", 0, "Surface width for touchscreen frames")
	lo.Must0(viper.BindPFlag(key.InputWidth, runCmd.Flags().Lookup("width")))

	runCmd.Flags().Int("height", 0, "Surface height for touchscreen frames")
	lo.Must0(viper.BindPFlag(key.InputHeight, runCmd.Flags().Lookup("height")))

	runCmd.Flags().StringP("play", "p", "", "Launch mpv on a file or url instead of attaching")
	runCmd.Flags().BoolP("tui", "t", false, "Show the overlay monitor in the terminal")
}

// runCmd starts the gesture daemon.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Attach to mpv and translate touches into playback control",
	Long: `Attach to a running mpv through its IPC socket, or launch one with --play,
then read touches from an evdev touchscreen and the remote websocket surface.`,
	Example: "  mpvtouch run --play ~/Videos/film.mkv --device /dev/input/event5\n" +
		"  mpvtouch run --socket /tmp/mpv.sock --listen 0.0.0.0:7531 --tui",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(runDaemon(
			cmd.Context(),
			lo.Must(cmd.Flags().GetString("play")),
			lo.Must(cmd.Flags().GetBool("tui")),
		))
	},
}

func runDaemon(ctx context.Context, play string, monitor bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if monitor && !util.IsTerminal() {
		return errors.New("--tui needs a terminal")
	}

	socket := viper.GetString(key.MpvSocket)
	if socket == "" {
		socket = where.Socket()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if play != "" {
		proc, err := player.Launch(ctx, viper.GetString(key.MpvBinary), play, socket)
		if err != nil {
			return err
		}
		defer proc.Close()

		go func() {
			select {
			case <-proc.Wait():
				log.Info("mpv exited")
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	var backlight player.Backlight
	if b, err := platform.FindBacklight(viper.GetString(key.BrightnessBacklight)); err == nil {
		log.Infof("using backlight %s", b.Name())
		backlight = b
	} else {
		log.Warnf("brightness gestures disabled: %s", err)
	}

	bridge := player.NewBridge(socket, backlight)
	bridge.OnCommand = metrics.RecordEngineCommand

	holder := config.NewHolder(config.Load())
	bridge.SetVolumeBoostCap(holder.Snapshot().VolumeBoostCap)
	holder.OnReload(func(g *config.Gestures) {
		bridge.SetVolumeBoostCap(g.VolumeBoostCap)
	})
	holder.Watch()

	bus := overlay.NewBus()
	controller := surface.New(bridge, holder, bus, clock.Real{})
	frames := make(chan touch.Frame, frameBuffer)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return bridge.Run(ctx) })
	g.Go(func() error { return controller.Run(ctx, frames) })

	if device := viper.GetString(key.InputDevice); device != "" {
		evdev, err := input.Open(device, viper.GetFloat64(key.InputWidth), viper.GetFloat64(key.InputHeight))
		if err != nil {
			return err
		}
		g.Go(func() error { return evdev.Run(ctx, frames) })
	}

	if viper.GetBool(key.ServerEnabled) {
		srv := server.New(server.Options{
			Frames:       frames,
			Controls:     controller,
			State:        bridge.Snapshot,
			MaxFrameRate: viper.GetFloat64(key.ServerMaxFrameRate),
		})
		addr := viper.GetString(key.ServerAddress)
		g.Go(func() error { return srv.Run(ctx, addr, bus) })
	}

	if monitor {
		updates, unsubscribe := bus.Subscribe()
		g.Go(func() error {
			defer unsubscribe()
			err := tui.Run(ctx, &tui.Options{Updates: updates, State: bridge.Snapshot, Controls: controller})
			// quitting the monitor stops the daemon
			cancel()
			return err
		})
	}

	log.Infof("mpvtouch running against %s", socket)
	return g.Wait()
}
