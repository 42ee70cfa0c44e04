// Package metrics exposes Prometheus counters for the touch pipeline.
// Labels are limited to small fixed sets; no client or gesture ids.
package metrics

import (
	"errors"

	"github.com/mpvtouch/mpvtouch/player"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GesturesTotal counts completed gestures by the channel they locked.
	GesturesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mpvtouch_gestures_total",
		Help: "Completed physical gestures, by locked channel.",
	}, []string{"channel"})

	// TapsTotal counts recognised taps by kind (single, double, burst, blocked, instant, outside).
	TapsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mpvtouch_taps_total",
		Help: "Recognised taps, by kind and region.",
	}, []string{"kind", "region"})

	// SeekRequestsTotal counts seek requests before coalescing.
	SeekRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mpvtouch_seek_requests_total",
		Help: "Seek requests received by the coalescer, by mode.",
	}, []string{"mode"})

	// SeekCommandsTotal counts seek commands actually issued.
	SeekCommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mpvtouch_seek_commands_total",
		Help: "Seek commands issued to mpv, by mode and precision.",
	}, []string{"mode", "precision"})

	// SeeksDroppedTotal counts seeks dropped as out of range or no-op.
	SeeksDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mpvtouch_seeks_dropped_total",
		Help: "Seek requests dropped because the clamped target did not move.",
	})

	// EngineCommandsTotal counts mpv commands by name and outcome.
	EngineCommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mpvtouch_engine_commands_total",
		Help: "Commands sent to mpv, by command and result.",
	}, []string{"command", "result"})

	// RecoveredPanicsTotal counts panics caught by the gesture loop.
	RecoveredPanicsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mpvtouch_recovered_panics_total",
		Help: "Panics recovered inside gesture handling.",
	})

	// RemoteClients tracks connected websocket surfaces.
	RemoteClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mpvtouch_remote_clients",
		Help: "Currently connected remote touch surfaces.",
	})

	// RemoteFramesTotal counts inbound remote frames by outcome.
	RemoteFramesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mpvtouch_remote_frames_total",
		Help: "Touch frames received from remote surfaces, by outcome.",
	}, []string{"result"})
)

// RecordEngineCommand classifies an mpv command outcome.
func RecordEngineCommand(command string, err error) {
	EngineCommandsTotal.WithLabelValues(command, result(err)).Inc()
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, player.ErrNotConnected):
		return "disconnected"
	default:
		return "error"
	}
}
