package player

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mpvtouch/mpvtouch/log"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/tidwall/gjson"
)

const (
	reconnectDelay = time.Second
	commandTimeout = 2 * time.Second
)

// observed lists the properties mirrored into cells, keyed by observe id.
var observed = []string{
	"pause",
	"time-pos",
	"duration",
	"speed",
	"volume",
	"video-zoom",
	"track-list",
	"sid",
	"chapter-list",
	"chapter",
}

// Bridge mirrors mpv properties into latest-value cells and forwards commands
// to mpv from a dedicated worker goroutine.
type Bridge struct {
	socketPath string
	backlight  Backlight

	paused     Cell[bool]
	position   Cell[float64]
	duration   Cell[float64]
	speed      Cell[float64]
	volume     Cell[float64]
	zoom       Cell[float64]
	tracks     Cell[[]Track]
	sid        Cell[int]
	chapters   Cell[[]Chapter]
	chapter    Cell[int]
	brightness Cell[float64]

	degraded atomic.Bool
	boostCap atomic.Int64

	client atomic.Pointer[ipcClient]

	qmu   sync.Mutex
	queue [][]any
	wake  chan struct{}

	// level is the backlight target; light is written at most one ahead of the writer.
	level Cell[float64]
	light chan struct{}

	// OnCommand, if set, is told about every command outcome. Used for metrics.
	OnCommand func(name string, err error)
}

// NewBridge prepares a bridge for the mpv socket at socketPath.
// backlight may be nil, in which case brightness stays unknown.
func NewBridge(socketPath string, backlight Backlight) *Bridge {
	return &Bridge{
		socketPath: socketPath,
		backlight:  backlight,
		wake:       make(chan struct{}, 1),
		light:      make(chan struct{}, 1),
	}
}

// Socket returns the IPC socket path.
func (b *Bridge) Socket() string {
	return b.socketPath
}

// Run keeps a connection to mpv alive until ctx is cancelled, reconnecting after drops.
// Cells are cleared whenever the connection is lost.
func (b *Bridge) Run(ctx context.Context) error {
	go b.work(ctx)
	go b.writeBacklight(ctx)

	if b.backlight != nil {
		if level, err := b.backlight.Brightness(); err == nil {
			b.brightness.Set(level)
		} else {
			log.Warnf("backlight unavailable: %v", err)
		}
	}

	for {
		err := b.session(ctx)
		b.reset()

		if ctx.Err() != nil {
			return nil
		}
		log.Warnf("mpv connection lost: %v", err)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

func (b *Bridge) session(ctx context.Context) error {
	conn, err := dial(ctx, b.socketPath)
	if err != nil {
		return err
	}

	client := newIPCClient(conn, b.handleEvent)
	defer client.Close()

	for i, name := range observed {
		if _, err := client.Command(ctx, "observe_property", i+1, name); err != nil {
			return err
		}
	}

	if limit := b.volumeLimit(); limit > BaseVolume {
		if _, err := client.Command(ctx, "set_property", "volume-max", limit); err != nil {
			log.Warnf("volume-max: %v", err)
		}
	}

	b.client.Store(client)
	defer b.client.Store(nil)

	log.Infof("attached to mpv on %s", b.socketPath)

	select {
	case <-client.Done():
		return client.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bridge) reset() {
	b.paused.Clear()
	b.position.Clear()
	b.duration.Clear()
	b.speed.Clear()
	b.volume.Clear()
	b.zoom.Clear()
	b.tracks.Clear()
	b.sid.Clear()
	b.chapters.Clear()
	b.chapter.Clear()
}

// handleEvent runs on the IPC read goroutine. It only writes cells.
func (b *Bridge) handleEvent(msg gjson.Result) {
	switch msg.Get("event").String() {
	case "property-change":
		b.apply(msg.Get("name").String(), msg.Get("data"))
	case "file-loaded":
		if b.degraded.Swap(false) {
			log.Info("new file loaded, leaving keyframe-only seek mode")
		}
	}
}

func (b *Bridge) apply(name string, data gjson.Result) {
	known := data.Exists() && data.Type != gjson.Null

	switch name {
	case "pause":
		setOrClear(&b.paused, known, data.Bool)
	case "time-pos":
		setOrClear(&b.position, known, data.Float)
	case "duration":
		if b.degraded.Load() {
			b.duration.Clear()
			return
		}
		setOrClear(&b.duration, known, data.Float)
	case "speed":
		setOrClear(&b.speed, known, data.Float)
	case "volume":
		setOrClear(&b.volume, known, data.Float)
	case "video-zoom":
		setOrClear(&b.zoom, known, data.Float)
	case "sid":
		// mpv reports false when no subtitle is selected
		setOrClear(&b.sid, known, func() int { return int(data.Int()) })
	case "chapter":
		setOrClear(&b.chapter, known, func() int { return int(data.Int()) })
	case "track-list":
		setOrClear(&b.tracks, known, func() []Track { return decodeTracks(data) })
	case "chapter-list":
		setOrClear(&b.chapters, known, func() []Chapter { return decodeChapters(data) })
	}
}

func setOrClear[T any](c *Cell[T], known bool, get func() T) {
	if !known {
		c.Clear()
		return
	}
	c.Set(get())
}

func decodeTracks(data gjson.Result) []Track {
	return lo.Map(data.Array(), func(t gjson.Result, _ int) Track {
		return Track{
			ID:       int(t.Get("id").Int()),
			Type:     t.Get("type").String(),
			Title:    t.Get("title").String(),
			Lang:     t.Get("lang").String(),
			Selected: t.Get("selected").Bool(),
		}
	})
}

func decodeChapters(data gjson.Result) []Chapter {
	return lo.Map(data.Array(), func(c gjson.Result, _ int) Chapter {
		return Chapter{Title: c.Get("title").String(), Time: c.Get("time").Float()}
	})
}

// Reads

func (b *Bridge) Paused() mo.Option[bool]        { return b.paused.Get() }
func (b *Bridge) Position() mo.Option[float64]   { return b.position.Get() }
func (b *Bridge) Duration() mo.Option[float64]   { return b.duration.Get() }
func (b *Bridge) Speed() mo.Option[float64]      { return b.speed.Get() }
func (b *Bridge) Zoom() mo.Option[float64]       { return b.zoom.Get() }
func (b *Bridge) Brightness() mo.Option[float64] { return b.brightness.Get() }
func (b *Bridge) Chapters() mo.Option[[]Chapter] { return b.chapters.Get() }
func (b *Bridge) Chapter() mo.Option[int]        { return b.chapter.Get() }
func (b *Bridge) Tracks() mo.Option[[]Track]     { return b.tracks.Get() }
func (b *Bridge) Degraded() bool                 { return b.degraded.Load() }

// Volume is mpv's volume rounded to an integer, 0..100+boost cap.
func (b *Bridge) Volume() mo.Option[int] {
	v, ok := b.volume.Get().Get()
	if !ok {
		return mo.None[int]()
	}
	return mo.Some(int(math.Round(v)))
}

// SubtitleActive reports whether a subtitle track is currently selected.
func (b *Bridge) SubtitleActive() bool {
	return b.sid.Get().OrElse(0) > 0
}

// Snapshot copies every mirrored value.
func (b *Bridge) Snapshot() Snapshot {
	s := Snapshot{
		Position:   b.Position(),
		Duration:   b.Duration(),
		Paused:     b.Paused(),
		Speed:      b.Speed(),
		Volume:     b.Volume(),
		Brightness: b.Brightness(),
		Zoom:       b.Zoom(),
	}
	if v, ok := s.Volume.Get(); ok {
		s.Boost = mo.Some(max(0, v-BaseVolume))
	}
	return s
}

// SetVolumeBoostCap sets how far above 100 the volume may go.
func (b *Bridge) SetVolumeBoostCap(boost int) {
	b.boostCap.Store(int64(max(0, boost)))
	b.enqueue("set_property", "volume-max", b.volumeLimit())
}

func (b *Bridge) volumeLimit() int {
	return BaseVolume + int(b.boostCap.Load())
}

// Commands

func (b *Bridge) Seek(value float64, mode SeekMode, precision Precision) {
	b.enqueue("seek", value, Flags(mode, precision))
}

func (b *Bridge) SetPaused(paused bool) {
	b.enqueue("set_property", "pause", paused)
}

func (b *Bridge) SetSpeed(speed float64) {
	b.enqueue("set_property", "speed", speed)
}

func (b *Bridge) SetVolume(volume int) {
	volume = min(max(volume, 0), b.volumeLimit())
	b.enqueue("set_property", "volume", volume)
}

func (b *Bridge) SetZoom(zoom float64) {
	b.enqueue("set_property", "video-zoom", zoom)
}

func (b *Bridge) SubSeek(direction int) {
	b.enqueue("sub-seek", direction)
}

func (b *Bridge) Keypress(name string) {
	if name == "" {
		return
	}
	b.enqueue("keypress", name)
}

func (b *Bridge) FrameStep(direction int) {
	if direction < 0 {
		b.enqueue("frame-back-step")
		return
	}
	b.enqueue("frame-step")
}

// SetBrightness goes straight to the platform backlight; mpv is not involved.
// Only the latest level is guaranteed to be written.
func (b *Bridge) SetBrightness(level float64) {
	if b.backlight == nil {
		return
	}
	level = min(max(level, 0), 1)
	b.brightness.Set(level)
	b.level.Set(level)

	select {
	case b.light <- struct{}{}:
	default:
	}
}

// writeBacklight is the only writer of the backlight. Levels set while a
// write is in flight collapse into the newest one.
func (b *Bridge) writeBacklight(ctx context.Context) {
	if b.backlight == nil {
		return
	}

	var (
		written float64
		wrote   bool
	)
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.light:
		}

		level, ok := b.level.Get().Get()
		if !ok || (wrote && written == level) {
			continue
		}
		if err := b.backlight.SetBrightness(level); err != nil {
			log.Warnf("set brightness: %v", err)
			continue
		}
		written, wrote = level, true
	}
}

// enqueue never blocks. Commands are delivered in order by work.
func (b *Bridge) enqueue(args ...any) {
	b.qmu.Lock()
	b.queue = append(b.queue, args)
	b.qmu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Bridge) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.wake:
		}

		b.qmu.Lock()
		batch := b.queue
		b.queue = nil
		b.qmu.Unlock()

		for _, args := range batch {
			b.send(ctx, args)
		}
	}
}

func (b *Bridge) send(ctx context.Context, args []any) {
	name := args[0].(string)
	client := b.client.Load()
	if client == nil {
		log.Debugf("dropping %s: %v", name, ErrNotConnected)
		b.report(name, ErrNotConnected)
		return
	}

	cctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	_, err := client.Command(cctx, args...)
	b.report(name, err)
	if err == nil {
		return
	}

	log.Warnf("mpv %v: %v", args, err)
	if name == "seek" && errors.Is(err, ErrCommandRejected) {
		b.degrade()
	}
}

// degrade switches to keyframe-only seeking with an unknown duration
// until the next file is loaded.
func (b *Bridge) degrade() {
	if !b.degraded.Swap(true) {
		log.Warn("seek rejected, falling back to keyframe seeking")
	}
	b.duration.Clear()
}

func (b *Bridge) report(name string, err error) {
	if b.OnCommand != nil {
		b.OnCommand(name, err)
	}
}
