package config

import (
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/mpvtouch/mpvtouch/log"
	"github.com/spf13/viper"
)

// Holder owns the current Gestures snapshot. Readers never block writers;
// a reload swaps in a whole new snapshot.
type Holder struct {
	current atomic.Pointer[Gestures]

	mu        sync.Mutex
	listeners []func(*Gestures)
}

// NewHolder starts with the given snapshot.
func NewHolder(initial *Gestures) *Holder {
	h := &Holder{}
	h.current.Store(initial)
	return h
}

// Snapshot returns the active settings. The result must not be mutated.
func (h *Holder) Snapshot() *Gestures {
	return h.current.Load()
}

// Store replaces the active snapshot and notifies listeners.
func (h *Holder) Store(g *Gestures) {
	h.current.Store(g)

	h.mu.Lock()
	listeners := append([]func(*Gestures){}, h.listeners...)
	h.mu.Unlock()

	for _, l := range listeners {
		l(g)
	}
}

// OnReload registers a callback invoked after every snapshot swap.
// Callbacks run on the watcher goroutine.
func (h *Holder) OnReload(f func(*Gestures)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, f)
}

// Watch makes viper follow the config file and rebuilds the snapshot on writes.
func (h *Holder) Watch() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		h.handle(e)
	})
	viper.WatchConfig()
}

func (h *Holder) handle(e fsnotify.Event) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}

	log.Infof("config changed (%s), reloading gesture settings", e.Op)
	h.Store(Load())
}
