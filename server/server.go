package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mpvtouch/mpvtouch/input"
	"github.com/mpvtouch/mpvtouch/log"
	"github.com/mpvtouch/mpvtouch/metrics"
	"github.com/mpvtouch/mpvtouch/overlay"
	"github.com/mpvtouch/mpvtouch/player"
	"github.com/mpvtouch/mpvtouch/touch"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// Controls is the part of the gesture loop remote clients may drive directly.
type Controls interface {
	SetLocked(locked bool)
	FrameStep(direction int)
}

// Options configures a Server.
type Options struct {
	// Frames receives decoded remote touch frames.
	Frames chan<- touch.Frame
	// Controls handles lock and frame_step messages. Optional.
	Controls Controls
	// State returns the playback snapshot served at /state and sent on connect. Optional.
	State func() player.Snapshot
	// MaxFrameRate limits touch frames per second per client. Zero disables the limit.
	MaxFrameRate float64
}

// Server serves /ws, /state and /metrics.
type Server struct {
	opts   Options
	hub    *Hub
	logger *logrus.Entry

	// ctx bounds frame delivery; set by Run.
	ctx context.Context

	// owner is the client whose fingers are currently down. Frames from
	// other clients are refused until it lifts or disconnects.
	mu       sync.Mutex
	owner    *Client
	limiters map[*Client]*rate.Limiter
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// New creates a server.
func New(opts Options) *Server {
	return &Server{
		opts:     opts,
		hub:      NewHub(),
		logger:   log.Component("server"),
		ctx:      context.Background(),
		limiters: make(map[*Client]*rate.Limiter),
	}
}

// Hub returns the client hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/state", s.handleState)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Run listens on addr and forwards bus updates to clients until ctx is done.
func (s *Server) Run(ctx context.Context, addr string, bus *overlay.Bus) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln, bus)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, bus *overlay.Bus) error {
	s.ctx = ctx

	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.hub.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		s.forward(ctx, bus)
	}()

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	s.logger.Infof("remote surface listening on %s", ln.Addr())
	err := srv.Serve(ln)
	wg.Wait()

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// forward encodes every bus update and broadcasts it.
func (s *Server) forward(ctx context.Context, bus *overlay.Bus) {
	if bus == nil {
		<-ctx.Done()
		return
	}

	updates, cancel := bus.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			msg, err := overlay.Encode(u)
			if err != nil {
				s.logger.Warn(err)
				continue
			}
			s.hub.Broadcast(msg)
		}
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if s.opts.State == nil {
		http.Error(w, "no player attached", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.opts.State())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("upgrade failed: %s", err)
		return
	}

	c := &Client{
		id:   uuid.NewString(),
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	if s.opts.MaxFrameRate > 0 {
		s.mu.Lock()
		s.limiters[c] = rate.NewLimiter(rate.Limit(s.opts.MaxFrameRate), int(s.opts.MaxFrameRate/10)+1)
		s.mu.Unlock()
	}

	if s.opts.State != nil {
		if msg, err := json.Marshal(overlay.Message{Type: "state", Data: s.opts.State()}); err == nil {
			c.send <- msg
		}
	}

	s.hub.register <- c

	// Pumps outlive the request; the hub and socket errors end them.
	go c.writePump()
	go func() {
		c.readPump(s.receive)
		s.disconnected(c)
	}()
}

// receive dispatches one inbound message.
func (s *Server) receive(c *Client, data []byte) {
	switch kind := gjson.GetBytes(data, "type").String(); kind {
	case "touch":
		s.touch(c, data)
	case "lock":
		var msg LockMessage
		if s.opts.Controls != nil && s.decode(c, data, &msg) {
			s.opts.Controls.SetLocked(msg.Locked)
		}
	case "frame_step":
		var msg FrameStepMessage
		if s.opts.Controls != nil && s.decode(c, data, &msg) && msg.Direction != 0 {
			s.opts.Controls.FrameStep(max(-1, min(1, msg.Direction)))
		}
	default:
		s.logger.WithField("client", c.id).Debugf("ignoring message type %q", kind)
	}
}

func (s *Server) decode(c *Client, data []byte, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.WithField("client", c.id).Debugf("malformed message: %s", err)
		return false
	}
	return true
}

func (s *Server) touch(c *Client, data []byte) {
	frame, err := input.DecodeFrame(data, time.Now())
	if err != nil {
		metrics.RemoteFramesTotal.WithLabelValues("invalid").Inc()
		s.logger.WithField("client", c.id).Debug(err)
		return
	}

	lift := len(frame.Points) == 0

	s.mu.Lock()
	switch {
	case s.owner != nil && s.owner != c:
		s.mu.Unlock()
		metrics.RemoteFramesTotal.WithLabelValues("busy").Inc()
		return
	case !lift:
		s.owner = c
	default:
		s.owner = nil
	}
	limiter := s.limiters[c]
	s.mu.Unlock()

	// a lift always passes so the gesture can end
	if !lift && limiter != nil && !limiter.Allow() {
		metrics.RemoteFramesTotal.WithLabelValues("limited").Inc()
		return
	}

	if s.deliver(frame) {
		metrics.RemoteFramesTotal.WithLabelValues("accepted").Inc()
	}
}

func (s *Server) deliver(f touch.Frame) bool {
	if s.opts.Frames == nil {
		return false
	}
	select {
	case s.opts.Frames <- f:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// disconnected lifts the fingers of a client that vanished mid-gesture.
func (s *Server) disconnected(c *Client) {
	s.mu.Lock()
	owned := s.owner == c
	if owned {
		s.owner = nil
	}
	delete(s.limiters, c)
	s.mu.Unlock()

	if owned {
		s.deliver(touch.Frame{Time: time.Now()})
	}
}
