package player

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

// ipcCommand is the JSON structure sent to mpv's IPC socket.
type ipcCommand struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type ipcReply struct {
	data gjson.Result
	err  error
}

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	readDeadline = 1 * time.Second
	maxLineSize  = 1 << 20
)

// dial connects to the mpv socket, retrying transient failures.
func dial(ctx context.Context, socketPath string) (net.Conn, error) {
	var (
		d       net.Dialer
		lastErr error
	)

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		conn, err := d.DialContext(ctx, "unix", socketPath)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("connect %s after %d attempts: %w", socketPath, maxRetries, lastErr)
}

// ipcClient multiplexes commands and events over one persistent connection.
// Replies are matched to commands by request_id; anything carrying an
// "event" field goes to the event handler.
type ipcClient struct {
	conn   net.Conn
	events func(gjson.Result)

	wmu sync.Mutex

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan ipcReply
	err     error

	done chan struct{}
}

func newIPCClient(conn net.Conn, events func(gjson.Result)) *ipcClient {
	c := &ipcClient{
		conn:    conn,
		events:  events,
		pending: make(map[int64]chan ipcReply),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Done is closed once the connection is gone.
func (c *ipcClient) Done() <-chan struct{} {
	return c.done
}

// Err reports why the connection ended.
func (c *ipcClient) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close tears the connection down; pending commands fail.
func (c *ipcClient) Close() error {
	return c.conn.Close()
}

// Command sends one command and waits for its reply.
func (c *ipcClient) Command(ctx context.Context, args ...any) (gjson.Result, error) {
	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return gjson.Result{}, err
	}
	c.nextID++
	id := c.nextID
	ch := make(chan ipcReply, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	payload, err := json.Marshal(ipcCommand{Command: args, RequestID: id})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("marshal: %w", err)
	}

	// mpv requires newline-delimited JSON
	c.wmu.Lock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(readDeadline))
	_, err = c.conn.Write(append(payload, '\n'))
	c.wmu.Unlock()
	if err != nil {
		return gjson.Result{}, fmt.Errorf("write: %w", err)
	}

	timer := time.NewTimer(readDeadline)
	defer timer.Stop()

	select {
	case r := <-ch:
		return r.data, r.err
	case <-c.done:
		return gjson.Result{}, fmt.Errorf("read: %w", c.Err())
	case <-ctx.Done():
		return gjson.Result{}, ctx.Err()
	case <-timer.C:
		return gjson.Result{}, fmt.Errorf("read: no reply to %v within %s", args[0], readDeadline)
	}
}

func (c *ipcClient) readLoop() {
	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !gjson.ValidBytes(line) {
			continue
		}
		c.dispatch(gjson.ParseBytes(line))
	}

	err := scanner.Err()
	if err == nil {
		err = ErrNotConnected
	}

	c.mu.Lock()
	c.err = err
	pending := c.pending
	c.pending = make(map[int64]chan ipcReply)
	c.mu.Unlock()

	for _, ch := range pending {
		deliver(ch, ipcReply{err: err})
	}
	close(c.done)
}

func (c *ipcClient) dispatch(msg gjson.Result) {
	if msg.Get("event").Exists() {
		if c.events != nil {
			c.events(msg)
		}
		return
	}

	id := msg.Get("request_id")
	if !id.Exists() {
		return
	}

	c.mu.Lock()
	ch, ok := c.pending[id.Int()]
	c.mu.Unlock()
	if !ok {
		return
	}

	reply := ipcReply{data: msg.Get("data")}
	if status := msg.Get("error").String(); status != "" && status != "success" {
		reply.err = fmt.Errorf("%w: %s", ErrCommandRejected, status)
	}
	deliver(ch, reply)
}

func deliver(ch chan ipcReply, r ipcReply) {
	select {
	case ch <- r:
	default:
	}
}

// oneShot dials, issues a single command and hangs up.
func oneShot(ctx context.Context, socketPath string, args ...any) (gjson.Result, error) {
	conn, err := dial(ctx, socketPath)
	if err != nil {
		return gjson.Result{}, err
	}

	c := newIPCClient(conn, nil)
	defer c.Close()

	return c.Command(ctx, args...)
}

// Probe asks mpv at socketPath for its version string.
func Probe(ctx context.Context, socketPath string) (string, error) {
	data, err := oneShot(ctx, socketPath, "get_property", "mpv-version")
	if err != nil {
		return "", err
	}
	return data.String(), nil
}
