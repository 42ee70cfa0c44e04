package player

import (
	"bufio"
	"encoding/json"
	"net"
	"path/filepath"
	"sync"
	"testing"

	"github.com/tidwall/gjson"
)

// fakeMPV speaks just enough of mpv's JSON-IPC to drive the bridge.
type fakeMPV struct {
	t        *testing.T
	socket   string
	listener net.Listener

	mu       sync.Mutex
	conns    []net.Conn
	commands [][]any
	reject   map[string]string
	replies  map[string]any
}

func newFakeMPV(t *testing.T) *fakeMPV {
	socket := filepath.Join(t.TempDir(), "mpv.sock")
	l, err := net.Listen("unix", socket)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	f := &fakeMPV{
		t:        t,
		socket:   socket,
		listener: l,
		reject:   make(map[string]string),
		replies:  make(map[string]any),
	}
	go f.accept()
	t.Cleanup(f.Close)
	return f
}

func (f *fakeMPV) accept() {
	for {
		conn, err := f.listener.Accept()
		if err != nil {
			return
		}
		f.mu.Lock()
		f.conns = append(f.conns, conn)
		f.mu.Unlock()
		go f.serve(conn)
	}
}

func (f *fakeMPV) serve(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		msg := gjson.ParseBytes(scanner.Bytes())

		var cmd []any
		_ = json.Unmarshal([]byte(msg.Get("command").Raw), &cmd)
		name, _ := cmd[0].(string)

		f.mu.Lock()
		f.commands = append(f.commands, cmd)
		status, rejected := f.reject[name]
		data := f.replies[name]
		f.mu.Unlock()

		if !rejected {
			status = "success"
		}
		reply, _ := json.Marshal(map[string]any{
			"request_id": msg.Get("request_id").Int(),
			"error":      status,
			"data":       data,
		})
		_, _ = conn.Write(append(reply, '\n'))
	}
}

// emit pushes a raw event line to every connected client.
func (f *fakeMPV) emit(event map[string]any) {
	line, _ := json.Marshal(event)

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conns {
		_, _ = c.Write(append(line, '\n'))
	}
}

func (f *fakeMPV) rejectCommand(name, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reject[name] = status
}

func (f *fakeMPV) reply(name string, data any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[name] = data
}

// named returns the recorded commands whose first element is name.
func (f *fakeMPV) named(name string) [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out [][]any
	for _, c := range f.commands {
		if c[0] == name {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeMPV) dropClients() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conns {
		_ = c.Close()
	}
	f.conns = nil
}

func (f *fakeMPV) Close() {
	_ = f.listener.Close()
	f.dropClients()
}
