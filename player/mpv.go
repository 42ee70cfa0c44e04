package player

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mpvtouch/mpvtouch/log"
)

const (
	socketWaitRetries = 20
	socketWaitDelay   = 150 * time.Millisecond
)

// Process is an mpv instance started by us with an IPC server enabled.
type Process struct {
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv process exits
}

// Launch starts binary on target and waits until its IPC socket accepts connections.
func Launch(ctx context.Context, binary, target, socketPath string) (*Process, error) {
	safeTarget, err := sanitizeMediaTarget(target)
	if err != nil {
		return nil, fmt.Errorf("invalid media target: %w", err)
	}

	// A stale socket from a crashed run would make waitForSocket fail in confusing ways.
	_ = os.Remove(socketPath)

	// Touch input replaces mpv's own OSC interaction; everything else respects mpv.conf.
	args := []string{
		"--no-terminal",
		fmt.Sprintf("--input-ipc-server=%s", socketPath),
		"--force-window=yes",
		"--idle=yes",
		"--keep-open=yes",
		"--osc=no",
		safeTarget,
	}

	p := &Process{
		socketPath: socketPath,
		cmd:        exec.Command(binary, args...),
		exited:     make(chan struct{}),
	}

	// Own process group, so a terminal ^C reaches us and not mpv.
	p.cmd.SysProcAttr = sysProcAttr()
	p.cmd.Stdout = nil
	p.cmd.Stderr = nil
	p.cmd.Stdin = nil

	if err := p.cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}

	go func() {
		_ = p.cmd.Wait()
		close(p.exited)
	}()

	if err := p.waitForSocket(ctx); err != nil {
		select {
		case <-p.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(p.cmd)
		}
		return nil, fmt.Errorf("mpv socket not ready: %w", err)
	}

	log.Infof("launched %s (pid %d) on %s", binary, p.cmd.Process.Pid, socketPath)
	return p, nil
}

// Socket returns the IPC socket path.
func (p *Process) Socket() string {
	return p.socketPath
}

// Wait returns a channel that is closed when the mpv process exits.
func (p *Process) Wait() <-chan struct{} {
	return p.exited
}

func (p *Process) waitForSocket(ctx context.Context) error {
	for i := 0; i < socketWaitRetries; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		case <-time.After(socketWaitDelay):
		}

		conn, err := net.Dial("unix", p.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", p.socketPath, socketWaitRetries)
}

// Close asks mpv to quit, kills it if it does not, and removes the socket.
func (p *Process) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	_, _ = oneShot(ctx, p.socketPath, "quit")
	cancel()

	select {
	case <-p.exited:
	case <-time.After(3 * time.Second):
		_ = killProcess(p.cmd)
	}

	_ = os.Remove(p.socketPath)
	return nil
}

// sanitizeMediaTarget validates that a target is safe to pass to mpv as a positional argument.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty target")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in target")
	}

	// Prevent flag injection: targets must not start with -
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("target must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "rtmp", "rtsp":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}
