//go:build linux

package input

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"syscall"
	"unsafe"

	"github.com/mpvtouch/mpvtouch/log"
	"github.com/mpvtouch/mpvtouch/touch"
	"golang.org/x/sys/unix"
)

// pollTimeout bounds how long Run waits before checking ctx again.
const pollTimeout = 200 // ms

// absInfo mirrors struct input_absinfo.
type absInfo struct {
	Value      int32
	Minimum    int32
	Maximum    int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

// Evdev reads a multitouch screen through /dev/input.
type Evdev struct {
	file    *os.File
	decoder *Decoder
}

// Open opens a touchscreen. width and height scale frames; zero keeps device units.
func Open(path string, width, height float64) (*Evdev, error) {
	f, err := os.OpenFile(path, os.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	x, errX := axis(f, absMtPositionX)
	y, errY := axis(f, absMtPositionY)
	if errX != nil || errY != nil || x.Max <= x.Min || y.Max <= y.Min {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrNotTouchscreen)
	}

	log.Infof("touchscreen %s: x %d..%d, y %d..%d", path, x.Min, x.Max, y.Min, y.Max)
	return &Evdev{file: f, decoder: NewDecoder(x, y, width, height)}, nil
}

// Close releases the device. Run closes it on return as well.
func (e *Evdev) Close() error {
	return e.file.Close()
}

// axis queries EVIOCGABS(code).
func axis(f *os.File, code uint16) (Axis, error) {
	var info absInfo
	req := ioctlRead('E', 0x40+uintptr(code), unsafe.Sizeof(info))
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), req, uintptr(unsafe.Pointer(&info))); errno != 0 {
		return Axis{}, errno
	}
	return Axis{Min: info.Minimum, Max: info.Maximum}, nil
}

func ioctlRead(kind, nr, size uintptr) uintptr {
	const read = 2
	return read<<30 | size<<16 | kind<<8 | nr
}

// Run delivers frames to out until ctx is done or the device goes away.
func (e *Evdev) Run(ctx context.Context, out chan<- touch.Frame) error {
	defer e.file.Close()

	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return fmt.Errorf("epoll_create1: %w", err)
	}
	defer unix.Close(epfd)

	fd := int(e.file.Fd())
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}); err != nil {
		return fmt.Errorf("epoll_ctl: %w", err)
	}

	size := binary.Size(Event{})
	buf := make([]byte, size*64)
	ready := make([]unix.EpollEvent, 1)

	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := unix.EpollWait(epfd, ready, pollTimeout)
		if err != nil {
			if errors.Is(err, syscall.EINTR) {
				continue
			}
			return fmt.Errorf("epoll_wait: %w", err)
		}
		if n == 0 {
			continue
		}
		if ready[0].Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
			return fmt.Errorf("%s: device error or hangup", e.file.Name())
		}

		read, err := unix.Read(fd, buf)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				continue
			}
			return fmt.Errorf("read %s: %w", e.file.Name(), err)
		}

		reader := bytes.NewReader(buf[:read-read%size])
		for reader.Len() > 0 {
			var ev Event
			if err := binary.Read(reader, binary.LittleEndian, &ev); err != nil {
				break
			}
			frame, ok := e.decoder.Feed(ev)
			if !ok {
				continue
			}
			select {
			case out <- frame:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
