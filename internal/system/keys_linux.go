//go:build linux

package system

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const evKey = 0x01

// WatchKeys reads key presses from every /dev/input/event* device and
// calls onKey for each, until ctx is done. It returns immediately when no
// devices are readable.
func WatchKeys(ctx context.Context, logger Logger, onKey func(Key)) {
	if onKey == nil {
		return
	}
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(paths) == 0 {
		if logger != nil {
			logger.Infof("input", "no evdev devices found, key controls disabled")
		}
		return
	}

	// input_event = timeval + u16 type + u16 code + s32 value.
	tvSize := binary.Size(unix.Timeval{})
	eventSize := tvSize + 8

	keys := make(chan Key, 16)
	for _, path := range paths {
		go readEvents(ctx, path, tvSize, eventSize, keys)
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case k := <-keys:
				onKey(k)
			}
		}
	}()
}

func readEvents(ctx context.Context, path string, tvSize, eventSize int, keys chan<- Key) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return
	}
	f := os.NewFile(uintptr(fd), path)
	defer f.Close()

	buf := make([]byte, 64*eventSize)
	for ctx.Err() == nil {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(fds, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if fds[0].Revents&unix.POLLIN == 0 {
			continue
		}
		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}
		for off := 0; off+eventSize <= n; off += eventSize {
			rec := buf[off : off+eventSize]
			typ := binary.LittleEndian.Uint16(rec[tvSize:])
			code := binary.LittleEndian.Uint16(rec[tvSize+2:])
			value := int32(binary.LittleEndian.Uint32(rec[tvSize+4:]))
			if typ != evKey || value != 1 {
				continue
			}
			select {
			case keys <- Key(code):
			case <-ctx.Done():
				return
			}
		}
	}
}
