//go:build linux

package tailnotify

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// kernelNotifier watches path for modify/close-write events via inotify.
type kernelNotifier struct {
	fd int
	wd int
}

// New returns the kernel-notified implementation on Linux (spec §4.3,
// "on systems providing a kernel file-change mechanism"). Setup errors
// are fatal (spec §7, watch_error).
func New(path string) (Notifier, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("tailnotify: inotify_init1: %w", err)
	}

	wd, err := unix.InotifyAddWatch(fd, path, unix.IN_MODIFY|unix.IN_CLOSE_WRITE)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("tailnotify: inotify_add_watch: %w", err)
	}

	return &kernelNotifier{fd: fd, wd: wd}, nil
}

func (k *kernelNotifier) Wait(timeout time.Duration) (bool, error) {
	timeoutMs := -1
	if timeout > 0 {
		timeoutMs = int(timeout / time.Millisecond)
	}

	fds := []unix.PollFd{{Fd: int32(k.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return false, nil
		}
		return false, fmt.Errorf("tailnotify: poll: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	// Drain and discard events — the caller re-checks file size itself
	// (spec §4.3, "Rationale").
	var buf [4096]byte
	for {
		nr, err := unix.Read(k.fd, buf[:])
		if err == unix.EAGAIN || err == unix.EINTR {
			break
		}
		if err != nil {
			return false, fmt.Errorf("tailnotify: read: %w", err)
		}
		if nr <= 0 {
			break
		}
	}
	return true, nil
}

func (k *kernelNotifier) Close() error {
	unix.InotifyRmWatch(k.fd, uint32(k.wd))
	return unix.Close(k.fd)
}
