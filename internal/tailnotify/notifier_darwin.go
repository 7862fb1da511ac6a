//go:build darwin

package tailnotify

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// kernelNotifier watches path for write/extend events via kqueue.
type kernelNotifier struct {
	kq int
	f  *os.File
}

// New returns the kernel-notified implementation on Darwin (spec §4.3).
// Setup errors are fatal (spec §7, watch_error).
func New(path string) (Notifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tailnotify: open: %w", err)
	}

	kq, err := unix.Kqueue()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("tailnotify: kqueue: %w", err)
	}

	ev := unix.Kevent_t{
		Ident:  uint64(f.Fd()),
		Filter: unix.EVFILT_VNODE,
		Flags:  unix.EV_ADD | unix.EV_CLEAR,
		Fflags: unix.NOTE_WRITE | unix.NOTE_EXTEND,
	}
	if _, err := unix.Kevent(kq, []unix.Kevent_t{ev}, nil, nil); err != nil {
		unix.Close(kq)
		f.Close()
		return nil, fmt.Errorf("tailnotify: kevent register: %w", err)
	}

	return &kernelNotifier{kq: kq, f: f}, nil
}

func (k *kernelNotifier) Wait(timeout time.Duration) (bool, error) {
	var ts *unix.Timespec
	if timeout > 0 {
		t := unix.NsecToTimespec(timeout.Nanoseconds())
		ts = &t
	}

	events := make([]unix.Kevent_t, 1)
	n, err := unix.Kevent(k.kq, nil, events, ts)
	if err != nil {
		if err == unix.EINTR {
			return false, nil
		}
		return false, fmt.Errorf("tailnotify: kevent wait: %w", err)
	}
	return n > 0, nil
}

func (k *kernelNotifier) Close() error {
	err := unix.Close(k.kq)
	if cerr := k.f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
