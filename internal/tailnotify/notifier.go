// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: notifier.go — tail-follow notification capability
//
// Purpose:
//   - Blocks a caller until the log file named at construction has
//     plausibly grown (spec §4.3).
//
// Notes:
//   - Prefers a kernel file-change mechanism (inotify on Linux, kqueue on
//     Darwin); degrades to adaptive polling elsewhere. Selection is
//     compile-time, via the New constructor in the build-tagged sibling
//     file for the current GOOS.
//   - The notifier only signals presence of change — it never promises
//     the new bytes are fully framed. Callers must still apply the same
//     boundary checks the log reader already does.
// ─────────────────────────────────────────────────────────────────────────────

package tailnotify

import "time"

// Notifier blocks until the watched file has plausibly grown, or the
// timeout elapses. A timeout of 0 blocks indefinitely.
type Notifier interface {
	// Wait returns true if a change was observed (the caller must
	// independently re-check file size), false on timeout. A non-nil
	// error indicates a fatal setup or read failure (spec §7,
	// watch_error); a transient "would block" is never surfaced as an
	// error.
	Wait(timeout time.Duration) (bool, error)

	// Close releases the watch and any notification handle.
	Close() error
}
