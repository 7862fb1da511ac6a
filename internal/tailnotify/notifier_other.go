//go:build !linux && !darwin

package tailnotify

// New returns the polling-with-backoff implementation on platforms
// without a wired kernel file-change mechanism (spec §4.3, §9 "Platform
// abstraction for tail notification").
func New(path string) (Notifier, error) {
	return newPollNotifier(path)
}
