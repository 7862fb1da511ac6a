package tailnotify

import (
	"fmt"
	"os"
	"time"
)

const (
	initialBackoff = 10 * time.Millisecond
	maxBackoff     = 100 * time.Millisecond
)

// pollNotifier implements Notifier by polling file size with exponential
// backoff, for platforms without a kernel file-change mechanism (spec
// §4.3). It is also the implementation selected on such platforms by the
// build-tagged New constructors.
type pollNotifier struct {
	path     string
	lastSize int64
	backoff  time.Duration
}

func newPollNotifier(path string) (*pollNotifier, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("tailnotify: stat: %w", err)
	}
	return &pollNotifier{path: path, lastSize: st.Size(), backoff: initialBackoff}, nil
}

func (p *pollNotifier) Wait(timeout time.Duration) (bool, error) {
	infinite := timeout <= 0
	var deadline time.Time
	if !infinite {
		deadline = time.Now().Add(timeout)
	}

	for {
		st, err := os.Stat(p.path)
		if err != nil {
			return false, fmt.Errorf("tailnotify: stat: %w", err)
		}
		if st.Size() > p.lastSize {
			p.lastSize = st.Size()
			p.backoff = initialBackoff
			return true, nil
		}
		if !infinite && !time.Now().Before(deadline) {
			return false, nil
		}

		sleep := p.backoff
		if !infinite {
			if remaining := time.Until(deadline); remaining < sleep {
				sleep = remaining
			}
		}
		if sleep > 0 {
			time.Sleep(sleep)
		}

		p.backoff *= 2
		if p.backoff > maxBackoff {
			p.backoff = maxBackoff
		}
	}
}

func (p *pollNotifier) Close() error {
	return nil
}
