// Package control provides the single cross-goroutine coordination point
// between the producer, consumer, and monitor goroutines: a shutdown flag
// and a place to record the first fatal error either worker hits.
//
// This is the only synchronization between producer and consumer beyond
// the SPSC ring itself (spec §5, "Shared resources").
package control

import (
	"sync"
	"sync/atomic"
)

// Flag is an atomic boolean with release/acquire semantics, set once by a
// signal handler or by an unrecoverable error on either worker.
type Flag struct {
	v atomic.Bool
}

// Set raises the flag. Idempotent.
func (f *Flag) Set() {
	f.v.Store(true)
}

// IsSet reports whether the flag has been raised.
func (f *Flag) IsSet() bool {
	return f.v.Load()
}

// ErrorSlot records the first fatal error reported by either worker.
// Only the first call to Set has any effect; later calls are dropped so
// that the original failure is never masked by a downstream one (e.g. the
// consumer failing because the producer already stopped feeding it).
type ErrorSlot struct {
	once sync.Once
	err  atomic.Value // error
}

// Set records err as the fatal error, if none has been recorded yet.
func (s *ErrorSlot) Set(err error) {
	if err == nil {
		return
	}
	s.once.Do(func() {
		s.err.Store(err)
	})
}

// Err returns the recorded error, or nil if none was recorded.
func (s *ErrorSlot) Err() error {
	v := s.err.Load()
	if v == nil {
		return nil
	}
	return v.(error)
}

// Group bundles the shutdown flag, the fatal-error slot, and a WaitGroup
// the main goroutine uses to join the producer and consumer before
// printing final stats and choosing an exit code.
//
// ProducerCount and ConsumerCount are observational counters the monitor
// goroutine reads on its own ticker — a single writer (the owning
// goroutine) and a single reader, the same cross-goroutine-visibility
// shape as the shutdown flag above, just carrying a count instead of a
// boolean.
type Group struct {
	Shutdown Flag
	Fatal    ErrorSlot
	Workers  sync.WaitGroup

	ProducerCount atomic.Uint64
	ConsumerCount atomic.Uint64
}

// New returns a ready-to-use coordination group.
func New() *Group {
	return &Group{}
}

// Fail raises the shutdown flag and records err as the fatal cause. Safe
// to call from either worker or from the signal handler (with err == nil
// for a clean shutdown request).
func (g *Group) Fail(err error) {
	g.Fatal.Set(err)
	g.Shutdown.Set()
}
