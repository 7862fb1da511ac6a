package ring

import "testing"

// BenchmarkPushPop measures single-goroutine push/pop round-trip latency —
// not representative of true cross-core SPSC handoff, but a useful
// regression guard on the fast path's own overhead.
func BenchmarkPushPop(b *testing.B) {
	r := New[int](1024)
	v := 7
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.TryPush(&v)
		r.TryPop()
	}
}

// BenchmarkCrossGoroutine measures sustained SPSC throughput across two
// real goroutines, mirroring the producer/consumer split in the
// production pipeline (spec §5).
func BenchmarkCrossGoroutine(b *testing.B) {
	r := New[int](1024)
	done := make(chan struct{})

	go func() {
		defer close(done)
		received := 0
		for received < b.N {
			if _, ok := r.TryPop(); ok {
				received++
			}
		}
	}()

	b.ResetTimer()
	val := 1
	for i := 0; i < b.N; i++ {
		for !r.TryPush(&val) {
		}
	}
	<-done
}
