package ring

import (
	"runtime"
	"testing"
)

// TestSPSCStress_S5 is scenario S5: a producer goroutine pushes 0..N-1
// into a ring of capacity 512; a consumer goroutine pops into a slice.
// The final slice must equal [0, 1, ..., N-1] and the checksum must equal
// N(N-1)/2 (spec §8, S5).
func TestSPSCStress_S5(t *testing.T) {
	const n = 1_000_000
	r := New[int](512)

	got := make([]int, 0, n)

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		for len(got) < n {
			v, ok := r.TryPop()
			if !ok {
				runtime.Gosched()
				continue
			}
			got = append(got, *v)
		}
	}()

	for i := 0; i < n; i++ {
		v := i
		for !r.TryPush(&v) {
			runtime.Gosched()
		}
	}

	<-consumerDone

	if len(got) != n {
		t.Fatalf("got %d items, want %d", len(got), n)
	}

	var checksum uint64
	for i, v := range got {
		if v != i {
			t.Fatalf("order violation at index %d: got %d want %d", i, v, i)
		}
		checksum += uint64(v)
	}
	want := uint64(n) * uint64(n-1) / 2
	if checksum != want {
		t.Fatalf("checksum = %d, want %d", checksum, want)
	}
}

// property 5: conservation — total popped never exceeds total pushed.
func TestConservation(t *testing.T) {
	const n = 200_000
	r := New[int](1024)

	pushed := make([]int, n)
	for i := range pushed {
		pushed[i] = i
	}

	var popped int
	done := make(chan struct{})
	go func() {
		defer close(done)
		for popped < n {
			if _, ok := r.TryPop(); ok {
				popped++
			} else {
				runtime.Gosched()
			}
		}
	}()

	for i := range pushed {
		for !r.TryPush(&pushed[i]) {
			runtime.Gosched()
		}
		if popped > i+1 {
			t.Fatalf("consumer got ahead of producer: popped=%d pushed=%d", popped, i+1)
		}
	}
	<-done

	if popped != n {
		t.Fatalf("popped %d, want %d", popped, n)
	}
}
