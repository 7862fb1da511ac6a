package ring

import (
	"testing"
)

func TestNew_PanicsOnNonPowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-power-of-two capacity")
		}
	}()
	New[int](3)
}

func TestNew_PanicsOnZero(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for zero capacity")
		}
	}()
	New[int](0)
}

func TestPushPop_Basic(t *testing.T) {
	r := New[int](4)
	v := 42
	if !r.TryPush(&v) {
		t.Fatal("push should succeed")
	}
	got, ok := r.TryPop()
	if !ok {
		t.Fatal("pop should succeed")
	}
	if *got != 42 {
		t.Fatalf("got %d want 42", *got)
	}
}

func TestPop_EmptyReturnsFalse(t *testing.T) {
	r := New[int](4)
	_, ok := r.TryPop()
	if ok {
		t.Fatal("pop on empty ring should fail")
	}
	if !r.Empty() {
		t.Fatal("ring should report empty")
	}
}

// property 6 (no false full): usable capacity is size-1.
func TestPush_FullAtCapacityMinusOne(t *testing.T) {
	r := New[int](4)
	vals := []int{1, 2, 3}
	for i, v := range vals {
		if !r.TryPush(&v) {
			t.Fatalf("push %d should succeed", i)
		}
	}
	extra := 4
	if r.TryPush(&extra) {
		t.Fatal("push should fail once usable capacity (size-1) is reached")
	}
	if r.Size() < r.Capacity() {
		t.Fatalf("expected logical size >= capacity at full, got %d < %d", r.Size(), r.Capacity())
	}
}

// property 4: FIFO.
func TestFIFOOrder(t *testing.T) {
	r := New[int](8)
	values := make([]int, 5)
	for i := range values {
		values[i] = i
	}
	for i := range values {
		if !r.TryPush(&values[i]) {
			t.Fatalf("push %d failed", i)
		}
	}
	for i := range values {
		got, ok := r.TryPop()
		if !ok {
			t.Fatalf("pop %d failed", i)
		}
		if *got != i {
			t.Fatalf("fifo violation: got %d want %d", *got, i)
		}
	}
}

func TestWraparound(t *testing.T) {
	r := New[int](4)
	var seq int
	for round := 0; round < 10; round++ {
		v1, v2, v3 := seq, seq+1, seq+2
		if !r.TryPush(&v1) || !r.TryPush(&v2) || !r.TryPush(&v3) {
			t.Fatalf("round %d: push failed", round)
		}
		for _, want := range []int{v1, v2, v3} {
			got, ok := r.TryPop()
			if !ok || *got != want {
				t.Fatalf("round %d: got %v ok=%v want %d", round, got, ok, want)
			}
		}
		seq += 3
	}
}

func TestCapacity(t *testing.T) {
	r := New[int](512)
	if r.Capacity() != 511 {
		t.Fatalf("got %d want 511", r.Capacity())
	}
}
