package tailnotify

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWait_TimesOutWhenNoGrowth(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.bin")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	n, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer n.Close()

	start := time.Now()
	changed, err := n.Wait(50 * time.Millisecond)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if changed {
		t.Fatal("expected no change to be observed")
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("returned too early: %v", elapsed)
	}
}

func TestWait_ReturnsTrueOnGrowth(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.bin")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	n, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer n.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		time.Sleep(20 * time.Millisecond)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
		if err != nil {
			return
		}
		f.WriteString("world")
		f.Close()
	}()

	changed, err := n.Wait(2 * time.Second)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !changed {
		t.Fatal("expected growth to be observed")
	}
	<-done
}

func TestPollNotifier_BackoffResetsOnGrowth(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.bin")
	if err := os.WriteFile(path, []byte("a"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	p, err := newPollNotifier(path)
	if err != nil {
		t.Fatalf("newPollNotifier: %v", err)
	}
	defer p.Close()

	if _, err := p.Wait(30 * time.Millisecond); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if p.backoff <= initialBackoff {
		t.Fatalf("expected backoff to grow past initial, got %v", p.backoff)
	}

	if err := os.WriteFile(path, []byte("ab"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	changed, err := p.Wait(time.Second)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !changed {
		t.Fatal("expected growth to be observed")
	}
	if p.backoff != initialBackoff {
		t.Fatalf("expected backoff reset to initial, got %v", p.backoff)
	}
}
