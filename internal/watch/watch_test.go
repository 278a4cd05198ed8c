package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalesces(t *testing.T) {
	var calls atomic.Int32
	done := make(chan string, 4)
	d := NewDebouncer(30*time.Millisecond, func(k string) {
		calls.Add(1)
		done <- k
	})
	for i := 0; i < 5; i++ {
		d.Trigger("a.docx")
		time.Sleep(5 * time.Millisecond)
	}
	select {
	case k := <-done:
		if k != "a.docx" {
			t.Fatalf("key = %q", k)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback never fired")
	}
	time.Sleep(60 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Fatalf("calls = %d, want 1", n)
	}
}

func TestDebouncerCancel(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(20*time.Millisecond, func(string) { calls.Add(1) })
	d.Trigger("a")
	d.Trigger("b")
	d.Cancel("a")
	if d.Pending() != 1 {
		t.Fatalf("pending = %d", d.Pending())
	}
	d.Stop()
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatalf("stopped debouncer fired")
	}
}

func TestWatcherHandlesNewAndExistingReports(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "old.docx")
	if err := os.WriteFile(existing, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	got := make(chan string, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := New(dir, func(_ context.Context, p string) { got <- filepath.Base(p) }, Options{
		Debounce: 20 * time.Millisecond,
		Existing: true,
	})
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	waitFor := func(name string) {
		t.Helper()
		select {
		case n := <-got:
			if n != name {
				t.Fatalf("handled %q, want %q", n, name)
			}
		case <-time.After(3 * time.Second):
			t.Fatalf("timed out waiting for %s", name)
		}
	}
	waitFor("old.docx")

	// give the watcher time to register before dropping files
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "new.docx"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor("new.docx")

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherWaitsForRunningHandler(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "slow.docx"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := New(dir, func(context.Context, string) {
		close(started)
		<-release
		finished.Store(true)
	}, Options{Debounce: 10 * time.Millisecond, Existing: true})
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("handler never started")
	}
	cancel()
	select {
	case <-errc:
		t.Fatal("run returned while a handler was still running")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
	if !finished.Load() {
		t.Fatal("run returned before the handler finished")
	}
}

func TestWatcherRejectsMissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), func(context.Context, string) {}, Options{})
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
