package confloader

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// changeRecorder collects watcher notifications.
type changeRecorder struct {
	mu    sync.Mutex
	paths []string
	ch    chan string
}

func newChangeRecorder() *changeRecorder {
	return &changeRecorder{ch: make(chan string, 16)}
}

func (r *changeRecorder) record(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
	select {
	case r.ch <- path:
	default:
	}
}

func (r *changeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

func (r *changeRecorder) wait(t *testing.T) string {
	t.Helper()
	select {
	case p := <-r.ch:
		return p
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change notification")
		return ""
	}
}

// startWatcher watches path and runs the watcher until test cleanup.
func startWatcher(t *testing.T, path string, opts ...WatcherOption) (*Watcher, *changeRecorder) {
	t.Helper()
	w, err := NewWatcher(opts...)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	rec := newChangeRecorder()
	w.OnChange(rec.record)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		w.Stop()
	})
	return w, rec
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestNewWatcher_Options(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	w, err := NewWatcher(WithWatcherLogger(logger), WithDebounce(0))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if w.logger != logger {
		t.Error("WithWatcherLogger() option not applied")
	}
	if w.debounce != 0 {
		t.Errorf("debounce = %v, want 0", w.debounce)
	}

	w2, err := NewWatcher(WithWatcherLogger(nil), WithDebounce(-time.Second))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w2.Stop()
	if w2.logger == nil || w2.debounce != DefaultDebounce {
		t.Errorf("invalid options should keep defaults, got logger=%v debounce=%v", w2.logger, w2.debounce)
	}
}

func TestWatcher_Watch_NonexistentDir(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if err := w.Watch(filepath.Join(t.TempDir(), "missing", "pixmesh.yaml")); err == nil {
		t.Error("Watch() should fail for a missing directory")
	}
}

func TestWatcher_FileWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pixmesh.yaml")
	writeConfig(t, path, "log:\n  level: info\n")

	_, rec := startWatcher(t, path, WithDebounce(20*time.Millisecond))

	writeConfig(t, path, "log:\n  level: debug\n")
	if got := rec.wait(t); got != path {
		t.Errorf("changed path = %q, want %q", got, path)
	}
}

func TestWatcher_FileCreatedAfterWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pixmesh.yaml")

	_, rec := startWatcher(t, path, WithDebounce(0))

	writeConfig(t, path, "canvas:\n  width: 10\n")
	rec.wait(t)
}

func TestWatcher_Debounce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pixmesh.yaml")
	writeConfig(t, path, "a: 0\n")

	_, rec := startWatcher(t, path, WithDebounce(300*time.Millisecond))

	for i := 0; i < 5; i++ {
		writeConfig(t, path, "a: 1\n")
	}
	rec.wait(t)
	time.Sleep(400 * time.Millisecond)

	if n := rec.count(); n != 1 {
		t.Errorf("notifications = %d, want 1 for one burst", n)
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pixmesh.yaml")
	writeConfig(t, path, "a: 0\n")

	_, rec := startWatcher(t, path, WithDebounce(0))

	writeConfig(t, filepath.Join(dir, "board.json"), "{}")
	time.Sleep(200 * time.Millisecond)
	if n := rec.count(); n != 0 {
		t.Fatalf("notifications = %d after sibling write, want 0", n)
	}

	writeConfig(t, path, "a: 1\n")
	rec.wait(t)
}

func TestWatcher_HandlersInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pixmesh.yaml")
	writeConfig(t, path, "a: 0\n")

	w, rec := startWatcher(t, path, WithDebounce(0))

	var order []int
	var mu sync.Mutex
	for i := 1; i <= 2; i++ {
		w.OnChange(func(string) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}

	writeConfig(t, path, "a: 1\n")
	rec.wait(t)

	mu.Lock()
	defer mu.Unlock()
	if len(order) < 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("handler order = %v, want [1 2 ...]", order)
	}
}

func TestWatcher_RunContextCancel(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestWatcher_StopEndsRun(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(context.Background()) }()

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after Stop")
	}
}

func TestWatcher_StopCancelsPending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pixmesh.yaml")
	writeConfig(t, path, "a: 0\n")

	w, err := NewWatcher(WithDebounce(300 * time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	var calls atomic.Int32
	w.OnChange(func(string) { calls.Add(1) })
	w.Start()

	writeConfig(t, path, "a: 1\n")
	time.Sleep(100 * time.Millisecond)
	w.Stop()
	time.Sleep(400 * time.Millisecond)

	if n := calls.Load(); n != 0 {
		t.Errorf("calls after Stop = %d, want 0", n)
	}
}
