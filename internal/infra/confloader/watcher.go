package confloader

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events an editor emits for one save.
const DefaultDebounce = 100 * time.Millisecond

// ChangeFunc is called with the path of a config file that changed.
type ChangeFunc func(path string)

// Watcher reports changes to a set of config files.
//
// Each file's parent directory is watched so saves that replace the file by
// rename are seen. Events for other files in the directory are dropped, and
// events for one file within the debounce window produce one notification.
type Watcher struct {
	fs       *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	mu       sync.Mutex
	files    map[string]struct{}
	handlers []ChangeFunc
	pending  map[string]*time.Timer

	stop     chan struct{}
	stopOnce sync.Once
	stopErr  error
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger for the watcher.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDebounce sets the quiet period before a change is reported.
// Zero reports every event immediately.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a config file watcher.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fs:       fsw,
		logger:   slog.Default(),
		debounce: DefaultDebounce,
		files:    make(map[string]struct{}),
		pending:  make(map[string]*time.Timer),
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch adds path to the watched set.
func (w *Watcher) Watch(path string) error {
	path = filepath.Clean(path)
	if err := w.fs.Add(filepath.Dir(path)); err != nil {
		return err
	}

	w.mu.Lock()
	w.files[path] = struct{}{}
	w.mu.Unlock()

	w.logger.Debug("watching config file", "file", path)
	return nil
}

// OnChange registers fn. Handlers run in registration order, one
// notification at a time, and must not call back into the watcher.
func (w *Watcher) OnChange(fn ChangeFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, fn)
}

// Run delivers change notifications until ctx is done or Stop is called.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("config watcher started")
	defer w.logger.Info("config watcher stopped")

	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("config watcher error", "error", err)
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		}
	}
}

// Start runs the watcher on its own goroutine until Stop.
func (w *Watcher) Start() {
	go func() {
		if err := w.Run(context.Background()); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("config watcher exited", "error", err)
		}
	}()
}

// Stop ends Run, cancels pending notifications and releases the
// underlying watch. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.stop)

		w.mu.Lock()
		for path, t := range w.pending {
			t.Stop()
			delete(w.pending, path)
		}
		w.mu.Unlock()

		w.stopErr = w.fs.Close()
	})
	return w.stopErr
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}
	path := filepath.Clean(ev.Name)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[path]; !ok {
		return
	}
	w.logger.Debug("config file event", "file", path, "op", ev.Op.String())

	if w.debounce == 0 {
		w.notifyLocked(path)
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if _, ok := w.pending[path]; !ok {
			return
		}
		delete(w.pending, path)
		w.notifyLocked(path)
	})
}

// notifyLocked runs the handlers. w.mu must be held; handlers must not
// call back into the watcher.
func (w *Watcher) notifyLocked(path string) {
	select {
	case <-w.stop:
		return
	default:
	}
	for _, fn := range w.handlers {
		fn(path)
	}
}
