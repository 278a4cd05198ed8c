// Package watch processes reports dropped into a folder, such as a removable
// drive the ultrasound machine exports to.
package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/KaramelBytes/ecoreport/internal/utils"
	"github.com/fsnotify/fsnotify"
)

// Handler is called once per report file after writes to it settle.
type Handler func(ctx context.Context, path string)

// Options configures a Watcher.
type Options struct {
	// Debounce is how long a file must stay unchanged before it is handled.
	Debounce time.Duration
	// Existing also handles reports already present when watching starts.
	Existing bool
	Logger   *slog.Logger
}

// Watcher watches one directory (not recursively) for report files.
type Watcher struct {
	dir     string
	opt     Options
	handler Handler
	logger  *slog.Logger
}

// New returns a watcher for dir.
func New(dir string, handler Handler, opt Options) *Watcher {
	logger := opt.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Watcher{dir: dir, opt: opt, handler: handler, logger: logger}
}

// Run watches until ctx is cancelled, then returns once every handler already
// running has finished. Handlers run on their own goroutines and receive ctx.
func (w *Watcher) Run(ctx context.Context) error {
	abs, err := filepath.Abs(w.dir)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("watch dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch dir: %s is not a directory", abs)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(abs); err != nil {
		return fmt.Errorf("watch %s: %w", abs, err)
	}

	var running inflight
	deb := NewDebouncer(w.opt.Debounce, func(path string) {
		if ctx.Err() != nil || !running.start() {
			return
		}
		defer running.wg.Done()
		if _, err := os.Stat(path); err != nil {
			w.logger.Debug("file vanished before processing", "file", path)
			return
		}
		w.handler(ctx, path)
	})
	defer func() {
		deb.Stop()
		running.stopAndWait()
	}()

	if w.opt.Existing {
		entries, err := os.ReadDir(abs)
		if err != nil {
			return fmt.Errorf("read dir: %w", err)
		}
		for _, e := range entries {
			if p := filepath.Join(abs, e.Name()); !e.IsDir() && utils.IsReportFile(p) {
				deb.Trigger(p)
			}
		}
	}
	w.logger.Info("watching directory", "dir", abs, "debounce", w.opt.Debounce)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !utils.IsReportFile(event.Name) {
				continue
			}
			switch {
			case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
				deb.Trigger(event.Name)
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				deb.Cancel(event.Name)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "dir", abs, "err", err)
		}
	}
}

// inflight counts running handlers; once stopped it admits no new ones.
type inflight struct {
	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

func (f *inflight) start() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped {
		return false
	}
	f.wg.Add(1)
	return true
}

func (f *inflight) stopAndWait() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
	f.wg.Wait()
}
