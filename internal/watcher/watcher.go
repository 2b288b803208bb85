// Package watcher notices when the settings file is rewritten on disk.
//
// The parent directory is watched rather than the file itself, because an
// atomic replace swaps the inode and a file watch would be lost after the
// first rename. Bursts of events are debounced into one callback.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeFunc is called after the watched file has settled.
type ChangeFunc func(ctx context.Context)

// Watcher monitors a single file.
type Watcher struct {
	path     string
	name     string
	logger   *slog.Logger
	opts     Options
	onChange ChangeFunc
	fs       *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a watcher for path. The parent directory is created if missing.
func New(path string, onChange ChangeFunc, logger *slog.Logger, opts Options) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opts.setDefaults()

	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create watch dir: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		path:     path,
		name:     filepath.Base(path),
		logger:   logger,
		opts:     opts,
		onChange: onChange,
		fs:       fsw,
		done:     make(chan struct{}),
	}, nil
}

// Start processes file events in the background until ctx is canceled or
// Stop is called. Stop waits for the loop to exit.
func (w *Watcher) Start(ctx context.Context) error {
	select {
	case <-w.done:
		return fmt.Errorf("watcher for %s already stopped", w.path)
	default:
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()

	w.logger.Info("watching settings file", "path", w.path)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return
		case <-w.done:
			w.cancelPending()
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ctx, event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("settings watcher error", "error", err)
		}
	}
}

// Stop ends the event loop and releases the OS watch.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	w.wg.Wait()
	return err
}

// Shutdown implements do.ShutdownerWithContextAndError.
func (w *Watcher) Shutdown(context.Context) error {
	return w.Stop()
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if filepath.Base(event.Name) != w.name {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	w.logger.Debug("settings file event", "op", event.Op.String())
	w.settle(ctx)
}

// settle (re)starts the debounce timer.
func (w *Watcher) settle(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.SettleDelay, func() {
		if ctx.Err() != nil {
			return
		}
		select {
		case <-w.done:
			return
		default:
		}
		w.onChange(ctx)
	})
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
