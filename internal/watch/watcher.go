// Package watch reports when opened dataset files change on disk.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wethinkt/go-csvview/internal/tuilog"
)

// Event represents a detected change to a watched file.
type Event struct {
	Path      string // Absolute path to the changed file
	EventType string // "created" or "modified"
}

// Watcher monitors the parent directories of a set of files. Editors often
// replace a file by renaming a temporary one over it, which only the
// directory sees.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	done     chan struct{}
	stopOnce sync.Once

	mu    sync.Mutex
	files map[string]bool
	dirs  map[string]int
}

// New creates a Watcher that waits debounce after the last write to a file
// before reporting it.
func New(debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:  fw,
		debounce: debounce,
		done:     make(chan struct{}),
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
	}, nil
}

// Add starts watching path. Adding a path twice is a no-op.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	abs = filepath.Clean(abs)
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.files[abs] {
		return nil
	}
	if w.dirs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			tuilog.Log.Warn("Failed to watch directory", "dir", dir, "error", err)
			return err
		}
		tuilog.Log.Debug("Watching directory", "dir", dir)
	}
	w.dirs[dir]++
	w.files[abs] = true
	return nil
}

// Remove stops watching path.
func (w *Watcher) Remove(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	abs = filepath.Clean(abs)
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.files[abs] {
		return
	}
	delete(w.files, abs)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		_ = w.watcher.Remove(dir)
	}
}

func (w *Watcher) watching(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[path]
}

// Start returns a channel of file events. The channel is closed when the
// context is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) <-chan Event {
	events := make(chan Event, 16)
	go w.watchLoop(ctx, events)
	return events
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) watchLoop(ctx context.Context, events chan<- Event) {
	var sends sync.WaitGroup
	defer func() {
		sends.Wait()
		close(events)
	}()

	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			if t.Stop() {
				sends.Done()
			}
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			path := filepath.Clean(event.Name)
			if !w.watching(path) {
				continue
			}

			var eventType string
			switch {
			case event.Op.Has(fsnotify.Create):
				eventType = "created"
			case event.Op.Has(fsnotify.Write):
				eventType = "modified"
			default:
				continue
			}

			// Debounce: reset timer for this file
			if timer, ok := timers[path]; ok && timer.Stop() {
				sends.Done()
			}
			sends.Add(1)
			timers[path] = time.AfterFunc(w.debounce, func() {
				defer sends.Done()
				select {
				case events <- Event{Path: path, EventType: eventType}:
					tuilog.Log.Debug("File event", "path", path, "type", eventType)
				case <-ctx.Done():
				case <-w.done:
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			tuilog.Log.Error("Watcher error", "error", err)

		case <-w.done:
			return
		case <-ctx.Done():
			return
		}
	}
}
