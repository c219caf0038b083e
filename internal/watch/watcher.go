// Package watch monitors the override grammar file and triggers reloads.
// Watching happens out of band: the hot edit-to-highlight path never
// touches the file system.
package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/casebook-dev/casebook/internal/log"
)

// Handler is called after the watched file changed and the debounce
// window elapsed.
type Handler func(path string)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long rapid successive writes are coalesced.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher watches a single file through fsnotify. Editors typically
// replace files via rename, so the parent directory is watched and
// events are filtered by name.
type Watcher struct {
	path     string
	debounce time.Duration

	mu       sync.Mutex
	handlers []Handler
	timer    *time.Timer

	fsw  *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a watcher for path.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     abs,
		debounce: 200 * time.Millisecond,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// OnChange registers a change handler.
func (w *Watcher) OnChange(h Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, h)
}

// Start begins watching. The file itself may not exist yet; creation
// counts as a change.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return err
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop stops watching and waits for the event loop to exit.
func (w *Watcher) Stop() {
	if w.fsw == nil {
		return
	}
	close(w.done)
	w.fsw.Close()
	w.wg.Wait()
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.schedule()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.L().Warn("grammar watcher error", "err", err)
		}
	}
}

// schedule arms (or re-arms) the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()

	for _, h := range handlers {
		h(w.path)
	}
}
