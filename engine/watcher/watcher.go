package watcher

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeEvent describes a coalesced modification of one or more watched files.
// A burst of filesystem events within the debounce window produces exactly one
// ChangeEvent after the window closes.
type ChangeEvent struct {
	// Path is the last registered file that changed before the window closed.
	Path string

	// Time is when the debounce window closed.
	Time time.Time
}

// Watcher monitors a set of registered files for modification and delivers
// debounced change notifications. Editors that save by rename-and-replace are
// handled by watching the parent directories rather than the files themselves.
type Watcher interface {
	// Start begins monitoring. Paths registered before Start take effect
	// immediately; Start must be called exactly once.
	//
	// Returns:
	//   - error: error if the underlying filesystem watcher cannot be created
	Start() error

	// Stop terminates monitoring and releases filesystem resources.
	// Safe to call multiple times.
	Stop()

	// SetPaths replaces the full set of watched files. Called after every
	// build attempt with the entry shader plus its resolved includes, so
	// edits to any file in the include graph trigger a reload.
	//
	// Parameters:
	//   - paths: the complete set of files to watch (replaces the previous set)
	//
	// Returns:
	//   - error: error if a parent directory cannot be watched
	SetPaths(paths []string) error

	// Changes returns the channel on which coalesced change events are
	// delivered. The channel is buffered; an undrained event is replaced
	// rather than blocking the watcher.
	//
	// Returns:
	//   - <-chan ChangeEvent: the notification channel
	Changes() <-chan ChangeEvent
}

// fileWatcher is the fsnotify-backed implementation of the Watcher interface.
type fileWatcher struct {
	// debounce is the quiet period required after the last raw event before
	// a ChangeEvent is emitted.
	debounce time.Duration

	// changes delivers coalesced events to the consumer.
	changes chan ChangeEvent

	// mu guards paths, dirs, and fsw across SetPaths and the event loop.
	mu sync.Mutex

	// paths is the set of registered files, keyed by cleaned absolute path.
	paths map[string]bool

	// dirs is the set of parent directories currently added to fsw.
	dirs map[string]bool

	// fsw is the underlying filesystem watcher, nil until Start.
	fsw *fsnotify.Watcher

	quitChannel chan struct{}
	wg          sync.WaitGroup
	stopOnce    sync.Once
}

var _ Watcher = &fileWatcher{}

// NewWatcher creates a new Watcher with the specified options.
// Applies default values first, then each option in order.
// The default debounce window is 200ms.
//
// Parameters:
//   - options: functional options to configure the watcher
//
// Returns:
//   - Watcher: the configured watcher (not yet started)
func NewWatcher(options ...WatcherBuilderOption) Watcher {
	w := &fileWatcher{
		debounce:    200 * time.Millisecond,
		changes:     make(chan ChangeEvent, 1),
		paths:       make(map[string]bool),
		dirs:        make(map[string]bool),
		quitChannel: make(chan struct{}),
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *fileWatcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}

	w.mu.Lock()
	w.fsw = fsw
	for dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			w.mu.Unlock()
			fsw.Close()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.mu.Unlock()

	w.wg.Add(1)
	go w.eventLoop(fsw)
	return nil
}

func (w *fileWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.quitChannel)
		w.wg.Wait()

		w.mu.Lock()
		if w.fsw != nil {
			w.fsw.Close()
			w.fsw = nil
		}
		w.mu.Unlock()
	})
}

func (w *fileWatcher) SetPaths(paths []string) error {
	cleaned := make(map[string]bool, len(paths))
	wantDirs := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		cleaned[abs] = true
		wantDirs[filepath.Dir(abs)] = true
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.paths = cleaned

	// Reconcile directory watches against the new set. Registering the
	// parents means rename-and-replace saves are still observed.
	for dir := range wantDirs {
		if w.dirs[dir] {
			continue
		}
		if w.fsw != nil {
			if err := w.fsw.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
		}
		w.dirs[dir] = true
	}
	for dir := range w.dirs {
		if wantDirs[dir] {
			continue
		}
		if w.fsw != nil {
			if err := w.fsw.Remove(dir); err != nil {
				log.Printf("[Watcher] failed to unwatch %s: %v", dir, err)
			}
		}
		delete(w.dirs, dir)
	}
	return nil
}

func (w *fileWatcher) Changes() <-chan ChangeEvent {
	return w.changes
}

// eventLoop filters raw filesystem events down to the registered paths and
// collapses bursts into single ChangeEvents via the debounce timer.
func (w *fileWatcher) eventLoop(fsw *fsnotify.Watcher) {
	defer w.wg.Done()

	debounce := time.NewTimer(w.debounce)
	if !debounce.Stop() {
		<-debounce.C
	}

	var pendingPath string
	pending := false

	for {
		select {
		case <-w.quitChannel:
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			pendingPath = filepath.Clean(event.Name)
			if pending && !debounce.Stop() {
				<-debounce.C
			}
			debounce.Reset(w.debounce)
			pending = true

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			log.Printf("[Watcher] filesystem watch error: %v", err)

		case t := <-debounce.C:
			pending = false
			ev := ChangeEvent{Path: pendingPath, Time: t}
			select {
			case w.changes <- ev:
			default:
				// Consumer has not drained the previous event; replace it
				// so the newest change wins.
				select {
				case <-w.changes:
				default:
				}
				w.changes <- ev
			}
		}
	}
}

// relevant reports whether the raw event concerns a registered file and an
// operation that can alter its contents.
func (w *fileWatcher) relevant(event fsnotify.Event) bool {
	const ops = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove
	if event.Op&ops == 0 {
		return false
	}
	name := filepath.Clean(event.Name)

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.paths[name]
}
