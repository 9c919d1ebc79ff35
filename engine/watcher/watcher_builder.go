package watcher

import (
	"log"
	"time"
)

// WatcherBuilderOption is a functional option for configuring a Watcher.
// Use the With* functions to create options that are applied directly to the watcher instance.
type WatcherBuilderOption func(*fileWatcher)

// WithDebounce sets the quiet period required after the last filesystem event
// before a change notification is emitted. Values <= 0 are treated as the
// default (200ms).
//
// Parameters:
//   - d: the debounce window duration
//
// Returns:
//   - WatcherBuilderOption: option function to apply
func WithDebounce(d time.Duration) WatcherBuilderOption {
	return func(w *fileWatcher) {
		if d <= 0 {
			d = 200 * time.Millisecond
		}
		w.debounce = d
	}
}

// WithPaths registers an initial set of watched files during construction.
// Equivalent to calling SetPaths before Start.
//
// Parameters:
//   - paths: the files to watch
//
// Returns:
//   - WatcherBuilderOption: option function to apply
func WithPaths(paths ...string) WatcherBuilderOption {
	return func(w *fileWatcher) {
		if err := w.SetPaths(paths); err != nil {
			log.Printf("[Watcher] failed to register initial paths: %v", err)
		}
	}
}
