package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForChange(t *testing.T, w Watcher, timeout time.Duration) (ChangeEvent, bool) {
	t.Helper()
	select {
	case ev := <-w.Changes():
		return ev, true
	case <-time.After(timeout):
		return ChangeEvent{}, false
	}
}

func TestWatcherCoalescesBurstIntoOneEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.wgsl")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0o644))

	w := NewWatcher(WithDebounce(100 * time.Millisecond))
	require.NoError(t, w.SetPaths([]string{path}))
	require.NoError(t, w.Start())
	defer w.Stop()

	// A burst of rapid writes must land inside one debounce window.
	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(path, []byte("edit"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	ev, ok := waitForChange(t, w, 2*time.Second)
	require.True(t, ok, "expected a change event after the debounce window")
	assert.Equal(t, filepath.Clean(path), ev.Path)

	// No second event follows once the burst has been reported.
	_, ok = waitForChange(t, w, 300*time.Millisecond)
	assert.False(t, ok, "burst produced more than one event")
}

func TestWatcherWithPathsRegistersBeforeStart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.wgsl")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0o644))

	w := NewWatcher(
		WithDebounce(50*time.Millisecond),
		WithPaths(path),
	)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))
	ev, ok := waitForChange(t, w, 2*time.Second)
	require.True(t, ok, "expected a change event for a path registered at construction")
	assert.Equal(t, filepath.Clean(path), ev.Path)
}

func TestWatcherReportsSeparateEdits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.wgsl")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0o644))

	w := NewWatcher(WithDebounce(50 * time.Millisecond))
	require.NoError(t, w.SetPaths([]string{path}))
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))
	_, ok := waitForChange(t, w, 2*time.Second)
	require.True(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	_, ok = waitForChange(t, w, 2*time.Second)
	require.True(t, ok, "second edit after a quiet period should notify again")
}

func TestWatcherIgnoresUnregisteredFiles(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "watched.wgsl")
	other := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(watched, []byte("v0"), 0o644))

	w := NewWatcher(WithDebounce(50 * time.Millisecond))
	require.NoError(t, w.SetPaths([]string{watched}))
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(other, []byte("noise"), 0o644))
	_, ok := waitForChange(t, w, 300*time.Millisecond)
	assert.False(t, ok, "unregistered file change should not notify")
}

func TestWatcherRenameAndReplaceSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.wgsl")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0o644))

	w := NewWatcher(WithDebounce(50 * time.Millisecond))
	require.NoError(t, w.SetPaths([]string{path}))
	require.NoError(t, w.Start())
	defer w.Stop()

	// Editors often save by writing a temp file and renaming it over the
	// target. The parent directory watch still observes the new file.
	tmp := filepath.Join(dir, ".shader.wgsl.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("v1"), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	_, ok := waitForChange(t, w, 2*time.Second)
	assert.True(t, ok, "rename-and-replace save should notify")
}

func TestWatcherSetPathsAfterStart(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	a := filepath.Join(dirA, "a.wgsl")
	b := filepath.Join(dirB, "b.wgsl")
	require.NoError(t, os.WriteFile(a, []byte("v0"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("v0"), 0o644))

	w := NewWatcher(WithDebounce(50 * time.Millisecond))
	require.NoError(t, w.SetPaths([]string{a}))
	require.NoError(t, w.Start())
	defer w.Stop()

	// Swap the watch set to b; edits to a are no longer relevant.
	require.NoError(t, w.SetPaths([]string{b}))

	require.NoError(t, os.WriteFile(a, []byte("v1"), 0o644))
	_, ok := waitForChange(t, w, 300*time.Millisecond)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(b, []byte("v1"), 0o644))
	_, ok = waitForChange(t, w, 2*time.Second)
	assert.True(t, ok)
}

func TestWatcherStopIdempotent(t *testing.T) {
	w := NewWatcher()
	require.NoError(t, w.Start())
	w.Stop()
	w.Stop()
}
