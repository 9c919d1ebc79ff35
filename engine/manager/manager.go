// Package manager owns the lifecycle of shader builds: it turns a changed
// source file into a compiled, GPU-ready build on a background worker, swaps
// the active build atomically so rendering never stalls on a reload, and keeps
// the last good build on any failure.
package manager

import (
	"errors"
	"log"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/pudnax/nuance/engine/layout"
	"github.com/pudnax/nuance/engine/renderer/build"
	"github.com/pudnax/nuance/engine/shader"
	"github.com/pudnax/nuance/engine/watcher"
)

// BuildBackend assembles GPU objects for a compiled shader. The renderer
// implements it; tests substitute a fake so the manager's pipeline runs
// without a GPU.
type BuildBackend interface {
	// CreateBuild assembles the GPU objects for one compiled shader.
	//
	// Parameters:
	//   - generation: the build ordering number assigned by the manager
	//   - src: the resolved source
	//   - compiled: the validated shader output
	//   - plan: the parameter buffer layout
	//   - params: the reflected parameter declarations
	//
	// Returns:
	//   - *build.Build: the assembled build in Pending state
	//   - error: a *build.DeviceError if a GPU object could not be created
	CreateBuild(generation uint64, src *shader.Source, compiled *shader.Compiled, plan layout.Plan, params []layout.Param) (*build.Build, error)
}

// PipelineManager coordinates shader rebuilds. Reload requests are coalesced
// and executed on a single background worker; the resulting build is installed
// atomically if and only if no newer request has superseded it. Failures at
// any stage keep the previously installed build rendering and surface the
// error for display.
type PipelineManager interface {
	// Start builds and installs the default shader, if one was configured,
	// synchronously so the first frame has something to render.
	//
	// Returns:
	//   - error: an error if the default shader fails to compile or build
	Start() error

	// CurrentBuild returns the active build. Never blocks; returns nil only
	// before Start when no default shader is configured.
	//
	// Returns:
	//   - *build.Build: the active build
	CurrentBuild() *build.Build

	// RequestReload schedules a rebuild of the given entry shader file. If a
	// rebuild is already in flight the request is coalesced: one more
	// rebuild runs after the current one finishes, regardless of how many
	// requests arrived meanwhile.
	//
	// Parameters:
	//   - path: the entry shader file to rebuild from
	RequestReload(path string)

	// LastError returns the error from the most recent failed rebuild, or
	// nil if the latest rebuild succeeded.
	//
	// Returns:
	//   - error: the most recent rebuild error
	LastError() error

	// Diagnostics returns the structured compiler diagnostics from the most
	// recent failed rebuild, for control panel display. Empty after a
	// successful rebuild.
	//
	// Returns:
	//   - []shader.Diagnostic: the diagnostics, source-located
	Diagnostics() []shader.Diagnostic

	// CollectRetired releases superseded builds whose retire fence has been
	// passed by the renderer's completed-frame count. Called once per frame
	// from the render loop.
	//
	// Parameters:
	//   - completedFrames: the renderer's completed-frame count
	CollectRetired(completedFrames uint64)

	// Stop releases the active build and any retired builds still held.
	Stop()
}

// pipelineManager is the implementation of the PipelineManager interface.
type pipelineManager struct {
	backend BuildBackend

	// watch, when set, is kept registered with the current include graph
	// after every rebuild attempt.
	watch watcher.Watcher

	// pool runs rebuilds off the render thread. A single worker serializes
	// rebuilds so coalescing stays simple.
	pool worker.DynamicWorkerPool

	// current is the atomically published active build.
	current atomic.Pointer[build.Build]

	// generation orders rebuild requests; a build whose generation is no
	// longer the latest at install time is discarded.
	generation atomic.Uint64

	// defaultName and defaultText hold the embedded fallback shader
	// installed by Start before any file is loaded.
	defaultName string
	defaultText string

	// frames reports the renderer's completed-frame count, used to stamp
	// superseded builds with their retire fence. Nil means release on the
	// next CollectRetired call.
	frames func() uint64

	// mu guards the coalescing state, error state, and retired list.
	mu       sync.Mutex
	inFlight bool
	dirty    bool
	path     string
	lastErr  error
	diags    []shader.Diagnostic
	retired  []*build.Build

	// watched is the file set last registered with the watcher. A failed
	// resolve leaves it intact, since includes that vanished mid-edit may
	// still be part of the graph.
	watched []string
}

var _ PipelineManager = &pipelineManager{}

// NewPipelineManager creates a new PipelineManager with the specified build
// backend and options.
//
// Parameters:
//   - backend: the BuildBackend that turns compiled shaders into GPU builds
//   - options: functional options to configure the manager
//
// Returns:
//   - PipelineManager: the configured manager (call Start before rendering)
func NewPipelineManager(backend BuildBackend, options ...PipelineManagerBuilderOption) PipelineManager {
	m := &pipelineManager{
		backend: backend,
		pool:    worker.NewDynamicWorkerPool(1, 16, time.Second),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *pipelineManager) Start() error {
	if m.defaultText == "" {
		return nil
	}

	src, err := shader.FromString(m.defaultName, m.defaultText)
	if err != nil {
		return err
	}
	gen := m.generation.Add(1)
	b, err := m.assemble(gen, src)
	if err != nil {
		return err
	}
	m.install(b)
	return nil
}

func (m *pipelineManager) CurrentBuild() *build.Build {
	return m.current.Load()
}

func (m *pipelineManager) RequestReload(path string) {
	m.mu.Lock()
	m.path = path
	if m.inFlight {
		m.dirty = true
		m.mu.Unlock()
		return
	}
	m.inFlight = true
	m.mu.Unlock()

	m.submit(path)
}

func (m *pipelineManager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *pipelineManager) Diagnostics() []shader.Diagnostic {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.diags
}

func (m *pipelineManager) CollectRetired(completedFrames uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.retired[:0]
	for _, b := range m.retired {
		if b.RetireFence() <= completedFrames {
			b.Release()
			continue
		}
		kept = append(kept, b)
	}
	m.retired = kept
}

func (m *pipelineManager) Stop() {
	m.mu.Lock()
	retired := m.retired
	m.retired = nil
	m.mu.Unlock()

	for _, b := range retired {
		b.Release()
	}
	if b := m.current.Swap(nil); b != nil {
		b.Release()
	}
}

// submit queues one rebuild of path at a fresh generation.
func (m *pipelineManager) submit(path string) {
	gen := m.generation.Add(1)
	m.pool.SubmitTask(worker.Task{
		ID: int(gen),
		Do: func() (any, error) {
			m.rebuild(gen, path)
			return nil, nil
		},
	})
}

// rebuild runs the full pipeline for one reload attempt: resolve includes,
// reflect parameters, plan the layout, compile, assemble GPU objects, and
// install. Any failure keeps the active build and records the error. After
// the attempt the watcher registration is refreshed with the include graph,
// and a coalesced follow-up rebuild is submitted if requests arrived while
// this one ran.
func (m *pipelineManager) rebuild(gen uint64, path string) {
	src, err := shader.Resolve(path)
	if err != nil {
		m.fail(err)
		// The include graph is unknown on a failed resolve, so files
		// registered by the last successful one stay watched. Recreating
		// a deleted include or editing a surviving one then still
		// triggers a retry.
		m.updateWatch(m.retainWatched(path))
		m.finish(path)
		return
	}

	b, err := m.assemble(gen, src)
	if err != nil {
		m.fail(err)
	} else {
		m.install(b)
	}

	m.updateWatch(m.replaceWatched(src.Files))
	m.finish(path)
}

// assemble runs the CPU and device stages for one resolved source.
func (m *pipelineManager) assemble(gen uint64, src *shader.Source) (*build.Build, error) {
	params, err := shader.ReflectSource(src)
	if err != nil {
		return nil, err
	}
	plan, err := layout.NewPlan(params)
	if err != nil {
		return nil, err
	}
	module, preambleLines := shader.Module(src, params)
	compiled, err := shader.Compile(src, module, preambleLines)
	if err != nil {
		return nil, err
	}
	return m.backend.CreateBuild(gen, src, compiled, plan, params)
}

// install publishes b as the active build unless a newer generation has been
// requested meanwhile, in which case b is discarded untouched by any frame.
// The previous build is fenced for release after the next completed frame.
func (m *pipelineManager) install(b *build.Build) {
	if b.Generation != m.generation.Load() {
		b.Discard()
		return
	}

	b.MarkInstalled()
	prev := m.current.Swap(b)

	m.mu.Lock()
	m.lastErr = nil
	m.diags = nil
	if prev != nil {
		// A frame begun just before the swap may still reference prev, so
		// its resources are held until one more frame completes.
		var fence uint64
		if m.frames != nil {
			fence = m.frames() + 1
		}
		prev.MarkSuperseded(fence)
		m.retired = append(m.retired, prev)
	}
	m.mu.Unlock()
}

// fail records the error of a failed rebuild attempt for display. The active
// build is left installed.
func (m *pipelineManager) fail(err error) {
	var ce *shader.CompileError

	m.mu.Lock()
	m.lastErr = err
	if errors.As(err, &ce) {
		m.diags = ce.Diagnostics
	} else {
		m.diags = nil
	}
	m.mu.Unlock()

	log.Printf("[Manager] shader rebuild failed: %v", err)
}

// replaceWatched records the include graph of a successful resolve as the
// watch set; files confirmed absent from the graph drop out here.
func (m *pipelineManager) replaceWatched(files []string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watched = files
	return files
}

// retainWatched keeps the previous watch set and ensures the entry file is in
// it, for rebuild attempts that failed before the graph was known.
func (m *pipelineManager) retainWatched(entry string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.Contains(m.watched, entry) {
		m.watched = append(append([]string{}, m.watched...), entry)
	}
	return m.watched
}

// updateWatch re-registers the include graph with the watcher so edits to
// any file in it trigger a reload of the entry shader.
func (m *pipelineManager) updateWatch(files []string) {
	if m.watch == nil {
		return
	}
	if err := m.watch.SetPaths(files); err != nil {
		log.Printf("[Manager] failed to update watch set: %v", err)
	}
}

// finish clears the in-flight flag, resubmitting once if requests were
// coalesced while this rebuild ran.
func (m *pipelineManager) finish(path string) {
	m.mu.Lock()
	if m.dirty {
		m.dirty = false
		next := m.path
		if next == "" {
			next = path
		}
		m.mu.Unlock()
		m.submit(next)
		return
	}
	m.inFlight = false
	m.mu.Unlock()
}
