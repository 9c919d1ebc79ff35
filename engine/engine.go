package engine

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/pudnax/nuance/common"
	"github.com/pudnax/nuance/engine/frame"
	"github.com/pudnax/nuance/engine/manager"
	"github.com/pudnax/nuance/engine/params"
	"github.com/pudnax/nuance/engine/profiler"
	"github.com/pudnax/nuance/engine/renderer"
	"github.com/pudnax/nuance/engine/shader"
	"github.com/pudnax/nuance/engine/watcher"
	"github.com/pudnax/nuance/engine/window"
	"github.com/pudnax/nuance/shaders"
)

// engine implements the Engine interface.
// Coordinates the render thread and the window message loop.
type engine struct {
	frameRateChannel chan time.Duration // Channel for dynamic frame rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window   window.Window
	renderer renderer.Renderer
	watch    watcher.Watcher
	manager  manager.PipelineManager
	store    params.Store
	driver   frame.FrameDriver

	profiler         *profiler.Profiler
	profilingEnabled bool

	// renderFrameLimit is the minimum frame duration; 0 = uncapped.
	renderFrameLimit time.Duration

	// entryPath is the shader file reloads rebuild from. Guarded by mu
	// because the window callbacks and the render goroutine both touch it.
	mu        sync.Mutex
	entryPath string

	// Construction-time settings consumed by NewEngine.
	shaderPath        string
	defaultShaderName string
	defaultShaderText string
	forceFallback     bool
	presentMode       *renderer.PresentMode
	wheelStep         float32
	watchDebounce     time.Duration
}

// Engine is the main entry point for the live shader runtime.
// It orchestrates the render loop, hot reloading, and window management.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the underlying renderer, for collaborators that need
	// direct access to the frame texture or GPU device.
	//
	// Returns:
	//   - renderer.Renderer: the renderer instance
	Renderer() renderer.Renderer

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// LoadShader switches the engine to render the given shader file and
	// begins watching it (and its includes) for changes. The build happens
	// on a background worker; until it lands the previous shader keeps
	// rendering. Compile failures are reported via LastError and
	// Diagnostics, never by tearing down the current frame.
	//
	// Parameters:
	//   - path: the shader file to load
	//
	// Returns:
	//   - error: error if the path cannot be resolved to an absolute path
	LoadShader(path string) error

	// LastError returns the error from the most recent failed shader
	// rebuild, or nil if the latest rebuild succeeded.
	//
	// Returns:
	//   - error: the most recent rebuild error
	LastError() error

	// Diagnostics returns the source-located compiler diagnostics from the
	// most recent failed rebuild. Empty after a successful rebuild.
	//
	// Returns:
	//   - []shader.Diagnostic: the diagnostics
	Diagnostics() []shader.Diagnostic

	// ResetTime rewinds the shader clock and frame counter to zero without
	// reloading the shader.
	ResetTime()

	// SetTargetFramerate sets the render frame rate cap in frames per
	// second. If the engine is running, the change takes effect
	// immediately. Pass 0 to uncap the render loop.
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetTargetFramerate(fps float64)

	// Run starts the render loop and blocks until the window closes.
	// The default shader is installed before the first frame; if an
	// initial shader file was configured it is loaded in the background.
	//
	// Returns:
	//   - error: error if the default shader or the watcher fails to start
	Run() error

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// It builds the full pipeline: a window if none was supplied, the GPU
// renderer for its surface, the file watcher, the build manager, the
// parameter store, and the frame driver, wired together and ready to Run.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: error if the GPU renderer cannot be created
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		frameRateChannel: make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		running:          false,
		wg:               sync.WaitGroup{},
		profiler:         profiler.NewProfiler(),
		profilingEnabled: false,
		renderFrameLimit: time.Second / 30,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window == nil {
		e.window = window.NewWindow()
	}
	e.defaultShaderName = common.Coalesce(e.defaultShaderName, shaders.DefaultName)
	e.defaultShaderText = common.Coalesce(e.defaultShaderText, shaders.Default)

	var rendererOpts []renderer.RendererBuilderOption
	if e.forceFallback {
		rendererOpts = append(rendererOpts, renderer.WithForceSoftwareRenderer(true))
	}
	if e.presentMode != nil {
		rendererOpts = append(rendererOpts, renderer.WithPresentMode(*e.presentMode))
	}
	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, e.window, rendererOpts...)
	if err != nil {
		return nil, err
	}
	e.renderer = r

	var watcherOpts []watcher.WatcherBuilderOption
	if e.watchDebounce > 0 {
		watcherOpts = append(watcherOpts, watcher.WithDebounce(e.watchDebounce))
	}
	if e.shaderPath != "" {
		// Register the entry file up front so edits made before the
		// first successful build still trigger a reload.
		if abs, err := filepath.Abs(e.shaderPath); err == nil {
			watcherOpts = append(watcherOpts, watcher.WithPaths(abs))
		}
	}
	e.watch = watcher.NewWatcher(watcherOpts...)

	e.manager = manager.NewPipelineManager(e.renderer,
		manager.WithWatcher(e.watch),
		manager.WithDefaultShader(e.defaultShaderName, e.defaultShaderText),
		manager.WithFrameCounter(e.renderer.CompletedFrames),
	)

	e.store = params.NewStore()

	var driverOpts []frame.FrameDriverBuilderOption
	if e.wheelStep > 0 {
		driverOpts = append(driverOpts, frame.WithWheelStep(e.wheelStep))
	}
	e.driver = frame.NewFrameDriver(e.renderer, e.manager, e.window, e.store, driverOpts...)

	e.window.SetResizeCallback(func(width, height int) {
		if err := e.renderer.Resize(width, height); err != nil {
			log.Printf("[Engine] surface resize failed: %v", err)
		}
	})
	e.window.SetScrollCallback(func(delta float32) {
		e.driver.AddWheel(delta)
	})

	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Run() error {
	if err := e.manager.Start(); err != nil {
		return err
	}
	if err := e.watch.Start(); err != nil {
		return err
	}
	if e.shaderPath != "" {
		if err := e.LoadShader(e.shaderPath); err != nil {
			return err
		}
	}

	e.running = true
	e.handle()
	e.window.ProcessMessages()

	e.signalQuit()
	e.wg.Wait()

	e.watch.Stop()
	e.manager.Stop()
	e.renderer.Release()
	return nil
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
	_ = e.window.Close()
}

func (e *engine) LoadShader(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.entryPath = abs
	e.mu.Unlock()

	e.manager.RequestReload(abs)
	return nil
}

func (e *engine) LastError() error {
	return e.manager.LastError()
}

func (e *engine) Diagnostics() []shader.Diagnostic {
	return e.manager.Diagnostics()
}

func (e *engine) ResetTime() {
	e.driver.Reset()
}

// SetTargetFramerate sets the render frame rate cap in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTargetFramerate(fps float64) {
	var newLimit time.Duration
	if fps > 0 {
		newLimit = time.Second / time.Duration(fps)
	}

	if e.running {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.frameRateChannel <- newLimit:
		default:
			select {
			case <-e.frameRateChannel:
			default:
			}
			e.frameRateChannel <- newLimit
		}
	} else {
		e.renderFrameLimit = newLimit
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handle launches the render and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleRender()
	go e.handleQuit()
}

// handleRender runs the frame-limited render loop in its own goroutine.
// Each iteration drains at most one pending file change into a reload
// request, renders one frame through the frame driver, and sleeps out the
// remainder of the frame budget. Recovers from panics to avoid crashing the
// process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	// Recover from panics inside the render goroutine to avoid crashing the whole process.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("render goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	for {
		select {
		case <-e.quitChannel:
			return
		case newLimit := <-e.frameRateChannel:
			e.renderFrameLimit = newLimit
		default:
			frameStart := time.Now()

			// The watcher coalesces bursts into a single event, so one
			// receive per frame keeps up with any edit rate.
			select {
			case <-e.watch.Changes():
				e.mu.Lock()
				path := e.entryPath
				e.mu.Unlock()
				if path != "" {
					e.manager.RequestReload(path)
				}
			default:
			}

			if err := e.driver.Frame(); err != nil {
				log.Printf("[Engine] frame failed: %v", err)
			}

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick()
			}

			// Frame rate limiting
			if e.renderFrameLimit > 0 {
				elapsed := time.Since(frameStart)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}
