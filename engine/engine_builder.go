package engine

import (
	"time"

	"github.com/pudnax/nuance/engine/renderer"
	"github.com/pudnax/nuance/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithWindow sets a custom configured window for the engine to use rather than allowing the engine
// to create and manage one internally.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithShader sets the shader file loaded when the engine starts.
// Until its first build lands, the embedded default shader renders.
//
// Parameters:
//   - path: the shader file to load on start
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithShader(path string) EngineBuilderOption {
	return func(e *engine) {
		e.shaderPath = path
	}
}

// WithDefaultShader replaces the embedded fallback shader installed before
// any file is loaded.
//
// Parameters:
//   - name: a display name for the shader, used in diagnostics
//   - text: the shader source text
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDefaultShader(name, text string) EngineBuilderOption {
	return func(e *engine) {
		e.defaultShaderName = name
		e.defaultShaderText = text
	}
}

// WithTargetFramerate sets the render frame rate cap in frames per second.
// Values <= 0 uncap the render loop. The default is 30.
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTargetFramerate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Second / time.Duration(fps)
	}
}

// WithForceSoftwareRenderer forces the renderer onto a software fallback
// adapter, for machines or CI environments without a usable GPU.
//
// Parameters:
//   - force: if true, requests a fallback adapter
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithForceSoftwareRenderer(force bool) EngineBuilderOption {
	return func(e *engine) {
		e.forceFallback = force
	}
}

// WithPresentMode sets the surface present mode.
//
// Parameters:
//   - mode: the present mode to request
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPresentMode(mode renderer.PresentMode) EngineBuilderOption {
	return func(e *engine) {
		m := mode
		e.presentMode = &m
	}
}

// WithWheelStep sets the scroll wheel accumulator step per scroll unit.
//
// Parameters:
//   - step: the wheel step (defaults to 0.1 if <= 0)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWheelStep(step float32) EngineBuilderOption {
	return func(e *engine) {
		e.wheelStep = step
	}
}

// WithWatchDebounce sets the quiet period the file watcher waits after the
// last change before emitting a reload event.
//
// Parameters:
//   - d: the debounce duration (defaults to 200ms if <= 0)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWatchDebounce(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.watchDebounce = d
	}
}
