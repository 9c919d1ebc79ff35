package manager

import "github.com/pudnax/nuance/engine/watcher"

// PipelineManagerBuilderOption is a functional option for configuring a PipelineManager.
// Use the With* functions to create options that are applied directly to the manager instance.
type PipelineManagerBuilderOption func(*pipelineManager)

// WithWatcher attaches a file watcher. After every rebuild attempt the
// manager registers the current include graph with it, so edits to any file
// the shader pulls in trigger a reload.
//
// Parameters:
//   - w: the watcher to keep registered
//
// Returns:
//   - PipelineManagerBuilderOption: option function to apply
func WithWatcher(w watcher.Watcher) PipelineManagerBuilderOption {
	return func(m *pipelineManager) {
		m.watch = w
	}
}

// WithDefaultShader sets the embedded fallback shader that Start builds and
// installs before any file is loaded, so the first frame has something to
// render.
//
// Parameters:
//   - name: a display name for the shader (used in diagnostics)
//   - text: the WGSL fragment shader source
//
// Returns:
//   - PipelineManagerBuilderOption: option function to apply
func WithDefaultShader(name, text string) PipelineManagerBuilderOption {
	return func(m *pipelineManager) {
		m.defaultName = name
		m.defaultText = text
	}
}

// WithFrameCounter sets the completed-frame count source used to fence the
// release of superseded builds. Typically Renderer.CompletedFrames.
//
// Parameters:
//   - frames: function returning the renderer's completed-frame count
//
// Returns:
//   - PipelineManagerBuilderOption: option function to apply
func WithFrameCounter(frames func() uint64) PipelineManagerBuilderOption {
	return func(m *pipelineManager) {
		m.frames = frames
	}
}
