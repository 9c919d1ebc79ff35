package build

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/pudnax/nuance/engine/layout"
	"github.com/pudnax/nuance/engine/shader"
)

// State tracks a build through its lifecycle. A build starts Pending while
// its GPU objects are created, becomes Installed when it is the active build,
// Superseded when a newer build replaces it, and Released once its GPU
// resources are freed. A build whose GPU object creation failed is Discarded.
type State int32

const (
	// StatePending means GPU objects are still being created.
	StatePending State = iota

	// StateInstalled means this is the active build frames render with.
	StateInstalled

	// StateSuperseded means a newer build replaced this one; its GPU
	// resources are held until all in-flight frames referencing it complete.
	StateSuperseded

	// StateReleased means the build's GPU resources have been freed.
	StateReleased

	// StateDiscarded means GPU object creation failed and the partial
	// resources were freed without the build ever being installed.
	StateDiscarded
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateInstalled:
		return "installed"
	case StateSuperseded:
		return "superseded"
	case StateReleased:
		return "released"
	case StateDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// DeviceError reports a GPU object creation failure during build assembly.
// The failed build is discarded and the previously installed build keeps
// rendering.
type DeviceError struct {
	// Op names the GPU operation that failed (e.g. "create render pipeline").
	Op string

	// Err is the underlying device error.
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device error: %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// Build couples one compiled shader with the GPU objects needed to render it:
// the render pipeline, the per-frame globals uniform buffer at group 0, and
// the parameter uniform buffer at group 1 (nil when the shader declares no
// parameters). Builds are immutable after creation except for their lifecycle
// state; the active build is swapped atomically so frames never observe a
// partially constructed one.
type Build struct {
	// Generation orders builds; a stale generation is never installed over
	// a newer one.
	Generation uint64

	// Source is the resolved shader source this build was compiled from,
	// including its include graph for re-registration with the watcher.
	Source *shader.Source

	// Compiled is the validated shader output.
	Compiled *shader.Compiled

	// Plan is the parameter buffer layout.
	Plan layout.Plan

	// Params are the reflected parameter declarations in declaration order.
	Params []layout.Param

	// Pipeline is the render pipeline drawing the fullscreen triangle.
	Pipeline *wgpu.RenderPipeline

	// GlobalsBuffer is the uniform buffer written every frame at group 0.
	GlobalsBuffer *wgpu.Buffer

	// ParamsBuffer is the parameter uniform buffer at group 1, nil when the
	// shader declares no parameters.
	ParamsBuffer *wgpu.Buffer

	// GlobalsBindGroup binds GlobalsBuffer at group 0 binding 0.
	GlobalsBindGroup *wgpu.BindGroup

	// ParamsBindGroup binds ParamsBuffer at group 1 binding 0, nil when the
	// shader declares no parameters.
	ParamsBindGroup *wgpu.BindGroup

	// state holds the current State value.
	state atomic.Int32

	// retireFence is the completed-frame count that must be reached before
	// this build's GPU resources may be freed. Valid once Superseded.
	retireFence atomic.Uint64

	releaseOnce sync.Once
}

// State returns the build's current lifecycle state.
func (b *Build) State() State {
	return State(b.state.Load())
}

// MarkInstalled transitions the build from Pending to Installed.
func (b *Build) MarkInstalled() {
	b.state.CompareAndSwap(int32(StatePending), int32(StateInstalled))
}

// MarkSuperseded transitions the build from Installed to Superseded and
// records the frame fence: once the renderer's completed-frame count reaches
// fence, no in-flight frame references this build and it may be released.
//
// Parameters:
//   - fence: the completed-frame count at which release becomes safe
func (b *Build) MarkSuperseded(fence uint64) {
	b.retireFence.Store(fence)
	b.state.CompareAndSwap(int32(StateInstalled), int32(StateSuperseded))
}

// RetireFence returns the completed-frame count required before release.
// Only meaningful once the build is Superseded.
func (b *Build) RetireFence() uint64 {
	return b.retireFence.Load()
}

// Release frees the build's GPU resources exactly once and transitions it
// to Released. Safe to call multiple times.
func (b *Build) Release() {
	b.releaseGPU()
	b.state.Store(int32(StateReleased))
}

// Discard frees the build's GPU resources exactly once and transitions it
// to Discarded. Used when build assembly fails partway.
func (b *Build) Discard() {
	b.releaseGPU()
	b.state.Store(int32(StateDiscarded))
}

func (b *Build) releaseGPU() {
	b.releaseOnce.Do(func() {
		if b.ParamsBindGroup != nil {
			b.ParamsBindGroup.Release()
			b.ParamsBindGroup = nil
		}
		if b.GlobalsBindGroup != nil {
			b.GlobalsBindGroup.Release()
			b.GlobalsBindGroup = nil
		}
		if b.ParamsBuffer != nil {
			b.ParamsBuffer.Release()
			b.ParamsBuffer = nil
		}
		if b.GlobalsBuffer != nil {
			b.GlobalsBuffer.Release()
			b.GlobalsBuffer = nil
		}
		if b.Pipeline != nil {
			b.Pipeline.Release()
			b.Pipeline = nil
		}
	})
}
