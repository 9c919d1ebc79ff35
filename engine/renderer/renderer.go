package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/pudnax/nuance/engine/layout"
	"github.com/pudnax/nuance/engine/renderer/build"
	"github.com/pudnax/nuance/engine/shader"
	"github.com/pudnax/nuance/engine/window"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
}

// Renderer defines the interface for the rendering system.
//
// It owns the GPU device and surface and turns compiled shaders into
// renderable builds: a build couples the shader's pipeline with the uniform
// buffers and bind groups it draws with. Each frame is a single fullscreen
// triangle draw with the active build. The Renderer also implements a backend
// which allows for multiple backend API implementations to exist.
type Renderer interface {
	// CreateBuild assembles the GPU objects for one compiled shader.
	// On failure partial resources are released and a *build.DeviceError
	// is returned; the previously installed build is unaffected.
	//
	// Parameters:
	//   - generation: the build ordering number assigned by the caller
	//   - src: the resolved source carried for watcher re-registration
	//   - compiled: the validated shader output
	//   - plan: the parameter buffer layout
	//   - params: the reflected parameter declarations
	//
	// Returns:
	//   - *build.Build: the assembled build in Pending state
	//   - error: a *build.DeviceError if a GPU object could not be created
	CreateBuild(generation uint64, src *shader.Source, compiled *shader.Compiled, plan layout.Plan, params []layout.Param) (*build.Build, error)

	// WriteGlobals uploads the packed globals block to the build's group 0
	// uniform buffer.
	//
	// Parameters:
	//   - b: the build whose globals buffer to write
	//   - data: the packed globals bytes
	WriteGlobals(b *build.Build, data []byte)

	// WriteParams uploads the packed parameter block to the build's group 1
	// uniform buffer. No-op for builds without parameters.
	//
	// Parameters:
	//   - b: the build whose parameter buffer to write
	//   - data: the packed parameter bytes
	WriteParams(b *build.Build, data []byte)

	// RenderFrame renders and presents one frame with the given build.
	//
	// Parameters:
	//   - b: the build to render with
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	RenderFrame(b *build.Build) error

	// FrameView returns a read-only view of the offscreen texture holding
	// the most recently rendered frame, for export collaborators. The view
	// stays valid until the next resize.
	//
	// Returns:
	//   - *wgpu.TextureView: the frame texture view
	FrameView() *wgpu.TextureView

	// CompletedFrames returns the number of frames fully submitted and
	// presented so far. Superseded builds are released once this count
	// passes their retire fence.
	//
	// Returns:
	//   - uint64: the completed frame count
	CompletedFrames() uint64

	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window or when the surface size should change.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: an error if surface-sized GPU objects could not be recreated
	Resize(width, height int) error

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	// A call to Resize is required after changing this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// Device returns the underlying GPU device.
	//
	// Returns:
	//   - *wgpu.Device: the GPU device
	Device() *wgpu.Device

	// Release frees the renderer's shared GPU objects. All builds must be
	// released before calling this.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type, acquiring
// the GPU adapter and device for the window's surface. The surface descriptor is
// platform-specific and is obtained from Window.SurfaceDescriptor().
// GPU acquisition failure is unrecoverable, so it is returned as an error for the
// caller to report fatally rather than panicking inside the render loop.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - window: the window providing the surface and its initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
//   - error: an error if the GPU adapter or device could not be acquired
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		backendType: backendType,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	var err error
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend, err = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter)
	}
	if err != nil {
		return nil, err
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	if err := r.backend.ConfigureSurface(window.Width(), window.Height()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *renderer) CreateBuild(generation uint64, src *shader.Source, compiled *shader.Compiled, plan layout.Plan, params []layout.Param) (*build.Build, error) {
	return r.backend.CreateBuild(generation, src, compiled, plan, params)
}

func (r *renderer) WriteGlobals(b *build.Build, data []byte) {
	r.backend.WriteGlobals(b, data)
}

func (r *renderer) WriteParams(b *build.Build, data []byte) {
	r.backend.WriteParams(b, data)
}

func (r *renderer) RenderFrame(b *build.Build) error {
	return r.backend.RenderFrame(b)
}

func (r *renderer) FrameView() *wgpu.TextureView {
	return r.backend.FrameView()
}

func (r *renderer) CompletedFrames() uint64 {
	return r.backend.CompletedFrames()
}

func (r *renderer) Resize(width, height int) error {
	return r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Device() *wgpu.Device {
	return r.backend.Device()
}

func (r *renderer) Release() {
	r.backend.Release()
}
