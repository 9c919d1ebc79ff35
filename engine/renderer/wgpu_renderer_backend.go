package renderer

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/pudnax/nuance/engine/layout"
	"github.com/pudnax/nuance/engine/renderer/build"
	"github.com/pudnax/nuance/engine/shader"
)

// fullscreenVertexWGSL is the embedded vertex stage shared by every build:
// a single triangle spanning the whole surface (3 vertices, no vertex
// buffers), clipped to the viewport by the rasterizer.
const fullscreenVertexWGSL = `@vertex
fn main(@builtin(vertex_index) index: u32) -> @builtin(position) vec4<f32> {
    var pos = array<vec2<f32>, 3>(
        vec2<f32>(-1.0, -1.0),
        vec2<f32>(3.0, -1.0),
        vec2<f32>(-1.0, 3.0),
    );
    return vec4<f32>(pos[index], 0.0, 1.0);
}
`

// blitWGSL copies the offscreen frame texture to the swapchain. Shaders render
// into a persistent texture so a read-only view of the last frame remains
// available for export after presentation.
const blitWGSL = `struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> VertexOutput {
    var pos = array<vec2<f32>, 3>(
        vec2<f32>(-1.0, -1.0),
        vec2<f32>(3.0, -1.0),
        vec2<f32>(-1.0, 3.0),
    );
    let p = pos[index];
    var out: VertexOutput;
    out.position = vec4<f32>(p, 0.0, 1.0);
    out.uv = vec2<f32>(p.x * 0.5 + 0.5, 1.0 - (p.y * 0.5 + 0.5));
    return out;
}

@group(0) @binding(0) var blit_tex: texture_2d<f32>;
@group(0) @binding(1) var blit_samp: sampler;

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(blit_tex, blit_samp, in.uv);
}
`

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat *wgpu.TextureFormat
	presentMode   wgpu.PresentMode

	// vertexModule is the shared fullscreen-triangle vertex stage, created
	// once at startup and reused by every build's pipeline.
	vertexModule *wgpu.ShaderModule

	// globalsLayout is the bind group layout for the per-frame globals
	// uniform at group 0. Identical for every build.
	globalsLayout *wgpu.BindGroupLayout

	// paramsLayout is the bind group layout for the parameter uniform at
	// group 1. Identical for every build that declares parameters.
	paramsLayout *wgpu.BindGroupLayout

	// Offscreen frame target. Shader passes render here; a blit pass copies
	// it to the swapchain each frame. Recreated on resize.
	frameTexture *wgpu.Texture
	frameView    *wgpu.TextureView

	// Blit pass objects. The module, layout, and sampler are created once;
	// the pipeline depends on the surface format and the bind group on the
	// frame texture, so both are recreated in ConfigureSurface.
	blitModule    *wgpu.ShaderModule
	blitLayout    *wgpu.BindGroupLayout
	blitSampler   *wgpu.Sampler
	blitPipeline  *wgpu.RenderPipeline
	blitBindGroup *wgpu.BindGroup

	// completedFrames counts frames whose command buffers have been
	// submitted and presented. Superseded builds are released once this
	// passes their retire fence.
	completedFrames atomic.Uint64
}

type wgpuRendererBackend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue

	// ConfigureSurface is a wrapper for boilerplate logic required when calling ConfigureSurface on a surface.
	// This is required when the surface size changes, such as when the window is resized.
	// Also recreates the offscreen frame texture and blit pass objects at the new size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: an error if the frame texture or blit pipeline could not be created
	ConfigureSurface(width, height int) error

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// CreateBuild assembles the GPU objects for one compiled shader: the
	// fragment shader module, the globals and parameter uniform buffers with
	// their bind groups, and the render pipeline drawing the fullscreen
	// triangle. On failure partial resources are released and a
	// *build.DeviceError is returned.
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

	// RenderFrame renders one frame with the given build: draws the
	// fullscreen triangle into the offscreen frame texture, blits that to
	// the acquired swapchain texture, submits, and presents. The
	// completed-frame count is advanced after presentation.
	//
	// Parameters:
	//   - b: the build to render with
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	RenderFrame(b *build.Build) error

	// FrameView returns a read-only view of the offscreen texture holding
	// the most recently rendered frame. The view stays valid until the next
	// resize. Export collaborators read pixels through this view.
	//
	// Returns:
	//   - *wgpu.TextureView: the frame texture view, or nil before the first ConfigureSurface
	FrameView() *wgpu.TextureView

	// CompletedFrames returns the number of frames fully submitted and
	// presented so far.
	//
	// Returns:
	//   - uint64: the completed frame count
	CompletedFrames() uint64

	// Release frees the backend's shared GPU objects. Builds must be
	// released separately before calling this.
	Release()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// newWGPURendererBackend acquires the GPU: instance, surface, adapter, device,
// and queue, then creates the shared vertex module, bind group layouts, and
// blit pass objects. Failure to acquire any of these is unrecoverable for a
// GPU renderer, so the error is returned to the caller for fatal reporting
// rather than panicking.
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool) (wgpuRendererBackend, error) {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("no compatible GPU adapter: %w", err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to acquire GPU device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	w.vertexModule, err = d.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Fullscreen Vertex Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: fullscreenVertexWGSL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create fullscreen vertex shader: %w", err)
	}

	w.globalsLayout, err = d.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Globals Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: layout.GlobalsSize,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create globals bind group layout: %w", err)
	}

	w.paramsLayout, err = d.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Params Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeUniform,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create params bind group layout: %w", err)
	}

	w.blitModule, err = d.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Blit Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: blitWGSL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create blit shader: %w", err)
	}

	w.blitLayout, err = d.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Blit Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create blit bind group layout: %w", err)
	}

	w.blitSampler, err = d.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Blit Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create blit sampler: %w", err)
	}

	return w, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	// Recreate the offscreen frame target at the new size.
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameTexture != nil {
		b.frameTexture.Release()
		b.frameTexture = nil
	}
	if b.blitBindGroup != nil {
		b.blitBindGroup.Release()
		b.blitBindGroup = nil
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Frame Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        *b.surfaceFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return fmt.Errorf("failed to create frame texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("failed to create frame texture view: %w", err)
	}
	b.frameTexture = tex
	b.frameView = view

	b.blitBindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Blit Bind Group",
		Layout: b.blitLayout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding:     0,
				TextureView: b.frameView,
			},
			{
				Binding: 1,
				Sampler: b.blitSampler,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create blit bind group: %w", err)
	}

	// The blit pipeline depends on the surface format, which can change
	// across reconfiguration, so rebuild it here as well.
	if b.blitPipeline != nil {
		b.blitPipeline.Release()
		b.blitPipeline = nil
	}
	blitLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Blit Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.blitLayout},
	})
	if err != nil {
		return fmt.Errorf("failed to create blit pipeline layout: %w", err)
	}
	defer blitLayout.Release()

	b.blitPipeline, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Blit Pipeline",
		Layout: blitLayout,
		Vertex: wgpu.VertexState{
			Module:     b.blitModule,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     b.blitModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    *b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create blit pipeline: %w", err)
	}

	return nil
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) CreateBuild(generation uint64, src *shader.Source, compiled *shader.Compiled, plan layout.Plan, params []layout.Param) (*build.Build, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := &build.Build{
		Generation: generation,
		Source:     src,
		Compiled:   compiled,
		Plan:       plan,
		Params:     params,
	}

	fragModule, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: src.Path,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: compiled.WGSL,
		},
	})
	if err != nil {
		return nil, &build.DeviceError{Op: "create fragment shader module", Err: err}
	}
	defer fragModule.Release()

	out.GlobalsBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Globals Buffer",
		Size:  layout.GlobalsSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		out.Discard()
		return nil, &build.DeviceError{Op: "create globals buffer", Err: err}
	}

	out.GlobalsBindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Globals Bind Group",
		Layout: b.globalsLayout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  out.GlobalsBuffer,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		out.Discard()
		return nil, &build.DeviceError{Op: "create globals bind group", Err: err}
	}

	bindGroupLayouts := []*wgpu.BindGroupLayout{b.globalsLayout}
	if plan.Size > 0 {
		out.ParamsBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Params Buffer",
			Size:  uint64(plan.Size),
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			out.Discard()
			return nil, &build.DeviceError{Op: "create params buffer", Err: err}
		}

		out.ParamsBindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "Params Bind Group",
			Layout: b.paramsLayout,
			Entries: []wgpu.BindGroupEntry{
				{
					Binding: 0,
					Buffer:  out.ParamsBuffer,
					Size:    wgpu.WholeSize,
				},
			},
		})
		if err != nil {
			out.Discard()
			return nil, &build.DeviceError{Op: "create params bind group", Err: err}
		}
		bindGroupLayouts = append(bindGroupLayouts, b.paramsLayout)
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Shader Pipeline Layout",
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		out.Discard()
		return nil, &build.DeviceError{Op: "create pipeline layout", Err: err}
	}
	defer pipelineLayout.Release()

	out.Pipeline, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Shader Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     b.vertexModule,
			EntryPoint: "main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     fragModule,
			EntryPoint: "main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    *b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		out.Discard()
		return nil, &build.DeviceError{Op: "create render pipeline", Err: err}
	}

	return out, nil
}

func (b *wgpuRendererBackendImpl) WriteGlobals(bld *build.Build, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if bld.GlobalsBuffer == nil {
		return
	}
	b.queue.WriteBuffer(bld.GlobalsBuffer, 0, data)
}

func (b *wgpuRendererBackendImpl) WriteParams(bld *build.Build, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if bld.ParamsBuffer == nil {
		return
	}
	b.queue.WriteBuffer(bld.ParamsBuffer, 0, data)
}

func (b *wgpuRendererBackendImpl) RenderFrame(bld *build.Build) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	// Shader pass into the offscreen frame texture.
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       b.frameView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1.0},
			},
		},
	})
	pass.SetPipeline(bld.Pipeline)
	pass.SetBindGroup(0, bld.GlobalsBindGroup, nil)
	if bld.ParamsBindGroup != nil {
		pass.SetBindGroup(1, bld.ParamsBindGroup, nil)
	}
	pass.Draw(3, 1, 0, 0)
	pass.End()

	// Blit pass copying the frame texture to the swapchain.
	blit := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1.0},
			},
		},
	})
	blit.SetPipeline(b.blitPipeline)
	blit.SetBindGroup(0, b.blitBindGroup, nil)
	blit.Draw(3, 1, 0, 0)
	blit.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()

	b.surface.Present()
	view.Release()
	surfaceTexture.Release()

	b.completedFrames.Add(1)
	return nil
}

func (b *wgpuRendererBackendImpl) FrameView() *wgpu.TextureView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frameView
}

func (b *wgpuRendererBackendImpl) CompletedFrames() uint64 {
	return b.completedFrames.Load()
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.blitBindGroup != nil {
		b.blitBindGroup.Release()
		b.blitBindGroup = nil
	}
	if b.blitPipeline != nil {
		b.blitPipeline.Release()
		b.blitPipeline = nil
	}
	if b.blitSampler != nil {
		b.blitSampler.Release()
		b.blitSampler = nil
	}
	if b.blitLayout != nil {
		b.blitLayout.Release()
		b.blitLayout = nil
	}
	if b.blitModule != nil {
		b.blitModule.Release()
		b.blitModule = nil
	}
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameTexture != nil {
		b.frameTexture.Release()
		b.frameTexture = nil
	}
	if b.paramsLayout != nil {
		b.paramsLayout.Release()
		b.paramsLayout = nil
	}
	if b.globalsLayout != nil {
		b.globalsLayout.Release()
		b.globalsLayout = nil
	}
	if b.vertexModule != nil {
		b.vertexModule.Release()
		b.vertexModule = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}
