// Package frame drives the per-frame work of the render loop: packing and
// uploading the built-in globals, migrating and uploading parameter values,
// and issuing the fullscreen draw against whichever build is active.
package frame

import (
	"sync"
	"time"

	"github.com/pudnax/nuance/engine/layout"
	"github.com/pudnax/nuance/engine/params"
	"github.com/pudnax/nuance/engine/renderer/build"
)

// RenderBackend is the slice of the renderer the driver needs each frame.
type RenderBackend interface {
	WriteGlobals(b *build.Build, data []byte)
	WriteParams(b *build.Build, data []byte)
	RenderFrame(b *build.Build) error
	CompletedFrames() uint64
}

// BuildSource supplies the active build and accepts retire collection.
// The pipeline manager implements it.
type BuildSource interface {
	CurrentBuild() *build.Build
	CollectRetired(completedFrames uint64)
}

// Surface reports the window state the globals block carries.
type Surface interface {
	Width() int
	Height() int
	CursorPos() (x, y int32)
}

// FrameDriver runs one frame at a time against the active build. It owns the
// simulation clock, the frame counter, and the wheel accumulator, and it
// detects build swaps to migrate parameter values and restart the clock the
// way a fresh shader load does.
type FrameDriver interface {
	// Frame runs one frame: packs and uploads globals, uploads parameters
	// when they changed or the build is new, draws, and collects retired
	// builds. Never blocks on an in-flight reload; with no build installed
	// yet it is a no-op.
	//
	// Returns:
	//   - error: an error if the frame could not be rendered
	Frame() error

	// AddWheel accumulates a scroll event into the wheel global, scaled by
	// the configured step.
	//
	// Parameters:
	//   - delta: the raw scroll delta from the window
	AddWheel(delta float32)

	// Reset zeroes the simulation clock, the frame counter, and the wheel
	// accumulator.
	Reset()

	// Elapsed returns the simulation time since the last reset or build swap.
	//
	// Returns:
	//   - time.Duration: the elapsed simulation time
	Elapsed() time.Duration
}

// frameDriver is the implementation of the FrameDriver interface.
type frameDriver struct {
	renderer RenderBackend
	source   BuildSource
	surface  Surface
	store    params.Store

	// wheelStep scales raw scroll deltas into the wheel global.
	wheelStep float32

	// mu guards the input and clock state shared between the window
	// callbacks and the render goroutine.
	mu         sync.Mutex
	wheel      float32
	start      time.Time
	frameIndex uint32

	// lastBuild detects installs: when the active build pointer changes,
	// parameter values migrate to the new plan and the clock restarts.
	lastBuild *build.Build

	globalsBuf [layout.GlobalsSize]byte
}

var _ FrameDriver = &frameDriver{}

// NewFrameDriver creates a new FrameDriver with the specified collaborators.
// Applies default values first, then each option in order. The default wheel
// step is 0.1.
//
// Parameters:
//   - renderer: the render backend to upload to and draw with
//   - source: the build source (the pipeline manager)
//   - surface: the window state source
//   - store: the parameter value store
//   - options: functional options to configure the driver
//
// Returns:
//   - FrameDriver: the configured driver
func NewFrameDriver(renderer RenderBackend, source BuildSource, surface Surface, store params.Store, options ...FrameDriverBuilderOption) FrameDriver {
	d := &frameDriver{
		renderer:  renderer,
		source:    source,
		surface:   surface,
		store:     store,
		wheelStep: 0.1,
		start:     time.Now(),
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

func (d *frameDriver) Frame() error {
	b := d.source.CurrentBuild()
	if b == nil {
		return nil
	}

	d.mu.Lock()
	newBuild := b != d.lastBuild
	if newBuild {
		d.lastBuild = b
		// A fresh shader starts from time zero and frame zero, matching a
		// cold load of the same file.
		d.start = time.Now()
		d.frameIndex = 0
	}
	elapsed := time.Since(d.start)
	frameIndex := d.frameIndex
	d.frameIndex++
	wheel := d.wheel
	d.mu.Unlock()

	if newBuild {
		d.store.ApplyPlan(b.Params, b.Plan)
	}

	width := d.surface.Width()
	height := d.surface.Height()
	cx, cy := d.surface.CursorPos()

	ratio := float32(1)
	if height > 0 {
		ratio = float32(width) / float32(height)
	}

	g := layout.Globals{
		Resolution: [2]uint32{uint32(width), uint32(height)},
		Mouse:      [2]uint32{clampCursor(cx), clampCursor(cy)},
		Wheel:      wheel,
		Ratio:      ratio,
		Time:       float32(elapsed.Seconds()),
		Frame:      frameIndex,
	}
	g.Pack(d.globalsBuf[:])
	d.renderer.WriteGlobals(b, d.globalsBuf[:])

	if data, upload := d.store.Pack(newBuild); upload {
		d.renderer.WriteParams(b, data)
	}

	err := d.renderer.RenderFrame(b)
	d.source.CollectRetired(d.renderer.CompletedFrames())
	return err
}

func (d *frameDriver) AddWheel(delta float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.wheel += delta * d.wheelStep
}

func (d *frameDriver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.wheel = 0
	d.frameIndex = 0
	d.start = time.Now()
}

func (d *frameDriver) Elapsed() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return time.Since(d.start)
}

// clampCursor converts a cursor coordinate to the unsigned globals field,
// pinning positions left of or above the window to zero.
func clampCursor(v int32) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v)
}
