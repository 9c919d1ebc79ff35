package frame

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pudnax/nuance/engine/layout"
	"github.com/pudnax/nuance/engine/params"
	"github.com/pudnax/nuance/engine/renderer/build"
)

// fakeRenderer records the uploads and draws of each frame.
type fakeRenderer struct {
	globals   [][]byte
	params    [][]byte
	rendered  []*build.Build
	completed uint64
	renderErr error
}

func (f *fakeRenderer) WriteGlobals(b *build.Build, data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)
	f.globals = append(f.globals, cp)
}

func (f *fakeRenderer) WriteParams(b *build.Build, data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)
	f.params = append(f.params, cp)
}

func (f *fakeRenderer) RenderFrame(b *build.Build) error {
	f.rendered = append(f.rendered, b)
	f.completed++
	return f.renderErr
}

func (f *fakeRenderer) CompletedFrames() uint64 { return f.completed }

// fakeSource serves a swappable build and records retire collection.
type fakeSource struct {
	build     *build.Build
	collected []uint64
}

func (f *fakeSource) CurrentBuild() *build.Build { return f.build }

func (f *fakeSource) CollectRetired(completedFrames uint64) {
	f.collected = append(f.collected, completedFrames)
}

// fakeSurface is a fixed-size window with a movable cursor.
type fakeSurface struct {
	width, height int
	cx, cy        int32
}

func (f *fakeSurface) Width() int                { return f.width }
func (f *fakeSurface) Height() int               { return f.height }
func (f *fakeSurface) CursorPos() (int32, int32) { return f.cx, f.cy }

func buildWith(t *testing.T, gen uint64, paramList []layout.Param) *build.Build {
	t.Helper()
	plan, err := layout.NewPlan(paramList)
	require.NoError(t, err)
	return &build.Build{Generation: gen, Plan: plan, Params: paramList}
}

func newTestDriver(t *testing.T) (*fakeRenderer, *fakeSource, *fakeSurface, params.Store, FrameDriver) {
	t.Helper()
	r := &fakeRenderer{}
	src := &fakeSource{}
	surf := &fakeSurface{width: 800, height: 600, cx: 120, cy: 45}
	store := params.NewStore()
	return r, src, surf, store, NewFrameDriver(r, src, surf, store)
}

func TestFrameWithoutBuildIsNoOp(t *testing.T) {
	r, _, _, _, d := newTestDriver(t)
	require.NoError(t, d.Frame())
	assert.Empty(t, r.rendered)
	assert.Empty(t, r.globals)
}

func TestFramePacksGlobals(t *testing.T) {
	r, src, _, _, d := newTestDriver(t)
	src.build = buildWith(t, 1, nil)

	require.NoError(t, d.Frame())
	require.NoError(t, d.Frame())
	require.Len(t, r.globals, 2)

	g := layout.UnpackGlobals(r.globals[0])
	assert.Equal(t, [2]uint32{800, 600}, g.Resolution)
	assert.Equal(t, [2]uint32{120, 45}, g.Mouse)
	assert.InDelta(t, 800.0/600.0, g.Ratio, 1e-6)
	assert.Equal(t, uint32(0), g.Frame)

	g = layout.UnpackGlobals(r.globals[1])
	assert.Equal(t, uint32(1), g.Frame, "frame index advances each frame")

	assert.Len(t, r.rendered, 2)
	assert.Equal(t, []uint64{1, 2}, src.collected)
}

func TestFrameClampsNegativeCursor(t *testing.T) {
	r, src, surf, _, d := newTestDriver(t)
	src.build = buildWith(t, 1, nil)
	surf.cx, surf.cy = -30, -1

	require.NoError(t, d.Frame())
	g := layout.UnpackGlobals(r.globals[0])
	assert.Equal(t, [2]uint32{0, 0}, g.Mouse)
}

func TestFrameUploadsParamsOnNewBuildOnly(t *testing.T) {
	r, src, _, store, d := newTestDriver(t)
	src.build = buildWith(t, 1, []layout.Param{
		{Name: "uScale", Kind: layout.KindFloat, Default: layout.Float(2)},
	})

	require.NoError(t, d.Frame())
	require.Len(t, r.params, 1, "new build uploads its defaults")

	require.NoError(t, d.Frame())
	assert.Len(t, r.params, 1, "unchanged values upload nothing")

	require.NoError(t, store.Set("uScale", layout.Float(5)))
	require.NoError(t, d.Frame())
	require.Len(t, r.params, 2, "an edited value uploads once")

	require.NoError(t, d.Frame())
	assert.Len(t, r.params, 2)
}

func TestBuildSwapResetsClockAndMigratesParams(t *testing.T) {
	r, src, _, store, d := newTestDriver(t)
	src.build = buildWith(t, 1, []layout.Param{
		{Name: "uScale", Kind: layout.KindFloat, Default: layout.Float(1)},
	})
	require.NoError(t, d.Frame())
	require.NoError(t, d.Frame())
	require.NoError(t, store.Set("uScale", layout.Float(9)))

	// The swapped-in build keeps uScale and adds uTint.
	src.build = buildWith(t, 2, []layout.Param{
		{Name: "uScale", Kind: layout.KindFloat, Default: layout.Float(1)},
		{Name: "uTint", Kind: layout.KindVec3, Default: layout.Vec3(1, 0, 0)},
	})
	require.NoError(t, d.Frame())

	g := layout.UnpackGlobals(r.globals[len(r.globals)-1])
	assert.Equal(t, uint32(0), g.Frame, "swap restarts the frame counter")

	v, ok := store.Value("uScale")
	require.True(t, ok)
	assert.Equal(t, layout.Float(9), v, "edited value survives the swap")
	_, ok = store.Value("uTint")
	assert.True(t, ok)
}

func TestAddWheelAccumulatesScaledDeltas(t *testing.T) {
	r, src, _, _, d := newTestDriver(t)
	src.build = buildWith(t, 1, nil)

	d.AddWheel(1)
	d.AddWheel(1)
	d.AddWheel(-1)

	require.NoError(t, d.Frame())
	g := layout.UnpackGlobals(r.globals[0])
	assert.InDelta(t, 0.1, g.Wheel, 1e-6)
}

func TestWheelStepOption(t *testing.T) {
	r := &fakeRenderer{}
	src := &fakeSource{build: nil}
	surf := &fakeSurface{width: 100, height: 100}
	store := params.NewStore()
	d := NewFrameDriver(r, src, surf, store, WithWheelStep(0.5))
	src.build = buildWith(t, 1, nil)

	d.AddWheel(2)
	require.NoError(t, d.Frame())
	g := layout.UnpackGlobals(r.globals[0])
	assert.InDelta(t, 1.0, g.Wheel, 1e-6)
}

func TestResetZeroesClockAndWheel(t *testing.T) {
	r, src, _, _, d := newTestDriver(t)
	src.build = buildWith(t, 1, nil)

	d.AddWheel(3)
	require.NoError(t, d.Frame())
	require.NoError(t, d.Frame())

	d.Reset()
	require.NoError(t, d.Frame())

	g := layout.UnpackGlobals(r.globals[len(r.globals)-1])
	assert.Equal(t, uint32(0), g.Frame)
	assert.Zero(t, g.Wheel)
}

func TestFrameReturnsRenderError(t *testing.T) {
	r, src, _, _, d := newTestDriver(t)
	src.build = buildWith(t, 1, nil)
	r.renderErr = errors.New("surface lost")

	err := d.Frame()
	assert.ErrorContains(t, err, "surface lost")
	// Retire collection still ran so superseded builds are not leaked by a
	// transient surface error.
	assert.NotEmpty(t, src.collected)
}

func TestFrameZeroRatioWhenDegenerate(t *testing.T) {
	r, src, surf, _, d := newTestDriver(t)
	src.build = buildWith(t, 1, nil)
	surf.width, surf.height = 640, 0

	require.NoError(t, d.Frame())
	g := layout.UnpackGlobals(r.globals[0])
	assert.Equal(t, float32(1), g.Ratio)
}
