package manager

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pudnax/nuance/engine/layout"
	"github.com/pudnax/nuance/engine/renderer/build"
	"github.com/pudnax/nuance/engine/shader"
	"github.com/pudnax/nuance/engine/watcher"
)

const validShader = `@fragment
fn main(@builtin(position) pos: vec4<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}
`

const brokenShader = `@fragment
fn main( -> {
`

// fakeBackend assembles builds without touching a GPU device.
type fakeBackend struct {
	mu      sync.Mutex
	created int
	fail    bool
}

func (f *fakeBackend) CreateBuild(generation uint64, src *shader.Source, compiled *shader.Compiled, plan layout.Plan, params []layout.Param) (*build.Build, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, &build.DeviceError{Op: "create render pipeline", Err: errors.New("device lost")}
	}
	f.created++
	return &build.Build{
		Generation: generation,
		Source:     src,
		Compiled:   compiled,
		Plan:       plan,
		Params:     params,
	}, nil
}

func (f *fakeBackend) createdBuilds() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created
}

// fakeWatch records every SetPaths call so tests can assert the registered
// watch set after each rebuild attempt.
type fakeWatch struct {
	mu   sync.Mutex
	sets [][]string
}

func (f *fakeWatch) Start() error { return nil }
func (f *fakeWatch) Stop()        {}

func (f *fakeWatch) SetPaths(paths []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets = append(f.sets, append([]string{}, paths...))
	return nil
}

func (f *fakeWatch) Changes() <-chan watcher.ChangeEvent { return nil }

func (f *fakeWatch) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sets)
}

func (f *fakeWatch) lastSet() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sets) == 0 {
		return nil
	}
	return f.sets[len(f.sets)-1]
}

func writeShader(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestStartInstallsDefaultShader(t *testing.T) {
	m := NewPipelineManager(&fakeBackend{},
		WithDefaultShader("default.wgsl", validShader),
	)
	defer m.Stop()

	require.NoError(t, m.Start())

	b := m.CurrentBuild()
	require.NotNil(t, b)
	assert.Equal(t, build.StateInstalled, b.State())
	assert.Equal(t, "default.wgsl", b.Source.Path)
	assert.NoError(t, m.LastError())
}

func TestStartWithoutDefaultShader(t *testing.T) {
	m := NewPipelineManager(&fakeBackend{})
	defer m.Stop()

	require.NoError(t, m.Start())
	assert.Nil(t, m.CurrentBuild())
}

func TestStartReportsBrokenDefaultShader(t *testing.T) {
	m := NewPipelineManager(&fakeBackend{},
		WithDefaultShader("default.wgsl", brokenShader),
	)
	defer m.Stop()

	err := m.Start()
	var ce *shader.CompileError
	require.ErrorAs(t, err, &ce)
}

func TestReloadSwapsBuildAndRetiresPrevious(t *testing.T) {
	dir := t.TempDir()
	path := writeShader(t, dir, "live.wgsl", validShader)

	m := NewPipelineManager(&fakeBackend{},
		WithDefaultShader("default.wgsl", validShader),
		WithFrameCounter(func() uint64 { return 10 }),
	)
	defer m.Stop()
	require.NoError(t, m.Start())
	prev := m.CurrentBuild()

	m.RequestReload(path)
	require.Eventually(t, func() bool {
		b := m.CurrentBuild()
		return b != nil && b.Source.Path == path
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, build.StateInstalled, m.CurrentBuild().State())
	assert.NoError(t, m.LastError())

	// The previous build is fenced one frame past the swap and held until
	// the renderer reports that frame complete.
	assert.Equal(t, build.StateSuperseded, prev.State())
	assert.Equal(t, uint64(11), prev.RetireFence())

	m.CollectRetired(10)
	assert.Equal(t, build.StateSuperseded, prev.State())

	m.CollectRetired(11)
	assert.Equal(t, build.StateReleased, prev.State())
}

func TestReloadFailureKeepsActiveBuild(t *testing.T) {
	dir := t.TempDir()
	path := writeShader(t, dir, "broken.wgsl", brokenShader)

	m := NewPipelineManager(&fakeBackend{},
		WithDefaultShader("default.wgsl", validShader),
	)
	defer m.Stop()
	require.NoError(t, m.Start())
	active := m.CurrentBuild()

	m.RequestReload(path)
	require.Eventually(t, func() bool {
		return m.LastError() != nil
	}, 5*time.Second, 10*time.Millisecond)

	assert.Same(t, active, m.CurrentBuild())
	assert.Equal(t, build.StateInstalled, active.State())
	assert.NotEmpty(t, m.Diagnostics())
}

func TestReloadMissingFileKeepsActiveBuild(t *testing.T) {
	m := NewPipelineManager(&fakeBackend{},
		WithDefaultShader("default.wgsl", validShader),
	)
	defer m.Stop()
	require.NoError(t, m.Start())
	active := m.CurrentBuild()

	m.RequestReload(filepath.Join(t.TempDir(), "absent.wgsl"))
	require.Eventually(t, func() bool {
		return m.LastError() != nil
	}, 5*time.Second, 10*time.Millisecond)

	var ie *shader.IncludeError
	assert.ErrorAs(t, m.LastError(), &ie)
	assert.Same(t, active, m.CurrentBuild())
}

func TestFailedResolveKeepsWatchSet(t *testing.T) {
	dir := t.TempDir()
	inc := writeShader(t, dir, "lib.wgsl", "fn helper() -> f32 { return 1.0; }\n")
	entry := writeShader(t, dir, "main.wgsl", "//!include \"lib.wgsl\"\n"+validShader)

	fw := &fakeWatch{}
	m := NewPipelineManager(&fakeBackend{}, WithWatcher(fw))
	defer m.Stop()

	m.RequestReload(entry)
	require.Eventually(t, func() bool {
		return fw.calls() == 1
	}, 5*time.Second, 10*time.Millisecond)
	require.NotNil(t, m.CurrentBuild())
	require.ElementsMatch(t, []string{entry, inc}, fw.lastSet())

	require.NoError(t, os.Remove(inc))
	m.RequestReload(entry)
	require.Eventually(t, func() bool {
		return fw.calls() == 2
	}, 5*time.Second, 10*time.Millisecond)
	require.Error(t, m.LastError())

	// The include graph is unknown after the failed resolve. The deleted
	// include stays registered, so recreating it (or editing a surviving
	// include) still triggers a retry.
	assert.ElementsMatch(t, []string{entry, inc}, fw.lastSet())
}

func TestStaleGenerationBuildIsDiscarded(t *testing.T) {
	m := NewPipelineManager(&fakeBackend{}).(*pipelineManager)
	defer m.Stop()

	stale := &build.Build{Generation: m.generation.Add(1)}
	latest := &build.Build{Generation: m.generation.Add(1)}

	m.install(latest)
	require.Same(t, latest, m.CurrentBuild())

	// A build finishing after a newer request must never overwrite the
	// newer install.
	m.install(stale)
	assert.Same(t, latest, m.CurrentBuild())
	assert.Equal(t, build.StateDiscarded, stale.State())
	assert.Equal(t, build.StateInstalled, latest.State())
}

func TestSuccessfulReloadClearsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	path := writeShader(t, dir, "live.wgsl", brokenShader)

	m := NewPipelineManager(&fakeBackend{},
		WithDefaultShader("default.wgsl", validShader),
	)
	defer m.Stop()
	require.NoError(t, m.Start())

	m.RequestReload(path)
	require.Eventually(t, func() bool {
		return len(m.Diagnostics()) > 0
	}, 5*time.Second, 10*time.Millisecond)

	writeShader(t, dir, "live.wgsl", validShader)
	m.RequestReload(path)
	require.Eventually(t, func() bool {
		b := m.CurrentBuild()
		return b != nil && b.Source.Path == path
	}, 5*time.Second, 10*time.Millisecond)

	assert.NoError(t, m.LastError())
	assert.Empty(t, m.Diagnostics())
}

func TestDeviceFailureKeepsActiveBuild(t *testing.T) {
	dir := t.TempDir()
	path := writeShader(t, dir, "live.wgsl", validShader)

	backend := &fakeBackend{}
	m := NewPipelineManager(backend,
		WithDefaultShader("default.wgsl", validShader),
	)
	defer m.Stop()
	require.NoError(t, m.Start())
	active := m.CurrentBuild()

	backend.mu.Lock()
	backend.fail = true
	backend.mu.Unlock()

	m.RequestReload(path)
	require.Eventually(t, func() bool {
		return m.LastError() != nil
	}, 5*time.Second, 10*time.Millisecond)

	var de *build.DeviceError
	assert.ErrorAs(t, m.LastError(), &de)
	assert.Same(t, active, m.CurrentBuild())
}

func TestRapidReloadsCoalesce(t *testing.T) {
	dir := t.TempDir()
	path := writeShader(t, dir, "live.wgsl", validShader)

	backend := &fakeBackend{}
	m := NewPipelineManager(backend)
	defer m.Stop()
	require.NoError(t, m.Start())

	// Many requests while a rebuild is in flight are folded into at most
	// one follow-up rebuild each.
	for i := 0; i < 20; i++ {
		m.RequestReload(path)
	}
	require.Eventually(t, func() bool {
		return m.CurrentBuild() != nil
	}, 5*time.Second, 10*time.Millisecond)

	// Let any coalesced follow-up finish before counting.
	time.Sleep(200 * time.Millisecond)
	assert.LessOrEqual(t, backend.createdBuilds(), 3)
}

func TestStopReleasesBuilds(t *testing.T) {
	m := NewPipelineManager(&fakeBackend{},
		WithDefaultShader("default.wgsl", validShader),
	)
	require.NoError(t, m.Start())
	b := m.CurrentBuild()
	require.NotNil(t, b)

	m.Stop()
	assert.Equal(t, build.StateReleased, b.State())
	assert.Nil(t, m.CurrentBuild())
}
