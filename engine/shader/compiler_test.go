package shader

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBody = `@fragment
fn main(@builtin(position) pos: vec4<f32>) -> @location(0) vec4<f32> {
    let t = u.time;
    return vec4<f32>(sin(t), 0.5, 1.0, 1.0);
}
`

// spirvMagic is the SPIR-V magic number in the first binary word.
const spirvMagic = 0x07230203

func compileText(t *testing.T, text string) (*Compiled, error) {
	t.Helper()
	src, err := FromString("test.wgsl", text)
	require.NoError(t, err)
	params, err := Reflect(text)
	require.NoError(t, err)
	module, preambleLines := Module(src, params)
	return Compile(src, module, preambleLines)
}

func TestCompileValidShader(t *testing.T) {
	compiled, err := compileText(t, validBody)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(compiled.SPIRV), 20)
	assert.Equal(t, uint32(spirvMagic), binary.LittleEndian.Uint32(compiled.SPIRV))
	assert.Contains(t, compiled.WGSL, "struct Globals")
}

func TestCompileShaderWithParams(t *testing.T) {
	compiled, err := compileText(t, `float uScale = 2.0;

@fragment
fn main(@builtin(position) pos: vec4<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(p.uScale, 0.0, 0.0, 1.0);
}
`)
	require.NoError(t, err)
	assert.Contains(t, compiled.WGSL, "struct Params")
	assert.Equal(t, uint32(spirvMagic), binary.LittleEndian.Uint32(compiled.SPIRV))
}

func TestCompileSyntaxError(t *testing.T) {
	_, err := compileText(t, `@fragment
fn main( -> {
`)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	require.NotEmpty(t, ce.Diagnostics)

	d := ce.Diagnostics[0]
	assert.Equal(t, SeverityError, d.Severity)
	assert.NotEmpty(t, d.Message)
	assert.Equal(t, "test.wgsl", d.File)
}

func TestCompileUndefinedIdentifier(t *testing.T) {
	_, err := compileText(t, `@fragment
fn main(@builtin(position) pos: vec4<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(nonsense, 0.0, 0.0, 1.0);
}
`)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	require.NotEmpty(t, ce.Diagnostics)
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{File: "a.wgsl", Line: 3, Column: 7, Severity: SeverityError, Message: "bad"}
	assert.Equal(t, "a.wgsl:3:7: error: bad", d.String())

	d = Diagnostic{File: "a.wgsl", Severity: SeverityError, Message: "bad"}
	assert.Equal(t, "a.wgsl: error: bad", d.String())
}

func TestCompileErrorMessage(t *testing.T) {
	err := &CompileError{Diagnostics: []Diagnostic{
		{File: "a.wgsl", Line: 1, Column: 1, Severity: SeverityError, Message: "first"},
		{File: "a.wgsl", Line: 2, Column: 1, Severity: SeverityError, Message: "second"},
	}}
	assert.Equal(t, "a.wgsl:1:1: error: first (and 1 more)", err.Error())
}
