package shader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/spirv"
	"github.com/gogpu/naga/wgsl"
)

// Severity classifies a compiler diagnostic.
type Severity int

const (
	// SeverityError marks a diagnostic that blocked compilation.
	SeverityError Severity = iota

	// SeverityWarning marks a non-blocking diagnostic.
	SeverityWarning
)

// String returns "error" or "warning".
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one compiler message with its location mapped back to the
// pre-inclusion file and line. Line and Column are 1-based; Line 0 means the
// location fell inside the synthetic preamble or could not be recovered.
type Diagnostic struct {
	File     string
	Line     int
	Column   int
	Severity Severity
	Message  string
}

// String formats the diagnostic as file:line:col: severity: message.
func (d Diagnostic) String() string {
	if d.Line == 0 {
		return fmt.Sprintf("%s: %s: %s", d.File, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Column, d.Severity, d.Message)
}

// CompileError carries the structured diagnostics of a failed compilation.
// It blocks the install; the previously active build keeps rendering while
// the diagnostics are surfaced for display.
type CompileError struct {
	Diagnostics []Diagnostic
}

func (e *CompileError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "compile error"
	}
	if len(e.Diagnostics) == 1 {
		return e.Diagnostics[0].String()
	}
	return fmt.Sprintf("%s (and %d more)", e.Diagnostics[0], len(e.Diagnostics)-1)
}

// Compiled is the executable form of a shader: the SPIR-V binary produced by
// the compiler pipeline plus the validated WGSL text the GPU device consumes
// at pipeline construction. Immutable once produced; owned by the build that
// carries it.
type Compiled struct {
	SPIRV []byte
	WGSL  string
}

// Compile runs the full CPU-side compilation of the synthesized module text:
// parse, lower, validate, and SPIR-V generation. It performs no GPU calls and
// has no side effects beyond CPU time. On failure the returned error is a
// *CompileError whose diagnostics are mapped through src's line table back to
// the original files.
//
// Parameters:
//   - src: the resolved source (for diagnostic line mapping)
//   - module: the synthesized WGSL text from Module
//   - preambleLines: the synthetic preamble line count returned by Module
//
// Returns:
//   - *Compiled: the executable binary and its WGSL text
//   - error: a *CompileError with located diagnostics on failure
func Compile(src *Source, module string, preambleLines int) (*Compiled, error) {
	ast, err := naga.Parse(module)
	if err != nil {
		return nil, compileError(src, preambleLines, err)
	}

	ir, err := naga.LowerWithSource(ast, module)
	if err != nil {
		return nil, compileError(src, preambleLines, err)
	}

	validationErrors, err := naga.Validate(ir)
	if err != nil {
		return nil, compileError(src, preambleLines, err)
	}
	if len(validationErrors) > 0 {
		diags := make([]Diagnostic, 0, len(validationErrors))
		for _, ve := range validationErrors {
			diags = append(diags, Diagnostic{
				File:     src.Path,
				Severity: SeverityError,
				Message:  ve.Error(),
			})
		}
		return nil, &CompileError{Diagnostics: diags}
	}

	binary, err := naga.GenerateSPIRV(ir, spirv.DefaultOptions())
	if err != nil {
		return nil, compileError(src, preambleLines, err)
	}

	return &Compiled{SPIRV: binary, WGSL: module}, nil
}

// compileError converts a naga error into a *CompileError, extracting source
// locations where the front end provides them and mapping each through the
// include line table.
func compileError(src *Source, preambleLines int, err error) error {
	var list *wgsl.SourceErrors
	if errors.As(err, &list) {
		diags := make([]Diagnostic, 0, len(*list))
		for _, se := range *list {
			diags = append(diags, locate(src, preambleLines, se))
		}
		return &CompileError{Diagnostics: diags}
	}

	var se *wgsl.SourceError
	if errors.As(err, &se) {
		return &CompileError{Diagnostics: []Diagnostic{locate(src, preambleLines, se)}}
	}

	var pe *wgsl.ParseError
	if errors.As(err, &pe) {
		d := Diagnostic{
			File:     src.Path,
			Severity: SeverityError,
			Message:  pe.Message,
		}
		if pe.Token.Line > 0 {
			origin := src.MapLine(preambleLines, pe.Token.Line)
			d.File = origin.File
			d.Line = origin.Line
			d.Column = pe.Token.Column
		}
		return &CompileError{Diagnostics: []Diagnostic{d}}
	}

	return &CompileError{Diagnostics: []Diagnostic{{
		File:     src.Path,
		Severity: SeverityError,
		Message:  strings.TrimSpace(err.Error()),
	}}}
}

// locate maps one source error's position from the synthesized module text
// back to the original file and line.
func locate(src *Source, preambleLines int, se *wgsl.SourceError) Diagnostic {
	d := Diagnostic{
		File:     src.Path,
		Severity: SeverityError,
		Message:  se.Message,
	}
	if se.Span.Start.Line > 0 {
		origin := src.MapLine(preambleLines, se.Span.Start.Line)
		d.File = origin.File
		d.Line = origin.Line
		d.Column = se.Span.Start.Column
	}
	return d
}
