// Package shader turns a fragment shader file on disk into something the GPU
// pipeline can consume: it resolves //!include directives into a single
// expanded text with a per-line origin table, reflects the user-declared
// parameters out of the source, synthesizes the built-in globals preamble and
// the generated parameter uniform block, and compiles the result to an
// executable binary with structured diagnostics mapped back to the original
// files.
package shader

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// includeRegex matches an include directive on its own line:
//
//	//!include "relative/path.wgsl"
var includeRegex = regexp.MustCompile(`^\s*//!include\s+"([^"]+)"\s*$`)

// LineOrigin records where one line of expanded source text came from.
// Line is 1-based; a Line of 0 marks synthetic text (the injected preamble)
// that has no counterpart in any file on disk.
type LineOrigin struct {
	File string
	Line int
}

// IncludeError reports a failure while resolving the include graph: a missing
// file or a circular include chain. It blocks the reload; the previously
// active build keeps rendering.
type IncludeError struct {
	Path   string // the file that could not be included
	From   string // the file containing the directive
	Line   int    // 1-based line of the directive in From
	Cycle  bool
	Err    error
}

func (e *IncludeError) Error() string {
	if e.Cycle {
		return fmt.Sprintf("%s:%d: circular include of %q", e.From, e.Line, e.Path)
	}
	return fmt.Sprintf("%s:%d: cannot include %q: %v", e.From, e.Line, e.Path, e.Err)
}

func (e *IncludeError) Unwrap() error {
	return e.Err
}

// Source owns the raw text of the entry shader file plus the expanded text
// with every //!include directive substituted by the included file's contents.
// Each expanded line carries its origin so compiler diagnostics can be mapped
// back to the pre-inclusion file and line. A Source is recreated on every
// rebuild attempt and never mutated afterwards.
type Source struct {
	// Path is the canonical (absolute, cleaned) path of the entry file.
	Path string

	// Entry is the raw text of the entry file as read from disk.
	Entry string

	// Files lists every file in the include graph, entry file first, in
	// first-inclusion order. The watcher registers interest in exactly this set.
	Files []string

	lines   []string
	origins []LineOrigin
}

// Resolve reads the entry shader file and expands its include graph.
// Include paths are resolved relative to the file containing the directive.
// A missing file or a circular chain yields an *IncludeError.
//
// Parameters:
//   - path: the entry shader file path
//
// Returns:
//   - *Source: the resolved source with its line-origin table
//   - error: an *IncludeError on a missing or circular include
func Resolve(path string) (*Source, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	abs = filepath.Clean(abs)

	s := &Source{Path: abs}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, &IncludeError{Path: abs, From: abs, Line: 0, Err: err}
	}
	s.Entry = string(data)
	s.Files = append(s.Files, abs)

	stack := []string{abs}
	if err := s.expand(abs, s.Entry, stack); err != nil {
		return nil, err
	}
	return s, nil
}

// FromString builds a Source from in-memory text instead of a file on disk,
// used for the embedded default shader. Include directives are resolved
// relative to name's directory.
//
// Parameters:
//   - name: a display name standing in for the file path
//   - text: the shader source text
//
// Returns:
//   - *Source: the resolved source
//   - error: an *IncludeError on a missing or circular include
func FromString(name, text string) (*Source, error) {
	s := &Source{Path: name, Entry: text, Files: []string{name}}
	if err := s.expand(name, text, []string{name}); err != nil {
		return nil, err
	}
	return s, nil
}

// expand appends the lines of text (belonging to file) to the expanded source,
// recursing into include directives. stack holds the chain of files currently
// being expanded, used to detect cycles.
func (s *Source) expand(file, text string, stack []string) error {
	for i, line := range splitLines(text) {
		m := includeRegex.FindStringSubmatch(line)
		if m == nil {
			s.lines = append(s.lines, line)
			s.origins = append(s.origins, LineOrigin{File: file, Line: i + 1})
			continue
		}

		target := filepath.Clean(filepath.Join(filepath.Dir(file), m[1]))
		if slices.Contains(stack, target) {
			return &IncludeError{Path: target, From: file, Line: i + 1, Cycle: true}
		}

		data, err := os.ReadFile(target)
		if err != nil {
			return &IncludeError{Path: target, From: file, Line: i + 1, Err: err}
		}
		if !slices.Contains(s.Files, target) {
			s.Files = append(s.Files, target)
		}
		if err := s.expand(target, string(data), append(stack, target)); err != nil {
			return err
		}
	}
	return nil
}

// Expanded returns the include-resolved source text. Parameter declarations
// are still present; Module strips and replaces them with the generated
// uniform block.
func (s *Source) Expanded() string {
	return strings.Join(s.lines, "\n")
}

// MapLine maps a 1-based line number in text previously produced by Module
// back to its origin file and line. Lines belonging to the synthetic preamble
// map to the entry file with Line 0. Out-of-range lines map to the entry file.
func (s *Source) MapLine(preambleLines, line int) LineOrigin {
	if line <= preambleLines {
		return LineOrigin{File: s.Path, Line: 0}
	}
	idx := line - preambleLines - 1
	if idx < 0 || idx >= len(s.origins) {
		return LineOrigin{File: s.Path, Line: 0}
	}
	return s.origins[idx]
}

// splitLines splits text into lines without the trailing newline ambiguity of
// strings.Split: a trailing newline does not produce a phantom empty line.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
