package shader

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pudnax/nuance/engine/layout"
)

// paramDeclRegex matches a top-level parameter declaration:
//
//	float uScale = 1.0;
//	vec2 uOffset = vec2(0, 0);
//
// WGSL's own declaration forms (`var`, `let`, `alias`, ...) share the
// two-identifier shape, so matches are filtered through wgslDeclKeywords
// first. Whether the remaining kind token is actually supported is checked
// afterwards so that unsupported types are reported instead of silently
// ignored.
var paramDeclRegex = regexp.MustCompile(`(?m)^[ \t]*([A-Za-z_]\w*)[ \t]+([A-Za-z_]\w*)[ \t]*=[ \t]*([^;]+);`)

// ctorRegex matches a vector constructor literal like vec2(0, 0.5) or
// color(1, 0, 0, 1), capturing the constructor name and argument list.
var ctorRegex = regexp.MustCompile(`^([A-Za-z_]\w*)\s*\(([^)]*)\)$`)

// wgslDeclKeywords are WGSL keywords that can legally start a two-identifier
// `<keyword> <name> = <expr>;` statement, in a function body (`var foo = 1.0;`)
// or at module scope (`alias Scalar = f32;`, including the legacy `type`
// spelling). They are never parameter declarations.
var wgslDeclKeywords = map[string]bool{
	"var":      true,
	"let":      true,
	"const":    true,
	"override": true,
	"return":   true,
	"alias":    true,
	"type":     true,
}

// Reflect extracts the ordered user-parameter list from the entry shader
// source text. Parameters are declared at top level as `<kind> <name> =
// <literal>;` with kind one of float, int, uint, bool, vec2, vec3, vec4,
// color. Declaration order is preserved and significant: it determines both
// the layout offsets and presentation order. Comments are ignored.
//
// A declaration with an unrecognized kind, a duplicate name, or a non-literal
// default yields a *layout.SchemaError rather than being skipped, since a
// parameter the layout does not know about would desynchronize the uniform
// region from what the shader reads.
//
// Parameters:
//   - entry: the raw entry shader source text (pre-inclusion)
//
// Returns:
//   - []layout.Param: the ordered parameter list, each carrying the byte
//     offset and line of its declaration for diagnostics
//   - error: a *layout.SchemaError on any invalid declaration
func Reflect(entry string) ([]layout.Param, error) {
	cleaned := blankComments(entry)

	var params []layout.Param
	seen := make(map[string]bool)

	for _, m := range paramDeclRegex.FindAllStringSubmatchIndex(cleaned, -1) {
		kindTok := cleaned[m[2]:m[3]]
		name := cleaned[m[4]:m[5]]
		defaultTok := strings.TrimSpace(cleaned[m[6]:m[7]])
		declStart := m[0]

		if wgslDeclKeywords[kindTok] {
			continue
		}

		kind, ok := layout.KindFromName(kindTok)
		if !ok {
			return nil, &layout.SchemaError{
				Param:  name,
				Detail: fmt.Sprintf("unsupported parameter type %q at line %d", kindTok, lineOfOffset(entry, declStart)),
			}
		}
		if seen[name] {
			return nil, &layout.SchemaError{
				Param:  name,
				Detail: fmt.Sprintf("duplicate parameter name at line %d", lineOfOffset(entry, declStart)),
			}
		}
		seen[name] = true

		def, err := parseDefault(kind, name, defaultTok)
		if err != nil {
			return nil, err
		}

		params = append(params, layout.Param{
			Name:      name,
			Kind:      kind,
			Default:   def,
			DeclStart: declStart,
		})
	}

	return params, nil
}

// ReflectSource extracts the parameter list from a resolved source. Parameters
// may only be declared in the entry file; Module blanks entry declarations
// before compilation, so one hiding in an included file would otherwise reach
// the compiler as raw text and surface as an opaque parse error. Such a
// declaration is reported here as a *layout.SchemaError naming the include.
//
// Parameters:
//   - src: the resolved source
//
// Returns:
//   - []layout.Param: the ordered parameter list from the entry file
//   - error: a *layout.SchemaError on any invalid or misplaced declaration
func ReflectSource(src *Source) ([]layout.Param, error) {
	params, err := Reflect(src.Entry)
	if err != nil {
		return nil, err
	}
	if err := rejectIncludedParams(src); err != nil {
		return nil, err
	}
	return params, nil
}

// rejectIncludedParams scans the included files of the expanded source for
// parameter-shaped declarations with a supported kind. The per-file text is
// reconstructed from the first inclusion's lines; repeat inclusions replay the
// same lines and are skipped.
func rejectIncludedParams(src *Source) error {
	perFile := make(map[string][]string)
	for i, line := range src.lines {
		o := src.origins[i]
		if o.File == src.Path {
			continue
		}
		if o.Line == len(perFile[o.File])+1 {
			perFile[o.File] = append(perFile[o.File], line)
		}
	}

	for _, file := range src.Files {
		lines, ok := perFile[file]
		if !ok {
			continue
		}
		cleaned := blankComments(strings.Join(lines, "\n"))
		for _, m := range paramDeclRegex.FindAllStringSubmatchIndex(cleaned, -1) {
			kindTok := cleaned[m[2]:m[3]]
			name := cleaned[m[4]:m[5]]
			if wgslDeclKeywords[kindTok] {
				continue
			}
			if _, supported := layout.KindFromName(kindTok); !supported {
				continue
			}
			return &layout.SchemaError{
				Param: name,
				Detail: fmt.Sprintf("declared in included file %s at line %d; parameters belong in the entry shader",
					file, lineOfOffset(cleaned, m[0])),
			}
		}
	}
	return nil
}

// parseDefault parses a literal default value for the given kind. Defaults
// must be literal: scalar literals, true/false, or a constructor of float
// literals with the kind's component count. Expressions are rejected.
func parseDefault(kind layout.Kind, name, tok string) (layout.Value, error) {
	schemaErr := func(detail string) (layout.Value, error) {
		return layout.Value{}, &layout.SchemaError{Param: name, Detail: detail}
	}

	switch kind {
	case layout.KindFloat:
		v, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return schemaErr(fmt.Sprintf("default %q is not a float literal", tok))
		}
		return layout.Float(float32(v)), nil

	case layout.KindInt:
		v, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			return schemaErr(fmt.Sprintf("default %q is not an int literal", tok))
		}
		return layout.Int32(int32(v)), nil

	case layout.KindUInt:
		v, err := strconv.ParseUint(strings.TrimSuffix(tok, "u"), 10, 32)
		if err != nil {
			return schemaErr(fmt.Sprintf("default %q is not a uint literal", tok))
		}
		return layout.UInt32(uint32(v)), nil

	case layout.KindBool:
		switch tok {
		case "true":
			return layout.Bool32(true), nil
		case "false":
			return layout.Bool32(false), nil
		}
		return schemaErr(fmt.Sprintf("default %q is not a bool literal", tok))

	case layout.KindVec2, layout.KindVec3, layout.KindVec4, layout.KindColor:
		m := ctorRegex.FindStringSubmatch(tok)
		if m == nil {
			return schemaErr(fmt.Sprintf("default %q is not a %s constructor literal", tok, kind))
		}
		ctor := m[1]
		if ctor != kind.String() && !(kind == layout.KindColor && ctor == "vec4") {
			return schemaErr(fmt.Sprintf("default constructor %q does not match kind %s", ctor, kind))
		}

		args := strings.Split(m[2], ",")
		if len(args) != kind.Components() {
			return schemaErr(fmt.Sprintf("default %q has %d components, want %d", tok, len(args), kind.Components()))
		}

		v := layout.Value{Kind: kind}
		for i, a := range args {
			f, err := strconv.ParseFloat(strings.TrimSpace(a), 32)
			if err != nil {
				return schemaErr(fmt.Sprintf("default component %q is not a float literal", strings.TrimSpace(a)))
			}
			v.Vec[i] = float32(f)
		}
		return v, nil

	default:
		return schemaErr(fmt.Sprintf("unhandled kind %s", kind))
	}
}

// blankComments replaces // line comments and /* */ block comments (which may
// nest) with spaces, preserving every byte offset and newline so declaration
// positions in the cleaned text match the original exactly.
func blankComments(source string) string {
	out := []byte(source)
	depth := 0
	inLine := false
	for i := 0; i < len(out); i++ {
		c := out[i]
		if c == '\n' {
			inLine = false
			continue
		}
		if inLine {
			out[i] = ' '
			continue
		}
		if depth > 0 {
			switch {
			case c == '*' && i+1 < len(out) && out[i+1] == '/':
				depth--
				out[i], out[i+1] = ' ', ' '
				i++
			case c == '/' && i+1 < len(out) && out[i+1] == '*':
				depth++
				out[i], out[i+1] = ' ', ' '
				i++
			default:
				out[i] = ' '
			}
			continue
		}
		if c == '/' && i+1 < len(out) {
			switch out[i+1] {
			case '/':
				inLine = true
				out[i], out[i+1] = ' ', ' '
				i++
			case '*':
				depth++
				out[i], out[i+1] = ' ', ' '
				i++
			}
		}
	}
	return string(out)
}

// lineOfOffset converts a byte offset in text to a 1-based line number.
func lineOfOffset(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	return 1 + strings.Count(text[:offset], "\n")
}
