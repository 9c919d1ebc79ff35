package shader

import (
	"fmt"
	"strings"

	"github.com/pudnax/nuance/engine/layout"
)

// Module produces the final WGSL text handed to the compiler: the built-in
// globals preamble, the generated user-parameter uniform block (omitted when
// the shader declares no parameters), and the include-expanded body with every
// parameter declaration line blanked out. Blanking instead of deleting keeps
// the body's line numbering identical to the expanded source, so diagnostics
// map back exactly.
//
// Parameters:
//   - src: the resolved source
//   - params: the reflected parameter list
//
// Returns:
//   - string: the complete WGSL module text
//   - int: the number of synthetic preamble lines prepended before the body
func Module(src *Source, params []layout.Param) (string, int) {
	var sb strings.Builder
	sb.WriteString(layout.GlobalsWGSL)
	sb.WriteByte('\n')
	if len(params) > 0 {
		sb.WriteString(paramsWGSL(params))
		sb.WriteByte('\n')
	}
	preamble := sb.String()
	preambleLines := strings.Count(preamble, "\n")

	declLines := make(map[int]bool, len(params))
	for _, p := range params {
		declLines[lineOfOffset(src.Entry, p.DeclStart)] = true
	}

	body := make([]string, len(src.lines))
	for i, line := range src.lines {
		if o := src.origins[i]; o.File == src.Path && declLines[o.Line] {
			body[i] = ""
			continue
		}
		body[i] = line
	}

	return preamble + strings.Join(body, "\n") + "\n", preambleLines
}

// paramsWGSL generates the uniform block declaration for the user parameters.
// Members are emitted in declaration order; WGSL's uniform layout rules place
// them on exactly the offsets the plan computed, since the planner uses the
// same size and alignment table.
func paramsWGSL(params []layout.Param) string {
	var sb strings.Builder
	sb.WriteString("struct Params {\n")
	for _, p := range params {
		fmt.Fprintf(&sb, "    %s: %s,\n", p.Name, p.Kind.WGSL())
	}
	sb.WriteString("}\n")
	sb.WriteString("@group(1) @binding(0) var<uniform> p: Params;")
	return sb.String()
}
