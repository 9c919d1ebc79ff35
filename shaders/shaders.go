// Package shaders holds the shader sources embedded into the binary.
package shaders

import _ "embed"

// DefaultName is the display name used in diagnostics for the embedded
// default shader.
const DefaultName = "default.wgsl"

// Default is the shader rendered before any file is loaded and whenever no
// file was given on the command line.
//
//go:embed default.wgsl
var Default string
