package layout

import (
	"encoding/binary"
	"math"
)

// GlobalsSize is the fixed byte size of the packed Globals region.
const GlobalsSize = 32

// Globals are the built-in per-frame values every shader can read regardless
// of its own declarations: window resolution, pointer position, accumulated
// wheel delta, aspect ratio, elapsed time, and frame index.
//
// The byte layout is fixed and independent of user parameters:
//
//	offset  0: resolution.x  u32
//	offset  4: resolution.y  u32
//	offset  8: mouse.x       u32
//	offset 12: mouse.y       u32
//	offset 16: wheel         f32
//	offset 20: ratio         f32
//	offset 24: time          f32
//	offset 28: frame         u32
type Globals struct {
	Resolution [2]uint32
	Mouse      [2]uint32
	Wheel      float32
	Ratio      float32
	Time       float32
	Frame      uint32
}

// Pack serializes the globals into dst using the fixed little-endian layout.
// dst must be at least GlobalsSize bytes long; extra bytes are left untouched.
func (g Globals) Pack(dst []byte) {
	_ = dst[GlobalsSize-1]
	binary.LittleEndian.PutUint32(dst[0:], g.Resolution[0])
	binary.LittleEndian.PutUint32(dst[4:], g.Resolution[1])
	binary.LittleEndian.PutUint32(dst[8:], g.Mouse[0])
	binary.LittleEndian.PutUint32(dst[12:], g.Mouse[1])
	binary.LittleEndian.PutUint32(dst[16:], math.Float32bits(g.Wheel))
	binary.LittleEndian.PutUint32(dst[20:], math.Float32bits(g.Ratio))
	binary.LittleEndian.PutUint32(dst[24:], math.Float32bits(g.Time))
	binary.LittleEndian.PutUint32(dst[28:], g.Frame)
}

// UnpackGlobals reads a Globals value back out of a packed region. This is the
// inverse of Pack and exists for harnesses that inspect the GPU-visible bytes.
func UnpackGlobals(src []byte) Globals {
	_ = src[GlobalsSize-1]
	return Globals{
		Resolution: [2]uint32{
			binary.LittleEndian.Uint32(src[0:]),
			binary.LittleEndian.Uint32(src[4:]),
		},
		Mouse: [2]uint32{
			binary.LittleEndian.Uint32(src[8:]),
			binary.LittleEndian.Uint32(src[12:]),
		},
		Wheel: math.Float32frombits(binary.LittleEndian.Uint32(src[16:])),
		Ratio: math.Float32frombits(binary.LittleEndian.Uint32(src[20:])),
		Time:  math.Float32frombits(binary.LittleEndian.Uint32(src[24:])),
		Frame: binary.LittleEndian.Uint32(src[28:]),
	}
}

// GlobalsWGSL is the WGSL declaration injected as a preamble into every
// compiled shader, matching the packed layout above. User shaders reference
// the fields as u.resolution, u.time, and so on without redeclaring them.
const GlobalsWGSL = `struct Globals {
    resolution: vec2<u32>,
    mouse: vec2<u32>,
    wheel: f32,
    ratio: f32,
    time: f32,
    frame: u32,
}
@group(0) @binding(0) var<uniform> u: Globals;`
