package layout

// Kind identifies the semantic type of a user-declared shader parameter.
// The set is closed: every Kind has a fixed byte size, alignment, and WGSL
// representation, and all consumers switch over it exhaustively.
type Kind int

const (
	// KindFloat is a 32-bit float scalar.
	KindFloat Kind = iota

	// KindInt is a 32-bit signed integer scalar.
	KindInt

	// KindUInt is a 32-bit unsigned integer scalar.
	KindUInt

	// KindVec2 is a 2-component float vector.
	KindVec2

	// KindVec3 is a 3-component float vector.
	KindVec3

	// KindVec4 is a 4-component float vector.
	KindVec4

	// KindColor is an RGBA color, stored identically to a 4-component float vector.
	KindColor

	// KindBool is a boolean, stored as a 4-byte integer (0 or 1) since bool is
	// not host-shareable in uniform memory.
	KindBool
)

// kindLayout holds the byte size and alignment for a parameter kind per the
// WGSL uniform layout rules: scalars align to their own size, 2-component
// vectors to twice the scalar size, 3- and 4-component vectors to four times.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
type kindLayout struct {
	size  uint32
	align uint32
}

var kindLayoutMap = map[Kind]kindLayout{
	KindFloat: {4, 4},
	KindInt:   {4, 4},
	KindUInt:  {4, 4},
	KindVec2:  {8, 8},
	KindVec3:  {12, 16},
	KindVec4:  {16, 16},
	KindColor: {16, 16},
	KindBool:  {4, 4},
}

// kindWGSLMap maps each kind to the WGSL type emitted in the generated
// uniform struct declaration.
var kindWGSLMap = map[Kind]string{
	KindFloat: "f32",
	KindInt:   "i32",
	KindUInt:  "u32",
	KindVec2:  "vec2<f32>",
	KindVec3:  "vec3<f32>",
	KindVec4:  "vec4<f32>",
	KindColor: "vec4<f32>",
	KindBool:  "u32",
}

// kindNameMap maps each kind to its declaration keyword in shader source.
var kindNameMap = map[Kind]string{
	KindFloat: "float",
	KindInt:   "int",
	KindUInt:  "uint",
	KindVec2:  "vec2",
	KindVec3:  "vec3",
	KindVec4:  "vec4",
	KindColor: "color",
	KindBool:  "bool",
}

// KindFromName resolves a declaration keyword (e.g. "float", "vec2", "color")
// to its Kind.
//
// Parameters:
//   - name: the declaration keyword as written in shader source
//
// Returns:
//   - Kind: the resolved kind
//   - bool: false if the keyword is not a recognized parameter kind
func KindFromName(name string) (Kind, bool) {
	for k, n := range kindNameMap {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Size returns the byte size of a value of this kind in uniform memory.
func (k Kind) Size() uint32 {
	return kindLayoutMap[k].size
}

// Align returns the required byte alignment of this kind in uniform memory.
func (k Kind) Align() uint32 {
	return kindLayoutMap[k].align
}

// WGSL returns the WGSL type name this kind is declared as in the generated
// uniform struct.
func (k Kind) WGSL() string {
	return kindWGSLMap[k]
}

// Components returns the number of float components for vector kinds,
// and 1 for scalars.
func (k Kind) Components() int {
	switch k {
	case KindVec2:
		return 2
	case KindVec3:
		return 3
	case KindVec4, KindColor:
		return 4
	case KindFloat, KindInt, KindUInt, KindBool:
		return 1
	default:
		return 1
	}
}

// String returns the declaration keyword for the kind.
func (k Kind) String() string {
	if n, ok := kindNameMap[k]; ok {
		return n
	}
	return "unknown"
}
