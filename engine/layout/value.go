package layout

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Value is a tagged variant holding one parameter value of any Kind.
// Scalar and vector float kinds use Vec, integer kinds use Int/UInt, and
// booleans use Bool. Consumers switch on Kind exhaustively rather than
// inspecting the storage fields directly.
type Value struct {
	Kind Kind

	Vec  [4]float32 // Float (x only), Vec2, Vec3, Vec4, Color
	Int  int32
	UInt uint32
	Bool bool
}

// Float returns a Value of KindFloat.
func Float(v float32) Value {
	return Value{Kind: KindFloat, Vec: [4]float32{v}}
}

// Int32 returns a Value of KindInt.
func Int32(v int32) Value {
	return Value{Kind: KindInt, Int: v}
}

// UInt32 returns a Value of KindUInt.
func UInt32(v uint32) Value {
	return Value{Kind: KindUInt, UInt: v}
}

// Vec2 returns a Value of KindVec2.
func Vec2(x, y float32) Value {
	return Value{Kind: KindVec2, Vec: [4]float32{x, y}}
}

// Vec3 returns a Value of KindVec3.
func Vec3(x, y, z float32) Value {
	return Value{Kind: KindVec3, Vec: [4]float32{x, y, z}}
}

// Vec4 returns a Value of KindVec4.
func Vec4(x, y, z, w float32) Value {
	return Value{Kind: KindVec4, Vec: [4]float32{x, y, z, w}}
}

// Color returns a Value of KindColor.
func Color(r, g, b, a float32) Value {
	return Value{Kind: KindColor, Vec: [4]float32{r, g, b, a}}
}

// Bool32 returns a Value of KindBool.
func Bool32(v bool) Value {
	return Value{Kind: KindBool, Bool: v}
}

// Pack serializes the value into dst at the given offset using the fixed
// little-endian uniform layout for its kind. dst must be at least
// offset+Kind.Size() bytes long.
//
// Parameters:
//   - dst: the destination byte region
//   - offset: the byte offset to write at (must satisfy the kind's alignment)
//
// Returns:
//   - error: an error if dst is too small to hold the value
func (v Value) Pack(dst []byte, offset uint32) error {
	size := v.Kind.Size()
	if uint32(len(dst)) < offset+size {
		return fmt.Errorf("layout: packing %s at offset %d overruns %d-byte region", v.Kind, offset, len(dst))
	}

	switch v.Kind {
	case KindFloat:
		binary.LittleEndian.PutUint32(dst[offset:], math.Float32bits(v.Vec[0]))
	case KindInt:
		binary.LittleEndian.PutUint32(dst[offset:], uint32(v.Int))
	case KindUInt:
		binary.LittleEndian.PutUint32(dst[offset:], v.UInt)
	case KindVec2, KindVec3, KindVec4, KindColor:
		for i := 0; i < v.Kind.Components(); i++ {
			binary.LittleEndian.PutUint32(dst[offset+uint32(i)*4:], math.Float32bits(v.Vec[i]))
		}
	case KindBool:
		var b uint32
		if v.Bool {
			b = 1
		}
		binary.LittleEndian.PutUint32(dst[offset:], b)
	default:
		return fmt.Errorf("layout: cannot pack unknown kind %d", v.Kind)
	}
	return nil
}

// String formats the value for display in logs and the control panel.
func (v Value) String() string {
	switch v.Kind {
	case KindFloat:
		return fmt.Sprintf("%g", v.Vec[0])
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindUInt:
		return fmt.Sprintf("%d", v.UInt)
	case KindVec2:
		return fmt.Sprintf("(%g, %g)", v.Vec[0], v.Vec[1])
	case KindVec3:
		return fmt.Sprintf("(%g, %g, %g)", v.Vec[0], v.Vec[1], v.Vec[2])
	case KindVec4, KindColor:
		return fmt.Sprintf("(%g, %g, %g, %g)", v.Vec[0], v.Vec[1], v.Vec[2], v.Vec[3])
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	default:
		return "unknown"
	}
}
