package layout

import "fmt"

// MaxParamsSize is the largest user-parameter region the planner will accept,
// matching the WebGPU default maxUniformBufferBindingSize limit. A parameter
// list whose planned size exceeds this is rejected before any pipeline work.
const MaxParamsSize = 65536

// Param is one user-declared shader parameter as produced by the reflector:
// name, kind, declared default, and the byte offset of the declaration in the
// entry source text (used for diagnostics only).
type Param struct {
	Name      string
	Kind      Kind
	Default   Value
	DeclStart int
}

// Field is one entry of a Plan: the parameter name with its resolved byte
// offset and size inside the user-parameter region.
type Field struct {
	Name   string
	Offset uint32
	Size   uint32
}

// Plan is the byte-exact memory layout for an ordered parameter list.
// Offsets strictly increase and each satisfies its kind's alignment; Size is
// the smallest total that is a multiple of the largest alignment present, so
// the region can be tiled safely. A Plan is a pure function of the ordered
// parameter list: identical input always yields an identical Plan.
type Plan struct {
	Fields []Field
	Size   uint32
}

// SchemaError reports a parameter schema problem: an unsupported declaration
// type, a duplicate parameter name, a non-literal default, or an oversize
// layout. Schema errors are raised before compilation and block the reload.
type SchemaError struct {
	Param  string
	Detail string
}

func (e *SchemaError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("schema error: %s", e.Detail)
	}
	return fmt.Sprintf("schema error: parameter %q: %s", e.Param, e.Detail)
}

// roundUpAlign rounds value up to the next multiple of alignment.
// Alignment must be a power of two.
func roundUpAlign(alignment, value uint32) uint32 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// NewPlan computes the layout for the ordered parameter list. Each field is
// placed at the next offset satisfying its kind's alignment; the total size is
// rounded up to the largest alignment among all fields. An empty list yields a
// valid zero-size plan. The computation is deterministic and side-effect free.
//
// Parameters:
//   - params: the ordered parameter list from the reflector
//
// Returns:
//   - Plan: the computed layout
//   - error: a *SchemaError if the total size would exceed MaxParamsSize
func NewPlan(params []Param) (Plan, error) {
	plan := Plan{Fields: make([]Field, 0, len(params))}

	offset := uint32(0)
	maxAlign := uint32(1)
	for _, p := range params {
		size := p.Kind.Size()
		align := p.Kind.Align()

		offset = roundUpAlign(align, offset)
		plan.Fields = append(plan.Fields, Field{
			Name:   p.Name,
			Offset: offset,
			Size:   size,
		})
		offset += size

		if align > maxAlign {
			maxAlign = align
		}
	}

	plan.Size = roundUpAlign(maxAlign, offset)
	if plan.Size > MaxParamsSize {
		return Plan{}, &SchemaError{
			Detail: fmt.Sprintf("parameter region of %d bytes exceeds the %d-byte uniform limit", plan.Size, MaxParamsSize),
		}
	}
	return plan, nil
}

// Field retrieves the field with the given parameter name.
//
// Parameters:
//   - name: the parameter name to look up
//
// Returns:
//   - Field: the matching field, or the zero Field if not present
//   - bool: true if the name is part of the plan
func (p Plan) Field(name string) (Field, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
