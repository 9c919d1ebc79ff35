package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlanScalarsPackTightly(t *testing.T) {
	plan, err := NewPlan([]Param{
		{Name: "uScale", Kind: KindFloat},
		{Name: "uCount", Kind: KindInt},
		{Name: "uFlag", Kind: KindBool},
	})
	require.NoError(t, err)

	require.Len(t, plan.Fields, 3)
	assert.Equal(t, uint32(0), plan.Fields[0].Offset)
	assert.Equal(t, uint32(4), plan.Fields[1].Offset)
	assert.Equal(t, uint32(8), plan.Fields[2].Offset)
	assert.Equal(t, uint32(12), plan.Size)
}

func TestNewPlanAlignsVectors(t *testing.T) {
	// A float before a vec2 forces 4 bytes of padding; a vec3 after the
	// vec2 aligns to 16 and leaves its fourth lane unused.
	plan, err := NewPlan([]Param{
		{Name: "uScale", Kind: KindFloat},
		{Name: "uOffset", Kind: KindVec2},
		{Name: "uTint", Kind: KindVec3},
	})
	require.NoError(t, err)

	assert.Equal(t, uint32(0), plan.Fields[0].Offset)
	assert.Equal(t, uint32(8), plan.Fields[1].Offset)
	assert.Equal(t, uint32(16), plan.Fields[2].Offset)
	// 16 + 12 = 28, rounded up to the largest alignment (16).
	assert.Equal(t, uint32(32), plan.Size)
}

func TestNewPlanOffsetsMonotonicAndAligned(t *testing.T) {
	params := []Param{
		{Name: "a", Kind: KindVec3},
		{Name: "b", Kind: KindFloat},
		{Name: "c", Kind: KindColor},
		{Name: "d", Kind: KindBool},
		{Name: "e", Kind: KindVec2},
		{Name: "f", Kind: KindUInt},
	}
	plan, err := NewPlan(params)
	require.NoError(t, err)
	require.Len(t, plan.Fields, len(params))

	prevEnd := uint32(0)
	for i, f := range plan.Fields {
		assert.GreaterOrEqual(t, f.Offset, prevEnd, "field %d overlaps its predecessor", i)
		assert.Zero(t, f.Offset%params[i].Kind.Align(), "field %d misaligned", i)
		assert.Equal(t, params[i].Kind.Size(), f.Size)
		prevEnd = f.Offset + f.Size
	}
	assert.GreaterOrEqual(t, plan.Size, prevEnd)
}

func TestNewPlanDeterministic(t *testing.T) {
	params := []Param{
		{Name: "a", Kind: KindVec2},
		{Name: "b", Kind: KindFloat},
		{Name: "c", Kind: KindVec4},
	}
	first, err := NewPlan(params)
	require.NoError(t, err)
	second, err := NewPlan(params)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNewPlanEmpty(t *testing.T) {
	plan, err := NewPlan(nil)
	require.NoError(t, err)
	assert.Empty(t, plan.Fields)
	assert.Zero(t, plan.Size)
}

func TestNewPlanRejectsOversizeRegion(t *testing.T) {
	params := make([]Param, MaxParamsSize/16+1)
	for i := range params {
		params[i] = Param{Name: "p", Kind: KindVec4}
	}
	_, err := NewPlan(params)
	var se *SchemaError
	require.ErrorAs(t, err, &se)
}

func TestPlanFieldLookup(t *testing.T) {
	plan, err := NewPlan([]Param{
		{Name: "uScale", Kind: KindFloat},
		{Name: "uTint", Kind: KindColor},
	})
	require.NoError(t, err)

	f, ok := plan.Field("uTint")
	require.True(t, ok)
	assert.Equal(t, uint32(16), f.Offset)

	_, ok = plan.Field("missing")
	assert.False(t, ok)
}
