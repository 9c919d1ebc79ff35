package params

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pudnax/nuance/engine/layout"
)

func planFor(t *testing.T, params []layout.Param) layout.Plan {
	t.Helper()
	plan, err := layout.NewPlan(params)
	require.NoError(t, err)
	return plan
}

func TestApplyPlanInstallsDefaults(t *testing.T) {
	params := []layout.Param{
		{Name: "uScale", Kind: layout.KindFloat, Default: layout.Float(2)},
		{Name: "uTint", Kind: layout.KindColor, Default: layout.Color(1, 0, 0, 1)},
	}

	s := NewStore()
	s.ApplyPlan(params, planFor(t, params))

	v, ok := s.Value("uScale")
	require.True(t, ok)
	assert.Equal(t, layout.Float(2), v)

	assert.Equal(t, params, s.Schema())
	assert.Len(t, s.Values(), 2)
}

func TestSetValidatesNameAndKind(t *testing.T) {
	params := []layout.Param{
		{Name: "uScale", Kind: layout.KindFloat, Default: layout.Float(1)},
	}
	s := NewStore()
	s.ApplyPlan(params, planFor(t, params))

	require.NoError(t, s.Set("uScale", layout.Float(3)))
	v, _ := s.Value("uScale")
	assert.Equal(t, layout.Float(3), v)

	assert.Error(t, s.Set("uMissing", layout.Float(1)))
	assert.Error(t, s.Set("uScale", layout.Int32(1)))
}

func TestApplyPlanPreservesMatchingValues(t *testing.T) {
	first := []layout.Param{
		{Name: "uScale", Kind: layout.KindFloat, Default: layout.Float(1)},
		{Name: "uMode", Kind: layout.KindInt, Default: layout.Int32(0)},
	}
	s := NewStore()
	s.ApplyPlan(first, planFor(t, first))
	require.NoError(t, s.Set("uScale", layout.Float(7)))

	// The reloaded shader keeps uScale, retypes uMode, and adds uTint.
	second := []layout.Param{
		{Name: "uScale", Kind: layout.KindFloat, Default: layout.Float(1)},
		{Name: "uMode", Kind: layout.KindFloat, Default: layout.Float(0.5)},
		{Name: "uTint", Kind: layout.KindVec3, Default: layout.Vec3(1, 1, 1)},
	}
	s.ApplyPlan(second, planFor(t, second))

	v, _ := s.Value("uScale")
	assert.Equal(t, layout.Float(7), v, "same name and kind keeps the edited value")

	v, _ = s.Value("uMode")
	assert.Equal(t, layout.Float(0.5), v, "kind change falls back to the new default")

	v, _ = s.Value("uTint")
	assert.Equal(t, layout.Vec3(1, 1, 1), v)
}

func TestApplyPlanDropsRemovedParams(t *testing.T) {
	first := []layout.Param{
		{Name: "uGone", Kind: layout.KindFloat, Default: layout.Float(1)},
	}
	s := NewStore()
	s.ApplyPlan(first, planFor(t, first))

	s.ApplyPlan(nil, layout.Plan{})
	_, ok := s.Value("uGone")
	assert.False(t, ok)
	assert.Empty(t, s.Values())
}

func TestPackWritesPlanOffsets(t *testing.T) {
	params := []layout.Param{
		{Name: "uScale", Kind: layout.KindFloat, Default: layout.Float(1.5)},
		{Name: "uOffset", Kind: layout.KindVec2, Default: layout.Vec2(0.25, 0.75)},
	}
	plan := planFor(t, params)
	s := NewStore()
	s.ApplyPlan(params, plan)

	buf, ok := s.Pack(false)
	require.True(t, ok)
	require.Len(t, buf, int(plan.Size))

	assert.Equal(t, float32(1.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])))
	assert.Equal(t, float32(0.25), math.Float32frombits(binary.LittleEndian.Uint32(buf[8:])))
	assert.Equal(t, float32(0.75), math.Float32frombits(binary.LittleEndian.Uint32(buf[12:])))
}

func TestPackSkipsWhenClean(t *testing.T) {
	params := []layout.Param{
		{Name: "uScale", Kind: layout.KindFloat, Default: layout.Float(1)},
	}
	s := NewStore()
	s.ApplyPlan(params, planFor(t, params))

	_, ok := s.Pack(false)
	require.True(t, ok, "first pack after ApplyPlan uploads the defaults")

	_, ok = s.Pack(false)
	assert.False(t, ok, "nothing changed, nothing to upload")

	_, ok = s.Pack(true)
	assert.True(t, ok, "force repacks even when clean")

	require.NoError(t, s.Set("uScale", layout.Float(2)))
	buf, ok := s.Pack(false)
	require.True(t, ok)
	assert.Equal(t, float32(2), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])))
}

func TestPackEmptyPlan(t *testing.T) {
	s := NewStore()
	buf, ok := s.Pack(true)
	assert.False(t, ok)
	assert.Nil(t, buf)
}

func TestValuesReturnsCopy(t *testing.T) {
	params := []layout.Param{
		{Name: "uScale", Kind: layout.KindFloat, Default: layout.Float(1)},
	}
	s := NewStore()
	s.ApplyPlan(params, planFor(t, params))

	values := s.Values()
	values["uScale"] = layout.Float(99)

	v, _ := s.Value("uScale")
	assert.Equal(t, layout.Float(1), v)
}
