package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameGetWalksParentChain(t *testing.T) {
	root := NewFrame()
	root.InsertLocal("x", Scalar(1))
	child := root.Child()

	v, err := child.Get("x")
	require.Nil(t, err)
	assert.Equal(t, Scalar(1), v)

	_, err = child.Get("missing")
	require.NotNil(t, err)
	assert.Equal(t, CodeUnknownIdent, err.Code)
}

func TestFrameContains(t *testing.T) {
	root := NewFrame()
	root.InsertLocal("x", Scalar(1))
	child := root.Child()

	assert.True(t, child.Contains("x"))
	assert.False(t, child.Contains("y"))
}

func TestFrameInsertLocalShadowsParent(t *testing.T) {
	root := NewFrame()
	root.InsertLocal("x", Scalar(1))
	child := root.Child()

	child.InsertLocal("x", Scalar(2))

	v, err := child.Get("x")
	require.Nil(t, err)
	assert.Equal(t, Scalar(2), v, "child's local insert shadows the parent's binding")

	v, err = root.Get("x")
	require.Nil(t, err)
	assert.Equal(t, Scalar(1), v, "parent's own binding is untouched")
}

func TestFrameInsertNormalRewritesAncestor(t *testing.T) {
	root := NewFrame()
	root.InsertLocal("x", Scalar(1))
	child := root.Child()

	child.InsertNormal("x", Scalar(2))

	v, err := root.Get("x")
	require.Nil(t, err)
	assert.Equal(t, Scalar(2), v, "normal insert rewrites the frame that already owns the name")

	assert.False(t, childOwnsLocally(child, "x"))
}

func TestFrameInsertNormalCreatesLocalWhenAbsent(t *testing.T) {
	root := NewFrame()
	child := root.Child()

	child.InsertNormal("y", Scalar(5))

	assert.True(t, childOwnsLocally(child, "y"))
	assert.False(t, root.Contains("y"))
}

func TestFrameInsertGlobalTargetsRoot(t *testing.T) {
	root := NewFrame()
	mid := root.Child()
	leaf := mid.Child()

	leaf.InsertGlobal("g", Scalar(7))

	v, err := root.Get("g")
	require.Nil(t, err)
	assert.Equal(t, Scalar(7), v)

	assert.False(t, childOwnsLocally(mid, "g"))
	assert.False(t, childOwnsLocally(leaf, "g"))
}

// childOwnsLocally reports whether name is bound directly in f, not merely
// reachable through a parent.
func childOwnsLocally(f *Frame, name string) bool {
	_, ok := f.vars.Get(name)
	return ok
}

func TestPathResolveSingleSegment(t *testing.T) {
	f := NewFrame()
	f.InsertLocal("x", Scalar(3))

	v, err := Path{"x"}.Resolve(f)
	require.Nil(t, err)
	assert.Equal(t, Scalar(3), v)
}

func TestPathResolveThroughScopeValue(t *testing.T) {
	f := NewFrame()
	sv := NewScopeValue()
	sv.Set("y", Scalar(9))
	f.InsertLocal("o", sv)

	v, err := Path{"o", "y"}.Resolve(f)
	require.Nil(t, err)
	assert.Equal(t, Scalar(9), v)
}

func TestPathResolveNonScopeIntermediateFails(t *testing.T) {
	f := NewFrame()
	f.InsertLocal("o", Scalar(1))

	_, err := Path{"o", "y"}.Resolve(f)
	require.NotNil(t, err)
	assert.Equal(t, CodePathResolution, err.Code)
}

func TestPathAssignSingleSegmentHonorsMode(t *testing.T) {
	root := NewFrame()
	root.InsertLocal("x", Scalar(1))
	child := root.Child()

	err := Path{"x"}.Assign(child, InsertNormal, Scalar(2))
	require.Nil(t, err)

	v, getErr := root.Get("x")
	require.Nil(t, getErr)
	assert.Equal(t, Scalar(2), v)
}

func TestPathAssignIntoScopeValue(t *testing.T) {
	f := NewFrame()
	sv := NewScopeValue()
	sv.Set("y", Scalar(1))
	f.InsertLocal("o", sv)

	err := Path{"o", "y"}.Assign(f, InsertNormal, Scalar(42))
	require.Nil(t, err)

	got, ok := sv.Get("y")
	require.True(t, ok)
	assert.Equal(t, Scalar(42), got)
}

func TestPathStringJoinsWithDots(t *testing.T) {
	assert.Equal(t, "a.b.c", Path{"a", "b", "c"}.String())
	assert.Equal(t, "a", Path{"a"}.String())
}
