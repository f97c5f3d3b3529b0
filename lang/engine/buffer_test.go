package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferStackPushIsFrontOrder(t *testing.T) {
	b := NewBufferStack()
	b.Push(Scalar(1))
	b.Push(Scalar(2))
	b.Push(Scalar(3))

	v, ok := b.Get(0)
	require.True(t, ok)
	assert.Equal(t, Scalar(3), v)

	v, ok = b.Get(2)
	require.True(t, ok)
	assert.Equal(t, Scalar(1), v)
}

func TestBufferStackPopIsLIFO(t *testing.T) {
	b := NewBufferStack()
	b.Push(Scalar(1))
	b.Push(Scalar(2))

	v, ok := b.Pop()
	require.True(t, ok)
	assert.Equal(t, Scalar(2), v)
	assert.Equal(t, 1, b.Len())

	v, ok = b.Pop()
	require.True(t, ok)
	assert.Equal(t, Scalar(1), v)

	_, ok = b.Pop()
	assert.False(t, ok)
}

func TestBufferStackGetOutOfRange(t *testing.T) {
	b := NewBufferStack()
	b.Push(Scalar(1))

	_, ok := b.Get(1)
	assert.False(t, ok)
	_, ok = b.Get(-1)
	assert.False(t, ok)
}

func TestBufferStackTruncate(t *testing.T) {
	b := NewBufferStack()
	b.Push(Scalar(1))
	b.Push(Scalar(2))
	b.Push(Scalar(3))

	b.Truncate(1)
	assert.Equal(t, 1, b.Len())
	v, ok := b.Get(0)
	require.True(t, ok)
	assert.Equal(t, Scalar(3), v)

	// truncating past the current length is a no-op
	b.Truncate(5)
	assert.Equal(t, 1, b.Len())
}

func TestGetScalarAndGetArray(t *testing.T) {
	b := NewBufferStack()
	b.Push(NewArray([]Value{Scalar(7)}))
	b.Push(Scalar(42))

	s, ok := GetScalar(b, 0)
	require.True(t, ok)
	assert.Equal(t, Scalar(42), s)

	_, ok = GetScalar(b, 1)
	assert.False(t, ok, "index 1 holds an array, not a scalar")

	arr, ok := GetArray(b, 1)
	require.True(t, ok)
	assert.Equal(t, Scalar(7), arr.Elems[0])

	_, ok = GetArray(b, 99)
	assert.False(t, ok)
}

func TestPartitionedBuffersIsolatesParentFromOverlay(t *testing.T) {
	parent := NewBufferStack()
	parent.Push(Scalar(1))

	p := NewPartitionedBuffers(parent)
	p.Push(Scalar(2))

	assert.Equal(t, 2, p.Len())

	v, ok := p.Get(0)
	require.True(t, ok)
	assert.Equal(t, Scalar(2), v, "overlay entries come first")

	v, ok = p.Get(1)
	require.True(t, ok)
	assert.Equal(t, Scalar(1), v, "falls through to parent once the overlay is exhausted")

	// popping the overlay never reaches into the parent
	v, ok = p.Pop()
	require.True(t, ok)
	assert.Equal(t, Scalar(2), v)
	_, ok = p.Pop()
	assert.False(t, ok, "parent must never be popped through a partition")
	assert.Equal(t, 1, parent.Len())
}

func TestPartitionedBuffersTruncateNeverTouchesParent(t *testing.T) {
	parent := NewBufferStack()
	parent.Push(Scalar(1))
	parent.Push(Scalar(2))

	p := NewPartitionedBuffers(parent)
	p.Push(Scalar(3))
	p.Push(Scalar(4))

	p.Truncate(0)
	assert.Equal(t, 0, p.overlay.Len())
	assert.Equal(t, 2, parent.Len())
}

func TestPartitionedBuffersTakeReturn(t *testing.T) {
	parent := NewBufferStack()
	p := NewPartitionedBuffers(parent)

	_, ok := p.TakeReturn()
	assert.False(t, ok, "an empty overlay has no return value")

	p.Push(Scalar(9))
	v, ok := p.TakeReturn()
	require.True(t, ok)
	assert.Equal(t, Scalar(9), v)
}
