package engine

// Buffers is the interface shared by BufferStack and PartitionedBuffers: the
// implicit operand stack threaded through directive evaluation. Index 0 is
// always the front (most recently pushed) element.
type Buffers interface {
	Push(v Value)
	Pop() (Value, bool)
	Get(i int) (Value, bool)
	Len() int
	Truncate(n int)
}

// GetScalar returns the Value at index i as a Scalar, or (0, false) if the
// index is out of range or the variant there is not a Scalar.
func GetScalar(b Buffers, i int) (Scalar, bool) {
	v, ok := b.Get(i)
	if !ok {
		return 0, false
	}
	s, ok := v.(Scalar)
	return s, ok
}

// GetArray returns the Value at index i as an *Array, or (nil, false) if the
// index is out of range or the variant there is not an Array.
func GetArray(b Buffers, i int) (*Array, bool) {
	v, ok := b.Get(i)
	if !ok {
		return nil, false
	}
	a, ok := v.(*Array)
	return a, ok
}

// BufferStack is a front-pushed, front-popped deque of Values: the base
// operand stack of the evaluator. It is backed by a plain slice with index 0
// as the logical front, which keeps Get(i) a direct slice index at the cost
// of an O(n) Push; the expression depths this engine deals with (one
// statement's worth of directives) never make that cost observable.
type BufferStack struct {
	vals []Value
}

var _ Buffers = (*BufferStack)(nil)

func NewBufferStack() *BufferStack {
	return &BufferStack{}
}

func (b *BufferStack) Push(v Value) {
	b.vals = append(b.vals, nil)
	copy(b.vals[1:], b.vals)
	b.vals[0] = v
}

func (b *BufferStack) Pop() (Value, bool) {
	if len(b.vals) == 0 {
		return nil, false
	}
	v := b.vals[0]
	b.vals = b.vals[1:]
	return v, true
}

func (b *BufferStack) Get(i int) (Value, bool) {
	if i < 0 || i >= len(b.vals) {
		return nil, false
	}
	return b.vals[i], true
}

func (b *BufferStack) Len() int { return len(b.vals) }

// Truncate drops all but the first n elements, i.e. it keeps the n most
// recently pushed values and discards the older ones.
func (b *BufferStack) Truncate(n int) {
	if n < len(b.vals) {
		b.vals = b.vals[:n]
	}
}

// PartitionedBuffers wraps a parent Buffers with a fresh, empty overlay. All
// pushes go to the overlay; reads check the overlay first, then fall back to
// the parent with an index adjusted by the overlay's length. This isolates a
// nested evaluation (a function call, or eval_return of a sub-expression) so
// it can observe no writes it did not itself produce, while still allowing
// reads to see values the caller already had on the stack (arguments read by
// index, etc. are resolved through directives, not through the buffer stack,
// so in practice the parent fallback exists mostly to preserve the Buffers
// contract uniformly).
type PartitionedBuffers struct {
	parent  Buffers
	overlay *BufferStack
}

var _ Buffers = (*PartitionedBuffers)(nil)

// NewPartitionedBuffers wraps parent with a fresh overlay.
func NewPartitionedBuffers(parent Buffers) *PartitionedBuffers {
	return &PartitionedBuffers{parent: parent, overlay: NewBufferStack()}
}

func (p *PartitionedBuffers) Push(v Value) { p.overlay.Push(v) }

func (p *PartitionedBuffers) Pop() (Value, bool) {
	if p.overlay.Len() > 0 {
		return p.overlay.Pop()
	}
	return nil, false
}

func (p *PartitionedBuffers) Get(i int) (Value, bool) {
	if i < p.overlay.Len() {
		return p.overlay.Get(i)
	}
	return p.parent.Get(i - p.overlay.Len())
}

func (p *PartitionedBuffers) Len() int {
	return p.overlay.Len() + p.parent.Len()
}

// Truncate drops the overlay down to n entries, never touching the parent:
// a partition must never observe, let alone discard, values it did not
// itself produce.
func (p *PartitionedBuffers) Truncate(n int) {
	p.overlay.Truncate(n)
}

// TakeReturn yields the overlay's front element, if any: the "result" of the
// partitioned evaluation. The parent is never touched.
func (p *PartitionedBuffers) TakeReturn() (Value, bool) {
	return p.overlay.Get(0)
}
