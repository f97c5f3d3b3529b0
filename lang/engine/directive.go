package engine

// DirectiveKind tags one step of an expression (spec.md §3 "Directive").
// This is the closed sum type the design notes recommend in place of the
// original's trait-object Directive: one tag, a handful of payload fields
// used according to the tag, and an exhaustive switch in eval.go.
type DirectiveKind uint8

const (
	DReadTop DirectiveKind = iota
	DReadAt
	DReadIndexed
	DReadLongIndexed
	DReadNamed
	DWriteLiteral
	DWriteArray
	DWriteFunction
	DWriteScope
	DWriteInstruction
	DBindScalar
	DBindArray
	DBindFunction
	DBindScope
	DControl
	DBreak
	DReturn
	DRemoveTop
)

// ScopeFieldProto is one declared field of a scope literal: a name, its
// declared Kind, and the expression that produces its value.
type ScopeFieldProto struct {
	Name string
	Kind Kind
	Expr *MutableBuffer
}

// ScopePrototype is the parsed form of a `| ... |` scope literal: an
// ordered list of field declarations, each evaluated in its own partition
// when the literal is materialized (WRITE_SCOPE).
type ScopePrototype struct {
	Fields []ScopeFieldProto
}

func (sp *ScopePrototype) Clone() *ScopePrototype {
	if sp == nil {
		return nil
	}
	out := make([]ScopeFieldProto, len(sp.Fields))
	for i, f := range sp.Fields {
		out[i] = ScopeFieldProto{Name: f.Name, Kind: f.Kind, Expr: f.Expr.Clone()}
	}
	return &ScopePrototype{Fields: out}
}

// Directive is one executable step of a MutableBuffer. Only the fields that
// apply to Kind are populated; the comment on each field names the kinds
// that use it.
type Directive struct {
	Kind DirectiveKind

	Index      int             // DReadAt
	Path       Path            // DReadIndexed/DReadLongIndexed/DReadNamed/DBind*
	IndexExpr  *MutableBuffer  // DReadIndexed
	IndexExprs []*MutableBuffer // DReadLongIndexed
	Literal    Scalar          // DWriteLiteral
	Elems      []*MutableBuffer // DWriteArray
	Fn         *Function       // DWriteFunction
	ScopeProto *ScopePrototype // DWriteScope
	Op         *OpSpec         // DWriteInstruction
	Mode       InsertMode      // DBindScalar/DBindArray/DBindFunction/DBindScope
	Control    Controller      // DControl

	// Expr is the right-hand-side expression of a BIND_* directive or the
	// optional value expression of RETURN, carved out by the builder into
	// its own self-contained MutableBuffer (capacity 1) exactly as it does
	// for bracketed forms, rather than left flowing through the parent's
	// directive stream. This is observably identical to spec.md §4.4's
	// literal description (the rhs still executes immediately after the
	// binder, against the same environment) and lets every sub-expression,
	// binder rhs included, evaluate through the one evalBuffer helper.
	Expr *MutableBuffer // DBindScalar/DBindArray/DBindFunction/DBindScope/DReturn
}

// returnCount reports how many values this directive produces (spec.md §4.4
// step 2's "value producer"): 1 for any READ_*, WRITE_LITERAL/WRITE_ARRAY/
// WRITE_SCOPE or WRITE_FUNCTION, the controller's ReturnCount() for a
// CONTROL, and 0 for everything else, WRITE_INSTRUCTION and the BIND_*
// directives included. The builder does not call it: it does its capacity
// bookkeeping per token kind in tokenToDirective.
func (d Directive) returnCount() int {
	switch d.Kind {
	case DReadTop, DReadAt, DReadIndexed, DReadLongIndexed, DReadNamed,
		DWriteLiteral, DWriteArray, DWriteFunction, DWriteScope:
		return 1
	case DControl:
		return d.Control.ReturnCount()
	default:
		return 0
	}
}

// MutableBuffer is an ordered list of Directives representing one
// self-contained expression, stored so that the last element is the first
// to execute (spec.md §3 "Mutable buffer"). The builder appends directives
// in source order, then reverses the slice once; PopNext then walks back
// from the end, yielding source order again.
type MutableBuffer struct {
	dirs []Directive
}

func newMutableBuffer() *MutableBuffer { return &MutableBuffer{} }

// append adds a directive in source (read) order during building.
func (m *MutableBuffer) append(d Directive) { m.dirs = append(m.dirs, d) }

// finish reverses the buffer once building has completed, per spec.md §4.4.
func (m *MutableBuffer) finish() {
	for i, j := 0, len(m.dirs)-1; i < j; i, j = i+1, j-1 {
		m.dirs[i], m.dirs[j] = m.dirs[j], m.dirs[i]
	}
}

// Len reports how many directives remain to execute.
func (m *MutableBuffer) Len() int { return len(m.dirs) }

// PopNext pops and returns the next directive to execute (the tail of the
// stored slice, i.e. source order).
func (m *MutableBuffer) PopNext() (Directive, bool) {
	n := len(m.dirs)
	if n == 0 {
		return Directive{}, false
	}
	d := m.dirs[n-1]
	m.dirs = m.dirs[:n-1]
	return d, true
}

// Clone deep-clones the buffer: a fresh slice of directives, recursively
// cloning any nested MutableBuffer/Controller so that popping from the
// clone never mutates the template it was cloned from. This is what lets
// loop bodies and function calls re-run the same source expression on every
// iteration/call.
func (m *MutableBuffer) Clone() *MutableBuffer {
	if m == nil {
		return nil
	}
	out := make([]Directive, len(m.dirs))
	for i, d := range m.dirs {
		out[i] = d.clone()
	}
	return &MutableBuffer{dirs: out}
}

func (d Directive) clone() Directive {
	nd := d
	if d.Expr != nil {
		nd.Expr = d.Expr.Clone()
	}
	if d.IndexExpr != nil {
		nd.IndexExpr = d.IndexExpr.Clone()
	}
	if d.IndexExprs != nil {
		nd.IndexExprs = make([]*MutableBuffer, len(d.IndexExprs))
		for i, e := range d.IndexExprs {
			nd.IndexExprs[i] = e.Clone()
		}
	}
	if d.Elems != nil {
		nd.Elems = make([]*MutableBuffer, len(d.Elems))
		for i, e := range d.Elems {
			nd.Elems[i] = e.Clone()
		}
	}
	if d.ScopeProto != nil {
		nd.ScopeProto = d.ScopeProto.Clone()
	}
	if d.Control != nil {
		nd.Control = d.Control.Clone()
	}
	return nd
}

// Controller is a directive variant that runs a sub-program with
// control-flow semantics: if/if-else/for/for-in/while/scoped-block/function
// call (spec.md §4.5 "Controllers").
type Controller interface {
	// Run executes the controller's body against env, honoring lossy.
	Run(env *Environment, lossy bool) *Error
	// ReturnCount is 1 for FunctionCall (a call statement is a value
	// producer) and 0 for every other controller.
	ReturnCount() int
	// Clone deep-clones the controller's owned MutableBuffers so it can be
	// safely re-run (loops clone their body per iteration).
	Clone() Controller
}
